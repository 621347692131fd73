package repository_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/ghostrun/internal/adapters/codec"
	"github.com/okian/ghostrun/internal/adapters/repository"
	"github.com/okian/ghostrun/internal/domain/model"
	"github.com/okian/ghostrun/internal/domain/route"
	"github.com/okian/ghostrun/pkg/logger"
)

func recording(routeID string, total float32, stamp int64) *model.GhostRecording {
	rec := &model.GhostRecording{RouteID: routeID, CarName: "AE86", TotalTime: total, RecordedAt: stamp}
	for i := 0; i < 120; i++ {
		rec.Frames = append(rec.Frames, model.GhostFrame{
			Timestamp: float32(i) / 60,
			Position:  mgl32.Vec3{float32(i), 1, -2},
			Rotation:  mgl32.QuatIdent(),
			Speed:     80,
			EngineRPM: 6500,
			Gear:      3,
			Flags:     model.PackFlags(i%2 == 0, false, true),
		})
	}
	return rec
}

func writeGhost(dir, name string, rec *model.GhostRecording) string {
	data, err := codec.Marshal(rec)
	So(err, ShouldBeNil)
	path := filepath.Join(dir, name)
	So(os.WriteFile(path, data, 0o644), ShouldBeNil)
	return path
}

func newStore(t *testing.T, opts ...repository.Option) *repository.FileStore {
	opts = append([]repository.Option{repository.WithLogger(logger.Discard())}, opts...)
	s, err := repository.NewFileStore(filepath.Join(t.TempDir(), "ghosts"), route.Default(), opts...)
	So(err, ShouldBeNil)
	return s
}

func TestPersonalGhosts(t *testing.T) {
	ctx := context.Background()

	Convey("Given an empty ghosts directory", t, func() {
		s := newStore(t)

		Convey("The personal and shared folders are created", func() {
			for _, dir := range []string{s.PersonalDir(), s.SharedDir()} {
				info, err := os.Stat(dir)
				So(err, ShouldBeNil)
				So(info.IsDir(), ShouldBeTrue)
			}
		})

		Convey("No personal best exists", func() {
			So(s.PersonalExists(ctx, "Akina_Downhill"), ShouldBeFalse)
			_, err := s.LoadPersonal(ctx, "Akina_Downhill")
			So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
		})

		Convey("When a personal best is saved", func() {
			rec := recording("Akina_Downhill", 65, 42)
			So(s.SavePersonal(ctx, rec), ShouldBeNil)

			Convey("Then it loads back unchanged", func() {
				So(s.PersonalExists(ctx, "Akina_Downhill"), ShouldBeTrue)
				got, err := s.LoadPersonal(ctx, "Akina_Downhill")
				So(err, ShouldBeNil)
				So(got, ShouldResemble, rec)
			})

			Convey("Then it is written under the route id", func() {
				path, err := s.PersonalPath("Akina_Downhill")
				So(err, ShouldBeNil)
				So(filepath.Base(path), ShouldEqual, "Akina_Downhill.ghost")
				ids, err := s.ListPersonal(ctx)
				So(err, ShouldBeNil)
				So(ids, ShouldResemble, []string{"Akina_Downhill"})
			})

			Convey("Then a faster run replaces it without leaving temp files", func() {
				faster := recording("Akina_Downhill", 60, 43)
				So(s.SavePersonal(ctx, faster), ShouldBeNil)

				got, err := s.LoadPersonal(ctx, "Akina_Downhill")
				So(err, ShouldBeNil)
				So(got.TotalTime, ShouldEqual, float32(60))

				entries, err := os.ReadDir(s.PersonalDir())
				So(err, ShouldBeNil)
				So(entries, ShouldHaveLength, 1)
			})

			Convey("Then it can be deleted once", func() {
				So(s.DeletePersonal(ctx, "Akina_Downhill"), ShouldBeNil)
				So(s.PersonalExists(ctx, "Akina_Downhill"), ShouldBeFalse)
				err := s.DeletePersonal(ctx, "Akina_Downhill")
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
			})
		})

		Convey("A corrupt personal file fails to load", func() {
			path, err := s.PersonalPath("Akagi_Uphill")
			So(err, ShouldBeNil)
			So(os.WriteFile(path, []byte("not a ghost at all, really"), 0o644), ShouldBeNil)

			So(s.PersonalExists(ctx, "Akagi_Uphill"), ShouldBeTrue)
			_, err = s.LoadPersonal(ctx, "Akagi_Uphill")
			So(errors.Is(err, model.ErrMalformedFile), ShouldBeTrue)
		})

		Convey("Route ids that escape the folder are refused", func() {
			for _, id := range []string{"", "..", "../secrets", `a\b`, "a/b"} {
				_, err := s.PersonalPath(id)
				So(errors.Is(err, repository.ErrInvalidRoute), ShouldBeTrue)
				So(s.PersonalExists(ctx, id), ShouldBeFalse)
			}
			err := s.SavePersonal(ctx, recording("../escape", 60, 1))
			So(errors.Is(err, repository.ErrInvalidRoute), ShouldBeTrue)
		})

		Convey("Saving nothing is an error", func() {
			So(errors.Is(s.SavePersonal(ctx, nil), codec.ErrNilRecording), ShouldBeTrue)
		})
	})
}

func TestSharedGhosts(t *testing.T) {
	ctx := context.Background()

	Convey("Given a shared folder with a mix of files", t, func() {
		s := newStore(t)
		dir := s.SharedDir()

		rival := recording("Akina_Downhill", 50, 100)
		writeGhost(dir, "player1.ghost", rival)
		writeGhost(dir, "player1_copy.ghost", rival)
		writeGhost(dir, "player2.ghost", recording("Irohazaka_Downhill", 80, 200))
		writeGhost(dir, "unknown_route.ghost", recording("Nowhere", 80, 300))
		So(os.WriteFile(filepath.Join(dir, "tiny.ghost"), []byte("GHOST"), 0o644), ShouldBeNil)
		So(os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("hello there, not a ghost"), 0o644), ShouldBeNil)
		So(os.Mkdir(filepath.Join(dir, "nested.ghost"), 0o755), ShouldBeNil)

		Convey("When the folder is scanned", func() {
			list, err := s.ScanShared(ctx)
			So(err, ShouldBeNil)

			byName := map[string]model.SharedGhostMetadata{}
			for _, m := range list {
				byName[filepath.Base(m.FilePath)] = m
			}

			Convey("Then only ghost files are listed and duplicates are dropped", func() {
				So(list, ShouldHaveLength, 4)
				So(byName, ShouldNotContainKey, "player1_copy.ghost")
				So(byName, ShouldNotContainKey, "notes.txt")
				So(byName, ShouldNotContainKey, "nested.ghost")
			})

			Convey("Then valid files carry their header summary", func() {
				m := byName["player1.ghost"]
				So(m.IsValid, ShouldBeTrue)
				So(m.PlayerName, ShouldEqual, "player1")
				So(m.RouteID, ShouldEqual, "Akina_Downhill")
				So(m.TotalTime, ShouldEqual, float32(50))
				So(m.FrameCount, ShouldEqual, 120)
				So(m.Fingerprint, ShouldNotEqual, uint64(0))
			})

			Convey("Then rejected files are listed with a reason", func() {
				So(byName["unknown_route.ghost"].IsValid, ShouldBeFalse)
				So(byName["unknown_route.ghost"].Reason, ShouldContainSubstring, "route not found")
				So(byName["tiny.ghost"].IsValid, ShouldBeFalse)
			})

			Convey("Then a listed ghost loads in full", func() {
				rec, err := s.LoadShared(ctx, byName["player1.ghost"])
				So(err, ShouldBeNil)
				So(rec, ShouldResemble, rival)
			})

			Convey("Then a second scan lists the same files", func() {
				again, err := s.ScanShared(ctx)
				So(err, ShouldBeNil)
				So(again, ShouldHaveLength, 4)
			})
		})

		Convey("When the file changed route after listing", func() {
			meta := s.InspectShared(ctx, filepath.Join(dir, "player1.ghost"))
			So(meta.IsValid, ShouldBeTrue)
			writeGhost(dir, "player1.ghost", recording("Akagi_Downhill", 50, 100))

			_, err := s.LoadShared(ctx, meta)
			So(errors.Is(err, repository.ErrRouteChanged), ShouldBeTrue)
			So(errors.Is(err, model.ErrFieldOutOfRange), ShouldBeTrue)
		})

		Convey("When a path outside the shared folder is requested", func() {
			personal := writeGhost(s.PersonalDir(), "Akina_Downhill.ghost", rival)

			for _, p := range []string{personal, filepath.Join(dir, "..", "personal", "Akina_Downhill.ghost")} {
				_, err := s.LoadShared(ctx, model.SharedGhostMetadata{FilePath: p, IsValid: true})
				So(errors.Is(err, model.ErrPathRejected), ShouldBeTrue)
			}
		})

		Convey("When a shared file is a symbolic link", func() {
			target := writeGhost(s.PersonalDir(), "Akina_Downhill.ghost", rival)
			link := filepath.Join(dir, "link.ghost")
			So(os.Symlink(target, link), ShouldBeNil)

			meta := s.InspectShared(ctx, link)
			So(meta.IsValid, ShouldBeFalse)
			_, err := s.LoadShared(ctx, model.SharedGhostMetadata{FilePath: link})
			So(errors.Is(err, model.ErrPathRejected), ShouldBeTrue)
		})
	})

	Convey("Given more shared files than the cap", t, func() {
		s := newStore(t, repository.WithMaxSharedFiles(2))
		for i, name := range []string{"a.ghost", "b.ghost", "c.ghost"} {
			writeGhost(s.SharedDir(), name, recording("Akina_Downhill", 50, int64(i)))
		}

		list, err := s.ScanShared(ctx)
		So(err, ShouldBeNil)

		Convey("Then files beyond the cap in name order are ignored", func() {
			So(list, ShouldHaveLength, 2)
			So(filepath.Base(list[0].FilePath), ShouldEqual, "a.ghost")
			So(filepath.Base(list[1].FilePath), ShouldEqual, "b.ghost")
		})
	})

	Convey("Given a size limit", t, func() {
		s := newStore(t, repository.WithMaxFileSize(64))
		path := writeGhost(s.SharedDir(), "big.ghost", recording("Akina_Downhill", 50, 1))

		meta := s.InspectShared(ctx, path)
		So(meta.IsValid, ShouldBeFalse)
		_, err := s.LoadShared(ctx, model.SharedGhostMetadata{FilePath: path})
		So(errors.Is(err, model.ErrFileTooLarge), ShouldBeTrue)
	})
}
