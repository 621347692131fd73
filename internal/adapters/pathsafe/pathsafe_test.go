package pathsafe

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/ghostrun/internal/domain/model"
)

func TestValidator(t *testing.T) {
	Convey("Given a ghosts directory with a shared root", t, func() {
		base := t.TempDir()
		shared := filepath.Join(base, "shared")
		So(os.MkdirAll(filepath.Join(shared, "nested"), 0o755), ShouldBeNil)
		So(os.WriteFile(filepath.Join(shared, "player1.ghost"), []byte("x"), 0o600), ShouldBeNil)
		So(os.WriteFile(filepath.Join(shared, "nested", "deep.ghost"), []byte("x"), 0o600), ShouldBeNil)
		So(os.WriteFile(filepath.Join(base, "secrets.ghost"), []byte("x"), 0o600), ShouldBeNil)

		v, err := New(shared)
		So(err, ShouldBeNil)

		Convey("A file directly inside the root is accepted", func() {
			got, err := v.Check(filepath.Join(shared, "player1.ghost"))
			So(err, ShouldBeNil)
			So(got, ShouldEqual, filepath.Join(v.Root(), "player1.ghost"))

			byName, err := v.CheckName("player1.ghost")
			So(err, ShouldBeNil)
			So(byName, ShouldEqual, got)
		})

		Convey("A relative path into the root is accepted", func() {
			wd, err := os.Getwd()
			So(err, ShouldBeNil)
			So(os.Chdir(base), ShouldBeNil)
			Reset(func() { _ = os.Chdir(wd) })

			_, err = v.Check("shared/player1.ghost")
			So(err, ShouldBeNil)

			_, err = v.Check("shared/../../secrets.ghost")
			So(errors.Is(err, model.ErrPathRejected), ShouldBeTrue)
		})

		Convey("Traversal is rejected even when it lands back inside", func() {
			_, err := v.Check(shared + "/../../secrets.ghost")
			So(errors.Is(err, model.ErrPathRejected), ShouldBeTrue)

			_, err = v.Check(shared + "/../shared/player1.ghost")
			So(errors.Is(err, model.ErrPathRejected), ShouldBeTrue)
		})

		Convey("A file outside the root is rejected", func() {
			_, err := v.Check(filepath.Join(base, "secrets.ghost"))
			So(errors.Is(err, model.ErrPathRejected), ShouldBeTrue)
		})

		Convey("Subdirectories are rejected", func() {
			_, err := v.Check(filepath.Join(shared, "nested", "deep.ghost"))
			So(errors.Is(err, model.ErrPathRejected), ShouldBeTrue)

			_, err = v.Check(filepath.Join(shared, "nested"))
			So(errors.Is(err, model.ErrPathRejected), ShouldBeTrue)
		})

		Convey("Alternate separators and odd names are rejected", func() {
			_, err := v.Check(shared + `\player1.ghost`)
			So(errors.Is(err, model.ErrPathRejected), ShouldBeTrue)

			_, err = v.CheckName(`..\secrets.ghost`)
			So(errors.Is(err, model.ErrPathRejected), ShouldBeTrue)

			_, err = v.Check("")
			So(errors.Is(err, model.ErrPathRejected), ShouldBeTrue)
		})

		Convey("Missing files are rejected", func() {
			_, err := v.Check(filepath.Join(shared, "nobody.ghost"))
			So(errors.Is(err, model.ErrPathRejected), ShouldBeTrue)
		})

		Convey("Symbolic links are rejected", func() {
			link := filepath.Join(shared, "link.ghost")
			So(os.Symlink(filepath.Join(base, "secrets.ghost"), link), ShouldBeNil)

			_, err := v.Check(link)
			So(errors.Is(err, model.ErrPathRejected), ShouldBeTrue)
		})

		Convey("A symlinked directory pointing outside is rejected", func() {
			outside := filepath.Join(base, "outside")
			So(os.MkdirAll(outside, 0o755), ShouldBeNil)
			So(os.WriteFile(filepath.Join(outside, "x.ghost"), []byte("x"), 0o600), ShouldBeNil)
			So(os.Symlink(outside, filepath.Join(shared, "escape")), ShouldBeNil)

			_, err := v.Check(filepath.Join(shared, "escape", "x.ghost"))
			So(errors.Is(err, model.ErrPathRejected), ShouldBeTrue)
		})
	})

	Convey("Given a root that is a file", t, func() {
		f := filepath.Join(t.TempDir(), "file")
		So(os.WriteFile(f, nil, 0o600), ShouldBeNil)

		_, err := New(f)
		So(errors.Is(err, ErrRootNotDirectory), ShouldBeTrue)
	})

	Convey("Given a missing root", t, func() {
		_, err := New(filepath.Join(t.TempDir(), "missing"))
		So(err, ShouldNotBeNil)
	})
}
