package codec

import (
	"bufio"
	"fmt"
	"io"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/okian/ghostrun/internal/domain/model"
)

// DecodeTrusted reads a recording written by this program. Only the magic and
// version are checked; everything else is taken at face value.
func DecodeTrusted(r io.Reader) (*model.GhostRecording, error) {
	rd := &reader{src: bufio.NewReader(r)}

	if err := readPreamble(rd, 0); err != nil {
		return nil, err
	}

	rec := &model.GhostRecording{}
	var err error
	if rec.RouteID, err = rd.string("route id", 0); err != nil {
		return nil, err
	}
	if rec.CarName, err = rd.string("car name", 0); err != nil {
		return nil, err
	}
	if rec.TotalTime, err = rd.float32("total time"); err != nil {
		return nil, err
	}
	if rec.RecordedAt, err = rd.int64("recorded at"); err != nil {
		return nil, err
	}
	count, err := rd.int32("frame count")
	if err != nil {
		return nil, err
	}
	if count < 0 {
		return nil, fmt.Errorf("frame count %d: %w", count, model.ErrMalformedFile)
	}

	rec.Frames = make([]model.GhostFrame, 0, min(int(count), MaxFrames))
	for i := 0; i < int(count); i++ {
		f, err := readRawFrame(rd)
		if err != nil {
			return nil, fmt.Errorf("frame %d: %w", i, err)
		}
		rec.Frames = append(rec.Frames, f)
	}
	return rec, nil
}

// readPreamble checks the magic string and version.
func readPreamble(rd *reader, magicCap int) error {
	magic, err := rd.string("magic", magicCap)
	if err != nil {
		return err
	}
	if magic != Magic {
		return fmt.Errorf("magic %q: %w", magic, model.ErrMalformedFile)
	}
	version, err := rd.int32("version")
	if err != nil {
		return err
	}
	if version != Version {
		return fmt.Errorf("version %d: %w", version, model.ErrMalformedFile)
	}
	return nil
}

func readRawFrame(rd *reader) (model.GhostFrame, error) {
	var (
		f   model.GhostFrame
		v   [11]float32
		err error
	)
	for i := range v {
		if v[i], err = rd.float32("frame field"); err != nil {
			return f, err
		}
	}
	if f.Gear, err = rd.int32("gear"); err != nil {
		return f, err
	}
	flags, err := rd.byte("flags")
	if err != nil {
		return f, err
	}

	f.Timestamp = v[0]
	f.Position = mgl32.Vec3{v[1], v[2], v[3]}
	f.Rotation = mgl32.Quat{W: v[7], V: mgl32.Vec3{v[4], v[5], v[6]}}
	f.SteerAngle = v[8]
	f.Speed = v[9]
	f.EngineRPM = v[10]
	f.Flags = model.Flags(flags)
	return f, nil
}
