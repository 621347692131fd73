package codec

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/zeebo/xxh3"

	"github.com/okian/ghostrun/internal/domain/model"
)

// RouteLookup reports whether a route id is known.
type RouteLookup interface {
	Has(id string) bool
}

// Header is the validated summary of a file, read without touching frames.
type Header struct {
	RouteID    string
	CarName    string
	TotalTime  float32
	RecordedAt int64
	FrameCount int
	// Fingerprint hashes the raw header bytes and identifies copies of the same run.
	Fingerprint uint64
}

// Decoder validates files from untrusted sources. It never returns a partial
// recording: on any failure the result is nil and the error wraps one of the
// model error kinds.
type Decoder struct {
	routes    RouteLookup
	maxFrames int
	maxString int
}

// NewDecoder returns a Decoder that accepts only routes known to routes.
func NewDecoder(routes RouteLookup, opts ...Option) *Decoder {
	d := &Decoder{
		routes:    routes,
		maxFrames: MaxFrames,
		maxString: MaxStringLength,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// ScanHeader validates the header and stops before the frames.
func (d *Decoder) ScanHeader(r io.Reader) (Header, error) {
	var raw bytes.Buffer
	rd := &reader{src: io.TeeReader(bufio.NewReader(r), &raw)}
	h, err := d.readHeader(rd)
	if err != nil {
		return Header{}, err
	}
	h.Fingerprint = xxh3.Hash(raw.Bytes())
	return h, nil
}

// Decode validates and returns the full recording.
func (d *Decoder) Decode(r io.Reader) (*model.GhostRecording, error) {
	rd := &reader{src: bufio.NewReader(r)}
	h, err := d.readHeader(rd)
	if err != nil {
		return nil, err
	}

	frames := make([]model.GhostFrame, 0, h.FrameCount)
	last := float32(-1)
	for i := 0; i < h.FrameCount; i++ {
		f, err := readCheckedFrame(rd)
		if err != nil {
			return nil, fmt.Errorf("frame %d: %w", i, err)
		}
		if f.Timestamp < last {
			f.Timestamp = math32.Min(last+TimestampEpsilon, MaxTimestamp)
		}
		last = f.Timestamp
		frames = append(frames, f)
	}

	return &model.GhostRecording{
		RouteID:    h.RouteID,
		CarName:    h.CarName,
		TotalTime:  h.TotalTime,
		RecordedAt: h.RecordedAt,
		Frames:     frames,
	}, nil
}

func (d *Decoder) readHeader(rd *reader) (Header, error) {
	var h Header
	if err := readPreamble(rd, maxMagicLength); err != nil {
		return h, err
	}

	var err error
	if h.RouteID, err = d.text(rd, "route id"); err != nil {
		return h, err
	}
	if h.RouteID == "" {
		return h, fmt.Errorf("route id empty: %w", model.ErrFieldOutOfRange)
	}
	if d.routes == nil || !d.routes.Has(h.RouteID) {
		return h, fmt.Errorf("route %q: %w", h.RouteID, model.ErrRouteNotFound)
	}
	if h.CarName, err = d.text(rd, "car name"); err != nil {
		return h, err
	}
	if h.TotalTime, err = rd.checkedFloat32("total time", MinTotalTime, MaxTotalTime); err != nil {
		return h, err
	}
	if h.RecordedAt, err = rd.int64("recorded at"); err != nil {
		return h, err
	}

	count, err := rd.int32("frame count")
	if err != nil {
		return h, err
	}
	switch {
	case count <= 0:
		return h, fmt.Errorf("frame count %d: %w", count, model.ErrFieldOutOfRange)
	case int(count) > d.maxFrames:
		return h, fmt.Errorf("frame count %d exceeds %d: %w", count, d.maxFrames, model.ErrTooManyFrames)
	}
	h.FrameCount = int(count)
	return h, nil
}

func (d *Decoder) text(rd *reader, what string) (string, error) {
	s, err := rd.string(what, d.maxString)
	if err != nil {
		return "", err
	}
	if !utf8.ValidString(s) {
		return "", fmt.Errorf("%s: invalid utf-8: %w", what, model.ErrMalformedFile)
	}
	return s, nil
}

func readCheckedFrame(rd *reader) (model.GhostFrame, error) {
	var (
		f   model.GhostFrame
		err error
	)
	if f.Timestamp, err = rd.checkedFloat32("timestamp", 0, MaxTimestamp); err != nil {
		return f, err
	}
	for i := range 3 {
		if f.Position[i], err = rd.checkedFloat32("position", -MaxPosition, MaxPosition); err != nil {
			return f, err
		}
	}
	var q [4]float32
	for i := range q {
		if q[i], err = rd.checkedFloat32("rotation", -MaxQuatComponent, MaxQuatComponent); err != nil {
			return f, err
		}
	}
	f.Rotation = mgl32.Quat{W: q[3], V: mgl32.Vec3{q[0], q[1], q[2]}}
	if f.SteerAngle, err = rd.checkedFloat32("steer angle", -MaxSteerAngle, MaxSteerAngle); err != nil {
		return f, err
	}
	if f.Speed, err = rd.checkedFloat32("speed", -MaxSpeed, MaxSpeed); err != nil {
		return f, err
	}
	if f.EngineRPM, err = rd.checkedFloat32("engine rpm", 0, MaxEngineRPM); err != nil {
		return f, err
	}
	if f.Gear, err = rd.int32("gear"); err != nil {
		return f, err
	}
	if f.Gear < MinGear || f.Gear > MaxGear {
		f.Gear = 0
	}
	flags, err := rd.byte("flags")
	if err != nil {
		return f, err
	}
	f.Flags = model.Flags(flags) & (model.FlagBraking | model.FlagBoost | model.FlagHeadlights)
	return f, nil
}
