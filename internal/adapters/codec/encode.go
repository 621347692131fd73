package codec

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/okian/ghostrun/internal/domain/model"
)

// Encode writes rec to w in the .ghost format.
func Encode(w io.Writer, rec *model.GhostRecording) error {
	if rec == nil {
		return fmt.Errorf("encode: %w", ErrNilRecording)
	}

	buf := bufferPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer bufferPool.Put(buf)

	buf.Grow(64 + len(rec.RouteID) + len(rec.CarName) + len(rec.Frames)*FrameSize)

	writeString(buf, Magic)
	writeInt32(buf, Version)
	writeString(buf, rec.RouteID)
	writeString(buf, rec.CarName)
	writeFloat32(buf, rec.TotalTime)
	writeInt64(buf, rec.RecordedAt)
	writeInt32(buf, int32(len(rec.Frames))) //nolint:gosec // bounded by the race timeout

	for i := range rec.Frames {
		f := &rec.Frames[i]
		writeFloat32(buf, f.Timestamp)
		writeFloat32(buf, f.Position[0])
		writeFloat32(buf, f.Position[1])
		writeFloat32(buf, f.Position[2])
		writeFloat32(buf, f.Rotation.V[0])
		writeFloat32(buf, f.Rotation.V[1])
		writeFloat32(buf, f.Rotation.V[2])
		writeFloat32(buf, f.Rotation.W)
		writeFloat32(buf, f.SteerAngle)
		writeFloat32(buf, f.Speed)
		writeFloat32(buf, f.EngineRPM)
		writeInt32(buf, f.Gear)
		buf.WriteByte(byte(f.Flags))
	}

	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("encode: write: %w", err)
	}
	return nil
}

// Marshal returns the encoded bytes of rec.
func Marshal(rec *model.GhostRecording) ([]byte, error) {
	var out bytes.Buffer
	if err := Encode(&out, rec); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

func writeString(buf *bytes.Buffer, s string) {
	var tmp [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(tmp[:], uint64(len(s)))
	buf.Write(tmp[:n])
	buf.WriteString(s)
}

func writeInt32(buf *bytes.Buffer, v int32) {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], uint32(v)) //nolint:gosec // two's complement on the wire
	buf.Write(tmp[:])
}

func writeInt64(buf *bytes.Buffer, v int64) {
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], uint64(v)) //nolint:gosec // two's complement on the wire
	buf.Write(tmp[:])
}

func writeFloat32(buf *bytes.Buffer, v float32) {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], math.Float32bits(v))
	buf.Write(tmp[:])
}
