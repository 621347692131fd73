package codec

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/chewxy/math32"

	"github.com/okian/ghostrun/internal/domain/model"
)

// reader pulls little-endian primitives from src. Short reads are reported as
// malformed files.
type reader struct {
	src     io.Reader
	scratch [8]byte
}

func (rd *reader) full(p []byte, what string) error {
	if _, err := io.ReadFull(rd.src, p); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return fmt.Errorf("%s: truncated: %w", what, model.ErrMalformedFile)
		}
		return fmt.Errorf("%s: %w", what, err)
	}
	return nil
}

func (rd *reader) byte(what string) (byte, error) {
	if err := rd.full(rd.scratch[:1], what); err != nil {
		return 0, err
	}
	return rd.scratch[0], nil
}

func (rd *reader) int32(what string) (int32, error) {
	if err := rd.full(rd.scratch[:4], what); err != nil {
		return 0, err
	}
	return int32(binary.LittleEndian.Uint32(rd.scratch[:4])), nil //nolint:gosec // two's complement on the wire
}

func (rd *reader) int64(what string) (int64, error) {
	if err := rd.full(rd.scratch[:8], what); err != nil {
		return 0, err
	}
	return int64(binary.LittleEndian.Uint64(rd.scratch[:8])), nil //nolint:gosec // two's complement on the wire
}

func (rd *reader) float32(what string) (float32, error) {
	if err := rd.full(rd.scratch[:4], what); err != nil {
		return 0, err
	}
	return math.Float32frombits(binary.LittleEndian.Uint32(rd.scratch[:4])), nil
}

// checkedFloat32 reads a float and requires it to be finite and within [lo, hi].
func (rd *reader) checkedFloat32(what string, lo, hi float32) (float32, error) {
	v, err := rd.float32(what)
	if err != nil {
		return 0, err
	}
	if math32.IsNaN(v) || math32.IsInf(v, 0) {
		return 0, fmt.Errorf("%s: not finite: %w", what, model.ErrFieldOutOfRange)
	}
	if v < lo || v > hi {
		return 0, fmt.Errorf("%s: %v outside [%v, %v]: %w", what, v, lo, hi, model.ErrFieldOutOfRange)
	}
	return v, nil
}

// length reads a base-128 varint string length of at most five bytes.
func (rd *reader) length(what string) (int, error) {
	var n uint64
	for shift := 0; ; shift += 7 {
		if shift >= maxVarintShift {
			return 0, fmt.Errorf("%s: bad length prefix: %w", what, model.ErrMalformedFile)
		}
		b, err := rd.byte(what)
		if err != nil {
			return 0, err
		}
		n |= uint64(b&0x7f) << shift
		if b&0x80 == 0 {
			break
		}
	}
	return int(n), nil //nolint:gosec // at most 35 bits
}

// string reads a length-prefixed string. maxLen <= 0 disables the length cap.
// Bytes are copied as they arrive, so a bogus length on a short file fails at
// end of input without a large allocation.
func (rd *reader) string(what string, maxLen int) (string, error) {
	n, err := rd.length(what)
	if err != nil {
		return "", err
	}
	if maxLen > 0 && n > maxLen {
		return "", fmt.Errorf("%s: length %d exceeds %d: %w", what, n, maxLen, model.ErrMalformedFile)
	}
	if n == 0 {
		return "", nil
	}
	var sb strings.Builder
	copied, err := io.CopyN(&sb, rd.src, int64(n))
	if err != nil {
		if errors.Is(err, io.EOF) {
			return "", fmt.Errorf("%s: %d of %d bytes: %w", what, copied, n, model.ErrMalformedFile)
		}
		return "", fmt.Errorf("%s: %w", what, err)
	}
	return sb.String(), nil
}
