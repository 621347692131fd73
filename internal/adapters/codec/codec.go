// Package codec reads and writes the binary .ghost format.
//
// Layout, little-endian throughout:
//
//	magic       string "GHOST"
//	version     int32 (1)
//	routeId     string
//	carName     string
//	totalTime   float32
//	recordedAt  int64
//	frameCount  int32
//	frames      frameCount x {timestamp f32, pos f32x3, rot f32x4 (x,y,z,w),
//	                          steer f32, speed f32, rpm f32, gear i32, flags u8}
//
// Strings carry a base-128 varint byte length followed by UTF-8 bytes. Personal
// files are written and read in trusted mode; files from other players are read
// with a Decoder, which validates every field.
package codec

import (
	"bytes"
	"sync"
)

// Format constants.
const (
	Magic   = "GHOST"
	Version = int32(1)
)

// Limits applied by untrusted decoding.
const (
	MaxStringLength  = 256
	MaxFrames        = 100000
	MinTotalTime     = float32(5)
	MaxTotalTime     = float32(1800)
	MaxTimestamp     = float32(1800)
	MaxPosition      = float32(50000)
	MaxQuatComponent = float32(1.5)
	MaxSteerAngle    = float32(90)
	MaxSpeed         = float32(500)
	MaxEngineRPM     = float32(20000)
	MinGear          = int32(-1)
	MaxGear          = int32(10)

	// TimestampEpsilon is added to the previous timestamp when a frame goes backwards.
	TimestampEpsilon = float32(0.001)

	maxMagicLength = 10
	// varint length prefixes carry at most 35 bits.
	maxVarintShift = 35
)

// FrameSize is the encoded size of one frame in bytes.
const FrameSize = 4 + 3*4 + 4*4 + 4 + 4 + 4 + 4 + 1

var bufferPool = sync.Pool{ //nolint:gochecknoglobals // encode buffers
	New: func() any { return new(bytes.Buffer) },
}
