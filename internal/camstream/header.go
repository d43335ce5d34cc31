package camstream

import (
	"encoding/binary"
	"fmt"
)

// Frame stream wire format constants.
//
// Each frame on the wire is a fixed 48-byte header followed by up to three
// payload sections (depth, color, infrared), each present only when its
// size field is non-zero. All header fields are little-endian.
const (
	// HeaderSize is the exact byte length of a frame header:
	// one uint64 timestamp plus ten uint32 fields.
	HeaderSize = 8 + 10*4

	// BytesPerDepthSample is the size of one raw depth reading (uint16, millimetres).
	BytesPerDepthSample = 2

	// BytesPerColorPixel is the size of one packed BGR24 pixel.
	BytesPerColorPixel = 3

	// BytesPerMacropixelSample is the per-pixel size of 4:2:2 packed color,
	// where two horizontally adjacent pixels share one chroma pair.
	BytesPerMacropixelSample = 2
)

// FrameHeader is the fixed-layout metadata record that precedes every
// frame's payload sections. Field order matches the wire exactly.
type FrameHeader struct {
	Timestamp uint64
	FrameID   uint32

	DepthWidth  uint32
	DepthHeight uint32
	DepthSize   uint32

	ColorWidth  uint32
	ColorHeight uint32
	ColorSize   uint32

	IRWidth  uint32
	IRHeight uint32
	IRSize   uint32
}

// Encode serializes the header into its 48-byte wire representation.
func (h *FrameHeader) Encode() [HeaderSize]byte {
	var buf [HeaderSize]byte
	binary.LittleEndian.PutUint64(buf[0:8], h.Timestamp)
	binary.LittleEndian.PutUint32(buf[8:12], h.FrameID)
	binary.LittleEndian.PutUint32(buf[12:16], h.DepthWidth)
	binary.LittleEndian.PutUint32(buf[16:20], h.DepthHeight)
	binary.LittleEndian.PutUint32(buf[20:24], h.DepthSize)
	binary.LittleEndian.PutUint32(buf[24:28], h.ColorWidth)
	binary.LittleEndian.PutUint32(buf[28:32], h.ColorHeight)
	binary.LittleEndian.PutUint32(buf[32:36], h.ColorSize)
	binary.LittleEndian.PutUint32(buf[36:40], h.IRWidth)
	binary.LittleEndian.PutUint32(buf[40:44], h.IRHeight)
	binary.LittleEndian.PutUint32(buf[44:48], h.IRSize)
	return buf
}

// DecodeFrameHeader parses a 48-byte buffer into a FrameHeader.
func DecodeFrameHeader(buf []byte) (FrameHeader, error) {
	if len(buf) < HeaderSize {
		return FrameHeader{}, fmt.Errorf("header buffer too short: %d bytes (need %d)", len(buf), HeaderSize)
	}

	return FrameHeader{
		Timestamp:   binary.LittleEndian.Uint64(buf[0:8]),
		FrameID:     binary.LittleEndian.Uint32(buf[8:12]),
		DepthWidth:  binary.LittleEndian.Uint32(buf[12:16]),
		DepthHeight: binary.LittleEndian.Uint32(buf[16:20]),
		DepthSize:   binary.LittleEndian.Uint32(buf[20:24]),
		ColorWidth:  binary.LittleEndian.Uint32(buf[24:28]),
		ColorHeight: binary.LittleEndian.Uint32(buf[28:32]),
		ColorSize:   binary.LittleEndian.Uint32(buf[32:36]),
		IRWidth:     binary.LittleEndian.Uint32(buf[36:40]),
		IRHeight:    binary.LittleEndian.Uint32(buf[40:44]),
		IRSize:      binary.LittleEndian.Uint32(buf[44:48]),
	}, nil
}

// PayloadSize returns the total number of payload bytes that follow this
// header on the wire.
func (h *FrameHeader) PayloadSize() int {
	return int(h.DepthSize) + int(h.ColorSize) + int(h.IRSize)
}
