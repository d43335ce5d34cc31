package camstream

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/banshee-data/hazard.monitor/internal/monitoring"
)

func init() {
	// Channel-drop logging is exercised deliberately in these tests.
	monitoring.SetLogger(nil)
}

// buildWireFrame serializes a header plus raw payload sections.
func buildWireFrame(header FrameHeader, sections ...[]byte) []byte {
	buf := header.Encode()
	out := append([]byte(nil), buf[:]...)
	for _, s := range sections {
		out = append(out, s...)
	}
	return out
}

func depthPayload(samples []uint16) []byte {
	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(out[i*2:], s)
	}
	return out
}

func TestReadFrameAllChannels(t *testing.T) {
	const w, h = 2, 2
	depth := []uint16{500, 1500, 2500, 3500}
	color := []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}
	ir := []byte{9, 8, 7, 6}

	header := FrameHeader{
		Timestamp:   12345,
		FrameID:     7,
		DepthWidth:  w, DepthHeight: h, DepthSize: uint32(len(depth) * 2),
		ColorWidth: w, ColorHeight: h, ColorSize: uint32(len(color)),
		IRWidth: w, IRHeight: h, IRSize: uint32(len(ir)),
	}
	wire := buildWireFrame(header, depthPayload(depth), color, ir)

	fr := NewFrameReader(bytes.NewReader(wire), FrameReaderConfig{})
	frame, err := fr.ReadFrame()
	if err != nil {
		t.Fatalf("ReadFrame: %v", err)
	}

	want := &DecodedFrame{
		FrameID:   7,
		Timestamp: 12345,
		Depth:     depth, DepthWidth: w, DepthHeight: h,
		Color: color, ColorWidth: w, ColorHeight: h,
		IR: ir, IRWidth: w, IRHeight: h,
	}
	if diff := cmp.Diff(want, frame); diff != "" {
		t.Errorf("decoded frame mismatch (-want +got):\n%s", diff)
	}

	// The stream is exhausted: next read is an orderly end.
	if _, err := fr.ReadFrame(); !errors.Is(err, io.EOF) {
		t.Errorf("second ReadFrame error = %v, want io.EOF", err)
	}
}

func TestReadFrameSequence(t *testing.T) {
	var wire []byte
	for id := uint32(1); id <= 3; id++ {
		header := FrameHeader{FrameID: id, DepthWidth: 1, DepthHeight: 1, DepthSize: 2}
		wire = append(wire, buildWireFrame(header, depthPayload([]uint16{uint16(id * 100)}))...)
	}

	fr := NewFrameReader(bytes.NewReader(wire), FrameReaderConfig{})
	for id := uint32(1); id <= 3; id++ {
		frame, err := fr.ReadFrame()
		if err != nil {
			t.Fatalf("frame %d: %v", id, err)
		}
		if frame.FrameID != id {
			t.Errorf("frame ID = %d, want %d", frame.FrameID, id)
		}
		if frame.Depth[0] != uint16(id*100) {
			t.Errorf("frame %d depth = %d, want %d", id, frame.Depth[0], id*100)
		}
	}
}

func TestReadFrameShortHeaderIsEOF(t *testing.T) {
	tests := []struct {
		name string
		wire []byte
	}{
		{"empty stream", nil},
		{"partial header", make([]byte, HeaderSize/2)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fr := NewFrameReader(bytes.NewReader(tt.wire), FrameReaderConfig{})
			if _, err := fr.ReadFrame(); !errors.Is(err, io.EOF) {
				t.Errorf("ReadFrame error = %v, want io.EOF", err)
			}
		})
	}
}

func TestReadFrameTruncatedPayloadIsFatal(t *testing.T) {
	header := FrameHeader{FrameID: 1, DepthWidth: 4, DepthHeight: 4, DepthSize: 32}
	wire := buildWireFrame(header, make([]byte, 10)) // 22 bytes short

	fr := NewFrameReader(bytes.NewReader(wire), FrameReaderConfig{})
	if _, err := fr.ReadFrame(); !errors.Is(err, ErrTruncatedFrame) {
		t.Errorf("ReadFrame error = %v, want ErrTruncatedFrame", err)
	}
}

func TestReadFrameOversizedSectionRejected(t *testing.T) {
	header := FrameHeader{FrameID: 1, DepthWidth: 10, DepthHeight: 10, DepthSize: 1 << 20}
	wire := buildWireFrame(header)

	fr := NewFrameReader(bytes.NewReader(wire), FrameReaderConfig{MaxSectionBytes: 1024})
	if _, err := fr.ReadFrame(); !errors.Is(err, ErrFrameTooLarge) {
		t.Errorf("ReadFrame error = %v, want ErrFrameTooLarge", err)
	}
}

func TestReadFrameChannelMismatchDegrades(t *testing.T) {
	// Depth size field disagrees with dimensions: section is consumed,
	// channel is absent, frame still decodes.
	header := FrameHeader{
		FrameID:    9,
		DepthWidth: 4, DepthHeight: 4, DepthSize: 10, // want 32
		IRWidth: 2, IRHeight: 2, IRSize: 4,
	}
	wire := buildWireFrame(header, make([]byte, 10), []byte{1, 2, 3, 4})

	fr := NewFrameReader(bytes.NewReader(wire), FrameReaderConfig{})
	frame, err := fr.ReadFrame()
	if err != nil {
		t.Fatalf("ReadFrame: %v", err)
	}
	if frame.HasDepth() {
		t.Error("depth decoded despite size mismatch")
	}
	if !frame.HasIR() {
		t.Error("infrared channel lost alongside the depth mismatch")
	}
}

func TestReadFrameAllChannelsAbsent(t *testing.T) {
	header := FrameHeader{FrameID: 3, Timestamp: 99}
	wire := buildWireFrame(header)

	fr := NewFrameReader(bytes.NewReader(wire), FrameReaderConfig{})
	frame, err := fr.ReadFrame()
	if err != nil {
		t.Fatalf("ReadFrame: %v (a header-only frame is a successful decode)", err)
	}
	if frame.HasDepth() || frame.HasColor() || frame.HasIR() {
		t.Error("expected all channels absent")
	}
	if frame.FrameID != 3 || frame.Timestamp != 99 {
		t.Errorf("metadata = (%d, %d), want (3, 99)", frame.FrameID, frame.Timestamp)
	}
}

func TestReadFrameUnknownColorFormatDegrades(t *testing.T) {
	const w, h = 4, 2
	header := FrameHeader{FrameID: 5, ColorWidth: w, ColorHeight: h, ColorSize: w * h} // matches neither encoding
	wire := buildWireFrame(header, make([]byte, w*h))

	fr := NewFrameReader(bytes.NewReader(wire), FrameReaderConfig{})
	frame, err := fr.ReadFrame()
	if err != nil {
		t.Fatalf("ReadFrame: %v", err)
	}
	if frame.HasColor() {
		t.Error("color decoded despite unknown format size")
	}
}
