package camstream

import (
	"encoding/binary"
	"testing"
)

func TestClassifyColorPayload(t *testing.T) {
	const w, h = 8, 4
	tests := []struct {
		name string
		size int
		want ColorFormat
	}{
		{"packed BGR", w * h * 3, ColorFormatBGR24},
		{"4:2:2 macropixel", w * h * 2, ColorFormatYUV422},
		{"bare luma plane", w * h, ColorFormatUnknown},
		{"empty", 0, ColorFormatUnknown},
		{"off by one", w*h*3 + 1, ColorFormatUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classifyColorPayload(tt.size, w, h); got != tt.want {
				t.Errorf("classifyColorPayload(%d) = %v, want %v", tt.size, got, tt.want)
			}
		})
	}
}

func TestDecodeDepth(t *testing.T) {
	const w, h = 3, 2
	payload := make([]byte, w*h*2)
	for i := 0; i < w*h; i++ {
		binary.LittleEndian.PutUint16(payload[i*2:], uint16(1000+i))
	}

	samples, err := decodeDepth(payload, w, h)
	if err != nil {
		t.Fatalf("decodeDepth: %v", err)
	}
	if len(samples) != w*h {
		t.Fatalf("got %d samples, want %d", len(samples), w*h)
	}
	for i, s := range samples {
		if s != uint16(1000+i) {
			t.Errorf("sample[%d] = %d, want %d", i, s, 1000+i)
		}
	}
}

func TestDecodeDepthSizeMismatch(t *testing.T) {
	if _, err := decodeDepth(make([]byte, 10), 3, 2); err == nil {
		t.Error("expected error for wrong depth payload size")
	}
}

func TestDecodeColorBGRPassthrough(t *testing.T) {
	const w, h = 2, 2
	payload := []byte{
		1, 2, 3, 4, 5, 6,
		7, 8, 9, 10, 11, 12,
	}

	got, err := decodeColor(payload, w, h)
	if err != nil {
		t.Fatalf("decodeColor: %v", err)
	}
	for i := range payload {
		if got[i] != payload[i] {
			t.Fatalf("byte %d = %d, want %d (BGR payload must pass through unmodified)", i, got[i], payload[i])
		}
	}

	// Must be a copy, not an alias of the wire buffer.
	payload[0] = 99
	if got[0] == 99 {
		t.Error("decoded color aliases the input payload")
	}
}

func TestDecodeColorYUV422(t *testing.T) {
	const w, h = 2, 1
	// One YUYV macropixel with neutral chroma: output stays grey.
	payload := []byte{128, 128, 200, 128}

	got, err := decodeColor(payload, w, h)
	if err != nil {
		t.Fatalf("decodeColor: %v", err)
	}
	if len(got) != w*h*3 {
		t.Fatalf("got %d bytes, want %d", len(got), w*h*3)
	}

	// Neutral chroma: B == G == R within each pixel.
	if got[0] != got[1] || got[1] != got[2] {
		t.Errorf("pixel 0 = %v, want grey", got[0:3])
	}
	if got[3] != got[4] || got[4] != got[5] {
		t.Errorf("pixel 1 = %v, want grey", got[3:6])
	}
	// Second pixel carries the brighter luma sample.
	if got[3] <= got[0] {
		t.Errorf("pixel 1 luma %d not brighter than pixel 0 luma %d", got[3], got[0])
	}
}

func TestDecodeColorUnknownSize(t *testing.T) {
	if _, err := decodeColor(make([]byte, 7), 2, 2); err == nil {
		t.Error("expected error for unknown color payload size")
	}
}

func TestConvertYUV422OddWidth(t *testing.T) {
	if _, err := convertYUV422(make([]byte, 6), 3, 1, OrderYUYV); err == nil {
		t.Error("expected error for odd width")
	}
}

func TestConvertYUV422Orders(t *testing.T) {
	// The same logical sample encoded in both orderings must decode to the
	// same BGR values.
	yuyv := []byte{90, 100, 150, 160}
	uyvy := []byte{100, 90, 160, 150}

	a, err := convertYUV422(yuyv, 2, 1, OrderYUYV)
	if err != nil {
		t.Fatalf("YUYV conversion: %v", err)
	}
	b, err := convertYUV422(uyvy, 2, 1, OrderUYVY)
	if err != nil {
		t.Fatalf("UYVY conversion: %v", err)
	}

	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("byte %d differs: YUYV=%d UYVY=%d", i, a[i], b[i])
		}
	}
}

func TestDecodeIR(t *testing.T) {
	payload := []byte{10, 20, 30, 40, 50, 60}
	got, err := decodeIR(payload, 3, 2)
	if err != nil {
		t.Fatalf("decodeIR: %v", err)
	}
	if len(got) != 6 || got[0] != 10 || got[5] != 60 {
		t.Errorf("decodeIR = %v, want copy of payload", got)
	}

	if _, err := decodeIR(payload, 4, 2); err == nil {
		t.Error("expected error for wrong infrared payload size")
	}
}
