package camstream

import (
	"encoding/binary"
	"fmt"
)

// ColorFormat identifies the payload encoding of the color section,
// determined purely by the section's byte size relative to its dimensions.
type ColorFormat int

const (
	// ColorFormatUnknown means the section size matches no accepted encoding.
	ColorFormatUnknown ColorFormat = iota
	// ColorFormatBGR24 is packed 3-byte pixels already in display order.
	ColorFormatBGR24
	// ColorFormatYUV422 is a 2-byte-per-pixel 4:2:2 macropixel encoding.
	ColorFormatYUV422
)

// MacropixelOrder names the byte layout of one 4-byte 4:2:2 macropixel.
type MacropixelOrder int

const (
	// OrderYUYV lays out a macropixel as Y0 U Y1 V.
	OrderYUYV MacropixelOrder = iota
	// OrderUYVY lays out a macropixel as U Y0 V Y1.
	OrderUYVY
)

func (o MacropixelOrder) String() string {
	switch o {
	case OrderYUYV:
		return "YUYV"
	case OrderUYVY:
		return "UYVY"
	default:
		return fmt.Sprintf("MacropixelOrder(%d)", int(o))
	}
}

// classifyColorPayload maps a section size onto an accepted color encoding.
// This replaces trial-decode sniffing: the dispatch is a pure size lookup.
func classifyColorPayload(size, width, height int) ColorFormat {
	switch size {
	case width * height * BytesPerColorPixel:
		return ColorFormatBGR24
	case width * height * BytesPerMacropixelSample:
		return ColorFormatYUV422
	default:
		return ColorFormatUnknown
	}
}

// decodeDepth reinterprets a depth payload as height×width uint16 samples.
// A size mismatch fails the depth channel only, not the frame.
func decodeDepth(payload []byte, width, height int) ([]uint16, error) {
	want := width * height * BytesPerDepthSample
	if len(payload) != want {
		return nil, fmt.Errorf("depth payload %d bytes, want %d for %dx%d", len(payload), want, width, height)
	}

	samples := make([]uint16, width*height)
	for i := range samples {
		samples[i] = binary.LittleEndian.Uint16(payload[i*2 : i*2+2])
	}
	return samples, nil
}

// decodeColor converts a color payload to packed BGR24, dispatching on the
// section size. BGR24 passes through untouched; 4:2:2 payloads are
// converted, attempting YUYV ordering first and falling back to UYVY.
func decodeColor(payload []byte, width, height int) ([]byte, error) {
	switch classifyColorPayload(len(payload), width, height) {
	case ColorFormatBGR24:
		out := make([]byte, len(payload))
		copy(out, payload)
		return out, nil
	case ColorFormatYUV422:
		bgr, err := convertYUV422(payload, width, height, OrderYUYV)
		if err == nil {
			return bgr, nil
		}
		bgr, err2 := convertYUV422(payload, width, height, OrderUYVY)
		if err2 == nil {
			return bgr, nil
		}
		return nil, fmt.Errorf("4:2:2 conversion failed: %v; %v", err, err2)
	default:
		return nil, fmt.Errorf("unknown color format: size=%d, expected %d or %d",
			len(payload), width*height*BytesPerColorPixel, width*height*BytesPerMacropixelSample)
	}
}

// decodeIR reinterprets an infrared payload as height×width uint8 samples.
func decodeIR(payload []byte, width, height int) ([]byte, error) {
	want := width * height
	if len(payload) != want {
		return nil, fmt.Errorf("infrared payload %d bytes, want %d for %dx%d", len(payload), want, width, height)
	}

	out := make([]byte, want)
	copy(out, payload)
	return out, nil
}

// convertYUV422 expands a 4:2:2 macropixel payload into packed BGR24 using
// BT.601 coefficients. Each 4-byte macropixel carries two luma samples and
// one shared chroma pair, so the width must be even.
func convertYUV422(payload []byte, width, height int, order MacropixelOrder) ([]byte, error) {
	if width%2 != 0 {
		return nil, fmt.Errorf("4:2:2 requires even width, got %d", width)
	}
	if len(payload) != width*height*BytesPerMacropixelSample {
		return nil, fmt.Errorf("4:2:2 payload %d bytes, want %d", len(payload), width*height*BytesPerMacropixelSample)
	}

	out := make([]byte, width*height*BytesPerColorPixel)
	for i := 0; i < len(payload); i += 4 {
		var y0, u, y1, v byte
		switch order {
		case OrderYUYV:
			y0, u, y1, v = payload[i], payload[i+1], payload[i+2], payload[i+3]
		case OrderUYVY:
			u, y0, v, y1 = payload[i], payload[i+1], payload[i+2], payload[i+3]
		default:
			return nil, fmt.Errorf("unsupported macropixel order %v", order)
		}

		j := (i / 4) * 2 * BytesPerColorPixel
		writeBGRPixel(out[j:j+3], y0, u, v)
		writeBGRPixel(out[j+3:j+6], y1, u, v)
	}
	return out, nil
}

// writeBGRPixel converts one YUV sample to BGR using the integer BT.601
// approximation (ITU-R studio swing).
func writeBGRPixel(dst []byte, y, u, v byte) {
	c := int(y) - 16
	d := int(u) - 128
	e := int(v) - 128

	r := (298*c + 409*e + 128) >> 8
	g := (298*c - 100*d - 208*e + 128) >> 8
	b := (298*c + 516*d + 128) >> 8

	dst[0] = clampByte(b)
	dst[1] = clampByte(g)
	dst[2] = clampByte(r)
}

func clampByte(v int) byte {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return byte(v)
}
