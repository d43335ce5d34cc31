package camstream

// DecodedFrame holds the channels decoded from one wire frame. Any channel
// may be absent (nil slice). A DecodedFrame is immutable once returned by
// the reader: it is constructed by the receiver goroutine, published into
// the FrameCache, and superseded by the next successful decode.
type DecodedFrame struct {
	FrameID   uint32
	Timestamp uint64

	// Depth holds raw uint16 readings (millimetres) in row-major order,
	// DepthHeight rows of DepthWidth samples. Nil when absent.
	Depth       []uint16
	DepthWidth  int
	DepthHeight int

	// Color holds packed BGR24 pixels in row-major order, ready for
	// display with no further conversion. Nil when absent.
	Color       []byte
	ColorWidth  int
	ColorHeight int

	// IR holds uint8 intensity samples in row-major order. Nil when absent.
	IR       []byte
	IRWidth  int
	IRHeight int
}

// HasDepth reports whether the depth channel decoded successfully.
func (f *DecodedFrame) HasDepth() bool { return f.Depth != nil }

// HasColor reports whether the color channel decoded successfully.
func (f *DecodedFrame) HasColor() bool { return f.Color != nil }

// HasIR reports whether the infrared channel decoded successfully.
func (f *DecodedFrame) HasIR() bool { return f.IR != nil }
