package camstream

import (
	"errors"
	"fmt"
	"io"
	"net"

	"github.com/banshee-data/hazard.monitor/internal/monitoring"
)

// Sentinel errors surfaced by FrameReader.ReadFrame. An orderly end of
// stream is reported as io.EOF, never as an error condition of its own.
var (
	// ErrTruncatedFrame means the stream closed mid-payload. This
	// desynchronizes framing, so it is fatal to the connection, not just
	// to the frame.
	ErrTruncatedFrame = errors.New("camstream: stream truncated inside frame payload")

	// ErrFrameTooLarge means a header announced a payload section beyond
	// the configured bound, which only happens on corrupt or hostile input.
	ErrFrameTooLarge = errors.New("camstream: frame payload exceeds size limit")

	// ErrReaderStopped means a cooperative stop was requested while the
	// reader was waiting out a read timeout.
	ErrReaderStopped = errors.New("camstream: reader stopped")
)

// FrameReaderConfig contains configuration options for the frame reader.
type FrameReaderConfig struct {
	// MaxSectionBytes bounds any single payload section. Zero selects a
	// 64MiB default.
	MaxSectionBytes int

	// Stopping, when non-nil, is polled while waiting out read timeouts
	// so a cooperative stop can interrupt an idle stream.
	Stopping func() bool
}

// FrameReader decodes a sequence of frames from a byte stream. Timeout
// errors from a deadline-configured source are retried in place; real
// transport errors end the sequence.
type FrameReader struct {
	r        io.Reader
	maxBytes int
	stopping func() bool
}

// NewFrameReader creates a frame reader over r with the provided configuration.
func NewFrameReader(r io.Reader, config FrameReaderConfig) *FrameReader {
	maxBytes := config.MaxSectionBytes
	if maxBytes <= 0 {
		maxBytes = 64 * 1024 * 1024
	}
	stopping := config.Stopping
	if stopping == nil {
		stopping = func() bool { return false }
	}
	return &FrameReader{r: r, maxBytes: maxBytes, stopping: stopping}
}

// ReadFrame reads one header and its payload sections and returns the
// decoded frame.
//
// Error contract: io.EOF means the stream ended cleanly at a frame
// boundary (a short header read counts as clean shutdown). Any error
// after the header is fatal to the connection. Per-channel decode
// mismatches are not errors: the channel is simply absent from the
// returned frame, and the failure is logged.
func (fr *FrameReader) ReadFrame() (*DecodedFrame, error) {
	var headerBuf [HeaderSize]byte
	if err := fr.readFull(headerBuf[:]); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			// Stream closed before a complete header: orderly shutdown.
			return nil, io.EOF
		}
		return nil, err
	}

	header, err := DecodeFrameHeader(headerBuf[:])
	if err != nil {
		return nil, err
	}

	for _, size := range []uint32{header.DepthSize, header.ColorSize, header.IRSize} {
		if int(size) > fr.maxBytes {
			return nil, fmt.Errorf("%w: section of %d bytes in frame %d", ErrFrameTooLarge, size, header.FrameID)
		}
	}

	frame := &DecodedFrame{
		FrameID:   header.FrameID,
		Timestamp: header.Timestamp,
	}

	if header.DepthSize > 0 {
		payload, err := fr.readSection(int(header.DepthSize))
		if err != nil {
			return nil, err
		}
		if depth, err := decodeDepth(payload, int(header.DepthWidth), int(header.DepthHeight)); err != nil {
			monitoring.Logf("frame %d: dropping depth channel: %v", header.FrameID, err)
		} else {
			frame.Depth = depth
			frame.DepthWidth = int(header.DepthWidth)
			frame.DepthHeight = int(header.DepthHeight)
		}
	}

	if header.ColorSize > 0 {
		payload, err := fr.readSection(int(header.ColorSize))
		if err != nil {
			return nil, err
		}
		if color, err := decodeColor(payload, int(header.ColorWidth), int(header.ColorHeight)); err != nil {
			monitoring.Logf("frame %d: dropping color channel: %v", header.FrameID, err)
		} else {
			frame.Color = color
			frame.ColorWidth = int(header.ColorWidth)
			frame.ColorHeight = int(header.ColorHeight)
		}
	}

	if header.IRSize > 0 {
		payload, err := fr.readSection(int(header.IRSize))
		if err != nil {
			return nil, err
		}
		if ir, err := decodeIR(payload, int(header.IRWidth), int(header.IRHeight)); err != nil {
			monitoring.Logf("frame %d: dropping infrared channel: %v", header.FrameID, err)
		} else {
			frame.IR = ir
			frame.IRWidth = int(header.IRWidth)
			frame.IRHeight = int(header.IRHeight)
		}
	}

	// A frame with every channel absent is still a successful decode as
	// long as the header itself parsed.
	return frame, nil
}

// readSection reads exactly n payload bytes. A short read here leaves the
// stream desynchronized, so it maps to ErrTruncatedFrame.
func (fr *FrameReader) readSection(n int) ([]byte, error) {
	buf := make([]byte, n)
	if err := fr.readFull(buf); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, ErrTruncatedFrame
		}
		return nil, err
	}
	return buf, nil
}

// readFull fills buf completely, retrying the same read across transport
// timeouts so a deadline-configured connection behaves like a blocking one.
// The stop predicate is checked on every timeout to keep cooperative
// shutdown reachable.
func (fr *FrameReader) readFull(buf []byte) error {
	read := 0
	for read < len(buf) {
		n, err := fr.r.Read(buf[read:])
		read += n
		if err == nil {
			continue
		}
		if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
			if fr.stopping() {
				return ErrReaderStopped
			}
			continue
		}
		if errors.Is(err, io.EOF) && read > 0 && read < len(buf) {
			return io.ErrUnexpectedEOF
		}
		return err
	}
	return nil
}
