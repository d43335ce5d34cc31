package camstream

import (
	"errors"
	"fmt"
	"io"
	"net"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/banshee-data/hazard.monitor/internal/monitoring"
)

// ReceiverState is the lifecycle state of a Receiver.
type ReceiverState int32

const (
	// ReceiverIdle means Start has not been called yet.
	ReceiverIdle ReceiverState = iota
	// ReceiverRunning means the decode loop is active.
	ReceiverRunning
	// ReceiverStopped means the loop has exited and will not restart.
	ReceiverStopped
)

func (s ReceiverState) String() string {
	switch s {
	case ReceiverIdle:
		return "idle"
	case ReceiverRunning:
		return "running"
	case ReceiverStopped:
		return "stopped"
	default:
		return fmt.Sprintf("ReceiverState(%d)", int32(s))
	}
}

// ReceiverConfig contains configuration options for the receiver.
type ReceiverConfig struct {
	Conn  net.Conn
	Cache *FrameCache

	// ReadTimeout is applied as a rolling read deadline so the stop flag
	// stays reachable while the stream is idle. Zero selects 100ms.
	ReadTimeout time.Duration

	// MaxSectionBytes bounds any single payload section (see FrameReaderConfig).
	MaxSectionBytes int
}

// Receiver owns the transport for one camera connection. It decodes frames
// on a dedicated goroutine and publishes each into the FrameCache. The loop
// never raises past its own boundary: callers observe termination through
// Running()/State(), not through a panic or returned error.
type Receiver struct {
	conn      net.Conn
	cache     *FrameCache
	timeout   time.Duration
	maxBytes  int
	sessionID string

	state    atomic.Int32
	stopFlag atomic.Bool
	done     chan struct{}
}

// NewReceiver creates a receiver for the given connection and cache.
func NewReceiver(config ReceiverConfig) (*Receiver, error) {
	if config.Conn == nil {
		return nil, errors.New("camstream: receiver requires a connection")
	}
	if config.Cache == nil {
		return nil, errors.New("camstream: receiver requires a frame cache")
	}

	timeout := config.ReadTimeout
	if timeout <= 0 {
		timeout = 100 * time.Millisecond
	}

	r := &Receiver{
		conn:      config.Conn,
		cache:     config.Cache,
		timeout:   timeout,
		maxBytes:  config.MaxSectionBytes,
		sessionID: uuid.NewString(),
		done:      make(chan struct{}),
	}
	r.state.Store(int32(ReceiverIdle))
	return r, nil
}

// SessionID identifies this connection's receive session in logs and the
// event store.
func (r *Receiver) SessionID() string { return r.sessionID }

// State returns the receiver's lifecycle state.
func (r *Receiver) State() ReceiverState {
	return ReceiverState(r.state.Load())
}

// Running reports whether the decode loop is still alive.
func (r *Receiver) Running() bool {
	return r.State() == ReceiverRunning
}

// Start launches the decode loop on its own goroutine. It may be called
// once per receiver.
func (r *Receiver) Start() error {
	if !r.state.CompareAndSwap(int32(ReceiverIdle), int32(ReceiverRunning)) {
		return fmt.Errorf("camstream: receiver already started (state %v)", r.State())
	}
	go r.run()
	return nil
}

// Stop requests a cooperative shutdown and waits for the loop to exit.
// A read in progress is not interrupted; the rolling read deadline makes
// the stop flag check reachable. Safe to call multiple times.
func (r *Receiver) Stop() {
	r.stopFlag.Store(true)
	if r.State() == ReceiverIdle {
		r.state.Store(int32(ReceiverStopped))
		return
	}
	<-r.done
}

// run is the Running-state cycle: read header, read payloads, publish.
func (r *Receiver) run() {
	defer close(r.done)
	defer r.state.Store(int32(ReceiverStopped))

	reader := NewFrameReader(&deadlineConn{conn: r.conn, timeout: r.timeout}, FrameReaderConfig{
		MaxSectionBytes: r.maxBytes,
		Stopping:        r.stopFlag.Load,
	})

	monitoring.Logf("receiver %s: started on %v", r.sessionID, r.conn.RemoteAddr())

	for !r.stopFlag.Load() {
		frame, err := reader.ReadFrame()
		if err != nil {
			switch {
			case errors.Is(err, io.EOF):
				monitoring.Logf("receiver %s: stream ended", r.sessionID)
			case errors.Is(err, ErrReaderStopped):
				// Stop() interrupted an idle wait; nothing to report.
			case errors.Is(err, ErrTruncatedFrame):
				monitoring.Logf("receiver %s: connection desynchronized: %v", r.sessionID, err)
			default:
				monitoring.Logf("receiver %s: transport error: %v", r.sessionID, err)
			}
			return
		}
		r.cache.Publish(frame)
	}
}

// deadlineConn applies a rolling read deadline before every read so the
// frame reader sees periodic timeouts instead of unbounded blocking.
type deadlineConn struct {
	conn    net.Conn
	timeout time.Duration
}

func (d *deadlineConn) Read(p []byte) (int, error) {
	if err := d.conn.SetReadDeadline(time.Now().Add(d.timeout)); err != nil {
		return 0, fmt.Errorf("set read deadline: %w", err)
	}
	return d.conn.Read(p)
}
