package link

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/roman-kulish/ardrone-link/internal/navdata"
	"github.com/roman-kulish/ardrone-link/internal/telemetry"
)

const (
	// NavdataPort is the drone's UDP port streaming navdata
	NavdataPort = 5554

	// KeepAliveInterval is the default interval between two request-telemetry signals
	KeepAliveInterval = 200 * time.Millisecond

	// ReadTimeout is the default time without any datagram after which the link is considered idle
	ReadTimeout = 2 * time.Second

	// ReadErrorsThreshold defines the number of consecutive read errors allowed
	ReadErrorsThreshold = 5

	maxDatagramSize = 4096
)

// requestSignal asks the drone to (keep) streaming navdata
var requestSignal = []byte{0x01}

// Snapshot is the state published after each accepted frame. It is never mutated once published.
type Snapshot struct {
	Header        navdata.Header
	Data          navdata.DroneData // carried over from the previous snapshot when the frame had no demo record
	HasData       bool
	ChecksumValid bool
	ReceivedAt    time.Time
}

// Stats are the receive loop counters
type Stats struct {
	Frames             uint64 // published snapshots
	Rejected           uint64 // datagrams that failed to decode or were dropped by the checksum policy
	ChecksumMismatches uint64
	Timeouts           uint64
	KeepAlives         uint64 // request-telemetry signals sent, including the initial one
}

// WithReceiverLogger sets the logger for the receiver
func WithReceiverLogger(logger *slog.Logger) func(r *Receiver) {
	return func(r *Receiver) {
		r.logger = logger.With(slog.String("component", "receiver"), slog.String("drone", r.drone.String()))
	}
}

// WithKeepAliveInterval sets the interval between two request-telemetry signals
func WithKeepAliveInterval(interval time.Duration) func(r *Receiver) {
	return func(r *Receiver) {
		if interval > 0 {
			r.keepAliveInterval = interval
		}
	}
}

// WithReadTimeout sets how long the receiver waits for a datagram before it re-requests telemetry
func WithReadTimeout(timeout time.Duration) func(r *Receiver) {
	return func(r *Receiver) {
		if timeout > 0 {
			r.readTimeout = timeout
		}
	}
}

// WithReadErrorsThreshold sets the threshold for consecutive read errors
func WithReadErrorsThreshold(threshold uint8) func(r *Receiver) {
	return func(r *Receiver) {
		r.readErrorsThreshold = max(threshold, 1)
	}
}

// WithStrictChecksum drops frames whose checksum is missing or does not match,
// instead of publishing them flagged
func WithStrictChecksum(strict bool) func(r *Receiver) {
	return func(r *Receiver) {
		r.strictChecksum = strict
	}
}

// Receiver runs the navdata receive loop: it keeps the telemetry stream alive,
// decodes incoming frames and publishes the latest state.
type Receiver struct {
	conn   net.PacketConn
	drone  net.Addr
	closer io.Closer

	keepAliveInterval   time.Duration
	readTimeout         time.Duration
	readErrorsThreshold uint8
	strictChecksum      bool

	snapshot     atomic.Pointer[Snapshot]
	lastSequence atomic.Uint32

	frames     atomic.Uint64
	rejected   atomic.Uint64
	mismatches atomic.Uint64
	timeouts   atomic.Uint64
	keepAlives atomic.Uint64

	isRunning atomic.Bool
	mu        sync.Mutex
	cancel    context.CancelFunc
	wg        sync.WaitGroup

	logger *slog.Logger
}

// NewReceiver creates a receiver reading from conn and sending request signals to drone.
// The caller keeps ownership of conn.
func NewReceiver(conn net.PacketConn, drone net.Addr, options ...func(r *Receiver)) *Receiver {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil)) // nil logger

	r := Receiver{
		conn:                conn,
		drone:               drone,
		keepAliveInterval:   KeepAliveInterval,
		readTimeout:         ReadTimeout,
		readErrorsThreshold: ReadErrorsThreshold,
		logger:              logger,
	}

	for _, option := range options {
		option(&r)
	}

	return &r
}

// ListenTelemetry binds localAddr and returns a receiver for the drone at droneAddr owning the socket
func ListenTelemetry(ctx context.Context, localAddr, droneAddr string, options ...func(r *Receiver)) (*Receiver, error) {
	drone, err := net.ResolveUDPAddr("udp", droneAddr)
	if err != nil {
		return nil, fmt.Errorf("error resolving drone address: %w", err)
	}

	var lc net.ListenConfig

	conn, err := lc.ListenPacket(ctx, "udp", localAddr)
	if err != nil {
		return nil, fmt.Errorf("error opening telemetry socket: %w", err)
	}

	r := NewReceiver(conn, drone, options...)
	r.closer = conn

	return r, nil
}

// Run executes the receive loop until ctx is cancelled, in which case it returns nil.
//
// Receive timeouts and undecodable datagrams never end the loop. It only fails with
// ErrLinkClosed when the socket is closed and with ErrTooManyReadErrors when reads
// keep failing for another reason.
func (r *Receiver) Run(ctx context.Context) error {
	stop := context.AfterFunc(ctx, func() {
		_ = r.conn.SetReadDeadline(time.Now()) // unblock the pending read
	})
	defer stop()

	if err := r.requestTelemetry(); errors.Is(err, net.ErrClosed) {
		return ErrLinkClosed
	}

	lastKeepAlive := time.Now()
	idleSince := lastKeepAlive

	buf := make([]byte, maxDatagramSize)
	var readErrors uint8

	for {
		if ctx.Err() != nil {
			return nil
		}

		if now := time.Now(); now.Sub(lastKeepAlive) >= r.keepAliveInterval {
			if err := r.requestTelemetry(); errors.Is(err, net.ErrClosed) {
				return ErrLinkClosed
			}
			lastKeepAlive = now
		}

		deadline := earliest(lastKeepAlive.Add(r.keepAliveInterval), idleSince.Add(r.readTimeout))
		if err := r.conn.SetReadDeadline(deadline); err != nil {
			if errors.Is(err, net.ErrClosed) {
				return ErrLinkClosed
			}
			return fmt.Errorf("error setting read deadline: %w", err)
		}

		n, addr, err := r.conn.ReadFrom(buf)
		if err != nil {
			switch {
			case ctx.Err() != nil:
				return nil

			case errors.Is(err, net.ErrClosed):
				return ErrLinkClosed

			case isTimeout(err):
				if time.Since(idleSince) < r.readTimeout {
					continue // woke up for the keep-alive
				}

				r.timeouts.Add(1)
				r.logger.Debug("navdata receive timeout, requesting telemetry again")

				if err := r.requestTelemetry(); errors.Is(err, net.ErrClosed) {
					return ErrLinkClosed
				}
				lastKeepAlive = time.Now()
				idleSince = lastKeepAlive
				continue

			default:
				readErrors++
				r.logger.Warn(fmt.Sprintf("error reading navdata: %s", err.Error()))

				if readErrors >= r.readErrorsThreshold {
					return fmt.Errorf("%w: %w", ErrTooManyReadErrors, err)
				}
				continue
			}
		}

		readErrors = 0 // reset counter
		idleSince = time.Now()

		r.handleDatagram(buf[:n], addr, idleSince)
	}
}

func (r *Receiver) handleDatagram(b []byte, from net.Addr, receivedAt time.Time) {
	f, err := navdata.Decode(b)
	if err != nil {
		r.rejected.Add(1)
		r.logger.Warn(fmt.Sprintf("error decoding navdata: %s", err.Error()),
			slog.String("from", from.String()),
			slog.Int("size", len(b)))
		return
	}

	r.lastSequence.Store(f.Header.Sequence)

	if f.HasChecksum && !f.ChecksumValid {
		r.mismatches.Add(1)
	}
	if err := f.Verify(); err != nil {
		if r.strictChecksum {
			r.rejected.Add(1)
			r.logger.Warn(fmt.Sprintf("navdata frame dropped: %s", err.Error()), slog.Uint64("seq", uint64(f.Header.Sequence)))
			return
		}
		r.logger.Debug(fmt.Sprintf("navdata frame flagged: %s", err.Error()), slog.Uint64("seq", uint64(f.Header.Sequence)))
	}

	s := Snapshot{
		Header:        f.Header,
		ChecksumValid: f.ChecksumValid,
		ReceivedAt:    receivedAt,
	}
	if f.HasData {
		s.Data = f.Data
		s.HasData = true
	} else if prev := r.snapshot.Load(); prev != nil {
		s.Data = prev.Data
		s.HasData = prev.HasData
	}

	r.snapshot.Store(&s)
	r.frames.Add(1)

	r.logger.Debug("navdata frame received",
		slog.Uint64("seq", uint64(f.Header.Sequence)),
		slog.String("status", fmt.Sprintf("0x%08x", f.Header.Status)),
		slog.Bool("demo", f.HasData))
}

func (r *Receiver) requestTelemetry() error {
	if _, err := r.conn.WriteTo(requestSignal, r.drone); err != nil {
		r.logger.Warn(fmt.Sprintf("error requesting telemetry: %s", err.Error()))
		return err
	}
	r.keepAlives.Add(1)
	return nil
}

// Start runs the receive loop in the background. The returned channel receives the loop's
// error, if any, and is closed when the loop stops.
func (r *Receiver) Start(ctx context.Context) (<-chan error, error) {
	if !r.isRunning.CompareAndSwap(false, true) {
		return nil, ErrAlreadyRunning
	}

	r.mu.Lock()
	ctx, r.cancel = context.WithCancel(ctx)
	r.mu.Unlock()

	stopped := make(chan error, 1)

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer close(stopped)

		r.logger.Info("starting navdata receive loop...")

		err := r.Run(ctx)
		r.isRunning.Store(false)

		if err != nil {
			r.logger.Error(err.Error())
			stopped <- err
			return
		}

		r.logger.Info("navdata receive loop stopped")
	}()

	return stopped, nil
}

// Stop cancels the background receive loop and waits for it
func (r *Receiver) Stop() {
	r.mu.Lock()
	cancel := r.cancel
	r.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	r.wg.Wait()
}

// Close stops the loop and closes the socket if the receiver owns it
func (r *Receiver) Close() error {
	r.Stop()

	if r.closer != nil {
		if err := r.closer.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			return fmt.Errorf("error closing telemetry socket: %w", err)
		}
	}
	return nil
}

// IsRunning returns true while the background loop runs
func (r *Receiver) IsRunning() bool {
	return r.isRunning.Load()
}

// Snapshot returns the latest published state, nil before the first frame
func (r *Receiver) Snapshot() *Snapshot {
	return r.snapshot.Load()
}

// DroneData returns the latest demo record and whether one was received
func (r *Receiver) DroneData() (navdata.DroneData, bool) {
	s := r.snapshot.Load()
	if s == nil {
		return navdata.DroneData{}, false
	}
	return s.Data, s.HasData
}

// Initialized reports whether the drone signalled it finished booting
func (r *Receiver) Initialized() bool {
	s := r.snapshot.Load()
	return s != nil && s.Header.Initialized()
}

func (r *Receiver) CommandModeEnabled() bool {
	s := r.snapshot.Load()
	return s != nil && s.Header.CommandModeEnabled()
}

// LastHeaderSequence returns the sequence of the last decoded header, 0 before the first one
func (r *Receiver) LastHeaderSequence() uint32 {
	return r.lastSequence.Load()
}

func (r *Receiver) Stats() Stats {
	return Stats{
		Frames:             r.frames.Load(),
		Rejected:           r.rejected.Load(),
		ChecksumMismatches: r.mismatches.Load(),
		Timeouts:           r.timeouts.Load(),
		KeepAlives:         r.keepAlives.Load(),
	}
}

// Get implements telemetry.Provider
func (r *Receiver) Get() *telemetry.Telemetry {
	s := r.snapshot.Load()
	if s == nil {
		return nil
	}

	var d *navdata.DroneData
	if s.HasData {
		d = &s.Data
	}
	return telemetry.New(s.Header, d, s.ChecksumValid, s.ReceivedAt)
}

// WaitForFirstFrame polls Initialized up to maxAttempts times, pollInterval apart.
// It returns the final state; a drone that never answers is reported as false, not as an error.
func (r *Receiver) WaitForFirstFrame(ctx context.Context, maxAttempts int, pollInterval time.Duration) bool {
	for i := 0; i < maxAttempts; i++ {
		if r.Initialized() {
			return true
		}

		select {
		case <-ctx.Done():
			return r.Initialized()
		case <-time.After(pollInterval):
		}
	}

	return r.Initialized()
}

var _ telemetry.Provider = (*Receiver)(nil)

func isTimeout(err error) bool {
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

func earliest(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}
