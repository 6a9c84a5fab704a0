package link

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/roman-kulish/ardrone-link/internal/command"
)

const (
	// CommandPort is the drone's UDP port for AT commands
	CommandPort = 5556

	// RepeatInterval is the default pause between two sends of a repeated movement
	RepeatInterval = 30 * time.Millisecond
)

// SentCommand describes one send attempt
type SentCommand struct {
	Sequence    uint32
	Kind        command.Kind
	Description string
	Frame       string
	Accepted    bool // the socket accepted the datagram; says nothing about delivery
	SentAt      time.Time
}

// Journal receives a record of every sequenced command. Record is called while the sender
// holds its lock and must not block.
type Journal interface {
	Record(c SentCommand)
}

// WithSenderLogger sets the logger for the sender
func WithSenderLogger(logger *slog.Logger) func(s *Sender) {
	return func(s *Sender) {
		s.logger = logger.With(slog.String("component", "sender"))
	}
}

// WithRepeatInterval sets the pause between two sends of a repeated movement, 0 disables it
func WithRepeatInterval(interval time.Duration) func(s *Sender) {
	return func(s *Sender) {
		s.repeatInterval = max(interval, 0)
	}
}

// WithJournal attaches a journal to the sender
func WithJournal(j Journal) func(s *Sender) {
	return func(s *Sender) {
		s.journal = j
	}
}

// Sender assigns sequence numbers to commands and writes them to the command channel.
// Sequence numbers start at 1 and grow by exactly one per sequenced command, including
// commands whose write failed.
type Sender struct {
	conn   io.Writer
	closer io.Closer

	mu   sync.Mutex // serialises sequencing and writing, so wire order is sequence order
	last atomic.Uint32

	repeatInterval time.Duration
	journal        Journal

	ctx    context.Context // cancelled by Close, stops every running movement
	cancel context.CancelFunc

	tasksMu sync.Mutex
	tasks   sync.WaitGroup
	closed  bool

	logger *slog.Logger
}

// NewSender creates a sender writing one datagram per command to conn
func NewSender(conn io.Writer, options ...func(s *Sender)) *Sender {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil)) // nil logger

	s := Sender{
		conn:           conn,
		repeatInterval: RepeatInterval,
		logger:         logger,
	}
	s.ctx, s.cancel = context.WithCancel(context.Background())

	for _, option := range options {
		option(&s)
	}

	return &s
}

// Dial opens the UDP command channel to addr (host:port) and returns a sender owning it
func Dial(ctx context.Context, addr string, options ...func(s *Sender)) (*Sender, error) {
	var d net.Dialer

	conn, err := d.DialContext(ctx, "udp", addr)
	if err != nil {
		return nil, fmt.Errorf("error dialing command channel: %w", err)
	}

	s := NewSender(conn, options...)
	s.closer = conn
	s.logger = s.logger.With(slog.String("drone", addr))

	return s, nil
}

// Send sequences cmd, renders it and writes it as a single datagram.
// It reports whether the socket accepted the write. A command that was already sequenced
// or carries invalid arguments is rejected without consuming a sequence number.
func (s *Sender) Send(cmd command.Command) bool {
	if v, ok := cmd.(interface{ Validate() error }); ok {
		if err := v.Validate(); err != nil {
			s.logger.Warn(fmt.Sprintf("command rejected: %s", err.Error()), slog.String("kind", cmd.Kind().String()))
			return false
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	seq := s.last.Load() + 1
	if err := cmd.SetSequenceNumber(seq); err != nil {
		s.logger.Warn(fmt.Sprintf("command rejected: %s", err.Error()), slog.String("kind", cmd.Kind().String()))
		return false
	}
	s.last.Store(seq)

	frame, err := cmd.Bytes()
	if err != nil {
		// unreachable once sequenced, the number stays consumed
		s.logger.Error(fmt.Sprintf("error rendering command: %s", err.Error()), slog.Uint64("seq", uint64(seq)))
		return false
	}

	_, err = s.conn.Write(frame)
	accepted := err == nil

	if err != nil {
		s.logger.Warn(fmt.Sprintf("error sending command: %s", err.Error()),
			slog.String("kind", cmd.Kind().String()),
			slog.Uint64("seq", uint64(seq)))
	} else {
		s.logger.Debug("command sent", slog.String("command", command.Describe(cmd)), slog.Uint64("seq", uint64(seq)))
	}

	if s.journal != nil {
		s.journal.Record(SentCommand{
			Sequence:    seq,
			Kind:        cmd.Kind(),
			Description: command.Describe(cmd),
			Frame:       string(frame),
			Accepted:    accepted,
			SentAt:      time.Now(),
		})
	}

	return accepted
}

// LastSequenceNumber returns the number assigned to the most recent command, 0 if none was sent
func (s *Sender) LastSequenceNumber() uint32 {
	return s.last.Load()
}

// Close stops all running movements, waits for them and closes the connection if the sender owns it
func (s *Sender) Close() error {
	s.tasksMu.Lock()
	if s.closed {
		s.tasksMu.Unlock()
		return nil
	}
	s.closed = true
	s.tasksMu.Unlock()

	s.cancel()
	s.tasks.Wait()

	if s.closer != nil {
		if err := s.closer.Close(); err != nil {
			return fmt.Errorf("error closing command channel: %w", err)
		}
	}
	return nil
}

func (s *Sender) TakeOff() bool {
	return s.Send(command.NewFlightMode(command.FlightModeTakeOff))
}

func (s *Sender) Land() bool {
	return s.Send(command.NewFlightMode(command.FlightModeLand))
}

// Emergency toggles the emergency state: motors are cut when flying, the state is reset otherwise
func (s *Sender) Emergency() bool {
	return s.Send(command.NewFlightMode(command.FlightModeEmergency))
}

// Hover stops any progressive movement and holds position
func (s *Sender) Hover() bool {
	return s.Send(command.NewHoverMode(command.HoverModeHover))
}

func (s *Sender) FlatTrim() bool {
	return s.Send(command.NewFlatTrim())
}

func (s *Sender) ResetWatchdog() bool {
	return s.Send(command.NewWatchDog())
}

func (s *Sender) SetConfiguration(key, value string) bool {
	return s.Send(command.NewSetConfiguration(key, value))
}

func (s *Sender) SetControlMode(mode command.ControlMode) bool {
	return s.Send(command.NewSetControlMode(mode))
}

func (s *Sender) SwitchCamera(mode command.CameraMode) bool {
	return s.Send(command.NewSwitchCamera(mode))
}

func (s *Sender) PlayLedAnimation(animation command.LedAnimation, frequency float32, duration int) bool {
	return s.Send(command.NewPlayLedAnimation(animation, frequency, duration))
}

func (s *Sender) Move(roll, pitch, yaw, gaz float32) bool {
	return s.Send(command.NewMove(roll, pitch, yaw, gaz))
}
