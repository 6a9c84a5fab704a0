package link

import (
	"context"
	"fmt"
	"time"

	"github.com/roman-kulish/ardrone-link/internal/command"
)

// MinSpeed is the smallest speed accepted by the directional helpers
const MinSpeed = 0.1

// Direction is a single-axis movement
type Direction int

const (
	DirectionUp Direction = iota
	DirectionDown
	DirectionLeft
	DirectionRight
	DirectionForward
	DirectionBackward
	DirectionTurnLeft
	DirectionTurnRight
)

var directionNames = [...]string{
	"up",
	"down",
	"left",
	"right",
	"forward",
	"backward",
	"turnLeft",
	"turnRight",
}

func (d Direction) String() string {
	if d >= 0 && int(d) < len(directionNames) {
		return directionNames[d]
	}
	return fmt.Sprintf("direction(%d)", int(d))
}

// NewDirectionalMove builds a Move with only the axis of d set to ±speed.
// Forward tilts the nose down, which is a negative pitch.
func NewDirectionalMove(d Direction, speed float32) (*command.Move, error) {
	if !(speed >= MinSpeed) { // NaN included
		return nil, fmt.Errorf("%w: %.2f is below %.2f", ErrSpeedOutOfRange, speed, MinSpeed)
	}

	switch d {
	case DirectionUp:
		return command.NewMove(0, 0, 0, speed), nil
	case DirectionDown:
		return command.NewMove(0, 0, 0, -speed), nil
	case DirectionLeft:
		return command.NewMove(-speed, 0, 0, 0), nil
	case DirectionRight:
		return command.NewMove(speed, 0, 0, 0), nil
	case DirectionForward:
		return command.NewMove(0, -speed, 0, 0), nil
	case DirectionBackward:
		return command.NewMove(0, speed, 0, 0), nil
	case DirectionTurnLeft:
		return command.NewMove(0, 0, -speed, 0), nil
	case DirectionTurnRight:
		return command.NewMove(0, 0, speed, 0), nil
	default:
		return nil, fmt.Errorf("unknown direction %d", int(d))
	}
}

// Go sends a single movement command towards d. Nothing is sent when the speed is out of range.
func (s *Sender) Go(d Direction, speed float32) (bool, error) {
	m, err := NewDirectionalMove(d, speed)
	if err != nil {
		return false, err
	}
	return s.Send(m), nil
}

func (s *Sender) GoUp(speed float32) (bool, error) {
	return s.Go(DirectionUp, speed)
}

func (s *Sender) GoDown(speed float32) (bool, error) {
	return s.Go(DirectionDown, speed)
}

func (s *Sender) GoLeft(speed float32) (bool, error) {
	return s.Go(DirectionLeft, speed)
}

func (s *Sender) GoRight(speed float32) (bool, error) {
	return s.Go(DirectionRight, speed)
}

func (s *Sender) GoForward(speed float32) (bool, error) {
	return s.Go(DirectionForward, speed)
}

func (s *Sender) GoBackward(speed float32) (bool, error) {
	return s.Go(DirectionBackward, speed)
}

func (s *Sender) TurnLeft(speed float32) (bool, error) {
	return s.Go(DirectionTurnLeft, speed)
}

func (s *Sender) TurnRight(speed float32) (bool, error) {
	return s.Go(DirectionTurnRight, speed)
}

// GoWhile keeps sending movement commands towards d while pred returns true.
// Every tick is a single fire-and-forget send followed by the repeat interval.
// It returns nil once pred returns false, ctx.Err() when ctx is done and
// ErrSenderClosed when the sender is closed meanwhile.
func (s *Sender) GoWhile(ctx context.Context, d Direction, speed float32, pred func() bool) error {
	if _, err := NewDirectionalMove(d, speed); err != nil {
		return err
	}
	return s.repeat(ctx, d, speed, pred)
}

// GoUntil keeps moving towards d until pred returns true
func (s *Sender) GoUntil(ctx context.Context, d Direction, speed float32, pred func() bool) error {
	return s.GoWhile(ctx, d, speed, func() bool { return !pred() })
}

// GoFor keeps moving towards d for the given duration
func (s *Sender) GoFor(ctx context.Context, d Direction, speed float32, duration time.Duration) error {
	deadline := time.Now().Add(duration)
	return s.GoWhile(ctx, d, speed, func() bool { return time.Now().Before(deadline) })
}

// StartWhile runs GoWhile in the background
func (s *Sender) StartWhile(ctx context.Context, d Direction, speed float32, pred func() bool) (*Task, error) {
	if _, err := NewDirectionalMove(d, speed); err != nil {
		return nil, err
	}
	return s.start(ctx, func(ctx context.Context) error {
		return s.repeat(ctx, d, speed, pred)
	})
}

// StartUntil runs GoUntil in the background
func (s *Sender) StartUntil(ctx context.Context, d Direction, speed float32, pred func() bool) (*Task, error) {
	return s.StartWhile(ctx, d, speed, func() bool { return !pred() })
}

// StartFor runs GoFor in the background. The duration is measured from the call.
func (s *Sender) StartFor(ctx context.Context, d Direction, speed float32, duration time.Duration) (*Task, error) {
	deadline := time.Now().Add(duration)
	return s.StartWhile(ctx, d, speed, func() bool { return time.Now().Before(deadline) })
}

func (s *Sender) repeat(ctx context.Context, d Direction, speed float32, pred func() bool) error {
	for pred() {
		if err := s.alive(ctx); err != nil {
			return err
		}

		// a fresh command per tick, each one gets its own sequence number
		if _, err := s.Go(d, speed); err != nil {
			return err
		}

		if err := s.pause(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (s *Sender) alive(ctx context.Context) error {
	select {
	case <-s.ctx.Done():
		return ErrSenderClosed
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}

func (s *Sender) pause(ctx context.Context) error {
	if s.repeatInterval <= 0 {
		return s.alive(ctx)
	}

	timer := time.NewTimer(s.repeatInterval)
	defer timer.Stop()

	select {
	case <-s.ctx.Done():
		return ErrSenderClosed
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
