package command

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrUnsequenced is returned when a command is rendered before a sequence number was assigned
	ErrUnsequenced = errors.New("command must be sequenced before it can be sent")

	// ErrAlreadySequenced is returned when a sequence number is assigned to a command twice
	ErrAlreadySequenced = errors.New("command is already sequenced")

	// ErrInvalidArgument is returned when a string argument would break the AT frame
	ErrInvalidArgument = errors.New("invalid command argument")
)

// Kind identifies the variant of a command
type Kind string

const (
	KindFlatTrim         Kind = "FlatTrim"
	KindFlightMode       Kind = "FlightMode"
	KindMove             Kind = "Move"
	KindHoverMode        Kind = "HoverMode"
	KindPlayLedAnimation Kind = "PlayLedAnimation"
	KindSetConfiguration Kind = "SetConfiguration"
	KindSetControlMode   Kind = "SetControlMode"
	KindSwitchCamera     Kind = "SwitchCamera"
	KindWatchDog         Kind = "WatchDog"
)

func (k Kind) String() string {
	return string(k)
}

// Command is a single AT command understood by the drone firmware.
//
// A command is built with its payload only. The sender assigns the sequence
// number exactly once, right before transmission, and only then the command
// can be rendered into its wire form.
type Command interface {
	Kind() Kind
	SequenceNumber() uint32
	SetSequenceNumber(seq uint32) error
	Render() (string, error)
	Bytes() ([]byte, error)
}

// sequence holds the sequence number shared by all command kinds
type sequence struct {
	seq uint32
}

func (s *sequence) SequenceNumber() uint32 {
	return s.seq
}

func (s *sequence) SetSequenceNumber(seq uint32) error {
	if seq == 0 {
		return ErrUnsequenced
	}
	if s.seq != 0 {
		return fmt.Errorf("%w: %d", ErrAlreadySequenced, s.seq)
	}

	s.seq = seq
	return nil
}

func (s *sequence) format(format string, args ...any) (string, error) {
	if s.seq == 0 {
		return "", ErrUnsequenced
	}
	return fmt.Sprintf(format, append([]any{s.seq}, args...)...), nil
}

func toBytes(s string, err error) ([]byte, error) {
	if err != nil {
		return nil, err
	}
	return []byte(s), nil
}

// Normalize clamps v to [-1, 1] and returns its IEEE-754 bit pattern as a signed integer.
// This is the encoding the firmware expects for every float argument.
func Normalize(v float32) int32 {
	switch {
	case v > 1:
		v = 1
	case v < -1:
		v = -1
	case v != v: // NaN
		v = 0
	}
	return int32(math.Float32bits(v))
}
