package link

import "errors"

var (
	// ErrSpeedOutOfRange is returned by the directional helpers when the speed is below MinSpeed
	ErrSpeedOutOfRange = errors.New("speed out of range")

	// ErrSenderClosed is returned when a movement is started on, or interrupted by, a closed sender
	ErrSenderClosed = errors.New("sender is closed")

	// ErrLinkClosed is returned by Receiver.Run when the telemetry socket was closed underneath it
	ErrLinkClosed = errors.New("telemetry link closed")

	// ErrTooManyReadErrors is returned when the number of consecutive read errors exceeds the threshold
	ErrTooManyReadErrors = errors.New("too many consecutive read errors")

	// ErrAlreadyRunning is returned by Receiver.Start when the receive loop is already running
	ErrAlreadyRunning = errors.New("receiver is already running")
)
