package navdata

import "encoding/binary"

const (
	// Magic is the first little-endian word of every navdata datagram
	Magic uint32 = 0x55667788

	// HeaderSize is the size of the fixed header: magic, status, sequence and vision flag
	HeaderSize = 16
)

// Drone state mask bits carried in Header.Status
const (
	StatusFlying           uint32 = 1 << 0
	StatusCommandMode      uint32 = 1 << 6 // command (ack) mode enabled
	StatusNavdataDemo      uint32 = 1 << 10
	StatusNavdataBootstrap uint32 = 1 << 11 // set until the drone is initialised
	StatusLowBattery       uint32 = 1 << 15
	StatusWatchdogProblem  uint32 = 1 << 30
	StatusEmergency        uint32 = 1 << 31
)

// Header is the fixed part at the start of every navdata datagram
type Header struct {
	Magic      uint32
	Status     uint32
	Sequence   uint32 // drone-side counter, only meaningful for staleness comparison
	VisionFlag uint32
}

// DecodeHeader decodes the fixed header at the start of buf.
// A header whose magic does not match is rejected with ErrInvalidHeader.
func DecodeHeader(buf []byte) (Header, error) {
	if len(buf) < HeaderSize {
		return Header{}, &FrameError{Offset: len(buf), Section: "header", Err: ErrTruncatedFrame}
	}

	h := Header{
		Magic:      binary.LittleEndian.Uint32(buf[0:4]),
		Status:     binary.LittleEndian.Uint32(buf[4:8]),
		Sequence:   binary.LittleEndian.Uint32(buf[8:12]),
		VisionFlag: binary.LittleEndian.Uint32(buf[12:16]),
	}
	if h.Magic != Magic {
		return Header{}, &FrameError{Offset: 0, Section: "header", Err: ErrInvalidHeader}
	}

	return h, nil
}

// Initialized reports whether the drone finished booting; the bootstrap bit is cleared once it has.
func (h Header) Initialized() bool {
	return h.Status&StatusNavdataBootstrap == 0
}

func (h Header) CommandModeEnabled() bool {
	return h.Status&StatusCommandMode != 0
}

func (h Header) Flying() bool {
	return h.Status&StatusFlying != 0
}

func (h Header) NavdataDemo() bool {
	return h.Status&StatusNavdataDemo != 0
}

func (h Header) LowBattery() bool {
	return h.Status&StatusLowBattery != 0
}

func (h Header) WatchdogProblem() bool {
	return h.Status&StatusWatchdogProblem != 0
}

func (h Header) Emergency() bool {
	return h.Status&StatusEmergency != 0
}
