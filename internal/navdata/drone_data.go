package navdata

import (
	"encoding/binary"
	"math"
)

// DemoSize is the size of the demo option record content, without the 4-byte tag/size prefix
const DemoSize = 144

// Matrix33 is a row-major 3x3 rotation matrix
type Matrix33 [9]float32

// Vector3 is a translation vector
type Vector3 [3]float32

// DroneData is the navdata_demo option record.
// Angles are in milli-degrees, altitude in millimetres and velocities in mm/s.
type DroneData struct {
	ControlState      uint32
	BatteryPercentage uint32
	Pitch             float32 // theta
	Roll              float32 // phi
	Yaw               float32 // psi
	Altitude          int32
	VelocityX         float32
	VelocityY         float32
	VelocityZ         float32
	FrameIndex        uint32 // streamed frame index, unused by the firmware

	DetectionCameraRotation    Matrix33
	DetectionCameraTranslation Vector3
	DetectionTagIndex          uint32
	DetectionCameraType        uint32

	DroneCameraRotation    Matrix33
	DroneCameraTranslation Vector3
}

// FlightState is the major drone state held in the upper half of ControlState
type FlightState uint16

const (
	FlightStateDefault FlightState = iota
	FlightStateInit
	FlightStateLanded
	FlightStateFlying
	FlightStateHovering
	FlightStateTest
	FlightStateTakingOff
	FlightStateGotoFix
	FlightStateLanding
	FlightStateLooping
)

var flightStateNames = [...]string{
	"default",
	"init",
	"landed",
	"flying",
	"hovering",
	"test",
	"takingOff",
	"gotoFix",
	"landing",
	"looping",
}

func (s FlightState) String() string {
	if int(s) < len(flightStateNames) {
		return flightStateNames[s]
	}
	return "unknown"
}

// FlightState returns the major state of the drone
func (d *DroneData) FlightState() FlightState {
	return FlightState(d.ControlState >> 16)
}

// PitchDegrees returns the pitch angle in degrees
func (d *DroneData) PitchDegrees() float64 {
	return float64(d.Pitch) / 1000
}

// RollDegrees returns the roll angle in degrees
func (d *DroneData) RollDegrees() float64 {
	return float64(d.Roll) / 1000
}

// YawDegrees returns the yaw angle in degrees
func (d *DroneData) YawDegrees() float64 {
	return float64(d.Yaw) / 1000
}

// AltitudeMeters returns the altitude in metres
func (d *DroneData) AltitudeMeters() float64 {
	return float64(d.Altitude) / 1000
}

// decodeDroneData decodes the demo record content. The caller guarantees len(b) >= DemoSize.
func decodeDroneData(b []byte) DroneData {
	le := binary.LittleEndian
	f32 := func(off int) float32 {
		return math.Float32frombits(le.Uint32(b[off : off+4]))
	}

	d := DroneData{
		ControlState:      le.Uint32(b[0:4]),
		BatteryPercentage: le.Uint32(b[4:8]),
		Pitch:             f32(8),
		Roll:              f32(12),
		Yaw:               f32(16),
		Altitude:          int32(le.Uint32(b[20:24])),
		VelocityX:         f32(24),
		VelocityY:         f32(28),
		VelocityZ:         f32(32),
		FrameIndex:        le.Uint32(b[36:40]),
	}

	for i := range d.DetectionCameraRotation {
		d.DetectionCameraRotation[i] = f32(40 + i*4)
	}
	for i := range d.DetectionCameraTranslation {
		d.DetectionCameraTranslation[i] = f32(76 + i*4)
	}
	d.DetectionTagIndex = le.Uint32(b[88:92])
	d.DetectionCameraType = le.Uint32(b[92:96])

	for i := range d.DroneCameraRotation {
		d.DroneCameraRotation[i] = f32(96 + i*4)
	}
	for i := range d.DroneCameraTranslation {
		d.DroneCameraTranslation[i] = f32(132 + i*4)
	}

	return d
}

// MarshalBinary encodes d into the DemoSize bytes of demo record content
func (d DroneData) MarshalBinary() ([]byte, error) {
	le := binary.LittleEndian
	b := make([]byte, DemoSize)
	putF32 := func(off int, v float32) {
		le.PutUint32(b[off:off+4], math.Float32bits(v))
	}

	le.PutUint32(b[0:4], d.ControlState)
	le.PutUint32(b[4:8], d.BatteryPercentage)
	putF32(8, d.Pitch)
	putF32(12, d.Roll)
	putF32(16, d.Yaw)
	le.PutUint32(b[20:24], uint32(d.Altitude))
	putF32(24, d.VelocityX)
	putF32(28, d.VelocityY)
	putF32(32, d.VelocityZ)
	le.PutUint32(b[36:40], d.FrameIndex)

	for i, v := range d.DetectionCameraRotation {
		putF32(40+i*4, v)
	}
	for i, v := range d.DetectionCameraTranslation {
		putF32(76+i*4, v)
	}
	le.PutUint32(b[88:92], d.DetectionTagIndex)
	le.PutUint32(b[92:96], d.DetectionCameraType)

	for i, v := range d.DroneCameraRotation {
		putF32(96+i*4, v)
	}
	for i, v := range d.DroneCameraTranslation {
		putF32(132+i*4, v)
	}

	return b, nil
}

// UnmarshalBinary decodes demo record content. Bytes past DemoSize are ignored.
func (d *DroneData) UnmarshalBinary(b []byte) error {
	if len(b) < DemoSize {
		return ErrTruncatedFrame
	}
	*d = decodeDroneData(b)
	return nil
}
