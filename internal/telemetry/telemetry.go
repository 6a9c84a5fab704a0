package telemetry

import (
	"time"

	"github.com/roman-kulish/ardrone-link/internal/navdata"
)

// Telemetry is the drone state converted to SI-ish units.
// Fields are nil when the frame carried no demo record.
type Telemetry struct {
	Timestamp      time.Time `json:"timestamp"`                // Time the frame was received
	Sequence       uint32    `json:"sequence"`                 // Navdata header sequence
	Initialized    bool      `json:"initialized"`              // Drone finished booting
	CommandMode    bool      `json:"commandMode"`              // Command (ack) mode enabled
	Flying         bool      `json:"flying"`                   // Flying bit of the status mask
	LowBattery     bool      `json:"lowBattery"`               // Low battery bit of the status mask
	Emergency      bool      `json:"emergency"`                // Emergency bit of the status mask
	ChecksumValid  bool      `json:"checksumValid"`            // Frame checksum matched
	FlightState    *string   `json:"flightState,omitempty"`    // Major control state
	Battery        *uint32   `json:"battery,omitempty"`        // Battery level in percent
	Altitude       *float64  `json:"altitude,omitempty"`       // Altitude in meters
	Roll           *float64  `json:"roll,omitempty"`           // Roll angle in degrees
	Pitch          *float64  `json:"pitch,omitempty"`          // Pitch angle in degrees
	Yaw            *float64  `json:"yaw,omitempty"`            // Yaw angle in degrees
	VelocityX      *float64  `json:"velocityX,omitempty"`      // X-axis velocity in m/s
	VelocityY      *float64  `json:"velocityY,omitempty"`      // Y-axis velocity in m/s
	VelocityZ      *float64  `json:"velocityZ,omitempty"`      // Z-axis velocity in m/s
	DetectedTagIdx *uint32   `json:"detectedTagIdx,omitempty"` // Index of the detected tag, if any
}

// New converts a decoded navdata header and optional demo record
func New(h navdata.Header, d *navdata.DroneData, checksumValid bool, receivedAt time.Time) *Telemetry {
	t := Telemetry{
		Timestamp:     receivedAt,
		Sequence:      h.Sequence,
		Initialized:   h.Initialized(),
		CommandMode:   h.CommandModeEnabled(),
		Flying:        h.Flying(),
		LowBattery:    h.LowBattery(),
		Emergency:     h.Emergency(),
		ChecksumValid: checksumValid,
	}
	if d == nil {
		return &t
	}

	state := d.FlightState().String()
	battery := d.BatteryPercentage

	t.FlightState = &state
	t.Battery = &battery
	t.Altitude = ptr(d.AltitudeMeters())
	t.Roll = ptr(d.RollDegrees())
	t.Pitch = ptr(d.PitchDegrees())
	t.Yaw = ptr(d.YawDegrees())
	t.VelocityX = ptr(float64(d.VelocityX) / 1000)
	t.VelocityY = ptr(float64(d.VelocityY) / 1000)
	t.VelocityZ = ptr(float64(d.VelocityZ) / 1000)

	if d.DetectionTagIndex != 0 {
		tag := d.DetectionTagIndex
		t.DetectedTagIdx = &tag
	}

	return &t
}

func ptr(v float64) *float64 {
	return &v
}
