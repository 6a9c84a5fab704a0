package telemetry

import (
	"testing"
	"time"

	"github.com/roman-kulish/ardrone-link/internal/navdata"
)

func TestNew(t *testing.T) {
	h := navdata.Header{Magic: navdata.Magic, Status: navdata.StatusFlying | navdata.StatusCommandMode, Sequence: 77}
	d := navdata.DroneData{
		ControlState:      uint32(navdata.FlightStateFlying) << 16,
		BatteryPercentage: 55,
		Roll:              -2500,
		Altitude:          2000,
		VelocityX:         1500,
	}
	now := time.Now()

	got := New(h, &d, true, now)

	if !got.Timestamp.Equal(now) || got.Sequence != 77 {
		t.Errorf("timestamp/sequence not carried: %+v", got)
	}
	if !got.Initialized || !got.CommandMode || !got.Flying || got.Emergency {
		t.Errorf("status flags: %+v", got)
	}
	if got.FlightState == nil || *got.FlightState != "flying" {
		t.Errorf("FlightState = %v", got.FlightState)
	}
	if got.Battery == nil || *got.Battery != 55 {
		t.Errorf("Battery = %v", got.Battery)
	}
	if got.Altitude == nil || *got.Altitude != 2 {
		t.Errorf("Altitude = %v", got.Altitude)
	}
	if got.Roll == nil || *got.Roll != -2.5 {
		t.Errorf("Roll = %v", got.Roll)
	}
	if got.VelocityX == nil || *got.VelocityX != 1.5 {
		t.Errorf("VelocityX = %v", got.VelocityX)
	}
	if got.DetectedTagIdx != nil {
		t.Errorf("no tag detected, got %d", *got.DetectedTagIdx)
	}
}

func TestNew_HeaderOnly(t *testing.T) {
	h := navdata.Header{Magic: navdata.Magic, Status: navdata.StatusNavdataBootstrap}

	got := New(h, nil, false, time.Now())

	if got.Initialized {
		t.Error("bootstrap bit set, drone is not initialized")
	}
	if got.Altitude != nil || got.Battery != nil || got.FlightState != nil {
		t.Errorf("expected no sensor values, got %+v", got)
	}
}
