package command

import (
	"errors"
	"math"
	"strconv"
	"testing"
)

func bits(f float32) int32 {
	return int32(math.Float32bits(f))
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   float32
		want int32
	}{
		{"zero", 0, 0},
		{"one", 1, 1065353216},
		{"minus half", -0.5, -1090519040},
		{"quarter", 0.25, 1048576000},
		{"clamped above", 1.5, 1065353216},
		{"clamped below", -1.5, bits(-1)},
		{"NaN", float32(math.NaN()), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.in); got != tt.want {
				t.Errorf("Normalize(%v) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	if Normalize(1.5) != Normalize(1.0) {
		t.Error("1.5 and 1.0 must encode identically")
	}
	if Normalize(-1.5) != Normalize(-1.0) {
		t.Error("-1.5 and -1.0 must encode identically")
	}
	if Normalize(-0.3) >= 0 || Normalize(0.3) <= 0 {
		t.Error("sign must be preserved")
	}
}

func TestRender_Unsequenced(t *testing.T) {
	commands := []Command{
		NewFlatTrim(),
		NewFlightMode(FlightModeTakeOff),
		NewMove(0.1, 0.2, 0.3, 0.4),
		NewHoverMode(HoverModeHover),
		NewPlayLedAnimation(LedFire, 2, 3),
		NewSetConfiguration("general:navdata_demo", "TRUE"),
		NewSetControlMode(ControlAck),
		NewSwitchCamera(CameraBottom),
		NewWatchDog(),
	}

	for _, c := range commands {
		s, err := c.Render()
		if !errors.Is(err, ErrUnsequenced) {
			t.Errorf("%s: expected ErrUnsequenced, got %v", c.Kind(), err)
		}
		if s != "" {
			t.Errorf("%s: expected empty string, got %q", c.Kind(), s)
		}
		if b, err := c.Bytes(); b != nil || !errors.Is(err, ErrUnsequenced) {
			t.Errorf("%s: Bytes() = %v, %v", c.Kind(), b, err)
		}
	}
}

func TestRender(t *testing.T) {
	tests := []struct {
		cmd  Command
		seq  uint32
		want string
	}{
		{NewFlatTrim(), 1, "AT*FTRIM=1\r"},
		{NewFlightMode(FlightModeTakeOff), 2, "AT*REF=2,290718208\r"},
		{NewFlightMode(FlightModeLand), 3, "AT*REF=3,290717696\r"},
		{NewMove(0.25, -0.5, 0.0, 1.0), 7, "AT*PCMD=7,1,1048576000,-1090519040,1065353216,0\r"},
		{NewHoverMode(HoverModeHover), 4, "AT*PCMD=4,0,0,0,0,0\r"},
		{NewHoverMode(HoverModeProgressive), 5, "AT*PCMD=5,1,0,0,0,0\r"},
		{NewPlayLedAnimation(LedFire, 0.5, 3), 6, "AT*LED=6,5,1056964608,3\r"},
		{NewSetConfiguration("general:navdata_demo", "TRUE"), 8, "AT*CONFIG=8,\"general:navdata_demo\",\"TRUE\"\r"},
		{NewSetControlMode(ControlAck), 9, "AT*CTRL=9,5,0\r"},
		{NewSwitchCamera(CameraBottom), 10, "AT*CONFIG=10,\"video:video_channel\",\"1\"\r"},
		{NewWatchDog(), 11, "AT*COMWDG=11\r"},
	}

	for _, tt := range tests {
		t.Run(tt.cmd.Kind().String(), func(t *testing.T) {
			if err := tt.cmd.SetSequenceNumber(tt.seq); err != nil {
				t.Fatalf("SetSequenceNumber: %v", err)
			}
			got, err := tt.cmd.Render()
			if err != nil {
				t.Fatalf("Render: %v", err)
			}
			if got != tt.want {
				t.Errorf("Render() = %q, want %q", got, tt.want)
			}

			b, err := tt.cmd.Bytes()
			if err != nil || string(b) != tt.want {
				t.Errorf("Bytes() = %q, %v", b, err)
			}
		})
	}
}

func TestMove_RenderMatchesBits(t *testing.T) {
	m := NewMove(0.25, -0.5, 0.0, 1.0)
	_ = m.SetSequenceNumber(7)

	got, _ := m.Render()
	want := "AT*PCMD=7,1," +
		itoa(bits(0.25)) + "," +
		itoa(bits(-0.5)) + "," +
		itoa(bits(1.0)) + "," +
		itoa(bits(0.0)) + "\r"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestSetSequenceNumber(t *testing.T) {
	c := NewWatchDog()

	if err := c.SetSequenceNumber(0); !errors.Is(err, ErrUnsequenced) {
		t.Errorf("assigning 0: expected ErrUnsequenced, got %v", err)
	}
	if err := c.SetSequenceNumber(42); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := c.SetSequenceNumber(43); !errors.Is(err, ErrAlreadySequenced) {
		t.Errorf("second assignment: expected ErrAlreadySequenced, got %v", err)
	}
	if c.SequenceNumber() != 42 {
		t.Errorf("sequence changed to %d", c.SequenceNumber())
	}
}

func TestRender_Pure(t *testing.T) {
	m := NewMove(0.1, 0.2, 0.3, 0.4)
	_ = m.SetSequenceNumber(3)

	a, _ := m.Render()
	b, _ := m.Render()
	if a != b {
		t.Errorf("rendering twice differs: %q vs %q", a, b)
	}
}

func TestSetConfiguration_Validate(t *testing.T) {
	tests := []struct {
		name       string
		key, value string
	}{
		{"empty key", "", "TRUE"},
		{"quote in value", "general:ardrone_name", `my"drone`},
		{"comma in value", "control:altitude_max", "3000,1"},
		{"carriage return in value", "general:navdata_demo", "TRUE\r"},
		{"newline in key", "general:\nnavdata_demo", "TRUE"},
		{"quote in key", `general:"x`, "TRUE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewSetConfiguration(tt.key, tt.value)
			if err := c.Validate(); !errors.Is(err, ErrInvalidArgument) {
				t.Errorf("Validate() = %v, want ErrInvalidArgument", err)
			}

			_ = c.SetSequenceNumber(1)
			if s, err := c.Render(); s != "" || !errors.Is(err, ErrInvalidArgument) {
				t.Errorf("Render() = %q, %v", s, err)
			}
		})
	}

	if err := NewSetConfiguration("video:video_channel", "1").Validate(); err != nil {
		t.Errorf("valid configuration rejected: %v", err)
	}
}

func TestDescribe(t *testing.T) {
	if got := Describe(NewFlightMode(FlightModeTakeOff)); got != "FlightMode takeoff" {
		t.Errorf("got %q", got)
	}
	if got := Describe(NewWatchDog()); got != "WatchDog" {
		t.Errorf("got %q", got)
	}
	if got := Describe(NewSetControlMode(ControlAck)); got != "SetControlMode ack" {
		t.Errorf("got %q", got)
	}
}

func itoa(v int32) string {
	return strconv.Itoa(int(v))
}
