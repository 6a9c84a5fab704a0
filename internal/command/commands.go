package command

import (
	"fmt"
	"strings"
)

// FlatTrim calibrates the horizontal plane. The drone must be on the ground.
type FlatTrim struct {
	sequence
}

func NewFlatTrim() *FlatTrim {
	return &FlatTrim{}
}

func (c *FlatTrim) Kind() Kind { return KindFlatTrim }

func (c *FlatTrim) Render() (string, error) {
	return c.format("AT*FTRIM=%d\r")
}

func (c *FlatTrim) Bytes() ([]byte, error) {
	return toBytes(c.Render())
}

// FlightModeCommand takes off, lands or toggles the emergency state
type FlightModeCommand struct {
	sequence
	Mode FlightMode
}

func NewFlightMode(mode FlightMode) *FlightModeCommand {
	return &FlightModeCommand{Mode: mode}
}

func (c *FlightModeCommand) Kind() Kind { return KindFlightMode }

func (c *FlightModeCommand) Render() (string, error) {
	return c.format("AT*REF=%d,%d\r", int32(c.Mode))
}

func (c *FlightModeCommand) Bytes() ([]byte, error) {
	return toBytes(c.Render())
}

// Move is a progressive movement command. Every axis is a fraction of the
// configured maximum in the range [-1, 1]; values outside are clamped.
type Move struct {
	sequence
	Roll  float32 // left (-) / right (+) tilt
	Pitch float32 // front (-) / back (+) tilt
	Yaw   float32 // angular speed, counter-clockwise (-) / clockwise (+)
	Gaz   float32 // vertical speed, down (-) / up (+)
}

func NewMove(roll, pitch, yaw, gaz float32) *Move {
	return &Move{Roll: roll, Pitch: pitch, Yaw: yaw, Gaz: gaz}
}

func (c *Move) Kind() Kind { return KindMove }

// Render returns the AT*PCMD frame. Note the firmware argument order: roll, pitch, gaz, yaw.
func (c *Move) Render() (string, error) {
	return c.format("AT*PCMD=%d,1,%d,%d,%d,%d\r",
		Normalize(c.Roll),
		Normalize(c.Pitch),
		Normalize(c.Gaz),
		Normalize(c.Yaw))
}

func (c *Move) Bytes() ([]byte, error) {
	return toBytes(c.Render())
}

// HoverModeCommand enables or disables hovering on the spot
type HoverModeCommand struct {
	sequence
	Mode HoverMode
}

func NewHoverMode(mode HoverMode) *HoverModeCommand {
	return &HoverModeCommand{Mode: mode}
}

func (c *HoverModeCommand) Kind() Kind { return KindHoverMode }

func (c *HoverModeCommand) Render() (string, error) {
	flag := 1
	if c.Mode == HoverModeHover {
		flag = 0
	}
	return c.format("AT*PCMD=%d,%d,0,0,0,0\r", flag)
}

func (c *HoverModeCommand) Bytes() ([]byte, error) {
	return toBytes(c.Render())
}

// PlayLedAnimation plays one of the LED patterns for Duration seconds
type PlayLedAnimation struct {
	sequence
	Animation LedAnimation
	Frequency float32 // Hz, sent through Normalize
	Duration  int     // seconds
}

func NewPlayLedAnimation(animation LedAnimation, frequency float32, duration int) *PlayLedAnimation {
	return &PlayLedAnimation{Animation: animation, Frequency: frequency, Duration: duration}
}

func (c *PlayLedAnimation) Kind() Kind { return KindPlayLedAnimation }

func (c *PlayLedAnimation) Render() (string, error) {
	return c.format("AT*LED=%d,%d,%d,%d\r", int(c.Animation), Normalize(c.Frequency), c.Duration)
}

func (c *PlayLedAnimation) Bytes() ([]byte, error) {
	return toBytes(c.Render())
}

// SetConfiguration sets a firmware configuration key, e.g. "general:navdata_demo"
type SetConfiguration struct {
	sequence
	Key   string
	Value string
}

func NewSetConfiguration(key, value string) *SetConfiguration {
	return &SetConfiguration{Key: key, Value: value}
}

func (c *SetConfiguration) Kind() Kind { return KindSetConfiguration }

// configForbidden are the characters a quoted AT*CONFIG argument cannot carry
const configForbidden = "\",\r\n"

// Validate rejects an empty key and keys or values that would break the quoted arguments
func (c *SetConfiguration) Validate() error {
	if c.Key == "" {
		return fmt.Errorf("%w: empty configuration key", ErrInvalidArgument)
	}
	if strings.ContainsAny(c.Key, configForbidden) {
		return fmt.Errorf("%w: configuration key %q", ErrInvalidArgument, c.Key)
	}
	if strings.ContainsAny(c.Value, configForbidden) {
		return fmt.Errorf("%w: value %q of %s", ErrInvalidArgument, c.Value, c.Key)
	}
	return nil
}

func (c *SetConfiguration) Render() (string, error) {
	if err := c.Validate(); err != nil {
		return "", err
	}
	return c.format("AT*CONFIG=%d,\"%s\",\"%s\"\r", c.Key, c.Value)
}

func (c *SetConfiguration) Bytes() ([]byte, error) {
	return toBytes(c.Render())
}

// SetControlMode sends AT*CTRL, mostly used to acknowledge a configuration change
type SetControlMode struct {
	sequence
	Mode ControlMode
}

func NewSetControlMode(mode ControlMode) *SetControlMode {
	return &SetControlMode{Mode: mode}
}

func (c *SetControlMode) Kind() Kind { return KindSetControlMode }

func (c *SetControlMode) Render() (string, error) {
	return c.format("AT*CTRL=%d,%d,0\r", int(c.Mode))
}

func (c *SetControlMode) Bytes() ([]byte, error) {
	return toBytes(c.Render())
}

const videoChannelKey = "video:video_channel"

// SwitchCamera selects the camera whose feed is streamed
type SwitchCamera struct {
	sequence
	Mode CameraMode
}

func NewSwitchCamera(mode CameraMode) *SwitchCamera {
	return &SwitchCamera{Mode: mode}
}

func (c *SwitchCamera) Kind() Kind { return KindSwitchCamera }

func (c *SwitchCamera) Render() (string, error) {
	return c.format("AT*CONFIG=%d,\"%s\",\"%d\"\r", videoChannelKey, int(c.Mode))
}

func (c *SwitchCamera) Bytes() ([]byte, error) {
	return toBytes(c.Render())
}

// WatchDog resets the communication watchdog
type WatchDog struct {
	sequence
}

func NewWatchDog() *WatchDog {
	return &WatchDog{}
}

func (c *WatchDog) Kind() Kind { return KindWatchDog }

func (c *WatchDog) Render() (string, error) {
	return c.format("AT*COMWDG=%d\r")
}

func (c *WatchDog) Bytes() ([]byte, error) {
	return toBytes(c.Render())
}

// Describe returns a short human-readable description of the command payload
func Describe(c Command) string {
	switch v := c.(type) {
	case *FlightModeCommand:
		return fmt.Sprintf("%s %s", v.Kind(), v.Mode)
	case *Move:
		return fmt.Sprintf("%s roll=%.2f pitch=%.2f yaw=%.2f gaz=%.2f", v.Kind(), v.Roll, v.Pitch, v.Yaw, v.Gaz)
	case *HoverModeCommand:
		return fmt.Sprintf("%s %s", v.Kind(), v.Mode)
	case *PlayLedAnimation:
		return fmt.Sprintf("%s %s %.1fHz %ds", v.Kind(), v.Animation, v.Frequency, v.Duration)
	case *SetConfiguration:
		return fmt.Sprintf("%s %s=%s", v.Kind(), v.Key, v.Value)
	case *SetControlMode:
		return fmt.Sprintf("%s %s", v.Kind(), v.Mode)
	case *SwitchCamera:
		return fmt.Sprintf("%s %s", v.Kind(), v.Mode)
	default:
		return c.Kind().String()
	}
}
