package command

import "strconv"

// FlightMode is the AT*REF argument. Values are the full REF bitfields
// (bits 18, 20, 22, 24 and 28 always set) with bit 9 for take-off and bit 8 for emergency.
type FlightMode int32

const (
	FlightModeLand      FlightMode = 290717696
	FlightModeEmergency FlightMode = 290717952
	FlightModeTakeOff   FlightMode = 290718208
)

func (m FlightMode) String() string {
	switch m {
	case FlightModeLand:
		return "land"
	case FlightModeEmergency:
		return "emergency"
	case FlightModeTakeOff:
		return "takeoff"
	default:
		return "flightMode(" + strconv.Itoa(int(m)) + ")"
	}
}

// HoverMode selects between hovering on the spot and progressive (stick) control
type HoverMode int

const (
	HoverModeHover HoverMode = iota
	HoverModeProgressive
)

func (m HoverMode) String() string {
	if m == HoverModeHover {
		return "hover"
	}
	return "progressive"
}

// CameraMode is the video channel streamed by the drone
type CameraMode int

const (
	CameraFront CameraMode = iota
	CameraBottom
)

func (m CameraMode) String() string {
	switch m {
	case CameraFront:
		return "front"
	case CameraBottom:
		return "bottom"
	default:
		return "camera(" + strconv.Itoa(int(m)) + ")"
	}
}

// ControlMode is the AT*CTRL mode
type ControlMode int

const (
	ControlNone ControlMode = iota
	ControlArdroneUpdate
	ControlPicUpdate
	ControlLogsGet
	ControlConfigGet
	ControlAck
	ControlCustomConfigGet
)

var controlModeNames = [...]string{
	"none",
	"ardroneUpdate",
	"picUpdate",
	"logsGet",
	"configGet",
	"ack",
	"customConfigGet",
}

func (m ControlMode) String() string {
	if m >= 0 && int(m) < len(controlModeNames) {
		return controlModeNames[m]
	}
	return "controlMode(" + strconv.Itoa(int(m)) + ")"
}

// LedAnimation is one of the LED patterns built into the firmware
type LedAnimation int

const (
	LedBlinkGreenRed LedAnimation = iota
	LedBlinkGreen
	LedBlinkRed
	LedBlinkOrange
	LedSnakeGreenRed
	LedFire
	LedStandard
	LedRed
	LedGreen
	LedRedSnake
	LedBlank
	LedRightMissile
	LedLeftMissile
	LedDoubleMissile
	LedFrontLeftGreenOthersRed
	LedFrontRightGreenOthersRed
	LedRearRightGreenOthersRed
	LedRearLeftGreenOthersRed
	LedLeftGreenRightRed
	LedLeftRedRightGreen
	LedBlinkStandard
)

var ledAnimationNames = [...]string{
	"blinkGreenRed",
	"blinkGreen",
	"blinkRed",
	"blinkOrange",
	"snakeGreenRed",
	"fire",
	"standard",
	"red",
	"green",
	"redSnake",
	"blank",
	"rightMissile",
	"leftMissile",
	"doubleMissile",
	"frontLeftGreenOthersRed",
	"frontRightGreenOthersRed",
	"rearRightGreenOthersRed",
	"rearLeftGreenOthersRed",
	"leftGreenRightRed",
	"leftRedRightGreen",
	"blinkStandard",
}

func (a LedAnimation) String() string {
	if a >= 0 && int(a) < len(ledAnimationNames) {
		return ledAnimationNames[a]
	}
	return "led(" + strconv.Itoa(int(a)) + ")"
}
