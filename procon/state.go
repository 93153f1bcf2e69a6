package procon

// Battery is the charge state from byte 2 of a full input report.
type Battery struct {
	Charging bool  `json:"charging"`
	Level    uint8 `json:"level"` // 0..7
}

// Buttons holds the 18 named buttons packed into bytes 3..5.
type Buttons struct {
	Y       bool `json:"y"`
	X       bool `json:"x"`
	B       bool `json:"b"`
	A       bool `json:"a"`
	R       bool `json:"r"`
	ZR      bool `json:"zr"`
	Minus   bool `json:"minus"`
	Plus    bool `json:"plus"`
	RStick  bool `json:"rStick"`
	LStick  bool `json:"lStick"`
	Home    bool `json:"home"`
	Capture bool `json:"capture"`
	Down    bool `json:"down"`
	Up      bool `json:"up"`
	Right   bool `json:"right"`
	Left    bool `json:"left"`
	L       bool `json:"l"`
	ZL      bool `json:"zl"`
}

// Stick is a raw 12-bit analog stick sample. Stick calibration is not
// applied; values are the packed counts as read from the report.
type Stick struct {
	Horizontal uint16 `json:"horizontal"`
	Vertical   uint16 `json:"vertical"`
}

// Vec3 is a calibrated IMU sample in device axes.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// State is a decoded snapshot of one full input report.
type State struct {
	Battery    Battery `json:"battery"`
	Buttons    Buttons `json:"buttons"`
	LeftStick  Stick   `json:"leftStick"`
	RightStick Stick   `json:"rightStick"`
	Accel      Vec3    `json:"accel"`
	Gyro       Vec3    `json:"gyro"`
}

// stickValue packs a 12-bit axis from a full byte and the low nibble of
// the next one. The vertical axes shift the nibble by 4 rather than 8,
// overlapping it with the low byte; that matches how the controller packs
// the report and must not be "fixed".
func stickValue(lo, hi byte, shift uint) uint16 {
	return uint16(lo) | uint16(hi&0x0F)<<shift
}

// imuVec decodes three little-endian int16 samples starting at raw and
// applies the per-axis calibration.
func imuVec(raw []byte, cal [3]AxisCalibration) Vec3 {
	var v [3]float64
	for i := 0; i < 3; i++ {
		sample := int16LE(raw[i*2], raw[i*2+1])
		v[i] = float64(int32(sample)-int32(cal[i].Offset)) * cal[i].Coeff
	}
	return Vec3{X: v[0], Y: v[1], Z: v[2]}
}

// decodeState decodes a full input report under the given calibration.
func decodeState(r *[inputReportLen]byte, cal imuCalibration) State {
	return State{
		Battery: Battery{
			Charging: r[2]&batteryChargingBit != 0,
			Level:    (r[2] & batteryLevelMask) >> 5,
		},
		Buttons: Buttons{
			Y:       r[3]&maskY != 0,
			X:       r[3]&maskX != 0,
			B:       r[3]&maskB != 0,
			A:       r[3]&maskA != 0,
			R:       r[3]&maskR != 0,
			ZR:      r[3]&maskZR != 0,
			Minus:   r[4]&maskMinus != 0,
			Plus:    r[4]&maskPlus != 0,
			RStick:  r[4]&maskRStick != 0,
			LStick:  r[4]&maskLStick != 0,
			Home:    r[4]&maskHome != 0,
			Capture: r[4]&maskCapture != 0,
			Down:    r[5]&maskDown != 0,
			Up:      r[5]&maskUp != 0,
			Right:   r[5]&maskRight != 0,
			Left:    r[5]&maskLeft != 0,
			L:       r[5]&maskL != 0,
			ZL:      r[5]&maskZL != 0,
		},
		LeftStick: Stick{
			Horizontal: stickValue(r[6], r[7], 8),
			Vertical:   stickValue(r[7], r[8], 4),
		},
		RightStick: Stick{
			Horizontal: stickValue(r[9], r[10], 8),
			Vertical:   stickValue(r[10], r[11], 4),
		},
		Accel: imuVec(r[13:19], cal.accel),
		Gyro:  imuVec(r[19:25], cal.gyro),
	}
}
