package procon

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStickValue(t *testing.T) {
	tests := []struct {
		name  string
		lo    byte
		hi    byte
		shift uint
		want  uint16
	}{
		{name: "full scale horizontal", lo: 0xFF, hi: 0x0F, shift: 8, want: 0xFFF},
		{name: "zero", lo: 0x00, hi: 0x00, shift: 8, want: 0},
		{name: "high nibble ignored", lo: 0x00, hi: 0xF0, shift: 8, want: 0},
		{name: "vertical shift overlaps low byte", lo: 0x00, hi: 0x0F, shift: 4, want: 0xF0},
		{name: "vertical full bytes", lo: 0xFF, hi: 0x0F, shift: 4, want: 0xFF},
		{name: "horizontal mid", lo: 0x34, hi: 0x02, shift: 8, want: 0x234},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, stickValue(tc.lo, tc.hi, tc.shift))
		})
	}
}

func TestDecodeStateButtons(t *testing.T) {
	tests := []struct {
		name  string
		byte3 byte
		byte4 byte
		byte5 byte
		want  Buttons
	}{
		{name: "a alone", byte3: 0x08, want: Buttons{A: true}},
		{name: "y alone", byte3: 0x01, want: Buttons{Y: true}},
		{name: "right shoulder pair", byte3: 0xC0, want: Buttons{R: true, ZR: true}},
		{name: "home and capture", byte4: 0x30, want: Buttons{Home: true, Capture: true}},
		{name: "stick clicks", byte4: 0x0C, want: Buttons{RStick: true, LStick: true}},
		{name: "dpad and left shoulders", byte5: 0xC3, want: Buttons{Down: true, Up: true, L: true, ZL: true}},
		{name: "nothing pressed", want: Buttons{}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var r [inputReportLen]byte
			r[0] = reportFullInput
			r[3] = tc.byte3
			r[4] = tc.byte4
			r[5] = tc.byte5
			assert.Equal(t, tc.want, decodeState(&r, neutralCalibration()).Buttons)
		})
	}
}

func TestDecodeStateBattery(t *testing.T) {
	tests := []struct {
		name  string
		byte2 byte
		want  Battery
	}{
		{name: "full and charging", byte2: 0xF0, want: Battery{Charging: true, Level: 7}},
		{name: "level five discharging", byte2: 0xA0, want: Battery{Charging: false, Level: 5}},
		{name: "empty", byte2: 0x00, want: Battery{}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var r [inputReportLen]byte
			r[2] = tc.byte2
			assert.Equal(t, tc.want, decodeState(&r, neutralCalibration()).Battery)
		})
	}
}

func TestDecodeStateSticks(t *testing.T) {
	var r [inputReportLen]byte
	r[6], r[7], r[8] = 0xFF, 0x0F, 0x00
	r[9], r[10], r[11] = 0x12, 0xA3, 0x04

	s := decodeState(&r, neutralCalibration())
	// Left vertical reuses r[7]: 0x0F | (0x00&0x0F)<<4.
	assert.Equal(t, Stick{Horizontal: 0xFFF, Vertical: 0x0F}, s.LeftStick)
	// Right: 0x12 | 0x03<<8, and 0xA3 | 0x04<<4.
	assert.Equal(t, Stick{Horizontal: 0x312, Vertical: 0xE3}, s.RightStick)
}

func TestDecodeStateIMU(t *testing.T) {
	cal := neutralCalibration()
	cal.accel[0] = AxisCalibration{Offset: 10, Coeff: 2}
	cal.gyro[2] = AxisCalibration{Offset: -50, Coeff: 1}

	var r [inputReportLen]byte
	// Accel X = 100, Y = -1, Z = 0.
	r[13], r[14] = 0x64, 0x00
	r[15], r[16] = 0xFF, 0xFF
	// Gyro X = 0, Y = 0, Z = -50.
	r[23], r[24] = 0xCE, 0xFF

	s := decodeState(&r, cal)
	assert.Equal(t, Vec3{X: 180, Y: -1, Z: 0}, s.Accel)
	assert.Equal(t, Vec3{X: 0, Y: 0, Z: 0}, s.Gyro)
}
