package procon

import "time"

// Nintendo Switch Pro Controller identifiers.
const (
	VendorNintendo uint16 = 0x057E
	ProductProCon  uint16 = 0x2009
)

// Report ids, byte 0 of every report.
const (
	reportOutput      byte = 0x01 // host->device subcommand carrier
	reportSubcmdReply byte = 0x21
	reportFullInput   byte = 0x30
)

// Subcommand ids carried at byte 10 of an output report.
const (
	subcmdSetReportMode byte = 0x03
	subcmdDisconnect    byte = 0x06
	subcmdSPIFlashRead  byte = 0x10
	subcmdSetPlayerLamp byte = 0x30
	subcmdEnableIMU     byte = 0x40
)

// SPI flash layout, usable with ReadFlash. The user calibration block is
// only valid when the marker bytes are present at AddrUserCalMarker.
const (
	AddrFactoryIMUCal uint32 = 0x6020
	AddrStickCal      uint32 = 0x603D
	AddrColors        uint32 = 0x6050
	AddrUserCalMarker uint32 = 0x8026
	AddrUserIMUCal    uint32 = 0x8028
)

// Sizes of the flash records read during setup.
const (
	markerLen   = 2
	colorsLen   = 6
	stickCalLen = 9
	imuCalLen   = 24
)

// Marker bytes announcing a user IMU calibration block.
const (
	userCalMarker0 byte = 0xB2
	userCalMarker1 byte = 0xA1
)

// MaxFlashChunk is the largest number of flash bytes one subcommand reply
// can carry. Larger reads must be split into chunks.
const MaxFlashChunk byte = 0x1D

// Raw divisors for the IMU coefficient rule. A stored raw coefficient
// equal to its divisor means a scale of exactly 1.
const (
	AccelCoeffDivisor int16 = 0x4000
	GyroCoeffDivisor  int16 = 0x343B
)

// Button masks for byte 3, the right-hand cluster.
const (
	maskY  byte = 0x01
	maskX  byte = 0x02
	maskB  byte = 0x04
	maskA  byte = 0x08
	maskR  byte = 0x40
	maskZR byte = 0x80
)

// Button masks for byte 4, the shared cluster.
const (
	maskMinus   byte = 0x01
	maskPlus    byte = 0x02
	maskRStick  byte = 0x04
	maskLStick  byte = 0x08
	maskHome    byte = 0x10
	maskCapture byte = 0x20
)

// Button masks for byte 5, the left-hand cluster.
const (
	maskDown  byte = 0x01
	maskUp    byte = 0x02
	maskRight byte = 0x04
	maskLeft  byte = 0x08
	maskL     byte = 0x40
	maskZL    byte = 0x80
)

// Battery bits in byte 2.
const (
	batteryChargingBit byte = 0x10
	batteryLevelMask   byte = 0xE0
)

const (
	inputReportLen = 49

	// imuWakeDelay is the settle time between enabling the IMU and
	// switching the controller into full report mode.
	imuWakeDelay = 20 * time.Millisecond

	defaultReplyTimeout = 500 * time.Millisecond
	defaultPollInterval = 100 * time.Millisecond
)
