package procon

// AxisCalibration is the per-axis correction applied to raw IMU samples:
// physical = (raw - Offset) * Coeff.
type AxisCalibration struct {
	Offset int16
	Coeff  float64
}

// imuCalibration carries one record per axis, indexed X=0, Y=1, Z=2.
type imuCalibration struct {
	accel [3]AxisCalibration
	gyro  [3]AxisCalibration
}

// neutralCalibration is the construction default: zero offsets, a scale of
// exactly 1. Raw samples pass through unchanged until flash calibration is
// loaded or a caller overrides it.
func neutralCalibration() imuCalibration {
	var c imuCalibration
	for i := range c.accel {
		c.accel[i].Coeff = 1
		c.gyro[i].Coeff = 1
	}
	return c
}

// coeffFromRaw applies the scale rule: divisor/raw, or exactly 1 when the
// raw value equals the divisor.
func coeffFromRaw(raw, divisor int16) float64 {
	if raw == divisor {
		return 1
	}
	return float64(divisor) / float64(raw)
}

// int16LE assembles a signed 16-bit value from its little-endian bytes.
func int16LE(lo, hi byte) int16 {
	return int16(uint16(lo) | uint16(hi)<<8)
}

// decodeIMUCalibration unpacks a 24-byte flash calibration block: three
// accelerometer offsets, three raw accelerometer coefficients, then the
// same pair for the gyroscope, all little-endian int16.
func decodeIMUCalibration(data []byte) (accelOffsets, accelCoeffs, gyroOffsets, gyroCoeffs [3]int16) {
	for i := 0; i < 3; i++ {
		accelOffsets[i] = int16LE(data[i*2], data[i*2+1])
		accelCoeffs[i] = int16LE(data[6+i*2], data[7+i*2])
		gyroOffsets[i] = int16LE(data[12+i*2], data[13+i*2])
		gyroCoeffs[i] = int16LE(data[18+i*2], data[19+i*2])
	}
	return
}

// SetAccelCalibration overrides the accelerometer calibration. Offsets are
// stored as given; raw coefficients go through the divisor rule.
func (c *ProController) SetAccelCalibration(offsets, rawCoeffs [3]int16) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := 0; i < 3; i++ {
		c.cal.accel[i] = AxisCalibration{
			Offset: offsets[i],
			Coeff:  coeffFromRaw(rawCoeffs[i], AccelCoeffDivisor),
		}
	}
}

// SetGyroCalibration overrides the gyroscope calibration. Offsets are
// stored as given; raw coefficients go through the divisor rule.
func (c *ProController) SetGyroCalibration(offsets, rawCoeffs [3]int16) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := 0; i < 3; i++ {
		c.cal.gyro[i] = AxisCalibration{
			Offset: offsets[i],
			Coeff:  coeffFromRaw(rawCoeffs[i], GyroCoeffDivisor),
		}
	}
}

// ResetCalibration restores the neutral construction defaults.
func (c *ProController) ResetCalibration() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cal = neutralCalibration()
}

// AccelCalibration returns the accelerometer records, indexed X, Y, Z.
func (c *ProController) AccelCalibration() [3]AxisCalibration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cal.accel
}

// GyroCalibration returns the gyroscope records, indexed X, Y, Z.
func (c *ProController) GyroCalibration() [3]AxisCalibration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cal.gyro
}
