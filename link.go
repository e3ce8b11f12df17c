package main

// I2C transmission parameters taken from the SHTW1 datasheet.
const (
	i2cWriteAddress = 0xE0 // sensor I2C address followed by a write bit
	i2cReadAddress  = 0xE1 // sensor I2C address followed by a read bit

	// Control byte of a write report: generate start condition, transfer
	// 3 bytes, generate stop condition.
	i2cWriteControl = 0xC3

	// Every command transfer to the sensor is 3 bytes on the bus: the
	// address byte plus the 2 command bytes. A fully acknowledged write
	// therefore reports byte index 3 as the last transferred one.
	commandLength = 3

	// High bit of the first status byte of a returned report: the slave
	// did not acknowledge the transfer.
	nackFlag = 0x80
)

// writeCommand sends a 16-bit sensor command over I2C and returns the index
// of the last byte the sensor acknowledged. A NACK from the sensor is
// returned as a *NackError carrying the attempted bus address.
//
// The exchange is single-shot and synchronous; retry policy belongs to the
// callers in sensor.go.
func writeCommand(port Port, command uint16) (int, error) {
	out := Report{ID: reportI2CWrite}
	out.Bytes[0] = i2cWriteControl
	out.Bytes[1] = i2cWriteAddress
	out.Bytes[2] = byte(command >> 8)
	out.Bytes[3] = byte(command)

	if err := port.WriteReport(&out); err != nil {
		return 0, err
	}
	echo, err := port.ReadReport()
	if err != nil {
		return 0, err
	}

	if echo.Bytes[0]&nackFlag != 0 {
		return 0, &NackError{Addr: i2cWriteAddress >> 1, Op: "write"}
	}
	return int(echo.Bytes[0]), nil
}

// readResponse requests count bytes from the sensor and returns the raw
// response report. When the sensor NACKs the read (likely a disconnect) the
// report is still returned alongside a *NackError so the caller can decide
// what to salvage.
func readResponse(port Port, count byte) (Report, error) {
	out := Report{ID: reportI2CRead}
	out.Bytes[0] = count
	out.Bytes[1] = i2cReadAddress

	if err := port.WriteReport(&out); err != nil {
		return Report{}, err
	}
	resp, err := port.ReadReport()
	if err != nil {
		return Report{}, err
	}

	if resp.Bytes[0]&nackFlag != 0 {
		return resp, &NackError{Addr: i2cReadAddress >> 1, Op: "read"}
	}
	return resp, nil
}
