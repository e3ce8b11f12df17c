package main

import (
	"errors"
	"fmt"
)

var (
	// ErrCommandTransmission means a command write was acknowledged only
	// partially: the last acked byte index was not the full command length.
	ErrCommandTransmission = errors.New("command transmission incomplete")

	// ErrMeasureCommand means the measure command write was acknowledged
	// only partially.
	ErrMeasureCommand = errors.New("measure command transmission incomplete")

	// ErrChecksum is a CRC mismatch on an identification response.
	ErrChecksum = errors.New("checksum mismatch")

	// ErrTemperatureChecksum is a CRC mismatch on the temperature half of a
	// measurement. Temperature is a prerequisite for the whole measurement,
	// so the humidity half is never examined after this error.
	ErrTemperatureChecksum = errors.New("temperature checksum mismatch")

	// ErrHumidityChecksum is a CRC mismatch on the humidity half of a
	// measurement. The temperature value was valid, but the combined
	// measurement is rejected.
	ErrHumidityChecksum = errors.New("humidity checksum mismatch")
)

// NackError is returned when the sensor does not acknowledge an I2C
// transfer, which usually means it has been disconnected from the stick.
type NackError struct {
	Addr byte   // 7-bit slave address of the attempted transfer
	Op   string // "write" or "read"
}

func (e *NackError) Error() string {
	return fmt.Sprintf("I2C %s at address %d not acknowledged, possible slave disconnection", e.Op, e.Addr)
}

// IsNack reports whether err is a transport NACK.
func IsNack(err error) bool {
	var nack *NackError
	return errors.As(err, &nack)
}
