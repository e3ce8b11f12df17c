package main

// Sensor commands taken from the SHTW1 datasheet.
const (
	cmdReadID    = 0xEFC8 // read ID register
	cmdSoftReset = 0x805D // soft reset

	cmdMeasureTFirstClkStretch  = 0x7CA2 // measure, T first, clock stretching enabled
	cmdMeasureTFirstPolling     = 0x7866 // measure, T first, clock stretching disabled
	cmdMeasureRHFirstClkStretch = 0x5C24 // measure, RH first, clock stretching enabled
	cmdMeasureRHFirstPolling    = 0x58E0 // measure, RH first, clock stretching disabled
)

// Bits 5 to 0 of the ID register are the product code; it is 000111 for
// both SHTC1 and SHTW1.
const (
	productCodeMask  = 0x3F
	shtProductCode   = 7
	maxSensorNameLen = 30
)

// Status describes how far a configured sensor got through discovery.
type Status int

const (
	// StatusUnbound is the initial state before any discovery pass, and
	// the state a later duplicate of an already bound serial stays in.
	StatusUnbound Status = iota
	// StatusStickMissing means no attached stick carried the configured
	// serial during discovery.
	StatusStickMissing
	// StatusSensorMissing means the stick was found but no sensor answered
	// on its I2C bus.
	StatusSensorMissing
	// StatusUnknownSensor means a sensor answered but its product code is
	// not the SHTC1/SHTW1 one.
	StatusUnknownSensor
	// StatusBound means the stick was found and carries a verified
	// SHTC1/SHTW1 sensor.
	StatusBound
)

func (s Status) String() string {
	switch s {
	case StatusStickMissing:
		return "stick-missing"
	case StatusSensorMissing:
		return "sensor-missing"
	case StatusUnknownSensor:
		return "unknown-sensor"
	case StatusBound:
		return "bound"
	default:
		return "unbound"
	}
}

// Sensor binds a configured logical sensor name to a physical USB stick.
// Entries are created once at configuration load; status, port and the last
// reading mutate on every discovery pass and measurement cycle. The Port is
// a non-owning reference supplied by the transport layer.
type Sensor struct {
	Name        string
	StickSerial uint32
	Port        Port
	Status      Status
	Info        string
	Last        *Reading

	failures int // consecutive measure failures, driver policy
}

// Identify reads the sensor's ID register and returns its 6-bit product
// code. It is a pure classification of the device state: running it twice
// on the same device yields the same result.
func Identify(port Port) (int, error) {
	acked, err := writeCommand(port, cmdReadID)
	if err != nil {
		return -1, err
	}
	if acked != commandLength {
		return -1, ErrCommandTransmission
	}

	resp, err := readResponse(port, 3)
	if err != nil {
		return -1, err
	}
	if !verifyChecksum(resp.Bytes[1:3], resp.Bytes[3]) {
		return -1, ErrChecksum
	}

	id := uint16(resp.Bytes[1])<<8 | uint16(resp.Bytes[2])
	return int(id & productCodeMask), nil
}

// SoftReset sends the soft reset command to the sensor.
func SoftReset(port Port) error {
	acked, err := writeCommand(port, cmdSoftReset)
	if err != nil {
		return err
	}
	if acked != commandLength {
		return ErrCommandTransmission
	}
	return nil
}

// Measure runs one measurement cycle: temperature first, then humidity,
// each CRC-checked, then the derived dew point.
//
// Temperature is the prerequisite for the whole measurement: if its
// checksum fails the humidity half is never examined and the error is
// ErrTemperatureChecksum. If only the humidity checksum fails, the returned
// Reading still carries the correctly converted temperature, but the
// measurement as a whole is rejected with ErrHumidityChecksum.
func Measure(port Port) (Reading, error) {
	acked, err := writeCommand(port, cmdMeasureTFirstClkStretch)
	if err != nil {
		return Reading{}, err
	}
	if acked != commandLength {
		return Reading{}, ErrMeasureCommand
	}

	resp, err := readResponse(port, 6)
	if err != nil {
		return Reading{}, err
	}

	if !verifyChecksum(resp.Bytes[1:3], resp.Bytes[3]) {
		return Reading{}, ErrTemperatureChecksum
	}
	temperature := convertTemperature(uint16(resp.Bytes[1])<<8 | uint16(resp.Bytes[2]))

	if !verifyChecksum(resp.Bytes[4:6], resp.Bytes[6]) {
		return Reading{Temperature: temperature}, ErrHumidityChecksum
	}
	humidity := convertHumidity(uint16(resp.Bytes[4])<<8 | uint16(resp.Bytes[5]))

	dp, ok := dewPoint(temperature, humidity)
	return Reading{
		Temperature: temperature,
		Humidity:    humidity,
		DewPoint:    dp,
		DewPointOK:  ok,
	}, nil
}
