package main

import (
	"fmt"
	"log/slog"
	"strconv"

	"github.com/karalabe/hid"
)

// EK-H5 evaluation kit: a Code Mercenaries IO-Warrior24 USB stick acting as
// the I2C master for the sensor. All I2C traffic goes through fixed-size
// special mode HID reports.
const (
	iowVendorID  = 0x07C0
	iowProductID = 0x1501

	reportSize = 8 // report ID + 7 data bytes

	reportI2CMode  = 0x01
	reportI2CWrite = 0x02
	reportI2CRead  = 0x03
)

// Report is one IO-Warrior special mode report: a fixed-size wire frame
// owned by the caller only for the duration of a single exchange.
type Report struct {
	ID    byte
	Bytes [7]byte
}

// Port is the transport capability the protocol layer needs: send a
// fixed-size report, receive one back, and tell the stick's serial number.
// Implementations own device open/close; the protocol layer never does.
type Port interface {
	WriteReport(r *Report) error
	ReadReport() (Report, error)
	SerialNumber() uint32
}

// Stick is an opened IO-Warrior USB stick.
type Stick struct {
	dev    *hid.Device
	serial uint32
}

// OpenSticks enumerates and opens all attached IO-Warrior sticks.
// Sticks are returned in enumeration order; discovery processes them in
// this same order, which is the documented binding order.
func OpenSticks() ([]*Stick, error) {
	var sticks []*Stick
	for _, info := range hid.Enumerate(iowVendorID, iowProductID) {
		// The I2C special mode pipe is on interface 1; interface 0 carries
		// the plain I/O pins report.
		if info.Interface == 0 {
			continue
		}

		serial, err := parseStickSerial(info.Serial)
		if err != nil {
			slog.Warn("Skipping stick with unparsable serial number",
				"path", info.Path,
				"serial", info.Serial,
				"error", err)
			continue
		}

		dev, err := info.Open()
		if err != nil {
			slog.Warn("Unable to open stick",
				"path", info.Path,
				"serial", serial,
				"error", err)
			continue
		}

		sticks = append(sticks, &Stick{dev: dev, serial: serial})
	}
	return sticks, nil
}

// parseStickSerial converts the stick's hexadecimal serial number string
// into the decimal form used in the sensor binding descriptor.
func parseStickSerial(s string) (uint32, error) {
	n, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("serial %q: %w", s, err)
	}
	return uint32(n), nil
}

// WriteReport sends one special mode report to the stick.
func (s *Stick) WriteReport(r *Report) error {
	buf := make([]byte, reportSize)
	buf[0] = r.ID
	copy(buf[1:], r.Bytes[:])
	if _, err := s.dev.Write(buf); err != nil {
		return fmt.Errorf("write report 0x%02X: %w", r.ID, err)
	}
	return nil
}

// ReadReport receives one special mode report from the stick.
func (s *Stick) ReadReport() (Report, error) {
	buf := make([]byte, reportSize)
	if _, err := s.dev.Read(buf); err != nil {
		return Report{}, fmt.Errorf("read report: %w", err)
	}
	var r Report
	r.ID = buf[0]
	copy(r.Bytes[:], buf[1:])
	return r, nil
}

// SerialNumber returns the stick's serial number in decimal form.
func (s *Stick) SerialNumber() uint32 {
	return s.serial
}

// EnableI2C switches the stick into I2C mode with pull-up resistors and
// the sensor bus enabled.
func (s *Stick) EnableI2C() error {
	r := Report{ID: reportI2CMode}
	r.Bytes[0] = 0x01 // enable I2C
	r.Bytes[1] = 0x80 // enable pull-ups, enable bus
	return s.WriteReport(&r)
}

// DisableI2C switches the stick out of I2C mode.
func (s *Stick) DisableI2C() error {
	r := Report{ID: reportI2CMode}
	return s.WriteReport(&r)
}

// Close releases the underlying HID device.
func (s *Stick) Close() error {
	return s.dev.Close()
}
