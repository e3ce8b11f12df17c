package main

import "log/slog"

// Discover walks all attached sticks and binds them to the configured
// sensors. Sticks are processed in the order given, which is the
// enumeration order of the transport layer; this order is part of the
// contract. For each stick the sensor is soft reset and identified, then
// the first configured entry with a matching stick serial is updated.
// Only that first match is touched per stick, so later duplicates of the
// same serial in the configuration stay unbound.
//
// Failures are recorded per entry and never abort the rest of the pass.
func Discover(ports []Port, sensors []*Sensor) {
	slog.Info("Discovering attached sticks", "count", len(ports))

	attached := make(map[uint32]bool)
	for _, port := range ports {
		serial := port.SerialNumber()
		attached[serial] = true

		if err := SoftReset(port); err != nil {
			slog.Warn("Soft reset failed", "serial", serial, "error", err)
		}
		code, err := Identify(port)

		for _, sensor := range sensors {
			if sensor.StickSerial != serial {
				continue
			}

			switch {
			case err == nil && code == shtProductCode:
				sensor.Port = port
				sensor.Status = StatusBound
				sensor.Info = "USB stick and physical sensor found"
				slog.Info("Bound stick to sensor",
					"sensor", sensor.Name,
					"serial", serial)
			case err != nil:
				sensor.Status = StatusSensorMissing
				sensor.Info = "physical sensor not found"
				slog.Error("No sensor answered on this stick",
					"sensor", sensor.Name,
					"serial", serial,
					"error", err)
			default:
				sensor.Status = StatusUnknownSensor
				sensor.Info = "unknown physical sensor found"
				slog.Error("Unknown sensor product code",
					"sensor", sensor.Name,
					"serial", serial,
					"code", code)
			}
			break
		}
	}

	// Entries whose serial matched no attached stick at all are marked as
	// stick-missing. Later duplicates of a serial that did bind stay
	// unbound per the first-match rule.
	for _, sensor := range sensors {
		if sensor.Port == nil && sensor.Status == StatusUnbound && !attached[sensor.StickSerial] {
			sensor.Status = StatusStickMissing
			sensor.Info = "USB stick not found"
		}
	}
}

// CheckPresence counts configured sensors that are still without a bound
// stick. The count is reported, not fatal: missing sensors are skipped by
// the measurement loop and the rest keep working.
func CheckPresence(sensors []*Sensor) int {
	missing := 0
	for _, sensor := range sensors {
		if sensor.Port == nil {
			slog.Error("Sensor not found",
				"sensor", sensor.Name,
				"serial", sensor.StickSerial,
				"status", sensor.Status.String())
			missing++
		}
	}
	return missing
}
