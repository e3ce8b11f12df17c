package main

import (
	"fmt"
	"math"
)

// Dew point calculation coefficients, taken from the SHT7x datasheet page 8.
const (
	dewPointTPlus  = 243.12 // Tn coefficient above 0 degC
	dewPointMPlus  = 17.62  // m coefficient above 0 degC
	dewPointTMinus = 272.62 // Tn coefficient at or below 0 degC
	dewPointMMinus = 22.46  // m coefficient at or below 0 degC
)

// Reading represents one converted Temperature|Humidity measurement.
type Reading struct {
	Temperature float32 // degC
	Humidity    float32 // % RH
	DewPoint    float32 // degC, valid only when DewPointOK
	DewPointOK  bool
}

// String converts a Reading to a string.
func (r *Reading) String() string {
	if !r.DewPointOK {
		return fmt.Sprintf("Temperature: %.2f; Humidity: %.2f; DewPoint: n/a", r.Temperature, r.Humidity)
	}
	return fmt.Sprintf("Temperature: %.2f; Humidity: %.2f; DewPoint: %.2f", r.Temperature, r.Humidity, r.DewPoint)
}

// convertTemperature maps a raw 16-bit sensor code to degrees Celsius.
// Formula from the SHTW1 datasheet.
func convertTemperature(code uint16) float32 {
	return 175*float32(code)/65536 - 45
}

// convertHumidity maps a raw 16-bit sensor code to percent relative humidity.
// Formula from the SHTW1 datasheet.
func convertHumidity(code uint16) float32 {
	return 100 * float32(code) / 65536
}

// dewPoint derives the dew point in degrees Celsius from temperature and
// relative humidity using the Magnus formula from the SHT7x datasheet.
// The second return value is false when the dew point is unavailable,
// which is the case for any humidity at or below zero.
func dewPoint(temperature, humidity float32) (float32, bool) {
	if humidity <= 0 {
		return 0, false
	}

	var tn, m float32
	if temperature > 0 {
		tn, m = dewPointTPlus, dewPointMPlus
	} else {
		tn, m = dewPointTMinus, dewPointMMinus
	}

	lnRH := float32(math.Log(float64(humidity) / 100.0))
	gamma := lnRH + m*temperature/(tn+temperature)
	return tn * gamma / (m - gamma), true
}
