package main

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	temperatureGauge = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "sht_temperature_celsius",
		Help: "SHTC1/SHTW1 sensor temperature",
	},
		[]string{"sensor"})
	humidityGauge = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "sht_humidity_percent",
		Help: "SHTC1/SHTW1 sensor relative humidity",
	},
		[]string{"sensor"})
	dewPointGauge = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "sht_dew_point_celsius",
		Help: "Dew point derived from temperature and humidity",
	},
		[]string{"sensor"})
	deviceErrorsCounter = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sht_device_errors_total",
		Help: "Sensor communication errors",
	},
		[]string{"sensor"})
)

// publishReading exports one successful measurement. An unavailable dew
// point removes the gauge for that sensor rather than exporting a stale or
// sentinel value.
func publishReading(name string, r *Reading) {
	slog.Debug("Publishing reading", "sensor", name, "reading", r.String())
	temperatureGauge.WithLabelValues(name).Set(float64(r.Temperature))
	humidityGauge.WithLabelValues(name).Set(float64(r.Humidity))
	if r.DewPointOK {
		dewPointGauge.WithLabelValues(name).Set(float64(r.DewPoint))
	} else {
		dewPointGauge.DeleteLabelValues(name)
	}
}

// countError tracks one failed communication attempt for a sensor.
func countError(name string) {
	deviceErrorsCounter.WithLabelValues(name).Inc()
}
