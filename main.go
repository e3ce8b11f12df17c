package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	flag "github.com/spf13/pflag"
)

const (
	ver string = "1.0"
)

var (
	configFile          = flag.String("config-file", "config.ini", "Config file location")
	listenAddress       = flag.String("web.listen-address", ":8080", "Address to listen on for web interface and telemetry")
	measurementInterval = flag.Int("measurement-interval", 0, "Measurement interval in milliseconds, overrides the config file when set")
	verbose             = flag.Bool("verbose", false, "Enable verbose output")
)

func main() {
	os.Exit(run())
}

func run() int {
	var loggingLevel = new(slog.LevelVar)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: loggingLevel}))
	slog.SetDefault(logger)

	flag.Parse()

	if *verbose {
		loggingLevel.Set(slog.LevelDebug)
		slog.Debug("Debug logging enabled")
	}

	slog.Info("Starting", "version", ver)

	config, err := NewConfig(*configFile)
	if err != nil {
		slog.Error("Unable to parse configuration", "error", err)
		return 1
	}
	if *measurementInterval > 0 {
		config.MeasurementDelay = time.Duration(*measurementInterval) * time.Millisecond
	}

	sensors, err := LoadSensors(config.SensorList)
	if err != nil {
		slog.Error("Unable to load sensor binding descriptor", "error", err)
		return 1
	}
	if len(sensors) == 0 {
		slog.Error("No sensors configured", "file", config.SensorList)
		return 1
	}

	// Interrupt requests a cooperative stop, checked between measurement
	// cycles: a report exchange always runs to completion once started.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sticks, err := OpenSticks()
	if err != nil {
		slog.Error("Unable to enumerate USB sticks", "error", err)
		return 1
	}
	if len(sticks) == 0 {
		slog.Error("No USB stick device found")
		return 1
	}
	defer closeSticks(sticks)

	ports := make([]Port, 0, len(sticks))
	for _, stick := range sticks {
		if err := stick.EnableI2C(); err != nil {
			slog.Error("Unable to enable I2C mode",
				"serial", stick.SerialNumber(),
				"error", err)
			continue
		}
		ports = append(ports, stick)
	}

	Discover(ports, sensors)
	if missing := CheckPresence(sensors); missing > 0 {
		slog.Warn("Some configured sensors are missing", "count", missing)
	}
	logInventory(sensors)

	recorder, err := NewRecorder(config.OutputDir, time.Now())
	if err != nil {
		slog.Error("Unable to prepare result files", "error", err)
		return 1
	}
	defer recorder.Close()

	var plotter *Plotter
	if config.PlotsEnabled {
		plotter = NewPlotter(config.PlotPoints)
		defer func() {
			plotter.Summary(boundSeries(sensors, recorder))
			plotter.Close()
		}()
	}

	go func() {
		slog.Info("Starting HTTP server", "address", *listenAddress)
		http.Handle("/metrics", promhttp.Handler())
		if err := http.ListenAndServe(*listenAddress, nil); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()

	slog.Info("Starting measurements", "interval", config.MeasurementDelay)
	if err := measurementLoop(ctx, config, sensors, recorder, plotter); err != nil {
		slog.Error("Measurement loop terminated", "error", err)
		return 1
	}

	slog.Info("Stopped")
	return 0
}

// measurementLoop runs one full pass over all bound sensors per cycle until
// the context is cancelled. A sensor exceeding the consecutive-failure
// retry limit terminates the whole run; that is the only fatal condition,
// individual failures only mark the affected sensor.
func measurementLoop(ctx context.Context, config *Config, sensors []*Sensor, recorder *Recorder, plotter *Plotter) error {
	start := time.Now()
	cycle := 0

	for {
		cycle++
		for _, sensor := range sensors {
			if sensor.Port == nil {
				continue
			}

			reading, err := Measure(sensor.Port)
			if err != nil {
				sensor.failures++
				countError(sensor.Name)
				slog.Error("Measurement failed",
					"sensor", sensor.Name,
					"error", err,
					"consecutiveFailures", sensor.failures)
				if sensor.failures >= config.RetryLimit {
					return fmt.Errorf("sensor %s: %d consecutive failed trials of I2C communication: %w",
						sensor.Name, sensor.failures, err)
				}
				continue
			}

			sensor.failures = 0
			sensor.Last = &reading
			slog.Debug("Measured", "sensor", sensor.Name, "reading", reading.String())

			publishReading(sensor.Name, &reading)
			if err := recorder.Record(sensor.Name, time.Since(start), &reading); err != nil {
				slog.Error("Unable to record result", "sensor", sensor.Name, "error", err)
			}
		}

		if plotter != nil && config.PlotUpdateEvery > 0 && cycle%config.PlotUpdateEvery == 0 {
			plotter.Refresh(boundSeries(sensors, recorder))
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(config.MeasurementDelay):
		}
	}
}

// boundSeries lists the result files of sensors that have produced at
// least one measurement.
func boundSeries(sensors []*Sensor, recorder *Recorder) []series {
	var data []series
	for _, sensor := range sensors {
		if sensor.Last != nil {
			data = append(data, series{Name: sensor.Name, File: recorder.FilePath(sensor.Name)})
		}
	}
	return data
}

// logInventory dumps the state of every configured sensor after discovery.
func logInventory(sensors []*Sensor) {
	for _, sensor := range sensors {
		slog.Info("Configured sensor",
			"sensor", sensor.Name,
			"serial", sensor.StickSerial,
			"status", sensor.Status.String(),
			"info", sensor.Info)
	}
}

// closeSticks takes every opened stick out of I2C mode and releases it.
func closeSticks(sticks []*Stick) {
	for _, stick := range sticks {
		if err := stick.DisableI2C(); err != nil {
			slog.Debug("Unable to disable I2C mode",
				"serial", stick.SerialNumber(),
				"error", err)
		}
		if err := stick.Close(); err != nil {
			slog.Debug("Error closing stick",
				"serial", stick.SerialNumber(),
				"error", err)
		}
	}
}
