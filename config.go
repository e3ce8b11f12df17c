package main

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/ini.v1"
)

// Sensor binding descriptor format.
const (
	bindingListStart = "sensors:"
	bindingListStop  = "end."
	separationChar   = '\t'

	minConfLineLength = 4
	maxConfLineLength = 40
)

// Config represents the exporter configuration.
type Config struct {
	OutputDir  string
	SensorList string

	MeasurementDelay time.Duration
	RetryLimit       int

	PlotsEnabled    bool
	PlotUpdateEvery int
	PlotPoints      int
}

// NewConfig returns a new Config. A missing settings file is not an error;
// defaults apply and only the sensor binding descriptor is mandatory.
func NewConfig(file string) (*Config, error) {
	slog.Info("Loading configuration", "file", file)
	cfg, err := ini.LooseLoad(file)
	if err != nil {
		return &Config{}, err
	}

	paths := cfg.Section("paths")
	measurement := cfg.Section("measurement")
	plots := cfg.Section("plots")

	c := &Config{
		OutputDir:        paths.Key("output_dir").MustString("records"),
		SensorList:       paths.Key("sensor_list").MustString("configuration"),
		MeasurementDelay: time.Duration(measurement.Key("delay_ms").MustInt(250)) * time.Millisecond,
		RetryLimit:       measurement.Key("retry_limit").MustInt(5),
		PlotsEnabled:     plots.Key("enabled").MustBool(true),
		PlotUpdateEvery:  plots.Key("update_every").MustInt(4),
		PlotPoints:       plots.Key("points").MustInt(100),
	}

	// The plot cadence divides the cycle counter; zero or negative values
	// would stall or crash the measurement loop.
	if c.PlotUpdateEvery < 1 {
		slog.Warn("Invalid plots.update_every, plots refresh every cycle",
			"configured", c.PlotUpdateEvery)
		c.PlotUpdateEvery = 1
	}
	if c.PlotPoints < 1 {
		c.PlotPoints = 1
	}

	return c, nil
}

// LoadSensors reads the sensor binding descriptor file.
func LoadSensors(path string) ([]*Sensor, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("missing sensor binding descriptor: %w", err)
	}
	defer f.Close()
	return ParseSensorList(f)
}

// ParseSensorList parses the sensor binding descriptor: all input up to a
// line exactly equal to "sensors:" is ignored, then each line up to a line
// exactly equal to "end." (or EOF) declares one binding as
// <name><TAB><decimal stick serial>.
//
// Malformed lines are logged and skipped; they never fail the whole load.
// Accepted bindings are returned in file order.
func ParseSensorList(r io.Reader) ([]*Sensor, error) {
	scanner := bufio.NewScanner(r)

	// Ignore the content until the starting phrase.
	for scanner.Scan() {
		if scanner.Text() == bindingListStart {
			break
		}
	}

	var sensors []*Sensor
	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		line := scanner.Text()
		if line == bindingListStop {
			break
		}

		sensor, err := parseBindingLine(line)
		if err != nil {
			slog.Error("Corrupted configuration line in sensors section",
				"line", lineNumber,
				"content", line,
				"error", err)
			continue
		}
		sensors = append(sensors, sensor)
	}
	if err := scanner.Err(); err != nil {
		return sensors, err
	}

	slog.Info("Sensor binding descriptor loaded", "sensors", len(sensors))
	return sensors, nil
}

// parseBindingLine validates and splits one <name><TAB><serial> line.
func parseBindingLine(line string) (*Sensor, error) {
	if len(line) < minConfLineLength {
		return nil, fmt.Errorf("%d characters, too few", len(line))
	}
	if len(line) > maxConfLineLength {
		return nil, fmt.Errorf("%d characters, too many", len(line))
	}

	sep := strings.IndexByte(line, separationChar)
	switch {
	case sep < 0:
		return nil, fmt.Errorf("missing separation character <tab>")
	case sep == 0:
		return nil, fmt.Errorf("no data before separation character <tab>")
	case sep == len(line)-1:
		return nil, fmt.Errorf("no data after separation character <tab>")
	}

	name := line[:sep]
	if !validSensorName(name) {
		return nil, fmt.Errorf("sensor name %q contains characters outside A-Za-z0-9_-", name)
	}
	if len(name) > maxSensorNameLen {
		name = name[:maxSensorNameLen]
	}

	serial, err := strconv.ParseUint(line[sep+1:], 10, 32)
	if err != nil {
		return nil, fmt.Errorf("stick serial %q is not a decimal number", line[sep+1:])
	}
	if serial == 0 {
		return nil, fmt.Errorf("stick serial must not be zero")
	}

	return &Sensor{
		Name:        name,
		StickSerial: uint32(serial),
		Status:      StatusUnbound,
		Info:        "USB stick not found",
	}, nil
}

// validSensorName restricts names to characters that stay inert inside
// result file paths and gnuplot plot commands.
func validSensorName(s string) bool {
	for _, c := range s {
		switch {
		case c >= 'a' && c <= 'z':
		case c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9':
		case c == '_' || c == '-':
		default:
			return false
		}
	}
	return true
}
