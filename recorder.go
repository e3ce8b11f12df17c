package main

import (
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"time"
)

const resultFileHeader = "time temperature humidity dew_point\n"

// resultTimestampLayout names result files after the moment the run
// started, one file per sensor.
const resultTimestampLayout = "2006_Jan_02_15_04_05"

// Recorder appends measurement results to flat space-delimited log files,
// one per configured sensor, created lazily on the first successful
// measurement.
type Recorder struct {
	dir   string
	start time.Time
	files map[string]*os.File
}

// NewRecorder creates the output directory and returns a Recorder stamping
// files with the given start time.
func NewRecorder(dir string, start time.Time) (*Recorder, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}
	return &Recorder{
		dir:   dir,
		start: start,
		files: make(map[string]*os.File),
	}, nil
}

// FilePath returns the result file path for a sensor name.
func (r *Recorder) FilePath(name string) string {
	return filepath.Join(r.dir, r.start.Format(resultTimestampLayout)+"_"+name)
}

// Record appends one result line for the named sensor: seconds since the
// run started and the three measured values. An unavailable dew point is
// written as NaN, never as a sentinel that collides with a real reading.
func (r *Recorder) Record(name string, elapsed time.Duration, reading *Reading) error {
	f, ok := r.files[name]
	if !ok {
		path := r.FilePath(name)
		slog.Info("Creating result file", "sensor", name, "path", path)

		var err error
		f, err = os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("create result file: %w", err)
		}
		if _, err := f.WriteString(resultFileHeader); err != nil {
			f.Close()
			return err
		}
		r.files[name] = f
	}

	dp := float64(math.NaN())
	if reading.DewPointOK {
		dp = float64(reading.DewPoint)
	}
	_, err := fmt.Fprintf(f, "%.2f %.2f %.2f %.2f\n",
		elapsed.Seconds(), reading.Temperature, reading.Humidity, dp)
	return err
}

// Close closes all open result files.
func (r *Recorder) Close() {
	for name, f := range r.files {
		if err := f.Close(); err != nil {
			slog.Error("Error closing result file", "sensor", name, "error", err)
		}
	}
}
