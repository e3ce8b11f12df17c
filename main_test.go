package main

import (
	"context"
	"strings"
	"testing"
	"time"
)

func loopConfig() *Config {
	return &Config{
		MeasurementDelay: time.Millisecond,
		RetryLimit:       3,
		PlotUpdateEvery:  1,
	}
}

func newTestRecorder(t *testing.T) *Recorder {
	t.Helper()
	recorder, err := NewRecorder(t.TempDir(), time.Now())
	if err != nil {
		t.Fatalf("NewRecorder() unexpected error: %v", err)
	}
	t.Cleanup(recorder.Close)
	return recorder
}

// A sensor failing RetryLimit times in a row is the only condition that
// terminates the whole run.
func TestMeasurementLoopRetryLimitFatal(t *testing.T) {
	// An exhausted fakePort fails every exchange.
	sensor := &Sensor{Name: "outer", StickSerial: 6873, Port: &fakePort{}, Status: StatusBound}

	err := measurementLoop(context.Background(), loopConfig(), []*Sensor{sensor}, newTestRecorder(t), nil)
	if err == nil {
		t.Fatal("measurementLoop() must return the fatal error once the retry limit is hit")
	}
	if !strings.Contains(err.Error(), "outer") {
		t.Errorf("fatal error must name the sensor, got %q", err)
	}
	if sensor.failures != 3 {
		t.Errorf("consecutive failures = %d, want 3", sensor.failures)
	}
}

// One successful measurement resets the consecutive-failure counter.
func TestMeasurementLoopSuccessResetsFailures(t *testing.T) {
	port := &fakePort{}
	port.queue(nackEcho())                    // cycle 1: failure
	port.queue(nackEcho())                    // cycle 2: failure
	port.queue(ackEcho(), measureResponse())  // cycle 3: success, counter resets
	// Exhausted from cycle 4 on: three more failures reach the limit.
	sensor := &Sensor{Name: "outer", StickSerial: 6873, Port: port, Status: StatusBound}

	err := measurementLoop(context.Background(), loopConfig(), []*Sensor{sensor}, newTestRecorder(t), nil)
	if err == nil {
		t.Fatal("measurementLoop() must eventually return the fatal error")
	}
	if sensor.Last == nil {
		t.Fatal("the successful cycle must record a measurement")
	}
	if !almostEqual(sensor.Last.Temperature, 25.0, 0.01) {
		t.Errorf("recorded temperature = %f, want ~25.0", sensor.Last.Temperature)
	}
	if sensor.failures != 3 {
		t.Errorf("consecutive failures = %d, want 3 counted after the reset", sensor.failures)
	}
}

func TestMeasurementLoopStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sensor := &Sensor{Name: "outer", StickSerial: 6873} // never bound
	err := measurementLoop(ctx, loopConfig(), []*Sensor{sensor}, newTestRecorder(t), nil)
	if err != nil {
		t.Errorf("cancelled measurementLoop() = %v, want nil", err)
	}
}

// A zero plot cadence must not crash the loop even when plotting is on.
func TestMeasurementLoopZeroPlotCadence(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	config := loopConfig()
	config.PlotUpdateEvery = 0
	sensor := &Sensor{Name: "outer", StickSerial: 6873}

	err := measurementLoop(ctx, config, []*Sensor{sensor}, newTestRecorder(t), &Plotter{points: 10})
	if err != nil {
		t.Errorf("measurementLoop() = %v, want nil", err)
	}
}
