package main

import (
	"os"
	"strings"
	"testing"
	"time"
)

func TestRecorder(t *testing.T) {
	dir := t.TempDir()
	start := time.Date(2016, time.March, 14, 15, 9, 26, 0, time.UTC)

	recorder, err := NewRecorder(dir, start)
	if err != nil {
		t.Fatalf("NewRecorder() unexpected error: %v", err)
	}

	reading := &Reading{Temperature: 24.5, Humidity: 48.25, DewPoint: 12.75, DewPointOK: true}
	if err := recorder.Record("outer", 2*time.Second, reading); err != nil {
		t.Fatalf("Record() unexpected error: %v", err)
	}
	if err := recorder.Record("outer", 2250*time.Millisecond, reading); err != nil {
		t.Fatalf("Record() unexpected error: %v", err)
	}
	recorder.Close()

	content, err := os.ReadFile(recorder.FilePath("outer"))
	if err != nil {
		t.Fatalf("result file missing: %v", err)
	}
	lines := strings.Split(strings.TrimRight(string(content), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("result file has %d lines, want header plus 2 results", len(lines))
	}
	if lines[0] != "time temperature humidity dew_point" {
		t.Errorf("header = %q", lines[0])
	}
	if lines[1] != "2.00 24.50 48.25 12.75" {
		t.Errorf("first result line = %q", lines[1])
	}
	if lines[2] != "2.25 24.50 48.25 12.75" {
		t.Errorf("second result line = %q", lines[2])
	}
}

func TestRecorderUnavailableDewPoint(t *testing.T) {
	recorder, err := NewRecorder(t.TempDir(), time.Now())
	if err != nil {
		t.Fatalf("NewRecorder() unexpected error: %v", err)
	}

	reading := &Reading{Temperature: -10, Humidity: 0}
	if err := recorder.Record("dry", time.Second, reading); err != nil {
		t.Fatalf("Record() unexpected error: %v", err)
	}
	recorder.Close()

	content, err := os.ReadFile(recorder.FilePath("dry"))
	if err != nil {
		t.Fatalf("result file missing: %v", err)
	}
	if !strings.Contains(string(content), "NaN") {
		t.Errorf("unavailable dew point must be recorded as NaN, got %q", string(content))
	}
}

func TestRecorderFileNaming(t *testing.T) {
	start := time.Date(2016, time.March, 14, 15, 9, 26, 0, time.UTC)
	recorder, err := NewRecorder(t.TempDir(), start)
	if err != nil {
		t.Fatalf("NewRecorder() unexpected error: %v", err)
	}
	defer recorder.Close()

	path := recorder.FilePath("outer")
	if !strings.HasSuffix(path, "2016_Mar_14_15_09_26_outer") {
		t.Errorf("unexpected result file path %q", path)
	}
}
