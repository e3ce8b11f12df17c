package main

import (
	"fmt"
	"io"
	"log/slog"
	"os/exec"
)

// plotSpec describes one plotted quantity: which result file column it
// lives in and the fixed axis setup of its window.
type plotSpec struct {
	title  string
	ylabel string
	yrange string
	column int
}

var plotSpecs = []plotSpec{
	{title: "Temperature plot", ylabel: "Temperature [*C]", yrange: "[-40:100]", column: 2},
	{title: "Relative Humidity plot", ylabel: "RH[%]", yrange: "[0:100]", column: 3},
	{title: "Dew Point plot", ylabel: "Dew_Point[*C]", yrange: "[-40:100]", column: 4},
}

type plotProc struct {
	spec plotSpec
	cmd  *exec.Cmd
	in   io.WriteCloser
}

// Plotter drives one resident gnuplot process per measured quantity,
// refreshing a tail window over the result files. A missing gnuplot binary
// disables plotting with a warning; measurements are unaffected.
type Plotter struct {
	points int
	procs  []*plotProc
}

// NewPlotter starts the live plot processes. points sets the length of the
// on-line plots and with it the X axis range.
func NewPlotter(points int) *Plotter {
	p := &Plotter{points: points}
	for _, spec := range plotSpecs {
		cmd := exec.Command("gnuplot")
		in, err := cmd.StdinPipe()
		if err == nil {
			err = cmd.Start()
		}
		if err != nil {
			slog.Warn("Gnuplot unavailable, live plots disabled", "error", err)
			p.closeProcs()
			p.procs = nil
			return p
		}
		p.procs = append(p.procs, &plotProc{spec: spec, cmd: cmd, in: in})
	}
	return p
}

// series is one plotted line: a sensor name and its result file.
type series struct {
	Name string
	File string
}

// Refresh redraws every live plot window over the last points lines of
// each sensor's result file.
func (p *Plotter) Refresh(data []series) {
	if len(data) == 0 {
		return
	}
	for _, proc := range p.procs {
		fmt.Fprintf(proc.in, "set terminal x11 size 800,300\n")
		fmt.Fprintf(proc.in, "set title '%s'\n", proc.spec.title)
		fmt.Fprintf(proc.in, "set xlabel 'Time[s]'\n")
		fmt.Fprintf(proc.in, "set ylabel '%s' rotate\n", proc.spec.ylabel)
		fmt.Fprintf(proc.in, "set yrange %s\n", proc.spec.yrange)
		fmt.Fprintf(proc.in, "%s\n", plotCommand(proc.spec.column, data, p.points))
		fmt.Fprintf(proc.in, "set xrange [GPVAL_DATA_X_MIN:GPVAL_DATA_X_MAX]\n")
		fmt.Fprintf(proc.in, "replot\n")
	}
}

// Summary opens one persistent window with all three quantities plotted
// over the complete result files. Called once on shutdown.
func (p *Plotter) Summary(data []series) {
	if len(data) == 0 {
		return
	}
	cmd := exec.Command("gnuplot", "-persist")
	in, err := cmd.StdinPipe()
	if err == nil {
		err = cmd.Start()
	}
	if err != nil {
		slog.Warn("Gnuplot unavailable, summary plot skipped", "error", err)
		return
	}

	fmt.Fprintf(in, "set terminal x11 size 800,800\n")
	fmt.Fprintf(in, "set multiplot layout 3,1 rowsfirst title 'Measurement plots of all measured points.'\n")
	for _, spec := range plotSpecs {
		fmt.Fprintf(in, "set title '%s'\n", spec.title)
		fmt.Fprintf(in, "set xlabel 'Time[s]'\n")
		fmt.Fprintf(in, "set ylabel '%s' rotate\n", spec.ylabel)
		fmt.Fprintf(in, "%s\n", plotCommand(spec.column, data, 0))
	}
	fmt.Fprintf(in, "unset multiplot\n")
	in.Close()

	if err := cmd.Wait(); err != nil {
		slog.Warn("Gnuplot summary plot failed", "error", err)
	}
}

// plotCommand builds a gnuplot plot line with one series per sensor.
// A non-zero tail restricts each series to its most recent lines.
func plotCommand(column int, data []series, tail int) string {
	cmd := "plot "
	for i, s := range data {
		if i > 0 {
			cmd += ", "
		}
		source := s.File
		if tail > 0 {
			source = fmt.Sprintf("<tail -n %d %s", tail, s.File)
		}
		cmd += fmt.Sprintf("'%s' using 1:%d title '%s' with lines", source, column, s.Name)
	}
	return cmd
}

// Close shuts the live plot processes down.
func (p *Plotter) Close() {
	p.closeProcs()
}

func (p *Plotter) closeProcs() {
	for _, proc := range p.procs {
		proc.in.Close()
		if err := proc.cmd.Wait(); err != nil {
			slog.Debug("Gnuplot process exited", "error", err)
		}
	}
}
