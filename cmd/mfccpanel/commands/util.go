package commands

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/thomasteplick/mfccpanel/config"
	"github.com/thomasteplick/mfccpanel/mfcc"
	"github.com/thomasteplick/mfccpanel/render"
	"github.com/thomasteplick/mfccpanel/session"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00ff9f"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6e7681"))
	detectStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffff00"))
	bannerStyle = lipgloss.NewStyle().Bold(true).
			Foreground(lipgloss.Color("#222222")).
			Background(lipgloss.Color("#ffff80")).
			Padding(0, 1)
)

// printSection writes a titled block of lines.
func printSection(w io.Writer, title string, lines []string) {
	if len(lines) == 0 {
		return
	}
	fmt.Fprintln(w, titleStyle.Render(title))
	for _, l := range lines {
		fmt.Fprintln(w, "  "+l)
	}
}

// printRequest writes what the panel shows after an extraction.
func printRequest(w io.Writer, req *session.RenderRequest) {
	if req.Command != "" {
		fmt.Fprintln(w, bannerStyle.Render("Wake Word Detected! Command: "+req.Command))
	}
	console := make([]string, len(req.Console))
	for i, l := range req.Console {
		if l == render.HighlightLabel {
			l = detectStyle.Render(l)
		}
		console[i] = l
	}
	printSection(w, "Console", console)
	printSection(w, "Statistics", req.Stats.Lines())
	if req.Shape != "" {
		fmt.Fprintln(w, dimStyle.Render("MFCC shape: "+req.Shape))
	}
}

// writeOutputs draws the matrix into dir and returns the written paths.
func writeOutputs(dir string, rc *config.Render, req *session.RenderRequest) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("output dir: %w", err)
	}
	var clamp *render.Domain
	if rc.Clamp.Enabled {
		clamp = &render.Domain{Min: rc.Clamp.Min, Max: rc.Clamp.Max}
	}

	hm, err := render.RenderHeatmap(req.Matrix, rc.Heatmap.Width, rc.Heatmap.Height,
		render.HeatmapOptions{Clamp: clamp, ColorbarWidth: rc.Colorbar.Width})
	if err != nil {
		return nil, err
	}
	lg, err := render.RenderLineGraph(req.Matrix, rc.LineGraph.Width, rc.LineGraph.Height,
		render.LineGraphOptions{Highlight: req.Highlight, Axes: true})
	if err != nil {
		return nil, err
	}

	outputs := []struct {
		name  string
		write func(io.Writer) error
	}{
		{"heatmap.png", func(w io.Writer) error { return render.EncodePNG(w, render.Composite(hm.Image, hm.Colorbar)) }},
		{"linegraph.png", func(w io.Writer) error { return render.EncodePNG(w, lg) }},
		{"chart.png", func(w io.Writer) error {
			return render.ChartPNG(w, req.Matrix, rc.Chart.Width, rc.Chart.Height, req.Highlight)
		}},
		{"mfcc.csv", func(w io.Writer) error { return mfcc.WriteCSV(w, req.Matrix) }},
	}
	var written []string
	for _, o := range outputs {
		path := filepath.Join(dir, o.name)
		if err := writeFile(path, o.write); err != nil {
			return written, err
		}
		written = append(written, path)
	}
	return written, nil
}

// writeFile renders into memory first so a failed render leaves no file.
func writeFile(path string, write func(io.Writer) error) error {
	var buf bytes.Buffer
	if err := write(&buf); err != nil {
		return fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// loadClip reads an audio file for upload.
func loadClip(path string) (session.Clip, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return session.Clip{}, fmt.Errorf("read clip: %w", err)
	}
	return session.Clip{Name: filepath.Base(path), Data: data}, nil
}

// parseHighlight reads "start:end" in frames.  Empty means no highlight.
func parseHighlight(s string) (*mfcc.HighlightRange, error) {
	if s == "" {
		return nil, nil
	}
	a, b, ok := strings.Cut(s, ":")
	if !ok {
		return nil, fmt.Errorf("highlight %q: want start:end", s)
	}
	start, err := strconv.Atoi(strings.TrimSpace(a))
	if err != nil {
		return nil, fmt.Errorf("highlight start: %w", err)
	}
	end, err := strconv.Atoi(strings.TrimSpace(b))
	if err != nil {
		return nil, fmt.Errorf("highlight end: %w", err)
	}
	return &mfcc.HighlightRange{Start: start, End: end}, nil
}

// readMatrix loads a matrix stored as CSV.
func readMatrix(path string) (mfcc.Matrix, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return mfcc.ReadCSV(f)
}
