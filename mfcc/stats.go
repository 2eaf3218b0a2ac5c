package mfcc

import (
	"fmt"
	"math"
	"strings"
)

const previewCount = 5 // values per line in the text summary

// Summary holds descriptive statistics of a matrix.  It is recomputed from
// the matrix on demand and never modified afterwards.
type Summary struct {
	Frames     int       // number of frames
	Coeffs     int       // coefficients per frame
	FrameMeans []float64 // mean of each frame over its coefficients
	FrameStds  []float64 // population std of each frame over its coefficients
	CoeffMeans []float64 // mean of each coefficient over all frames
	CoeffStds  []float64 // population std of each coefficient over all frames
	Min        float64   // smallest cell
	Max        float64   // largest cell
	Mean       float64   // mean of all cells
	Energy     float64   // mean of coefficient 0 over all frames, a loudness proxy
	Duration   float64   // seconds, Frames * FrameStride
}

// Summarize computes the statistics of m.  It returns nil for an empty or
// ragged matrix so callers never see NaN.
func Summarize(m Matrix) *Summary {
	if m.Check() != nil {
		return nil
	}
	frames, coeffs := m.Shape()
	s := &Summary{
		Frames:     frames,
		Coeffs:     coeffs,
		FrameMeans: make([]float64, frames),
		FrameStds:  make([]float64, frames),
		CoeffMeans: make([]float64, coeffs),
		CoeffStds:  make([]float64, coeffs),
		Duration:   float64(frames) * FrameStride,
	}
	s.Min, s.Max, _ = m.Extent()

	var total float64
	for i, f := range m {
		s.FrameMeans[i], s.FrameStds[i] = meanStd(f)
		for j, v := range f {
			s.CoeffMeans[j] += v
			total += v
		}
	}
	s.Mean = total / float64(frames*coeffs)
	for j := range s.CoeffMeans {
		s.CoeffMeans[j] /= float64(frames)
	}
	for _, f := range m {
		for j, v := range f {
			d := v - s.CoeffMeans[j]
			s.CoeffStds[j] += d * d
		}
	}
	for j := range s.CoeffStds {
		s.CoeffStds[j] = math.Sqrt(s.CoeffStds[j] / float64(frames))
	}
	s.Energy = s.CoeffMeans[0]
	return s
}

// meanStd returns the mean and population standard deviation of x.
func meanStd(x []float64) (float64, float64) {
	var sum float64
	for _, v := range x {
		sum += v
	}
	mean := sum / float64(len(x))
	var sq float64
	for _, v := range x {
		sq += (v - mean) * (v - mean)
	}
	return mean, math.Sqrt(sq / float64(len(x)))
}

// Lines renders the summary as the four text lines of the stats panel:
// frame means, frame standard deviations, energy and duration.  A nil
// summary has no lines.
func (s *Summary) Lines() []string {
	if s == nil {
		return nil
	}
	return []string{
		"MFCC Mean (first 5): " + joinFixed(s.FrameMeans, previewCount, 3),
		"MFCC Std (first 5): " + joinFixed(s.FrameStds, previewCount, 3),
		fmt.Sprintf("Energy (mean C0): %.3f", s.Energy),
		fmt.Sprintf("Duration (s): %.2f", s.Duration),
	}
}

// String joins Lines with newlines.
func (s *Summary) String() string {
	return strings.Join(s.Lines(), "\n")
}

func joinFixed(x []float64, n, prec int) string {
	if len(x) > n {
		x = x[:n]
	}
	parts := make([]string, len(x))
	for i, v := range x {
		parts[i] = fmt.Sprintf("%.*f", prec, v)
	}
	return strings.Join(parts, ", ")
}
