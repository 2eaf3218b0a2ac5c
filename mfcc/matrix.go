/*
Feature matrices returned by the feature-extraction service: frames of
spectral coefficients, the highlight window of a detected keyword and the
derived statistics shown next to the plots.
*/

package mfcc

import (
	"errors"
	"fmt"
	"math"
)

const (
	FrameStride      = 0.01 // seconds between frames (10 ms hop)
	detectStartShare = 0.35 // detection window start as a share of the frames
	detectEndShare   = 0.55 // detection window end as a share of the frames
)

var (
	ErrEmpty          = errors.New("mfcc: empty matrix")
	ErrRagged         = errors.New("mfcc: frames have unequal coefficient counts")
	ErrHighlightRange = errors.New("mfcc: highlight range out of bounds")
)

// Frame is one time slice of coefficients.
type Frame []float64

// Matrix holds frames x coefficients.  Rows are frames.
type Matrix []Frame

// Shape returns the frame and coefficient counts.  The coefficient count
// is taken from the first frame.
func (m Matrix) Shape() (frames, coeffs int) {
	if len(m) == 0 {
		return 0, 0
	}
	return len(m), len(m[0])
}

// Rectangular reports whether every frame has the same coefficient count.
// An empty matrix is rectangular.
func (m Matrix) Rectangular() bool {
	if len(m) == 0 {
		return true
	}
	n := len(m[0])
	for _, f := range m[1:] {
		if len(f) != n {
			return false
		}
	}
	return true
}

// Check returns ErrEmpty for a matrix without cells and ErrRagged for
// unequal frames.  Renderers use it to decide between drawing and clearing.
func (m Matrix) Check() error {
	if !m.Rectangular() {
		return ErrRagged
	}
	if frames, coeffs := m.Shape(); frames == 0 || coeffs == 0 {
		return ErrEmpty
	}
	return nil
}

// Extent finds the minimum and maximum over all cells.  ok is false for
// a matrix without cells.
func (m Matrix) Extent() (min, max float64, ok bool) {
	min = math.MaxFloat64
	max = -math.MaxFloat64
	for _, f := range m {
		for _, v := range f {
			if v < min {
				min = v
			}
			if v > max {
				max = v
			}
			ok = true
		}
	}
	if !ok {
		return 0, 0, false
	}
	return min, max, true
}

// Column copies coefficient j of every frame.
func (m Matrix) Column(j int) []float64 {
	col := make([]float64, len(m))
	for i, f := range m {
		col[i] = f[j]
	}
	return col
}

// HighlightRange marks frames [Start, End) to emphasize, typically the
// window in which a keyword was detected.
type HighlightRange struct {
	Start int // first frame
	End   int // frame after the last one
}

// Validate checks 0 <= Start <= End <= frames.
func (hr HighlightRange) Validate(frames int) error {
	if hr.Start < 0 || hr.Start > hr.End || hr.End > frames {
		return fmt.Errorf("%w: [%d, %d] with %d frames", ErrHighlightRange, hr.Start, hr.End, frames)
	}
	return nil
}

// DetectionWindow is the highlight drawn when the service reports a
// command without a position: the 35%..55% stretch of the clip.
func DetectionWindow(frames int) HighlightRange {
	if frames <= 0 {
		return HighlightRange{}
	}
	return HighlightRange{
		Start: int(math.Floor(float64(frames) * detectStartShare)),
		End:   int(math.Floor(float64(frames) * detectEndShare)),
	}
}
