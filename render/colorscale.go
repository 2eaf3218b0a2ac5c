/*
Rasterize feature matrices: heatmap with colorbar, per-coefficient line
graph, audio waveform and an annotated chart for export.  Every renderer is
a pure function of its inputs; the same matrix, size and options always
produce the same pixels.
*/

package render

import (
	"errors"
	"image/color"
	"math"

	"github.com/thomasteplick/mfccpanel/mfcc"
)

const (
	DecibelFloor = -100.0 // lowest plausible log-energy (dB)
	DecibelCeil  = 20.0   // highest plausible log-energy (dB)
)

var ErrInvalidSize = errors.New("render: raster width and height must be positive")

// DecibelRange is the clamp applied to data-derived domains when the
// values are log energies.
var DecibelRange = Domain{Min: DecibelFloor, Max: DecibelCeil}

// Domain is the value interval mapped onto the color ramp.
type Domain struct {
	Min float64
	Max float64
}

// Degenerate reports a zero-width (or inverted) domain.
func (d Domain) Degenerate() bool { return d.Max <= d.Min }

// Norm maps v into [0, 1].  Values outside the domain saturate and a
// degenerate domain maps everything to the midpoint.
func (d Domain) Norm(v float64) float64 {
	if d.Degenerate() {
		return 0.5
	}
	t := (v - d.Min) / (d.Max - d.Min)
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}

// Color maps v onto the purple (low) to yellow-red (high) ramp.
func (d Domain) Color(v float64) color.RGBA {
	t := d.Norm(v)
	return color.RGBA{
		R: uint8(math.Round(255 * t)),
		G: uint8(math.Round(64 * t)),
		B: uint8(math.Round(255 * (1 - t))),
		A: 255,
	}
}

// Value is the inverse of Norm for t in [0, 1].
func (d Domain) Value(t float64) float64 {
	return d.Min + t*(d.Max-d.Min)
}

// DataDomain is the min..max extent of m, with both ends pulled into clamp
// when clamp is not nil.  ok is false when m has no cells.
func DataDomain(m mfcc.Matrix, clamp *Domain) (d Domain, ok bool) {
	min, max, ok := m.Extent()
	if !ok {
		return Domain{}, false
	}
	d = Domain{Min: min, Max: max}
	if clamp != nil {
		d.Min = clampTo(d.Min, clamp.Min, clamp.Max)
		d.Max = clampTo(d.Max, clamp.Min, clamp.Max)
	}
	return d, true
}

func clampTo(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
