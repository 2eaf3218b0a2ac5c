package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/thomasteplick/mfccpanel/mfcc"
)

const (
	NormEpsilon    = 1e-6                  // keeps constant columns finite
	HighlightLabel = "Wake Word Detected!" // default highlight caption
	labelBaseline  = 50                    // highlight caption baseline
	axisLeft       = 40                    // y axis position
	axisBottom     = 30                    // x axis distance from the bottom edge
)

// Palette colors coefficient lines in order, cycling when there are more
// coefficients than entries.
var Palette = []color.RGBA{
	{R: 255, G: 255, B: 0, A: 255},
	{R: 255, G: 0, B: 0, A: 255},
	{R: 0, G: 255, B: 0, A: 255},
	{R: 0, G: 0, B: 255, A: 255},
	{R: 0, G: 255, B: 255, A: 255},
	{R: 255, G: 0, B: 255, A: 255},
	{R: 255, G: 255, B: 255, A: 255},
	{R: 255, G: 170, B: 0, A: 255},
	{R: 0, G: 170, B: 255, A: 255},
	{R: 170, G: 0, B: 255, A: 255},
	{R: 170, G: 255, B: 0, A: 255},
	{R: 255, G: 0, B: 85, A: 255},
	{R: 85, G: 255, B: 0, A: 255},
	{R: 0, G: 85, B: 255, A: 255},
}

var (
	lineBackground = color.RGBA{R: 17, G: 17, B: 17, A: 255}
	highlightFill  = color.NRGBA{R: 255, G: 255, B: 128, A: 89}
	highlightInk   = color.RGBA{R: 34, G: 34, B: 34, A: 255}
	axisInk        = color.RGBA{R: 200, G: 200, B: 200, A: 255}
)

// LineGraphOptions controls the optional parts of the line graph.
type LineGraphOptions struct {
	Highlight  *mfcc.HighlightRange // band drawn behind the lines
	Label      string               // band caption, HighlightLabel when empty
	Background color.Color          // fill, dark gray when nil
	Palette    []color.RGBA         // line colors, Palette when empty
	Axes       bool                 // draw axes and captions over the lines
}

// ColumnColor returns the palette entry of coefficient j.
func ColumnColor(palette []color.RGBA, j int) color.RGBA {
	if len(palette) == 0 {
		palette = Palette
	}
	return palette[j%len(palette)]
}

// Normalize scales every coefficient column into [0, 1] by its own
// minimum and maximum.  series[j][i] is coefficient j of frame i.  A
// constant column maps to 0.
func Normalize(m mfcc.Matrix) [][]float64 {
	if m.Check() != nil {
		return nil
	}
	_, coeffs := m.Shape()
	series := make([][]float64, coeffs)
	for j := range series {
		col := m.Column(j)
		lo, hi := col[0], col[0]
		for _, v := range col {
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
		for i, v := range col {
			col[i] = (v - lo) / (hi - lo + NormEpsilon)
		}
		series[j] = col
	}
	return series
}

// frameX places frame i of n on a w pixel wide axis.  A lone frame sits in
// the middle.
func frameX(i, n, w int) int {
	if n <= 1 {
		return (w - 1) / 2
	}
	return int(math.Round(float64(i) * float64(w-1) / float64(n-1)))
}

// normY places a normalized value on an h pixel tall axis, 1 at the top.
func normY(t float64, h int) int {
	return int(math.Round((1 - t) * float64(h-1)))
}

// RenderLineGraph draws one polyline per coefficient over the frame axis.
// The highlight band, when given, is painted first with its caption
// centered above it.  An empty or ragged matrix yields a cleared raster.
func RenderLineGraph(m mfcc.Matrix, w, h int, opts LineGraphOptions) (*image.RGBA, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: line graph %dx%d", ErrInvalidSize, w, h)
	}
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	series := Normalize(m)
	if series == nil {
		return img, nil
	}
	frames, _ := m.Shape()

	var bg color.Color = lineBackground
	if opts.Background != nil {
		bg = opts.Background
	}
	draw.Draw(img, img.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)

	if hr := opts.Highlight; hr != nil {
		if err := hr.Validate(frames); err != nil {
			return nil, err
		}
		x0 := hr.Start * w / frames
		x1 := hr.End * w / frames
		draw.Draw(img, image.Rect(x0, 0, x1, h), image.NewUniform(highlightFill), image.Point{}, draw.Over)
		label := opts.Label
		if label == "" {
			label = HighlightLabel
		}
		drawCenteredText(img, label, (x0+x1)/2, min(labelBaseline, h-1), highlightInk)
	}

	for j, ys := range series {
		c := ColumnColor(opts.Palette, j)
		if frames == 1 {
			drawDot(img, frameX(0, 1, w), normY(ys[0], h), c)
			continue
		}
		px, py := frameX(0, frames, w), normY(ys[0], h)
		for i := 1; i < frames; i++ {
			x, y := frameX(i, frames, w), normY(ys[i], h)
			drawSegment(img, px, py, x, y, c)
			px, py = x, y
		}
	}

	if opts.Axes {
		drawAxes(img)
	}
	return img, nil
}

// drawSegment interpolates the cells between two points; the number of
// steps is the longer of the horizontal and vertical extents.
func drawSegment(img *image.RGBA, x0, y0, x1, y1 int, c color.RGBA) {
	dx, dy := x1-x0, y1-y0
	n := max(abs(dx), abs(dy))
	if n == 0 {
		img.SetRGBA(x0, y0, c)
		return
	}
	stepX := float64(dx) / float64(n)
	stepY := float64(dy) / float64(n)
	x, y := float64(x0), float64(y0)
	for k := 0; k <= n; k++ {
		img.SetRGBA(int(math.Round(x)), int(math.Round(y)), c)
		x += stepX
		y += stepY
	}
}

// drawDot marks a 3x3 square centered on (x, y).
func drawDot(img *image.RGBA, x, y int, c color.RGBA) {
	draw.Draw(img, image.Rect(x-1, y-1, x+2, y+2), image.NewUniform(c), image.Point{}, draw.Src)
}

// drawAxes draws the L-shaped axes and their captions when the raster is
// large enough to hold them.
func drawAxes(img *image.RGBA) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= 2*axisLeft || h <= 2*axisBottom {
		return
	}
	ink := image.NewUniform(axisInk)
	draw.Draw(img, image.Rect(axisLeft-1, 0, axisLeft+1, h-axisBottom+1), ink, image.Point{}, draw.Src)
	draw.Draw(img, image.Rect(axisLeft-1, h-axisBottom-1, w-10, h-axisBottom+1), ink, image.Point{}, draw.Src)
	drawCenteredText(img, "Frame Index", w/2, h-8, axisInk)
	drawText(img, "MFCC Coefficients", axisLeft+6, textAscent()+2, axisInk)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
