package render

import (
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"io"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/thomasteplick/mfccpanel/mfcc"
)

// EncodePNG writes img losslessly.
func EncodePNG(w io.Writer, img image.Image) error {
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

// Composite places side to the right of main.  The result is as tall as
// the taller of the two.
func Composite(main, side *image.RGBA) *image.RGBA {
	if side == nil {
		return main
	}
	mb, sb := main.Bounds(), side.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, mb.Dx()+sb.Dx(), max(mb.Dy(), sb.Dy())))
	draw.Draw(out, image.Rect(0, 0, mb.Dx(), mb.Dy()), main, mb.Min, draw.Src)
	draw.Draw(out, image.Rect(mb.Dx(), 0, mb.Dx()+sb.Dx(), sb.Dy()), side, sb.Min, draw.Src)
	return out
}

// ChartPNG renders the normalized coefficient series as an annotated
// chart with named axes and a legend.  The highlight, when given, is a
// filled band drawn before the lines.  An empty or ragged matrix is
// written as a cleared image of the requested size.
func ChartPNG(w io.Writer, m mfcc.Matrix, width, height int, hr *mfcc.HighlightRange) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: chart %dx%d", ErrInvalidSize, width, height)
	}
	series := Normalize(m)
	if series == nil {
		return EncodePNG(w, image.NewRGBA(image.Rect(0, 0, width, height)))
	}
	frames, _ := m.Shape()

	xs := make([]float64, frames)
	for i := range xs {
		xs[i] = float64(i)
	}
	// go-chart needs two x values to span a range
	if frames == 1 {
		xs = []float64{0, 1}
	}

	var all []chart.Series
	if hr != nil {
		if err := hr.Validate(frames); err != nil {
			return err
		}
		band := drawing.Color{R: highlightFill.R, G: highlightFill.G, B: highlightFill.B, A: highlightFill.A}
		all = append(all, chart.ContinuousSeries{
			Name:    HighlightLabel,
			XValues: []float64{float64(hr.Start), float64(hr.End)},
			YValues: []float64{1, 1},
			Style:   chart.Style{StrokeColor: band, StrokeWidth: 1, FillColor: band},
		})
	}
	for j, ys := range series {
		if frames == 1 {
			ys = []float64{ys[0], ys[0]}
		}
		c := ColumnColor(nil, j)
		all = append(all, chart.ContinuousSeries{
			Name:    fmt.Sprintf("C%d", j),
			XValues: xs,
			YValues: ys,
			Style: chart.Style{
				StrokeColor: drawing.Color{R: c.R, G: c.G, B: c.B, A: c.A},
				StrokeWidth: 1.5,
			},
		})
	}

	ch := chart.Chart{
		Width:      width,
		Height:     height,
		Background: chart.Style{Padding: chart.Box{Top: 14, Left: 16, Right: 12, Bottom: 28}},
		XAxis:      chart.XAxis{Name: "Frame Index", Range: &chart.ContinuousRange{Min: 0, Max: xs[len(xs)-1]}},
		YAxis:      chart.YAxis{Name: "MFCC Coefficients", Range: &chart.ContinuousRange{Min: 0, Max: 1}},
		Series:     all,
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}
	if err := ch.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	return nil
}
