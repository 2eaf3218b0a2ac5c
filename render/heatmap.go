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
	colorbarWidth  = 64 // default colorbar raster width
	colorbarStrip  = 18 // width of the gradient strip
	colorbarMargin = 10 // space above and below the strip
	colorbarTicks  = 6  // tick labels along the strip
	tickLength     = 8  // tick mark length
)

var (
	colorbarBackground = color.RGBA{A: 255}
	colorbarInk        = color.RGBA{R: 255, G: 255, B: 255, A: 255}
)

// HeatmapOptions selects the color domain and the colorbar size.
type HeatmapOptions struct {
	Fixed         *Domain // use this domain as is, ignoring the data
	Clamp         *Domain // pull the data extent into this range
	ColorbarWidth int     // colorbar raster width, 0 for the default
}

// Heatmap is the result of RenderHeatmap.
type Heatmap struct {
	Image    *image.RGBA // W x H, one cell color per pixel
	Colorbar *image.RGBA // legend raster, same height as Image
	Domain   Domain      // domain used for both rasters
	Blank    bool        // matrix was empty or ragged and nothing was drawn
}

// RenderHeatmap draws m into a w x h raster with nearest-neighbor
// sampling: pixel row y shows frame y*frames/h and pixel column x shows
// coefficient x*coeffs/w.  An empty or ragged matrix yields cleared
// rasters.
func RenderHeatmap(m mfcc.Matrix, w, h int, opts HeatmapOptions) (*Heatmap, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: heatmap %dx%d", ErrInvalidSize, w, h)
	}
	cbw := opts.ColorbarWidth
	if cbw <= 0 {
		cbw = colorbarWidth
	}

	hm := &Heatmap{Image: image.NewRGBA(image.Rect(0, 0, w, h))}
	if m.Check() != nil {
		hm.Blank = true
		hm.Colorbar = image.NewRGBA(image.Rect(0, 0, cbw, h))
		return hm, nil
	}

	if opts.Fixed != nil {
		hm.Domain = *opts.Fixed
	} else {
		hm.Domain, _ = DataDomain(m, opts.Clamp)
	}

	// Color every cell once, then sample cells per pixel.
	frames, coeffs := m.Shape()
	cells := make([]color.RGBA, frames*coeffs)
	for i, f := range m {
		for j, v := range f {
			cells[i*coeffs+j] = hm.Domain.Color(v)
		}
	}
	for y := 0; y < h; y++ {
		row := y * frames / h
		for x := 0; x < w; x++ {
			col := x * coeffs / w
			hm.Image.SetRGBA(x, y, cells[row*coeffs+col])
		}
	}

	hm.Colorbar = RenderColorbar(hm.Domain, cbw, h)
	return hm, nil
}

// RenderColorbar draws a vertical gradient strip, domain maximum at the
// top, with tick marks and rounded labels at evenly spaced fractions of
// the domain.
func RenderColorbar(d Domain, w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(colorbarBackground), image.Point{}, draw.Src)

	top, length := colorbarMargin, h-2*colorbarMargin
	if length <= 1 {
		top, length = 0, h
	}
	strip := colorbarStrip
	if strip > w {
		strip = w
	}
	for y := 0; y < length; y++ {
		c := d.Color(d.Value(1 - float64(y)/float64(length)))
		for x := 0; x < strip; x++ {
			img.SetRGBA(x, top+y, c)
		}
	}

	ascent := textAscent()
	for i := 0; i < colorbarTicks; i++ {
		frac := float64(i) / float64(colorbarTicks-1)
		y := top + int(math.Round((1-frac)*float64(length-1)))
		for x := strip; x < strip+tickLength && x < w; x++ {
			img.SetRGBA(x, y, colorbarInk)
		}
		label := fmt.Sprintf("%d", int(math.Round(d.Value(frac))))
		drawText(img, label, strip+tickLength+4, y+ascent/2, colorbarInk)
	}
	return img
}
