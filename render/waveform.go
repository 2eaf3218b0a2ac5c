package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
)

var (
	waveBackground = color.RGBA{A: 255}
	waveInk        = color.RGBA{R: 255, G: 255, B: 255, A: 255}
)

// RenderWaveform draws samples in [-1, 1] as one vertical min..max stroke
// per pixel column.  Column x covers samples [x*step, (x+1)*step) with
// step = ceil(len/w).  No samples yields a cleared raster.
func RenderWaveform(samples []float64, w, h int) (*image.RGBA, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: waveform %dx%d", ErrInvalidSize, w, h)
	}
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	if len(samples) == 0 {
		return img, nil
	}
	draw.Draw(img, img.Bounds(), image.NewUniform(waveBackground), image.Point{}, draw.Src)

	step := (len(samples) + w - 1) / w
	for x := 0; x < w; x++ {
		lo := x * step
		if lo >= len(samples) {
			break
		}
		hi := min(lo+step, len(samples))
		smin, smax := samples[lo], samples[lo]
		for _, v := range samples[lo:hi] {
			smin = math.Min(smin, v)
			smax = math.Max(smax, v)
		}
		top := ampY(smax, h)
		bottom := ampY(smin, h)
		for y := top; y <= bottom; y++ {
			img.SetRGBA(x, y, waveInk)
		}
	}
	return img, nil
}

// ampY maps an amplitude onto the raster, +1 at the top and -1 at the
// bottom.
func ampY(v float64, h int) int {
	y := int(math.Round((1 - v) * float64(h-1) / 2))
	return max(0, min(h-1, y))
}
