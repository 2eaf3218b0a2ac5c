package render

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"math"
	"testing"

	"github.com/thomasteplick/mfccpanel/mfcc"
)

func rampMatrix(frames, coeffs int) mfcc.Matrix {
	m := make(mfcc.Matrix, frames)
	for i := range m {
		m[i] = make(mfcc.Frame, coeffs)
		for j := range m[i] {
			m[i][j] = math.Sin(float64(i*coeffs+j)) * 40
		}
	}
	return m
}

func allZero(img *image.RGBA) bool {
	for _, b := range img.Pix {
		if b != 0 {
			return false
		}
	}
	return true
}

func TestHeatmapSizeAndOpacity(t *testing.T) {
	hm, err := RenderHeatmap(rampMatrix(7, 13), 37, 23, HeatmapOptions{Clamp: &DecibelRange})
	if err != nil {
		t.Fatal(err)
	}
	if b := hm.Image.Bounds(); b.Dx() != 37 || b.Dy() != 23 {
		t.Fatalf("bounds = %v, want 37x23", b)
	}
	for i := 3; i < len(hm.Image.Pix); i += 4 {
		if hm.Image.Pix[i] != 255 {
			t.Fatalf("pixel %d not opaque", i/4)
		}
	}
	if b := hm.Colorbar.Bounds(); b.Dx() != colorbarWidth || b.Dy() != 23 {
		t.Errorf("colorbar bounds = %v", b)
	}
	if hm.Blank {
		t.Error("non-empty matrix reported blank")
	}
}

func TestHeatmapNearestNeighbor(t *testing.T) {
	hm, err := RenderHeatmap(mfcc.Matrix{{0, 1}, {2, 3}}, 4, 4, HeatmapOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if hm.Domain != (Domain{Min: 0, Max: 3}) {
		t.Fatalf("domain = %+v", hm.Domain)
	}
	cases := []struct {
		x, y int
		want color.RGBA
	}{
		{0, 0, color.RGBA{R: 0, G: 0, B: 255, A: 255}},
		{1, 1, color.RGBA{R: 0, G: 0, B: 255, A: 255}},
		{2, 0, color.RGBA{R: 85, G: 21, B: 170, A: 255}},
		{3, 3, color.RGBA{R: 255, G: 64, B: 0, A: 255}},
	}
	for _, c := range cases {
		if got := hm.Image.RGBAAt(c.x, c.y); got != c.want {
			t.Errorf("pixel (%d,%d) = %v, want %v", c.x, c.y, got, c.want)
		}
	}
}

func TestHeatmapConstantMatrix(t *testing.T) {
	m := mfcc.Matrix{{-7, -7, -7}, {-7, -7, -7}}
	hm, err := RenderHeatmap(m, 16, 9, HeatmapOptions{Clamp: &DecibelRange})
	if err != nil {
		t.Fatal(err)
	}
	want := hm.Image.RGBAAt(0, 0)
	for y := 0; y < 9; y++ {
		for x := 0; x < 16; x++ {
			if got := hm.Image.RGBAAt(x, y); got != want {
				t.Fatalf("pixel (%d,%d) = %v, want %v", x, y, got, want)
			}
		}
	}
}

func TestHeatmapClampAndFixedDomain(t *testing.T) {
	m := mfcc.Matrix{{-250, 0, 75}}
	hm, err := RenderHeatmap(m, 3, 1, HeatmapOptions{Clamp: &DecibelRange})
	if err != nil {
		t.Fatal(err)
	}
	if hm.Domain != DecibelRange {
		t.Errorf("clamped domain = %+v, want %+v", hm.Domain, DecibelRange)
	}
	above, err := RenderHeatmap(mfcc.Matrix{{50, 60}}, 2, 1, HeatmapOptions{Clamp: &DecibelRange})
	if err != nil {
		t.Fatal(err)
	}
	if !above.Domain.Degenerate() || above.Domain.Min != DecibelCeil {
		t.Errorf("out-of-range data domain = %+v", above.Domain)
	}
	fixed := Domain{Min: -1, Max: 1}
	hm, err = RenderHeatmap(m, 3, 1, HeatmapOptions{Fixed: &fixed, Clamp: &DecibelRange})
	if err != nil {
		t.Fatal(err)
	}
	if hm.Domain != fixed {
		t.Errorf("fixed domain = %+v", hm.Domain)
	}
}

func TestHeatmapEmptyAndRagged(t *testing.T) {
	for name, m := range map[string]mfcc.Matrix{
		"empty":  {},
		"ragged": {{1, 2}, {3}},
	} {
		hm, err := RenderHeatmap(m, 10, 5, HeatmapOptions{})
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if !hm.Blank || !allZero(hm.Image) || !allZero(hm.Colorbar) {
			t.Errorf("%s: expected cleared rasters", name)
		}
	}
}

func TestHeatmapDeterministic(t *testing.T) {
	m := rampMatrix(40, 13)
	a, _ := RenderHeatmap(m, 120, 80, HeatmapOptions{Clamp: &DecibelRange})
	b, _ := RenderHeatmap(m, 120, 80, HeatmapOptions{Clamp: &DecibelRange})
	if !bytes.Equal(a.Image.Pix, b.Image.Pix) || !bytes.Equal(a.Colorbar.Pix, b.Colorbar.Pix) {
		t.Error("renders differ")
	}
}

func TestInvalidSize(t *testing.T) {
	m := rampMatrix(2, 2)
	if _, err := RenderHeatmap(m, 0, 5, HeatmapOptions{}); !errors.Is(err, ErrInvalidSize) {
		t.Errorf("heatmap: %v", err)
	}
	if _, err := RenderLineGraph(m, 5, -1, LineGraphOptions{}); !errors.Is(err, ErrInvalidSize) {
		t.Errorf("line graph: %v", err)
	}
	if _, err := RenderWaveform([]float64{0}, 0, 0); !errors.Is(err, ErrInvalidSize) {
		t.Errorf("waveform: %v", err)
	}
}

func TestColorbarGradient(t *testing.T) {
	d := Domain{Min: -100, Max: 20}
	cb := RenderColorbar(d, colorbarWidth, 200)
	if got, want := cb.RGBAAt(0, colorbarMargin), d.Color(d.Max); got != want {
		t.Errorf("top of strip = %v, want %v", got, want)
	}
	bottom := cb.RGBAAt(0, 200-colorbarMargin-1)
	if bottom.B < 250 || bottom.R > 5 {
		t.Errorf("bottom of strip = %v, want near the low end color", bottom)
	}
	if got := cb.RGBAAt(colorbarStrip, colorbarMargin); got != colorbarInk {
		t.Errorf("top tick = %v", got)
	}
}

func TestNormalize(t *testing.T) {
	series := Normalize(mfcc.Matrix{{0, 5}, {10, 5}})
	if len(series) != 2 || len(series[0]) != 2 {
		t.Fatalf("series shape = %d", len(series))
	}
	if series[0][0] != 0 || math.Abs(series[0][1]-1) > 1e-6 {
		t.Errorf("column 0 = %v", series[0])
	}
	for _, v := range series[1] {
		if v != 0 || math.IsNaN(v) {
			t.Errorf("constant column = %v", series[1])
		}
	}
	if Normalize(nil) != nil {
		t.Error("empty matrix should have no series")
	}
}

func TestLineGraphSingleFrame(t *testing.T) {
	img, err := RenderLineGraph(mfcc.Matrix{{3, -2, 8}}, 21, 11, LineGraphOptions{})
	if err != nil {
		t.Fatal(err)
	}
	// all three single points share the bottom-center spot; the last one wins
	if got := img.RGBAAt(10, 10); got != Palette[2] {
		t.Errorf("point = %v, want %v", got, Palette[2])
	}
	if got := img.RGBAAt(0, 0); got != lineBackground {
		t.Errorf("background = %v", got)
	}
}

func TestLineGraphConstantColumn(t *testing.T) {
	img, err := RenderLineGraph(mfcc.Matrix{{5}, {5}, {5}}, 30, 10, LineGraphOptions{})
	if err != nil {
		t.Fatal(err)
	}
	for x := 0; x < 30; x++ {
		if got := img.RGBAAt(x, 9); got != Palette[0] {
			t.Fatalf("pixel (%d,9) = %v, want the flat line", x, got)
		}
	}
}

func TestLineGraphHighlight(t *testing.T) {
	m := make(mfcc.Matrix, 10)
	for i := range m {
		m[i] = mfcc.Frame{float64(i)}
	}
	img, err := RenderLineGraph(m, 100, 60, LineGraphOptions{Highlight: &mfcc.HighlightRange{Start: 2, End: 5}})
	if err != nil {
		t.Fatal(err)
	}
	if got := img.RGBAAt(25, 5); got == lineBackground {
		t.Error("band not drawn inside the highlight")
	}
	if got := img.RGBAAt(80, 5); got != lineBackground {
		t.Errorf("pixel outside the band = %v", got)
	}
	if _, err := RenderLineGraph(m, 100, 60, LineGraphOptions{Highlight: &mfcc.HighlightRange{Start: 4, End: 11}}); !errors.Is(err, mfcc.ErrHighlightRange) {
		t.Errorf("out of range highlight: %v", err)
	}
}

func TestLineGraphEmpty(t *testing.T) {
	hr := &mfcc.HighlightRange{Start: 0, End: 3}
	img, err := RenderLineGraph(nil, 10, 10, LineGraphOptions{Highlight: hr, Axes: true})
	if err != nil {
		t.Fatal(err)
	}
	if !allZero(img) {
		t.Error("expected a cleared raster")
	}
}

func TestPaletteCycles(t *testing.T) {
	if len(Palette) < 10 {
		t.Fatalf("palette has %d entries", len(Palette))
	}
	if ColumnColor(nil, len(Palette)) != Palette[0] || ColumnColor(nil, len(Palette)+3) != Palette[3] {
		t.Error("palette does not cycle")
	}
	custom := []color.RGBA{{R: 1, A: 255}, {G: 1, A: 255}}
	if ColumnColor(custom, 3) != custom[1] {
		t.Error("custom palette ignored")
	}
}

func TestWaveform(t *testing.T) {
	img, err := RenderWaveform([]float64{1, -1}, 1, 11)
	if err != nil {
		t.Fatal(err)
	}
	for y := 0; y < 11; y++ {
		if got := img.RGBAAt(0, y); got != waveInk {
			t.Fatalf("full swing column missing row %d", y)
		}
	}

	img, err = RenderWaveform(make([]float64, 16), 4, 5)
	if err != nil {
		t.Fatal(err)
	}
	for x := 0; x < 4; x++ {
		for y := 0; y < 5; y++ {
			want := waveBackground
			if y == 2 {
				want = waveInk
			}
			if got := img.RGBAAt(x, y); got != want {
				t.Errorf("silence pixel (%d,%d) = %v", x, y, got)
			}
		}
	}

	img, err = RenderWaveform(nil, 8, 8)
	if err != nil || !allZero(img) {
		t.Errorf("empty waveform: %v", err)
	}
}

func TestChartPNG(t *testing.T) {
	cases := map[string]struct {
		m  mfcc.Matrix
		hr *mfcc.HighlightRange
	}{
		"ramp":         {rampMatrix(50, 13), &mfcc.HighlightRange{Start: 17, End: 27}},
		"single frame": {mfcc.Matrix{{1, 2, 3}}, nil},
		"empty":        {nil, nil},
	}
	for name, c := range cases {
		var buf bytes.Buffer
		if err := ChartPNG(&buf, c.m, 640, 320, c.hr); err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		cfg, err := png.DecodeConfig(&buf)
		if err != nil {
			t.Fatalf("%s: decode: %v", name, err)
		}
		if cfg.Width != 640 || cfg.Height != 320 {
			t.Errorf("%s: size %dx%d", name, cfg.Width, cfg.Height)
		}
	}
}

func TestCompositeAndEncode(t *testing.T) {
	main := image.NewRGBA(image.Rect(0, 0, 30, 20))
	side := RenderColorbar(Domain{Min: 0, Max: 1}, 10, 25)
	out := Composite(main, side)
	if b := out.Bounds(); b.Dx() != 40 || b.Dy() != 25 {
		t.Fatalf("composite bounds = %v", b)
	}
	if out.RGBAAt(30, colorbarMargin) != side.RGBAAt(0, colorbarMargin) {
		t.Error("colorbar not copied to the right")
	}
	if Composite(main, nil) != main {
		t.Error("nil side should return main")
	}
	var buf bytes.Buffer
	if err := EncodePNG(&buf, out); err != nil {
		t.Fatal(err)
	}
	back, err := png.Decode(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if back.Bounds() != out.Bounds() {
		t.Errorf("decoded bounds = %v", back.Bounds())
	}
}
