package preview

import (
	"errors"
	"math"
	"strings"
	"testing"
)

const testRate = 16000

// toneClip is 0.3 s of silence, 0.4 s of a 440 Hz tone at half scale and
// 0.3 s of silence.
func toneClip() *Clip {
	c := &Clip{Samples: make([]float64, testRate), SampleRate: testRate}
	for n := 4800; n < 11200; n++ {
		c.Samples[n] = 0.5 * math.Sin(2*math.Pi*440*float64(n)/testRate)
	}
	return c
}

func TestWAVRoundTrip(t *testing.T) {
	in := toneClip()
	data, err := in.WAVBytes()
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "RIFF") {
		t.Fatalf("missing RIFF header")
	}
	out, err := LoadWAVBytes(data)
	if err != nil {
		t.Fatal(err)
	}
	if out.SampleRate != testRate || len(out.Samples) != len(in.Samples) {
		t.Fatalf("got %d samples at %d Hz", len(out.Samples), out.SampleRate)
	}
	for i := range in.Samples {
		if math.Abs(out.Samples[i]-in.Samples[i]) > 1.0/32768+1e-9 {
			t.Fatalf("sample %d = %f, want %f", i, out.Samples[i], in.Samples[i])
		}
	}
	if d := out.Duration(); math.Abs(d-1) > 1e-9 {
		t.Errorf("duration = %f", d)
	}
}

func TestLoadWAVRejectsGarbage(t *testing.T) {
	if _, err := LoadWAVBytes([]byte("definitely not a wav file, just text")); !errors.Is(err, ErrNotWAV) {
		t.Errorf("got %v", err)
	}
}

func TestSpectrogram(t *testing.T) {
	c := toneClip()
	m, err := Spectrogram(c.Samples, c.SampleRate, DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	frames, coeffs := m.Shape()
	if frames != 100 || coeffs != 13 {
		t.Fatalf("shape = %dx%d, want 100x13", frames, coeffs)
	}
	for j, v := range m[0] {
		if v != floorDB {
			t.Errorf("silent frame band %d = %f", j, v)
		}
	}
	// 440 Hz falls into the lowest band
	tone := m[60]
	for j := 1; j < coeffs; j++ {
		if tone[j] >= tone[0] {
			t.Errorf("band %d (%f) not below the tone band (%f)", j, tone[j], tone[0])
		}
	}
	if tone[0] < -40 || tone[0] > 20 {
		t.Errorf("tone band = %f dB, outside the plausible range", tone[0])
	}
}

func TestSpectrogramConfigErrors(t *testing.T) {
	samples := make([]float64, 1000)
	bad := []Config{
		{FFTSize: 512, Window: "Kaiser", Bands: 13},
		{FFTSize: 511, Window: "Hamming", Bands: 13},
		{FFTSize: 16, Window: "Hamming", Bands: 9},
		{FFTSize: 16, Window: "Hamming", Bands: 0},
	}
	for _, cfg := range bad {
		if _, err := Spectrogram(samples, testRate, cfg); err == nil {
			t.Errorf("%+v: expected error", cfg)
		}
	}
	if _, err := Spectrogram(samples, 50, DefaultConfig()); err == nil {
		t.Error("expected error for a sample rate below the hop rate")
	}
	for name := range windows {
		cfg := DefaultConfig()
		cfg.Window = name
		if _, err := Spectrogram(samples, testRate, cfg); err != nil {
			t.Errorf("%s: %v", name, err)
		}
	}
}

func TestWords(t *testing.T) {
	c := toneClip()
	bounds := Words(c.Samples, c.SampleRate, 20)
	if len(bounds) != 1 {
		t.Fatalf("got %d regions: %+v", len(bounds), bounds)
	}
	b := bounds[0]
	if b.Start < 4300 || b.Start > 5000 || b.Stop < 11100 || b.Stop > 11800 {
		t.Errorf("region = %+v, want about [4800, 11200]", b)
	}

	hr := Highlight(bounds, c.SampleRate, 100)
	if hr == nil {
		t.Fatal("expected a highlight")
	}
	if err := hr.Validate(100); err != nil {
		t.Fatal(err)
	}
	if hr.Start < 26 || hr.Start > 32 || hr.End < 69 || hr.End > 75 {
		t.Errorf("highlight = %+v", hr)
	}
}

func TestWordsEdgeCases(t *testing.T) {
	if Words(make([]float64, 10), testRate, 20) != nil {
		t.Error("clip shorter than the window should have no regions")
	}
	if Words(make([]float64, testRate), testRate, 0) != nil {
		t.Error("zero window should have no regions")
	}
	if len(Words(make([]float64, testRate), testRate, 20)) != 0 {
		t.Error("silence should have no regions")
	}
	if Highlight(nil, testRate, 10) != nil {
		t.Error("no regions should give no highlight")
	}
	// a region running to the end of the clip is closed there
	open := make([]float64, testRate)
	for n := testRate / 2; n < testRate; n++ {
		open[n] = 0.5
	}
	bounds := Words(open, testRate, 20)
	if len(bounds) != 1 || bounds[0].Stop != testRate {
		t.Errorf("open region = %+v", bounds)
	}
}

func TestSlice(t *testing.T) {
	c := &Clip{Samples: []float64{1, 2, 3, 4}, SampleRate: 8}
	if s := c.Slice(1, 3); len(s.Samples) != 2 || s.Samples[0] != 2 || s.SampleRate != 8 {
		t.Errorf("slice = %+v", s)
	}
	if s := c.Slice(3, 99); len(s.Samples) != 1 {
		t.Errorf("clipped slice = %+v", s)
	}
	if s := c.Slice(5, 2); len(s.Samples) != 0 {
		t.Errorf("inverted slice = %+v", s)
	}
}
