/*
Local preview of a clip before the feature service answers: a log-power
band spectrogram on the same 10 ms hop as the service frames, and the
speech regions found by integrating the audio level.
*/

package preview

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"

	"github.com/thomasteplick/mfccpanel/mfcc"
)

const (
	framesPerSecond = 100    // 10 ms hop, matching mfcc.FrameStride
	floorDB         = -100.0 // silence level in the preview
	tiny            = 1e-12  // keeps log10 finite
)

// Window function type
type Window func(n int, m int) float64

// Bartlett window
func bartlett(n int, m int) float64 {
	return 1.0 - math.Abs((float64(n)-float64(m))/float64(m))
}

// Welch window
func welch(n int, m int) float64 {
	x := math.Abs((float64(n) - float64(m)) / float64(m))
	return 1.0 - x*x
}

// Hamming window
func hamming(n int, m int) float64 {
	return .54 - .46*math.Cos(math.Pi*float64(n)/float64(m))
}

// Hanning window
func hanning(n int, m int) float64 {
	return .5 - .5*math.Cos(math.Pi*float64(n)/float64(m))
}

// Rectangle window
func rectangle(n int, m int) float64 {
	return 1.0
}

var windows = map[string]Window{
	"Bartlett":  bartlett,
	"Welch":     welch,
	"Hamming":   hamming,
	"Hanning":   hanning,
	"Rectangle": rectangle,
}

// Config selects the FFT size, the window and the number of bands.
type Config struct {
	FFTSize int    // samples per FFT, zero padded
	Window  string // Bartlett, Welch, Hamming, Hanning or Rectangle
	Bands   int    // output coefficients per frame
}

// DefaultConfig gives 13 bands like the service's coefficient count.
func DefaultConfig() Config {
	return Config{FFTSize: 512, Window: "Hamming", Bands: 13}
}

func (c Config) validate() (Window, error) {
	w, ok := windows[c.Window]
	if !ok {
		return nil, fmt.Errorf("invalid FFT window type: %v", c.Window)
	}
	if c.FFTSize < 2 || c.FFTSize%2 != 0 {
		return nil, fmt.Errorf("invalid FFT size: %d", c.FFTSize)
	}
	if c.Bands < 1 || c.Bands > c.FFTSize/2 {
		return nil, fmt.Errorf("invalid band count %d for FFT size %d", c.Bands, c.FFTSize)
	}
	return w, nil
}

// Spectrogram computes one frame per 10 ms hop.  Each frame pools the
// power spectral density of an FFTSize window into Bands equal-width bands
// and reports them in dB, floored at -100.
func Spectrogram(samples []float64, sampleRate int, cfg Config) (mfcc.Matrix, error) {
	w, err := cfg.validate()
	if err != nil {
		return nil, err
	}
	if sampleRate < framesPerSecond {
		return nil, fmt.Errorf("sample rate %d below %d Hz", sampleRate, framesPerSecond)
	}
	hop := sampleRate / framesPerSecond
	psd := make([]float64, cfg.FFTSize/2)

	var m mfcc.Matrix
	for smpl := 0; smpl < len(samples); smpl += hop {
		end := min(smpl+cfg.FFTSize, len(samples))
		calculatePSD(samples[smpl:end], psd, w, cfg.FFTSize)
		m = append(m, bands(psd, cfg.Bands, cfg.FFTSize))
	}
	return m, nil
}

// calculatePSD windows the audio, zero pads it to N samples and stores the
// power of each positive frequency bin, folding in its negative twin.
func calculatePSD(audio []float64, PSD []float64, w Window, N int) {
	m := N / 2
	bufN := make([]complex128, N)
	for j, v := range audio {
		bufN[j] = complex(v*w(j, m), 0)
	}

	fourierN := fft.FFT(bufN)
	x := cmplx.Abs(fourierN[0])
	PSD[0] = x * x
	for j := 1; j < m; j++ {
		// Use positive and negative frequencies -> bufN[N-j] = bufN[-j]
		xj := cmplx.Abs(fourierN[j])
		xNj := cmplx.Abs(fourierN[N-j])
		PSD[j] = xj*xj + xNj*xNj
	}
}

// bands averages the PSD bins into n bands and converts them to dB.
func bands(PSD []float64, n, N int) mfcc.Frame {
	f := make(mfcc.Frame, n)
	for b := range f {
		lo := b * len(PSD) / n
		hi := (b + 1) * len(PSD) / n
		var sum float64
		for _, p := range PSD[lo:hi] {
			sum += p
		}
		avg := sum / float64(hi-lo) / float64(N)
		f[b] = math.Max(floorDB, 10*math.Log10(avg+tiny))
	}
	return f
}
