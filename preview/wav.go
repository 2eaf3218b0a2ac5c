package preview

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const bitDepth = 16 // audio wav encoder sample size

var ErrNotWAV = errors.New("preview: not a WAV file")

// Clip is mono audio normalized to [-1, 1].
type Clip struct {
	Samples    []float64
	SampleRate int
}

// Duration in seconds.
func (c *Clip) Duration() float64 {
	if c.SampleRate == 0 {
		return 0
	}
	return float64(len(c.Samples)) / float64(c.SampleRate)
}

// LoadWAV decodes a PCM WAV stream.  Only the first channel is kept.
func LoadWAV(r io.ReadSeeker) (*Clip, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, ErrNotWAV
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("PCMBuffer error: %w", err)
	}
	nch := int(dec.NumChans)
	if nch < 1 {
		nch = 1
	}
	depth := int(dec.BitDepth)
	if depth == 0 {
		depth = bitDepth
	}
	full := math.Exp2(float64(depth - 1))

	clip := &Clip{
		Samples:    make([]float64, 0, len(buf.Data)/nch),
		SampleRate: int(dec.SampleRate),
	}
	for i := 0; i < len(buf.Data); i += nch {
		v := float64(buf.Data[i])
		// 8-bit WAV samples are unsigned
		if depth == 8 {
			v -= full
		}
		clip.Samples = append(clip.Samples, v/full)
	}
	return clip, nil
}

// LoadWAVBytes decodes an in-memory WAV file.
func LoadWAVBytes(data []byte) (*Clip, error) {
	return LoadWAV(bytes.NewReader(data))
}

// EncodeWAV writes the clip as 16-bit mono PCM.
func EncodeWAV(w io.WriteSeeker, c *Clip) error {
	full := math.Exp2(bitDepth - 1)
	data := make([]int, len(c.Samples))
	for i, v := range c.Samples {
		v = math.Max(-1, math.Min(1, v))
		data[i] = int(math.Max(-full, math.Min(full-1, math.Round(v*full))))
	}
	enc := wav.NewEncoder(w, c.SampleRate, bitDepth, 1, 1)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: c.SampleRate},
		Data:           data,
		SourceBitDepth: bitDepth,
	}
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("wav encode: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("wav close: %w", err)
	}
	return nil
}

// WAVBytes encodes the clip in memory.
func (c *Clip) WAVBytes() ([]byte, error) {
	var sb seekBuffer
	if err := EncodeWAV(&sb, c); err != nil {
		return nil, err
	}
	return sb.buf, nil
}

// Slice returns the samples in [start, stop) as a new clip sharing the
// sample rate.
func (c *Clip) Slice(start, stop int) *Clip {
	start = max(0, min(start, len(c.Samples)))
	stop = max(start, min(stop, len(c.Samples)))
	return &Clip{Samples: c.Samples[start:stop], SampleRate: c.SampleRate}
}

// seekBuffer is an in-memory io.WriteSeeker for the wav encoder, which
// patches the header sizes after writing the samples.
type seekBuffer struct {
	buf []byte
	pos int
}

func (s *seekBuffer) Write(p []byte) (int, error) {
	if end := s.pos + len(p); end > len(s.buf) {
		s.buf = append(s.buf, make([]byte, end-len(s.buf))...)
	}
	n := copy(s.buf[s.pos:], p)
	s.pos += n
	return n, nil
}

func (s *seekBuffer) Seek(offset int64, whence int) (int64, error) {
	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = int64(s.pos) + offset
	case io.SeekEnd:
		abs = int64(len(s.buf)) + offset
	default:
		return 0, fmt.Errorf("seek: invalid whence %d", whence)
	}
	if abs < 0 {
		return 0, fmt.Errorf("seek: negative position %d", abs)
	}
	s.pos = int(abs)
	return abs, nil
}
