package preview

import (
	"math"

	"github.com/thomasteplick/mfccpanel/mfcc"
)

// prevent oscillation about threshold
const hysteresis = 0.8

// Bound holds the sample boundaries of one spoken region.
type Bound struct {
	Start, Stop int
}

// Words finds the spoken regions in data.  The absolute level is summed
// over a sliding window of windowMs milliseconds; a region starts when the
// sum exceeds the window's share of the clip average and stops when it
// falls below 80% of that.  A region still open at the end stops there.
func Words(data []float64, sampleRate, windowMs int) []Bound {
	win := windowMs * sampleRate / 1000
	L := len(data)
	if win <= 0 || L < win {
		return nil
	}

	var avg float64
	for _, v := range data {
		avg += math.Abs(v)
	}
	avg /= float64(L)
	// Minimum audio integration to determine when word begins and ends
	levelSum := float64(win) * avg

	var (
		buf    = make([]float64, win)
		cur    int
		sum    float64
		k      int
		start  int
		stop   int
		bounds []Bound
	)
	// push slides sample k into the window
	push := func() {
		v := math.Abs(data[k])
		sum += v - buf[cur]
		buf[cur] = v
		cur = (cur + 1) % win
		k++
	}

	for k < L {
		open := false
		for k < L {
			push()
			if k-1 >= stop+win && sum > levelSum {
				start = k - 1 - win
				open = true
				break
			}
		}
		if !open {
			break
		}
		stop = L
		for k < L {
			push()
			if k-1 > start+win && sum < levelSum*hysteresis {
				stop = k - 1
				break
			}
		}
		bounds = append(bounds, Bound{Start: max(0, start), Stop: stop})
	}
	return bounds
}

// Highlight converts the first region into a frame range on the 10 ms
// hop, clipped to frames.  It returns nil when there is no region.
func Highlight(bounds []Bound, sampleRate, frames int) *mfcc.HighlightRange {
	if len(bounds) == 0 || sampleRate < framesPerSecond {
		return nil
	}
	hop := sampleRate / framesPerSecond
	b := bounds[0]
	hr := &mfcc.HighlightRange{
		Start: min(b.Start/hop, frames),
		End:   min((b.Stop+hop-1)/hop, frames),
	}
	return hr
}
