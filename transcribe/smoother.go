package transcribe

import (
	"github.com/tonearc/fuguewright/music"
)

// Smoother median-filters a raw per-frame pitch track to remove transient
// glitches such as octave flips and onset noise. Zero frames (unvoiced) are
// excluded from each window so silence never drags voiced frames down.
type Smoother struct {
	windowSize int
}

// NewSmoother creates a smoother with the given centered window size. Even
// sizes are widened by one so the window stays centered.
func NewSmoother(windowSize int) *Smoother {
	if windowSize < 1 {
		windowSize = 1
	}
	if windowSize%2 == 0 {
		windowSize++
	}
	return &Smoother{windowSize: windowSize}
}

// Smooth returns the median-filtered pitch track. For each frame it takes
// the median of the non-zero values in the centered window, clipped at the
// track boundaries, and outputs 0 when the window holds no voiced frames.
func (s *Smoother) Smooth(pitchHz []float64) []float64 {
	if len(pitchHz) == 0 {
		return []float64{}
	}

	half := s.windowSize / 2
	out := make([]float64, len(pitchHz))
	window := make([]float64, 0, s.windowSize)

	for i := range pitchHz {
		start := i - half
		if start < 0 {
			start = 0
		}
		end := i + half + 1
		if end > len(pitchHz) {
			end = len(pitchHz)
		}

		window = window[:0]
		for _, hz := range pitchHz[start:end] {
			if hz > 0 {
				window = append(window, hz)
			}
		}
		if len(window) == 0 {
			out[i] = 0
			continue
		}
		out[i] = music.Median(window)
	}

	return out
}
