// Package pitchtrack provides a fallback monophonic f0/confidence tracker
// over raw PCM, for callers that have no external neural pitch model
// available. It implements the YIN estimator with the difference function
// computed through FFT autocorrelation.
//
// Reference: de Cheveigné, A., Kawahara, H. (2002). "YIN, a fundamental
// frequency estimator for speech and music".
package pitchtrack

import (
	"fmt"
	"math"

	"github.com/mjibson/go-dsp/fft"

	"github.com/tonearc/fuguewright/music"
	"github.com/tonearc/fuguewright/transcribe"
)

// Params configures the tracker.
type Params struct {
	SampleRate int     `json:"sample_rate"`
	WindowSize int     `json:"window_size"`
	HopSize    int     `json:"hop_size"`
	MinFreq    float64 `json:"min_freq"`
	MaxFreq    float64 `json:"max_freq"`
	Threshold  float64 `json:"threshold"` // YIN threshold (0.1-0.5)
}

// DefaultParams returns parameters tuned for whistled and sung input.
func DefaultParams(sampleRate int) Params {
	return Params{
		SampleRate: sampleRate,
		WindowSize: 2048,
		HopSize:    512,
		MinFreq:    80.0,   // low male voice
		MaxFreq:    2000.0, // whistles sit well above sung range
		Threshold:  0.15,
	}
}

// Tracker computes a per-frame pitch track from mono PCM.
type Tracker struct {
	params Params
}

// NewTracker creates a tracker with the given parameters.
func NewTracker(params Params) *Tracker {
	return &Tracker{params: params}
}

// Track slides a window over the signal and estimates one (f0, confidence)
// pair per hop. Unvoiced frames report f0 0 and confidence 0. The result is
// directly consumable by transcribe.Transcriber.
func (t *Tracker) Track(samples []float64) (transcribe.PitchTrack, error) {
	if len(samples) == 0 {
		return transcribe.PitchTrack{}, fmt.Errorf("track: %w", music.ErrEmptyInput)
	}
	if t.params.SampleRate <= 0 {
		return transcribe.PitchTrack{}, fmt.Errorf("track: sample rate must be positive, got %d", t.params.SampleRate)
	}

	window := t.params.WindowSize
	hop := t.params.HopSize
	if len(samples) < window {
		window = len(samples)
	}

	var f0 []float64
	var confidence []float64
	for start := 0; start+window <= len(samples); start += hop {
		freq, conf := t.estimateFrame(samples[start : start+window])
		f0 = append(f0, freq)
		confidence = append(confidence, conf)
	}
	if len(f0) == 0 {
		freq, conf := t.estimateFrame(samples)
		f0 = append(f0, freq)
		confidence = append(confidence, conf)
	}

	return transcribe.PitchTrack{
		F0Hz:       f0,
		Confidence: confidence,
		Duration:   float64(len(samples)) / float64(t.params.SampleRate),
	}, nil
}

// estimateFrame runs YIN on a single frame.
func (t *Tracker) estimateFrame(frame []float64) (float64, float64) {
	half := len(frame) / 2
	if half < 2 {
		return 0, 0
	}

	diff := differenceFunction(frame, half)

	// Cumulative mean normalized difference function.
	cmndf := make([]float64, half)
	cmndf[0] = 1.0
	runningSum := 0.0
	for tau := 1; tau < half; tau++ {
		runningSum += diff[tau]
		if runningSum > 0 {
			cmndf[tau] = diff[tau] * float64(tau) / runningSum
		} else {
			cmndf[tau] = 1.0
		}
	}

	// First local minimum below threshold.
	minTau := -1
	for tau := 1; tau < half-1; tau++ {
		if cmndf[tau] < t.params.Threshold && cmndf[tau] < cmndf[tau+1] {
			minTau = tau
			break
		}
	}
	if minTau <= 0 {
		return 0, 0
	}

	period := parabolicInterpolation(cmndf, minTau)
	if period <= 0 {
		return 0, 0
	}
	freq := float64(t.params.SampleRate) / period
	if freq < t.params.MinFreq || freq > t.params.MaxFreq {
		return 0, 0
	}

	confidence := 1.0 - cmndf[minTau]
	if confidence < 0 {
		confidence = 0
	}
	return freq, confidence
}

// differenceFunction computes the YIN difference function
// d(tau) = sum_{j<W} (x[j] - x[j+tau])^2 with window W = maxTau, using the
// identity d(tau) = E(0) + E(tau) - 2·corr(tau). The correlation of the
// frame against its first W samples comes from a zero-padded FFT instead of
// the quadratic time-domain loop.
func differenceFunction(frame []float64, maxTau int) []float64 {
	n := len(frame)
	w := maxTau

	padded := make([]float64, 2*n)
	copy(padded, frame)
	kernel := make([]float64, 2*n)
	copy(kernel, frame[:w])

	frameSpec := fft.FFTReal(padded)
	kernelSpec := fft.FFTReal(kernel)
	for i := range frameSpec {
		frameSpec[i] *= complex(real(kernelSpec[i]), -imag(kernelSpec[i]))
	}
	corr := fft.IFFT(frameSpec)

	// Sliding window energies: power[tau] is the energy of x[tau : tau+W].
	power := make([]float64, maxTau)
	sum := 0.0
	for j := 0; j < w; j++ {
		sum += frame[j] * frame[j]
	}
	power[0] = sum
	for tau := 1; tau < maxTau; tau++ {
		sum -= frame[tau-1] * frame[tau-1]
		sum += frame[tau+w-1] * frame[tau+w-1]
		power[tau] = sum
	}

	diff := make([]float64, maxTau)
	for tau := 0; tau < maxTau; tau++ {
		d := power[0] + power[tau] - 2*real(corr[tau])
		if d < 0 {
			d = 0
		}
		diff[tau] = d
	}
	return diff
}

// parabolicInterpolation refines the lag estimate around the CMNDF minimum.
func parabolicInterpolation(data []float64, peakIdx int) float64 {
	if peakIdx <= 0 || peakIdx >= len(data)-1 {
		return float64(peakIdx)
	}

	y1 := data[peakIdx-1]
	y2 := data[peakIdx]
	y3 := data[peakIdx+1]

	a := (y1 - 2*y2 + y3) / 2
	b := (y3 - y1) / 2
	if a == 0 {
		return float64(peakIdx)
	}
	offset := -b / (2 * a)
	if math.Abs(offset) > 1 {
		return float64(peakIdx)
	}
	return float64(peakIdx) + offset
}
