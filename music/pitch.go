package music

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Pitch math shared by segmentation and generation. 440 Hz = A4 = MIDI 69.

const (
	referenceHz   = 440.0
	referenceMIDI = 69
	// CentsPerSemitone is the logarithmic pitch-distance unit count per
	// semitone (100 cents = one semitone).
	CentsPerSemitone = 100.0
)

// HzToMIDI converts a frequency to the nearest MIDI pitch number.
// Returns -1 for non-positive frequencies (unvoiced frames).
func HzToMIDI(hz float64) int {
	if hz <= 0 {
		return -1
	}
	p := int(math.Round(12.0*math.Log2(hz/referenceHz) + referenceMIDI))
	if p < MinPitch {
		p = MinPitch
	}
	if p > MaxPitch {
		p = MaxPitch
	}
	return p
}

// MIDIToHz converts a MIDI pitch number to its equal-tempered frequency.
func MIDIToHz(pitch int) float64 {
	return referenceHz * math.Pow(2, float64(pitch-referenceMIDI)/12.0)
}

// CentsBetween returns the absolute pitch distance between two frequencies
// in cents. Zero when either frequency is non-positive.
func CentsBetween(hz1, hz2 float64) float64 {
	if hz1 <= 0 || hz2 <= 0 {
		return 0
	}
	return math.Abs(1200.0 * math.Log2(hz1/hz2))
}

// PitchClass returns the pitch class (0-11) of a MIDI pitch.
func PitchClass(pitch int) int {
	pc := pitch % 12
	if pc < 0 {
		pc += 12
	}
	return pc
}

// Mean calculates the arithmetic mean of a slice using gonum.
func Mean(data []float64) float64 {
	if len(data) == 0 {
		return 0.0
	}
	return stat.Mean(data, nil)
}

// MeanPitch returns the mean pitch of a set of notes.
func MeanPitch(notes []Note) float64 {
	if len(notes) == 0 {
		return 0.0
	}
	pitches := make([]float64, len(notes))
	for i, n := range notes {
		pitches[i] = float64(n.Pitch)
	}
	return Mean(pitches)
}

// Median returns the median of a slice, averaging the middle pair for
// even-length input.
func Median(values []float64) float64 {
	if len(values) == 0 {
		return 0.0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2.0
	}
	return sorted[mid]
}
