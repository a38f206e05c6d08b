package music

import (
	"fmt"
	"math"
)

// Voice indices for the four fixed vocal parts.
const (
	VoiceSoprano = 0
	VoiceAlto    = 1
	VoiceTenor   = 2
	VoiceBass    = 3
	NumVoices    = 4
)

// VoiceRange is the permitted MIDI pitch band for one vocal part.
type VoiceRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// Center returns the midpoint of the range.
func (r VoiceRange) Center() float64 {
	return float64(r.Min+r.Max) / 2.0
}

// Contains reports whether a pitch lies inside the range.
func (r VoiceRange) Contains(pitch int) bool {
	return pitch >= r.Min && pitch <= r.Max
}

// Validate rejects degenerate ranges before they reach octave folding.
func (r VoiceRange) Validate() error {
	if r.Min > r.Max {
		return fmt.Errorf("%w: min=%d max=%d", ErrInvalidRange, r.Min, r.Max)
	}
	return nil
}

// StandardRanges returns the four voice ranges indexed by voice number.
// Neighboring ranges overlap so shared material can cross parts.
func StandardRanges() [NumVoices]VoiceRange {
	return [NumVoices]VoiceRange{
		VoiceSoprano: {Min: 60, Max: 81}, // C4-A5
		VoiceAlto:    {Min: 53, Max: 74}, // F3-D5
		VoiceTenor:   {Min: 47, Max: 67}, // B2-G4
		VoiceBass:    {Min: 40, Max: 60}, // E2-C4
	}
}

// ClampPitch maps a pitch into [r.Min, r.Max] by octave shifts, hard-clamping
// to the nearest boundary when the range spans less than an octave. The shift
// count is computed up front, so the mapping is loop-free even for extreme
// pitches. The range must already be validated.
func (r VoiceRange) ClampPitch(pitch int) int {
	if pitch < r.Min {
		octaves := (r.Min - pitch + 11) / 12
		pitch += 12 * octaves
	} else if pitch > r.Max {
		octaves := (pitch - r.Max + 11) / 12
		pitch -= 12 * octaves
	}
	// Octave folding overshoots when max-min < 12.
	if pitch < r.Min {
		pitch = r.Min
	}
	if pitch > r.Max {
		pitch = r.Max
	}
	return pitch
}

// TransposeToRange moves a passage into the target range: a single transpose
// aligning the passage's mean pitch with the range center, then per-pitch
// octave folding. The initial transpose preserves the melodic contour;
// folding may alter large intervals at the range boundaries, which is an
// accepted approximation.
func TransposeToRange(pitches []int, r VoiceRange) ([]int, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	if len(pitches) == 0 {
		return []int{}, nil
	}

	vals := make([]float64, len(pitches))
	for i, p := range pitches {
		vals[i] = float64(p)
	}
	transpose := int(math.Round(r.Center() - Mean(vals)))

	out := make([]int, len(pitches))
	for i, p := range pitches {
		out[i] = r.ClampPitch(p + transpose)
	}
	return out, nil
}

// TransposeNotesToRange applies TransposeToRange to a note slice, returning a
// fresh slice; timings and velocities are untouched.
func TransposeNotesToRange(notes []Note, r VoiceRange) ([]Note, error) {
	pitches := make([]int, len(notes))
	for i, n := range notes {
		pitches[i] = n.Pitch
	}
	folded, err := TransposeToRange(pitches, r)
	if err != nil {
		return nil, err
	}
	out := make([]Note, len(notes))
	copy(out, notes)
	for i := range out {
		out[i].Pitch = folded[i]
	}
	return out, nil
}

// CheckVocalRange transposes the melody's mean pitch onto the center of the
// supported vocal bounds and verifies that at least one note lands inside
// them. Any melody-preprocessing stage must honor this contract before
// handing notes to a generator.
func CheckVocalRange(notes []Note) error {
	if len(notes) == 0 {
		return ErrEmptyInput
	}
	bounds := VoiceRange{Min: MinVocalPitch, Max: MaxVocalPitch}
	transpose := int(math.Round(bounds.Center() - MeanPitch(notes)))
	for _, n := range notes {
		if bounds.Contains(n.Pitch + transpose) {
			return nil
		}
	}
	return ErrOutOfVocalRange
}
