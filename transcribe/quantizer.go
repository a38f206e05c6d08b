package transcribe

import (
	"math"

	"github.com/tonearc/fuguewright/music"
)

// RhythmicValues is the rhythmic grid in beats: whole note through 1/32,
// plus the dotted values. Quantization picks the closest entry, first match
// winning ties, so the table order is part of the contract.
var RhythmicValues = []float64{4, 3, 2, 1.5, 1, 0.75, 0.5, 0.375, 0.25, 0.125}

// Quantizer snaps note durations and start times onto the rhythmic grid by
// minimum-cost matching: each duration maps to the nearest table value and
// each onset to the nearest sixteenth beat. This is deterministic and not a
// hard snap to a single grid resolution.
type Quantizer struct {
	beatDuration float64
}

// NewQuantizer creates a quantizer for the given tempo.
func NewQuantizer(bpm float64) *Quantizer {
	if bpm <= 0 {
		bpm = 90
	}
	return &Quantizer{beatDuration: 60.0 / bpm}
}

// BeatDuration returns the beat length in seconds.
func (q *Quantizer) BeatDuration() float64 {
	return q.beatDuration
}

// NearestRhythmicValue returns the table entry closest to the given duration
// in beats. Ties resolve to the earlier (longer) entry.
func NearestRhythmicValue(beats float64) float64 {
	best := RhythmicValues[0]
	bestDist := math.Abs(beats - best)
	for _, v := range RhythmicValues[1:] {
		d := math.Abs(beats - v)
		if d < bestDist {
			best = v
			bestDist = d
		}
	}
	return best
}

// Quantize returns a fresh slice of notes with durations snapped to the
// rhythmic-value table and onsets snapped to the nearest sixteenth beat.
// Start times never go negative.
func (q *Quantizer) Quantize(notes []music.Note) []music.Note {
	out := make([]music.Note, len(notes))
	for i, n := range notes {
		durationBeats := n.Duration() / q.beatDuration
		value := NearestRhythmicValue(durationBeats)

		startBeats := math.Round(n.StartTime/q.beatDuration*4.0) / 4.0
		if startBeats < 0 {
			startBeats = 0
		}

		out[i] = n
		out[i].StartTime = startBeats * q.beatDuration
		out[i].EndTime = out[i].StartTime + value*q.beatDuration
	}
	return out
}
