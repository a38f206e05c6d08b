// Package fugue expands a quantized melody into a four-voice fugue: subject,
// tonal answer, countersubject, staggered exposition, developmental episode,
// and a stretto coda with a cadence chord.
package fugue

import (
	"fmt"
	"math"

	"github.com/tonearc/fuguewright/music"
)

// BeatNote is a note indexed in whole beats. The generative stages work in
// beat space and only convert to seconds when the final NoteSequence is
// rendered.
type BeatNote struct {
	Pitch     int
	StartBeat int
	EndBeat   int
	Velocity  int
	Voice     int
}

// Passage is an ordered run of beat-indexed notes. The subject, the answer,
// the countersubject, and every scheduled voice part are passages.
type Passage []BeatNote

// EndBeat returns the beat at which the last note of the passage ends.
func (p Passage) EndBeat() int {
	end := 0
	for _, n := range p {
		if n.EndBeat > end {
			end = n.EndBeat
		}
	}
	return end
}

// Pitches returns the pitch column of the passage.
func (p Passage) Pitches() []int {
	pitches := make([]int, len(p))
	for i, n := range p {
		pitches[i] = n.Pitch
	}
	return pitches
}

// Transpose returns a copy shifted by the given number of semitones.
func (p Passage) Transpose(semitones int) Passage {
	out := make(Passage, len(p))
	copy(out, p)
	for i := range out {
		out[i].Pitch += semitones
	}
	return out
}

// Shift returns a copy moved forward by the given number of beats.
func (p Passage) Shift(beats int) Passage {
	out := make(Passage, len(p))
	copy(out, p)
	for i := range out {
		out[i].StartBeat += beats
		out[i].EndBeat += beats
	}
	return out
}

// WithVoice returns a copy assigned to the given voice.
func (p Passage) WithVoice(voice int) Passage {
	out := make(Passage, len(p))
	copy(out, p)
	for i := range out {
		out[i].Voice = voice
	}
	return out
}

// FitRange returns a copy transposed into the target vocal range: one
// contour-preserving transpose onto the range center, then octave folding
// per pitch.
func (p Passage) FitRange(r music.VoiceRange) (Passage, error) {
	folded, err := music.TransposeToRange(p.Pitches(), r)
	if err != nil {
		return nil, err
	}
	out := make(Passage, len(p))
	copy(out, p)
	for i := range out {
		out[i].Pitch = folded[i]
	}
	return out, nil
}

// Motif returns the first n notes of the passage (fewer when the passage is
// shorter), rebased to start at beat 0.
func (p Passage) Motif(n int) Passage {
	if n > len(p) {
		n = len(p)
	}
	out := make(Passage, n)
	copy(out, p[:n])
	if len(out) > 0 && out[0].StartBeat > 0 {
		out = out.Shift(-out[0].StartBeat)
	}
	return out
}

// MeanPitch returns the mean pitch of the passage.
func (p Passage) MeanPitch() float64 {
	if len(p) == 0 {
		return 0
	}
	pitches := make([]float64, len(p))
	for i, n := range p {
		pitches[i] = float64(n.Pitch)
	}
	return music.Mean(pitches)
}

// ExtractSubject converts a quantized melody into the fugue subject: a
// beat-indexed passage anchored at beat 0. Each note's start is re-expressed
// relative to the first note and rounded to the nearest beat; durations
// round to whole beats with a one-beat minimum.
func ExtractSubject(melody []music.Note, beatDuration float64) (Passage, error) {
	if len(melody) == 0 {
		return nil, fmt.Errorf("extract subject: %w", music.ErrEmptyInput)
	}
	if beatDuration <= 0 {
		return nil, fmt.Errorf("extract subject: beat duration must be positive, got %v", beatDuration)
	}

	origin := melody[0].StartTime
	subject := make(Passage, len(melody))
	for i, n := range melody {
		startBeat := int(math.Round((n.StartTime - origin) / beatDuration))
		if startBeat < 0 {
			startBeat = 0
		}
		durationBeats := int(math.Round(n.Duration() / beatDuration))
		if durationBeats < 1 {
			durationBeats = 1
		}
		subject[i] = BeatNote{
			Pitch:     n.Pitch,
			StartBeat: startBeat,
			EndBeat:   startBeat + durationBeats,
			Velocity:  n.Velocity,
			Voice:     music.VoiceSoprano,
		}
	}
	return subject, nil
}

// Answer returns the tonal answer: the subject restated a perfect fifth
// higher, beats unchanged.
func Answer(subject Passage) Passage {
	return subject.Transpose(7)
}

// Countersubject bounds for the dampened mirror; roughly C3 to C5 so the
// line stays singable wherever it lands.
const (
	countersubjectMin      = 48
	countersubjectMax      = 72
	countersubjectVelocity = 70
)

// Countersubject derives a contrary-motion line from the subject: each pitch
// is mirrored about the subject's mean with 0.7 damping, hard-clamped into
// the countersubject band. Beats are unchanged.
func Countersubject(subject Passage) Passage {
	mean := subject.MeanPitch()
	out := make(Passage, len(subject))
	copy(out, subject)
	for i, n := range subject {
		pitch := int(math.Round(mean - (float64(n.Pitch)-mean)*0.7))
		if pitch < countersubjectMin {
			pitch = countersubjectMin
		}
		if pitch > countersubjectMax {
			pitch = countersubjectMax
		}
		out[i].Pitch = pitch
		out[i].Velocity = countersubjectVelocity
	}
	return out
}
