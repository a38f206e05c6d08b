package fugue

import (
	"fmt"

	"github.com/tonearc/fuguewright/music"
)

// EntrySpacing returns the gap in beats between successive voice entries:
// the subject length rounded up to a full measure, never less than eight
// beats.
func EntrySpacing(subjectBeats int) int {
	spacing := ((subjectBeats + 3) / 4) * 4
	if spacing < 8 {
		spacing = 8
	}
	return spacing
}

// ExpositionBuilder schedules the four staggered voice entries of the
// opening section: subject and answer alternate down the voices while
// earlier voices continue with the countersubject and then freely generated
// counterpoint.
type ExpositionBuilder struct {
	ranges     [music.NumVoices]music.VoiceRange
	complexity int
	rng        RandSource
}

// NewExpositionBuilder creates a builder over the given voice ranges.
func NewExpositionBuilder(ranges [music.NumVoices]music.VoiceRange, complexity int, rng RandSource) *ExpositionBuilder {
	return &ExpositionBuilder{ranges: ranges, complexity: complexity, rng: rng}
}

// Build returns the exposition notes and its logical end beat,
// 3·entrySpacing + subjectDuration. Every voice part is transposed into its
// designated range before scheduling, and no voice is left silent before
// the end beat: gaps are filled with free-counterpoint bridging material.
func (b *ExpositionBuilder) Build(subject, answer, countersubject Passage) (Passage, int, error) {
	if len(subject) == 0 {
		return nil, 0, fmt.Errorf("build exposition: %w", music.ErrEmptyInput)
	}

	subjectBeats := subject.EndBeat()
	spacing := EntrySpacing(subjectBeats)
	endBeat := 3*spacing + subjectBeats

	var notes Passage
	schedule := func(material Passage, voice, offset int) error {
		fitted, err := material.FitRange(b.ranges[voice])
		if err != nil {
			return err
		}
		notes = append(notes, fitted.Shift(offset).WithVoice(voice)...)
		return nil
	}
	free := func(theme Passage, voice, offset int) error {
		line, err := FreeCounterpoint(theme.WithVoice(voice), offset, b.rng, b.complexity, &b.ranges[voice])
		if err != nil {
			return err
		}
		notes = append(notes, line...)
		return nil
	}

	// First entry: soprano states the subject alone.
	if err := schedule(subject, music.VoiceSoprano, 0); err != nil {
		return nil, 0, err
	}

	// Second entry: alto answers, soprano moves to the countersubject.
	if err := schedule(answer, music.VoiceAlto, spacing); err != nil {
		return nil, 0, err
	}
	if err := schedule(countersubject, music.VoiceSoprano, spacing); err != nil {
		return nil, 0, err
	}

	// Third entry: tenor subject, alto countersubject, soprano continues
	// freely on its own material.
	if err := schedule(subject, music.VoiceTenor, 2*spacing); err != nil {
		return nil, 0, err
	}
	if err := schedule(countersubject, music.VoiceAlto, 2*spacing); err != nil {
		return nil, 0, err
	}
	if err := free(countersubject, music.VoiceSoprano, 2*spacing); err != nil {
		return nil, 0, err
	}

	// Fourth entry: bass answer, tenor countersubject, upper voices free.
	if err := schedule(answer, music.VoiceBass, 3*spacing); err != nil {
		return nil, 0, err
	}
	if err := schedule(countersubject, music.VoiceTenor, 3*spacing); err != nil {
		return nil, 0, err
	}
	if err := free(countersubject, music.VoiceAlto, 3*spacing); err != nil {
		return nil, 0, err
	}
	if err := free(subject, music.VoiceSoprano, 3*spacing); err != nil {
		return nil, 0, err
	}

	// Tail fill: bridge any voice that falls silent before the exposition's
	// logical end.
	bridged, err := b.fillTails(notes, subject, endBeat)
	if err != nil {
		return nil, 0, err
	}

	return bridged, endBeat, nil
}

// fillTails extends voices whose last note ends before the exposition end
// with range-confined free counterpoint, trimmed at the end beat. Bridges
// repeat until the voice reaches the end: at low complexity a single bridge
// can skip its last theme notes and leave the voice hanging early.
func (b *ExpositionBuilder) fillTails(notes Passage, theme Passage, endBeat int) (Passage, error) {
	lastEnd := make([]int, music.NumVoices)
	for _, n := range notes {
		if n.EndBeat > lastEnd[n.Voice] {
			lastEnd[n.Voice] = n.EndBeat
		}
	}

	for voice := range lastEnd {
		for lastEnd[voice] < endBeat {
			bridge, err := FreeCounterpoint(theme.WithVoice(voice), lastEnd[voice], b.rng, b.complexity, &b.ranges[voice])
			if err != nil {
				return nil, err
			}
			bridge = trimPassage(bridge, endBeat)
			end := bridge.EndBeat()
			if end <= lastEnd[voice] {
				break
			}
			notes = append(notes, bridge...)
			lastEnd[voice] = end
		}
	}
	return notes, nil
}

// trimPassage drops notes starting at or past the limit and shortens notes
// that cross it.
func trimPassage(p Passage, limitBeat int) Passage {
	var out Passage
	for _, n := range p {
		if n.StartBeat >= limitBeat {
			continue
		}
		if n.EndBeat > limitBeat {
			n.EndBeat = limitBeat
		}
		out = append(out, n)
	}
	return out
}
