package fugue

import (
	"fmt"

	"github.com/tonearc/fuguewright/music"
)

const (
	episodeMotifLength = 4
	episodeSpacing     = 4 // beats between repetitions
)

// EpisodeGenerator produces a developmental passage by sequencing a short
// motif from the subject: each repetition is transposed a step further in a
// direction chosen once per episode and rotated across the voices. Density
// controls both the repetition count and how many voices sound at once.
type EpisodeGenerator struct {
	ranges  [music.NumVoices]music.VoiceRange
	density int
	rng     RandSource
}

// NewEpisodeGenerator creates an episode generator over the given ranges.
func NewEpisodeGenerator(ranges [music.NumVoices]music.VoiceRange, density int, rng RandSource) *EpisodeGenerator {
	return &EpisodeGenerator{ranges: ranges, density: density, rng: rng}
}

// repetitions scales with density but never drops below three, so the
// episode always reads as a sequence rather than a single echo.
func (e *EpisodeGenerator) repetitions() int {
	reps := e.density / 8
	if reps < 3 {
		reps = 3
	}
	return reps
}

// activeVoices maps density onto how many voices carry each repetition.
func (e *EpisodeGenerator) activeVoices() int {
	switch {
	case e.density <= 25:
		return 1
	case e.density <= 75:
		return 2
	default:
		return 3
	}
}

// Build returns the episode notes starting at startBeat and the episode's
// end beat.
func (e *EpisodeGenerator) Build(subject Passage, startBeat int) (Passage, int, error) {
	if len(subject) == 0 {
		return nil, startBeat, fmt.Errorf("build episode: %w", music.ErrEmptyInput)
	}

	motif := subject.Motif(episodeMotifLength)
	direction := 1
	if e.rng.Float64() < 0.5 {
		direction = -1
	}

	reps := e.repetitions()
	voices := e.activeVoices()

	var notes Passage
	endBeat := startBeat
	for i := 0; i < reps; i++ {
		transposed := motif.Transpose(i * 2 * direction)
		offset := startBeat + i*episodeSpacing

		for slot := 0; slot < voices; slot++ {
			voice := (i + slot) % music.NumVoices
			fitted, err := transposed.FitRange(e.ranges[voice])
			if err != nil {
				return nil, startBeat, err
			}
			placed := fitted.Shift(offset).WithVoice(voice)
			notes = append(notes, placed...)
			if end := placed.EndBeat(); end > endBeat {
				endBeat = end
			}
		}
	}

	return notes, endBeat, nil
}
