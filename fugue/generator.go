package fugue

import (
	"fmt"
	"sort"

	"github.com/tonearc/fuguewright/config"
	"github.com/tonearc/fuguewright/logging"
	"github.com/tonearc/fuguewright/music"
)

// Generator runs the full composition pipeline: subject extraction, answer
// and countersubject derivation, exposition, episode, and coda. It holds no
// mutable state between calls beyond its immutable configuration; the
// injected RandSource is the only nondeterministic element.
type Generator struct {
	cfg    config.GenerationConfig
	ranges [music.NumVoices]music.VoiceRange
	rng    RandSource
	logger logging.Logger
}

// NewGenerator creates a generator with the given options. A nil rng falls
// back to a time-seeded source; tests pass a seeded one for reproducible
// output.
func NewGenerator(cfg config.GenerationConfig, rng RandSource) *Generator {
	if rng == nil {
		rng = NewDefaultRand()
	}
	return &Generator{
		cfg:    cfg,
		ranges: music.StandardRanges(),
		rng:    rng,
		logger: logging.WithFields(logging.Fields{
			"component": "fugue_generator",
		}),
	}
}

// Generate expands a quantized melody into a four-voice fugue NoteSequence.
// The melody's tempo mark sets the beat grid; voices appear as instrument
// indices 0-3.
func (g *Generator) Generate(melody *music.NoteSequence) (*music.NoteSequence, error) {
	if melody == nil || len(melody.Notes) == 0 {
		return nil, fmt.Errorf("generate: %w", music.ErrEmptyInput)
	}
	if err := music.CheckVocalRange(melody.Notes); err != nil {
		return nil, fmt.Errorf("generate: %w", err)
	}

	qpm := melody.QPM(config.DefaultSegmentationConfig().BPM)
	beatDuration := 60.0 / qpm

	subject, err := ExtractSubject(melody.Notes, beatDuration)
	if err != nil {
		return nil, err
	}
	answer := Answer(subject)
	countersubject := Countersubject(subject)

	logger := g.logger.WithFields(logging.Fields{
		"subject_notes": len(subject),
		"subject_beats": subject.EndBeat(),
		"qpm":           qpm,
	})
	logger.Debug("Starting fugue generation")

	exposition := NewExpositionBuilder(g.ranges, g.cfg.Complexity, g.rng)
	notes, expoEnd, err := exposition.Build(subject, answer, countersubject)
	if err != nil {
		return nil, err
	}

	episode := NewEpisodeGenerator(g.ranges, g.cfg.Density, g.rng)
	episodeNotes, episodeEnd, err := episode.Build(subject, expoEnd)
	if err != nil {
		return nil, err
	}
	notes = append(notes, episodeNotes...)

	coda := NewCodaBuilder(g.ranges, g.cfg.Complexity, g.cfg.CodaLengthBeats, g.rng)
	codaNotes, finalBeat, err := coda.Build(subject, episodeEnd)
	if err != nil {
		return nil, err
	}
	notes = append(notes, codaNotes...)

	logger.Debug("Fugue generation completed", logging.Fields{
		"exposition_end": expoEnd,
		"episode_end":    episodeEnd,
		"final_beat":     finalBeat,
		"total_notes":    len(notes),
	})

	return renderSequence(notes, finalBeat, qpm, beatDuration), nil
}

// renderSequence converts beat-indexed notes to seconds and assembles the
// output NoteSequence, sorted by start time with voice as tiebreaker.
func renderSequence(notes Passage, finalBeat int, qpm, beatDuration float64) *music.NoteSequence {
	sort.SliceStable(notes, func(i, j int) bool {
		if notes[i].StartBeat != notes[j].StartBeat {
			return notes[i].StartBeat < notes[j].StartBeat
		}
		return notes[i].Voice < notes[j].Voice
	})

	rendered := make([]music.Note, len(notes))
	for i, n := range notes {
		rendered[i] = music.Note{
			Pitch:     n.Pitch,
			StartTime: float64(n.StartBeat) * beatDuration,
			EndTime:   float64(n.EndBeat) * beatDuration,
			Velocity:  n.Velocity,
			Voice:     n.Voice,
		}
	}

	seq := music.NewNoteSequence(rendered, qpm)
	if total := float64(finalBeat) * beatDuration; total > seq.TotalTime {
		seq.TotalTime = total
	}
	return seq
}
