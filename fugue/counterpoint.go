package fugue

import (
	"math"
	"math/rand"
	"time"

	"github.com/tonearc/fuguewright/music"
)

// RandSource is the single source of randomness for the generative stages.
// Float64 must return values in [0,1). *rand.Rand satisfies it directly;
// tests inject a seeded source for reproducible output.
type RandSource interface {
	Float64() float64
}

// NewDefaultRand returns a time-seeded RandSource for production use.
func NewDefaultRand() RandSource {
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

// NewSeededRand returns a deterministic RandSource for reproducible runs.
func NewSeededRand(seed int64) RandSource {
	return rand.New(rand.NewSource(seed))
}

// Free counterpoint tuning. Steps stay within a fourth of the previous
// pitch; cumulative drift past maxDrift semitones from the theme tonic is
// pulled back toward it.
const (
	maxStep              = 4
	maxDrift             = 15
	counterpointVelocity = 70
	inclusionEverySecond = 2
	driftRecoveryDivisor = 2
)

// FreeCounterpoint generates filler material against a reference theme at a
// beat offset. Roughly every other theme note yields a new note: inclusion
// probability scales with complexity/100 and every second theme note is
// forced in so the line never starves. Pitches random-walk in bounded steps
// from the previous generated pitch; when supplied, the result is confined
// to the target range.
func FreeCounterpoint(theme Passage, offsetBeats int, rng RandSource, complexity int, voiceRange *music.VoiceRange) (Passage, error) {
	if len(theme) == 0 {
		return Passage{}, nil
	}

	tonic := theme[0].Pitch
	prev := tonic
	prob := float64(complexity) / 100.0

	var out Passage
	for i, n := range theme {
		if i%inclusionEverySecond != 0 && rng.Float64() >= prob {
			continue
		}

		step := int(math.Floor(rng.Float64()*float64(2*maxStep+1))) - maxStep
		pitch := prev + step
		if drift := pitch - tonic; drift > maxDrift || drift < -maxDrift {
			pitch = tonic + drift/driftRecoveryDivisor
		}
		prev = pitch

		out = append(out, BeatNote{
			Pitch:     pitch,
			StartBeat: n.StartBeat + offsetBeats,
			EndBeat:   n.EndBeat + offsetBeats,
			Velocity:  counterpointVelocity,
			Voice:     n.Voice,
		})
	}

	if voiceRange != nil {
		return out.FitRange(*voiceRange)
	}
	return out, nil
}
