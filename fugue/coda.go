package fugue

import (
	"fmt"

	"github.com/tonearc/fuguewright/music"
)

const (
	strettoMotifLength = 4
	measureBeats       = 8
	cadenceChordBeats  = 4
	cadenceVelocity    = 90
)

// CodaBuilder closes the fugue with a stretto (close-interval imitative
// entries of the subject head in all four voices), free-counterpoint
// bridges up to the cadence, and a tonic triad resolved per voice.
type CodaBuilder struct {
	ranges     [music.NumVoices]music.VoiceRange
	complexity int
	codaBeats  int
	rng        RandSource
}

// NewCodaBuilder creates a coda builder. codaBeats is the requested coda
// length; the cadence lands on the next full 8-beat measure past it.
func NewCodaBuilder(ranges [music.NumVoices]music.VoiceRange, complexity, codaBeats int, rng RandSource) *CodaBuilder {
	if codaBeats < 1 {
		codaBeats = measureBeats
	}
	return &CodaBuilder{ranges: ranges, complexity: complexity, codaBeats: codaBeats, rng: rng}
}

// strettoInterval tightens the imitation when complexity is high.
func (c *CodaBuilder) strettoInterval() int {
	if c.complexity > 50 {
		return 2
	}
	return 4
}

// Build returns the coda notes starting at startBeat and the final end beat
// of the piece.
func (c *CodaBuilder) Build(subject Passage, startBeat int) (Passage, int, error) {
	if len(subject) == 0 {
		return nil, startBeat, fmt.Errorf("build coda: %w", music.ErrEmptyInput)
	}

	motif := subject.Motif(strettoMotifLength)
	interval := c.strettoInterval()

	var notes Passage
	maxEnd := startBeat
	for voice := 0; voice < music.NumVoices; voice++ {
		fitted, err := motif.FitRange(c.ranges[voice])
		if err != nil {
			return nil, startBeat, err
		}
		placed := fitted.Shift(startBeat + voice*interval).WithVoice(voice)
		notes = append(notes, placed...)
		if end := placed.EndBeat(); end > maxEnd {
			maxEnd = end
		}
	}

	cadenceBeat := startBeat + roundUpToMeasure(c.codaBeats)
	for cadenceBeat < maxEnd {
		cadenceBeat += measureBeats
	}

	// Bridge each voice from its last stretto note up to the cadence.
	lastEnd := make([]int, music.NumVoices)
	lastPitch := make([]int, music.NumVoices)
	for _, n := range notes {
		if n.EndBeat >= lastEnd[n.Voice] {
			lastEnd[n.Voice] = n.EndBeat
			lastPitch[n.Voice] = n.Pitch
		}
	}
	for voice := 0; voice < music.NumVoices; voice++ {
		if lastEnd[voice] >= cadenceBeat {
			continue
		}
		bridge, err := FreeCounterpoint(motif.WithVoice(voice), lastEnd[voice], c.rng, c.complexity, &c.ranges[voice])
		if err != nil {
			return nil, startBeat, err
		}
		bridge = trimPassage(bridge, cadenceBeat)
		notes = append(notes, bridge...)
		for _, n := range bridge {
			if n.EndBeat >= lastEnd[voice] {
				lastEnd[voice] = n.EndBeat
				lastPitch[voice] = n.Pitch
			}
		}
	}

	// Tonic triad cadence, each voice resolving to the chord pitch class
	// nearest its own last-played pitch.
	tonic := music.PitchClass(subject[0].Pitch)
	targets := [music.NumVoices]int{
		music.VoiceSoprano: tonic,
		music.VoiceAlto:    (tonic + 4) % 12,
		music.VoiceTenor:   (tonic + 7) % 12,
		music.VoiceBass:    tonic,
	}
	for voice := 0; voice < music.NumVoices; voice++ {
		pitch := nearestPitchClass(lastPitch[voice], targets[voice])
		pitch = c.ranges[voice].ClampPitch(pitch)
		notes = append(notes, BeatNote{
			Pitch:     pitch,
			StartBeat: cadenceBeat,
			EndBeat:   cadenceBeat + cadenceChordBeats,
			Velocity:  cadenceVelocity,
			Voice:     voice,
		})
	}

	return notes, cadenceBeat + cadenceChordBeats, nil
}

// roundUpToMeasure lifts a beat count to the next full 8-beat measure.
func roundUpToMeasure(beats int) int {
	return ((beats + measureBeats - 1) / measureBeats) * measureBeats
}

// nearestPitchClass returns the pitch with the target pitch class closest to
// from, wrapping the semitone distance at ±6 so the voice never leaps more
// than a tritone into the chord.
func nearestPitchClass(from, targetClass int) int {
	delta := (targetClass - music.PitchClass(from)) % 12
	if delta > 6 {
		delta -= 12
	}
	if delta < -6 {
		delta += 12
	}
	return from + delta
}
