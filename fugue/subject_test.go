package fugue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tonearc/fuguewright/music"
)

func TestExtractSubject(t *testing.T) {
	melody := []music.Note{
		{Pitch: 60, StartTime: 1.0, EndTime: 1.5, Velocity: 80},
		{Pitch: 62, StartTime: 1.5, EndTime: 2.0, Velocity: 80},
		{Pitch: 64, StartTime: 2.0, EndTime: 3.0, Velocity: 80},
	}

	subject, err := ExtractSubject(melody, 0.5)
	require.NoError(t, err)
	require.Len(t, subject, 3)

	// The first note anchors beat 0 regardless of its absolute time.
	assert.Equal(t, BeatNote{Pitch: 60, StartBeat: 0, EndBeat: 1, Velocity: 80, Voice: music.VoiceSoprano}, subject[0])
	assert.Equal(t, BeatNote{Pitch: 62, StartBeat: 1, EndBeat: 2, Velocity: 80, Voice: music.VoiceSoprano}, subject[1])
	assert.Equal(t, BeatNote{Pitch: 64, StartBeat: 2, EndBeat: 4, Velocity: 80, Voice: music.VoiceSoprano}, subject[2])
}

func TestExtractSubjectMinimumOneBeat(t *testing.T) {
	melody := []music.Note{{Pitch: 60, StartTime: 0, EndTime: 0.05, Velocity: 80}}

	subject, err := ExtractSubject(melody, 0.5)
	require.NoError(t, err)
	require.Len(t, subject, 1)
	assert.Equal(t, 1, subject[0].EndBeat-subject[0].StartBeat)
}

func TestExtractSubjectErrors(t *testing.T) {
	_, err := ExtractSubject(nil, 0.5)
	assert.ErrorIs(t, err, music.ErrEmptyInput)

	_, err = ExtractSubject([]music.Note{{Pitch: 60, EndTime: 1}}, 0)
	assert.Error(t, err)
}

func TestAnswerIsPerfectFifthUp(t *testing.T) {
	subject := Passage{
		{Pitch: 60, StartBeat: 0, EndBeat: 2, Velocity: 80},
		{Pitch: 64, StartBeat: 2, EndBeat: 4, Velocity: 80},
	}

	answer := Answer(subject)
	require.Len(t, answer, 2)
	for i := range answer {
		assert.Equal(t, subject[i].Pitch+7, answer[i].Pitch)
		assert.Equal(t, subject[i].StartBeat, answer[i].StartBeat)
		assert.Equal(t, subject[i].EndBeat, answer[i].EndBeat)
	}
}

func TestCountersubjectMovesContrary(t *testing.T) {
	subject := Passage{
		{Pitch: 60, StartBeat: 0, EndBeat: 1, Velocity: 80},
		{Pitch: 67, StartBeat: 1, EndBeat: 2, Velocity: 80},
		{Pitch: 64, StartBeat: 2, EndBeat: 3, Velocity: 80},
		{Pitch: 55, StartBeat: 3, EndBeat: 4, Velocity: 80},
	}
	mean := subject.MeanPitch()

	cs := Countersubject(subject)
	require.Len(t, cs, len(subject))

	for i := range cs {
		assert.Equal(t, subject[i].StartBeat, cs[i].StartBeat)
		assert.Equal(t, subject[i].EndBeat, cs[i].EndBeat)
		assert.Equal(t, countersubjectVelocity, cs[i].Velocity)

		// A subject note above the mean mirrors below it and vice versa.
		if float64(subject[i].Pitch) > mean {
			assert.Less(t, float64(cs[i].Pitch), mean, "note %d", i)
		}
		if float64(subject[i].Pitch) < mean {
			assert.Greater(t, float64(cs[i].Pitch), mean, "note %d", i)
		}
	}
}

func TestCountersubjectClampsToBand(t *testing.T) {
	high := Passage{{Pitch: 95}, {Pitch: 96}, {Pitch: 40}}
	for _, n := range Countersubject(high) {
		assert.GreaterOrEqual(t, n.Pitch, countersubjectMin)
		assert.LessOrEqual(t, n.Pitch, countersubjectMax)
	}
}

func TestPassageMotif(t *testing.T) {
	p := Passage{
		{Pitch: 60, StartBeat: 4, EndBeat: 5},
		{Pitch: 62, StartBeat: 5, EndBeat: 6},
		{Pitch: 64, StartBeat: 6, EndBeat: 8},
	}

	motif := p.Motif(2)
	require.Len(t, motif, 2)
	// Rebased to beat 0.
	assert.Equal(t, 0, motif[0].StartBeat)
	assert.Equal(t, 2, motif[1].EndBeat)

	assert.Len(t, p.Motif(10), 3)
}
