package transcribe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tonearc/fuguewright/config"
	"github.com/tonearc/fuguewright/music"
)

func TestTranscribeConstantTone(t *testing.T) {
	tr := NewTranscriber(config.DefaultSegmentationConfig())

	pitch, conf := constTrack(100, 261.63, 0.9)
	seq, err := tr.Transcribe(PitchTrack{F0Hz: pitch, Confidence: conf, Duration: 1.0})
	require.NoError(t, err)
	require.Len(t, seq.Notes, 1)

	n := seq.Notes[0]
	assert.Equal(t, 60, n.Pitch)
	assert.InDelta(t, 0.0, n.StartTime, 1e-9)
	// 1.0s at 90 BPM is 1.5 beats, already a rhythmic value.
	assert.InDelta(t, 1.0, n.EndTime, 1e-9)

	require.NotEmpty(t, seq.Tempos)
	assert.Equal(t, 90.0, seq.Tempos[0].QPM)
	require.NotEmpty(t, seq.TimeSignatures)
	assert.Equal(t, 4, seq.TimeSignatures[0].Numerator)
	assert.Equal(t, 4, seq.TimeSignatures[0].Denominator)
	assert.InDelta(t, 1.0, seq.TotalTime, 1e-9)
}

func TestTranscribeEmptyTrack(t *testing.T) {
	tr := NewTranscriber(config.DefaultSegmentationConfig())
	_, err := tr.Transcribe(PitchTrack{})
	assert.ErrorIs(t, err, music.ErrEmptyInput)
}

func TestTranscribeAllUnvoiced(t *testing.T) {
	tr := NewTranscriber(config.DefaultSegmentationConfig())
	pitch, conf := constTrack(100, 0, 0)
	_, err := tr.Transcribe(PitchTrack{F0Hz: pitch, Confidence: conf, Duration: 1.0})
	assert.ErrorIs(t, err, music.ErrEmptyInput)
}

func TestTranscribeDropsShortBlip(t *testing.T) {
	tr := NewTranscriber(config.DefaultSegmentationConfig())

	// A lone 30ms blip inside silence is a segmentation artifact, not a note.
	pitch, conf := constTrack(1000, 0, 0)
	for i := 500; i < 530; i++ {
		pitch[i] = 440
		conf[i] = 0.9
	}

	_, err := tr.Transcribe(PitchTrack{F0Hz: pitch, Confidence: conf, Duration: 1.0})
	assert.ErrorIs(t, err, music.ErrEmptyInput)
}
