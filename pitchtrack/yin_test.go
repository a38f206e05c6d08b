package pitchtrack

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tonearc/fuguewright/config"
	"github.com/tonearc/fuguewright/music"
	"github.com/tonearc/fuguewright/transcribe"
)

func sineWave(freq float64, sampleRate, n int) []float64 {
	samples := make([]float64, n)
	for i := range samples {
		samples[i] = math.Sin(2 * math.Pi * freq * float64(i) / float64(sampleRate))
	}
	return samples
}

func TestTrackPureTone(t *testing.T) {
	const sampleRate = 44100

	for _, freq := range []float64{220.0, 440.0, 880.0} {
		tracker := NewTracker(DefaultParams(sampleRate))
		track, err := tracker.Track(sineWave(freq, sampleRate, sampleRate/2))
		require.NoError(t, err)
		require.NotEmpty(t, track.F0Hz)
		require.Len(t, track.Confidence, len(track.F0Hz))
		assert.InDelta(t, 0.5, track.Duration, 1e-9)

		for i, f0 := range track.F0Hz {
			assert.InDelta(t, freq, f0, freq*0.01, "frame %d", i)
			assert.Greater(t, track.Confidence[i], 0.5, "frame %d", i)
		}
	}
}

func TestTrackSilence(t *testing.T) {
	tracker := NewTracker(DefaultParams(44100))
	track, err := tracker.Track(make([]float64, 44100/4))
	require.NoError(t, err)

	for i, f0 := range track.F0Hz {
		assert.Equal(t, 0.0, f0, "frame %d", i)
		assert.Equal(t, 0.0, track.Confidence[i], "frame %d", i)
	}
}

func TestTrackShortSignal(t *testing.T) {
	// Shorter than a full window: a single shrunken frame is still produced.
	tracker := NewTracker(DefaultParams(44100))
	track, err := tracker.Track(sineWave(440, 44100, 1024))
	require.NoError(t, err)
	assert.NotEmpty(t, track.F0Hz)
}

func TestTrackErrors(t *testing.T) {
	tracker := NewTracker(DefaultParams(44100))
	_, err := tracker.Track(nil)
	assert.ErrorIs(t, err, music.ErrEmptyInput)

	bad := NewTracker(Params{SampleRate: 0, WindowSize: 2048, HopSize: 512})
	_, err = bad.Track(sineWave(440, 44100, 4096))
	assert.Error(t, err)
}

func TestTrackFeedsTranscriber(t *testing.T) {
	const sampleRate = 44100

	tracker := NewTracker(DefaultParams(sampleRate))
	track, err := tracker.Track(sineWave(440, sampleRate, sampleRate))
	require.NoError(t, err)

	seq, err := transcribe.NewTranscriber(config.DefaultSegmentationConfig()).Transcribe(track)
	require.NoError(t, err)
	require.NotEmpty(t, seq.Notes)
	assert.Equal(t, 69, seq.Notes[0].Pitch)
}
