package transcribe

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tonearc/fuguewright/music"
)

func TestNearestRhythmicValue(t *testing.T) {
	tests := []struct {
		beats float64
		want  float64
	}{
		{1.0, 1.0},
		{0.9, 1.0},
		{1.3, 1.5},
		{0.05, 0.125},
		{10.0, 4.0},
		// Equidistant durations resolve to the earlier (longer) entry.
		{1.25, 1.5},
		{3.5, 4.0},
		{2.5, 3.0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, NearestRhythmicValue(tt.beats), "beats=%v", tt.beats)
	}
}

func TestNearestRhythmicValueIsClosest(t *testing.T) {
	// No table entry may ever be strictly closer than the chosen one.
	for beats := 0.01; beats < 5.0; beats += 0.013 {
		got := NearestRhythmicValue(beats)
		for _, v := range RhythmicValues {
			assert.LessOrEqual(t,
				math.Abs(beats-got), math.Abs(beats-v)+1e-12,
				"beats=%v chose %v but %v is closer", beats, got, v)
		}
	}
}

func TestQuantizeSnapsDurationAndOnset(t *testing.T) {
	q := NewQuantizer(120) // beat = 0.5s

	notes := []music.Note{
		// 0.26 beats in, 0.9 beats long.
		{Pitch: 60, StartTime: 0.13, EndTime: 0.58, Velocity: 80},
	}

	got := q.Quantize(notes)
	require.Len(t, got, 1)

	// Onset snaps to the nearest sixteenth (0.25 beats), duration to a
	// quarter note.
	assert.InDelta(t, 0.125, got[0].StartTime, 1e-9)
	assert.InDelta(t, 0.625, got[0].EndTime, 1e-9)
	assert.Equal(t, 60, got[0].Pitch)
	assert.Equal(t, 80, got[0].Velocity)
}

func TestQuantizeClampsNegativeStart(t *testing.T) {
	q := NewQuantizer(120)
	got := q.Quantize([]music.Note{{Pitch: 60, StartTime: -0.2, EndTime: 0.3}})
	require.Len(t, got, 1)
	assert.Equal(t, 0.0, got[0].StartTime)
	assert.InDelta(t, 0.5, got[0].EndTime, 1e-9)
}

func TestQuantizeDurationsLandOnTable(t *testing.T) {
	q := NewQuantizer(90)

	var notes []music.Note
	for d := 0.05; d < 3.0; d += 0.07 {
		notes = append(notes, music.Note{Pitch: 60, StartTime: 1.0, EndTime: 1.0 + d})
	}

	for _, n := range q.Quantize(notes) {
		beats := n.Duration() / q.BeatDuration()
		found := false
		for _, v := range RhythmicValues {
			if math.Abs(beats-v) < 1e-9 {
				found = true
				break
			}
		}
		assert.True(t, found, "duration %v beats is not a rhythmic value", beats)
	}
}

func TestQuantizeDoesNotMutateInput(t *testing.T) {
	q := NewQuantizer(90)
	notes := []music.Note{{Pitch: 60, StartTime: 0.11, EndTime: 0.7}}
	_ = q.Quantize(notes)
	assert.Equal(t, 0.11, notes[0].StartTime)
	assert.Equal(t, 0.7, notes[0].EndTime)
}
