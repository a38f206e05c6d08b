package music

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClampPitchStaysInRange(t *testing.T) {
	ranges := []VoiceRange{
		{Min: 60, Max: 81},
		{Min: 40, Max: 60},
		{Min: 47, Max: 67},
		{Min: 60, Max: 65}, // narrower than an octave
	}

	for _, r := range ranges {
		for p := -40; p <= 200; p++ {
			got := r.ClampPitch(p)
			assert.GreaterOrEqual(t, got, r.Min, "pitch %d range %+v", p, r)
			assert.LessOrEqual(t, got, r.Max, "pitch %d range %+v", p, r)
		}
	}
}

func TestClampPitchPreservesInRangePitches(t *testing.T) {
	r := VoiceRange{Min: 53, Max: 74}
	for p := r.Min; p <= r.Max; p++ {
		assert.Equal(t, p, r.ClampPitch(p))
	}
}

func TestClampPitchPreservesPitchClassForWideRanges(t *testing.T) {
	r := VoiceRange{Min: 40, Max: 60}
	for p := 0; p <= 127; p++ {
		assert.Equal(t, PitchClass(p), PitchClass(r.ClampPitch(p)), "pitch %d", p)
	}
}

func TestVoiceRangeValidate(t *testing.T) {
	assert.NoError(t, VoiceRange{Min: 40, Max: 60}.Validate())
	assert.NoError(t, VoiceRange{Min: 60, Max: 60}.Validate())

	err := VoiceRange{Min: 61, Max: 60}.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidRange)
}

func TestTransposeToRange(t *testing.T) {
	tests := []struct {
		name    string
		pitches []int
		r       VoiceRange
	}{
		{"low melody into soprano", []int{40, 42, 45, 40}, VoiceRange{Min: 60, Max: 81}},
		{"high melody into bass", []int{84, 86, 89}, VoiceRange{Min: 40, Max: 60}},
		{"wide melody", []int{30, 50, 70, 90}, VoiceRange{Min: 53, Max: 74}},
		{"single note", []int{100}, VoiceRange{Min: 47, Max: 67}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := TransposeToRange(tt.pitches, tt.r)
			require.NoError(t, err)
			require.Len(t, got, len(tt.pitches))
			for i, p := range got {
				assert.True(t, tt.r.Contains(p), "note %d: pitch %d not in %+v", i, p, tt.r)
			}
		})
	}
}

func TestTransposeToRangeIdempotent(t *testing.T) {
	// A passage already centered in its range must come back unchanged:
	// the transpose resolves to zero and folding has nothing to do.
	r := VoiceRange{Min: 60, Max: 81}
	pitches := []int{69, 71, 72, 69, 67}

	once, err := TransposeToRange(pitches, r)
	require.NoError(t, err)
	twice, err := TransposeToRange(once, r)
	require.NoError(t, err)
	assert.Equal(t, once, twice)
}

func TestTransposeToRangeInvalidRange(t *testing.T) {
	_, err := TransposeToRange([]int{60}, VoiceRange{Min: 70, Max: 60})
	assert.ErrorIs(t, err, ErrInvalidRange)
}

func TestTransposeNotesToRangeKeepsTiming(t *testing.T) {
	notes := []Note{
		{Pitch: 30, StartTime: 0, EndTime: 0.5, Velocity: 80},
		{Pitch: 34, StartTime: 0.5, EndTime: 1.0, Velocity: 90},
	}
	r := VoiceRange{Min: 60, Max: 81}

	got, err := TransposeNotesToRange(notes, r)
	require.NoError(t, err)
	require.Len(t, got, 2)
	for i := range got {
		assert.Equal(t, notes[i].StartTime, got[i].StartTime)
		assert.Equal(t, notes[i].EndTime, got[i].EndTime)
		assert.Equal(t, notes[i].Velocity, got[i].Velocity)
		assert.True(t, r.Contains(got[i].Pitch))
	}
}

func TestCheckVocalRange(t *testing.T) {
	assert.ErrorIs(t, CheckVocalRange(nil), ErrEmptyInput)

	assert.NoError(t, CheckVocalRange([]Note{{Pitch: 60}}))
	// Extreme but centered: the mean transpose brings both ends inside.
	assert.NoError(t, CheckVocalRange([]Note{{Pitch: 30}, {Pitch: 90}}))

	// Spread so wide that no transpose lands a single note in bounds.
	err := CheckVocalRange([]Note{{Pitch: 10}, {Pitch: 120}})
	assert.ErrorIs(t, err, ErrOutOfVocalRange)
}
