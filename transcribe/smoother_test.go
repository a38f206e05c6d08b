package transcribe

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSmootherRemovesOctaveGlitch(t *testing.T) {
	s := NewSmoother(5)
	got := s.Smooth([]float64{220, 220, 880, 220, 220})
	assert.Equal(t, []float64{220, 220, 220, 220, 220}, got)
}

func TestSmootherIgnoresUnvoicedFrames(t *testing.T) {
	s := NewSmoother(5)

	// Zeros never enter the window, so an isolated voiced frame survives.
	got := s.Smooth([]float64{0, 0, 440, 0, 0})
	assert.Equal(t, []float64{440, 440, 440, 440, 440}, got)

	got = s.Smooth([]float64{0, 0, 0})
	assert.Equal(t, []float64{0, 0, 0}, got)
}

func TestSmootherWindowClipsAtBoundaries(t *testing.T) {
	s := NewSmoother(3)
	got := s.Smooth([]float64{100, 200, 300})
	// i=0 sees {100,200}, i=1 sees all three, i=2 sees {200,300}.
	assert.Equal(t, []float64{150, 200, 250}, got)
}

func TestSmootherForcesOddWindow(t *testing.T) {
	assert.Equal(t, 5, NewSmoother(4).windowSize)
	assert.Equal(t, 1, NewSmoother(0).windowSize)
}

func TestSmootherEmptyInput(t *testing.T) {
	assert.Empty(t, NewSmoother(5).Smooth(nil))
}
