// Package config holds the shared defaults for every independently callable
// pipeline stage, so thresholds and tempo are declared once instead of being
// re-declared per component.
package config

import "fmt"

// SegmentationConfig configures the pitch-track to melody stages: smoothing,
// note segmentation, and rhythmic quantization.
type SegmentationConfig struct {
	// CentsThreshold is the pitch jump, in cents, that splits an open note.
	CentsThreshold float64 `json:"cents_threshold"`

	// BPM is the assumed tempo for quantization and beat indexing.
	BPM float64 `json:"bpm"`

	// SmoothingFrames is the median-filter window size (odd).
	SmoothingFrames int `json:"smoothing_frames"`

	// SilenceMs is how long the track must stay inactive before an open
	// note is closed.
	SilenceMs float64 `json:"silence_ms"`

	// MinNoteMs drops segmented notes shorter than this.
	MinNoteMs float64 `json:"min_note_ms"`

	// ConfidenceThreshold marks a frame as voiced. Frames at or below it
	// count as silence regardless of the pitch estimate.
	ConfidenceThreshold float64 `json:"confidence_threshold"`
}

// GenerationConfig tunes the stochastic choices of fugue generation. None of
// its fields affect correctness, only density and character of the output.
type GenerationConfig struct {
	// Density in [0,100] scales episode repetitions and active voices.
	Density int `json:"density"`

	// Complexity in [0,100] scales free-counterpoint inclusion probability
	// and tightens the stretto.
	Complexity int `json:"complexity"`

	// CodaLengthBeats is the requested coda length; the cadence lands on
	// the next full 8-beat measure past it.
	CodaLengthBeats int `json:"coda_length_beats"`
}

// DefaultSegmentationConfig returns the segmentation defaults shared across
// the library, the server, and the CLI.
func DefaultSegmentationConfig() SegmentationConfig {
	return SegmentationConfig{
		CentsThreshold:      80,
		BPM:                 90,
		SmoothingFrames:     5,
		SilenceMs:           150,
		MinNoteMs:           80,
		ConfidenceThreshold: 0.5,
	}
}

// DefaultGenerationConfig returns the fugue generation defaults.
func DefaultGenerationConfig() GenerationConfig {
	return GenerationConfig{
		Density:         50,
		Complexity:      70,
		CodaLengthBeats: 8,
	}
}

// Validate rejects configurations that would make segmentation degenerate,
// such as a zero tempo or a confidence threshold that silences every frame.
// Callers accepting external overrides must validate before use.
func (c SegmentationConfig) Validate() error {
	if c.BPM <= 0 {
		return fmt.Errorf("segmentation config: bpm must be positive, got %v", c.BPM)
	}
	if c.CentsThreshold <= 0 {
		return fmt.Errorf("segmentation config: cents_threshold must be positive, got %v", c.CentsThreshold)
	}
	if c.SmoothingFrames < 1 {
		return fmt.Errorf("segmentation config: smoothing_frames must be at least 1, got %d", c.SmoothingFrames)
	}
	if c.SilenceMs <= 0 {
		return fmt.Errorf("segmentation config: silence_ms must be positive, got %v", c.SilenceMs)
	}
	if c.MinNoteMs < 0 {
		return fmt.Errorf("segmentation config: min_note_ms must not be negative, got %v", c.MinNoteMs)
	}
	if c.ConfidenceThreshold < 0 || c.ConfidenceThreshold >= 1 {
		return fmt.Errorf("segmentation config: confidence_threshold must be in [0,1), got %v", c.ConfidenceThreshold)
	}
	return nil
}

// BeatDuration returns the length of one beat in seconds.
func (c SegmentationConfig) BeatDuration() float64 {
	return 60.0 / c.BPM
}
