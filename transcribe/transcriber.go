// Package transcribe converts a per-frame fundamental-frequency and
// confidence track, as produced by an external monophonic pitch tracker,
// into a discrete, rhythmically quantized melody.
package transcribe

import (
	"fmt"

	"github.com/tonearc/fuguewright/config"
	"github.com/tonearc/fuguewright/logging"
	"github.com/tonearc/fuguewright/music"
)

// PitchTrack is the melody input at the external model boundary: parallel
// f0 and confidence arrays at a fixed analysis frame rate, plus the total
// audio duration in seconds.
type PitchTrack struct {
	F0Hz       []float64 `json:"f0_hz"`
	Confidence []float64 `json:"confidence"`
	Duration   float64   `json:"duration"`
}

// Transcriber runs the full pitch-track to melody pipeline: median
// smoothing, state-dependent segmentation, a minimum-duration filter, and
// minimum-cost rhythmic quantization.
type Transcriber struct {
	cfg       config.SegmentationConfig
	smoother  *Smoother
	segmenter *Segmenter
	quantizer *Quantizer
	logger    logging.Logger
}

// NewTranscriber creates a transcriber with the given configuration.
func NewTranscriber(cfg config.SegmentationConfig) *Transcriber {
	return &Transcriber{
		cfg:       cfg,
		smoother:  NewSmoother(cfg.SmoothingFrames),
		segmenter: NewSegmenter(cfg),
		quantizer: NewQuantizer(cfg.BPM),
		logger: logging.WithFields(logging.Fields{
			"component": "transcriber",
		}),
	}
}

// Transcribe converts a pitch track into a quantized melody NoteSequence.
// Returns music.ErrEmptyInput when the track contains no frames or when no
// note survives segmentation and the minimum-duration filter.
func (t *Transcriber) Transcribe(track PitchTrack) (*music.NoteSequence, error) {
	if len(track.F0Hz) == 0 {
		return nil, fmt.Errorf("transcribe: %w", music.ErrEmptyInput)
	}

	logger := t.logger.WithFields(logging.Fields{
		"frames":   len(track.F0Hz),
		"duration": track.Duration,
	})
	logger.Debug("Starting transcription")

	smoothed := t.smoother.Smooth(track.F0Hz)

	raw, err := t.segmenter.Segment(smoothed, track.Confidence, track.Duration)
	if err != nil {
		return nil, err
	}

	filtered := t.segmenter.FilterShort(raw)
	if len(filtered) == 0 {
		logger.Warn("No notes survived segmentation", logging.Fields{
			"raw_notes": len(raw),
		})
		return nil, fmt.Errorf("transcribe: %w", music.ErrEmptyInput)
	}

	quantized := t.quantizer.Quantize(filtered)

	logger.Debug("Transcription completed", logging.Fields{
		"raw_notes":       len(raw),
		"filtered_notes":  len(filtered),
		"quantized_notes": len(quantized),
	})

	return music.NewNoteSequence(quantized, t.cfg.BPM), nil
}
