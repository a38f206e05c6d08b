package transcribe

import (
	"fmt"
	"math"

	"github.com/tonearc/fuguewright/config"
	"github.com/tonearc/fuguewright/music"
)

// Segmenter turns a smoothed pitch/confidence stream into discrete note
// events. It keeps at most one note open at a time and decides on every
// frame whether to extend it, split it on a pitch jump, or close it after
// sustained silence.
type Segmenter struct {
	cfg config.SegmentationConfig
}

// NewSegmenter creates a segmenter with the given configuration.
func NewSegmenter(cfg config.SegmentationConfig) *Segmenter {
	return &Segmenter{cfg: cfg}
}

// openNote tracks the note currently being extended. referenceHz is the
// frequency the note was opened at; pitch-change decisions compare against
// it rather than frame-to-frame so slow drift does not split notes.
type openNote struct {
	pitch       int
	referenceHz float64
	startTime   float64
	endTime     float64
}

// Segment converts parallel pitch and confidence tracks into ordered notes
// with raw (continuous) start and end times. A frame is active iff its
// confidence exceeds the configured threshold and its pitch is voiced.
func (s *Segmenter) Segment(pitchHz, confidence []float64, totalDuration float64) ([]music.Note, error) {
	if len(pitchHz) == 0 {
		return nil, fmt.Errorf("segment: %w", music.ErrEmptyInput)
	}
	if len(confidence) != len(pitchHz) {
		return nil, fmt.Errorf("segment: confidence track length %d does not match pitch track length %d",
			len(confidence), len(pitchHz))
	}
	if totalDuration <= 0 {
		return nil, fmt.Errorf("segment: total duration must be positive, got %v", totalDuration)
	}

	frameDuration := totalDuration / float64(len(pitchHz))
	silenceFrames := int(math.Ceil(s.cfg.SilenceMs / 1000.0 / frameDuration))
	if silenceFrames < 1 {
		silenceFrames = 1
	}

	var notes []music.Note
	var open *openNote
	silenceCount := 0

	for i := range pitchHz {
		currentTime := float64(i) * frameDuration
		hz := pitchHz[i]
		active := confidence[i] > s.cfg.ConfidenceThreshold && hz > 0

		if !active {
			silenceCount++
			if open != nil && silenceCount >= silenceFrames {
				open.endTime = currentTime - float64(silenceCount)*frameDuration
				notes = appendNote(notes, open)
				open = nil
			}
			continue
		}

		silenceCount = 0

		if open == nil {
			open = &openNote{
				pitch:       music.HzToMIDI(hz),
				referenceHz: hz,
				startTime:   currentTime,
				endTime:     currentTime + frameDuration,
			}
			continue
		}

		if music.CentsBetween(hz, open.referenceHz) > s.cfg.CentsThreshold {
			open.endTime = currentTime
			notes = appendNote(notes, open)
			open = &openNote{
				pitch:       music.HzToMIDI(hz),
				referenceHz: hz,
				startTime:   currentTime,
				endTime:     currentTime + frameDuration,
			}
			continue
		}

		open.endTime = currentTime + frameDuration
	}

	if open != nil {
		open.endTime = totalDuration
		notes = appendNote(notes, open)
	}

	return notes, nil
}

// FilterShort drops notes shorter than the configured minimum duration.
// Segmentation artifacts (pitch-split slivers, pre-onset blips) fall out
// here rather than polluting quantization.
func (s *Segmenter) FilterShort(notes []music.Note) []music.Note {
	minDuration := s.cfg.MinNoteMs / 1000.0
	kept := make([]music.Note, 0, len(notes))
	for _, n := range notes {
		if n.Duration() >= minDuration {
			kept = append(kept, n)
		}
	}
	return kept
}

func appendNote(notes []music.Note, open *openNote) []music.Note {
	if open.endTime <= open.startTime {
		return notes
	}
	return append(notes, music.Note{
		Pitch:     open.pitch,
		StartTime: open.startTime,
		EndTime:   open.endTime,
		Velocity:  music.DefaultVelocity,
		Voice:     music.VoiceSoprano,
	})
}
