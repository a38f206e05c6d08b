package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/tonearc/fuguewright/config"
	"github.com/tonearc/fuguewright/fugue"
	"github.com/tonearc/fuguewright/logging"
	"github.com/tonearc/fuguewright/midifile"
	"github.com/tonearc/fuguewright/music"
	"github.com/tonearc/fuguewright/pitchtrack"
	"github.com/tonearc/fuguewright/transcribe"
)

// transcribeRequest accepts either the external pitch tracker's frame output
// or raw mono PCM for the built-in fallback tracker.
type transcribeRequest struct {
	F0Hz       []float64 `json:"f0_hz,omitempty"`
	Confidence []float64 `json:"confidence,omitempty"`
	Duration   float64   `json:"duration,omitempty"`

	Samples    []float64 `json:"samples,omitempty"`
	SampleRate int       `json:"sample_rate,omitempty"`

	Config *config.SegmentationConfig `json:"config,omitempty"`
}

type fugueRequest struct {
	Sequence *music.NoteSequence      `json:"sequence"`
	Options  *config.GenerationConfig `json:"options,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

func (s *Server) handleTranscribe(w http.ResponseWriter, r *http.Request) {
	var req transcribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}

	seg := s.seg
	if req.Config != nil {
		if err := req.Config.Validate(); err != nil {
			s.writeError(w, http.StatusBadRequest, err)
			return
		}
		seg = *req.Config
	}

	track := transcribe.PitchTrack{
		F0Hz:       req.F0Hz,
		Confidence: req.Confidence,
		Duration:   req.Duration,
	}
	if len(track.F0Hz) == 0 && len(req.Samples) > 0 {
		if req.SampleRate <= 0 {
			s.writeError(w, http.StatusBadRequest, errors.New("sample_rate required with raw samples"))
			return
		}
		tracker := pitchtrack.NewTracker(pitchtrack.DefaultParams(req.SampleRate))
		var err error
		track, err = tracker.Track(req.Samples)
		if err != nil {
			s.writeError(w, statusFor(err), err)
			return
		}
	}

	seq, err := transcribe.NewTranscriber(seg).Transcribe(track)
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, seq)
}

func (s *Server) handleFugue(w http.ResponseWriter, r *http.Request) {
	var req fugueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}
	if req.Sequence == nil {
		s.writeError(w, http.StatusBadRequest, errors.New("sequence is required"))
		return
	}

	opts := config.DefaultGenerationConfig()
	if req.Options != nil {
		opts = *req.Options
	}

	result, err := fugue.NewGenerator(opts, nil).Generate(req.Sequence)
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	var seq music.NoteSequence
	if err := json.NewDecoder(r.Body).Decode(&seq); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}

	var buf bytes.Buffer
	if err := midifile.Encode(&seq, &buf); err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}

	w.Header().Set("Content-Type", "audio/midi")
	w.Header().Set("Content-Disposition", `attachment; filename="fugue.mid"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// statusFor maps pipeline errors onto HTTP statuses: degenerate input is the
// caller's problem, everything else is ours.
func statusFor(err error) int {
	switch {
	case errors.Is(err, music.ErrEmptyInput),
		errors.Is(err, music.ErrOutOfVocalRange),
		errors.Is(err, music.ErrInvalidRange):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	if status >= http.StatusInternalServerError {
		s.logger.Error(err, "Request failed")
	} else {
		s.logger.Debug("Rejected request", logging.Fields{
			"reason": err.Error(),
		})
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
