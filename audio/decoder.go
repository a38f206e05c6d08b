// Package audio decodes audio files into mono float64 PCM for the pitch
// tracker. Decoding shells out to ffmpeg, so any container or codec ffmpeg
// understands works as melody input.
package audio

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"time"

	"github.com/tonearc/fuguewright/logging"
)

// DecoderConfig holds decoder configuration.
type DecoderConfig struct {
	SampleRate  int           `json:"sample_rate"`
	MaxDuration time.Duration `json:"max_duration"` // 0 = no limit
	FFmpegPath  string        `json:"ffmpeg_path"`
	Timeout     time.Duration `json:"timeout"`
}

// DefaultDecoderConfig returns a configuration suitable for melody input:
// mono 44.1 kHz with a half-minute cap, since a fugue subject only needs the
// first sung or whistled phrase.
func DefaultDecoderConfig() DecoderConfig {
	return DecoderConfig{
		SampleRate:  44100,
		MaxDuration: 30 * time.Second,
		FFmpegPath:  "ffmpeg",
		Timeout:     30 * time.Second,
	}
}

// Decoder converts audio files to raw PCM via ffmpeg.
type Decoder struct {
	cfg    DecoderConfig
	logger logging.Logger
}

// NewDecoder creates a decoder. Zero-value config fields fall back to the
// defaults.
func NewDecoder(cfg DecoderConfig) *Decoder {
	def := DefaultDecoderConfig()
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = def.SampleRate
	}
	if cfg.FFmpegPath == "" {
		cfg.FFmpegPath = def.FFmpegPath
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	return &Decoder{
		cfg: cfg,
		logger: logging.WithFields(logging.Fields{
			"component": "audio_decoder",
		}),
	}
}

// SampleRate returns the output sample rate.
func (d *Decoder) SampleRate() int {
	return d.cfg.SampleRate
}

// DecodeFile decodes an audio file to mono float64 samples at the configured
// sample rate.
func (d *Decoder) DecodeFile(ctx context.Context, filename string) ([]float64, error) {
	args := []string{
		"-i", filename,
		"-f", "f64le", // raw float64 little-endian
		"-ac", "1",
		"-ar", strconv.Itoa(d.cfg.SampleRate),
	}
	if d.cfg.MaxDuration > 0 {
		args = append(args, "-t", fmt.Sprintf("%.2f", d.cfg.MaxDuration.Seconds()))
	}
	args = append(args, "-v", "error", "pipe:1")

	ctx, cancel := context.WithTimeout(ctx, d.cfg.Timeout)
	defer cancel()
	cmd := exec.CommandContext(ctx, d.cfg.FFmpegPath, args...)

	d.logger.Debug("Running ffmpeg", logging.Fields{
		"filename":    filename,
		"sample_rate": d.cfg.SampleRate,
	})

	output, err := cmd.Output()
	if err != nil {
		if exitError, ok := err.(*exec.ExitError); ok {
			d.logger.Error(err, "Ffmpeg decode failed", logging.Fields{
				"stderr": string(exitError.Stderr),
			})
		}
		return nil, fmt.Errorf("ffmpeg decode %s: %w", filename, err)
	}

	samples := bytesToFloat64(output)
	if len(samples) == 0 {
		return nil, fmt.Errorf("decode %s: no audio samples", filename)
	}

	d.logger.Debug("Decoded audio", logging.Fields{
		"samples":  len(samples),
		"duration": float64(len(samples)) / float64(d.cfg.SampleRate),
	})
	return samples, nil
}

// bytesToFloat64 reinterprets raw f64le bytes as samples. A trailing partial
// sample is dropped.
func bytesToFloat64(data []byte) []float64 {
	n := len(data) / 8
	samples := make([]float64, n)
	for i := 0; i < n; i++ {
		bits := binary.LittleEndian.Uint64(data[i*8:])
		samples[i] = math.Float64frombits(bits)
	}
	return samples
}
