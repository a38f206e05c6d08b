// fuguewright turns a whistled or sung melody's pitch track into a
// four-voice fugue. It can run as an HTTP service or as a one-shot CLI over
// JSON files.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tonearc/fuguewright/audio"
	"github.com/tonearc/fuguewright/config"
	"github.com/tonearc/fuguewright/fugue"
	"github.com/tonearc/fuguewright/logging"
	"github.com/tonearc/fuguewright/midifile"
	"github.com/tonearc/fuguewright/music"
	"github.com/tonearc/fuguewright/pitchtrack"
	"github.com/tonearc/fuguewright/server"
	"github.com/tonearc/fuguewright/transcribe"
)

func main() {
	root := &cobra.Command{
		Use:           "fuguewright",
		Short:         "Melody transcription and fugue generation",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(serveCmd(), transcribeCmd(), generateCmd())

	if err := root.Execute(); err != nil {
		logging.Error(err, "Command failed")
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the transcription and generation HTTP service",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := server.LoadConfig()
			if err != nil {
				return err
			}
			return server.New(cfg).Run()
		},
	}
}

func transcribeCmd() *cobra.Command {
	var output string
	var bpm float64

	cmd := &cobra.Command{
		Use:   "transcribe <pitch-track.json|audio-file>",
		Short: "Convert a pitch track (f0_hz, confidence, duration) or audio file into a quantized melody",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			track, err := loadPitchTrack(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			cfg := config.DefaultSegmentationConfig()
			if bpm > 0 {
				cfg.BPM = bpm
			}

			seq, err := transcribe.NewTranscriber(cfg).Transcribe(track)
			if err != nil {
				return err
			}
			return writeSequence(seq, output)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (.json or .mid, default stdout JSON)")
	cmd.Flags().Float64Var(&bpm, "bpm", 0, "tempo override in quarter notes per minute")
	return cmd
}

func generateCmd() *cobra.Command {
	var output string
	var density, complexity, codaLength int
	var seed int64

	cmd := &cobra.Command{
		Use:   "generate <melody.json>",
		Short: "Expand a quantized melody NoteSequence into a four-voice fugue",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var melody music.NoteSequence
			if err := readJSONFile(args[0], &melody); err != nil {
				return err
			}

			opts := config.GenerationConfig{
				Density:         density,
				Complexity:      complexity,
				CodaLengthBeats: codaLength,
			}

			var rng fugue.RandSource
			if seed != 0 {
				rng = fugue.NewSeededRand(seed)
			}

			result, err := fugue.NewGenerator(opts, rng).Generate(&melody)
			if err != nil {
				return err
			}
			return writeSequence(result, output)
		},
	}
	defaults := config.DefaultGenerationConfig()
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (.json or .mid, default stdout JSON)")
	cmd.Flags().IntVar(&density, "density", defaults.Density, "episode density 0-100")
	cmd.Flags().IntVar(&complexity, "complexity", defaults.Complexity, "counterpoint complexity 0-100")
	cmd.Flags().IntVar(&codaLength, "coda-length", defaults.CodaLengthBeats, "coda length in beats")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed for reproducible output (0 = time-seeded)")
	return cmd
}

// loadPitchTrack reads a pitch-track JSON file, or decodes any other file as
// audio and runs the built-in tracker over it.
func loadPitchTrack(ctx context.Context, path string) (transcribe.PitchTrack, error) {
	var track transcribe.PitchTrack
	if strings.EqualFold(filepath.Ext(path), ".json") {
		err := readJSONFile(path, &track)
		return track, err
	}

	decoder := audio.NewDecoder(audio.DefaultDecoderConfig())
	samples, err := decoder.DecodeFile(ctx, path)
	if err != nil {
		return track, err
	}
	tracker := pitchtrack.NewTracker(pitchtrack.DefaultParams(decoder.SampleRate()))
	return tracker.Track(samples)
}

func readJSONFile(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

// writeSequence writes a NoteSequence as JSON, or as a Standard MIDI File
// when the output path ends in .mid.
func writeSequence(seq *music.NoteSequence, output string) error {
	if output == "" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(seq)
	}

	if strings.EqualFold(filepath.Ext(output), ".mid") {
		f, err := os.Create(output)
		if err != nil {
			return err
		}
		defer f.Close()
		return midifile.Encode(seq, f)
	}

	data, err := json.MarshalIndent(seq, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(output, append(data, '\n'), 0o644)
}
