// Package midifile serializes a NoteSequence to a Standard MIDI File
// (format 0, single track) and reads one back. Export puts the tempo meta
// event first and sorts note events by tick, note-off before note-on at
// equal ticks, so re-reading recovers the original notes within one tick.
package midifile

import (
	"fmt"
	"io"
	"math"
	"sort"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/tonearc/fuguewright/music"
)

// TicksPerQuarter is the export resolution.
const TicksPerQuarter = 480

const defaultQPM = 120.0

type event struct {
	tick uint32
	off  bool
	msg  midi.Message
}

// Encode writes the sequence as a format-0 SMF. Each voice maps to its own
// MIDI channel so downstream players can split the parts.
func Encode(seq *music.NoteSequence, w io.Writer) error {
	if seq == nil || len(seq.Notes) == 0 {
		return fmt.Errorf("midi encode: %w", music.ErrEmptyInput)
	}

	qpm := seq.QPM(defaultQPM)
	secondsPerTick := 60.0 / qpm / TicksPerQuarter

	events := make([]event, 0, 2*len(seq.Notes))
	for _, n := range seq.Notes {
		if n.Pitch < music.MinPitch || n.Pitch > music.MaxPitch {
			return fmt.Errorf("midi encode: pitch %d outside MIDI range", n.Pitch)
		}
		ch := uint8(n.Voice % 16)
		key := uint8(n.Pitch)
		vel := uint8(n.Velocity)

		onTick := uint32(math.Round(n.StartTime / secondsPerTick))
		offTick := uint32(math.Round(n.EndTime / secondsPerTick))
		if offTick <= onTick {
			offTick = onTick + 1
		}
		events = append(events,
			event{tick: onTick, msg: midi.NoteOn(ch, key, vel)},
			event{tick: offTick, off: true, msg: midi.NoteOff(ch, key)},
		)
	}

	sort.SliceStable(events, func(i, j int) bool {
		if events[i].tick != events[j].tick {
			return events[i].tick < events[j].tick
		}
		return events[i].off && !events[j].off
	})

	s := smf.New()
	s.TimeFormat = smf.MetricTicks(TicksPerQuarter)

	var tr smf.Track
	tr.Add(0, smf.MetaTempo(qpm))
	tr.Add(0, smf.MetaMeter(4, 4))

	lastTick := uint32(0)
	for _, ev := range events {
		tr.Add(ev.tick-lastTick, ev.msg)
		lastTick = ev.tick
	}
	tr.Close(0)

	if err := s.Add(tr); err != nil {
		return fmt.Errorf("midi encode: %w", err)
	}
	if _, err := s.WriteTo(w); err != nil {
		return fmt.Errorf("midi encode: %w", err)
	}
	return nil
}

// Decode reads a format-0 SMF produced by Encode back into a NoteSequence.
// Note-on events with velocity zero count as note-off, per the MIDI spec.
func Decode(r io.Reader) (*music.NoteSequence, error) {
	s, err := smf.ReadFrom(r)
	if err != nil {
		return nil, fmt.Errorf("midi decode: %w", err)
	}
	if len(s.Tracks) == 0 {
		return nil, fmt.Errorf("midi decode: %w", music.ErrEmptyInput)
	}

	resolution := float64(TicksPerQuarter)
	if metric, ok := s.TimeFormat.(smf.MetricTicks); ok {
		resolution = float64(metric.Resolution())
	}

	qpm := defaultQPM
	var notes []music.Note

	type openKey struct {
		channel uint8
		key     uint8
	}
	type openNote struct {
		tick     uint32
		velocity uint8
	}
	open := make(map[openKey]openNote)

	var tick uint32
	secondsAt := func(t uint32) float64 {
		return float64(t) / resolution * 60.0 / qpm
	}

	for _, ev := range s.Tracks[0] {
		tick += ev.Delta
		msg := ev.Message

		var bpm float64
		if msg.GetMetaTempo(&bpm) && bpm > 0 {
			qpm = bpm
			continue
		}

		var ch, key, vel uint8
		if msg.GetNoteOn(&ch, &key, &vel) && vel > 0 {
			open[openKey{ch, key}] = openNote{tick: tick, velocity: vel}
			continue
		}
		if msg.GetNoteOff(&ch, &key, &vel) || (msg.GetNoteOn(&ch, &key, &vel) && vel == 0) {
			k := openKey{ch, key}
			on, ok := open[k]
			if !ok {
				continue
			}
			delete(open, k)
			notes = append(notes, music.Note{
				Pitch:     int(key),
				StartTime: secondsAt(on.tick),
				EndTime:   secondsAt(tick),
				Velocity:  int(on.velocity),
				Voice:     int(ch),
			})
		}
	}

	if len(notes) == 0 {
		return nil, fmt.Errorf("midi decode: %w", music.ErrEmptyInput)
	}

	sort.SliceStable(notes, func(i, j int) bool {
		return notes[i].StartTime < notes[j].StartTime
	})
	return music.NewNoteSequence(notes, qpm), nil
}
