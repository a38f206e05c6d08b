package music

// MIDI pitch bounds shared by every stage that touches pitches.
const (
	MinPitch = 0
	MaxPitch = 127

	// Supported vocal bounds for melody preprocessing. Anything that cannot
	// be octave-shifted into this band is rejected rather than clamped into
	// nonsense.
	MinVocalPitch = 24 // C1
	MaxVocalPitch = 96 // C7

	DefaultVelocity = 80
)

// Note is a single timed note. Times are in seconds; Voice selects one of
// the four vocal parts (0=soprano, 1=alto, 2=tenor, 3=bass) and doubles as
// the instrument index in the interchange format.
type Note struct {
	Pitch     int     `json:"pitch"`
	StartTime float64 `json:"startTime"`
	EndTime   float64 `json:"endTime"`
	Velocity  int     `json:"velocity"`
	Voice     int     `json:"instrument"`
}

// Duration returns the note length in seconds.
func (n Note) Duration() float64 {
	return n.EndTime - n.StartTime
}

// Tempo is a tempo mark in quarter notes per minute.
type Tempo struct {
	QPM  float64 `json:"qpm"`
	Time float64 `json:"time"`
}

// TimeSignature is a meter mark. The pipeline only ever emits 4/4.
type TimeSignature struct {
	Numerator   int     `json:"numerator"`
	Denominator int     `json:"denominator"`
	Time        float64 `json:"time"`
}

// NoteSequence is the interchange format consumed and produced at every
// pipeline boundary: an ordered collection of timed notes plus tempo and
// time-signature metadata.
type NoteSequence struct {
	Notes          []Note          `json:"notes"`
	Tempos         []Tempo         `json:"tempos"`
	TimeSignatures []TimeSignature `json:"timeSignatures"`
	TotalTime      float64         `json:"totalTime"`
}

// NewNoteSequence builds a sequence around the given notes with the standard
// single-tempo, 4/4 metadata. TotalTime covers the last note end.
func NewNoteSequence(notes []Note, qpm float64) *NoteSequence {
	seq := &NoteSequence{
		Notes:          notes,
		Tempos:         []Tempo{{QPM: qpm, Time: 0}},
		TimeSignatures: []TimeSignature{{Numerator: 4, Denominator: 4, Time: 0}},
	}
	for _, n := range notes {
		if n.EndTime > seq.TotalTime {
			seq.TotalTime = n.EndTime
		}
	}
	return seq
}

// QPM returns the sequence tempo, falling back to the given default when the
// sequence carries no tempo mark.
func (s *NoteSequence) QPM(fallback float64) float64 {
	if len(s.Tempos) == 0 || s.Tempos[0].QPM <= 0 {
		return fallback
	}
	return s.Tempos[0].QPM
}
