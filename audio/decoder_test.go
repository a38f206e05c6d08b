package audio

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBytesToFloat64(t *testing.T) {
	want := []float64{0, 0.5, -1, math.Pi}
	data := make([]byte, len(want)*8)
	for i, v := range want {
		binary.LittleEndian.PutUint64(data[i*8:], math.Float64bits(v))
	}

	assert.Equal(t, want, bytesToFloat64(data))

	// A trailing partial sample is dropped, not misread.
	assert.Equal(t, want, bytesToFloat64(append(data, 0x12, 0x34)))
	assert.Empty(t, bytesToFloat64([]byte{1, 2, 3}))
}

func TestNewDecoderFillsDefaults(t *testing.T) {
	d := NewDecoder(DecoderConfig{})
	assert.Equal(t, 44100, d.SampleRate())
	assert.Equal(t, "ffmpeg", d.cfg.FFmpegPath)
	assert.Positive(t, d.cfg.Timeout)
}
