package audio

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Samples is a block of interleaved multi-channel audio as produced by a Source.
// Values are float64 in the nominal range [-1, 1].
type Samples struct {
	Data       []float64
	Channels   int
	SampleRate int
}

// Frames returns the number of time steps held in s.
func (s *Samples) Frames() int {
	if s.Channels <= 0 {
		return 0
	}
	return len(s.Data) / s.Channels
}

// Buffer is the mono amplitude signal the waveform frames are cut from.
// It is built once per run and must not be modified afterwards.
type Buffer struct {
	samples    []float64
	sampleRate float64
}

// NewBuffer wraps mono samples recorded at sampleRate. The slice is owned by the
// returned Buffer.
func NewBuffer(samples []float64, sampleRate float64) *Buffer {
	return &Buffer{samples: samples, sampleRate: sampleRate}
}

// Samples returns the underlying mono samples. Callers must treat the result as
// read-only.
func (b *Buffer) Samples() []float64 { return b.samples }

// SampleRate is the rate (Fs) of the buffer.
func (b *Buffer) SampleRate() float64 { return b.sampleRate }

// Len is the number of samples in the buffer.
func (b *Buffer) Len() int { return len(b.samples) }

// Duration of the buffer in seconds.
func (b *Buffer) Duration() float64 {
	if b.sampleRate <= 0 {
		return 0
	}
	return float64(len(b.samples)) / b.sampleRate
}

// Peak returns the largest absolute amplitude in the buffer.
func (b *Buffer) Peak() float64 {
	return peak(b.samples)
}

// Downmix averages the channel values of every time step into a mono signal.
// A single channel input is copied through unchanged.
func Downmix(s *Samples) []float64 {
	n := s.Frames()
	mono := make([]float64, n)
	if s.Channels == 1 {
		copy(mono, s.Data[:n])
		return mono
	}
	ch := float64(s.Channels)
	for i := range mono {
		mono[i] = floats.Sum(s.Data[i*s.Channels:(i+1)*s.Channels]) / ch
	}
	return mono
}

// Normalize rescales x in place so that its peak absolute value is 1.0, but only
// when that peak exceeds 1.0. It returns the peak found before scaling and
// whether scaling took place.
func Normalize(x []float64) (float64, bool) {
	p := peak(x)
	if p <= 1.0 {
		return p, false
	}
	// divide rather than multiply by 1/p so the peak lands on exactly 1.0
	for i := range x {
		x[i] /= p
	}
	return p, true
}

func peak(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	return math.Max(floats.Max(x), -floats.Min(x))
}
