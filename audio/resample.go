package audio

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/interp"
)

// Resample converts s to sampleRate by piecewise-linear interpolation of every
// channel. s is returned as is when the rates already match.
func Resample(s *Samples, sampleRate int) (*Samples, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("invalid sample rate %d", sampleRate)
	}
	if s.SampleRate == sampleRate {
		return s, nil
	}
	if s.SampleRate <= 0 {
		return nil, fmt.Errorf("invalid source sample rate %d", s.SampleRate)
	}

	n := s.Frames()
	ch := s.Channels
	m := int(math.Round(float64(n) * float64(sampleRate) / float64(s.SampleRate)))
	out := &Samples{
		Data:       make([]float64, m*ch),
		Channels:   ch,
		SampleRate: sampleRate,
	}
	if n == 0 || m == 0 {
		return out, nil
	}
	if n == 1 {
		for j := 0; j < m; j++ {
			copy(out.Data[j*ch:(j+1)*ch], s.Data[:ch])
		}
		return out, nil
	}

	// source sample positions in seconds
	xs := make([]float64, n)
	for i := range xs {
		xs[i] = float64(i) / float64(s.SampleRate)
	}
	last := xs[n-1]

	ys := make([]float64, n)
	for c := 0; c < ch; c++ {
		for i := range ys {
			ys[i] = s.Data[i*ch+c]
		}
		var pl interp.PiecewiseLinear
		if err := pl.Fit(xs, ys); err != nil {
			return nil, fmt.Errorf("resample channel %d: %w", c, err)
		}
		for j := 0; j < m; j++ {
			x := math.Min(float64(j)/float64(sampleRate), last)
			out.Data[j*ch+c] = pl.Predict(x)
		}
	}
	return out, nil
}

// pcmSource is a Source whose signal was fully decoded when it was opened.
type pcmSource struct {
	path    string
	samples *Samples
}

func (p *pcmSource) Path() string { return p.path }

func (p *pcmSource) Duration() float64 {
	if p.samples.SampleRate <= 0 {
		return 0
	}
	return float64(p.samples.Frames()) / float64(p.samples.SampleRate)
}

func (p *pcmSource) Samples(sampleRate int) (*Samples, error) {
	s, err := Resample(p.samples, sampleRate)
	if err != nil {
		return nil, &DecodeError{Path: p.path, Err: err}
	}
	return s, nil
}

func (p *pcmSource) Close() error {
	p.samples = &Samples{}
	return nil
}
