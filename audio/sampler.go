package audio

// Sampler cuts fixed-duration windows out of a Buffer. It holds no mutable state,
// so Window can be called from any number of goroutines with timestamps in any
// order.
type Sampler struct {
	buf            *Buffer
	windowDuration float64
	policy         Policy
}

// NewSampler returns a Sampler for buf.
func NewSampler(buf *Buffer, windowDuration float64, policy Policy) *Sampler {
	return &Sampler{
		buf:            buf,
		windowDuration: windowDuration,
		policy:         policy,
	}
}

// Window returns the samples to visualize at time t (seconds).
func (s *Sampler) Window(t float64) []float64 {
	return WindowAt(t, s.buf.samples, s.buf.sampleRate, s.windowDuration, s.policy)
}

// Policy reports the addressing policy of s.
func (s *Sampler) Policy() Policy { return s.policy }

// WindowSamples is the nominal window length in samples.
func (s *Sampler) WindowSamples() int {
	return WindowSamples(s.windowDuration, s.buf.sampleRate)
}
