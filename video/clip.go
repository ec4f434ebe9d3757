// Package video turns a frame function into an encoded video file.
package video

import (
	"math"

	"github.com/peragwin/wavevid/audio"
	"github.com/peragwin/wavevid/gfx"
)

// FrameFunc renders the frame shown at time t (seconds). It may be called with
// any t in [0, duration], in any order and more than once.
type FrameFunc func(t float64) (*gfx.Frame, error)

// Clip is a video of a fixed duration whose frames are produced on demand.
type Clip struct {
	duration float64
	newFrame func() (FrameFunc, error)
	audio    audio.Source
}

// NewClip creates a clip. newFrame is called once per rendering goroutine so that
// every goroutine gets a frame function with its own drawing state.
func NewClip(newFrame func() (FrameFunc, error), duration float64) *Clip {
	return &Clip{duration: duration, newFrame: newFrame}
}

// WithAudio returns a copy of c that carries src as its soundtrack.
func (c *Clip) WithAudio(src audio.Source) *Clip {
	cp := *c
	cp.audio = src
	return &cp
}

// Duration in seconds.
func (c *Clip) Duration() float64 { return c.duration }

// Audio returns the attached soundtrack, or nil.
func (c *Clip) Audio() audio.Source { return c.audio }

// FrameTimes returns the timestamps at which a clip of the given duration is
// sampled at fps: floor(duration*fps)+1 evenly spaced values i/fps, starting at 0.
func FrameTimes(duration, fps float64) []float64 {
	if duration < 0 || fps <= 0 {
		return nil
	}
	n := int(math.Floor(duration*fps)) + 1
	times := make([]float64, n)
	for i := range times {
		times[i] = float64(i) / fps
	}
	return times
}
