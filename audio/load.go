package audio

import (
	"fmt"

	"github.com/golang/glog"
)

// Load materializes src at sampleRate, mixes it down to mono and, if normalize is
// set, rescales the whole signal so that it lies within [-1, 1].
func Load(src Source, sampleRate int, normalize bool) (*Buffer, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("invalid sample rate %d", sampleRate)
	}
	glog.Infof("converting %s to samples at %d Hz", src.Path(), sampleRate)
	s, err := src.Samples(sampleRate)
	if err != nil {
		return nil, err
	}
	if s.Channels <= 0 {
		return nil, &DecodeError{Path: src.Path(), Err: fmt.Errorf("invalid channel count %d", s.Channels)}
	}

	mono := Downmix(s)
	if normalize {
		if p, ok := Normalize(mono); ok {
			glog.Infof("normalized audio samples (peak %.3f)", p)
		}
	} else if p := peak(mono); p > 1 {
		glog.Warningf("normalization is off and the peak is %.3f; samples outside [-1, 1] will be clipped", p)
	}
	glog.V(1).Infof("mono buffer: %d samples, %.3fs", len(mono), float64(len(mono))/float64(sampleRate))
	return NewBuffer(mono, float64(sampleRate)), nil
}
