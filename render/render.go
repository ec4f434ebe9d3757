// Package render wires decoding, windowing, drawing and encoding into a run.
package render

import (
	"context"
	"fmt"
	"image/png"
	"io"
	"os"

	"github.com/golang/glog"

	"github.com/peragwin/wavevid/audio"
	"github.com/peragwin/wavevid/config"
	"github.com/peragwin/wavevid/gfx"
	"github.com/peragwin/wavevid/gfx/waveform"
	"github.com/peragwin/wavevid/video"
)

// Run renders the waveform video of cfg.Audio.Path into cfg.Video.Output.
func Run(ctx context.Context, cfg *config.Config) error {
	src, buf, err := Open(cfg)
	if err != nil {
		return err
	}
	defer src.Close()

	clip, err := NewClip(src, buf, cfg)
	if err != nil {
		return err
	}
	glog.Infof("writing %s", cfg.Video.Output)
	if err := video.WriteFile(ctx, cfg.Output(), cfg.EncoderConfig(), clip, cfg.Encoder.Workers); err != nil {
		return err
	}
	glog.Infof("wrote %s", cfg.Video.Output)
	return nil
}

// Open opens the configured audio file and loads it as a mono buffer. The caller
// closes the returned source.
func Open(cfg *config.Config) (audio.Source, *audio.Buffer, error) {
	glog.Infof("loading audio file %s", cfg.Audio.Path)
	src, err := audio.Open(cfg.Audio.Path, cfg.Decoder())
	if err != nil {
		return nil, nil, err
	}
	buf, err := audio.Load(src, cfg.Audio.SampleRate, cfg.Audio.Normalize)
	if err != nil {
		src.Close()
		return nil, nil, err
	}
	return src, buf, nil
}

// NewClip builds a clip as long as src whose frames show the window of buf at each
// timestamp. Every rendering goroutine gets its own Renderer. src is attached as
// the soundtrack.
func NewClip(src audio.Source, buf *audio.Buffer, cfg *config.Config) (*video.Clip, error) {
	rc, err := cfg.Renderer()
	if err != nil {
		return nil, err
	}
	// fail before any frame is requested
	if _, err := waveform.NewRenderer(rc); err != nil {
		return nil, err
	}
	sampler := audio.NewSampler(buf, cfg.Waveform.Window, cfg.Waveform.Policy)
	glog.V(1).Infof("%s window of %d samples, %s style", sampler.Policy(), sampler.WindowSamples(), rc.Style)

	newFrame := func() (video.FrameFunc, error) {
		r, err := waveform.NewRenderer(rc)
		if err != nil {
			return nil, err
		}
		return r.FrameFunc(sampler), nil
	}
	return video.NewClip(newFrame, src.Duration()).WithAudio(src), nil
}

// Still renders the single frame shown at time t.
func Still(cfg *config.Config, t float64) (*gfx.Frame, error) {
	src, buf, err := Open(cfg)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	if d := src.Duration(); t < 0 || t > d {
		glog.Warningf("t=%.3fs is outside the recording (0 to %.3fs); the window is clamped", t, d)
	}
	rc, err := cfg.Renderer()
	if err != nil {
		return nil, err
	}
	r, err := waveform.NewRenderer(rc)
	if err != nil {
		return nil, err
	}
	f, err := r.FrameFunc(audio.NewSampler(buf, cfg.Waveform.Window, cfg.Waveform.Policy))(t)
	if err != nil {
		return nil, &video.RenderError{T: t, Err: err}
	}
	return f, nil
}

// EncodePNG writes f to w as a PNG image.
func EncodePNG(w io.Writer, f *gfx.Frame) error {
	return png.Encode(w, f.RGBA())
}

// WritePNG writes f to the file at path.
func WritePNG(path string, f *gfx.Frame) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := EncodePNG(out, f); err != nil {
		out.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return out.Close()
}
