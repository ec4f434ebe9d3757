package video

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang/glog"
	"golang.org/x/sync/errgroup"

	"github.com/peragwin/wavevid/gfx"
)

// RenderError reports that the frame at T could not be rendered. It is fatal to
// the whole video: frames are never skipped or substituted.
type RenderError struct {
	Index int
	T     float64
	Err   error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render frame %d (t=%.4fs): %v", e.Index, e.T, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

// WriteClip renders clip at fps and writes every frame to w in order. With more
// than one worker, frames are rendered concurrently in batches of workers frames,
// each worker using its own FrameFunc. w is not closed.
func WriteClip(ctx context.Context, w Writer, clip *Clip, fps float64, workers int) error {
	if fps <= 0 {
		return fmt.Errorf("invalid frame rate %v", fps)
	}
	if clip.newFrame == nil {
		return errors.New("clip has no frame function")
	}
	if workers < 1 {
		workers = 1
	}
	times := FrameTimes(clip.duration, fps)
	if workers > len(times) {
		workers = len(times)
	}
	glog.Infof("rendering %d frames (%.2fs at %g fps, %d workers)", len(times), clip.duration, fps, workers)

	fns := make([]FrameFunc, workers)
	for i := range fns {
		fn, err := clip.newFrame()
		if err != nil {
			return fmt.Errorf("creating frame function: %w", err)
		}
		fns[i] = fn
	}

	p := newProgress(len(times))
	frames := make([]*gfx.Frame, workers)
	for base := 0; base < len(times); base += workers {
		if err := ctx.Err(); err != nil {
			return err
		}
		end := base + workers
		if end > len(times) {
			end = len(times)
		}
		batch := times[base:end]

		if len(batch) == 1 {
			f, err := renderFrame(fns[0], base, batch[0])
			if err != nil {
				return err
			}
			frames[0] = f
		} else {
			g, gctx := errgroup.WithContext(ctx)
			for j, t := range batch {
				j, t := j, t
				g.Go(func() error {
					if err := gctx.Err(); err != nil {
						return err
					}
					f, err := renderFrame(fns[j], base+j, t)
					if err != nil {
						return err
					}
					frames[j] = f
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}
		}

		for j := range batch {
			if err := w.WriteFrame(frames[j]); err != nil {
				var ee *EncodeError
				if !errors.As(err, &ee) {
					err = &EncodeError{Op: "write", Err: err}
				}
				return err
			}
			frames[j] = nil
			p.done(base + j)
		}
	}
	return nil
}

// renderFrame calls fn, converting errors and panics into a RenderError.
func renderFrame(fn FrameFunc, i int, t float64) (f *gfx.Frame, err error) {
	defer func() {
		if r := recover(); r != nil {
			f, err = nil, &RenderError{Index: i, T: t, Err: fmt.Errorf("panic: %v", r)}
		}
	}()
	f, err = fn(t)
	if err != nil {
		return nil, &RenderError{Index: i, T: t, Err: err}
	}
	if f == nil {
		return nil, &RenderError{Index: i, T: t, Err: errors.New("nil frame")}
	}
	glog.V(2).Infof("rendered frame %d at t=%.4f", i, t)
	return f, nil
}

// WriteFile encodes clip into out.Path with ffmpeg, muxing the clip's audio when
// one is attached. The ffmpeg process is released on every return path; a
// partially written file is left behind on failure.
func WriteFile(ctx context.Context, out Output, enc EncoderConfig, clip *Clip, workers int) error {
	if src := clip.Audio(); src != nil {
		out.Audio = src.Path()
	}
	w, err := NewFFmpegWriter(ctx, out, enc)
	if err != nil {
		return err
	}
	if err := WriteClip(ctx, w, clip, out.FPS, workers); err != nil {
		w.Abort()
		return err
	}
	return w.Close()
}

// progress logs every 10% of the frames.
type progress struct {
	total int
	next  int
}

func newProgress(total int) *progress {
	return &progress{total: total, next: 1}
}

func (p *progress) done(i int) {
	if p.total == 0 {
		return
	}
	pct := 100 * (i + 1) / p.total
	if pct >= 10*p.next {
		glog.Infof("rendered %d/%d frames (%d%%)", i+1, p.total, pct)
		p.next = pct/10 + 1
	}
}
