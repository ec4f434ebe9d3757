package video

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"
	"sync"

	"github.com/golang/glog"

	"github.com/peragwin/wavevid/gfx"
)

// Writer consumes frames in presentation order.
type Writer interface {
	WriteFrame(*gfx.Frame) error
	Close() error
}

// EncodeError reports a failure of the video encoder.
type EncodeError struct {
	Op  string
	Err error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("encode: %s: %v", e.Op, e.Err)
}

func (e *EncodeError) Unwrap() error { return e.Err }

// EncoderConfig holds the ffmpeg encoding parameters.
type EncoderConfig struct {
	// FFmpeg is the ffmpeg binary, "ffmpeg" if empty.
	FFmpeg       string
	Codec        string
	Preset       string
	Threads      int
	PixelFormat  string
	AudioCodec   string
	AudioBitrate string
}

// Output describes the file written by an FFmpegWriter.
type Output struct {
	Path   string
	Width  int
	Height int
	FPS    float64
	// Audio is muxed as the soundtrack when set.
	Audio string
}

// FFmpegWriter pipes raw rgb24 frames into an ffmpeg process.
type FFmpegWriter struct {
	out    Output
	cmd    *exec.Cmd
	cancel context.CancelFunc
	stdin  io.WriteCloser
	stderr *tailBuffer
	frames int

	closeOnce sync.Once
	closeErr  error
}

// NewFFmpegWriter starts ffmpeg. The process is killed if ctx is done before Close.
func NewFFmpegWriter(ctx context.Context, out Output, enc EncoderConfig) (*FFmpegWriter, error) {
	if out.Width <= 0 || out.Height <= 0 {
		return nil, &EncodeError{Op: "start", Err: fmt.Errorf("invalid frame size %dx%d", out.Width, out.Height)}
	}
	bin := enc.FFmpeg
	if bin == "" {
		bin = "ffmpeg"
	}
	args := ffmpegArgs(out, enc)
	glog.V(1).Infof("%s %s", bin, strings.Join(args, " "))

	ctx, cancel := context.WithCancel(ctx)
	cmd := exec.CommandContext(ctx, bin, args...)
	stderr := &tailBuffer{max: 4096}
	cmd.Stderr = stderr
	stdin, err := cmd.StdinPipe()
	if err != nil {
		cancel()
		return nil, &EncodeError{Op: "start", Err: err}
	}
	if err := cmd.Start(); err != nil {
		cancel()
		return nil, &EncodeError{Op: "start", Err: err}
	}
	return &FFmpegWriter{
		out:    out,
		cmd:    cmd,
		cancel: cancel,
		stdin:  stdin,
		stderr: stderr,
	}, nil
}

// WriteFrame sends one frame to ffmpeg.
func (w *FFmpegWriter) WriteFrame(f *gfx.Frame) error {
	if f.Width != w.out.Width || f.Height != w.out.Height {
		return &EncodeError{Op: "write", Err: fmt.Errorf("frame %d is %dx%d, want %dx%d",
			w.frames, f.Width, f.Height, w.out.Width, w.out.Height)}
	}
	if _, err := w.stdin.Write(f.Pix); err != nil {
		return &EncodeError{Op: "write", Err: w.withStderr(err)}
	}
	w.frames++
	return nil
}

// Close flushes the input and waits for ffmpeg to finish the file.
func (w *FFmpegWriter) Close() error {
	w.closeOnce.Do(func() {
		defer w.cancel()
		if err := w.stdin.Close(); err != nil {
			glog.Warningf("closing ffmpeg stdin: %v", err)
		}
		if err := w.cmd.Wait(); err != nil {
			w.closeErr = &EncodeError{Op: "finish", Err: w.withStderr(err)}
			return
		}
		glog.V(1).Infof("ffmpeg wrote %d frames to %s", w.frames, w.out.Path)
	})
	return w.closeErr
}

// Abort kills ffmpeg and releases the process. The output file is left as is.
func (w *FFmpegWriter) Abort() {
	w.cancel()
	_ = w.Close()
}

func (w *FFmpegWriter) withStderr(err error) error {
	if msg := strings.TrimSpace(w.stderr.String()); msg != "" {
		return fmt.Errorf("%w: %s", err, msg)
	}
	return err
}

func ffmpegArgs(out Output, enc EncoderConfig) []string {
	args := []string{
		"-y", "-v", "error",
		"-f", "rawvideo",
		"-pix_fmt", "rgb24",
		"-s", fmt.Sprintf("%dx%d", out.Width, out.Height),
		"-r", strconv.FormatFloat(out.FPS, 'f', -1, 64),
		"-i", "pipe:0",
	}
	if out.Audio != "" {
		args = append(args, "-i", out.Audio, "-map", "0:v:0", "-map", "1:a:0")
	}
	if enc.Codec != "" {
		args = append(args, "-c:v", enc.Codec)
	}
	if enc.Preset != "" {
		args = append(args, "-preset", enc.Preset)
	}
	if enc.Threads > 0 {
		args = append(args, "-threads", strconv.Itoa(enc.Threads))
	}
	if enc.PixelFormat != "" {
		args = append(args, "-pix_fmt", enc.PixelFormat)
	}
	if out.Audio != "" {
		if enc.AudioCodec != "" {
			args = append(args, "-c:a", enc.AudioCodec)
		}
		if enc.AudioBitrate != "" {
			args = append(args, "-b:a", enc.AudioBitrate)
		}
	}
	return append(args, out.Path)
}

// tailBuffer keeps the last max bytes written to it.
type tailBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
	max int
}

func (t *tailBuffer) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	n, _ := t.buf.Write(p)
	if over := t.buf.Len() - t.max; over > 0 {
		t.buf.Next(over)
	}
	return n, nil
}

func (t *tailBuffer) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.buf.String()
}
