package audio

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"

	"github.com/golang/glog"
)

// The ffmpeg decoder always asks for stereo so channel averaging happens here
// rather than inside ffmpeg.
const ffmpegChannels = 2

// ffmpegSource decodes any format ffmpeg understands. The duration is probed when
// the source is opened; samples are decoded on demand at the requested rate.
type ffmpegSource struct {
	path     string
	ffmpeg   string
	duration float64
}

func openFFmpeg(path string, cfg *Config) (Source, error) {
	ffmpeg, ffprobe := cfg.FFmpeg, cfg.FFprobe
	if ffmpeg == "" {
		ffmpeg = "ffmpeg"
	}
	if ffprobe == "" {
		ffprobe = "ffprobe"
	}

	cmd := exec.Command(ffprobe, probeArgs(path)...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return nil, &DecodeError{Path: path, Err: fmt.Errorf("ffprobe: %w: %s", err, strings.TrimSpace(stderr.String()))}
	}
	d, err := parseDuration(out)
	if err != nil {
		return nil, &DecodeError{Path: path, Err: err}
	}
	glog.V(1).Infof("probed %s: %.3fs", path, d)

	return &ffmpegSource{path: path, ffmpeg: ffmpeg, duration: d}, nil
}

func (f *ffmpegSource) Path() string { return f.path }

func (f *ffmpegSource) Duration() float64 { return f.duration }

func (f *ffmpegSource) Samples(sampleRate int) (*Samples, error) {
	cmd := exec.Command(f.ffmpeg, decodeArgs(f.path, sampleRate)...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return nil, &DecodeError{Path: f.path, Err: fmt.Errorf("ffmpeg: %w: %s", err, strings.TrimSpace(stderr.String()))}
	}
	data, err := decodeF32LE(out)
	if err != nil {
		return nil, &DecodeError{Path: f.path, Err: err}
	}
	return &Samples{Data: data, Channels: ffmpegChannels, SampleRate: sampleRate}, nil
}

func (f *ffmpegSource) Close() error { return nil }

func probeArgs(path string) []string {
	return []string{
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	}
}

func decodeArgs(path string, sampleRate int) []string {
	return []string{
		"-v", "error",
		"-i", path,
		"-vn",
		"-f", "f32le",
		"-acodec", "pcm_f32le",
		"-ac", strconv.Itoa(ffmpegChannels),
		"-ar", strconv.Itoa(sampleRate),
		"pipe:1",
	}
}

func parseDuration(out []byte) (float64, error) {
	s := strings.TrimSpace(string(out))
	d, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("ffprobe duration %q: %w", s, err)
	}
	if d < 0 || math.IsNaN(d) || math.IsInf(d, 0) {
		return 0, fmt.Errorf("ffprobe duration %q out of range", s)
	}
	return d, nil
}

// decodeF32LE converts interleaved little endian float32 PCM, dropping any
// incomplete trailing frame.
func decodeF32LE(b []byte) ([]float64, error) {
	frame := 4 * ffmpegChannels
	if rem := len(b) % frame; rem != 0 {
		glog.Warningf("ffmpeg output not frame aligned, dropping %d bytes", rem)
		b = b[:len(b)-rem]
	}
	data := make([]float64, len(b)/4)
	for i := range data {
		v := math.Float32frombits(binary.LittleEndian.Uint32(b[4*i:]))
		if math.IsNaN(float64(v)) {
			return nil, fmt.Errorf("NaN sample at %d", i)
		}
		data[i] = float64(v)
	}
	return data, nil
}
