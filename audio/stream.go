package audio

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/golang/glog"
)

// ErrMissingSource is returned when the audio input does not exist.
var ErrMissingSource = errors.New("audio source not found")

// DecodeError reports that a source could not produce its samples.
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Source is a decoded (or decodable) audio file.
type Source interface {
	// Path is the file the source was opened from. Video writers use it to mux the
	// original audio track.
	Path() string
	// Duration is the length of the recording in seconds.
	Duration() float64
	// Samples materializes the full signal at the given sample rate.
	Samples(sampleRate int) (*Samples, error)
	// Close releases any decoder resources.
	Close() error
}

// Decoder names accepted by Open.
const (
	DecoderAuto   = "auto"
	DecoderNative = "native"
	DecoderFFmpeg = "ffmpeg"
)

// Config selects how a Source is opened.
type Config struct {
	// Decoder is one of DecoderAuto, DecoderNative or DecoderFFmpeg.
	Decoder string
	// FFmpeg and FFprobe are the binaries used by the ffmpeg decoder.
	FFmpeg  string
	FFprobe string
}

// Open opens the audio file at path. WAV and MP3 files are decoded in-process unless
// the ffmpeg decoder is requested; every other format goes through ffmpeg.
func Open(path string, cfg *Config) (Source, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	fi, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrMissingSource, path)
		}
		return nil, &DecodeError{Path: path, Err: err}
	}
	if fi.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", ErrMissingSource, path)
	}

	ext := strings.ToLower(filepath.Ext(path))
	switch cfg.Decoder {
	case DecoderFFmpeg:
		return openFFmpeg(path, cfg)
	case "", DecoderAuto, DecoderNative:
	default:
		return nil, fmt.Errorf("unknown decoder %q", cfg.Decoder)
	}

	switch ext {
	case ".wav", ".wave":
		src, err := openWav(path)
		if errors.Is(err, errUnsupportedWav) && cfg.Decoder != DecoderNative {
			glog.V(1).Infof("%v; decoding %s with ffmpeg", err, path)
			return openFFmpeg(path, cfg)
		}
		return src, err
	case ".mp3":
		return openMP3(path)
	}
	if cfg.Decoder == DecoderNative {
		return nil, &DecodeError{Path: path, Err: fmt.Errorf("no native decoder for %q files", ext)}
	}
	return openFFmpeg(path, cfg)
}
