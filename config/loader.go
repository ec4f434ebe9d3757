package config

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/peragwin/wavevid/audio"
	"github.com/peragwin/wavevid/gfx"
	"github.com/peragwin/wavevid/gfx/waveform"
)

// Load reads the YAML file at path over the named preset and validates the result.
func Load(path, preset string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f, preset)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes YAML from r over the named preset and validates the
// result. Keys missing from the document keep their preset values; unknown keys
// are an error.
func LoadFromReader(r io.Reader, preset string) (*Config, error) {
	cfg, err := Preset(preset)
	if err != nil {
		return nil, err
	}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Marshal encodes cfg as YAML.
func Marshal(cfg *Config) ([]byte, error) {
	return yaml.Marshal(cfg)
}

// Validate checks that cfg contains a coherent set of values.
// It returns a joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	// Audio
	if cfg.Audio.SampleRate <= 0 {
		errs = append(errs, fmt.Errorf("audio.sample_rate %d must be positive", cfg.Audio.SampleRate))
	}
	switch cfg.Audio.Decoder {
	case "", audio.DecoderAuto, audio.DecoderNative, audio.DecoderFFmpeg:
	default:
		errs = append(errs, fmt.Errorf("audio.decoder %q is invalid; valid values: auto, native, ffmpeg", cfg.Audio.Decoder))
	}

	// Waveform
	if !(cfg.Waveform.Window > 0) || math.IsInf(cfg.Waveform.Window, 0) {
		errs = append(errs, fmt.Errorf("waveform.window %v must be a positive number of seconds", cfg.Waveform.Window))
	} else if cfg.Audio.SampleRate > 0 &&
		audio.WindowSamples(cfg.Waveform.Window, float64(cfg.Audio.SampleRate)) == 0 {
		errs = append(errs, fmt.Errorf("waveform.window %v is shorter than one sample at %d Hz",
			cfg.Waveform.Window, cfg.Audio.SampleRate))
	}
	if cfg.Waveform.Policy != audio.Forward && cfg.Waveform.Policy != audio.Centered {
		errs = append(errs, fmt.Errorf("waveform.policy %v is invalid; valid values: forward, centered", cfg.Waveform.Policy))
	}
	if cfg.Waveform.Style != waveform.Fill && cfg.Waveform.Style != waveform.Line {
		errs = append(errs, fmt.Errorf("waveform.style %v is invalid; valid values: fill, line", cfg.Waveform.Style))
	}
	if cfg.Waveform.Style == waveform.Line && !(cfg.Waveform.LineWidth > 0) {
		errs = append(errs, fmt.Errorf("waveform.line_width %v must be positive for the line style", cfg.Waveform.LineWidth))
	}
	if _, err := gfx.ParseColor(cfg.Waveform.Color); err != nil {
		errs = append(errs, fmt.Errorf("waveform.color: %w", err))
	}
	if _, err := gfx.ParseColor(cfg.Waveform.Background); err != nil {
		errs = append(errs, fmt.Errorf("waveform.background: %w", err))
	}

	// Video
	if cfg.Video.Width <= 0 || cfg.Video.Height <= 0 {
		errs = append(errs, fmt.Errorf("video size %dx%d must be positive", cfg.Video.Width, cfg.Video.Height))
	} else if cfg.Encoder.PixelFormat == "yuv420p" && (cfg.Video.Width%2 != 0 || cfg.Video.Height%2 != 0) {
		errs = append(errs, fmt.Errorf("video size %dx%d must be even for pixel_format yuv420p",
			cfg.Video.Width, cfg.Video.Height))
	}
	if !(cfg.Video.FPS > 0) || math.IsInf(cfg.Video.FPS, 0) {
		errs = append(errs, fmt.Errorf("video.fps %v must be positive", cfg.Video.FPS))
	}
	if cfg.Video.Output == "" {
		errs = append(errs, errors.New("video.output is required"))
	}

	// Encoder
	if cfg.Encoder.Threads < 0 {
		errs = append(errs, fmt.Errorf("encoder.threads %d must not be negative", cfg.Encoder.Threads))
	}
	if cfg.Encoder.Workers < 0 {
		errs = append(errs, fmt.Errorf("encoder.workers %d must not be negative", cfg.Encoder.Workers))
	}

	return errors.Join(errs...)
}
