// Package config holds the immutable settings of one rendering run.
package config

import (
	"fmt"
	"sort"

	"github.com/peragwin/wavevid/audio"
	"github.com/peragwin/wavevid/gfx"
	"github.com/peragwin/wavevid/gfx/waveform"
	"github.com/peragwin/wavevid/video"
)

// Config is the complete configuration of a run. It is built once, validated,
// and then only read.
type Config struct {
	Audio    Audio    `yaml:"audio"`
	Waveform Waveform `yaml:"waveform"`
	Video    Video    `yaml:"video"`
	Encoder  Encoder  `yaml:"encoder"`
}

// Audio configures decoding and preprocessing.
type Audio struct {
	// Path of the input file. Usually given on the command line instead.
	Path       string `yaml:"path,omitempty"`
	SampleRate int    `yaml:"sample_rate"`
	// Normalize rescales the signal into [-1, 1] when its peak exceeds 1.
	Normalize bool `yaml:"normalize"`
	// Decoder is auto, native or ffmpeg.
	Decoder string `yaml:"decoder"`
}

// Waveform configures how a window of samples is cut and drawn.
type Waveform struct {
	// Window is the window duration in seconds.
	Window     float64        `yaml:"window"`
	Policy     audio.Policy   `yaml:"policy"`
	Style      waveform.Style `yaml:"style"`
	LineWidth  float64        `yaml:"line_width"`
	Color      string         `yaml:"color"`
	Background string         `yaml:"background"`
}

// Video configures the output file.
type Video struct {
	Output string  `yaml:"output"`
	Width  int     `yaml:"width"`
	Height int     `yaml:"height"`
	FPS    float64 `yaml:"fps"`
}

// Encoder configures ffmpeg and the render workers.
type Encoder struct {
	FFmpeg       string `yaml:"ffmpeg"`
	FFprobe      string `yaml:"ffprobe"`
	Codec        string `yaml:"codec"`
	Preset       string `yaml:"preset"`
	Threads      int    `yaml:"threads"`
	PixelFormat  string `yaml:"pixel_format"`
	AudioCodec   string `yaml:"audio_codec"`
	AudioBitrate string `yaml:"audio_bitrate"`
	Workers      int    `yaml:"workers"`
}

// DefaultPreset is the preset used when none is named.
const DefaultPreset = "hd"

// Presets are the named starting points for a configuration.
var Presets = map[string]func() *Config{
	"hd":      hd,
	"classic": classic,
}

// hd is a 720p line waveform on a dark background.
func hd() *Config {
	return &Config{
		Audio: Audio{
			SampleRate: 44100,
			Normalize:  true,
			Decoder:    audio.DecoderAuto,
		},
		Waveform: Waveform{
			Window:     0.1,
			Policy:     audio.Centered,
			Style:      waveform.Line,
			LineWidth:  1.5,
			Color:      "#4682B4",
			Background: "#1E1E1E",
		},
		Video: Video{
			Output: "waveform_video_720p.mp4",
			Width:  1280,
			Height: 720,
			FPS:    24,
		},
		Encoder: Encoder{
			FFmpeg:       "ffmpeg",
			FFprobe:      "ffprobe",
			Codec:        "libx264",
			Preset:       "medium",
			Threads:      4,
			PixelFormat:  "yuv420p",
			AudioCodec:   "aac",
			AudioBitrate: "192k",
			Workers:      1,
		},
	}
}

// classic is a small filled waveform, black on white.
func classic() *Config {
	c := hd()
	c.Waveform = Waveform{
		Window:     0.05,
		Policy:     audio.Forward,
		Style:      waveform.Fill,
		LineWidth:  1,
		Color:      "#000000",
		Background: "#FFFFFF",
	}
	c.Video = Video{
		Output: "waveform_video.mp4",
		Width:  600,
		Height: 200,
		FPS:    24,
	}
	return c
}

// Default returns a fresh copy of the default preset.
func Default() *Config {
	return hd()
}

// Preset returns a fresh copy of the named preset.
func Preset(name string) (*Config, error) {
	if name == "" {
		name = DefaultPreset
	}
	p, ok := Presets[name]
	if !ok {
		return nil, fmt.Errorf("config: unknown preset %q; valid values: %v", name, PresetNames())
	}
	return p(), nil
}

// PresetNames lists the preset names in order.
func PresetNames() []string {
	names := make([]string, 0, len(Presets))
	for n := range Presets {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Renderer returns the frame renderer settings.
func (c *Config) Renderer() (waveform.Config, error) {
	p, err := gfx.NewPalette(c.Waveform.Color, c.Waveform.Background)
	if err != nil {
		return waveform.Config{}, err
	}
	return waveform.Config{
		Width:     c.Video.Width,
		Height:    c.Video.Height,
		Style:     c.Waveform.Style,
		LineWidth: c.Waveform.LineWidth,
		Palette:   p,
	}, nil
}

// Decoder returns the settings for audio.Open.
func (c *Config) Decoder() *audio.Config {
	return &audio.Config{
		Decoder: c.Audio.Decoder,
		FFmpeg:  c.Encoder.FFmpeg,
		FFprobe: c.Encoder.FFprobe,
	}
}

// EncoderConfig returns the ffmpeg encoding parameters.
func (c *Config) EncoderConfig() video.EncoderConfig {
	return video.EncoderConfig{
		FFmpeg:       c.Encoder.FFmpeg,
		Codec:        c.Encoder.Codec,
		Preset:       c.Encoder.Preset,
		Threads:      c.Encoder.Threads,
		PixelFormat:  c.Encoder.PixelFormat,
		AudioCodec:   c.Encoder.AudioCodec,
		AudioBitrate: c.Encoder.AudioBitrate,
	}
}

// Output returns the description of the video file.
func (c *Config) Output() video.Output {
	return video.Output{
		Path:   c.Video.Output,
		Width:  c.Video.Width,
		Height: c.Video.Height,
		FPS:    c.Video.FPS,
	}
}
