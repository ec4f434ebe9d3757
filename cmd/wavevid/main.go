// Wavevid renders the waveform of an audio file as a video with the original
// soundtrack.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/golang/glog"
	"github.com/spf13/cobra"

	"github.com/peragwin/wavevid/audio"
	"github.com/peragwin/wavevid/config"
	"github.com/peragwin/wavevid/gfx/waveform"
	"github.com/peragwin/wavevid/render"
)

type options struct {
	config  string
	preset  string
	output  string
	width   int
	height  int
	fps     float64
	window  float64
	policy  string
	style   string
	workers int
	decoder string
	color   string
	bg      string
	noNorm  bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		glog.Error(err)
		glog.Flush()
		os.Exit(1)
	}
	glog.Flush()
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "wavevid",
		Short:         "Render the waveform of an audio file as a video",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			// glog reads its flags from flag.CommandLine
			flag.CommandLine.Parse([]string{})
		},
	}
	root.PersistentFlags().AddGoFlagSet(flag.CommandLine)

	root.AddCommand(newRenderCmd(), newFrameCmd(), newPresetsCmd())
	return root
}

func newRenderCmd() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:   "render [audio]",
		Short: "Render a waveform video",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load(cmd, args)
			if err != nil {
				return err
			}
			return render.Run(cmd.Context(), cfg)
		},
	}
	opts.addFlags(cmd)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output video file")
	cmd.Flags().Float64Var(&opts.fps, "fps", 0, "output frame rate")
	cmd.Flags().IntVar(&opts.workers, "workers", 0, "number of frames rendered concurrently")
	return cmd
}

func newFrameCmd() *cobra.Command {
	opts := &options{}
	var at float64
	var out string
	cmd := &cobra.Command{
		Use:   "frame [audio]",
		Short: "Render the frame at one timestamp as a PNG image",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load(cmd, args)
			if err != nil {
				return err
			}
			f, err := render.Still(cfg, at)
			if err != nil {
				return err
			}
			if err := render.WritePNG(out, f); err != nil {
				return err
			}
			glog.Infof("wrote frame at t=%.3fs to %s", at, out)
			return nil
		},
	}
	opts.addFlags(cmd)
	cmd.Flags().Float64Var(&at, "at", 0, "timestamp in seconds")
	cmd.Flags().StringVar(&out, "png", "frame.png", "output image file")
	return cmd
}

func newPresetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "presets [name]",
		Short: "Print the built-in presets as YAML",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			names := config.PresetNames()
			if len(args) == 1 {
				names = args
			}
			for _, name := range names {
				cfg, err := config.Preset(name)
				if err != nil {
					return err
				}
				b, err := config.Marshal(cfg)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "# %s\n%s\n", name, b)
			}
			return nil
		},
	}
}

func (o *options) addFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVarP(&o.config, "config", "c", "", "YAML configuration file")
	f.StringVarP(&o.preset, "preset", "p", config.DefaultPreset, "preset the configuration starts from")
	f.IntVar(&o.width, "width", 0, "frame width in pixels")
	f.IntVar(&o.height, "height", 0, "frame height in pixels")
	f.Float64Var(&o.window, "window", 0, "window duration in seconds")
	f.StringVar(&o.policy, "policy", "", "window policy: forward or centered")
	f.StringVar(&o.style, "style", "", "waveform style: fill or line")
	f.StringVar(&o.decoder, "decoder", "", "audio decoder: auto, native or ffmpeg")
	f.StringVar(&o.color, "color", "", "wave color, #rrggbb or hsluv(h, s, l)")
	f.StringVar(&o.bg, "background", "", "background color, #rrggbb or hsluv(h, s, l)")
	f.BoolVar(&o.noNorm, "no-normalize", false, "keep the original sample amplitudes")
}

// load builds the configuration from the preset, the config file and the flags
// that were set, in that order.
func (o *options) load(cmd *cobra.Command, args []string) (*config.Config, error) {
	var cfg *config.Config
	var err error
	if o.config != "" {
		cfg, err = config.Load(o.config, o.preset)
	} else {
		cfg, err = config.Preset(o.preset)
	}
	if err != nil {
		return nil, err
	}

	if len(args) == 1 {
		cfg.Audio.Path = args[0]
	}
	if cfg.Audio.Path == "" {
		return nil, fmt.Errorf("no audio file given")
	}

	set := cmd.Flags().Changed
	if set("output") {
		cfg.Video.Output = o.output
	}
	if set("width") {
		cfg.Video.Width = o.width
	}
	if set("height") {
		cfg.Video.Height = o.height
	}
	if set("fps") {
		cfg.Video.FPS = o.fps
	}
	if set("workers") {
		cfg.Encoder.Workers = o.workers
	}
	if set("window") {
		cfg.Waveform.Window = o.window
	}
	if set("policy") {
		if cfg.Waveform.Policy, err = audio.ParsePolicy(o.policy); err != nil {
			return nil, err
		}
	}
	if set("style") {
		if cfg.Waveform.Style, err = waveform.ParseStyle(o.style); err != nil {
			return nil, err
		}
	}
	if set("decoder") {
		cfg.Audio.Decoder = o.decoder
	}
	if set("color") {
		cfg.Waveform.Color = o.color
	}
	if set("background") {
		cfg.Waveform.Background = o.bg
	}
	if set("no-normalize") {
		cfg.Audio.Normalize = !o.noNorm
	}

	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	glog.V(1).Infof("configuration: %+v", *cfg)
	return cfg, nil
}
