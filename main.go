package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"lightbeat/config"
	"lightbeat/coordinator"
	"lightbeat/debug"
	"lightbeat/light"
	"lightbeat/midibridge"
	"lightbeat/palette"
	"lightbeat/playback"
	"lightbeat/source"
	"lightbeat/tui"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var (
		configPath string
		debugLog   bool
	)

	root := &cobra.Command{
		Use:   "lightbeat",
		Short: "Sync networked lights to the musical structure of whatever is playing",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			if debugLog {
				if err := debug.Enable(); err != nil {
					return err
				}
				defer debug.Disable()
			}
			return run(cfg)
		},
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default ~/.config/lightbeat/config.json)")
	root.PersistentFlags().BoolVar(&debugLog, "debug", false, "write a debug log to ~/.config/lightbeat/debug.log")

	root.AddCommand(&cobra.Command{
		Use:   "ports",
		Short: "List available MIDI output ports",
		Run: func(cmd *cobra.Command, args []string) {
			ports := midibridge.Ports()
			if len(ports) == 0 {
				fmt.Println("no MIDI output ports found")
				return
			}
			for _, p := range ports {
				fmt.Println(p)
			}
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "actuators",
		Short: "List the configured light actuators",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			for _, a := range cfg.Actuators {
				kind := a.Kind
				if kind == "" {
					kind = "log"
				}
				fmt.Printf("%-12s %s\n", a.ID, kind)
			}
			return nil
		},
	})

	return root
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFrom(path)
	}
	return config.Load()
}

func run(cfg *config.Config) error {
	mode, err := palette.ParseMode(cfg.Interpolation)
	if err != nil {
		return err
	}
	low, err := palette.ParseHex(cfg.GradientLow)
	if err != nil {
		return err
	}
	high, err := palette.ParseHex(cfg.GradientHigh)
	if err != nil {
		return err
	}
	gradient := palette.NewGradient(low, high, mode)

	var src playback.Source
	switch cfg.Source.Mode {
	case config.SourceHTTP:
		if cfg.Source.AccessToken == "" {
			return fmt.Errorf("source mode %q needs an access token in the config", cfg.Source.Mode)
		}
		src = source.NewClient(cfg.Source.BaseURL, cfg.Source.AccessToken)
	case config.SourceDemo:
		src = source.NewDemo()
	default:
		return fmt.Errorf("unknown source mode %q", cfg.Source.Mode)
	}

	engine := playback.NewEngine(src, cfg.PollInterval(), cfg.DriftThreshold())

	feed := tui.NewFeed(engine)

	// Wrap every actuator in a mirror so the TUI can render the rig.
	mirrors := make([]*light.Mirror, len(cfg.Actuators))
	actuators := make([]light.Actuator, len(cfg.Actuators))
	for i, ac := range cfg.Actuators {
		mirrors[i] = light.NewMirror(&light.LogActuator{Name: ac.ID}, feed.Notify)
		actuators[i] = mirrors[i]
	}

	trans := light.NewTransitioner(cfg.CommandDelay(), palette.Interpolator(mode))
	coordinator.New(actuators, trans, gradient).Attach(engine)

	if cfg.MIDI.Enabled {
		midibridge.New(cfg.MIDI.PortName, cfg.MIDI.Channel, cfg.MIDI.BeatNote, cfg.MIDI.BarNote).Attach(engine)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go engine.Run(ctx)

	p := tea.NewProgram(tui.NewModel(feed, mirrors), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}
