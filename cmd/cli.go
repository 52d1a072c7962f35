// SPDX-License-Identifier: MIT
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"audiointel/internal/build"
	"audiointel/internal/config"
	applog "audiointel/internal/log"
)

// flagValues holds the command line overrides. Only flags the user actually
// set are applied over the loaded configuration.
type flagValues struct {
	configPath string

	device          int
	sampleRate      float64
	framesPerBuffer int
	channels        int
	lowLatency      bool
	noGate          bool

	record bool
	output string

	seed      uint64
	wsAddress string
	staticDir string
	udp       bool
	udpTarget string
	logOutput bool

	monitor bool
	verbose bool
}

// Execute runs the CLI with the process arguments until it finishes or the
// process is interrupted.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := NewRootCommand(os.Stdout)
	root.SetArgs(os.Args[1:])
	return root.ExecuteContext(ctx)
}

// NewRootCommand builds the command tree. The root command runs live
// capture; analyze, list and devices are subcommands.
func NewRootCommand(out io.Writer) *cobra.Command {
	info := build.Get()
	f := &flagValues{}

	rootCmd := &cobra.Command{
		Use:           info.Name,
		Short:         build.Description,
		Version:       fmt.Sprintf("%s (%s, built %s)", info.Version, info.Commit, info.Time),
		SilenceErrors: true,
		SilenceUsage:  true,
		Args:          cobra.NoArgs,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd:   true,
			DisableDescriptions: true,
			DisableNoDescFlag:   true,
			HiddenDefaultCmd:    true,
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, f)
			if err != nil {
				return err
			}
			return runLive(cmd.Context(), cfg, f, cmd.OutOrStdout())
		},
	}
	rootCmd.SetOut(out)
	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})
	registerFlags(rootCmd, f)

	rootCmd.AddCommand(
		newAnalyzeCommand(f),
		newListCommand(f),
		newDevicesCommand(f),
	)
	return rootCmd
}

func registerFlags(cmd *cobra.Command, f *flagValues) {
	pf := cmd.PersistentFlags()
	pf.StringVarP(&f.configPath, "config", "f", "",
		"Path to a YAML config file (default: ./"+config.DefaultPath+" when present)")

	// Audio device configuration.
	pf.IntVarP(&f.device, "device", "d", config.MinDeviceID,
		"Input device ID, -1 for the system default. Use 'list' to see devices.")
	pf.Float64VarP(&f.sampleRate, "sample-rate", "s", 44100, "Sample rate, measured in Hertz (Hz)")
	pf.IntVarP(&f.framesPerBuffer, "frames-per-buffer", "b", 1024,
		"Frames per buffer, also the FFT size (affects latency)")
	pf.IntVarP(&f.channels, "channels", "c", 1, "Number of input channels; the first is analysed")
	pf.BoolVarP(&f.lowLatency, "low-latency", "l", false, "Use the device's low latency setting")
	pf.BoolVar(&f.noGate, "no-gate", false, "Disable the noise gate")

	// Recording configuration.
	pf.BoolVarP(&f.record, "record", "r", false, "Record the input stream to a WAV file")
	pf.StringVarP(&f.output, "output", "o", "",
		"Recording file name (default: recording-YYYYMMDD-HHMMSS.wav in the output directory)")

	// Engine and transports.
	pf.Uint64Var(&f.seed, "seed", 0, "Seed for visualizer selection, 0 for random")
	pf.StringVar(&f.wsAddress, "ws-address", ":8080", "WebSocket listen address")
	pf.StringVar(&f.staticDir, "static-dir", "", "Directory served at / next to the WebSocket")
	pf.BoolVar(&f.udp, "udp", false, "Publish state packets over UDP")
	pf.StringVar(&f.udpTarget, "udp-target", "127.0.0.1:9090", "UDP target address")
	pf.BoolVar(&f.logOutput, "log-output", false, "Log section changes and effects")

	pf.BoolVarP(&f.monitor, "monitor", "m", false, "Show the live terminal monitor")
	pf.BoolVarP(&f.verbose, "verbose", "v", false, "Show verbose output")
}

// applyFlags copies every explicitly set flag over cfg.
func applyFlags(cmd *cobra.Command, f *flagValues, cfg *config.Config) {
	changed := cmd.Flags().Changed
	if changed("device") {
		cfg.Audio.InputDevice = f.device
	}
	if changed("sample-rate") {
		cfg.Audio.SampleRate = f.sampleRate
	}
	if changed("frames-per-buffer") {
		cfg.Audio.FramesPerBuffer = f.framesPerBuffer
	}
	if changed("channels") {
		cfg.Audio.InputChannels = f.channels
	}
	if changed("low-latency") {
		cfg.Audio.LowLatency = f.lowLatency
	}
	if changed("no-gate") {
		cfg.Audio.GateEnabled = !f.noGate
	}
	if changed("record") {
		cfg.Recording.Enabled = f.record
	}
	if changed("seed") {
		cfg.Predict.Seed = f.seed
	}
	if changed("ws-address") {
		cfg.Transport.WebSocketAddress = f.wsAddress
	}
	if changed("static-dir") {
		cfg.Transport.StaticDir = f.staticDir
	}
	if changed("udp") {
		cfg.Transport.UDPEnabled = f.udp
	}
	if changed("udp-target") {
		cfg.Transport.UDPTargetAddress = f.udpTarget
	}
	if changed("log-output") {
		cfg.Transport.LogEnabled = f.logOutput
	}
	if changed("verbose") && f.verbose {
		cfg.LogLevel = "debug"
	}
}

// loadConfig reads the config file, applies flags, validates the result and
// configures logging.
func loadConfig(cmd *cobra.Command, f *flagValues) (*config.Config, error) {
	cfg, err := config.LoadConfig(f.configPath)
	if err != nil {
		return nil, err
	}
	applyFlags(cmd, f, cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if err := applog.Configure(cfg.LogLevel, cfg.Debug); err != nil {
		return nil, err
	}
	return cfg, nil
}
