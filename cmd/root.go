// cmd/root.go
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/ColonelBlimp/dtmfcodec/internal/audio"
	"github.com/ColonelBlimp/dtmfcodec/internal/config"
	"github.com/ColonelBlimp/dtmfcodec/internal/logging"
	"github.com/ColonelBlimp/dtmfcodec/internal/observe"
)

// Version is set at build time with -ldflags "-X .../cmd.Version=..."
var Version = "dev"

var rootCmd = &cobra.Command{
	Use:   "dtmfcodec",
	Short: "DTMF (touch-tone) detector and generator",
	Long: `Detects and generates DTMF tones in 16-bit mono PCM at 8000 Hz.

Audio can come from files (WAV, Sun AU or raw PCM) or a capture device, and
generated tones can be written to a file or played on an output device.`,
	Version:      Version,
	SilenceUsage: true,
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// flagKeys maps persistent flags onto their configuration keys.
var flagKeys = map[string]string{
	"device":       "device_index",
	"frame-size":   "frame_size",
	"tone-ms":      "tone_duration_ms",
	"pause-ms":     "pause_duration_ms",
	"log-level":    "log_level",
	"format":       "output_format",
	"metrics-addr": "metrics_addr",
	"debug":        "debug",
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags (override config file)
	flags := rootCmd.PersistentFlags()
	flags.IntP("device", "d", -1, "audio device index (-1 for default)")
	flags.Int("frame-size", 160, "samples per generated frame")
	flags.Int("tone-ms", 70, "tone duration in milliseconds")
	flags.Int("pause-ms", 50, "pause duration in milliseconds")
	flags.String("log-level", "info", "log level: debug, info, warn or error")
	flags.String("format", config.FormatText, "output format: text or yaml")
	flags.String("metrics-addr", "", "serve Prometheus metrics on this address, e.g. :9464")
	flags.BoolP("debug", "D", false, "enable debug output")
}

func bindFlags(fs *pflag.FlagSet) error {
	for name, key := range flagKeys {
		if err := viper.BindPFlag(key, fs.Lookup(name)); err != nil {
			return fmt.Errorf("bind --%s: %w", name, err)
		}
	}
	return nil
}

func initConfig() {
	if err := bindFlags(rootCmd.PersistentFlags()); err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}
	if err := config.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}
}

// session bundles what every command needs from the configuration.
type session struct {
	settings *config.Settings
	logger   *slog.Logger
}

func loadSession(cmd *cobra.Command) (*session, error) {
	s, err := config.Get()
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	level := s.LogLevel
	if s.Debug {
		level = "debug"
	}
	logger, err := logging.New(cmd.ErrOrStderr(), logging.Options{
		Level:      level,
		Prefix:     cmd.Name(),
		Timestamps: s.Debug,
	})
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	slog.SetDefault(logger)

	logger.Debug("settings loaded", "file", viper.ConfigFileUsed(), "frame_size", s.FrameSize,
		"tone_ms", s.ToneDurationMs, "pause_ms", s.PauseDurationMs)
	return &session{settings: s, logger: logger}, nil
}

func (s *session) audioConfig() audio.Config {
	return audio.Config{
		DeviceIndex: s.settings.DeviceIndex,
		SampleRate:  uint32(s.settings.SampleRate),
		Channels:    uint32(s.settings.Channels),
		BufferSize:  uint32(s.settings.BufferSize),
	}
}

// metrics returns the instruments for a command. When metrics_addr is set it
// also installs the Prometheus exporter and serves it from g until ctx ends.
func (s *session) metrics(ctx context.Context, g *errgroup.Group) (*observe.Metrics, error) {
	addr := s.settings.MetricsAddr
	if addr == "" {
		return observe.DefaultMetrics(), nil
	}

	p, err := observe.InitProvider(ctx, observe.ProviderConfig{ServiceVersion: Version})
	if err != nil {
		return nil, fmt.Errorf("metrics: %w", err)
	}
	s.logger.Info("serving metrics", "addr", addr)
	g.Go(func() error {
		defer func() { _ = p.Shutdown(context.Background()) }()
		if err := p.Serve(ctx, addr); err != nil {
			return fmt.Errorf("metrics: %w", err)
		}
		return nil
	})
	return observe.NewMetrics(p.MeterProvider)
}
