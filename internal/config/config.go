// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/lestrrat-go/strftime"
	"github.com/spf13/viper"

	"github.com/ColonelBlimp/dtmfcodec/internal/dtmf"
	"github.com/ColonelBlimp/dtmfcodec/internal/logging"
)

const (
	AppName       = "dtmfcodec"
	ConfigType    = "yaml"
	DefaultConfig = `# DTMF codec configuration

# Audio device settings
device_index: -1        # -1 for default device
sample_rate: 8000       # The detector only works at 8 kHz
channels: 1             # Mono only
buffer_size: 160        # Samples per device callback

# Generator
frame_size: 160         # Samples per generated frame
tone_duration_ms: 70    # How long each symbol sounds
pause_duration_ms: 50   # Silence after each symbol

# Output
log_level: "info"       # debug, info, warn or error
timestamp_format: "%H:%M:%S"  # strftime format for detected tones, %L for milliseconds
output_format: "text"   # text or yaml
metrics_addr: ""        # e.g. ":9464" to serve Prometheus metrics
debug: false            # Enable debug output
`
)

// Output formats
const (
	FormatText = "text"
	FormatYAML = "yaml"
)

// Settings holds all application configuration
type Settings struct {
	// Audio device settings
	DeviceIndex int `mapstructure:"device_index"`
	SampleRate  int `mapstructure:"sample_rate"`
	Channels    int `mapstructure:"channels"`
	BufferSize  int `mapstructure:"buffer_size"`

	// Generator
	FrameSize       int `mapstructure:"frame_size"`
	ToneDurationMs  int `mapstructure:"tone_duration_ms"`
	PauseDurationMs int `mapstructure:"pause_duration_ms"`

	// Output
	LogLevel        string `mapstructure:"log_level"`
	TimestampFormat string `mapstructure:"timestamp_format"`
	OutputFormat    string `mapstructure:"output_format"`
	MetricsAddr     string `mapstructure:"metrics_addr"`
	Debug           bool   `mapstructure:"debug"`
}

// Init initializes Viper with defaults and config file.
// Config file search order: current directory, then ~/.config/dtmfcodec/
func Init() error {
	// Set defaults
	viper.SetDefault("device_index", -1)
	viper.SetDefault("sample_rate", dtmf.SampleRate)
	viper.SetDefault("channels", 1)
	viper.SetDefault("buffer_size", 160)
	viper.SetDefault("frame_size", 160)
	viper.SetDefault("tone_duration_ms", int(dtmf.DefaultToneDuration/time.Millisecond))
	viper.SetDefault("pause_duration_ms", int(dtmf.DefaultPauseDuration/time.Millisecond))
	viper.SetDefault("log_level", "info")
	viper.SetDefault("timestamp_format", "%H:%M:%S")
	viper.SetDefault("output_format", FormatText)
	viper.SetDefault("metrics_addr", "")
	viper.SetDefault("debug", false)

	// DTMFCODEC_FRAME_SIZE and friends override the file
	viper.SetEnvPrefix(AppName)
	viper.AutomaticEnv()

	// Support both config.yaml and .config.yaml
	viper.SetConfigType(ConfigType)

	// Priority order: current directory first, then XDG config
	viper.AddConfigPath(".")

	configDir, err := os.UserConfigDir()
	if err != nil {
		configDir = filepath.Join(os.Getenv("HOME"), ".config")
	}
	viper.AddConfigPath(filepath.Join(configDir, AppName))

	// Try .config.yaml first (hidden file), then config.yaml
	viper.SetConfigName(".config")
	if err = viper.ReadInConfig(); err != nil {
		viper.SetConfigName("config")
		err = viper.ReadInConfig()
	}

	// Read config file - if not found, create default in XDG config dir
	if err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			xdgConfigPath := filepath.Join(configDir, AppName)
			if err = ensureConfigExists(xdgConfigPath); err != nil {
				return err
			}
			if err = viper.ReadInConfig(); err != nil {
				return fmt.Errorf("read config: %w", err)
			}
		} else {
			return fmt.Errorf("read config: %w", err)
		}
	}

	return nil
}

func ensureConfigExists(configPath string) error {
	configFile := filepath.Join(configPath, "config.yaml")

	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		if err = os.MkdirAll(configPath, 0755); err != nil {
			return fmt.Errorf("create config dir: %w", err)
		}
		if err = os.WriteFile(configFile, []byte(DefaultConfig), 0644); err != nil {
			return fmt.Errorf("write default config: %w", err)
		}
	}
	return nil
}

// Get returns the current settings
func Get() (*Settings, error) {
	var s Settings
	if err := viper.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &s, nil
}

// ToneDuration returns the configured tone length.
func (s *Settings) ToneDuration() time.Duration {
	return time.Duration(s.ToneDurationMs) * time.Millisecond
}

// PauseDuration returns the configured pause length.
func (s *Settings) PauseDuration() time.Duration {
	return time.Duration(s.PauseDurationMs) * time.Millisecond
}

// GeneratorConfig converts the generator settings into frame counts.
func (s *Settings) GeneratorConfig() dtmf.GeneratorConfig {
	return dtmf.ConfigFor(s.FrameSize, s.ToneDuration(), s.PauseDuration())
}

// Validate checks that all settings are within acceptable ranges
func (s *Settings) Validate() error {
	var errs []error

	// Audio device settings
	if s.DeviceIndex < -1 {
		errs = append(errs, fmt.Errorf("device_index must be -1 (default) or a device number, got %d", s.DeviceIndex))
	}
	if s.SampleRate != dtmf.SampleRate {
		errs = append(errs, fmt.Errorf("sample_rate must be %d Hz, got %d", dtmf.SampleRate, s.SampleRate))
	}
	if s.Channels != 1 {
		errs = append(errs, fmt.Errorf("channels must be 1, got %d", s.Channels))
	}
	if s.BufferSize < 16 || s.BufferSize > 8192 {
		errs = append(errs, fmt.Errorf("buffer_size must be between 16 and 8192, got %d", s.BufferSize))
	}

	// Generator
	if s.FrameSize < 1 || s.FrameSize > 8192 {
		errs = append(errs, fmt.Errorf("frame_size must be between 1 and 8192, got %d", s.FrameSize))
	}
	if s.ToneDurationMs < 0 || s.ToneDurationMs > 10000 {
		errs = append(errs, fmt.Errorf("tone_duration_ms must be between 0 and 10000, got %d", s.ToneDurationMs))
	}
	if s.PauseDurationMs < 0 || s.PauseDurationMs > 10000 {
		errs = append(errs, fmt.Errorf("pause_duration_ms must be between 0 and 10000, got %d", s.PauseDurationMs))
	}

	// Output
	if _, err := logging.ParseLevel(s.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("log_level: %w", err))
	}
	if _, err := strftime.New(s.TimestampFormat, strftime.WithMilliseconds('L')); err != nil {
		errs = append(errs, fmt.Errorf("timestamp_format %q: %w", s.TimestampFormat, err))
	}
	if !slices.Contains([]string{FormatText, FormatYAML}, s.OutputFormat) {
		errs = append(errs, fmt.Errorf("output_format must be one of %s, %s, got %q", FormatText, FormatYAML, s.OutputFormat))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}
