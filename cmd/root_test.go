package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

func resetViperForTest() {
	viper.Reset()
}

// resetFlags puts every flag back to its default; cobra keeps parsed values
// between Execute calls.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.PersistentFlags().VisitAll(reset)
	c.Flags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// setupHome isolates config lookup in a temp HOME and working directory.
func setupHome(t *testing.T, configContent string) string {
	t.Helper()
	resetViperForTest()
	resetFlags(rootCmd)

	tmpDir := t.TempDir()
	t.Setenv("HOME", tmpDir)
	t.Setenv("XDG_CONFIG_HOME", "")
	if configContent != "" {
		configDir := filepath.Join(tmpDir, ".config", "dtmfcodec")
		if err := os.MkdirAll(configDir, 0755); err != nil {
			t.Fatalf("failed to create config dir: %v", err)
		}
		if err := os.WriteFile(filepath.Join(configDir, "config.yaml"), []byte(configContent), 0644); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}
	}

	origDir, _ := os.Getwd()
	if err := os.Chdir(tmpDir); err != nil {
		t.Fatalf("failed to chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(origDir) })
	return tmpDir
}

// execute runs the root command with args and returns stdout and stderr.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	})
	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestRootCmd_HasExpectedFlags(t *testing.T) {
	flags := rootCmd.PersistentFlags()

	tests := []struct {
		name         string
		shorthand    string
		defaultValue string
	}{
		{"device", "d", "-1"},
		{"frame-size", "", "160"},
		{"tone-ms", "", "70"},
		{"pause-ms", "", "50"},
		{"log-level", "", "info"},
		{"format", "", "text"},
		{"metrics-addr", "", ""},
		{"debug", "D", "false"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flag := flags.Lookup(tt.name)
			if flag == nil {
				t.Fatalf("flag %q not found", tt.name)
			}
			if flag.Shorthand != tt.shorthand {
				t.Errorf("flag %q shorthand = %q, want %q", tt.name, flag.Shorthand, tt.shorthand)
			}
			if flag.DefValue != tt.defaultValue {
				t.Errorf("flag %q default = %q, want %q", tt.name, flag.DefValue, tt.defaultValue)
			}
			if flag.Usage == "" {
				t.Errorf("flag %q has no description", tt.name)
			}
			if _, ok := flagKeys[tt.name]; !ok {
				t.Errorf("flag %q is not bound to a config key", tt.name)
			}
		})
	}
}

func TestRootCmd_Properties(t *testing.T) {
	if rootCmd.Use != "dtmfcodec" {
		t.Errorf("rootCmd.Use = %q, want %q", rootCmd.Use, "dtmfcodec")
	}
	if rootCmd.Short == "" {
		t.Error("rootCmd.Short is empty")
	}
	if rootCmd.Long == "" {
		t.Error("rootCmd.Long is empty")
	}

	want := []string{"detect", "generate", "listen", "play", "selftest", "devices"}
	for _, name := range want {
		found := false
		for _, c := range rootCmd.Commands() {
			if c.Name() == name {
				found = true
			}
		}
		if !found {
			t.Errorf("subcommand %q not registered", name)
		}
	}
}

func TestRootCmd_HelpOutput(t *testing.T) {
	setupHome(t, "")

	out, _, err := execute(t, "--help")
	if err != nil {
		t.Fatalf("Execute() with --help error = %v", err)
	}
	for _, want := range []string{"dtmfcodec", "--device", "detect", "generate"} {
		if !strings.Contains(out, want) {
			t.Errorf("help output should contain %q", want)
		}
	}
}

func TestInitConfig(t *testing.T) {
	setupHome(t, "frame_size: 205")

	initConfig()

	if got := viper.GetInt("frame_size"); got != 205 {
		t.Errorf("viper.GetInt(frame_size) = %d, want 205", got)
	}
}

func TestInitConfig_FlagsOverrideFile(t *testing.T) {
	setupHome(t, "tone_duration_ms: 90")

	if err := rootCmd.PersistentFlags().Set("tone-ms", "40"); err != nil {
		t.Fatal(err)
	}
	initConfig()

	if got := viper.GetInt("tone_duration_ms"); got != 40 {
		t.Errorf("viper.GetInt(tone_duration_ms) = %d, want 40 from the flag", got)
	}
}

func TestRootCmd_InvalidConfig(t *testing.T) {
	setupHome(t, "sample_rate: 44100")

	_, _, err := execute(t, "selftest", "-n", "1")
	if err == nil {
		t.Fatal("expected error for invalid config, got nil")
	}
	if !strings.Contains(err.Error(), "config") {
		t.Errorf("expected config error, got: %v", err)
	}
}

func TestRootCmd_InvalidFormatFlag(t *testing.T) {
	setupHome(t, "")

	_, _, err := execute(t, "selftest", "-n", "1", "--format", "json")
	if err == nil || !strings.Contains(err.Error(), "output_format") {
		t.Errorf("expected output_format error, got: %v", err)
	}
}
