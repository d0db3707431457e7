package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"midiwarp/solver"
)

const appName = "midiwarp"

// SolverConfig holds the default solver inputs
type SolverConfig struct {
	Mode         string  `toml:"mode"`
	Loops        float64 `toml:"loops"`
	LoopScale    float64 `toml:"loop_scale"`
	TotalScale   float64 `toml:"total_scale"`
	FinalScale   float64 `toml:"final_scale"`
	IntegerLoops bool    `toml:"integer_loops"`
}

// OutputConfig controls where rendered files go
type OutputConfig struct {
	Suffix    string `toml:"suffix"`     // appended to the source name
	DebugDump bool   `toml:"debug_dump"` // write a .txt dump next to the output
}

// UIConfig stores UI preferences
type UIConfig struct {
	Palette string `toml:"palette,omitempty"` // GIMP palette path, empty for built-in
}

// DebugConfig toggles the trace log
type DebugConfig struct {
	Enabled bool `toml:"enabled"`
}

// Config is the main configuration structure
type Config struct {
	Solver SolverConfig `toml:"solver"`
	Output OutputConfig `toml:"output"`
	UI     UIConfig     `toml:"ui"`
	Debug  DebugConfig  `toml:"debug"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Solver: SolverConfig{
			Mode:         solver.TargetTotalScale.String(),
			Loops:        4,
			LoopScale:    1.5,
			TotalScale:   2,
			FinalScale:   2,
			IntegerLoops: true,
		},
		Output: OutputConfig{
			Suffix: "_warped",
		},
	}
}

// ConfigDir returns the config directory path, honouring XDG_CONFIG_HOME.
func ConfigDir() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName), nil
}

// ConfigPath returns the full path to config.toml
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load reads the config from disk, or returns defaults if not found
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return DefaultConfig(), nil
	}
	return LoadFile(path)
}

// LoadFile reads the config at path. Keys missing from the file keep their
// defaults; a missing file yields the defaults.
func LoadFile(path string) (*Config, error) {
	cfg := DefaultConfig()
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return nil, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks values a solve or render would otherwise reject late.
func (c *Config) Validate() error {
	if _, err := solver.ParseMode(c.Solver.Mode); err != nil {
		return err
	}
	if strings.ContainsRune(c.Output.Suffix, filepath.Separator) {
		return fmt.Errorf("output suffix %q must not contain a path separator", c.Output.Suffix)
	}
	return nil
}

// SolverMode returns the configured solver mode.
func (c *Config) SolverMode() solver.Mode {
	mode, err := solver.ParseMode(c.Solver.Mode)
	if err != nil {
		return solver.TargetTotalScale
	}
	return mode
}

// OutputPath derives the default output file for a source file:
// "loop.mid" becomes "loop_warped.mid".
func (c *Config) OutputPath(source string) string {
	ext := filepath.Ext(source)
	base := strings.TrimSuffix(source, ext)
	if ext == "" {
		ext = ".mid"
	}
	return base + c.Output.Suffix + ext
}

// Save writes the config to the default path
func (c *Config) Save() error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return c.SaveFile(path)
}

// SaveFile writes the config to path, creating its directory.
func (c *Config) SaveFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(c); err != nil {
		return err
	}
	return f.Close()
}

// Encode renders the config as TOML.
func (c *Config) Encode() (string, error) {
	var b strings.Builder
	if err := toml.NewEncoder(&b).Encode(c); err != nil {
		return "", err
	}
	return b.String(), nil
}
