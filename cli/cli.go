// Package cli implements the midiwarp command-line interface.
//
// Commands load a Standard MIDI File into a sequencer.Engine, solve the
// geometric stretch parameters and render the warped result:
//
//	midiwarp inspect loop.mid
//	midiwarp solve loop.mid --mode fit-to-curve --loop-scale 0.8 --total-scale 3
//	midiwarp render loop.mid -o out.mid --dump
//	midiwarp tui loop.mid
//
// Solver flags default to the [solver] section of the config file.
package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"midiwarp/config"
	"midiwarp/debug"
	"midiwarp/sequencer"
	"midiwarp/theme"
)

const appName = "midiwarp"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// Version is set by the main package.
var Version = "dev"

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Config *config.Config

	configPath string
	debug      bool
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: log.NewWithOptions(w, log.Options{
			ReportTimestamp: true,
			TimeFormat:      "15:04:05.00",
			Level:           level,
		}),
		Config: config.DefaultConfig(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           appName,
		Short:         "Geometrically time-warp MIDI loops",
		Long:          `midiwarp replays a MIDI pattern with every repetition stretched or compressed by a geometrically growing factor, keeping each segment's groove intact.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			debug.Disable()
		},
	}

	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default ~/.config/midiwarp/config.toml)")
	root.PersistentFlags().BoolVar(&c.debug, "debug", false, "write a trace log to ~/.config/midiwarp/debug.log")

	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.solveCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.tuiCommand())
	root.AddCommand(c.configCommand())

	return root
}

// setup loads the config and starts the trace log if asked to.
func (c *CLI) setup() error {
	var (
		cfg *config.Config
		err error
	)
	if c.configPath != "" {
		cfg, err = config.LoadFile(c.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	c.Config = cfg

	if c.debug || cfg.Debug.Enabled {
		if err := debug.Enable(); err != nil {
			c.Logger.Warn("debug log unavailable", "err", err)
		} else {
			c.Logger.Debug("debug log enabled")
		}
	}
	return nil
}

// newEngine creates an engine logging through the CLI logger.
func (c *CLI) newEngine() *sequencer.Engine {
	return sequencer.NewEngine(c.Logger)
}

// loadEngine creates an engine and loads path into it.
func (c *CLI) loadEngine(path string) (*sequencer.Engine, error) {
	e := c.newEngine()
	if err := e.LoadSource(path); err != nil {
		return nil, err
	}
	return e, nil
}

// theme returns the configured palette, falling back to the built-in one.
func (c *CLI) theme() *theme.Theme {
	if path := c.Config.UI.Palette; path != "" {
		p, err := theme.LoadGPL(path)
		if err == nil {
			return theme.New(p)
		}
		c.Logger.Warn("palette unavailable, using default", "path", path, "err", err)
	}
	return theme.New(theme.Default())
}
