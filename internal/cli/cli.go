// Package cli implements the buddystudio command-line interface.
package cli

import (
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"BuddyStudio/internal/buildinfo"
	"BuddyStudio/internal/config"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
}

// New creates a CLI logging to w at level.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "buddystudio",
		Short:        "Buddy Studio drawing game and voice tools",
		Long:         `Buddy Studio is a drawing game for small children with spoken Spanish instructions, plus tools to try its voice, sounds and phrases from the terminal.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}
	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/buddystudio/config.toml)")

	root.AddCommand(c.studioCommand())
	root.AddCommand(c.sayCommand())
	root.AddCommand(c.toneCommand())
	root.AddCommand(c.phraseCommand())
	root.AddCommand(c.voicesCommand())
	root.AddCommand(c.sketchCommand())

	return root
}

func (c *CLI) loadConfig() (config.Config, error) {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return cfg, err
	}
	c.Logger.Debug("config loaded", "path", c.configPath, "strategy", cfg.Instructions.Strategy)
	return cfg, nil
}
