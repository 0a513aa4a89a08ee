// flappy runs the flappy-bird arena: play it yourself, train a population
// of neural policies against it, or serve it over SSH.
//
// Usage:
//
//	flappy play              - Play in the terminal
//	flappy train             - Evolve a population of policies
//	flappy serve             - Start SSH server for remote play
//	flappy scores            - Show high scores
//	flappy history           - Browse recorded training runs
//	flappy config            - Print or dump the effective configuration
//
// Global flags:
//
//	--fps <rate>     - Set frame rate of the terminal front-end
//	--seed <value>   - Set RNG seed for reproducible obstacle layouts
//	--db <path>      - Set database path (default: ~/.flappy/scores.db)
//	--config <path>  - Load configuration overrides from a YAML file
package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/flappy-arena/internal/config"
)

var (
	// Global flags
	flagFPS        int
	flagSeed       int64
	flagDBPath     string
	flagConfigPath string
	flagVerbose    bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "flappy",
	Short: "Flappy Arena - play or evolve flappy birds in your terminal",
	Long: `Flappy Arena runs a deterministic flappy-bird world shared by any number
of agents. Agents are driven by the keyboard or by neural policies that are
trained with a simple evolutionary loop.

Available commands:
  play     - Play a game in the terminal
  train    - Evolve a population of policies
  serve    - Start SSH server for remote play
  scores   - View high scores
  history  - Browse recorded training runs
  config   - Print the effective configuration

Examples:
  flappy play
  flappy train --generations 50 --population 100
  flappy train --replay
  flappy serve --ssh :2222
  flappy scores`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().IntVar(&flagFPS, "fps", 0, "Frame rate (0 = use config)")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = use config, then time)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "~/.flappy/scores.db", "Path to scores database")
	rootCmd.PersistentFlags().StringVar(&flagConfigPath, "config", "", "Path to custom config YAML")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(trainCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(scoresCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(configCmd)
}

// loadConfig loads the configuration and applies the global flag overrides.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(flagConfigPath)
	if err != nil {
		return cfg, err
	}
	if flagFPS > 0 {
		cfg.FrameRate = flagFPS
	}
	if flagSeed != 0 {
		cfg.Seed = flagSeed
	}
	return cfg, nil
}

// newLogger returns the stderr logger shared by the commands.
func newLogger(prefix string) *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          prefix,
	})
	if flagVerbose {
		logger.SetLevel(log.DebugLevel)
	}
	return logger
}

// terminalSize returns the size of the controlling terminal, or 80x24.
func terminalSize() (int, int) {
	width, height := 80, 24
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		width, height = w, h
	}
	return width, height
}
