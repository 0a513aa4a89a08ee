package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/flappy-arena/internal/platform/tui"
	"github.com/vovakirdan/flappy-arena/internal/storage"
)

var flagPlayer string

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play a game",
	Long: `Fly a single bird through the obstacle pairs.

Controls:
  Space/Up/W - Flap
  P          - Pause
  R          - Restart (after game over)
  Ctrl+S     - Save a screenshot to ~/.flappy/screenshots
  Q/Ctrl+C   - Quit

Examples:
  flappy play
  flappy play --seed 42
  flappy play --config ./my-flappy.yaml`,
	Args: cobra.NoArgs,
	RunE: runPlay,
}

func init() {
	playCmd.Flags().StringVar(&flagPlayer, "player", "", "Name recorded with your scores (default: $USER)")
}

func runPlay(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	player := flagPlayer
	if player == "" {
		player = os.Getenv("USER")
	}
	if player == "" {
		player = "player"
	}

	store, err := storage.Open(flagDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not open scores database: %v\n", err)
		// Continue without storage - game still works
		store = nil
	}
	if store != nil {
		defer store.Close()
	}

	width, height := terminalSize()
	if err := tui.Run(tui.Options{
		Config: cfg,
		Store:  store,
		Player: player,
		Width:  width,
		Height: height,
	}); err != nil {
		return fmt.Errorf("running game: %w", err)
	}
	return nil
}
