package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/flappy-arena/internal/config"
	"github.com/vovakirdan/flappy-arena/internal/core"
	"github.com/vovakirdan/flappy-arena/internal/sim"
	"github.com/vovakirdan/flappy-arena/internal/storage"
)

// hudRows is the number of screen rows reserved above the play field.
const hudRows = 1

// flapRepeatWindow is the longest gap between two flap keys that still counts
// as the key being held. Terminals report no key release, so auto-repeat
// (one key every 30-50ms) is told apart from tapping by timing alone.
const flapRepeatWindow = 100 * time.Millisecond

// Options configures a play or replay session.
type Options struct {
	Config config.Config
	Store  *storage.Store // Optional; human scores are saved here
	Player string         // Name recorded with saved scores
	Policy sim.Policy     // Non-nil switches to replay: the policy flies instead of the keyboard
	Width  int
	Height int
}

// frameBuffer is the loop's render sink; it keeps the latest frame for View.
type frameBuffer struct {
	last sim.Frame
}

func (b *frameBuffer) Observe(f sim.Frame) { b.last = f }

// Model is the Bubble Tea model that paces a single-agent loop.
type Model struct {
	opts       Options
	loop       *sim.Loop
	human      *sim.HumanInput
	frames     *frameBuffer
	screen     *core.Screen
	keys       *KeyMapper
	inputFrame core.InputFrame
	seed       int64
	highScore  int
	paused     bool
	gameOver   bool
	scoreSaved bool // Whether the score has been saved for the current game over
	quitting   bool

	lastFlapKey time.Time
	now         func() time.Time
}

// NewModel creates a model with a fresh loop.
func NewModel(opts Options) Model {
	seed := opts.Config.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	m := Model{
		opts:       opts,
		human:      sim.NewHumanInput(),
		frames:     &frameBuffer{},
		screen:     core.NewScreen(opts.Width, opts.Height),
		keys:       NewKeyMapper(),
		inputFrame: core.NewInputFrame(),
		seed:       seed,
		now:        time.Now,
	}
	if opts.Store != nil {
		if high, err := opts.Store.HighScore(); err == nil {
			m.highScore = high
		}
	}
	m.reset()
	return m
}

// reset starts a new game with the current seed.
func (m *Model) reset() {
	var source sim.DecisionSource = m.human
	if m.opts.Policy != nil {
		source = sim.PolicyDecision{Policy: m.opts.Policy, Threshold: m.opts.Config.Training.DecisionThreshold}
	}
	m.human.Reset()
	m.loop = sim.NewLoop(m.opts.Config, []sim.DecisionSource{source}, sim.Options{
		Mode: sim.ModeHuman,
		Seed: m.seed,
		Sink: m.frames,
	})
	m.frames.Observe(m.loop.World().Snapshot())
	m.paused = false
	m.gameOver = false
	m.scoreSaved = false
}

// Replay reports whether the model is flying a policy rather than a player.
func (m Model) Replay() bool { return m.opts.Policy != nil }

// Frame returns the most recently simulated frame.
func (m Model) Frame() sim.Frame { return m.frames.last }

// GameOver reports whether the current game has ended.
func (m Model) GameOver() bool { return m.gameOver }

// Paused reports whether the simulation is paused.
func (m Model) Paused() bool { return m.paused }

// Init starts the tick loop.
func (m Model) Init() tea.Cmd {
	return tickCmd(m.opts.Config.FrameRate)
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.screen.Resize(msg.Width, msg.Height)
		return m, nil

	case TickMsg:
		return m.handleTick()
	}

	return m, nil
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+s" {
		m.saveScreenshot()
		return m, nil
	}

	if m.keys.MapKeyToFrame(msg, &m.inputFrame) {
		m.quitting = true
		return m, tea.Quit
	}

	// Latch the flap right away so a press between two ticks is never lost.
	// Repeats of a held key only latch once.
	if action, _ := m.keys.MapKey(msg); action == core.ActionFlap {
		now := m.now()
		repeat := now.Sub(m.lastFlapKey) < flapRepeatWindow
		m.lastFlapKey = now
		if !m.paused && !m.gameOver && !m.Replay() {
			if !repeat {
				m.human.SetHeld(false)
			}
			m.human.SetHeld(true)
		}
	}
	return m, nil
}

// handleTick advances the simulation by one frame.
func (m Model) handleTick() (tea.Model, tea.Cmd) {
	switch {
	case m.gameOver:
		if m.inputFrame.Has(core.ActionRestart) {
			m.seed = time.Now().UnixNano()
			m.reset()
		}
	case m.inputFrame.Has(core.ActionPause):
		m.paused = !m.paused
	case !m.paused:
		if !m.loop.Step() {
			m.gameOver = true
			m.saveScore()
		}
	}

	// Clear input for next frame
	m.inputFrame.Clear()

	return m, tickCmd(m.opts.Config.FrameRate)
}

// saveScore records a finished human game once.
func (m *Model) saveScore() {
	if m.scoreSaved || m.Replay() {
		return
	}
	m.scoreSaved = true

	res := m.loop.Result()
	if res.Score > m.highScore {
		m.highScore = res.Score
	}
	if m.opts.Store == nil || res.Score == 0 {
		return
	}
	//nolint:errcheck // Best-effort save, the game continues regardless
	m.opts.Store.SaveScore(m.opts.Player, res.Score, res.Frames)
}

// saveScreenshot saves the current screen to ~/.flappy/screenshots.
func (m *Model) saveScreenshot() {
	m.draw()

	home, err := os.UserHomeDir()
	if err != nil {
		return
	}
	dir := filepath.Join(home, ".flappy", "screenshots")
	//nolint:errcheck // Best-effort directory creation
	os.MkdirAll(dir, 0o755)

	name := fmt.Sprintf("flappy_%s.txt", time.Now().Format("20060102_150405"))
	//nolint:errcheck // Best-effort save
	os.WriteFile(filepath.Join(dir, name), []byte(m.screen.String()), 0o600)
}

// draw renders the latest frame and the HUD into the screen buffer.
func (m Model) draw() {
	f := m.frames.last
	m.screen.Clear()
	RenderFrame(f, m.screen, hudRows)

	hud := fmt.Sprintf(" Score: %d  Best: %d  Frame: %d ", f.Score, max(m.highScore, f.Score), f.Number)
	if m.Replay() {
		hud = " REPLAY" + hud
	}
	m.screen.DrawTextColor(1, 0, hud, core.ColorCyan)

	switch {
	case m.gameOver:
		drawCenteredMessage(m.screen, "GAME OVER", fmt.Sprintf("Score: %d  |  R restart  Q quit", f.Score))
	case m.paused:
		drawCenteredMessage(m.screen, "PAUSED", "Press P to resume")
	}
}

// View renders the current state to a string for display.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	m.draw()
	return RenderScreen(m.screen)
}

// Run starts the Bubble Tea program with a new model.
func Run(opts Options) error {
	p := tea.NewProgram(NewModel(opts), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
