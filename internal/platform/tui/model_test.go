package tui

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/flappy-arena/internal/config"
	"github.com/vovakirdan/flappy-arena/internal/storage"
)

// silentPolicy never flaps.
type silentPolicy struct{}

func (silentPolicy) Activate([]float64) float64 { return 0 }

func testOptions() Options {
	cfg := config.DefaultConfig()
	cfg.Seed = 1
	return Options{Config: cfg, Player: "tester", Width: 80, Height: 24}
}

func send(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	nm, ok := next.(Model)
	if !ok {
		t.Fatalf("Update() returned %T, expected Model", next)
	}
	return nm
}

func tick(t *testing.T, m Model, n int) Model {
	t.Helper()
	for range n {
		m = send(t, m, TickMsg{})
	}
	return m
}

func TestModelTickAdvancesFrame(t *testing.T) {
	m := NewModel(testOptions())
	if got := m.Frame().Number; got != 0 {
		t.Fatalf("initial frame = %d, expected 0", got)
	}

	m = tick(t, m, 3)
	if got := m.Frame().Number; got != 3 {
		t.Errorf("frame after 3 ticks = %d, expected 3", got)
	}
}

func TestModelGameOverWithoutInput(t *testing.T) {
	// A bird that never flaps leaves the field on frame 38.
	m := NewModel(testOptions())

	m = tick(t, m, 37)
	if m.GameOver() {
		t.Fatal("game over after 37 ticks, expected it to still run")
	}

	m = tick(t, m, 1)
	if !m.GameOver() {
		t.Fatal("expected game over after 38 ticks")
	}
	if !strings.Contains(m.View(), "GAME OVER") {
		t.Error("View() should show the game over message")
	}

	// Further ticks keep the final frame.
	m = tick(t, m, 5)
	if got := m.Frame().Number; got != 38 {
		t.Errorf("frame after game over = %d, expected 38", got)
	}
}

func TestModelFlapKey(t *testing.T) {
	plain := tick(t, NewModel(testOptions()), 1)

	m := NewModel(testOptions())
	m = send(t, m, tea.KeyMsg{Type: tea.KeySpace})
	m = tick(t, m, 1)

	flapped := m.Frame().Agents[0]
	fell := plain.Frame().Agents[0]
	if flapped.Y >= fell.Y {
		t.Errorf("flapped Y = %v, expected above %v", flapped.Y, fell.Y)
	}
	if flapped.Velocity != -9.5 {
		t.Errorf("velocity after flap = %v, expected -9.5", flapped.Velocity)
	}

	// The press is consumed by one frame.
	m = tick(t, m, 1)
	if v := m.Frame().Agents[0].Velocity; v != -9 {
		t.Errorf("velocity one frame later = %v, expected -9", v)
	}
}

func TestModelPause(t *testing.T) {
	m := tick(t, NewModel(testOptions()), 2)

	m = send(t, m, runeKey('p'))
	m = tick(t, m, 1)
	if !m.Paused() {
		t.Fatal("expected model to be paused")
	}

	m = tick(t, m, 10)
	if got := m.Frame().Number; got != 2 {
		t.Errorf("frame while paused = %d, expected 2", got)
	}
	if !strings.Contains(m.View(), "PAUSED") {
		t.Error("View() should show the pause message")
	}

	// Flaps are ignored while paused.
	m = send(t, m, tea.KeyMsg{Type: tea.KeySpace})
	m = send(t, m, runeKey('p'))
	m = tick(t, m, 1)
	if m.Paused() {
		t.Fatal("expected model to resume")
	}
	m = tick(t, m, 1)
	if v := m.Frame().Agents[0].Velocity; v <= 0 {
		t.Errorf("velocity after resume = %v, expected the bird to keep falling", v)
	}
}

func TestModelRestart(t *testing.T) {
	m := tick(t, NewModel(testOptions()), 38)
	if !m.GameOver() {
		t.Fatal("expected game over")
	}

	m = send(t, m, runeKey('r'))
	m = tick(t, m, 1)
	if m.GameOver() {
		t.Error("expected a new game after restart")
	}
	if got := m.Frame().Number; got != 0 {
		t.Errorf("frame after restart = %d, expected 0", got)
	}
	if got := m.Frame().Alive(); got != 1 {
		t.Errorf("live agents after restart = %d, expected 1", got)
	}
}

func TestModelRestartIgnoredWhileRunning(t *testing.T) {
	m := tick(t, NewModel(testOptions()), 5)
	m = send(t, m, runeKey('r'))
	m = tick(t, m, 1)
	if got := m.Frame().Number; got != 6 {
		t.Errorf("frame = %d, expected 6", got)
	}
}

func TestModelQuit(t *testing.T) {
	m := NewModel(testOptions())
	next, cmd := m.Update(runeKey('q'))
	if cmd == nil {
		t.Fatal("expected a quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Errorf("quit command returned %T, expected tea.QuitMsg", cmd())
	}
	if v := next.View(); v != "" {
		t.Errorf("View() after quit = %q, expected empty", v)
	}
}

func TestModelReplay(t *testing.T) {
	opts := testOptions()
	opts.Policy = silentPolicy{}
	m := NewModel(opts)
	if !m.Replay() {
		t.Fatal("expected replay mode")
	}

	// Keyboard flaps do not reach the policy-driven bird.
	m = send(t, m, tea.KeyMsg{Type: tea.KeySpace})
	m = tick(t, m, 1)
	if v := m.Frame().Agents[0].Velocity; v != 0.5 {
		t.Errorf("velocity = %v, expected 0.5", v)
	}
	if !strings.Contains(m.View(), "REPLAY") {
		t.Error("View() should mark the replay")
	}

	m = tick(t, m, 37)
	if !m.GameOver() {
		t.Error("expected the silent policy to end after 38 frames")
	}
}

func TestModelLoadsHighScore(t *testing.T) {
	store, err := storage.Open(filepath.Join(t.TempDir(), "scores.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer store.Close()

	if _, err := store.SaveScore("someone", 7, 900); err != nil {
		t.Fatalf("SaveScore() error = %v", err)
	}

	opts := testOptions()
	opts.Store = store
	m := NewModel(opts)
	if !strings.Contains(m.View(), "Best: 7") {
		t.Error("View() should show the stored high score")
	}

	// A zero-score game is not recorded.
	m = tick(t, m, 38)
	if !m.GameOver() {
		t.Fatal("expected game over")
	}
	stats, err := store.Stats()
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if stats.GamesCount != 1 {
		t.Errorf("GamesCount = %d, expected 1", stats.GamesCount)
	}
}

func TestModelWindowResize(t *testing.T) {
	m := NewModel(testOptions())
	m = send(t, m, tea.WindowSizeMsg{Width: 40, Height: 12})

	lines := strings.Split(m.View(), "\n")
	if len(lines) != 12 {
		t.Errorf("View() has %d lines, expected 12", len(lines))
	}
}

// fakeClock lets tests decide how far apart key messages arrive.
type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func TestModelHeldFlapKeyFlapsOnce(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1000, 0)}
	m := NewModel(testOptions())
	m.now = clock.now

	// Auto-repeat delivers a key every 30ms while the key stays down.
	for range 6 {
		m = send(t, m, tea.KeyMsg{Type: tea.KeySpace})
		m = tick(t, m, 1)
		clock.advance(30 * time.Millisecond)
	}
	if v := m.Frame().Agents[0].Velocity; v != -7 {
		t.Errorf("velocity after holding the key 6 frames = %v, expected -7 (one flap)", v)
	}

	// Releasing and pressing again flaps again.
	clock.advance(300 * time.Millisecond)
	m = send(t, m, tea.KeyMsg{Type: tea.KeySpace})
	m = tick(t, m, 1)
	if v := m.Frame().Agents[0].Velocity; v != -9.5 {
		t.Errorf("velocity after a new press = %v, expected -9.5", v)
	}
}

func TestModelTappedFlapKeyFlapsEachTime(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1000, 0)}
	m := NewModel(testOptions())
	m.now = clock.now

	m = send(t, m, tea.KeyMsg{Type: tea.KeySpace})
	m = tick(t, m, 1)
	clock.advance(200 * time.Millisecond)
	m = send(t, m, tea.KeyMsg{Type: tea.KeySpace})
	m = tick(t, m, 1)

	if v := m.Frame().Agents[0].Velocity; v != -9.5 {
		t.Errorf("velocity after second tap = %v, expected -9.5", v)
	}
}
