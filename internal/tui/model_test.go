package tui

import (
	"math/rand/v2"
	"sort"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/robalobadob/unscramble/internal/game"
)

var pool = []string{"planet", "orange", "bridge", "candle", "forest"}

func newModel(t *testing.T, rounds int) Model {
	t.Helper()
	s, err := game.New(game.Config{Words: pool, MaxRounds: rounds, Rand: rand.New(rand.NewPCG(3, 5))})
	if err != nil {
		t.Fatalf("game.New: %v", err)
	}
	return New(s)
}

func press(t *testing.T, m Model, msgs ...tea.KeyMsg) (Model, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, msg := range msgs {
		var next tea.Model
		next, cmd = m.Update(msg)
		m = next.(Model)
	}
	return m, cmd
}

func typed(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

var (
	enter     = tea.KeyMsg{Type: tea.KeyEnter}
	tab       = tea.KeyMsg{Type: tea.KeyTab}
	backspace = tea.KeyMsg{Type: tea.KeyBackspace}
)

func answer(t *testing.T, m Model) string {
	t.Helper()
	sorted := func(s string) string {
		r := strings.Split(s, "")
		sort.Strings(r)
		return strings.Join(r, "")
	}
	for _, w := range pool {
		if sorted(w) == sorted(m.session.Scrambled()) {
			return w
		}
	}
	t.Fatalf("no answer for %q", m.session.Scrambled())
	return ""
}

func isQuit(cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}
	_, ok := cmd().(tea.QuitMsg)
	return ok
}

func TestTypingAndBackspace(t *testing.T) {
	m := newModel(t, 3)
	m, _ = press(t, m, typed("ab"), typed("1"), typed("c"), backspace)
	if m.guess != "ab" {
		t.Fatalf("guess = %q, want ab", m.guess)
	}
}

func TestWrongGuessFlagsInput(t *testing.T) {
	m := newModel(t, 3)
	m, _ = press(t, m, typed("zzzz"), enter)
	if !m.wrong || m.session.RoundCount() != 1 || m.guess != "" {
		t.Fatalf("after wrong guess: wrong=%v round=%d guess=%q", m.wrong, m.session.RoundCount(), m.guess)
	}
	if !strings.Contains(m.View(), "Wrong guess") {
		t.Fatalf("view does not report the wrong guess")
	}
	m, _ = press(t, m, typed("a"))
	if m.wrong {
		t.Fatalf("typing should clear the error state")
	}
}

func TestCorrectGuessScoresAndAdvances(t *testing.T) {
	m := newModel(t, 3)
	m, _ = press(t, m, typed(strings.ToUpper(answer(t, m))), enter)
	if m.session.Score() != game.DefaultScoreIncrease || m.session.RoundCount() != 2 {
		t.Fatalf("score=%d round=%d", m.session.Score(), m.session.RoundCount())
	}
	if m.wrong {
		t.Fatalf("correct guess flagged as wrong")
	}
}

func TestEmptyEnterIsIgnored(t *testing.T) {
	m := newModel(t, 3)
	m, _ = press(t, m, enter)
	if m.wrong || m.session.RoundCount() != 1 {
		t.Fatalf("empty submit changed state")
	}
}

func TestFinalDialogPlayAgainAndQuit(t *testing.T) {
	m := newModel(t, 2)
	m, _ = press(t, m, tab, tab)
	if m.screen != screenFinal {
		t.Fatalf("screen = %v, want final", m.screen)
	}
	if !strings.Contains(m.View(), "You scored: 0") {
		t.Fatalf("final view = %q", m.View())
	}

	m, cmd := press(t, m, typed("x"))
	if m.screen != screenFinal || cmd != nil {
		t.Fatalf("unrelated key left the dialog")
	}

	m, _ = press(t, m, typed("r"))
	if m.screen != screenPlaying || m.session.RoundCount() != 1 || m.session.Score() != 0 {
		t.Fatalf("play again: screen=%v round=%d", m.screen, m.session.RoundCount())
	}

	m, _ = press(t, m, tab, tab)
	if _, cmd = press(t, m, typed("q")); !isQuit(cmd) {
		t.Fatalf("q did not quit")
	}
}

func TestCtrlCQuitsAnywhere(t *testing.T) {
	m := newModel(t, 3)
	if _, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyCtrlC}); !isQuit(cmd) {
		t.Fatalf("ctrl+c did not quit")
	}
}
