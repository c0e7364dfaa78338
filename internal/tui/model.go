// Package tui is the terminal front end: one Session, one player.
//
// Keys while playing: letters build the guess, Backspace deletes, Enter
// submits, Tab skips. Once the last round is over a dialog shows the final
// score; r plays again, q or Esc exits.
package tui

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/unscramble/internal/game"
)

type screen int

const (
	screenPlaying screen = iota
	screenFinal
)

// Model is the bubbletea model wrapping a game.Session.
type Model struct {
	session *game.Session
	screen  screen
	guess   string
	wrong   bool // last submission missed
	status  string
	err     error
	w, h    int
}

// New returns a model playing s.
func New(s *game.Session) Model {
	return Model{session: s}
}

// Run starts a full-screen program and blocks until the player exits.
func Run(s *game.Session) error {
	_, err := tea.NewProgram(New(s), tea.WithAltScreen()).Run()
	return err
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.w, m.h = msg.Width, msg.Height
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.screen == screenFinal {
			return m.updateFinal(msg)
		}
		return m.updatePlaying(msg)
	}
	return m, nil
}

func (m Model) updatePlaying(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		if strings.TrimSpace(m.guess) == "" {
			return m, nil
		}
		out, err := m.session.Submit(m.guess)
		m.guess = ""
		return m.apply(out, err, true)
	case tea.KeyTab:
		m.guess = ""
		out, err := m.session.Skip()
		return m.apply(out, err, false)
	case tea.KeyBackspace:
		if r := []rune(m.guess); len(r) > 0 {
			m.guess = string(r[:len(r)-1])
		}
		return m, nil
	case tea.KeyEsc:
		return m, tea.Quit
	case tea.KeyRunes:
		for _, r := range msg.Runes {
			if unicode.IsLetter(r) {
				m.guess += string(r)
			}
		}
		m.wrong = false
	}
	return m, nil
}

func (m Model) updateFinal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "r", "R":
		if err := m.session.Reinitialize(); err != nil {
			m.err = err
			return m, nil
		}
		log.Debug().Str("session", m.session.ID).Msg("play again")
		m.screen = screenPlaying
		m.status = ""
		m.wrong = false
		return m, nil
	case "q", "Q", "esc":
		return m, tea.Quit
	}
	return m, nil
}

// apply folds an action's outcome into the view state.
func (m Model) apply(out game.Outcome, err error, submitted bool) (tea.Model, tea.Cmd) {
	if err != nil && !errors.Is(err, game.ErrFinished) {
		log.Error().Err(err).Msg("session")
		m.err = err
		return m, nil
	}
	m.wrong = submitted && !out.Correct && !out.Finished
	switch {
	case out.Correct:
		m.status = fmt.Sprintf("Correct! +%d", out.Game.ScoreIncrease)
	case m.wrong:
		m.status = "Wrong guess! Try again."
	default:
		m.status = ""
	}
	if out.Finished {
		log.Info().Int("score", out.Game.Score).Msg("game over")
		m.screen = screenFinal
	}
	return m, nil
}

func (m Model) View() string {
	if m.err != nil {
		return errStyle.Render("error: "+m.err.Error()) + "\n" + hintStyle.Render("ctrl+c to quit") + "\n"
	}
	snap := m.session.Snapshot()
	if m.screen == screenFinal {
		return viewFinal(snap)
	}
	return viewPlaying(snap, m.guess, m.status, m.wrong)
}
