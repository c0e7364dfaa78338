package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/robalobadob/unscramble/internal/game"
)

var (
	clrBorder = lipgloss.Color("#30363d")
	clrSubtle = lipgloss.Color("#8b949e")
	clrTitle  = lipgloss.Color("#58a6ff")
	clrGreen  = lipgloss.Color("#3fb950")
	clrRed    = lipgloss.Color("#f85149")
	clrGold   = lipgloss.Color("#e3b341")

	titleStyle   = lipgloss.NewStyle().Foreground(clrTitle).Bold(true)
	wordStyle    = lipgloss.NewStyle().Foreground(clrGold).Bold(true).Padding(1, 2)
	hintStyle    = lipgloss.NewStyle().Foreground(clrSubtle)
	okStyle      = lipgloss.NewStyle().Foreground(clrGreen)
	errStyle     = lipgloss.NewStyle().Foreground(clrRed)
	inputStyle   = lipgloss.NewStyle().Border(lipgloss.NormalBorder()).BorderForeground(clrBorder).Width(24).Padding(0, 1)
	inputErr     = inputStyle.BorderForeground(clrRed)
	dialogStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(clrGold).Padding(1, 3)
	counterStyle = lipgloss.NewStyle().Foreground(clrSubtle).Background(lipgloss.Color("#161b22")).Padding(0, 1)
)

func viewPlaying(snap game.Snapshot, guess, status string, wrong bool) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Unscramble"))
	b.WriteString("\n\n")
	b.WriteString(counterStyle.Render(fmt.Sprintf("%d/%d", snap.Round, snap.MaxRounds)))
	b.WriteString("\n")
	b.WriteString(wordStyle.Render(snap.Spelled))
	b.WriteString("\n")
	b.WriteString(hintStyle.Render("Unscramble the word using all the letters."))
	b.WriteString("\n")

	box := inputStyle
	if wrong {
		box = inputErr
	}
	b.WriteString(box.Render(guess + "_"))
	b.WriteString("\n")
	switch {
	case wrong:
		b.WriteString(errStyle.Render(status))
	case status != "":
		b.WriteString(okStyle.Render(status))
	}
	b.WriteString("\n\n")
	b.WriteString(fmt.Sprintf("Score: %d\n\n", snap.Score))
	b.WriteString(hintStyle.Render("enter submit • tab skip • esc quit"))
	b.WriteString("\n")
	return b.String()
}

func viewFinal(snap game.Snapshot) string {
	body := lipgloss.JoinVertical(lipgloss.Center,
		titleStyle.Render("Congratulations!"),
		"",
		fmt.Sprintf("You scored: %d", snap.Score),
		"",
		hintStyle.Render("r play again • q exit"),
	)
	return dialogStyle.Render(body) + "\n"
}
