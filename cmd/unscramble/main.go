// cmd/unscramble
//
// Terminal client: plays one Unscramble session locally.
// Logs go to UNSCRAMBLE_LOG when set; otherwise they are discarded so the
// screen stays clean.

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/unscramble/internal/config"
	"github.com/robalobadob/unscramble/internal/game"
	"github.com/robalobadob/unscramble/internal/tui"
	"github.com/robalobadob/unscramble/internal/words"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "unscramble:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	var out io.Writer = io.Discard
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open log: %w", err)
		}
		defer f.Close()
		out = f
	}
	log.Logger = zerolog.New(out).With().Timestamp().Logger()
	zerolog.SetGlobalLevel(cfg.LogLevel)

	pool, err := words.Load(cfg.WordsFile)
	if err != nil {
		return err
	}
	s, err := game.New(game.Config{
		Words:         pool,
		MaxRounds:     cfg.MaxRounds,
		ScoreIncrease: cfg.ScoreIncrease,
	})
	if err != nil {
		return err
	}
	log.Info().Str("session", s.ID).Int("words", len(pool)).Msg("terminal game started")
	return tui.Run(s)
}
