// main.go
//
// Unscramble HTTP server.
//   - Loads configuration (.env + environment) and sets the log level.
//   - Loads the word pool (WORDS_FILE or the embedded default) and checks
//     it can fill MAX_ROUNDS rounds.
//   - Opens SQLite and applies migrations.
//   - Runs a janitor that destroys idle sessions.
//   - Serves the API on PORT.

package main

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/unscramble/internal/config"
	"github.com/robalobadob/unscramble/internal/db"
	"github.com/robalobadob/unscramble/internal/game"
	"github.com/robalobadob/unscramble/internal/httpserver"
	"github.com/robalobadob/unscramble/internal/store"
	"github.com/robalobadob/unscramble/internal/words"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}
	zerolog.SetGlobalLevel(cfg.LogLevel)

	if err := words.Init(cfg.WordsFile); err != nil {
		log.Fatal().Err(err).Msg("failed to load word pool")
	}
	if err := game.CheckPool(words.List(), cfg.MaxRounds); err != nil {
		log.Fatal().Err(err).Int("maxRounds", cfg.MaxRounds).Msg("word pool cannot fill a game")
	}

	sqlDB, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("open db")
	}
	defer sqlDB.Close()
	if err := db.Migrate(sqlDB); err != nil {
		log.Fatal().Err(err).Msg("migrate")
	}

	mem := store.NewMemoryStore()
	go sweepIdle(context.Background(), mem, cfg.SessionIdle)

	srv := httpserver.New(cfg, words.List(), mem, sqlDB)
	log.Info().Str("port", cfg.Port).Int("words", words.Stats()).Msg("starting unscramble server")
	if err := srv.Start(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

// sweepIdle destroys sessions nobody has touched for maxIdle.
func sweepIdle(ctx context.Context, st store.Store, maxIdle time.Duration) {
	t := time.NewTicker(maxIdle / 4)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := st.Sweep(ctx, maxIdle); n > 0 {
				log.Info().Int("sessions", n).Msg("swept idle sessions")
			}
		}
	}
}
