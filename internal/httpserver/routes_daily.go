// internal/httpserver/routes_daily.go
//
// HTTP routes for the "Daily Challenge" mode.
//   - POST /daily/new         → start today's daily game (creates or reuses session)
//   - GET  /daily/leaderboard → top 20 results for today (or ?date=YYYY-MM-DD)
//
// Every player gets the same word sequence for a given date: the session's
// RNG is seeded from date + DAILY_SALT. Guesses and skips go through the
// regular /game/{id} endpoints; the result is persisted when the game ends
// or is exited. One result per player per day (enforced by the
// daily_results table, and by refusing to replace a session that went away).

package httpserver

import (
	"errors"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/unscramble/internal/daily"
	"github.com/robalobadob/unscramble/internal/game"
	"github.com/robalobadob/unscramble/internal/store"
)

// dailyServer tracks which in-memory session belongs to which player today.
type dailyServer struct {
	srv      *Server
	sessions map[string]string // owner|date -> session id
	mu       sync.Mutex        // guards sessions
}

// mountDaily registers all /daily routes.
func (s *Server) mountDaily(r chi.Router) {
	dd := &dailyServer{srv: s, sessions: make(map[string]string)}
	r.Route("/daily", func(r chi.Router) {
		r.Post("/new", dd.handleNew)
		r.Get("/leaderboard", dd.handleLeaderboard)
	})
}

// newRes is returned by /daily/new.
type newRes struct {
	GameID string         `json:"gameId"`
	Date   string         `json:"date"`
	Played bool           `json:"played"`
	Game   *game.Snapshot `json:"game,omitempty"`
}

// owners returns every identity the caller plays under: the signed-in user
// and, if present, the guest cookie (setting one for new guests). The first
// one owns new sessions.
func (d *dailyServer) owners(w http.ResponseWriter, r *http.Request) []string {
	me := currentUser(r)
	if me == nil {
		return []string{d.srv.ensureAnonID(w, r)}
	}
	if anon := anonCookie(r); anon != "" {
		return []string{me.ID, anon}
	}
	return []string{me.ID}
}

// handleNew creates or reuses today's daily session.
//   - A persisted result for today under any of the caller's identities → Played=true.
//   - A live session from an earlier call → same GameID.
//   - A session that vanished without being exited (idle sweep) → forfeited, Played=true.
//   - Otherwise a fresh session seeded for today.
func (d *dailyServer) handleNew(w http.ResponseWriter, r *http.Request) {
	s := d.srv
	ids := d.owners(w, r)
	now := s.now()
	date := daily.DateKey(now)

	for _, id := range ids {
		played, err := s.daily.AlreadyPlayed(r.Context(), id, date)
		if err != nil {
			log.Error().Err(err).Msg("daily already played")
			writeError(w, http.StatusInternalServerError, "db_error")
			return
		}
		if played {
			writeJSON(w, http.StatusOK, newRes{Date: date, Played: true})
			return
		}
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	for _, id := range ids {
		gameID, ok := d.sessions[id+"|"+date]
		if !ok {
			continue
		}
		var snap game.Snapshot
		err := s.store.Update(r.Context(), gameID, func(e *store.Entry) error {
			snap = e.Session.Snapshot()
			return nil
		})
		switch {
		case err == nil:
			writeJSON(w, http.StatusOK, newRes{GameID: gameID, Date: date, Game: &snap})
		case errors.Is(err, store.ErrNotFound):
			writeJSON(w, http.StatusOK, newRes{Date: date, Played: true})
		default:
			s.writeGameError(w, err)
		}
		return
	}

	sess, err := game.New(game.Config{
		Words:         s.words,
		MaxRounds:     s.cfg.MaxRounds,
		ScoreIncrease: s.cfg.ScoreIncrease,
		Rand:          daily.NewRand(now, s.cfg.DailySalt),
	})
	if err != nil {
		log.Error().Err(err).Msg("new daily session")
		writeError(w, http.StatusInternalServerError, "word_pool_misconfigured")
		return
	}
	e := s.newEntry(w, r, sess)
	e.DailyDate = date
	snap := sess.Snapshot()
	if err := s.store.Save(r.Context(), e); err != nil {
		log.Error().Err(err).Msg("save daily session")
		writeError(w, http.StatusInternalServerError, "save_failed")
		return
	}
	d.sessions[ids[0]+"|"+date] = sess.ID
	log.Debug().Str("session", sess.ID).Str("date", date).Msg("daily session started")
	writeJSON(w, http.StatusOK, newRes{GameID: sess.ID, Date: date, Game: &snap})
}

// lbRes is returned by /daily/leaderboard.
type lbRes struct {
	Date string        `json:"date"`
	Top  []daily.LBRow `json:"top"`
}

// handleLeaderboard returns the leaderboard for the given date (default today).
func (d *dailyServer) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		date = daily.DateKey(d.srv.now())
	}
	rows, err := d.srv.daily.Leaderboard(r.Context(), date, 20)
	if err != nil {
		log.Error().Err(err).Msg("daily leaderboard")
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	writeJSON(w, http.StatusOK, lbRes{Date: date, Top: rows})
}
