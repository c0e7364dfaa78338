// internal/httpserver/server.go
//
// HTTP server wiring for the Unscramble backend.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs, access log).
//   - Public endpoints: "/", "/health", "/debug/words", "/leaderboard".
//   - Game endpoints (optional auth): create, read, guess, skip, restart, exit, stream.
//   - Daily Challenge endpoints (optional auth): mounted under /daily.
//   - Auth + profile/stat endpoints: /auth/*, /stats/me, /games/mine.
//
// Notes:
//   - Sessions live in the in-memory store; only finished games reach the DB.
//   - Every session access goes through store.Update, which serializes it.
//   - Guests are tracked with an anonymous cookie and own their sessions too.

package httpserver

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog/hlog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/unscramble/internal/auth"
	"github.com/robalobadob/unscramble/internal/config"
	"github.com/robalobadob/unscramble/internal/daily"
	"github.com/robalobadob/unscramble/internal/game"
	"github.com/robalobadob/unscramble/internal/history"
	"github.com/robalobadob/unscramble/internal/store"
)

var (
	errNotOwner    = errors.New("not owner")
	errDailyLocked = errors.New("daily challenge cannot be restarted")
)

// Server bundles router, session store and persistence.
type Server struct {
	r       *chi.Mux
	cfg     config.Config
	words   []string
	store   store.Store
	users   *auth.Users
	history *history.Store
	daily   *daily.Store
	signer  *auth.Signer
	now     func() time.Time
}

// New constructs a Server, installs middleware, and registers routes.
func New(cfg config.Config, words []string, st store.Store, db *sql.DB) *Server {
	s := &Server{
		r:       chi.NewRouter(),
		cfg:     cfg,
		words:   words,
		store:   st,
		users:   auth.NewUsers(db),
		history: history.NewStore(db),
		daily:   daily.NewStore(db),
		signer:  auth.NewSigner(cfg.JWTSecret, cfg.JWTTTL),
		now:     time.Now,
	}

	// --- middleware ---
	s.r.Use(chimw.RequestID) // add X-Request-ID
	s.r.Use(chimw.RealIP)    // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(hlog.NewHandler(log.Logger))
	s.r.Use(hlog.AccessHandler(accessLog))
	s.r.Use(chimw.Recoverer)      // recover from panics
	s.r.Use(jsonContentType)      // default JSON responses
	s.r.Use(s.corsFromConfig)     // credentials-friendly CORS
	s.r.Use(s.withOptionalAuth()) // guests allowed everywhere; handlers decide

	// Long-lived websocket stream: no handler timeout.
	s.r.Get("/game/{id}/ws", s.handleStream)

	s.r.Group(func(r chi.Router) {
		r.Use(chimw.Timeout(10 * time.Second)) // bound handler time

		// --- diagnostics ---
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"service":"unscramble-go","endpoints":["/health","POST /game/new","POST /game/{id}/guess","POST /game/{id}/skip","/daily/*","/auth/*"]}`))
		})
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"ok":true}`))
		})
		r.Get("/debug/words", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]int{"words": len(s.words)})
		})

		r.Post("/game/new", s.handleNewGame)
		r.Route("/game/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetGame)
			r.Post("/guess", s.handleGuess)
			r.Post("/skip", s.handleSkip)
			r.Post("/restart", s.handleRestart)
			r.Delete("/", s.handleExit)
		})
		r.Get("/leaderboard", s.handleLeaderboard)

		s.mountDaily(r)
		s.mountAuthRoutes(r)
	})

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not_found", "path": r.URL.Path})
	})
	return s
}

// Start begins serving HTTP on addr.
func (s *Server) Start(addr string) error { return http.ListenAndServe(addr, s.r) }

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// ----------------------------- middleware ----------------------------------

func accessLog(r *http.Request, status, size int, dur time.Duration) {
	hlog.FromRequest(r).Info().
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Int("status", status).
		Int("size", size).
		Dur("dur", dur).
		Str("reqId", chimw.GetReqID(r.Context())).
		Msg("request")
}

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// corsFromConfig enables credentialed CORS for the configured client origin.
func (s *Server) corsFromConfig(next http.Handler) http.Handler {
	origin := s.cfg.ClientOrigin
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,DELETE,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ------------------------------ GAME ---------------------------------------

type newGameRes struct {
	GameID string        `json:"gameId"`
	Game   game.Snapshot `json:"game"`
}

type guessReq struct {
	Word string `json:"word"`
}

// handleNewGame starts a session owned by the caller.
func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	sess, err := game.New(game.Config{
		Words:         s.words,
		MaxRounds:     s.cfg.MaxRounds,
		ScoreIncrease: s.cfg.ScoreIncrease,
	})
	if err != nil {
		log.Error().Err(err).Msg("new session")
		writeError(w, http.StatusInternalServerError, "word_pool_misconfigured")
		return
	}
	e := s.newEntry(w, r, sess)
	snap := sess.Snapshot()
	if err := s.store.Save(r.Context(), e); err != nil {
		log.Error().Err(err).Msg("save session")
		writeError(w, http.StatusInternalServerError, "save_failed")
		return
	}
	writeJSON(w, http.StatusOK, newGameRes{GameID: sess.ID, Game: snap})
}

func (s *Server) newEntry(w http.ResponseWriter, r *http.Request, sess *game.Session) *store.Entry {
	e := &store.Entry{Session: sess, StartedAt: s.now()}
	if me := currentUser(r); me != nil {
		e.UserID = me.ID
	} else {
		e.AnonID = s.ensureAnonID(w, r)
	}
	return e
}

func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(e *store.Entry) (any, error) {
		return e.Session.Snapshot(), nil
	})
}

// handleGuess submits a guess; a correct one moves to the next word.
func (s *Server) handleGuess(w http.ResponseWriter, r *http.Request) {
	var req guessReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	word := strings.TrimSpace(req.Word)
	s.withSession(w, r, func(e *store.Entry) (any, error) {
		out, err := e.Session.Submit(word)
		if err != nil {
			return nil, err
		}
		s.finishIfDone(r.Context(), e, out)
		return out, nil
	})
}

// handleSkip moves on without scoring.
func (s *Server) handleSkip(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(e *store.Entry) (any, error) {
		out, err := e.Session.Skip()
		if err != nil {
			return nil, err
		}
		s.finishIfDone(r.Context(), e, out)
		return out, nil
	})
}

// handleRestart is "play again": the same session starts a fresh game.
func (s *Server) handleRestart(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(e *store.Entry) (any, error) {
		if e.DailyDate != "" {
			return nil, errDailyLocked
		}
		if err := e.Session.Reinitialize(); err != nil {
			return nil, err
		}
		e.Recorded = false
		e.StartedAt = s.now()
		return e.Session.Snapshot(), nil
	})
}

// handleExit destroys the session. Leaving a daily challenge forfeits it:
// the current score is recorded as the day's result.
func (s *Server) handleExit(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	err := s.store.Update(r.Context(), id, func(e *store.Entry) error {
		if err := s.checkOwner(r, e); err != nil {
			return err
		}
		if e.DailyDate != "" {
			s.recordResult(r.Context(), e, e.Session.Snapshot())
		}
		return nil
	})
	if err == nil {
		err = s.store.Delete(r.Context(), id)
	}
	if err != nil {
		s.writeGameError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// withSession loads the {id} session, checks ownership and runs fn under the entry lock.
func (s *Server) withSession(w http.ResponseWriter, r *http.Request, fn func(*store.Entry) (any, error)) {
	var res any
	err := s.store.Update(r.Context(), chi.URLParam(r, "id"), func(e *store.Entry) error {
		if err := s.checkOwner(r, e); err != nil {
			return err
		}
		var err error
		res, err = fn(e)
		return err
	})
	if err != nil {
		s.writeGameError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) checkOwner(r *http.Request, e *store.Entry) error {
	var userID string
	if me := currentUser(r); me != nil {
		userID = me.ID
	}
	if !e.OwnedBy(userID, anonCookie(r)) {
		return errNotOwner
	}
	return nil
}

func (s *Server) writeGameError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound), errors.Is(err, errNotOwner):
		writeError(w, http.StatusNotFound, "not_found")
	case errors.Is(err, game.ErrFinished):
		writeError(w, http.StatusConflict, "game_finished")
	case errors.Is(err, errDailyLocked):
		writeError(w, http.StatusConflict, "daily_locked")
	default:
		log.Error().Err(err).Msg("session operation")
		writeError(w, http.StatusInternalServerError, "internal")
	}
}

// finishIfDone records a finished game. Called with the entry lock held.
func (s *Server) finishIfDone(ctx context.Context, e *store.Entry, out game.Outcome) {
	if out.Finished {
		s.recordResult(ctx, e, out.Game)
	}
}

// recordResult persists snap as the entry's result once (best effort, non-fatal if it fails).
// Daily entries also get their one result for the day. Called with the entry lock held.
func (s *Server) recordResult(ctx context.Context, e *store.Entry, snap game.Snapshot) {
	if e.Recorded {
		return
	}
	e.Recorded = true
	finished := s.now()
	res := history.Result{
		GameID:     uuid.NewString(),
		UserID:     e.UserID,
		AnonID:     e.AnonID,
		Score:      snap.Score,
		Rounds:     snap.Round,
		MaxRounds:  snap.MaxRounds,
		DailyDate:  e.DailyDate,
		StartedAt:  e.StartedAt,
		FinishedAt: finished,
	}
	if err := s.history.Record(ctx, res); err != nil {
		log.Warn().Err(err).Str("session", e.ID()).Msg("record game")
	}
	if e.DailyDate == "" {
		return
	}
	owner := e.UserID
	if owner == "" {
		owner = e.AnonID
	}
	if err := s.daily.InsertResult(ctx, daily.Result{
		UserID:    owner,
		Date:      e.DailyDate,
		Score:     snap.Score,
		ElapsedMs: int(finished.Sub(e.StartedAt).Milliseconds()),
	}); err != nil {
		log.Warn().Err(err).Str("session", e.ID()).Msg("record daily result")
	}
}

// handleLeaderboard returns the best finished games by signed-in players.
func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	rows, err := s.history.Leaderboard(r.Context(), 20)
	if err != nil {
		log.Error().Err(err).Msg("leaderboard")
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"top": rows})
}

// ------------------------------- small util --------------------------------

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, map[string]string{"error": code})
}
