// internal/httpserver/routes_auth.go
//
// Accounts, tokens and guest identity.
//   - POST /auth/signup, /auth/login, /auth/logout
//   - GET  /auth/me, /stats/me, /games/mine (require auth)
//
// Signing up or logging in claims the caller's guest history.

package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/unscramble/internal/auth"
)

const anonCookieName = "unscramble_anon"

type credentialsReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// ctxUserKey is the context key type for storing the caller's claims.
type ctxUserKey struct{}

// currentUser returns the signed-in caller or nil for guests.
func currentUser(r *http.Request) *auth.Claims {
	c, _ := r.Context().Value(ctxUserKey{}).(*auth.Claims)
	return c
}

// mountAuthRoutes registers authentication + gated routes.
func (s *Server) mountAuthRoutes(r chi.Router) {
	r.Post("/auth/signup", s.handleSignup)
	r.Post("/auth/login", s.handleLogin)
	r.Post("/auth/logout", s.handleLogout)

	r.Group(func(r chi.Router) {
		r.Use(requireAuth)

		r.Get("/auth/me", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, currentUser(r))
		})

		r.Get("/stats/me", func(w http.ResponseWriter, r *http.Request) {
			u, err := s.users.ByID(r.Context(), currentUser(r).ID)
			if err != nil {
				writeError(w, http.StatusInternalServerError, "not_found")
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{
				"id":          u.ID,
				"gamesPlayed": u.GamesPlayed,
				"totalScore":  u.TotalScore,
				"bestScore":   u.BestScore,
			})
		})

		r.Get("/games/mine", func(w http.ResponseWriter, r *http.Request) {
			rows, err := s.history.ForUser(r.Context(), currentUser(r).ID, 50)
			if err != nil {
				log.Error().Err(err).Msg("games/mine")
				writeError(w, http.StatusInternalServerError, "db_error")
				return
			}
			writeJSON(w, http.StatusOK, rows)
		})
	})
}

// handleSignup creates a new user, signs a JWT, sets auth cookie, and claims guest history.
func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var body credentialsReq
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	u, err := s.users.Create(r.Context(), body.Username, body.Password)
	if err != nil {
		if errors.Is(err, auth.ErrUsernameTaken) {
			writeError(w, http.StatusConflict, "Username taken")
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !s.issueToken(w, u.ID, u.Username) {
		return
	}
	s.claimAnonGames(r.Context(), anonCookie(r), u.ID)
	writeJSON(w, http.StatusOK, map[string]any{"id": u.ID, "username": u.Username, "createdAt": u.CreatedAt})
}

// handleLogin authenticates user, sets cookie, and claims guest history.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body credentialsReq
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	u, err := s.users.Authenticate(r.Context(), body.Username, body.Password)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Invalid username or password")
		return
	}
	if !s.issueToken(w, u.ID, u.Username) {
		return
	}
	s.claimAnonGames(r.Context(), anonCookie(r), u.ID)
	writeJSON(w, http.StatusOK, map[string]any{"id": u.ID, "username": u.Username})
}

// handleLogout clears the auth cookie.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.setCookie(w, s.cfg.CookieName, "", time.Time{}, -1)
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) issueToken(w http.ResponseWriter, id, username string) bool {
	tok, exp, err := s.signer.Sign(id, username)
	if err != nil {
		log.Error().Err(err).Msg("sign token")
		writeError(w, http.StatusInternalServerError, "sign_failed")
		return false
	}
	s.setCookie(w, s.cfg.CookieName, tok, exp, 0)
	w.Header().Set("X-Auth-Token", tok)
	return true
}

// claimAnonGames transfers guest results (games and daily results) to a user account after auth.
func (s *Server) claimAnonGames(ctx context.Context, anonID, userID string) {
	if err := s.history.ClaimAnon(ctx, anonID, userID); err != nil {
		log.Warn().Err(err).Msg("claim anon games")
	}
	if err := s.daily.ClaimAnon(ctx, anonID, userID); err != nil {
		log.Warn().Err(err).Msg("claim anon daily results")
	}
}

// --------------------------- optional auth ---------------------------------

// withOptionalAuth decorates requests with the caller's claims if a valid JWT is present.
// It never 401s; used for routes where guests are allowed.
func (s *Server) withOptionalAuth() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if tok := auth.BearerOrCookie(r, s.cfg.CookieName); tok != "" {
				if c, err := s.signer.Parse(tok); err == nil {
					if _, err := s.users.ByID(r.Context(), c.ID); err == nil {
						r = r.WithContext(context.WithValue(r.Context(), ctxUserKey{}, &c))
					}
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// requireAuth rejects callers withOptionalAuth did not identify.
func requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if currentUser(r) == nil {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ensureAnonID returns an existing guest cookie or sets a new one.
func (s *Server) ensureAnonID(w http.ResponseWriter, r *http.Request) string {
	if id := anonCookie(r); id != "" {
		return id
	}
	id := uuid.NewString()
	s.setCookie(w, anonCookieName, id, s.now().Add(180*24*time.Hour), 0)
	return id
}

func anonCookie(r *http.Request) string {
	if c, err := r.Cookie(anonCookieName); err == nil {
		return c.Value
	}
	return ""
}

// setCookie writes an HttpOnly cookie; production requires Secure + SameSite=None.
func (s *Server) setCookie(w http.ResponseWriter, name, value string, exp time.Time, maxAge int) {
	sameSite := http.SameSiteLaxMode
	if s.cfg.Production {
		sameSite = http.SameSiteNoneMode // required for third-party contexts when Secure
	}
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.cfg.Production,
		SameSite: sameSite,
		Expires:  exp,
		MaxAge:   maxAge,
	})
}
