// internal/history/history.go
//
// Persistence of completed games.
// Responsibilities:
//   - Record a finished game once, for a user or a guest.
//   - Bump the user's games_played / total_score / best_score in the same tx.
//   - Recent games per user, all-time leaderboard.
//   - Move guest history to an account after signup/login.

package history

import (
	"context"
	"database/sql"
	"time"
)

// Result is one finished game.
type Result struct {
	GameID     string    `json:"id"`
	UserID     string    `json:"-"`
	AnonID     string    `json:"-"`
	Score      int       `json:"score"`
	Rounds     int       `json:"rounds"`
	MaxRounds  int       `json:"maxRounds"`
	DailyDate  string    `json:"dailyDate,omitempty"`
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`
}

// LBRow is a leaderboard line.
type LBRow struct {
	Username   string    `json:"username"`
	Score      int       `json:"score"`
	FinishedAt time.Time `json:"finishedAt"`
}

type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

// Record inserts r and, for signed-in players, updates their stats.
// Replaying a game ID is a no-op.
func (s *Store) Record(ctx context.Context, r Result) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `
        INSERT OR IGNORE INTO games
            (id, user_id, anonymous_id, score, rounds, max_rounds, daily_date, started_at, finished_at)
        VALUES (?,?,?,?,?,?,?,?,?)`,
		r.GameID, nullable(r.UserID), nullable(r.AnonID), r.Score, r.Rounds, r.MaxRounds,
		nullable(r.DailyDate), r.StartedAt.UTC().Format(time.RFC3339), r.FinishedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return tx.Commit()
	}

	if r.UserID != "" {
		if _, err := tx.ExecContext(ctx, `
            UPDATE users
               SET games_played = games_played + 1,
                   total_score  = total_score + ?,
                   best_score   = MAX(best_score, ?)
             WHERE id = ?`, r.Score, r.Score, r.UserID); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// ForUser returns the user's most recent games, newest first.
func (s *Store) ForUser(ctx context.Context, userID string, limit int) ([]Result, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
        SELECT id, score, rounds, max_rounds, COALESCE(daily_date,''), started_at, finished_at
        FROM games WHERE user_id=?
        ORDER BY finished_at DESC LIMIT ?`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Result{}
	for rows.Next() {
		var r Result
		var started, finished string
		if err := rows.Scan(&r.GameID, &r.Score, &r.Rounds, &r.MaxRounds, &r.DailyDate, &started, &finished); err != nil {
			return nil, err
		}
		r.UserID = userID
		r.StartedAt = mustParse(started)
		r.FinishedAt = mustParse(finished)
		out = append(out, r)
	}
	return out, rows.Err()
}

// Leaderboard returns the best scores by signed-in players.
// Ordered by score DESC, then earliest finish.
func (s *Store) Leaderboard(ctx context.Context, limit int) ([]LBRow, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
        SELECT u.username, g.score, g.finished_at
        FROM games g JOIN users u ON u.id = g.user_id
        ORDER BY g.score DESC, g.finished_at ASC
        LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]LBRow, 0, limit)
	for rows.Next() {
		var r LBRow
		var finished string
		if err := rows.Scan(&r.Username, &r.Score, &finished); err != nil {
			return nil, err
		}
		r.FinishedAt = mustParse(finished)
		out = append(out, r)
	}
	return out, rows.Err()
}

// ClaimAnon transfers guest games to a user account and folds them into the user's stats.
func (s *Store) ClaimAnon(ctx context.Context, anonID, userID string) error {
	if anonID == "" || userID == "" {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var n, total, best int
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(1), COALESCE(SUM(score),0), COALESCE(MAX(score),0) FROM games WHERE anonymous_id=?`,
		anonID).Scan(&n, &total, &best); err != nil {
		return err
	}
	if n == 0 {
		return nil
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE games SET user_id=?, anonymous_id=NULL WHERE anonymous_id=?`, userID, anonID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `
        UPDATE users
           SET games_played = games_played + ?,
               total_score  = total_score + ?,
               best_score   = MAX(best_score, ?)
         WHERE id = ?`, n, total, best, userID); err != nil {
		return err
	}
	return tx.Commit()
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// mustParse parses RFC3339 timestamps; on error returns zero time.
func mustParse(s string) time.Time {
	t, _ := time.Parse(time.RFC3339, s)
	return t
}
