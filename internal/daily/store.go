package daily

import (
	"context"
	"database/sql"
)

// Result is one owner's finished daily challenge.
type Result struct {
	UserID    string `json:"-"`
	Date      string `json:"date"`
	Score     int    `json:"score"`
	ElapsedMs int    `json:"elapsedMs"`
}

// LBRow is a daily leaderboard line; guests show up as "guest".
type LBRow struct {
	Username  string `json:"username"`
	Score     int    `json:"score"`
	ElapsedMs int    `json:"elapsedMs"`
}

type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

// AlreadyPlayed reports whether userID has a result for date.
func (s *Store) AlreadyPlayed(ctx context.Context, userID, date string) (bool, error) {
	var cnt int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM daily_results WHERE user_id=? AND date=?",
		userID, date,
	).Scan(&cnt)
	return cnt > 0, err
}

// InsertResult stores r; a second result for the same owner and date is ignored.
func (s *Store) InsertResult(ctx context.Context, r Result) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO daily_results(user_id, date, score, elapsed_ms)
         VALUES(?,?,?,?)`, r.UserID, r.Date, r.Score, r.ElapsedMs,
	)
	return err
}

// ClaimAnon moves a guest's daily results to userID. Where the user already
// has a result for the same date, theirs is kept and the guest row dropped.
func (s *Store) ClaimAnon(ctx context.Context, anonID, userID string) error {
	if anonID == "" || userID == "" {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`UPDATE OR IGNORE daily_results SET user_id=? WHERE user_id=?`, userID, anonID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM daily_results WHERE user_id=?`, anonID); err != nil {
		return err
	}
	return tx.Commit()
}

// Leaderboard returns the top results for date.
// Ordered by score DESC, then elapsed ASC, then submission time.
func (s *Store) Leaderboard(ctx context.Context, date string, limit int) ([]LBRow, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT COALESCE(u.username, 'guest'), d.score, d.elapsed_ms
         FROM daily_results d LEFT JOIN users u ON u.id = d.user_id
         WHERE d.date=?
         ORDER BY d.score DESC, d.elapsed_ms ASC, d.created_at ASC
         LIMIT ?`, date, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []LBRow{}
	for rows.Next() {
		var r LBRow
		if err := rows.Scan(&r.Username, &r.Score, &r.ElapsedMs); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
