package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"
)

// User matches the users table shape.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	GamesPlayed  int       `json:"gamesPlayed"`
	TotalScore   int       `json:"totalScore"`
	BestScore    int       `json:"bestScore"`
}

// Users is the SQLite-backed account repository.
type Users struct{ db *sql.DB }

func NewUsers(db *sql.DB) *Users { return &Users{db: db} }

// Create validates input, checks uniqueness, hashes password, and inserts a new user.
func (u *Users) Create(ctx context.Context, username, pw string) (*User, error) {
	username = NormalizeUsername(username)
	if err := ValidateSignup(username, pw); err != nil {
		return nil, err
	}
	var exists int
	err := u.db.QueryRowContext(ctx, `SELECT 1 FROM users WHERE lower(username)=lower(?)`, username).Scan(&exists)
	switch {
	case err == nil:
		return nil, ErrUsernameTaken
	case !errors.Is(err, sql.ErrNoRows):
		return nil, fmt.Errorf("check username: %w", err)
	}
	h, err := HashPassword(pw)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC().Truncate(time.Second)
	user := &User{ID: uuid.NewString(), Username: username, PasswordHash: h, CreatedAt: now}
	if _, err := u.db.ExecContext(ctx,
		`INSERT INTO users (id, username, password_hash, created_at) VALUES (?,?,?,?)`,
		user.ID, user.Username, user.PasswordHash, now.Format(time.RFC3339)); err != nil {
		return nil, insertErr(err)
	}
	return user, nil
}

// Authenticate returns the user when the password matches.
func (u *Users) Authenticate(ctx context.Context, username, pw string) (*User, error) {
	user, err := u.ByUsername(ctx, NormalizeUsername(username))
	if err != nil || !CheckPassword(user.PasswordHash, pw) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// ByUsername and ByID load a user row or return sql.ErrNoRows if missing.
func (u *Users) ByUsername(ctx context.Context, username string) (*User, error) {
	row := u.db.QueryRowContext(ctx, `SELECT id, username, password_hash, created_at, games_played, total_score, best_score
	                                  FROM users WHERE lower(username)=lower(?)`, username)
	return scanUser(row)
}

func (u *Users) ByID(ctx context.Context, id string) (*User, error) {
	row := u.db.QueryRowContext(ctx, `SELECT id, username, password_hash, created_at, games_played, total_score, best_score
	                                  FROM users WHERE id=?`, id)
	return scanUser(row)
}

func scanUser(row *sql.Row) (*User, error) {
	var u User
	var created string
	if err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &created, &u.GamesPlayed, &u.TotalScore, &u.BestScore); err != nil {
		return nil, err
	}
	u.CreatedAt, _ = time.Parse(time.RFC3339, created)
	return &u, nil
}

// insertErr maps a lost race on the username UNIQUE index to ErrUsernameTaken.
func insertErr(err error) error {
	var se sqlite3.Error
	if errors.As(err, &se) && se.ExtendedCode == sqlite3.ErrConstraintUnique {
		return ErrUsernameTaken
	}
	return err
}
