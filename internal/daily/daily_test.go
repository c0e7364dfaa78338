package daily

import (
	"context"
	"testing"
	"time"

	"github.com/robalobadob/unscramble/internal/db"
	"github.com/robalobadob/unscramble/internal/game"
)

func TestDateKeyIsUTC(t *testing.T) {
	loc := time.FixedZone("UTC+10", 10*3600)
	ts := time.Date(2024, 3, 2, 5, 0, 0, 0, loc)
	if got := DateKey(ts); got != "2024-03-01" {
		t.Fatalf("DateKey = %q, want 2024-03-01", got)
	}
}

func TestSeedDependsOnDateAndSalt(t *testing.T) {
	d1 := time.Date(2024, 3, 1, 1, 0, 0, 0, time.UTC)
	d1Later := time.Date(2024, 3, 1, 23, 0, 0, 0, time.UTC)
	d2 := time.Date(2024, 3, 2, 1, 0, 0, 0, time.UTC)

	a1, a2 := Seed(d1, "salt")
	b1, b2 := Seed(d1Later, "salt")
	if a1 != b1 || a2 != b2 {
		t.Fatalf("same day produced different seeds")
	}
	c1, _ := Seed(d2, "salt")
	if c1 == a1 {
		t.Fatalf("different days produced the same seed")
	}
	s1, _ := Seed(d1, "pepper")
	if s1 == a1 {
		t.Fatalf("different salts produced the same seed")
	}
}

func TestNewRandGivesSharedSequence(t *testing.T) {
	words := []string{"east", "crane", "tide", "melody", "guitar", "honey"}
	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	play := func() []string {
		s, err := game.New(game.Config{Words: words, MaxRounds: 4, Rand: NewRand(day, "salt")})
		if err != nil {
			t.Fatalf("game.New: %v", err)
		}
		out := []string{s.Scrambled()}
		for {
			more, _ := s.AdvanceRound()
			if !more {
				return out
			}
			out = append(out, s.Scrambled())
		}
	}
	a, b := play(), play()
	if len(a) != 4 || len(b) != 4 {
		t.Fatalf("rounds = %d/%d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("daily sequences diverge at %d: %v vs %v", i, a, b)
		}
	}
}

func TestStoreOnePerDayAndLeaderboard(t *testing.T) {
	sqlDB, err := db.OpenForTest()
	if err != nil {
		t.Fatalf("db: %v", err)
	}
	defer sqlDB.Close()
	st := NewStore(sqlDB)
	ctx := context.Background()

	played, err := st.AlreadyPlayed(ctx, "anon-1", "2024-03-01")
	if err != nil || played {
		t.Fatalf("AlreadyPlayed before insert = %v, %v", played, err)
	}
	_ = st.InsertResult(ctx, Result{UserID: "anon-1", Date: "2024-03-01", Score: 100, ElapsedMs: 9000})
	_ = st.InsertResult(ctx, Result{UserID: "anon-1", Date: "2024-03-01", Score: 200, ElapsedMs: 1})
	_ = st.InsertResult(ctx, Result{UserID: "anon-2", Date: "2024-03-01", Score: 100, ElapsedMs: 5000})
	_ = st.InsertResult(ctx, Result{UserID: "anon-3", Date: "2024-03-02", Score: 200, ElapsedMs: 5000})

	played, _ = st.AlreadyPlayed(ctx, "anon-1", "2024-03-01")
	if !played {
		t.Fatalf("AlreadyPlayed = false after insert")
	}

	top, err := st.Leaderboard(ctx, "2024-03-01", 0)
	if err != nil {
		t.Fatalf("Leaderboard: %v", err)
	}
	if len(top) != 2 {
		t.Fatalf("Leaderboard = %+v", top)
	}
	if top[0].ElapsedMs != 5000 || top[1].ElapsedMs != 9000 {
		t.Fatalf("tie not broken by elapsed time: %+v", top)
	}
	if top[0].Username != "guest" {
		t.Fatalf("guest username = %q", top[0].Username)
	}
}

func TestClaimAnonKeepsOneResultPerDay(t *testing.T) {
	sqlDB, err := db.OpenForTest()
	if err != nil {
		t.Fatalf("db: %v", err)
	}
	defer sqlDB.Close()
	st := NewStore(sqlDB)
	ctx := context.Background()

	_ = st.InsertResult(ctx, Result{UserID: "anon-1", Date: "2024-03-01", Score: 40, ElapsedMs: 1000})
	_ = st.InsertResult(ctx, Result{UserID: "anon-1", Date: "2024-03-02", Score: 60, ElapsedMs: 1000})
	_ = st.InsertResult(ctx, Result{UserID: "user-1", Date: "2024-03-02", Score: 20, ElapsedMs: 1000})

	if err := st.ClaimAnon(ctx, "anon-1", "user-1"); err != nil {
		t.Fatalf("ClaimAnon: %v", err)
	}
	for _, date := range []string{"2024-03-01", "2024-03-02"} {
		if played, _ := st.AlreadyPlayed(ctx, "user-1", date); !played {
			t.Fatalf("user has no result for %s after claim", date)
		}
		if played, _ := st.AlreadyPlayed(ctx, "anon-1", date); played {
			t.Fatalf("guest result for %s left behind", date)
		}
	}
	top, _ := st.Leaderboard(ctx, "2024-03-02", 0)
	if len(top) != 1 || top[0].Score != 20 {
		t.Fatalf("leaderboard after claim = %+v, want the user's own result only", top)
	}
}
