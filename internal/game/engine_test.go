package game

import (
	"encoding/json"
	"errors"
	"math/rand/v2"
	"sort"
	"strings"
	"testing"
)

var testPool = []string{
	"animal", "basket", "candle", "dinosaur", "elephant",
	"flowers", "guitar", "honey", "igloo", "journal",
	"kitchen", "lemon", "melody", "north", "octopus",
}

func newTestSession(t *testing.T, cfg Config) *Session {
	t.Helper()
	if cfg.Words == nil {
		cfg.Words = testPool
	}
	if cfg.Rand == nil {
		cfg.Rand = rand.New(rand.NewPCG(7, 11))
	}
	s, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func sortedRunes(s string) string {
	r := strings.Split(s, "")
	sort.Strings(r)
	return strings.Join(r, "")
}

func TestNewStartsFirstRound(t *testing.T) {
	s := newTestSession(t, Config{})
	if s.RoundCount() != 1 {
		t.Fatalf("round after New = %d, want 1", s.RoundCount())
	}
	if s.Score() != 0 {
		t.Fatalf("score after New = %d, want 0", s.Score())
	}
	if s.MaxRounds() != DefaultMaxRounds {
		t.Fatalf("max rounds = %d, want %d", s.MaxRounds(), DefaultMaxRounds)
	}
	if s.State() != StateInRound {
		t.Fatalf("state = %q, want %q", s.State(), StateInRound)
	}
	if s.ID == "" {
		t.Fatalf("expected session id")
	}
	if s.current == "" || s.scrambled == "" {
		t.Fatalf("expected a word to be selected")
	}
}

func TestNewRejectsBadPools(t *testing.T) {
	cases := []struct {
		name  string
		words []string
		max   int
		want  error
	}{
		{"empty", nil, 2, ErrPoolTooSmall},
		{"too small", []string{"east"}, 2, ErrPoolTooSmall},
		{"duplicates do not count", []string{"east", "east"}, 2, ErrPoolTooSmall},
		{"single letter", []string{"east", "a"}, 2, ErrUnscrambleable},
		{"identical letters", []string{"east", "zzz"}, 2, ErrUnscrambleable},
		{"empty word", []string{"east", ""}, 2, ErrUnscrambleable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			words := tc.words
			if words == nil {
				words = []string{}
			}
			_, err := New(Config{Words: words, MaxRounds: tc.max})
			if !errors.Is(err, tc.want) {
				t.Fatalf("New err = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestCheckPoolMatchesNew(t *testing.T) {
	if err := CheckPool(testPool[:5], 0); !errors.Is(err, ErrPoolTooSmall) {
		t.Fatalf("CheckPool with default rounds err = %v, want ErrPoolTooSmall", err)
	}
	if err := CheckPool(testPool, len(testPool)); err != nil {
		t.Fatalf("CheckPool(%d) = %v", len(testPool), err)
	}
	if err := CheckPool(testPool, len(testPool)+1); !errors.Is(err, ErrPoolTooSmall) {
		t.Fatalf("CheckPool over pool size err = %v", err)
	}
	if err := CheckPool([]string{"east", "zz"}, 2); !errors.Is(err, ErrUnscrambleable) {
		t.Fatalf("CheckPool unscrambleable err = %v", err)
	}
}

func TestScrambleIsDistinctPermutation(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	words := append([]string{"ab", "aab", "yoyo", "Ab", "zeal"}, testPool...)
	for _, w := range words {
		for i := 0; i < 200; i++ {
			got := Scramble(w, rng)
			if got == w {
				t.Fatalf("Scramble(%q) returned the original", w)
			}
			if sortedRunes(got) != sortedRunes(w) {
				t.Fatalf("Scramble(%q) = %q, not a permutation", w, got)
			}
		}
	}
}

func TestRotateDiffersForScrambleableWords(t *testing.T) {
	for _, w := range []string{"ab", "abab", "aab", "baa", "east"} {
		got := rotate(w)
		if got == w {
			t.Fatalf("rotate(%q) = %q, want a different string", w, got)
		}
		if sortedRunes(got) != sortedRunes(w) {
			t.Fatalf("rotate(%q) = %q, not a permutation", w, got)
		}
	}
	if rotate("a") != "a" {
		t.Fatalf("rotate of a single rune should be a no-op")
	}
}

func TestScrambleable(t *testing.T) {
	cases := map[string]bool{
		"":     false,
		"a":    false,
		"aa":   false,
		"ab":   true,
		"yoyo": true,
		"Aa":   true,
		"ééé":  false,
		"éa":   true,
	}
	for w, want := range cases {
		if got := Scrambleable(w); got != want {
			t.Fatalf("Scrambleable(%q) = %v, want %v", w, got, want)
		}
	}
}

func TestSubmitGuessIsCaseInsensitiveAndPure(t *testing.T) {
	s := newTestSession(t, Config{})
	word, scrambled, round := s.current, s.scrambled, s.RoundCount()
	used := s.usedWords()

	if s.SubmitGuess("definitely-not-it") {
		t.Fatalf("wrong guess accepted")
	}
	if s.Score() != 0 {
		t.Fatalf("score after wrong guess = %d, want 0", s.Score())
	}
	if !s.SubmitGuess(strings.ToUpper(word)) {
		t.Fatalf("upper-case guess of %q rejected", word)
	}
	if s.Score() != DefaultScoreIncrease {
		t.Fatalf("score after correct guess = %d, want %d", s.Score(), DefaultScoreIncrease)
	}
	if s.current != word || s.scrambled != scrambled || s.RoundCount() != round {
		t.Fatalf("SubmitGuess mutated the round")
	}
	if len(s.usedWords()) != len(used) {
		t.Fatalf("SubmitGuess mutated used words")
	}
}

func TestSubmitGuessRejectsScrambledForm(t *testing.T) {
	s := newTestSession(t, Config{})
	if s.SubmitGuess(s.Scrambled()) {
		t.Fatalf("scrambled form %q accepted for %q", s.Scrambled(), s.current)
	}
}

func TestAdvanceRoundGatesCompletion(t *testing.T) {
	s := newTestSession(t, Config{MaxRounds: 5})
	trues := 0
	for {
		more, err := s.AdvanceRound()
		if err != nil {
			t.Fatalf("AdvanceRound: %v", err)
		}
		if !more {
			break
		}
		trues++
		if trues > 10 {
			t.Fatalf("AdvanceRound never reported completion")
		}
	}
	if trues != 4 {
		t.Fatalf("AdvanceRound returned true %d times, want 4", trues)
	}
	if s.State() != StateComplete {
		t.Fatalf("state = %q, want %q", s.State(), StateComplete)
	}
	round, word := s.RoundCount(), s.current
	more, err := s.AdvanceRound()
	if more || err != nil {
		t.Fatalf("AdvanceRound after completion = %v, %v", more, err)
	}
	if s.RoundCount() != round || s.current != word {
		t.Fatalf("AdvanceRound changed state after completion")
	}
}

func TestUsedWordsUniqueAndCounted(t *testing.T) {
	pool := testPool[:6]
	s := newTestSession(t, Config{Words: pool, MaxRounds: 6})
	for {
		used := s.usedWords()
		if len(used) != s.RoundCount() {
			t.Fatalf("|used| = %d, round = %d", len(used), s.RoundCount())
		}
		seen := map[string]bool{}
		for _, w := range used {
			if seen[w] {
				t.Fatalf("duplicate word %q in %v", w, used)
			}
			seen[w] = true
		}
		if used[len(used)-1] != s.current {
			t.Fatalf("current word %q is not the last used word", s.current)
		}
		if more, _ := s.AdvanceRound(); !more {
			break
		}
	}
	if s.RoundCount() != len(pool) {
		t.Fatalf("rounds = %d, want whole pool of %d", s.RoundCount(), len(pool))
	}
}

func TestNextWordReportsExhaustion(t *testing.T) {
	s := newTestSession(t, Config{Words: []string{"east", "crane"}, MaxRounds: 2})
	for _, w := range s.pool {
		s.used[w] = struct{}{}
	}
	if err := s.nextWord(); !errors.Is(err, ErrPoolExhausted) {
		t.Fatalf("nextWord err = %v, want ErrPoolExhausted", err)
	}
}

func TestReinitializeStartsOver(t *testing.T) {
	s := newTestSession(t, Config{MaxRounds: 3})
	s.SubmitGuess(s.current)
	for {
		if more, _ := s.AdvanceRound(); !more {
			break
		}
	}
	if err := s.Reinitialize(); err != nil {
		t.Fatalf("Reinitialize: %v", err)
	}
	if s.Score() != 0 || s.RoundCount() != 1 || len(s.usedWords()) != 1 {
		t.Fatalf("after reset: score=%d round=%d used=%d", s.Score(), s.RoundCount(), len(s.usedWords()))
	}
	if s.State() != StateInRound {
		t.Fatalf("state after reset = %q", s.State())
	}
	trues := 0
	for {
		more, err := s.AdvanceRound()
		if err != nil {
			t.Fatalf("AdvanceRound: %v", err)
		}
		if !more {
			break
		}
		trues++
	}
	if trues != 2 {
		t.Fatalf("after reset AdvanceRound returned true %d times, want 2", trues)
	}
}

func TestTwoRoundGameEndToEnd(t *testing.T) {
	s := newTestSession(t, Config{Words: []string{"east", "crane"}, MaxRounds: 2})
	if s.RoundCount() != 1 {
		t.Fatalf("round = %d, want 1", s.RoundCount())
	}
	first := s.current
	if !s.SubmitGuess(first) {
		t.Fatalf("correct guess %q rejected", first)
	}
	if s.Score() != DefaultScoreIncrease {
		t.Fatalf("score = %d, want %d", s.Score(), DefaultScoreIncrease)
	}
	more, err := s.AdvanceRound()
	if err != nil || !more {
		t.Fatalf("AdvanceRound into round 2 = %v, %v", more, err)
	}
	second := s.current
	if second == first {
		t.Fatalf("word repeated: %q", second)
	}
	if !s.SubmitGuess(second) {
		t.Fatalf("correct guess %q rejected", second)
	}
	more, err = s.AdvanceRound()
	if err != nil || more {
		t.Fatalf("final AdvanceRound = %v, %v; want false, nil", more, err)
	}
	if s.Score() != 2*DefaultScoreIncrease {
		t.Fatalf("final score = %d, want %d", s.Score(), 2*DefaultScoreIncrease)
	}
}

func TestSubscribeReceivesSnapshots(t *testing.T) {
	s := newTestSession(t, Config{MaxRounds: 3})
	var got []Snapshot
	cancel := s.Subscribe(func(snap Snapshot) { got = append(got, snap) })

	s.SubmitGuess(s.current)
	if _, err := s.AdvanceRound(); err != nil {
		t.Fatalf("AdvanceRound: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d snapshots, want 2", len(got))
	}
	if got[0].Score != DefaultScoreIncrease || got[1].Round != 2 {
		t.Fatalf("unexpected snapshots: %+v", got)
	}

	cancel()
	s.SubmitGuess(s.current)
	if len(got) != 2 {
		t.Fatalf("cancelled subscriber still notified")
	}
}

func TestSnapshotNeverCarriesAnswer(t *testing.T) {
	s := newTestSession(t, Config{MaxRounds: 3})
	for {
		b, err := json.Marshal(s.Snapshot())
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		if strings.Contains(string(b), `"`+s.current+`"`) {
			t.Fatalf("snapshot %s exposes %q", b, s.current)
		}
		if more, _ := s.AdvanceRound(); !more {
			break
		}
	}
}

func TestSnapshotSpellsScrambledWord(t *testing.T) {
	s := newTestSession(t, Config{})
	snap := s.Snapshot()
	if snap.Scrambled != s.scrambled {
		t.Fatalf("snapshot scrambled = %q, want %q", snap.Scrambled, s.scrambled)
	}
	if strings.ReplaceAll(snap.Spelled, " ", "") != snap.Scrambled {
		t.Fatalf("spelled %q does not match %q", snap.Spelled, snap.Scrambled)
	}
	if spell("tesa") != "t e s a" {
		t.Fatalf("spell(tesa) = %q", spell("tesa"))
	}
}
