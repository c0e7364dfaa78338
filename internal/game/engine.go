// internal/game/engine.go
//
// Core game engine for a single Unscramble session.
// Responsibilities:
//   - Validate the candidate pool once, up front (size and scrambleability).
//   - Pick unused words at random and present them scrambled.
//   - Score guesses (case-insensitive exact match, fixed increment).
//   - Track state transitions: in_round → complete, and reset in place.
//   - Publish a Snapshot to subscribers after every mutation.
//
// Notes:
//   - A Session is not safe for concurrent use; owners serialize access.
//   - Word selection is bounded: a fixed number of random draws, then a scan
//     of the remaining pool, then ErrPoolExhausted.
package game

import (
	crand "crypto/rand"
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/google/uuid"
)

// maxDrawAttempts caps random draws before falling back to a scan of unused words.
const maxDrawAttempts = 64

// Session is the authoritative holder of one game's progress.
type Session struct {
	ID string

	pool          []string
	maxRounds     int
	scoreIncrease int
	rng           *rand.Rand

	score      int
	roundCount int
	used       map[string]struct{}
	usedOrder  []string
	current    string
	scrambled  string
	finished   bool

	subs    map[int]func(Snapshot)
	nextSub int
}

// New validates cfg and starts the first round.
func New(cfg Config) (*Session, error) {
	maxRounds := cfg.MaxRounds
	if maxRounds <= 0 {
		maxRounds = DefaultMaxRounds
	}
	inc := cfg.ScoreIncrease
	if inc <= 0 {
		inc = DefaultScoreIncrease
	}
	pool, err := playablePool(cfg.Words, maxRounds)
	if err != nil {
		return nil, err
	}
	rng := cfg.Rand
	if rng == nil {
		rng = newRand()
	}

	s := &Session{
		ID:            uuid.NewString(),
		pool:          pool,
		maxRounds:     maxRounds,
		scoreIncrease: inc,
		rng:           rng,
		used:          make(map[string]struct{}, maxRounds),
	}
	if err := s.nextWord(); err != nil {
		return nil, err
	}
	return s, nil
}

// SubmitGuess reports whether candidate matches the current word, ignoring case.
// A match adds the score increment; a miss changes nothing.
func (s *Session) SubmitGuess(candidate string) bool {
	if !strings.EqualFold(candidate, s.current) {
		return false
	}
	s.score += s.scoreIncrease
	s.publish()
	return true
}

// AdvanceRound presents the next word while rounds remain and reports true.
// Once MaxRounds words have been shown it reports false and the session is complete.
func (s *Session) AdvanceRound() (bool, error) {
	if s.roundCount < s.maxRounds {
		if err := s.nextWord(); err != nil {
			return false, err
		}
		return true, nil
	}
	if !s.finished {
		s.finished = true
		s.publish()
	}
	return false, nil
}

// Reinitialize resets score and rounds and starts a fresh game in place.
func (s *Session) Reinitialize() error {
	s.score = 0
	s.roundCount = 0
	clear(s.used)
	s.usedOrder = s.usedOrder[:0]
	s.finished = false
	return s.nextWord()
}

// nextWord selects an unused word, scrambles it and opens a new round.
func (s *Session) nextWord() error {
	word, err := s.pickUnused()
	if err != nil {
		return err
	}
	s.current = word
	s.scrambled = Scramble(word, s.rng)
	s.roundCount++
	s.used[word] = struct{}{}
	s.usedOrder = append(s.usedOrder, word)
	s.publish()
	return nil
}

func (s *Session) pickUnused() (string, error) {
	n := len(s.pool)
	for i := 0; i < maxDrawAttempts; i++ {
		w := s.pool[s.rng.IntN(n)]
		if _, seen := s.used[w]; !seen {
			return w, nil
		}
	}
	start := s.rng.IntN(n)
	for i := range n {
		w := s.pool[(start+i)%n]
		if _, seen := s.used[w]; !seen {
			return w, nil
		}
	}
	return "", ErrPoolExhausted
}

// ----------------------------- observation ---------------------------------

// Score is the cumulative score of the current game.
func (s *Session) Score() int { return s.score }

// RoundCount is the number of words presented so far.
func (s *Session) RoundCount() int { return s.roundCount }

// MaxRounds is the number of words per game.
func (s *Session) MaxRounds() int { return s.maxRounds }

// Scrambled is the current word as presented to the player.
func (s *Session) Scrambled() string { return s.scrambled }

// usedWords returns the words presented this game, in order. The last one
// is the current answer, so it stays inside the package.
func (s *Session) usedWords() []string {
	return append([]string(nil), s.usedOrder...)
}

// State reports the coarse session phase.
func (s *Session) State() State {
	if s.finished {
		return StateComplete
	}
	return StateInRound
}

// Snapshot captures the renderable state.
func (s *Session) Snapshot() Snapshot {
	return Snapshot{
		ID:            s.ID,
		Score:         s.score,
		Round:         s.roundCount,
		MaxRounds:     s.maxRounds,
		ScoreIncrease: s.scoreIncrease,
		Scrambled:     s.scrambled,
		Spelled:       spell(s.scrambled),
		State:         s.State(),
	}
}

// Subscribe registers fn to receive a Snapshot after every mutation.
// fn runs synchronously on the mutating goroutine; it must not call back into the session.
func (s *Session) Subscribe(fn func(Snapshot)) (cancel func()) {
	if s.subs == nil {
		s.subs = make(map[int]func(Snapshot))
	}
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	return func() { delete(s.subs, id) }
}

func (s *Session) publish() {
	if len(s.subs) == 0 {
		return
	}
	snap := s.Snapshot()
	for _, fn := range s.subs {
		fn(snap)
	}
}

// CheckPool reports whether words can back a game of maxRounds rounds
// (zero means DefaultMaxRounds). It returns the error New would.
func CheckPool(words []string, maxRounds int) error {
	if maxRounds <= 0 {
		maxRounds = DefaultMaxRounds
	}
	_, err := playablePool(words, maxRounds)
	return err
}

func playablePool(words []string, maxRounds int) ([]string, error) {
	pool, err := preparePool(words)
	if err != nil {
		return nil, err
	}
	if len(pool) < maxRounds {
		return nil, fmt.Errorf("%w: %d words for %d rounds", ErrPoolTooSmall, len(pool), maxRounds)
	}
	return pool, nil
}

// preparePool copies words, drops exact duplicates and rejects unscrambleable entries.
func preparePool(words []string) ([]string, error) {
	seen := make(map[string]struct{}, len(words))
	out := make([]string, 0, len(words))
	for _, w := range words {
		if _, dup := seen[w]; dup {
			continue
		}
		if !Scrambleable(w) {
			return nil, fmt.Errorf("%w: %q", ErrUnscrambleable, w)
		}
		seen[w] = struct{}{}
		out = append(out, w)
	}
	return out, nil
}

// newRand returns a ChaCha8 generator seeded from crypto/rand.
func newRand() *rand.Rand {
	var seed [32]byte
	_, _ = crand.Read(seed[:])
	return rand.New(rand.NewChaCha8(seed))
}
