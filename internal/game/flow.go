// internal/game/flow.go
//
// Player-facing flows shared by every front end (HTTP, websocket, terminal).
// They compose the primitive operations the same way the game screen does:
//   - Submit: a correct guess scores and moves on; a wrong one stays put.
//   - Skip:   move on without scoring.
// Either flow reports Finished once no rounds remain.

package game

// Outcome is the result of a player action.
type Outcome struct {
	Correct  bool     `json:"correct"`
	Finished bool     `json:"finished"`
	Game     Snapshot `json:"game"`
}

// Submit checks word against the current round and advances on a match.
// Returns ErrFinished if the game is already complete.
func (s *Session) Submit(word string) (Outcome, error) {
	if s.finished {
		return Outcome{Finished: true, Game: s.Snapshot()}, ErrFinished
	}
	if !s.SubmitGuess(word) {
		return Outcome{Game: s.Snapshot()}, nil
	}
	more, err := s.AdvanceRound()
	if err != nil {
		return Outcome{}, err
	}
	return Outcome{Correct: true, Finished: !more, Game: s.Snapshot()}, nil
}

// Skip abandons the current word without changing the score.
func (s *Session) Skip() (Outcome, error) {
	if s.finished {
		return Outcome{Finished: true, Game: s.Snapshot()}, ErrFinished
	}
	more, err := s.AdvanceRound()
	if err != nil {
		return Outcome{}, err
	}
	return Outcome{Finished: !more, Game: s.Snapshot()}, nil
}
