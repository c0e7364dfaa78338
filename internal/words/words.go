// internal/words/words.go
//
// Provides the candidate word pool for the game engine.
//
// Responsibilities:
//   - Load the pool from a WORDS_FILE-provided path or fall back to the
//     embedded default in assets/words.txt.
//   - Normalize (trim, lowercase), dedupe, and keep only scrambleable
//     alphabetic words.
//   - Supply List and Stats to the server and terminal client.
//
// Constraints:
//   • Words must be letters only, at least two of them, not all the same.
//   • Initialization is run once (sync.Once); Load is the pure variant.

package words

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"unicode"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/unscramble/assets"
	"github.com/robalobadob/unscramble/internal/game"
)

var ErrEmpty = errors.New("words: pool is empty")

var (
	initOnce   sync.Once
	pool       []string
	initialErr error
)

// Init loads the pool exactly once. An empty path selects the embedded list.
func Init(path string) error {
	initOnce.Do(func() {
		pool, initialErr = Load(path)
		if initialErr == nil {
			log.Info().Int("words", len(pool)).Str("source", sourceName(path)).Msg("word pool loaded")
		}
	})
	return initialErr
}

// Load reads and filters a pool without touching package state.
func Load(path string) ([]string, error) {
	var (
		raw []string
		err error
	)
	if path == "" {
		raw, err = assets.WordList()
	} else {
		raw, err = readWordFile(path)
	}
	if err != nil {
		return nil, err
	}
	out := filter(raw)
	if len(out) == 0 {
		return nil, ErrEmpty
	}
	return out, nil
}

func readWordFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open word file: %w", err)
	}
	defer f.Close()
	return assets.ParseWords(f)
}

// filter keeps first occurrences of valid words, preserving order.
func filter(raw []string) []string {
	seen := make(map[string]struct{}, len(raw))
	out := make([]string, 0, len(raw))
	for _, w := range raw {
		if _, dup := seen[w]; dup {
			continue
		}
		if !isAlpha(w) || !game.Scrambleable(w) {
			log.Warn().Str("word", w).Msg("skipping unusable word")
			continue
		}
		seen[w] = struct{}{}
		out = append(out, w)
	}
	return out
}

func isAlpha(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return s != ""
}

func sourceName(path string) string {
	if path == "" {
		return "embedded"
	}
	return path
}

// List returns a copy of the loaded pool.
func List() []string {
	return append([]string(nil), pool...)
}

// Stats returns the number of loaded words.
func Stats() int {
	return len(pool)
}
