package game

import (
	"math/rand/v2"
	"strings"
)

// maxShuffleAttempts caps reshuffles before Scramble falls back to a rotation.
const maxShuffleAttempts = 32

// Scrambleable reports whether w has at least two characters and at least
// two distinct ones. Only such words have a permutation different from themselves.
func Scrambleable(w string) bool {
	r := []rune(w)
	if len(r) < 2 {
		return false
	}
	for _, c := range r[1:] {
		if c != r[0] {
			return true
		}
	}
	return false
}

// Scramble returns a random permutation of word that differs from it
// (case-sensitive). word must be Scrambleable.
func Scramble(word string, rng *rand.Rand) string {
	letters := []rune(word)
	for i := 0; i < maxShuffleAttempts; i++ {
		rng.Shuffle(len(letters), func(a, b int) {
			letters[a], letters[b] = letters[b], letters[a]
		})
		if out := string(letters); out != word {
			return out
		}
	}
	return rotate(word)
}

// rotate moves the first character to the end. The result equals the input
// only when every character is the same.
func rotate(word string) string {
	r := []rune(word)
	if len(r) < 2 {
		return word
	}
	return string(append(r[1:], r[0]))
}

// spell separates characters with single spaces ("tesa" → "t e s a").
func spell(w string) string {
	return strings.Join(strings.Split(w, ""), " ")
}
