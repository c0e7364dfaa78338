// Package daily derives the shared word sequence for a calendar day.
// Every player who starts a daily challenge on the same UTC date with the
// same salt sees the same words in the same scrambled order.
package daily

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"math/rand/v2"
	"time"
)

// DateKey returns YYYY-MM-DD in UTC.
func DateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// Seed returns PCG seeds derived from HMAC(salt, YYYY-MM-DD).
func Seed(date time.Time, salt string) (uint64, uint64) {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(DateKey(date)))
	sum := h.Sum(nil)
	return binary.BigEndian.Uint64(sum[:8]), binary.BigEndian.Uint64(sum[8:16])
}

// NewRand returns the day's deterministic generator.
func NewRand(date time.Time, salt string) *rand.Rand {
	s1, s2 := Seed(date, salt)
	return rand.New(rand.NewPCG(s1, s2))
}
