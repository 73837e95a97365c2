package normalize

import (
	"crypto/md5"
	"encoding/binary"
	"math"
)

// Score band and the offset range derived from the reply hash.
const (
	minScore = 5.0
	maxScore = 95.0
)

// UniqueScore enforces the risk-score invariants: suspiciously round
// (integer-valued) scores get a deterministic decimal offset derived from a
// hash of the raw reply text, then the result is clamped into
// [minScore, maxScore] and rounded to one decimal. Same reply text, same
// offset: reproducibility is preferred over true randomness here.
func UniqueScore(score float64, rawText string) float64 {
	sum := md5.Sum([]byte(rawText))
	h := binary.BigEndian.Uint32(sum[:4]) % 10000

	// Offset in [0.1, 10.0), only applied to exact integers.
	offset := float64(h%99)/10.0 + 0.1
	if score == math.Trunc(score) {
		score += offset
	}

	score = math.Max(minScore, math.Min(maxScore, score))
	return math.Round(score*10) / 10
}
