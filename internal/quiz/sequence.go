package quiz

import (
	"math/rand"

	"quizclash/internal/model"
)

// optionSeedPrime spreads per-question option seeds far apart so consecutive
// questions never share a visible shuffle pattern.
const optionSeedPrime = 104729

// NewSeed draws the 31-bit session seed shared by every client in a room.
func NewSeed() int64 {
	return int64(rand.Int31())
}

// OptionSeed derives the per-question option shuffle seed from the room seed.
// The combination is fixed arithmetic so every client computes it locally
// without any extra round-trip.
func OptionSeed(roomSeed int64, questionIndex int) int64 {
	return roomSeed*31 + int64(questionIndex)*optionSeedPrime
}

// Sequence returns the session's question order: a seeded Fisher-Yates
// permutation of pool, truncated to count when the pool is larger. The same
// (pool, seed, count) always yields the same sequence on every machine.
// An empty pool yields an empty sequence.
func Sequence(pool []model.Question, seed int64, count int) []model.Question {
	out := make([]model.Question, len(pool))
	copy(out, pool)

	rng := rand.New(rand.NewSource(seed))
	for i := len(out) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		out[i], out[j] = out[j], out[i]
	}

	if count > 0 && count < len(out) {
		out = out[:count]
	}
	return out
}

// ShuffleOptions permutes a question's options with the given derived seed and
// returns the new position of the correct option. Deterministic in the same
// sense as Sequence.
func ShuffleOptions(options []string, answerIndex int, seed int64) ([]string, int) {
	out := make([]string, len(options))
	copy(out, options)

	rng := rand.New(rand.NewSource(seed))
	shuffledAnswer := answerIndex
	for i := len(out) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		out[i], out[j] = out[j], out[i]
		switch shuffledAnswer {
		case i:
			shuffledAnswer = j
		case j:
			shuffledAnswer = i
		}
	}
	return out, shuffledAnswer
}
