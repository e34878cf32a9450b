package quiz

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"quizclash/internal/model"
)

func testPool(n int) []model.Question {
	pool := make([]model.Question, n)
	for i := range pool {
		pool[i] = model.Question{
			ID:          fmt.Sprintf("q%d", i),
			Prompt:      fmt.Sprintf("question %d", i),
			Options:     []string{"a", "b", "c", "d"},
			AnswerIndex: i % 4,
		}
	}
	return pool
}

func TestSequenceDeterminism(t *testing.T) {
	pool := testPool(20)

	first := Sequence(pool, 42, 10)
	second := Sequence(pool, 42, 10)

	assert.Equal(t, first, second)
}

func TestSequenceDiffersAcrossSeeds(t *testing.T) {
	pool := testPool(20)

	a := Sequence(pool, 1, 20)
	b := Sequence(pool, 2, 20)

	assert.NotEqual(t, a, b)
}

func TestSequenceIsPermutation(t *testing.T) {
	pool := testPool(15)

	for _, seed := range []int64{0, 1, 7, 999, 1 << 30} {
		seq := Sequence(pool, seed, 0)
		assert.Len(t, seq, len(pool))

		seen := make(map[string]int)
		for _, q := range seq {
			seen[q.ID]++
		}
		for _, q := range pool {
			assert.Equal(t, 1, seen[q.ID], "seed %d lost question %s", seed, q.ID)
		}
	}
}

func TestSequenceTruncatesToPoolSize(t *testing.T) {
	pool := testPool(5)

	seq := Sequence(pool, 3, 10)
	assert.Len(t, seq, 5)

	seq = Sequence(pool, 3, 3)
	assert.Len(t, seq, 3)
}

func TestSequenceEmptyPool(t *testing.T) {
	seq := Sequence(nil, 12345, 10)
	assert.Empty(t, seq)
}

func TestSequenceDoesNotMutateInput(t *testing.T) {
	pool := testPool(10)
	original := make([]model.Question, len(pool))
	copy(original, pool)

	Sequence(pool, 77, 0)

	assert.Equal(t, original, pool)
}

func TestShuffleOptionsDeterminism(t *testing.T) {
	options := []string{"red", "green", "blue", "yellow"}

	gotOpts, gotIdx := ShuffleOptions(options, 2, 99)
	againOpts, againIdx := ShuffleOptions(options, 2, 99)

	assert.Equal(t, gotOpts, againOpts)
	assert.Equal(t, gotIdx, againIdx)
}

func TestShuffleOptionsTracksAnswer(t *testing.T) {
	options := []string{"red", "green", "blue", "yellow"}

	for answer := 0; answer < len(options); answer++ {
		for seed := int64(0); seed < 50; seed++ {
			shuffled, idx := ShuffleOptions(options, answer, seed)
			assert.Equal(t, options[answer], shuffled[idx],
				"answer %d seed %d", answer, seed)
		}
	}
}

func TestOptionSeedVariesPerQuestion(t *testing.T) {
	seen := make(map[int64]bool)
	for i := 0; i < 20; i++ {
		seed := OptionSeed(123456, i)
		assert.False(t, seen[seed], "duplicate option seed at index %d", i)
		seen[seed] = true
	}
}
