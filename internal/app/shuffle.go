package app

import (
	"math/rand"

	"quiz-review-service/internal/domain"
)

// ShuffleChoices permutes the choice texts of a question with Fisher-Yates and
// returns the permutation together with the new position of the correct
// answer (the element that started at index 0). A single-choice input reports
// position 0. Callers must re-invoke this on every display of a question so
// repeated views produce independent permutations.
func ShuffleChoices(rnd *rand.Rand, choices []string) ([]domain.ShuffledChoice, int) {
	shuffled := make([]domain.ShuffledChoice, len(choices))
	for i, text := range choices {
		shuffled[i] = domain.ShuffledChoice{Text: text, OriginalIndex: i}
	}

	for i := len(shuffled) - 1; i > 0; i-- {
		j := rnd.Intn(i + 1)
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	}

	correct := 0
	for i, c := range shuffled {
		if c.OriginalIndex == 0 {
			correct = i
			break
		}
	}
	return shuffled, correct
}
