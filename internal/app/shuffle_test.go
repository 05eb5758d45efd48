package app

import (
	"math/rand"
	"testing"
)

func TestShuffleChoicesIsPermutation(t *testing.T) {
	rnd := rand.New(rand.NewSource(42))

	for _, choices := range [][]string{
		{"only"},
		{"right", "wrong"},
		{"Paris", "Lyon", "Nice"},
		{"a", "b", "c", "d", "e", "f", "g"},
	} {
		for trial := 0; trial < 50; trial++ {
			shuffled, correct := ShuffleChoices(rnd, choices)
			if len(shuffled) != len(choices) {
				t.Fatalf("expected %d choices, got %d", len(choices), len(shuffled))
			}

			seen := make(map[int]bool, len(shuffled))
			for _, c := range shuffled {
				if c.OriginalIndex < 0 || c.OriginalIndex >= len(choices) {
					t.Fatalf("original index %d out of range", c.OriginalIndex)
				}
				if seen[c.OriginalIndex] {
					t.Fatalf("original index %d repeated", c.OriginalIndex)
				}
				seen[c.OriginalIndex] = true
				if c.Text != choices[c.OriginalIndex] {
					t.Fatalf("text %q does not match original index %d", c.Text, c.OriginalIndex)
				}
			}

			if shuffled[correct].OriginalIndex != 0 {
				t.Fatalf("correct position %d points at original index %d", correct, shuffled[correct].OriginalIndex)
			}
		}
	}
}

func TestShuffleChoicesSingleChoice(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))
	shuffled, correct := ShuffleChoices(rnd, []string{"Paris"})
	if correct != 0 {
		t.Fatalf("expected correct position 0, got %d", correct)
	}
	if len(shuffled) != 1 || shuffled[0].Text != "Paris" {
		t.Fatalf("unexpected shuffle output: %+v", shuffled)
	}
}

func TestShuffleChoicesProducesVariedPermutations(t *testing.T) {
	rnd := rand.New(rand.NewSource(7))
	choices := []string{"correct", "b", "c", "d"}

	positions := make(map[int]bool)
	for i := 0; i < 200; i++ {
		_, correct := ShuffleChoices(rnd, choices)
		positions[correct] = true
	}
	if len(positions) != len(choices) {
		t.Fatalf("expected the correct answer to land on every position, saw %d of %d", len(positions), len(choices))
	}
}
