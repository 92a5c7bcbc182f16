package game

import (
	"testing"

	"github.com/SireeshLimbu/StoryTrail/internal/storytrail"
)

func TestCheckAnswerIntroAlwaysCorrect(t *testing.T) {
	w := storytrail.Waypoint{IsIntro: true, AnswerType: storytrail.AnswerMultipleChoice}
	if !CheckAnswer(w, Submission{AnswerIndex: storytrail.NoChoiceIndex}) {
		t.Error("intro waypoint rejected the no-choice sentinel")
	}
	if !CheckAnswer(w, Submission{AnswerIndex: 7}) {
		t.Error("intro waypoint rejected an arbitrary index")
	}
}

func TestCheckAnswerMultipleChoice(t *testing.T) {
	w := storytrail.Waypoint{
		AnswerType:     storytrail.AnswerMultipleChoice,
		CorrectIndices: []int{1, 3},
	}

	tests := []struct {
		index int
		want  bool
	}{
		{0, false},
		{1, true},
		{2, false},
		{3, true},
		{storytrail.NoChoiceIndex, false},
	}
	for _, tc := range tests {
		if got := CheckAnswer(w, Submission{AnswerIndex: tc.index}); got != tc.want {
			t.Errorf("index %d: got %v, want %v", tc.index, got, tc.want)
		}
	}
}

func TestCheckAnswerMultipleChoiceEmptySet(t *testing.T) {
	w := storytrail.Waypoint{AnswerType: storytrail.AnswerMultipleChoice}
	if CheckAnswer(w, Submission{AnswerIndex: 0}) {
		t.Error("waypoint with no correct indices accepted an answer")
	}
}

func TestCheckAnswerFreeText(t *testing.T) {
	w := storytrail.Waypoint{
		AnswerType:     storytrail.AnswerFreeText,
		FreeTextAnswer: "anchor",
	}

	tests := []struct {
		text string
		want bool
	}{
		{"anchor", true},
		{"Anchor", true},
		{"ANCHOR", true},
		{" anchor ", true},
		{"\tanchor\n", true},
		{"anchors", false},
		{"an chor", false}, // internal whitespace is significant
		{"", false},
	}
	for _, tc := range tests {
		if got := CheckAnswer(w, Submission{FreeText: tc.text}); got != tc.want {
			t.Errorf("%q: got %v, want %v", tc.text, got, tc.want)
		}
	}
}

func TestCheckAnswerFreeTextCanonicalTrimmed(t *testing.T) {
	// Stored answers may carry stray whitespace from content entry.
	w := storytrail.Waypoint{
		AnswerType:     storytrail.AnswerFreeText,
		FreeTextAnswer: " Lighthouse ",
	}
	if !CheckAnswer(w, Submission{FreeText: "lighthouse"}) {
		t.Error("canonical answer whitespace not trimmed before comparing")
	}
	if CheckAnswer(w, Submission{FreeText: "Light House"}) {
		t.Error("internal whitespace matched across tokens")
	}
}

func TestCheckAnswerFreeTextNoCanonicalAnswer(t *testing.T) {
	w := storytrail.Waypoint{AnswerType: storytrail.AnswerFreeText}
	if CheckAnswer(w, Submission{FreeText: ""}) {
		t.Error("empty submission matched empty canonical answer")
	}
}
