package game

import (
	"strings"

	"github.com/SireeshLimbu/StoryTrail/internal/storytrail"
)

// Submission is a player's answer attempt for one waypoint.
type Submission struct {
	// AnswerIndex is the chosen option for multiple choice, or
	// storytrail.NoChoiceIndex when no option applies.
	AnswerIndex int
	// FreeText is the typed answer for free-text waypoints.
	FreeText string
}

// CheckAnswer decides whether a submission solves the waypoint. Intro
// waypoints always count as solved on first visit.
//
// Free text matches when the submitted string, trimmed of surrounding
// whitespace, equals the canonical answer case-insensitively. Internal
// whitespace is significant: "Light House" does not match "lighthouse".
//
// Multiple choice matches when the submitted index is in the waypoint's
// correct-index set; the set may accept more than one index.
func CheckAnswer(w storytrail.Waypoint, sub Submission) bool {
	if w.IsIntro {
		return true
	}

	switch w.AnswerType {
	case storytrail.AnswerFreeText:
		if sub.FreeText == "" || w.FreeTextAnswer == "" {
			return false
		}
		return strings.EqualFold(
			strings.TrimSpace(sub.FreeText),
			strings.TrimSpace(w.FreeTextAnswer),
		)
	default:
		for _, idx := range w.CorrectIndices {
			if sub.AnswerIndex == idx {
				return true
			}
		}
		return false
	}
}
