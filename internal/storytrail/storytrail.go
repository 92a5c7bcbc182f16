// Package storytrail defines the core domain types of the trail engine.
// It has zero external dependencies — everything here is pure Go.
package storytrail

import "time"

// AnswerType selects how a waypoint's puzzle is checked.
type AnswerType string

const (
	AnswerMultipleChoice AnswerType = "multiple_choice"
	AnswerFreeText       AnswerType = "free_text"
)

// NoChoiceIndex is the reserved answerIndex for submissions where no option
// applies (intro waypoints, playtest unlocks).
const NoChoiceIndex = -1

// Trail is a themed, ordered sequence of waypoints through a city.
type Trail struct {
	ID           string
	Name         string
	Description  string
	Tagline      string
	ImageURL     string
	PriceCents   int
	IsPublished  bool
	DistanceKm   *float64
	DisplayOrder int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Coordinate is a WGS84 position in decimal degrees.
type Coordinate struct {
	Lat float64
	Lng float64
}

// Waypoint is a single stop on a trail: narrative text plus an optional
// puzzle. Answer data (CorrectIndices, FreeTextAnswer, ClueText) must never
// reach an unauthenticated or unsolved client.
type Waypoint struct {
	ID            string
	TrailID       string
	Name          string
	SequenceOrder int
	Position      *Coordinate
	IntroText     string
	RiddleText    string
	AnswerType    AnswerType
	AnswerOptions []string
	// CorrectIndices may hold more than one accepted option; multiple right
	// answers are allowed.
	CorrectIndices []int
	FreeTextAnswer string
	ClueText       string
	ImageURL       string
	IsIntro        bool
	IsReveal       bool
	IsEnd          bool
}

// WaypointState is the derived progression state of a waypoint for a player.
type WaypointState string

const (
	StateLocked    WaypointState = "locked"
	StateUnlocked  WaypointState = "unlocked"
	StateCompleted WaypointState = "completed"
)

// Progress records that a player solved a waypoint. At most one row exists
// per (player, waypoint); duplicate inserts are no-ops.
type Progress struct {
	PlayerID    string
	TrailID     string
	WaypointID  string
	CompletedAt time.Time
}

// Completion records a player's finishing time for a whole trail. At most one
// row exists per (player, trail); the first write wins and is never
// overwritten by replays.
type Completion struct {
	PlayerID    string
	TrailID     string
	ElapsedMs   int64
	CompletedAt time.Time
}

// Entitlement is proof of purchase for a paid trail. Creation is owned by
// the payment collaborator; the engine only reads it.
type Entitlement struct {
	PlayerID    string
	TrailID     string
	PurchasedAt time.Time
}

// Profile is a player's public profile. PlayerName is what leaderboards show;
// players without one are displayed under an anonymous placeholder.
type Profile struct {
	PlayerID   string
	PlayerName string
	CreatedAt  time.Time
}
