package server

import (
	"context"
	"errors"

	"github.com/SireeshLimbu/StoryTrail/internal/storytrail"
)

var ErrNotFound = errors.New("not found")

// playerSession identifies the authenticated player behind a bearer token.
type playerSession struct {
	PlayerID string
}

// TrailSummary is the public listing row for a trail.
type TrailSummary struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Tagline      string   `json:"tagline"`
	ImageURL     string   `json:"imageUrl"`
	PriceCents   int      `json:"priceCents"`
	DistanceKm   *float64 `json:"distanceKm"`
	DisplayOrder int      `json:"displayOrder"`
}

// LeaderboardEntry is one ranked row of a trail's leaderboard.
type LeaderboardEntry struct {
	Rank        int    `json:"rank"`
	PlayerName  string `json:"playerName"`
	TimeMs      int64  `json:"timeMs"`
	CompletedAt string `json:"completedAt"`
}

// Store is the engine's persistence boundary. Progress rows are written only
// by the answer validator and completion rows only by the completion
// recorder; everything else is a read.
type Store interface {
	PlayerFromToken(ctx context.Context, token string) (playerSession, error)

	ListTrails(ctx context.Context) ([]TrailSummary, error)
	// GetTrail also returns unpublished trails; callers decide whether that
	// means "not found" or "not available".
	GetTrail(ctx context.Context, id string) (storytrail.Trail, error)
	// ListWaypoints returns waypoints with their hidden answer data. The
	// result must never be serialized to a client as-is.
	ListWaypoints(ctx context.Context, trailID string) ([]storytrail.Waypoint, error)
	GetWaypoint(ctx context.Context, id string) (storytrail.Waypoint, error)

	HasEntitlement(ctx context.Context, playerID, trailID string) (bool, error)

	CompletedWaypointIDs(ctx context.Context, playerID, trailID string) (map[string]bool, error)
	// RecordProgress inserts a progress row; a duplicate insert is a no-op,
	// not an error.
	RecordProgress(ctx context.Context, playerID, trailID, waypointID string) error

	// RecordCompletion inserts a completion row unless one already exists
	// for (player, trail). Reports whether this call recorded the time.
	RecordCompletion(ctx context.Context, playerID, trailID string, elapsedMs int64) (bool, error)
	GetCompletion(ctx context.Context, playerID, trailID string) (storytrail.Completion, error)

	Leaderboard(ctx context.Context, trailID string) ([]LeaderboardEntry, error)

	// PlaytestEnabled reads the process-wide playtest flag at request time.
	// Injected here rather than read from a global so callers stay testable.
	PlaytestEnabled(ctx context.Context) (bool, error)
	SetPlaytestEnabled(ctx context.Context, enabled bool) error
}
