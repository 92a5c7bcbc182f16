package server

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/google/uuid"
)

// SeedDemo creates the Vaxholm demo trail with two demo player sessions.
// Idempotent: does nothing if any trail exists.
func SeedDemo(ctx context.Context, logger *slog.Logger, db *sql.DB) error {
	var count int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM trails`).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	trailID := uuid.NewString()
	_, err := db.ExecContext(ctx, `
		INSERT INTO trails (id, name, description, tagline, price_cents, is_published, distance_km, display_order)
		VALUES (?, 'Vaxholm', 'A mystery along the Vaxholm waterfront.', 'Follow the harbour, find the truth.', 0, 1, 2.4, 1)
	`, trailID)
	if err != nil {
		return err
	}

	waypoints := []struct {
		name     string
		seq      int
		lat, lng float64
		intro    string
		riddle   string
		kind     string
		options  string
		indices  string
		freeText string
		clue     string
		isIntro  bool
		isEnd    bool
	}{
		{
			name: "Town Square", seq: 1, lat: 59.40259, lng: 18.35136,
			intro:   "Your investigation begins where the ferries land.",
			kind:    "multiple_choice",
			options: "[]", indices: "[]",
			isIntro: true,
		},
		{
			name: "The Old Bakery", seq: 2, lat: 59.40312, lng: 18.35411,
			intro:   "Flour dust still hangs in the morning air.",
			riddle:  "Count the copper kettles in the window. How many?",
			kind:    "multiple_choice",
			options: `["Two", "Three", "Four"]`, indices: "[1]",
			clue: "The baker remembers a stranger asking about the harbour master.",
		},
		{
			name: "Kastellet Point", seq: 3, lat: 59.40178, lng: 18.35702,
			intro:    "The fortress has watched this strait for centuries.",
			riddle:   "What guided sailors home before the fortress lights?",
			kind:     "free_text",
			options:  "[]", indices: "[]",
			freeText: "lighthouse",
			clue:     "The final page of the logbook names the culprit.",
			isEnd:    true,
		},
	}

	for _, wp := range waypoints {
		isIntro, isEnd := 0, 0
		if wp.isIntro {
			isIntro = 1
		}
		if wp.isEnd {
			isEnd = 1
		}
		_, err := db.ExecContext(ctx, `
			INSERT INTO waypoints (id, trail_id, name, sequence_order, latitude, longitude,
				intro_text, riddle_text, answer_type, answer_options,
				correct_answer_indices, free_text_answer, clue_text, is_intro, is_end)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, uuid.NewString(), trailID, wp.name, wp.seq, wp.lat, wp.lng,
			wp.intro, wp.riddle, wp.kind, wp.options,
			wp.indices, wp.freeText, wp.clue, isIntro, isEnd)
		if err != nil {
			return err
		}
	}

	// Demo sessions stand in for the external auth collaborator.
	players := []struct {
		name  string
		token string
	}{
		{"Astrid", "demo-token-astrid"},
		{"Birger", "demo-token-birger"},
	}
	for _, p := range players {
		playerID := uuid.NewString()
		if _, err := db.ExecContext(ctx, `
			INSERT INTO profiles (player_id, player_name) VALUES (?, ?)
		`, playerID, p.name); err != nil {
			return err
		}
		if _, err := db.ExecContext(ctx, `
			INSERT INTO sessions (token, player_id) VALUES (?, ?)
		`, p.token, playerID); err != nil {
			return err
		}
	}

	logger.Info("demo trail seeded", "trail_id", trailID)
	return nil
}
