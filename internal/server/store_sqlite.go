package server

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/SireeshLimbu/StoryTrail/internal/storytrail"
)

// parseStoredTime reads the strftime format the store writes. SQLite has no
// native timestamp type, so timestamps round-trip as RFC3339 text.
func parseStoredTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339Nano, s)
	return t
}

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

var _ Store = (*SQLiteStore)(nil)

func (s *SQLiteStore) PlayerFromToken(ctx context.Context, token string) (playerSession, error) {
	var sess playerSession
	err := s.db.QueryRowContext(ctx, `
		SELECT player_id FROM sessions WHERE token = ?
	`, token).Scan(&sess.PlayerID)
	if errors.Is(err, sql.ErrNoRows) {
		return sess, errNoSession
	}
	return sess, err
}

func (s *SQLiteStore) ListTrails(ctx context.Context) ([]TrailSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, description, tagline, image_url, price_cents, distance_km, display_order
		FROM trails
		WHERE is_published = 1
		ORDER BY display_order, name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	trails := []TrailSummary{}
	for rows.Next() {
		var t TrailSummary
		var distance sql.NullFloat64
		if err := rows.Scan(&t.ID, &t.Name, &t.Description, &t.Tagline, &t.ImageURL,
			&t.PriceCents, &distance, &t.DisplayOrder); err != nil {
			return nil, err
		}
		if distance.Valid {
			t.DistanceKm = &distance.Float64
		}
		trails = append(trails, t)
	}
	return trails, rows.Err()
}

func (s *SQLiteStore) GetTrail(ctx context.Context, id string) (storytrail.Trail, error) {
	var t storytrail.Trail
	var distance sql.NullFloat64
	var published int
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, description, tagline, image_url, price_cents, is_published,
			distance_km, display_order
		FROM trails WHERE id = ?
	`, id).Scan(&t.ID, &t.Name, &t.Description, &t.Tagline, &t.ImageURL,
		&t.PriceCents, &published, &distance, &t.DisplayOrder)
	if errors.Is(err, sql.ErrNoRows) {
		return t, ErrNotFound
	}
	if err != nil {
		return t, err
	}
	t.IsPublished = published == 1
	if distance.Valid {
		t.DistanceKm = &distance.Float64
	}
	return t, nil
}

const waypointColumns = `
	id, trail_id, name, sequence_order, latitude, longitude,
	intro_text, riddle_text, answer_type, answer_options,
	correct_answer_indices, free_text_answer, clue_text, image_url,
	is_intro, is_reveal, is_end`

func scanWaypoint(row interface{ Scan(...any) error }) (storytrail.Waypoint, error) {
	var w storytrail.Waypoint
	var lat, lng sql.NullFloat64
	var optionsJSON, indicesJSON, answerType string
	var isIntro, isReveal, isEnd int

	err := row.Scan(&w.ID, &w.TrailID, &w.Name, &w.SequenceOrder, &lat, &lng,
		&w.IntroText, &w.RiddleText, &answerType, &optionsJSON,
		&indicesJSON, &w.FreeTextAnswer, &w.ClueText, &w.ImageURL,
		&isIntro, &isReveal, &isEnd)
	if err != nil {
		return w, err
	}

	w.AnswerType = storytrail.AnswerType(answerType)
	if lat.Valid && lng.Valid {
		w.Position = &storytrail.Coordinate{Lat: lat.Float64, Lng: lng.Float64}
	}
	if err := json.Unmarshal([]byte(optionsJSON), &w.AnswerOptions); err != nil {
		return w, err
	}
	if err := json.Unmarshal([]byte(indicesJSON), &w.CorrectIndices); err != nil {
		return w, err
	}
	w.IsIntro = isIntro == 1
	w.IsReveal = isReveal == 1
	w.IsEnd = isEnd == 1
	return w, nil
}

func (s *SQLiteStore) ListWaypoints(ctx context.Context, trailID string) ([]storytrail.Waypoint, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+waypointColumns+`
		FROM waypoints WHERE trail_id = ?
		ORDER BY sequence_order
	`, trailID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var waypoints []storytrail.Waypoint
	for rows.Next() {
		w, err := scanWaypoint(rows)
		if err != nil {
			return nil, err
		}
		waypoints = append(waypoints, w)
	}
	return waypoints, rows.Err()
}

func (s *SQLiteStore) GetWaypoint(ctx context.Context, id string) (storytrail.Waypoint, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+waypointColumns+`
		FROM waypoints WHERE id = ?
	`, id)
	w, err := scanWaypoint(row)
	if errors.Is(err, sql.ErrNoRows) {
		return w, ErrNotFound
	}
	return w, err
}

func (s *SQLiteStore) HasEntitlement(ctx context.Context, playerID, trailID string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `
		SELECT 1 FROM entitlements WHERE player_id = ? AND trail_id = ?
	`, playerID, trailID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}

func (s *SQLiteStore) CompletedWaypointIDs(ctx context.Context, playerID, trailID string) (map[string]bool, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT waypoint_id FROM progress WHERE player_id = ? AND trail_id = ?
	`, playerID, trailID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	done := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		done[id] = true
	}
	return done, rows.Err()
}

// RecordProgress relies on the (player_id, waypoint_id) primary key: a
// retried correct submission hits the conflict clause and is swallowed.
func (s *SQLiteStore) RecordProgress(ctx context.Context, playerID, trailID, waypointID string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO progress (player_id, trail_id, waypoint_id, completed_at)
		VALUES (?, ?, ?, strftime('%Y-%m-%dT%H:%M:%fZ', 'now'))
		ON CONFLICT (player_id, waypoint_id) DO NOTHING
	`, playerID, trailID, waypointID)
	return err
}

// RecordCompletion is first-write-wins: a replayed trail never overwrites the
// original ranked time, faster or slower.
func (s *SQLiteStore) RecordCompletion(ctx context.Context, playerID, trailID string, elapsedMs int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO completions (player_id, trail_id, elapsed_ms, completed_at)
		VALUES (?, ?, ?, strftime('%Y-%m-%dT%H:%M:%fZ', 'now'))
		ON CONFLICT (player_id, trail_id) DO NOTHING
	`, playerID, trailID, elapsedMs)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (s *SQLiteStore) GetCompletion(ctx context.Context, playerID, trailID string) (storytrail.Completion, error) {
	var c storytrail.Completion
	var completedAt string
	err := s.db.QueryRowContext(ctx, `
		SELECT player_id, trail_id, elapsed_ms, completed_at
		FROM completions WHERE player_id = ? AND trail_id = ?
	`, playerID, trailID).Scan(&c.PlayerID, &c.TrailID, &c.ElapsedMs, &completedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return c, ErrNotFound
	}
	if err != nil {
		return c, err
	}
	c.CompletedAt = parseStoredTime(completedAt)
	return c, nil
}

// Leaderboard orders by elapsed time; ties break on earlier completion, then
// player id, so ranks are deterministic.
func (s *SQLiteStore) Leaderboard(ctx context.Context, trailID string) ([]LeaderboardEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT COALESCE(NULLIF(p.player_name, ''), 'Anonymous'), c.elapsed_ms, c.completed_at
		FROM completions c
		LEFT JOIN profiles p ON p.player_id = c.player_id
		WHERE c.trail_id = ?
		ORDER BY c.elapsed_ms, c.completed_at, c.player_id
	`, trailID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []LeaderboardEntry{}
	for rows.Next() {
		var e LeaderboardEntry
		if err := rows.Scan(&e.PlayerName, &e.TimeMs, &e.CompletedAt); err != nil {
			return nil, err
		}
		e.Rank = len(entries) + 1
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

const playtestKey = "playtest_enabled"

func (s *SQLiteStore) PlaytestEnabled(ctx context.Context) (bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `
		SELECT value FROM app_settings WHERE key = ?
	`, playtestKey).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return value == "true", err
}

func (s *SQLiteStore) SetPlaytestEnabled(ctx context.Context, enabled bool) error {
	value := "false"
	if enabled {
		value = "true"
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO app_settings (key, value) VALUES (?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value
	`, playtestKey, value)
	return err
}
