package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func (e *testEnv) getLeaderboard(t *testing.T, trailID string) (int, []LeaderboardEntry) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/api/trails/"+trailID+"/leaderboard", nil)
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	var entries []LeaderboardEntry
	if w.Code == http.StatusOK {
		if err := json.NewDecoder(w.Body).Decode(&entries); err != nil {
			t.Fatalf("decoding leaderboard: %v", err)
		}
	}
	return w.Code, entries
}

func (e *testEnv) insertCompletion(t *testing.T, playerID, trailID string, elapsedMs int64, completedAt string) {
	t.Helper()
	_, err := e.db.Exec(`
		INSERT INTO completions (player_id, trail_id, elapsed_ms, completed_at) VALUES (?, ?, ?, ?)
	`, playerID, trailID, elapsedMs, completedAt)
	if err != nil {
		t.Fatalf("inserting completion: %v", err)
	}
}

func TestLeaderboardRanking(t *testing.T) {
	env := newTestEnv(t, nil)
	trail := env.trailID(t)

	env.insertCompletion(t, env.playerID(t, "Birger"), trail, 120000, "2026-08-30T10:00:00.000Z")
	env.insertCompletion(t, env.playerID(t, "Astrid"), trail, 95000, "2026-08-30T11:00:00.000Z")

	code, entries := env.getLeaderboard(t, trail)
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}

	if entries[0].Rank != 1 || entries[0].PlayerName != "Astrid" || entries[0].TimeMs != 95000 {
		t.Errorf("rank 1 = %+v, want Astrid at 95000", entries[0])
	}
	if entries[1].Rank != 2 || entries[1].PlayerName != "Birger" || entries[1].TimeMs != 120000 {
		t.Errorf("rank 2 = %+v, want Birger at 120000", entries[1])
	}
}

func TestLeaderboardTieBreaksOnEarlierFinish(t *testing.T) {
	env := newTestEnv(t, nil)
	trail := env.trailID(t)

	// Same elapsed time, Birger finished a day earlier.
	env.insertCompletion(t, env.playerID(t, "Astrid"), trail, 95000, "2026-08-30T10:00:00.000Z")
	env.insertCompletion(t, env.playerID(t, "Birger"), trail, 95000, "2026-08-29T10:00:00.000Z")

	_, entries := env.getLeaderboard(t, trail)
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].PlayerName != "Birger" {
		t.Errorf("expected earlier finisher first, got %q", entries[0].PlayerName)
	}
}

func TestLeaderboardAnonymousFallback(t *testing.T) {
	env := newTestEnv(t, nil)
	trail := env.trailID(t)

	// A player with a blank profile, and one with no profile row at all.
	if _, err := env.db.Exec(`INSERT INTO profiles (player_id, player_name) VALUES ('blank-player', '')`); err != nil {
		t.Fatalf("inserting profile: %v", err)
	}
	env.insertCompletion(t, "blank-player", trail, 90000, "2026-08-30T10:00:00.000Z")
	env.insertCompletion(t, "ghost-player", trail, 91000, "2026-08-30T10:00:00.000Z")

	_, entries := env.getLeaderboard(t, trail)
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	for _, e := range entries {
		if e.PlayerName != "Anonymous" {
			t.Errorf("expected Anonymous, got %q", e.PlayerName)
		}
	}
}

func TestLeaderboardEmpty(t *testing.T) {
	env := newTestEnv(t, nil)

	code, entries := env.getLeaderboard(t, env.trailID(t))
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if len(entries) != 0 {
		t.Errorf("expected empty leaderboard, got %d entries", len(entries))
	}
}

func TestLeaderboardUnknownTrail(t *testing.T) {
	env := newTestEnv(t, nil)

	code, _ := env.getLeaderboard(t, "nope")
	if code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", code)
	}
}

func TestLeaderboardCache(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	env := newTestEnv(t, rdb)
	trail := env.trailID(t)
	env.insertCompletion(t, env.playerID(t, "Astrid"), trail, 95000, "2026-08-30T10:00:00.000Z")

	code, entries := env.getLeaderboard(t, trail)
	if code != http.StatusOK || len(entries) != 1 {
		t.Fatalf("first read: code %d, %d entries", code, len(entries))
	}
	if !mr.Exists(leaderboardKey(trail)) {
		t.Fatal("expected leaderboard cached after first read")
	}

	// While cached, a new completion is not visible yet.
	env.insertCompletion(t, env.playerID(t, "Birger"), trail, 80000, "2026-08-30T11:00:00.000Z")
	_, entries = env.getLeaderboard(t, trail)
	if len(entries) != 1 {
		t.Fatalf("expected cached single entry, got %d", len(entries))
	}

	// Past the TTL the cache refills from the database.
	mr.FastForward(leaderboardTTL)
	_, entries = env.getLeaderboard(t, trail)
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries after cache expiry, got %d", len(entries))
	}
	if entries[0].PlayerName != "Birger" {
		t.Errorf("expected Birger first after expiry, got %q", entries[0].PlayerName)
	}
}

func TestCompletionInvalidatesLeaderboardCache(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	env := newTestEnv(t, rdb)
	trail := env.trailID(t)

	// Warm the cache with an empty board.
	if code, _ := env.getLeaderboard(t, trail); code != http.StatusOK {
		t.Fatalf("warming cache: got %d", code)
	}
	if !mr.Exists(leaderboardKey(trail)) {
		t.Fatal("expected cache warmed")
	}

	env.finishTrail(t, env.playerID(t, "Astrid"), trail)
	if w := env.postCompletion(t, astridToken, trail, 95000); w.Code != http.StatusOK {
		t.Fatalf("posting completion: got %d", w.Code)
	}

	if mr.Exists(leaderboardKey(trail)) {
		t.Fatal("expected cache invalidated by new completion")
	}

	_, entries := env.getLeaderboard(t, trail)
	if len(entries) != 1 || entries[0].PlayerName != "Astrid" {
		t.Fatalf("expected Astrid on the board, got %+v", entries)
	}
}
