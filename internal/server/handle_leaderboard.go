package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
)

// leaderboardTTL bounds staleness when the cache misses an invalidation.
const leaderboardTTL = 30 * time.Second

func leaderboardKey(trailID string) string {
	return "leaderboard:" + trailID
}

// handleLeaderboard returns the ranked completion times for a trail, fastest
// first. Ties break on earlier completion time, so ranks are stable. The
// result is cached in Redis for a short TTL; the cache is best-effort and a
// Redis failure falls through to SQLite.
func handleLeaderboard(logger *slog.Logger, store Store, rdb *redis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		trailID := chi.URLParam(r, "trailID")

		trail, err := store.GetTrail(r.Context(), trailID)
		if errors.Is(err, ErrNotFound) || (err == nil && !trail.IsPublished) {
			writeError(w, http.StatusNotFound, "trail not found")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		if rdb != nil {
			cached, err := rdb.Get(r.Context(), leaderboardKey(trailID)).Result()
			if err == nil {
				var entries []LeaderboardEntry
				if json.Unmarshal([]byte(cached), &entries) == nil {
					writeJSON(w, http.StatusOK, entries)
					return
				}
			} else if !errors.Is(err, redis.Nil) {
				logger.Warn("reading leaderboard cache", "trail_id", trailID, "error", err)
			}
		}

		entries, err := store.Leaderboard(r.Context(), trailID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		if rdb != nil {
			data, _ := json.Marshal(entries)
			if err := rdb.Set(r.Context(), leaderboardKey(trailID), data, leaderboardTTL).Err(); err != nil {
				logger.Warn("writing leaderboard cache", "trail_id", trailID, "error", err)
			}
		}

		writeJSON(w, http.StatusOK, entries)
	}
}
