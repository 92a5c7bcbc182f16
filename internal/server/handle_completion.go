package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"github.com/SireeshLimbu/StoryTrail/internal/game"
)

// CompletionRequest carries the client-observed elapsed time. The server
// trusts the value by design (best-effort leaderboard) but guards the write:
// the trail must actually be finished, and only the first time ever counts.
type CompletionRequest struct {
	ElapsedMs int64 `json:"elapsedMs"`
}

type CompletionResponse struct {
	// Recorded is true when this call stored the time, false when an earlier
	// run already holds the player's slot for this trail.
	Recorded   bool           `json:"recorded"`
	Completion CompletionInfo `json:"completion"`
}

func handleRecordCompletion(logger *slog.Logger, store Store, rdb *redis.Client, broker *Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := playerFromRequest(r, store)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		var req CompletionRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.ElapsedMs <= 0 {
			writeError(w, http.StatusBadRequest, "elapsedMs must be positive")
			return
		}

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

		waypoints, err := store.ListWaypoints(r.Context(), trailID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		done, err := store.CompletedWaypointIDs(r.Context(), sess.PlayerID, trailID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		if !game.TrailFinished(waypoints, done) {
			writeError(w, http.StatusConflict, "trail not finished")
			return
		}

		recorded, err := store.RecordCompletion(r.Context(), sess.PlayerID, trailID, req.ElapsedMs)
		if err != nil {
			logger.Error("recording completion", "error", err,
				"player_id", sess.PlayerID, "trail_id", trailID)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		if recorded {
			invalidateLeaderboard(r.Context(), logger, rdb, trailID)
			broker.Publish(sess.PlayerID, ProgressEvent{
				Type:      "trail_completed",
				TrailID:   trailID,
				ElapsedMs: req.ElapsedMs,
			})
		}

		c, err := store.GetCompletion(r.Context(), sess.PlayerID, trailID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		writeJSON(w, http.StatusOK, CompletionResponse{
			Recorded: recorded,
			Completion: CompletionInfo{
				ElapsedMs:   c.ElapsedMs,
				CompletedAt: c.CompletedAt.UTC().Format("2006-01-02T15:04:05.000Z"),
			},
		})
	}
}

func handleGetCompletion(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := playerFromRequest(r, store)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		c, err := store.GetCompletion(r.Context(), sess.PlayerID, chi.URLParam(r, "trailID"))
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "no completion recorded")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		writeJSON(w, http.StatusOK, CompletionInfo{
			ElapsedMs:   c.ElapsedMs,
			CompletedAt: c.CompletedAt.UTC().Format("2006-01-02T15:04:05.000Z"),
		})
	}
}

func invalidateLeaderboard(ctx context.Context, logger *slog.Logger, rdb *redis.Client, trailID string) {
	if rdb == nil {
		return
	}
	if err := rdb.Del(ctx, leaderboardKey(trailID)).Err(); err != nil {
		// Stale cache expires on its own TTL; log and move on.
		logger.Warn("invalidating leaderboard cache", "trail_id", trailID, "error", err)
	}
}
