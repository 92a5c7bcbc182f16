package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/SireeshLimbu/StoryTrail/internal/game"
	"github.com/SireeshLimbu/StoryTrail/internal/storytrail"
)

// WaypointStateInfo is the derived progression state of one waypoint for the
// calling player. DistanceM and AtWaypoint are present only when the request
// carried a position fix (or playtest presence is in effect).
type WaypointStateInfo struct {
	ID            string   `json:"id"`
	SequenceOrder int      `json:"sequenceOrder"`
	State         string   `json:"state"`
	IsIntro       bool     `json:"isIntro"`
	IsEnd         bool     `json:"isEnd"`
	DistanceM     *float64 `json:"distanceM,omitempty"`
	AtWaypoint    *bool    `json:"atWaypoint,omitempty"`
}

// CompletionInfo is a recorded finishing time.
type CompletionInfo struct {
	ElapsedMs   int64  `json:"elapsedMs"`
	CompletedAt string `json:"completedAt"`
}

type TrailStateResponse struct {
	TrailID   string              `json:"trailId"`
	Waypoints []WaypointStateInfo `json:"waypoints"`
	Finished  bool                `json:"finished"`
	// Completion is the player's recorded time from any earlier run, nil if
	// they have never finished this trail.
	Completion *CompletionInfo `json:"completion"`
	// TimerEligible reports whether the run clock may start right now. It is
	// false whenever Completion is set.
	TimerEligible bool `json:"timerEligible"`
}

// handleTrailState derives the lock/unlock state of every waypoint for the
// calling player. The client may pass its latest position fix as lat/lng
// query parameters to get distances and presence; no fix means presence is
// false, never assumed. With playtest mode on, playtest=1 marks every
// unlocked waypoint as arrived.
func handleTrailState(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := playerFromRequest(r, store)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
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

		fix := fixFromQuery(r)
		playtestPresence := false
		if r.URL.Query().Get("playtest") == "1" {
			enabled, err := store.PlaytestEnabled(r.Context())
			if err != nil {
				writeError(w, http.StatusInternalServerError, "internal error")
				return
			}
			playtestPresence = enabled
		}

		states := game.DeriveStates(waypoints, done)
		infos := make([]WaypointStateInfo, 0, len(waypoints))
		var first *storytrail.Waypoint
		firstPresent := false

		for i, wp := range waypoints {
			info := WaypointStateInfo{
				ID:            wp.ID,
				SequenceOrder: wp.SequenceOrder,
				State:         string(states[wp.ID]),
				IsIntro:       wp.IsIntro,
				IsEnd:         wp.IsEnd,
			}

			unlocked := states[wp.ID] != storytrail.StateLocked
			if fix != nil {
				info.DistanceM = game.DistanceTo(fix, wp.Position)
				present := game.IsPresent(fix, wp.Position) || (playtestPresence && unlocked)
				info.AtWaypoint = &present
			} else if playtestPresence {
				present := unlocked
				info.AtWaypoint = &present
			}

			if first == nil || wp.SequenceOrder < first.SequenceOrder {
				first = &waypoints[i]
				firstPresent = info.AtWaypoint != nil && *info.AtWaypoint
			}
			infos = append(infos, info)
		}

		finished := game.TrailFinished(waypoints, done)

		var completion *CompletionInfo
		completedBefore := false
		if c, err := store.GetCompletion(r.Context(), sess.PlayerID, trailID); err == nil {
			completedBefore = true
			completion = &CompletionInfo{
				ElapsedMs:   c.ElapsedMs,
				CompletedAt: c.CompletedAt.UTC().Format("2006-01-02T15:04:05.000Z"),
			}
		} else if !errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		timerEligible := false
		if first != nil {
			timerEligible = game.ShouldStart(game.StartConditions{
				FirstUnlocked:      states[first.ID] != storytrail.StateLocked,
				PresentOrCompleted: firstPresent || done[first.ID],
				TrailFinished:      finished,
				CompletedBefore:    completedBefore,
			})
		}

		writeJSON(w, http.StatusOK, TrailStateResponse{
			TrailID:       trailID,
			Waypoints:     infos,
			Finished:      finished,
			Completion:    completion,
			TimerEligible: timerEligible,
		})
	}
}

// fixFromQuery reads the client's latest position fix from lat/lng query
// parameters. Returns nil unless both parse: a partial fix is no fix.
func fixFromQuery(r *http.Request) *storytrail.Coordinate {
	latStr := r.URL.Query().Get("lat")
	lngStr := r.URL.Query().Get("lng")
	if latStr == "" || lngStr == "" {
		return nil
	}
	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return nil
	}
	lng, err := strconv.ParseFloat(lngStr, 64)
	if err != nil {
		return nil
	}
	return &storytrail.Coordinate{Lat: lat, Lng: lng}
}
