package server

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/SireeshLimbu/StoryTrail/internal/game"
)

// ValidateAnswerRequest is the request body for POST /validate-answer. The
// cityId/locationId vocabulary is the public wire contract the mobile client
// ships with; internally these are trail and waypoint ids.
type ValidateAnswerRequest struct {
	CityID     string `json:"cityId"`
	LocationID string `json:"locationId"`
	// AnswerIndex is -1 when no option applies (intro waypoints, playtest
	// unlocks).
	AnswerIndex    int    `json:"answerIndex"`
	FreeTextAnswer string `json:"freeTextAnswer,omitempty"`
}

// ValidateAnswerResponse never carries the correct answer, only whether the
// submission matched and, on success, the unlocked clue.
type ValidateAnswerResponse struct {
	Correct  bool    `json:"correct"`
	ClueText *string `json:"clue_text"`
}

// handleValidateAnswer is the server-authoritative answer check. The answer
// data never leaves this trust boundary: the response is a boolean plus the
// clue unlocked by a correct submission.
func handleValidateAnswer(logger *slog.Logger, store Store, broker *Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := playerFromRequest(r, store)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		var req ValidateAnswerRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.LocationID == "" || req.CityID == "" {
			writeError(w, http.StatusBadRequest, "Missing required fields: locationId, cityId")
			return
		}

		playtest, err := store.PlaytestEnabled(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Internal server error")
			return
		}

		trail, err := store.GetTrail(r.Context(), req.CityID)
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "City not found")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Internal server error")
			return
		}
		if !trail.IsPublished {
			writeError(w, http.StatusForbidden, "City not available")
			return
		}

		if trail.PriceCents > 0 && !playtest {
			owned, err := store.HasEntitlement(r.Context(), sess.PlayerID, trail.ID)
			if err != nil {
				writeError(w, http.StatusInternalServerError, "Internal server error")
				return
			}
			if !owned {
				writeError(w, http.StatusForbidden, "Purchase required")
				return
			}
		}

		waypoint, err := store.GetWaypoint(r.Context(), req.LocationID)
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "Location not found")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Internal server error")
			return
		}

		// Integrity check against cross-trail id confusion from a tampering
		// client. Logged, but the response stays generic.
		if waypoint.TrailID != trail.ID {
			logger.Warn("waypoint/trail mismatch on answer submission",
				"player_id", sess.PlayerID,
				"trail_id", trail.ID,
				"waypoint_id", waypoint.ID,
			)
			writeError(w, http.StatusBadRequest, "Location does not belong to this city")
			return
		}

		correct := game.CheckAnswer(waypoint, game.Submission{
			AnswerIndex: req.AnswerIndex,
			FreeText:    req.FreeTextAnswer,
		})

		if !correct {
			writeJSON(w, http.StatusOK, ValidateAnswerResponse{Correct: false})
			return
		}

		// The progress write must land before responding: the caller's next
		// unlock check depends on it. Duplicates are swallowed by the store.
		if err := store.RecordProgress(r.Context(), sess.PlayerID, trail.ID, waypoint.ID); err != nil {
			logger.Error("recording progress", "error", err,
				"player_id", sess.PlayerID, "waypoint_id", waypoint.ID)
			writeError(w, http.StatusInternalServerError, "Internal server error")
			return
		}

		broker.Publish(sess.PlayerID, ProgressEvent{
			Type:          "waypoint_completed",
			TrailID:       trail.ID,
			WaypointID:    waypoint.ID,
			SequenceOrder: waypoint.SequenceOrder,
		})

		resp := ValidateAnswerResponse{Correct: true}
		if !waypoint.IsIntro && waypoint.ClueText != "" {
			resp.ClueText = &waypoint.ClueText
		}
		writeJSON(w, http.StatusOK, resp)
	}
}
