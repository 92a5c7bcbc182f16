package server

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/SireeshLimbu/StoryTrail/internal/storytrail"
)

// TrailDetailResponse is the public detail view of a trail.
type TrailDetailResponse struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Tagline      string   `json:"tagline"`
	ImageURL     string   `json:"imageUrl"`
	PriceCents   int      `json:"priceCents"`
	DistanceKm   *float64 `json:"distanceKm"`
	DisplayOrder int      `json:"displayOrder"`
}

// WaypointPublic is the client-safe view of a waypoint. Correct indices, the
// canonical free-text answer, and the clue are stripped — they only leave the
// server through a correct submission.
type WaypointPublic struct {
	ID            string   `json:"id"`
	TrailID       string   `json:"trailId"`
	Name          string   `json:"name"`
	SequenceOrder int      `json:"sequenceOrder"`
	Latitude      *float64 `json:"latitude"`
	Longitude     *float64 `json:"longitude"`
	IntroText     string   `json:"introText"`
	RiddleText    string   `json:"riddleText"`
	AnswerType    string   `json:"answerType"`
	AnswerOptions []string `json:"answerOptions"`
	ImageURL      string   `json:"imageUrl"`
	IsIntro       bool     `json:"isIntro"`
	IsReveal      bool     `json:"isReveal"`
	IsEnd         bool     `json:"isEnd"`
}

func publicWaypoint(w storytrail.Waypoint) WaypointPublic {
	p := WaypointPublic{
		ID:            w.ID,
		TrailID:       w.TrailID,
		Name:          w.Name,
		SequenceOrder: w.SequenceOrder,
		IntroText:     w.IntroText,
		RiddleText:    w.RiddleText,
		AnswerType:    string(w.AnswerType),
		AnswerOptions: w.AnswerOptions,
		ImageURL:      w.ImageURL,
		IsIntro:       w.IsIntro,
		IsReveal:      w.IsReveal,
		IsEnd:         w.IsEnd,
	}
	if p.AnswerOptions == nil {
		p.AnswerOptions = []string{}
	}
	if w.Position != nil {
		p.Latitude = &w.Position.Lat
		p.Longitude = &w.Position.Lng
	}
	return p
}

func handleListTrails(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		trails, err := store.ListTrails(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, trails)
	}
}

func handleGetTrail(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		trail, err := store.GetTrail(r.Context(), chi.URLParam(r, "trailID"))
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "trail not found")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		// Unpublished trails are invisible on the public read API.
		if !trail.IsPublished {
			writeError(w, http.StatusNotFound, "trail not found")
			return
		}

		writeJSON(w, http.StatusOK, TrailDetailResponse{
			ID:           trail.ID,
			Name:         trail.Name,
			Description:  trail.Description,
			Tagline:      trail.Tagline,
			ImageURL:     trail.ImageURL,
			PriceCents:   trail.PriceCents,
			DistanceKm:   trail.DistanceKm,
			DisplayOrder: trail.DisplayOrder,
		})
	}
}

func handleListWaypoints(store Store) http.HandlerFunc {
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

		waypoints, err := store.ListWaypoints(r.Context(), trailID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		public := make([]WaypointPublic, 0, len(waypoints))
		for _, wp := range waypoints {
			public = append(public, publicWaypoint(wp))
		}
		writeJSON(w, http.StatusOK, public)
	}
}
