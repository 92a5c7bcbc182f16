package server

import (
	"database/sql"
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/swaggest/swgui/v5emb"
)

func addRoutes(r chi.Router, logger *slog.Logger, store Store, db *sql.DB, rdb *redis.Client, spaDir string) {
	broker := NewBroker()

	r.Get("/openapi.json", handleOpenAPI())
	r.Mount("/docs", v5emb.New("StoryTrail API", "/openapi.json", "/docs"))
	r.Get("/healthz", handleHealth(logger, db, rdb))

	// The answer validator keeps its legacy path: the mobile client calls it
	// outside the /api prefix.
	r.Post("/validate-answer", handleValidateAnswer(logger, store, broker))

	r.Route("/api", func(r chi.Router) {
		r.Get("/trails", handleListTrails(store))
		r.Get("/trails/{trailID}", handleGetTrail(store))
		r.Get("/trails/{trailID}/waypoints", handleListWaypoints(store))
		r.Get("/trails/{trailID}/state", handleTrailState(store))
		r.Get("/trails/{trailID}/leaderboard", handleLeaderboard(logger, store, rdb))
		r.Post("/trails/{trailID}/completion", handleRecordCompletion(logger, store, rdb, broker))
		r.Get("/trails/{trailID}/completion", handleGetCompletion(store))
		r.Get("/events", handleEvents(store, broker))

		// Admin surface is limited to sessions and the playtest toggle;
		// trail content management lives in a separate system.
		r.Post("/admin/login", handleAdminLogin(db))
		r.Post("/admin/logout", handleAdminLogout(db))
		r.Get("/admin/me", handleAdminMe(db))
		r.Get("/admin/settings/playtest", handleGetPlaytest(db, store))
		r.Put("/admin/settings/playtest", handleSetPlaytest(logger, db, store))
	})

	if spaDir != "" {
		if info, err := os.Stat(spaDir); err == nil && info.IsDir() {
			logger.Info("serving SPA", "dir", spaDir)
			r.NotFound(handleSPA(spaDir))
		}
	}
}
