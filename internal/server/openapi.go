package server

import (
	"encoding/json"
	"net/http"

	openapi "github.com/swaggest/openapi-go"
	"github.com/swaggest/openapi-go/openapi3"
)

// ErrorResponse is returned for all error responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

func newOpenAPISpec() *openapi3.Spec {
	r := openapi3.NewReflector()
	r.Spec.Info.Title = "StoryTrail API"
	r.Spec.Info.Version = "0.1.0"
	r.Spec.Info.WithDescription("Trail progression and validation engine for the StoryTrail game.")

	// GET /healthz
	getHealthz, _ := r.NewOperationContext(http.MethodGet, "/healthz")
	getHealthz.SetSummary("Health check")
	getHealthz.SetDescription("Returns the health status of backend dependencies.")
	getHealthz.AddRespStructure(HealthResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getHealthz.AddRespStructure(HealthResponse{}, openapi.WithHTTPStatus(http.StatusServiceUnavailable))
	_ = r.AddOperation(getHealthz)

	// POST /validate-answer
	postValidate, _ := r.NewOperationContext(http.MethodPost, "/validate-answer")
	postValidate.SetSummary("Validate an answer")
	postValidate.SetDescription("Server-authoritative answer check. Records progress on a correct submission and returns the unlocked clue. The correct answer is never included in the response. Requires Bearer token.")
	postValidate.AddReqStructure(ValidateAnswerRequest{})
	postValidate.AddRespStructure(ValidateAnswerResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postValidate.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	postValidate.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	postValidate.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusForbidden))
	postValidate.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(postValidate)

	// GET /api/trails
	listTrails, _ := r.NewOperationContext(http.MethodGet, "/api/trails")
	listTrails.SetSummary("List trails")
	listTrails.SetDescription("Returns all published trails ordered for display.")
	listTrails.AddRespStructure([]TrailSummary{}, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(listTrails)

	// GET /api/trails/{trailID}
	getTrail, _ := r.NewOperationContext(http.MethodGet, "/api/trails/{trailID}")
	getTrail.SetSummary("Get trail")
	getTrail.SetDescription("Returns one published trail.")
	getTrail.AddRespStructure(TrailDetailResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getTrail.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(getTrail)

	// GET /api/trails/{trailID}/waypoints
	listWaypoints, _ := r.NewOperationContext(http.MethodGet, "/api/trails/{trailID}/waypoints")
	listWaypoints.SetSummary("List waypoints")
	listWaypoints.SetDescription("Returns the trail's waypoints with answer data and clues stripped.")
	listWaypoints.AddRespStructure([]WaypointPublic{}, openapi.WithHTTPStatus(http.StatusOK))
	listWaypoints.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(listWaypoints)

	// GET /api/trails/{trailID}/state
	getState, _ := r.NewOperationContext(http.MethodGet, "/api/trails/{trailID}/state")
	getState.SetSummary("Get trail state")
	getState.SetDescription("Returns per-waypoint lock state for the caller, with distance and presence when lat/lng query parameters carry the device's latest fix. Requires Bearer token.")
	getState.AddRespStructure(TrailStateResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getState.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	getState.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(getState)

	// POST /api/trails/{trailID}/completion
	postCompletion, _ := r.NewOperationContext(http.MethodPost, "/api/trails/{trailID}/completion")
	postCompletion.SetSummary("Record completion time")
	postCompletion.SetDescription("Stores the caller's elapsed time for a finished trail. First write wins; replays never overwrite the original time. Requires Bearer token.")
	postCompletion.AddReqStructure(CompletionRequest{})
	postCompletion.AddRespStructure(CompletionResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postCompletion.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	postCompletion.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	postCompletion.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	_ = r.AddOperation(postCompletion)

	// GET /api/trails/{trailID}/completion
	getCompletion, _ := r.NewOperationContext(http.MethodGet, "/api/trails/{trailID}/completion")
	getCompletion.SetSummary("Get own completion")
	getCompletion.SetDescription("Returns the caller's recorded time for this trail, if any. Requires Bearer token.")
	getCompletion.AddRespStructure(CompletionInfo{}, openapi.WithHTTPStatus(http.StatusOK))
	getCompletion.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(getCompletion)

	// GET /api/trails/{trailID}/leaderboard
	getLeaderboard, _ := r.NewOperationContext(http.MethodGet, "/api/trails/{trailID}/leaderboard")
	getLeaderboard.SetSummary("Trail leaderboard")
	getLeaderboard.SetDescription("Returns completion times ranked fastest first, with public player names.")
	getLeaderboard.AddRespStructure([]LeaderboardEntry{}, openapi.WithHTTPStatus(http.StatusOK))
	getLeaderboard.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(getLeaderboard)

	// GET /api/events
	getEvents, _ := r.NewOperationContext(http.MethodGet, "/api/events")
	getEvents.SetSummary("SSE progress stream")
	getEvents.SetDescription("Server-Sent Events stream of the caller's progression events. Pass the session token as a query parameter.")
	getEvents.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK),
		openapi.WithContentType("text/event-stream"))
	_ = r.AddOperation(getEvents)

	// POST /api/admin/login
	postLogin, _ := r.NewOperationContext(http.MethodPost, "/api/admin/login")
	postLogin.SetSummary("Admin login")
	postLogin.SetDescription("Authenticate with email and password. Sets admin_session cookie.")
	postLogin.AddReqStructure(AdminLoginRequest{})
	postLogin.AddRespStructure(AdminMeResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postLogin.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(postLogin)

	// POST /api/admin/logout
	postLogout, _ := r.NewOperationContext(http.MethodPost, "/api/admin/logout")
	postLogout.SetSummary("Admin logout")
	postLogout.SetDescription("Clears admin session and cookie.")
	postLogout.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(postLogout)

	// GET /api/admin/me
	getMe, _ := r.NewOperationContext(http.MethodGet, "/api/admin/me")
	getMe.SetSummary("Current admin")
	getMe.SetDescription("Returns the currently authenticated admin. Requires admin_session cookie.")
	getMe.AddRespStructure(AdminMeResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getMe.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(getMe)

	// GET /api/admin/settings/playtest
	getPlaytest, _ := r.NewOperationContext(http.MethodGet, "/api/admin/settings/playtest")
	getPlaytest.SetSummary("Get playtest flag")
	getPlaytest.SetDescription("Returns whether playtest mode is enabled. Requires admin_session cookie.")
	getPlaytest.AddRespStructure(PlaytestSetting{}, openapi.WithHTTPStatus(http.StatusOK))
	getPlaytest.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(getPlaytest)

	// PUT /api/admin/settings/playtest
	putPlaytest, _ := r.NewOperationContext(http.MethodPut, "/api/admin/settings/playtest")
	putPlaytest.SetSummary("Set playtest flag")
	putPlaytest.SetDescription("Toggles playtest mode: bypasses entitlement checks and allows client presence overrides. Never enable in production play. Requires admin_session cookie.")
	putPlaytest.AddReqStructure(PlaytestSetting{})
	putPlaytest.AddRespStructure(PlaytestSetting{}, openapi.WithHTTPStatus(http.StatusOK))
	putPlaytest.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(putPlaytest)

	return r.Spec
}

func handleOpenAPI() http.HandlerFunc {
	spec := newOpenAPISpec()
	data, _ := json.MarshalIndent(spec, "", "  ")

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}
