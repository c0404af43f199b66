// Package httpapi implements the HTTP surface of the hiring engine.
//
// All routes expect x-user-id and x-user-role headers forwarded by the
// Gateway after authentication; the engine itself only authorizes.
//
// Routes:
//
//	POST /applications                       → apply to a job (seeker)
//	GET  /applications                       → list caller's applications
//	GET  /applications/{id}                  → fetch one application
//	POST /applications/{id}/{action}         → view | shortlist | reject |
//	                                           withdraw | accept | interview |
//	                                           hire-response | complete | cancel
//	GET  /applications/{id}/interviews       → list the application's interviews
//	GET  /interviews/{id}                    → fetch one interview
//	POST /interviews/{id}/{action}           → confirm | decline | reschedule |
//	                                           complete | no-show | cancel | dates
//	GET  /slots?date=YYYY-MM-DD&duration=30  → company's free starts for a day
package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/Fazalwahab12/shift-backend-sub001/internal/hiring"
)

// Handler holds shared dependencies.
type Handler struct {
	engine *hiring.Orchestrator
	log    *slog.Logger
}

// NewHandler returns a configured Handler.
func NewHandler(engine *hiring.Orchestrator, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{engine: engine, log: log}
}

// RegisterRoutes mounts all engine routes on mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/applications", h.handleApplications)
	mux.HandleFunc("/applications/", h.handleApplicationAction)
	mux.HandleFunc("/interviews/", h.handleInterviewAction)
	mux.HandleFunc("/slots", h.handleSlots)
}

// ─── Route dispatch ──────────────────────────────────────────────────────────

func (h *Handler) handleApplications(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	switch r.Method {
	case http.MethodPost:
		var in hiring.ApplyInput
		if !decode(w, r, &in) {
			return
		}
		h.respond(w, r, http.StatusCreated)(h.engine.Apply(r.Context(), actor, in))
	case http.MethodGet:
		apps, err := h.engine.ListApplications(r.Context(), actor)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		jsonOK(w, apps)
	default:
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) handleApplicationAction(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	switch {
	case len(parts) == 2 && r.Method == http.MethodGet:
		h.respond(w, r, http.StatusOK)(h.engine.GetApplication(r.Context(), actor, parts[1]))
	case len(parts) == 3 && parts[2] == "interviews" && r.Method == http.MethodGet:
		ivs, err := h.engine.ListInterviews(r.Context(), actor, parts[1])
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		jsonOK(w, ivs)
	case len(parts) == 3 && r.Method == http.MethodPost:
		h.applicationAction(w, r, actor, parts[1], parts[2])
	default:
		jsonError(w, "invalid path", http.StatusNotFound)
	}
}

func (h *Handler) applicationAction(w http.ResponseWriter, r *http.Request, actor hiring.Actor, appID, action string) {
	ctx := r.Context()
	switch action {
	case "view":
		h.respond(w, r, http.StatusOK)(h.engine.MarkViewed(ctx, actor, appID))
	case "shortlist":
		h.respond(w, r, http.StatusOK)(h.engine.Shortlist(ctx, actor, appID))
	case "reject":
		var body struct {
			Reason string `json:"reason"`
		}
		if !decode(w, r, &body) {
			return
		}
		h.respond(w, r, http.StatusOK)(h.engine.Reject(ctx, actor, appID, body.Reason))
	case "withdraw":
		h.respond(w, r, http.StatusOK)(h.engine.Withdraw(ctx, actor, appID))
	case "accept":
		var in hiring.AcceptInput
		if !decode(w, r, &in) {
			return
		}
		h.respond(w, r, http.StatusOK)(h.engine.Accept(ctx, actor, appID, in))
	case "interview":
		var in hiring.ScheduleInput
		if !decode(w, r, &in) {
			return
		}
		iv, err := h.engine.ScheduleInterview(ctx, actor, appID, in)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(iv)
	case "hire-response":
		var body struct {
			Accepted *bool `json:"accepted"`
		}
		if !decode(w, r, &body) {
			return
		}
		// An absent field must not read as a decline.
		if body.Accepted == nil {
			jsonError(w, "accepted is required", http.StatusBadRequest)
			return
		}
		h.respond(w, r, http.StatusOK)(h.engine.RespondToHireRequest(ctx, actor, appID, *body.Accepted))
	case "complete":
		var body struct {
			Feedback string `json:"feedback"`
			Rating   int    `json:"rating"`
		}
		if !decode(w, r, &body) {
			return
		}
		h.respond(w, r, http.StatusOK)(h.engine.CompleteJob(ctx, actor, appID, body.Feedback, body.Rating))
	case "cancel":
		var body struct {
			Reason string `json:"reason"`
		}
		if !decode(w, r, &body) {
			return
		}
		h.respond(w, r, http.StatusOK)(h.engine.CancelJob(ctx, actor, appID, body.Reason))
	default:
		jsonError(w, fmt.Sprintf("unknown action %q", action), http.StatusNotFound)
	}
}

func (h *Handler) handleInterviewAction(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	switch {
	case len(parts) == 2 && r.Method == http.MethodGet:
		h.respondInterview(w, r)(h.engine.GetInterview(r.Context(), actor, parts[1]))
		return
	case len(parts) == 3 && r.Method == http.MethodPost:
	default:
		jsonError(w, "invalid path", http.StatusNotFound)
		return
	}

	ctx := r.Context()
	ivID, action := parts[1], parts[2]
	switch action {
	case "confirm":
		h.respondInterview(w, r)(h.engine.ConfirmInterview(ctx, actor, ivID))
	case "decline":
		var body struct {
			Reason string `json:"reason"`
		}
		if !decode(w, r, &body) {
			return
		}
		h.respondInterview(w, r)(h.engine.DeclineInterview(ctx, actor, ivID, body.Reason))
	case "reschedule":
		var in hiring.RescheduleInput
		if !decode(w, r, &in) {
			return
		}
		h.respondInterview(w, r)(h.engine.RescheduleInterview(ctx, actor, ivID, in))
	case "complete":
		var in hiring.CompleteInput
		if !decode(w, r, &in) {
			return
		}
		h.respondInterview(w, r)(h.engine.CompleteInterview(ctx, actor, ivID, in))
	case "no-show":
		h.respondInterview(w, r)(h.engine.MarkNoShow(ctx, actor, ivID))
	case "cancel":
		var body struct {
			Reason string `json:"reason"`
		}
		if !decode(w, r, &body) {
			return
		}
		h.respondInterview(w, r)(h.engine.CancelInterview(ctx, actor, ivID, body.Reason))
	case "dates":
		var body struct {
			Options []hiring.SlotOption `json:"options"`
		}
		if !decode(w, r, &body) {
			return
		}
		h.respondInterview(w, r)(h.engine.AddInterviewDates(ctx, actor, ivID, body.Options))
	default:
		jsonError(w, fmt.Sprintf("unknown action %q", action), http.StatusNotFound)
	}
}

func (h *Handler) handleSlots(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	date := r.URL.Query().Get("date")
	duration := 0
	if _, err := fmt.Sscanf(r.URL.Query().Get("duration"), "%d", &duration); err != nil {
		jsonError(w, "duration query parameter is required", http.StatusBadRequest)
		return
	}
	slots, err := h.engine.AvailableSlots(r.Context(), actor, date, duration)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	jsonOK(w, map[string]any{"date": date, "durationMinutes": duration, "slots": slots})
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

func (h *Handler) actor(w http.ResponseWriter, r *http.Request) (hiring.Actor, bool) {
	id := r.Header.Get("x-user-id")
	role := r.Header.Get("x-user-role")
	if id == "" || role == "" {
		jsonError(w, "missing x-user-id or x-user-role header", http.StatusUnauthorized)
		return hiring.Actor{}, false
	}
	if role != string(hiring.RoleSeeker) && role != string(hiring.RoleCompany) {
		jsonError(w, fmt.Sprintf("unknown role %q", role), http.StatusUnauthorized)
		return hiring.Actor{}, false
	}
	return hiring.Actor{ID: id, Role: hiring.Role(role)}, true
}

func (h *Handler) respond(w http.ResponseWriter, r *http.Request, status int) func(*hiring.JobApplication, error) {
	return func(app *hiring.JobApplication, err error) {
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(app)
	}
}

func (h *Handler) respondInterview(w http.ResponseWriter, r *http.Request) func(*hiring.Interview, error) {
	return func(iv *hiring.Interview, err error) {
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		jsonOK(w, iv)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var domainErr *hiring.Error
	if errors.As(err, &domainErr) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(statusOf(domainErr.Code))
		_ = json.NewEncoder(w).Encode(domainErr)
		return
	}
	h.log.Error("internal error", "path", r.URL.Path, "err", err)
	jsonError(w, "internal server error", http.StatusInternalServerError)
}

func statusOf(code hiring.Code) int {
	switch code {
	case hiring.CodeValidation:
		return http.StatusBadRequest
	case hiring.CodeNotFound:
		return http.StatusNotFound
	case hiring.CodeForbidden:
		return http.StatusForbidden
	case hiring.CodeInvalidTransition:
		return http.StatusUnprocessableEntity
	case hiring.CodeSlotConflict, hiring.CodeConflict:
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if r.Body == nil || r.ContentLength == 0 {
		return true
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return false
	}
	return true
}

func jsonOK(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
