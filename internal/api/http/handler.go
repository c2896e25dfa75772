package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/voisin/friendgraph/internal/domain"
	"github.com/voisin/friendgraph/internal/engine"
	"github.com/voisin/friendgraph/pkg/log"
)

// HealthChecker reports backend connectivity.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Handler handles HTTP API requests
type Handler struct {
	logger *slog.Logger
	engine *engine.Engine
	health HealthChecker
}

// NewHandler creates a new HTTP handler
func NewHandler(eng *engine.Engine, health HealthChecker) *Handler {
	return &Handler{
		logger: log.Logger("http.handler"),
		engine: eng,
		health: health,
	}
}

// Response represents a standard API response
type Response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// RegisterRoutes registers all HTTP routes
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	// Relationship mutations
	mux.HandleFunc("POST /api/v1/friends/request", h.SendRequest)
	mux.HandleFunc("POST /api/v1/friends/accept", h.AcceptRequest)
	mux.HandleFunc("POST /api/v1/friends/reject", h.RejectRequest)
	mux.HandleFunc("POST /api/v1/friends/cancel", h.CancelRequest)
	mux.HandleFunc("POST /api/v1/friends/remove", h.RemoveFriend)

	// Relationship queries
	mux.HandleFunc("GET /api/v1/friends", h.Friends)
	mux.HandleFunc("GET /api/v1/friends/requests/incoming", h.IncomingRequests)
	mux.HandleFunc("GET /api/v1/friends/requests/outgoing", h.OutgoingRequests)
	mux.HandleFunc("GET /api/v1/friends/status", h.Status)
	mux.HandleFunc("GET /api/v1/friends/suggestions", h.Suggestions)

	// Health check
	mux.HandleFunc("GET /health", h.Health)
	mux.HandleFunc("GET /api/v1/health", h.Health)
}

// pairRequest is the body of request-edge mutations.
type pairRequest struct {
	FromID string `json:"from_id"`
	ToID   string `json:"to_id"`
}

// removeRequest is the body of a friendship removal.
type removeRequest struct {
	UserID   string `json:"user_id"`
	FriendID string `json:"friend_id"`
}

// SendRequest handles POST /api/v1/friends/request
func (h *Handler) SendRequest(w http.ResponseWriter, r *http.Request) {
	var req pairRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	result, err := h.engine.SendRequest(r.Context(), req.FromID, req.ToID)
	if err != nil {
		h.writeEngineError(w, "send request failed", err)
		return
	}

	h.writeJSON(w, http.StatusOK, Response{Success: result.Success, Data: result})
}

// AcceptRequest handles POST /api/v1/friends/accept
func (h *Handler) AcceptRequest(w http.ResponseWriter, r *http.Request) {
	h.mutatePair(w, r, "accept request failed", h.engine.AcceptRequest)
}

// RejectRequest handles POST /api/v1/friends/reject
func (h *Handler) RejectRequest(w http.ResponseWriter, r *http.Request) {
	h.mutatePair(w, r, "reject request failed", h.engine.RejectRequest)
}

// CancelRequest handles POST /api/v1/friends/cancel
func (h *Handler) CancelRequest(w http.ResponseWriter, r *http.Request) {
	h.mutatePair(w, r, "cancel request failed", h.engine.CancelRequest)
}

func (h *Handler) mutatePair(w http.ResponseWriter, r *http.Request, logMsg string, op func(context.Context, string, string) (*domain.Result, error)) {
	var req pairRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	result, err := op(r.Context(), req.FromID, req.ToID)
	if err != nil {
		h.writeEngineError(w, logMsg, err)
		return
	}

	h.writeJSON(w, http.StatusOK, Response{Success: result.Success, Data: result})
}

// RemoveFriend handles POST /api/v1/friends/remove
func (h *Handler) RemoveFriend(w http.ResponseWriter, r *http.Request) {
	var req removeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	result, err := h.engine.RemoveFriend(r.Context(), req.UserID, req.FriendID)
	if err != nil {
		h.writeEngineError(w, "remove friend failed", err)
		return
	}

	h.writeJSON(w, http.StatusOK, Response{Success: result.Success, Data: result})
}

// Friends handles GET /api/v1/friends
func (h *Handler) Friends(w http.ResponseWriter, r *http.Request) {
	h.listUsers(w, r, "list friends failed", h.engine.Friends)
}

// IncomingRequests handles GET /api/v1/friends/requests/incoming
func (h *Handler) IncomingRequests(w http.ResponseWriter, r *http.Request) {
	h.listUsers(w, r, "list incoming requests failed", h.engine.IncomingRequests)
}

// OutgoingRequests handles GET /api/v1/friends/requests/outgoing
func (h *Handler) OutgoingRequests(w http.ResponseWriter, r *http.Request) {
	h.listUsers(w, r, "list outgoing requests failed", h.engine.OutgoingRequests)
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request, logMsg string, op func(context.Context, string) ([]domain.User, error)) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		h.writeError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	users, err := op(r.Context(), userID)
	if err != nil {
		h.writeEngineError(w, logMsg, err)
		return
	}

	h.writeJSON(w, http.StatusOK, Response{Success: true, Data: users})
}

// Status handles GET /api/v1/friends/status
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	otherID := r.URL.Query().Get("other_id")
	if userID == "" || otherID == "" {
		h.writeError(w, http.StatusBadRequest, "user_id and other_id are required")
		return
	}

	status, err := h.engine.Status(r.Context(), userID, otherID)
	if err != nil {
		h.writeEngineError(w, "status lookup failed", err)
		return
	}

	h.writeJSON(w, http.StatusOK, Response{Success: true, Data: map[string]any{"status": status}})
}

// Suggestions handles GET /api/v1/friends/suggestions
func (h *Handler) Suggestions(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		h.writeError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, "limit must be an integer")
			return
		}
		limit = parsed
	}

	suggestions, err := h.engine.Suggestions(r.Context(), userID, limit)
	if err != nil {
		h.writeEngineError(w, "suggestions failed", err)
		return
	}

	h.writeJSON(w, http.StatusOK, Response{Success: true, Data: suggestions})
}

// Health handles GET /health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if h.health != nil {
		if err := h.health.Health(r.Context()); err != nil {
			h.writeError(w, http.StatusServiceUnavailable, "graph store unavailable: "+err.Error())
			return
		}
	}

	h.writeJSON(w, http.StatusOK, Response{Success: true, Data: map[string]string{"status": "ok"}})
}

// writeEngineError maps engine errors to HTTP responses. Validation
// failures are the caller's fault; everything else is a store failure.
func (h *Handler) writeEngineError(w http.ResponseWriter, logMsg string, err error) {
	if errors.Is(err, domain.ErrInvalidUserID) || errors.Is(err, domain.ErrSelfRelation) {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.logger.Error(logMsg, "error", err)
	h.writeError(w, http.StatusInternalServerError, err.Error())
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, resp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, msg string) {
	h.writeJSON(w, status, Response{Success: false, Error: msg})
}
