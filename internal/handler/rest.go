package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/storyverse/realtime-platform/internal/middleware"
	"github.com/storyverse/realtime-platform/internal/model"
	"github.com/storyverse/realtime-platform/internal/service"
	"github.com/storyverse/realtime-platform/pkg/logger"
)

// RestHandler serves the seed surface: users and posts so the socket
// channels have referents, and read endpoints for comment threads and
// notifications.
type RestHandler struct {
	content       *service.ContentService
	notifications *service.NotificationService
	jwtSecret     string
	logger        *logger.Logger
}

// NewRestHandler creates the seed REST handler.
func NewRestHandler(content *service.ContentService, notifications *service.NotificationService, jwtSecret string, log *logger.Logger) *RestHandler {
	return &RestHandler{
		content:       content,
		notifications: notifications,
		jwtSecret:     jwtSecret,
		logger:        log,
	}
}

// CreateUser handles POST /api/v1/users. The response carries a signed
// token so a fresh user can open sockets immediately.
func (h *RestHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req model.CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := middleware.ValidateUsername(req.Username); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.content.CreateUser(r.Context(), &req)
	if err != nil {
		h.logger.Error("failed to create user", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to create user")
		return
	}

	token, err := middleware.IssueToken(h.jwtSecret, user.ID, user.Username)
	if err != nil {
		h.logger.Error("failed to sign token", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to create user")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"user":  user,
		"token": token,
	})
}

// GetUser handles GET /api/v1/users/{userID}.
func (h *RestHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "userID")
	user, err := h.content.GetUser(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// CreatePost handles POST /api/v1/posts. The author is the
// authenticated user.
func (h *RestHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	var req model.CreatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := middleware.ValidateTitle(req.Title); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := middleware.ValidateContent(req.Content); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	authorID := middleware.GetUserID(r.Context())
	post, err := h.content.CreatePost(r.Context(), authorID, &req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, post)
}

// GetPost handles GET /api/v1/posts/{postID}.
func (h *RestHandler) GetPost(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "postID")
	post, err := h.content.GetPost(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, post)
}

// ListPostComments handles GET /api/v1/posts/{postID}/comments.
func (h *RestHandler) ListPostComments(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "postID")
	threads, err := h.content.ListPostComments(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if threads == nil {
		threads = []model.CommentThread{}
	}
	writeJSON(w, http.StatusOK, threads)
}

// ListNotifications handles GET /api/v1/notifications for the
// authenticated user.
func (h *RestHandler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	actor := service.Actor{ID: middleware.GetUserID(r.Context())}
	items, err := h.notifications.List(r.Context(), actor)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if items == nil {
		items = []model.Notification{}
	}
	writeJSON(w, http.StatusOK, items)
}

// writeServiceError maps a service failure to an HTTP status.
func writeServiceError(w http.ResponseWriter, err error) {
	switch service.KindOf(err) {
	case service.KindNotFound:
		writeError(w, http.StatusNotFound, err.Error())
	case service.KindInvalid:
		writeError(w, http.StatusBadRequest, err.Error())
	case service.KindUnauthorized:
		writeError(w, http.StatusForbidden, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
