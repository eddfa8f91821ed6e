package api

import (
	"log/slog"
	"net/http"

	"github.com/inkwell-ai/inkwell-api/internal/api/shared"
	"github.com/inkwell-ai/inkwell-api/internal/domain"
	"github.com/inkwell-ai/inkwell-api/internal/service"
	"github.com/inkwell-ai/inkwell-api/internal/task"
)

// BlogHandler exposes the blog writing pipelines: research, outline, and
// content generation. Each start endpoint launches a background task and
// returns its ID; the matching status endpoint reports progress.
type BlogHandler struct {
	service  *service.BlogService
	registry *task.Registry
	logger   *slog.Logger
}

// NewBlogHandler creates a new BlogHandler with the given dependencies.
func NewBlogHandler(blogService *service.BlogService, registry *task.Registry, logger *slog.Logger) *BlogHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &BlogHandler{
		service:  blogService,
		registry: registry,
		logger:   logger.With(slog.String("component", "blog_handler")),
	}
}

// StartResearch handles POST /api/blog/research/start.
func (h *BlogHandler) StartResearch(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		HandleAPIError(w, r, domain.ErrUnauthorized, "")
		return
	}

	var req domain.ResearchRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		HandleAPIError(w, r, err, "Invalid research request")
		return
	}

	taskID, err := h.service.StartResearch(r.Context(), req, userID.String())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to start research")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusAccepted, StartResponse{TaskID: taskID, Status: "started"})
}

// ResearchStatus handles GET /api/blog/research/status/{taskID}.
func (h *BlogHandler) ResearchStatus(w http.ResponseWriter, r *http.Request) {
	writeTaskStatus(w, r, h.registry)
}

// StartOutline handles POST /api/blog/outline/start.
func (h *BlogHandler) StartOutline(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		HandleAPIError(w, r, domain.ErrUnauthorized, "")
		return
	}

	var req domain.OutlineRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		HandleAPIError(w, r, err, "Invalid outline request")
		return
	}

	taskID, err := h.service.StartOutline(r.Context(), req, userID.String())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to start outline generation")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusAccepted, StartResponse{TaskID: taskID, Status: "started"})
}

// OutlineStatus handles GET /api/blog/outline/status/{taskID}.
func (h *BlogHandler) OutlineStatus(w http.ResponseWriter, r *http.Request) {
	writeTaskStatus(w, r, h.registry)
}

// StartContent handles POST /api/blog/content/start.
func (h *BlogHandler) StartContent(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		HandleAPIError(w, r, domain.ErrUnauthorized, "")
		return
	}

	var req domain.ContentRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		HandleAPIError(w, r, err, "Invalid content request")
		return
	}

	taskID, err := h.service.StartContent(r.Context(), req, userID.String())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to start content generation")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusAccepted, StartResponse{TaskID: taskID, Status: "started"})
}

// ContentStatus handles GET /api/blog/content/status/{taskID}.
func (h *BlogHandler) ContentStatus(w http.ResponseWriter, r *http.Request) {
	writeTaskStatus(w, r, h.registry)
}
