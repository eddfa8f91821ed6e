package api

import (
	"log/slog"
	"net/http"

	"github.com/inkwell-ai/inkwell-api/internal/api/shared"
	"github.com/inkwell-ai/inkwell-api/internal/domain"
	"github.com/inkwell-ai/inkwell-api/internal/service"
	"github.com/inkwell-ai/inkwell-api/internal/task"
)

// StoryHandler exposes the story-to-video pipeline.
type StoryHandler struct {
	service  *service.StoryService
	registry *task.Registry
	logger   *slog.Logger
}

// NewStoryHandler creates a new StoryHandler with the given dependencies.
func NewStoryHandler(storyService *service.StoryService, registry *task.Registry, logger *slog.Logger) *StoryHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &StoryHandler{
		service:  storyService,
		registry: registry,
		logger:   logger.With(slog.String("component", "story_handler")),
	}
}

// StartVideo handles POST /api/story/video/start. It launches the complete
// premise, scenes, images, narration, and composition pipeline.
func (h *StoryHandler) StartVideo(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		HandleAPIError(w, r, domain.ErrUnauthorized, "")
		return
	}

	var req domain.StoryRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		HandleAPIError(w, r, err, "Invalid story request")
		return
	}

	taskID, err := h.service.StartVideo(r.Context(), req, userID.String())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to start video generation")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusAccepted, StartResponse{TaskID: taskID, Status: "started"})
}

// VideoStatus handles GET /api/story/video/status/{taskID}.
func (h *StoryHandler) VideoStatus(w http.ResponseWriter, r *http.Request) {
	writeTaskStatus(w, r, h.registry)
}
