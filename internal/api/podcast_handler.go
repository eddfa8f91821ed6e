package api

import (
	"log/slog"
	"net/http"

	"github.com/inkwell-ai/inkwell-api/internal/api/shared"
	"github.com/inkwell-ai/inkwell-api/internal/domain"
	"github.com/inkwell-ai/inkwell-api/internal/service"
	"github.com/inkwell-ai/inkwell-api/internal/task"
)

// PodcastHandler exposes podcast episode generation.
type PodcastHandler struct {
	service  *service.PodcastService
	registry *task.Registry
	logger   *slog.Logger
}

// NewPodcastHandler creates a new PodcastHandler with the given dependencies.
func NewPodcastHandler(podcastService *service.PodcastService, registry *task.Registry, logger *slog.Logger) *PodcastHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &PodcastHandler{
		service:  podcastService,
		registry: registry,
		logger:   logger.With(slog.String("component", "podcast_handler")),
	}
}

// StartEpisode handles POST /api/podcast/script/start. Script writing and
// audio synthesis run as one background task.
func (h *PodcastHandler) StartEpisode(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		HandleAPIError(w, r, domain.ErrUnauthorized, "")
		return
	}

	var req domain.PodcastRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		HandleAPIError(w, r, err, "Invalid podcast request")
		return
	}

	taskID, err := h.service.StartEpisode(r.Context(), req, userID.String())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to start podcast generation")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusAccepted, StartResponse{TaskID: taskID, Status: "started"})
}

// EpisodeStatus handles GET /api/podcast/script/status/{taskID}.
func (h *PodcastHandler) EpisodeStatus(w http.ResponseWriter, r *http.Request) {
	writeTaskStatus(w, r, h.registry)
}
