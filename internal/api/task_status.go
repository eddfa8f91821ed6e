package api

import (
	"net/http"

	"github.com/inkwell-ai/inkwell-api/internal/api/shared"
	"github.com/inkwell-ai/inkwell-api/internal/generation"
	"github.com/inkwell-ai/inkwell-api/internal/task"
)

// writeTaskStatus looks up the task named by the {taskID} path parameter and
// writes its normalized status payload.
//
// Failed tasks carrying a provider limit status (402 or 429) are rendered as
// LimitExceededResponse with that status code, so clients see the provider's
// quota verdict instead of a generic failure. Every other state, including
// ordinary failures, is a 200 with the full snapshot.
func writeTaskStatus(w http.ResponseWriter, r *http.Request, registry *task.Registry) {
	taskID, err := getPathUUID(r, "taskID")
	if err != nil {
		HandleAPIError(w, r, err, "Invalid task ID")
		return
	}

	snap, err := registry.Get(taskID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	if snap.Status == task.StatusFailed && isLimitStatus(snap.ErrorStatus) {
		usage := generation.UsageInfo{}
		if snap.ErrorUsage != nil {
			usage = *snap.ErrorUsage
		}
		shared.RespondWithJSON(w, r, snap.ErrorStatus, LimitExceededResponse{
			Error:     "limit_exceeded",
			Message:   snap.Error,
			Provider:  usage.Provider,
			UsageInfo: usage,
		})
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, newTaskStatusResponse(snap))
}

func isLimitStatus(status int) bool {
	return status == http.StatusPaymentRequired || status == http.StatusTooManyRequests
}
