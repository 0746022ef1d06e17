// internal/handlers/jobs.go
package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/hibiken/asynq"

	"github.com/ammerola/mfg-erp/internal/workers"
)

// TaskInspector reads queue and task state. *asynq.Inspector satisfies it.
type TaskInspector interface {
	GetTaskInfo(queue, id string) (*asynq.TaskInfo, error)
	Queues() ([]string, error)
	GetQueueInfo(queue string) (*asynq.QueueInfo, error)
}

// JobStatus reports the state of a background job.
type JobStatus struct {
	JobID       string          `json:"jobId"`
	Type        string          `json:"type"`
	Queue       string          `json:"queue"`
	State       string          `json:"state"`
	Retried     int             `json:"retried"`
	MaxRetry    int             `json:"maxRetry"`
	LastError   string          `json:"lastError,omitempty"`
	CompletedAt *time.Time      `json:"completedAt,omitempty"`
	Result      json.RawMessage `json:"result,omitempty"`
}

// JobHandler reports on queued jobs.
type JobHandler struct {
	responder
	inspector TaskInspector
}

// NewJobHandler creates a new job handler
func NewJobHandler(inspector TaskInspector, logger *slog.Logger) *JobHandler {
	return &JobHandler{
		responder: responder{logger: logger.With(slog.String("handler", "job"))},
		inspector: inspector,
	}
}

// GetJob handles GET /api/v1/jobs/{id}
func (h *JobHandler) GetJob(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	jobID := r.PathValue("id")

	for _, queue := range []string{workers.QueueCritical, workers.QueueDefault, workers.QueueLow} {
		info, err := h.inspector.GetTaskInfo(queue, jobID)
		if errors.Is(err, asynq.ErrTaskNotFound) || errors.Is(err, asynq.ErrQueueNotFound) {
			continue
		}
		if err != nil {
			h.logger.ErrorContext(ctx, "failed to get job status",
				slog.String("job_id", jobID),
				slog.String("error", err.Error()))
			h.respondError(w, http.StatusInternalServerError, "Failed to get job status")
			return
		}
		h.respondJSON(w, http.StatusOK, jobStatus(info))
		return
	}

	h.respondError(w, http.StatusNotFound, "Job not found")
}

func jobStatus(info *asynq.TaskInfo) JobStatus {
	s := JobStatus{
		JobID:     info.ID,
		Type:      info.Type,
		Queue:     info.Queue,
		State:     info.State.String(),
		Retried:   info.Retried,
		MaxRetry:  info.MaxRetry,
		LastError: info.LastErr,
	}
	if !info.CompletedAt.IsZero() {
		t := info.CompletedAt
		s.CompletedAt = &t
	}
	if len(info.Result) > 0 && json.Valid(info.Result) {
		s.Result = json.RawMessage(info.Result)
	}
	return s
}
