package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/cloo-solutions/onetool/internal/api"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

// JobReporter is a background worker whose last run is shown on /health.
type JobReporter interface {
	Name() string
	LastRun() (time.Time, error)
}

type HealthHandler struct {
	db   Pinger
	jobs []JobReporter
}

func NewHealthHandler(db Pinger, jobs ...JobReporter) *HealthHandler {
	return &HealthHandler{db: db, jobs: jobs}
}

type JobHealth struct {
	LastRun string `json:"last_run,omitempty"`
	Error   string `json:"error,omitempty"`
}

type HealthResponse struct {
	Status   string               `json:"status"`
	Database string               `json:"database,omitempty"`
	Jobs     map[string]JobHealth `json:"jobs,omitempty"`
}

// Health reports liveness, database reachability and the last run of each
// background job. Only the database affects the status code; a failing job
// is reported but the API keeps serving.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{Status: "ok"}

	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		resp.Database = "ok"
		if err := h.db.Ping(ctx); err != nil {
			log.Printf("health: database ping failed: %v", err)
			resp.Status = "degraded"
			resp.Database = "unreachable"
		}
	}

	if len(h.jobs) > 0 {
		resp.Jobs = make(map[string]JobHealth, len(h.jobs))
		for _, j := range h.jobs {
			var jh JobHealth
			at, err := j.LastRun()
			if !at.IsZero() {
				jh.LastRun = at.UTC().Format(time.RFC3339)
			}
			if err != nil {
				jh.Error = err.Error()
			}
			resp.Jobs[j.Name()] = jh
		}
	}

	status := http.StatusOK
	if resp.Status != "ok" {
		status = http.StatusServiceUnavailable
	}
	api.JSON(w, status, api.SuccessResponse{Data: resp})
}
