// Package ops exposes a read-only HTTP surface for operating the advisor:
// health and inspection of the in-memory job cache.
package ops

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/quantrelay/trade-advisor/internal/advisor/cache"
)

// Dependencies holds all dependencies needed by handlers
type Dependencies struct {
	Logger *slog.Logger
	Cache  *cache.Store
	App    string
}

// JobHandler serves cached-job inspection requests
type JobHandler struct {
	logger *slog.Logger
	cache  *cache.Store
}

// NewJobHandler creates a new JobHandler instance
func NewJobHandler(deps *Dependencies) *JobHandler {
	return &JobHandler{
		logger: deps.Logger,
		cache:  deps.Cache,
	}
}

// ListJobs handles GET /api/v1/jobs
// Returns a snapshot of every cached negotiation
func (h *JobHandler) ListJobs(c *gin.Context) {
	jobs := h.cache.Snapshot()

	out := make([]gin.H, 0, len(jobs))
	for _, job := range jobs {
		out = append(out, gin.H{
			"job_id":      job.JobID,
			"job_kind":    string(job.Kind),
			"requirement": job.Requirement,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"count": len(out),
		"jobs":  out,
	})
}

// GetJob handles GET /api/v1/jobs/:job_id
// Returns the cached negotiation for one job
func (h *JobHandler) GetJob(c *gin.Context) {
	jobID := c.Param("job_id")

	job, found := h.cache.Get(jobID)
	if !found {
		h.logger.Debug("Cached job not found",
			slog.String("job_id", jobID),
		)
		c.JSON(http.StatusNotFound, gin.H{
			"error": "no negotiation cached for this job_id",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"job_id":      job.JobID,
		"job_kind":    string(job.Kind),
		"requirement": job.Requirement,
	})
}
