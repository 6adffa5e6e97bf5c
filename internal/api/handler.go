package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kurihiro0119/repo-miner/internal/aggregator"
	apperrors "github.com/kurihiro0119/repo-miner/internal/errors"
	"github.com/kurihiro0119/repo-miner/internal/storage"
)

// Handler handles API requests
type Handler struct {
	storage storage.Storage
}

// NewHandler creates a new API handler
func NewHandler(store storage.Storage) *Handler {
	return &Handler{
		storage: store,
	}
}

// GetCommits returns the stored commit records for a repository
// GET /api/v1/repos/:owner/:repo/commits
func (h *Handler) GetCommits(c *gin.Context) {
	owner := c.Param("owner")
	repo := c.Param("repo")

	records, err := h.storage.GetCommits(c.Request.Context(), owner, repo)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":  records,
		"count": len(records),
	})
}

// GetIssues returns the stored issue records for a repository
// GET /api/v1/repos/:owner/:repo/issues
func (h *Handler) GetIssues(c *gin.Context) {
	owner := c.Param("owner")
	repo := c.Param("repo")

	records, err := h.storage.GetIssues(c.Request.Context(), owner, repo)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":  records,
		"count": len(records),
	})
}

// GetSummary computes the summary report for a repository from its
// stored record sets
// GET /api/v1/repos/:owner/:repo/summary
func (h *Handler) GetSummary(c *gin.Context) {
	owner := c.Param("owner")
	repo := c.Param("repo")

	commits, err := h.storage.GetCommits(c.Request.Context(), owner, repo)
	if err != nil {
		respondError(c, err)
		return
	}
	issues, err := h.storage.GetIssues(c.Request.Context(), owner, repo)
	if err != nil {
		respondError(c, err)
		return
	}

	report, err := aggregator.Summarize(commits, issues)
	if err != nil {
		// Nothing stored to aggregate maps to 404 for an API consumer
		if apperrors.IsEmptyInput(err) {
			respondError(c, apperrors.NewNotFoundError("issue records for "+owner+"/"+repo))
			return
		}
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": report,
	})
}

// GetRuns returns recorded fetch runs for a repository
// GET /api/v1/repos/:owner/:repo/runs
func (h *Handler) GetRuns(c *gin.Context) {
	owner := c.Param("owner")
	repo := c.Param("repo")

	runs, err := h.storage.GetRuns(c.Request.Context(), owner, repo)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":  runs,
		"count": len(runs),
	})
}

// HealthCheck returns the health status of the API
// GET /health
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// respondError sends an error response
func respondError(c *gin.Context, err error) {
	if appErr, ok := err.(*apperrors.AppError); ok {
		status := http.StatusInternalServerError
		switch appErr.Code {
		case apperrors.ErrCodeNotFound:
			status = http.StatusNotFound
		case apperrors.ErrCodeBadRequest, apperrors.ErrCodeMalformedRecord, apperrors.ErrCodeUnparseableDate:
			status = http.StatusBadRequest
		case apperrors.ErrCodeEmptyInput:
			status = http.StatusUnprocessableEntity
		case apperrors.ErrCodeUpstreamUnavailable:
			status = http.StatusBadGateway
		}
		c.JSON(status, gin.H{
			"error": gin.H{
				"code":    appErr.Code,
				"message": appErr.Message,
			},
		})
		return
	}

	c.JSON(http.StatusInternalServerError, gin.H{
		"error": gin.H{
			"code":    "INTERNAL_ERROR",
			"message": err.Error(),
		},
	})
}
