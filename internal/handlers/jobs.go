package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"photo-enhance-backend/internal/codec"
	"photo-enhance-backend/internal/database"
	"photo-enhance-backend/internal/models"
	"photo-enhance-backend/internal/topaz"
)

type JobsHandler struct {
	topazClient *topaz.Client
	dbClient    *database.Client
}

func NewJobsHandler(topazClient *topaz.Client, dbClient *database.Client) *JobsHandler {
	return &JobsHandler{
		topazClient: topazClient,
		dbClient:    dbClient,
	}
}

// ListJobs godoc
// @Summary     List jobs
// @Description Lists the caller's enhancement job records
// @Tags        jobs
// @Produce     json
// @Security    Bearer
// @Success     200 {object} models.JobListResponse
// @Failure     401 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /jobs [get]
func (h *JobsHandler) ListJobs(c *gin.Context) {
	if h.dbClient == nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "database not available"})
		return
	}

	userID, ok := requestUserID(c)
	if !ok {
		return
	}

	jobs, err := h.dbClient.ListJobs(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to list jobs",
			Message: err.Error(),
		})
		return
	}

	resp := models.JobListResponse{Jobs: make([]models.JobResponse, 0, len(jobs))}
	for _, job := range jobs {
		resp.Jobs = append(resp.Jobs, models.JobResponse{
			ID:           job.ID.String(),
			ProcessID:    job.ProcessID.String,
			Mode:         job.Mode,
			Model:        job.Model,
			OutputFormat: job.OutputFormat,
			Status:       job.Status,
			Progress:     job.Progress,
			ErrorMessage: job.ErrorMessage.String,
			CreatedAt:    job.CreatedAt,
			UpdatedAt:    job.UpdatedAt,
		})
	}

	c.JSON(http.StatusOK, resp)
}

// GetJobStatus godoc
// @Summary     Check remote job status
// @Description Queries the Topaz Image API for the live status of a job. Useful for manual recovery after a timeout: the job may still complete server-side.
// @Tags        jobs
// @Produce     json
// @Security    Bearer
// @Param       process_id path string true "Remote process ID"
// @Success     200 {object} models.JobStatusResponse
// @Failure     401 {object} models.ErrorResponse
// @Failure     502 {object} models.ErrorResponse
// @Router      /jobs/{process_id}/status [get]
func (h *JobsHandler) GetJobStatus(c *gin.Context) {
	if _, ok := requestUserID(c); !ok {
		return
	}

	processID := c.Param("process_id")
	status, err := h.topazClient.CheckStatus(c.Request.Context(), processID)
	if err != nil {
		c.JSON(http.StatusBadGateway, models.ErrorResponse{
			Error:     "status check failed",
			Message:   err.Error(),
			ProcessID: processID,
		})
		return
	}

	c.JSON(http.StatusOK, models.JobStatusResponse{
		ProcessID: processID,
		Status:    status.State,
		Progress:  status.Progress,
		Error:     status.Error,
	})
}

// GetJobResult godoc
// @Summary     Fetch a finished job's image
// @Description Re-runs the validated artifact download for a job that completed server-side, for instance after a local timeout.
// @Tags        jobs
// @Produce     image/jpeg
// @Security    Bearer
// @Param       process_id path string true "Remote process ID"
// @Param       output_format query string false "jpeg (default), png, or tiff"
// @Success     200 {file} binary
// @Failure     401 {object} models.ErrorResponse
// @Failure     502 {object} models.ErrorResponse
// @Router      /jobs/{process_id}/result [get]
func (h *JobsHandler) GetJobResult(c *gin.Context) {
	if _, ok := requestUserID(c); !ok {
		return
	}

	processID := c.Param("process_id")
	format := topaz.OutputFormat(c.DefaultQuery("output_format", "jpeg"))

	data, err := h.topazClient.DownloadResult(c.Request.Context(), processID, format)
	if err != nil {
		c.JSON(http.StatusBadGateway, models.ErrorResponse{
			Error:     "download failed",
			Message:   err.Error(),
			ProcessID: processID,
		})
		return
	}

	c.Header("X-Process-ID", processID)
	c.Data(http.StatusOK, codec.MimeType(format), data)
}
