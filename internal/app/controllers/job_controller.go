package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yigit/alumnidesk/internal/app/jobs"
	"github.com/yigit/alumnidesk/internal/app/models/dto"
	"github.com/yigit/alumnidesk/internal/app/services"
	"github.com/yigit/alumnidesk/internal/middleware"
)

// JobController exposes background jobs and the maintenance routines that
// start them
type JobController struct {
	runner          *jobs.Runner
	backfillService services.BackfillService
}

// NewJobController creates a new JobController
func NewJobController(runner *jobs.Runner, backfillService services.BackfillService) *JobController {
	return &JobController{
		runner:          runner,
		backfillService: backfillService,
	}
}

// GetJob returns a job's status
// @Summary Get job status
// @Tags jobs
// @Produce json
// @Security BearerAuth
// @Param id path string true "Job ID"
// @Success 200 {object} dto.APIResponse{data=jobs.Status} "Job status"
// @Failure 404 {object} dto.ErrorResponse "Job not found"
// @Router /jobs/{id} [get]
func (c *JobController) GetJob(ctx *gin.Context) {
	status, err := c.runner.Status(ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      status,
		Timestamp: time.Now(),
	})
}

// CancelJob requests cancellation of a running job
// @Summary Cancel a job
// @Description Cancellation is cooperative: work already written is kept
// @Tags jobs
// @Produce json
// @Security BearerAuth
// @Param id path string true "Job ID"
// @Success 200 {object} dto.APIResponse{data=jobs.Status} "Cancellation requested"
// @Failure 403 {object} dto.ErrorResponse "Guest sessions are read-only"
// @Failure 404 {object} dto.ErrorResponse "Job not found"
// @Router /jobs/{id} [delete]
func (c *JobController) CancelJob(ctx *gin.Context) {
	status, err := c.runner.Cancel(ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      status,
		Timestamp: time.Now(),
	})
}

// StartBackfill starts the graduation-year backfill
// @Summary Backfill graduation years
// @Description Copies graduation year and major from alumni records onto attendance links missing them. Runs as a background job; progress streams on /ws?topic=job:{jobId}.
// @Tags jobs
// @Produce json
// @Security BearerAuth
// @Success 202 {object} dto.APIResponse{data=dto.JobAccepted} "Backfill started"
// @Failure 403 {object} dto.ErrorResponse "Guest sessions are read-only"
// @Failure 409 {object} dto.ErrorResponse "A backfill is already running"
// @Router /maintenance/backfill [post]
func (c *JobController) StartBackfill(ctx *gin.Context) {
	accepted, err := c.backfillService.Start()
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusAccepted, dto.APIResponse{
		Data:      accepted,
		Timestamp: time.Now(),
	})
}
