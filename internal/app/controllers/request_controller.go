package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yigit/alumnidesk/internal/app/models/dto"
	"github.com/yigit/alumnidesk/internal/app/services"
	"github.com/yigit/alumnidesk/internal/middleware"
)

// RequestController handles alumni update-request review
type RequestController struct {
	requestService services.RequestService
}

// NewRequestController creates a new RequestController
func NewRequestController(requestService services.RequestService) *RequestController {
	return &RequestController{
		requestService: requestService,
	}
}

// ListRequests lists update requests
// @Summary List update requests
// @Description Lists every update request. search filters by Student ID, first or last name, case-insensitively.
// @Tags requests
// @Produce json
// @Security BearerAuth
// @Param search query string false "Search text"
// @Success 200 {object} dto.APIResponse{data=[]models.UpdateRequest} "Requests retrieved"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /requests [get]
func (c *RequestController) ListRequests(ctx *gin.Context) {
	requests, err := c.requestService.List(ctx.Request.Context(), ctx.Query("search"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      requests,
		Timestamp: time.Now(),
	})
}

// GetRequest opens one request
// @Summary Get an update request
// @Tags requests
// @Produce json
// @Security BearerAuth
// @Param id path string true "Request ID"
// @Success 200 {object} dto.APIResponse{data=models.UpdateRequest} "Request retrieved"
// @Failure 404 {object} dto.ErrorResponse "Request not found"
// @Router /requests/{id} [get]
func (c *RequestController) GetRequest(ctx *gin.Context) {
	request, err := c.requestService.Get(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      request,
		Timestamp: time.Now(),
	})
}

// ApproveRequest applies a request to the alumni records
// @Summary Approve an update request
// @Description Updates the matching alumni record, or inserts one when none exists, then marks the request Approved. Returns the refreshed request list.
// @Tags requests
// @Produce json
// @Security BearerAuth
// @Param id path string true "Request ID"
// @Success 200 {object} dto.APIResponse{data=[]models.UpdateRequest} "Request approved"
// @Failure 403 {object} dto.ErrorResponse "Guest sessions are read-only"
// @Failure 404 {object} dto.ErrorResponse "Request not found"
// @Failure 409 {object} dto.ErrorResponse "Request already decided"
// @Router /requests/{id}/approve [post]
func (c *RequestController) ApproveRequest(ctx *gin.Context) {
	requests, err := c.requestService.Approve(ctx.Request.Context(), ctx.Param("id"), middleware.AdminIDFrom(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      requests,
		Timestamp: time.Now(),
	})
}

// CancelRequest rejects a request without touching alumni records
// @Summary Cancel an update request
// @Tags requests
// @Produce json
// @Security BearerAuth
// @Param id path string true "Request ID"
// @Success 200 {object} dto.APIResponse{data=[]models.UpdateRequest} "Request cancelled"
// @Failure 403 {object} dto.ErrorResponse "Guest sessions are read-only"
// @Failure 404 {object} dto.ErrorResponse "Request not found"
// @Failure 409 {object} dto.ErrorResponse "Request already decided"
// @Router /requests/{id}/cancel [post]
func (c *RequestController) CancelRequest(ctx *gin.Context) {
	requests, err := c.requestService.Cancel(ctx.Request.Context(), ctx.Param("id"), middleware.AdminIDFrom(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      requests,
		Timestamp: time.Now(),
	})
}

// SubmitRequest stores a request from the public alumni form
// @Summary Submit an update request
// @Description Public endpoint used by the alumni form. The request is stored as Pending.
// @Tags requests
// @Accept json
// @Produce json
// @Param request body dto.SubmitUpdateRequest true "Alumni details"
// @Success 201 {object} dto.APIResponse{data=models.UpdateRequest} "Request submitted"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Router /public/requests [post]
func (c *RequestController) SubmitRequest(ctx *gin.Context) {
	var req dto.SubmitUpdateRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	request, err := c.requestService.Submit(ctx.Request.Context(), req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.APIResponse{
		Data:      request,
		Timestamp: time.Now(),
	})
}
