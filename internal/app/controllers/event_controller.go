package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yigit/alumnidesk/internal/app/models/dto"
	"github.com/yigit/alumnidesk/internal/app/services"
	"github.com/yigit/alumnidesk/internal/middleware"
)

// EventController handles upload logs and event summaries
type EventController struct {
	eventService  services.EventService
	rosterService services.RosterService
}

// NewEventController creates a new EventController
func NewEventController(eventService services.EventService, rosterService services.RosterService) *EventController {
	return &EventController{
		eventService:  eventService,
		rosterService: rosterService,
	}
}

// ListUploads lists upload logs
// @Summary List upload logs
// @Description Upload logs newest first, each with the uploading admin's name
// @Tags events
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]dto.UploadLogResponse} "Upload logs"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /uploads [get]
func (c *EventController) ListUploads(ctx *gin.Context) {
	logs, err := c.eventService.ListUploads(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      logs,
		Timestamp: time.Now(),
	})
}

// ListEvents lists event summaries
// @Summary List events
// @Tags events
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]models.EventSummary} "Events"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /events [get]
func (c *EventController) ListEvents(ctx *gin.Context) {
	events, err := c.eventService.ListEvents(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      events,
		Timestamp: time.Now(),
	})
}

// CreateEvent records an event summary by hand
// @Summary Create an event
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateEventRequest true "Event summary"
// @Success 201 {object} dto.APIResponse{data=models.EventSummary} "Event created"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 403 {object} dto.ErrorResponse "Guest sessions are read-only"
// @Router /events [post]
func (c *EventController) CreateEvent(ctx *gin.Context) {
	var req dto.CreateEventRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	event, err := c.eventService.CreateEvent(ctx.Request.Context(), req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.APIResponse{
		Data:      event,
		Timestamp: time.Now(),
	})
}

// ImportRoster loads reference students from a spreadsheet
// @Summary Import the student roster
// @Description The first row is the header and must contain a Student ID column. Ids already on the roster or repeated in the file are skipped.
// @Tags events
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "Roster spreadsheet (.xlsx or .csv)"
// @Success 200 {object} dto.APIResponse{data=dto.RosterImportResult} "Roster imported"
// @Failure 400 {object} dto.ErrorResponse "Missing or unreadable file"
// @Failure 403 {object} dto.ErrorResponse "Guest sessions are read-only"
// @Router /roster [post]
func (c *EventController) ImportRoster(ctx *gin.Context) {
	header, err := ctx.FormFile("file")
	if err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Roster file is required").
			WithField("file")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}
	file, err := header.Open()
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	defer file.Close()

	result, err := c.rosterService.Import(ctx.Request.Context(), header.Filename, file)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      result,
		Timestamp: time.Now(),
	})
}
