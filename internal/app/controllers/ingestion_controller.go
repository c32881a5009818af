package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yigit/alumnidesk/internal/app/models/dto"
	"github.com/yigit/alumnidesk/internal/app/services"
	"github.com/yigit/alumnidesk/internal/middleware"
)

// IngestionController drives the spreadsheet ingestion workflow
type IngestionController struct {
	ingestionService services.IngestionService
}

// NewIngestionController creates a new IngestionController
func NewIngestionController(ingestionService services.IngestionService) *IngestionController {
	return &IngestionController{
		ingestionService: ingestionService,
	}
}

// Upload opens an ingestion session from an uploaded spreadsheet
// @Summary Upload a spreadsheet
// @Description Parses the first worksheet of an .xlsx or .csv file and opens an ingestion session in state FileLoaded
// @Tags ingestion
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "Spreadsheet (.xlsx or .csv)"
// @Success 201 {object} dto.APIResponse{data=dto.IngestionSessionResponse} "Session created"
// @Failure 400 {object} dto.ErrorResponse "Missing or unreadable file"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Guest sessions are read-only"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /ingestions [post]
func (c *IngestionController) Upload(ctx *gin.Context) {
	header, err := ctx.FormFile("file")
	if err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Spreadsheet file is required").
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

	session, err := c.ingestionService.Load(ctx.Request.Context(), middleware.AdminIDFrom(ctx), header.Filename, file)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.APIResponse{
		Data:      session,
		Timestamp: time.Now(),
	})
}

// GetSession returns the current state of a session
// @Summary Get an ingestion session
// @Tags ingestion
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Success 200 {object} dto.APIResponse{data=dto.IngestionSessionResponse} "Session retrieved"
// @Failure 404 {object} dto.ErrorResponse "Session not found"
// @Router /ingestions/{id} [get]
func (c *IngestionController) GetSession(ctx *gin.Context) {
	session, err := c.ingestionService.Get(ctx.Request.Context(), middleware.AdminIDFrom(ctx), ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      session,
		Timestamp: time.Now(),
	})
}

// SelectHeader picks the header row
// @Summary Select the header row
// @Description Reads the headers from the given 0-based row. Clears any mapping and validation.
// @Tags ingestion
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Param request body dto.SelectHeaderRequest true "Header row"
// @Success 200 {object} dto.APIResponse{data=dto.IngestionSessionResponse} "Header row selected"
// @Failure 400 {object} dto.ErrorResponse "Row index out of range"
// @Failure 404 {object} dto.ErrorResponse "Session not found"
// @Failure 409 {object} dto.ErrorResponse "Not allowed in the current state"
// @Router /ingestions/{id}/header [put]
func (c *IngestionController) SelectHeader(ctx *gin.Context) {
	var req dto.SelectHeaderRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	session, err := c.ingestionService.SelectHeader(ctx.Request.Context(), middleware.AdminIDFrom(ctx), ctx.Param("id"), *req.RowIndex)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      session,
		Timestamp: time.Now(),
	})
}

// MapColumns maps logical alumni fields onto detected headers
// @Summary Map columns
// @Description Student ID must be mapped. Unmapped fields are left empty on the written records.
// @Tags ingestion
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Param request body dto.MapColumnsRequest true "Field to header mapping"
// @Success 200 {object} dto.APIResponse{data=dto.IngestionSessionResponse} "Columns mapped"
// @Failure 400 {object} dto.ErrorResponse "Mapping rejected"
// @Failure 404 {object} dto.ErrorResponse "Session not found"
// @Failure 409 {object} dto.ErrorResponse "Not allowed in the current state"
// @Router /ingestions/{id}/mapping [put]
func (c *IngestionController) MapColumns(ctx *gin.Context) {
	var req dto.MapColumnsRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	session, err := c.ingestionService.MapColumns(ctx.Request.Context(), middleware.AdminIDFrom(ctx), ctx.Param("id"), req.Mapping)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      session,
		Timestamp: time.Now(),
	})
}

// Validate classifies the mapped rows against the roster and existing records
// @Summary Validate rows
// @Tags ingestion
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Success 200 {object} dto.APIResponse{data=dto.ValidationResult} "Rows classified"
// @Failure 404 {object} dto.ErrorResponse "Session not found"
// @Failure 409 {object} dto.ErrorResponse "Not allowed in the current state"
// @Router /ingestions/{id}/validate [post]
func (c *IngestionController) Validate(ctx *gin.Context) {
	result, err := c.ingestionService.Validate(ctx.Request.Context(), middleware.AdminIDFrom(ctx), ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      result,
		Timestamp: time.Now(),
	})
}

// Commit writes the validated rows and the event summary
// @Summary Commit validated rows
// @Description Starts the commit as a background job and returns 202 with the job id. Progress streams on /ws?topic=ingestion:{id}. With wait=true the commit runs inline and returns its result.
// @Tags ingestion
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Param wait query bool false "Run inline"
// @Param request body dto.CommitRequest true "Event metadata"
// @Success 200 {object} dto.APIResponse{data=dto.CommitResult} "Commit finished"
// @Success 202 {object} dto.APIResponse{data=dto.JobAccepted} "Commit started"
// @Failure 400 {object} dto.ErrorResponse "Invalid event metadata"
// @Failure 404 {object} dto.ErrorResponse "Session not found"
// @Failure 409 {object} dto.ErrorResponse "Not allowed in the current state"
// @Failure 500 {object} dto.ErrorResponse "Commit failed"
// @Router /ingestions/{id}/commit [post]
func (c *IngestionController) Commit(ctx *gin.Context) {
	var req dto.CommitRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	ownerID, sessionID := middleware.AdminIDFrom(ctx), ctx.Param("id")

	if ctx.Query("wait") == "true" {
		result, err := c.ingestionService.Commit(ctx.Request.Context(), ownerID, sessionID, req)
		if err != nil {
			middleware.HandleAPIError(ctx, err)
			return
		}
		ctx.JSON(http.StatusOK, dto.APIResponse{
			Data:      result,
			Timestamp: time.Now(),
		})
		return
	}

	accepted, err := c.ingestionService.StartCommit(ctx.Request.Context(), ownerID, sessionID, req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusAccepted, dto.APIResponse{
		Data:      accepted,
		Timestamp: time.Now(),
	})
}

// Reset discards a session
// @Summary Reset a session
// @Tags ingestion
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Success 200 {object} dto.APIResponse{data=dto.SuccessResponse} "Session discarded"
// @Failure 404 {object} dto.ErrorResponse "Session not found"
// @Router /ingestions/{id} [delete]
func (c *IngestionController) Reset(ctx *gin.Context) {
	if err := c.ingestionService.Reset(ctx.Request.Context(), middleware.AdminIDFrom(ctx), ctx.Param("id")); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      dto.SuccessResponse{Message: "Ingestion session discarded"},
		Timestamp: time.Now(),
	})
}
