package controllers

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yigit/alumnidesk/internal/app/models/dto"
	"github.com/yigit/alumnidesk/internal/app/services"
	"github.com/yigit/alumnidesk/internal/middleware"
	"github.com/yigit/alumnidesk/internal/pkg/helpers"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// AlumniController handles alumni browsing and export
type AlumniController struct {
	alumniService services.AlumniService
}

// NewAlumniController creates a new AlumniController
func NewAlumniController(alumniService services.AlumniService) *AlumniController {
	return &AlumniController{
		alumniService: alumniService,
	}
}

// ListAlumni searches alumni records
// @Summary Browse alumni
// @Description Case-insensitive substring search across every record field, paginated
// @Tags alumni
// @Produce json
// @Security BearerAuth
// @Param search query string false "Search text"
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Page size" default(10)
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse{items=[]models.AlumniRecord}} "Alumni page"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /alumni [get]
func (c *AlumniController) ListAlumni(ctx *gin.Context) {
	page, pageSize := helpers.ParsePaginationParams(ctx)

	result, err := c.alumniService.Search(ctx.Request.Context(), ctx.Query("search"), page, pageSize)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      result,
		Timestamp: time.Now(),
	})
}

// ExportAlumni downloads the matching records as a workbook
// @Summary Export alumni
// @Description Writes the records matching search to a single-sheet .xlsx workbook (sheet AlumniData)
// @Tags alumni
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Param search query string false "Search text"
// @Success 200 {file} file "Workbook"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /alumni/export [get]
func (c *AlumniController) ExportAlumni(ctx *gin.Context) {
	var buf bytes.Buffer
	if _, err := c.alumniService.Export(ctx.Request.Context(), ctx.Query("search"), &buf); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	filename := fmt.Sprintf("alumni_%s.xlsx", time.Now().Format("20060102"))
	ctx.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	ctx.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
