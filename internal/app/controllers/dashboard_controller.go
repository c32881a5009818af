package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yigit/alumnidesk/internal/app/analytics"
	"github.com/yigit/alumnidesk/internal/app/models/dto"
	"github.com/yigit/alumnidesk/internal/app/services"
	"github.com/yigit/alumnidesk/internal/middleware"
)

// DashboardController serves the alumni and events dashboards
type DashboardController struct {
	dashboardService services.DashboardService
}

// NewDashboardController creates a new DashboardController
func NewDashboardController(dashboardService services.DashboardService) *DashboardController {
	return &DashboardController{
		dashboardService: dashboardService,
	}
}

// AlumniDashboard returns the alumni dashboard
// @Summary Alumni dashboard
// @Description KPIs, counts by graduation year, major, company and role, top majors and companies, and filter options
// @Tags dashboard
// @Produce json
// @Security BearerAuth
// @Param major query string false "Major filter"
// @Param year query string false "Graduation year filter"
// @Param company query string false "Company filter"
// @Success 200 {object} dto.APIResponse{data=analytics.AlumniDashboard} "Dashboard"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /dashboard/alumni [get]
func (c *DashboardController) AlumniDashboard(ctx *gin.Context) {
	var filter analytics.AlumniFilter
	if err := ctx.ShouldBindQuery(&filter); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	dashboard, err := c.dashboardService.Alumni(ctx.Request.Context(), filter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      dashboard,
		Timestamp: time.Now(),
	})
}

// AlumniCounts counts alumni by one field
// @Summary Count alumni by field
// @Tags dashboard
// @Produce json
// @Security BearerAuth
// @Param field query string true "Alumni field, e.g. Major"
// @Success 200 {object} dto.APIResponse{data=[]analytics.Count} "Counts, largest first"
// @Failure 400 {object} dto.ErrorResponse "Unknown field"
// @Router /dashboard/alumni/counts [get]
func (c *DashboardController) AlumniCounts(ctx *gin.Context) {
	counts, err := c.dashboardService.AlumniCounts(ctx.Request.Context(), ctx.Query("field"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      counts,
		Timestamp: time.Now(),
	})
}

// AlumniForecast projects next year's count per category
// @Summary Alumni growth forecast
// @Description Current count per category times 1.15 when the category mentions ai or data, 1.05 otherwise
// @Tags dashboard
// @Produce json
// @Security BearerAuth
// @Param field query string false "Alumni field" default(Company Name)
// @Success 200 {object} dto.APIResponse{data=[]analytics.ForecastPoint} "Forecast"
// @Failure 400 {object} dto.ErrorResponse "Unknown field"
// @Router /dashboard/alumni/forecast [get]
func (c *DashboardController) AlumniForecast(ctx *gin.Context) {
	points, err := c.dashboardService.AlumniForecast(ctx.Request.Context(), ctx.Query("field"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      points,
		Timestamp: time.Now(),
	})
}

// EventsDashboard returns the events dashboard
// @Summary Events dashboard
// @Tags dashboard
// @Produce json
// @Security BearerAuth
// @Param year query int false "Event year"
// @Param location query string false "Event location"
// @Param graduationYear query int false "Attendee graduation year"
// @Success 200 {object} dto.APIResponse{data=analytics.EventsDashboard} "Dashboard"
// @Failure 400 {object} dto.ErrorResponse "Invalid filter"
// @Router /dashboard/events [get]
func (c *DashboardController) EventsDashboard(ctx *gin.Context) {
	var filter analytics.EventFilter
	if err := ctx.ShouldBindQuery(&filter); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	dashboard, err := c.dashboardService.Events(ctx.Request.Context(), filter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      dashboard,
		Timestamp: time.Now(),
	})
}

// EventPredictions returns the attendance projections
// @Summary Event predictions
// @Description Location trend, graduation batch and participation growth projections over all events
// @Tags dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=analytics.Predictions} "Predictions"
// @Router /dashboard/events/predictions [get]
func (c *DashboardController) EventPredictions(ctx *gin.Context) {
	predictions, err := c.dashboardService.Predictions(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      predictions,
		Timestamp: time.Now(),
	})
}
