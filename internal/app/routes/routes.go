package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yigit/alumnidesk/internal/app/controllers"
	"github.com/yigit/alumnidesk/internal/middleware"
	"github.com/yigit/alumnidesk/internal/pkg/metrics"
	"github.com/yigit/alumnidesk/internal/pkg/websocket"
)

// Controllers groups every HTTP controller
type Controllers struct {
	Auth      *controllers.AuthController
	Ingestion *controllers.IngestionController
	Request   *controllers.RequestController
	Dashboard *controllers.DashboardController
	Alumni    *controllers.AlumniController
	Event     *controllers.EventController
	Job       *controllers.JobController
}

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	ctrl *Controllers,
	authMiddleware *middleware.AuthMiddleware,
	wsHandler *websocket.Handler,
	m *metrics.Metrics,
) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if m != nil {
		router.GET("/metrics", gin.WrapH(m.Handler()))
	}

	// Progress feed; browsers pass the token as ?token=
	router.GET("/ws", authMiddleware.WebSocketAuth(), wsHandler.HandleConnection)

	// API version group
	v1 := router.Group("/api/v1")

	// --- Public routes ---
	auth := v1.Group("/auth")
	{
		auth.POST("/register", ctrl.Auth.Register)
		auth.POST("/login", ctrl.Auth.Login)
		auth.POST("/guest", ctrl.Auth.Guest)
		auth.GET("/verify-email", ctrl.Auth.VerifyEmail)
	}
	v1.POST("/public/requests", ctrl.Request.SubmitRequest)

	// --- Authenticated routes: staff and guests may read ---
	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth())
	{
		authenticated.GET("/auth/session", ctrl.Auth.Session)
		authenticated.POST("/auth/logout", ctrl.Auth.Logout)

		dashboard := authenticated.Group("/dashboard")
		{
			dashboard.GET("/alumni", ctrl.Dashboard.AlumniDashboard)
			dashboard.GET("/alumni/counts", ctrl.Dashboard.AlumniCounts)
			dashboard.GET("/alumni/forecast", ctrl.Dashboard.AlumniForecast)
			dashboard.GET("/events", ctrl.Dashboard.EventsDashboard)
			dashboard.GET("/events/predictions", ctrl.Dashboard.EventPredictions)
		}

		authenticated.GET("/alumni", ctrl.Alumni.ListAlumni)
		authenticated.GET("/events", ctrl.Event.ListEvents)
		authenticated.GET("/jobs/:id", ctrl.Job.GetJob)
	}

	// --- Staff-only routes ---
	staff := authenticated.Group("")
	staff.Use(authMiddleware.RequireStaff())
	{
		staff.GET("/alumni/export", ctrl.Alumni.ExportAlumni)
		staff.GET("/uploads", ctrl.Event.ListUploads)
		staff.POST("/events", ctrl.Event.CreateEvent)
		staff.POST("/roster", ctrl.Event.ImportRoster)

		ingestions := staff.Group("/ingestions")
		{
			ingestions.POST("", ctrl.Ingestion.Upload)
			ingestions.GET("/:id", ctrl.Ingestion.GetSession)
			ingestions.PUT("/:id/header", ctrl.Ingestion.SelectHeader)
			ingestions.PUT("/:id/mapping", ctrl.Ingestion.MapColumns)
			ingestions.POST("/:id/validate", ctrl.Ingestion.Validate)
			ingestions.POST("/:id/commit", ctrl.Ingestion.Commit)
			ingestions.DELETE("/:id", ctrl.Ingestion.Reset)
		}

		requests := staff.Group("/requests")
		{
			requests.GET("", ctrl.Request.ListRequests)
			requests.GET("/:id", ctrl.Request.GetRequest)
			requests.POST("/:id/approve", ctrl.Request.ApproveRequest)
			requests.POST("/:id/cancel", ctrl.Request.CancelRequest)
		}

		staff.DELETE("/jobs/:id", ctrl.Job.CancelJob)
		staff.POST("/maintenance/backfill", ctrl.Job.StartBackfill)
	}
}
