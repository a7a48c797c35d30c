package handlers

import (
	"github.com/gin-gonic/gin"

	"tripwindow/services"
)

var tripPlanner *services.TripPlanner

// SetPlanner installs the pipeline used by the plan and watch handlers.
func SetPlanner(p *services.TripPlanner) {
	tripPlanner = p
}

// Register mounts every route on api, which is normally the /api group.
func Register(api *gin.RouterGroup) {
	RegisterValidators()

	api.GET("/health", HealthHandler)
	api.POST("/windows", WindowsHandler)
	api.POST("/plan", PlanHandler)
	api.GET("/plans/:id", GetPlanHandler)
	api.POST("/plans/:id/report", ReportHandler)
	api.GET("/searches", ListSearchesHandler)
	api.GET("/searches/:id/plan", LatestPlanHandler)
	api.POST("/searches/:id/watch", WatchHandler)
	api.GET("/download/:id", DownloadHandler)
}
