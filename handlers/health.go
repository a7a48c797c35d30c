package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tripwindow/database"
)

func HealthHandler(c *gin.Context) {
	db := database.DB
	dbStatus := "ok"
	if db == nil {
		dbStatus = "not initialized"
	} else if err := db.PingContext(c.Request.Context()); err != nil {
		dbStatus = "error: " + err.Error()
	}

	source := "not configured"
	if tripPlanner != nil && tripPlanner.Flights != nil {
		source = tripPlanner.Flights.Name()
	}

	c.JSON(http.StatusOK, gin.H{
		"status":        "ok",
		"service":       "TripWindow API",
		"database":      dbStatus,
		"flight_source": source,
	})
}
