package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"tripwindow/database"
)

// ListSearchesHandler returns search history, newest first.
func ListSearchesHandler(c *gin.Context) {
	limit := 20
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 200 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be between 1 and 200"})
			return
		}
		limit = n
	}

	searches, err := database.ListSearches(limit)
	if err != nil {
		log.Printf("❌ Failed to list searches: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list searches"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"searches": searches, "count": len(searches)})
}

type WatchRequest struct {
	Watch *bool `json:"watch" binding:"required"`
}

// WatchHandler turns scheduled refreshing of a search on or off.
func WatchHandler(c *gin.Context) {
	var req WatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	id := c.Param("id")
	err := database.SetWatch(id, *req.Watch)
	if errors.Is(err, database.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Search not found"})
		return
	}
	if err != nil {
		log.Printf("❌ Failed to update watch for %s: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update search"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"search_id": id, "watch": *req.Watch})
}
