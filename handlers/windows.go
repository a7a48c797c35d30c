package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tripwindow/planner"
)

type WindowsRequest struct {
	StartDate string         `json:"start_date" binding:"required,isodate"`
	EndDate   string         `json:"end_date" binding:"required,isodate"`
	Policy    planner.Policy `json:"policy"`
}

type WindowsResponse struct {
	Policy  planner.Policy       `json:"policy"`
	Count   int                  `json:"count"`
	Windows []planner.DateWindow `json:"windows"`
}

// WindowsHandler lists the travel windows a policy yields. It never calls out.
func WindowsHandler(c *gin.Context) {
	var req WindowsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	kind, err := planner.ParsePolicyKind(string(req.Policy.Kind))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	req.Policy.Kind = kind

	// isodate already checked both dates
	start, _ := planner.ParseDate(req.StartDate)
	end, _ := planner.ParseDate(req.EndDate)

	windows := planner.Collect(req.Policy.Windows(start, end))
	c.JSON(http.StatusOK, WindowsResponse{
		Policy:  req.Policy,
		Count:   len(windows),
		Windows: windows,
	})
}
