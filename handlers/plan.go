package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"tripwindow/database"
	"tripwindow/planner"
	"tripwindow/services"
)

type PlanRequest struct {
	Origin      string         `json:"origin" binding:"required,iata"`
	Destination string         `json:"destination" binding:"required,iata"`
	Place       string         `json:"place"`
	StartDate   string         `json:"start_date" binding:"required,isodate"`
	EndDate     string         `json:"end_date" binding:"required,isodate"`
	Policy      planner.Policy `json:"policy"`
	TopN        int            `json:"top_n" binding:"gte=0,lte=50"`
	Dedupe      bool           `json:"dedupe"`
	Adults      int            `json:"adults" binding:"gte=0,lte=9"`
	Watch       bool           `json:"watch"`
}

type PlanResponse struct {
	SearchID string               `json:"search_id"`
	PlanID   string               `json:"plan_id"`
	Result   *services.PlanResult `json:"result"`
}

// PlanHandler runs the pipeline for one request and stores the search and its plan.
func PlanHandler(c *gin.Context) {
	if tripPlanner == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Planner is not configured"})
		return
	}

	var req PlanRequest
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

	start, _ := planner.ParseDate(req.StartDate)
	end, _ := planner.ParseDate(req.EndDate)
	planReq, err := tripPlanner.Normalize(services.PlanRequest{
		Origin:      req.Origin,
		Destination: req.Destination,
		Place:       req.Place,
		StartDate:   start,
		EndDate:     end,
		Policy:      req.Policy,
		TopN:        req.TopN,
		Dedupe:      req.Dedupe,
		Adults:      req.Adults,
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := tripPlanner.Plan(c.Request.Context(), planReq)
	if err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, services.ErrInvalidRequest) {
			status = http.StatusBadRequest
		}
		log.Printf("❌ Plan %s→%s failed: %v", planReq.Origin, planReq.Destination, err)
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	// ── Persist to DB ─────────────────────────────────────────────────────────
	search := services.SearchFromRequest(planReq, req.Watch)
	if err := database.SaveSearch(search); err != nil {
		log.Printf("❌ Failed to save search: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save search"})
		return
	}
	plan, err := services.SavePlanResult(search.ID, result)
	if err != nil {
		log.Printf("❌ Failed to save plan: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save plan"})
		return
	}

	c.JSON(http.StatusOK, PlanResponse{
		SearchID: search.ID,
		PlanID:   plan.ID,
		Result:   result,
	})
}

type StoredPlanResponse struct {
	*database.Plan
	Result *services.PlanResult `json:"result"`
	HasPDF bool                 `json:"has_pdf"`
}

func storedPlan(c *gin.Context, plan *database.Plan, err error) {
	if errors.Is(err, database.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Plan not found"})
		return
	}
	if err != nil {
		log.Printf("❌ Failed to load plan: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load plan"})
		return
	}
	result, err := services.DecodePlan(plan)
	if err != nil {
		log.Printf("❌ %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to parse stored plan"})
		return
	}
	c.JSON(http.StatusOK, StoredPlanResponse{Plan: plan, Result: result, HasPDF: len(plan.PDFData) > 0})
}

func GetPlanHandler(c *gin.Context) {
	plan, err := database.GetPlan(c.Param("id"))
	storedPlan(c, plan, err)
}

// LatestPlanHandler returns the newest plan stored for a search.
func LatestPlanHandler(c *gin.Context) {
	plan, err := database.GetLatestPlanBySearchID(c.Param("id"))
	storedPlan(c, plan, err)
}
