package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"tripwindow/database"
	"tripwindow/services"
)

type ReportResponse struct {
	PlanID  string `json:"plan_id"`
	PDFURL  string `json:"pdf_url"`
	Message string `json:"message"`
}

// ReportHandler renders the PDF report of a stored plan and keeps it with the plan.
func ReportHandler(c *gin.Context) {
	id := c.Param("id")
	plan, err := database.GetPlan(id)
	if errors.Is(err, database.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Plan not found"})
		return
	}
	if err != nil {
		log.Printf("❌ Failed to load plan %s: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load plan"})
		return
	}

	result, err := services.DecodePlan(plan)
	if err != nil {
		log.Printf("❌ %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to parse stored plan"})
		return
	}

	pdfBytes, err := services.RenderReportPDF(result)
	if err != nil {
		log.Printf("❌ PDF generation failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate PDF"})
		return
	}
	if err := database.UpdatePlanPDF(id, pdfBytes); err != nil {
		log.Printf("❌ Failed to save PDF for plan %s: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save generated PDF"})
		return
	}

	log.Printf("✅ PDF generated for plan %s (%d bytes)", id, len(pdfBytes))
	c.JSON(http.StatusOK, ReportResponse{
		PlanID:  id,
		PDFURL:  "/api/download/" + id,
		Message: "PDF generated successfully",
	})
}
