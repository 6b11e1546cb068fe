package controllers

import (
	"net/http"
	"strconv"
	"time"

	"consortium-planner-api/config"
	"consortium-planner-api/services"
	"consortium-planner-api/utils"

	"github.com/gin-gonic/gin"
)

// GetProjectEffortSummary reports planned-vs-actual effort per user on
// a project. Money is formatted at the edge; internally everything is
// integer cents.
func GetProjectEffortSummary(c *gin.Context) {
	projectID, ok := parseID(c, "id")
	if !ok {
		return
	}

	service := services.NewBudgetService(config.DB)
	summaries, err := service.ProjectEffortSummary(projectID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	rows := make([]gin.H, 0, len(summaries))
	for _, entry := range summaries {
		rows = append(rows, gin.H{
			"user_id":       entry.UserID,
			"partner_id":    entry.PartnerID,
			"planned_days":  entry.PlannedDays,
			"planned_hours": entry.PlannedHours,
			"planned_cost":  entry.PlannedCost.Format(),
			"actual_hours":  entry.ActualHours,
			"variance":      entry.Variance,
			"utilization":   entry.Utilization,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"summary": rows,
		"total":   len(rows),
	})
}

// GetPartnerBudgets reports declared-vs-consumed budget per partner.
func GetPartnerBudgets(c *gin.Context) {
	projectID, ok := parseID(c, "id")
	if !ok {
		return
	}

	service := services.NewBudgetService(config.DB)
	summaries, err := service.PartnerBudgets(projectID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	rows := make([]gin.H, 0, len(summaries))
	for _, entry := range summaries {
		rows = append(rows, gin.H{
			"partner_id": entry.PartnerID,
			"name":       entry.Name,
			"declared":   entry.Declared.Format(),
			"consumed":   entry.Consumed.Format(),
			"remaining":  entry.Remaining.Format(),
			"over":       entry.Remaining < 0,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"partners": rows,
		"total":    len(rows),
	})
}

// GetContainerBudget rolls the costed assignments under one tree
// container up against its declared budget, descendants included.
func GetContainerBudget(c *gin.Context) {
	projectID, ok := parseID(c, "id")
	if !ok {
		return
	}
	ref, ok := containerRefFromRequest(c)
	if !ok {
		return
	}

	service := services.NewBudgetService(config.DB)
	report, err := service.ContainerBudget(projectID, ref)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	response := gin.H{
		"success":  true,
		"kind":     report.Ref.Kind,
		"id":       report.Ref.ID,
		"consumed": report.Consumed.Format(),
	}
	if report.Declared != nil {
		response["declared"] = report.Declared.Format()
		response["remaining"] = report.Remaining.Format()
		response["over"] = *report.Remaining < 0
	}
	c.JSON(http.StatusOK, response)
}

// GetUserWorkload runs the cross-project overload check for one user.
// Without a ?month= query it reports all twelve months of the year.
func GetUserWorkload(c *gin.Context) {
	userID, ok := parseID(c, "userId")
	if !ok {
		return
	}
	year, ok := parseYear(c)
	if !ok {
		return
	}

	service := services.NewWorkloadService(config.DB)
	if monthParam := c.Query("month"); monthParam != "" {
		month, err := strconv.Atoi(monthParam)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid month"})
			return
		}
		report, err := service.CheckWorkload(userID, year, month)
		if err != nil {
			respondServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "workload": report})
		return
	}

	reports, err := service.YearWorkload(userID, year)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "workload": reports})
}

// ResolveRate exposes the daily-rate resolution chain for one project
// member, mainly so planners can see where a figure comes from.
func ResolveRate(c *gin.Context) {
	projectID, ok := parseID(c, "id")
	if !ok {
		return
	}
	userID, ok := parseID(c, "userId")
	if !ok {
		return
	}

	service := services.NewCostService(config.DB)
	resolution := service.ResolveDailyRate(userID, projectID, nil)
	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"user_id":    userID,
		"daily_rate": resolution.Rate,
		"daily_cost": utils.CostCents(1, resolution.Rate).Format(),
		"source":     resolution.Source,
		"checked_at": time.Now(),
	})
}
