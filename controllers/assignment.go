package controllers

import (
	"net/http"
	"time"

	"consortium-planner-api/config"
	"consortium-planner-api/models"
	"consortium-planner-api/utils"

	"github.com/gin-gonic/gin"
)

type assignmentRequest struct {
	UserID    uint     `json:"user_id" binding:"required"`
	Days      float64  `json:"days" binding:"required"`
	DailyRate *float64 `json:"daily_rate"`
	Months    []string `json:"months"`

	SectionID  *uint `json:"section_id"`
	WorkID     *uint `json:"work_id"`
	TaskID     *uint `json:"task_id"`
	ActivityID *uint `json:"activity_id"`
}

func (r *assignmentRequest) validate(c *gin.Context) (models.ContainerRef, bool) {
	if r.Days <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Days must be positive"})
		return models.ContainerRef{}, false
	}
	for _, token := range r.Months {
		if !utils.ValidateMonthToken(token) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Months must use the YYYY-MM format"})
			return models.ContainerRef{}, false
		}
	}
	ref, ok := models.RefFromColumns(nil, r.SectionID, r.WorkID, r.TaskID, r.ActivityID, nil)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Exactly one container reference is required"})
		return models.ContainerRef{}, false
	}
	return ref, true
}

// GetAssignments lists a project's planned assignments.
func GetAssignments(c *gin.Context) {
	projectID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var assignments []models.Assignment
	query := config.DB.Preload("User").Where("project_id = ?", projectID)
	if userID := c.Query("user_id"); userID != "" {
		query = query.Where("user_id = ?", userID)
	}
	if err := query.Order("assignment_id ASC").Find(&assignments).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch assignments"})
		return
	}

	responses := make([]gin.H, 0, len(assignments))
	for i := range assignments {
		a := &assignments[i]
		responses = append(responses, gin.H{
			"assignment_id": a.AssignmentID,
			"project_id":    a.ProjectID,
			"user_id":       a.UserID,
			"days":          a.Days,
			"daily_rate":    a.DailyRate,
			"months":        a.MonthList(),
			"section_id":    a.SectionID,
			"work_id":       a.WorkID,
			"task_id":       a.TaskID,
			"activity_id":   a.ActivityID,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"assignments": responses,
		"total":       len(responses),
	})
}

// CreateAssignment plans effort of a user against one tree container.
func CreateAssignment(c *gin.Context) {
	projectID, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req assignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ref, ok := req.validate(c)
	if !ok {
		return
	}

	assignment := models.Assignment{
		ProjectID: projectID,
		UserID:    req.UserID,
		Days:      req.Days,
		DailyRate: req.DailyRate,
	}
	assignment.SetContainerRef(ref)
	if err := assignment.SetMonthList(req.Months); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid months list"})
		return
	}

	if err := config.DB.Create(&assignment).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create assignment"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "assignment": assignment})
}

// UpdateAssignment updates a planned assignment.
func UpdateAssignment(c *gin.Context) {
	assignmentID, ok := parseID(c, "assignmentId")
	if !ok {
		return
	}

	var assignment models.Assignment
	if err := config.DB.First(&assignment, "assignment_id = ?", assignmentID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Assignment not found"})
		return
	}

	type request struct {
		Days      *float64 `json:"days"`
		DailyRate *float64 `json:"daily_rate"`
		Months    []string `json:"months"`
	}
	var req request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Days != nil {
		if *req.Days <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Days must be positive"})
			return
		}
		assignment.Days = *req.Days
	}
	if req.DailyRate != nil {
		assignment.DailyRate = req.DailyRate
	}
	if req.Months != nil {
		for _, token := range req.Months {
			if !utils.ValidateMonthToken(token) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Months must use the YYYY-MM format"})
				return
			}
		}
		if err := assignment.SetMonthList(req.Months); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid months list"})
			return
		}
	}

	now := time.Now()
	assignment.UpdatedAt = &now
	if err := config.DB.Save(&assignment).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update assignment"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "assignment": assignment})
}

// DeleteAssignment removes a planned assignment.
func DeleteAssignment(c *gin.Context) {
	assignmentID, ok := parseID(c, "assignmentId")
	if !ok {
		return
	}

	result := config.DB.Where("assignment_id = ?", assignmentID).Delete(&models.Assignment{})
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete assignment"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Assignment not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Assignment deleted"})
}
