package controllers

import (
	"net/http"
	"time"

	"consortium-planner-api/config"
	"consortium-planner-api/models"

	"github.com/gin-gonic/gin"
)

// GetTimesheetEntries lists logged hours on a project, optionally
// filtered by user and date range.
func GetTimesheetEntries(c *gin.Context) {
	projectID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var entries []models.TimesheetEntry
	query := config.DB.Preload("User").Where("project_id = ?", projectID)
	if userID := c.Query("user_id"); userID != "" {
		query = query.Where("user_id = ?", userID)
	}
	if from := c.Query("from"); from != "" {
		query = query.Where("work_date >= ?", from)
	}
	if to := c.Query("to"); to != "" {
		query = query.Where("work_date <= ?", to)
	}
	if err := query.Order("work_date ASC, entry_id ASC").Find(&entries).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch timesheet entries"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"entries": entries,
		"total":   len(entries),
	})
}

// CreateTimesheetEntry logs actual hours of the calling user.
func CreateTimesheetEntry(c *gin.Context) {
	projectID, ok := parseID(c, "id")
	if !ok {
		return
	}

	type request struct {
		WorkDate string  `json:"work_date" binding:"required"`
		Hours    float64 `json:"hours" binding:"required"`

		SectionID  *uint `json:"section_id"`
		WorkID     *uint `json:"work_id"`
		TaskID     *uint `json:"task_id"`
		ActivityID *uint `json:"activity_id"`
	}
	var req request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Hours <= 0 || req.Hours > 24 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Hours must be between 0 and 24"})
		return
	}
	workDate, err := time.Parse("2006-01-02", req.WorkDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "work_date must use the YYYY-MM-DD format"})
		return
	}

	entry := models.TimesheetEntry{
		ProjectID: projectID,
		UserID:    currentActor(c).UserID,
		WorkDate:  workDate,
		Hours:     req.Hours,
		Status:    models.TimesheetStatusDraft,
	}
	// The container scope is optional; at most one reference is accepted.
	if req.SectionID != nil || req.WorkID != nil || req.TaskID != nil || req.ActivityID != nil {
		ref, ok := models.RefFromColumns(nil, req.SectionID, req.WorkID, req.TaskID, req.ActivityID, nil)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "At most one container reference is allowed"})
			return
		}
		entry.SetContainerRef(ref)
	}

	if err := config.DB.Create(&entry).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create timesheet entry"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "entry": entry})
}

// UpdateTimesheetEntry edits an entry while it is still a draft.
func UpdateTimesheetEntry(c *gin.Context) {
	entryID, ok := parseID(c, "entryId")
	if !ok {
		return
	}

	var entry models.TimesheetEntry
	if err := config.DB.First(&entry, "entry_id = ?", entryID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Timesheet entry not found"})
		return
	}
	actor := currentActor(c)
	if entry.UserID != actor.UserID && !actor.IsManager {
		c.JSON(http.StatusForbidden, gin.H{"error": "You can only edit your own timesheet entries"})
		return
	}
	if entry.Status != models.TimesheetStatusDraft && !actor.IsManager {
		c.JSON(http.StatusConflict, gin.H{"error": "Only draft entries can be edited"})
		return
	}

	type request struct {
		Hours  *float64 `json:"hours"`
		Status *string  `json:"status"`
	}
	var req request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Hours != nil {
		if *req.Hours <= 0 || *req.Hours > 24 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Hours must be between 0 and 24"})
			return
		}
		entry.Hours = *req.Hours
	}
	if req.Status != nil {
		switch *req.Status {
		case models.TimesheetStatusDraft, models.TimesheetStatusSubmitted, models.TimesheetStatusApproved:
			entry.Status = *req.Status
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid timesheet status"})
			return
		}
	}

	now := time.Now()
	entry.UpdatedAt = &now
	if err := config.DB.Save(&entry).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update timesheet entry"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "entry": entry})
}

// DeleteTimesheetEntry removes an entry.
func DeleteTimesheetEntry(c *gin.Context) {
	entryID, ok := parseID(c, "entryId")
	if !ok {
		return
	}

	var entry models.TimesheetEntry
	if err := config.DB.First(&entry, "entry_id = ?", entryID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Timesheet entry not found"})
		return
	}
	actor := currentActor(c)
	if entry.UserID != actor.UserID && !actor.IsManager {
		c.JSON(http.StatusForbidden, gin.H{"error": "You can only delete your own timesheet entries"})
		return
	}

	if err := config.DB.Delete(&entry).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete timesheet entry"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Timesheet entry deleted"})
}
