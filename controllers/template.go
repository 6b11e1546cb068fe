package controllers

import (
	"net/http"

	"consortium-planner-api/config"
	"consortium-planner-api/services"

	"github.com/gin-gonic/gin"
)

// CreateTemplate clones a project into a reusable template project.
// Partner identity, budgets and module content are stripped by the
// service; the response carries the new template's project id.
func CreateTemplate(c *gin.Context) {
	projectID, ok := parseID(c, "id")
	if !ok {
		return
	}

	type request struct {
		Name string `json:"name" binding:"required"`
	}
	var req request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	service := services.NewTemplateService(config.DB)
	templateID, err := service.CreateTemplate(currentActor(c), projectID, req.Name)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"success":     true,
		"template_id": templateID,
		"message":     "Template created",
	})
}

// CreateSnapshot captures a point-in-time copy of the full project
// tree, module content and workflow state included.
func CreateSnapshot(c *gin.Context) {
	projectID, ok := parseID(c, "id")
	if !ok {
		return
	}

	type request struct {
		Name string `json:"name"`
	}
	var req request
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	service := services.NewTemplateService(config.DB)
	snapshot, err := service.CreateSnapshot(currentActor(c), projectID, req.Name)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"snapshot": gin.H{
			"snapshot_id": snapshot.SnapshotID,
			"project_id":  snapshot.ProjectID,
			"name":        snapshot.Name,
			"created_at":  snapshot.CreatedAt,
		},
	})
}

// GetSnapshots lists a project's snapshots without their payloads.
func GetSnapshots(c *gin.Context) {
	projectID, ok := parseID(c, "id")
	if !ok {
		return
	}

	service := services.NewTemplateService(config.DB)
	snapshots, err := service.ListSnapshots(projectID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"snapshots": snapshots,
		"total":     len(snapshots),
	})
}

// RestoreSnapshot replaces the live tree with a snapshot's contents.
// Manager only; a pre-restore safety snapshot is written in the same
// transaction.
func RestoreSnapshot(c *gin.Context) {
	if !ensureManager(c) {
		return
	}
	projectID, ok := parseID(c, "id")
	if !ok {
		return
	}
	snapshotID, ok := parseID(c, "snapshotId")
	if !ok {
		return
	}

	service := services.NewTemplateService(config.DB)
	if err := service.RestoreSnapshot(currentActor(c), projectID, snapshotID); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Project restored from snapshot",
	})
}
