package controllers

import (
	"net/http"
	"time"

	"consortium-planner-api/config"
	"consortium-planner-api/models"
	"consortium-planner-api/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// GetProjects lists projects, optionally filtered to templates only or
// working projects only via ?templates=true|false.
func GetProjects(c *gin.Context) {
	var projects []models.Project
	query := config.DB.Model(&models.Project{})

	switch c.Query("templates") {
	case "true":
		query = query.Where("is_template = ?", true)
	case "false":
		query = query.Where("is_template = ?", false)
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	if err := query.Order("created_at DESC, project_id DESC").Find(&projects).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch projects"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"projects": projects,
		"total":    len(projects),
	})
}

// GetProject returns one project with its partners, tree and root modules.
func GetProject(c *gin.Context) {
	projectID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var project models.Project
	err := config.DB.
		Preload("Partners").
		Preload("Sections", func(db *gorm.DB) *gorm.DB { return db.Order("order_index ASC") }).
		Preload("Sections.Works", func(db *gorm.DB) *gorm.DB { return db.Order("order_index ASC") }).
		Preload("Sections.Works.Tasks", func(db *gorm.DB) *gorm.DB { return db.Order("order_index ASC") }).
		Preload("Sections.Works.Tasks.Activities", func(db *gorm.DB) *gorm.DB { return db.Order("order_index ASC") }).
		Preload("Works", func(db *gorm.DB) *gorm.DB { return db.Order("order_index ASC") }).
		Preload("Works.Tasks", func(db *gorm.DB) *gorm.DB { return db.Order("order_index ASC") }).
		Preload("Works.Tasks.Activities", func(db *gorm.DB) *gorm.DB { return db.Order("order_index ASC") }).
		Preload("Modules", func(db *gorm.DB) *gorm.DB { return db.Order("order_index ASC") }).
		First(&project, "project_id = ?", projectID).Error
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"project": project,
	})
}

// CreateProject handles project creation
func CreateProject(c *gin.Context) {
	type request struct {
		Title          string  `json:"title" binding:"required"`
		Acronym        string  `json:"acronym"`
		StartDate      *string `json:"start_date"`
		EndDate        *string `json:"end_date"`
		DurationMonths int     `json:"duration_months"`
	}

	var req request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	actor := currentActor(c)
	project := models.Project{
		Title:          req.Title,
		Acronym:        req.Acronym,
		DurationMonths: req.DurationMonths,
		Status:         models.ProjectStatusDraft,
		CreatedBy:      &actor.UserID,
	}
	var bad bool
	project.StartDate, bad = parseOptionalDate(c, req.StartDate)
	if bad {
		return
	}
	project.EndDate, bad = parseOptionalDate(c, req.EndDate)
	if bad {
		return
	}

	if err := config.DB.Create(&project).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create project"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"project": project,
	})
}

// UpdateProject updates the project's own attributes.
func UpdateProject(c *gin.Context) {
	projectID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var project models.Project
	if err := config.DB.First(&project, "project_id = ?", projectID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
		return
	}

	type request struct {
		Title          *string `json:"title"`
		Acronym        *string `json:"acronym"`
		StartDate      *string `json:"start_date"`
		EndDate        *string `json:"end_date"`
		DurationMonths *int    `json:"duration_months"`
		Status         *string `json:"status"`
	}
	var req request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Title != nil {
		project.Title = *req.Title
	}
	if req.Acronym != nil {
		project.Acronym = *req.Acronym
	}
	if req.DurationMonths != nil {
		project.DurationMonths = *req.DurationMonths
	}
	if req.Status != nil {
		switch *req.Status {
		case models.ProjectStatusDraft, models.ProjectStatusActive,
			models.ProjectStatusCompleted, models.ProjectStatusArchived:
			project.Status = *req.Status
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid project status"})
			return
		}
	}
	var bad bool
	if req.StartDate != nil {
		project.StartDate, bad = parseOptionalDate(c, req.StartDate)
		if bad {
			return
		}
	}
	if req.EndDate != nil {
		project.EndDate, bad = parseOptionalDate(c, req.EndDate)
		if bad {
			return
		}
	}

	now := time.Now()
	project.UpdatedAt = &now
	if err := config.DB.Save(&project).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update project"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"project": project,
	})
}

// DeleteProject removes a project and everything it owns. Manager only;
// projects are never deleted implicitly.
func DeleteProject(c *gin.Context) {
	if !ensureManager(c) {
		return
	}
	projectID, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := services.NewTreeService(config.DB).DeleteProject(projectID); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Project deleted"})
}

// GetProjectTeam returns the deduplicated team list (canonical members
// plus legacy partner-linked users).
func GetProjectTeam(c *gin.Context) {
	projectID, ok := parseID(c, "id")
	if !ok {
		return
	}

	team, err := services.NewTeamService(config.DB).ProjectTeam(projectID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"team":    team,
		"total":   len(team),
	})
}

// parseOptionalDate parses a "2006-01-02" date string, writing the
// error response itself when the value is malformed.
func parseOptionalDate(c *gin.Context, value *string) (*time.Time, bool) {
	if value == nil || *value == "" {
		return nil, false
	}
	parsed, err := time.Parse("2006-01-02", *value)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Dates must use the YYYY-MM-DD format"})
		return nil, true
	}
	return &parsed, false
}
