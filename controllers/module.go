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

// GetModule returns one module with components and member bindings.
func GetModule(c *gin.Context) {
	moduleID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var module models.Module
	err := config.DB.
		Preload("Components", func(db *gorm.DB) *gorm.DB { return db.Order("order_index ASC") }).
		Preload("Members.User").
		Preload("Submodules", func(db *gorm.DB) *gorm.DB { return db.Order("order_index ASC") }).
		First(&module, "module_id = ?", moduleID).Error
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Module not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":          true,
		"module":           module,
		"effective_status": module.EffectiveStatus(),
		"popup_options":    module.PopupOptionList(),
	})
}

// CreateModule attaches a module to a tree container or another module.
func CreateModule(c *gin.Context) {
	type request struct {
		Title         string   `json:"title" binding:"required"`
		Subtitle      string   `json:"subtitle"`
		Type          string   `json:"type"`
		Guidelines    *string  `json:"guidelines"`
		MaxChars      *int     `json:"max_chars"`
		PopupOptions  []string `json:"popup_options"`
		MaxSelections *int     `json:"max_selections"`

		ProjectID      *uint `json:"project_id"`
		SectionID      *uint `json:"section_id"`
		WorkID         *uint `json:"work_id"`
		TaskID         *uint `json:"task_id"`
		ActivityID     *uint `json:"activity_id"`
		ParentModuleID *uint `json:"parent_module_id"`
	}
	var req request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	parent, ok := models.RefFromColumns(req.ProjectID, req.SectionID, req.WorkID, req.TaskID, req.ActivityID, req.ParentModuleID)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Exactly one parent reference is required"})
		return
	}

	module := &models.Module{
		Title:         req.Title,
		Subtitle:      req.Subtitle,
		Type:          req.Type,
		Guidelines:    req.Guidelines,
		MaxChars:      req.MaxChars,
		MaxSelections: req.MaxSelections,
	}
	if req.PopupOptions != nil {
		if err := module.SetPopupOptionList(req.PopupOptions); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid popup options"})
			return
		}
	}

	module, err := services.NewTreeService(config.DB).CreateModule(parent, module)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "module": module})
}

// UpdateModule updates a module's descriptive attributes. Status moves
// through TransitionModule, never here.
func UpdateModule(c *gin.Context) {
	moduleID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var module models.Module
	if err := config.DB.First(&module, "module_id = ?", moduleID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Module not found"})
		return
	}

	type request struct {
		Title         *string  `json:"title"`
		Subtitle      *string  `json:"subtitle"`
		Guidelines    *string  `json:"guidelines"`
		MaxChars      *int     `json:"max_chars"`
		Completion    *int     `json:"completion"`
		PopupOptions  []string `json:"popup_options"`
		MaxSelections *int     `json:"max_selections"`
	}
	var req request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Title != nil {
		module.Title = *req.Title
	}
	if req.Subtitle != nil {
		module.Subtitle = *req.Subtitle
	}
	if req.Guidelines != nil {
		module.Guidelines = req.Guidelines
	}
	if req.MaxChars != nil {
		module.MaxChars = req.MaxChars
	}
	if req.Completion != nil {
		if *req.Completion < 0 || *req.Completion > 100 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Completion must be 0-100"})
			return
		}
		module.Completion = *req.Completion
	}
	if req.MaxSelections != nil {
		module.MaxSelections = req.MaxSelections
	}
	if req.PopupOptions != nil {
		if err := module.SetPopupOptionList(req.PopupOptions); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid popup options"})
			return
		}
	}

	now := time.Now()
	module.UpdatedAt = &now
	if err := config.DB.Save(&module).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update module"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "module": module})
}

// TransitionModule requests a workflow status change.
func TransitionModule(c *gin.Context) {
	moduleID, ok := parseID(c, "id")
	if !ok {
		return
	}
	type request struct {
		Status string `json:"status" binding:"required"`
	}
	var req request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	module, err := services.NewWorkflowService(config.DB).Transition(currentActor(c), moduleID, req.Status)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "module": module})
}

// ReplaceModuleMembers swaps the module's full member set.
func ReplaceModuleMembers(c *gin.Context) {
	moduleID, ok := parseID(c, "id")
	if !ok {
		return
	}
	type request struct {
		Members []services.ModuleMemberSpec `json:"members"`
	}
	var req request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := services.NewWorkflowService(config.DB).ReplaceMembers(currentActor(c), moduleID, req.Members); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "total": len(req.Members)})
}

// CreateTextComponent adds a contribution to a module.
func CreateTextComponent(c *gin.Context) {
	moduleID, ok := parseID(c, "id")
	if !ok {
		return
	}
	type request struct {
		Type    string `json:"type"`
		Content string `json:"content" binding:"required"`
	}
	var req request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	component, err := services.NewWorkflowService(config.DB).CreateComponent(currentActor(c), moduleID, req.Type, req.Content)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "component": component})
}

// MergeTextComponent merges a contribution into the official text.
func MergeTextComponent(c *gin.Context) {
	moduleID, ok := parseID(c, "id")
	if !ok {
		return
	}
	componentID, ok := parseID(c, "componentId")
	if !ok {
		return
	}

	module, err := services.NewWorkflowService(config.DB).MergeContribution(currentActor(c), moduleID, componentID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "module": module})
}

// DeleteModule removes a module and its nested submodules.
func DeleteModule(c *gin.Context) {
	moduleID, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := services.NewTreeService(config.DB).DeleteModule(moduleID); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Module deleted"})
}

// DeleteTextComponent removes a contribution. Content already merged
// into the official text stays there; the merge is append-only.
func DeleteTextComponent(c *gin.Context) {
	moduleID, ok := parseID(c, "id")
	if !ok {
		return
	}
	componentID, ok := parseID(c, "componentId")
	if !ok {
		return
	}

	result := config.DB.Where("component_id = ? AND module_id = ?", componentID, moduleID).
		Delete(&models.TextComponent{})
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete component"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Component not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Component deleted"})
}
