package controllers

import (
	"net/http"
	"strings"
	"time"

	"consortium-planner-api/config"
	"consortium-planner-api/models"

	"github.com/gin-gonic/gin"
)

// GetStandardCosts lists the rate card, optionally filtered by area
// and nation.
func GetStandardCosts(c *gin.Context) {
	var costs []models.StandardCost
	query := config.DB.Order("area ASC, nation ASC, role ASC")
	if area := c.Query("area"); area != "" {
		query = query.Where("area = ?", strings.ToUpper(area))
	}
	if nation := c.Query("nation"); nation != "" {
		query = query.Where("nation = ?", strings.ToUpper(nation))
	}
	if err := query.Find(&costs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch standard costs"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"costs":   costs,
		"total":   len(costs),
	})
}

// CreateStandardCost adds a rate card row. Manager only.
func CreateStandardCost(c *gin.Context) {
	if !ensureManager(c) {
		return
	}

	type request struct {
		Area      string  `json:"area" binding:"required"`
		Nation    string  `json:"nation" binding:"required"`
		Role      string  `json:"role" binding:"required"`
		DailyRate float64 `json:"daily_rate" binding:"required"`
	}
	var req request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.DailyRate <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Daily rate must be positive"})
		return
	}

	cost := models.StandardCost{
		Area:      strings.ToUpper(strings.TrimSpace(req.Area)),
		Nation:    strings.ToUpper(strings.TrimSpace(req.Nation)),
		Role:      strings.ToUpper(strings.TrimSpace(req.Role)),
		DailyRate: req.DailyRate,
	}
	if err := config.DB.Create(&cost).Error; err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "A rate for this area, nation and role already exists"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "cost": cost})
}

// UpdateStandardCost changes the rate of an existing row. Manager only.
func UpdateStandardCost(c *gin.Context) {
	if !ensureManager(c) {
		return
	}
	costID, ok := parseID(c, "costId")
	if !ok {
		return
	}

	var cost models.StandardCost
	if err := config.DB.First(&cost, "cost_id = ?", costID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Standard cost not found"})
		return
	}

	type request struct {
		DailyRate float64 `json:"daily_rate" binding:"required"`
	}
	var req request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.DailyRate <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Daily rate must be positive"})
		return
	}

	now := time.Now()
	cost.DailyRate = req.DailyRate
	cost.UpdatedAt = &now
	if err := config.DB.Save(&cost).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update standard cost"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "cost": cost})
}

// DeleteStandardCost removes a rate card row. Manager only.
func DeleteStandardCost(c *gin.Context) {
	if !ensureManager(c) {
		return
	}
	costID, ok := parseID(c, "costId")
	if !ok {
		return
	}

	result := config.DB.Delete(&models.StandardCost{}, "cost_id = ?", costID)
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete standard cost"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Standard cost not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Standard cost deleted"})
}
