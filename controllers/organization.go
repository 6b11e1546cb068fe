package controllers

import (
	"net/http"
	"strings"
	"time"

	"consortium-planner-api/config"
	"consortium-planner-api/models"

	"github.com/gin-gonic/gin"
)

// GetOrganizations lists the cross-project organization directory,
// optionally filtered by a name search term.
func GetOrganizations(c *gin.Context) {
	var organizations []models.Organization
	query := config.DB.Order("name ASC")
	if search := c.Query("search"); search != "" {
		query = query.Where("name LIKE ?", "%"+search+"%")
	}
	if nation := c.Query("nation"); nation != "" {
		query = query.Where("nation = ?", strings.ToUpper(nation))
	}
	if err := query.Find(&organizations).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch organizations"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"organizations": organizations,
		"total":         len(organizations),
	})
}

// CreateOrganization adds a directory entry.
func CreateOrganization(c *gin.Context) {
	type request struct {
		Name    string `json:"name" binding:"required"`
		Nation  string `json:"nation" binding:"required"`
		City    string `json:"city"`
		Type    string `json:"type"`
		Website string `json:"website"`
	}
	var req request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	organization := models.Organization{
		Name:    strings.TrimSpace(req.Name),
		Nation:  strings.ToUpper(strings.TrimSpace(req.Nation)),
		City:    req.City,
		Type:    req.Type,
		Website: req.Website,
	}
	if err := config.DB.Create(&organization).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create organization"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "organization": organization})
}

// UpdateOrganization edits a directory entry.
func UpdateOrganization(c *gin.Context) {
	organizationID, ok := parseID(c, "organizationId")
	if !ok {
		return
	}

	var organization models.Organization
	if err := config.DB.First(&organization, "organization_id = ?", organizationID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Organization not found"})
		return
	}

	type request struct {
		Name    *string `json:"name"`
		Nation  *string `json:"nation"`
		City    *string `json:"city"`
		Type    *string `json:"type"`
		Website *string `json:"website"`
	}
	var req request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Name != nil {
		organization.Name = strings.TrimSpace(*req.Name)
	}
	if req.Nation != nil {
		organization.Nation = strings.ToUpper(strings.TrimSpace(*req.Nation))
	}
	if req.City != nil {
		organization.City = *req.City
	}
	if req.Type != nil {
		organization.Type = *req.Type
	}
	if req.Website != nil {
		organization.Website = *req.Website
	}

	now := time.Now()
	organization.UpdatedAt = &now
	if err := config.DB.Save(&organization).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update organization"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "organization": organization})
}

// DeleteOrganization removes a directory entry. Manager only.
func DeleteOrganization(c *gin.Context) {
	if !ensureManager(c) {
		return
	}
	organizationID, ok := parseID(c, "organizationId")
	if !ok {
		return
	}

	result := config.DB.Delete(&models.Organization{}, "organization_id = ?", organizationID)
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete organization"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Organization not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Organization deleted"})
}
