package controllers

import (
	"net/http"
	"time"

	"consortium-planner-api/config"
	"consortium-planner-api/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// GetPartners lists a project's consortium partners.
func GetPartners(c *gin.Context) {
	projectID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var partners []models.Partner
	if err := config.DB.Where("project_id = ?", projectID).
		Order("partner_id ASC").Find(&partners).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch partners"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"partners": partners,
		"total":    len(partners),
	})
}

// CreatePartner adds a partner organization to a project.
func CreatePartner(c *gin.Context) {
	projectID, ok := parseID(c, "id")
	if !ok {
		return
	}

	type request struct {
		Name         string  `json:"name" binding:"required"`
		Nation       string  `json:"nation"`
		City         string  `json:"city"`
		Role         string  `json:"role"`
		Type         string  `json:"type"`
		Budget       float64 `json:"budget"`
		ContactName  string  `json:"contact_name"`
		ContactEmail string  `json:"contact_email"`
		ContactPhone string  `json:"contact_phone"`
	}
	var req request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Role == "" {
		req.Role = models.PartnerRolePartner
	}
	switch req.Role {
	case models.PartnerRoleCoordinator, models.PartnerRolePartner, models.PartnerRoleAssociated:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid partner role"})
		return
	}

	var count int64
	if err := config.DB.Model(&models.Project{}).Where("project_id = ?", projectID).Count(&count).Error; err != nil || count == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
		return
	}

	partner := models.Partner{
		ProjectID:    projectID,
		Name:         req.Name,
		Nation:       req.Nation,
		City:         req.City,
		Role:         req.Role,
		Type:         req.Type,
		Budget:       req.Budget,
		ContactName:  req.ContactName,
		ContactEmail: req.ContactEmail,
		ContactPhone: req.ContactPhone,
	}
	if err := config.DB.Create(&partner).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create partner"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"partner": partner,
	})
}

// UpdatePartner updates a partner's attributes.
func UpdatePartner(c *gin.Context) {
	partnerID, ok := parseID(c, "partnerId")
	if !ok {
		return
	}

	var partner models.Partner
	if err := config.DB.First(&partner, "partner_id = ?", partnerID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Partner not found"})
		return
	}

	type request struct {
		Name         *string  `json:"name"`
		Nation       *string  `json:"nation"`
		City         *string  `json:"city"`
		Role         *string  `json:"role"`
		Type         *string  `json:"type"`
		Budget       *float64 `json:"budget"`
		ContactName  *string  `json:"contact_name"`
		ContactEmail *string  `json:"contact_email"`
		ContactPhone *string  `json:"contact_phone"`
	}
	var req request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Name != nil {
		partner.Name = *req.Name
	}
	if req.Nation != nil {
		partner.Nation = *req.Nation
	}
	if req.City != nil {
		partner.City = *req.City
	}
	if req.Role != nil {
		switch *req.Role {
		case models.PartnerRoleCoordinator, models.PartnerRolePartner, models.PartnerRoleAssociated:
			partner.Role = *req.Role
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid partner role"})
			return
		}
	}
	if req.Type != nil {
		partner.Type = *req.Type
	}
	if req.Budget != nil {
		partner.Budget = *req.Budget
	}
	if req.ContactName != nil {
		partner.ContactName = *req.ContactName
	}
	if req.ContactEmail != nil {
		partner.ContactEmail = *req.ContactEmail
	}
	if req.ContactPhone != nil {
		partner.ContactPhone = *req.ContactPhone
	}

	now := time.Now()
	partner.UpdatedAt = &now
	if err := config.DB.Save(&partner).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update partner"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"partner": partner,
	})
}

// DeletePartner removes a partner and its container assignments, and
// clears the legacy links pointing at it.
func DeletePartner(c *gin.Context) {
	partnerID, ok := parseID(c, "partnerId")
	if !ok {
		return
	}

	err := config.DB.Transaction(func(tx *gorm.DB) error {
		var partner models.Partner
		if err := tx.First(&partner, "partner_id = ?", partnerID).Error; err != nil {
			return err
		}
		if err := tx.Where("partner_id = ?", partnerID).Delete(&models.PartnerAssignment{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.ProjectMember{}).Where("partner_id = ?", partnerID).
			Update("partner_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.User{}).Where("partner_id = ?", partnerID).
			Update("partner_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&partner).Error
	})
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Partner not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete partner"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Partner deleted"})
}

// ReplacePartnerAssignments swaps the full partner-assignment set of
// one tree container: delete all, then insert.
func ReplacePartnerAssignments(c *gin.Context) {
	ref, ok := containerRefFromRequest(c)
	if !ok {
		return
	}

	type assignmentSpec struct {
		PartnerID         uint     `json:"partner_id" binding:"required"`
		Role              string   `json:"role"`
		BudgetShare       *float64 `json:"budget_share"`
		ResponsibleUserID *uint    `json:"responsible_user_id"`
	}
	type request struct {
		Assignments []assignmentSpec `json:"assignments"`
	}
	var req request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	for i := range req.Assignments {
		if req.Assignments[i].Role == "" {
			req.Assignments[i].Role = models.AssignmentRoleBeneficiary
		}
		switch req.Assignments[i].Role {
		case models.AssignmentRoleLead, models.AssignmentRoleCoLead, models.AssignmentRoleBeneficiary:
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid assignment role"})
			return
		}
	}

	column, ok := containerColumn(ref.Kind)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Partner assignments require a section, work, task or activity container"})
		return
	}

	var created []models.PartnerAssignment
	err := config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where(column+" = ?", ref.ID).Delete(&models.PartnerAssignment{}).Error; err != nil {
			return err
		}
		for _, spec := range req.Assignments {
			assignment := models.PartnerAssignment{
				PartnerID:         spec.PartnerID,
				Role:              spec.Role,
				BudgetShare:       spec.BudgetShare,
				ResponsibleUserID: spec.ResponsibleUserID,
			}
			assignment.SetContainerRef(ref)
			if err := tx.Create(&assignment).Error; err != nil {
				return err
			}
			created = append(created, assignment)
		}
		return nil
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to replace partner assignments"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"assignments": created,
	})
}
