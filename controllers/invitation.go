package controllers

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"consortium-planner-api/config"
	"consortium-planner-api/models"
	"consortium-planner-api/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func invitationExpiry() time.Duration {
	hours, _ := strconv.Atoi(os.Getenv("INVITATION_EXPIRE_HOURS"))
	if hours <= 0 {
		hours = 168 // one week
	}
	return time.Duration(hours) * time.Hour
}

// GetInvitations lists a project's pending and accepted invitations.
func GetInvitations(c *gin.Context) {
	projectID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var invitations []models.Invitation
	if err := config.DB.Where("project_id = ?", projectID).
		Order("created_at DESC").Find(&invitations).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch invitations"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"invitations": invitations,
		"total":       len(invitations),
	})
}

// CreateInvitation issues a token-addressed invitation to join a
// project and mails it to the invitee. Mail failure does not roll the
// invitation back; the token can be re-sent.
func CreateInvitation(c *gin.Context) {
	projectID, ok := parseID(c, "id")
	if !ok {
		return
	}

	type request struct {
		Email     string   `json:"email" binding:"required"`
		PartnerID *uint    `json:"partner_id"`
		Roles     []string `json:"roles"`
	}
	var req request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !utils.ValidateEmail(req.Email) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid email format"})
		return
	}

	var project models.Project
	if err := config.DB.First(&project, "project_id = ?", projectID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
		return
	}
	if req.PartnerID != nil {
		var partner models.Partner
		err := config.DB.Where("partner_id = ? AND project_id = ?", *req.PartnerID, projectID).
			First(&partner).Error
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Partner does not belong to this project"})
			return
		}
	}

	roles := req.Roles
	if roles == nil {
		roles = []string{}
	}
	rolesJSON, err := json.Marshal(roles)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to encode roles"})
		return
	}

	invitation := models.Invitation{
		ProjectID: projectID,
		Email:     req.Email,
		PartnerID: req.PartnerID,
		Roles:     string(rolesJSON),
		Token:     uuid.New().String(),
		ExpiresAt: time.Now().Add(invitationExpiry()),
		CreatedBy: currentActor(c).UserID,
	}
	if err := config.DB.Create(&invitation).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create invitation"})
		return
	}

	frontendURL := os.Getenv("FRONTEND_URL")
	if frontendURL == "" {
		frontendURL = "http://localhost:3000"
	}
	link := fmt.Sprintf("%s/invitations/accept?token=%s", frontendURL, invitation.Token)
	body := fmt.Sprintf(`
		<p>You have been invited to join the project <b>%s</b>.</p>
		<p><a href="%s">Accept the invitation</a></p>
		<p>The link expires on %s.</p>`,
		project.Title, link, invitation.ExpiresAt.Format("2006-01-02 15:04"))
	if err := config.SendMail([]string{req.Email}, "Project invitation: "+project.Title, body); err != nil {
		log.Printf("Warning: invitation mail to %s failed: %v", req.Email, err)
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "invitation": invitation})
}

// RevokeInvitation deletes a pending invitation.
func RevokeInvitation(c *gin.Context) {
	projectID, ok := parseID(c, "id")
	if !ok {
		return
	}
	invitationID, ok := parseID(c, "invitationId")
	if !ok {
		return
	}

	result := config.DB.Where("invitation_id = ? AND project_id = ? AND accepted_at IS NULL",
		invitationID, projectID).Delete(&models.Invitation{})
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to revoke invitation"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Invitation not found or already accepted"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Invitation revoked"})
}

// AcceptInvitation redeems a token for an existing account whose email
// matches the invitation, creating the project membership. Public
// endpoint; single use.
func AcceptInvitation(c *gin.Context) {
	type request struct {
		Token string `json:"token" binding:"required"`
	}
	var req request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var invitation models.Invitation
	if err := config.DB.Where("token = ?", req.Token).First(&invitation).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Invitation not found"})
		return
	}
	if invitation.AcceptedAt != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Invitation already accepted"})
		return
	}
	if invitation.IsExpired() {
		c.JSON(http.StatusGone, gin.H{"error": "Invitation has expired"})
		return
	}

	var user models.User
	if err := config.DB.Where("email = ? AND delete_at IS NULL", invitation.Email).First(&user).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No account exists for the invited email"})
		return
	}

	var existing models.ProjectMember
	err := config.DB.Where("project_id = ? AND user_id = ?", invitation.ProjectID, user.UserID).
		First(&existing).Error
	if err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "User is already a member of this project"})
		return
	}
	if err != gorm.ErrRecordNotFound {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to accept invitation"})
		return
	}

	// Membership and single-use marking commit together.
	err = config.DB.Transaction(func(tx *gorm.DB) error {
		member := models.ProjectMember{
			ProjectID: invitation.ProjectID,
			UserID:    user.UserID,
			PartnerID: invitation.PartnerID,
			Roles:     invitation.Roles,
		}
		if err := tx.Create(&member).Error; err != nil {
			return err
		}
		now := time.Now()
		invitation.AcceptedAt = &now
		return tx.Save(&invitation).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to accept invitation"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"project_id": invitation.ProjectID,
		"message":    "Invitation accepted",
	})
}
