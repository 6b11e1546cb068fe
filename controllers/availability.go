package controllers

import (
	"net/http"
	"strconv"
	"time"

	"consortium-planner-api/config"
	"consortium-planner-api/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func parseYear(c *gin.Context) (int, bool) {
	year, err := strconv.Atoi(c.Param("year"))
	if err != nil || year < 2000 || year > 2100 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid year"})
		return 0, false
	}
	return year, true
}

// GetAvailability returns the per-month capacity of a user for a year.
// A missing record reads as twelve zero months.
func GetAvailability(c *gin.Context) {
	userID, ok := parseID(c, "userId")
	if !ok {
		return
	}
	year, ok := parseYear(c)
	if !ok {
		return
	}

	var availability models.UserAvailability
	err := config.DB.Where("user_id = ? AND year = ?", userID, year).First(&availability).Error
	if err == gorm.ErrRecordNotFound {
		c.JSON(http.StatusOK, gin.H{
			"success":    true,
			"user_id":    userID,
			"year":       year,
			"capacities": [12]int{},
			"declared":   false,
		})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch availability"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"user_id":    userID,
		"year":       year,
		"capacities": availability.CapacityList(),
		"declared":   true,
	})
}

// SetAvailability upserts the per-month capacity of a user for a year.
// Users declare their own; managers may declare for anyone.
func SetAvailability(c *gin.Context) {
	userID, ok := parseID(c, "userId")
	if !ok {
		return
	}
	year, ok := parseYear(c)
	if !ok {
		return
	}

	actor := currentActor(c)
	if userID != actor.UserID && !actor.IsManager {
		c.JSON(http.StatusForbidden, gin.H{"error": "You can only declare your own availability"})
		return
	}

	type request struct {
		Capacities [12]int `json:"capacities" binding:"required"`
	}
	var req request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	for _, days := range req.Capacities {
		if days < 0 || days > 31 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Monthly capacity must be between 0 and 31 days"})
			return
		}
	}

	var availability models.UserAvailability
	err := config.DB.Where("user_id = ? AND year = ?", userID, year).First(&availability).Error
	if err != nil && err != gorm.ErrRecordNotFound {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch availability"})
		return
	}
	availability.UserID = userID
	availability.Year = year
	if encodeErr := availability.SetCapacities(req.Capacities); encodeErr != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to encode capacities"})
		return
	}

	if err == gorm.ErrRecordNotFound {
		if err := config.DB.Create(&availability).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save availability"})
			return
		}
	} else {
		now := time.Now()
		availability.UpdateAt = &now
		if err := config.DB.Save(&availability).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save availability"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"user_id":    userID,
		"year":       year,
		"capacities": req.Capacities,
	})
}
