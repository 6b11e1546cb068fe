package controllers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"consortium-planner-api/services"

	"github.com/gin-gonic/gin"
)

// currentActor builds the explicit caller context from what the auth
// middleware stored. Engine calls never read ambient state.
func currentActor(c *gin.Context) services.Actor {
	actor := services.Actor{}
	if userID, exists := c.Get("userID"); exists {
		actor.UserID = userID.(uint)
	}
	if isManager, exists := c.Get("isManager"); exists {
		actor.IsManager = isManager.(bool)
	}
	return actor
}

// ensureManager aborts with 403 unless the caller is a manager.
func ensureManager(c *gin.Context) bool {
	if !currentActor(c).IsManager {
		c.JSON(http.StatusForbidden, gin.H{"error": "Manager access required"})
		return false
	}
	return true
}

// parseID reads a positive uint path parameter.
func parseID(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return 0, false
	}
	return uint(id), true
}

// respondServiceError maps the engine's error taxonomy to responses.
// Business-rule failures come back as structured 4xx payloads;
// everything else is logged and reported generically.
func respondServiceError(c *gin.Context, err error) {
	var orphan *services.OrphanNodeError
	if errors.As(err, &orphan) {
		log.Printf("Data corruption: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Internal data inconsistency"})
		return
	}
	if !services.IsBusinessError(err) {
		log.Printf("Internal error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Internal server error"})
		return
	}

	var validation *services.ValidationError
	var notFound *services.NotFoundError
	var transition *services.InvalidTransitionError
	var unauthorized *services.UnauthorizedError
	switch {
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": validation.Error()})
	case errors.As(err, &notFound):
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": notFound.Error()})
	case errors.As(err, &transition):
		c.JSON(http.StatusConflict, gin.H{"success": false, "error": transition.Error()})
	case errors.As(err, &unauthorized):
		c.JSON(http.StatusForbidden, gin.H{"success": false, "error": unauthorized.Error()})
	}
}
