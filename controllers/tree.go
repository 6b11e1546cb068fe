package controllers

import (
	"net/http"

	"consortium-planner-api/config"
	"consortium-planner-api/models"
	"consortium-planner-api/services"

	"github.com/gin-gonic/gin"
)

// containerRefFromRequest resolves the :kind/:containerId path pair
// into a tagged container ref.
func containerRefFromRequest(c *gin.Context) (models.ContainerRef, bool) {
	kind := models.ContainerKind(c.Param("kind"))
	switch kind {
	case models.ContainerProject, models.ContainerSection, models.ContainerWork,
		models.ContainerTask, models.ContainerActivity, models.ContainerModule:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown container kind"})
		return models.ContainerRef{}, false
	}
	id, ok := parseID(c, "containerId")
	if !ok {
		return models.ContainerRef{}, false
	}
	return models.ContainerRef{Kind: kind, ID: id}, true
}

// containerColumn maps a sub-project container kind to its foreign key
// column on assignment-style tables.
func containerColumn(kind models.ContainerKind) (string, bool) {
	switch kind {
	case models.ContainerSection:
		return "section_id", true
	case models.ContainerWork:
		return "work_id", true
	case models.ContainerTask:
		return "task_id", true
	case models.ContainerActivity:
		return "activity_id", true
	}
	return "", false
}

type nodeRequest struct {
	Title         string   `json:"title" binding:"required"`
	StartDate     *string  `json:"start_date"`
	EndDate       *string  `json:"end_date"`
	Budget        *float64 `json:"budget"`
	LeadPartnerID *uint    `json:"lead_partner_id"`
}

func (r *nodeRequest) attrs(c *gin.Context) (services.NodeAttrs, bool) {
	attrs := services.NodeAttrs{
		Title:         r.Title,
		Budget:        r.Budget,
		LeadPartnerID: r.LeadPartnerID,
	}
	var bad bool
	attrs.StartDate, bad = parseOptionalDate(c, r.StartDate)
	if bad {
		return attrs, false
	}
	attrs.EndDate, bad = parseOptionalDate(c, r.EndDate)
	if bad {
		return attrs, false
	}
	return attrs, true
}

// CreateSection creates a section under a project.
func CreateSection(c *gin.Context) {
	projectID, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req nodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	attrs, ok := req.attrs(c)
	if !ok {
		return
	}

	section, err := services.NewTreeService(config.DB).CreateSection(projectID, attrs)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "section": section})
}

// CreateWork creates a work package under a section, or directly under
// a project that has no sections.
func CreateWork(c *gin.Context) {
	type workRequest struct {
		nodeRequest
		ProjectID *uint `json:"project_id"`
		SectionID *uint `json:"section_id"`
	}
	var req workRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	parent, ok := models.RefFromColumns(req.ProjectID, req.SectionID, nil, nil, nil, nil)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Exactly one of project_id and section_id is required"})
		return
	}
	attrs, ok := req.attrs(c)
	if !ok {
		return
	}

	work, err := services.NewTreeService(config.DB).CreateWork(parent, attrs)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "work": work})
}

// CreateTask creates a task under a work package.
func CreateTask(c *gin.Context) {
	workID, ok := parseID(c, "workId")
	if !ok {
		return
	}
	var req nodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	attrs, ok := req.attrs(c)
	if !ok {
		return
	}

	task, err := services.NewTreeService(config.DB).CreateTask(workID, attrs)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "task": task})
}

// CreateActivity creates an activity under a task.
func CreateActivity(c *gin.Context) {
	taskID, ok := parseID(c, "taskId")
	if !ok {
		return
	}
	var req nodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	attrs, ok := req.attrs(c)
	if !ok {
		return
	}

	activity, err := services.NewTreeService(config.DB).CreateActivity(taskID, attrs)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "activity": activity})
}

// MoveNode moves a node one position up or down among its siblings.
// Boundary moves change nothing and report success=false.
func MoveNode(c *gin.Context) {
	ref, ok := containerRefFromRequest(c)
	if !ok {
		return
	}
	type request struct {
		Direction string `json:"direction" binding:"required"`
	}
	var req request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	moved, err := services.NewTreeService(config.DB).MoveNode(ref.Kind, ref.ID, req.Direction)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if !moved {
		c.JSON(http.StatusOK, gin.H{"success": false, "message": "Node is already at the boundary"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ReorderNodes applies an explicit order to one sibling set.
func ReorderNodes(c *gin.Context) {
	type request struct {
		Kind     models.ContainerKind `json:"kind" binding:"required"`
		Parent   struct {
			Kind models.ContainerKind `json:"kind" binding:"required"`
			ID   uint                 `json:"id" binding:"required"`
		} `json:"parent" binding:"required"`
		Siblings []services.NodeOrder `json:"siblings" binding:"required"`
	}
	var req request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	parent := models.ContainerRef{Kind: req.Parent.Kind, ID: req.Parent.ID}
	if err := services.NewTreeService(config.DB).Reorder(req.Kind, parent, req.Siblings); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// UpdateNode patches a node's own attributes. Absent fields keep their
// stored values.
func UpdateNode(c *gin.Context) {
	ref, ok := containerRefFromRequest(c)
	if !ok {
		return
	}
	type request struct {
		Title         *string  `json:"title"`
		StartDate     *string  `json:"start_date"`
		EndDate       *string  `json:"end_date"`
		Budget        *float64 `json:"budget"`
		LeadPartnerID *uint    `json:"lead_partner_id"`
		ClearDates    bool     `json:"clear_dates"`
	}
	var req request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	patch := services.NodeUpdate{
		Title:         req.Title,
		Budget:        req.Budget,
		LeadPartnerID: req.LeadPartnerID,
		ClearDates:    req.ClearDates,
	}
	var bad bool
	patch.StartDate, bad = parseOptionalDate(c, req.StartDate)
	if bad {
		return
	}
	patch.EndDate, bad = parseOptionalDate(c, req.EndDate)
	if bad {
		return
	}

	if err := services.NewTreeService(config.DB).UpdateNode(ref.Kind, ref.ID, patch); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// DeleteNode removes a node and its whole subtree.
func DeleteNode(c *gin.Context) {
	ref, ok := containerRefFromRequest(c)
	if !ok {
		return
	}
	if err := services.NewTreeService(config.DB).DeleteNode(ref.Kind, ref.ID); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Node deleted"})
}
