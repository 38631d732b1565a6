package handlers

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jhruby/digplan/internal/middleware"
	"github.com/jhruby/digplan/internal/models"
	"github.com/jhruby/digplan/internal/services"
)

type ProjectHandler struct {
	projectService   *services.ProjectService
	workflowService  *services.WorkflowService
	detectionService *services.ConflictDetectionService
	detectionTimeout time.Duration
}

func NewProjectHandler(projectService *services.ProjectService, workflowService *services.WorkflowService,
	detectionService *services.ConflictDetectionService, detectionTimeout time.Duration) *ProjectHandler {
	return &ProjectHandler{
		projectService:   projectService,
		workflowService:  workflowService,
		detectionService: detectionService,
		detectionTimeout: detectionTimeout,
	}
}

type projectRequest struct {
	Name      string          `json:"name" binding:"required"`
	Geometry  models.Geometry `json:"geometry" binding:"required"`
	StartDate string          `json:"start_date" binding:"required"`
	EndDate   string          `json:"end_date" binding:"required"`
}

func (r *projectRequest) interval() (models.DateInterval, error) {
	start, err := time.Parse("2006-01-02", r.StartDate)
	if err != nil {
		return models.DateInterval{}, &models.ValidationError{Field: "start_date", Message: "Dates must be in YYYY-MM-DD format"}
	}
	end, err := time.Parse("2006-01-02", r.EndDate)
	if err != nil {
		return models.DateInterval{}, &models.ValidationError{Field: "end_date", Message: "Dates must be in YYYY-MM-DD format"}
	}
	return models.NewDateInterval(start, end)
}

// CreateProject handles draft project registration
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	var req projectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	interval, err := req.interval()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	applicantID, err := uuid.Parse(middleware.GetActorID(c))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "actor identity required"})
		return
	}

	project := models.NewProject(req.Name, applicantID, req.Geometry, interval)
	if err := h.projectService.CreateProject(project); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, project)
}

// GetProject returns a single project
func (h *ProjectHandler) GetProject(c *gin.Context) {
	project, err := h.projectService.GetProjectByID(c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, project)
}

// ListProjects returns the acting applicant's projects
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	projects, err := h.projectService.GetProjectsByApplicantID(middleware.GetActorID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"projects": projects})
}

// UpdateProject edits a draft project
func (h *ProjectHandler) UpdateProject(c *gin.Context) {
	var req projectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	interval, err := req.interval()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project ID format"})
		return
	}

	project := &models.Project{
		ID:       id,
		Name:     req.Name,
		Geometry: req.Geometry,
		Interval: interval,
	}

	if err := h.projectService.UpdateProject(project, middleware.GetActorID(c)); err != nil {
		respondServiceError(c, err)
		return
	}

	updated, err := h.projectService.GetProjectByID(id.String())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, updated)
}

// DeleteProject removes a draft project
func (h *ProjectHandler) DeleteProject(c *gin.Context) {
	if err := h.projectService.DeleteProject(c.Param("id"), middleware.GetActorID(c)); err != nil {
		respondServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// SubmitProject moves a project to pending_approval, which runs
// conflict detection synchronously
func (h *ProjectHandler) SubmitProject(c *gin.Context) {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	project, err := h.workflowService.RequestTransition(ctx, c.Param("id"), models.StatePendingApproval, middleware.GetActorID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, project)
}

type transitionRequest struct {
	To models.ProjectState `json:"to" binding:"required"`
}

// TransitionProject executes any workflow transition
func (h *ProjectHandler) TransitionProject(c *gin.Context) {
	var req transitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !req.To.IsValid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown target state"})
		return
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	project, err := h.workflowService.RequestTransition(ctx, c.Param("id"), req.To, middleware.GetActorID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, project)
}

// CheckConflicts runs an on-demand detection for a project without
// persisting anything
func (h *ProjectHandler) CheckConflicts(c *gin.Context) {
	project, err := h.projectService.GetProjectByID(c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	result, err := h.detectionService.DetectConflicts(ctx, project.Geometry, project.Interval, project.ID.String())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *ProjectHandler) requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), h.detectionTimeout)
}

// respondServiceError maps domain errors to HTTP responses
func respondServiceError(c *gin.Context, err error) {
	var invalidTransition *models.InvalidTransitionError
	var validation *models.ValidationError
	var detectionFailed *models.ConflictDetectionFailedError

	switch {
	case errors.Is(err, sql.ErrNoRows):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.As(err, &invalidTransition):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.As(err, &validation), errors.Is(err, models.ErrInvalidGeometry):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrDetectionTimeout):
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": err.Error()})
	case errors.As(err, &detectionFailed):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "conflict verification unavailable, submission not accepted"})
	case errors.Is(err, services.ErrNotProjectOwner), errors.Is(err, services.ErrNotMoratoriumCreator):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrProjectNotDraft), errors.Is(err, services.ErrProjectNotEditable):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
