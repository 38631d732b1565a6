package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jhruby/digplan/internal/middleware"
	"github.com/jhruby/digplan/internal/models"
	"github.com/jhruby/digplan/internal/services"
)

type MoratoriumHandler struct {
	moratoriumService *services.MoratoriumService
}

func NewMoratoriumHandler(moratoriumService *services.MoratoriumService) *MoratoriumHandler {
	return &MoratoriumHandler{
		moratoriumService: moratoriumService,
	}
}

type moratoriumRequest struct {
	MunicipalityCode string          `json:"municipality_code" binding:"required"`
	Geometry         models.Geometry `json:"geometry" binding:"required"`
	ValidFrom        string          `json:"valid_from" binding:"required"`
	ValidTo          string          `json:"valid_to" binding:"required"`
	Reason           string          `json:"reason" binding:"required"`
	Exceptions       *string         `json:"exceptions"`
}

// CreateMoratorium registers a new moratorium and triggers a re-check
// of the active projects it touches
func (h *MoratoriumHandler) CreateMoratorium(c *gin.Context) {
	var req moratoriumRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	validFrom, err := time.Parse("2006-01-02", req.ValidFrom)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "dates must be in YYYY-MM-DD format"})
		return
	}
	validTo, err := time.Parse("2006-01-02", req.ValidTo)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "dates must be in YYYY-MM-DD format"})
		return
	}

	validity, err := models.NewDateInterval(validFrom, validTo)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	createdBy, err := uuid.Parse(middleware.GetActorID(c))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "actor identity required"})
		return
	}

	moratorium := models.NewMoratorium(req.MunicipalityCode, createdBy, req.Geometry, validity, req.Reason)
	moratorium.Exceptions = req.Exceptions

	if err := h.moratoriumService.CreateMoratorium(moratorium); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, moratorium)
}

// GetMoratorium returns a single moratorium
func (h *MoratoriumHandler) GetMoratorium(c *gin.Context) {
	moratorium, err := h.moratoriumService.GetMoratoriumByID(c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, moratorium)
}

// DeleteMoratorium removes a moratorium (creator only)
func (h *MoratoriumHandler) DeleteMoratorium(c *gin.Context) {
	if err := h.moratoriumService.DeleteMoratorium(c.Param("id"), middleware.GetActorID(c)); err != nil {
		respondServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
