package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/site19/containment-backend/internal/apperr"
	"github.com/site19/containment-backend/internal/logger"
	"github.com/site19/containment-backend/internal/services"
)

type ChamberHandler struct {
	log            *logger.Logger
	chamberService services.ChamberService
}

func NewChamberHandler(log *logger.Logger, chamberService services.ChamberService) *ChamberHandler {
	return &ChamberHandler{log: log.With("handler", "ChamberHandler"), chamberService: chamberService}
}

func parseIDParam(c *gin.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, apperr.Validation("malformed id")
	}
	return id, nil
}

func (ch *ChamberHandler) List(c *gin.Context) {
	chambers, err := ch.chamberService.List(c.Request.Context())
	if err != nil {
		RespondError(c, ch.log, err)
		return
	}
	RespondOK(c, gin.H{"chambers": chambers})
}

func (ch *ChamberHandler) ListAvailable(c *gin.Context) {
	chambers, err := ch.chamberService.ListAvailable(c.Request.Context())
	if err != nil {
		RespondError(c, ch.log, err)
		return
	}
	RespondOK(c, gin.H{"chambers": chambers})
}

func (ch *ChamberHandler) Get(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		RespondError(c, ch.log, err)
		return
	}
	details, err := ch.chamberService.Get(c.Request.Context(), id)
	if err != nil {
		RespondError(c, ch.log, err)
		return
	}
	RespondOK(c, details)
}

func (ch *ChamberHandler) Create(c *gin.Context) {
	var in services.ChamberInput
	if err := c.ShouldBindJSON(&in); err != nil {
		RespondError(c, ch.log, apperr.Validation("invalid request body"))
		return
	}
	chamber, err := ch.chamberService.Create(c.Request.Context(), in)
	if err != nil {
		RespondError(c, ch.log, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message": "Chamber created successfully.",
		"chamber": chamber,
	})
}

func (ch *ChamberHandler) Update(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		RespondError(c, ch.log, err)
		return
	}
	var in services.ChamberInput
	if err := c.ShouldBindJSON(&in); err != nil {
		RespondError(c, ch.log, apperr.Validation("invalid request body"))
		return
	}
	chamber, err := ch.chamberService.Update(c.Request.Context(), id, in)
	if err != nil {
		RespondError(c, ch.log, err)
		return
	}
	RespondOK(c, gin.H{
		"message": "Chamber updated successfully.",
		"chamber": chamber,
	})
}

func (ch *ChamberHandler) Delete(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		RespondError(c, ch.log, err)
		return
	}
	if err := ch.chamberService.Delete(c.Request.Context(), id); err != nil {
		RespondError(c, ch.log, err)
		return
	}
	RespondOK(c, gin.H{"message": "Chamber deleted successfully."})
}
