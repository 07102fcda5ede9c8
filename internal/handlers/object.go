package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/site19/containment-backend/internal/apperr"
	"github.com/site19/containment-backend/internal/logger"
	"github.com/site19/containment-backend/internal/services"
)

type ObjectHandler struct {
	log            *logger.Logger
	objectService  services.ObjectService
	chamberService services.ChamberService
}

func NewObjectHandler(log *logger.Logger, objectService services.ObjectService, chamberService services.ChamberService) *ObjectHandler {
	return &ObjectHandler{
		log:            log.With("handler", "ObjectHandler"),
		objectService:  objectService,
		chamberService: chamberService,
	}
}

func (oh *ObjectHandler) List(c *gin.Context) {
	objects, err := oh.objectService.List(c.Request.Context())
	if err != nil {
		RespondError(c, oh.log, err)
		return
	}
	RespondOK(c, gin.H{"objects": objects})
}

func (oh *ObjectHandler) Get(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		RespondError(c, oh.log, err)
		return
	}
	object, err := oh.objectService.Get(c.Request.Context(), id)
	if err != nil {
		RespondError(c, oh.log, err)
		return
	}
	RespondOK(c, object)
}

func (oh *ObjectHandler) Create(c *gin.Context) {
	var in services.ObjectInput
	if err := c.ShouldBindJSON(&in); err != nil {
		RespondError(c, oh.log, apperr.Validation("invalid request body"))
		return
	}
	object, err := oh.objectService.Create(c.Request.Context(), in)
	if err != nil {
		oh.respondMutationError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message": "Object registered successfully.",
		"object":  object,
	})
}

func (oh *ObjectHandler) Update(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		RespondError(c, oh.log, err)
		return
	}
	var in services.ObjectInput
	if err := c.ShouldBindJSON(&in); err != nil {
		RespondError(c, oh.log, apperr.Validation("invalid request body"))
		return
	}
	object, err := oh.objectService.Edit(c.Request.Context(), id, in)
	if err != nil {
		oh.respondMutationError(c, err)
		return
	}
	RespondOK(c, gin.H{
		"message": "Object updated successfully.",
		"object":  object,
	})
}

func (oh *ObjectHandler) Delete(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		RespondError(c, oh.log, err)
		return
	}
	if err := oh.objectService.Delete(c.Request.Context(), id); err != nil {
		RespondError(c, oh.log, err)
		return
	}
	RespondOK(c, gin.H{"message": "Object deleted successfully."})
}

// respondMutationError adds the retry affordance on Overfull: alongside the
// structured error the caller gets the chambers that still have room, so the
// form can be re-rendered without another round trip.
func (oh *ObjectHandler) respondMutationError(c *gin.Context, err error) {
	appErr := apperr.From(err)
	if appErr == nil || appErr.Code != apperr.CodeOverfull {
		RespondError(c, oh.log, err)
		return
	}
	available, listErr := oh.chamberService.ListAvailable(c.Request.Context())
	if listErr != nil {
		oh.log.Warn("Could not list available chambers for overfull response", "error", listErr)
		RespondError(c, oh.log, err)
		return
	}
	c.JSON(appErr.Status, gin.H{
		"error":              APIError{Message: appErr.Error(), Code: appErr.Code},
		"available_chambers": available,
	})
}
