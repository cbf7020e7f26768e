package handlers

import (
	"net/http"
	"strings"

	"marketplace-backend/apperrors"
	"marketplace-backend/audit"
	"marketplace-backend/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// OwnerProfileHandler lets a store owner register the business profile
// their stores hang off.
type OwnerProfileHandler struct {
	DB    *gorm.DB
	Audit audit.Recorder
}

func (h *OwnerProfileHandler) CreateProfile(c *gin.Context) {
	var req struct {
		BusinessName string `json:"businessName" binding:"required,min=1,max=200"`
		TaxID        string `json:"taxId" binding:"max=50"`
	}
	if !bindJSON(c, &req) {
		return
	}

	actor, err := currentActor(c, h.DB)
	if err != nil {
		respondError(c, err)
		return
	}
	if actor.OwnerProfileID != nil {
		respondError(c, apperrors.Conflict(0, "Store owner profile already exists"))
		return
	}

	profile := models.StoreOwnerProfile{
		UserID:       actor.UserID,
		BusinessName: strings.TrimSpace(req.BusinessName),
		TaxID:        strings.TrimSpace(req.TaxID),
	}
	if err := h.DB.WithContext(c.Request.Context()).Create(&profile).Error; err != nil {
		respondError(c, err)
		return
	}

	emit(c, h.Audit, actor, audit.ActionCreate, "StoreOwnerProfile", profile.ID, nil, profile)

	c.JSON(http.StatusCreated, profile)
}

func (h *OwnerProfileHandler) GetProfile(c *gin.Context) {
	actor, err := currentActor(c, h.DB)
	if err != nil {
		respondError(c, err)
		return
	}
	if actor.OwnerProfileID == nil {
		respondError(c, apperrors.NotFound("Store owner profile"))
		return
	}

	var profile models.StoreOwnerProfile
	err = first(h.DB.WithContext(c.Request.Context()).Preload("Stores"), &profile, "Store owner profile", "id = ?", *actor.OwnerProfileID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}
