package handlers

import (
	"net/http"
	"strings"

	"marketplace-backend/apperrors"
	"marketplace-backend/audit"
	"marketplace-backend/authz"
	"marketplace-backend/models"
	"marketplace-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type StaffHandler struct {
	DB    *gorm.DB
	Audit audit.Recorder
}

func staffSnapshot(s models.StoreStaff) models.StoreStaff {
	s.Store = nil
	return s
}

// loadStaff loads a staff row together with its store.
func loadStaff(db *gorm.DB, id uuid.UUID) (*models.StoreStaff, error) {
	var staff models.StoreStaff
	if err := first(db.Preload("Store"), &staff, "Staff member", "id = ?", id); err != nil {
		return nil, err
	}
	if staff.Store == nil {
		return nil, apperrors.NotFound("Store")
	}
	return &staff, nil
}

func (h *StaffHandler) CreateStaff(c *gin.Context) {
	var req struct {
		StoreID  string `json:"storeId" binding:"required,uuid"`
		UserID   string `json:"userId" binding:"omitempty,uuid"`
		Name     string `json:"name" binding:"required,min=2,max=100"`
		Email    string `json:"email" binding:"omitempty,email"`
		Phone    string `json:"phone" binding:"max=30"`
		Role     string `json:"role" binding:"required,oneof=MANAGER CASHIER INVENTORY DELIVERY"`
		IsActive *bool  `json:"isActive"`
	}
	if !bindJSON(c, &req) {
		return
	}

	actor, err := currentActor(c, h.DB)
	if err != nil {
		respondError(c, err)
		return
	}

	db := h.DB.WithContext(c.Request.Context())
	store, err := loadStore(db, uuid.MustParse(req.StoreID))
	if err != nil {
		respondError(c, err)
		return
	}
	if err := authz.Authorize(actor, authz.ActionCreate, store); err != nil {
		respondError(c, err)
		return
	}

	staff := models.StoreStaff{
		StoreID:  store.ID,
		Name:     strings.TrimSpace(req.Name),
		Email:    req.Email,
		Phone:    req.Phone,
		Role:     models.StaffRole(req.Role),
		IsActive: true,
	}
	if req.IsActive != nil {
		staff.IsActive = *req.IsActive
	}
	if req.UserID != "" {
		userID := uuid.MustParse(req.UserID)
		var user models.User
		if err := first(db, &user, "User", "id = ?", userID); err != nil {
			respondError(c, err)
			return
		}
		staff.UserID = &userID
	}

	if err := db.Create(&staff).Error; err != nil {
		respondError(c, err)
		return
	}

	emit(c, h.Audit, actor, audit.ActionCreate, "StoreStaff", staff.ID, nil, staffSnapshot(staff))

	if staff.Email != "" {
		utils.SendStaffAddedEmail(staff.Email, staff.Name, store.Name, string(staff.Role))
	}

	c.JSON(http.StatusCreated, staff)
}

func (h *StaffHandler) ListStaff(c *gin.Context) {
	actor, err := currentActor(c, h.DB)
	if err != nil {
		respondError(c, err)
		return
	}

	storeID, err := parseOptionalUUID("storeId", c.Query("storeId"))
	if err != nil {
		respondError(c, err)
		return
	}
	isActive, err := queryBool(c, "isActive")
	if err != nil {
		respondError(c, err)
		return
	}

	query := h.DB.WithContext(c.Request.Context()).Model(&models.StoreStaff{}).
		Scopes(authz.ScopeStoreChildren(actor, "store_staff"))
	if storeID != nil {
		query = query.Where("store_staff.store_id = ?", *storeID)
	}
	if role := c.Query("role"); role != "" {
		query = query.Where("store_staff.role = ?", strings.ToUpper(role))
	}
	if isActive != nil {
		query = query.Where("store_staff.is_active = ?", *isActive)
	}

	staff := []models.StoreStaff{}
	if err := query.Order("store_staff.name").Find(&staff).Error; err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, staff)
}

func (h *StaffHandler) GetStaff(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	actor, err := currentActor(c, h.DB)
	if err != nil {
		respondError(c, err)
		return
	}

	staff, err := loadStaff(h.DB.WithContext(c.Request.Context()), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := authz.Authorize(actor, authz.ActionRead, staff.Store); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, staff)
}

func (h *StaffHandler) UpdateStaff(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req struct {
		Name     *string `json:"name" binding:"omitempty,min=2,max=100"`
		Email    *string `json:"email" binding:"omitempty,email"`
		Phone    *string `json:"phone" binding:"omitempty,max=30"`
		Role     *string `json:"role" binding:"omitempty,oneof=MANAGER CASHIER INVENTORY DELIVERY"`
		IsActive *bool   `json:"isActive"`
	}
	if !bindJSON(c, &req) {
		return
	}

	actor, err := currentActor(c, h.DB)
	if err != nil {
		respondError(c, err)
		return
	}

	db := h.DB.WithContext(c.Request.Context())
	staff, err := loadStaff(db, id)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := authz.Authorize(actor, authz.ActionUpdate, staff.Store); err != nil {
		respondError(c, err)
		return
	}

	before := staffSnapshot(*staff)

	if req.Name != nil {
		staff.Name = strings.TrimSpace(*req.Name)
	}
	if req.Email != nil {
		staff.Email = *req.Email
	}
	if req.Phone != nil {
		staff.Phone = *req.Phone
	}
	if req.Role != nil {
		staff.Role = models.StaffRole(*req.Role)
	}
	if req.IsActive != nil {
		staff.IsActive = *req.IsActive
	}

	after := staffSnapshot(*staff)
	if !sameSnapshot(before, after) {
		if err := db.Save(&after).Error; err != nil {
			respondError(c, err)
			return
		}
	}

	emit(c, h.Audit, actor, audit.ActionUpdate, "StoreStaff", after.ID, before, after)

	c.JSON(http.StatusOK, after)
}

func (h *StaffHandler) DeleteStaff(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	actor, err := currentActor(c, h.DB)
	if err != nil {
		respondError(c, err)
		return
	}

	db := h.DB.WithContext(c.Request.Context())
	staff, err := loadStaff(db, id)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := authz.Authorize(actor, authz.ActionDelete, staff.Store); err != nil {
		respondError(c, err)
		return
	}

	if err := db.Delete(&models.StoreStaff{}, "id = ?", staff.ID).Error; err != nil {
		respondError(c, err)
		return
	}

	emit(c, h.Audit, actor, audit.ActionDelete, "StoreStaff", staff.ID, staffSnapshot(*staff), nil)

	c.JSON(http.StatusOK, gin.H{"message": "Staff member deleted successfully"})
}
