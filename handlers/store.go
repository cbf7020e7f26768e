package handlers

import (
	"net/http"
	"strings"

	"marketplace-backend/apperrors"
	"marketplace-backend/audit"
	"marketplace-backend/authz"
	"marketplace-backend/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type StoreHandler struct {
	DB    *gorm.DB
	Audit audit.Recorder
}

// storeSnapshot strips associations so audit values hold only the row.
func storeSnapshot(s models.Store) models.Store {
	s.Location = nil
	s.Owner = nil
	s.Products = nil
	s.Staff = nil
	s.BusinessHours = nil
	return s
}

func (h *StoreHandler) CreateStore(c *gin.Context) {
	var req struct {
		Name           string         `json:"name" binding:"required,min=2,max=100"`
		Description    string         `json:"description" binding:"max=1000"`
		Type           string         `json:"type" binding:"required,oneof=RESTAURANT GROCERY PHARMACY RETAIL OTHER"`
		LocationID     string         `json:"locationId" binding:"omitempty,uuid"`
		Location       *locationInput `json:"location"`
		Phone          string         `json:"phone" binding:"max=30"`
		Email          string         `json:"email" binding:"omitempty,email"`
		OperatingHours string         `json:"operatingHours"`
		IsActive       *bool          `json:"isActive"`
		OwnerID        string         `json:"ownerId" binding:"omitempty,uuid"`
	}
	if !bindJSON(c, &req) {
		return
	}
	if req.LocationID == "" && req.Location == nil {
		respondError(c, apperrors.Validation("locationId", "locationId or location is required"))
		return
	}

	actor, err := currentActor(c, h.DB)
	if err != nil {
		respondError(c, err)
		return
	}

	db := h.DB.WithContext(c.Request.Context())

	// Store owners always create for themselves; admins name the owner.
	var ownerID uuid.UUID
	switch {
	case actor.IsAdmin():
		if req.OwnerID == "" {
			respondError(c, apperrors.Validation("ownerId", "ownerId is required"))
			return
		}
		ownerID = uuid.MustParse(req.OwnerID)
		var profile models.StoreOwnerProfile
		if err := first(db, &profile, "Store owner profile", "id = ?", ownerID); err != nil {
			respondError(c, err)
			return
		}
	case actor.OwnerProfileID != nil:
		ownerID = *actor.OwnerProfileID
	}

	store := models.Store{
		Name:           strings.TrimSpace(req.Name),
		Description:    req.Description,
		Type:           models.StoreType(req.Type),
		Phone:          req.Phone,
		Email:          req.Email,
		OperatingHours: req.OperatingHours,
		IsActive:       true,
		OwnerID:        ownerID,
	}
	if req.IsActive != nil {
		store.IsActive = *req.IsActive
	}

	if err := authz.Authorize(actor, authz.ActionCreate, &store); err != nil {
		respondError(c, err)
		return
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		locationID, err := resolveLocation(tx, req.LocationID, req.Location)
		if err != nil {
			return err
		}
		store.LocationID = locationID
		return tx.Create(&store).Error
	})
	if err != nil {
		respondError(c, err)
		return
	}

	emit(c, h.Audit, actor, audit.ActionCreate, "Store", store.ID, nil, storeSnapshot(store))

	if err := db.Preload("Location").First(&store, "id = ?", store.ID).Error; err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, store)
}

func (h *StoreHandler) ListStores(c *gin.Context) {
	actor, err := currentActor(c, h.DB)
	if err != nil {
		respondError(c, err)
		return
	}

	isActive, err := queryBool(c, "isActive")
	if err != nil {
		respondError(c, err)
		return
	}

	p := paginate(c)
	query := h.DB.WithContext(c.Request.Context()).Model(&models.Store{}).Scopes(authz.ScopeStores(actor))

	if t := c.Query("type"); t != "" {
		query = query.Where("stores.type = ?", strings.ToUpper(t))
	}
	if isActive != nil {
		query = query.Where("stores.is_active = ?", *isActive)
	}
	if search := c.Query("search"); search != "" {
		like := "%" + search + "%"
		query = query.Where("LOWER(stores.name) LIKE LOWER(?) OR LOWER(stores.description) LIKE LOWER(?)", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		respondError(c, err)
		return
	}

	stores := []models.Store{}
	if err := query.Preload("Location").Order("stores.created_at DESC").Offset(p.Offset).Limit(p.Limit).Find(&stores).Error; err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, p.response("stores", stores, total))
}

func (h *StoreHandler) GetStore(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	actor, err := currentActor(c, h.DB)
	if err != nil {
		respondError(c, err)
		return
	}

	var store models.Store
	err = first(h.DB.WithContext(c.Request.Context()).
		Preload("Location").
		Preload("Staff").
		Preload("BusinessHours", func(db *gorm.DB) *gorm.DB { return db.Order("day_of_week") }),
		&store, "Store", "id = ?", id)
	if err != nil {
		respondError(c, err)
		return
	}

	if err := authz.Authorize(actor, authz.ActionRead, &store); err != nil {
		respondError(c, err)
		return
	}

	var productCount int64
	if err := h.DB.WithContext(c.Request.Context()).Model(&models.Product{}).Where("store_id = ?", store.ID).Count(&productCount).Error; err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"store":        store,
		"productCount": productCount,
	})
}

func (h *StoreHandler) UpdateStore(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req struct {
		Name           *string        `json:"name" binding:"omitempty,min=2,max=100"`
		Description    *string        `json:"description" binding:"omitempty,max=1000"`
		Type           *string        `json:"type" binding:"omitempty,oneof=RESTAURANT GROCERY PHARMACY RETAIL OTHER"`
		LocationID     *string        `json:"locationId" binding:"omitempty,uuid"`
		Location       *locationInput `json:"location"`
		Phone          *string        `json:"phone" binding:"omitempty,max=30"`
		Email          *string        `json:"email" binding:"omitempty,email"`
		OperatingHours *string        `json:"operatingHours"`
		IsActive       *bool          `json:"isActive"`
		OwnerID        *string        `json:"ownerId" binding:"omitempty,uuid"`
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
	store, err := loadStore(db, id)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := authz.Authorize(actor, authz.ActionUpdate, store); err != nil {
		respondError(c, err)
		return
	}

	before := storeSnapshot(*store)

	if req.Name != nil {
		store.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		store.Description = *req.Description
	}
	if req.Type != nil {
		store.Type = models.StoreType(*req.Type)
	}
	if req.Phone != nil {
		store.Phone = *req.Phone
	}
	if req.Email != nil {
		store.Email = *req.Email
	}
	if req.OperatingHours != nil {
		store.OperatingHours = *req.OperatingHours
	}
	if req.IsActive != nil {
		store.IsActive = *req.IsActive
	}
	if req.OwnerID != nil {
		ownerID := uuid.MustParse(*req.OwnerID)
		if ownerID != store.OwnerID {
			if !actor.IsAdmin() {
				respondError(c, apperrors.AccessDenied("only admins can transfer a store"))
				return
			}
			var profile models.StoreOwnerProfile
			if err := first(db, &profile, "Store owner profile", "id = ?", ownerID); err != nil {
				respondError(c, err)
				return
			}
			store.OwnerID = ownerID
		}
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if req.LocationID != nil || req.Location != nil {
			locationID := ""
			if req.LocationID != nil {
				locationID = *req.LocationID
			}
			newID, err := resolveLocation(tx, locationID, req.Location)
			if err != nil {
				return err
			}
			store.LocationID = newID
		}
		if sameSnapshot(before, storeSnapshot(*store)) {
			return nil
		}
		return tx.Save(store).Error
	})
	if err != nil {
		respondError(c, err)
		return
	}

	emit(c, h.Audit, actor, audit.ActionUpdate, "Store", store.ID, before, storeSnapshot(*store))

	if err := db.Preload("Location").First(store, "id = ?", store.ID).Error; err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, store)
}

// UpdateClosure marks a store temporarily closed or reopens it. Reopening
// always clears the closure reason.
func (h *StoreHandler) UpdateClosure(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req struct {
		IsTemporarilyClosed *bool   `json:"isTemporarilyClosed" binding:"required"`
		ClosureReason       *string `json:"closureReason" binding:"omitempty,max=500"`
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
	store, err := loadStore(db, id)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := authz.Authorize(actor, authz.ActionUpdate, store); err != nil {
		respondError(c, err)
		return
	}

	before := storeSnapshot(*store)

	store.IsTemporarilyClosed = *req.IsTemporarilyClosed
	store.ClosureReason = nil
	if store.IsTemporarilyClosed && req.ClosureReason != nil {
		if reason := strings.TrimSpace(*req.ClosureReason); reason != "" {
			store.ClosureReason = &reason
		}
	}

	if !sameSnapshot(before, storeSnapshot(*store)) {
		err := db.Model(store).Updates(map[string]interface{}{
			"is_temporarily_closed": store.IsTemporarilyClosed,
			"closure_reason":        store.ClosureReason,
		}).Error
		if err != nil {
			respondError(c, err)
			return
		}
	}

	emit(c, h.Audit, actor, audit.ActionUpdate, "Store", store.ID, before, storeSnapshot(*store))

	c.JSON(http.StatusOK, store)
}

// DeleteStore refuses while orders reference the store; otherwise it removes
// the store together with its business hours, staff and products.
func (h *StoreHandler) DeleteStore(c *gin.Context) {
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
	store, err := loadStore(db, id)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := authz.Authorize(actor, authz.ActionDelete, store); err != nil {
		respondError(c, err)
		return
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		var orderCount int64
		if err := tx.Model(&models.Order{}).Where("store_id = ?", store.ID).Count(&orderCount).Error; err != nil {
			return err
		}
		if orderCount > 0 {
			return apperrors.Conflict(orderCount, "Cannot delete store with %d existing orders. Consider deactivating it instead.", orderCount)
		}

		if err := tx.Where("store_id = ?", store.ID).Delete(&models.BusinessHours{}).Error; err != nil {
			return err
		}
		if err := tx.Where("store_id = ?", store.ID).Delete(&models.StoreStaff{}).Error; err != nil {
			return err
		}
		if err := tx.Where("store_id = ?", store.ID).Delete(&models.Product{}).Error; err != nil {
			return err
		}
		return tx.Delete(store).Error
	})
	if err != nil {
		respondError(c, err)
		return
	}

	emit(c, h.Audit, actor, audit.ActionDelete, "Store", store.ID, storeSnapshot(*store), nil)

	c.JSON(http.StatusOK, gin.H{"message": "Store deleted successfully"})
}
