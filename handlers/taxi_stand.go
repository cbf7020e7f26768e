package handlers

import (
	"net/http"
	"sort"
	"strings"

	"marketplace-backend/audit"
	"marketplace-backend/models"
	"marketplace-backend/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// NearbyRadiusMeters bounds the nearby taxi stand search.
const NearbyRadiusMeters = 5000.0

type TaxiStandHandler struct {
	DB    *gorm.DB
	Audit audit.Recorder
}

// NearbyTaxiStand is a stand annotated with its distance in meters from the
// searched point.
type NearbyTaxiStand struct {
	models.TaxiStand
	Distance float64 `json:"distance"`
}

func taxiStandSnapshot(s models.TaxiStand) models.TaxiStand {
	s.Location = nil
	return s
}

func loadTaxiStand(db *gorm.DB, id interface{}) (*models.TaxiStand, error) {
	var stand models.TaxiStand
	if err := first(db.Preload("Location"), &stand, "Taxi stand", "id = ?", id); err != nil {
		return nil, err
	}
	return &stand, nil
}

func (h *TaxiStandHandler) CreateTaxiStand(c *gin.Context) {
	var req struct {
		Name        string         `json:"name" binding:"required,min=1,max=200"`
		Description string         `json:"description" binding:"max=1000"`
		Capacity    *int           `json:"capacity" binding:"required,min=1"`
		LocationID  string         `json:"locationId" binding:"omitempty,uuid"`
		Location    *locationInput `json:"location"`
		IsActive    *bool          `json:"isActive"`
	}
	if !bindJSON(c, &req) {
		return
	}

	actor, err := currentActor(c, h.DB)
	if err != nil {
		respondError(c, err)
		return
	}

	stand := models.TaxiStand{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Capacity:    *req.Capacity,
		IsActive:    true,
	}
	if req.IsActive != nil {
		stand.IsActive = *req.IsActive
	}

	db := h.DB.WithContext(c.Request.Context())
	err = db.Transaction(func(tx *gorm.DB) error {
		locationID, err := resolveLocation(tx, req.LocationID, req.Location)
		if err != nil {
			return err
		}
		stand.LocationID = locationID
		return tx.Create(&stand).Error
	})
	if err != nil {
		respondError(c, err)
		return
	}

	emit(c, h.Audit, actor, audit.ActionCreate, "TaxiStand", stand.ID, nil, stand)

	created, err := loadTaxiStand(db, stand.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *TaxiStandHandler) ListTaxiStands(c *gin.Context) {
	isActive, err := queryBool(c, "isActive")
	if err != nil {
		respondError(c, err)
		return
	}

	query := h.DB.WithContext(c.Request.Context()).Preload("Location")
	if isActive != nil {
		query = query.Where("is_active = ?", *isActive)
	}
	if search := c.Query("search"); search != "" {
		query = query.Where("LOWER(name) LIKE LOWER(?)", "%"+search+"%")
	}

	stands := []models.TaxiStand{}
	if err := query.Order("name").Find(&stands).Error; err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, stands)
}

func (h *TaxiStandHandler) GetTaxiStand(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	stand, err := loadTaxiStand(h.DB.WithContext(c.Request.Context()), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, stand)
}

func (h *TaxiStandHandler) UpdateTaxiStand(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req struct {
		Name        *string        `json:"name" binding:"omitempty,min=1,max=200"`
		Description *string        `json:"description" binding:"omitempty,max=1000"`
		Capacity    *int           `json:"capacity" binding:"omitempty,min=1"`
		LocationID  string         `json:"locationId" binding:"omitempty,uuid"`
		Location    *locationInput `json:"location"`
		IsActive    *bool          `json:"isActive"`
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
	stand, err := loadTaxiStand(db, id)
	if err != nil {
		respondError(c, err)
		return
	}

	before := taxiStandSnapshot(*stand)
	after := before
	if req.Name != nil {
		after.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		after.Description = *req.Description
	}
	if req.Capacity != nil {
		after.Capacity = *req.Capacity
	}
	if req.IsActive != nil {
		after.IsActive = *req.IsActive
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if req.LocationID != "" || req.Location != nil {
			locationID, err := resolveLocation(tx, req.LocationID, req.Location)
			if err != nil {
				return err
			}
			after.LocationID = locationID
		}
		if sameSnapshot(before, after) {
			return nil
		}
		return tx.Save(&after).Error
	})
	if err != nil {
		respondError(c, err)
		return
	}

	emit(c, h.Audit, actor, audit.ActionUpdate, "TaxiStand", after.ID, before, after)

	updated, err := loadTaxiStand(db, after.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *TaxiStandHandler) DeleteTaxiStand(c *gin.Context) {
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
	stand, err := loadTaxiStand(db, id)
	if err != nil {
		respondError(c, err)
		return
	}

	if err := db.Delete(&models.TaxiStand{}, "id = ?", stand.ID).Error; err != nil {
		respondError(c, err)
		return
	}

	emit(c, h.Audit, actor, audit.ActionDelete, "TaxiStand", stand.ID, taxiStandSnapshot(*stand), nil)

	c.JSON(http.StatusOK, gin.H{"message": "Taxi stand deleted successfully"})
}

// FindNearby returns the active stands within NearbyRadiusMeters of the
// given point, closest first.
func (h *TaxiStandHandler) FindNearby(c *gin.Context) {
	var req struct {
		Latitude  *float64 `json:"latitude" binding:"required,gte=-90,lte=90"`
		Longitude *float64 `json:"longitude" binding:"required,gte=-180,lte=180"`
	}
	if !bindJSON(c, &req) {
		return
	}

	var stands []models.TaxiStand
	if err := h.DB.WithContext(c.Request.Context()).Preload("Location").
		Where("is_active = ?", true).Order("name").Find(&stands).Error; err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, nearbyStands(stands, *req.Latitude, *req.Longitude, NearbyRadiusMeters))
}

func nearbyStands(stands []models.TaxiStand, lat, lon, radius float64) []NearbyTaxiStand {
	nearby := []NearbyTaxiStand{}
	for _, s := range stands {
		if s.Location == nil {
			continue
		}
		d := utils.Haversine(lat, lon, s.Location.Latitude, s.Location.Longitude)
		if d <= radius {
			nearby = append(nearby, NearbyTaxiStand{TaxiStand: s, Distance: d})
		}
	}
	sort.SliceStable(nearby, func(i, j int) bool {
		return nearby[i].Distance < nearby[j].Distance
	})
	return nearby
}
