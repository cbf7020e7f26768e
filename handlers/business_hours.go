package handlers

import (
	"fmt"
	"net/http"

	"marketplace-backend/apperrors"
	"marketplace-backend/audit"
	"marketplace-backend/authz"
	"marketplace-backend/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BusinessHoursHandler struct {
	DB    *gorm.DB
	Audit audit.Recorder
}

type businessHoursEntry struct {
	DayOfWeek *int   `json:"dayOfWeek" binding:"required,min=0,max=6"`
	OpenTime  string `json:"openTime" binding:"required,hhmm"`
	CloseTime string `json:"closeTime" binding:"required,hhmm"`
	IsClosed  bool   `json:"isClosed"`
}

// validateSchedule rejects repeated days and open days that close before
// they open. HH:MM strings compare correctly as text.
func validateSchedule(schedule []businessHoursEntry) error {
	seen := make(map[int]bool, len(schedule))
	for i, entry := range schedule {
		day := *entry.DayOfWeek
		if seen[day] {
			return apperrors.Validation(fmt.Sprintf("schedule[%d].dayOfWeek", i), "dayOfWeek %d appears more than once", day)
		}
		seen[day] = true

		if !entry.IsClosed && entry.CloseTime <= entry.OpenTime {
			return apperrors.Validation(fmt.Sprintf("schedule[%d].closeTime", i),
				"closeTime (%s) must be after openTime (%s) for day %d", entry.CloseTime, entry.OpenTime, day)
		}
	}
	return nil
}

// ReplaceBusinessHours swaps a store's whole weekly schedule for the
// submitted one in a single transaction.
func (h *BusinessHoursHandler) ReplaceBusinessHours(c *gin.Context) {
	var req struct {
		StoreID  string               `json:"storeId" binding:"required,uuid"`
		Schedule []businessHoursEntry `json:"schedule" binding:"required,min=1,max=7,dive"`
	}
	if !bindJSON(c, &req) {
		return
	}
	if err := validateSchedule(req.Schedule); err != nil {
		respondError(c, err)
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
	if err := authz.Authorize(actor, authz.ActionUpdate, store); err != nil {
		respondError(c, err)
		return
	}

	var previous []models.BusinessHours
	hours := make([]models.BusinessHours, 0, len(req.Schedule))
	for _, entry := range req.Schedule {
		hours = append(hours, models.BusinessHours{
			StoreID:   store.ID,
			DayOfWeek: *entry.DayOfWeek,
			OpenTime:  entry.OpenTime,
			CloseTime: entry.CloseTime,
			IsClosed:  entry.IsClosed,
		})
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("store_id = ?", store.ID).Order("day_of_week").Find(&previous).Error; err != nil {
			return err
		}
		if err := tx.Where("store_id = ?", store.ID).Delete(&models.BusinessHours{}).Error; err != nil {
			return err
		}
		return tx.Create(&hours).Error
	})
	if err != nil {
		respondError(c, err)
		return
	}

	var saved []models.BusinessHours
	if err := db.Where("store_id = ?", store.ID).Order("day_of_week").Find(&saved).Error; err != nil {
		respondError(c, err)
		return
	}

	emit(c, h.Audit, actor, audit.ActionUpdate, "BusinessHours", store.ID, previous, saved)

	c.JSON(http.StatusOK, saved)
}

func (h *BusinessHoursHandler) GetBusinessHours(c *gin.Context) {
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
	if err := authz.Authorize(actor, authz.ActionRead, store); err != nil {
		respondError(c, err)
		return
	}

	hours := []models.BusinessHours{}
	if err := db.Where("store_id = ?", store.ID).Order("day_of_week").Find(&hours).Error; err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, hours)
}
