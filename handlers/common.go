package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"log"
	"math"
	"net/http"
	"strconv"

	"marketplace-backend/apperrors"
	"marketplace-backend/audit"
	"marketplace-backend/authz"
	"marketplace-backend/middleware"
	"marketplace-backend/models"
	"marketplace-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// respondError writes err as {"error": ...} with the status its kind maps to.
// Internal errors are logged and not echoed back.
func respondError(c *gin.Context, err error) {
	status := apperrors.HTTPStatus(err)
	body := gin.H{"error": err.Error()}

	var verr *apperrors.ValidationError
	if errors.As(err, &verr) && verr.Field != "" {
		body["field"] = verr.Field
	}
	var conflict *apperrors.ConflictError
	if errors.As(err, &conflict) && conflict.Count > 0 {
		body["count"] = conflict.Count
	}
	if status == http.StatusInternalServerError {
		log.Printf("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		body["error"] = "Internal server error"
	}

	c.JSON(status, body)
}

// bindJSON binds the body into req, answering with the first failing field
// when it does not validate.
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		respondError(c, utils.FirstValidationError(err))
		return false
	}
	return true
}

func parseID(c *gin.Context, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		respondError(c, apperrors.Validation(param, "%s must be a valid UUID", param))
		return uuid.Nil, false
	}
	return id, true
}

// parseOptionalUUID parses a query or body value that may be empty.
func parseOptionalUUID(field, value string) (*uuid.UUID, error) {
	if value == "" {
		return nil, nil
	}
	id, err := uuid.Parse(value)
	if err != nil {
		return nil, apperrors.Validation(field, "%s must be a valid UUID", field)
	}
	return &id, nil
}

// queryBool parses an optional true/false query parameter.
func queryBool(c *gin.Context, name string) (*bool, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, apperrors.Validation(name, "%s must be true or false", name)
	}
	return &v, nil
}

// currentActor resolves the authenticated caller, including the owner
// profile for store owners.
func currentActor(c *gin.Context, db *gorm.DB) (authz.Actor, error) {
	userID, role, ok := middleware.CurrentUser(c)
	if !ok {
		return authz.Actor{}, apperrors.AccessDenied("not authenticated")
	}
	return authz.LoadActor(db.WithContext(c.Request.Context()), userID, role)
}

// first loads one row into dest, turning a missing row into NotFoundError.
func first(db *gorm.DB, dest interface{}, entity string, query interface{}, args ...interface{}) error {
	err := db.Where(query, args...).First(dest).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.NotFound(entity)
	}
	return err
}

func loadStore(db *gorm.DB, id uuid.UUID) (*models.Store, error) {
	var store models.Store
	if err := first(db, &store, "Store", "id = ?", id); err != nil {
		return nil, err
	}
	return &store, nil
}

// locationInput lets a request either reference an existing location or
// describe a new one.
type locationInput struct {
	Address   string   `json:"address"`
	City      string   `json:"city"`
	Latitude  *float64 `json:"latitude" binding:"required,gte=-90,lte=90"`
	Longitude *float64 `json:"longitude" binding:"required,gte=-180,lte=180"`
}

// resolveLocation returns the id of the referenced location, creating it
// from loc when no id is given.
func resolveLocation(tx *gorm.DB, locationID string, loc *locationInput) (uuid.UUID, error) {
	if locationID != "" {
		id, err := uuid.Parse(locationID)
		if err != nil {
			return uuid.Nil, apperrors.Validation("locationId", "locationId must be a valid UUID")
		}
		var existing models.Location
		if err := first(tx, &existing, "Location", "id = ?", id); err != nil {
			return uuid.Nil, err
		}
		return id, nil
	}
	if loc == nil {
		return uuid.Nil, apperrors.Validation("locationId", "locationId or location is required")
	}

	created := models.Location{
		Address:   loc.Address,
		City:      loc.City,
		Latitude:  *loc.Latitude,
		Longitude: *loc.Longitude,
	}
	if err := tx.Create(&created).Error; err != nil {
		return uuid.Nil, err
	}
	return created.ID, nil
}

func emit(c *gin.Context, rec audit.Recorder, actor authz.Actor, action audit.Action, entity string, id uuid.UUID, before, after interface{}) {
	audit.Emit(c.Request.Context(), rec, audit.Event{
		ActorID:    actor.UserID,
		Action:     action,
		EntityType: entity,
		EntityID:   id,
		Before:     before,
		After:      after,
		IPAddress:  c.ClientIP(),
		UserAgent:  c.Request.UserAgent(),
	})
}

// sameSnapshot reports whether a and b serialize identically.
func sameSnapshot(a, b interface{}) bool {
	ja, errA := json.Marshal(a)
	jb, errB := json.Marshal(b)
	return errA == nil && errB == nil && bytes.Equal(ja, jb)
}

type pagination struct {
	Page   int
	Limit  int
	Offset int
}

// paginate reads page and limit, falling back to page 1 and 20 per page.
func paginate(c *gin.Context) pagination {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return pagination{Page: page, Limit: limit, Offset: (page - 1) * limit}
}

func (p pagination) response(key string, items interface{}, total int64) gin.H {
	return gin.H{
		key:     items,
		"total": total,
		"page":  p.Page,
		"limit": p.Limit,
		"pages": int(math.Ceil(float64(total) / float64(p.Limit))),
	}
}
