package handlers

import (
	"net/http"

	"marketplace-backend/apperrors"
	"marketplace-backend/audit"
	"marketplace-backend/models"
	"marketplace-backend/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type UserHandler struct {
	DB    *gorm.DB
	Audit audit.Recorder
}

// userSnapshot is the audited view of an account.
type userSnapshot struct {
	ID         string `json:"id"`
	Email      string `json:"email"`
	Role       string `json:"role"`
	IsActive   bool   `json:"isActive"`
	IsVerified bool   `json:"isVerified"`
}

func snapshotUser(u models.User) userSnapshot {
	return userSnapshot{
		ID:         u.ID.String(),
		Email:      u.Email,
		Role:       u.Role,
		IsActive:   u.IsActive,
		IsVerified: u.IsVerified,
	}
}

func (h *UserHandler) ListUsers(c *gin.Context) {
	isActive, err := queryBool(c, "isActive")
	if err != nil {
		respondError(c, err)
		return
	}
	isVerified, err := queryBool(c, "isVerified")
	if err != nil {
		respondError(c, err)
		return
	}

	role := c.Query("role")
	if role != "" && !models.ValidRoles[role] {
		respondError(c, apperrors.Validation("role", "role must be one of: customer, driver, store_owner, admin"))
		return
	}

	p := paginate(c)
	query := h.DB.WithContext(c.Request.Context()).Model(&models.User{})

	if role != "" {
		query = query.Where("role = ?", role)
	}
	if isActive != nil {
		query = query.Where("is_active = ?", *isActive)
	}
	if isVerified != nil {
		query = query.Where("is_verified = ?", *isVerified)
	}
	if search := c.Query("search"); search != "" {
		like := "%" + search + "%"
		query = query.Where(
			"LOWER(first_name) LIKE LOWER(?) OR LOWER(last_name) LIKE LOWER(?) OR LOWER(email) LIKE LOWER(?) OR phone LIKE ?",
			like, like, like, like,
		)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		respondError(c, err)
		return
	}

	users := []models.User{}
	if err := query.Order("created_at DESC").Offset(p.Offset).Limit(p.Limit).Find(&users).Error; err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, p.response("users", users, total))
}

func (h *UserHandler) GetUser(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	db := h.DB.WithContext(c.Request.Context())
	var user models.User
	if err := first(db.Preload("DriverProfile").Preload("OwnerProfile"), &user, "User", "id = ?", id); err != nil {
		respondError(c, err)
		return
	}

	counts := gin.H{}
	for key, model := range map[string]interface{}{
		"services":          &models.Service{},
		"payments":          &models.Payment{},
		"reviews":           &models.Review{},
		"favoriteLocations": &models.FavoriteLocation{},
		"notifications":     &models.Notification{},
	} {
		column := "user_id"
		if key == "reviews" {
			column = "reviewer_id"
		}
		var n int64
		if err := db.Model(model).Where(column+" = ?", user.ID).Count(&n).Error; err != nil {
			respondError(c, err)
			return
		}
		counts[key] = n
	}

	c.JSON(http.StatusOK, gin.H{
		"user":   user,
		"counts": counts,
	})
}

// UpdateUserStatus activates or deactivates an account and notifies the
// user by e-mail when the status actually changes.
func (h *UserHandler) UpdateUserStatus(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req struct {
		IsActive *bool  `json:"isActive" binding:"required"`
		Reason   string `json:"reason" binding:"max=500"`
	}
	if !bindJSON(c, &req) {
		return
	}

	actor, err := currentActor(c, h.DB)
	if err != nil {
		respondError(c, err)
		return
	}
	if actor.UserID == id && !*req.IsActive {
		respondError(c, apperrors.Validation("isActive", "You cannot deactivate your own account"))
		return
	}

	db := h.DB.WithContext(c.Request.Context())
	var user models.User
	if err := first(db, &user, "User", "id = ?", id); err != nil {
		respondError(c, err)
		return
	}

	before := snapshotUser(user)
	changed := user.IsActive != *req.IsActive
	if changed {
		if err := db.Model(&user).Update("is_active", *req.IsActive).Error; err != nil {
			respondError(c, err)
			return
		}
		user.IsActive = *req.IsActive
	}

	emit(c, h.Audit, actor, audit.ActionUpdate, "User", user.ID, before, snapshotUser(user))

	if changed {
		utils.SendAccountStatusEmail(user.Email, user.FullName(), user.IsActive, req.Reason)
	}

	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) UpdateUserVerification(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req struct {
		IsVerified *bool `json:"isVerified" binding:"required"`
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
	var user models.User
	if err := first(db, &user, "User", "id = ?", id); err != nil {
		respondError(c, err)
		return
	}

	before := snapshotUser(user)
	changed := user.IsVerified != *req.IsVerified
	if changed {
		if err := db.Model(&user).Update("is_verified", *req.IsVerified).Error; err != nil {
			respondError(c, err)
			return
		}
		user.IsVerified = *req.IsVerified
	}

	emit(c, h.Audit, actor, audit.ActionUpdate, "User", user.ID, before, snapshotUser(user))

	if changed {
		utils.SendVerificationEmail(user.Email, user.FullName(), user.IsVerified)
	}

	c.JSON(http.StatusOK, user)
}
