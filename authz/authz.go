// Package authz holds the single ownership rule shared by every store-scoped
// handler: admins may act on any store, store owners only on stores linked to
// their own StoreOwnerProfile, and every other role on none.
package authz

import (
	"errors"

	"marketplace-backend/apperrors"
	"marketplace-backend/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Action string

const (
	ActionRead   Action = "read"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Actor is the authenticated caller. OwnerProfileID is only set for store
// owners that have a profile.
type Actor struct {
	UserID         uuid.UUID
	Role           string
	OwnerProfileID *uuid.UUID
}

func (a Actor) IsAdmin() bool {
	return a.Role == models.RoleAdmin
}

// LoadActor builds the actor for userID, resolving the owner profile when the
// role is store_owner. A store owner without a profile is returned as-is and
// will be denied by Can.
func LoadActor(db *gorm.DB, userID uuid.UUID, role string) (Actor, error) {
	actor := Actor{UserID: userID, Role: role}
	if role != models.RoleStoreOwner {
		return actor, nil
	}

	var profile models.StoreOwnerProfile
	err := db.Where("user_id = ?", userID).First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return actor, nil
	}
	if err != nil {
		return actor, err
	}
	actor.OwnerProfileID = &profile.ID
	return actor, nil
}

// Can reports whether actor may perform action on store.
func Can(actor Actor, action Action, store *models.Store) bool {
	if store == nil {
		return false
	}
	switch actor.Role {
	case models.RoleAdmin:
		return true
	case models.RoleStoreOwner:
		return actor.OwnerProfileID != nil && *actor.OwnerProfileID == store.OwnerID
	}
	return false
}

// Authorize is Can as an error: nil when allowed, AccessDeniedError otherwise.
func Authorize(actor Actor, action Action, store *models.Store) error {
	if Can(actor, action, store) {
		return nil
	}
	if actor.Role == models.RoleStoreOwner && actor.OwnerProfileID == nil {
		return apperrors.AccessDenied("no store owner profile")
	}
	return apperrors.AccessDenied("")
}

// ScopeStores restricts a query on the stores table to the rows actor may read.
func ScopeStores(actor Actor) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		switch {
		case actor.IsAdmin():
			return db
		case actor.Role == models.RoleStoreOwner && actor.OwnerProfileID != nil:
			return db.Where("stores.owner_id = ?", *actor.OwnerProfileID)
		}
		return db.Where("1 = 0")
	}
}

// ScopeStoreChildren restricts a query on a table with a store_id column to
// rows belonging to stores actor may read.
func ScopeStoreChildren(actor Actor, table string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		switch {
		case actor.IsAdmin():
			return db
		case actor.Role == models.RoleStoreOwner && actor.OwnerProfileID != nil:
			return db.Where(table+".store_id IN (SELECT id FROM stores WHERE owner_id = ? AND deleted_at IS NULL)", *actor.OwnerProfileID)
		}
		return db.Where("1 = 0")
	}
}

// OwnedStoreIDs returns the set of store ids owned by actor. It is empty for
// actors without a profile and nil for admins, who are not restricted.
func OwnedStoreIDs(db *gorm.DB, actor Actor) (map[uuid.UUID]bool, error) {
	if actor.IsAdmin() {
		return nil, nil
	}
	owned := make(map[uuid.UUID]bool)
	if actor.Role != models.RoleStoreOwner || actor.OwnerProfileID == nil {
		return owned, nil
	}

	var ids []uuid.UUID
	if err := db.Model(&models.Store{}).Where("owner_id = ?", *actor.OwnerProfileID).Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	for _, id := range ids {
		owned[id] = true
	}
	return owned, nil
}
