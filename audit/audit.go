// Package audit records who changed what. Handlers build an Event once the
// write has committed and hand it to a Recorder; the database log and the
// message-bus publisher are both Recorders and can be combined with Trail.
package audit

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"marketplace-backend/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Action string

const (
	ActionCreate Action = "CREATE"
	ActionUpdate Action = "UPDATE"
	ActionDelete Action = "DELETE"
)

// Event describes one committed mutation. Before is nil for creates and
// After is nil for deletes.
type Event struct {
	ActorID    uuid.UUID
	Action     Action
	EntityType string
	EntityID   uuid.UUID
	Before     any
	After      any
	IPAddress  string
	UserAgent  string
	OccurredAt time.Time
}

type Recorder interface {
	Record(ctx context.Context, ev Event) error
}

// Discard drops every event.
var Discard Recorder = discard{}

type discard struct{}

func (discard) Record(context.Context, Event) error { return nil }

// Trail fans an event out to every recorder. All recorders are tried; their
// errors are joined.
type Trail []Recorder

func (t Trail) Record(ctx context.Context, ev Event) error {
	var errs []error
	for _, r := range t {
		if err := r.Record(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Emit stamps the event and records it. A failure is logged and swallowed:
// the mutation it describes has already been committed.
func Emit(ctx context.Context, rec Recorder, ev Event) {
	if rec == nil {
		return
	}
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now().UTC()
	}
	if err := rec.Record(ctx, ev); err != nil {
		log.Printf("audit: failed to record %s %s %s: %v", ev.Action, ev.EntityType, ev.EntityID, err)
	}
}

// GormRecorder appends events to the audit_logs table.
type GormRecorder struct {
	DB *gorm.DB
}

func (r *GormRecorder) Record(ctx context.Context, ev Event) error {
	oldValues, err := encode(ev.Before)
	if err != nil {
		return err
	}
	newValues, err := encode(ev.After)
	if err != nil {
		return err
	}

	entry := models.AuditLog{
		UserID:     ev.ActorID,
		Action:     string(ev.Action),
		EntityType: ev.EntityType,
		EntityID:   ev.EntityID,
		OldValues:  oldValues,
		NewValues:  newValues,
		IPAddress:  ev.IPAddress,
		UserAgent:  ev.UserAgent,
		CreatedAt:  ev.OccurredAt,
	}
	return r.DB.WithContext(ctx).Create(&entry).Error
}

func encode(v any) (*string, error) {
	if v == nil {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	s := string(b)
	return &s, nil
}
