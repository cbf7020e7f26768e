package audit

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"marketplace-backend/models"
	"marketplace-backend/testdb"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

type snapshot struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

type fakeChannel struct {
	mu        sync.Mutex
	published []published
	err       error
}

type published struct {
	exchange string
	key      string
	msg      amqp.Publishing
}

func (f *fakeChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, published{exchange: exchange, key: key, msg: msg})
	return nil
}

type failingRecorder struct{ err error }

func (f failingRecorder) Record(context.Context, Event) error { return f.err }

type countingRecorder struct{ n int }

func (c *countingRecorder) Record(context.Context, Event) error {
	c.n++
	return nil
}

func sampleEvent(action Action) Event {
	return Event{
		ActorID:    uuid.New(),
		Action:     action,
		EntityType: "Product",
		EntityID:   uuid.New(),
		Before:     snapshot{Name: "Milk", Price: 1.5},
		After:      snapshot{Name: "Milk", Price: 2},
		IPAddress:  "127.0.0.1",
		UserAgent:  "go-test",
		OccurredAt: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestGormRecorder(t *testing.T) {
	db := testdb.Open(t)
	rec := &GormRecorder{DB: db}

	ev := sampleEvent(ActionUpdate)
	if err := rec.Record(context.Background(), ev); err != nil {
		t.Fatal(err)
	}

	var entry models.AuditLog
	if err := db.First(&entry).Error; err != nil {
		t.Fatal(err)
	}
	if entry.Action != "UPDATE" || entry.EntityType != "Product" || entry.EntityID != ev.EntityID {
		t.Errorf("unexpected entry: %+v", entry)
	}
	if entry.UserID != ev.ActorID {
		t.Errorf("expected user %s, got %s", ev.ActorID, entry.UserID)
	}
	if entry.OldValues == nil || *entry.OldValues != `{"name":"Milk","price":1.5}` {
		t.Errorf("unexpected old values: %v", entry.OldValues)
	}
	if entry.NewValues == nil || *entry.NewValues != `{"name":"Milk","price":2}` {
		t.Errorf("unexpected new values: %v", entry.NewValues)
	}
}

func TestGormRecorderCreateAndDelete(t *testing.T) {
	db := testdb.Open(t)
	rec := &GormRecorder{DB: db}

	created := sampleEvent(ActionCreate)
	created.Before = nil
	deleted := sampleEvent(ActionDelete)
	deleted.After = nil

	if err := rec.Record(context.Background(), created); err != nil {
		t.Fatal(err)
	}
	if err := rec.Record(context.Background(), deleted); err != nil {
		t.Fatal(err)
	}

	var c, d models.AuditLog
	db.Where("action = ?", "CREATE").First(&c)
	db.Where("action = ?", "DELETE").First(&d)
	if c.OldValues != nil || c.NewValues == nil {
		t.Errorf("create entry should only carry new values: %+v", c)
	}
	if d.NewValues != nil || d.OldValues == nil {
		t.Errorf("delete entry should only carry old values: %+v", d)
	}
}

func TestAMQPPublisher(t *testing.T) {
	ch := &fakeChannel{}
	pub := NewAMQPPublisher(ch, "marketplace.audit")

	ev := sampleEvent(ActionUpdate)
	if err := pub.Record(context.Background(), ev); err != nil {
		t.Fatal(err)
	}

	if len(ch.published) != 1 {
		t.Fatalf("expected 1 message, got %d", len(ch.published))
	}
	got := ch.published[0]
	if got.exchange != "marketplace.audit" {
		t.Errorf("expected exchange marketplace.audit, got %s", got.exchange)
	}
	if got.key != "audit.product.update" {
		t.Errorf("expected routing key audit.product.update, got %s", got.key)
	}
	if got.msg.ContentType != "application/json" || got.msg.DeliveryMode != amqp.Persistent {
		t.Errorf("unexpected publishing: %+v", got.msg)
	}

	var body map[string]interface{}
	if err := json.Unmarshal(got.msg.Body, &body); err != nil {
		t.Fatal(err)
	}
	if body["entityId"] != ev.EntityID.String() {
		t.Errorf("expected entityId %s, got %v", ev.EntityID, body["entityId"])
	}
	if body["id"] != got.msg.MessageId {
		t.Errorf("body id %v does not match message id %s", body["id"], got.msg.MessageId)
	}
	before := body["before"].(map[string]interface{})
	if before["price"] != 1.5 {
		t.Errorf("expected before price 1.5, got %v", before["price"])
	}
}

func TestAMQPPublisherConcurrent(t *testing.T) {
	ch := &fakeChannel{}
	pub := NewAMQPPublisher(ch, "x")

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			pub.Record(context.Background(), sampleEvent(ActionCreate))
		}()
	}
	wg.Wait()

	if len(ch.published) != 20 {
		t.Errorf("expected 20 messages, got %d", len(ch.published))
	}
}

func TestTrail(t *testing.T) {
	first := &countingRecorder{}
	last := &countingRecorder{}
	boom := errors.New("broker down")
	trail := Trail{first, failingRecorder{err: boom}, last}

	err := trail.Record(context.Background(), sampleEvent(ActionCreate))
	if !errors.Is(err, boom) {
		t.Fatalf("expected joined error to contain %v, got %v", boom, err)
	}
	if first.n != 1 || last.n != 1 {
		t.Errorf("every recorder should be tried, got %d and %d", first.n, last.n)
	}

	if err := (Trail{first}).Record(context.Background(), sampleEvent(ActionCreate)); err != nil {
		t.Errorf("expected nil error, got %v", err)
	}
}

func TestEmitSwallowsErrors(t *testing.T) {
	// Must not panic or propagate.
	Emit(context.Background(), failingRecorder{err: errors.New("nope")}, sampleEvent(ActionDelete))
	Emit(context.Background(), nil, sampleEvent(ActionDelete))

	c := &countingRecorder{}
	Emit(context.Background(), c, Event{Action: ActionCreate})
	if c.n != 1 {
		t.Errorf("expected event to be recorded once, got %d", c.n)
	}
}

func TestRoutingKey(t *testing.T) {
	ev := Event{EntityType: "BusinessHours", Action: ActionCreate}
	if got := RoutingKey(ev); got != "audit.businesshours.create" {
		t.Errorf("unexpected routing key %s", got)
	}
}
