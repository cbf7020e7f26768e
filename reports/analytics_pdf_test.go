package reports

import (
	"bytes"
	"testing"
	"time"

	"marketplace-backend/dtos"

	"github.com/google/uuid"
)

func sampleAnalytics() dtos.UserAnalytics {
	return dtos.UserAnalytics{
		UserID: uuid.New(),
		Services: dtos.ServiceStats{
			Total:    3,
			ByStatus: map[string]int64{"COMPLETED": 2, "CANCELLED": 1},
			ByType:   map[string]int64{"RIDE": 3},
		},
		Spending: dtos.SpendingStats{
			TotalSpent:        42.5,
			PaymentCount:      3,
			CompletedPayments: 2,
			ByMethod:          map[string]dtos.MethodTotal{"CARD": {Count: 2, Amount: 42.5}},
			Monthly:           []dtos.MonthlySpend{{Month: "2024-01", Count: 1, Amount: 20}, {Month: "2024-02", Count: 1, Amount: 22.5}},
		},
		ReviewsGiven: dtos.ReviewStats{Count: 1, AverageRating: 5},
	}
}

func TestWriteUserAnalytics(t *testing.T) {
	var buf bytes.Buffer
	subject := Subject{Name: "Jane Doe", Email: "jane@test.com", Role: "customer", GeneratedAt: time.Now()}

	if err := WriteUserAnalytics(&buf, subject, sampleAnalytics()); err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")) {
		t.Fatalf("expected PDF header, got %q", buf.Bytes()[:8])
	}
}

func TestWriteUserAnalyticsWithDriverRatings(t *testing.T) {
	a := sampleAnalytics()
	a.DriverRatings = &dtos.ReviewStats{Count: 4, AverageRating: 4.25, AveragePunctuality: 4}

	var withDriver, without bytes.Buffer
	subject := Subject{Email: "driver@test.com", Role: "driver", GeneratedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	if err := WriteUserAnalytics(&withDriver, subject, a); err != nil {
		t.Fatal(err)
	}
	if err := WriteUserAnalytics(&without, subject, sampleAnalytics()); err != nil {
		t.Fatal(err)
	}
	if withDriver.Len() <= without.Len() {
		t.Errorf("expected driver section to add content: %d <= %d", withDriver.Len(), without.Len())
	}
}

func TestSortedKeys(t *testing.T) {
	got := sortedKeys(map[string]int64{"b": 1, "a": 2, "c": 3})
	if len(got) != 3 || got[0] != "a" || got[2] != "c" {
		t.Errorf("unexpected order: %v", got)
	}
}
