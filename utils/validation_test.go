package utils

import (
	"bytes"
	"net/http"
	"strings"
	"testing"

	"github.com/gin-gonic/gin/binding"
)

type hoursEntry struct {
	DayOfWeek *int   `json:"dayOfWeek" binding:"required,min=0,max=6"`
	OpenTime  string `json:"openTime" binding:"required,hhmm"`
	CloseTime string `json:"closeTime" binding:"required,hhmm"`
}

type sampleRequest struct {
	Name     string       `json:"name" binding:"required,min=2"`
	Email    string       `json:"email" binding:"omitempty,email"`
	Price    *float64     `json:"price" binding:"required,gt=0"`
	Type     string       `json:"type" binding:"required,oneof=RESTAURANT GROCERY"`
	Schedule []hoursEntry `json:"schedule" binding:"omitempty,dive"`
}

func bindSample(t *testing.T, body string) error {
	t.Helper()
	RegisterValidators()
	req, _ := http.NewRequest("POST", "/", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	var out sampleRequest
	return binding.JSON.Bind(req, &out)
}

func TestFirstValidationErrorRequired(t *testing.T) {
	verr := FirstValidationError(bindSample(t, `{}`))
	if verr == nil {
		t.Fatal("expected validation error")
	}
	if verr.Field != "name" {
		t.Errorf("expected first failing field 'name', got %q", verr.Field)
	}
	if verr.Message != "name is required" {
		t.Errorf("unexpected message: %s", verr.Message)
	}
}

func TestFirstValidationErrorNegativePrice(t *testing.T) {
	verr := FirstValidationError(bindSample(t, `{"name":"Milk","price":-1,"type":"GROCERY"}`))
	if verr == nil || verr.Field != "price" {
		t.Fatalf("expected price error, got %+v", verr)
	}
	if !strings.Contains(verr.Message, "greater than 0") {
		t.Errorf("unexpected message: %s", verr.Message)
	}
}

func TestFirstValidationErrorEmail(t *testing.T) {
	verr := FirstValidationError(bindSample(t, `{"name":"Milk","email":"nope","price":1,"type":"GROCERY"}`))
	if verr == nil || verr.Field != "email" {
		t.Fatalf("expected email error, got %+v", verr)
	}
	if !strings.Contains(verr.Message, "valid email address") {
		t.Errorf("unexpected message: %s", verr.Message)
	}
}

func TestFirstValidationErrorOneOf(t *testing.T) {
	verr := FirstValidationError(bindSample(t, `{"name":"Milk","price":1,"type":"CAFE"}`))
	if verr == nil || verr.Field != "type" {
		t.Fatalf("expected type error, got %+v", verr)
	}
	if verr.Message != "type must be one of: RESTAURANT, GROCERY" {
		t.Errorf("unexpected message: %s", verr.Message)
	}
}

func TestFirstValidationErrorNestedTime(t *testing.T) {
	body := `{"name":"Milk","price":1,"type":"GROCERY","schedule":[
		{"dayOfWeek":1,"openTime":"09:00","closeTime":"17:00"},
		{"dayOfWeek":2,"openTime":"24:00","closeTime":"17:00"}]}`
	verr := FirstValidationError(bindSample(t, body))
	if verr == nil {
		t.Fatal("expected validation error")
	}
	if verr.Field != "schedule[1].openTime" {
		t.Errorf("expected field schedule[1].openTime, got %q", verr.Field)
	}
	if !strings.Contains(verr.Message, "HH:MM") {
		t.Errorf("unexpected message: %s", verr.Message)
	}
}

func TestFirstValidationErrorAnonymousRequest(t *testing.T) {
	RegisterValidators()
	bind := func(body string) error {
		req, _ := http.NewRequest("POST", "/", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		var out struct {
			Name     string `json:"name" binding:"required"`
			Location *struct {
				Latitude  *float64 `json:"latitude" binding:"required,min=-90,max=90"`
				Longitude *float64 `json:"longitude" binding:"required,min=-180,max=180"`
			} `json:"location" binding:"omitempty"`
			Schedule []hoursEntry `json:"schedule" binding:"omitempty,dive"`
		}
		return binding.JSON.Bind(req, &out)
	}

	tests := []struct {
		body  string
		field string
	}{
		{`{}`, "name"},
		{`{"name":"x","location":{"latitude":95,"longitude":0}}`, "location.latitude"},
		{`{"name":"x","schedule":[{"dayOfWeek":1,"openTime":"09:00","closeTime":"17:00"},{"dayOfWeek":2,"openTime":"25:00","closeTime":"17:00"}]}`, "schedule[1].openTime"},
	}
	for _, tt := range tests {
		verr := FirstValidationError(bind(tt.body))
		if verr == nil {
			t.Fatalf("%s: expected validation error", tt.body)
		}
		if verr.Field != tt.field {
			t.Errorf("%s: expected field %q, got %q", tt.body, tt.field, verr.Field)
		}
		if !strings.HasPrefix(verr.Message, tt.field+" ") {
			t.Errorf("%s: unexpected message: %s", tt.body, verr.Message)
		}
	}
}

func TestFirstValidationErrorTypeMismatch(t *testing.T) {
	verr := FirstValidationError(bindSample(t, `{"name":"Milk","price":"cheap","type":"GROCERY"}`))
	if verr == nil || verr.Field != "price" {
		t.Fatalf("expected price type error, got %+v", verr)
	}
}

func TestFirstValidationErrorMalformedBody(t *testing.T) {
	verr := FirstValidationError(bindSample(t, `{not json`))
	if verr == nil || verr.Message != "Invalid request body" {
		t.Fatalf("expected generic body error, got %+v", verr)
	}
}

func TestFirstValidationErrorNil(t *testing.T) {
	if FirstValidationError(nil) != nil {
		t.Error("expected nil for nil error")
	}
}

func TestTimeOfDayPattern(t *testing.T) {
	valid := []string{"00:00", "09:30", "19:59", "23:59"}
	invalid := []string{"24:00", "9:30", "12:60", "12:5", "noon", ""}

	for _, s := range valid {
		if !TimeOfDayPattern.MatchString(s) {
			t.Errorf("expected %q to match", s)
		}
	}
	for _, s := range invalid {
		if TimeOfDayPattern.MatchString(s) {
			t.Errorf("expected %q not to match", s)
		}
	}
}
