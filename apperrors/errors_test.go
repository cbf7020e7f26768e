package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"validation", Validation("price", "price must be greater than 0"), http.StatusBadRequest},
		{"not found", NotFound("Store"), http.StatusNotFound},
		{"access denied", AccessDenied(""), http.StatusForbidden},
		{"conflict", Conflict(2, "store has %d orders", 2), http.StatusConflict},
		{"wrapped not found", fmt.Errorf("loading: %w", NotFound("Product")), http.StatusNotFound},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := HTTPStatus(tc.err); got != tc.want {
			t.Errorf("%s: expected %d, got %d", tc.name, tc.want, got)
		}
	}
}

func TestErrorMessages(t *testing.T) {
	if msg := NotFound("Store").Error(); msg != "Store not found" {
		t.Errorf("unexpected message %q", msg)
	}
	if msg := AccessDenied("").Error(); msg != "Access denied" {
		t.Errorf("unexpected message %q", msg)
	}
	if msg := AccessDenied("not your store").Error(); msg != "Access denied: not your store" {
		t.Errorf("unexpected message %q", msg)
	}
	c := Conflict(3, "Cannot delete store with %d existing orders", 3)
	if c.Count != 3 || c.Error() != "Cannot delete store with 3 existing orders" {
		t.Errorf("unexpected conflict %+v", c)
	}
}
