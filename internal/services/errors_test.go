package services_test

import (
	"errors"
	"net/http"
	"strings"
	"testing"

	"episodegap/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrUnavailable, "tvdb", "search", "request failed", base)
	if !errors.Is(err, services.ErrUnavailable) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"tvdb", "search", "request failed", "boom"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapDefaultsMarker(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, services.ErrBadResponse) {
		t.Fatalf("expected default marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("expected fallback detail, got %q", err.Error())
	}
}

func TestMarkerForStatus(t *testing.T) {
	tests := []struct {
		code int
		want error
	}{
		{http.StatusUnauthorized, services.ErrUnauthorized},
		{http.StatusForbidden, services.ErrUnauthorized},
		{http.StatusNotFound, services.ErrNotFound},
		{http.StatusBadGateway, services.ErrUnavailable},
		{http.StatusBadRequest, services.ErrBadResponse},
	}
	for _, tt := range tests {
		if got := services.MarkerForStatus(tt.code); got != tt.want {
			t.Errorf("MarkerForStatus(%d) = %v, want %v", tt.code, got, tt.want)
		}
	}
}
