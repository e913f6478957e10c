package services_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/satishgoda/watchtower/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("connection reset")
	err := services.Wrap(services.ErrTransport, "shots", "fetch", "request failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrTransport) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"shots", "fetch", "request failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapWithoutDetail(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, services.ErrTransport) {
		t.Fatalf("expected default transport marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("expected fallback detail, got %q", err.Error())
	}
}

func TestClassify(t *testing.T) {
	cases := map[string]error{
		"":               nil,
		"transport":      services.Wrap(services.ErrTransport, "edit", "fetch", "", errors.New("io")),
		"malformed_data": services.Wrap(services.ErrMalformedData, "shots", "decode", "", nil),
		"lookup_miss":    services.Wrap(services.ErrNotFound, "edit", "select", "", nil),
		"configuration":  services.Wrap(services.ErrConfiguration, "", "", "bad url", nil),
		"superseded":     services.Wrap(services.ErrSuperseded, "casting", "", "", nil),
	}
	for want, err := range cases {
		if got := services.Classify(err); got != want {
			t.Fatalf("Classify(%v) = %q, want %q", err, got, want)
		}
	}
}
