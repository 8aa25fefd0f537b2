package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{Validation("missing field"), http.StatusBadRequest},
		{InsufficientFunds("not enough tokens"), http.StatusBadRequest},
		{DuplicateVote("already voted"), http.StatusBadRequest},
		{NotFound("no such market"), http.StatusNotFound},
		{StateConflict("voting has ended"), http.StatusForbidden},
		{Upstream("provider down", errors.New("connection refused")), http.StatusBadGateway},
		{errors.New("plain error"), http.StatusInternalServerError},
		{nil, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := HTTPStatus(tt.err); got != tt.want {
			t.Errorf("HTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestKindSurvivesWrapping(t *testing.T) {
	err := fmt.Errorf("casting vote: %w", InsufficientFunds("not enough tokens"))
	if !IsKind(err, KindInsufficientFunds) {
		t.Errorf("kind lost through wrapping: %v", err)
	}
	if HTTPStatus(err) != http.StatusBadRequest {
		t.Errorf("wrapped error mapped to %d", HTTPStatus(err))
	}
}

func TestClientMessage(t *testing.T) {
	if msg := ClientMessage(NotFound("Market not found")); msg != "Market not found" {
		t.Errorf("unexpected message %q", msg)
	}
	// Internals never leak to clients.
	if msg := ClientMessage(errors.New("pq: connection reset")); msg != "Internal server error" {
		t.Errorf("unexpected message %q", msg)
	}
	if msg := ClientMessage(Upstream("Failed to fetch fixture data.", errors.New("dial tcp: timeout"))); msg != "Failed to fetch fixture data." {
		t.Errorf("upstream cause leaked: %q", msg)
	}
}
