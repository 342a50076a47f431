package logger

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"codMarket/domain"

	"github.com/stretchr/testify/assert"
)

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()

	var buf bytes.Buffer
	prev := log
	log = slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	t.Cleanup(func() { log = prev })

	return &buf
}

func TestFailure_LevelFollowsErrorKind(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		level string
	}{
		{name: "conflict", err: domain.Conflict("cannot move return from REJECTED to APPROVED"), level: "level=WARN"},
		{name: "validation", err: domain.NewValidationError("status is required"), level: "level=WARN"},
		{name: "not found", err: domain.NotFound("return"), level: "level=WARN"},
		{name: "policy", err: &domain.PolicyError{Status: domain.ScoreStatusBlacklisted}, level: "level=WARN"},
		{name: "store failure", err: domain.StoreFailure("update return", errors.New("connection reset")), level: "level=ERROR"},
		{name: "unknown", err: errors.New("boom"), level: "level=ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := captureLogs(t)

			Failure("Failed to transition return", tt.err, "return_id", 7)

			out := buf.String()
			assert.Contains(t, out, tt.level)
			assert.Contains(t, out, "return_id=7")
			assert.Contains(t, out, "error=")
		})
	}
}
