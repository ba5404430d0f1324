package handlers

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/munero-platform/analytics-core-be/internal/core/filters"
	"github.com/munero-platform/analytics-core-be/internal/core/sqlgate"
	"github.com/munero-platform/analytics-core-be/internal/shared/database"
)

type brokenWriter struct{}

func (brokenWriter) Write(p []byte) (int, error) { return 0, io.ErrClosedPipe }

func TestAbortWriterCancelsOnWriteFailure(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	aw := &abortWriter{w: brokenWriter{}, cancel: cancel}

	_, err := aw.Write([]byte("a,b\n"))
	require.Error(t, err)
	select {
	case <-ctx.Done():
	default:
		t.Fatal("query context still live after the stream broke")
	}
}

func TestAbortWriterLeavesContextOnSuccess(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var buf bytes.Buffer
	aw := &abortWriter{w: &buf, cancel: cancel}

	n, err := aw.Write([]byte("a,b\n"))
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	select {
	case <-ctx.Done():
		t.Fatal("context cancelled on a successful write")
	default:
	}
}

func TestSanitizeFilename(t *testing.T) {
	cases := map[string]string{
		"":                   "export.csv",
		"report":             "report.csv",
		"report.csv":         "report.csv",
		"../../etc/passwd":   "passwd.csv",
		`quo"ted.csv`:        "quoted.csv",
		"  monthly.CSV ":     "monthly.CSV",
		"/absolute/path.csv": "path.csv",
	}
	for in, want := range cases {
		assert.Equal(t, want, sanitizeFilename(in), "input: %q", in)
	}
}

func TestStatusForError(t *testing.T) {
	status, _ := statusForError(&filters.InvalidFilterError{Reason: "bad date"})
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, _ = statusForError(&sqlgate.UnsafeQueryError{Reason: "forbidden keyword DROP"})
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, _ = statusForError(&database.QueryTimeoutError{})
	assert.Equal(t, fiber.StatusGatewayTimeout, status)

	status, msg := statusForError(&database.QueryExecutionError{Err: assert.AnError})
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "query execution failed", msg, "driver details must not leak")

	status, msg = statusForError(assert.AnError)
	assert.Equal(t, fiber.StatusInternalServerError, status)
	assert.Equal(t, "internal error", msg)
}
