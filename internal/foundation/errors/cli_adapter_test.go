package errors

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCLIErrorAdapter_ExitCodeFor(t *testing.T) {
	adapter := NewCLIErrorAdapter(false, slog.Default())

	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{name: "nil error", err: nil, expected: 0},
		{name: "network error", err: NetworkError("fetch failed").Build(), expected: 1},
		{name: "missing metadata", err: NotFoundError("details.yaml not found").Build(), expected: 1},
		{name: "template error", err: TemplateError("template.html not found").Build(), expected: 1},
		{name: "plain error", err: errors.New("boom"), expected: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, adapter.ExitCodeFor(tt.err))
		})
	}
}

func TestCLIErrorAdapter_FormatError(t *testing.T) {
	cause := errors.New("no such file")
	err := WrapError(cause, CategoryTemplate, "template not found").Fatal().Build()

	quiet := NewCLIErrorAdapter(false, nil)
	assert.Equal(t, "Error: template not found: no such file", quiet.FormatError(err))

	verbose := NewCLIErrorAdapter(true, nil)
	assert.Contains(t, verbose.FormatError(err), "[template:fatal]")

	assert.Empty(t, quiet.FormatError(nil))
	assert.Equal(t, "Error: boom", quiet.FormatError(errors.New("boom")))
}

func TestCLIErrorAdapter_HandleError(t *testing.T) {
	var logs, stderr bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))

	adapter := NewCLIErrorAdapter(false, logger)
	adapter.stderr = &stderr
	code := -1
	adapter.exit = func(c int) { code = c }

	adapter.HandleError(NotFoundError("metadata file is empty").WithContext("path", "details.yaml").Build())

	require.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "metadata file is empty")
	assert.Contains(t, logs.String(), "category=not_found")
	assert.Contains(t, logs.String(), "path=details.yaml")

	code = -1
	adapter.HandleError(nil)
	assert.Equal(t, -1, code)
}
