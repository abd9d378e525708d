package main

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"diyclient/internal/cli"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		expected   int
		wantStderr string
	}{
		{name: "success", err: nil, expected: 0},
		{name: "bare usage error", err: cli.ErrUsage, expected: 2},
		{name: "wrapped usage error", err: fmt.Errorf("create: -f is required: %w", cli.ErrUsage), expected: 2},
		{name: "other error", err: errors.New("boom"), expected: 1, wantStderr: "error: boom\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stderr := &bytes.Buffer{}
			assert.Equal(t, tt.expected, exitCode(tt.err, stderr))
			assert.Equal(t, tt.wantStderr, stderr.String())
		})
	}
}
