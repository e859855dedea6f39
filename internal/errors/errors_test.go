package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{name: "nil error", err: nil, expected: ""},
		{name: "simple error", err: errors.New("task not found"), expected: "Error: task not found"},
		{
			name:     "wrapped error",
			err:      fmt.Errorf("complete t1: %w", errors.New("storage not initialized")),
			expected: "Error: complete t1: storage not initialized",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Format(tt.err); got != tt.expected {
				t.Errorf("Format(%v) = %q, want %q", tt.err, got, tt.expected)
			}
		})
	}
}

func TestFormatf(t *testing.T) {
	got := Formatf("invalid date %q", "2024-13-01")
	want := `Error: invalid date "2024-13-01"`
	if got != want {
		t.Errorf("Formatf() = %q, want %q", got, want)
	}
}
