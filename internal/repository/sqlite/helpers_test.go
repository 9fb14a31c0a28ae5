package sqlite

import (
	"database/sql"
	"testing"
)

func TestNullToBool(t *testing.T) {
	tests := []struct {
		name     string
		input    sql.NullInt64
		expected bool
	}{
		{"one", sql.NullInt64{Int64: 1, Valid: true}, true},
		{"other non-zero", sql.NullInt64{Int64: 7, Valid: true}, true},
		{"zero", sql.NullInt64{Int64: 0, Valid: true}, false},
		{"null", sql.NullInt64{Int64: 1, Valid: false}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := nullToBool(tt.input); got != tt.expected {
				t.Errorf("nullToBool(%v) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}
