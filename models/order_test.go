package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseOrderStatus(t *testing.T) {
	tests := []struct {
		in      string
		want    OrderStatus
		wantErr bool
	}{
		{"pending", OrderStatusPending, false},
		{"processing", OrderStatusProcessing, false},
		{"completed", OrderStatusCompleted, false},
		{"cancelled", OrderStatusCancelled, false},
		{"failed", OrderStatusFailed, false},
		{"Completed", OrderStatusCompleted, false}, // case-insensitive
		{"shipped", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := ParseOrderStatus(tt.in)
		if tt.wantErr {
			assert.ErrorIs(t, err, ErrInvalidOrderStatus, "input %q", tt.in)
			continue
		}
		assert.NoError(t, err, "input %q", tt.in)
		assert.Equal(t, tt.want, got)
	}
}
