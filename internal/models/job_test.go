package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeJobStatus(t *testing.T) {
	tests := []struct {
		raw  string
		want JobStatus
		ok   bool
	}{
		{"new", JobStatusNew, true},
		{"pending_pm_approval", JobStatusPendingPMApproval, true},
		{"archived", JobStatusArchived, true},
		// Legacy values still arriving from older mobile clients
		{"pending", JobStatusNew, true},
		{"pre-field", JobStatusPreFielding, true},
		{"in-progress", JobStatusInProgress, true},
		{"completed", JobStatusPendingGFReview, true},
		// Unknowns
		{"", "", false},
		{"done", "", false},
		{"PENDING", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := NormalizeJobStatus(tt.raw)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
