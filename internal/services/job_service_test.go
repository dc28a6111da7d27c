package services

import (
	"testing"

	"fieldops-backend/internal/metrics"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordJobTransitionLabels(t *testing.T) {
	before := testutil.ToFloat64(metrics.JobTransitionsTotal.WithLabelValues("submitted", "billed"))

	recordJobTransition("submitted", "billed")

	assert.Equal(t, before+1,
		testutil.ToFloat64(metrics.JobTransitionsTotal.WithLabelValues("submitted", "billed")))
	// The from label carries the prior status, so a committed move never
	// lands on a self edge.
	assert.Equal(t, float64(0),
		testutil.ToFloat64(metrics.JobTransitionsTotal.WithLabelValues("billed", "billed")))
}
