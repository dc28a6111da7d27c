package workflow

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"fieldops-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("dep-%d", n)
	}
}

func TestCycleDependency_FullCycle(t *testing.T) {
	now := time.Now()
	job := testJob(models.JobStatusAssignedToGF)
	job.Dependencies = []models.Dependency{{
		ID:     "dep-1",
		Type:   models.DependencyUSA,
		Status: models.DependencyRequired,
	}}

	// required -> scheduled needs a date
	_, err := CycleDependency(job, "dep-1", nil, now)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidation))

	date := now.Add(72 * time.Hour)
	scheduled, err := CycleDependency(job, "dep-1", &date, now)
	require.NoError(t, err)
	assert.Equal(t, models.DependencyScheduled, scheduled.Dependencies[0].Status)
	require.NotNil(t, scheduled.Dependencies[0].ScheduledDate)
	assert.Equal(t, date, *scheduled.Dependencies[0].ScheduledDate)

	// scheduled -> not_required drops the date
	notRequired, err := CycleDependency(scheduled, "dep-1", nil, now)
	require.NoError(t, err)
	assert.Equal(t, models.DependencyNotRequired, notRequired.Dependencies[0].Status)
	assert.Nil(t, notRequired.Dependencies[0].ScheduledDate)

	// not_required wraps back to required
	back, err := CycleDependency(notRequired, "dep-1", nil, now)
	require.NoError(t, err)
	assert.Equal(t, models.DependencyRequired, back.Dependencies[0].Status)

	// Input snapshot is never mutated
	assert.Equal(t, models.DependencyRequired, job.Dependencies[0].Status)
}

func TestCycleDependency_UnknownID(t *testing.T) {
	job := testJob(models.JobStatusAssignedToGF)
	job.Dependencies = []models.Dependency{{ID: "dep-1", Type: models.DependencyCivil, Status: models.DependencyRequired}}

	_, err := CycleDependency(job, "dep-99", nil, time.Now())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestBuildDependencies(t *testing.T) {
	now := time.Now()

	t.Run("checked items become required dependencies", func(t *testing.T) {
		deps, err := BuildDependencies(map[string]models.ChecklistDecision{
			"usa":             {Checked: true},
			"traffic_control": {Checked: true, Notes: "Flaggers on Main St"},
			"vegetation":      {Checked: false, Notes: "clear"},
		}, sequentialIDs(), now)
		require.NoError(t, err)
		require.Len(t, deps, 2)

		byType := map[models.DependencyType]models.Dependency{}
		for _, d := range deps {
			assert.Equal(t, models.DependencyRequired, d.Status)
			assert.NotEmpty(t, d.ID)
			byType[d.Type] = d
		}
		// Notes become the description; otherwise the default label applies
		assert.Equal(t, "Flaggers on Main St", byType[models.DependencyTrafficControl].Description)
		assert.Equal(t, models.DependencyLabels[models.DependencyUSA], byType[models.DependencyUSA].Description)
	})

	t.Run("unknown item key is rejected", func(t *testing.T) {
		_, err := BuildDependencies(map[string]models.ChecklistDecision{
			"permits": {Checked: true},
		}, sequentialIDs(), now)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrValidation))
	})

	t.Run("all unchecked yields empty slice", func(t *testing.T) {
		deps, err := BuildDependencies(map[string]models.ChecklistDecision{
			"usa": {Checked: false},
			"cwc": {Checked: false},
		}, sequentialIDs(), now)
		require.NoError(t, err)
		assert.Empty(t, deps)
	})
}
