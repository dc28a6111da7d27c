package workflow

import (
	"errors"
	"testing"
	"time"

	"fieldops-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	admin   = Actor{UserID: 1, Name: "Ada", Role: models.RoleAdmin}
	pm      = Actor{UserID: 2, Name: "Petra", Role: models.RolePM}
	gf      = Actor{UserID: 3, Name: "Gus", Role: models.RoleGF}
	foreman = Actor{UserID: 4, Name: "Frank", Role: models.RoleForeman}
	crew    = Actor{UserID: 5, Name: "Casey", Role: models.RoleCrew}
)

func testJob(status models.JobStatus) models.Job {
	return models.Job{
		ID:        42,
		CompanyID: 1,
		JobNumber: "WO-1001",
		Title:     "Replace pole 17-B",
		Status:    status,
	}
}

func TestTransitionJob_FullLifecycle(t *testing.T) {
	now := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	job := testJob(models.JobStatusNew)

	steps := []struct {
		to    models.JobStatus
		actor Actor
	}{
		{models.JobStatusAssignedToGF, pm},
		{models.JobStatusPreFielding, gf},
		{models.JobStatusScheduled, gf},
		{models.JobStatusInProgress, foreman},
		{models.JobStatusPendingGFReview, foreman},
		{models.JobStatusPendingPMApproval, gf},
		{models.JobStatusReadyToSubmit, pm},
		{models.JobStatusSubmitted, pm},
		{models.JobStatusBilled, pm},
		{models.JobStatusInvoiced, pm},
		{models.JobStatusArchived, admin},
	}

	// Scheduling requires an assignment date on the job
	sched := now.Add(24 * time.Hour)
	job.CrewScheduledDate = &sched

	for _, step := range steps {
		updated, err := TransitionJob(job, step.to, step.actor, "", now)
		require.NoError(t, err, "transition to %s as %s", step.to, step.actor.Role)
		assert.Equal(t, step.to, updated.Status)
		job = updated
	}

	assert.NotNil(t, job.PreFieldDate)
	assert.NotNil(t, job.WorkStartedAt)
	assert.NotNil(t, job.SubmittedAt)
	assert.NotNil(t, job.BilledAt)
	assert.NotNil(t, job.InvoicedAt)
}

func TestTransitionJob_IllegalEdges(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name string
		from models.JobStatus
		to   models.JobStatus
	}{
		{"skip gf assignment", models.JobStatusNew, models.JobStatusScheduled},
		{"skip straight to billing", models.JobStatusNew, models.JobStatusBilled},
		{"backwards from in_progress", models.JobStatusInProgress, models.JobStatusScheduled},
		{"billed cannot go stuck", models.JobStatusBilled, models.JobStatusStuck},
		{"invoiced cannot go stuck", models.JobStatusInvoiced, models.JobStatusStuck},
		{"submitted cannot go stuck", models.JobStatusSubmitted, models.JobStatusStuck},
		{"archived is terminal", models.JobStatusArchived, models.JobStatusNew},
		{"cancelled is terminal", models.JobStatusCancelled, models.JobStatusPreFielding},
		{"stuck only recovers to pre_fielding", models.JobStatusStuck, models.JobStatusInProgress},
		{"self loop", models.JobStatusScheduled, models.JobStatusScheduled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			job := testJob(tt.from)
			updated, err := TransitionJob(job, tt.to, admin, "why not", now)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidTransition), "want ErrInvalidTransition, got %v", err)
			// Snapshot comes back unchanged
			assert.Equal(t, tt.from, updated.Status)
		})
	}
}

func TestTransitionJob_RoleAuthorization(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name      string
		from      models.JobStatus
		to        models.JobStatus
		actor     Actor
		forbidden bool
	}{
		{"crew cannot assign to gf", models.JobStatusNew, models.JobStatusAssignedToGF, crew, true},
		{"foreman cannot approve for pm", models.JobStatusPendingPMApproval, models.JobStatusReadyToSubmit, foreman, true},
		{"gf cannot bill", models.JobStatusSubmitted, models.JobStatusBilled, gf, true},
		{"crew cannot cancel", models.JobStatusScheduled, models.JobStatusCancelled, crew, true},
		{"pm cannot archive", models.JobStatusInvoiced, models.JobStatusArchived, pm, true},
		{"admin can traverse any legal edge", models.JobStatusSubmitted, models.JobStatusBilled, admin, false},
		{"crew can start work", models.JobStatusScheduled, models.JobStatusInProgress, crew, false},
		{"crew can flag stuck", models.JobStatusInProgress, models.JobStatusStuck, crew, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			job := testJob(tt.from)
			sched := now
			job.CrewScheduledDate = &sched

			_, err := TransitionJob(job, tt.to, tt.actor, "blocked by vegetation", now)
			if tt.forbidden {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrForbidden), "want ErrForbidden, got %v", err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestTransitionJob_ScheduledRequiresCrewDate(t *testing.T) {
	now := time.Now()
	job := testJob(models.JobStatusPreFielding)

	_, err := TransitionJob(job, models.JobStatusScheduled, gf, "", now)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidation))

	// After assignment sets the date, the same transition succeeds
	sched := now.Add(48 * time.Hour)
	assigned, err := AssignJob(job, models.AssignJobRequest{
		UserID:            crew.UserID,
		UserName:          crew.Name,
		CrewScheduledDate: &sched,
	}, now)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusPreFielding, assigned.Status, "assignment must not change status")

	updated, err := TransitionJob(assigned, models.JobStatusScheduled, gf, "", now)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusScheduled, updated.Status)
}

func TestTransitionJob_StuckRequiresReasonAndClearsOnRecovery(t *testing.T) {
	now := time.Now()
	job := testJob(models.JobStatusInProgress)

	_, err := TransitionJob(job, models.JobStatusStuck, foreman, "", now)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidation))

	stuck, err := TransitionJob(job, models.JobStatusStuck, foreman, "gas line marked wrong", now)
	require.NoError(t, err)
	require.NotNil(t, stuck.StuckReason)
	assert.Equal(t, "gas line marked wrong", *stuck.StuckReason)
	assert.NotNil(t, stuck.StuckAt)

	recovered, err := TransitionJob(stuck, models.JobStatusPreFielding, gf, "", now)
	require.NoError(t, err)
	assert.Nil(t, recovered.StuckReason, "leaving stuck clears the reason")
}

func TestTransitionJob_Deterministic(t *testing.T) {
	// The same snapshot and input always produce the same result, so a
	// retried request cannot drift the job.
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	job := testJob(models.JobStatusNew)

	first, err1 := TransitionJob(job, models.JobStatusAssignedToGF, pm, "", now)
	second, err2 := TransitionJob(job, models.JobStatusAssignedToGF, pm, "", now)
	require.NoError(t, err1)
	require.NoError(t, err2)
	assert.Equal(t, first, second)
}

func TestAssignJob_RequiresUser(t *testing.T) {
	job := testJob(models.JobStatusAssignedToGF)
	_, err := AssignJob(job, models.AssignJobRequest{}, time.Now())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidation))
}
