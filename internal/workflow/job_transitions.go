package workflow

import (
	"time"

	"fieldops-backend/internal/models"
)

// TransitionJob applies one status transition to a snapshot of a job and
// returns the updated copy. It never touches storage; persisting the
// result is the caller's job. The input snapshot is not mutated.
//
// Failure order matches the route contract: unreachable edge first
// (ErrInvalidTransition), then role check (ErrForbidden), then entry
// validations (ErrValidation).
func TransitionJob(job models.Job, target models.JobStatus, actor Actor, reason string, now time.Time) (models.Job, error) {
	from := job.Status

	if !LegalEdge(from, target) {
		return job, invalidTransitionf("cannot move job from %s to %s", from, target)
	}
	if !Can(actor, from, target) {
		return job, forbiddenf("role %s may not move job from %s to %s", actor.Role, from, target)
	}

	switch target {
	case models.JobStatusScheduled:
		if job.CrewScheduledDate == nil {
			return job, validationf("crew_scheduled_date must be set before the job can be scheduled")
		}
	case models.JobStatusStuck:
		if reason == "" {
			return job, validationf("a reason is required to mark a job stuck")
		}
	}

	updated := job
	updated.Status = target
	updated.UpdatedAt = now

	// Leaving stuck always clears the reason; it only exists while stuck.
	if from == models.JobStatusStuck {
		updated.StuckReason = nil
	}

	switch target {
	case models.JobStatusPreFielding:
		t := now
		updated.PreFieldDate = &t
	case models.JobStatusInProgress:
		t := now
		updated.WorkStartedAt = &t
	case models.JobStatusSubmitted:
		t := now
		updated.SubmittedAt = &t
	case models.JobStatusBilled:
		t := now
		updated.BilledAt = &t
	case models.JobStatusInvoiced:
		t := now
		updated.InvoicedAt = &t
	case models.JobStatusStuck:
		t := now
		updated.StuckAt = &t
		r := reason
		updated.StuckReason = &r
	}

	return updated, nil
}

// AssignJob records crew assignment and schedule dates on a snapshot.
// Assignment never changes status; scheduling the job afterwards is a
// separate TransitionJob call.
func AssignJob(job models.Job, req models.AssignJobRequest, now time.Time) (models.Job, error) {
	if req.UserID == 0 {
		return job, validationf("user_id is required")
	}

	updated := job
	updated.AssignedTo = &req.UserID
	if req.UserName != "" {
		name := req.UserName
		updated.AssignedToName = &name
	}
	updated.CrewScheduledDate = req.CrewScheduledDate
	updated.CrewScheduledEndDate = req.CrewScheduledEndDate
	if req.AssignmentNotes != "" {
		notes := req.AssignmentNotes
		updated.AssignmentNotes = &notes
	}
	updated.UpdatedAt = now
	return updated, nil
}
