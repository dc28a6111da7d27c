package workflow

import (
	"time"

	"fieldops-backend/internal/models"
)

// nextDependencyStatus is the fixed 3-cycle for pre-field items:
// required -> scheduled -> not_required -> required.
var nextDependencyStatus = map[models.DependencyStatus]models.DependencyStatus{
	models.DependencyRequired:    models.DependencyScheduled,
	models.DependencyScheduled:   models.DependencyNotRequired,
	models.DependencyNotRequired: models.DependencyRequired,
}

// CycleDependency advances one of the job's dependencies to the next
// state in the cycle and returns the updated job snapshot. Entering
// scheduled requires a caller-supplied date; leaving it clears the date.
func CycleDependency(job models.Job, dependencyID string, scheduledDate *time.Time, now time.Time) (models.Job, error) {
	idx := -1
	for i := range job.Dependencies {
		if job.Dependencies[i].ID == dependencyID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return job, notFoundf("dependency %s does not belong to job %d", dependencyID, job.ID)
	}

	current := job.Dependencies[idx].Status
	next, ok := nextDependencyStatus[current]
	if !ok {
		return job, invalidTransitionf("dependency %s has unknown status %s", dependencyID, current)
	}

	if next == models.DependencyScheduled && scheduledDate == nil {
		return job, validationf("a scheduled date is required to schedule dependency %s", dependencyID)
	}

	updated := job
	updated.Dependencies = make([]models.Dependency, len(job.Dependencies))
	copy(updated.Dependencies, job.Dependencies)

	dep := &updated.Dependencies[idx]
	dep.Status = next
	dep.UpdatedAt = now
	if next == models.DependencyScheduled {
		dep.ScheduledDate = scheduledDate
	} else {
		dep.ScheduledDate = nil
	}

	updated.UpdatedAt = now
	return updated, nil
}

// BuildDependencies converts a pre-field checklist into dependency
// records, one per checked item, all starting in required. Unknown item
// keys fail validation so a UI drift never writes junk types.
func BuildDependencies(decisions map[string]models.ChecklistDecision, newID func() string, now time.Time) ([]models.Dependency, error) {
	deps := make([]models.Dependency, 0, len(decisions))
	for key, decision := range decisions {
		depType := models.DependencyType(key)
		label, known := models.DependencyLabels[depType]
		if !known {
			return nil, validationf("unknown checklist item %q", key)
		}
		if !decision.Checked {
			continue
		}
		description := decision.Notes
		if description == "" {
			description = label
		}
		deps = append(deps, models.Dependency{
			ID:          newID(),
			Type:        depType,
			Description: description,
			Status:      models.DependencyRequired,
			Notes:       decision.Notes,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
	}
	return deps, nil
}
