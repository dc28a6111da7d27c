package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"fieldops-backend/internal/cache"
	"fieldops-backend/internal/metrics"
	"fieldops-backend/internal/models"
	"fieldops-backend/internal/repositories"
	"fieldops-backend/internal/timeutil"
	"fieldops-backend/internal/workflow"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type JobService struct {
	JobRepo         *repositories.JobRepository
	AuditRepo       *repositories.AuditLogRepository
	TrainingCapture TrainingCapture
}

func NewJobService(jobRepo *repositories.JobRepository, auditRepo *repositories.AuditLogRepository, trainingCapture TrainingCapture) *JobService {
	return &JobService{
		JobRepo:         jobRepo,
		AuditRepo:       auditRepo,
		TrainingCapture: trainingCapture,
	}
}

func (s *JobService) getJob(ctx context.Context, id int) (*models.Job, error) {
	job, err := s.JobRepo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: job %d", workflow.ErrNotFound, id)
		}
		return nil, err
	}
	return job, nil
}

// CreateJob opens a new work order in status new.
func (s *JobService) CreateJob(ctx context.Context, req *models.CreateJobRequest, actor workflow.Actor, companyID int) (*models.Job, error) {
	if req.JobNumber == "" || req.Title == "" {
		return nil, fmt.Errorf("%w: job_number and title are required", workflow.ErrValidation)
	}

	job := &models.Job{
		CompanyID:       companyID,
		JobNumber:       req.JobNumber,
		Title:           req.Title,
		Address:         req.Address,
		Status:          models.JobStatusNew,
		DueDate:         req.DueDate,
		Dependencies:    []models.Dependency{},
		CreatedByUserID: actor.UserID,
	}
	if err := s.JobRepo.Create(ctx, job); err != nil {
		return nil, err
	}

	s.audit(ctx, actor, models.ActionCreate, job.ID, nil, nil,
		fmt.Sprintf("Created job %s", job.JobNumber))
	cache.InvalidateJobCaches(ctx)
	return job, nil
}

func (s *JobService) GetJob(ctx context.Context, id int) (*models.Job, error) {
	return s.getJob(ctx, id)
}

// ListJobs serves the board read. The list is cached briefly under a
// jobs:* key; every write path invalidates the pattern.
func (s *JobService) ListJobs(ctx context.Context, companyID int, status models.JobStatus) ([]*models.Job, error) {
	key := fmt.Sprintf("jobs:list:%d:%s", companyID, status)
	if data, ok := cache.GetCached(ctx, key); ok {
		var jobs []*models.Job
		if err := json.Unmarshal(data, &jobs); err == nil {
			return jobs, nil
		}
	}

	jobs, err := s.JobRepo.ListByCompany(ctx, companyID, status)
	if err != nil {
		return nil, err
	}
	if data, err := json.Marshal(jobs); err == nil {
		cache.SetCached(ctx, key, data, 30*time.Second)
	}
	return jobs, nil
}

// TransitionStatus validates and applies one status transition. The raw
// status may be a legacy alias; it is normalized here, at the boundary,
// so the transition table only ever sees canonical values.
func (s *JobService) TransitionStatus(ctx context.Context, jobID int, rawStatus string, reason string, actor workflow.Actor) (*models.Job, error) {
	if rawStatus == "" {
		return nil, fmt.Errorf("%w: status is required", workflow.ErrValidation)
	}
	target, ok := models.NormalizeJobStatus(rawStatus)
	if !ok {
		return nil, fmt.Errorf("%w: unknown status %q", workflow.ErrValidation, rawStatus)
	}

	job, err := s.getJob(ctx, jobID)
	if err != nil {
		return nil, err
	}

	updated, err := workflow.TransitionJob(*job, target, actor, reason, timeutil.Now())
	if err != nil {
		return nil, err
	}
	if err := s.JobRepo.Update(ctx, &updated); err != nil {
		return nil, err
	}

	from := string(job.Status)
	to := string(updated.Status)
	recordJobTransition(from, to)
	s.auditTransition(ctx, actor, jobID, &from, &to,
		fmt.Sprintf("Job %s moved from %s to %s", job.JobNumber, from, to))
	cache.InvalidateJobCaches(ctx)
	return &updated, nil
}

// recordJobTransition counts a committed transition. The from label is
// the status the job actually left, never the requested target.
func recordJobTransition(from, to string) {
	metrics.JobTransitionsTotal.WithLabelValues(from, to).Inc()
}

// Assign sets the crew and schedule window. Status is untouched;
// scheduling the job is a separate transition.
func (s *JobService) Assign(ctx context.Context, jobID int, req *models.AssignJobRequest, actor workflow.Actor) (*models.Job, error) {
	job, err := s.getJob(ctx, jobID)
	if err != nil {
		return nil, err
	}

	updated, err := workflow.AssignJob(*job, *req, timeutil.Now())
	if err != nil {
		return nil, err
	}
	if err := s.JobRepo.Update(ctx, &updated); err != nil {
		return nil, err
	}

	s.audit(ctx, actor, models.ActionAssign, jobID, nil, nil,
		fmt.Sprintf("Assigned job %s to user %d", job.JobNumber, req.UserID))
	cache.InvalidateJobCaches(ctx)
	return &updated, nil
}

// AddDependency attaches a single pre-field item outside the checklist
// flow (e.g. discovered on site).
func (s *JobService) AddDependency(ctx context.Context, jobID int, req *models.CreateDependencyRequest, actor workflow.Actor) (*models.Job, error) {
	depType := models.DependencyType(req.Type)
	label, known := models.DependencyLabels[depType]
	if !known {
		return nil, fmt.Errorf("%w: unknown dependency type %q", workflow.ErrValidation, req.Type)
	}

	job, err := s.getJob(ctx, jobID)
	if err != nil {
		return nil, err
	}

	description := req.Description
	if description == "" {
		description = label
	}
	now := timeutil.Now()
	job.Dependencies = append(job.Dependencies, models.Dependency{
		ID:           uuid.NewString(),
		Type:         depType,
		Description:  description,
		Status:       models.DependencyRequired,
		Notes:        req.Notes,
		TicketNumber: req.TicketNumber,
		CreatedAt:    now,
		UpdatedAt:    now,
	})

	if err := s.JobRepo.Update(ctx, job); err != nil {
		return nil, err
	}
	cache.InvalidateJobCaches(ctx)
	return job, nil
}

// CycleDependency advances a dependency through required -> scheduled ->
// not_required -> required. Scheduling requires a date from the caller.
func (s *JobService) CycleDependency(ctx context.Context, jobID int, dependencyID string, req *models.UpdateDependencyRequest, actor workflow.Actor) (*models.Job, error) {
	job, err := s.getJob(ctx, jobID)
	if err != nil {
		return nil, err
	}

	updated, err := workflow.CycleDependency(*job, dependencyID, req.ScheduledDate, timeutil.Now())
	if err != nil {
		return nil, err
	}

	// Notes and ticket number ride along with the cycle when provided.
	for i := range updated.Dependencies {
		if updated.Dependencies[i].ID != dependencyID {
			continue
		}
		if req.Notes != "" {
			updated.Dependencies[i].Notes = req.Notes
		}
		if req.TicketNumber != "" {
			updated.Dependencies[i].TicketNumber = req.TicketNumber
		}
	}

	if err := s.JobRepo.Update(ctx, &updated); err != nil {
		return nil, err
	}
	cache.InvalidateJobCaches(ctx)
	return &updated, nil
}

// ApplyPrefieldChecklist converts checklist answers into dependency
// records and moves the job into pre_fielding. Both land in a single
// document write, so the caller sees all of it or none of it. The
// training-capture emit happens after the write commits and is
// best-effort by contract.
func (s *JobService) ApplyPrefieldChecklist(ctx context.Context, jobID int, req *models.PrefieldChecklistRequest, actor workflow.Actor) (*models.Job, error) {
	if len(req.Decisions) == 0 {
		return nil, fmt.Errorf("%w: checklist decisions are required", workflow.ErrValidation)
	}

	job, err := s.getJob(ctx, jobID)
	if err != nil {
		return nil, err
	}

	now := timeutil.Now()
	deps, err := workflow.BuildDependencies(req.Decisions, uuid.NewString, now)
	if err != nil {
		return nil, err
	}

	staged := *job
	staged.Dependencies = make([]models.Dependency, 0, len(job.Dependencies)+len(deps))
	staged.Dependencies = append(staged.Dependencies, job.Dependencies...)
	staged.Dependencies = append(staged.Dependencies, deps...)

	updated, err := workflow.TransitionJob(staged, models.JobStatusPreFielding, actor, "", now)
	if err != nil {
		return nil, err
	}
	gf := actor.UserID
	updated.AssignedToGF = &gf

	if err := s.JobRepo.Update(ctx, &updated); err != nil {
		return nil, err
	}

	from := string(job.Status)
	to := string(updated.Status)
	recordJobTransition(from, to)
	s.auditTransition(ctx, actor, jobID, &from, &to,
		fmt.Sprintf("Pre-field checklist applied to job %s: %d dependencies created", job.JobNumber, len(deps)))
	cache.InvalidateJobCaches(ctx)

	if s.TrainingCapture != nil {
		s.TrainingCapture.CaptureChecklist(ctx, jobID, actor.UserID, req.Decisions)
	}
	return &updated, nil
}

func (s *JobService) audit(ctx context.Context, actor workflow.Actor, action string, jobID int, from, to *string, description string) {
	if s.AuditRepo == nil {
		return
	}
	id := jobID
	s.AuditRepo.Create(ctx, &models.AuditLog{
		UserID:      actor.UserID,
		ActionType:  action,
		TargetType:  "job",
		TargetID:    &id,
		FromStatus:  from,
		ToStatus:    to,
		Description: description,
	})
}

func (s *JobService) auditTransition(ctx context.Context, actor workflow.Actor, jobID int, from, to *string, description string) {
	s.audit(ctx, actor, models.ActionTransition, jobID, from, to, description)
}
