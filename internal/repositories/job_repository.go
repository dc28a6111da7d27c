package repositories

import (
	"context"
	"encoding/json"
	"fmt"

	"fieldops-backend/internal/models"
	"github.com/jackc/pgx/v5/pgxpool"
)

type JobRepository struct {
	DB *pgxpool.Pool
}

func NewJobRepository(db *pgxpool.Pool) *JobRepository {
	return &JobRepository{DB: db}
}

const jobColumns = `id, company_id, job_number, title, COALESCE(address, ''), status,
	assigned_to, assigned_to_name, assigned_to_gf,
	crew_scheduled_date, crew_scheduled_end_date, assignment_notes,
	stuck_reason, due_date, dependencies,
	pre_field_date, work_started_at, submitted_at, billed_at, invoiced_at, stuck_at,
	created_by_user_id, created_at, updated_at`

func (r *JobRepository) Create(ctx context.Context, j *models.Job) error {
	if j.Status == "" {
		j.Status = models.JobStatusNew
	}
	if j.Dependencies == nil {
		j.Dependencies = []models.Dependency{}
	}
	deps, err := json.Marshal(j.Dependencies)
	if err != nil {
		return fmt.Errorf("marshal dependencies: %w", err)
	}

	return r.DB.QueryRow(ctx,
		`INSERT INTO jobs(company_id, job_number, title, address, status, due_date, dependencies, created_by_user_id)
         VALUES($1, $2, $3, $4, $5, $6, $7, $8)
         RETURNING id, created_at, updated_at`,
		j.CompanyID, j.JobNumber, j.Title, j.Address, j.Status, j.DueDate, deps, j.CreatedByUserID,
	).Scan(&j.ID, &j.CreatedAt, &j.UpdatedAt)
}

func (r *JobRepository) scanJob(row interface{ Scan(...interface{}) error }) (*models.Job, error) {
	var job models.Job
	var deps []byte
	err := row.Scan(&job.ID, &job.CompanyID, &job.JobNumber, &job.Title, &job.Address, &job.Status,
		&job.AssignedTo, &job.AssignedToName, &job.AssignedToGF,
		&job.CrewScheduledDate, &job.CrewScheduledEndDate, &job.AssignmentNotes,
		&job.StuckReason, &job.DueDate, &deps,
		&job.PreFieldDate, &job.WorkStartedAt, &job.SubmittedAt, &job.BilledAt, &job.InvoicedAt, &job.StuckAt,
		&job.CreatedByUserID, &job.CreatedAt, &job.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(deps, &job.Dependencies); err != nil {
		return nil, fmt.Errorf("unmarshal dependencies for job %d: %w", job.ID, err)
	}
	if job.Dependencies == nil {
		job.Dependencies = []models.Dependency{}
	}
	return &job, nil
}

func (r *JobRepository) Get(ctx context.Context, id int) (*models.Job, error) {
	row := r.DB.QueryRow(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id=$1`, id)
	return r.scanJob(row)
}

// ListByCompany returns a company's jobs, newest first, optionally
// filtered to a single status.
func (r *JobRepository) ListByCompany(ctx context.Context, companyID int, status models.JobStatus) ([]*models.Job, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs WHERE company_id=$1`
	args := []interface{}{companyID}
	if status != "" {
		query += ` AND status=$2`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []*models.Job
	for rows.Next() {
		job, err := r.scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

// Update persists the full workflow state of a job: status, assignment,
// schedule, stuck fields, timestamps and the embedded dependency list.
// The write is a single statement, last-write-wins at the store.
func (r *JobRepository) Update(ctx context.Context, j *models.Job) error {
	deps, err := json.Marshal(j.Dependencies)
	if err != nil {
		return fmt.Errorf("marshal dependencies: %w", err)
	}

	_, err = r.DB.Exec(ctx,
		`UPDATE jobs SET
			status=$1, assigned_to=$2, assigned_to_name=$3, assigned_to_gf=$4,
			crew_scheduled_date=$5, crew_scheduled_end_date=$6, assignment_notes=$7,
			stuck_reason=$8, due_date=$9, dependencies=$10,
			pre_field_date=$11, work_started_at=$12, submitted_at=$13,
			billed_at=$14, invoiced_at=$15, stuck_at=$16,
			updated_at=CURRENT_TIMESTAMP
		 WHERE id=$17`,
		j.Status, j.AssignedTo, j.AssignedToName, j.AssignedToGF,
		j.CrewScheduledDate, j.CrewScheduledEndDate, j.AssignmentNotes,
		j.StuckReason, j.DueDate, deps,
		j.PreFieldDate, j.WorkStartedAt, j.SubmittedAt,
		j.BilledAt, j.InvoicedAt, j.StuckAt,
		j.ID)
	return err
}
