package models

import "time"

// JobStatus is a canonical work-order status. Route payloads may still
// carry legacy values ("pending", "pre-field", ...); those are translated
// through NormalizeJobStatus at the boundary and never stored.
type JobStatus string

const (
	JobStatusNew               JobStatus = "new"
	JobStatusAssignedToGF      JobStatus = "assigned_to_gf"
	JobStatusPreFielding       JobStatus = "pre_fielding"
	JobStatusScheduled         JobStatus = "scheduled"
	JobStatusInProgress        JobStatus = "in_progress"
	JobStatusPendingGFReview   JobStatus = "pending_gf_review"
	JobStatusPendingPMApproval JobStatus = "pending_pm_approval"
	JobStatusReadyToSubmit     JobStatus = "ready_to_submit"
	JobStatusSubmitted         JobStatus = "submitted"
	JobStatusBilled            JobStatus = "billed"
	JobStatusInvoiced          JobStatus = "invoiced"
	JobStatusStuck             JobStatus = "stuck"
	JobStatusCancelled         JobStatus = "cancelled"
	JobStatusArchived          JobStatus = "archived"
)

// AllJobStatuses lists every canonical status, in workflow order.
var AllJobStatuses = []JobStatus{
	JobStatusNew,
	JobStatusAssignedToGF,
	JobStatusPreFielding,
	JobStatusScheduled,
	JobStatusInProgress,
	JobStatusPendingGFReview,
	JobStatusPendingPMApproval,
	JobStatusReadyToSubmit,
	JobStatusSubmitted,
	JobStatusBilled,
	JobStatusInvoiced,
	JobStatusStuck,
	JobStatusCancelled,
	JobStatusArchived,
}

// legacyJobStatuses maps status strings from the pre-rewrite data model
// onto the nearest canonical value. One-way: canonical values are never
// translated back.
var legacyJobStatuses = map[string]JobStatus{
	"pending":     JobStatusNew,
	"pre-field":   JobStatusPreFielding,
	"in-progress": JobStatusInProgress,
	"completed":   JobStatusPendingGFReview,
}

// NormalizeJobStatus translates a raw status string (canonical or legacy)
// into a canonical JobStatus. ok is false for unknown values.
func NormalizeJobStatus(raw string) (JobStatus, bool) {
	if legacy, ok := legacyJobStatuses[raw]; ok {
		return legacy, true
	}
	s := JobStatus(raw)
	for _, known := range AllJobStatuses {
		if s == known {
			return s, true
		}
	}
	return "", false
}

// DependencyType identifies a pre-field coordination item.
type DependencyType string

const (
	DependencyUSA              DependencyType = "usa"
	DependencyVegetation       DependencyType = "vegetation"
	DependencyTrafficControl   DependencyType = "traffic_control"
	DependencyNoParks          DependencyType = "no_parks"
	DependencyCWC              DependencyType = "cwc"
	DependencyAFWType          DependencyType = "afw_type"
	DependencySpecialEquipment DependencyType = "special_equipment"
	DependencyCivil            DependencyType = "civil"
)

// DependencyLabels provides the default description when a checklist item
// is checked without notes.
var DependencyLabels = map[DependencyType]string{
	DependencyUSA:              "USA utility locate required",
	DependencyVegetation:       "Vegetation clearance required",
	DependencyTrafficControl:   "Traffic control required",
	DependencyNoParks:          "No-parking posting required",
	DependencyCWC:              "CWC coordination required",
	DependencyAFWType:          "AFW type verification required",
	DependencySpecialEquipment: "Special equipment required",
	DependencyCivil:            "Civil work required",
}

// DependencyStatus is the 3-state cycle for a pre-field dependency.
type DependencyStatus string

const (
	DependencyRequired    DependencyStatus = "required"
	DependencyScheduled   DependencyStatus = "scheduled"
	DependencyNotRequired DependencyStatus = "not_required"
)

// Dependency is a pre-field coordination item embedded in a Job document.
type Dependency struct {
	ID            string           `json:"id"`
	Type          DependencyType   `json:"type"`
	Description   string           `json:"description"`
	Status        DependencyStatus `json:"status"`
	ScheduledDate *time.Time       `json:"scheduled_date,omitempty"`
	Notes         string           `json:"notes,omitempty"`
	TicketNumber  string           `json:"ticket_number,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

// Job is a unit of contracted field work.
type Job struct {
	ID                   int          `json:"id" db:"id"`
	CompanyID            int          `json:"company_id" db:"company_id"`
	JobNumber            string       `json:"job_number" db:"job_number"`
	Title                string       `json:"title" db:"title"`
	Address              string       `json:"address,omitempty" db:"address"`
	Status               JobStatus    `json:"status" db:"status"`
	AssignedTo           *int         `json:"assigned_to,omitempty" db:"assigned_to"`
	AssignedToName       *string      `json:"assigned_to_name,omitempty" db:"assigned_to_name"`
	AssignedToGF         *int         `json:"assigned_to_gf,omitempty" db:"assigned_to_gf"`
	CrewScheduledDate    *time.Time   `json:"crew_scheduled_date,omitempty" db:"crew_scheduled_date"`
	CrewScheduledEndDate *time.Time   `json:"crew_scheduled_end_date,omitempty" db:"crew_scheduled_end_date"`
	AssignmentNotes      *string      `json:"assignment_notes,omitempty" db:"assignment_notes"`
	StuckReason          *string      `json:"stuck_reason,omitempty" db:"stuck_reason"`
	DueDate              *time.Time   `json:"due_date,omitempty" db:"due_date"`
	Dependencies         []Dependency `json:"dependencies"`
	PreFieldDate         *time.Time   `json:"pre_field_date,omitempty" db:"pre_field_date"`
	WorkStartedAt        *time.Time   `json:"work_started_at,omitempty" db:"work_started_at"`
	SubmittedAt          *time.Time   `json:"submitted_at,omitempty" db:"submitted_at"`
	BilledAt             *time.Time   `json:"billed_at,omitempty" db:"billed_at"`
	InvoicedAt           *time.Time   `json:"invoiced_at,omitempty" db:"invoiced_at"`
	StuckAt              *time.Time   `json:"stuck_at,omitempty" db:"stuck_at"`
	CreatedByUserID      int          `json:"created_by_user_id" db:"created_by_user_id"`
	CreatedAt            time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt            time.Time    `json:"updated_at" db:"updated_at"`
}

// CreateJobRequest is the request body for creating a job.
type CreateJobRequest struct {
	JobNumber string     `json:"job_number"`
	Title     string     `json:"title"`
	Address   string     `json:"address"`
	DueDate   *time.Time `json:"due_date"`
}

// UpdateJobStatusRequest is the request body for a status transition.
type UpdateJobStatusRequest struct {
	Status string `json:"status"`
	Reason string `json:"reason,omitempty"`
}

// AssignJobRequest is the request body for crew assignment.
type AssignJobRequest struct {
	UserID               int        `json:"user_id"`
	UserName             string     `json:"user_name,omitempty"`
	CrewScheduledDate    *time.Time `json:"crew_scheduled_date"`
	CrewScheduledEndDate *time.Time `json:"crew_scheduled_end_date,omitempty"`
	AssignmentNotes      string     `json:"assignment_notes,omitempty"`
}

// CreateDependencyRequest is the request body for adding a dependency
// directly (outside the pre-field checklist flow).
type CreateDependencyRequest struct {
	Type         string `json:"type"`
	Description  string `json:"description"`
	Notes        string `json:"notes"`
	TicketNumber string `json:"ticket_number"`
}

// UpdateDependencyRequest advances a dependency through its cycle.
// ScheduledDate is required when the next state is "scheduled".
type UpdateDependencyRequest struct {
	ScheduledDate *time.Time `json:"scheduled_date,omitempty"`
	Notes         string     `json:"notes,omitempty"`
	TicketNumber  string     `json:"ticket_number,omitempty"`
}

// ChecklistDecision is one answer in a pre-field checklist submission.
type ChecklistDecision struct {
	Checked bool   `json:"checked"`
	Notes   string `json:"notes"`
}

// PrefieldChecklistRequest maps checklist item keys (dependency types)
// to the decision recorded in the field.
type PrefieldChecklistRequest struct {
	Decisions map[string]ChecklistDecision `json:"decisions"`
}
