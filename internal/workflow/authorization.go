package workflow

import "fieldops-backend/internal/models"

// Edge is one directed transition in the job status graph.
type Edge struct {
	From models.JobStatus
	To   models.JobStatus
}

// edgeRoles maps each legal edge to the minimal set of roles allowed to
// traverse it. The table is data so it can be audited and tested without
// reading the controller. Admin is always permitted and is listed
// explicitly anyway to keep the table self-describing.
var edgeRoles = map[Edge][]string{
	{models.JobStatusNew, models.JobStatusAssignedToGF}:                    {models.RolePM, models.RoleAdmin},
	{models.JobStatusAssignedToGF, models.JobStatusPreFielding}:            {models.RoleGF, models.RolePM, models.RoleAdmin},
	{models.JobStatusPreFielding, models.JobStatusScheduled}:               {models.RoleGF, models.RolePM, models.RoleAdmin},
	{models.JobStatusScheduled, models.JobStatusInProgress}:                {models.RoleForeman, models.RoleCrew, models.RoleGF, models.RolePM, models.RoleAdmin},
	{models.JobStatusInProgress, models.JobStatusPendingGFReview}:          {models.RoleForeman, models.RoleCrew, models.RoleGF, models.RolePM, models.RoleAdmin},
	{models.JobStatusPendingGFReview, models.JobStatusPendingPMApproval}:   {models.RoleGF, models.RolePM, models.RoleAdmin},
	{models.JobStatusPendingPMApproval, models.JobStatusReadyToSubmit}:     {models.RolePM, models.RoleAdmin},
	{models.JobStatusReadyToSubmit, models.JobStatusSubmitted}:             {models.RolePM, models.RoleAdmin},
	{models.JobStatusSubmitted, models.JobStatusBilled}:                    {models.RolePM, models.RoleAdmin},
	{models.JobStatusBilled, models.JobStatusInvoiced}:                     {models.RolePM, models.RoleAdmin},
	{models.JobStatusStuck, models.JobStatusPreFielding}:                   {models.RoleGF, models.RolePM, models.RoleAdmin},
	{models.JobStatusInvoiced, models.JobStatusArchived}:                   {models.RoleAdmin},
}

// stuckSources are the statuses that may branch to stuck. The three
// billing statuses and the terminals never go stuck.
var stuckSources = []models.JobStatus{
	models.JobStatusNew,
	models.JobStatusAssignedToGF,
	models.JobStatusPreFielding,
	models.JobStatusScheduled,
	models.JobStatusInProgress,
	models.JobStatusPendingGFReview,
	models.JobStatusPendingPMApproval,
	models.JobStatusReadyToSubmit,
}

func init() {
	// Stuck and cancel edges share role sets across all sources, so they
	// are generated rather than hand-listed.
	for _, from := range stuckSources {
		edgeRoles[Edge{from, models.JobStatusStuck}] = []string{
			models.RoleForeman, models.RoleCrew, models.RoleGF, models.RolePM, models.RoleAdmin,
		}
		edgeRoles[Edge{from, models.JobStatusCancelled}] = []string{
			models.RolePM, models.RoleAdmin,
		}
	}
}

// LegalEdge reports whether target is reachable from current in one step.
func LegalEdge(from, to models.JobStatus) bool {
	_, ok := edgeRoles[Edge{from, to}]
	return ok
}

// Can reports whether the actor's role may traverse the edge. Admin
// overrides are always permitted on legal edges.
func Can(actor Actor, from, to models.JobStatus) bool {
	roles, ok := edgeRoles[Edge{from, to}]
	if !ok {
		return false
	}
	if actor.Role == models.RoleAdmin {
		return true
	}
	for _, r := range roles {
		if actor.Role == r {
			return true
		}
	}
	return false
}

// UnitEntryAction names a ledger operation for authorization purposes.
type UnitEntryAction string

const (
	UnitActionSubmit  UnitEntryAction = "submit"
	UnitActionVerify  UnitEntryAction = "verify"
	UnitActionApprove UnitEntryAction = "approve"
	UnitActionDispute UnitEntryAction = "dispute"
	UnitActionResolve UnitEntryAction = "resolve"
	UnitActionAdjust  UnitEntryAction = "adjust"
	UnitActionDelete  UnitEntryAction = "delete"
	UnitActionInvoice UnitEntryAction = "invoice"
	UnitActionPay     UnitEntryAction = "pay"
)

// unitActionRoles gates ledger operations the same way edgeRoles gates
// job transitions: field roles capture and submit, GF verifies, PM owns
// billing readiness and money movement.
var unitActionRoles = map[UnitEntryAction][]string{
	UnitActionSubmit:  {models.RoleCrew, models.RoleForeman, models.RoleGF, models.RolePM, models.RoleAdmin},
	UnitActionVerify:  {models.RoleGF, models.RolePM, models.RoleAdmin},
	UnitActionApprove: {models.RolePM, models.RoleAdmin},
	UnitActionDispute: {models.RoleForeman, models.RoleGF, models.RolePM, models.RoleAdmin},
	UnitActionResolve: {models.RolePM, models.RoleAdmin},
	UnitActionAdjust:  {models.RoleGF, models.RolePM, models.RoleAdmin},
	UnitActionDelete:  {models.RolePM, models.RoleAdmin},
	UnitActionInvoice: {models.RolePM, models.RoleAdmin},
	UnitActionPay:     {models.RolePM, models.RoleAdmin},
}

// CanUnitAction reports whether the actor's role may perform the ledger
// action. Admin is always permitted.
func CanUnitAction(actor Actor, action UnitEntryAction) bool {
	if actor.Role == models.RoleAdmin {
		return true
	}
	roles, ok := unitActionRoles[action]
	if !ok {
		return false
	}
	for _, r := range roles {
		if actor.Role == r {
			return true
		}
	}
	return false
}
