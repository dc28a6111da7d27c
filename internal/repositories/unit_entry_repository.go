package repositories

import (
	"context"
	"encoding/json"
	"fmt"

	"fieldops-backend/internal/models"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UnitEntryRepository struct {
	DB *pgxpool.Pool
}

func NewUnitEntryRepository(db *pgxpool.Pool) *UnitEntryRepository {
	return &UnitEntryRepository{DB: db}
}

const unitEntryColumns = `id, company_id, job_id, price_book_item_id, item_code, description, status,
	quantity, unit_price, total_amount,
	location, photos, photo_waived, COALESCE(photo_waive_reason, ''), photo_waived_by,
	performed_by, adjustments,
	created_by_user_id, submitted_at, submitted_by, verified_at, verified_by, COALESCE(verification_notes, ''),
	approved_at, approved_by, COALESCE(approval_notes, ''), invoiced_at, paid_at,
	is_disputed, disputed_at, disputed_by, COALESCE(dispute_reason, ''), dispute_category, dispute_resolved_at,
	claim_id, is_deleted, deleted_at, deleted_by, COALESCE(delete_reason, ''),
	created_at, updated_at`

func (r *UnitEntryRepository) Create(ctx context.Context, e *models.UnitEntry) error {
	location, err := json.Marshal(e.Location)
	if err != nil {
		return fmt.Errorf("marshal location: %w", err)
	}
	photos, err := json.Marshal(e.Photos)
	if err != nil {
		return fmt.Errorf("marshal photos: %w", err)
	}
	performedBy, err := json.Marshal(e.PerformedBy)
	if err != nil {
		return fmt.Errorf("marshal performed_by: %w", err)
	}
	adjustments, err := json.Marshal(e.Adjustments)
	if err != nil {
		return fmt.Errorf("marshal adjustments: %w", err)
	}

	return r.DB.QueryRow(ctx,
		`INSERT INTO unit_entries(
			company_id, job_id, price_book_item_id, item_code, description, status,
			quantity, unit_price, total_amount,
			location, photos, photo_waived, photo_waive_reason, photo_waived_by,
			performed_by, adjustments, created_by_user_id
		 ) VALUES($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)
		 RETURNING id, created_at, updated_at`,
		e.CompanyID, e.JobID, e.PriceBookItemID, e.ItemCode, e.Description, e.Status,
		e.Quantity, e.UnitPrice, e.TotalAmount,
		location, photos, e.PhotoWaived, nullIfEmpty(e.PhotoWaiveReason), e.PhotoWaivedBy,
		performedBy, adjustments, e.CreatedByUserID,
	).Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func (r *UnitEntryRepository) scanEntry(row interface{ Scan(...interface{}) error }) (*models.UnitEntry, error) {
	var e models.UnitEntry
	var location, photos, performedBy, adjustments []byte
	err := row.Scan(&e.ID, &e.CompanyID, &e.JobID, &e.PriceBookItemID, &e.ItemCode, &e.Description, &e.Status,
		&e.Quantity, &e.UnitPrice, &e.TotalAmount,
		&location, &photos, &e.PhotoWaived, &e.PhotoWaiveReason, &e.PhotoWaivedBy,
		&performedBy, &adjustments,
		&e.CreatedByUserID, &e.SubmittedAt, &e.SubmittedBy, &e.VerifiedAt, &e.VerifiedBy, &e.VerificationNotes,
		&e.ApprovedAt, &e.ApprovedBy, &e.ApprovalNotes, &e.InvoicedAt, &e.PaidAt,
		&e.IsDisputed, &e.DisputedAt, &e.DisputedBy, &e.DisputeReason, &e.DisputeCategory, &e.DisputeResolvedAt,
		&e.ClaimID, &e.IsDeleted, &e.DeletedAt, &e.DeletedBy, &e.DeleteReason,
		&e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(location, &e.Location); err != nil {
		return nil, fmt.Errorf("unmarshal location for entry %d: %w", e.ID, err)
	}
	if err := json.Unmarshal(photos, &e.Photos); err != nil {
		return nil, fmt.Errorf("unmarshal photos for entry %d: %w", e.ID, err)
	}
	if err := json.Unmarshal(performedBy, &e.PerformedBy); err != nil {
		return nil, fmt.Errorf("unmarshal performed_by for entry %d: %w", e.ID, err)
	}
	if err := json.Unmarshal(adjustments, &e.Adjustments); err != nil {
		return nil, fmt.Errorf("unmarshal adjustments for entry %d: %w", e.ID, err)
	}
	if e.Photos == nil {
		e.Photos = []models.EntryPhoto{}
	}
	if e.Adjustments == nil {
		e.Adjustments = []models.Adjustment{}
	}
	return &e, nil
}

func (r *UnitEntryRepository) Get(ctx context.Context, id int) (*models.UnitEntry, error) {
	row := r.DB.QueryRow(ctx, `SELECT `+unitEntryColumns+` FROM unit_entries WHERE id=$1`, id)
	return r.scanEntry(row)
}

func (r *UnitEntryRepository) queryEntries(ctx context.Context, query string, args ...interface{}) ([]*models.UnitEntry, error) {
	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*models.UnitEntry
	for rows.Next() {
		e, err := r.scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// GetByJob returns all entries for a job, excluding soft-deleted rows
// unless includeDeleted is set.
func (r *UnitEntryRepository) GetByJob(ctx context.Context, jobID int, includeDeleted bool) ([]*models.UnitEntry, error) {
	query := `SELECT ` + unitEntryColumns + ` FROM unit_entries WHERE job_id=$1`
	if !includeDeleted {
		query += ` AND is_deleted=false`
	}
	query += ` ORDER BY created_at DESC`
	return r.queryEntries(ctx, query, jobID)
}

// GetUnbilledByCompany returns approved entries not yet attached to a
// billing claim.
func (r *UnitEntryRepository) GetUnbilledByCompany(ctx context.Context, companyID int) ([]*models.UnitEntry, error) {
	return r.queryEntries(ctx,
		`SELECT `+unitEntryColumns+` FROM unit_entries
		 WHERE company_id=$1 AND status='approved' AND claim_id IS NULL AND is_deleted=false
		 ORDER BY created_at DESC`, companyID)
}

// GetDisputed returns entries with an open dispute. Resolved disputes
// (dispute_resolved_at set) drop out even though is_disputed stays true.
func (r *UnitEntryRepository) GetDisputed(ctx context.Context, companyID int) ([]*models.UnitEntry, error) {
	return r.queryEntries(ctx,
		`SELECT `+unitEntryColumns+` FROM unit_entries
		 WHERE company_id=$1 AND is_disputed=true AND dispute_resolved_at IS NULL AND is_deleted=false
		 ORDER BY disputed_at DESC`, companyID)
}

// Update persists the full workflow state of an entry in one statement.
func (r *UnitEntryRepository) Update(ctx context.Context, e *models.UnitEntry) error {
	adjustments, err := json.Marshal(e.Adjustments)
	if err != nil {
		return fmt.Errorf("marshal adjustments: %w", err)
	}

	_, err = r.DB.Exec(ctx,
		`UPDATE unit_entries SET
			status=$1, quantity=$2, total_amount=$3, adjustments=$4,
			submitted_at=$5, submitted_by=$6,
			verified_at=$7, verified_by=$8, verification_notes=$9,
			approved_at=$10, approved_by=$11, approval_notes=$12,
			invoiced_at=$13, paid_at=$14,
			is_disputed=$15, disputed_at=$16, disputed_by=$17,
			dispute_reason=$18, dispute_category=$19, dispute_resolved_at=$20,
			claim_id=$21, is_deleted=$22, deleted_at=$23, deleted_by=$24, delete_reason=$25,
			updated_at=CURRENT_TIMESTAMP
		 WHERE id=$26`,
		e.Status, e.Quantity, e.TotalAmount, adjustments,
		e.SubmittedAt, e.SubmittedBy,
		e.VerifiedAt, e.VerifiedBy, nullIfEmpty(e.VerificationNotes),
		e.ApprovedAt, e.ApprovedBy, nullIfEmpty(e.ApprovalNotes),
		e.InvoicedAt, e.PaidAt,
		e.IsDisputed, e.DisputedAt, e.DisputedBy,
		nullIfEmpty(e.DisputeReason), e.DisputeCategory, e.DisputeResolvedAt,
		e.ClaimID, e.IsDeleted, e.DeletedAt, e.DeletedBy, nullIfEmpty(e.DeleteReason),
		e.ID)
	return err
}
