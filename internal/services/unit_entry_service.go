package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"fieldops-backend/internal/cache"
	"fieldops-backend/internal/models"
	"fieldops-backend/internal/repositories"
	"fieldops-backend/internal/timeutil"
	"fieldops-backend/internal/workflow"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type UnitEntryService struct {
	EntryRepo     *repositories.UnitEntryRepository
	PriceBookRepo *repositories.PriceBookRepository
	JobRepo       *repositories.JobRepository
	AuditRepo     *repositories.AuditLogRepository
}

func NewUnitEntryService(
	entryRepo *repositories.UnitEntryRepository,
	priceBookRepo *repositories.PriceBookRepository,
	jobRepo *repositories.JobRepository,
	auditRepo *repositories.AuditLogRepository,
) *UnitEntryService {
	return &UnitEntryService{
		EntryRepo:     entryRepo,
		PriceBookRepo: priceBookRepo,
		JobRepo:       jobRepo,
		AuditRepo:     auditRepo,
	}
}

func (s *UnitEntryService) getEntry(ctx context.Context, id int) (*models.UnitEntry, error) {
	entry, err := s.EntryRepo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: unit entry %d", workflow.ErrNotFound, id)
		}
		return nil, err
	}
	return entry, nil
}

// Create captures a new digital receipt in draft. The unit price is
// copied from the price book item here; later price-book edits never
// touch this entry.
func (s *UnitEntryService) Create(ctx context.Context, req *models.CreateUnitEntryRequest, actor workflow.Actor, companyID int) (*models.UnitEntry, error) {
	if _, err := s.JobRepo.Get(ctx, req.JobID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: job %d", workflow.ErrNotFound, req.JobID)
		}
		return nil, err
	}

	item, err := s.PriceBookRepo.Get(ctx, req.PriceBookItemID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: price book item %d", workflow.ErrNotFound, req.PriceBookItemID)
		}
		return nil, err
	}
	if !item.IsActive {
		return nil, fmt.Errorf("%w: price book item %s is inactive", workflow.ErrValidation, item.ItemCode)
	}

	entry, err := workflow.NewUnitEntry(*req, *item, actor, companyID, timeutil.Now())
	if err != nil {
		return nil, err
	}
	if err := s.EntryRepo.Create(ctx, &entry); err != nil {
		return nil, err
	}

	s.audit(ctx, actor, models.ActionCreate, entry.ID, nil, nil,
		fmt.Sprintf("Captured unit entry %s x %.2f on job %d", entry.ItemCode, entry.Quantity, entry.JobID))
	cache.InvalidateUnitEntryCaches(ctx)
	return &entry, nil
}

func (s *UnitEntryService) Get(ctx context.Context, id int) (*models.UnitEntry, error) {
	return s.getEntry(ctx, id)
}

// applyTransition runs one pure ledger operation against the current
// snapshot and persists the result.
func (s *UnitEntryService) applyTransition(
	ctx context.Context,
	id int,
	actor workflow.Actor,
	op func(models.UnitEntry) (models.UnitEntry, error),
	description string,
) (*models.UnitEntry, error) {
	entry, err := s.getEntry(ctx, id)
	if err != nil {
		return nil, err
	}

	updated, err := op(*entry)
	if err != nil {
		return nil, err
	}
	if err := s.EntryRepo.Update(ctx, &updated); err != nil {
		return nil, err
	}

	from := string(entry.Status)
	to := string(updated.Status)
	s.audit(ctx, actor, models.ActionTransition, id, &from, &to, description)
	cache.InvalidateUnitEntryCaches(ctx)
	return &updated, nil
}

func (s *UnitEntryService) Submit(ctx context.Context, id int, actor workflow.Actor) (*models.UnitEntry, error) {
	return s.applyTransition(ctx, id, actor, func(e models.UnitEntry) (models.UnitEntry, error) {
		return workflow.SubmitUnitEntry(e, actor, timeutil.Now())
	}, fmt.Sprintf("Unit entry %d submitted", id))
}

func (s *UnitEntryService) Verify(ctx context.Context, id int, notes string, actor workflow.Actor) (*models.UnitEntry, error) {
	return s.applyTransition(ctx, id, actor, func(e models.UnitEntry) (models.UnitEntry, error) {
		return workflow.VerifyUnitEntry(e, actor, notes, timeutil.Now())
	}, fmt.Sprintf("Unit entry %d verified", id))
}

func (s *UnitEntryService) Approve(ctx context.Context, id int, notes string, actor workflow.Actor) (*models.UnitEntry, error) {
	return s.applyTransition(ctx, id, actor, func(e models.UnitEntry) (models.UnitEntry, error) {
		return workflow.ApproveUnitEntry(e, actor, notes, timeutil.Now())
	}, fmt.Sprintf("Unit entry %d approved for billing", id))
}

func (s *UnitEntryService) Dispute(ctx context.Context, id int, req *models.DisputeUnitEntryRequest, actor workflow.Actor) (*models.UnitEntry, error) {
	entry, err := s.applyTransition(ctx, id, actor, func(e models.UnitEntry) (models.UnitEntry, error) {
		return workflow.DisputeUnitEntry(e, actor, req.Reason, models.DisputeCategory(req.Category), timeutil.Now())
	}, fmt.Sprintf("Unit entry %d disputed: %s", id, req.Reason))
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// Resolve closes an open dispute, reinstating the entry as submitted or
// verified per the reviewer's call.
func (s *UnitEntryService) Resolve(ctx context.Context, id int, reinstateTo string, actor workflow.Actor) (*models.UnitEntry, error) {
	return s.applyTransition(ctx, id, actor, func(e models.UnitEntry) (models.UnitEntry, error) {
		return workflow.ResolveDispute(e, actor, models.UnitEntryStatus(reinstateTo), timeutil.Now())
	}, fmt.Sprintf("Dispute on unit entry %d resolved", id))
}

// MarkInvoiced stamps an approved entry onto a billing claim.
func (s *UnitEntryService) MarkInvoiced(ctx context.Context, id int, claimID int, actor workflow.Actor) (*models.UnitEntry, error) {
	if claimID <= 0 {
		return nil, fmt.Errorf("%w: claim_id is required", workflow.ErrValidation)
	}
	return s.applyTransition(ctx, id, actor, func(e models.UnitEntry) (models.UnitEntry, error) {
		return workflow.MarkUnitEntryInvoiced(e, actor, claimID, timeutil.Now())
	}, fmt.Sprintf("Unit entry %d invoiced on claim %d", id, claimID))
}

// MarkPaid closes out an invoiced entry.
func (s *UnitEntryService) MarkPaid(ctx context.Context, id int, actor workflow.Actor) (*models.UnitEntry, error) {
	return s.applyTransition(ctx, id, actor, func(e models.UnitEntry) (models.UnitEntry, error) {
		return workflow.MarkUnitEntryPaid(e, actor, timeutil.Now())
	}, fmt.Sprintf("Unit entry %d paid", id))
}

// Adjust appends a quantity/total correction without changing status.
func (s *UnitEntryService) Adjust(ctx context.Context, id int, req *models.AdjustUnitEntryRequest, actor workflow.Actor) (*models.UnitEntry, error) {
	entry, err := s.getEntry(ctx, id)
	if err != nil {
		return nil, err
	}

	updated, err := workflow.AdjustUnitEntry(*entry, actor, *req, uuid.NewString, timeutil.Now())
	if err != nil {
		return nil, err
	}
	if err := s.EntryRepo.Update(ctx, &updated); err != nil {
		return nil, err
	}

	s.audit(ctx, actor, models.ActionAdjust, id, nil, nil,
		fmt.Sprintf("Unit entry %d adjusted from %.2f to %.2f: %s", id, entry.Quantity, req.NewQuantity, req.Reason))
	cache.InvalidateUnitEntryCaches(ctx)
	return &updated, nil
}

// SoftDelete hides an entry from default queries with a required reason.
func (s *UnitEntryService) SoftDelete(ctx context.Context, id int, reason string, actor workflow.Actor) (*models.UnitEntry, error) {
	entry, err := s.getEntry(ctx, id)
	if err != nil {
		return nil, err
	}

	updated, err := workflow.SoftDeleteUnitEntry(*entry, actor, reason, timeutil.Now())
	if err != nil {
		return nil, err
	}
	if err := s.EntryRepo.Update(ctx, &updated); err != nil {
		return nil, err
	}

	s.audit(ctx, actor, models.ActionDelete, id, nil, nil,
		fmt.Sprintf("Unit entry %d soft-deleted: %s", id, reason))
	cache.InvalidateUnitEntryCaches(ctx)
	return &updated, nil
}

func (s *UnitEntryService) GetByJob(ctx context.Context, jobID int, includeDeleted bool) ([]*models.UnitEntry, error) {
	return s.EntryRepo.GetByJob(ctx, jobID, includeDeleted)
}

// GetUnbilledByCompany serves the billing queue. The queue is cached
// under a unit_entries:* key so every ledger write invalidates it.
func (s *UnitEntryService) GetUnbilledByCompany(ctx context.Context, companyID int) ([]*models.UnitEntry, error) {
	key := fmt.Sprintf("unit_entries:unbilled:%d", companyID)
	if data, ok := cache.GetCached(ctx, key); ok {
		var entries []*models.UnitEntry
		if err := json.Unmarshal(data, &entries); err == nil {
			return entries, nil
		}
	}

	entries, err := s.EntryRepo.GetUnbilledByCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}
	if data, err := json.Marshal(entries); err == nil {
		cache.SetCached(ctx, key, data, 30*time.Second)
	}
	return entries, nil
}

func (s *UnitEntryService) GetDisputed(ctx context.Context, companyID int) ([]*models.UnitEntry, error) {
	return s.EntryRepo.GetDisputed(ctx, companyID)
}

func (s *UnitEntryService) audit(ctx context.Context, actor workflow.Actor, action string, entryID int, from, to *string, description string) {
	if s.AuditRepo == nil {
		return
	}
	id := entryID
	s.AuditRepo.Create(ctx, &models.AuditLog{
		UserID:      actor.UserID,
		ActionType:  action,
		TargetType:  "unit_entry",
		TargetID:    &id,
		FromStatus:  from,
		ToStatus:    to,
		Description: description,
	})
}
