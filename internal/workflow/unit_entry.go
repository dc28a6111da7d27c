package workflow

import (
	"time"

	"fieldops-backend/internal/models"
)

// NewUnitEntry validates a capture request against a locked price-book
// item and builds the draft receipt. UnitPrice is copied from the item
// here and never read from the price book again.
func NewUnitEntry(req models.CreateUnitEntryRequest, item models.PriceBookItem, actor Actor, companyID int, now time.Time) (models.UnitEntry, error) {
	var entry models.UnitEntry

	if req.JobID == 0 {
		return entry, validationf("job_id is required")
	}
	if req.Quantity <= 0 {
		return entry, validationf("quantity must be greater than zero")
	}
	if req.Location == nil {
		return entry, validationf("a GPS location is required at capture time")
	}
	if req.Location.CapturedAt.IsZero() {
		return entry, validationf("location.captured_at is required")
	}
	if len(req.Photos) == 0 {
		if !req.PhotoWaived {
			return entry, validationf("at least one photo is required unless the photo requirement is waived")
		}
		if req.PhotoWaiveReason == "" {
			return entry, validationf("a waiver reason is required when photos are waived")
		}
	}
	switch req.PerformedBy.Tier {
	case models.TierPrime, models.TierSub, models.TierSubOfSub:
	default:
		return entry, validationf("performed_by.tier must be one of prime, sub, sub_of_sub")
	}

	entry = models.UnitEntry{
		CompanyID:       companyID,
		JobID:           req.JobID,
		PriceBookItemID: item.ID,
		ItemCode:        item.ItemCode,
		Description:     item.Description,
		Status:          models.UnitEntryDraft,
		Quantity:        req.Quantity,
		UnitPrice:       item.UnitPrice,
		TotalAmount:     req.Quantity * item.UnitPrice,
		Location:        *req.Location,
		Photos:          req.Photos,
		PhotoWaived:     req.PhotoWaived,
		PerformedBy:     req.PerformedBy,
		Adjustments:     []models.Adjustment{},
		CreatedByUserID: actor.UserID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if req.PhotoWaived {
		entry.PhotoWaiveReason = req.PhotoWaiveReason
		waivedBy := actor.UserID
		entry.PhotoWaivedBy = &waivedBy
	}
	return entry, nil
}

func requireLive(entry models.UnitEntry) error {
	if entry.IsDeleted {
		return validationf("unit entry %d is deleted", entry.ID)
	}
	return nil
}

// SubmitUnitEntry moves a draft receipt into review.
func SubmitUnitEntry(entry models.UnitEntry, actor Actor, now time.Time) (models.UnitEntry, error) {
	if err := requireLive(entry); err != nil {
		return entry, err
	}
	if !CanUnitAction(actor, UnitActionSubmit) {
		return entry, forbiddenf("role %s may not submit unit entries", actor.Role)
	}
	if entry.Status != models.UnitEntryDraft {
		return entry, invalidTransitionf("unit entry %d is %s, only draft entries can be submitted", entry.ID, entry.Status)
	}
	updated := entry
	updated.Status = models.UnitEntrySubmitted
	t := now
	updated.SubmittedAt = &t
	by := actor.UserID
	updated.SubmittedBy = &by
	updated.UpdatedAt = now
	return updated, nil
}

// VerifyUnitEntry records GF field verification of a submitted receipt.
func VerifyUnitEntry(entry models.UnitEntry, actor Actor, notes string, now time.Time) (models.UnitEntry, error) {
	if err := requireLive(entry); err != nil {
		return entry, err
	}
	if !CanUnitAction(actor, UnitActionVerify) {
		return entry, forbiddenf("role %s may not verify unit entries", actor.Role)
	}
	if entry.Status != models.UnitEntrySubmitted {
		return entry, invalidTransitionf("unit entry %d is %s, only submitted entries can be verified", entry.ID, entry.Status)
	}
	updated := entry
	updated.Status = models.UnitEntryVerified
	t := now
	updated.VerifiedAt = &t
	by := actor.UserID
	updated.VerifiedBy = &by
	updated.VerificationNotes = notes
	updated.UpdatedAt = now
	return updated, nil
}

// ApproveUnitEntry marks a verified receipt ready for billing.
func ApproveUnitEntry(entry models.UnitEntry, actor Actor, notes string, now time.Time) (models.UnitEntry, error) {
	if err := requireLive(entry); err != nil {
		return entry, err
	}
	if !CanUnitAction(actor, UnitActionApprove) {
		return entry, forbiddenf("role %s may not approve unit entries", actor.Role)
	}
	if entry.Status != models.UnitEntryVerified {
		return entry, invalidTransitionf("unit entry %d is %s, only verified entries can be approved", entry.ID, entry.Status)
	}
	updated := entry
	updated.Status = models.UnitEntryApproved
	t := now
	updated.ApprovedAt = &t
	by := actor.UserID
	updated.ApprovedBy = &by
	updated.ApprovalNotes = notes
	updated.UpdatedAt = now
	return updated, nil
}

// DisputeUnitEntry opens a dispute on a submitted or verified receipt.
// The entry stays disputed until an explicit resolution; resolution is
// recorded via DisputeResolvedAt, not a separate status.
func DisputeUnitEntry(entry models.UnitEntry, actor Actor, reason string, category models.DisputeCategory, now time.Time) (models.UnitEntry, error) {
	if err := requireLive(entry); err != nil {
		return entry, err
	}
	if !CanUnitAction(actor, UnitActionDispute) {
		return entry, forbiddenf("role %s may not dispute unit entries", actor.Role)
	}
	if entry.Status != models.UnitEntrySubmitted && entry.Status != models.UnitEntryVerified {
		return entry, invalidTransitionf("unit entry %d is %s, only submitted or verified entries can be disputed", entry.ID, entry.Status)
	}
	if reason == "" {
		return entry, validationf("a dispute reason is required")
	}
	if !models.ValidDisputeCategory(category) {
		return entry, validationf("unknown dispute category %q", category)
	}
	updated := entry
	updated.Status = models.UnitEntryDisputed
	updated.IsDisputed = true
	t := now
	updated.DisputedAt = &t
	by := actor.UserID
	updated.DisputedBy = &by
	updated.DisputeReason = reason
	cat := category
	updated.DisputeCategory = &cat
	updated.DisputeResolvedAt = nil
	updated.UpdatedAt = now
	return updated, nil
}

// ResolveDispute closes an open dispute and reinstates the entry on the
// main line. The reviewer chooses where it re-enters: submitted for
// re-verification or verified when the dispute was unfounded. IsDisputed
// stays true as history; open-dispute queries key off DisputeResolvedAt.
func ResolveDispute(entry models.UnitEntry, actor Actor, reinstateTo models.UnitEntryStatus, now time.Time) (models.UnitEntry, error) {
	if err := requireLive(entry); err != nil {
		return entry, err
	}
	if !CanUnitAction(actor, UnitActionResolve) {
		return entry, forbiddenf("role %s may not resolve disputes", actor.Role)
	}
	if entry.Status != models.UnitEntryDisputed {
		return entry, invalidTransitionf("unit entry %d is %s, only disputed entries can be resolved", entry.ID, entry.Status)
	}
	if entry.DisputeResolvedAt != nil {
		return entry, invalidTransitionf("dispute on unit entry %d is already resolved", entry.ID)
	}
	if reinstateTo != models.UnitEntrySubmitted && reinstateTo != models.UnitEntryVerified {
		return entry, validationf("a resolved entry can only re-enter as submitted or verified")
	}
	updated := entry
	updated.Status = reinstateTo
	t := now
	updated.DisputeResolvedAt = &t
	updated.UpdatedAt = now
	return updated, nil
}

// MarkUnitEntryInvoiced attaches the entry to a billing claim and moves
// it to invoiced. ClaimID is set once and never reassigned.
func MarkUnitEntryInvoiced(entry models.UnitEntry, actor Actor, claimID int, now time.Time) (models.UnitEntry, error) {
	if err := requireLive(entry); err != nil {
		return entry, err
	}
	if !CanUnitAction(actor, UnitActionInvoice) {
		return entry, forbiddenf("role %s may not invoice unit entries", actor.Role)
	}
	if entry.Status != models.UnitEntryApproved {
		return entry, invalidTransitionf("unit entry %d is %s, only approved entries can be invoiced", entry.ID, entry.Status)
	}
	if entry.ClaimID != nil {
		return entry, validationf("unit entry %d is already attached to claim %d", entry.ID, *entry.ClaimID)
	}
	updated := entry
	updated.Status = models.UnitEntryInvoiced
	c := claimID
	updated.ClaimID = &c
	t := now
	updated.InvoicedAt = &t
	updated.UpdatedAt = now
	return updated, nil
}

// MarkUnitEntryPaid records payment receipt for an invoiced entry.
func MarkUnitEntryPaid(entry models.UnitEntry, actor Actor, now time.Time) (models.UnitEntry, error) {
	if err := requireLive(entry); err != nil {
		return entry, err
	}
	if !CanUnitAction(actor, UnitActionPay) {
		return entry, forbiddenf("role %s may not mark unit entries paid", actor.Role)
	}
	if entry.Status != models.UnitEntryInvoiced {
		return entry, invalidTransitionf("unit entry %d is %s, only invoiced entries can be paid", entry.ID, entry.Status)
	}
	updated := entry
	updated.Status = models.UnitEntryPaid
	t := now
	updated.PaidAt = &t
	updated.UpdatedAt = now
	return updated, nil
}

// AdjustUnitEntry appends a quantity/total correction. Adjustments are
// the only path that may change Quantity or TotalAmount after capture,
// and each one carries the prior and new values. Status is untouched.
func AdjustUnitEntry(entry models.UnitEntry, actor Actor, req models.AdjustUnitEntryRequest, newID func() string, now time.Time) (models.UnitEntry, error) {
	if err := requireLive(entry); err != nil {
		return entry, err
	}
	if !CanUnitAction(actor, UnitActionAdjust) {
		return entry, forbiddenf("role %s may not adjust unit entries", actor.Role)
	}
	if req.Reason == "" {
		return entry, validationf("an adjustment reason is required")
	}
	if req.NewQuantity <= 0 {
		return entry, validationf("adjusted quantity must be greater than zero")
	}
	// Total defaults to the locked rate times the new quantity unless the
	// reviewer overrides it explicitly.
	if req.NewTotal == 0 {
		req.NewTotal = req.NewQuantity * entry.UnitPrice
	}

	updated := entry
	updated.Adjustments = make([]models.Adjustment, len(entry.Adjustments), len(entry.Adjustments)+1)
	copy(updated.Adjustments, entry.Adjustments)
	updated.Adjustments = append(updated.Adjustments, models.Adjustment{
		ID:               newID(),
		AdjustedBy:       actor.UserID,
		OriginalQuantity: entry.Quantity,
		NewQuantity:      req.NewQuantity,
		OriginalTotal:    entry.TotalAmount,
		NewTotal:         req.NewTotal,
		Reason:           req.Reason,
		AdjustedAt:       now,
	})
	updated.Quantity = req.NewQuantity
	updated.TotalAmount = req.NewTotal
	updated.UpdatedAt = now
	return updated, nil
}

// SoftDeleteUnitEntry hides an entry from default queries. Receipts are
// never hard-deleted; the row stays reachable via include-deleted reads.
func SoftDeleteUnitEntry(entry models.UnitEntry, actor Actor, reason string, now time.Time) (models.UnitEntry, error) {
	if entry.IsDeleted {
		return entry, validationf("unit entry %d is already deleted", entry.ID)
	}
	if !CanUnitAction(actor, UnitActionDelete) {
		return entry, forbiddenf("role %s may not delete unit entries", actor.Role)
	}
	if reason == "" {
		return entry, validationf("a delete reason is required")
	}
	updated := entry
	updated.IsDeleted = true
	t := now
	updated.DeletedAt = &t
	by := actor.UserID
	updated.DeletedBy = &by
	updated.DeleteReason = reason
	updated.UpdatedAt = now
	return updated, nil
}
