package workflow

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"fieldops-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var poleItem = models.PriceBookItem{
	ID:          7,
	CompanyID:   1,
	ItemCode:    "POLE-40-C2",
	Description: "Set 40ft class 2 pole",
	UnitPrice:   850.00,
}

func captureRequest() models.CreateUnitEntryRequest {
	return models.CreateUnitEntryRequest{
		JobID:           42,
		PriceBookItemID: poleItem.ID,
		Quantity:        2,
		Location: &models.GPSLocation{
			Latitude:   37.7749,
			Longitude:  -122.4194,
			Accuracy:   6.5,
			CapturedAt: time.Date(2025, 6, 2, 14, 30, 0, 0, time.UTC),
		},
		Photos: []models.EntryPhoto{{ID: "ph-1", StorageKey: "photos/ph-1.jpg"}},
		PerformedBy: models.PerformedBy{
			Tier:         models.TierSub,
			WorkCategory: "overhead",
		},
	}
}

func TestNewUnitEntry_LocksRateAtCapture(t *testing.T) {
	now := time.Now()
	entry, err := NewUnitEntry(captureRequest(), poleItem, crew, 1, now)
	require.NoError(t, err)

	assert.Equal(t, models.UnitEntryDraft, entry.Status)
	assert.Equal(t, poleItem.UnitPrice, entry.UnitPrice)
	assert.Equal(t, 2*poleItem.UnitPrice, entry.TotalAmount)
	assert.Equal(t, poleItem.ItemCode, entry.ItemCode)
	assert.Equal(t, crew.UserID, entry.CreatedByUserID)
	assert.Empty(t, entry.Adjustments)
}

func TestNewUnitEntry_Validation(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name   string
		mutate func(*models.CreateUnitEntryRequest)
	}{
		{"missing job", func(r *models.CreateUnitEntryRequest) { r.JobID = 0 }},
		{"zero quantity", func(r *models.CreateUnitEntryRequest) { r.Quantity = 0 }},
		{"negative quantity", func(r *models.CreateUnitEntryRequest) { r.Quantity = -1 }},
		{"missing location", func(r *models.CreateUnitEntryRequest) { r.Location = nil }},
		{"location without capture time", func(r *models.CreateUnitEntryRequest) {
			r.Location.CapturedAt = time.Time{}
		}},
		{"no photos and no waiver", func(r *models.CreateUnitEntryRequest) { r.Photos = nil }},
		{"waiver without reason", func(r *models.CreateUnitEntryRequest) {
			r.Photos = nil
			r.PhotoWaived = true
		}},
		{"bad contractor tier", func(r *models.CreateUnitEntryRequest) { r.PerformedBy.Tier = "vendor" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := captureRequest()
			tt.mutate(&req)
			_, err := NewUnitEntry(req, poleItem, crew, 1, now)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrValidation))
		})
	}
}

func TestNewUnitEntry_PhotoWaiver(t *testing.T) {
	req := captureRequest()
	req.Photos = nil
	req.PhotoWaived = true
	req.PhotoWaiveReason = "customer refused access, gate locked"

	entry, err := NewUnitEntry(req, poleItem, foreman, 1, time.Now())
	require.NoError(t, err)
	assert.True(t, entry.PhotoWaived)
	assert.Equal(t, "customer refused access, gate locked", entry.PhotoWaiveReason)
	require.NotNil(t, entry.PhotoWaivedBy)
	assert.Equal(t, foreman.UserID, *entry.PhotoWaivedBy)
}

func TestUnitEntry_HappyPathLedger(t *testing.T) {
	now := time.Now()
	entry, err := NewUnitEntry(captureRequest(), poleItem, crew, 1, now)
	require.NoError(t, err)

	entry, err = SubmitUnitEntry(entry, crew, now)
	require.NoError(t, err)
	assert.Equal(t, models.UnitEntrySubmitted, entry.Status)
	require.NotNil(t, entry.SubmittedBy)
	assert.Equal(t, crew.UserID, *entry.SubmittedBy)

	entry, err = VerifyUnitEntry(entry, gf, "verified on site", now)
	require.NoError(t, err)
	assert.Equal(t, models.UnitEntryVerified, entry.Status)
	assert.Equal(t, "verified on site", entry.VerificationNotes)

	entry, err = ApproveUnitEntry(entry, pm, "", now)
	require.NoError(t, err)
	assert.Equal(t, models.UnitEntryApproved, entry.Status)

	entry, err = MarkUnitEntryInvoiced(entry, pm, 311, now)
	require.NoError(t, err)
	assert.Equal(t, models.UnitEntryInvoiced, entry.Status)
	require.NotNil(t, entry.ClaimID)
	assert.Equal(t, 311, *entry.ClaimID)

	entry, err = MarkUnitEntryPaid(entry, pm, now)
	require.NoError(t, err)
	assert.Equal(t, models.UnitEntryPaid, entry.Status)
	assert.NotNil(t, entry.PaidAt)

	// The rate never moved through the whole ledger
	assert.Equal(t, poleItem.UnitPrice, entry.UnitPrice)
	assert.Equal(t, 2*poleItem.UnitPrice, entry.TotalAmount)
}

func TestUnitEntry_StatusPreconditions(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name string
		from models.UnitEntryStatus
		run  func(models.UnitEntry) error
	}{
		{"verify a draft", models.UnitEntryDraft, func(e models.UnitEntry) error {
			_, err := VerifyUnitEntry(e, gf, "", now)
			return err
		}},
		{"approve a submitted", models.UnitEntrySubmitted, func(e models.UnitEntry) error {
			_, err := ApproveUnitEntry(e, pm, "", now)
			return err
		}},
		{"submit twice", models.UnitEntrySubmitted, func(e models.UnitEntry) error {
			_, err := SubmitUnitEntry(e, crew, now)
			return err
		}},
		{"invoice before approval", models.UnitEntryVerified, func(e models.UnitEntry) error {
			_, err := MarkUnitEntryInvoiced(e, pm, 1, now)
			return err
		}},
		{"pay before invoicing", models.UnitEntryApproved, func(e models.UnitEntry) error {
			_, err := MarkUnitEntryPaid(e, pm, now)
			return err
		}},
		{"dispute a draft", models.UnitEntryDraft, func(e models.UnitEntry) error {
			_, err := DisputeUnitEntry(e, gf, "wrong count", models.DisputeQuantity, now)
			return err
		}},
		{"dispute an approved", models.UnitEntryApproved, func(e models.UnitEntry) error {
			_, err := DisputeUnitEntry(e, gf, "wrong count", models.DisputeQuantity, now)
			return err
		}},
		{"resolve a non-disputed", models.UnitEntryVerified, func(e models.UnitEntry) error {
			_, err := ResolveDispute(e, pm, models.UnitEntrySubmitted, now)
			return err
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry := models.UnitEntry{ID: 9, Status: tt.from}
			err := tt.run(entry)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidTransition), "want ErrInvalidTransition, got %v", err)
		})
	}
}

func TestUnitEntry_RoleAuthorization(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name string
		run  func() error
	}{
		{"crew cannot verify", func() error {
			e := models.UnitEntry{Status: models.UnitEntrySubmitted}
			_, err := VerifyUnitEntry(e, crew, "", now)
			return err
		}},
		{"foreman cannot approve", func() error {
			e := models.UnitEntry{Status: models.UnitEntryVerified}
			_, err := ApproveUnitEntry(e, foreman, "", now)
			return err
		}},
		{"crew cannot dispute", func() error {
			e := models.UnitEntry{Status: models.UnitEntrySubmitted}
			_, err := DisputeUnitEntry(e, crew, "bad rate", models.DisputeRate, now)
			return err
		}},
		{"gf cannot invoice", func() error {
			e := models.UnitEntry{Status: models.UnitEntryApproved}
			_, err := MarkUnitEntryInvoiced(e, gf, 1, now)
			return err
		}},
		{"gf cannot delete", func() error {
			e := models.UnitEntry{Status: models.UnitEntryDraft}
			_, err := SoftDeleteUnitEntry(e, gf, "duplicate", now)
			return err
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.run()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrForbidden), "want ErrForbidden, got %v", err)
		})
	}
}

func TestUnitEntry_DisputeAndResolve(t *testing.T) {
	now := time.Now()
	entry := models.UnitEntry{ID: 9, Status: models.UnitEntryVerified}

	disputed, err := DisputeUnitEntry(entry, foreman, "count was 3 not 2", models.DisputeQuantity, now)
	require.NoError(t, err)
	assert.Equal(t, models.UnitEntryDisputed, disputed.Status)
	assert.True(t, disputed.IsDisputed)
	require.NotNil(t, disputed.DisputeCategory)
	assert.Equal(t, models.DisputeQuantity, *disputed.DisputeCategory)
	assert.Nil(t, disputed.DisputeResolvedAt)

	// Only submitted or verified are valid re-entry points
	_, err = ResolveDispute(disputed, pm, models.UnitEntryApproved, now)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidation))

	resolved, err := ResolveDispute(disputed, pm, models.UnitEntrySubmitted, now)
	require.NoError(t, err)
	assert.Equal(t, models.UnitEntrySubmitted, resolved.Status)
	assert.NotNil(t, resolved.DisputeResolvedAt)
	// Dispute history is kept on the record
	assert.True(t, resolved.IsDisputed)
	assert.Equal(t, "count was 3 not 2", resolved.DisputeReason)
}

func TestDisputeUnitEntry_RequiresReasonAndKnownCategory(t *testing.T) {
	now := time.Now()
	entry := models.UnitEntry{Status: models.UnitEntrySubmitted}

	_, err := DisputeUnitEntry(entry, gf, "", models.DisputeQuantity, now)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidation))

	_, err = DisputeUnitEntry(entry, gf, "something off", "pricing", now)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidation))
}

func TestAdjustUnitEntry(t *testing.T) {
	now := time.Now()
	entry := models.UnitEntry{
		ID:          9,
		Status:      models.UnitEntryVerified,
		Quantity:    2,
		UnitPrice:   850,
		TotalAmount: 1700,
		Adjustments: []models.Adjustment{},
	}

	ids := 0
	newID := func() string { ids++; return fmt.Sprintf("adj-%d", ids) }

	first, err := AdjustUnitEntry(entry, gf, models.AdjustUnitEntryRequest{
		NewQuantity: 3,
		Reason:      "third pole confirmed on walkdown",
	}, newID, now)
	require.NoError(t, err)

	// Total defaults to the locked rate when not supplied
	assert.Equal(t, float64(3), first.Quantity)
	assert.Equal(t, float64(2550), first.TotalAmount)
	assert.Equal(t, models.UnitEntryVerified, first.Status, "adjustment must not change status")
	require.Len(t, first.Adjustments, 1)
	assert.Equal(t, float64(2), first.Adjustments[0].OriginalQuantity)
	assert.Equal(t, float64(1700), first.Adjustments[0].OriginalTotal)

	second, err := AdjustUnitEntry(first, pm, models.AdjustUnitEntryRequest{
		NewQuantity: 3,
		NewTotal:    2400,
		Reason:      "negotiated rate relief",
	}, newID, now)
	require.NoError(t, err)
	require.Len(t, second.Adjustments, 2)
	assert.Equal(t, float64(2400), second.TotalAmount)

	// Trail is append-only and copy-on-write
	assert.Len(t, first.Adjustments, 1)
	assert.Len(t, entry.Adjustments, 0)

	_, err = AdjustUnitEntry(second, pm, models.AdjustUnitEntryRequest{NewQuantity: 3}, newID, now)
	require.Error(t, err, "reason is required")
	assert.True(t, errors.Is(err, ErrValidation))
}

func TestMarkUnitEntryInvoiced_RefusesReassignment(t *testing.T) {
	claim := 200
	entry := models.UnitEntry{ID: 9, Status: models.UnitEntryApproved, ClaimID: &claim}

	_, err := MarkUnitEntryInvoiced(entry, pm, 201, time.Now())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidation))
}

func TestSoftDeleteUnitEntry(t *testing.T) {
	now := time.Now()
	entry := models.UnitEntry{ID: 9, Status: models.UnitEntryDraft}

	_, err := SoftDeleteUnitEntry(entry, pm, "", now)
	require.Error(t, err, "reason is required")

	deleted, err := SoftDeleteUnitEntry(entry, pm, "duplicate capture", now)
	require.NoError(t, err)
	assert.True(t, deleted.IsDeleted)
	assert.Equal(t, "duplicate capture", deleted.DeleteReason)
	require.NotNil(t, deleted.DeletedBy)
	assert.Equal(t, pm.UserID, *deleted.DeletedBy)

	// Everything downstream refuses a deleted entry
	_, err = SubmitUnitEntry(deleted, crew, now)
	require.Error(t, err)
	_, err = AdjustUnitEntry(deleted, pm, models.AdjustUnitEntryRequest{NewQuantity: 1, Reason: "x"}, func() string { return "a" }, now)
	require.Error(t, err)
	_, err = SoftDeleteUnitEntry(deleted, pm, "again", now)
	require.Error(t, err)
}
