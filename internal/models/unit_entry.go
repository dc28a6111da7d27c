package models

import "time"

// UnitEntryStatus is the billing state of a digital receipt.
type UnitEntryStatus string

const (
	UnitEntryDraft     UnitEntryStatus = "draft"
	UnitEntrySubmitted UnitEntryStatus = "submitted"
	UnitEntryVerified  UnitEntryStatus = "verified"
	UnitEntryDisputed  UnitEntryStatus = "disputed"
	UnitEntryApproved  UnitEntryStatus = "approved"
	UnitEntryInvoiced  UnitEntryStatus = "invoiced"
	UnitEntryPaid      UnitEntryStatus = "paid"
)

// DisputeCategory is the fixed set of reasons a receipt can be disputed.
type DisputeCategory string

const (
	DisputeQuantity    DisputeCategory = "quantity"
	DisputeRate        DisputeCategory = "rate"
	DisputeLocation    DisputeCategory = "location"
	DisputePhotos      DisputeCategory = "photos"
	DisputeWorkQuality DisputeCategory = "work_quality"
	DisputeDuplicate   DisputeCategory = "duplicate"
	DisputeOther       DisputeCategory = "other"
)

// ValidDisputeCategory reports whether c is one of the fixed categories.
func ValidDisputeCategory(c DisputeCategory) bool {
	switch c {
	case DisputeQuantity, DisputeRate, DisputeLocation, DisputePhotos,
		DisputeWorkQuality, DisputeDuplicate, DisputeOther:
		return true
	}
	return false
}

// GPSQuality buckets location accuracy: high < 10m, medium 10-50m, low > 50m.
type GPSQuality string

const (
	GPSQualityHigh   GPSQuality = "high"
	GPSQualityMedium GPSQuality = "medium"
	GPSQualityLow    GPSQuality = "low"
)

// ContractorTier identifies who performed the work in the sub chain.
type ContractorTier string

const (
	TierPrime    ContractorTier = "prime"
	TierSub      ContractorTier = "sub"
	TierSubOfSub ContractorTier = "sub_of_sub"
)

// GPSLocation is the capture-time device fix for a unit entry or photo.
type GPSLocation struct {
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	Accuracy   float64   `json:"accuracy"`
	CapturedAt time.Time `json:"captured_at"`
}

// EntryPhoto is a verification photo attached to a unit entry. StorageKey
// points into the photo object store; URLs are presigned on read.
type EntryPhoto struct {
	ID         string      `json:"id"`
	StorageKey string      `json:"storage_key"`
	Location   GPSLocation `json:"location"`
	CapturedAt time.Time   `json:"captured_at"`
	Caption    string      `json:"caption,omitempty"`
}

// PerformedBy records the contractor identity behind an entry.
type PerformedBy struct {
	Tier           ContractorTier `json:"tier"`
	WorkCategory   string         `json:"work_category"`
	ContractorName string         `json:"contractor_name,omitempty"`
	CrewID         string         `json:"crew_id,omitempty"`
	SubLicense     string         `json:"sub_license,omitempty"`
}

// Adjustment is one append-only quantity/total correction on an entry.
type Adjustment struct {
	ID               string    `json:"id"`
	AdjustedBy       int       `json:"adjusted_by"`
	OriginalQuantity float64   `json:"original_quantity"`
	NewQuantity      float64   `json:"new_quantity"`
	OriginalTotal    float64   `json:"original_total"`
	NewTotal         float64   `json:"new_total"`
	Reason           string    `json:"reason"`
	AdjustedAt       time.Time `json:"adjusted_at"`
}

// UnitEntry is a GPS- and photo-verified digital receipt for unit-price
// field work. UnitPrice is locked at capture time and never recalculated
// from the price book; only Adjustments may change Quantity/TotalAmount.
type UnitEntry struct {
	ID              int             `json:"id" db:"id"`
	CompanyID       int             `json:"company_id" db:"company_id"`
	JobID           int             `json:"job_id" db:"job_id"`
	PriceBookItemID int             `json:"price_book_item_id" db:"price_book_item_id"`
	ItemCode        string          `json:"item_code" db:"item_code"`
	Description     string          `json:"description" db:"description"`
	Status          UnitEntryStatus `json:"status" db:"status"`
	Quantity        float64         `json:"quantity" db:"quantity"`
	UnitPrice       float64         `json:"unit_price" db:"unit_price"`
	TotalAmount     float64         `json:"total_amount" db:"total_amount"`
	Location        GPSLocation     `json:"location"`
	Photos          []EntryPhoto    `json:"photos"`
	PhotoWaived     bool            `json:"photo_waived" db:"photo_waived"`
	PhotoWaiveReason string         `json:"photo_waive_reason,omitempty" db:"photo_waive_reason"`
	PhotoWaivedBy   *int            `json:"photo_waived_by,omitempty" db:"photo_waived_by"`
	PerformedBy     PerformedBy     `json:"performed_by"`
	Adjustments     []Adjustment    `json:"adjustments"`

	CreatedByUserID int        `json:"created_by_user_id" db:"created_by_user_id"`
	SubmittedAt     *time.Time `json:"submitted_at,omitempty" db:"submitted_at"`
	SubmittedBy     *int       `json:"submitted_by,omitempty" db:"submitted_by"`
	VerifiedAt      *time.Time `json:"verified_at,omitempty" db:"verified_at"`
	VerifiedBy      *int       `json:"verified_by,omitempty" db:"verified_by"`
	VerificationNotes string   `json:"verification_notes,omitempty" db:"verification_notes"`
	ApprovedAt      *time.Time `json:"approved_at,omitempty" db:"approved_at"`
	ApprovedBy      *int       `json:"approved_by,omitempty" db:"approved_by"`
	ApprovalNotes   string     `json:"approval_notes,omitempty" db:"approval_notes"`
	InvoicedAt      *time.Time `json:"invoiced_at,omitempty" db:"invoiced_at"`
	PaidAt          *time.Time `json:"paid_at,omitempty" db:"paid_at"`

	IsDisputed        bool             `json:"is_disputed" db:"is_disputed"`
	DisputedAt        *time.Time       `json:"disputed_at,omitempty" db:"disputed_at"`
	DisputedBy        *int             `json:"disputed_by,omitempty" db:"disputed_by"`
	DisputeReason     string           `json:"dispute_reason,omitempty" db:"dispute_reason"`
	DisputeCategory   *DisputeCategory `json:"dispute_category,omitempty" db:"dispute_category"`
	DisputeResolvedAt *time.Time       `json:"dispute_resolved_at,omitempty" db:"dispute_resolved_at"`

	ClaimID *int `json:"claim_id,omitempty" db:"claim_id"`

	IsDeleted    bool       `json:"is_deleted" db:"is_deleted"`
	DeletedAt    *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`
	DeletedBy    *int       `json:"deleted_by,omitempty" db:"deleted_by"`
	DeleteReason string     `json:"delete_reason,omitempty" db:"delete_reason"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// GPSQuality derives the accuracy bucket for the entry's location fix.
func (e *UnitEntry) GPSQuality() GPSQuality {
	switch {
	case e.Location.Accuracy < 10:
		return GPSQualityHigh
	case e.Location.Accuracy <= 50:
		return GPSQualityMedium
	default:
		return GPSQualityLow
	}
}

// HasValidGPS is true only for a high-quality fix.
func (e *UnitEntry) HasValidGPS() bool {
	return e.GPSQuality() == GPSQualityHigh
}

// CreateUnitEntryRequest is the request body for capturing a receipt.
type CreateUnitEntryRequest struct {
	JobID            int          `json:"job_id"`
	PriceBookItemID  int          `json:"price_book_item_id"`
	Quantity         float64      `json:"quantity"`
	Location         *GPSLocation `json:"location"`
	Photos           []EntryPhoto `json:"photos"`
	PhotoWaived      bool         `json:"photo_waived"`
	PhotoWaiveReason string       `json:"photo_waive_reason"`
	PerformedBy      PerformedBy  `json:"performed_by"`
}

// VerifyUnitEntryRequest carries reviewer notes for verify/approve.
type VerifyUnitEntryRequest struct {
	Notes string `json:"notes"`
}

// DisputeUnitEntryRequest opens a dispute on a submitted/verified entry.
type DisputeUnitEntryRequest struct {
	Reason   string `json:"reason"`
	Category string `json:"category"`
}

// ResolveDisputeRequest closes a dispute, reinstating the entry as
// submitted or verified.
type ResolveDisputeRequest struct {
	ReinstateTo string `json:"reinstate_to"`
}

// MarkInvoicedRequest stamps approved entries onto a billing claim.
type MarkInvoicedRequest struct {
	ClaimID int `json:"claim_id"`
}

// AdjustUnitEntryRequest appends a quantity/total correction.
type AdjustUnitEntryRequest struct {
	NewQuantity float64 `json:"new_quantity"`
	NewTotal    float64 `json:"new_total"`
	Reason      string  `json:"reason"`
}

// DeleteUnitEntryRequest soft-deletes an entry with a reason.
type DeleteUnitEntryRequest struct {
	Reason string `json:"reason"`
}
