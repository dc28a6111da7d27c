package services

import (
	"bytes"
	"context"
	"fmt"

	"fieldops-backend/internal/models"
	"fieldops-backend/internal/timeutil"

	"github.com/jung-kurt/gofpdf/v2"
)

// ReceiptPDFService renders a unit entry as a printable digital receipt
// for billing packets and dispute reviews.
type ReceiptPDFService struct{}

func NewReceiptPDFService() *ReceiptPDFService {
	return &ReceiptPDFService{}
}

// Render produces the PDF bytes for one entry. photoURLs are presigned
// GET links resolved by the caller; they are printed, not embedded.
func (s *ReceiptPDFService) Render(ctx context.Context, entry *models.UnitEntry, job *models.Job, photoURLs []string) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.AddPage()

	// Header
	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(190, 10, "Digital Receipt - Unit Price Work Record", "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(190, 6, fmt.Sprintf("Generated: %s", timeutil.Now().Format("02-Jan-2006 03:04 PM")), "", 1, "C", false, 0, "")
	pdf.Ln(5)

	// Job Info Box
	pdf.SetFillColor(240, 240, 240)
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(190, 8, "Work Order", "1", 1, "L", true, 0, "")

	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(95, 7, fmt.Sprintf("Job: %s", job.JobNumber), "LB", 0, "L", false, 0, "")
	pdf.CellFormat(95, 7, fmt.Sprintf("Status: %s", job.Status), "RB", 1, "L", false, 0, "")
	pdf.CellFormat(190, 7, fmt.Sprintf("Title: %s", job.Title), "LRB", 1, "L", false, 0, "")
	pdf.Ln(5)

	// Line Item
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(190, 8, "Line Item", "1", 1, "L", true, 0, "")
	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(95, 7, fmt.Sprintf("Item: %s", entry.ItemCode), "LB", 0, "L", false, 0, "")
	pdf.CellFormat(95, 7, fmt.Sprintf("Entry status: %s", entry.Status), "RB", 1, "L", false, 0, "")
	pdf.CellFormat(190, 7, entry.Description, "LRB", 1, "L", false, 0, "")
	pdf.CellFormat(63, 7, fmt.Sprintf("Quantity: %.2f", entry.Quantity), "LB", 0, "L", false, 0, "")
	pdf.CellFormat(63, 7, fmt.Sprintf("Unit price: $%.2f", entry.UnitPrice), "B", 0, "L", false, 0, "")
	pdf.CellFormat(64, 7, fmt.Sprintf("Total: $%.2f", entry.TotalAmount), "RB", 1, "L", false, 0, "")
	pdf.Ln(5)

	// Verification
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(190, 8, "Field Verification", "1", 1, "L", true, 0, "")
	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(95, 7, fmt.Sprintf("GPS: %.6f, %.6f", entry.Location.Latitude, entry.Location.Longitude), "LB", 0, "L", false, 0, "")
	pdf.CellFormat(95, 7, fmt.Sprintf("Accuracy: %.1fm (%s)", entry.Location.Accuracy, entry.GPSQuality()), "RB", 1, "L", false, 0, "")
	if entry.PhotoWaived {
		pdf.CellFormat(190, 7, fmt.Sprintf("Photos waived: %s", entry.PhotoWaiveReason), "LRB", 1, "L", false, 0, "")
	} else {
		pdf.CellFormat(190, 7, fmt.Sprintf("Photos on file: %d", len(entry.Photos)), "LRB", 1, "L", false, 0, "")
		for _, url := range photoURLs {
			pdf.SetFont("Arial", "", 8)
			pdf.CellFormat(190, 5, url, "LRB", 1, "L", false, 0, "")
		}
		pdf.SetFont("Arial", "", 11)
	}
	pdf.CellFormat(95, 7, fmt.Sprintf("Performed by: %s (%s)", entry.PerformedBy.ContractorName, entry.PerformedBy.Tier), "LB", 0, "L", false, 0, "")
	pdf.CellFormat(95, 7, fmt.Sprintf("Category: %s", entry.PerformedBy.WorkCategory), "RB", 1, "L", false, 0, "")
	pdf.Ln(5)

	// Adjustment history
	if len(entry.Adjustments) > 0 {
		pdf.SetFont("Arial", "B", 12)
		pdf.CellFormat(190, 8, "Adjustments", "1", 1, "L", true, 0, "")
		pdf.SetFont("Arial", "", 10)
		for _, adj := range entry.Adjustments {
			pdf.CellFormat(190, 6,
				fmt.Sprintf("%s: qty %.2f -> %.2f, total $%.2f -> $%.2f (%s)",
					adj.AdjustedAt.Format("02-Jan-2006"),
					adj.OriginalQuantity, adj.NewQuantity,
					adj.OriginalTotal, adj.NewTotal, adj.Reason),
				"LRB", 1, "L", false, 0, "")
		}
		pdf.Ln(5)
	}

	// Dispute trail
	if entry.IsDisputed {
		pdf.SetFont("Arial", "B", 12)
		pdf.CellFormat(190, 8, "Dispute", "1", 1, "L", true, 0, "")
		pdf.SetFont("Arial", "", 10)
		category := ""
		if entry.DisputeCategory != nil {
			category = string(*entry.DisputeCategory)
		}
		pdf.CellFormat(190, 6, fmt.Sprintf("Category: %s - %s", category, entry.DisputeReason), "LRB", 1, "L", false, 0, "")
		if entry.DisputeResolvedAt != nil {
			pdf.CellFormat(190, 6, fmt.Sprintf("Resolved: %s", entry.DisputeResolvedAt.Format("02-Jan-2006 03:04 PM")), "LRB", 1, "L", false, 0, "")
		} else {
			pdf.CellFormat(190, 6, "Resolution: OPEN", "LRB", 1, "L", false, 0, "")
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render receipt pdf for entry %d: %w", entry.ID, err)
	}
	return buf.Bytes(), nil
}
