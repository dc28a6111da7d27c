package repositories

import (
	"context"

	"fieldops-backend/internal/models"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PriceBookRepository struct {
	DB *pgxpool.Pool
}

func NewPriceBookRepository(db *pgxpool.Pool) *PriceBookRepository {
	return &PriceBookRepository{DB: db}
}

func (r *PriceBookRepository) Create(ctx context.Context, item *models.PriceBookItem) error {
	return r.DB.QueryRow(ctx,
		`INSERT INTO price_book_items(company_id, item_code, description, unit, unit_price, is_active)
         VALUES($1, $2, $3, $4, $5, true)
         RETURNING id, is_active, created_at, updated_at`,
		item.CompanyID, item.ItemCode, item.Description, item.Unit, item.UnitPrice,
	).Scan(&item.ID, &item.IsActive, &item.CreatedAt, &item.UpdatedAt)
}

func (r *PriceBookRepository) Get(ctx context.Context, id int) (*models.PriceBookItem, error) {
	row := r.DB.QueryRow(ctx,
		`SELECT id, company_id, item_code, description, unit, unit_price, is_active, created_at, updated_at
         FROM price_book_items WHERE id=$1`, id)

	var item models.PriceBookItem
	err := row.Scan(&item.ID, &item.CompanyID, &item.ItemCode, &item.Description,
		&item.Unit, &item.UnitPrice, &item.IsActive, &item.CreatedAt, &item.UpdatedAt)
	return &item, err
}

// ListByCompany returns the active price book for a company.
func (r *PriceBookRepository) ListByCompany(ctx context.Context, companyID int) ([]*models.PriceBookItem, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT id, company_id, item_code, description, unit, unit_price, is_active, created_at, updated_at
         FROM price_book_items WHERE company_id=$1 AND is_active=true ORDER BY item_code`, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*models.PriceBookItem
	for rows.Next() {
		var item models.PriceBookItem
		err := rows.Scan(&item.ID, &item.CompanyID, &item.ItemCode, &item.Description,
			&item.Unit, &item.UnitPrice, &item.IsActive, &item.CreatedAt, &item.UpdatedAt)
		if err != nil {
			return nil, err
		}
		items = append(items, &item)
	}
	return items, nil
}

// UpdatePrice changes the going rate for new captures. Existing unit
// entries keep the price locked at their own capture time.
func (r *PriceBookRepository) UpdatePrice(ctx context.Context, id int, unitPrice float64) error {
	_, err := r.DB.Exec(ctx,
		`UPDATE price_book_items SET unit_price=$1, updated_at=CURRENT_TIMESTAMP WHERE id=$2`,
		unitPrice, id)
	return err
}
