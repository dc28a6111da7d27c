package repositories

import (
	"context"

	"fieldops-backend/internal/models"
	"github.com/jackc/pgx/v5/pgxpool"
)

type AuditLogRepository struct {
	DB *pgxpool.Pool
}

func NewAuditLogRepository(db *pgxpool.Pool) *AuditLogRepository {
	return &AuditLogRepository{DB: db}
}

// Create records a workflow action
func (r *AuditLogRepository) Create(ctx context.Context, log *models.AuditLog) error {
	query := `
		INSERT INTO audit_logs (
			user_id, action_type, target_type, target_id,
			from_status, to_status, description, ip_address, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
	`

	_, err := r.DB.Exec(ctx, query,
		log.UserID, log.ActionType, log.TargetType, log.TargetID,
		log.FromStatus, log.ToStatus, log.Description, log.IPAddress,
	)

	return err
}

// ListByTarget retrieves the audit trail for one entity, newest first.
func (r *AuditLogRepository) ListByTarget(ctx context.Context, targetType string, targetID int) ([]*models.AuditLog, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT id, user_id, action_type, target_type, target_id,
		        from_status, to_status, description, ip_address, created_at
		 FROM audit_logs
		 WHERE target_type=$1 AND target_id=$2
		 ORDER BY created_at DESC`, targetType, targetID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []*models.AuditLog
	for rows.Next() {
		var l models.AuditLog
		err := rows.Scan(&l.ID, &l.UserID, &l.ActionType, &l.TargetType, &l.TargetID,
			&l.FromStatus, &l.ToStatus, &l.Description, &l.IPAddress, &l.CreatedAt)
		if err != nil {
			return nil, err
		}
		logs = append(logs, &l)
	}
	return logs, nil
}

// ListRecent retrieves the most recent actions across all entities.
func (r *AuditLogRepository) ListRecent(ctx context.Context, limit int) ([]*models.AuditLog, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.DB.Query(ctx,
		`SELECT id, user_id, action_type, target_type, target_id,
		        from_status, to_status, description, ip_address, created_at
		 FROM audit_logs ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []*models.AuditLog
	for rows.Next() {
		var l models.AuditLog
		err := rows.Scan(&l.ID, &l.UserID, &l.ActionType, &l.TargetType, &l.TargetID,
			&l.FromStatus, &l.ToStatus, &l.Description, &l.IPAddress, &l.CreatedAt)
		if err != nil {
			return nil, err
		}
		logs = append(logs, &l)
	}
	return logs, nil
}
