package repository

import (
	"context"
	"strconv"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lanoanh-osi/ServiceOps/internal/domain"
)

// ActionLogRepository appends and reads the mutation audit trail.
type ActionLogRepository interface {
	Append(ctx context.Context, entry *domain.ActionLog) error
	ListByTicket(ctx context.Context, ticketID string, limit int) ([]domain.ActionLog, error)
}

type actionLogRepository struct {
	pool *pgxpool.Pool
}

// NewActionLogRepository constructs repository.
func NewActionLogRepository(pool *pgxpool.Pool) ActionLogRepository {
	return &actionLogRepository{pool: pool}
}

func (r *actionLogRepository) Append(ctx context.Context, entry *domain.ActionLog) error {
	const query = `
        INSERT INTO action_logs (ticket_id, ticket_type, action, staff_code, email, success, message)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, created_at`
	var id int64
	if err := r.pool.QueryRow(ctx, query,
		entry.TicketID,
		string(entry.TicketType),
		string(entry.Action),
		entry.StaffCode,
		entry.Email,
		entry.Success,
		entry.Message,
	).Scan(&id, &entry.CreatedAt); err != nil {
		return err
	}
	entry.ID = strconv.FormatInt(id, 10)
	return nil
}

func (r *actionLogRepository) ListByTicket(ctx context.Context, ticketID string, limit int) ([]domain.ActionLog, error) {
	if limit <= 0 {
		limit = 50
	}
	const query = `
        SELECT id, ticket_id, ticket_type, action, staff_code, email, success, message, created_at
        FROM action_logs WHERE ticket_id=$1
        ORDER BY created_at DESC
        LIMIT $2`
	rows, err := r.pool.Query(ctx, query, ticketID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.ActionLog
	for rows.Next() {
		var (
			entry      domain.ActionLog
			id         int64
			ticketType string
			action     string
		)
		if err := rows.Scan(
			&id,
			&entry.TicketID,
			&ticketType,
			&action,
			&entry.StaffCode,
			&entry.Email,
			&entry.Success,
			&entry.Message,
			&entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		entry.ID = strconv.FormatInt(id, 10)
		entry.TicketType = domain.TicketType(ticketType)
		entry.Action = domain.ActionKind(action)
		result = append(result, entry)
	}
	return result, rows.Err()
}
