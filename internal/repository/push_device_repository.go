package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lanoanh-osi/ServiceOps/internal/domain"
)

// PushDeviceRepository persists push subscriptions registered at login.
type PushDeviceRepository interface {
	Upsert(ctx context.Context, device *domain.PushDevice) error
	Deactivate(ctx context.Context, playerID string) error
	DeactivateByStaff(ctx context.Context, email, staffCode string) (int64, error)
	ListActiveByStaff(ctx context.Context, staffCode string) ([]domain.PushDevice, error)
}

type pushDeviceRepository struct {
	pool *pgxpool.Pool
}

// NewPushDeviceRepository constructs repository.
func NewPushDeviceRepository(pool *pgxpool.Pool) PushDeviceRepository {
	return &pushDeviceRepository{pool: pool}
}

func (r *pushDeviceRepository) Upsert(ctx context.Context, device *domain.PushDevice) error {
	const query = `
        INSERT INTO push_devices (player_id, email, staff_code, active, updated_at)
        VALUES ($1,$2,$3,TRUE,NOW())
        ON CONFLICT (player_id) DO UPDATE
        SET email=EXCLUDED.email, staff_code=EXCLUDED.staff_code, active=TRUE, updated_at=NOW()
        RETURNING active, updated_at`
	return r.pool.QueryRow(ctx, query,
		device.PlayerID,
		device.Email,
		device.StaffCode,
	).Scan(&device.Active, &device.UpdatedAt)
}

func (r *pushDeviceRepository) Deactivate(ctx context.Context, playerID string) error {
	const query = `UPDATE push_devices SET active=FALSE, updated_at=NOW() WHERE player_id=$1`
	_, err := r.pool.Exec(ctx, query, playerID)
	return err
}

func (r *pushDeviceRepository) DeactivateByStaff(ctx context.Context, email, staffCode string) (int64, error) {
	const query = `
        UPDATE push_devices SET active=FALSE, updated_at=NOW()
        WHERE active AND ((staff_code<>'' AND staff_code=$1) OR (email<>'' AND email=$2))`
	tag, err := r.pool.Exec(ctx, query, staffCode, email)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *pushDeviceRepository) ListActiveByStaff(ctx context.Context, staffCode string) ([]domain.PushDevice, error) {
	const query = `
        SELECT player_id, email, staff_code, active, updated_at
        FROM push_devices WHERE staff_code=$1 AND active
        ORDER BY updated_at DESC`
	rows, err := r.pool.Query(ctx, query, staffCode)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.PushDevice
	for rows.Next() {
		var device domain.PushDevice
		if err := rows.Scan(
			&device.PlayerID,
			&device.Email,
			&device.StaffCode,
			&device.Active,
			&device.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, device)
	}
	return result, rows.Err()
}
