package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/Freeeeeet/slot_planner/internal/calendar"
	"github.com/Freeeeeet/slot_planner/internal/model"
	"github.com/Freeeeeet/slot_planner/internal/repository"
	"github.com/Freeeeeet/slot_planner/internal/repository/base"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// ReservationRepository хранит брони в таблице reservations
type ReservationRepository struct {
	base   *base.Repository
	db     base.Querier
	logger *zap.Logger
}

// NewReservationRepository создаёт новый репозиторий броней
func NewReservationRepository(pool *pgxpool.Pool, logger *zap.Logger) *ReservationRepository {
	return &ReservationRepository{
		base:   base.NewRepository(pool),
		db:     pool,
		logger: logger,
	}
}

// WithQuerier возвращает копию репозитория, работающую через q (например, транзакцию)
func (r *ReservationRepository) WithQuerier(q base.Querier) *ReservationRepository {
	clone := *r
	clone.db = q
	return &clone
}

// List получает брони в диапазоне дат; nil означает все брони
func (r *ReservationRepository) List(ctx context.Context, period *calendar.Range) ([]*model.Reservation, error) {
	query := `
		SELECT id, name, date, time_slot
		FROM reservations
		ORDER BY date, time_slot
	`
	var args []any

	if period != nil {
		query = `
			SELECT id, name, date, time_slot
			FROM reservations
			WHERE date >= $1 AND date <= $2
			ORDER BY date, time_slot
		`
		args = append(args, period.Start.Time, period.End.Time)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list reservations: %w", err)
	}
	defer rows.Close()

	reservations := make([]*model.Reservation, 0)
	for rows.Next() {
		var (
			reservation model.Reservation
			date        time.Time
		)
		err := rows.Scan(
			&reservation.ID,
			&reservation.Name,
			&date,
			&reservation.TimeSlot,
		)
		if err != nil {
			return nil, fmt.Errorf("scan reservation: %w", err)
		}
		reservation.Date = calendar.DateOf(date)
		reservations = append(reservations, &reservation)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reservations: %w", err)
	}

	return reservations, nil
}

// Upsert создаёт бронь или заменяет имя у существующей одним выражением
func (r *ReservationRepository) Upsert(ctx context.Context, reservation *model.Reservation) (bool, error) {
	query := `
		INSERT INTO reservations (name, date, time_slot)
		VALUES ($1, $2, $3)
		ON CONFLICT (date, time_slot) DO UPDATE SET name = EXCLUDED.name
		RETURNING id, (xmax = 0) AS inserted
	`

	var inserted bool
	err := r.db.QueryRow(
		ctx, query,
		reservation.Name,
		reservation.Date.Time,
		reservation.TimeSlot,
	).Scan(&reservation.ID, &inserted)

	if err != nil {
		return false, fmt.Errorf("upsert reservation: %w", err)
	}

	return inserted, nil
}

// Insert создаёт бронь; занятый ключ даёт repository.ErrDuplicate
func (r *ReservationRepository) Insert(ctx context.Context, reservation *model.Reservation) error {
	query := `
		INSERT INTO reservations (name, date, time_slot)
		VALUES ($1, $2, $3)
		RETURNING id
	`

	err := r.db.QueryRow(
		ctx, query,
		reservation.Name,
		reservation.Date.Time,
		reservation.TimeSlot,
	).Scan(&reservation.ID)

	if err != nil {
		if base.IsUniqueViolation(err) {
			return repository.ErrDuplicate
		}
		return fmt.Errorf("insert reservation: %w", err)
	}

	return nil
}

// Delete удаляет бронь по ключу
func (r *ReservationRepository) Delete(ctx context.Context, key model.ReservationKey) (bool, error) {
	query := `DELETE FROM reservations WHERE date = $1 AND time_slot = $2`

	affected, err := base.ExecAffected(ctx, r.db, query, key.Date.Time, key.TimeSlot)
	if err != nil {
		return false, fmt.Errorf("delete reservation: %w", err)
	}

	if affected == 0 {
		r.logger.Debug("Reservation to delete not found",
			zap.String("date", key.Date.String()),
			zap.String("time_slot", key.TimeSlot))
	}

	return affected > 0, nil
}

// Ping проверяет доступность базы
func (r *ReservationRepository) Ping(ctx context.Context) error {
	return r.base.Ping(ctx)
}

var _ repository.ReservationRepository = (*ReservationRepository)(nil)
