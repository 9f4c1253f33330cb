package postgres

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/slot_planner/internal/model"
	"github.com/Freeeeeet/slot_planner/internal/repository"
	"github.com/Freeeeeet/slot_planner/internal/repository/base"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// FixedSlotRepository хранит постоянное расписание в таблице fixed_slots.
// ID выдаёт последовательность SERIAL: значения не переиспользуются после удаления.
type FixedSlotRepository struct {
	base   *base.Repository
	db     base.Querier
	logger *zap.Logger
}

// NewFixedSlotRepository создаёт новый репозиторий
func NewFixedSlotRepository(pool *pgxpool.Pool, logger *zap.Logger) *FixedSlotRepository {
	return &FixedSlotRepository{
		base:   base.NewRepository(pool),
		db:     pool,
		logger: logger,
	}
}

// WithQuerier возвращает копию репозитория, работающую через q
func (r *FixedSlotRepository) WithQuerier(q base.Querier) *FixedSlotRepository {
	clone := *r
	clone.db = q
	return &clone
}

// List получает все постоянные слоты
func (r *FixedSlotRepository) List(ctx context.Context) ([]*model.FixedSlot, error) {
	query := `
		SELECT id, day_of_week, time_slot, subject
		FROM fixed_slots
		ORDER BY day_of_week, time_slot
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list fixed slots: %w", err)
	}
	defer rows.Close()

	slots := make([]*model.FixedSlot, 0)
	for rows.Next() {
		slot := &model.FixedSlot{}
		err := rows.Scan(
			&slot.ID,
			&slot.DayOfWeek,
			&slot.TimeSlot,
			&slot.Subject,
		)
		if err != nil {
			return nil, fmt.Errorf("scan fixed slot: %w", err)
		}
		slots = append(slots, slot)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate fixed slots: %w", err)
	}

	return slots, nil
}

// Upsert создаёт слот или обновляет предмет; id существующего слота не меняется
func (r *FixedSlotRepository) Upsert(ctx context.Context, slot *model.FixedSlot) (bool, error) {
	query := `
		INSERT INTO fixed_slots (day_of_week, time_slot, subject)
		VALUES ($1, $2, $3)
		ON CONFLICT (day_of_week, time_slot) DO UPDATE SET subject = EXCLUDED.subject
		RETURNING id, (xmax = 0) AS inserted
	`

	var inserted bool
	err := r.db.QueryRow(
		ctx, query,
		slot.DayOfWeek,
		slot.TimeSlot,
		slot.Subject,
	).Scan(&slot.ID, &inserted)

	if err != nil {
		return false, fmt.Errorf("upsert fixed slot: %w", err)
	}

	return inserted, nil
}

// Delete удаляет слот по (day_of_week, time_slot)
func (r *FixedSlotRepository) Delete(ctx context.Context, key model.FixedSlotKey) (bool, error) {
	query := `DELETE FROM fixed_slots WHERE day_of_week = $1 AND time_slot = $2`

	affected, err := base.ExecAffected(ctx, r.db, query, key.DayOfWeek, key.TimeSlot)
	if err != nil {
		return false, fmt.Errorf("delete fixed slot: %w", err)
	}

	if affected == 0 {
		r.logger.Debug("Fixed slot to delete not found",
			zap.Int("day_of_week", key.DayOfWeek),
			zap.String("time_slot", key.TimeSlot))
	}

	return affected > 0, nil
}

// Ping проверяет доступность базы
func (r *FixedSlotRepository) Ping(ctx context.Context) error {
	return r.base.Ping(ctx)
}

var _ repository.FixedSlotRepository = (*FixedSlotRepository)(nil)
