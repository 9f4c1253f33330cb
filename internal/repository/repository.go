package repository

import (
	"context"
	"errors"

	"github.com/Freeeeeet/slot_planner/internal/calendar"
	"github.com/Freeeeeet/slot_planner/internal/model"
)

// ErrDuplicate запись с таким естественным ключом уже существует
var ErrDuplicate = errors.New("record already exists")

// ReservationRepository хранилище броней. Upsert атомарен на уровне контракта:
// проверка существования и запись выполняются как одна операция.
type ReservationRepository interface {
	// List возвращает брони в диапазоне дат (nil = все), упорядоченные по (date, time_slot)
	List(ctx context.Context, period *calendar.Range) ([]*model.Reservation, error)
	// Upsert создаёт или обновляет бронь по ключу, возвращает true если запись создана
	Upsert(ctx context.Context, reservation *model.Reservation) (bool, error)
	// Insert создаёт бронь или возвращает ErrDuplicate
	Insert(ctx context.Context, reservation *model.Reservation) error
	// Delete удаляет бронь по ключу, возвращает true если что-то удалено
	Delete(ctx context.Context, key model.ReservationKey) (bool, error)
	Ping(ctx context.Context) error
}

// FixedSlotRepository хранилище постоянного расписания
type FixedSlotRepository interface {
	// List возвращает все слоты, упорядоченные по (day_of_week, time_slot)
	List(ctx context.Context) ([]*model.FixedSlot, error)
	// Upsert создаёт слот с новым ID или обновляет предмет существующего
	Upsert(ctx context.Context, slot *model.FixedSlot) (bool, error)
	Delete(ctx context.Context, key model.FixedSlotKey) (bool, error)
	Ping(ctx context.Context) error
}
