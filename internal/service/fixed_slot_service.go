package service

import (
	"context"
	"strings"

	"github.com/Freeeeeet/slot_planner/internal/model"
	"github.com/Freeeeeet/slot_planner/internal/repository"
	"go.uber.org/zap"
)

// FixedSlotInput ключ и предмет постоянного слота
type FixedSlotInput struct {
	DayOfWeek *int
	TimeSlot  string
	Subject   *string
}

type FixedSlotService struct {
	repo        repository.FixedSlotRepository
	invalidator Invalidator
	logger      *zap.Logger
}

func NewFixedSlotService(repo repository.FixedSlotRepository, invalidator Invalidator, logger *zap.Logger) *FixedSlotService {
	if invalidator == nil {
		invalidator = noopInvalidator{}
	}
	return &FixedSlotService{
		repo:        repo,
		invalidator: invalidator,
		logger:      logger,
	}
}

// List возвращает всё постоянное расписание
func (s *FixedSlotService) List(ctx context.Context) ([]*model.FixedSlot, error) {
	slots, err := s.repo.List(ctx)
	if err != nil {
		return nil, s.storageError("list fixed slots", err)
	}
	return slots, nil
}

// Upsert задаёт предмет слота; новый слот получает новый id, существующий сохраняет свой
func (s *FixedSlotService) Upsert(ctx context.Context, in FixedSlotInput) (*model.FixedSlot, bool, error) {
	key, err := fixedSlotKey(in)
	if err != nil {
		return nil, false, err
	}

	slot := &model.FixedSlot{
		DayOfWeek: key.DayOfWeek,
		TimeSlot:  key.TimeSlot,
		Subject:   in.Subject,
	}

	created, err := s.repo.Upsert(ctx, slot)
	if err != nil {
		return nil, false, s.storageError("save fixed slot", err)
	}

	s.invalidator.Invalidate()

	s.logger.Info("Fixed slot saved",
		zap.Int64("id", slot.ID),
		zap.Int("day_of_week", slot.DayOfWeek),
		zap.String("time_slot", slot.TimeSlot),
		zap.Bool("created", created))

	return slot, created, nil
}

// Delete удаляет слот; отсутствие слота ошибкой не является
func (s *FixedSlotService) Delete(ctx context.Context, in FixedSlotInput) error {
	key, err := fixedSlotKey(in)
	if err != nil {
		return err
	}

	removed, err := s.repo.Delete(ctx, key)
	if err != nil {
		return s.storageError("delete fixed slot", err)
	}

	if removed {
		s.invalidator.Invalidate()
	}

	s.logger.Info("Fixed slot deleted",
		zap.Int("day_of_week", key.DayOfWeek),
		zap.String("time_slot", key.TimeSlot),
		zap.Bool("existed", removed))

	return nil
}

func fixedSlotKey(in FixedSlotInput) (model.FixedSlotKey, error) {
	if in.DayOfWeek == nil {
		return model.FixedSlotKey{}, invalid("day_of_week", "is required")
	}
	if !model.ValidDayOfWeek(*in.DayOfWeek) {
		return model.FixedSlotKey{}, invalid("day_of_week", "must be between 0 and 6")
	}

	timeSlot := strings.TrimSpace(in.TimeSlot)
	if timeSlot == "" {
		return model.FixedSlotKey{}, invalid("time_slot", "is required")
	}

	return model.FixedSlotKey{DayOfWeek: *in.DayOfWeek, TimeSlot: timeSlot}, nil
}

func (s *FixedSlotService) storageError(op string, err error) error {
	s.logger.Error("Fixed slot storage failure", zap.String("op", op), zap.Error(err))
	return &StorageError{Op: op, Err: err}
}
