package service

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/Freeeeeet/slot_planner/internal/calendar"
	"github.com/Freeeeeet/slot_planner/internal/model"
	"github.com/Freeeeeet/slot_planner/internal/render"
	"github.com/Freeeeeet/slot_planner/internal/repository"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

const DefaultBoardCacheTTL = 5 * time.Minute

// WeekView брони и постоянные слоты одной ISO-недели
type WeekView struct {
	Year         int                  `json:"year"`
	Week         int                  `json:"week"`
	Start        calendar.Date        `json:"start"`
	End          calendar.Date        `json:"end"`
	Reservations []*model.Reservation `json:"reservations"`
	FixedSlots   []*model.FixedSlot   `json:"fixed_slots"`
}

// BoardService собирает недельную сводку и рисует её PNG.
// Картинки кэшируются по (year, week, сегодня, поколение); любая мутация
// сбрасывает кэш и увеличивает поколение, поэтому картинка, отрисованная
// по данным до мутации, больше не будет найдена.
type BoardService struct {
	reservations repository.ReservationRepository
	fixedSlots   repository.FixedSlotRepository
	clock        calendar.Clock
	cache        *cache.Cache
	generation   atomic.Uint64
	logger       *zap.Logger
}

func NewBoardService(
	reservations repository.ReservationRepository,
	fixedSlots repository.FixedSlotRepository,
	clock calendar.Clock,
	ttl time.Duration,
	logger *zap.Logger,
) *BoardService {
	if clock == nil {
		clock = calendar.SystemClock{}
	}
	if ttl <= 0 {
		ttl = DefaultBoardCacheTTL
	}

	return &BoardService{
		reservations: reservations,
		fixedSlots:   fixedSlots,
		clock:        clock,
		cache:        cache.New(ttl, 2*ttl),
		logger:       logger,
	}
}

// Week возвращает брони недели и всё постоянное расписание
func (s *BoardService) Week(ctx context.Context, year, week int) (*WeekView, error) {
	if err := ValidateWeek(year, week); err != nil {
		return nil, err
	}

	period := calendar.WeekRange(year, week)

	reservations, err := s.reservations.List(ctx, &period)
	if err != nil {
		return nil, s.storageError("list week reservations", err)
	}

	fixedSlots, err := s.fixedSlots.List(ctx)
	if err != nil {
		return nil, s.storageError("list fixed slots", err)
	}

	return &WeekView{
		Year:         year,
		Week:         week,
		Start:        period.Start,
		End:          period.End,
		Reservations: reservations,
		FixedSlots:   fixedSlots,
	}, nil
}

// WeekImage возвращает PNG-доску недели
func (s *BoardService) WeekImage(ctx context.Context, year, week int) ([]byte, error) {
	if err := ValidateWeek(year, week); err != nil {
		return nil, err
	}

	today := calendar.DateOf(s.clock.Now())
	// поколение читается до обращения к хранилищу
	key := fmt.Sprintf("%04d-W%02d@%s#%d", year, week, today, s.generation.Load())

	if cached, ok := s.cache.Get(key); ok {
		s.logger.Debug("Week board cache hit", zap.String("key", key))
		return cached.([]byte), nil
	}

	view, err := s.Week(ctx, year, week)
	if err != nil {
		return nil, err
	}

	data, err := render.GenerateWeekBoard(render.Board{
		Year:         year,
		Week:         week,
		Today:        today,
		FixedSlots:   view.FixedSlots,
		Reservations: view.Reservations,
	})
	if err != nil {
		s.logger.Error("Failed to render week board",
			zap.Int("year", year),
			zap.Int("week", week),
			zap.Error(err))
		return nil, fmt.Errorf("render week board: %w", err)
	}

	s.cache.SetDefault(key, data)

	s.logger.Debug("Week board rendered",
		zap.String("key", key),
		zap.Int("bytes", len(data)))

	return data, nil
}

// Invalidate сбрасывает все закэшированные доски
func (s *BoardService) Invalidate() {
	s.generation.Add(1)
	s.cache.Flush()
}

func (s *BoardService) storageError(op string, err error) error {
	s.logger.Error("Board storage failure", zap.String("op", op), zap.Error(err))
	return &StorageError{Op: op, Err: err}
}
