package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Freeeeeet/slot_planner/internal/calendar"
	"github.com/Freeeeeet/slot_planner/internal/model"
	"github.com/Freeeeeet/slot_planner/internal/repository"
	"go.uber.org/zap"
)

// Invalidator сбрасывает производные данные (кэш досок) после мутаций
type Invalidator interface {
	Invalidate()
}

type noopInvalidator struct{}

func (noopInvalidator) Invalidate() {}

// ReservationOptions настройки сервиса броней
type ReservationOptions struct {
	Mode               model.ReservationMode
	Policy             model.WritePolicy
	LegacyMonthDefault bool // пустой фильтр = текущий месяц
	Clock              calendar.Clock
	Invalidator        Invalidator
}

// ReservationInput ключ и полезная нагрузка брони в одной из двух внешних форм.
// Указатели отличают отсутствующее поле от нулевого значения (day_of_week = 0).
type ReservationInput struct {
	Date      *string
	Year      *int
	Week      *int
	DayOfWeek *int
	TimeSlot  string
	Name      *string
	Text      *string
}

// ListFilter фильтр списка броней: (year, week), (year, month) или пустой
type ListFilter struct {
	Year  *int
	Week  *int
	Month *int
}

type ReservationService struct {
	repo               repository.ReservationRepository
	mode               model.ReservationMode
	policy             model.WritePolicy
	legacyMonthDefault bool
	clock              calendar.Clock
	invalidator        Invalidator
	logger             *zap.Logger
}

func NewReservationService(
	repo repository.ReservationRepository,
	opts ReservationOptions,
	logger *zap.Logger,
) *ReservationService {
	if opts.Mode == "" {
		opts.Mode = model.ModeWeekKeyed
	}
	if opts.Policy == "" {
		opts.Policy = model.PolicyUpsert
	}
	if opts.Clock == nil {
		opts.Clock = calendar.SystemClock{}
	}
	if opts.Invalidator == nil {
		opts.Invalidator = noopInvalidator{}
	}

	return &ReservationService{
		repo:               repo,
		mode:               opts.Mode,
		policy:             opts.Policy,
		legacyMonthDefault: opts.LegacyMonthDefault,
		clock:              opts.Clock,
		invalidator:        opts.Invalidator,
		logger:             logger,
	}
}

// Mode возвращает внешнюю форму броней
func (s *ReservationService) Mode() model.ReservationMode {
	return s.mode
}

// List возвращает брони за период, заданный фильтром
func (s *ReservationService) List(ctx context.Context, filter ListFilter) ([]*model.Reservation, error) {
	period, err := s.resolvePeriod(filter)
	if err != nil {
		return nil, err
	}

	reservations, err := s.repo.List(ctx, period)
	if err != nil {
		return nil, s.storageError("list reservations", err)
	}

	return reservations, nil
}

// Upsert создаёт или обновляет бронь. В режиме create-only занятый ключ даёт ErrConflict.
// Возвращает сохранённую бронь и признак создания.
func (s *ReservationService) Upsert(ctx context.Context, in ReservationInput) (*model.Reservation, bool, error) {
	key, err := s.resolveKey(in)
	if err != nil {
		return nil, false, err
	}

	name, err := s.payload(in)
	if err != nil {
		return nil, false, err
	}

	reservation := &model.Reservation{
		Date:     key.Date,
		TimeSlot: key.TimeSlot,
		Name:     name,
	}

	created := true
	if s.policy == model.PolicyCreateOnly {
		err = s.repo.Insert(ctx, reservation)
		if errors.Is(err, repository.ErrDuplicate) {
			s.logger.Info("Reservation conflict",
				zap.String("date", key.Date.String()),
				zap.String("time_slot", key.TimeSlot))
			return nil, false, ErrConflict
		}
	} else {
		created, err = s.repo.Upsert(ctx, reservation)
	}
	if err != nil {
		return nil, false, s.storageError("save reservation", err)
	}

	s.invalidator.Invalidate()

	s.logger.Info("Reservation saved",
		zap.String("date", key.Date.String()),
		zap.String("time_slot", key.TimeSlot),
		zap.Bool("created", created),
		zap.String("policy", string(s.policy)))

	return reservation, created, nil
}

// Delete удаляет бронь по ключу. Отсутствие брони ошибкой не является.
func (s *ReservationService) Delete(ctx context.Context, in ReservationInput) error {
	key, err := s.resolveKey(in)
	if err != nil {
		return err
	}

	removed, err := s.repo.Delete(ctx, key)
	if err != nil {
		return s.storageError("delete reservation", err)
	}

	if removed {
		s.invalidator.Invalidate()
	}

	s.logger.Info("Reservation deleted",
		zap.String("date", key.Date.String()),
		zap.String("time_slot", key.TimeSlot),
		zap.Bool("existed", removed))

	return nil
}

// resolveKey переводит внешний ключ текущего режима в канонический (date, time_slot)
func (s *ReservationService) resolveKey(in ReservationInput) (model.ReservationKey, error) {
	timeSlot := strings.TrimSpace(in.TimeSlot)
	if timeSlot == "" {
		return model.ReservationKey{}, invalid("time_slot", "is required")
	}

	if s.mode == model.ModeDateKeyed {
		if in.Date == nil || strings.TrimSpace(*in.Date) == "" {
			return model.ReservationKey{}, invalid("date", "is required")
		}
		date, err := calendar.ParseDate(*in.Date)
		if err != nil {
			return model.ReservationKey{}, invalid("date", "must be YYYY-MM-DD")
		}
		return model.ReservationKey{Date: date, TimeSlot: timeSlot}, nil
	}

	if in.Year == nil {
		return model.ReservationKey{}, invalid("year", "is required")
	}
	if in.Week == nil {
		return model.ReservationKey{}, invalid("week", "is required")
	}
	if in.DayOfWeek == nil {
		return model.ReservationKey{}, invalid("day_of_week", "is required")
	}
	if err := ValidateWeek(*in.Year, *in.Week); err != nil {
		return model.ReservationKey{}, err
	}
	if !model.ValidDayOfWeek(*in.DayOfWeek) {
		return model.ReservationKey{}, invalid("day_of_week", "must be between 0 and 6")
	}

	return model.ReservationKey{
		Date:     model.WeekDate(*in.Year, *in.Week, *in.DayOfWeek),
		TimeSlot: timeSlot,
	}, nil
}

// payload выбирает полезное поле режима: name обязателен, text может быть пустым
func (s *ReservationService) payload(in ReservationInput) (string, error) {
	if s.mode == model.ModeDateKeyed {
		if in.Name == nil || strings.TrimSpace(*in.Name) == "" {
			return "", invalid("name", "is required")
		}
		return *in.Name, nil
	}

	if in.Text == nil {
		return "", nil
	}
	return *in.Text, nil
}

func (s *ReservationService) resolvePeriod(filter ListFilter) (*calendar.Range, error) {
	switch {
	case filter.Year == nil && filter.Week == nil && filter.Month == nil:
		if !s.legacyMonthDefault {
			return nil, nil
		}
		now := s.clock.Now()
		period := calendar.MonthRange(now.Year(), now.Month())
		return &period, nil

	case filter.Year == nil:
		return nil, invalid("year", "is required with week or month")

	case filter.Week != nil && filter.Month != nil:
		return nil, invalid("week", "cannot be combined with month")

	case filter.Week != nil:
		if err := ValidateWeek(*filter.Year, *filter.Week); err != nil {
			return nil, err
		}
		period := calendar.WeekRange(*filter.Year, *filter.Week)
		return &period, nil

	case filter.Month != nil:
		if err := validateYear(*filter.Year); err != nil {
			return nil, err
		}
		if *filter.Month < 1 || *filter.Month > 12 {
			return nil, invalid("month", "must be between 1 and 12")
		}
		period := calendar.MonthRange(*filter.Year, time.Month(*filter.Month))
		return &period, nil

	default:
		return nil, invalid("week", "is required with year")
	}
}

func (s *ReservationService) storageError(op string, err error) error {
	s.logger.Error("Reservation storage failure", zap.String("op", op), zap.Error(err))
	return &StorageError{Op: op, Err: err}
}

// ValidateWeek проверяет год и номер ISO-недели (1..52 или 1..53 в зависимости от года)
func ValidateWeek(year, week int) error {
	if err := validateYear(year); err != nil {
		return err
	}
	if week < 1 || week > calendar.WeeksInYear(year) {
		return invalid("week", "is out of range for this year")
	}
	return nil
}

func validateYear(year int) error {
	if year < 1 || year > 9999 {
		return invalid("year", "must be between 1 and 9999")
	}
	return nil
}
