package jsonfile

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/Freeeeeet/slot_planner/internal/calendar"
	"github.com/Freeeeeet/slot_planner/internal/model"
	"github.com/Freeeeeet/slot_planner/internal/repository"
	"go.uber.org/zap"
)

// reservationRecord каноническая запись брони в файле
type reservationRecord struct {
	Date     string `json:"date"`
	TimeSlot string `json:"time_slot"`
	Name     string `json:"name"`
}

// storedReservation запись при чтении: понимает и старую недельную форму
// {year, week, day_of_week, time_slot, text}
type storedReservation struct {
	Date      *string  `json:"date"`
	TimeSlot  string   `json:"time_slot"`
	Name      *string  `json:"name"`
	Year      *flexInt `json:"year"`
	Week      *flexInt `json:"week"`
	DayOfWeek *flexInt `json:"day_of_week"`
	Text      *string  `json:"text"`
}

func (s storedReservation) toModel() (*model.Reservation, error) {
	reservation := &model.Reservation{TimeSlot: s.TimeSlot}

	switch {
	case s.Date != nil && *s.Date != "":
		date, err := calendar.ParseDate(*s.Date)
		if err != nil {
			return nil, err
		}
		reservation.Date = date
	case s.Year != nil && s.Week != nil && s.DayOfWeek != nil:
		reservation.Date = model.WeekDate(int(*s.Year), int(*s.Week), int(*s.DayOfWeek))
	default:
		return nil, fmt.Errorf("record has neither date nor year/week/day_of_week")
	}

	if s.Name != nil {
		reservation.Name = *s.Name
	} else if s.Text != nil {
		reservation.Name = *s.Text
	}

	return reservation, nil
}

// ReservationStore хранит брони в reservations.json
type ReservationStore struct {
	path   string
	mu     sync.Mutex
	logger *zap.Logger
}

// NewReservationStore открывает (и при необходимости создаёт) файл броней в каталоге dir
func NewReservationStore(dir string, logger *zap.Logger) (*ReservationStore, error) {
	path := filepath.Join(dir, ReservationsFile)
	if err := ensureFile(path); err != nil {
		return nil, fmt.Errorf("init reservations file: %w", err)
	}

	return &ReservationStore{
		path:   path,
		logger: logger,
	}, nil
}

// Path возвращает путь к файлу броней
func (s *ReservationStore) Path() string {
	return s.path
}

// load читает все брони в порядке хранения. Записи с одинаковым ключом
// (возможны в старых файлах) сливаются: остаётся позиция первой, имя последней.
func (s *ReservationStore) load() ([]*model.Reservation, error) {
	var stored []storedReservation
	if err := readArray(s.path, &stored); err != nil {
		return nil, err
	}

	reservations := make([]*model.Reservation, 0, len(stored))
	for i, record := range stored {
		reservation, err := record.toModel()
		if err != nil {
			return nil, fmt.Errorf("reservation #%d in %s: %w", i, s.path, err)
		}

		if idx := indexOfReservation(reservations, reservation.Key()); idx >= 0 {
			s.logger.Warn("Merging duplicate reservation record",
				zap.String("date", reservation.Date.String()),
				zap.String("time_slot", reservation.TimeSlot))
			reservations[idx].Name = reservation.Name
			continue
		}
		reservations = append(reservations, reservation)
	}

	return reservations, nil
}

func (s *ReservationStore) save(reservations []*model.Reservation) error {
	records := make([]reservationRecord, 0, len(reservations))
	for _, r := range reservations {
		records = append(records, reservationRecord{
			Date:     r.Date.String(),
			TimeSlot: r.TimeSlot,
			Name:     r.Name,
		})
	}
	return writeArray(s.path, records)
}

func indexOfReservation(reservations []*model.Reservation, key model.ReservationKey) int {
	for i, r := range reservations {
		if r.Key().Matches(key) {
			return i
		}
	}
	return -1
}

// List возвращает брони в диапазоне (nil = все), упорядоченные по (date, time_slot)
func (s *ReservationStore) List(ctx context.Context, period *calendar.Range) ([]*model.Reservation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	all, err := s.load()
	s.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("list reservations: %w", err)
	}

	result := make([]*model.Reservation, 0, len(all))
	for _, r := range all {
		if period == nil || period.Contains(r.Date) {
			result = append(result, r)
		}
	}

	sort.SliceStable(result, func(i, j int) bool {
		if !result[i].Date.Equal(result[j].Date) {
			return result[i].Date.Before(result[j].Date)
		}
		return result[i].TimeSlot < result[j].TimeSlot
	})

	return result, nil
}

// Upsert заменяет имя у брони с тем же ключом или дописывает новую
func (s *ReservationStore) Upsert(ctx context.Context, reservation *model.Reservation) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.load()
	if err != nil {
		return false, fmt.Errorf("upsert reservation: %w", err)
	}

	created := false
	if idx := indexOfReservation(all, reservation.Key()); idx >= 0 {
		all[idx].Name = reservation.Name
	} else {
		stored := *reservation
		all = append(all, &stored)
		created = true
	}

	if err := s.save(all); err != nil {
		return false, fmt.Errorf("upsert reservation: %w", err)
	}

	return created, nil
}

// Insert дописывает бронь; занятый ключ даёт repository.ErrDuplicate
func (s *ReservationStore) Insert(ctx context.Context, reservation *model.Reservation) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.load()
	if err != nil {
		return fmt.Errorf("insert reservation: %w", err)
	}

	if indexOfReservation(all, reservation.Key()) >= 0 {
		return repository.ErrDuplicate
	}

	stored := *reservation
	all = append(all, &stored)

	if err := s.save(all); err != nil {
		return fmt.Errorf("insert reservation: %w", err)
	}
	return nil
}

// Delete удаляет бронь по ключу; если ничего не найдено, файл не переписывается
func (s *ReservationStore) Delete(ctx context.Context, key model.ReservationKey) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.load()
	if err != nil {
		return false, fmt.Errorf("delete reservation: %w", err)
	}

	kept := all[:0]
	for _, r := range all {
		if !r.Key().Matches(key) {
			kept = append(kept, r)
		}
	}

	if len(kept) == len(all) {
		return false, nil
	}

	if err := s.save(kept); err != nil {
		return false, fmt.Errorf("delete reservation: %w", err)
	}
	return true, nil
}

// Ping проверяет, что файл данных доступен
func (s *ReservationStore) Ping(ctx context.Context) error {
	if _, err := os.Stat(s.path); err != nil {
		return fmt.Errorf("stat reservations file: %w", err)
	}
	return nil
}

var _ repository.ReservationRepository = (*ReservationStore)(nil)
