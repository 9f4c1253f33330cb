package jsonfile

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/Freeeeeet/slot_planner/internal/model"
	"github.com/Freeeeeet/slot_planner/internal/repository"
	"go.uber.org/zap"
)

// fixedSlotRecord запись постоянного слота в файле
type fixedSlotRecord struct {
	ID        int64   `json:"id"`
	DayOfWeek flexInt `json:"day_of_week"`
	TimeSlot  string  `json:"time_slot"`
	Subject   *string `json:"subject"`
}

// FixedSlotStore хранит постоянное расписание в fixed_slots.json.
// Последний выданный id лежит в fixed_slots.json.seq, поэтому id не
// переиспользуются даже после удаления слота с максимальным id.
type FixedSlotStore struct {
	path    string
	seqPath string
	mu      sync.Mutex
	logger  *zap.Logger
}

// NewFixedSlotStore открывает (и при необходимости создаёт) файл расписания в каталоге dir
func NewFixedSlotStore(dir string, logger *zap.Logger) (*FixedSlotStore, error) {
	path := filepath.Join(dir, FixedSlotsFile)
	if err := ensureFile(path); err != nil {
		return nil, fmt.Errorf("init fixed slots file: %w", err)
	}

	return &FixedSlotStore{
		path:    path,
		seqPath: path + SequenceSuffix,
		logger:  logger,
	}, nil
}

// Path возвращает путь к файлу расписания
func (s *FixedSlotStore) Path() string {
	return s.path
}

// load читает слоты в порядке хранения. Записи с одинаковым ключом (в старых
// файлах day_of_week мог быть и числом, и строкой) сливаются: остаётся
// наименьший id и предмет последней записи.
func (s *FixedSlotStore) load() ([]*model.FixedSlot, error) {
	var records []fixedSlotRecord
	if err := readArray(s.path, &records); err != nil {
		return nil, err
	}

	slots := make([]*model.FixedSlot, 0, len(records))
	for _, record := range records {
		slot := &model.FixedSlot{
			ID:        record.ID,
			DayOfWeek: int(record.DayOfWeek),
			TimeSlot:  record.TimeSlot,
			Subject:   record.Subject,
		}

		if idx := indexOfFixedSlot(slots, slot.Key()); idx >= 0 {
			s.logger.Warn("Merging duplicate fixed slot record",
				zap.Int64("kept_id", min(slots[idx].ID, slot.ID)),
				zap.Int64("dropped_id", max(slots[idx].ID, slot.ID)),
				zap.Int("day_of_week", slot.DayOfWeek),
				zap.String("time_slot", slot.TimeSlot))
			slots[idx].ID = min(slots[idx].ID, slot.ID)
			slots[idx].Subject = slot.Subject
			continue
		}
		slots = append(slots, slot)
	}
	return slots, nil
}

func (s *FixedSlotStore) save(slots []*model.FixedSlot) error {
	records := make([]fixedSlotRecord, 0, len(slots))
	for _, slot := range slots {
		records = append(records, fixedSlotRecord{
			ID:        slot.ID,
			DayOfWeek: flexInt(slot.DayOfWeek),
			TimeSlot:  slot.TimeSlot,
			Subject:   slot.Subject,
		})
	}
	return writeArray(s.path, records)
}

// nextID выдаёт следующий id: больше и сохранённого счётчика, и любого id в файле
func (s *FixedSlotStore) nextID(slots []*model.FixedSlot) (int64, error) {
	seq, err := readSequence(s.seqPath)
	if err != nil {
		return 0, err
	}

	for _, slot := range slots {
		if slot.ID > seq {
			seq = slot.ID
		}
	}

	next := seq + 1
	if err := writeSequence(s.seqPath, next); err != nil {
		return 0, err
	}
	return next, nil
}

func indexOfFixedSlot(slots []*model.FixedSlot, key model.FixedSlotKey) int {
	for i, slot := range slots {
		if slot.Key() == key {
			return i
		}
	}
	return -1
}

// List возвращает все слоты, упорядоченные по (day_of_week, time_slot)
func (s *FixedSlotStore) List(ctx context.Context) ([]*model.FixedSlot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	slots, err := s.load()
	s.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("list fixed slots: %w", err)
	}

	sort.SliceStable(slots, func(i, j int) bool {
		if slots[i].DayOfWeek != slots[j].DayOfWeek {
			return slots[i].DayOfWeek < slots[j].DayOfWeek
		}
		return slots[i].TimeSlot < slots[j].TimeSlot
	})

	return slots, nil
}

// Upsert обновляет предмет существующего слота или создаёт слот с новым id
func (s *FixedSlotStore) Upsert(ctx context.Context, slot *model.FixedSlot) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	slots, err := s.load()
	if err != nil {
		return false, fmt.Errorf("upsert fixed slot: %w", err)
	}

	if idx := indexOfFixedSlot(slots, slot.Key()); idx >= 0 {
		slots[idx].Subject = slot.Subject
		slot.ID = slots[idx].ID

		if err := s.save(slots); err != nil {
			return false, fmt.Errorf("upsert fixed slot: %w", err)
		}
		return false, nil
	}

	id, err := s.nextID(slots)
	if err != nil {
		return false, fmt.Errorf("allocate fixed slot id: %w", err)
	}

	slot.ID = id
	stored := *slot
	slots = append(slots, &stored)

	if err := s.save(slots); err != nil {
		return false, fmt.Errorf("upsert fixed slot: %w", err)
	}

	s.logger.Debug("Fixed slot id allocated",
		zap.Int64("id", id),
		zap.Int("day_of_week", slot.DayOfWeek),
		zap.String("time_slot", slot.TimeSlot))

	return true, nil
}

// Delete удаляет слот по ключу; если ничего не найдено, файл не переписывается
func (s *FixedSlotStore) Delete(ctx context.Context, key model.FixedSlotKey) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	slots, err := s.load()
	if err != nil {
		return false, fmt.Errorf("delete fixed slot: %w", err)
	}

	kept := make([]*model.FixedSlot, 0, len(slots))
	for _, slot := range slots {
		if slot.Key() != key {
			kept = append(kept, slot)
		}
	}

	if len(kept) == len(slots) {
		return false, nil
	}

	if err := s.save(kept); err != nil {
		return false, fmt.Errorf("delete fixed slot: %w", err)
	}
	return true, nil
}

// Ping проверяет, что файл данных доступен
func (s *FixedSlotStore) Ping(ctx context.Context) error {
	if _, err := os.Stat(s.path); err != nil {
		return fmt.Errorf("stat fixed slots file: %w", err)
	}
	return nil
}

var _ repository.FixedSlotRepository = (*FixedSlotStore)(nil)
