package model

import (
	"strconv"
	"strings"
)

// FixedSlot представляет строку постоянного недельного расписания
// (например, "понедельник 8h25-9h20 = Math")
type FixedSlot struct {
	ID        int64   `json:"id"`          // выдаётся один раз при создании
	DayOfWeek int     `json:"day_of_week"` // 0 = понедельник, 6 = воскресенье
	TimeSlot  string  `json:"time_slot"`   // например "8h25-9h20"
	Subject   *string `json:"subject"`     // может быть null
}

// FixedSlotKey естественный ключ постоянного слота
type FixedSlotKey struct {
	DayOfWeek int
	TimeSlot  string
}

// Key возвращает естественный ключ слота
func (s *FixedSlot) Key() FixedSlotKey {
	return FixedSlotKey{DayOfWeek: s.DayOfWeek, TimeSlot: s.TimeSlot}
}

// SubjectOrEmpty возвращает предмет или пустую строку
func (s *FixedSlot) SubjectOrEmpty() string {
	if s.Subject == nil {
		return ""
	}
	return *s.Subject
}

// Границы дня недели
const (
	MinDayOfWeek = 0
	MaxDayOfWeek = 6
)

// ValidDayOfWeek проверяет диапазон 0..6
func ValidDayOfWeek(day int) bool {
	return day >= MinDayOfWeek && day <= MaxDayOfWeek
}

// SlotStartMinutes разбирает начало слота вида "8h25-9h20" или "08:25-09:20"
// и возвращает минуты от полуночи
func SlotStartMinutes(timeSlot string) (int, bool) {
	start, _, _ := strings.Cut(strings.TrimSpace(timeSlot), "-")
	start = strings.TrimSpace(start)

	sep := strings.IndexAny(start, "h:H")
	if sep < 0 {
		return 0, false
	}

	hours, err := strconv.Atoi(start[:sep])
	if err != nil || hours < 0 || hours > 23 {
		return 0, false
	}

	minutesPart := start[sep+1:]
	if minutesPart == "" {
		return hours * 60, true
	}
	minutes, err := strconv.Atoi(minutesPart)
	if err != nil || minutes < 0 || minutes > 59 {
		return 0, false
	}

	return hours*60 + minutes, true
}
