package model

import (
	"github.com/Freeeeeet/slot_planner/internal/calendar"
)

// Reservation каноническая бронь: конкретный слот в конкретный день
type Reservation struct {
	ID       int64         `json:"id,omitempty"`
	Date     calendar.Date `json:"date"`
	TimeSlot string        `json:"time_slot"`
	Name     string        `json:"name"`
}

// ReservationKey естественный ключ брони
type ReservationKey struct {
	Date     calendar.Date
	TimeSlot string
}

// Key возвращает естественный ключ брони
func (r *Reservation) Key() ReservationKey {
	return ReservationKey{Date: r.Date, TimeSlot: r.TimeSlot}
}

// Matches сравнивает ключ по календарному дню и слоту
func (k ReservationKey) Matches(other ReservationKey) bool {
	return k.TimeSlot == other.TimeSlot && k.Date.Equal(other.Date)
}

// WeekReservation внешнее представление брони в недельном режиме
type WeekReservation struct {
	Year      int    `json:"year"`
	Week      int    `json:"week"`
	DayOfWeek int    `json:"day_of_week"` // 0 = понедельник
	TimeSlot  string `json:"time_slot"`
	Text      string `json:"text"`
}

// WeekDate переводит (год, неделя, день недели) в календарную дату
func WeekDate(year, week, dayOfWeek int) calendar.Date {
	monday, _ := calendar.ResolveISOWeek(year, week)
	return monday.AddDays(dayOfWeek)
}

// ToWeekReservation переводит каноническую бронь в недельное представление
func (r *Reservation) ToWeekReservation() WeekReservation {
	year, week := r.Date.ISOWeek()
	return WeekReservation{
		Year:      year,
		Week:      week,
		DayOfWeek: r.Date.ISOWeekday() - 1,
		TimeSlot:  r.TimeSlot,
		Text:      r.Name,
	}
}

// ToReservation переводит недельное представление в каноническую бронь
func (w WeekReservation) ToReservation() *Reservation {
	return &Reservation{
		Date:     WeekDate(w.Year, w.Week, w.DayOfWeek),
		TimeSlot: w.TimeSlot,
		Name:     w.Text,
	}
}

// ReservationMode внешняя форма броней в API
type ReservationMode string

const (
	ModeDateKeyed ReservationMode = "date-keyed"
	ModeWeekKeyed ReservationMode = "week-keyed"
)

// WritePolicy поведение при записи в уже занятый ключ
type WritePolicy string

const (
	PolicyUpsert     WritePolicy = "upsert"      // последняя запись побеждает
	PolicyCreateOnly WritePolicy = "create-only" // повторная запись = конфликт
)
