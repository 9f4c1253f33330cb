package calendar

import "time"

// Range включительный диапазон дат [Start, End]
type Range struct {
	Start Date `json:"start"`
	End   Date `json:"end"`
}

// Contains проверяет, попадает ли дата в диапазон (границы включены)
func (r Range) Contains(d Date) bool {
	return !d.Before(r.Start) && !d.After(r.End)
}

// ResolveISOWeek возвращает понедельник и воскресенье ISO-недели.
// Неделя 1 содержит 4 января. Номер недели не проверяется: это делает вызывающий код.
func ResolveISOWeek(year, week int) (Date, Date) {
	reference := NewDate(year, time.January, 4).AddDays((week - 1) * 7)
	monday := reference.AddDays(-(reference.ISOWeekday() - 1))
	return monday, monday.AddDays(6)
}

// WeekRange то же, что ResolveISOWeek, но в виде диапазона
func WeekRange(year, week int) Range {
	start, end := ResolveISOWeek(year, week)
	return Range{Start: start, End: end}
}

// WeeksInYear возвращает количество ISO-недель в году (52 или 53).
// 28 декабря всегда лежит в последней неделе года.
func WeeksInYear(year int) int {
	_, week := NewDate(year, time.December, 28).ISOWeek()
	return week
}

// MonthRange возвращает первый и последний день месяца
func MonthRange(year int, month time.Month) Range {
	start := NewDate(year, month, 1)
	return Range{Start: start, End: Date{start.AddDate(0, 1, -1)}}
}

// Clock источник текущего времени
type Clock interface {
	Now() time.Time
}

// SystemClock часы на основе time.Now
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }
