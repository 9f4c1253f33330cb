package render

import (
	"bytes"
	"image/png"
	"testing"
	"time"

	"github.com/Freeeeeet/slot_planner/internal/calendar"
	"github.com/Freeeeeet/slot_planner/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateWeekBoardProducesPNG(t *testing.T) {
	math := "Math"
	board := Board{
		Year:  2025,
		Week:  42,
		Today: calendar.NewDate(2025, time.October, 15),
		FixedSlots: []*model.FixedSlot{
			{ID: 1, DayOfWeek: 0, TimeSlot: "8h25-9h20", Subject: &math},
			{ID: 2, DayOfWeek: 2, TimeSlot: "10h15-11h10"},
		},
		Reservations: []*model.Reservation{
			{Date: calendar.NewDate(2025, time.October, 13), TimeSlot: "8h25-9h20", Name: "Room for the very long workshop name"},
			{Date: calendar.NewDate(2025, time.October, 30), TimeSlot: "9h20-10h15", Name: "outside"},
		},
	}

	data, err := GenerateWeekBoard(board)
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, imageWidth, img.Bounds().Dx())
	assert.Equal(t, headerHeight+minRows*rowHeight+footerHeight, img.Bounds().Dy())
}

func TestCollectTimeSlotsOrdersByStartTime(t *testing.T) {
	board := Board{
		FixedSlots: []*model.FixedSlot{
			{TimeSlot: "10h15-11h10"},
			{TimeSlot: "lunch"},
			{TimeSlot: "8h25-9h20"},
		},
		Reservations: []*model.Reservation{
			{TimeSlot: "9h20-10h15"},
			{TimeSlot: "8h25-9h20"},
		},
	}

	assert.Equal(t, []string{"8h25-9h20", "9h20-10h15", "10h15-11h10", "lunch"}, collectTimeSlots(board))
}

func TestBuildCellsReservationOverridesFixedSlot(t *testing.T) {
	art := "Art"
	week := calendar.WeekRange(2025, 42)
	board := Board{
		FixedSlots:   []*model.FixedSlot{{DayOfWeek: 6, TimeSlot: "8h25-9h20", Subject: &art}},
		Reservations: []*model.Reservation{{Date: calendar.NewDate(2025, time.October, 19), TimeSlot: "8h25-9h20", Name: "Club"}},
	}

	cells := buildCells(board, week, []string{"8h25-9h20"})
	c := cells[6]["8h25-9h20"]
	require.NotNil(t, c)
	assert.True(t, c.fixed)
	assert.True(t, c.reserved)
	assert.Equal(t, "Art", c.subject)
	assert.Equal(t, "Club", c.name)
}

func TestTruncateKeepsRunes(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "Réserva…", truncate("Réservation", 8))
}
