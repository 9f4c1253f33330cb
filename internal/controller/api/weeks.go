package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

func pathWeek(c *gin.Context) (int, int, bool) {
	year, err := strconv.Atoi(c.Param("year"))
	if err != nil {
		badRequest(c, "year must be an integer")
		return 0, 0, false
	}
	week, err := strconv.Atoi(c.Param("week"))
	if err != nil {
		badRequest(c, "week must be an integer")
		return 0, 0, false
	}
	return year, week, true
}

// GetWeek GET /api/weeks/:year/:week: границы недели, её брони и постоянное расписание
func (h *Handler) GetWeek(c *gin.Context) {
	year, week, ok := pathWeek(c)
	if !ok {
		return
	}

	view, err := h.boards.Week(c.Request.Context(), year, week)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"year":         view.Year,
		"week":         view.Week,
		"start":        view.Start,
		"end":          view.End,
		"reservations": presentReservations(h.reservations.Mode(), view.Reservations),
		"fixed_slots":  nonNilSlots(view.FixedSlots),
	})
}

// GetWeekBoard GET /api/weeks/:year/:week/board.png
func (h *Handler) GetWeekBoard(c *gin.Context) {
	year, week, ok := pathWeek(c)
	if !ok {
		return
	}

	data, err := h.boards.WeekImage(c.Request.Context(), year, week)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.Header("Cache-Control", "no-cache")
	c.Data(http.StatusOK, "image/png", data)
}
