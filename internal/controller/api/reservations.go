package api

import (
	"net/http"

	"github.com/Freeeeeet/slot_planner/internal/model"
	"github.com/Freeeeeet/slot_planner/internal/service"
	"github.com/gin-gonic/gin"
)

// reservationRequest принимает обе внешние формы брони
type reservationRequest struct {
	Date      *string   `json:"date"`
	Year      *intField `json:"year"`
	Week      *intField `json:"week"`
	DayOfWeek *intField `json:"day_of_week"`
	TimeSlot  string    `json:"time_slot"`
	Name      *string   `json:"name"`
	Text      *string   `json:"text"`
}

func (r reservationRequest) toInput() service.ReservationInput {
	return service.ReservationInput{
		Date:      r.Date,
		Year:      r.Year.ptr(),
		Week:      r.Week.ptr(),
		DayOfWeek: r.DayOfWeek.ptr(),
		TimeSlot:  r.TimeSlot,
		Name:      r.Name,
		Text:      r.Text,
	}
}

// fillFromQuery дополняет ключ из query-параметров (DELETE без тела)
func (r *reservationRequest) fillFromQuery(c *gin.Context) error {
	if r.Date == nil {
		r.Date = queryString(c, "date")
	}
	if r.TimeSlot == "" {
		r.TimeSlot = c.Query("time_slot")
	}

	for name, field := range map[string]**intField{
		"year":        &r.Year,
		"week":        &r.Week,
		"day_of_week": &r.DayOfWeek,
	} {
		if *field != nil {
			continue
		}
		v, err := queryInt(c, name)
		if err != nil {
			return err
		}
		if v != nil {
			n := intField(*v)
			*field = &n
		}
	}
	return nil
}

// presentReservations переводит брони во внешнюю форму текущего режима
func presentReservations(mode model.ReservationMode, reservations []*model.Reservation) any {
	if mode == model.ModeWeekKeyed {
		out := make([]model.WeekReservation, 0, len(reservations))
		for _, r := range reservations {
			out = append(out, r.ToWeekReservation())
		}
		return out
	}

	if reservations == nil {
		return []*model.Reservation{}
	}
	return reservations
}

// ListReservations GET /api/reservations?year=&week= | ?year=&month=
func (h *Handler) ListReservations(c *gin.Context) {
	var filter service.ListFilter
	var err error

	if filter.Year, err = queryInt(c, "year"); err != nil {
		badRequest(c, err.Error())
		return
	}
	if filter.Week, err = queryInt(c, "week"); err != nil {
		badRequest(c, err.Error())
		return
	}
	if filter.Month, err = queryInt(c, "month"); err != nil {
		badRequest(c, err.Error())
		return
	}

	reservations, err := h.reservations.List(c.Request.Context(), filter)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, presentReservations(h.reservations.Mode(), reservations))
}

// UpsertReservation POST /api/reservations и /api/reserve
func (h *Handler) UpsertReservation(c *gin.Context) {
	var req reservationRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		badRequest(c, "invalid JSON body")
		return
	}

	_, created, err := h.reservations.Upsert(c.Request.Context(), req.toInput())
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, successResponse{Success: true, Created: boolPtr(created)})
}

// DeleteReservation DELETE /api/reservations; ключ в теле или в query
func (h *Handler) DeleteReservation(c *gin.Context) {
	var req reservationRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		badRequest(c, "invalid JSON body")
		return
	}
	if err := req.fillFromQuery(c); err != nil {
		badRequest(c, err.Error())
		return
	}

	if err := h.reservations.Delete(c.Request.Context(), req.toInput()); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse{Success: true})
}
