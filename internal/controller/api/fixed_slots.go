package api

import (
	"net/http"

	"github.com/Freeeeeet/slot_planner/internal/model"
	"github.com/Freeeeeet/slot_planner/internal/service"
	"github.com/gin-gonic/gin"
)

type fixedSlotRequest struct {
	DayOfWeek *intField `json:"day_of_week"`
	TimeSlot  string    `json:"time_slot"`
	Subject   *string   `json:"subject"`
}

func (r fixedSlotRequest) toInput() service.FixedSlotInput {
	return service.FixedSlotInput{
		DayOfWeek: r.DayOfWeek.ptr(),
		TimeSlot:  r.TimeSlot,
		Subject:   r.Subject,
	}
}

func (h *Handler) ListFixedSlots(c *gin.Context) {
	slots, err := h.fixedSlots.List(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, nonNilSlots(slots))
}

func nonNilSlots(slots []*model.FixedSlot) []*model.FixedSlot {
	if slots == nil {
		return []*model.FixedSlot{}
	}
	return slots
}

func (h *Handler) UpsertFixedSlot(c *gin.Context) {
	var req fixedSlotRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		badRequest(c, "invalid JSON body")
		return
	}

	slot, created, err := h.fixedSlots.Upsert(c.Request.Context(), req.toInput())
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, successResponse{Success: true, Created: boolPtr(created), ID: slot.ID})
}

func (h *Handler) DeleteFixedSlot(c *gin.Context) {
	var req fixedSlotRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		badRequest(c, "invalid JSON body")
		return
	}
	if req.DayOfWeek == nil {
		day, err := queryInt(c, "day_of_week")
		if err != nil {
			badRequest(c, err.Error())
			return
		}
		if day != nil {
			n := intField(*day)
			req.DayOfWeek = &n
		}
	}
	if req.TimeSlot == "" {
		req.TimeSlot = c.Query("time_slot")
	}

	if err := h.fixedSlots.Delete(c.Request.Context(), req.toInput()); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse{Success: true})
}
