package api

import (
	"net/http"

	"github.com/Domenick1991/classbooking/internal/service/attendance"
	"github.com/Domenick1991/classbooking/internal/service/booking"
	"github.com/Domenick1991/classbooking/internal/service/schedule"
	"github.com/gin-gonic/gin"
)

// CallableHandler serves the RPC-style endpoints: POST with a small JSON
// payload, JSON result or typed error.
type CallableHandler struct {
	schedule   schedule.ScheduleUseCase
	bookings   booking.BookingUseCase
	attendance attendance.AttendanceUseCase
}

type generateRequest struct {
	DaysAhead *int `json:"daysAhead"`
}

type classRequest struct {
	ClassID  string `json:"classId"`
	UserName string `json:"userName"`
}

func NewCallableHandler(scheduleSvc schedule.ScheduleUseCase, bookingSvc booking.BookingUseCase, attendanceSvc attendance.AttendanceUseCase) *CallableHandler {
	return &CallableHandler{schedule: scheduleSvc, bookings: bookingSvc, attendance: attendanceSvc}
}

func (h *CallableHandler) Register(router *gin.RouterGroup) {
	router.POST("/generateClassOccurrences", h.generate)
	router.POST("/bookClass", h.book)
	router.POST("/cancelBooking", h.cancel)
	router.POST("/checkInBooking", h.checkIn)
	router.POST("/getClassRoster", h.roster)
}

func (h *CallableHandler) generate(c *gin.Context) {
	callerID, ok := caller(c)
	if !ok {
		return
	}
	var req generateRequest
	if c.Request.ContentLength != 0 && !bindJSON(c, &req) {
		return
	}
	res, err := h.schedule.GenerateOccurrences(c.Request.Context(), callerID, req.DaysAhead)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *CallableHandler) book(c *gin.Context) {
	callerID, ok := caller(c)
	if !ok {
		return
	}
	var req classRequest
	if !bindJSON(c, &req) {
		return
	}
	b, err := h.bookings.Book(c.Request.Context(), callerID, booking.BookInput{ClassID: req.ClassID, UserName: req.UserName})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "bookingId": b.ID})
}

func (h *CallableHandler) cancel(c *gin.Context) {
	callerID, ok := caller(c)
	if !ok {
		return
	}
	var req classRequest
	if !bindJSON(c, &req) {
		return
	}
	if _, err := h.bookings.Cancel(c.Request.Context(), callerID, req.ClassID); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *CallableHandler) checkIn(c *gin.Context) {
	callerID, ok := caller(c)
	if !ok {
		return
	}
	var req attendance.CheckInInput
	if !bindJSON(c, &req) {
		return
	}
	if _, err := h.attendance.CheckIn(c.Request.Context(), callerID, req); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *CallableHandler) roster(c *gin.Context) {
	callerID, ok := caller(c)
	if !ok {
		return
	}
	var req classRequest
	if !bindJSON(c, &req) {
		return
	}
	roster, err := h.attendance.Roster(c.Request.Context(), callerID, req.ClassID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, roster)
}
