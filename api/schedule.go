package api

import (
	"net/http"
	"time"

	"github.com/Domenick1991/classbooking/internal/domain"
	"github.com/Domenick1991/classbooking/internal/service/booking"
	"github.com/Domenick1991/classbooking/internal/service/profile"
	"github.com/Domenick1991/classbooking/internal/service/schedule"
	"github.com/gin-gonic/gin"
)

type ScheduleHandler struct {
	schedule schedule.ScheduleUseCase
	bookings booking.BookingUseCase
	profiles profile.ProfileUseCase
	home     *time.Location
}

func NewScheduleHandler(scheduleSvc schedule.ScheduleUseCase, bookingSvc booking.BookingUseCase, profileSvc profile.ProfileUseCase, home *time.Location) *ScheduleHandler {
	if home == nil {
		home = time.UTC
	}
	return &ScheduleHandler{schedule: scheduleSvc, bookings: bookingSvc, profiles: profileSvc, home: home}
}

func (h *ScheduleHandler) Register(router *gin.RouterGroup) {
	router.GET("/schedule", h.week)
	router.GET("/me/bookings", h.myBookings)
	router.GET("/me/profile", h.getProfile)
	router.PUT("/me/profile", h.saveProfile)
}

// week accepts ?week=YYYY-MM-DD, any day of the wanted week in studio time.
func (h *ScheduleHandler) week(c *gin.Context) {
	at := time.Now()
	if raw := c.Query("week"); raw != "" {
		day, err := time.ParseInLocation(time.DateOnly, raw, h.home)
		if err != nil {
			writeError(c, domain.InvalidArgument("week must be YYYY-MM-DD"))
			return
		}
		at = day
	}
	week, err := h.schedule.Week(c.Request.Context(), at)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, week)
}

func (h *ScheduleHandler) myBookings(c *gin.Context) {
	callerID, ok := caller(c)
	if !ok {
		return
	}
	bookings, err := h.bookings.ListMine(c.Request.Context(), callerID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, bookings)
}

func (h *ScheduleHandler) getProfile(c *gin.Context) {
	callerID, ok := caller(c)
	if !ok {
		return
	}
	p, err := h.profiles.Get(c.Request.Context(), callerID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *ScheduleHandler) saveProfile(c *gin.Context) {
	callerID, ok := caller(c)
	if !ok {
		return
	}
	var req profile.ProfileInput
	if !bindJSON(c, &req) {
		return
	}
	p, err := h.profiles.Save(c.Request.Context(), callerID, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}
