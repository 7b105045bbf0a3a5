package api

import (
	"net/http"

	"github.com/Domenick1991/classbooking/internal/service/schedule"
	"github.com/gin-gonic/gin"
)

type TemplateHandler struct {
	service schedule.TemplateUseCase
}

type activeRequest struct {
	IsActive bool `json:"is_active"`
}

func NewTemplateHandler(service schedule.TemplateUseCase) *TemplateHandler {
	return &TemplateHandler{service: service}
}

func (h *TemplateHandler) Register(router *gin.RouterGroup) {
	router.GET("", h.list)
	router.POST("", h.create)
	router.PUT("/:id", h.update)
	router.PATCH("/:id/active", h.setActive)
	router.DELETE("/:id", h.delete)
}

func (h *TemplateHandler) list(c *gin.Context) {
	callerID, ok := caller(c)
	if !ok {
		return
	}
	templates, err := h.service.List(c.Request.Context(), callerID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, templates)
}

func (h *TemplateHandler) create(c *gin.Context) {
	callerID, ok := caller(c)
	if !ok {
		return
	}
	var req schedule.TemplateInput
	if !bindJSON(c, &req) {
		return
	}
	t, err := h.service.Create(c.Request.Context(), callerID, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, t)
}

func (h *TemplateHandler) update(c *gin.Context) {
	callerID, ok := caller(c)
	if !ok {
		return
	}
	var req schedule.TemplateInput
	if !bindJSON(c, &req) {
		return
	}
	t, err := h.service.Update(c.Request.Context(), callerID, c.Param("id"), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (h *TemplateHandler) setActive(c *gin.Context) {
	callerID, ok := caller(c)
	if !ok {
		return
	}
	var req activeRequest
	if !bindJSON(c, &req) {
		return
	}
	t, err := h.service.SetActive(c.Request.Context(), callerID, c.Param("id"), req.IsActive)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (h *TemplateHandler) delete(c *gin.Context) {
	callerID, ok := caller(c)
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), callerID, c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
