package handler

import (
	"github.com/gin-gonic/gin"

	"biofund/backend/internal/dto"
	"biofund/backend/internal/service"
	"biofund/backend/pkg/response"
)

// AvailabilityHandler 可用性模块 HTTP 处理器
type AvailabilityHandler struct {
	availabilitySvc service.AvailabilityService
}

// NewAvailabilityHandler 创建 AvailabilityHandler
func NewAvailabilityHandler(availabilitySvc service.AvailabilityService) *AvailabilityHandler {
	return &AvailabilityHandler{availabilitySvc: availabilitySvc}
}

// Respond 评审专家答复场次可用性；专家身份取自 Token
// PUT /api/v1/sessions/:id/availability
func (h *AvailabilityHandler) Respond(c *gin.Context) {
	evaluatorID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.RespondAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	result, err := h.availabilitySvc.Respond(c.Request.Context(), c.Param("id"), evaluatorID, &req)
	if err != nil {
		fail(c, err)
		return
	}
	response.OK(c, result)
}

// ListBySession 场次可用性汇总
// GET /api/v1/sessions/:id/availabilities
func (h *AvailabilityHandler) ListBySession(c *gin.Context) {
	list, err := h.availabilitySvc.ListBySession(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	response.OK(c, list)
}
