package handler

import (
	"github.com/gin-gonic/gin"

	"biofund/backend/internal/dto"
	"biofund/backend/internal/service"
	"biofund/backend/pkg/response"
)

// AffectationHandler 评审分配模块 HTTP 处理器
type AffectationHandler struct {
	affectationSvc service.AffectationService
}

// NewAffectationHandler 创建 AffectationHandler
func NewAffectationHandler(affectationSvc service.AffectationService) *AffectationHandler {
	return &AffectationHandler{affectationSvc: affectationSvc}
}

// Assign 批量分配评审专家
// POST /api/v1/sessions/:id/affectations
func (h *AffectationHandler) Assign(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.AssignEvaluatorsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	list, err := h.affectationSvc.Assign(c.Request.Context(), c.Param("id"), &req, callerID)
	if err != nil {
		fail(c, err)
		return
	}

	response.Created(c, list)
}

// Unassign 取消分配
// DELETE /api/v1/sessions/:id/affectations/:submissionId/:evaluatorId
func (h *AffectationHandler) Unassign(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	removed, err := h.affectationSvc.Unassign(c.Request.Context(),
		c.Param("id"), c.Param("submissionId"), c.Param("evaluatorId"), callerID)
	if err != nil {
		fail(c, err)
		return
	}
	response.OK(c, removed)
}

// ListBySession 场次全部分配
// GET /api/v1/sessions/:id/affectations
func (h *AffectationHandler) ListBySession(c *gin.Context) {
	list, err := h.affectationSvc.ListBySession(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	response.OK(c, list)
}

// ListMine 当前评审专家的待评项目
// GET /api/v1/sessions/:id/my-submissions
func (h *AffectationHandler) ListMine(c *gin.Context) {
	evaluatorID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	list, err := h.affectationSvc.ListAssignedSubmissions(c.Request.Context(), c.Param("id"), evaluatorID)
	if err != nil {
		fail(c, err)
		return
	}
	response.OK(c, list)
}
