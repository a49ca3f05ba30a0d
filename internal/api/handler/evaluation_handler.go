package handler

import (
	"github.com/gin-gonic/gin"

	"biofund/backend/internal/dto"
	"biofund/backend/internal/service"
	"biofund/backend/pkg/response"
)

// EvaluationHandler 评审记录模块 HTTP 处理器
type EvaluationHandler struct {
	evaluationSvc service.EvaluationService
}

// NewEvaluationHandler 创建 EvaluationHandler
func NewEvaluationHandler(evaluationSvc service.EvaluationService) *EvaluationHandler {
	return &EvaluationHandler{evaluationSvc: evaluationSvc}
}

// Submit 保存草稿或提交评审；专家身份取自 Token
// PUT /api/v1/sessions/:id/submissions/:submissionId/evaluation
func (h *EvaluationHandler) Submit(c *gin.Context) {
	evaluatorID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.SubmitEvaluationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	result, err := h.evaluationSvc.Submit(c.Request.Context(), c.Param("id"), c.Param("submissionId"), evaluatorID, &req)
	if err != nil {
		fail(c, err)
		return
	}
	response.OK(c, result)
}

// GetMine 当前专家对该项目的评审
// GET /api/v1/sessions/:id/submissions/:submissionId/evaluation
func (h *EvaluationHandler) GetMine(c *gin.Context) {
	evaluatorID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.evaluationSvc.GetMine(c.Request.Context(), c.Param("id"), c.Param("submissionId"), evaluatorID)
	if err != nil {
		fail(c, err)
		return
	}
	response.OK(c, result)
}

// ListBySubmission 项目全部评审及均分
// GET /api/v1/sessions/:id/submissions/:submissionId/evaluations
func (h *EvaluationHandler) ListBySubmission(c *gin.Context) {
	result, err := h.evaluationSvc.ListBySubmission(c.Request.Context(), c.Param("id"), c.Param("submissionId"))
	if err != nil {
		fail(c, err)
		return
	}
	response.OK(c, result)
}
