package handler

import (
	"github.com/gin-gonic/gin"

	"biofund/backend/internal/dto"
	"biofund/backend/internal/service"
	"biofund/backend/pkg/response"
)

// RubricHandler 评分表模块 HTTP 处理器
type RubricHandler struct {
	rubricSvc service.RubricService
}

// NewRubricHandler 创建 RubricHandler
func NewRubricHandler(rubricSvc service.RubricService) *RubricHandler {
	return &RubricHandler{rubricSvc: rubricSvc}
}

// CreateVersion 发布评分表新版本
// POST /api/v1/rubrics/versions
func (h *RubricHandler) CreateVersion(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.CreateRubricVersionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	version, err := h.rubricSvc.CreateVersion(c.Request.Context(), &req, callerID)
	if err != nil {
		fail(c, err)
		return
	}

	response.Created(c, version)
}

// GetVersion 评分表版本详情
// GET /api/v1/rubrics/versions/:id
func (h *RubricHandler) GetVersion(c *gin.Context) {
	version, err := h.rubricSvc.GetVersion(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	response.OK(c, version)
}

// ListVersions 评分表版本列表
// GET /api/v1/rubrics/versions?rubric_name=xxx
func (h *RubricHandler) ListVersions(c *gin.Context) {
	versions, err := h.rubricSvc.ListVersions(c.Request.Context(), c.Query("rubric_name"))
	if err != nil {
		fail(c, err)
		return
	}
	response.OK(c, versions)
}
