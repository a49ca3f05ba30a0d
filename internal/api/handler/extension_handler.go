package handler

import (
	"github.com/gin-gonic/gin"

	"biofund/backend/internal/dto"
	"biofund/backend/internal/service"
	"biofund/backend/pkg/response"
)

// ExtensionHandler 延时授权模块 HTTP 处理器
type ExtensionHandler struct {
	extensionSvc service.ExtensionService
}

// NewExtensionHandler 创建 ExtensionHandler
func NewExtensionHandler(extensionSvc service.ExtensionService) *ExtensionHandler {
	return &ExtensionHandler{extensionSvc: extensionSvc}
}

// Grant 为评审专家授予延时
// PUT /api/v1/sessions/:id/extensions/:evaluatorId
func (h *ExtensionHandler) Grant(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.GrantExtensionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	result, err := h.extensionSvc.Grant(c.Request.Context(), c.Param("id"), c.Param("evaluatorId"), &req, callerID)
	if err != nil {
		fail(c, err)
		return
	}
	response.OK(c, result)
}
