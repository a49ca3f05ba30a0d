package handler

import (
	"github.com/gin-gonic/gin"

	"biofund/backend/internal/dto"
	"biofund/backend/internal/service"
	"biofund/backend/pkg/response"
)

// UserHandler 用户模块 HTTP 处理器
type UserHandler struct {
	userSvc service.UserService
}

// NewUserHandler 创建 UserHandler
func NewUserHandler(userSvc service.UserService) *UserHandler {
	return &UserHandler{userSvc: userSvc}
}

// Create 管理员创建账号
// POST /api/v1/users
func (h *UserHandler) Create(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	user, err := h.userSvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		fail(c, err)
		return
	}

	response.Created(c, user)
}

// ListEvaluators 评审专家列表
// GET /api/v1/users/evaluators
func (h *UserHandler) ListEvaluators(c *gin.Context) {
	users, err := h.userSvc.ListEvaluators(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	response.OK(c, users)
}
