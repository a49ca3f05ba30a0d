package handler

import (
	"github.com/gin-gonic/gin"

	"biofund/backend/internal/dto"
	"biofund/backend/internal/service"
	"biofund/backend/pkg/response"
)

// SessionHandler 评审场次模块 HTTP 处理器
type SessionHandler struct {
	sessionSvc service.SessionService
}

// NewSessionHandler 创建 SessionHandler
func NewSessionHandler(sessionSvc service.SessionService) *SessionHandler {
	return &SessionHandler{sessionSvc: sessionSvc}
}

// Create 创建评审场次
// POST /api/v1/sessions
func (h *SessionHandler) Create(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	session, err := h.sessionSvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		fail(c, err)
		return
	}

	response.Created(c, session)
}

// List 场次列表
// GET /api/v1/sessions
func (h *SessionHandler) List(c *gin.Context) {
	sessions, err := h.sessionSvc.List(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	response.OK(c, sessions)
}

// Get 场次详情
// GET /api/v1/sessions/:id
func (h *SessionHandler) Get(c *gin.Context) {
	session, err := h.sessionSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	response.OK(c, session)
}

// BindRubric 改绑评分表版本
// PUT /api/v1/sessions/:id/rubric
func (h *SessionHandler) BindRubric(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.BindRubricRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	session, err := h.sessionSvc.BindRubric(c.Request.Context(), c.Param("id"), &req, callerID)
	if err != nil {
		fail(c, err)
		return
	}
	response.OK(c, session)
}

// Close 关闭场次
// PUT /api/v1/sessions/:id/close
func (h *SessionHandler) Close(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	session, err := h.sessionSvc.Close(c.Request.Context(), c.Param("id"), callerID)
	if err != nil {
		fail(c, err)
		return
	}
	response.OK(c, session)
}
