package handler

import (
	"github.com/gin-gonic/gin"

	"biofund/backend/internal/dto"
	"biofund/backend/internal/service"
	"biofund/backend/pkg/response"
)

// RegistrationHandler 机构注册草稿 HTTP 处理器（公开接口）
type RegistrationHandler struct {
	registrationSvc service.RegistrationService
}

// NewRegistrationHandler 创建 RegistrationHandler
func NewRegistrationHandler(registrationSvc service.RegistrationService) *RegistrationHandler {
	return &RegistrationHandler{registrationSvc: registrationSvc}
}

// Create 新建草稿
// POST /api/v1/registrations/drafts
func (h *RegistrationHandler) Create(c *gin.Context) {
	h.save(c, "")
}

// Update 续存草稿并刷新有效期
// PUT /api/v1/registrations/drafts/:token
func (h *RegistrationHandler) Update(c *gin.Context) {
	h.save(c, c.Param("token"))
}

func (h *RegistrationHandler) save(c *gin.Context, token string) {
	var req dto.RegistrationDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	draft, err := h.registrationSvc.SaveDraft(c.Request.Context(), token, &req)
	if err != nil {
		fail(c, err)
		return
	}

	if token == "" {
		response.Created(c, draft)
		return
	}
	response.OK(c, draft)
}

// Get 读取草稿
// GET /api/v1/registrations/drafts/:token
func (h *RegistrationHandler) Get(c *gin.Context) {
	draft, err := h.registrationSvc.GetDraft(c.Request.Context(), c.Param("token"))
	if err != nil {
		fail(c, err)
		return
	}
	response.OK(c, draft)
}

// Discard 丢弃草稿
// DELETE /api/v1/registrations/drafts/:token
func (h *RegistrationHandler) Discard(c *gin.Context) {
	if err := h.registrationSvc.DiscardDraft(c.Request.Context(), c.Param("token")); err != nil {
		fail(c, err)
		return
	}
	response.OK(c, nil)
}
