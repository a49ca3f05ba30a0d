package handler

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"biofund/backend/internal/service"
)

const (
	xlsxContentType     = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	calendarContentType = "text/calendar; charset=utf-8"
)

// ExportHandler 导出模块 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportSessionScores 导出场次评审得分
// GET /api/v1/sessions/:id/export
func (h *ExportHandler) ExportSessionScores(c *gin.Context) {
	buf, filename, err := h.exportSvc.ExportSessionScores(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}

	attachment(c, filename, xlsxContentType, buf.Bytes())
}

// ExportMyCalendar 导出当前专家的截止时间日历
// GET /api/v1/sessions/:id/calendar.ics
func (h *ExportHandler) ExportMyCalendar(c *gin.Context) {
	evaluatorID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	buf, filename, err := h.exportSvc.ExportEvaluatorCalendar(c.Request.Context(), c.Param("id"), evaluatorID)
	if err != nil {
		fail(c, err)
		return
	}
	attachment(c, filename, calendarContentType, buf.Bytes())
}

// attachment 设置下载响应头并写入文件内容
func attachment(c *gin.Context, filename, contentType string, data []byte) {
	encodedFilename := url.QueryEscape(filename)
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+encodedFilename)
	c.Data(http.StatusOK, contentType, data)
}
