package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apperrors "biofund/backend/pkg/errors"
	applogger "biofund/backend/pkg/logger"
)

const healthPath = "/health"

// Logger 请求日志中间件（基于 Zap 结构化日志）
//
// 路径记录路由模板（如 /registrations/drafts/:token），不落盘草稿令牌等路径参数；
// 未匹配路由时退回原始路径。健康检查成功时只记 Debug
func Logger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		statusCode := c.Writer.Status()
		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}

		// RequestID 中间件注入的日志器已带 request_id
		reqLogger := applogger.FromContext(c.Request.Context(), logger)

		fields := []zap.Field{
			zap.Int("status", statusCode),
			zap.String("method", c.Request.Method),
			zap.String("route", route),
			zap.String("ip", c.ClientIP()),
			zap.Duration("latency", time.Since(start)),
		}
		if userID := c.GetString("user_id"); userID != "" {
			fields = append(fields, zap.String("user_id", userID))
		}

		if last := c.Errors.Last(); last != nil {
			if appErr, ok := apperrors.As(last.Err); ok {
				fields = append(fields,
					zap.Int("error_code", appErr.Code()),
					zap.String("error_kind", appErr.Kind().String()),
				)
			}
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}

		switch {
		case statusCode >= 500:
			reqLogger.Error("请求处理失败", fields...)
		case statusCode >= 400:
			reqLogger.Warn("客户端错误", fields...)
		case route == healthPath:
			reqLogger.Debug("健康检查", fields...)
		default:
			reqLogger.Info("请求完成", fields...)
		}
	}
}
