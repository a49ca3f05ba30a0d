package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"biofund/backend/config"
	"biofund/backend/internal/api/handler"
	"biofund/backend/internal/api/middleware"
	"biofund/backend/internal/model"
	"biofund/backend/pkg/jwt"
	"biofund/backend/pkg/redis"
)

// Setup 初始化并返回 Gin 路由引擎
// rdb 为 nil 时黑名单与限流降级放行
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, db *gorm.DB, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	// 避免把 nil *redis.Client 装进非 nil 接口
	var blacklist middleware.TokenBlacklist
	var limiter middleware.RateLimiter
	if rdb != nil {
		blacklist = rdb
		limiter = rdb
	}

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID(logger))
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.BodyLimit(cfg.Server.MaxBodyBytes))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		if db != nil {
			if sqlDB, err := db.DB(); err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "database": "down"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	admin := middleware.RoleAuth(model.RoleAdmin)
	evaluator := middleware.RoleAuth(model.RoleEvaluator)

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 认证模块（无需认证）
		v1.POST("/auth/login",
			middleware.RateLimit(limiter, cfg.Auth.LoginRateLimit, cfg.Auth.LoginRateWindow),
			h.Auth.Login,
		)

		// 机构注册草稿（公开）
		drafts := v1.Group("/registrations/drafts")
		{
			drafts.POST("", h.Registration.Create)
			drafts.GET("/:token", h.Registration.Get)
			drafts.PUT("/:token", h.Registration.Update)
			drafts.DELETE("/:token", h.Registration.Discard)
		}

		// 需要认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, blacklist))
		{
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.Me)

			// 用户模块
			users := authorized.Group("/users", admin)
			{
				users.POST("", h.User.Create)
				users.GET("/evaluators", h.User.ListEvaluators)
			}

			// 评分表模块
			rubrics := authorized.Group("/rubrics/versions")
			{
				rubrics.POST("", admin, h.Rubric.CreateVersion)
				rubrics.GET("", h.Rubric.ListVersions)
				rubrics.GET("/:id", h.Rubric.GetVersion)
			}

			// 资助申请模块
			submissions := authorized.Group("/submissions")
			{
				submissions.POST("", admin, h.Submission.Create)
				submissions.GET("", h.Submission.List)
			}

			// 评审场次模块
			sessions := authorized.Group("/sessions")
			{
				sessions.POST("", admin, h.Session.Create)
				sessions.GET("", h.Session.List)
				sessions.GET("/:id", h.Session.Get)
				sessions.PUT("/:id/rubric", admin, h.Session.BindRubric)
				sessions.PUT("/:id/close", admin, h.Session.Close)

				// 分配
				sessions.POST("/:id/affectations", admin, h.Affectation.Assign)
				sessions.GET("/:id/affectations", admin, h.Affectation.ListBySession)
				sessions.DELETE("/:id/affectations/:submissionId/:evaluatorId", admin, h.Affectation.Unassign)
				sessions.GET("/:id/my-submissions", evaluator, h.Affectation.ListMine)

				// 可用性 / 延时
				sessions.PUT("/:id/availability", evaluator, h.Availability.Respond)
				sessions.GET("/:id/availabilities", admin, h.Availability.ListBySession)
				sessions.PUT("/:id/extensions/:evaluatorId", admin, h.Extension.Grant)

				// 评审记录
				sessions.PUT("/:id/submissions/:submissionId/evaluation", evaluator, h.Evaluation.Submit)
				sessions.GET("/:id/submissions/:submissionId/evaluation", evaluator, h.Evaluation.GetMine)
				sessions.GET("/:id/submissions/:submissionId/evaluations", admin, h.Evaluation.ListBySubmission)

				// 导出
				sessions.GET("/:id/export", admin, h.Export.ExportSessionScores)
				sessions.GET("/:id/calendar.ics", evaluator, h.Export.ExportMyCalendar)
			}

			// 审计日志
			authorized.GET("/audit-logs", admin, h.Audit.List)
		}
	}

	return r
}
