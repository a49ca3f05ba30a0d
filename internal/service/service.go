package service

import (
	"time"

	"go.uber.org/zap"

	"biofund/backend/config"
	"biofund/backend/internal/repository"
	"biofund/backend/pkg/jwt"
	"biofund/backend/pkg/redis"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Auth         AuthService
	User         UserService
	Rubric       RubricService
	Session      SessionService
	Submission   SubmissionService
	Affectation  AffectationService
	Availability AvailabilityService
	Extension    ExtensionService
	Evaluation   EvaluationService
	Audit        AuditService
	Export       ExportService
	Registration RegistrationService
}

// NewService 创建 Service 聚合
// rdb 为 nil 时注销不进入黑名单，注册草稿接口返回不可用
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	rdb *redis.Client,
	logger *zap.Logger,
) *Service {
	// 避免把 nil *redis.Client 装进非 nil 接口
	var blacklist TokenBlacklist
	var drafts DraftStore
	if rdb != nil {
		blacklist = rdb
		drafts = rdb
	}

	audit := NewAuditLogger(repo, cfg.Evaluation.AuditWriteTimeout, logger)

	return &Service{
		Auth:         NewAuthService(cfg, repo, jwtMgr, blacklist, logger),
		User:         NewUserService(repo, audit, logger),
		Rubric:       NewRubricService(repo, audit, logger),
		Session:      NewSessionService(repo, audit, logger),
		Submission:   NewSubmissionService(repo, logger),
		Affectation:  NewAffectationService(repo, audit, logger),
		Availability: NewAvailabilityService(repo, logger),
		Extension:    NewExtensionService(repo, audit, cfg.Evaluation.DefaultExtensionMinutes, logger),
		Evaluation:   NewEvaluationService(repo, audit, logger),
		Audit:        NewAuditService(repo, logger),
		Export:       NewExportService(repo, logger),
		Registration: NewRegistrationService(drafts, cfg.Registration.DraftTTL, logger),
	}
}

// ── 辅助函数 ──

const timeLayout = "2006-01-02T15:04:05Z"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := formatTime(*t)
	return &s
}
