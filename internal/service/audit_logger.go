package service

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"biofund/backend/internal/dto"
	"biofund/backend/internal/model"
	"biofund/backend/internal/repository"
	apperrors "biofund/backend/pkg/errors"
)

// 审计动作类型
const (
	AuditActionUserCreate       = "USER_CREATE"
	AuditActionRubricPublish    = "RUBRIC_PUBLISH"
	AuditActionSessionCreate    = "SESSION_CREATE"
	AuditActionSessionBind      = "SESSION_BIND_RUBRIC"
	AuditActionAffectationAdd   = "AFFECTATION_CREATE"
	AuditActionAffectationDel   = "AFFECTATION_DELETE"
	AuditActionExtensionGrant   = "EXTENSION_GRANT"
	AuditActionEvaluationDraft  = "EVALUATION_DRAFT"
	AuditActionEvaluationSubmit = "EVALUATION_SUBMIT"
)

// AuditEntry 一条审计记录；空字符串字段视为未提供
type AuditEntry struct {
	ActorID     string
	ActionType  string
	TargetType  string
	TargetID    string
	Description string
	Details     map[string]interface{}
	Result      string
}

// AuditLogger 审计日志写入端
// Log 没有返回值：写入失败只记录告警，绝不影响主流程
type AuditLogger interface {
	Log(ctx context.Context, entry AuditEntry)
}

type auditLogger struct {
	repo    *repository.Repository
	timeout time.Duration
	logger  *zap.Logger
}

// NewAuditLogger 创建审计日志写入端；timeout 为单次写入的独立超时
func NewAuditLogger(repo *repository.Repository, timeout time.Duration, logger *zap.Logger) AuditLogger {
	return &auditLogger{repo: repo, timeout: timeout, logger: logger}
}

func (a *auditLogger) Log(ctx context.Context, entry AuditEntry) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.Warn("写入审计日志异常", zap.String("action", entry.ActionType), zap.Any("panic", r))
		}
	}()

	record := &model.AuditLog{
		ActorID:     entry.ActorID,
		ActionType:  entry.ActionType,
		TargetType:  optional(entry.TargetType),
		TargetID:    optional(entry.TargetID),
		Description: optional(entry.Description),
		Result:      entry.Result,
	}
	if record.ActorID == "" {
		record.ActorID = model.AuditActorSystem
	}
	if record.Result == "" {
		record.Result = model.AuditResultSuccess
	}
	if len(entry.Details) > 0 {
		raw, err := json.Marshal(entry.Details)
		if err != nil {
			a.logger.Warn("序列化审计详情失败", zap.String("action", entry.ActionType), zap.Error(err))
		} else {
			record.Details = datatypes.JSON(raw)
		}
	}

	// 不随请求取消，也不加入业务事务
	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.timeout)
	defer cancel()

	if err := a.repo.AuditLog.Create(writeCtx, record); err != nil {
		a.logger.Warn("写入审计日志失败",
			zap.String("action", entry.ActionType),
			zap.String("actor", record.ActorID),
			zap.Error(err),
		)
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// ═══════════════════════════════════════════════════════════
// AuditService 审计日志查询（管理员）
// ═══════════════════════════════════════════════════════════

// AuditService 审计日志查询接口
type AuditService interface {
	List(ctx context.Context, req *dto.AuditLogListRequest) ([]dto.AuditLogResponse, int64, error)
}

type auditService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewAuditService 创建 AuditService 实例
func NewAuditService(repo *repository.Repository, logger *zap.Logger) AuditService {
	return &auditService{repo: repo, logger: logger}
}

func (s *auditService) List(ctx context.Context, req *dto.AuditLogListRequest) ([]dto.AuditLogResponse, int64, error) {
	filter := repository.AuditLogFilter{
		ActorID:    req.ActorID,
		ActionType: req.ActionType,
		TargetType: req.TargetType,
		TargetID:   req.TargetID,
	}

	logs, total, err := s.repo.AuditLog.List(ctx, filter, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询审计日志失败", zap.Error(err))
		return nil, 0, apperrors.Persistence(err)
	}

	list := make([]dto.AuditLogResponse, 0, len(logs))
	for i := range logs {
		l := &logs[i]
		item := dto.AuditLogResponse{
			ID:          l.AuditLogID,
			ActorID:     l.ActorID,
			ActionType:  l.ActionType,
			TargetType:  l.TargetType,
			TargetID:    l.TargetID,
			Description: l.Description,
			Result:      l.Result,
			CreatedAt:   formatTime(l.CreatedAt),
		}
		if len(l.Details) > 0 {
			item.Details = json.RawMessage(l.Details)
		}
		list = append(list, item)
	}
	return list, total, nil
}
