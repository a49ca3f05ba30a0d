package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"biofund/backend/internal/dto"
	"biofund/backend/internal/model"
	"biofund/backend/internal/repository"
	apperrors "biofund/backend/pkg/errors"
)

// ExtensionService 延时授权业务接口
type ExtensionService interface {
	// Grant 覆盖（不累加）该专家在场次中的上一次授权
	Grant(ctx context.Context, sessionID, evaluatorID string, req *dto.GrantExtensionRequest, grantedBy string) (*dto.ExtensionResponse, error)
}

type extensionService struct {
	repo           *repository.Repository
	audit          AuditLogger
	defaultMinutes int
	logger         *zap.Logger
	now            func() time.Time
}

// NewExtensionService 创建 ExtensionService 实例
func NewExtensionService(repo *repository.Repository, audit AuditLogger, defaultMinutes int, logger *zap.Logger) ExtensionService {
	return &extensionService{
		repo:           repo,
		audit:          audit,
		defaultMinutes: defaultMinutes,
		logger:         logger,
		now:            time.Now,
	}
}

// ────────────────────── Grant ──────────────────────

func (s *extensionService) Grant(ctx context.Context, sessionID, evaluatorID string, req *dto.GrantExtensionRequest, grantedBy string) (*dto.ExtensionResponse, error) {
	if err := ensureSession(ctx, s.repo, s.logger, sessionID); err != nil {
		return nil, err
	}

	minutes := s.defaultMinutes
	if req.Minutes != nil {
		minutes = *req.Minutes
	}

	now := s.now()
	expiresAt := now.Add(time.Duration(minutes) * time.Minute)
	if req.ExpiresAt != nil {
		expiresAt = *req.ExpiresAt
	}

	extension := &model.Extension{
		SessionID:   sessionID,
		EvaluatorID: evaluatorID,
		Minutes:     minutes,
		GrantedBy:   grantedBy,
		GrantedAt:   now,
		ExpiresAt:   expiresAt,
	}
	extension.SetAuthor(grantedBy)

	stored, err := s.repo.Extension.Upsert(ctx, extension)
	if err != nil {
		s.logger.Error("保存延时授权失败",
			zap.String("session_id", sessionID),
			zap.String("evaluator_id", evaluatorID),
			zap.Error(err),
		)
		return nil, apperrors.Persistence(err)
	}

	s.audit.Log(ctx, AuditEntry{
		ActorID:    grantedBy,
		ActionType: AuditActionExtensionGrant,
		TargetType: "extension",
		TargetID:   stored.ExtensionID,
		Details: map[string]interface{}{
			"session_id":   sessionID,
			"evaluator_id": evaluatorID,
			"minutes":      minutes,
		},
	})

	return &dto.ExtensionResponse{
		ID:          stored.ExtensionID,
		SessionID:   stored.SessionID,
		EvaluatorID: stored.EvaluatorID,
		Minutes:     stored.Minutes,
		GrantedBy:   stored.GrantedBy,
		GrantedAt:   formatTime(stored.GrantedAt),
		ExpiresAt:   formatTime(stored.ExpiresAt),
	}, nil
}
