package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"biofund/backend/internal/dto"
	"biofund/backend/internal/model"
	"biofund/backend/internal/repository"
	apperrors "biofund/backend/pkg/errors"
)

// SessionService 评审场次业务接口
type SessionService interface {
	Create(ctx context.Context, req *dto.CreateSessionRequest, callerID string) (*dto.SessionResponse, error)
	Get(ctx context.Context, id string) (*dto.SessionResponse, error)
	List(ctx context.Context) ([]dto.SessionResponse, error)
	// BindRubric 改绑评分表版本，仅影响之后的评审保存
	BindRubric(ctx context.Context, id string, req *dto.BindRubricRequest, callerID string) (*dto.SessionResponse, error)
	Close(ctx context.Context, id string, callerID string) (*dto.SessionResponse, error)
}

type sessionService struct {
	repo   *repository.Repository
	audit  AuditLogger
	logger *zap.Logger
}

// NewSessionService 创建 SessionService 实例
func NewSessionService(repo *repository.Repository, audit AuditLogger, logger *zap.Logger) SessionService {
	return &sessionService{repo: repo, audit: audit, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *sessionService) Create(ctx context.Context, req *dto.CreateSessionRequest, callerID string) (*dto.SessionResponse, error) {
	if err := s.ensureRubricVersion(ctx, req.RubricVersionID); err != nil {
		return nil, err
	}

	session := &model.EvaluationSession{
		Name:            req.Name,
		RubricVersionID: req.RubricVersionID,
		Status:          model.SessionStatusOpen,
		EndsAt:          req.EndsAt,
	}
	session.SetAuthor(callerID)

	if err := s.repo.Session.Create(ctx, session); err != nil {
		s.logger.Error("创建评审场次失败", zap.String("name", req.Name), zap.Error(err))
		return nil, apperrors.Persistence(err)
	}

	s.audit.Log(ctx, AuditEntry{
		ActorID:    callerID,
		ActionType: AuditActionSessionCreate,
		TargetType: "session",
		TargetID:   session.SessionID,
		Details:    map[string]interface{}{"rubric_version_id": session.RubricVersionID},
	})

	return toSessionResponse(session), nil
}

// ────────────────────── Get / List ──────────────────────

func (s *sessionService) Get(ctx context.Context, id string) (*dto.SessionResponse, error) {
	session, err := loadSession(ctx, s.repo, s.logger, id)
	if err != nil {
		return nil, err
	}
	return toSessionResponse(session), nil
}

func (s *sessionService) List(ctx context.Context) ([]dto.SessionResponse, error) {
	sessions, err := s.repo.Session.List(ctx)
	if err != nil {
		s.logger.Error("查询评审场次列表失败", zap.Error(err))
		return nil, apperrors.Persistence(err)
	}

	list := make([]dto.SessionResponse, 0, len(sessions))
	for i := range sessions {
		list = append(list, *toSessionResponse(&sessions[i]))
	}
	return list, nil
}

// ────────────────────── BindRubric ──────────────────────

func (s *sessionService) BindRubric(ctx context.Context, id string, req *dto.BindRubricRequest, callerID string) (*dto.SessionResponse, error) {
	if err := s.ensureRubricVersion(ctx, req.RubricVersionID); err != nil {
		return nil, err
	}

	if err := s.repo.Session.UpdateRubricVersion(ctx, id, req.RubricVersionID, callerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		s.logger.Error("改绑评分表失败", zap.String("session_id", id), zap.Error(err))
		return nil, apperrors.Persistence(err)
	}

	s.audit.Log(ctx, AuditEntry{
		ActorID:    callerID,
		ActionType: AuditActionSessionBind,
		TargetType: "session",
		TargetID:   id,
		Details:    map[string]interface{}{"rubric_version_id": req.RubricVersionID},
	})

	return s.Get(ctx, id)
}

// ────────────────────── Close ──────────────────────

func (s *sessionService) Close(ctx context.Context, id string, callerID string) (*dto.SessionResponse, error) {
	if err := s.repo.Session.UpdateStatus(ctx, id, model.SessionStatusClosed, callerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		s.logger.Error("关闭评审场次失败", zap.String("session_id", id), zap.Error(err))
		return nil, apperrors.Persistence(err)
	}
	return s.Get(ctx, id)
}

func (s *sessionService) ensureRubricVersion(ctx context.Context, id string) error {
	if _, err := s.repo.Rubric.GetVersion(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRubricVersionNotFound
		}
		s.logger.Error("查询评分表版本失败", zap.String("rubric_version_id", id), zap.Error(err))
		return apperrors.Persistence(err)
	}
	return nil
}

func toSessionResponse(s *model.EvaluationSession) *dto.SessionResponse {
	return &dto.SessionResponse{
		ID:              s.SessionID,
		Name:            s.Name,
		RubricVersionID: s.RubricVersionID,
		Status:          s.Status,
		EndsAt:          formatTimePtr(s.EndsAt),
		CreatedAt:       formatTime(s.CreatedAt),
	}
}
