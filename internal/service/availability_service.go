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

// ── 可用性模块业务错误 ──

var (
	ErrInvalidAvailabilityStatus = apperrors.New(apperrors.KindValidation, 23001, "可用性状态无效")
)

// AvailabilityService 评审专家可用性业务接口
type AvailabilityService interface {
	// Respond evaluatorID 必须取自当前登录用户
	Respond(ctx context.Context, sessionID, evaluatorID string, req *dto.RespondAvailabilityRequest) (*dto.AvailabilityResponse, error)
	ListBySession(ctx context.Context, sessionID string) ([]dto.AvailabilityResponse, error)
}

type availabilityService struct {
	repo   *repository.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewAvailabilityService 创建 AvailabilityService 实例
func NewAvailabilityService(repo *repository.Repository, logger *zap.Logger) AvailabilityService {
	return &availabilityService{repo: repo, logger: logger, now: time.Now}
}

// ────────────────────── Respond ──────────────────────

func (s *availabilityService) Respond(ctx context.Context, sessionID, evaluatorID string, req *dto.RespondAvailabilityRequest) (*dto.AvailabilityResponse, error) {
	if !model.IsValidAvailabilityStatus(req.Status) {
		return nil, ErrInvalidAvailabilityStatus
	}
	if err := ensureSession(ctx, s.repo, s.logger, sessionID); err != nil {
		return nil, err
	}

	now := s.now()
	availability := &model.Availability{
		SessionID:   sessionID,
		EvaluatorID: evaluatorID,
		Status:      req.Status,
		RespondedAt: &now,
	}
	availability.SetAuthor(evaluatorID)

	stored, err := s.repo.Availability.Upsert(ctx, availability)
	if err != nil {
		s.logger.Error("保存可用性答复失败",
			zap.String("session_id", sessionID),
			zap.String("evaluator_id", evaluatorID),
			zap.Error(err),
		)
		return nil, apperrors.Persistence(err)
	}
	return toAvailabilityResponse(stored), nil
}

// ────────────────────── ListBySession ──────────────────────

func (s *availabilityService) ListBySession(ctx context.Context, sessionID string) ([]dto.AvailabilityResponse, error) {
	if err := ensureSession(ctx, s.repo, s.logger, sessionID); err != nil {
		return nil, err
	}

	list, err := s.repo.Availability.ListBySession(ctx, sessionID)
	if err != nil {
		s.logger.Error("查询可用性列表失败", zap.String("session_id", sessionID), zap.Error(err))
		return nil, apperrors.Persistence(err)
	}

	result := make([]dto.AvailabilityResponse, 0, len(list))
	for i := range list {
		result = append(result, *toAvailabilityResponse(&list[i]))
	}
	return result, nil
}

func toAvailabilityResponse(a *model.Availability) *dto.AvailabilityResponse {
	resp := &dto.AvailabilityResponse{
		ID:          a.AvailabilityID,
		SessionID:   a.SessionID,
		EvaluatorID: a.EvaluatorID,
		Status:      a.Status,
		RespondedAt: formatTimePtr(a.RespondedAt),
	}
	if a.Evaluator != nil {
		resp.EvaluatorName = a.Evaluator.Name
	}
	return resp
}
