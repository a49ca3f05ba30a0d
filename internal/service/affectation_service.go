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

// ── 评审分配模块业务错误 ──

var (
	// ErrAffectationNotFound 删除不存在的分配，按冲突处理
	ErrAffectationNotFound = apperrors.New(apperrors.KindConflict, 22001, "分配记录不存在")
	ErrAffectationEmpty    = apperrors.New(apperrors.KindValidation, 22002, "分配列表不能为空")
)

// AffectationService 评审分配业务接口
type AffectationService interface {
	// Assign 批量分配（单事务，全部成功或全部回滚）；已存在的三元组重新置为 EN_COURS
	Assign(ctx context.Context, sessionID string, req *dto.AssignEvaluatorsRequest, callerID string) ([]dto.AffectationResponse, error)
	// Unassign 物理删除分配；不影响已有评审记录
	Unassign(ctx context.Context, sessionID, submissionID, evaluatorID, callerID string) (*dto.AffectationResponse, error)
	ListBySession(ctx context.Context, sessionID string) ([]dto.AffectationResponse, error)
	// ListAssignedSubmissions 评审专家查看自己在场次中的待评项目
	ListAssignedSubmissions(ctx context.Context, sessionID, evaluatorID string) ([]dto.AssignedSubmissionResponse, error)
}

type affectationService struct {
	repo   *repository.Repository
	audit  AuditLogger
	logger *zap.Logger
}

// NewAffectationService 创建 AffectationService 实例
func NewAffectationService(repo *repository.Repository, audit AuditLogger, logger *zap.Logger) AffectationService {
	return &affectationService{repo: repo, audit: audit, logger: logger}
}

// ────────────────────── Assign ──────────────────────

func (s *affectationService) Assign(ctx context.Context, sessionID string, req *dto.AssignEvaluatorsRequest, callerID string) ([]dto.AffectationResponse, error) {
	if len(req.Assignments) == 0 {
		return nil, ErrAffectationEmpty
	}
	if err := ensureSession(ctx, s.repo, s.logger, sessionID); err != nil {
		return nil, err
	}

	pairs := make([]repository.AffectationPair, 0, len(req.Assignments))
	for _, a := range req.Assignments {
		pairs = append(pairs, repository.AffectationPair{SubmissionID: a.SubmissionID, EvaluatorID: a.EvaluatorID})
	}

	affectations, err := s.repo.Affectation.BatchUpsert(ctx, sessionID, pairs, callerID)
	if err != nil {
		s.logger.Error("批量分配失败，已回滚",
			zap.String("session_id", sessionID),
			zap.Int("count", len(pairs)),
			zap.Error(err),
		)
		return nil, apperrors.Persistence(err)
	}

	s.audit.Log(ctx, AuditEntry{
		ActorID:    callerID,
		ActionType: AuditActionAffectationAdd,
		TargetType: "session",
		TargetID:   sessionID,
		Details:    map[string]interface{}{"count": len(affectations)},
	})

	list := make([]dto.AffectationResponse, 0, len(affectations))
	for i := range affectations {
		list = append(list, *toAffectationResponse(&affectations[i]))
	}
	return list, nil
}

// ────────────────────── Unassign ──────────────────────

func (s *affectationService) Unassign(ctx context.Context, sessionID, submissionID, evaluatorID, callerID string) (*dto.AffectationResponse, error) {
	affectation, err := s.repo.Affectation.GetByTriple(ctx, sessionID, submissionID, evaluatorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAffectationNotFound
		}
		s.logger.Error("查询分配失败", zap.String("session_id", sessionID), zap.Error(err))
		return nil, apperrors.Persistence(err)
	}

	if err := s.repo.Affectation.Delete(ctx, affectation.AffectationID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAffectationNotFound
		}
		s.logger.Error("删除分配失败", zap.String("affectation_id", affectation.AffectationID), zap.Error(err))
		return nil, apperrors.Persistence(err)
	}

	s.audit.Log(ctx, AuditEntry{
		ActorID:    callerID,
		ActionType: AuditActionAffectationDel,
		TargetType: "affectation",
		TargetID:   affectation.AffectationID,
		Details: map[string]interface{}{
			"session_id":    sessionID,
			"submission_id": submissionID,
			"evaluator_id":  evaluatorID,
		},
	})

	return toAffectationResponse(affectation), nil
}

// ────────────────────── ListBySession ──────────────────────

func (s *affectationService) ListBySession(ctx context.Context, sessionID string) ([]dto.AffectationResponse, error) {
	if err := ensureSession(ctx, s.repo, s.logger, sessionID); err != nil {
		return nil, err
	}

	affectations, err := s.repo.Affectation.ListBySession(ctx, sessionID)
	if err != nil {
		s.logger.Error("查询场次分配失败", zap.String("session_id", sessionID), zap.Error(err))
		return nil, apperrors.Persistence(err)
	}

	list := make([]dto.AffectationResponse, 0, len(affectations))
	for i := range affectations {
		list = append(list, *toAffectationResponse(&affectations[i]))
	}
	return list, nil
}

// ────────────────────── ListAssignedSubmissions ──────────────────────

func (s *affectationService) ListAssignedSubmissions(ctx context.Context, sessionID, evaluatorID string) ([]dto.AssignedSubmissionResponse, error) {
	if err := ensureSession(ctx, s.repo, s.logger, sessionID); err != nil {
		return nil, err
	}

	affectations, err := s.repo.Affectation.ListBySessionAndEvaluator(ctx, sessionID, evaluatorID)
	if err != nil {
		s.logger.Error("查询待评项目失败", zap.String("session_id", sessionID), zap.String("evaluator_id", evaluatorID), zap.Error(err))
		return nil, apperrors.Persistence(err)
	}

	evaluations, err := s.repo.Evaluation.ListBySessionAndEvaluator(ctx, sessionID, evaluatorID)
	if err != nil {
		s.logger.Error("查询评审记录失败", zap.String("session_id", sessionID), zap.String("evaluator_id", evaluatorID), zap.Error(err))
		return nil, apperrors.Persistence(err)
	}
	bySubmission := make(map[string]*model.Evaluation, len(evaluations))
	for i := range evaluations {
		bySubmission[evaluations[i].SubmissionID] = &evaluations[i]
	}

	list := make([]dto.AssignedSubmissionResponse, 0, len(affectations))
	for i := range affectations {
		a := &affectations[i]
		item := dto.AssignedSubmissionResponse{
			AffectationID: a.AffectationID,
			Status:        a.Status,
			Submission:    dto.SubmissionResponse{ID: a.SubmissionID},
		}
		if a.Submission != nil {
			item.Submission = *toSubmissionResponse(a.Submission)
		}
		if e, ok := bySubmission[a.SubmissionID]; ok {
			status := e.Status
			item.EvaluationStatus = &status
			item.ScorePct = e.ScorePct
		}
		list = append(list, item)
	}
	return list, nil
}

// ── 辅助函数 ──

// ensureSession 场次不存在时返回 ErrSessionNotFound
func ensureSession(ctx context.Context, repo *repository.Repository, logger *zap.Logger, sessionID string) error {
	_, err := loadSession(ctx, repo, logger, sessionID)
	return err
}

func loadSession(ctx context.Context, repo *repository.Repository, logger *zap.Logger, sessionID string) (*model.EvaluationSession, error) {
	session, err := repo.Session.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		logger.Error("查询评审场次失败", zap.String("session_id", sessionID), zap.Error(err))
		return nil, apperrors.Persistence(err)
	}
	return session, nil
}

func toAffectationResponse(a *model.Affectation) *dto.AffectationResponse {
	resp := &dto.AffectationResponse{
		ID:           a.AffectationID,
		SessionID:    a.SessionID,
		SubmissionID: a.SubmissionID,
		EvaluatorID:  a.EvaluatorID,
		Status:       a.Status,
		UpdatedAt:    formatTime(a.UpdatedAt),
	}
	if a.Submission != nil {
		resp.Submission = toSubmissionResponse(a.Submission)
	}
	if a.Evaluator != nil {
		resp.EvaluatorName = a.Evaluator.Name
	}
	return resp
}
