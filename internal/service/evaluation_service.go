package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"biofund/backend/internal/dto"
	"biofund/backend/internal/model"
	"biofund/backend/internal/repository"
	apperrors "biofund/backend/pkg/errors"
)

// ── 评审记录模块业务错误 ──

var (
	ErrEvaluationNotFound = apperrors.New(apperrors.KindNotFound, 25001, "评审记录不存在")
	ErrNotAssigned        = apperrors.New(apperrors.KindForbidden, 25002, "未被分配评审该项目")
)

// EvaluationService 评审记录业务接口
type EvaluationService interface {
	// Submit 保存草稿（finalize=false）或提交评审；upsert、评分替换与得分回写在同一事务内完成
	Submit(ctx context.Context, sessionID, submissionID, evaluatorID string, req *dto.SubmitEvaluationRequest) (*dto.EvaluationResponse, error)
	GetMine(ctx context.Context, sessionID, submissionID, evaluatorID string) (*dto.EvaluationResponse, error)
	ListBySubmission(ctx context.Context, sessionID, submissionID string) (*dto.SubmissionEvaluationsResponse, error)
}

type evaluationService struct {
	repo   *repository.Repository
	audit  AuditLogger
	logger *zap.Logger
	now    func() time.Time
}

// NewEvaluationService 创建 EvaluationService 实例
func NewEvaluationService(repo *repository.Repository, audit AuditLogger, logger *zap.Logger) EvaluationService {
	return &evaluationService{repo: repo, audit: audit, logger: logger, now: time.Now}
}

// ═══════════════════════════════════════════════════════════
// Submit
// ═══════════════════════════════════════════════════════════
//
// 1. 读取场次及其当前绑定的评分表版本
// 2. 校验项目存在且当前专家已被分配
// 3. 事务内：upsert 评审 → 非空评分时整体替换 → 按现存评分重算得分 → 回写得分
//    同一三元组并发提交按最后写入为准

func (s *evaluationService) Submit(ctx context.Context, sessionID, submissionID, evaluatorID string, req *dto.SubmitEvaluationRequest) (*dto.EvaluationResponse, error) {
	session, err := loadSession(ctx, s.repo, s.logger, sessionID)
	if err != nil {
		return nil, err
	}

	version, err := s.repo.Rubric.GetVersion(ctx, session.RubricVersionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRubricVersionNotFound
		}
		s.logger.Error("查询评分表版本失败", zap.String("rubric_version_id", session.RubricVersionID), zap.Error(err))
		return nil, apperrors.Persistence(err)
	}

	if err := ensureSubmission(ctx, s.repo, s.logger, submissionID); err != nil {
		return nil, err
	}

	affectation, err := s.repo.Affectation.GetByTriple(ctx, sessionID, submissionID, evaluatorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotAssigned
		}
		s.logger.Error("查询分配失败", zap.String("session_id", sessionID), zap.Error(err))
		return nil, apperrors.Persistence(err)
	}

	now := s.now()
	evaluation := &model.Evaluation{
		SessionID:       sessionID,
		SubmissionID:    submissionID,
		EvaluatorID:     evaluatorID,
		Status:          model.EvaluationStatusDraft,
		Comment:         req.Comment,
		RubricVersionID: session.RubricVersionID,
	}
	affectationStatus := model.AffectationStatusInProgress
	if req.Finalize {
		evaluation.Status = model.EvaluationStatusSubmitted
		evaluation.SubmittedAt = &now
		affectationStatus = model.AffectationStatusDone
	}
	evaluation.SetAuthor(evaluatorID)

	// 同一评分项重复出现时按请求顺序保留第一条
	notes := make([]model.EvaluationNote, 0, len(req.Notes))
	seen := make(map[string]struct{}, len(req.Notes))
	for _, n := range req.Notes {
		if _, dup := seen[n.CriterionID]; dup {
			continue
		}
		seen[n.CriterionID] = struct{}{}
		value := 0.0
		if n.ValuePct != nil {
			value = *n.ValuePct
		}
		notes = append(notes, model.EvaluationNote{CriterionID: n.CriterionID, ValuePct: ClampPct(value)})
	}

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		s.logger.Error("开启事务失败", zap.Error(err))
		return nil, apperrors.Persistence(err)
	}
	defer func() {
		if r := recover(); r != nil {
			if tx != nil {
				tx.Rollback()
			}
			panic(r)
		}
	}()
	fail := func(msg string, err error) (*dto.EvaluationResponse, error) {
		if tx != nil {
			tx.Rollback()
		}
		s.logger.Error(msg,
			zap.String("session_id", sessionID),
			zap.String("submission_id", submissionID),
			zap.String("evaluator_id", evaluatorID),
			zap.Error(err),
		)
		return nil, apperrors.Persistence(err)
	}

	txRepo := s.repo.WithTx(tx)

	stored, err := txRepo.Evaluation.Upsert(ctx, evaluation)
	if err != nil {
		return fail("保存评审记录失败", err)
	}

	// 空评分列表保留原有评分，但仍重新计分
	if len(notes) > 0 {
		if err := txRepo.Evaluation.ReplaceNotes(ctx, stored.EvaluationID, notes); err != nil {
			return fail("替换评分失败", err)
		}
	}

	current, err := txRepo.Evaluation.ListNotes(ctx, stored.EvaluationID)
	if err != nil {
		return fail("查询评分失败", err)
	}

	score := ComputeScorePct(version.AllCriteria(), current)
	if err := txRepo.Evaluation.UpdateScore(ctx, stored.EvaluationID, score); err != nil {
		return fail("回写综合得分失败", err)
	}

	if affectation.Status != affectationStatus {
		if err := txRepo.Affectation.UpdateStatus(ctx, affectation.AffectationID, affectationStatus, evaluatorID); err != nil {
			return fail("更新分配状态失败", err)
		}
	}

	if tx != nil {
		if err := tx.Commit().Error; err != nil {
			s.logger.Error("提交事务失败", zap.Error(err))
			return nil, apperrors.Persistence(err)
		}
	}

	stored.ScorePct = score
	stored.Notes = current

	action := AuditActionEvaluationDraft
	if req.Finalize {
		action = AuditActionEvaluationSubmit
	}
	details := map[string]interface{}{"notes": len(current)}
	if score != nil {
		details["score_pct"] = *score
	}
	s.audit.Log(ctx, AuditEntry{
		ActorID:    evaluatorID,
		ActionType: action,
		TargetType: "evaluation",
		TargetID:   stored.EvaluationID,
		Details:    details,
	})

	return toEvaluationResponse(stored), nil
}

// ────────────────────── GetMine ──────────────────────

func (s *evaluationService) GetMine(ctx context.Context, sessionID, submissionID, evaluatorID string) (*dto.EvaluationResponse, error) {
	evaluation, err := s.repo.Evaluation.GetByTriple(ctx, sessionID, submissionID, evaluatorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEvaluationNotFound
		}
		s.logger.Error("查询评审记录失败", zap.String("session_id", sessionID), zap.Error(err))
		return nil, apperrors.Persistence(err)
	}
	return toEvaluationResponse(evaluation), nil
}

// ────────────────────── ListBySubmission ──────────────────────

func (s *evaluationService) ListBySubmission(ctx context.Context, sessionID, submissionID string) (*dto.SubmissionEvaluationsResponse, error) {
	if err := ensureSession(ctx, s.repo, s.logger, sessionID); err != nil {
		return nil, err
	}
	if err := ensureSubmission(ctx, s.repo, s.logger, submissionID); err != nil {
		return nil, err
	}

	evaluations, err := s.repo.Evaluation.ListBySubmission(ctx, sessionID, submissionID)
	if err != nil {
		s.logger.Error("查询项目评审失败", zap.String("submission_id", submissionID), zap.Error(err))
		return nil, apperrors.Persistence(err)
	}

	resp := &dto.SubmissionEvaluationsResponse{
		SubmissionID: submissionID,
		Evaluations:  make([]dto.EvaluationResponse, 0, len(evaluations)),
	}
	var sum float64
	var scored int
	for i := range evaluations {
		e := &evaluations[i]
		resp.Evaluations = append(resp.Evaluations, *toEvaluationResponse(e))
		if e.Status != model.EvaluationStatusSubmitted {
			continue
		}
		resp.SubmittedCount++
		if e.ScorePct != nil {
			sum += float64(*e.ScorePct)
			scored++
		}
	}
	if scored > 0 {
		mean := sum / float64(scored)
		resp.MeanScorePct = &mean
	}
	return resp, nil
}

func toEvaluationResponse(e *model.Evaluation) *dto.EvaluationResponse {
	resp := &dto.EvaluationResponse{
		ID:              e.EvaluationID,
		SessionID:       e.SessionID,
		SubmissionID:    e.SubmissionID,
		EvaluatorID:     e.EvaluatorID,
		Status:          e.Status,
		Comment:         e.Comment,
		SubmittedAt:     formatTimePtr(e.SubmittedAt),
		RubricVersionID: e.RubricVersionID,
		ScorePct:        e.ScorePct,
		Notes:           make([]dto.NoteResponse, 0, len(e.Notes)),
	}
	if e.Evaluator != nil {
		resp.EvaluatorName = e.Evaluator.Name
	}
	for _, n := range e.Notes {
		resp.Notes = append(resp.Notes, dto.NoteResponse{CriterionID: n.CriterionID, ValuePct: n.ValuePct})
	}
	return resp
}
