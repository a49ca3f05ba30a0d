package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"biofund/backend/internal/model"
)

// EvaluationRepository 评审记录数据访问接口
type EvaluationRepository interface {
	// Upsert 按三元组写入或更新状态、提交时间与评分表版本；Comment 为 nil 时保留原评语
	Upsert(ctx context.Context, e *model.Evaluation) (*model.Evaluation, error)
	GetByTriple(ctx context.Context, sessionID, submissionID, evaluatorID string) (*model.Evaluation, error)
	// ReplaceNotes 删除该评审的全部单项评分后写入新集合
	ReplaceNotes(ctx context.Context, evaluationID string, notes []model.EvaluationNote) error
	ListNotes(ctx context.Context, evaluationID string) ([]model.EvaluationNote, error)
	// UpdateScore 写入综合得分；score 为 nil 时置为 NULL
	UpdateScore(ctx context.Context, evaluationID string, score *int) error
	ListBySubmission(ctx context.Context, sessionID, submissionID string) ([]model.Evaluation, error)
	ListBySessionAndEvaluator(ctx context.Context, sessionID, evaluatorID string) ([]model.Evaluation, error)
	ListBySession(ctx context.Context, sessionID string) ([]model.Evaluation, error)
}

type evaluationRepo struct {
	db *gorm.DB
}

// NewEvaluationRepo 创建 EvaluationRepository 实例
func NewEvaluationRepo(db *gorm.DB) EvaluationRepository {
	return &evaluationRepo{db: db}
}

func (r *evaluationRepo) Upsert(ctx context.Context, e *model.Evaluation) (*model.Evaluation, error) {
	columns := []string{"status", "submitted_at", "rubric_version_id", "updated_at", "updated_by"}
	if e.Comment != nil {
		columns = append(columns, "comment")
	}

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "session_id"}, {Name: "submission_id"}, {Name: "evaluator_id"}},
			DoUpdates: clause.AssignmentColumns(columns),
		}).
		Omit("Notes", "Evaluator").
		Create(e).Error
	if err != nil {
		return nil, err
	}

	var stored model.Evaluation
	if err := r.db.WithContext(ctx).
		Where("session_id = ? AND submission_id = ? AND evaluator_id = ?", e.SessionID, e.SubmissionID, e.EvaluatorID).
		First(&stored).Error; err != nil {
		return nil, err
	}
	return &stored, nil
}

func (r *evaluationRepo) GetByTriple(ctx context.Context, sessionID, submissionID, evaluatorID string) (*model.Evaluation, error) {
	var e model.Evaluation
	err := r.db.WithContext(ctx).
		Preload("Notes", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Where("session_id = ? AND submission_id = ? AND evaluator_id = ?", sessionID, submissionID, evaluatorID).
		First(&e).Error
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *evaluationRepo) ReplaceNotes(ctx context.Context, evaluationID string, notes []model.EvaluationNote) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("evaluation_id = ?", evaluationID).
			Delete(&model.EvaluationNote{}).Error; err != nil {
			return err
		}
		if len(notes) == 0 {
			return nil
		}
		for i := range notes {
			notes[i].EvaluationID = evaluationID
		}
		return tx.Create(&notes).Error
	})
}

func (r *evaluationRepo) ListNotes(ctx context.Context, evaluationID string) ([]model.EvaluationNote, error) {
	var notes []model.EvaluationNote
	err := r.db.WithContext(ctx).
		Where("evaluation_id = ?", evaluationID).
		Order("created_at ASC").
		Find(&notes).Error
	return notes, err
}

func (r *evaluationRepo) UpdateScore(ctx context.Context, evaluationID string, score *int) error {
	var value interface{}
	if score != nil {
		value = *score
	}
	return r.db.WithContext(ctx).
		Model(&model.Evaluation{}).
		Where("evaluation_id = ?", evaluationID).
		UpdateColumn("score_pct", value).Error
}

func (r *evaluationRepo) ListBySubmission(ctx context.Context, sessionID, submissionID string) ([]model.Evaluation, error) {
	var list []model.Evaluation
	err := r.db.WithContext(ctx).
		Preload("Notes").
		Preload("Evaluator").
		Where("session_id = ? AND submission_id = ?", sessionID, submissionID).
		Order("created_at ASC").
		Find(&list).Error
	return list, err
}

func (r *evaluationRepo) ListBySessionAndEvaluator(ctx context.Context, sessionID, evaluatorID string) ([]model.Evaluation, error) {
	var list []model.Evaluation
	err := r.db.WithContext(ctx).
		Where("session_id = ? AND evaluator_id = ?", sessionID, evaluatorID).
		Find(&list).Error
	return list, err
}

func (r *evaluationRepo) ListBySession(ctx context.Context, sessionID string) ([]model.Evaluation, error) {
	var list []model.Evaluation
	db := r.db.WithContext(ctx)
	if err := db.
		Preload("Evaluator").
		Where("session_id = ?", sessionID).
		Order("submission_id ASC, created_at ASC").
		Find(&list).Error; err != nil {
		return nil, err
	}

	byID, err := loadSubmissions(db, evaluationSubmissionIDs(list))
	if err != nil {
		return nil, err
	}
	for i := range list {
		list[i].Submission = byID[list[i].SubmissionID]
	}
	return list, nil
}
