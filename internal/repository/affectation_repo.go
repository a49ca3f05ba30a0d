package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"biofund/backend/internal/model"
)

// AffectationPair 一条待分配记录：项目 + 评审专家
type AffectationPair struct {
	SubmissionID string
	EvaluatorID  string
}

// AffectationRepository 评审分配数据访问接口
type AffectationRepository interface {
	// BatchUpsert 在单个事务内按三元组 upsert 全部分配，任一失败则整体回滚
	BatchUpsert(ctx context.Context, sessionID string, pairs []AffectationPair, callerID string) ([]model.Affectation, error)
	GetByTriple(ctx context.Context, sessionID, submissionID, evaluatorID string) (*model.Affectation, error)
	// Delete 物理删除
	Delete(ctx context.Context, affectationID string) error
	ListBySession(ctx context.Context, sessionID string) ([]model.Affectation, error)
	ListBySessionAndEvaluator(ctx context.Context, sessionID, evaluatorID string) ([]model.Affectation, error)
	UpdateStatus(ctx context.Context, affectationID, status, updatedBy string) error
}

type affectationRepo struct {
	db *gorm.DB
}

// NewAffectationRepo 创建 AffectationRepository 实例
func NewAffectationRepo(db *gorm.DB) AffectationRepository {
	return &affectationRepo{db: db}
}

var affectationConflict = clause.OnConflict{
	Columns:   []clause.Column{{Name: "session_id"}, {Name: "submission_id"}, {Name: "evaluator_id"}},
	DoUpdates: clause.AssignmentColumns([]string{"status", "updated_at", "updated_by"}),
}

func (r *affectationRepo) BatchUpsert(ctx context.Context, sessionID string, pairs []AffectationPair, callerID string) ([]model.Affectation, error) {
	result := make([]model.Affectation, 0, len(pairs))

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, p := range pairs {
			a := model.Affectation{
				SessionID:    sessionID,
				SubmissionID: p.SubmissionID,
				EvaluatorID:  p.EvaluatorID,
				Status:       model.AffectationStatusInProgress,
			}
			a.SetAuthor(callerID)

			if err := tx.Clauses(affectationConflict).Create(&a).Error; err != nil {
				return err
			}

			// 冲突更新时主键沿用已有行，需回读
			var stored model.Affectation
			if err := tx.Where("session_id = ? AND submission_id = ? AND evaluator_id = ?",
				sessionID, p.SubmissionID, p.EvaluatorID).
				First(&stored).Error; err != nil {
				return err
			}
			result = append(result, stored)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (r *affectationRepo) GetByTriple(ctx context.Context, sessionID, submissionID, evaluatorID string) (*model.Affectation, error) {
	var a model.Affectation
	err := r.db.WithContext(ctx).
		Where("session_id = ? AND submission_id = ? AND evaluator_id = ?", sessionID, submissionID, evaluatorID).
		First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *affectationRepo) Delete(ctx context.Context, affectationID string) error {
	result := r.db.WithContext(ctx).
		Unscoped().
		Where("affectation_id = ?", affectationID).
		Delete(&model.Affectation{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *affectationRepo) ListBySession(ctx context.Context, sessionID string) ([]model.Affectation, error) {
	var list []model.Affectation
	db := r.db.WithContext(ctx)
	if err := db.
		Preload("Evaluator").
		Where("session_id = ?", sessionID).
		Order("created_at ASC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, attachAffectationSubmissions(db, list)
}

func (r *affectationRepo) ListBySessionAndEvaluator(ctx context.Context, sessionID, evaluatorID string) ([]model.Affectation, error) {
	var list []model.Affectation
	db := r.db.WithContext(ctx)
	if err := db.
		Where("session_id = ? AND evaluator_id = ?", sessionID, evaluatorID).
		Order("created_at ASC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, attachAffectationSubmissions(db, list)
}

func attachAffectationSubmissions(db *gorm.DB, list []model.Affectation) error {
	byID, err := loadSubmissions(db, affectationSubmissionIDs(list))
	if err != nil {
		return err
	}
	for i := range list {
		list[i].Submission = byID[list[i].SubmissionID]
	}
	return nil
}

func (r *affectationRepo) UpdateStatus(ctx context.Context, affectationID, status, updatedBy string) error {
	return r.db.WithContext(ctx).
		Model(&model.Affectation{}).
		Where("affectation_id = ?", affectationID).
		Updates(map[string]interface{}{"status": status, "updated_by": updatedBy}).Error
}
