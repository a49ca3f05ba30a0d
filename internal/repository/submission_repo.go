package repository

import (
	"context"

	"gorm.io/gorm"

	"biofund/backend/internal/model"
)

// SubmissionRepository 资助申请数据访问接口
type SubmissionRepository interface {
	Create(ctx context.Context, submission *model.Submission) error
	GetByID(ctx context.Context, id string) (*model.Submission, error)
	List(ctx context.Context, offset, limit int) ([]model.Submission, int64, error)
}

type submissionRepo struct {
	db *gorm.DB
}

// NewSubmissionRepo 创建 SubmissionRepository 实例
func NewSubmissionRepo(db *gorm.DB) SubmissionRepository {
	return &submissionRepo{db: db}
}

func (r *submissionRepo) Create(ctx context.Context, submission *model.Submission) error {
	return r.db.WithContext(ctx).Create(submission).Error
}

func (r *submissionRepo) GetByID(ctx context.Context, id string) (*model.Submission, error) {
	var submission model.Submission
	err := r.db.WithContext(ctx).
		Where("submission_id = ?", id).
		First(&submission).Error
	if err != nil {
		return nil, err
	}
	return &submission, nil
}

func (r *submissionRepo) List(ctx context.Context, offset, limit int) ([]model.Submission, int64, error) {
	var submissions []model.Submission
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Submission{})

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Offset(offset).Limit(limit).
		Order("reference ASC").
		Find(&submissions).Error; err != nil {
		return nil, 0, err
	}

	return submissions, total, nil
}

// loadSubmissions 按 submission_id 批量查询项目，返回 id → 项目
func loadSubmissions(db *gorm.DB, ids []string) (map[string]*model.Submission, error) {
	byID := make(map[string]*model.Submission, len(ids))
	if len(ids) == 0 {
		return byID, nil
	}
	var list []model.Submission
	if err := db.Where("submission_id IN ?", ids).Find(&list).Error; err != nil {
		return nil, err
	}
	for i := range list {
		byID[list[i].SubmissionID] = &list[i]
	}
	return byID, nil
}

func affectationSubmissionIDs(list []model.Affectation) []string {
	ids := make([]string, 0, len(list))
	seen := make(map[string]struct{}, len(list))
	for _, a := range list {
		if _, ok := seen[a.SubmissionID]; !ok {
			seen[a.SubmissionID] = struct{}{}
			ids = append(ids, a.SubmissionID)
		}
	}
	return ids
}

func evaluationSubmissionIDs(list []model.Evaluation) []string {
	ids := make([]string, 0, len(list))
	seen := make(map[string]struct{}, len(list))
	for _, e := range list {
		if _, ok := seen[e.SubmissionID]; !ok {
			seen[e.SubmissionID] = struct{}{}
			ids = append(ids, e.SubmissionID)
		}
	}
	return ids
}
