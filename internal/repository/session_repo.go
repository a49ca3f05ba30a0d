package repository

import (
	"context"

	"gorm.io/gorm"

	"biofund/backend/internal/model"
)

// SessionRepository 评审场次数据访问接口
type SessionRepository interface {
	Create(ctx context.Context, session *model.EvaluationSession) error
	GetByID(ctx context.Context, id string) (*model.EvaluationSession, error)
	List(ctx context.Context) ([]model.EvaluationSession, error)
	UpdateRubricVersion(ctx context.Context, id, rubricVersionID, updatedBy string) error
	UpdateStatus(ctx context.Context, id, status, updatedBy string) error
}

type sessionRepo struct {
	db *gorm.DB
}

// NewSessionRepo 创建 SessionRepository 实例
func NewSessionRepo(db *gorm.DB) SessionRepository {
	return &sessionRepo{db: db}
}

func (r *sessionRepo) Create(ctx context.Context, session *model.EvaluationSession) error {
	return r.db.WithContext(ctx).Create(session).Error
}

func (r *sessionRepo) GetByID(ctx context.Context, id string) (*model.EvaluationSession, error) {
	var session model.EvaluationSession
	err := r.db.WithContext(ctx).
		Where("session_id = ?", id).
		First(&session).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *sessionRepo) List(ctx context.Context) ([]model.EvaluationSession, error) {
	var sessions []model.EvaluationSession
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Find(&sessions).Error
	return sessions, err
}

func (r *sessionRepo) UpdateRubricVersion(ctx context.Context, id, rubricVersionID, updatedBy string) error {
	return r.update(ctx, id, map[string]interface{}{
		"rubric_version_id": rubricVersionID,
		"updated_by":        updatedBy,
	})
}

func (r *sessionRepo) UpdateStatus(ctx context.Context, id, status, updatedBy string) error {
	return r.update(ctx, id, map[string]interface{}{
		"status":     status,
		"updated_by": updatedBy,
	})
}

func (r *sessionRepo) update(ctx context.Context, id string, fields map[string]interface{}) error {
	result := r.db.WithContext(ctx).
		Model(&model.EvaluationSession{}).
		Where("session_id = ?", id).
		Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
