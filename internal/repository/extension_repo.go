package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"biofund/backend/internal/model"
)

// ExtensionRepository 延时授权数据访问接口
type ExtensionRepository interface {
	// Upsert 按 (session_id, evaluator_id) 覆盖上一次授权
	Upsert(ctx context.Context, e *model.Extension) (*model.Extension, error)
	GetByPair(ctx context.Context, sessionID, evaluatorID string) (*model.Extension, error)
}

type extensionRepo struct {
	db *gorm.DB
}

// NewExtensionRepo 创建 ExtensionRepository 实例
func NewExtensionRepo(db *gorm.DB) ExtensionRepository {
	return &extensionRepo{db: db}
}

func (r *extensionRepo) Upsert(ctx context.Context, e *model.Extension) (*model.Extension, error) {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "session_id"}, {Name: "evaluator_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"minutes", "granted_by", "granted_at", "expires_at", "updated_at", "updated_by",
			}),
		}).
		Create(e).Error
	if err != nil {
		return nil, err
	}
	return r.GetByPair(ctx, e.SessionID, e.EvaluatorID)
}

func (r *extensionRepo) GetByPair(ctx context.Context, sessionID, evaluatorID string) (*model.Extension, error) {
	var e model.Extension
	err := r.db.WithContext(ctx).
		Where("session_id = ? AND evaluator_id = ?", sessionID, evaluatorID).
		First(&e).Error
	if err != nil {
		return nil, err
	}
	return &e, nil
}
