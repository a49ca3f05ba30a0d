package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"biofund/backend/internal/model"
)

// AvailabilityRepository 评审专家可用性数据访问接口
type AvailabilityRepository interface {
	// Upsert 按 (session_id, evaluator_id) 写入或覆盖，返回持久化后的记录
	Upsert(ctx context.Context, a *model.Availability) (*model.Availability, error)
	GetByPair(ctx context.Context, sessionID, evaluatorID string) (*model.Availability, error)
	ListBySession(ctx context.Context, sessionID string) ([]model.Availability, error)
}

type availabilityRepo struct {
	db *gorm.DB
}

// NewAvailabilityRepo 创建 AvailabilityRepository 实例
func NewAvailabilityRepo(db *gorm.DB) AvailabilityRepository {
	return &availabilityRepo{db: db}
}

func (r *availabilityRepo) Upsert(ctx context.Context, a *model.Availability) (*model.Availability, error) {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "session_id"}, {Name: "evaluator_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"status", "responded_at", "updated_at", "updated_by"}),
		}).
		Create(a).Error
	if err != nil {
		return nil, err
	}
	return r.GetByPair(ctx, a.SessionID, a.EvaluatorID)
}

func (r *availabilityRepo) GetByPair(ctx context.Context, sessionID, evaluatorID string) (*model.Availability, error) {
	var a model.Availability
	err := r.db.WithContext(ctx).
		Where("session_id = ? AND evaluator_id = ?", sessionID, evaluatorID).
		First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *availabilityRepo) ListBySession(ctx context.Context, sessionID string) ([]model.Availability, error) {
	var list []model.Availability
	err := r.db.WithContext(ctx).
		Preload("Evaluator").
		Where("session_id = ?", sessionID).
		Order("updated_at DESC").
		Find(&list).Error
	return list, err
}
