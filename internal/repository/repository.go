package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repository 所有 Repository 的聚合入口
type Repository struct {
	db *gorm.DB

	User         UserRepository
	Rubric       RubricRepository
	Session      SessionRepository
	Submission   SubmissionRepository
	Affectation  AffectationRepository
	Availability AvailabilityRepository
	Extension    ExtensionRepository
	Evaluation   EvaluationRepository
	AuditLog     AuditLogRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db:           db,
		User:         NewUserRepo(db),
		Rubric:       NewRubricRepo(db),
		Session:      NewSessionRepo(db),
		Submission:   NewSubmissionRepo(db),
		Affectation:  NewAffectationRepo(db),
		Availability: NewAvailabilityRepo(db),
		Extension:    NewExtensionRepo(db),
		Evaluation:   NewEvaluationRepo(db),
		AuditLog:     NewAuditLogRepo(db),
	}
}

// BeginTx 开启事务；聚合未持有数据库连接（单元测试中的 mock 聚合）时返回 nil
func (r *Repository) BeginTx(ctx context.Context) (*gorm.DB, error) {
	if r.db == nil {
		return nil, nil
	}
	tx := r.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}
	return tx, nil
}

// WithTx 返回绑定到事务的 Repository 聚合；tx 为 nil 时返回自身
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return NewRepository(tx)
}
