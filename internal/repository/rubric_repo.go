package repository

import (
	"context"

	"gorm.io/gorm"

	"biofund/backend/internal/model"
)

// RubricRepository 评分表版本数据访问接口
type RubricRepository interface {
	// CreateVersion 连同分节与评分项一并写入
	CreateVersion(ctx context.Context, version *model.RubricVersion) error
	GetVersion(ctx context.Context, id string) (*model.RubricVersion, error)
	LatestVersionNumber(ctx context.Context, rubricName string) (int, error)
	ListVersions(ctx context.Context, rubricName string) ([]model.RubricVersion, error)
}

type rubricRepo struct {
	db *gorm.DB
}

// NewRubricRepo 创建 RubricRepository 实例
func NewRubricRepo(db *gorm.DB) RubricRepository {
	return &rubricRepo{db: db}
}

func byPosition(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

func (r *rubricRepo) CreateVersion(ctx context.Context, version *model.RubricVersion) error {
	return r.db.WithContext(ctx).Create(version).Error
}

func (r *rubricRepo) GetVersion(ctx context.Context, id string) (*model.RubricVersion, error) {
	var version model.RubricVersion
	err := r.db.WithContext(ctx).
		Preload("Sections", byPosition).
		Preload("Sections.Criteria", byPosition).
		Where("rubric_version_id = ?", id).
		First(&version).Error
	if err != nil {
		return nil, err
	}
	return &version, nil
}

func (r *rubricRepo) LatestVersionNumber(ctx context.Context, rubricName string) (int, error) {
	var latest int
	err := r.db.WithContext(ctx).
		Model(&model.RubricVersion{}).
		Where("rubric_name = ?", rubricName).
		Select("COALESCE(MAX(version), 0)").
		Scan(&latest).Error
	return latest, err
}

func (r *rubricRepo) ListVersions(ctx context.Context, rubricName string) ([]model.RubricVersion, error) {
	var versions []model.RubricVersion
	db := r.db.WithContext(ctx).Model(&model.RubricVersion{})
	if rubricName != "" {
		db = db.Where("rubric_name = ?", rubricName)
	}
	err := db.Order("rubric_name ASC, version DESC").Find(&versions).Error
	return versions, err
}
