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

// ── 评审场次 / 评分表模块业务错误 ──

var (
	ErrSessionNotFound       = apperrors.New(apperrors.KindNotFound, 21001, "评审场次不存在")
	ErrRubricVersionNotFound = apperrors.New(apperrors.KindNotFound, 21002, "评分表版本不存在")
	ErrRubricVersionConflict = apperrors.New(apperrors.KindConflict, 21005, "评分表版本号冲突，请重试")
)

// RubricService 评分表版本业务接口
type RubricService interface {
	// CreateVersion 发布新版本；版本号为同名评分表当前最大版本号 + 1
	CreateVersion(ctx context.Context, req *dto.CreateRubricVersionRequest, callerID string) (*dto.RubricVersionResponse, error)
	GetVersion(ctx context.Context, id string) (*dto.RubricVersionResponse, error)
	ListVersions(ctx context.Context, rubricName string) ([]dto.RubricVersionResponse, error)
}

type rubricService struct {
	repo   *repository.Repository
	audit  AuditLogger
	logger *zap.Logger
}

// NewRubricService 创建 RubricService 实例
func NewRubricService(repo *repository.Repository, audit AuditLogger, logger *zap.Logger) RubricService {
	return &rubricService{repo: repo, audit: audit, logger: logger}
}

// ────────────────────── CreateVersion ──────────────────────

func (s *rubricService) CreateVersion(ctx context.Context, req *dto.CreateRubricVersionRequest, callerID string) (*dto.RubricVersionResponse, error) {
	latest, err := s.repo.Rubric.LatestVersionNumber(ctx, req.RubricName)
	if err != nil {
		s.logger.Error("查询评分表版本号失败", zap.String("rubric_name", req.RubricName), zap.Error(err))
		return nil, apperrors.Persistence(err)
	}

	version := &model.RubricVersion{
		RubricName:  req.RubricName,
		Version:     latest + 1,
		Description: req.Description,
		Sections:    make([]model.RubricSection, 0, len(req.Sections)),
	}
	version.SetAuthor(callerID)

	for i, sec := range req.Sections {
		section := model.RubricSection{
			Title:    sec.Title,
			Position: i + 1,
			Criteria: make([]model.Criterion, 0, len(sec.Criteria)),
		}
		for j, c := range sec.Criteria {
			weight := 0.0
			if c.Weight != nil {
				weight = *c.Weight
			}
			section.Criteria = append(section.Criteria, model.Criterion{
				Label:       c.Label,
				Description: c.Description,
				Weight:      weight,
				Position:    j + 1,
			})
		}
		version.Sections = append(version.Sections, section)
	}

	if err := s.repo.Rubric.CreateVersion(ctx, version); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrRubricVersionConflict
		}
		s.logger.Error("创建评分表版本失败", zap.String("rubric_name", req.RubricName), zap.Error(err))
		return nil, apperrors.Persistence(err)
	}

	s.audit.Log(ctx, AuditEntry{
		ActorID:    callerID,
		ActionType: AuditActionRubricPublish,
		TargetType: "rubric_version",
		TargetID:   version.RubricVersionID,
		Details:    map[string]interface{}{"rubric_name": version.RubricName, "version": version.Version},
	})

	return toRubricVersionResponse(version), nil
}

// ────────────────────── GetVersion ──────────────────────

func (s *rubricService) GetVersion(ctx context.Context, id string) (*dto.RubricVersionResponse, error) {
	version, err := s.repo.Rubric.GetVersion(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRubricVersionNotFound
		}
		s.logger.Error("查询评分表版本失败", zap.String("rubric_version_id", id), zap.Error(err))
		return nil, apperrors.Persistence(err)
	}
	return toRubricVersionResponse(version), nil
}

// ────────────────────── ListVersions ──────────────────────

func (s *rubricService) ListVersions(ctx context.Context, rubricName string) ([]dto.RubricVersionResponse, error) {
	versions, err := s.repo.Rubric.ListVersions(ctx, rubricName)
	if err != nil {
		s.logger.Error("查询评分表版本列表失败", zap.Error(err))
		return nil, apperrors.Persistence(err)
	}

	list := make([]dto.RubricVersionResponse, 0, len(versions))
	for i := range versions {
		list = append(list, *toRubricVersionResponse(&versions[i]))
	}
	return list, nil
}

func toRubricVersionResponse(v *model.RubricVersion) *dto.RubricVersionResponse {
	resp := &dto.RubricVersionResponse{
		ID:          v.RubricVersionID,
		RubricName:  v.RubricName,
		Version:     v.Version,
		Description: v.Description,
		CreatedAt:   formatTime(v.CreatedAt),
	}
	for _, sec := range v.Sections {
		section := dto.SectionResponse{
			ID:       sec.SectionID,
			Title:    sec.Title,
			Position: sec.Position,
			Criteria: make([]dto.CriterionResponse, 0, len(sec.Criteria)),
		}
		for _, c := range sec.Criteria {
			section.Criteria = append(section.Criteria, dto.CriterionResponse{
				ID:          c.CriterionID,
				Label:       c.Label,
				Description: c.Description,
				Weight:      c.Weight,
				Position:    c.Position,
			})
		}
		resp.Sections = append(resp.Sections, section)
	}
	return resp
}
