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

var (
	ErrSubmissionNotFound        = apperrors.New(apperrors.KindNotFound, 21003, "资助申请不存在")
	ErrSubmissionReferenceExists = apperrors.New(apperrors.KindConflict, 21004, "申请编号已存在")
)

// SubmissionService 资助申请业务接口
type SubmissionService interface {
	Create(ctx context.Context, req *dto.CreateSubmissionRequest, callerID string) (*dto.SubmissionResponse, error)
	List(ctx context.Context, req *dto.PaginationRequest) ([]dto.SubmissionResponse, int64, error)
}

type submissionService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewSubmissionService 创建 SubmissionService 实例
func NewSubmissionService(repo *repository.Repository, logger *zap.Logger) SubmissionService {
	return &submissionService{repo: repo, logger: logger}
}

func (s *submissionService) Create(ctx context.Context, req *dto.CreateSubmissionRequest, callerID string) (*dto.SubmissionResponse, error) {
	submission := &model.Submission{
		Reference:        req.Reference,
		Title:            req.Title,
		OrganisationName: req.OrganisationName,
		Status:           model.SubmissionStatusDeposited,
	}
	submission.SetAuthor(callerID)

	if err := s.repo.Submission.Create(ctx, submission); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrSubmissionReferenceExists
		}
		s.logger.Error("创建资助申请失败", zap.String("reference", req.Reference), zap.Error(err))
		return nil, apperrors.Persistence(err)
	}
	return toSubmissionResponse(submission), nil
}

func (s *submissionService) List(ctx context.Context, req *dto.PaginationRequest) ([]dto.SubmissionResponse, int64, error) {
	submissions, total, err := s.repo.Submission.List(ctx, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询资助申请列表失败", zap.Error(err))
		return nil, 0, apperrors.Persistence(err)
	}

	list := make([]dto.SubmissionResponse, 0, len(submissions))
	for i := range submissions {
		list = append(list, *toSubmissionResponse(&submissions[i]))
	}
	return list, total, nil
}

func ensureSubmission(ctx context.Context, repo *repository.Repository, logger *zap.Logger, submissionID string) error {
	if _, err := repo.Submission.GetByID(ctx, submissionID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSubmissionNotFound
		}
		logger.Error("查询资助申请失败", zap.String("submission_id", submissionID), zap.Error(err))
		return apperrors.Persistence(err)
	}
	return nil
}

func toSubmissionResponse(s *model.Submission) *dto.SubmissionResponse {
	return &dto.SubmissionResponse{
		ID:               s.SubmissionID,
		Reference:        s.Reference,
		Title:            s.Title,
		OrganisationName: s.OrganisationName,
		Status:           s.Status,
	}
}
