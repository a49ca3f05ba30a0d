package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"biofund/backend/internal/dto"
	"biofund/backend/internal/model"
	"biofund/backend/internal/repository"
	apperrors "biofund/backend/pkg/errors"
)

// ── 用户模块业务错误 ──

var (
	ErrEmailExists = apperrors.New(apperrors.KindConflict, 28001, "邮箱已被注册")
	ErrInvalidRole = apperrors.New(apperrors.KindValidation, 28002, "角色无效")
)

// UserService 用户业务接口
type UserService interface {
	Create(ctx context.Context, req *dto.CreateUserRequest, callerID string) (*dto.UserResponse, error)
	ListEvaluators(ctx context.Context) ([]dto.UserResponse, error)
}

type userService struct {
	repo   *repository.Repository
	audit  AuditLogger
	logger *zap.Logger
}

// NewUserService 创建 UserService 实例
func NewUserService(repo *repository.Repository, audit AuditLogger, logger *zap.Logger) UserService {
	return &userService{repo: repo, audit: audit, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *userService) Create(ctx context.Context, req *dto.CreateUserRequest, callerID string) (*dto.UserResponse, error) {
	if req.Role != model.RoleAdmin && req.Role != model.RoleEvaluator {
		return nil, ErrInvalidRole
	}

	// 检查邮箱唯一性
	if _, err := s.repo.User.GetByEmail(ctx, req.Email); err == nil {
		return nil, ErrEmailExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询用户失败", zap.Error(err))
		return nil, apperrors.Persistence(err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("密码哈希失败", zap.Error(err))
		return nil, err
	}

	user := &model.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         req.Role,
	}
	user.SetAuthor(callerID)

	if err := s.repo.User.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailExists
		}
		s.logger.Error("创建用户失败", zap.String("email", req.Email), zap.Error(err))
		return nil, apperrors.Persistence(err)
	}

	s.audit.Log(ctx, AuditEntry{
		ActorID:    callerID,
		ActionType: AuditActionUserCreate,
		TargetType: "user",
		TargetID:   user.UserID,
		Details:    map[string]interface{}{"role": user.Role},
	})

	return toUserResponse(user), nil
}

// ────────────────────── ListEvaluators ──────────────────────

func (s *userService) ListEvaluators(ctx context.Context) ([]dto.UserResponse, error) {
	users, err := s.repo.User.ListByRole(ctx, model.RoleEvaluator)
	if err != nil {
		s.logger.Error("查询评审专家列表失败", zap.Error(err))
		return nil, apperrors.Persistence(err)
	}

	list := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		list = append(list, *toUserResponse(&users[i]))
	}
	return list, nil
}
