package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"biofund/backend/internal/dto"
	apperrors "biofund/backend/pkg/errors"
	"biofund/backend/pkg/redis"
)

// ── 机构注册草稿模块业务错误 ──

var (
	ErrDraftNotFound         = apperrors.New(apperrors.KindNotFound, 27001, "注册草稿不存在或已过期")
	ErrDraftStoreUnavailable = apperrors.New(apperrors.KindUnavailable, 27002, "草稿暂存服务不可用")
	ErrDraftTokenInvalid     = apperrors.New(apperrors.KindValidation, 27003, "草稿令牌无效")
)

// DraftStore 带过期时间的键值存储
type DraftStore interface {
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}

// RegistrationService 机构注册向导草稿业务接口
// 草稿按令牌独立存放，到期即失效；不在进程内缓存
type RegistrationService interface {
	// SaveDraft token 为空时新建草稿，否则覆盖已有草稿并重置有效期
	SaveDraft(ctx context.Context, token string, req *dto.RegistrationDraftRequest) (*dto.RegistrationDraftResponse, error)
	GetDraft(ctx context.Context, token string) (*dto.RegistrationDraftResponse, error)
	DiscardDraft(ctx context.Context, token string) error
}

type registrationService struct {
	store  DraftStore
	ttl    time.Duration
	logger *zap.Logger
	now    func() time.Time
}

// NewRegistrationService 创建 RegistrationService 实例；store 为 nil 时所有操作返回不可用
func NewRegistrationService(store DraftStore, ttl time.Duration, logger *zap.Logger) RegistrationService {
	return &registrationService{store: store, ttl: ttl, logger: logger, now: time.Now}
}

const draftKeyPrefix = "registration:draft:"

type storedDraft struct {
	Draft     dto.RegistrationDraftRequest `json:"draft"`
	ExpiresAt time.Time                    `json:"expires_at"`
}

// ────────────────────── SaveDraft ──────────────────────

func (s *registrationService) SaveDraft(ctx context.Context, token string, req *dto.RegistrationDraftRequest) (*dto.RegistrationDraftResponse, error) {
	if s.store == nil {
		return nil, ErrDraftStoreUnavailable
	}

	if token == "" {
		token = uuid.NewString()
	} else {
		if _, err := s.load(ctx, token); err != nil {
			return nil, err
		}
	}

	record := storedDraft{Draft: *req, ExpiresAt: s.now().Add(s.ttl)}
	raw, err := json.Marshal(record)
	if err != nil {
		return nil, err
	}

	if err := s.store.SetWithTTL(ctx, draftKeyPrefix+token, raw, s.ttl); err != nil {
		s.logger.Error("保存注册草稿失败", zap.Error(err))
		return nil, ErrDraftStoreUnavailable.Wrap(err)
	}
	return toDraftResponse(token, &record), nil
}

// ────────────────────── GetDraft ──────────────────────

func (s *registrationService) GetDraft(ctx context.Context, token string) (*dto.RegistrationDraftResponse, error) {
	if s.store == nil {
		return nil, ErrDraftStoreUnavailable
	}
	record, err := s.load(ctx, token)
	if err != nil {
		return nil, err
	}
	return toDraftResponse(token, record), nil
}

// ────────────────────── DiscardDraft ──────────────────────

func (s *registrationService) DiscardDraft(ctx context.Context, token string) error {
	if s.store == nil {
		return ErrDraftStoreUnavailable
	}
	if _, err := uuid.Parse(token); err != nil {
		return ErrDraftTokenInvalid
	}
	if err := s.store.Delete(ctx, draftKeyPrefix+token); err != nil {
		s.logger.Error("删除注册草稿失败", zap.Error(err))
		return ErrDraftStoreUnavailable.Wrap(err)
	}
	return nil
}

// load 读取草稿并显式校验过期时间
func (s *registrationService) load(ctx context.Context, token string) (*storedDraft, error) {
	if _, err := uuid.Parse(token); err != nil {
		return nil, ErrDraftTokenInvalid
	}

	raw, err := s.store.Get(ctx, draftKeyPrefix+token)
	if err != nil {
		if errors.Is(err, redis.ErrKeyNotFound) {
			return nil, ErrDraftNotFound
		}
		s.logger.Error("读取注册草稿失败", zap.Error(err))
		return nil, ErrDraftStoreUnavailable.Wrap(err)
	}

	var record storedDraft
	if err := json.Unmarshal(raw, &record); err != nil {
		s.logger.Warn("注册草稿内容损坏，已丢弃", zap.Error(err))
		_ = s.store.Delete(ctx, draftKeyPrefix+token)
		return nil, ErrDraftNotFound
	}
	if !s.now().Before(record.ExpiresAt) {
		_ = s.store.Delete(ctx, draftKeyPrefix+token)
		return nil, ErrDraftNotFound
	}
	return &record, nil
}

func toDraftResponse(token string, record *storedDraft) *dto.RegistrationDraftResponse {
	return &dto.RegistrationDraftResponse{
		Token:     token,
		ExpiresAt: formatTime(record.ExpiresAt),
		Draft:     record.Draft,
	}
}
