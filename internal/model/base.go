package model

import (
	"time"

	"github.com/google/uuid"
)

// BaseModel 通用审计字段（所有业务模型嵌入）
type BaseModel struct {
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	CreatedBy *string   `gorm:"type:uuid"                          json:"created_by,omitempty"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
	UpdatedBy *string   `gorm:"type:uuid"                          json:"updated_by,omitempty"`
}

// SetAuthor 同时设置创建人与更新人
func (b *BaseModel) SetAuthor(userID string) {
	if userID == "" {
		return
	}
	b.CreatedBy = &userID
	b.UpdatedBy = &userID
}

// ensureID 主键为空时生成 UUID；主键在应用侧生成，不依赖数据库 gen_random_uuid()
func ensureID(id *string) {
	if *id == "" {
		*id = uuid.NewString()
	}
}

// ── 角色 ──

const (
	RoleAdmin     = "admin"
	RoleEvaluator = "evaluateur"
)
