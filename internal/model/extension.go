package model

import (
	"time"

	"gorm.io/gorm"
)

// Extension 评审延时授权 — 对应 extensions
// (session_id, evaluator_id) 唯一；再次授权覆盖（不累加）上一次授权
type Extension struct {
	ExtensionID string    `gorm:"type:uuid;primaryKey"                             json:"extension_id"`
	SessionID   string    `gorm:"type:uuid;not null;uniqueIndex:uq_extensions_pair" json:"session_id"`
	EvaluatorID string    `gorm:"type:uuid;not null;uniqueIndex:uq_extensions_pair" json:"evaluator_id"`
	Minutes     int       `gorm:"not null"                                          json:"minutes"`
	GrantedBy   string    `gorm:"type:uuid;not null"                                json:"granted_by"`
	GrantedAt   time.Time `gorm:"not null"                                          json:"granted_at"`
	ExpiresAt   time.Time `gorm:"not null"                                          json:"expires_at"`
	BaseModel

	// 关联
	Evaluator *User `gorm:"foreignKey:EvaluatorID;references:UserID" json:"-"`
}

func (Extension) TableName() string { return "extensions" }

func (e *Extension) BeforeCreate(*gorm.DB) error {
	ensureID(&e.ExtensionID)
	return nil
}
