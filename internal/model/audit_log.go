package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// 审计结果
const (
	AuditResultSuccess = "SUCCESS"
	AuditResultFailure = "FAILURE"
)

// AuditActorSystem 无操作人时的占位值
const AuditActorSystem = "system"

// AuditLog 管理操作审计日志 — 对应 audit_logs（只追加）
type AuditLog struct {
	AuditLogID  string         `gorm:"type:uuid;primaryKey"               json:"audit_log_id"`
	ActorID     string         `gorm:"type:varchar(64);not null;index"    json:"actor_id"`
	ActionType  string         `gorm:"type:varchar(50);not null;index"    json:"action_type"`
	TargetType  *string        `gorm:"type:varchar(50)"                   json:"target_type,omitempty"`
	TargetID    *string        `gorm:"type:varchar(64)"                   json:"target_id,omitempty"`
	Description *string        `gorm:"type:text"                          json:"description,omitempty"`
	Details     datatypes.JSON `json:"details,omitempty"`
	Result      string         `gorm:"type:varchar(20);not null"          json:"result"`
	CreatedAt   time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (AuditLog) TableName() string { return "audit_logs" }

func (l *AuditLog) BeforeCreate(*gorm.DB) error {
	ensureID(&l.AuditLogID)
	return nil
}
