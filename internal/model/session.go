package model

import (
	"time"

	"gorm.io/gorm"
)

// 评审场次状态
const (
	SessionStatusOpen   = "OUVERTE"
	SessionStatusClosed = "CLOTUREE"
)

// EvaluationSession 评审场次 — 对应 evaluation_sessions
// 任一时刻绑定且仅绑定一个评分表版本
type EvaluationSession struct {
	SessionID       string     `gorm:"type:uuid;primaryKey"                      json:"session_id"`
	Name            string     `gorm:"type:varchar(200);not null"                json:"name"`
	RubricVersionID string     `gorm:"type:uuid;not null"                        json:"rubric_version_id"`
	Status          string     `gorm:"type:varchar(20);not null"                 json:"status"` // OUVERTE | CLOTUREE
	EndsAt          *time.Time `json:"ends_at,omitempty"`
	BaseModel
}

func (EvaluationSession) TableName() string { return "evaluation_sessions" }

func (s *EvaluationSession) BeforeCreate(*gorm.DB) error {
	ensureID(&s.SessionID)
	return nil
}
