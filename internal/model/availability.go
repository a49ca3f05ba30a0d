package model

import (
	"time"

	"gorm.io/gorm"
)

// 可用性答复状态
const (
	AvailabilityPending = "EN_ATTENTE"
	AvailabilityYes     = "OUI"
	AvailabilityNo      = "NON"
)

// IsValidAvailabilityStatus 判断答复状态是否合法
func IsValidAvailabilityStatus(status string) bool {
	switch status {
	case AvailabilityPending, AvailabilityYes, AvailabilityNo:
		return true
	}
	return false
}

// Availability 评审专家场次可用性 — 对应 availabilities
// (session_id, evaluator_id) 唯一；每次答复覆盖状态与答复时间
type Availability struct {
	AvailabilityID string     `gorm:"type:uuid;primaryKey"                                json:"availability_id"`
	SessionID      string     `gorm:"type:uuid;not null;uniqueIndex:uq_availabilities_pair" json:"session_id"`
	EvaluatorID    string     `gorm:"type:uuid;not null;uniqueIndex:uq_availabilities_pair" json:"evaluator_id"`
	Status         string     `gorm:"type:varchar(20);not null"                           json:"status"` // EN_ATTENTE | OUI | NON
	RespondedAt    *time.Time `json:"responded_at,omitempty"`
	BaseModel

	// 关联
	Evaluator *User `gorm:"foreignKey:EvaluatorID;references:UserID" json:"evaluator,omitempty"`
}

func (Availability) TableName() string { return "availabilities" }

func (a *Availability) BeforeCreate(*gorm.DB) error {
	ensureID(&a.AvailabilityID)
	return nil
}
