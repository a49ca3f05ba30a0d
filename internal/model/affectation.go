package model

import "gorm.io/gorm"

// 分配状态
const (
	AffectationStatusInProgress = "EN_COURS"
	AffectationStatusDone       = "TERMINEE"
)

// Affectation 评审分配表 — 对应 affectations
// (session_id, submission_id, evaluator_id) 唯一；重复分配走 upsert 重新激活
type Affectation struct {
	AffectationID string `gorm:"type:uuid;primaryKey"                                json:"affectation_id"`
	SessionID     string `gorm:"type:uuid;not null;uniqueIndex:uq_affectations_triple" json:"session_id"`
	SubmissionID  string `gorm:"type:uuid;not null;uniqueIndex:uq_affectations_triple" json:"submission_id"`
	EvaluatorID   string `gorm:"type:uuid;not null;uniqueIndex:uq_affectations_triple" json:"evaluator_id"`
	Status        string `gorm:"type:varchar(20);not null"                           json:"status"` // EN_COURS | TERMINEE
	BaseModel

	// 关联；Submission 由仓储按 submission_id 批量回填
	Submission *Submission `gorm:"-"                                         json:"submission,omitempty"`
	Evaluator  *User       `gorm:"foreignKey:EvaluatorID;references:UserID" json:"evaluator,omitempty"`
}

func (Affectation) TableName() string { return "affectations" }

func (a *Affectation) BeforeCreate(*gorm.DB) error {
	ensureID(&a.AffectationID)
	return nil
}
