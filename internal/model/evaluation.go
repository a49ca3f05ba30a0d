package model

import (
	"time"

	"gorm.io/gorm"
)

// 评审状态
const (
	EvaluationStatusDraft     = "BROUILLON"
	EvaluationStatusSubmitted = "SOUMISE"
)

// Evaluation 评审记录 — 对应 evaluations
// (session_id, submission_id, evaluator_id) 唯一；正常流程中不删除
type Evaluation struct {
	EvaluationID    string     `gorm:"type:uuid;primaryKey"                               json:"evaluation_id"`
	SessionID       string     `gorm:"type:uuid;not null;uniqueIndex:uq_evaluations_triple" json:"session_id"`
	SubmissionID    string     `gorm:"type:uuid;not null;uniqueIndex:uq_evaluations_triple" json:"submission_id"`
	EvaluatorID     string     `gorm:"type:uuid;not null;uniqueIndex:uq_evaluations_triple" json:"evaluator_id"`
	Status          string     `gorm:"type:varchar(20);not null"                          json:"status"` // BROUILLON | SOUMISE
	Comment         *string    `gorm:"type:text"                                          json:"comment,omitempty"`
	SubmittedAt     *time.Time `json:"submitted_at,omitempty"`
	// 每次保存时重新绑定为场次当前的评分表版本
	RubricVersionID string `gorm:"type:uuid;not null" json:"rubric_version_id"`
	// 0-100；无可计分项时为 NULL
	ScorePct *int `json:"score_pct"`
	BaseModel

	// 关联
	Notes      []EvaluationNote `gorm:"foreignKey:EvaluationID;references:EvaluationID" json:"notes,omitempty"`
	Submission *Submission      `gorm:"-"                                               json:"-"` // 仓储回填
	Evaluator  *User            `gorm:"foreignKey:EvaluatorID;references:UserID"        json:"-"`
}

func (Evaluation) TableName() string { return "evaluations" }

func (e *Evaluation) BeforeCreate(*gorm.DB) error {
	ensureID(&e.EvaluationID)
	return nil
}

// EvaluationNote 单项评分 — 对应 evaluation_notes
type EvaluationNote struct {
	NoteID       string    `gorm:"type:uuid;primaryKey"               json:"note_id"`
	EvaluationID string    `gorm:"type:uuid;not null;index"           json:"evaluation_id"`
	CriterionID  string    `gorm:"type:uuid;not null"                 json:"criterion_id"`
	ValuePct     float64   `gorm:"not null"                           json:"value_pct"` // [0, 100]
	CreatedAt    time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (EvaluationNote) TableName() string { return "evaluation_notes" }

func (n *EvaluationNote) BeforeCreate(*gorm.DB) error {
	ensureID(&n.NoteID)
	return nil
}
