package model

import "gorm.io/gorm"

// 项目申请状态
const (
	SubmissionStatusDeposited = "DEPOSEE"
	SubmissionStatusApproved  = "APPROUVEE"
	SubmissionStatusRejected  = "REJETEE"
)

// Submission 资助申请项目 — 对应 submissions
type Submission struct {
	SubmissionID     string `gorm:"type:uuid;primaryKey"                                    json:"submission_id"`
	Reference        string `gorm:"type:varchar(50);not null;uniqueIndex:uq_submissions_reference" json:"reference"`
	Title            string `gorm:"type:varchar(300);not null"                              json:"title"`
	OrganisationName string `gorm:"type:varchar(200);not null"                              json:"organisation_name"`
	Status           string `gorm:"type:varchar(20);not null"                               json:"status"`
	BaseModel
}

func (Submission) TableName() string { return "submissions" }

func (s *Submission) BeforeCreate(*gorm.DB) error {
	ensureID(&s.SubmissionID)
	return nil
}
