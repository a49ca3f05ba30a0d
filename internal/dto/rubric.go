package dto

import "time"

// ── 评分表 DTO ──

// CreateRubricVersionRequest 发布评分表新版本；同名评分表版本号自动递增
type CreateRubricVersionRequest struct {
	RubricName  string                 `json:"rubric_name" binding:"required,max=200"`
	Description string                 `json:"description"`
	Sections    []CreateSectionRequest `json:"sections"    binding:"required,min=1,dive"`
}

// CreateSectionRequest 评分表分节
type CreateSectionRequest struct {
	Title    string                   `json:"title"    binding:"required,max=200"`
	Criteria []CreateCriterionRequest `json:"criteria" binding:"required,min=1,dive"`
}

// CreateCriterionRequest 评分项；weight 为 0 时不参与综合得分
type CreateCriterionRequest struct {
	Label       string   `json:"label"  binding:"required,max=300"`
	Description string   `json:"description"`
	Weight      *float64 `json:"weight" binding:"required,min=0"`
}

// ── 评审场次 DTO ──

// CreateSessionRequest 创建评审场次
type CreateSessionRequest struct {
	Name            string     `json:"name"              binding:"required,max=200"`
	RubricVersionID string     `json:"rubric_version_id" binding:"required,uuid"`
	EndsAt          *time.Time `json:"ends_at"`
}

// BindRubricRequest 场次改绑评分表版本
type BindRubricRequest struct {
	RubricVersionID string `json:"rubric_version_id" binding:"required,uuid"`
}

// ── 资助申请 DTO ──

// CreateSubmissionRequest 登记资助申请
type CreateSubmissionRequest struct {
	Reference        string `json:"reference"         binding:"required,max=50"`
	Title            string `json:"title"             binding:"required,max=300"`
	OrganisationName string `json:"organisation_name" binding:"required,max=200"`
}
