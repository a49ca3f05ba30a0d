package dto

import "time"

// ── 评审分配 DTO ──

// AssignEvaluatorsRequest 批量分配评审专家
type AssignEvaluatorsRequest struct {
	Assignments []AssignmentPair `json:"assignments" binding:"required,min=1,dive"`
}

// AssignmentPair 单条分配
type AssignmentPair struct {
	SubmissionID string `json:"submission_id" binding:"required"`
	EvaluatorID  string `json:"evaluator_id"  binding:"required"`
}

// ── 可用性 DTO ──

// RespondAvailabilityRequest 评审专家答复场次可用性
type RespondAvailabilityRequest struct {
	Status string `json:"status" binding:"required"`
}

// ── 延时授权 DTO ──

// GrantExtensionRequest 授予延时；minutes 缺省时取配置默认值，expires_at 显式给出时优先
// minutes 不做正数校验，按原值记录
type GrantExtensionRequest struct {
	Minutes   *int       `json:"minutes"`
	ExpiresAt *time.Time `json:"expires_at"`
}

// ── 评审记录 DTO ──

// SubmitEvaluationRequest 保存草稿或提交评审
type SubmitEvaluationRequest struct {
	Comment  *string     `json:"comment"`
	Notes    []NoteInput `json:"notes"    binding:"omitempty,dive"`
	Finalize bool        `json:"finalize"`
}

// NoteInput 单项评分输入，value_pct 超出 [0,100] 时截断
type NoteInput struct {
	CriterionID string   `json:"criterion_id" binding:"required"`
	ValuePct    *float64 `json:"value_pct"    binding:"required"`
}

// ── 审计日志 DTO ──

// AuditLogListRequest 审计日志查询参数
type AuditLogListRequest struct {
	PaginationRequest
	ActorID    string `form:"actor_id"`
	ActionType string `form:"action_type"`
	TargetType string `form:"target_type"`
	TargetID   string `form:"target_id"`
}

// ── 机构注册草稿 DTO ──

// RegistrationDraftRequest 机构注册向导的暂存内容
type RegistrationDraftRequest struct {
	OrganisationName string            `json:"organisation_name" binding:"required,max=200"`
	ContactName      string            `json:"contact_name"      binding:"max=100"`
	ContactEmail     string            `json:"contact_email"     binding:"omitempty,email"`
	Country          string            `json:"country"           binding:"max=100"`
	Step             int               `json:"step"              binding:"min=0"`
	Fields           map[string]string `json:"fields"`
}
