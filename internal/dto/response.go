package dto

// ── 认证模块响应 ──

// TokenResponse 登录响应
type TokenResponse struct {
	AccessToken string       `json:"access_token"`
	ExpiresIn   int          `json:"expires_in"` // Access Token 有效期（秒）
	User        UserResponse `json:"user"`
}

// ── 用户模块响应 ──

// UserResponse 用户信息响应（脱敏）
type UserResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// ── 评分表 / 场次 / 申请响应 ──

// RubricVersionResponse 评分表版本
type RubricVersionResponse struct {
	ID          string            `json:"id"`
	RubricName  string            `json:"rubric_name"`
	Version     int               `json:"version"`
	Description string            `json:"description,omitempty"`
	Sections    []SectionResponse `json:"sections,omitempty"`
	CreatedAt   string            `json:"created_at"`
}

// SectionResponse 评分表分节
type SectionResponse struct {
	ID       string              `json:"id"`
	Title    string              `json:"title"`
	Position int                 `json:"position"`
	Criteria []CriterionResponse `json:"criteria"`
}

// CriterionResponse 评分项
type CriterionResponse struct {
	ID          string  `json:"id"`
	Label       string  `json:"label"`
	Description string  `json:"description,omitempty"`
	Weight      float64 `json:"weight"`
	Position    int     `json:"position"`
}

// SessionResponse 评审场次
type SessionResponse struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	RubricVersionID string  `json:"rubric_version_id"`
	Status          string  `json:"status"`
	EndsAt          *string `json:"ends_at,omitempty"`
	CreatedAt       string  `json:"created_at"`
}

// SubmissionResponse 资助申请
type SubmissionResponse struct {
	ID               string `json:"id"`
	Reference        string `json:"reference"`
	Title            string `json:"title"`
	OrganisationName string `json:"organisation_name"`
	Status           string `json:"status"`
}

// ── 评审分配响应 ──

// AffectationResponse 分配记录
type AffectationResponse struct {
	ID            string              `json:"id"`
	SessionID     string              `json:"session_id"`
	SubmissionID  string              `json:"submission_id"`
	EvaluatorID   string              `json:"evaluator_id"`
	Status        string              `json:"status"`
	Submission    *SubmissionResponse `json:"submission,omitempty"`
	EvaluatorName string              `json:"evaluator_name,omitempty"`
	UpdatedAt     string              `json:"updated_at"`
}

// AssignedSubmissionResponse 评审专家视角的待评项目
type AssignedSubmissionResponse struct {
	AffectationID    string             `json:"affectation_id"`
	Status           string             `json:"status"`
	Submission       SubmissionResponse `json:"submission"`
	EvaluationStatus *string            `json:"evaluation_status,omitempty"`
	ScorePct         *int               `json:"score_pct,omitempty"`
}

// ── 可用性 / 延时响应 ──

// AvailabilityResponse 可用性答复
type AvailabilityResponse struct {
	ID            string  `json:"id"`
	SessionID     string  `json:"session_id"`
	EvaluatorID   string  `json:"evaluator_id"`
	EvaluatorName string  `json:"evaluator_name,omitempty"`
	Status        string  `json:"status"`
	RespondedAt   *string `json:"responded_at,omitempty"`
}

// ExtensionResponse 延时授权
type ExtensionResponse struct {
	ID          string `json:"id"`
	SessionID   string `json:"session_id"`
	EvaluatorID string `json:"evaluator_id"`
	Minutes     int    `json:"minutes"`
	GrantedBy   string `json:"granted_by"`
	GrantedAt   string `json:"granted_at"`
	ExpiresAt   string `json:"expires_at"`
}

// ── 评审记录响应 ──

// EvaluationResponse 评审记录
type EvaluationResponse struct {
	ID              string         `json:"id"`
	SessionID       string         `json:"session_id"`
	SubmissionID    string         `json:"submission_id"`
	EvaluatorID     string         `json:"evaluator_id"`
	EvaluatorName   string         `json:"evaluator_name,omitempty"`
	Status          string         `json:"status"`
	Comment         *string        `json:"comment,omitempty"`
	SubmittedAt     *string        `json:"submitted_at,omitempty"`
	RubricVersionID string         `json:"rubric_version_id"`
	ScorePct        *int           `json:"score_pct"`
	Notes           []NoteResponse `json:"notes"`
}

// NoteResponse 单项评分
type NoteResponse struct {
	CriterionID string  `json:"criterion_id"`
	ValuePct    float64 `json:"value_pct"`
}

// SubmissionEvaluationsResponse 某项目在场次内的全部评审
type SubmissionEvaluationsResponse struct {
	SubmissionID   string               `json:"submission_id"`
	Evaluations    []EvaluationResponse `json:"evaluations"`
	SubmittedCount int                  `json:"submitted_count"`
	MeanScorePct   *float64             `json:"mean_score_pct"` // 仅统计已提交且有得分的评审
}

// ── 审计日志响应 ──

// AuditLogResponse 审计日志
type AuditLogResponse struct {
	ID          string      `json:"id"`
	ActorID     string      `json:"actor_id"`
	ActionType  string      `json:"action_type"`
	TargetType  *string     `json:"target_type,omitempty"`
	TargetID    *string     `json:"target_id,omitempty"`
	Description *string     `json:"description,omitempty"`
	Details     interface{} `json:"details,omitempty"`
	Result      string      `json:"result"`
	CreatedAt   string      `json:"created_at"`
}

// ── 注册草稿响应 ──

// RegistrationDraftResponse 暂存的注册草稿
type RegistrationDraftResponse struct {
	Token     string                   `json:"token"`
	ExpiresAt string                   `json:"expires_at"`
	Draft     RegistrationDraftRequest `json:"draft"`
}

// ── 通用 ──

// PaginationRequest 通用分页参数
type PaginationRequest struct {
	Page     int `form:"page"      binding:"omitempty,min=1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// GetPage 获取页码（含默认值）
func (p *PaginationRequest) GetPage() int {
	if p.Page <= 0 {
		return 1
	}
	return p.Page
}

// GetPageSize 获取每页数量（含默认值）
func (p *PaginationRequest) GetPageSize() int {
	if p.PageSize <= 0 {
		return 20
	}
	return p.PageSize
}

// GetOffset 计算偏移量
func (p *PaginationRequest) GetOffset() int {
	return (p.GetPage() - 1) * p.GetPageSize()
}
