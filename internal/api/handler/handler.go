package handler

import "biofund/backend/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth         *AuthHandler
	User         *UserHandler
	Rubric       *RubricHandler
	Session      *SessionHandler
	Submission   *SubmissionHandler
	Affectation  *AffectationHandler
	Availability *AvailabilityHandler
	Extension    *ExtensionHandler
	Evaluation   *EvaluationHandler
	Export       *ExportHandler
	Audit        *AuditHandler
	Registration *RegistrationHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Auth:         NewAuthHandler(svc.Auth),
		User:         NewUserHandler(svc.User),
		Rubric:       NewRubricHandler(svc.Rubric),
		Session:      NewSessionHandler(svc.Session),
		Submission:   NewSubmissionHandler(svc.Submission),
		Affectation:  NewAffectationHandler(svc.Affectation),
		Availability: NewAvailabilityHandler(svc.Availability),
		Extension:    NewExtensionHandler(svc.Extension),
		Evaluation:   NewEvaluationHandler(svc.Evaluation),
		Export:       NewExportHandler(svc.Export),
		Audit:        NewAuditHandler(svc.Audit),
		Registration: NewRegistrationHandler(svc.Registration),
	}
}
