package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"biofund/backend/internal/dto"
	"biofund/backend/internal/service"
	apperrors "biofund/backend/pkg/errors"
	"biofund/backend/pkg/response"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ═══════════════════════════════════════════════════════════
// Mock Services
// ═══════════════════════════════════════════════════════════

// ── Mock AuthService ──

type mockAuthService struct {
	loginResult *dto.TokenResponse
	loginErr    error
	logoutJTI   string
	logoutExp   time.Time
	meResult    *dto.UserResponse
	meErr       error
}

func (m *mockAuthService) Login(_ context.Context, _ *dto.LoginRequest) (*dto.TokenResponse, error) {
	return m.loginResult, m.loginErr
}
func (m *mockAuthService) Logout(_ context.Context, jti string, expiresAt time.Time) error {
	m.logoutJTI, m.logoutExp = jti, expiresAt
	return nil
}
func (m *mockAuthService) Me(_ context.Context, _ string) (*dto.UserResponse, error) {
	return m.meResult, m.meErr
}

// ── Mock EvaluationService ──

type mockEvaluationService struct {
	submitResult  *dto.EvaluationResponse
	submitErr     error
	gotEvaluator  string
	gotSubmission string
	gotReq        *dto.SubmitEvaluationRequest
	listResult    *dto.SubmissionEvaluationsResponse
}

func (m *mockEvaluationService) Submit(_ context.Context, _, submissionID, evaluatorID string, req *dto.SubmitEvaluationRequest) (*dto.EvaluationResponse, error) {
	m.gotEvaluator, m.gotSubmission, m.gotReq = evaluatorID, submissionID, req
	return m.submitResult, m.submitErr
}
func (m *mockEvaluationService) GetMine(_ context.Context, _, _, evaluatorID string) (*dto.EvaluationResponse, error) {
	m.gotEvaluator = evaluatorID
	return m.submitResult, m.submitErr
}
func (m *mockEvaluationService) ListBySubmission(_ context.Context, _, _ string) (*dto.SubmissionEvaluationsResponse, error) {
	return m.listResult, nil
}

// ── Mock AvailabilityService ──

type mockAvailabilityService struct {
	gotEvaluator string
	err          error
}

func (m *mockAvailabilityService) Respond(_ context.Context, sessionID, evaluatorID string, req *dto.RespondAvailabilityRequest) (*dto.AvailabilityResponse, error) {
	m.gotEvaluator = evaluatorID
	if m.err != nil {
		return nil, m.err
	}
	return &dto.AvailabilityResponse{SessionID: sessionID, EvaluatorID: evaluatorID, Status: req.Status}, nil
}
func (m *mockAvailabilityService) ListBySession(_ context.Context, _ string) ([]dto.AvailabilityResponse, error) {
	return nil, nil
}

// ── Mock AffectationService ──

type mockAffectationService struct {
	unassignErr error
	gotArgs     []string
}

func (m *mockAffectationService) Assign(_ context.Context, _ string, req *dto.AssignEvaluatorsRequest, _ string) ([]dto.AffectationResponse, error) {
	return make([]dto.AffectationResponse, len(req.Assignments)), nil
}
func (m *mockAffectationService) Unassign(_ context.Context, sessionID, submissionID, evaluatorID, _ string) (*dto.AffectationResponse, error) {
	m.gotArgs = []string{sessionID, submissionID, evaluatorID}
	if m.unassignErr != nil {
		return nil, m.unassignErr
	}
	return &dto.AffectationResponse{SessionID: sessionID, SubmissionID: submissionID, EvaluatorID: evaluatorID}, nil
}
func (m *mockAffectationService) ListBySession(_ context.Context, _ string) ([]dto.AffectationResponse, error) {
	return nil, nil
}
func (m *mockAffectationService) ListAssignedSubmissions(_ context.Context, _, evaluatorID string) ([]dto.AssignedSubmissionResponse, error) {
	m.gotArgs = []string{evaluatorID}
	return []dto.AssignedSubmissionResponse{}, nil
}

// ── Mock ExtensionService ──

type mockExtensionService struct {
	gotReq *dto.GrantExtensionRequest
	err    error
}

func (m *mockExtensionService) Grant(_ context.Context, sessionID, evaluatorID string, req *dto.GrantExtensionRequest, grantedBy string) (*dto.ExtensionResponse, error) {
	m.gotReq = req
	if m.err != nil {
		return nil, m.err
	}
	resp := &dto.ExtensionResponse{SessionID: sessionID, EvaluatorID: evaluatorID, GrantedBy: grantedBy}
	if req.Minutes != nil {
		resp.Minutes = *req.Minutes
	}
	return resp, nil
}

// ── Mock ExportService ──

type mockExportService struct {
	buf          *bytes.Buffer
	filename     string
	err          error
	gotEvaluator string
}

func (m *mockExportService) ExportSessionScores(_ context.Context, _ string) (*bytes.Buffer, string, error) {
	return m.buf, m.filename, m.err
}

func (m *mockExportService) ExportEvaluatorCalendar(_ context.Context, _, evaluatorID string) (*bytes.Buffer, string, error) {
	m.gotEvaluator = evaluatorID
	return m.buf, m.filename, m.err
}

// ── Mock RegistrationService ──

type mockRegistrationService struct {
	gotToken string
	err      error
}

func (m *mockRegistrationService) SaveDraft(_ context.Context, token string, req *dto.RegistrationDraftRequest) (*dto.RegistrationDraftResponse, error) {
	m.gotToken = token
	if m.err != nil {
		return nil, m.err
	}
	if token == "" {
		token = "new-token"
	}
	return &dto.RegistrationDraftResponse{Token: token, Draft: *req}, nil
}
func (m *mockRegistrationService) GetDraft(_ context.Context, _ string) (*dto.RegistrationDraftResponse, error) {
	return nil, m.err
}
func (m *mockRegistrationService) DiscardDraft(_ context.Context, _ string) error {
	return m.err
}

// ── Mock AuditService ──

type mockAuditService struct {
	gotReq *dto.AuditLogListRequest
}

func (m *mockAuditService) List(_ context.Context, req *dto.AuditLogListRequest) ([]dto.AuditLogResponse, int64, error) {
	m.gotReq = req
	return []dto.AuditLogResponse{{ID: "log-1"}}, 41, nil
}

// ═══════════════════════════════════════════════════════════
// Test Helpers
// ═══════════════════════════════════════════════════════════

func withAuth(userID, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", userID)
		c.Set("role", role)
		c.Set("token_jti", "test-jti")
		c.Set("token_exp", time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC))
		c.Next()
	}
}

func jsonBody(v interface{}) io.Reader {
	b, _ := json.Marshal(v)
	return bytes.NewReader(b)
}

func doRequest(r *gin.Engine, method, path string, body io.Reader) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	r.ServeHTTP(w, req)
	return w
}

func parseResponse(w *httptest.ResponseRecorder) response.Response {
	var resp response.Response
	json.Unmarshal(w.Body.Bytes(), &resp)
	return resp
}

func float(v float64) *float64 { return &v }

// ═══════════════════════════════════════════════════════════
// AuthHandler Tests
// ═══════════════════════════════════════════════════════════

func TestAuthHandler_Login_Success(t *testing.T) {
	mock := &mockAuthService{loginResult: &dto.TokenResponse{AccessToken: "test-access-token", ExpiresIn: 3600}}
	r := gin.New()
	r.POST("/auth/login", NewAuthHandler(mock).Login)

	w := doRequest(r, "POST", "/auth/login", jsonBody(dto.LoginRequest{Email: "awa@example.org", Password: "motdepasse"}))

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != 0 {
		t.Errorf("expected code 0, got %d", resp.Code)
	}
}

func TestAuthHandler_Login_BadJSON(t *testing.T) {
	r := gin.New()
	r.POST("/auth/login", NewAuthHandler(&mockAuthService{}).Login)

	w := doRequest(r, "POST", "/auth/login", strings.NewReader("invalid json"))

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != 10001 {
		t.Errorf("expected error code 10001, got %d", resp.Code)
	}
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	r := gin.New()
	r.POST("/auth/login", NewAuthHandler(&mockAuthService{loginErr: service.ErrInvalidCredentials}).Login)

	w := doRequest(r, "POST", "/auth/login", jsonBody(dto.LoginRequest{Email: "awa@example.org", Password: "wrong"}))

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != 20001 {
		t.Errorf("expected error code 20001, got %d", resp.Code)
	}
}

func TestAuthHandler_Logout_PassesTokenMeta(t *testing.T) {
	mock := &mockAuthService{}
	r := gin.New()
	r.POST("/auth/logout", withAuth("user-1", "admin"), NewAuthHandler(mock).Logout)

	w := doRequest(r, "POST", "/auth/logout", nil)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if mock.logoutJTI != "test-jti" {
		t.Errorf("expected jti test-jti, got %s", mock.logoutJTI)
	}
	if !mock.logoutExp.Equal(time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected exp %v", mock.logoutExp)
	}
}

func TestAuthHandler_Me_Unauthenticated(t *testing.T) {
	r := gin.New()
	r.GET("/auth/me", NewAuthHandler(&mockAuthService{}).Me)

	w := doRequest(r, "GET", "/auth/me", nil)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// EvaluationHandler Tests
// ═══════════════════════════════════════════════════════════

func TestEvaluationHandler_Submit_UsesTokenPrincipal(t *testing.T) {
	score := 56
	mock := &mockEvaluationService{submitResult: &dto.EvaluationResponse{ID: "eval-1", ScorePct: &score}}
	r := gin.New()
	r.PUT("/sessions/:id/submissions/:submissionId/evaluation", withAuth("evaluator-1", "evaluateur"), NewEvaluationHandler(mock).Submit)

	body := dto.SubmitEvaluationRequest{
		Notes:    []dto.NoteInput{{CriterionID: "crit-a", ValuePct: float(80)}},
		Finalize: true,
	}
	w := doRequest(r, "PUT", "/sessions/s-1/submissions/sub-1/evaluation", jsonBody(body))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if mock.gotEvaluator != "evaluator-1" {
		t.Errorf("evaluator must come from token, got %s", mock.gotEvaluator)
	}
	if mock.gotSubmission != "sub-1" {
		t.Errorf("expected submission sub-1, got %s", mock.gotSubmission)
	}
	if !mock.gotReq.Finalize || len(mock.gotReq.Notes) != 1 {
		t.Errorf("request not bound correctly: %+v", mock.gotReq)
	}
}

func TestEvaluationHandler_Submit_MissingValue(t *testing.T) {
	mock := &mockEvaluationService{}
	r := gin.New()
	r.PUT("/sessions/:id/submissions/:submissionId/evaluation", withAuth("evaluator-1", "evaluateur"), NewEvaluationHandler(mock).Submit)

	w := doRequest(r, "PUT", "/sessions/s-1/submissions/sub-1/evaluation",
		strings.NewReader(`{"notes":[{"criterion_id":"crit-a"}]}`))

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	if mock.gotReq != nil {
		t.Error("service must not be called on binding failure")
	}
}

func TestEvaluationHandler_Submit_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   int
	}{
		{"未分配", service.ErrNotAssigned, http.StatusForbidden, 25002},
		{"场次不存在", service.ErrSessionNotFound, http.StatusNotFound, 21001},
		{"存储失败", apperrors.Persistence(errors.New("deadlock")), http.StatusInternalServerError, 50001},
		{"未知错误", errors.New("boom"), http.StatusInternalServerError, 50000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &mockEvaluationService{submitErr: tt.err}
			r := gin.New()
			r.PUT("/sessions/:id/submissions/:submissionId/evaluation", withAuth("evaluator-1", "evaluateur"), NewEvaluationHandler(mock).Submit)

			w := doRequest(r, "PUT", "/sessions/s-1/submissions/sub-1/evaluation", jsonBody(dto.SubmitEvaluationRequest{}))

			if w.Code != tt.wantStatus {
				t.Errorf("expected %d, got %d", tt.wantStatus, w.Code)
			}
			resp := parseResponse(w)
			if resp.Code != tt.wantCode {
				t.Errorf("expected code %d, got %d", tt.wantCode, resp.Code)
			}
			if strings.Contains(resp.Message, "deadlock") {
				t.Error("internal cause must not leak to client")
			}
		})
	}
}

// ═══════════════════════════════════════════════════════════
// Availability / Affectation Tests
// ═══════════════════════════════════════════════════════════

func TestAvailabilityHandler_Respond(t *testing.T) {
	mock := &mockAvailabilityService{}
	r := gin.New()
	r.PUT("/sessions/:id/availability", withAuth("evaluator-1", "evaluateur"), NewAvailabilityHandler(mock).Respond)

	w := doRequest(r, "PUT", "/sessions/s-1/availability", jsonBody(dto.RespondAvailabilityRequest{Status: "OUI"}))

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if mock.gotEvaluator != "evaluator-1" {
		t.Errorf("evaluator must come from token, got %s", mock.gotEvaluator)
	}
}

func TestAvailabilityHandler_Respond_InvalidStatus(t *testing.T) {
	mock := &mockAvailabilityService{err: service.ErrInvalidAvailabilityStatus}
	r := gin.New()
	r.PUT("/sessions/:id/availability", withAuth("evaluator-1", "evaluateur"), NewAvailabilityHandler(mock).Respond)

	w := doRequest(r, "PUT", "/sessions/s-1/availability", jsonBody(dto.RespondAvailabilityRequest{Status: "PEUT-ETRE"}))

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != 23001 {
		t.Errorf("expected code 23001, got %d", resp.Code)
	}
}

func TestExtensionHandler_Grant_ZeroMinutesPassThrough(t *testing.T) {
	mock := &mockExtensionService{}
	r := gin.New()
	r.PUT("/sessions/:id/extensions/:evaluatorId", withAuth("admin-1", "admin"), NewExtensionHandler(mock).Grant)

	w := doRequest(r, "PUT", "/sessions/s-1/extensions/evaluator-1", strings.NewReader(`{"minutes":0}`))

	if w.Code != http.StatusOK {
		t.Fatalf("minutes=0 must reach the service, got %d: %s", w.Code, w.Body.String())
	}
	if mock.gotReq == nil || mock.gotReq.Minutes == nil || *mock.gotReq.Minutes != 0 {
		t.Errorf("expected minutes 0 forwarded as given, got %+v", mock.gotReq)
	}

	w = doRequest(r, "PUT", "/sessions/s-1/extensions/evaluator-1", strings.NewReader(`{"minutes":-15}`))
	if w.Code != http.StatusOK {
		t.Errorf("negative minutes must reach the service, got %d", w.Code)
	}
}

func TestAffectationHandler_Unassign_Missing(t *testing.T) {
	mock := &mockAffectationService{unassignErr: service.ErrAffectationNotFound}
	r := gin.New()
	r.DELETE("/sessions/:id/affectations/:submissionId/:evaluatorId", withAuth("admin-1", "admin"), NewAffectationHandler(mock).Unassign)

	w := doRequest(r, "DELETE", "/sessions/s-1/affectations/sub-1/ev-1", nil)

	if w.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", w.Code)
	}
	if len(mock.gotArgs) != 3 || mock.gotArgs[1] != "sub-1" || mock.gotArgs[2] != "ev-1" {
		t.Errorf("path params not forwarded: %v", mock.gotArgs)
	}
}

func TestAffectationHandler_Assign_EmptyRejected(t *testing.T) {
	r := gin.New()
	r.POST("/sessions/:id/affectations", withAuth("admin-1", "admin"), NewAffectationHandler(&mockAffectationService{}).Assign)

	w := doRequest(r, "POST", "/sessions/s-1/affectations", jsonBody(dto.AssignEvaluatorsRequest{}))

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestAffectationHandler_ListMine(t *testing.T) {
	mock := &mockAffectationService{}
	r := gin.New()
	r.GET("/sessions/:id/my-submissions", withAuth("evaluator-9", "evaluateur"), NewAffectationHandler(mock).ListMine)

	w := doRequest(r, "GET", "/sessions/s-1/my-submissions", nil)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if len(mock.gotArgs) != 1 || mock.gotArgs[0] != "evaluator-9" {
		t.Errorf("evaluator must come from token, got %v", mock.gotArgs)
	}
}

// ═══════════════════════════════════════════════════════════
// Export / Audit / Registration Tests
// ═══════════════════════════════════════════════════════════

func TestExportHandler_Success(t *testing.T) {
	mock := &mockExportService{buf: bytes.NewBufferString("xlsx-bytes"), filename: "评审得分_Printemps.xlsx"}
	r := gin.New()
	r.GET("/sessions/:id/export", NewExportHandler(mock).ExportSessionScores)

	w := doRequest(r, "GET", "/sessions/s-1/export", nil)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != xlsxContentType {
		t.Errorf("unexpected content type %s", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "filename*=UTF-8''") {
		t.Errorf("unexpected content disposition %s", cd)
	}
	if w.Body.String() != "xlsx-bytes" {
		t.Errorf("unexpected body %q", w.Body.String())
	}
}

func TestExportHandler_NoEvaluations(t *testing.T) {
	r := gin.New()
	r.GET("/sessions/:id/export", NewExportHandler(&mockExportService{err: service.ErrExportNoEvaluations}).ExportSessionScores)

	w := doRequest(r, "GET", "/sessions/s-1/export", nil)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestExportHandler_MyCalendar(t *testing.T) {
	mock := &mockExportService{buf: bytes.NewBufferString("BEGIN:VCALENDAR"), filename: "评审日程_Printemps.ics"}
	r := gin.New()
	r.GET("/sessions/:id/calendar.ics", withAuth("evaluator-3", "evaluator"), NewExportHandler(mock).ExportMyCalendar)

	w := doRequest(r, "GET", "/sessions/s-1/calendar.ics", nil)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != calendarContentType {
		t.Errorf("unexpected content type %s", ct)
	}
	if mock.gotEvaluator != "evaluator-3" {
		t.Errorf("evaluator must come from token, got %q", mock.gotEvaluator)
	}
}

func TestExportHandler_MyCalendar_NoDeadline(t *testing.T) {
	r := gin.New()
	r.GET("/sessions/:id/calendar.ics", withAuth("evaluator-3", "evaluator"),
		NewExportHandler(&mockExportService{err: service.ErrCalendarNoDeadline}).ExportMyCalendar)

	w := doRequest(r, "GET", "/sessions/s-1/calendar.ics", nil)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != 25005 {
		t.Errorf("expected code 25005, got %d", resp.Code)
	}
}

func TestAuditHandler_List_Pagination(t *testing.T) {
	mock := &mockAuditService{}
	r := gin.New()
	r.GET("/audit-logs", NewAuditHandler(mock).List)

	w := doRequest(r, "GET", "/audit-logs?page=2&page_size=20&action_type=EXTENSION_GRANT", nil)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if mock.gotReq.ActionType != "EXTENSION_GRANT" || mock.gotReq.GetPage() != 2 {
		t.Errorf("query not bound: %+v", mock.gotReq)
	}

	var resp struct {
		Data response.PageData `json:"data"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Data.Pagination.TotalPages != 3 {
		t.Errorf("expected 3 pages, got %d", resp.Data.Pagination.TotalPages)
	}
}

func TestRegistrationHandler_CreateAndUpdate(t *testing.T) {
	mock := &mockRegistrationService{}
	h := NewRegistrationHandler(mock)
	r := gin.New()
	r.POST("/registrations/drafts", h.Create)
	r.PUT("/registrations/drafts/:token", h.Update)

	draft := dto.RegistrationDraftRequest{OrganisationName: "Forêts Vivantes", Step: 1}

	w := doRequest(r, "POST", "/registrations/drafts", jsonBody(draft))
	if w.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", w.Code)
	}
	if mock.gotToken != "" {
		t.Errorf("create must not pass a token, got %s", mock.gotToken)
	}

	w = doRequest(r, "PUT", "/registrations/drafts/tok-1", jsonBody(draft))
	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if mock.gotToken != "tok-1" {
		t.Errorf("expected token tok-1, got %s", mock.gotToken)
	}
}

func TestRegistrationHandler_StoreUnavailable(t *testing.T) {
	r := gin.New()
	r.DELETE("/registrations/drafts/:token", NewRegistrationHandler(&mockRegistrationService{err: service.ErrDraftStoreUnavailable}).Discard)

	w := doRequest(r, "DELETE", "/registrations/drafts/tok-1", nil)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", w.Code)
	}
}

func TestBindFailed_BodyTooLarge(t *testing.T) {
	r := gin.New()
	r.POST("/auth/login", func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, 8)
		c.Next()
	}, NewAuthHandler(&mockAuthService{}).Login)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/auth/login", jsonBody(dto.LoginRequest{Email: "awa@example.org", Password: "motdepasse"}))
	req.Header.Set("Content-Type", "application/json")
	req.ContentLength = -1
	r.ServeHTTP(w, req)

	if w.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("expected 413, got %d", w.Code)
	}
}
