package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"gorm.io/gorm"

	"biofund/backend/internal/model"
	"biofund/backend/internal/repository"
	"biofund/backend/pkg/redis"
)

var errMockStore = errors.New("mock: store failure")

func tripleKey(sessionID, submissionID, evaluatorID string) string {
	return sessionID + "|" + submissionID + "|" + evaluatorID
}

func pairKey(sessionID, evaluatorID string) string {
	return sessionID + "|" + evaluatorID
}

// ── Mock UserRepository ──

type mockUserRepo struct {
	users map[string]*model.User // key: user_id
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	for _, u := range m.users {
		if u.Email == user.Email {
			return gorm.ErrDuplicatedKey
		}
	}
	if user.UserID == "" {
		user.UserID = "user-" + user.Email
	}
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) ListByRole(_ context.Context, role string) ([]model.User, error) {
	var result []model.User
	for _, u := range m.users {
		if u.Role == role {
			result = append(result, *u)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

// ── Mock RubricRepository ──

type mockRubricRepo struct {
	versions map[string]*model.RubricVersion
}

func newMockRubricRepo() *mockRubricRepo {
	return &mockRubricRepo{versions: make(map[string]*model.RubricVersion)}
}

func (m *mockRubricRepo) CreateVersion(_ context.Context, v *model.RubricVersion) error {
	for _, existing := range m.versions {
		if existing.RubricName == v.RubricName && existing.Version == v.Version {
			return gorm.ErrDuplicatedKey
		}
	}
	if v.RubricVersionID == "" {
		v.RubricVersionID = fmt.Sprintf("rv-%s-%d", v.RubricName, v.Version)
	}
	for i := range v.Sections {
		if v.Sections[i].SectionID == "" {
			v.Sections[i].SectionID = fmt.Sprintf("%s-sec-%d", v.RubricVersionID, i+1)
		}
		v.Sections[i].RubricVersionID = v.RubricVersionID
		for j := range v.Sections[i].Criteria {
			c := &v.Sections[i].Criteria[j]
			if c.CriterionID == "" {
				c.CriterionID = fmt.Sprintf("%s-c-%d", v.Sections[i].SectionID, j+1)
			}
			c.SectionID = v.Sections[i].SectionID
		}
	}
	m.versions[v.RubricVersionID] = v
	return nil
}

func (m *mockRubricRepo) GetVersion(_ context.Context, id string) (*model.RubricVersion, error) {
	if v, ok := m.versions[id]; ok {
		return v, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockRubricRepo) LatestVersionNumber(_ context.Context, name string) (int, error) {
	latest := 0
	for _, v := range m.versions {
		if v.RubricName == name && v.Version > latest {
			latest = v.Version
		}
	}
	return latest, nil
}

func (m *mockRubricRepo) ListVersions(_ context.Context, name string) ([]model.RubricVersion, error) {
	var result []model.RubricVersion
	for _, v := range m.versions {
		if name == "" || v.RubricName == name {
			result = append(result, *v)
		}
	}
	return result, nil
}

// ── Mock SessionRepository ──

type mockSessionRepo struct {
	sessions map[string]*model.EvaluationSession
	getErr   error
}

func newMockSessionRepo() *mockSessionRepo {
	return &mockSessionRepo{sessions: make(map[string]*model.EvaluationSession)}
}

func (m *mockSessionRepo) Create(_ context.Context, s *model.EvaluationSession) error {
	if s.SessionID == "" {
		s.SessionID = "session-" + s.Name
	}
	m.sessions[s.SessionID] = s
	return nil
}

func (m *mockSessionRepo) GetByID(_ context.Context, id string) (*model.EvaluationSession, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	if s, ok := m.sessions[id]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSessionRepo) List(_ context.Context) ([]model.EvaluationSession, error) {
	var result []model.EvaluationSession
	for _, s := range m.sessions {
		result = append(result, *s)
	}
	return result, nil
}

func (m *mockSessionRepo) UpdateRubricVersion(_ context.Context, id, rubricVersionID, _ string) error {
	s, ok := m.sessions[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	s.RubricVersionID = rubricVersionID
	return nil
}

func (m *mockSessionRepo) UpdateStatus(_ context.Context, id, status, _ string) error {
	s, ok := m.sessions[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	s.Status = status
	return nil
}

// ── Mock SubmissionRepository ──

type mockSubmissionRepo struct {
	submissions map[string]*model.Submission
}

func newMockSubmissionRepo() *mockSubmissionRepo {
	return &mockSubmissionRepo{submissions: make(map[string]*model.Submission)}
}

func (m *mockSubmissionRepo) Create(_ context.Context, s *model.Submission) error {
	for _, existing := range m.submissions {
		if existing.Reference == s.Reference {
			return gorm.ErrDuplicatedKey
		}
	}
	if s.SubmissionID == "" {
		s.SubmissionID = "sub-" + s.Reference
	}
	m.submissions[s.SubmissionID] = s
	return nil
}

func (m *mockSubmissionRepo) GetByID(_ context.Context, id string) (*model.Submission, error) {
	if s, ok := m.submissions[id]; ok {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSubmissionRepo) List(_ context.Context, offset, limit int) ([]model.Submission, int64, error) {
	var all []model.Submission
	for _, s := range m.submissions {
		all = append(all, *s)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Reference < all[j].Reference })
	total := int64(len(all))
	if offset >= len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

// ── Mock AffectationRepository ──

type mockAffectationRepo struct {
	rows map[string]*model.Affectation // key: triple
	// failEvaluator 批次中出现该专家时模拟存储失败
	failEvaluator string
	seq           int
}

func newMockAffectationRepo() *mockAffectationRepo {
	return &mockAffectationRepo{rows: make(map[string]*model.Affectation)}
}

func (m *mockAffectationRepo) BatchUpsert(_ context.Context, sessionID string, pairs []repository.AffectationPair, _ string) ([]model.Affectation, error) {
	// 先整体校验，模拟事务回滚
	for _, p := range pairs {
		if m.failEvaluator != "" && p.EvaluatorID == m.failEvaluator {
			return nil, errMockStore
		}
	}
	result := make([]model.Affectation, 0, len(pairs))
	for _, p := range pairs {
		key := tripleKey(sessionID, p.SubmissionID, p.EvaluatorID)
		a, ok := m.rows[key]
		if !ok {
			m.seq++
			a = &model.Affectation{
				AffectationID: fmt.Sprintf("aff-%d", m.seq),
				SessionID:     sessionID,
				SubmissionID:  p.SubmissionID,
				EvaluatorID:   p.EvaluatorID,
			}
			m.rows[key] = a
		}
		a.Status = model.AffectationStatusInProgress
		result = append(result, *a)
	}
	return result, nil
}

func (m *mockAffectationRepo) GetByTriple(_ context.Context, sessionID, submissionID, evaluatorID string) (*model.Affectation, error) {
	if a, ok := m.rows[tripleKey(sessionID, submissionID, evaluatorID)]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAffectationRepo) Delete(_ context.Context, affectationID string) error {
	for k, a := range m.rows {
		if a.AffectationID == affectationID {
			delete(m.rows, k)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (m *mockAffectationRepo) ListBySession(_ context.Context, sessionID string) ([]model.Affectation, error) {
	var result []model.Affectation
	for _, a := range m.rows {
		if a.SessionID == sessionID {
			result = append(result, *a)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].AffectationID < result[j].AffectationID })
	return result, nil
}

func (m *mockAffectationRepo) ListBySessionAndEvaluator(_ context.Context, sessionID, evaluatorID string) ([]model.Affectation, error) {
	var result []model.Affectation
	for _, a := range m.rows {
		if a.SessionID == sessionID && a.EvaluatorID == evaluatorID {
			result = append(result, *a)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].AffectationID < result[j].AffectationID })
	return result, nil
}

func (m *mockAffectationRepo) UpdateStatus(_ context.Context, affectationID, status, _ string) error {
	for _, a := range m.rows {
		if a.AffectationID == affectationID {
			a.Status = status
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

// ── Mock AvailabilityRepository ──

type mockAvailabilityRepo struct {
	rows map[string]*model.Availability // key: pair
	seq  int
}

func newMockAvailabilityRepo() *mockAvailabilityRepo {
	return &mockAvailabilityRepo{rows: make(map[string]*model.Availability)}
}

func (m *mockAvailabilityRepo) Upsert(_ context.Context, a *model.Availability) (*model.Availability, error) {
	key := pairKey(a.SessionID, a.EvaluatorID)
	existing, ok := m.rows[key]
	if !ok {
		m.seq++
		existing = &model.Availability{
			AvailabilityID: fmt.Sprintf("avail-%d", m.seq),
			SessionID:      a.SessionID,
			EvaluatorID:    a.EvaluatorID,
		}
		m.rows[key] = existing
	}
	existing.Status = a.Status
	existing.RespondedAt = a.RespondedAt
	cp := *existing
	return &cp, nil
}

func (m *mockAvailabilityRepo) GetByPair(_ context.Context, sessionID, evaluatorID string) (*model.Availability, error) {
	if a, ok := m.rows[pairKey(sessionID, evaluatorID)]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAvailabilityRepo) ListBySession(_ context.Context, sessionID string) ([]model.Availability, error) {
	var result []model.Availability
	for _, a := range m.rows {
		if a.SessionID == sessionID {
			result = append(result, *a)
		}
	}
	return result, nil
}

// ── Mock ExtensionRepository ──

type mockExtensionRepo struct {
	rows map[string]*model.Extension // key: pair
	seq  int
}

func newMockExtensionRepo() *mockExtensionRepo {
	return &mockExtensionRepo{rows: make(map[string]*model.Extension)}
}

func (m *mockExtensionRepo) Upsert(_ context.Context, e *model.Extension) (*model.Extension, error) {
	key := pairKey(e.SessionID, e.EvaluatorID)
	existing, ok := m.rows[key]
	if !ok {
		m.seq++
		existing = &model.Extension{
			ExtensionID: fmt.Sprintf("ext-%d", m.seq),
			SessionID:   e.SessionID,
			EvaluatorID: e.EvaluatorID,
		}
		m.rows[key] = existing
	}
	existing.Minutes = e.Minutes
	existing.GrantedBy = e.GrantedBy
	existing.GrantedAt = e.GrantedAt
	existing.ExpiresAt = e.ExpiresAt
	cp := *existing
	return &cp, nil
}

func (m *mockExtensionRepo) GetByPair(_ context.Context, sessionID, evaluatorID string) (*model.Extension, error) {
	if e, ok := m.rows[pairKey(sessionID, evaluatorID)]; ok {
		cp := *e
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

// ── Mock EvaluationRepository ──

type mockEvaluationRepo struct {
	rows  map[string]*model.Evaluation       // key: triple
	notes map[string][]model.EvaluationNote // key: evaluation_id
	seq   int
	// replaceErr 非 nil 时 ReplaceNotes 失败
	replaceErr error
}

func newMockEvaluationRepo() *mockEvaluationRepo {
	return &mockEvaluationRepo{
		rows:  make(map[string]*model.Evaluation),
		notes: make(map[string][]model.EvaluationNote),
	}
}

func (m *mockEvaluationRepo) Upsert(_ context.Context, e *model.Evaluation) (*model.Evaluation, error) {
	key := tripleKey(e.SessionID, e.SubmissionID, e.EvaluatorID)
	existing, ok := m.rows[key]
	if !ok {
		m.seq++
		existing = &model.Evaluation{
			EvaluationID: fmt.Sprintf("eval-%d", m.seq),
			SessionID:    e.SessionID,
			SubmissionID: e.SubmissionID,
			EvaluatorID:  e.EvaluatorID,
		}
		m.rows[key] = existing
	}
	existing.Status = e.Status
	existing.SubmittedAt = e.SubmittedAt
	existing.RubricVersionID = e.RubricVersionID
	if e.Comment != nil {
		existing.Comment = e.Comment
	}
	cp := *existing
	return &cp, nil
}

func (m *mockEvaluationRepo) GetByTriple(_ context.Context, sessionID, submissionID, evaluatorID string) (*model.Evaluation, error) {
	e, ok := m.rows[tripleKey(sessionID, submissionID, evaluatorID)]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *e
	cp.Notes = append([]model.EvaluationNote(nil), m.notes[e.EvaluationID]...)
	return &cp, nil
}

func (m *mockEvaluationRepo) ReplaceNotes(_ context.Context, evaluationID string, notes []model.EvaluationNote) error {
	if m.replaceErr != nil {
		return m.replaceErr
	}
	replaced := make([]model.EvaluationNote, len(notes))
	for i, n := range notes {
		n.EvaluationID = evaluationID
		replaced[i] = n
	}
	m.notes[evaluationID] = replaced
	return nil
}

func (m *mockEvaluationRepo) ListNotes(_ context.Context, evaluationID string) ([]model.EvaluationNote, error) {
	return append([]model.EvaluationNote(nil), m.notes[evaluationID]...), nil
}

func (m *mockEvaluationRepo) UpdateScore(_ context.Context, evaluationID string, score *int) error {
	for _, e := range m.rows {
		if e.EvaluationID == evaluationID {
			e.ScorePct = score
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (m *mockEvaluationRepo) list(match func(*model.Evaluation) bool) []model.Evaluation {
	var result []model.Evaluation
	for _, e := range m.rows {
		if match(e) {
			cp := *e
			cp.Notes = append([]model.EvaluationNote(nil), m.notes[e.EvaluationID]...)
			result = append(result, cp)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].EvaluationID < result[j].EvaluationID })
	return result
}

func (m *mockEvaluationRepo) ListBySubmission(_ context.Context, sessionID, submissionID string) ([]model.Evaluation, error) {
	return m.list(func(e *model.Evaluation) bool {
		return e.SessionID == sessionID && e.SubmissionID == submissionID
	}), nil
}

func (m *mockEvaluationRepo) ListBySessionAndEvaluator(_ context.Context, sessionID, evaluatorID string) ([]model.Evaluation, error) {
	return m.list(func(e *model.Evaluation) bool {
		return e.SessionID == sessionID && e.EvaluatorID == evaluatorID
	}), nil
}

func (m *mockEvaluationRepo) ListBySession(_ context.Context, sessionID string) ([]model.Evaluation, error) {
	return m.list(func(e *model.Evaluation) bool { return e.SessionID == sessionID }), nil
}

// ── Mock AuditLogRepository ──

type mockAuditLogRepo struct {
	mu        sync.Mutex
	logs      []model.AuditLog
	createErr error
	panicOn   bool
	// lastCtxErr 记录写入时 context 的状态
	lastCtxErr error
}

func newMockAuditLogRepo() *mockAuditLogRepo {
	return &mockAuditLogRepo{}
}

func (m *mockAuditLogRepo) Create(ctx context.Context, log *model.AuditLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.panicOn {
		panic("mock: audit store exploded")
	}
	m.lastCtxErr = ctx.Err()
	if m.createErr != nil {
		return m.createErr
	}
	m.logs = append(m.logs, *log)
	return nil
}

func (m *mockAuditLogRepo) List(_ context.Context, filter repository.AuditLogFilter, offset, limit int) ([]model.AuditLog, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var matched []model.AuditLog
	for _, l := range m.logs {
		if filter.ActionType != "" && l.ActionType != filter.ActionType {
			continue
		}
		if filter.ActorID != "" && l.ActorID != filter.ActorID {
			continue
		}
		matched = append(matched, l)
	}
	total := int64(len(matched))
	if offset >= len(matched) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], total, nil
}

func (m *mockAuditLogRepo) actions() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.logs))
	for _, l := range m.logs {
		out = append(out, l.ActionType)
	}
	return out
}

// ── Mock DraftStore ──

type mockDraftStore struct {
	data   map[string][]byte
	ttls   map[string]time.Duration
	setErr error
}

func newMockDraftStore() *mockDraftStore {
	return &mockDraftStore{data: make(map[string][]byte), ttls: make(map[string]time.Duration)}
}

func (m *mockDraftStore) SetWithTTL(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.data[key] = value
	m.ttls[key] = ttl
	return nil
}

func (m *mockDraftStore) Get(_ context.Context, key string) ([]byte, error) {
	v, ok := m.data[key]
	if !ok {
		return nil, redis.ErrKeyNotFound
	}
	return v, nil
}

func (m *mockDraftStore) Delete(_ context.Context, key string) error {
	delete(m.data, key)
	delete(m.ttls, key)
	return nil
}

// ── 聚合 ──

type mockRepos struct {
	user         *mockUserRepo
	rubric       *mockRubricRepo
	session      *mockSessionRepo
	submission   *mockSubmissionRepo
	affectation  *mockAffectationRepo
	availability *mockAvailabilityRepo
	extension    *mockExtensionRepo
	evaluation   *mockEvaluationRepo
	auditLog     *mockAuditLogRepo
}

func newMockRepos() (*repository.Repository, *mockRepos) {
	m := &mockRepos{
		user:         newMockUserRepo(),
		rubric:       newMockRubricRepo(),
		session:      newMockSessionRepo(),
		submission:   newMockSubmissionRepo(),
		affectation:  newMockAffectationRepo(),
		availability: newMockAvailabilityRepo(),
		extension:    newMockExtensionRepo(),
		evaluation:   newMockEvaluationRepo(),
		auditLog:     newMockAuditLogRepo(),
	}
	repo := &repository.Repository{
		User:         m.user,
		Rubric:       m.rubric,
		Session:      m.session,
		Submission:   m.submission,
		Affectation:  m.affectation,
		Availability: m.availability,
		Extension:    m.extension,
		Evaluation:   m.evaluation,
		AuditLog:     m.auditLog,
	}
	return repo, m
}
