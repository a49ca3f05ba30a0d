package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"biofund/backend/internal/dto"
	"biofund/backend/internal/model"
)

func TestAvailabilityService_Respond_Overwrites(t *testing.T) {
	repo, m := newMockRepos()
	m.session.sessions[testSessionID] = &model.EvaluationSession{SessionID: testSessionID, Status: model.SessionStatusOpen}
	svc := NewAvailabilityService(repo, zap.NewNop()).(*availabilityService)
	ctx := context.Background()

	t1 := fixedNow
	svc.now = func() time.Time { return t1 }
	first, err := svc.Respond(ctx, testSessionID, testEvaluatorID, &dto.RespondAvailabilityRequest{Status: model.AvailabilityYes})
	if err != nil {
		t.Fatalf("Respond 应成功: %v", err)
	}

	t2 := fixedNow.Add(time.Hour)
	svc.now = func() time.Time { return t2 }
	second, err := svc.Respond(ctx, testSessionID, testEvaluatorID, &dto.RespondAvailabilityRequest{Status: model.AvailabilityNo})
	if err != nil {
		t.Fatalf("Respond 应成功: %v", err)
	}

	if len(m.availability.rows) != 1 {
		t.Fatalf("同一专家同一场次只应有一条记录，实际=%d", len(m.availability.rows))
	}
	if second.ID != first.ID {
		t.Errorf("期望沿用原记录 %s，实际=%s", first.ID, second.ID)
	}
	if second.Status != model.AvailabilityNo {
		t.Errorf("期望状态 NON，实际=%s", second.Status)
	}
	if second.RespondedAt == nil || *second.RespondedAt != formatTime(t2) {
		t.Errorf("答复时间应更新为 %s，实际=%v", formatTime(t2), second.RespondedAt)
	}

	list, err := svc.ListBySession(ctx, testSessionID)
	if err != nil {
		t.Fatalf("ListBySession 应成功: %v", err)
	}
	if len(list) != 1 {
		t.Errorf("期望 1 条，实际=%d", len(list))
	}
}

func TestAvailabilityService_Respond_InvalidStatus(t *testing.T) {
	repo, m := newMockRepos()
	m.session.sessions[testSessionID] = &model.EvaluationSession{SessionID: testSessionID}
	svc := NewAvailabilityService(repo, zap.NewNop())

	_, err := svc.Respond(context.Background(), testSessionID, testEvaluatorID, &dto.RespondAvailabilityRequest{Status: "PEUT-ETRE"})
	if !errors.Is(err, ErrInvalidAvailabilityStatus) {
		t.Errorf("期望 ErrInvalidAvailabilityStatus，实际: %v", err)
	}
	if len(m.availability.rows) != 0 {
		t.Error("非法状态不应写入")
	}
}

func TestAvailabilityService_Respond_SessionNotFound(t *testing.T) {
	repo, _ := newMockRepos()
	svc := NewAvailabilityService(repo, zap.NewNop())

	_, err := svc.Respond(context.Background(), "missing", testEvaluatorID, &dto.RespondAvailabilityRequest{Status: model.AvailabilityYes})
	if !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("期望 ErrSessionNotFound，实际: %v", err)
	}
}
