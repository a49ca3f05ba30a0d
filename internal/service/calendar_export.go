package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"
	"go.uber.org/zap"
	"gorm.io/gorm"

	apperrors "biofund/backend/pkg/errors"
)

var ErrCalendarNoDeadline = apperrors.New(apperrors.KindNotFound, 25005, "该场次未设置截止时间")

const calendarProductID = "-//BioFund//Evaluation//ZH"

// ═══════════════════════════════════════════════════════════
// ExportEvaluatorCalendar
// ═══════════════════════════════════════════════════════════
//
// 事件：
//   - 场次截止（EndsAt 已设置时）
//   - 该专家的延时授权截止（存在授权时）
//
// 截止时间仅作提醒，保存评审不受其限制

func (s *exportService) ExportEvaluatorCalendar(ctx context.Context, sessionID, evaluatorID string) (*bytes.Buffer, string, error) {
	session, err := loadSession(ctx, s.repo, s.logger, sessionID)
	if err != nil {
		return nil, "", err
	}

	extension, err := s.repo.Extension.GetByPair(ctx, sessionID, evaluatorID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Error("查询延时授权失败",
				zap.String("session_id", sessionID),
				zap.String("evaluator_id", evaluatorID),
				zap.Error(err),
			)
			return nil, "", apperrors.Persistence(err)
		}
		extension = nil
	}

	if session.EndsAt == nil && extension == nil {
		return nil, "", ErrCalendarNoDeadline
	}

	now := s.now().UTC()
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(calendarProductID)

	if session.EndsAt != nil {
		addDeadlineEvent(cal, fmt.Sprintf("%s-deadline@biofund", sessionID), now, *session.EndsAt,
			fmt.Sprintf("评审截止：%s", session.Name), "")
	}
	if extension != nil {
		addDeadlineEvent(cal, fmt.Sprintf("%s-%s-extension@biofund", sessionID, evaluatorID), now, extension.ExpiresAt,
			fmt.Sprintf("延时截止：%s", session.Name),
			fmt.Sprintf("延时 %d 分钟，授权于 %s", extension.Minutes, formatTime(extension.GrantedAt)))
	}

	buf := bytes.NewBufferString(cal.Serialize())
	filename := fmt.Sprintf("评审日程_%s.ics", session.Name)
	return buf, filename, nil
}

func addDeadlineEvent(cal *ics.Calendar, uid string, stamp, at time.Time, summary, description string) {
	event := cal.AddEvent(uid)
	event.SetDtStampTime(stamp)
	event.SetStartAt(at.UTC())
	event.SetEndAt(at.UTC())
	event.SetSummary(summary)
	if description != "" {
		event.SetDescription(description)
	}
}
