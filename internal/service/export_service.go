package service

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"biofund/backend/internal/model"
	"biofund/backend/internal/repository"
	apperrors "biofund/backend/pkg/errors"
)

// ── 导出模块业务错误 ──

var (
	ErrExportNoEvaluations = apperrors.New(apperrors.KindNotFound, 25003, "该场次暂无评审记录")
	ErrExportGenerateFail  = apperrors.New(apperrors.KindInternal, 25004, "生成 Excel 文件失败")
)

// ExportService 导出业务接口
//
// 导出以 bytes.Buffer 返回，由 Handler 层设置 HTTP 响应头后写入 Response
type ExportService interface {
	// ExportSessionScores 导出场次评审得分：明细表 + 按项目汇总表
	ExportSessionScores(ctx context.Context, sessionID string) (*bytes.Buffer, string, error)
	// ExportEvaluatorCalendar 导出专家在场次中的截止时间日历（iCalendar）
	ExportEvaluatorCalendar(ctx context.Context, sessionID, evaluatorID string) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, logger: logger, now: time.Now}
}

const (
	sheetDetails = "评审明细"
	sheetSummary = "项目汇总"
)

// ═══════════════════════════════════════════════════════════
// ExportSessionScores
// ═══════════════════════════════════════════════════════════
//
// 输出格式：
//   - Sheet "评审明细"：每条评审一行（编号 / 项目 / 机构 / 专家 / 状态 / 得分 / 提交时间）
//   - Sheet "项目汇总"：每个项目一行，均分仅统计已提交且有得分的评审

func (s *exportService) ExportSessionScores(ctx context.Context, sessionID string) (*bytes.Buffer, string, error) {
	// 1. 查询场次
	session, err := loadSession(ctx, s.repo, s.logger, sessionID)
	if err != nil {
		return nil, "", err
	}

	// 2. 查询评审
	evaluations, err := s.repo.Evaluation.ListBySession(ctx, sessionID)
	if err != nil {
		s.logger.Error("查询场次评审失败", zap.String("session_id", sessionID), zap.Error(err))
		return nil, "", apperrors.Persistence(err)
	}
	if len(evaluations) == 0 {
		return nil, "", ErrExportNoEvaluations
	}

	sort.SliceStable(evaluations, func(i, j int) bool {
		return reference(&evaluations[i]) < reference(&evaluations[j])
	})

	// 3. 生成 Excel
	f := excelize.NewFile()
	defer f.Close()

	idx, _ := f.NewSheet(sheetDetails)
	f.SetActiveSheet(idx)
	f.NewSheet(sheetSummary)
	// 删除默认 Sheet1
	f.DeleteSheet("Sheet1")

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	// ── 明细 ──
	headers := []string{"编号", "项目", "机构", "评审专家", "状态", "得分", "提交时间"}
	writeHeader(f, sheetDetails, headers, headerStyle)
	f.SetColWidth(sheetDetails, "A", "A", 16)
	f.SetColWidth(sheetDetails, "B", "C", 30)
	f.SetColWidth(sheetDetails, "D", "D", 20)
	f.SetColWidth(sheetDetails, "G", "G", 22)

	type summary struct {
		reference string
		title     string
		submitted int
		sum       float64
		scored    int
	}
	var order []string
	bySubmission := make(map[string]*summary)

	for i := range evaluations {
		e := &evaluations[i]
		row := i + 2

		title, organisation := "", ""
		if e.Submission != nil {
			title = e.Submission.Title
			organisation = e.Submission.OrganisationName
		}
		evaluator := e.EvaluatorID
		if e.Evaluator != nil {
			evaluator = e.Evaluator.Name
		}

		f.SetCellValue(sheetDetails, cell("A", row), reference(e))
		f.SetCellValue(sheetDetails, cell("B", row), title)
		f.SetCellValue(sheetDetails, cell("C", row), organisation)
		f.SetCellValue(sheetDetails, cell("D", row), evaluator)
		f.SetCellValue(sheetDetails, cell("E", row), e.Status)
		if e.ScorePct != nil {
			f.SetCellValue(sheetDetails, cell("F", row), *e.ScorePct)
		} else {
			f.SetCellValue(sheetDetails, cell("F", row), "-")
		}
		if e.SubmittedAt != nil {
			f.SetCellValue(sheetDetails, cell("G", row), formatTime(*e.SubmittedAt))
		}

		sm, ok := bySubmission[e.SubmissionID]
		if !ok {
			sm = &summary{reference: reference(e), title: title}
			bySubmission[e.SubmissionID] = sm
			order = append(order, e.SubmissionID)
		}
		if e.Status == model.EvaluationStatusSubmitted {
			sm.submitted++
			if e.ScorePct != nil {
				sm.sum += float64(*e.ScorePct)
				sm.scored++
			}
		}
	}

	// ── 汇总 ──
	writeHeader(f, sheetSummary, []string{"编号", "项目", "评审数", "已提交", "平均得分"}, headerStyle)
	f.SetColWidth(sheetSummary, "A", "A", 16)
	f.SetColWidth(sheetSummary, "B", "B", 30)

	counts := make(map[string]int)
	for i := range evaluations {
		counts[evaluations[i].SubmissionID]++
	}
	for i, id := range order {
		sm := bySubmission[id]
		row := i + 2
		f.SetCellValue(sheetSummary, cell("A", row), sm.reference)
		f.SetCellValue(sheetSummary, cell("B", row), sm.title)
		f.SetCellValue(sheetSummary, cell("C", row), counts[id])
		f.SetCellValue(sheetSummary, cell("D", row), sm.submitted)
		if sm.scored > 0 {
			f.SetCellValue(sheetSummary, cell("E", row), fmt.Sprintf("%.1f", sm.sum/float64(sm.scored)))
		} else {
			f.SetCellValue(sheetSummary, cell("E", row), "-")
		}
	}

	// 写入 buffer
	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail.Wrap(err)
	}

	filename := fmt.Sprintf("评审得分_%s.xlsx", session.Name)
	return buf, filename, nil
}

// ── 辅助函数 ──

func reference(e *model.Evaluation) string {
	if e.Submission != nil {
		return e.Submission.Reference
	}
	return e.SubmissionID
}

func writeHeader(f *excelize.File, sheet string, headers []string, style int) {
	for i, h := range headers {
		f.SetCellValue(sheet, cell(colName(i), 1), h)
	}
	f.SetCellStyle(sheet, "A1", cell(colName(len(headers)-1), 1), style)
}

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
