package export

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/roastume/internal/entity"
)

const (
	summarySheet  = "Summary"
	sectionsSheet = "Sections"
)

// Service renders completed review reports as XLSX workbooks.
type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

// ReportXLSX returns an XLSX workbook (as bytes) for a completed job's report.
func (s *Service) ReportXLSX(job *entity.ReviewJob) ([]byte, error) {
	if job == nil || job.Result == nil {
		return nil, fmt.Errorf("report xlsx: job has no report")
	}
	start := time.Now()
	rep := job.Result

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			s.logger.Warn("export.xlsx.close_error", "error", err)
		}
	}()

	// Rename the default sheet instead of leaving an empty "Sheet1" behind.
	if err := f.SetSheetName(f.GetSheetName(0), summarySheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(sectionsSheet); err != nil {
		return nil, fmt.Errorf("new sheet: %w", err)
	}

	summary := [][2]any{
		{"Review ID", job.ID},
		{"Status", job.Status.String()},
		{"Overall Score", rep.OverallScore},
		{"Strengths", strings.Join(rep.Strengths, "\n")},
		{"Improvements", strings.Join(rep.Improvements, "\n")},
		{"Funny Observation", rep.FunnyObservation},
		{"Overall Recommendation", rep.OverallRecommendation},
		{"Created At", rep.CreatedAt.UTC().Format(time.RFC3339)},
	}
	for i, kv := range summary {
		if err := setRow(f, summarySheet, i+1, kv[0], kv[1]); err != nil {
			return nil, err
		}
	}

	if err := setRow(f, sectionsSheet, 1, "Section", "Score", "Feedback", "Suggestions"); err != nil {
		return nil, err
	}
	for i, sec := range rep.SectionReviews {
		if err := setRow(f, sectionsSheet, i+2, sec.SectionName, sec.Score, sec.Feedback, strings.Join(sec.Suggestions, "\n")); err != nil {
			return nil, err
		}
	}

	// Widen a few columns
	_ = f.SetColWidth(summarySheet, "A", "A", 24)
	_ = f.SetColWidth(summarySheet, "B", "B", 80)
	_ = f.SetColWidth(sectionsSheet, "A", "A", 24)
	_ = f.SetColWidth(sectionsSheet, "B", "B", 8)
	_ = f.SetColWidth(sectionsSheet, "C", "D", 60)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"job_id", job.ID,
		"sections", len(rep.SectionReviews),
		"bytes", buf.Len(),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func setRow(f *excelize.File, sheet string, row int, values ...any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("write %s row %d: %w", sheet, row, err)
	}
	return nil
}
