package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/roastume/constants"
	"github.com/joseph-ayodele/roastume/internal/entity"
)

func completedJob() *entity.ReviewJob {
	job := entity.NewReviewJob("job-1", time.Now())
	job.Status = constants.JobStatusCompleted
	job.Result = &entity.Report{
		OverallScore: 8,
		SectionReviews: []entity.SectionReview{
			{SectionName: "Skills", Score: 6, Feedback: "ok", Suggestions: []string{"a", "b"}},
		},
		Strengths:             []string{"s1", "s2"},
		Improvements:          []string{"i1"},
		FunnyObservation:      "funny",
		OverallRecommendation: "hire",
		CreatedAt:             time.Now(),
	}
	return job
}

func TestReportXLSX(t *testing.T) {
	svc := NewService(nil)

	b, err := svc.ReportXLSX(completedJob())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(b))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{summarySheet, sectionsSheet}, f.GetSheetList())

	v, err := f.GetCellValue(summarySheet, "B1")
	require.NoError(t, err)
	assert.Equal(t, "job-1", v)

	v, err = f.GetCellValue(summarySheet, "B3")
	require.NoError(t, err)
	assert.Equal(t, "8", v)

	rows, err := f.GetRows(sectionsSheet)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"Section", "Score", "Feedback", "Suggestions"}, rows[0])
	assert.Equal(t, "Skills", rows[1][0])
	assert.Equal(t, "a\nb", rows[1][3])
}

func TestReportXLSX_NoReport(t *testing.T) {
	svc := NewService(nil)
	_, err := svc.ReportXLSX(entity.NewReviewJob("job-2", time.Now()))
	assert.Error(t, err)
	_, err = svc.ReportXLSX(nil)
	assert.Error(t, err)
}
