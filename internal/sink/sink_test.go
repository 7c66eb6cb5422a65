package sink

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/koukamap/curator/internal/model"
	"github.com/koukamap/curator/internal/report"
)

func sampleReport() report.Report {
	return report.Report{
		Summary:           report.Summary{TotalRecords: 2, GeneratedAt: time.Date(2025, 4, 1, 12, 0, 0, 0, time.UTC)},
		GradeDistribution: report.GradeDistribution{A: 1, D: 1},
		AverageScore:      0.66,
		CheckResults: []model.CheckResult{
			{SchoolName: "第一中学校", CheckType: "required_fields", Verdict: model.VerdictPass, Score: 1.0, Comment: "all required fields present"},
			{SchoolName: "山田小学校", CheckType: "lyrics_quality", Verdict: model.VerdictFail, Score: 0.0, Comment: "lyrics not set"},
		},
		Duplicates:      []model.DuplicatePair{{School1: "甲", School2: "乙", Reason: "name collision"}},
		Recommendations: []string{"1 critical issues need correction"},
	}
}

func sampleRecords() []model.Record {
	return []model.Record{
		{SchoolName: "第一中学校", Prefecture: "東京都", City: "千代田区", Grade: model.GradeA, Score: 0.95, Issues: nil},
		{SchoolName: "山田小学校", Prefecture: "大阪府", City: "大阪市", Grade: model.GradeD, Score: 0.37,
			Issues: []string{"lyrics_quality: lyrics not set", "coordinates: coordinates not set"}},
	}
}

func TestWriteJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")

	require.NoError(t, WriteJSON(path, sampleReport()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var got report.Report
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, 2, got.Summary.TotalRecords)
	assert.InDelta(t, 0.66, got.AverageScore, 0.001)
	assert.Len(t, got.CheckResults, 2)
	assert.Len(t, got.Duplicates, 1)
}

func TestWriteXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "batch.xlsx")

	require.NoError(t, WriteXLSX(path, sampleRecords(), sampleReport()))

	f, err := xlsx.OpenFile(path)
	require.NoError(t, err)
	require.Len(t, f.Sheets, 4)

	byName := make(map[string]*xlsx.Sheet, len(f.Sheets))
	for _, s := range f.Sheets {
		byName[s.Name] = s
	}
	require.Contains(t, byName, "Summary")
	require.Contains(t, byName, "Records")
	require.Contains(t, byName, "Checks")
	require.Contains(t, byName, "Duplicates")

	records := byName["Records"]
	require.Len(t, records.Rows, 3, "header plus two records")
	assert.Equal(t, "school name", records.Rows[0].Cells[0].Value)
	assert.Equal(t, "第一中学校", records.Rows[1].Cells[0].Value)
	assert.Equal(t, "A", records.Rows[1].Cells[3].Value)
	assert.Contains(t, records.Rows[2].Cells[5].Value, "lyrics not set")

	dups := byName["Duplicates"]
	require.Len(t, dups.Rows, 2)
	assert.Equal(t, "name collision", dups.Rows[1].Cells[2].Value)
}
