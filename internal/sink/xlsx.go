package sink

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"

	"github.com/koukamap/curator/internal/model"
	"github.com/koukamap/curator/internal/report"
)

// WriteXLSX writes the batch to a workbook with Summary, Records,
// Checks, and Duplicates sheets. This is the local stand-in for the
// shared spreadsheet the quiz team reviews.
func WriteXLSX(path string, records []model.Record, rep report.Report) error {
	f := xlsx.NewFile()

	if err := addSummarySheet(f, rep); err != nil {
		return err
	}
	if err := addRecordsSheet(f, records); err != nil {
		return err
	}
	if err := addChecksSheet(f, rep.CheckResults); err != nil {
		return err
	}
	if err := addDuplicatesSheet(f, rep.Duplicates); err != nil {
		return err
	}

	if err := f.Save(path); err != nil {
		return eris.Wrapf(err, "sink: save workbook %s", path)
	}
	zap.L().Info("sink: workbook written",
		zap.String("path", path),
		zap.Int("records", len(records)),
	)
	return nil
}

func addSummarySheet(f *xlsx.File, rep report.Report) error {
	sheet, err := f.AddSheet("Summary")
	if err != nil {
		return eris.Wrap(err, "sink: add summary sheet")
	}

	addRow(sheet, "total records", fmt.Sprintf("%d", rep.Summary.TotalRecords))
	addRow(sheet, "average score", fmt.Sprintf("%.3f", rep.AverageScore))
	addRow(sheet, "grade A", fmt.Sprintf("%d", rep.GradeDistribution.A))
	addRow(sheet, "grade B", fmt.Sprintf("%d", rep.GradeDistribution.B))
	addRow(sheet, "grade C", fmt.Sprintf("%d", rep.GradeDistribution.C))
	addRow(sheet, "grade D", fmt.Sprintf("%d", rep.GradeDistribution.D))
	addRow(sheet, "generated at", rep.Summary.GeneratedAt.Format("2006-01-02 15:04:05"))
	for _, rec := range rep.Recommendations {
		addRow(sheet, "recommendation", rec)
	}
	return nil
}

func addRecordsSheet(f *xlsx.File, records []model.Record) error {
	sheet, err := f.AddSheet("Records")
	if err != nil {
		return eris.Wrap(err, "sink: add records sheet")
	}

	addRow(sheet, "school name", "prefecture", "city", "grade", "score", "issues")
	for i := range records {
		r := &records[i]
		issues := ""
		for j, iss := range r.Issues {
			if j > 0 {
				issues += "; "
			}
			issues += iss
		}
		addRow(sheet, r.SchoolName, r.Prefecture, r.City,
			string(r.Grade), fmt.Sprintf("%.3f", r.Score), issues)
	}
	return nil
}

func addChecksSheet(f *xlsx.File, checks []model.CheckResult) error {
	sheet, err := f.AddSheet("Checks")
	if err != nil {
		return eris.Wrap(err, "sink: add checks sheet")
	}

	addRow(sheet, "school name", "check", "verdict", "score", "comment")
	for _, c := range checks {
		addRow(sheet, c.SchoolName, c.CheckType, string(c.Verdict),
			fmt.Sprintf("%.3f", c.Score), c.Comment)
	}
	return nil
}

func addDuplicatesSheet(f *xlsx.File, dups []model.DuplicatePair) error {
	sheet, err := f.AddSheet("Duplicates")
	if err != nil {
		return eris.Wrap(err, "sink: add duplicates sheet")
	}

	addRow(sheet, "school 1", "school 2", "reason")
	for _, d := range dups {
		addRow(sheet, d.School1, d.School2, d.Reason)
	}
	return nil
}

func addRow(sheet *xlsx.Sheet, values ...string) {
	row := sheet.AddRow()
	for _, v := range values {
		row.AddCell().Value = v
	}
}
