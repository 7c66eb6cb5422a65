// Package report aggregates per-record quality results and duplicate
// pairs into a batch-level report for downstream sinks.
package report

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/koukamap/curator/internal/model"
)

// Summary holds batch-level totals.
type Summary struct {
	TotalRecords int       `json:"total_records"`
	GeneratedAt  time.Time `json:"generated_at"`
}

// GradeDistribution counts records per quality tier.
type GradeDistribution struct {
	A int `json:"A"`
	B int `json:"B"`
	C int `json:"C"`
	D int `json:"D"`
}

// Report is the batch quality report. It is a plain value: everything
// serializes to nested maps and sequences so any sink can re-render it.
type Report struct {
	Summary           Summary               `json:"summary"`
	GradeDistribution GradeDistribution     `json:"grade_distribution"`
	AverageScore      float64               `json:"average_score"`
	CheckResults      []model.CheckResult   `json:"check_results"`
	Duplicates        []model.DuplicatePair `json:"duplicates"`
	Recommendations   []string              `json:"recommendations"`
}

// Summarize folds an annotated batch, its full check list, and the
// duplicate pairs into one immutable report value.
func Summarize(records []model.Record, checks []model.CheckResult, dups []model.DuplicatePair) Report {
	rep := Report{
		Summary: Summary{
			TotalRecords: len(records),
			GeneratedAt:  time.Now().UTC(),
		},
		CheckResults: checks,
		Duplicates:   dups,
	}

	var totalScore float64
	for i := range records {
		totalScore += records[i].Score
		switch records[i].Grade {
		case model.GradeA:
			rep.GradeDistribution.A++
		case model.GradeB:
			rep.GradeDistribution.B++
		case model.GradeC:
			rep.GradeDistribution.C++
		case model.GradeD:
			rep.GradeDistribution.D++
		}
	}
	if len(records) > 0 {
		rep.AverageScore = totalScore / float64(len(records))
	}

	var failed, warned int
	for _, c := range checks {
		switch c.Verdict {
		case model.VerdictFail:
			failed++
		case model.VerdictWarning:
			warned++
		}
	}

	// One recommendation per non-empty category, in severity order.
	if failed > 0 {
		rep.Recommendations = append(rep.Recommendations,
			fmt.Sprintf("%d critical issues need correction", failed))
	}
	if warned > 0 {
		rep.Recommendations = append(rep.Recommendations,
			fmt.Sprintf("%d minor issues should be reviewed", warned))
	}
	if len(dups) > 0 {
		rep.Recommendations = append(rep.Recommendations,
			fmt.Sprintf("%d duplicate pairs need confirmation", len(dups)))
	}

	zap.L().Info("report: batch summarized",
		zap.Int("records", len(records)),
		zap.Float64("average_score", rep.AverageScore),
		zap.Int("duplicates", len(dups)),
	)
	return rep
}
