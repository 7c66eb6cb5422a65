package quality

import (
	"go.uber.org/zap"

	"github.com/koukamap/curator/internal/config"
	"github.com/koukamap/curator/internal/model"
)

// Scorer grades records against an injected rule set. Evaluation is a
// pure function of the record and the config: no I/O, no hidden state.
type Scorer struct {
	cfg config.QualityConfig
}

// NewScorer creates a Scorer with the given config.
func NewScorer(cfg config.QualityConfig) *Scorer {
	return &Scorer{cfg: cfg}
}

// Evaluate runs the five field checks against one record and combines
// them into a weighted composite score and grade. Checks are returned in
// a fixed order for audit; the composite does not depend on the order.
func (s *Scorer) Evaluate(rec *model.Record) (model.Grade, float64, []model.CheckResult) {
	checks := []model.CheckResult{
		checkRequiredFields(rec),
		checkCoordinates(rec, s.cfg),
		checkLyricsQuality(rec, s.cfg),
		checkHintQuality(rec, s.cfg),
		checkCopyrightStatus(rec, s.cfg),
	}
	weights := []float64{
		s.cfg.RequiredWeight,
		s.cfg.CoordinateWeight,
		s.cfg.LyricsWeight,
		s.cfg.HintWeight,
		s.cfg.CopyrightWeight,
	}

	var total, weightSum float64
	for i, c := range checks {
		total += c.Score * weights[i]
		weightSum += weights[i]
	}

	var final float64
	if weightSum > 0 {
		final = total / weightSum
	}

	return s.grade(final), final, checks
}

// Annotate evaluates a record and writes grade, score, and the issue
// list (comments of non-passing checks) onto it. Identity and content
// fields are never touched.
func (s *Scorer) Annotate(rec *model.Record) []model.CheckResult {
	grade, score, checks := s.Evaluate(rec)
	rec.Grade = grade
	rec.Score = score
	rec.Issues = rec.Issues[:0]
	for _, c := range checks {
		if c.Verdict != model.VerdictPass {
			rec.Issues = append(rec.Issues, c.CheckType+": "+c.Comment)
		}
	}
	return checks
}

// AnnotateBatch scores every record in place and returns the full
// ordered check list across the batch.
func (s *Scorer) AnnotateBatch(records []model.Record) []model.CheckResult {
	allChecks := make([]model.CheckResult, 0, len(records)*5)
	for i := range records {
		allChecks = append(allChecks, s.Annotate(&records[i])...)
	}
	zap.L().Info("quality: batch scored",
		zap.Int("records", len(records)),
		zap.Int("checks", len(allChecks)),
	)
	return allChecks
}

// grade maps the composite score to a tier. Thresholds are inclusive
// lower bounds: a score of exactly 0.90 grades A.
func (s *Scorer) grade(score float64) model.Grade {
	switch {
	case score >= s.cfg.GradeAThreshold:
		return model.GradeA
	case score >= s.cfg.GradeBThreshold:
		return model.GradeB
	case score >= s.cfg.GradeCThreshold:
		return model.GradeC
	default:
		return model.GradeD
	}
}
