package quality

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/koukamap/curator/internal/config"
	"github.com/koukamap/curator/internal/model"
)

// Check type labels, used in check results and reports.
const (
	CheckRequired   = "required_fields"
	CheckCoordinate = "coordinates"
	CheckLyrics     = "lyrics_quality"
	CheckHints      = "hint_quality"
	CheckCopyright  = "copyright_status"
)

// Display names for the five required fields, in check order.
var requiredFields = []struct {
	display string
	get     func(*model.Record) string
}{
	{"school name", func(r *model.Record) string { return r.SchoolName }},
	{"prefecture", func(r *model.Record) string { return r.Prefecture }},
	{"city", func(r *model.Record) string { return r.City }},
	{"address", func(r *model.Record) string { return r.Address }},
	{"full lyrics", func(r *model.Record) string {
		if r.FullLyrics == nil {
			return ""
		}
		return *r.FullLyrics
	}},
}

// checkRequiredFields scores presence of the five mandatory fields.
func checkRequiredFields(rec *model.Record) model.CheckResult {
	var missing []string
	for _, f := range requiredFields {
		if strings.TrimSpace(f.get(rec)) == "" {
			missing = append(missing, f.display)
		}
	}

	n := len(requiredFields)
	score := float64(n-len(missing)) / float64(n)

	res := model.CheckResult{
		SchoolName: rec.SchoolName,
		CheckType:  CheckRequired,
		Score:      score,
	}
	switch {
	case len(missing) == 0:
		res.Verdict = model.VerdictPass
		res.Comment = "all required fields present"
	case len(missing) <= 2:
		res.Verdict = model.VerdictWarning
		res.Comment = "missing fields: " + strings.Join(missing, ", ")
	default:
		res.Verdict = model.VerdictFail
		res.Comment = "missing fields: " + strings.Join(missing, ", ")
	}
	return res
}

// checkCoordinates sanity-checks the record's location. Three tiers:
// absent coordinates fail outright, coordinates outside Japan fail with
// partial credit, coordinates outside the claimed prefecture's known
// rectangle only warn. This is a coarse filter, not a geofence.
func checkCoordinates(rec *model.Record, cfg config.QualityConfig) model.CheckResult {
	res := model.CheckResult{
		SchoolName: rec.SchoolName,
		CheckType:  CheckCoordinate,
	}

	if !rec.HasCoordinates() {
		res.Verdict = model.VerdictFail
		res.Score = 0.0
		res.Comment = "coordinates not set"
		return res
	}

	lat, lng := *rec.Latitude, *rec.Longitude
	if !cfg.JapanBox.Contains(lat, lng) {
		res.Verdict = model.VerdictFail
		res.Score = 0.2
		res.Comment = fmt.Sprintf("coordinates outside Japan (%.4f, %.4f)", lat, lng)
		return res
	}

	if box, ok := cfg.PrefectureBoxes[rec.Prefecture]; ok && !box.Contains(lat, lng) {
		res.Verdict = model.VerdictWarning
		res.Score = 0.7
		res.Comment = "coordinates may not match claimed prefecture"
		return res
	}

	res.Verdict = model.VerdictPass
	res.Score = 1.0
	res.Comment = "coordinates within expected range"
	return res
}

// checkLyricsQuality scores the anthem text itself: long enough, carries
// anthem-flavor vocabulary, and has a usable masked variant for the quiz.
func checkLyricsQuality(rec *model.Record, cfg config.QualityConfig) model.CheckResult {
	res := model.CheckResult{
		SchoolName: rec.SchoolName,
		CheckType:  CheckLyrics,
	}

	if rec.FullLyrics == nil || strings.TrimSpace(*rec.FullLyrics) == "" {
		res.Verdict = model.VerdictFail
		res.Score = 0.0
		res.Comment = "lyrics not set"
		return res
	}
	lyrics := *rec.FullLyrics

	if utf8.RuneCountInString(lyrics) < cfg.MinLyricsRunes {
		res.Verdict = model.VerdictWarning
		res.Score = 0.5
		res.Comment = fmt.Sprintf("lyrics too short (%d chars)", utf8.RuneCountInString(lyrics))
		return res
	}

	// Three or more keyword hits earn full marks.
	var hits int
	for _, kw := range cfg.AnthemKeywords {
		if strings.Contains(lyrics, kw) {
			hits++
		}
	}
	keywordScore := math.Min(float64(hits)/3.0, 1.0)

	hasMask := rec.MaskedLyrics != nil && strings.Contains(*rec.MaskedLyrics, cfg.MaskToken)
	maskScore := 0.5
	if hasMask {
		maskScore = 1.0
	}

	res.Score = (keywordScore + maskScore) / 2

	var comments []string
	if hits < 2 {
		comments = append(comments, "few anthem-flavor keywords")
	}
	if !hasMask {
		comments = append(comments, "masked lyrics missing or unmasked")
	}
	res.Verdict = verdictByThreshold(res.Score)
	if len(comments) > 0 {
		res.Comment = strings.Join(comments, "; ")
	} else {
		res.Comment = "lyrics quality is good"
	}
	return res
}

// checkHintQuality scores the three quiz hint texts.
func checkHintQuality(rec *model.Record, cfg config.QualityConfig) model.CheckResult {
	res := model.CheckResult{
		SchoolName: rec.SchoolName,
		CheckType:  CheckHints,
	}

	if rec.Hints == nil {
		res.Verdict = model.VerdictFail
		res.Score = 0.0
		res.Comment = "hints not set"
		return res
	}

	hints := []struct {
		display string
		text    string
	}{
		{"prefecture hint", rec.Hints.Prefecture},
		{"region hint", rec.Hints.Region},
		{"landmark hint", rec.Hints.Landmark},
	}

	var sum float64
	var comments []string
	for _, h := range hints {
		if utf8.RuneCountInString(h.text) > cfg.MinHintRunes {
			sum += 1.0
		} else {
			comments = append(comments, h.display+" insufficient")
		}
	}

	res.Score = sum / float64(len(hints))
	res.Verdict = verdictByThreshold(res.Score)
	if len(comments) > 0 {
		res.Comment = strings.Join(comments, "; ")
	} else {
		res.Comment = "hint quality is good"
	}
	return res
}

// checkCopyrightStatus infers whether the anthem is likely public domain.
// Creator allowlist hits and pre-1954 composition both qualify; anything
// else needs manual research before the lyrics can ship in the quiz.
func checkCopyrightStatus(rec *model.Record, cfg config.QualityConfig) model.CheckResult {
	res := model.CheckResult{
		SchoolName: rec.SchoolName,
		CheckType:  CheckCopyright,
	}

	composer := deref(rec.Composer)
	lyricist := deref(rec.Lyricist)

	var reasons []string
	if inList(composer, cfg.PublicDomainCreators) || inList(lyricist, cfg.PublicDomainCreators) {
		reasons = append(reasons, "creator is public domain")
	}
	if rec.ComposedYear != nil && *rec.ComposedYear <= cfg.PublicDomainYearMax {
		reasons = append(reasons, fmt.Sprintf("composed in %d", *rec.ComposedYear))
	}

	switch {
	case len(reasons) > 0:
		res.Verdict = model.VerdictPass
		res.Score = 1.0
		res.Comment = "likely public domain: " + strings.Join(reasons, ", ")
	case composer == "" && lyricist == "":
		res.Verdict = model.VerdictWarning
		res.Score = 0.5
		res.Comment = "composer and lyricist unknown"
	default:
		res.Verdict = model.VerdictWarning
		res.Score = 0.3
		res.Comment = "needs manual copyright research"
	}
	return res
}

// verdictByThreshold maps a [0,1] sub-score to a verdict using the shared
// 0.8/0.5 cutoffs of the lyrics and hint checks.
func verdictByThreshold(score float64) model.Verdict {
	switch {
	case score >= 0.8:
		return model.VerdictPass
	case score >= 0.5:
		return model.VerdictWarning
	default:
		return model.VerdictFail
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func inList(s string, list []string) bool {
	if s == "" {
		return false
	}
	for _, item := range list {
		if s == item {
			return true
		}
	}
	return false
}
