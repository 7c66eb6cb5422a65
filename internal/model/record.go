// Package model defines the school-anthem record and quality result types
// shared across the curation pipeline.
package model

// Grade is the discrete quality tier assigned to a record, A (best) to D.
type Grade string

const (
	GradeA Grade = "A"
	GradeB Grade = "B"
	GradeC Grade = "C"
	GradeD Grade = "D"
)

// Verdict classifies the outcome of a single field check.
type Verdict string

const (
	VerdictPass    Verdict = "PASS"
	VerdictWarning Verdict = "WARNING"
	VerdictFail    Verdict = "FAIL"
)

// Hints holds the quiz hint texts attached to a record. The whole
// structure is optional; individual fields may still be empty.
type Hints struct {
	Prefecture string `json:"prefecture,omitempty"`
	Region     string `json:"region,omitempty"`
	Landmark   string `json:"landmark,omitempty"`
}

// Record is one collected school/anthem candidate. Identity and content
// fields are populated by the collector and never mutated by the quality
// engine; the engine only annotates Grade, Score, and Issues. Absent
// values are nil pointers, never sentinel strings.
type Record struct {
	// Identity.
	SchoolName        string `json:"school_name"`
	SchoolType        string `json:"school_type,omitempty"`
	EstablishmentType string `json:"establishment_type,omitempty"`
	Prefecture        string `json:"prefecture"`
	City              string `json:"city"`
	Address           string `json:"address"`

	// Location. Latitude and Longitude are always both set or both nil;
	// the collector enforces this at ingestion.
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`

	// Content.
	SongTitle    *string `json:"song_title,omitempty"`
	FullLyrics   *string `json:"full_lyrics,omitempty"`
	MaskedLyrics *string `json:"masked_lyrics,omitempty"`

	// Provenance.
	Composer        *string `json:"composer,omitempty"`
	Lyricist        *string `json:"lyricist,omitempty"`
	ComposedYear    *int    `json:"composed_year,omitempty"`
	EstablishedYear *int    `json:"established_year,omitempty"`
	DataSource      string  `json:"data_source,omitempty"`

	// Quiz hints.
	Hints *Hints `json:"hints,omitempty"`

	// Quality annotations, written by the scorer.
	Grade  Grade    `json:"quality_grade,omitempty"`
	Score  float64  `json:"quality_score"`
	Issues []string `json:"quality_issues,omitempty"`
}

// HasCoordinates reports whether both coordinates are present.
func (r *Record) HasCoordinates() bool {
	return r.Latitude != nil && r.Longitude != nil
}

// CheckResult is the outcome of one field check against one record.
type CheckResult struct {
	SchoolName string  `json:"school_name"`
	CheckType  string  `json:"check_type"`
	Verdict    Verdict `json:"verdict"`
	Score      float64 `json:"score"`
	Comment    string  `json:"comment"`
}

// DuplicatePair flags two records as likely referring to the same school.
type DuplicatePair struct {
	School1 string `json:"school1"`
	School2 string `json:"school2"`
	Reason  string `json:"reason"`
}

// EstimateEstablishedYear guesses a school's founding year from the year
// its anthem was composed. Anthems are typically commissioned several
// years after founding, ~7 years on average in the source data. Rough
// heuristic, not a fact.
func EstimateEstablishedYear(composedYear *int) *int {
	if composedYear == nil {
		return nil
	}
	y := *composedYear - 7
	return &y
}
