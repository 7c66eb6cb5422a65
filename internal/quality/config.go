// Package quality implements the multi-check scoring engine that grades
// school-anthem records for the quiz dataset.
package quality

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/koukamap/curator/internal/config"
)

// DefaultConfig returns a config.QualityConfig with the scoring rules
// the collection project has used from the start. Weights sum to 9.
func DefaultConfig() config.QualityConfig {
	return config.QualityConfig{
		// Weights. Required fields dominate; hints and copyright are
		// secondary signals.
		RequiredWeight:   3,
		CoordinateWeight: 2,
		LyricsWeight:     2,
		HintWeight:       1,
		CopyrightWeight:  1,

		// Grade thresholds, inclusive lower bounds.
		GradeAThreshold: 0.90,
		GradeBThreshold: 0.70,
		GradeCThreshold: 0.50,

		// Rough bounding box around the Japanese archipelago.
		JapanBox: config.BoundingBox{MinLat: 24.0, MaxLat: 46.0, MinLng: 123.0, MaxLng: 146.0},

		// Per-prefecture sub-boxes for a handful of prefectures. These
		// are coarse sanity rectangles, not geofences; extend as needed.
		PrefectureBoxes: map[string]config.BoundingBox{
			"北海道": {MinLat: 42.0, MaxLat: 46.0, MinLng: 139.0, MaxLng: 146.0},
			"東京都": {MinLat: 35.5, MaxLat: 36.0, MinLng: 139.0, MaxLng: 140.0},
			"大阪府": {MinLat: 34.2, MaxLat: 35.0, MinLng: 135.0, MaxLng: 136.0},
			"沖縄県": {MinLat: 24.0, MaxLat: 27.0, MinLng: 123.0, MaxLng: 132.0},
		},

		MinLyricsRunes: 50,
		AnthemKeywords: []string{
			"学び", "青春", "希望", "未来", "夢", "友", "我ら", "われら",
			"輝く", "風", "空", "海", "山", "川", "丘", "緑", "光",
		},
		MaskToken: "〇〇",

		MinHintRunes: 5,

		// Creators whose works are in the public domain (died before the
		// 1953 copyright-term cutoff) plus the "author unknown" markers.
		PublicDomainCreators: []string{
			"文部省", "文部省唱歌", "作者不詳", "不詳",
			"伊沢修二", "上真行", "奥好義", "里見義",
		},
		PublicDomainYearMax: 1953,
	}
}

// ConfigOrDefault returns cfg if it carries a usable weight set,
// otherwise the defaults. Lets commands run without a config file.
func ConfigOrDefault(cfg config.QualityConfig) config.QualityConfig {
	if WeightSum(cfg) <= 0 {
		return DefaultConfig()
	}
	return cfg
}

// WeightSum returns the sum of all check weights.
func WeightSum(c config.QualityConfig) float64 {
	return c.RequiredWeight + c.CoordinateWeight + c.LyricsWeight +
		c.HintWeight + c.CopyrightWeight
}

// ValidateConfig checks that a QualityConfig is internally consistent.
func ValidateConfig(c config.QualityConfig) error {
	var errs []string

	weights := map[string]float64{
		"required_weight":   c.RequiredWeight,
		"coordinate_weight": c.CoordinateWeight,
		"lyrics_weight":     c.LyricsWeight,
		"hint_weight":       c.HintWeight,
		"copyright_weight":  c.CopyrightWeight,
	}
	for name, w := range weights {
		if w < 0 {
			errs = append(errs, fmt.Sprintf("%s must be >= 0", name))
		}
	}
	if WeightSum(c) <= 0 {
		errs = append(errs, "weight sum must be > 0")
	}

	// Thresholds must be descending within [0,1].
	if c.GradeAThreshold < c.GradeBThreshold || c.GradeBThreshold < c.GradeCThreshold {
		errs = append(errs, "grade thresholds must satisfy A >= B >= C")
	}
	if c.GradeAThreshold > 1 || c.GradeCThreshold < 0 {
		errs = append(errs, "grade thresholds must be within [0,1]")
	}

	if c.JapanBox.MinLat >= c.JapanBox.MaxLat || c.JapanBox.MinLng >= c.JapanBox.MaxLng {
		errs = append(errs, "japan_box must be a non-empty rectangle")
	}
	for pref, box := range c.PrefectureBoxes {
		if box.MinLat >= box.MaxLat || box.MinLng >= box.MaxLng {
			errs = append(errs, fmt.Sprintf("prefecture_boxes[%s] must be a non-empty rectangle", pref))
		}
	}

	if c.MinLyricsRunes < 0 {
		errs = append(errs, "min_lyrics_runes must be >= 0")
	}
	if c.MinHintRunes < 0 {
		errs = append(errs, "min_hint_runes must be >= 0")
	}

	if len(errs) > 0 {
		return eris.Errorf("quality: config validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
