package quality

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/koukamap/curator/internal/model"
)

func ptrString(v string) *string    { return &v }
func ptrFloat64(v float64) *float64 { return &v }
func ptrInt(v int) *int             { return &v }

// goodLyrics is long enough and carries three keyword hits (希望, 山, 光).
var goodLyrics = "朝日輝くこの丘に 希望あふれる学び舎よ " +
	"山のみどりを仰ぎつつ 光の道を歩みゆく " +
	"ああ我らの母校 とこしえに栄えあれ"

func completeRecord() model.Record {
	return model.Record{
		SchoolName:   "第一中学校",
		Prefecture:   "東京都",
		City:         "千代田区",
		Address:      "東京都千代田区1-1-1",
		Latitude:     ptrFloat64(35.69),
		Longitude:    ptrFloat64(139.75),
		FullLyrics:   ptrString(goodLyrics),
		MaskedLyrics: ptrString(strings.ReplaceAll(goodLyrics, "母校", "〇〇")),
		Composer:     ptrString("文部省"),
		Lyricist:     ptrString("作者不詳"),
		ComposedYear: ptrInt(1950),
		Hints: &model.Hints{
			Prefecture: "関東地方の中心にある都",
			Region:     "皇居のすぐ近くの都心部",
			Landmark:   "駅から徒歩五分ほどの高台",
		},
	}
}

func TestCheckRequiredFields(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*model.Record)
		wantScore   float64
		wantVerdict model.Verdict
	}{
		{"all present", func(r *model.Record) {}, 1.0, model.VerdictPass},
		{"missing lyrics", func(r *model.Record) { r.FullLyrics = nil }, 0.8, model.VerdictWarning},
		{"blank lyrics counts as missing", func(r *model.Record) { r.FullLyrics = ptrString("   ") }, 0.8, model.VerdictWarning},
		{"missing two", func(r *model.Record) { r.City = ""; r.Address = "" }, 0.6, model.VerdictWarning},
		{"missing three fails", func(r *model.Record) { r.City = ""; r.Address = ""; r.FullLyrics = nil }, 0.4, model.VerdictFail},
		{"everything missing", func(r *model.Record) { *r = model.Record{} }, 0.0, model.VerdictFail},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := completeRecord()
			tt.mutate(&rec)
			got := checkRequiredFields(&rec)
			assert.InDelta(t, tt.wantScore, got.Score, 0.001)
			assert.Equal(t, tt.wantVerdict, got.Verdict)
		})
	}
}

func TestCheckCoordinates(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		name        string
		mutate      func(*model.Record)
		wantScore   float64
		wantVerdict model.Verdict
	}{
		{"tokyo in range", func(r *model.Record) {}, 1.0, model.VerdictPass},
		{"absent", func(r *model.Record) { r.Latitude, r.Longitude = nil, nil }, 0.0, model.VerdictFail},
		{"outside japan", func(r *model.Record) { r.Latitude, r.Longitude = ptrFloat64(51.5), ptrFloat64(-0.1) }, 0.2, model.VerdictFail},
		{"bounds inclusive south-west corner", func(r *model.Record) {
			r.Prefecture = "県外"
			r.Latitude, r.Longitude = ptrFloat64(24.0), ptrFloat64(123.0)
		}, 1.0, model.VerdictPass},
		{"bounds inclusive north-east corner", func(r *model.Record) {
			r.Prefecture = "県外"
			r.Latitude, r.Longitude = ptrFloat64(46.0), ptrFloat64(146.0)
		}, 1.0, model.VerdictPass},
		{"prefecture mismatch warns", func(r *model.Record) {
			// Claims Tokyo but sits in Osaka.
			r.Latitude, r.Longitude = ptrFloat64(34.69), ptrFloat64(135.50)
		}, 0.7, model.VerdictWarning},
		{"unknown prefecture passes on japan box alone", func(r *model.Record) {
			r.Prefecture = "京都府"
			r.Latitude, r.Longitude = ptrFloat64(35.0), ptrFloat64(135.77)
		}, 1.0, model.VerdictPass},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := completeRecord()
			tt.mutate(&rec)
			got := checkCoordinates(&rec, cfg)
			assert.InDelta(t, tt.wantScore, got.Score, 0.001)
			assert.Equal(t, tt.wantVerdict, got.Verdict)
		})
	}
}

func TestCheckLyricsQuality(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		name        string
		mutate      func(*model.Record)
		wantScore   float64
		wantVerdict model.Verdict
	}{
		{"good lyrics with mask", func(r *model.Record) {}, 1.0, model.VerdictPass},
		{"absent", func(r *model.Record) { r.FullLyrics = nil }, 0.0, model.VerdictFail},
		{"blank", func(r *model.Record) { r.FullLyrics = ptrString(" \n ") }, 0.0, model.VerdictFail},
		{"too short", func(r *model.Record) { r.FullLyrics = ptrString("短い歌") }, 0.5, model.VerdictWarning},
		{"keywords but no mask", func(r *model.Record) { r.MaskedLyrics = nil }, 0.75, model.VerdictWarning},
		{"mask without token", func(r *model.Record) { r.MaskedLyrics = ptrString(goodLyrics) }, 0.75, model.VerdictWarning},
		{"one keyword with mask", func(r *model.Record) {
			r.FullLyrics = ptrString(strings.Repeat("あ", 49) + "光")
			r.MaskedLyrics = ptrString("〇〇" + strings.Repeat("あ", 48))
		}, (1.0/3 + 1.0) / 2, model.VerdictWarning},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := completeRecord()
			tt.mutate(&rec)
			got := checkLyricsQuality(&rec, cfg)
			assert.InDelta(t, tt.wantScore, got.Score, 0.001)
			assert.Equal(t, tt.wantVerdict, got.Verdict)
		})
	}
}

func TestCheckHintQuality(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		name        string
		hints       *model.Hints
		wantScore   float64
		wantVerdict model.Verdict
	}{
		{"all good", completeRecord().Hints, 1.0, model.VerdictPass},
		{"absent", nil, 0.0, model.VerdictFail},
		{"two of three", &model.Hints{
			Prefecture: "関東地方の中心にある都",
			Region:     "皇居のすぐ近くの都心部",
			Landmark:   "丘",
		}, 2.0 / 3, model.VerdictWarning},
		{"exactly five runes is insufficient", &model.Hints{
			Prefecture: "あいうえお",
			Region:     "あいうえお",
			Landmark:   "あいうえお",
		}, 0.0, model.VerdictFail},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := completeRecord()
			rec.Hints = tt.hints
			got := checkHintQuality(&rec, cfg)
			assert.InDelta(t, tt.wantScore, got.Score, 0.001)
			assert.Equal(t, tt.wantVerdict, got.Verdict)
		})
	}
}

func TestCheckCopyrightStatus(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		name        string
		composer    *string
		lyricist    *string
		year        *int
		wantScore   float64
		wantVerdict model.Verdict
	}{
		{"public domain composer", ptrString("文部省"), ptrString("山田花子"), nil, 1.0, model.VerdictPass},
		{"public domain lyricist", ptrString("山田花子"), ptrString("作者不詳"), nil, 1.0, model.VerdictPass},
		{"old composition", ptrString("山田花子"), ptrString("佐藤次郎"), ptrInt(1953), 1.0, model.VerdictPass},
		{"1954 is past the cutoff", ptrString("山田花子"), ptrString("佐藤次郎"), ptrInt(1954), 0.3, model.VerdictWarning},
		{"both unknown", nil, nil, nil, 0.5, model.VerdictWarning},
		{"known but unrecognized", ptrString("山田花子"), nil, nil, 0.3, model.VerdictWarning},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := completeRecord()
			rec.Composer = tt.composer
			rec.Lyricist = tt.lyricist
			rec.ComposedYear = tt.year
			got := checkCopyrightStatus(&rec, cfg)
			assert.InDelta(t, tt.wantScore, got.Score, 0.001)
			assert.Equal(t, tt.wantVerdict, got.Verdict)
		})
	}
}

func TestChecksAreTotal(t *testing.T) {
	// A fully empty record produces verdicts, never panics.
	cfg := DefaultConfig()
	rec := model.Record{}

	assert.NotPanics(t, func() {
		checkRequiredFields(&rec)
		checkCoordinates(&rec, cfg)
		checkLyricsQuality(&rec, cfg)
		checkHintQuality(&rec, cfg)
		checkCopyrightStatus(&rec, cfg)
	})
}
