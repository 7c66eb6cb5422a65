// Package collector ingests candidate record batches exported by the
// scraping side. It is the trust boundary of the pipeline: absent values
// become nil pointers here, and contract violations fail fast instead of
// flowing into the scorer.
package collector

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"

	"github.com/koukamap/curator/internal/model"
)

// LoadCSV reads a batch of records from a header-mapped CSV file.
// encoding names a charset per the WHATWG registry ("utf-8",
// "shift_jis", ...); empty means UTF-8. Scraper exports from Windows
// tooling are frequently Shift_JIS.
func LoadCSV(path, encoding string) ([]model.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "collector: open %s", path)
	}
	defer f.Close()

	records, err := ReadCSV(f, encoding)
	if err != nil {
		return nil, eris.Wrapf(err, "collector: read %s", path)
	}

	zap.L().Info("collector: batch loaded",
		zap.String("path", path),
		zap.Int("records", len(records)),
	)
	return records, nil
}

// ReadCSV parses records from r. The first row must be a header; columns
// are matched by name so the scraper can reorder or omit them.
func ReadCSV(r io.Reader, encoding string) ([]model.Record, error) {
	decoded, err := decodeReader(r, encoding)
	if err != nil {
		return nil, err
	}

	cr := csv.NewReader(decoded)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, eris.Wrap(err, "collector: read header")
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.TrimSpace(h)] = i
	}

	var records []model.Record
	line := 1
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrapf(err, "collector: read row %d", line+1)
		}
		line++

		rec, err := parseRow(cols, row)
		if err != nil {
			return nil, eris.Wrapf(err, "collector: row %d", line)
		}
		records = append(records, rec)
	}
	return records, nil
}

func decodeReader(r io.Reader, encoding string) (io.Reader, error) {
	if encoding == "" || strings.EqualFold(encoding, "utf-8") {
		return r, nil
	}
	enc, err := htmlindex.Get(encoding)
	if err != nil {
		return nil, eris.Wrapf(err, "collector: unknown encoding %q", encoding)
	}
	return transform.NewReader(r, enc.NewDecoder()), nil
}

func parseRow(cols map[string]int, row []string) (model.Record, error) {
	get := func(name string) string {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	rec := model.Record{
		SchoolName:        get("school_name"),
		SchoolType:        get("school_type"),
		EstablishmentType: get("establishment_type"),
		Prefecture:        get("prefecture"),
		City:              get("city"),
		Address:           get("address"),
		DataSource:        get("data_source"),
		SongTitle:         optString(get("song_title")),
		FullLyrics:        optString(get("full_lyrics")),
		MaskedLyrics:      optString(get("masked_lyrics")),
		Composer:          optString(get("composer")),
		Lyricist:          optString(get("lyricist")),
	}

	var err error
	if rec.Latitude, err = optFloat(get("latitude")); err != nil {
		return rec, eris.Wrap(err, "latitude")
	}
	if rec.Longitude, err = optFloat(get("longitude")); err != nil {
		return rec, eris.Wrap(err, "longitude")
	}
	if rec.ComposedYear, err = optInt(get("composed_year")); err != nil {
		return rec, eris.Wrap(err, "composed_year")
	}
	if rec.EstablishedYear, err = optInt(get("established_year")); err != nil {
		return rec, eris.Wrap(err, "established_year")
	}

	// Coordinates must be paired. One without the other is a scraper
	// bug, not a data quality problem, so the batch aborts here.
	if (rec.Latitude == nil) != (rec.Longitude == nil) {
		return rec, eris.Errorf("record %q has unpaired coordinates", rec.SchoolName)
	}

	if rec.EstablishedYear == nil {
		rec.EstablishedYear = model.EstimateEstablishedYear(rec.ComposedYear)
	}

	if pref, region, landmark := get("hint_prefecture"), get("hint_region"), get("hint_landmark"); pref != "" || region != "" || landmark != "" {
		rec.Hints = &model.Hints{Prefecture: pref, Region: region, Landmark: landmark}
	}

	return rec, nil
}

func optString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func optFloat(s string) (*float64, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, eris.Wrapf(err, "parse %q", s)
	}
	return &v, nil
}

func optInt(s string) (*int, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return nil, eris.Wrapf(err, "parse %q", s)
	}
	return &v, nil
}
