// Package dedupe detects records that likely refer to the same school,
// by normalized name collision and by geographic proximity.
package dedupe

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/koukamap/curator/internal/config"
	"github.com/koukamap/curator/internal/model"
)

const earthRadiusKM = 6371

// Duplicate-pair reasons.
const (
	ReasonNameCollision = "name collision"
	reasonProximityFmt  = "coordinate proximity (%dm)"
)

var (
	// Operator prefix: everything up to and including the first 立
	// (都立, 県立, 市立, 私立, ...).
	operatorPrefix = regexp.MustCompile(`^[^立]*立`)
	// School-kind suffix. 高等学校 before 高校 so the longer form wins.
	kindSuffix = regexp.MustCompile(`(小学校|中学校|高等学校|高校)$`)
)

// Normalize reduces a school name to its distinguishing core by
// stripping the operator prefix and the school-kind suffix.
// "東京都立第一高等学校" and "第一高等学校" both normalize to "第一".
func Normalize(name string) string {
	n := operatorPrefix.ReplaceAllString(name, "")
	n = kindSuffix.ReplaceAllString(n, "")
	return strings.TrimSpace(n)
}

// Detector finds duplicate pairs within a batch.
type Detector struct {
	cfg config.DedupeConfig
}

// NewDetector creates a Detector with the given config.
func NewDetector(cfg config.DedupeConfig) *Detector {
	if cfg.ProximityRadiusKM <= 0 {
		cfg.ProximityRadiusKM = 0.1
	}
	return &Detector{cfg: cfg}
}

// FindDuplicates runs both detection passes over the batch. The two
// passes are independent evidence, so the same pair may appear once per
// reason. Pair ordering carries no meaning.
func (d *Detector) FindDuplicates(records []model.Record) []model.DuplicatePair {
	pairs := d.byName(records)
	pairs = append(pairs, d.byProximity(records)...)

	zap.L().Info("dedupe: detection complete",
		zap.Int("records", len(records)),
		zap.Int("pairs", len(pairs)),
	)
	return pairs
}

// byName groups records by normalized name and reports every pair
// within a group of more than one.
func (d *Detector) byName(records []model.Record) []model.DuplicatePair {
	groups := make(map[string][]int)
	for i := range records {
		key := Normalize(records[i].SchoolName)
		groups[key] = append(groups[key], i)
	}

	var pairs []model.DuplicatePair
	for _, group := range groups {
		for i := 0; i < len(group); i++ {
			for j := i + 1; j < len(group); j++ {
				pairs = append(pairs, model.DuplicatePair{
					School1: records[group[i]].SchoolName,
					School2: records[group[j]].SchoolName,
					Reason:  ReasonNameCollision,
				})
			}
		}
	}
	return pairs
}

// byProximity compares every coordinate-bearing pair and reports those
// closer than the configured radius. O(n²), fine for batches in the
// tens to low hundreds; pre-bucket by prefecture before growing past
// that. With Workers > 1 the rows are striped across goroutines, since
// each pair comparison is independent.
func (d *Detector) byProximity(records []model.Record) []model.DuplicatePair {
	if d.cfg.Workers > 1 {
		return d.byProximityParallel(records)
	}

	var pairs []model.DuplicatePair
	for i := 0; i < len(records); i++ {
		pairs = append(pairs, d.proximityRow(records, i)...)
	}
	return pairs
}

func (d *Detector) byProximityParallel(records []model.Record) []model.DuplicatePair {
	var (
		mu    sync.Mutex
		pairs []model.DuplicatePair
	)

	g := new(errgroup.Group)
	g.SetLimit(d.cfg.Workers)
	for i := 0; i < len(records); i++ {
		i := i
		g.Go(func() error {
			row := d.proximityRow(records, i)
			if len(row) > 0 {
				mu.Lock()
				pairs = append(pairs, row...)
				mu.Unlock()
			}
			return nil
		})
	}
	// Workers never return errors; Wait only synchronizes.
	_ = g.Wait()
	return pairs
}

// proximityRow compares records[i] against every later record.
func (d *Detector) proximityRow(records []model.Record, i int) []model.DuplicatePair {
	a := &records[i]
	if !a.HasCoordinates() {
		return nil
	}

	var pairs []model.DuplicatePair
	for j := i + 1; j < len(records); j++ {
		b := &records[j]
		if !b.HasCoordinates() {
			continue
		}
		dist := haversineKM(*a.Latitude, *a.Longitude, *b.Latitude, *b.Longitude)
		if dist < d.cfg.ProximityRadiusKM {
			pairs = append(pairs, model.DuplicatePair{
				School1: a.SchoolName,
				School2: b.SchoolName,
				Reason:  fmt.Sprintf(reasonProximityFmt, int(math.Round(dist*1000))),
			})
		}
	}
	return pairs
}

// haversineKM returns the great-circle distance between two points in km.
func haversineKM(lat1, lng1, lat2, lng2 float64) float64 {
	toRad := func(deg float64) float64 { return deg * math.Pi / 180 }

	dLat := toRad(lat2 - lat1)
	dLng := toRad(lng2 - lng1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKM * c
}
