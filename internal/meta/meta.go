// Package meta computes aggregate composition statistics from stored match
// outcomes and serves ranked views over them.
package meta

import (
	"context"
	"fmt"
	"sort"
	"time"

	"tft-meta-tracker/internal/comp"
	"tft-meta-tracker/internal/db"
)

const (
	// DefaultMinGames is the sample floor below which an aggregate is too
	// noisy to publish.
	DefaultMinGames = 50

	// DefaultOrderBy is the ranking metric used when the caller passes none.
	DefaultOrderBy = "top4_rate"

	detailMaxUnits    = 8
	detailMaxAugments = 6
)

// Store is the persistence surface aggregation needs.
type Store interface {
	ScanCompOutcomes(ctx context.Context, patch, region string) ([]db.CompOutcome, error)
	UpsertMetaStat(ctx context.Context, s *db.MetaStat) error
	TopMetaStats(ctx context.Context, limit, minGames int, patch, region, orderBy string) ([]db.MetaStat, error)
	CompositionsBySignature(ctx context.Context, signature string) ([]db.SignatureComposition, error)
}

// Aggregator recomputes and queries meta stats.
type Aggregator struct {
	store Store
}

func New(store Store) *Aggregator {
	return &Aggregator{store: store}
}

type bucket struct {
	games        int
	placementSum int
	top4         int
	top1         int
}

// Recompute rebuilds aggregates from scratch for one (patch, region) scope
// and upserts every signature meeting the minGames floor. Empty patch/region
// aggregate across everything and are stored under the wildcard keys "all"
// and "ALL". Signatures that fell below the floor since the last run keep
// their old rows; PruneStaleStats is the cleanup path.
//
// Returns the upserted stats sorted by play count descending, signature
// ascending.
func (a *Aggregator) Recompute(ctx context.Context, minGames int, patch, region string) ([]db.MetaStat, error) {
	if minGames <= 0 {
		minGames = DefaultMinGames
	}

	outcomes, err := a.store.ScanCompOutcomes(ctx, patch, region)
	if err != nil {
		return nil, fmt.Errorf("failed to scan outcomes: %w", err)
	}

	buckets := make(map[string]*bucket)
	for _, o := range outcomes {
		if o.Signature == comp.UnknownSignature || o.Signature == "" {
			continue
		}
		b := buckets[o.Signature]
		if b == nil {
			b = &bucket{}
			buckets[o.Signature] = b
		}
		b.games++
		b.placementSum += o.Placement
		if o.Placement <= 4 {
			b.top4++
		}
		if o.Placement == 1 {
			b.top1++
		}
	}

	statPatch := patch
	if statPatch == "" {
		statPatch = "all"
	}
	statRegion := region
	if statRegion == "" {
		statRegion = "ALL"
	}
	now := time.Now().UTC()

	var stats []db.MetaStat
	for sig, b := range buckets {
		if b.games < minGames {
			continue
		}
		stats = append(stats, db.MetaStat{
			CompSignature:  sig,
			Patch:          statPatch,
			Region:         statRegion,
			PlayCount:      b.games,
			AvgPlacement:   float64(b.placementSum) / float64(b.games),
			Top4Rate:       float64(b.top4) / float64(b.games),
			Top1Rate:       float64(b.top1) / float64(b.games),
			LastCalculated: now,
		})
	}

	sort.Slice(stats, func(i, j int) bool {
		if stats[i].PlayCount != stats[j].PlayCount {
			return stats[i].PlayCount > stats[j].PlayCount
		}
		return stats[i].CompSignature < stats[j].CompSignature
	})

	for i := range stats {
		if err := a.store.UpsertMetaStat(ctx, &stats[i]); err != nil {
			return nil, fmt.Errorf("failed to store stat for %s: %w", stats[i].CompSignature, err)
		}
	}
	return stats, nil
}

// TopCompositions returns ranked aggregates. orderBy must be one of
// top4_rate, top1_rate, play_count, or avg_placement; empty means
// DefaultOrderBy.
func (a *Aggregator) TopCompositions(ctx context.Context, limit, minGames int, patch, region, orderBy string) ([]db.MetaStat, error) {
	if limit <= 0 {
		limit = 10
	}
	if minGames <= 0 {
		minGames = DefaultMinGames
	}
	if orderBy == "" {
		orderBy = DefaultOrderBy
	}
	if !db.ValidOrderBy(orderBy) {
		return nil, fmt.Errorf("unknown order metric %q", orderBy)
	}
	return a.store.TopMetaStats(ctx, limit, minGames, patch, region, orderBy)
}

// CompositionDetail is the drill-down view for one signature.
type CompositionDetail struct {
	Signature     string        `json:"signature"`
	PrimaryTraits []string      `json:"primaryTraits"`
	SampleCount   int           `json:"sampleCount"`
	AvgPlacement  float64       `json:"avgPlacement"`
	TopUnits      []RankedEntry `json:"topUnits"`
	TopAugments   []RankedEntry `json:"topAugments"`
}

// RankedEntry is one unit or augment with its occurrence count across the
// sampled boards (every fielded copy of a unit counts).
type RankedEntry struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// CompositionDetail computes the drill-down for one signature directly from
// stored boards, so it reflects the live data rather than the last
// aggregation run. Returns nil when no boards match.
func (a *Aggregator) CompositionDetail(ctx context.Context, signature string) (*CompositionDetail, error) {
	samples, err := a.store.CompositionsBySignature(ctx, signature)
	if err != nil {
		return nil, fmt.Errorf("failed to load compositions: %w", err)
	}
	if len(samples) == 0 {
		return nil, nil
	}

	unitCounts := make(map[string]int)
	augmentCounts := make(map[string]int)
	placementSum := 0
	for _, s := range samples {
		placementSum += s.Placement
		// Every fielded copy counts, so a unit played in pairs ranks above
		// one fielded once per board.
		for _, u := range s.Units {
			if u.CharacterID == "" {
				continue
			}
			unitCounts[u.CharacterID]++
		}
		for _, aug := range s.Augments {
			augmentCounts[aug]++
		}
	}

	return &CompositionDetail{
		Signature:     signature,
		PrimaryTraits: comp.PrimaryTraits(signature),
		SampleCount:   len(samples),
		AvgPlacement:  float64(placementSum) / float64(len(samples)),
		TopUnits:      topEntries(unitCounts, detailMaxUnits),
		TopAugments:   topEntries(augmentCounts, detailMaxAugments),
	}, nil
}

// topEntries ranks counts descending, name ascending on ties, capped at max.
func topEntries(counts map[string]int, max int) []RankedEntry {
	entries := make([]RankedEntry, 0, len(counts))
	for name, count := range counts {
		entries = append(entries, RankedEntry{Name: name, Count: count})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		return entries[i].Name < entries[j].Name
	})
	if len(entries) > max {
		entries = entries[:max]
	}
	return entries
}
