package db

import (
	"context"
	"fmt"
	"time"
)

// Metrics topCompositions can order by, mapped to their sort direction.
// avg_placement sorts ascending because a lower placement number is better.
var orderByClause = map[string]string{
	"top4_rate":     "top4_rate DESC",
	"top1_rate":     "top1_rate DESC",
	"play_count":    "play_count DESC",
	"avg_placement": "avg_placement ASC",
}

// ValidOrderBy reports whether metric is a supported ranking metric.
func ValidOrderBy(metric string) bool {
	_, ok := orderByClause[metric]
	return ok
}

// topMetaStatsQuery builds the ranking query for one metric. Rows below the
// minGames floor ($1) are filtered out entirely, the unknown sentinel never
// ranks, and empty patch/region ($2/$3) mean no filter on that column.
func topMetaStatsQuery(orderBy string) (string, error) {
	clause, ok := orderByClause[orderBy]
	if !ok {
		return "", fmt.Errorf("unknown order metric %q", orderBy)
	}
	return fmt.Sprintf(`
		SELECT id, comp_signature, patch, region, play_count, avg_placement,
		       top4_rate, top1_rate, last_calculated
		FROM meta_stats
		WHERE play_count >= $1
		  AND comp_signature <> 'unknown'
		  AND ($2 = '' OR patch = $2)
		  AND ($3 = '' OR region = $3)
		ORDER BY %s, id
		LIMIT $4
	`, clause), nil
}

// UpsertMetaStat writes an aggregate row keyed by (signature, patch, region),
// overwriting any prior aggregate for the same key.
func (db *DB) UpsertMetaStat(ctx context.Context, s *MetaStat) error {
	err := db.pool.QueryRow(ctx, `
		INSERT INTO meta_stats (comp_signature, patch, region, play_count, avg_placement,
			top4_rate, top1_rate, last_calculated)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (comp_signature, patch, region) DO UPDATE SET
			play_count = EXCLUDED.play_count,
			avg_placement = EXCLUDED.avg_placement,
			top4_rate = EXCLUDED.top4_rate,
			top1_rate = EXCLUDED.top1_rate,
			last_calculated = EXCLUDED.last_calculated
		RETURNING id
	`, s.CompSignature, s.Patch, s.Region, s.PlayCount, s.AvgPlacement,
		s.Top4Rate, s.Top1Rate, s.LastCalculated).Scan(&s.ID)
	if err != nil {
		return fmt.Errorf("failed to upsert meta stat: %w", err)
	}
	return nil
}

// TopMetaStats returns ranked aggregates. The minGames floor is a filter, not
// a truncation: rows below it are excluded entirely. Empty patch/region mean
// no filter on that column.
func (db *DB) TopMetaStats(ctx context.Context, limit, minGames int, patch, region, orderBy string) ([]MetaStat, error) {
	query, err := topMetaStatsQuery(orderBy)
	if err != nil {
		return nil, err
	}

	rows, err := db.pool.Query(ctx, query, minGames, patch, region, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []MetaStat
	for rows.Next() {
		var s MetaStat
		if err := rows.Scan(&s.ID, &s.CompSignature, &s.Patch, &s.Region, &s.PlayCount,
			&s.AvgPlacement, &s.Top4Rate, &s.Top1Rate, &s.LastCalculated); err != nil {
			return nil, err
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}

// PruneStaleStats deletes aggregates whose last_calculated predates the
// cutoff. Recomputation never removes rows on its own (a signature dropping
// below minGames simply stops being refreshed), so this is the explicit
// cleanup path.
func (db *DB) PruneStaleStats(ctx context.Context, before time.Time) (int64, error) {
	tag, err := db.pool.Exec(ctx, `DELETE FROM meta_stats WHERE last_calculated < $1`, before)
	if err != nil {
		return 0, fmt.Errorf("failed to prune stale stats: %w", err)
	}
	return tag.RowsAffected(), nil
}
