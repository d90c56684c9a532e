package db

import (
	"context"
	"fmt"
)

// CreateTables creates all tables and indexes if they don't exist.
//
// The unique constraint on matches.match_id is load-bearing: the ingestor's
// exists-check plus insert is not atomic on its own, so the constraint is
// what makes concurrent ingestion of the same match safe.
func (db *DB) CreateTables(ctx context.Context) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS players (
			id BIGSERIAL PRIMARY KEY,
			puuid TEXT NOT NULL UNIQUE,
			game_name TEXT,
			tag_line TEXT,
			tier TEXT,
			rank TEXT,
			league_points INTEGER NOT NULL DEFAULT 0,
			region TEXT NOT NULL,
			last_updated TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS matches (
			id BIGSERIAL PRIMARY KEY,
			match_id TEXT NOT NULL UNIQUE,
			game_datetime TIMESTAMPTZ NOT NULL,
			game_length DOUBLE PRECISION NOT NULL DEFAULT 0,
			set_number INTEGER NOT NULL DEFAULT 0,
			patch TEXT NOT NULL DEFAULT 'unknown',
			region TEXT NOT NULL DEFAULT 'unknown'
		)`,
		`CREATE TABLE IF NOT EXISTS participants (
			id BIGSERIAL PRIMARY KEY,
			match_id BIGINT NOT NULL REFERENCES matches(id) ON DELETE CASCADE,
			player_id BIGINT REFERENCES players(id),
			puuid TEXT NOT NULL,
			placement INTEGER NOT NULL,
			level INTEGER NOT NULL DEFAULT 0,
			gold_left INTEGER NOT NULL DEFAULT 0,
			total_damage_to_players INTEGER NOT NULL DEFAULT 0,
			players_eliminated INTEGER NOT NULL DEFAULT 0,
			time_eliminated DOUBLE PRECISION NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS compositions (
			id BIGSERIAL PRIMARY KEY,
			participant_id BIGINT NOT NULL UNIQUE REFERENCES participants(id) ON DELETE CASCADE,
			traits JSONB,
			units JSONB,
			augments JSONB,
			comp_signature TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS meta_stats (
			id BIGSERIAL PRIMARY KEY,
			comp_signature TEXT NOT NULL,
			patch TEXT NOT NULL,
			region TEXT NOT NULL,
			play_count INTEGER NOT NULL DEFAULT 0,
			avg_placement DOUBLE PRECISION NOT NULL DEFAULT 0,
			top4_rate DOUBLE PRECISION NOT NULL DEFAULT 0,
			top1_rate DOUBLE PRECISION NOT NULL DEFAULT 0,
			last_calculated TIMESTAMPTZ NOT NULL DEFAULT now(),
			UNIQUE (comp_signature, patch, region)
		)`,
		// Indexes
		`CREATE INDEX IF NOT EXISTS idx_matches_datetime_region ON matches(game_datetime, region)`,
		`CREATE INDEX IF NOT EXISTS idx_participants_match ON participants(match_id)`,
		`CREATE INDEX IF NOT EXISTS idx_participants_placement ON participants(placement)`,
		`CREATE INDEX IF NOT EXISTS idx_compositions_signature ON compositions(comp_signature)`,
		`CREATE INDEX IF NOT EXISTS idx_meta_stats_top4 ON meta_stats(top4_rate)`,
		`CREATE INDEX IF NOT EXISTS idx_meta_stats_play_count ON meta_stats(play_count)`,
	}

	for _, query := range queries {
		if _, err := db.pool.Exec(ctx, query); err != nil {
			return fmt.Errorf("failed to execute schema query: %w", err)
		}
	}

	return nil
}
