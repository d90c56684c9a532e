package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// UpsertPlayer inserts or updates a tracked player by PUUID.
func (db *DB) UpsertPlayer(ctx context.Context, p *Player) error {
	err := db.pool.QueryRow(ctx, `
		INSERT INTO players (puuid, game_name, tag_line, tier, rank, league_points, region, last_updated)
		VALUES ($1, $2, $3, $4, $5, $6, $7, now())
		ON CONFLICT (puuid) DO UPDATE SET
			game_name = EXCLUDED.game_name,
			tag_line = EXCLUDED.tag_line,
			tier = EXCLUDED.tier,
			rank = EXCLUDED.rank,
			league_points = EXCLUDED.league_points,
			region = EXCLUDED.region,
			last_updated = now()
		RETURNING id, last_updated
	`, p.PUUID, p.GameName, p.TagLine, p.Tier, p.Rank, p.LeaguePoints, p.Region).
		Scan(&p.ID, &p.LastUpdated)
	if err != nil {
		return fmt.Errorf("failed to upsert player: %w", err)
	}
	return nil
}

// GetPlayer returns a tracked player by PUUID, or ErrNotFound.
func (db *DB) GetPlayer(ctx context.Context, puuid string) (*Player, error) {
	var p Player
	err := db.pool.QueryRow(ctx, `
		SELECT id, puuid, COALESCE(game_name, ''), COALESCE(tag_line, ''),
		       COALESCE(tier, ''), COALESCE(rank, ''), league_points, region, last_updated
		FROM players WHERE puuid = $1
	`, puuid).Scan(&p.ID, &p.PUUID, &p.GameName, &p.TagLine, &p.Tier, &p.Rank,
		&p.LeaguePoints, &p.Region, &p.LastUpdated)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ListPlayers returns all tracked players, optionally filtered by region
// (empty region = all).
func (db *DB) ListPlayers(ctx context.Context, region string) ([]Player, error) {
	rows, err := db.pool.Query(ctx, `
		SELECT id, puuid, COALESCE(game_name, ''), COALESCE(tag_line, ''),
		       COALESCE(tier, ''), COALESCE(rank, ''), league_points, region, last_updated
		FROM players
		WHERE ($1 = '' OR region = $1)
		ORDER BY league_points DESC
	`, region)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var players []Player
	for rows.Next() {
		var p Player
		if err := rows.Scan(&p.ID, &p.PUUID, &p.GameName, &p.TagLine, &p.Tier, &p.Rank,
			&p.LeaguePoints, &p.Region, &p.LastUpdated); err != nil {
			return nil, err
		}
		players = append(players, p)
	}
	return players, rows.Err()
}

// PlayerCount returns the total number of tracked players.
func (db *DB) PlayerCount(ctx context.Context) (int, error) {
	var count int
	err := db.pool.QueryRow(ctx, `SELECT COUNT(*) FROM players`).Scan(&count)
	return count, err
}
