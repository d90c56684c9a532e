package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"tft-meta-tracker/internal/comp"
)

// GetMatchByID returns a stored match by its Riot match ID, or ErrNotFound.
func (db *DB) GetMatchByID(ctx context.Context, matchID string) (*Match, error) {
	var m Match
	err := db.pool.QueryRow(ctx, `
		SELECT id, match_id, game_datetime, game_length, set_number, patch, region
		FROM matches WHERE match_id = $1
	`, matchID).Scan(&m.ID, &m.MatchID, &m.GameDatetime, &m.GameLength, &m.SetNumber, &m.Patch, &m.Region)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// MatchExists checks if a match already exists in the database.
func (db *DB) MatchExists(ctx context.Context, matchID string) (bool, error) {
	var exists bool
	err := db.pool.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM matches WHERE match_id = $1)
	`, matchID).Scan(&exists)
	return exists, err
}

// InsertMatch persists a match with all its participants and compositions in
// one transaction. Either the whole match lands or none of it does; partial
// participant sets are never visible to readers.
//
// Participant PlayerID links are resolved inside the transaction from the
// players table; PUUIDs without a tracked player stay unlinked.
func (db *DB) InsertMatch(ctx context.Context, m *Match, parts []ParticipantWithComp) (*Match, error) {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, `
		INSERT INTO matches (match_id, game_datetime, game_length, set_number, patch, region)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`, m.MatchID, m.GameDatetime, m.GameLength, m.SetNumber, m.Patch, m.Region).Scan(&m.ID)
	if err != nil {
		// A concurrent insert of the same match_id trips the unique
		// constraint; surface it as a duplicate so callers can fall back to
		// the stored record instead of reporting a storage failure.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, fmt.Errorf("match %s: %w", m.MatchID, ErrDuplicate)
		}
		return nil, fmt.Errorf("failed to insert match: %w", err)
	}

	for i := range parts {
		p := &parts[i].Participant
		c := &parts[i].Composition
		p.MatchID = m.ID

		var playerID *int64
		var id int64
		err := tx.QueryRow(ctx, `SELECT id FROM players WHERE puuid = $1`, p.PUUID).Scan(&id)
		switch {
		case err == nil:
			playerID = &id
		case errors.Is(err, pgx.ErrNoRows):
			// untracked player, store by puuid only
		default:
			return nil, fmt.Errorf("failed to look up player: %w", err)
		}
		p.PlayerID = playerID

		err = tx.QueryRow(ctx, `
			INSERT INTO participants (match_id, player_id, puuid, placement, level, gold_left,
				total_damage_to_players, players_eliminated, time_eliminated)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			RETURNING id
		`, p.MatchID, p.PlayerID, p.PUUID, p.Placement, p.Level, p.GoldLeft,
			p.TotalDamageToPlayers, p.PlayersEliminated, p.TimeEliminated).Scan(&p.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to insert participant: %w", err)
		}

		traitsJSON, err := json.Marshal(c.Traits)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal traits: %w", err)
		}
		unitsJSON, err := json.Marshal(c.Units)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal units: %w", err)
		}
		augmentsJSON, err := json.Marshal(c.Augments)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal augments: %w", err)
		}

		c.ParticipantID = p.ID
		err = tx.QueryRow(ctx, `
			INSERT INTO compositions (participant_id, traits, units, augments, comp_signature)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id
		`, c.ParticipantID, traitsJSON, unitsJSON, augmentsJSON, c.CompSignature).Scan(&c.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to insert composition: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit match: %w", err)
	}
	return m, nil
}

// GetRecentMatches returns the most recent matches, optionally filtered by
// region (empty = all).
func (db *DB) GetRecentMatches(ctx context.Context, limit int, region string) ([]Match, error) {
	rows, err := db.pool.Query(ctx, `
		SELECT id, match_id, game_datetime, game_length, set_number, patch, region
		FROM matches
		WHERE ($2 = '' OR region = $2)
		ORDER BY game_datetime DESC
		LIMIT $1
	`, limit, region)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var matches []Match
	for rows.Next() {
		var m Match
		if err := rows.Scan(&m.ID, &m.MatchID, &m.GameDatetime, &m.GameLength, &m.SetNumber, &m.Patch, &m.Region); err != nil {
			return nil, err
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

// MatchCount returns the total number of matches.
func (db *DB) MatchCount(ctx context.Context) (int, error) {
	var count int
	err := db.pool.QueryRow(ctx, `SELECT COUNT(*) FROM matches`).Scan(&count)
	return count, err
}

// CompositionCount returns the total number of stored compositions.
func (db *DB) CompositionCount(ctx context.Context) (int, error) {
	var count int
	err := db.pool.QueryRow(ctx, `SELECT COUNT(*) FROM compositions`).Scan(&count)
	return count, err
}

// DeleteMatchesOlderThan removes matches (and, via cascade, their
// participants and compositions) older than the cutoff. Returns the number of
// matches deleted.
func (db *DB) DeleteMatchesOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := db.pool.Exec(ctx, `DELETE FROM matches WHERE game_datetime < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old matches: %w", err)
	}
	return tag.RowsAffected(), nil
}

// ScanCompOutcomes returns every stored (signature, placement) pair,
// optionally restricted to a patch and/or region (empty = no filter). This is
// the input to the meta aggregation pass.
func (db *DB) ScanCompOutcomes(ctx context.Context, patch, region string) ([]CompOutcome, error) {
	rows, err := db.pool.Query(ctx, `
		SELECT c.comp_signature, p.placement
		FROM compositions c
		JOIN participants p ON p.id = c.participant_id
		JOIN matches m ON m.id = p.match_id
		WHERE ($1 = '' OR m.patch = $1)
		  AND ($2 = '' OR m.region = $2)
	`, patch, region)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var outcomes []CompOutcome
	for rows.Next() {
		var o CompOutcome
		if err := rows.Scan(&o.Signature, &o.Placement); err != nil {
			return nil, err
		}
		outcomes = append(outcomes, o)
	}
	return outcomes, rows.Err()
}

// CompositionsBySignature returns every stored composition matching a
// signature, with its participant's placement.
func (db *DB) CompositionsBySignature(ctx context.Context, signature string) ([]SignatureComposition, error) {
	rows, err := db.pool.Query(ctx, `
		SELECT c.units, c.augments, p.placement
		FROM compositions c
		JOIN participants p ON p.id = c.participant_id
		WHERE c.comp_signature = $1
	`, signature)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comps []SignatureComposition
	for rows.Next() {
		var sc SignatureComposition
		var unitsJSON, augmentsJSON []byte
		if err := rows.Scan(&unitsJSON, &augmentsJSON, &sc.Placement); err != nil {
			return nil, err
		}
		if len(unitsJSON) > 0 {
			var units []comp.Unit
			if err := json.Unmarshal(unitsJSON, &units); err == nil {
				sc.Units = units
			}
		}
		if len(augmentsJSON) > 0 {
			var augments []string
			if err := json.Unmarshal(augmentsJSON, &augments); err == nil {
				sc.Augments = augments
			}
		}
		comps = append(comps, sc)
	}
	return comps, rows.Err()
}

// DatabaseStats returns the read-through counters for the dashboard.
func (db *DB) DatabaseStats(ctx context.Context) (*DatabaseStats, error) {
	var stats DatabaseStats

	if err := db.pool.QueryRow(ctx, `SELECT COUNT(*) FROM players`).Scan(&stats.TotalPlayers); err != nil {
		return nil, err
	}
	if err := db.pool.QueryRow(ctx, `SELECT COUNT(*) FROM matches`).Scan(&stats.TotalMatches); err != nil {
		return nil, err
	}
	if err := db.pool.QueryRow(ctx, `SELECT COUNT(*) FROM compositions`).Scan(&stats.TotalCompositions); err != nil {
		return nil, err
	}
	if err := db.pool.QueryRow(ctx, `SELECT COUNT(*) FROM meta_stats`).Scan(&stats.TotalMetaStats); err != nil {
		return nil, err
	}
	if err := db.pool.QueryRow(ctx,
		`SELECT MIN(game_datetime), MAX(game_datetime) FROM matches`).
		Scan(&stats.OldestMatch, &stats.NewestMatch); err != nil {
		return nil, err
	}
	return &stats, nil
}
