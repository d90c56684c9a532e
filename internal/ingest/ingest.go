// Package ingest turns raw match payloads from the Riot API into normalized
// match, participant, and composition records.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tft-meta-tracker/internal/comp"
	"tft-meta-tracker/internal/db"
	"tft-meta-tracker/internal/riot"
)

// ErrInvalidMatch is returned when a payload is missing required fields. The
// wrapped message names the field so callers can log it without inspecting
// the payload again.
var ErrInvalidMatch = errors.New("invalid match payload")

// Store is the persistence surface ingestion needs.
type Store interface {
	GetMatchByID(ctx context.Context, matchID string) (*db.Match, error)
	InsertMatch(ctx context.Context, m *db.Match, parts []db.ParticipantWithComp) (*db.Match, error)
}

// Ingestor normalizes and stores raw matches.
type Ingestor struct {
	store Store
}

func New(store Store) *Ingestor {
	return &Ingestor{store: store}
}

// Ingest stores a raw match. The bool result reports whether the match was
// newly inserted; for a match already stored, the existing record is returned
// with false and no rows are written. Re-ingesting a match is always a no-op,
// never a partial re-write.
func (in *Ingestor) Ingest(ctx context.Context, raw *riot.MatchResponse, region string) (*db.Match, bool, error) {
	if raw == nil || raw.Metadata.MatchID == "" {
		return nil, false, fmt.Errorf("%w: missing match_id", ErrInvalidMatch)
	}
	if len(raw.Info.Participants) == 0 {
		return nil, false, fmt.Errorf("%w: no participants", ErrInvalidMatch)
	}

	existing, err := in.store.GetMatchByID(ctx, raw.Metadata.MatchID)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, db.ErrNotFound) {
		return nil, false, fmt.Errorf("failed to check for existing match: %w", err)
	}

	match := &db.Match{
		MatchID:      raw.Metadata.MatchID,
		GameDatetime: time.UnixMilli(raw.Info.GameDatetime).UTC(),
		GameLength:   raw.Info.GameLength,
		SetNumber:    raw.Info.TFTSetNumber,
		Patch:        comp.NormalizePatch(raw.Info.GameVersion),
		Region:       region,
	}

	parts := make([]db.ParticipantWithComp, 0, len(raw.Info.Participants))
	for _, rp := range raw.Info.Participants {
		parts = append(parts, normalizeParticipant(rp))
	}

	stored, err := in.store.InsertMatch(ctx, match, parts)
	if errors.Is(err, db.ErrDuplicate) {
		// Lost a race against a concurrent ingest of the same match; the
		// winner's record is the result, same as the exists-check path.
		existing, gerr := in.store.GetMatchByID(ctx, raw.Metadata.MatchID)
		if gerr != nil {
			return nil, false, fmt.Errorf("failed to load concurrently stored match: %w", gerr)
		}
		return existing, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return stored, true, nil
}

// normalizeParticipant maps a raw participant to storage records, filling
// defensive defaults for fields the API sometimes omits.
func normalizeParticipant(rp riot.MatchParticipant) db.ParticipantWithComp {
	placement := rp.Placement
	if placement < 1 || placement > 8 {
		placement = 8
	}

	// Keep every trait with at least one unit. The signature only looks at
	// traits with 3+, but the detail views want the full activation list.
	traits := make([]comp.Trait, 0, len(rp.Traits))
	for _, t := range rp.Traits {
		if t.NumUnits > 0 {
			traits = append(traits, comp.Trait{
				Name:        t.Name,
				NumUnits:    t.NumUnits,
				TierCurrent: t.TierCurrent,
				TierTotal:   t.TierTotal,
				Style:       t.Style,
			})
		}
	}

	units := make([]comp.Unit, 0, len(rp.Units))
	for _, u := range rp.Units {
		items := u.ItemNames
		if items == nil {
			items = []string{}
		}
		units = append(units, comp.Unit{
			CharacterID: u.CharacterID,
			Tier:        u.Tier,
			Items:       items,
			Rarity:      u.Rarity,
		})
	}

	augments := rp.Augments
	if augments == nil {
		augments = []string{}
	}

	return db.ParticipantWithComp{
		Participant: db.Participant{
			PUUID:                rp.PUUID,
			Placement:            placement,
			Level:                rp.Level,
			GoldLeft:             rp.GoldLeft,
			TotalDamageToPlayers: rp.TotalDamageToPlayers,
			PlayersEliminated:    rp.PlayersEliminated,
			TimeEliminated:       rp.TimeEliminated,
		},
		Composition: db.Composition{
			Traits:        traits,
			Units:         units,
			Augments:      augments,
			CompSignature: comp.Signature(traits),
		},
	}
}
