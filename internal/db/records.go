package db

import (
	"time"

	"tft-meta-tracker/internal/comp"
)

// Player is a tracked high-rank account, upserted by PUUID. Matches can
// reference PUUIDs of untracked players too.
type Player struct {
	ID           int64     `json:"id"`
	PUUID        string    `json:"puuid"`
	GameName     string    `json:"gameName"`
	TagLine      string    `json:"tagLine"`
	Tier         string    `json:"tier"` // CHALLENGER, GRANDMASTER
	Rank         string    `json:"rank"` // I, II, III, IV
	LeaguePoints int       `json:"leaguePoints"`
	Region       string    `json:"region"`
	LastUpdated  time.Time `json:"lastUpdated"`
}

// Match is one collected game, unique by MatchID.
type Match struct {
	ID           int64     `json:"id"`
	MatchID      string    `json:"matchId"`
	GameDatetime time.Time `json:"gameDatetime"`
	GameLength   float64   `json:"gameLength"` // seconds
	SetNumber    int       `json:"setNumber"`
	Patch        string    `json:"patch"` // e.g. "13.24"
	Region       string    `json:"region"`
}

// Participant is one player's outcome in one match. Immutable once stored.
type Participant struct {
	ID                   int64   `json:"id"`
	MatchID              int64   `json:"matchId"`
	PlayerID             *int64  `json:"playerId,omitempty"` // nil for untracked players
	PUUID                string  `json:"puuid"`
	Placement            int     `json:"placement"`
	Level                int     `json:"level"`
	GoldLeft             int     `json:"goldLeft"`
	TotalDamageToPlayers int     `json:"totalDamageToPlayers"`
	PlayersEliminated    int     `json:"playersEliminated"`
	TimeEliminated       float64 `json:"timeEliminated"`
}

// Composition is the board snapshot a participant played, 1:1 with the
// participant record. The signature is derived from Traits at ingestion time
// and never recomputed afterwards.
type Composition struct {
	ID            int64        `json:"id"`
	ParticipantID int64        `json:"participantId"`
	Traits        []comp.Trait `json:"traits"`
	Units         []comp.Unit  `json:"units"`
	Augments      []string     `json:"augments"`
	CompSignature string       `json:"compSignature"`
}

// ParticipantWithComp bundles a participant and its composition for the
// transactional match insert.
type ParticipantWithComp struct {
	Participant Participant
	Composition Composition
}

// MetaStat is an aggregate keyed by (signature, patch, region), where
// patch "all" / region "ALL" are the wildcard buckets.
type MetaStat struct {
	ID             int64     `json:"id"`
	CompSignature  string    `json:"compSignature"`
	Patch          string    `json:"patch"`
	Region         string    `json:"region"`
	PlayCount      int       `json:"playCount"`
	AvgPlacement   float64   `json:"avgPlacement"`
	Top4Rate       float64   `json:"top4Rate"`
	Top1Rate       float64   `json:"top1Rate"`
	LastCalculated time.Time `json:"lastCalculated"`
}

// CompOutcome is one (signature, placement) pair scanned for aggregation.
type CompOutcome struct {
	Signature string
	Placement int
}

// SignatureComposition is one stored composition plus its participant's
// placement, used by the composition detail view.
type SignatureComposition struct {
	Units     []comp.Unit
	Augments  []string
	Placement int
}

// DatabaseStats is the set of read-through counters exposed to the dashboard.
type DatabaseStats struct {
	TotalPlayers      int        `json:"totalPlayers"`
	TotalMatches      int        `json:"totalMatches"`
	TotalCompositions int        `json:"totalCompositions"`
	TotalMetaStats    int        `json:"totalMetaStats"`
	OldestMatch       *time.Time `json:"oldestMatch,omitempty"`
	NewestMatch       *time.Time `json:"newestMatch,omitempty"`
}
