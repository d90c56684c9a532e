// Package collector walks the high-rank ladders, tracks their players, and
// pulls recent matches through the ingestion pipeline.
package collector

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/bits-and-blooms/bloom/v3"

	"tft-meta-tracker/internal/db"
	"tft-meta-tracker/internal/ingest"
	"tft-meta-tracker/internal/riot"
)

const (
	DefaultMaxPlayers       = 50
	DefaultMatchesPerPlayer = 20
)

// RiotAPI is the slice of the Riot client the collector uses, kept as an
// interface so tests can fake responses.
type RiotAPI interface {
	GetChallengerLeague(ctx context.Context, region string) (*riot.LeagueListResponse, error)
	GetGrandmasterLeague(ctx context.Context, region string) (*riot.LeagueListResponse, error)
	GetAccountByPUUID(ctx context.Context, routing, puuid string) (*riot.AccountResponse, error)
	GetMatchIDs(ctx context.Context, routing, puuid string, count int) ([]string, error)
	GetMatch(ctx context.Context, routing, matchID string) (*riot.MatchResponse, error)
}

// PlayerStore persists tracked players.
type PlayerStore interface {
	UpsertPlayer(ctx context.Context, p *db.Player) error
	ListPlayers(ctx context.Context, region string) ([]db.Player, error)
}

// MatchIngestor stores one raw match; the bool reports whether it was new.
type MatchIngestor interface {
	Ingest(ctx context.Context, raw *riot.MatchResponse, region string) (*db.Match, bool, error)
}

// Collector ties the Riot API to the store.
type Collector struct {
	api      RiotAPI
	players  PlayerStore
	ingestor MatchIngestor

	// Bloom filters for in-run deduplication; the database's match_id
	// constraint still catches anything that slips through.
	seenMatches *bloom.BloomFilter
	seenPUUIDs  *bloom.BloomFilter

	// Run stats
	playersStored  int
	matchesStored  int
	matchesSkipped int
	fetchErrors    int
	startTime      time.Time
}

// New creates a collector.
func New(api RiotAPI, players PlayerStore, ingestor MatchIngestor) *Collector {
	return &Collector{
		api:         api,
		players:     players,
		ingestor:    ingestor,
		seenMatches: bloom.NewWithEstimates(500000, 0.001),
		seenPUUIDs:  bloom.NewWithEstimates(100000, 0.001),
	}
}

// CollectPlayers pulls the Challenger and Grandmaster ladders for one region
// and upserts up to maxPlayers of them, best LP first. Returns the number of
// players stored.
func (c *Collector) CollectPlayers(ctx context.Context, region string, maxPlayers int) (int, error) {
	if !riot.IsKnownRegion(region) {
		return 0, fmt.Errorf("unknown region %q", region)
	}
	if maxPlayers <= 0 {
		maxPlayers = DefaultMaxPlayers
	}
	routing := riot.RoutingForRegion(region)

	type ladderEntry struct {
		entry riot.LeagueEntry
		tier  string
	}
	var entries []ladderEntry

	challenger, err := c.api.GetChallengerLeague(ctx, region)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch challenger league: %w", err)
	}
	for _, e := range challenger.Entries {
		entries = append(entries, ladderEntry{entry: e, tier: "CHALLENGER"})
	}

	grandmaster, err := c.api.GetGrandmasterLeague(ctx, region)
	if err != nil {
		// Challenger alone is still a usable ladder sample.
		log.Printf("[Collector] Grandmaster league unavailable for %s: %v", region, err)
	} else {
		for _, e := range grandmaster.Entries {
			entries = append(entries, ladderEntry{entry: e, tier: "GRANDMASTER"})
		}
	}

	log.Printf("[Collector] %s ladder: %d entries, keeping up to %d", region, len(entries), maxPlayers)

	stored := 0
	for _, le := range entries {
		if stored >= maxPlayers {
			break
		}
		select {
		case <-ctx.Done():
			return stored, ctx.Err()
		default:
		}

		if le.entry.PUUID == "" || c.seenPUUIDs.TestString(le.entry.PUUID) {
			continue
		}
		c.seenPUUIDs.AddString(le.entry.PUUID)

		player := &db.Player{
			PUUID:        le.entry.PUUID,
			Tier:         le.tier,
			Rank:         le.entry.Rank,
			LeaguePoints: le.entry.LeaguePoints,
			Region:       region,
		}

		// Riot IDs are a nicety for reports; a failed lookup still leaves a
		// usable player row.
		account, err := c.api.GetAccountByPUUID(ctx, routing, le.entry.PUUID)
		if err != nil {
			log.Printf("[Collector] Account lookup failed for %s: %v", shortID(le.entry.PUUID), err)
		} else {
			player.GameName = account.GameName
			player.TagLine = account.TagLine
		}

		if err := c.players.UpsertPlayer(ctx, player); err != nil {
			log.Printf("[Collector] Failed to store player %s: %v", shortID(le.entry.PUUID), err)
			continue
		}
		stored++
		c.playersStored++
	}

	log.Printf("[Collector] Stored %d players for %s", stored, region)
	return stored, nil
}

// CollectMatches fetches recent match history for up to maxPlayers tracked
// players in a region and ingests each match once. Returns the number of
// newly stored matches.
func (c *Collector) CollectMatches(ctx context.Context, region string, maxPlayers, matchesPerPlayer int) (int, error) {
	if maxPlayers <= 0 {
		maxPlayers = DefaultMaxPlayers
	}
	if matchesPerPlayer <= 0 {
		matchesPerPlayer = DefaultMatchesPerPlayer
	}
	routing := riot.RoutingForRegion(region)
	c.startTime = time.Now()

	players, err := c.players.ListPlayers(ctx, region)
	if err != nil {
		return 0, fmt.Errorf("failed to list players: %w", err)
	}
	if len(players) == 0 {
		return 0, errors.New("no tracked players, run player collection first")
	}
	if len(players) > maxPlayers {
		players = players[:maxPlayers]
	}

	newMatches := 0
	for i, player := range players {
		select {
		case <-ctx.Done():
			return newMatches, ctx.Err()
		default:
		}

		matchIDs, err := c.api.GetMatchIDs(ctx, routing, player.PUUID, matchesPerPlayer)
		if err != nil {
			log.Printf("[Collector] Match history failed for %s: %v", shortID(player.PUUID), err)
			c.fetchErrors++
			continue
		}

		fmt.Printf("[Player %d/%d] [%s] %s: %d matches in history\n",
			i+1, len(players), formatDuration(time.Since(c.startTime)),
			shortID(player.PUUID), len(matchIDs))

		for _, matchID := range matchIDs {
			select {
			case <-ctx.Done():
				return newMatches, ctx.Err()
			default:
			}

			if c.seenMatches.TestString(matchID) {
				c.matchesSkipped++
				continue
			}
			c.seenMatches.AddString(matchID)

			raw, err := c.api.GetMatch(ctx, routing, matchID)
			if err != nil {
				log.Printf("[Collector] Failed to fetch %s: %v", matchID, err)
				c.fetchErrors++
				continue
			}

			_, inserted, err := c.ingestor.Ingest(ctx, raw, region)
			if err != nil {
				if errors.Is(err, ingest.ErrInvalidMatch) {
					log.Printf("[Collector] Skipping %s: %v", matchID, err)
					c.matchesSkipped++
					continue
				}
				return newMatches, fmt.Errorf("failed to ingest %s: %w", matchID, err)
			}
			if inserted {
				newMatches++
				c.matchesStored++
			} else {
				c.matchesSkipped++
			}
		}
	}

	c.printSummary(region)
	return newMatches, nil
}

func (c *Collector) printSummary(region string) {
	elapsed := time.Since(c.startTime)
	fmt.Printf("\n=== Collection Complete (%s) ===\n", region)
	fmt.Printf("Total time: %s\n", formatDuration(elapsed))
	fmt.Printf("Matches stored: %d\n", c.matchesStored)
	fmt.Printf("Matches skipped (duplicate/invalid): %d\n", c.matchesSkipped)
	fmt.Printf("Fetch errors: %d\n", c.fetchErrors)
	if c.matchesStored > 0 && elapsed > 0 {
		fmt.Printf("Throughput: %.1f matches/min\n", float64(c.matchesStored)/elapsed.Minutes())
	}
}

func shortID(puuid string) string {
	if len(puuid) > 16 {
		return puuid[:16]
	}
	return puuid
}

func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	} else if d < time.Hour {
		mins := int(d.Minutes())
		secs := int(d.Seconds()) % 60
		return fmt.Sprintf("%dm%02ds", mins, secs)
	}
	hours := int(d.Hours())
	mins := int(d.Minutes()) % 60
	secs := int(d.Seconds()) % 60
	return fmt.Sprintf("%dh%02dm%02ds", hours, mins, secs)
}
