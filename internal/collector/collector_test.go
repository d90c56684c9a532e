package collector

import (
	"context"
	"errors"
	"testing"

	"tft-meta-tracker/internal/db"
	"tft-meta-tracker/internal/ingest"
	"tft-meta-tracker/internal/riot"
)

type fakeAPI struct {
	challenger  *riot.LeagueListResponse
	grandmaster *riot.LeagueListResponse
	matchIDs    map[string][]string
	matches     map[string]*riot.MatchResponse
	accountErr  error
}

func (f *fakeAPI) GetChallengerLeague(ctx context.Context, region string) (*riot.LeagueListResponse, error) {
	if f.challenger == nil {
		return nil, errors.New("challenger unavailable")
	}
	return f.challenger, nil
}

func (f *fakeAPI) GetGrandmasterLeague(ctx context.Context, region string) (*riot.LeagueListResponse, error) {
	if f.grandmaster == nil {
		return nil, errors.New("grandmaster unavailable")
	}
	return f.grandmaster, nil
}

func (f *fakeAPI) GetAccountByPUUID(ctx context.Context, routing, puuid string) (*riot.AccountResponse, error) {
	if f.accountErr != nil {
		return nil, f.accountErr
	}
	return &riot.AccountResponse{PUUID: puuid, GameName: "Player-" + puuid, TagLine: "NA1"}, nil
}

func (f *fakeAPI) GetMatchIDs(ctx context.Context, routing, puuid string, count int) ([]string, error) {
	return f.matchIDs[puuid], nil
}

func (f *fakeAPI) GetMatch(ctx context.Context, routing, matchID string) (*riot.MatchResponse, error) {
	m, ok := f.matches[matchID]
	if !ok {
		return nil, errors.New("match not found")
	}
	return m, nil
}

type fakePlayerStore struct {
	players []db.Player
}

func (f *fakePlayerStore) UpsertPlayer(ctx context.Context, p *db.Player) error {
	f.players = append(f.players, *p)
	return nil
}

func (f *fakePlayerStore) ListPlayers(ctx context.Context, region string) ([]db.Player, error) {
	return f.players, nil
}

type fakeIngestor struct {
	seen     map[string]bool
	ingested int
}

func (f *fakeIngestor) Ingest(ctx context.Context, raw *riot.MatchResponse, region string) (*db.Match, bool, error) {
	if raw.Metadata.MatchID == "" {
		return nil, false, ingest.ErrInvalidMatch
	}
	if f.seen == nil {
		f.seen = make(map[string]bool)
	}
	if f.seen[raw.Metadata.MatchID] {
		return &db.Match{MatchID: raw.Metadata.MatchID}, false, nil
	}
	f.seen[raw.Metadata.MatchID] = true
	f.ingested++
	return &db.Match{MatchID: raw.Metadata.MatchID}, true, nil
}

func rawMatch(id string) *riot.MatchResponse {
	m := &riot.MatchResponse{}
	m.Metadata.MatchID = id
	m.Info.Participants = []riot.MatchParticipant{{PUUID: "p1", Placement: 1}}
	return m
}

func TestCollectPlayers(t *testing.T) {
	api := &fakeAPI{
		challenger: &riot.LeagueListResponse{Entries: []riot.LeagueEntry{
			{PUUID: "c1", LeaguePoints: 1200, Rank: "I"},
			{PUUID: "c2", LeaguePoints: 1100, Rank: "I"},
		}},
		grandmaster: &riot.LeagueListResponse{Entries: []riot.LeagueEntry{
			{PUUID: "g1", LeaguePoints: 800, Rank: "I"},
		}},
	}
	store := &fakePlayerStore{}
	c := New(api, store, &fakeIngestor{})

	stored, err := c.CollectPlayers(context.Background(), "na1", 10)
	if err != nil {
		t.Fatalf("CollectPlayers failed: %v", err)
	}
	if stored != 3 {
		t.Errorf("stored %d players, want 3", stored)
	}
	if store.players[0].Tier != "CHALLENGER" {
		t.Errorf("first player tier = %q, want CHALLENGER", store.players[0].Tier)
	}
	if store.players[2].Tier != "GRANDMASTER" {
		t.Errorf("third player tier = %q, want GRANDMASTER", store.players[2].Tier)
	}
	if store.players[0].GameName == "" {
		t.Error("expected account lookup to fill the game name")
	}
}

func TestCollectPlayersCapsAtMax(t *testing.T) {
	api := &fakeAPI{
		challenger: &riot.LeagueListResponse{Entries: []riot.LeagueEntry{
			{PUUID: "c1"}, {PUUID: "c2"}, {PUUID: "c3"},
		}},
		grandmaster: &riot.LeagueListResponse{},
	}
	store := &fakePlayerStore{}
	c := New(api, store, &fakeIngestor{})

	stored, err := c.CollectPlayers(context.Background(), "na1", 2)
	if err != nil {
		t.Fatalf("CollectPlayers failed: %v", err)
	}
	if stored != 2 {
		t.Errorf("stored %d players, want cap of 2", stored)
	}
}

func TestCollectPlayersSurvivesAccountFailure(t *testing.T) {
	api := &fakeAPI{
		challenger: &riot.LeagueListResponse{Entries: []riot.LeagueEntry{
			{PUUID: "c1", LeaguePoints: 900},
		}},
		grandmaster: &riot.LeagueListResponse{},
		accountErr:  errors.New("rate limited"),
	}
	store := &fakePlayerStore{}
	c := New(api, store, &fakeIngestor{})

	stored, err := c.CollectPlayers(context.Background(), "na1", 10)
	if err != nil {
		t.Fatalf("CollectPlayers failed: %v", err)
	}
	if stored != 1 {
		t.Errorf("stored %d players, want 1 despite account failure", stored)
	}
	if store.players[0].GameName != "" {
		t.Errorf("game name = %q, want empty when lookup failed", store.players[0].GameName)
	}
}

func TestCollectPlayersUnknownRegion(t *testing.T) {
	c := New(&fakeAPI{}, &fakePlayerStore{}, &fakeIngestor{})
	if _, err := c.CollectPlayers(context.Background(), "moon1", 10); err == nil {
		t.Error("expected error for unknown region")
	}
}

func TestCollectMatchesDeduplicates(t *testing.T) {
	// Two players sharing one match in their histories; it should be
	// fetched and ingested once.
	api := &fakeAPI{
		matchIDs: map[string][]string{
			"p1": {"NA1_100", "NA1_200"},
			"p2": {"NA1_200", "NA1_300"},
		},
		matches: map[string]*riot.MatchResponse{
			"NA1_100": rawMatch("NA1_100"),
			"NA1_200": rawMatch("NA1_200"),
			"NA1_300": rawMatch("NA1_300"),
		},
	}
	store := &fakePlayerStore{players: []db.Player{{PUUID: "p1"}, {PUUID: "p2"}}}
	ing := &fakeIngestor{}
	c := New(api, store, ing)

	stored, err := c.CollectMatches(context.Background(), "na1", 10, 20)
	if err != nil {
		t.Fatalf("CollectMatches failed: %v", err)
	}
	if stored != 3 {
		t.Errorf("stored %d matches, want 3", stored)
	}
	if ing.ingested != 3 {
		t.Errorf("ingestor ran %d times, want 3", ing.ingested)
	}
}

func TestCollectMatchesNoPlayers(t *testing.T) {
	c := New(&fakeAPI{}, &fakePlayerStore{}, &fakeIngestor{})
	if _, err := c.CollectMatches(context.Background(), "na1", 10, 20); err == nil {
		t.Error("expected error when no players are tracked")
	}
}

func TestCollectMatchesSkipsInvalid(t *testing.T) {
	api := &fakeAPI{
		matchIDs: map[string][]string{"p1": {"NA1_BAD", "NA1_OK"}},
		matches: map[string]*riot.MatchResponse{
			"NA1_BAD": func() *riot.MatchResponse {
				m := rawMatch("NA1_BAD")
				m.Metadata.MatchID = ""
				return m
			}(),
			"NA1_OK": rawMatch("NA1_OK"),
		},
	}
	store := &fakePlayerStore{players: []db.Player{{PUUID: "p1"}}}
	c := New(api, store, &fakeIngestor{})

	stored, err := c.CollectMatches(context.Background(), "na1", 10, 20)
	if err != nil {
		t.Fatalf("CollectMatches failed: %v", err)
	}
	if stored != 1 {
		t.Errorf("stored %d matches, want 1 with the invalid one skipped", stored)
	}
}
