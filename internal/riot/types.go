package riot

// AccountResponse represents the response from /riot/account/v1/accounts/by-puuid
type AccountResponse struct {
	PUUID    string `json:"puuid"`
	GameName string `json:"gameName"`
	TagLine  string `json:"tagLine"`
}

// SummonerResponse represents the response from /tft/summoner/v1/summoners/{summonerId}
type SummonerResponse struct {
	ID            string `json:"id"`
	AccountID     string `json:"accountId"`
	PUUID         string `json:"puuid"`
	SummonerLevel int    `json:"summonerLevel"`
}

// LeagueListResponse represents the response from
// /tft/league/v1/challenger and /tft/league/v1/grandmaster
type LeagueListResponse struct {
	Tier    string        `json:"tier"` // CHALLENGER, GRANDMASTER
	Name    string        `json:"name"`
	Queue   string        `json:"queue"`
	Entries []LeagueEntry `json:"entries"`
}

// LeagueEntry is one ranked player within a league list.
type LeagueEntry struct {
	SummonerID   string `json:"summonerId"`
	PUUID        string `json:"puuid"`
	Rank         string `json:"rank"` // I, II, III, IV
	LeaguePoints int    `json:"leaguePoints"`
	Wins         int    `json:"wins"`
	Losses       int    `json:"losses"`
}

// MatchResponse represents the response from /tft/match/v1/matches/{matchId}
type MatchResponse struct {
	Metadata MatchMetadata `json:"metadata"`
	Info     MatchInfo     `json:"info"`
}

type MatchMetadata struct {
	MatchID      string   `json:"match_id"`
	Participants []string `json:"participants"` // PUUIDs
}

type MatchInfo struct {
	GameDatetime int64              `json:"game_datetime"` // epoch milliseconds
	GameLength   float64            `json:"game_length"`   // seconds
	GameVersion  string             `json:"game_version"`
	TFTSetNumber int                `json:"tft_set_number"`
	QueueID      int                `json:"queue_id"`
	Participants []MatchParticipant `json:"participants"`
}

type MatchParticipant struct {
	PUUID                string   `json:"puuid"`
	Placement            int      `json:"placement"` // 1 (best) - 8
	Level                int      `json:"level"`
	GoldLeft             int      `json:"gold_left"`
	LastRound            int      `json:"last_round"`
	PlayersEliminated    int      `json:"players_eliminated"`
	TotalDamageToPlayers int      `json:"total_damage_to_players"`
	TimeEliminated       float64  `json:"time_eliminated"`
	Units                []Unit   `json:"units"`
	Traits               []Trait  `json:"traits"`
	Augments             []string `json:"augments"`
}

// Unit is a fielded unit as reported by the match endpoint.
type Unit struct {
	CharacterID string   `json:"character_id"`
	ItemNames   []string `json:"itemNames"`
	Name        string   `json:"name"`
	Rarity      int      `json:"rarity"`
	Tier        int      `json:"tier"` // star level
}

// Trait is a trait activation as reported by the match endpoint.
type Trait struct {
	Name        string `json:"name"`
	NumUnits    int    `json:"num_units"`
	Style       int    `json:"style"` // 0=inactive ... 4=chromatic
	TierCurrent int    `json:"tier_current"`
	TierTotal   int    `json:"tier_total"`
}
