package riot

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"golang.org/x/time/rate"
)

const (
	// Minimum delay between outbound requests. Conservative for a dev key
	// (20 req/s, 100 req/2min) shared across league, summoner and match
	// endpoints.
	defaultRequestInterval = 1200 * time.Millisecond

	maxRetries = 3
)

// Client is a rate-limited Riot TFT API client. All outbound requests are
// serialized through a single limiter, per the API's politeness rules.
type Client struct {
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a client using the RIOT_API_KEY environment variable.
func NewClient() (*Client, error) {
	apiKey := os.Getenv("RIOT_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("RIOT_API_KEY environment variable not set")
	}
	return NewClientWithKey(apiKey), nil
}

// NewClientWithKey creates a client with an explicit API key.
func NewClientWithKey(apiKey string) *Client {
	return &Client{
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		limiter: rate.NewLimiter(rate.Every(defaultRequestInterval), 1),
	}
}

func platformBaseURL(region string) string {
	return fmt.Sprintf("https://%s.api.riotgames.com", region)
}

func routingBaseURL(routing string) string {
	return fmt.Sprintf("https://%s.api.riotgames.com", routing)
}

// doRequest makes a rate-limited GET request and decodes the JSON response.
func (c *Client) doRequest(ctx context.Context, url string, result interface{}) error {
	return c.doRequestRetry(ctx, url, result, 0)
}

func (c *Client) doRequestRetry(ctx context.Context, url string, result interface{}, attempt int) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("X-Riot-Token", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return json.NewDecoder(resp.Body).Decode(result)

	case http.StatusTooManyRequests:
		if attempt >= maxRetries {
			return fmt.Errorf("API rate limited after %d retries", attempt)
		}
		waitTime := 10
		if retryAfter := resp.Header.Get("Retry-After"); retryAfter != "" {
			if n, err := strconv.Atoi(retryAfter); err == nil {
				waitTime = n
			}
		}
		select {
		case <-time.After(time.Duration(waitTime) * time.Second):
		case <-ctx.Done():
			return ctx.Err()
		}
		return c.doRequestRetry(ctx, url, result, attempt+1)

	case http.StatusUnauthorized:
		return fmt.Errorf("API returned 401 Unauthorized - check RIOT_API_KEY")

	case http.StatusForbidden:
		return fmt.Errorf("API returned 403 Forbidden - API key may be expired")

	case http.StatusNotFound:
		return fmt.Errorf("API returned 404 Not Found")

	default:
		return fmt.Errorf("API returned status %d", resp.StatusCode)
	}
}

// GetChallengerLeague fetches the TFT Challenger league for a platform region.
func (c *Client) GetChallengerLeague(ctx context.Context, region string) (*LeagueListResponse, error) {
	url := fmt.Sprintf("%s/tft/league/v1/challenger", platformBaseURL(region))

	var league LeagueListResponse
	if err := c.doRequest(ctx, url, &league); err != nil {
		return nil, err
	}
	return &league, nil
}

// GetGrandmasterLeague fetches the TFT Grandmaster league for a platform region.
func (c *Client) GetGrandmasterLeague(ctx context.Context, region string) (*LeagueListResponse, error) {
	url := fmt.Sprintf("%s/tft/league/v1/grandmaster", platformBaseURL(region))

	var league LeagueListResponse
	if err := c.doRequest(ctx, url, &league); err != nil {
		return nil, err
	}
	return &league, nil
}

// GetSummoner fetches summoner details (including PUUID) by summoner ID.
func (c *Client) GetSummoner(ctx context.Context, region, summonerID string) (*SummonerResponse, error) {
	url := fmt.Sprintf("%s/tft/summoner/v1/summoners/%s", platformBaseURL(region), summonerID)

	var summoner SummonerResponse
	if err := c.doRequest(ctx, url, &summoner); err != nil {
		return nil, err
	}
	return &summoner, nil
}

// GetAccountByPUUID fetches the Riot ID (gameName#tagLine) for a PUUID.
func (c *Client) GetAccountByPUUID(ctx context.Context, routing, puuid string) (*AccountResponse, error) {
	url := fmt.Sprintf("%s/riot/account/v1/accounts/by-puuid/%s", routingBaseURL(routing), puuid)

	var account AccountResponse
	if err := c.doRequest(ctx, url, &account); err != nil {
		return nil, err
	}
	return &account, nil
}

// GetMatchIDs fetches recent TFT match IDs for a player.
func (c *Client) GetMatchIDs(ctx context.Context, routing, puuid string, count int) ([]string, error) {
	url := fmt.Sprintf("%s/tft/match/v1/matches/by-puuid/%s/ids?count=%d",
		routingBaseURL(routing), puuid, count)

	var matchIDs []string
	if err := c.doRequest(ctx, url, &matchIDs); err != nil {
		return nil, err
	}
	return matchIDs, nil
}

// GetMatch fetches full match details.
func (c *Client) GetMatch(ctx context.Context, routing, matchID string) (*MatchResponse, error) {
	url := fmt.Sprintf("%s/tft/match/v1/matches/%s", routingBaseURL(routing), matchID)

	var match MatchResponse
	if err := c.doRequest(ctx, url, &match); err != nil {
		return nil, err
	}
	return &match, nil
}
