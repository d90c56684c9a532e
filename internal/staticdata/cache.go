// Package staticdata resolves internal game identifiers (character IDs,
// trait API names, item names) to display names using Community Dragon's
// published TFT data, with a local file cache so the network is hit at most
// once per payload.
package staticdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const cdragonURL = "https://raw.communitydragon.org/latest/cdragon/tft/en_us.json"

// FetchFunc retrieves the raw static-data payload. Injected so tests can
// supply fixtures without a network.
type FetchFunc func(ctx context.Context) ([]byte, error)

// HTTPFetch returns a FetchFunc that downloads the Community Dragon payload.
func HTTPFetch() FetchFunc {
	client := &http.Client{Timeout: 30 * time.Second}
	return func(ctx context.Context) ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, cdragonURL, nil)
		if err != nil {
			return nil, err
		}
		resp, err := client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch static data: %w", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("static data fetch returned status %d", resp.StatusCode)
		}
		return io.ReadAll(resp.Body)
	}
}

// Cache maps game identifiers to display names. Lookups lazily load the
// payload from the cache directory, falling back to the fetch func.
type Cache struct {
	fetch    FetchFunc
	cacheDir string

	mu        sync.RWMutex
	loaded    bool
	champions map[string]string // character_id -> display name
	traits    map[string]string // trait api_name -> display name
	items     map[string]string // item api_name -> display name
}

// New creates a cache backed by cacheDir. An empty cacheDir disables the
// file cache.
func New(fetch FetchFunc, cacheDir string) *Cache {
	return &Cache{
		fetch:     fetch,
		cacheDir:  cacheDir,
		champions: make(map[string]string),
		traits:    make(map[string]string),
		items:     make(map[string]string),
	}
}

// payload mirrors the slice of the Community Dragon document we use.
type payload struct {
	Items []struct {
		APIName string `json:"apiName"`
		Name    string `json:"name"`
	} `json:"items"`
	SetData []struct {
		Champions []struct {
			APIName string `json:"apiName"`
			Name    string `json:"name"`
		} `json:"champions"`
		Traits []struct {
			APIName string `json:"apiName"`
			Name    string `json:"name"`
		} `json:"traits"`
	} `json:"setData"`
}

// Load parses the payload into the lookup maps. Safe to call more than once;
// subsequent calls are no-ops.
func (c *Cache) Load(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.loaded {
		return nil
	}

	raw, err := c.readPayload(ctx)
	if err != nil {
		return err
	}

	var p payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return fmt.Errorf("failed to parse static data: %w", err)
	}

	for _, item := range p.Items {
		if item.APIName != "" && item.Name != "" {
			c.items[item.APIName] = item.Name
		}
	}
	// Later sets win on collisions, matching Community Dragon's ordering
	// where the current set comes last.
	for _, set := range p.SetData {
		for _, ch := range set.Champions {
			if ch.APIName != "" && ch.Name != "" {
				c.champions[ch.APIName] = ch.Name
			}
		}
		for _, tr := range set.Traits {
			if tr.APIName != "" && tr.Name != "" {
				c.traits[tr.APIName] = tr.Name
			}
		}
	}

	c.loaded = true
	return nil
}

func (c *Cache) readPayload(ctx context.Context) ([]byte, error) {
	cachePath := ""
	if c.cacheDir != "" {
		cachePath = filepath.Join(c.cacheDir, "tft_static.json")
		if raw, err := os.ReadFile(cachePath); err == nil && len(raw) > 0 {
			return raw, nil
		}
	}

	raw, err := c.fetch(ctx)
	if err != nil {
		return nil, err
	}

	if cachePath != "" {
		if err := os.MkdirAll(c.cacheDir, 0o755); err == nil {
			// Cache write failures are not fatal, the next load just
			// fetches again.
			_ = os.WriteFile(cachePath, raw, 0o644)
		}
	}
	return raw, nil
}

// ChampionName resolves a character ID (e.g. "TFT10_Ahri") to its display
// name, falling back to the raw ID.
func (c *Cache) ChampionName(characterID string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if name, ok := c.champions[characterID]; ok {
		return name
	}
	return characterID
}

// TraitName resolves a trait API name to its display name, falling back to
// the raw name.
func (c *Cache) TraitName(apiName string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if name, ok := c.traits[apiName]; ok {
		return name
	}
	return apiName
}

// ItemName resolves an item API name to its display name, falling back to
// the raw name.
func (c *Cache) ItemName(apiName string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if name, ok := c.items[apiName]; ok {
		return name
	}
	return apiName
}

// IsLoaded reports whether the payload has been parsed.
func (c *Cache) IsLoaded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loaded
}
