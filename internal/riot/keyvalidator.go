package riot

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

const (
	// Lightweight endpoint used only to probe key validity.
	statusEndpoint = "/tft/status/v1/platform-data"

	defaultValidationRegion  = "euw1"
	defaultValidationTimeout = 10 * time.Second
)

// KeyValidator checks whether a Riot API key is still accepted, by making a
// cheap status request before a collection run starts.
type KeyValidator struct {
	httpClient *http.Client
	baseURL    string
}

// KeyValidatorOption configures a KeyValidator.
type KeyValidatorOption func(*KeyValidator)

// WithBaseURL sets a custom base URL (useful for testing).
func WithBaseURL(url string) KeyValidatorOption {
	return func(v *KeyValidator) {
		v.baseURL = url
	}
}

// WithTimeout sets a custom timeout for validation requests.
func WithTimeout(timeout time.Duration) KeyValidatorOption {
	return func(v *KeyValidator) {
		v.httpClient.Timeout = timeout
	}
}

// NewKeyValidator creates a KeyValidator with the given options.
func NewKeyValidator(opts ...KeyValidatorOption) *KeyValidator {
	v := &KeyValidator{
		httpClient: &http.Client{
			Timeout: defaultValidationTimeout,
		},
		baseURL: platformBaseURL(defaultValidationRegion),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// ValidateKey probes the status endpoint with the given key.
// Returns:
//   - (true, nil) if the key is valid
//   - (false, nil) if the key is invalid or expired (401/403)
//   - (false, error) if the request failed (key validity unknown)
func (v *KeyValidator) ValidateKey(ctx context.Context, apiKey string) (bool, error) {
	if apiKey == "" {
		return false, fmt.Errorf("API key cannot be empty")
	}

	req, err := http.NewRequestWithContext(ctx, "GET", v.baseURL+statusEndpoint, nil)
	if err != nil {
		return false, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-Riot-Token", apiKey)

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusUnauthorized, http.StatusForbidden:
		return false, nil
	default:
		return false, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}
}
