package riot

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestValidateKey(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		wantValid  bool
		wantErr    bool
	}{
		{"valid key", http.StatusOK, true, false},
		{"unauthorized", http.StatusUnauthorized, false, false},
		{"forbidden", http.StatusForbidden, false, false},
		{"rate limited", http.StatusTooManyRequests, false, true},
		{"server error", http.StatusInternalServerError, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Header.Get("X-Riot-Token") == "" {
					t.Error("request missing X-Riot-Token header")
				}
				w.WriteHeader(tt.statusCode)
			}))
			defer server.Close()

			v := NewKeyValidator(WithBaseURL(server.URL))
			valid, err := v.ValidateKey(context.Background(), "RGAPI-test-key")

			if valid != tt.wantValid {
				t.Errorf("valid = %v, want %v", valid, tt.wantValid)
			}
			if (err != nil) != tt.wantErr {
				t.Errorf("err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateKeyEmpty(t *testing.T) {
	v := NewKeyValidator()
	if _, err := v.ValidateKey(context.Background(), ""); err == nil {
		t.Error("expected error for empty key")
	}
}

func TestValidateKeyTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	v := NewKeyValidator(WithBaseURL(server.URL), WithTimeout(50*time.Millisecond))
	if _, err := v.ValidateKey(context.Background(), "RGAPI-test-key"); err == nil {
		t.Error("expected timeout error")
	}
}
