package fetcher

import (
	"testing"
	"time"
)

func TestDefaultClientConfig(t *testing.T) {
	cfg := DefaultClientConfig()

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate, got %v", err)
	}
	if !cfg.DenyPrivateIPs {
		t.Error("default config must deny private IPs")
	}
}

func TestClientConfig_PerSourceTimeouts(t *testing.T) {
	if got := APIClientConfig().Timeout; got != 10*time.Second {
		t.Errorf("api timeout = %v, want 10s", got)
	}
	if got := FeedClientConfig().Timeout; got != 15*time.Second {
		t.Errorf("feed timeout = %v, want 15s", got)
	}
	if got := ScrapeClientConfig().Timeout; got != 30*time.Second {
		t.Errorf("scrape timeout = %v, want 30s", got)
	}
}

func TestClientConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*ClientConfig)
		wantErr bool
	}{
		{name: "valid", mutate: func(c *ClientConfig) {}},
		{name: "zero timeout", mutate: func(c *ClientConfig) { c.Timeout = 0 }, wantErr: true},
		{name: "negative timeout", mutate: func(c *ClientConfig) { c.Timeout = -time.Second }, wantErr: true},
		{name: "tiny body limit", mutate: func(c *ClientConfig) { c.MaxBodySize = 100 }, wantErr: true},
		{name: "huge body limit", mutate: func(c *ClientConfig) { c.MaxBodySize = 200 * 1024 * 1024 }, wantErr: true},
		{name: "negative redirects", mutate: func(c *ClientConfig) { c.MaxRedirects = -1 }, wantErr: true},
		{name: "too many redirects", mutate: func(c *ClientConfig) { c.MaxRedirects = 20 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultClientConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr && err == nil {
				t.Error("expected error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("expected no error, got %v", err)
			}
		})
	}
}

func TestNewHTTPClient(t *testing.T) {
	client := NewHTTPClient(DefaultClientConfig())

	if client.Timeout != DefaultClientConfig().Timeout {
		t.Errorf("client timeout = %v, want %v", client.Timeout, DefaultClientConfig().Timeout)
	}
	if client.CheckRedirect == nil {
		t.Error("expected redirect validation to be installed")
	}
}
