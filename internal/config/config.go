// Package config reads the per-provider environment variables named in
// spec.md §6 into typed structs, generalizing the teacher's
// map[string]any factory-config convention (driver.DriverFactory) into
// one typed struct per provider.
package config

import (
	"os"
	"strconv"
	"time"
)

// Provider is the common shape of every remote provider's configuration:
// credentials, an optional base-URL override, and a call timeout.
type Provider struct {
	Token       string
	Workspace   string
	AccountID   string
	BaseURL     string
	Timeout     time.Duration
	UseQueryAuth bool // Cloudflare WS auth escape hatch, spec.md §9
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envTimeout(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	ms, err := strconv.Atoi(v)
	if err != nil || ms <= 0 {
		return fallback
	}
	return time.Duration(ms) * time.Millisecond
}

// Modal reads MODAL_TOKEN_ID/MODAL_TOKEN_SECRET/MODAL_BASE_URL/
// MODAL_TIMEOUT_MS.
func Modal() Provider {
	id := os.Getenv("MODAL_TOKEN_ID")
	secret := os.Getenv("MODAL_TOKEN_SECRET")
	token := id
	if secret != "" {
		token = id + ":" + secret
	}
	return Provider{
		Token:   token,
		BaseURL: envOr("MODAL_BASE_URL", "https://api.modal.com"),
		Timeout: envTimeout("MODAL_TIMEOUT_MS", 60*time.Second),
	}
}

// E2B reads E2B_API_KEY/E2B_BASE_URL/E2B_TIMEOUT_MS.
func E2B() Provider {
	return Provider{
		Token:   os.Getenv("E2B_API_KEY"),
		BaseURL: envOr("E2B_BASE_URL", "https://api.e2b.dev"),
		Timeout: envTimeout("E2B_TIMEOUT_MS", 30*time.Second),
	}
}

// Daytona reads DAYTONA_API_KEY/DAYTONA_BASE_URL/DAYTONA_TIMEOUT_MS.
func Daytona() Provider {
	return Provider{
		Token:   os.Getenv("DAYTONA_API_KEY"),
		BaseURL: envOr("DAYTONA_BASE_URL", "https://app.daytona.io/api"),
		Timeout: envTimeout("DAYTONA_TIMEOUT_MS", 45*time.Second),
	}
}

// Blaxel reads BLAXEL_API_KEY/BLAXEL_WORKSPACE/BLAXEL_BASE_URL/
// BLAXEL_TIMEOUT_MS.
func Blaxel() Provider {
	return Provider{
		Token:     os.Getenv("BLAXEL_API_KEY"),
		Workspace: os.Getenv("BLAXEL_WORKSPACE"),
		BaseURL:   envOr("BLAXEL_BASE_URL", "https://api.blaxel.ai"),
		Timeout:   envTimeout("BLAXEL_TIMEOUT_MS", 30*time.Second),
	}
}

// Cloudflare reads CLOUDFLARE_API_TOKEN/CLOUDFLARE_ACCOUNT_ID/
// CLOUDFLARE_BASE_URL/CLOUDFLARE_TIMEOUT_MS.
func Cloudflare() Provider {
	return Provider{
		Token:        os.Getenv("CLOUDFLARE_API_TOKEN"),
		AccountID:    os.Getenv("CLOUDFLARE_ACCOUNT_ID"),
		BaseURL:      envOr("CLOUDFLARE_BASE_URL", "https://api.cloudflare.com/client/v4"),
		Timeout:      envTimeout("CLOUDFLARE_TIMEOUT_MS", 30*time.Second),
		UseQueryAuth: os.Getenv("CLOUDFLARE_WS_QUERY_AUTH") == "true",
	}
}

// Vercel reads VERCEL_ACCESS_TOKEN (or VERCEL_OIDC_TOKEN as a fallback),
// VERCEL_TEAM_ID, VERCEL_PROJECT_ID, VERCEL_BASE_URL/VERCEL_TIMEOUT_MS.
func Vercel() Provider {
	token := os.Getenv("VERCEL_ACCESS_TOKEN")
	if token == "" {
		token = os.Getenv("VERCEL_OIDC_TOKEN")
	}
	return Provider{
		Token:     token,
		Workspace: os.Getenv("VERCEL_TEAM_ID"),
		AccountID: os.Getenv("VERCEL_PROJECT_ID"),
		BaseURL:   envOr("VERCEL_BASE_URL", "https://api.vercel.com"),
		Timeout:   envTimeout("VERCEL_TIMEOUT_MS", 45*time.Second),
	}
}

// Docker reads DOCKER_TIMEOUT_MS and the advertised host used to
// synthesize port-mapped tunnel URLs (spec.md §4.4.3).
type DockerConfig struct {
	Timeout        time.Duration
	AdvertiseHost  string
	AgentPath      string
}

func Docker() DockerConfig {
	return DockerConfig{
		Timeout:       envTimeout("DOCKER_TIMEOUT_MS", 10*time.Minute),
		AdvertiseHost: envOr("DOCKER_ADVERTISE_HOST", "127.0.0.1"),
		AgentPath:     os.Getenv("BOXED_AGENT_PATH"),
	}
}
