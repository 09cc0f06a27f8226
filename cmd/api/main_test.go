package main

import "testing"

func TestLoadConfigDefaults(t *testing.T) {
	cfg := loadConfig()
	if cfg.Port != "8080" {
		t.Fatalf("port = %q", cfg.Port)
	}
	if cfg.CatalogBackend != "neo4j" {
		t.Fatalf("backend = %q", cfg.CatalogBackend)
	}
	if cfg.RateRPS != 50 || cfg.RateBurst != 100 {
		t.Fatalf("rate limit = %v/%d", cfg.RateRPS, cfg.RateBurst)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9999")
	t.Setenv("CATALOG_BACKEND", "memory")
	t.Setenv("RATE_LIMIT_RPS", "2.5")
	t.Setenv("RATE_LIMIT_BURST", "not-a-number")

	cfg := loadConfig()
	if cfg.Port != "9999" || cfg.CatalogBackend != "memory" {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if cfg.RateRPS != 2.5 {
		t.Fatalf("rps = %v", cfg.RateRPS)
	}
	if cfg.RateBurst != 100 {
		t.Fatalf("unparsable burst should fall back: %d", cfg.RateBurst)
	}
}
