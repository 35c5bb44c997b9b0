package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Pricing.Currency != "USD" {
		t.Errorf("default currency = %s, want USD", cfg.Pricing.Currency)
	}
	if cfg.Pricing.DefaultTargetFoodCostPercent != 30 {
		t.Errorf("default target = %v, want 30", cfg.Pricing.DefaultTargetFoodCostPercent)
	}
	if cfg.Output.DefaultFormat != "cli" {
		t.Errorf("default format = %s, want cli", cfg.Output.DefaultFormat)
	}
	if cfg.Catalog.Path == "" {
		t.Error("default catalog path must be set")
	}
	if cfg.Reports.DatabasePath == "" {
		t.Error("default reports database path must be set")
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	if err != nil {
		t.Fatalf("Load of missing file failed: %v", err)
	}
	if cfg.Pricing.Currency != "USD" {
		t.Errorf("currency = %s, want USD defaults", cfg.Pricing.Currency)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "recipe-cost.json")

	cfg := Default()
	cfg.Pricing.Currency = "EUR"
	cfg.Pricing.DefaultTargetFoodCostPercent = 25
	cfg.Catalog.Path = "/data/catalog.json"

	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Pricing.Currency != "EUR" {
		t.Errorf("currency = %s, want EUR", loaded.Pricing.Currency)
	}
	if loaded.Pricing.DefaultTargetFoodCostPercent != 25 {
		t.Errorf("target = %v, want 25", loaded.Pricing.DefaultTargetFoodCostPercent)
	}
	if loaded.Catalog.Path != "/data/catalog.json" {
		t.Errorf("catalog path = %s", loaded.Catalog.Path)
	}
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.json")
	if err := os.WriteFile(path, []byte(`{"pricing":{"currency":"GBP"}}`), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Pricing.Currency != "GBP" {
		t.Errorf("currency = %s, want GBP", cfg.Pricing.Currency)
	}
	if cfg.Output.DefaultFormat != "cli" {
		t.Errorf("format = %s, want cli default preserved", cfg.Output.DefaultFormat)
	}
}

func TestLoadInvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{{{"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected error for invalid JSON")
	}
}
