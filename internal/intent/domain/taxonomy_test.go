package domain

import (
	"os"
	"path/filepath"
	"testing"
)

func TestEngineConfig_ValidateRejectsBadConfigs(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*EngineConfig)
	}{
		{"negative decay rate", func(c *EngineConfig) { c.DecayRatePerHour = -1 }},
		{"zero history capacity", func(c *EngineConfig) { c.HistoryCapacity = 0 }},
		{"zero product capacity", func(c *EngineConfig) { c.ProductInterestCapacity = 0 }},
		{"negative hysteresis margin", func(c *EngineConfig) { c.HysteresisMargin = -1 }},
		{"no stage bands", func(c *EngineConfig) { c.StageBands = nil }},
		{"first band not at zero", func(c *EngineConfig) { c.StageBands[0].LowerBound = 5 }},
		{"unordered bands", func(c *EngineConfig) {
			c.StageBands[1].LowerBound = 90
		}},
		{"duplicate stage", func(c *EngineConfig) {
			c.StageBands[1].Stage = StageCold
		}},
		{"band above score range", func(c *EngineConfig) {
			c.StageBands[len(c.StageBands)-1].LowerBound = 101
		}},
		{"empty taxonomy", func(c *EngineConfig) { c.Taxonomy = nil }},
		{"signal without weight", func(c *EngineConfig) {
			c.Taxonomy["broken"] = KindSpec{Category: CategorySignal}
		}},
		{"objection without penalty", func(c *EngineConfig) {
			c.Taxonomy["broken"] = KindSpec{Category: CategoryObjection}
		}},
		{"unknown category", func(c *EngineConfig) {
			c.Taxonomy["broken"] = KindSpec{Category: "mystery", Weight: 1}
		}},
		{"reserved resolution prefix", func(c *EngineConfig) {
			c.Taxonomy["objection_resolved:too_expensive"] = KindSpec{Category: CategoryControl}
		}},
	}

	for _, tc := range cases {
		cfg := DefaultEngineConfig()
		tc.mutate(&cfg)
		if err := cfg.Validate(); err == nil {
			t.Fatalf("%s: expected validation error, got nil", tc.name)
		}
		if _, err := NewEngine(cfg); err == nil {
			t.Fatalf("%s: expected NewEngine to refuse the config", tc.name)
		}
	}
}

func TestEngineConfig_DefaultsValidate(t *testing.T) {
	cfg := DefaultEngineConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config failed validation: %v", err)
	}
}

func TestLoadTaxonomyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "taxonomy.yaml")
	content := `kinds:
  waved_hello:
    category: signal
    weight: 3
  asked_for_invoice:
    category: signal
    weight: 14
  wants_discount:
    category: objection
    penalty: 9
  eyeing_product:
    category: product_interest
    weight: 7
  requested_human:
    category: control
stageBands:
  - stage: cold
    lowerBound: 0
  - stage: warm
    lowerBound: 50
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write taxonomy file: %v", err)
	}

	cfg := DefaultEngineConfig()
	if err := cfg.LoadTaxonomyFile(path); err != nil {
		t.Fatalf("failed to load taxonomy file: %v", err)
	}

	if len(cfg.Taxonomy) != 5 {
		t.Fatalf("expected 5 kinds, got %d", len(cfg.Taxonomy))
	}
	if spec := cfg.Taxonomy["asked_for_invoice"]; spec.Weight != 14 || spec.Category != CategorySignal {
		t.Fatalf("unexpected spec for asked_for_invoice: %+v", spec)
	}
	if spec := cfg.Taxonomy["wants_discount"]; spec.Penalty != 9 {
		t.Fatalf("unexpected penalty for wants_discount: %d", spec.Penalty)
	}
	if len(cfg.StageBands) != 2 || cfg.StageBands[1].Stage != "warm" {
		t.Fatalf("expected stage bands replaced, got %+v", cfg.StageBands)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("loaded config failed validation: %v", err)
	}
}

func TestLoadTaxonomyFile_Errors(t *testing.T) {
	cfg := DefaultEngineConfig()
	if err := cfg.LoadTaxonomyFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}

	empty := filepath.Join(t.TempDir(), "empty.yaml")
	if err := os.WriteFile(empty, []byte("stageBands: []\n"), 0o600); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}
	if err := cfg.LoadTaxonomyFile(empty); err == nil {
		t.Fatal("expected error for taxonomy file with no kinds")
	}
}
