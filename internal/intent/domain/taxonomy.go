package domain

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Event categories in the taxonomy.
const (
	CategorySignal          = "signal"
	CategoryObjection       = "objection"
	CategoryProductInterest = "product_interest"
	CategoryControl         = "control"
)

// KindRequestedHuman is the control kind that forces a handover
// recommendation regardless of stage.
const KindRequestedHuman = "requested_human"

// resolutionPrefix marks control signals that resolve a previously raised
// objection: "objection_resolved:<kind>".
const resolutionPrefix = "objection_resolved:"

// KindSpec describes one entry of the signal/objection taxonomy.
type KindSpec struct {
	Category string `yaml:"category"`
	Weight   int    `yaml:"weight"`
	Penalty  int    `yaml:"penalty"`
}

// Taxonomy maps event kinds to their classification and scoring parameters.
// It is injected configuration; new kinds are added without code change.
type Taxonomy map[string]KindSpec

// StageBand is one entry of the ordered funnel band table.
type StageBand struct {
	Stage      string `yaml:"stage"`
	LowerBound int    `yaml:"lowerBound"`
}

// EngineConfig carries every tunable of the intent engine. Validate must
// pass before the engine is constructed; configuration problems fail at
// startup, never at per-turn time.
type EngineConfig struct {
	DecayRatePerHour        float64
	HistoryCapacity         int
	ProductInterestCapacity int
	HysteresisMargin        int
	StageBands              []StageBand
	Taxonomy                Taxonomy
}

// DefaultStageBands returns the standard funnel band table:
// cold [0,20), curious [20,45), interested [45,65), hot [65,85), closing [85,100].
func DefaultStageBands() []StageBand {
	return []StageBand{
		{Stage: StageCold, LowerBound: 0},
		{Stage: StageCurious, LowerBound: 20},
		{Stage: StageInterested, LowerBound: 45},
		{Stage: StageHot, LowerBound: 65},
		{Stage: StageClosing, LowerBound: 85},
	}
}

// DefaultTaxonomy returns the built-in kind taxonomy used when no taxonomy
// file is configured. Deployments override it wholesale via YAML.
func DefaultTaxonomy() Taxonomy {
	return Taxonomy{
		"greeting":          {Category: CategorySignal, Weight: 2},
		"price_inquiry":     {Category: CategorySignal, Weight: 8},
		"asked_for_link":    {Category: CategorySignal, Weight: 10},
		"asked_for_demo":    {Category: CategorySignal, Weight: 12},
		"payment_question":  {Category: CategorySignal, Weight: 15},
		"shared_with_peer":  {Category: CategorySignal, Weight: 6},
		"repeat_contact":    {Category: CategorySignal, Weight: 5},
		"too_expensive":     {Category: CategoryObjection, Penalty: 8},
		"needs_approval":    {Category: CategoryObjection, Penalty: 5},
		"bad_timing":        {Category: CategoryObjection, Penalty: 6},
		"competitor_offer":  {Category: CategoryObjection, Penalty: 7},
		"browsed_product":   {Category: CategoryProductInterest, Weight: 6},
		"asked_about_stock": {Category: CategoryProductInterest, Weight: 10},
		KindRequestedHuman:  {Category: CategoryControl},
	}
}

// DefaultEngineConfig returns the engine defaults: 1 point of decay per six
// silent hours, 50 history entries, 20 tracked products, 5-point hysteresis.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		DecayRatePerHour:        1.0 / 6.0,
		HistoryCapacity:         50,
		ProductInterestCapacity: 20,
		HysteresisMargin:        5,
		StageBands:              DefaultStageBands(),
		Taxonomy:                DefaultTaxonomy(),
	}
}

// taxonomyFile is the YAML shape of an external taxonomy file.
type taxonomyFile struct {
	Kinds      map[string]KindSpec `yaml:"kinds"`
	StageBands []StageBand         `yaml:"stageBands"`
}

// LoadTaxonomyFile replaces the config's taxonomy (and optionally its stage
// bands) from a YAML file.
func (c *EngineConfig) LoadTaxonomyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read taxonomy file: %w", err)
	}

	var file taxonomyFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parse taxonomy file: %w", err)
	}

	if len(file.Kinds) == 0 {
		return fmt.Errorf("taxonomy file %s defines no kinds", path)
	}
	c.Taxonomy = file.Kinds

	if len(file.StageBands) > 0 {
		c.StageBands = file.StageBands
	}
	return nil
}

// Validate checks the configuration invariants. A failure here is a
// configuration error that must abort startup.
func (c *EngineConfig) Validate() error {
	if c.DecayRatePerHour < 0 {
		return fmt.Errorf("decay rate per hour must not be negative")
	}
	if c.HistoryCapacity < 1 {
		return fmt.Errorf("history capacity must be at least 1")
	}
	if c.ProductInterestCapacity < 1 {
		return fmt.Errorf("product interest capacity must be at least 1")
	}
	if c.HysteresisMargin < 0 {
		return fmt.Errorf("hysteresis margin must not be negative")
	}

	if len(c.StageBands) == 0 {
		return fmt.Errorf("stage bands are required")
	}
	if c.StageBands[0].LowerBound != 0 {
		return fmt.Errorf("first stage band must start at 0, got %d", c.StageBands[0].LowerBound)
	}
	if !sort.SliceIsSorted(c.StageBands, func(i, j int) bool {
		return c.StageBands[i].LowerBound < c.StageBands[j].LowerBound
	}) {
		return fmt.Errorf("stage bands must be ordered by ascending lower bound")
	}
	seen := make(map[string]struct{}, len(c.StageBands))
	for _, band := range c.StageBands {
		if band.Stage == "" {
			return fmt.Errorf("stage band at lower bound %d has no stage name", band.LowerBound)
		}
		if _, dup := seen[band.Stage]; dup {
			return fmt.Errorf("stage %q appears twice in the band table", band.Stage)
		}
		seen[band.Stage] = struct{}{}
		if band.LowerBound > 100 {
			return fmt.Errorf("stage %q lower bound %d exceeds the score range", band.Stage, band.LowerBound)
		}
	}

	if len(c.Taxonomy) == 0 {
		return fmt.Errorf("taxonomy is required")
	}
	for kind, spec := range c.Taxonomy {
		if strings.TrimSpace(kind) == "" {
			return fmt.Errorf("taxonomy contains an empty kind")
		}
		if strings.HasPrefix(kind, resolutionPrefix) {
			return fmt.Errorf("kind %q: the %q prefix is reserved for resolution events", kind, resolutionPrefix)
		}
		switch spec.Category {
		case CategorySignal, CategoryProductInterest:
			if spec.Weight <= 0 {
				return fmt.Errorf("kind %q (%s) requires a positive weight", kind, spec.Category)
			}
		case CategoryObjection:
			if spec.Penalty <= 0 {
				return fmt.Errorf("kind %q (objection) requires a positive penalty", kind)
			}
		case CategoryControl:
			// no scoring parameters
		default:
			return fmt.Errorf("kind %q has unknown category %q", kind, spec.Category)
		}
	}

	return nil
}

// spec returns the taxonomy entry for kind.
func (c *EngineConfig) spec(kind string) (KindSpec, bool) {
	s, ok := c.Taxonomy[kind]
	return s, ok
}
