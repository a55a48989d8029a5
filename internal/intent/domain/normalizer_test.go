package domain

import (
	"testing"
	"time"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	engine, err := NewEngine(DefaultEngineConfig())
	if err != nil {
		t.Fatalf("failed to build engine: %v", err)
	}
	return engine
}

func strengthPtr(v float64) *float64 { return &v }

func TestNormalize_DeduplicatesSameKindKeepingMaxStrength(t *testing.T) {
	engine := newTestEngine(t)
	now := time.Now()

	turn := engine.Normalize([]RawSignalEvent{
		{Kind: "price_inquiry", Strength: strengthPtr(0.4), ObservedAt: now},
		{Kind: "price_inquiry", Strength: strengthPtr(0.9), ObservedAt: now},
		{Kind: "price_inquiry", Strength: strengthPtr(0.2), ObservedAt: now},
	})

	if len(turn.Signals) != 1 {
		t.Fatalf("expected 1 deduplicated signal, got %d", len(turn.Signals))
	}
	if turn.Signals[0].Strength != 0.9 {
		t.Fatalf("expected max strength 0.9, got %v", turn.Signals[0].Strength)
	}
}

func TestNormalize_DefaultsAndClampsStrength(t *testing.T) {
	engine := newTestEngine(t)
	now := time.Now()

	turn := engine.Normalize([]RawSignalEvent{
		{Kind: "price_inquiry", ObservedAt: now},
		{Kind: "asked_for_link", Strength: strengthPtr(3.5), ObservedAt: now},
		{Kind: "asked_for_demo", Strength: strengthPtr(-1), ObservedAt: now},
	})

	if len(turn.Signals) != 3 {
		t.Fatalf("expected 3 signals, got %d", len(turn.Signals))
	}
	if turn.Signals[0].Strength != 0.5 {
		t.Fatalf("expected default strength 0.5, got %v", turn.Signals[0].Strength)
	}
	if turn.Signals[1].Strength != 1 {
		t.Fatalf("expected strength clamped to 1, got %v", turn.Signals[1].Strength)
	}
	if turn.Signals[2].Strength != 0 {
		t.Fatalf("expected strength clamped to 0, got %v", turn.Signals[2].Strength)
	}
}

func TestNormalize_RejectsUnknownKinds(t *testing.T) {
	engine := newTestEngine(t)

	turn := engine.Normalize([]RawSignalEvent{
		{Kind: "definitely_not_in_taxonomy", ObservedAt: time.Now()},
		{Kind: "price_inquiry", ObservedAt: time.Now()},
	})

	if len(turn.Invalid) != 1 {
		t.Fatalf("expected 1 invalid entry, got %d", len(turn.Invalid))
	}
	if turn.Invalid[0].Kind != "definitely_not_in_taxonomy" {
		t.Fatalf("unexpected invalid kind %q", turn.Invalid[0].Kind)
	}
	if len(turn.Signals) != 1 {
		t.Fatalf("valid signal should survive invalid neighbors, got %d signals", len(turn.Signals))
	}
}

func TestNormalize_ProductInterestRequiresProductID(t *testing.T) {
	engine := newTestEngine(t)
	now := time.Now()

	turn := engine.Normalize([]RawSignalEvent{
		{Kind: "browsed_product", ObservedAt: now},
		{Kind: "browsed_product", ProductID: "prod-1", Strength: strengthPtr(1), ObservedAt: now},
	})

	if len(turn.Invalid) != 1 {
		t.Fatalf("expected 1 invalid entry, got %d", len(turn.Invalid))
	}
	if len(turn.ProductInterests) != 1 {
		t.Fatalf("expected 1 product observation, got %d", len(turn.ProductInterests))
	}
	// browsed_product weight 6 at full strength
	if turn.ProductInterests[0].Weight != 6 {
		t.Fatalf("expected observation weight 6, got %d", turn.ProductInterests[0].Weight)
	}
}

func TestNormalize_ResolutionEvents(t *testing.T) {
	engine := newTestEngine(t)
	now := time.Now()

	turn := engine.Normalize([]RawSignalEvent{
		{Kind: "objection_resolved:too_expensive", ObservedAt: now},
		{Kind: "objection_resolved:no_such_objection", ObservedAt: now},
	})

	if len(turn.Resolutions) != 1 || turn.Resolutions[0] != "too_expensive" {
		t.Fatalf("expected resolution of too_expensive, got %v", turn.Resolutions)
	}
	if len(turn.Invalid) != 1 {
		t.Fatalf("resolution of unknown objection should be invalid, got %d invalid", len(turn.Invalid))
	}
}

func TestNormalize_SameTurnResolutionMarksObjectionResolved(t *testing.T) {
	engine := newTestEngine(t)
	now := time.Now()

	turn := engine.Normalize([]RawSignalEvent{
		{Kind: "too_expensive", ObservedAt: now},
		{Kind: "objection_resolved:too_expensive", ObservedAt: now},
	})

	if len(turn.Objections) != 1 {
		t.Fatalf("expected 1 objection, got %d", len(turn.Objections))
	}
	if !turn.Objections[0].Resolved {
		t.Fatalf("objection resolved within the same turn should be marked resolved")
	}
}

func TestNormalize_HandoverControlSignal(t *testing.T) {
	engine := newTestEngine(t)

	turn := engine.Normalize([]RawSignalEvent{
		{Kind: KindRequestedHuman, ObservedAt: time.Now()},
	})

	if !turn.Handover {
		t.Fatalf("expected handover flag set")
	}
	if len(turn.Signals) != 0 {
		t.Fatalf("control events must not score as signals, got %d", len(turn.Signals))
	}
}
