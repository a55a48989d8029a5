package domain

import (
	"strings"
	"time"
)

// RawSignalEvent is one classifier observation attached to an inbound
// conversation turn, exactly as delivered by the messaging layer.
type RawSignalEvent struct {
	Kind       string
	Strength   *float64
	ProductID  string
	ObservedAt time.Time
}

// InvalidSignal reports a raw event that was rejected during normalization.
// Invalid entries are dropped from the turn, never fatal.
type InvalidSignal struct {
	Kind   string
	Reason string
}

// NormalizedTurn is the validated, deduplicated view of one turn.
type NormalizedTurn struct {
	Signals          []Signal
	Objections       []Objection
	ProductInterests []ProductObservation
	Resolutions      []string
	Handover         bool
	Invalid          []InvalidSignal
}

const defaultStrength = 0.5

// Normalize validates and deduplicates one turn's raw events. Signals of the
// same kind keep the maximum strength; strengths are clamped to [0,1] and
// default to 0.5 when absent. Unknown kinds are reported in Invalid. The
// transformation is pure.
func (e *Engine) Normalize(raw []RawSignalEvent) NormalizedTurn {
	turn := NormalizedTurn{}
	signalIndex := make(map[string]int)
	resolvedKinds := make(map[string]struct{})

	for _, event := range raw {
		kind := strings.TrimSpace(event.Kind)
		if kind == "" {
			turn.Invalid = append(turn.Invalid, InvalidSignal{Kind: event.Kind, Reason: "empty kind"})
			continue
		}

		if target, ok := strings.CutPrefix(kind, resolutionPrefix); ok {
			spec, known := e.cfg.spec(target)
			if !known || spec.Category != CategoryObjection {
				turn.Invalid = append(turn.Invalid, InvalidSignal{Kind: kind, Reason: "resolution targets unknown objection kind"})
				continue
			}
			if _, dup := resolvedKinds[target]; !dup {
				resolvedKinds[target] = struct{}{}
				turn.Resolutions = append(turn.Resolutions, target)
			}
			continue
		}

		spec, known := e.cfg.spec(kind)
		if !known {
			turn.Invalid = append(turn.Invalid, InvalidSignal{Kind: kind, Reason: "kind not in taxonomy"})
			continue
		}

		switch spec.Category {
		case CategorySignal:
			strength := clampStrength(event.Strength)
			if i, dup := signalIndex[kind]; dup {
				if strength > turn.Signals[i].Strength {
					turn.Signals[i].Strength = strength
				}
				continue
			}
			signalIndex[kind] = len(turn.Signals)
			turn.Signals = append(turn.Signals, Signal{
				Kind:       kind,
				Strength:   strength,
				ObservedAt: event.ObservedAt,
			})

		case CategoryObjection:
			turn.Objections = append(turn.Objections, Objection{
				Kind:       kind,
				ObservedAt: event.ObservedAt,
			})

		case CategoryProductInterest:
			if strings.TrimSpace(event.ProductID) == "" {
				turn.Invalid = append(turn.Invalid, InvalidSignal{Kind: kind, Reason: "product interest without product id"})
				continue
			}
			strength := clampStrength(event.Strength)
			turn.ProductInterests = append(turn.ProductInterests, ProductObservation{
				ProductID:  event.ProductID,
				Weight:     roundHalfUp(float64(spec.Weight) * strength),
				ObservedAt: event.ObservedAt,
			})

		case CategoryControl:
			if kind == KindRequestedHuman {
				turn.Handover = true
			}
		}
	}

	// An objection raised and resolved within the same turn still costs a
	// reduced penalty, so mark it resolved rather than dropping it.
	if len(resolvedKinds) > 0 {
		for i := range turn.Objections {
			if _, ok := resolvedKinds[turn.Objections[i].Kind]; ok {
				turn.Objections[i].Resolved = true
			}
		}
	}

	return turn
}

func clampStrength(strength *float64) float64 {
	if strength == nil {
		return defaultStrength
	}
	s := *strength
	if s < 0 {
		return 0
	}
	if s > 1 {
		return 1
	}
	return s
}
