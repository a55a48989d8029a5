package domain

import (
	"math"
	"time"
)

// resolvedObjectionFactor discounts resolved objections: an addressed
// concern still cost momentum, but far less than an open one.
const resolvedObjectionFactor = 0.3

// Score computes the new 0..100 intent score from the previous score, the
// normalized turn, and the silence since the last update. Decay applies
// first, then signal weights and objection penalties; the sum is clamped to
// [0,100] and rounded half-up. Identical inputs always yield the identical
// result; only the integer outcome is ever persisted.
func (e *Engine) Score(previous int, turn NormalizedTurn, elapsed time.Duration) int {
	decayed := previous - decayPoints(e.cfg.DecayRatePerHour, elapsed)
	if decayed < 0 {
		decayed = 0
	}

	delta := 0.0
	for _, signal := range turn.Signals {
		if spec, ok := e.cfg.spec(signal.Kind); ok {
			delta += float64(spec.Weight) * signal.Strength
		}
	}
	for _, objection := range turn.Objections {
		spec, ok := e.cfg.spec(objection.Kind)
		if !ok {
			continue
		}
		factor := 1.0
		if objection.Resolved {
			factor = resolvedObjectionFactor
		}
		delta -= float64(spec.Penalty) * factor
	}

	result := roundHalfUp(float64(decayed) + delta)
	if result < 0 {
		return 0
	}
	if result > 100 {
		return 100
	}
	return result
}

// decayPoints is the whole-point decay for a silence of the given length:
// floor(ratePerHour * elapsedHours), never negative.
func decayPoints(ratePerHour float64, elapsed time.Duration) int {
	if ratePerHour <= 0 || elapsed <= 0 {
		return 0
	}
	return int(math.Floor(ratePerHour * elapsed.Hours()))
}

// roundHalfUp rounds to the nearest integer with ties rounding up.
func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}

// TurnCause names the dominant contributor of a turn for the audit trail:
// the heaviest signal, else the costliest open objection, else decay.
func (e *Engine) TurnCause(turn NormalizedTurn) string {
	bestKind := ""
	bestContribution := 0.0
	for _, signal := range turn.Signals {
		if spec, ok := e.cfg.spec(signal.Kind); ok {
			contribution := float64(spec.Weight) * signal.Strength
			if contribution > bestContribution {
				bestContribution = contribution
				bestKind = signal.Kind
			}
		}
	}
	if bestKind != "" {
		return bestKind
	}

	bestPenalty := 0
	for _, objection := range turn.Objections {
		if spec, ok := e.cfg.spec(objection.Kind); ok && spec.Penalty > bestPenalty {
			bestPenalty = spec.Penalty
			bestKind = objection.Kind
		}
	}
	if bestKind != "" {
		return bestKind
	}

	return "decay"
}
