// Package domain provides the core purchase-intent rules for the intent
// bounded context. Everything in this package is pure: no I/O, no clocks,
// no logging. The service layer owns orchestration and side effects.
package domain

import "time"

const (
	StageCold       = "cold"
	StageCurious    = "curious"
	StageInterested = "interested"
	StageHot        = "hot"
	StageClosing    = "closing"
)

var knownStages = map[string]struct{}{
	StageCold:       {},
	StageCurious:    {},
	StageInterested: {},
	StageHot:        {},
	StageClosing:    {},
}

// IsKnownStage reports whether stage is one of the funnel stages.
func IsKnownStage(stage string) bool {
	_, ok := knownStages[stage]
	return ok
}

// Recommended actions, in the recommender's priority vocabulary.
// ActionNone is the empty action for cold conversations.
const (
	ActionNone            = ""
	ActionHandover        = "handover"
	ActionHandleObjection = "handle_objection"
	ActionCloseSale       = "close_sale"
	ActionPresentOffer    = "present_offer"
	ActionEducate         = "educate"
	ActionNurture         = "nurture"
)

// Signal is a detected behavioral indicator of buying interest.
type Signal struct {
	Kind       string    `json:"kind"`
	Strength   float64   `json:"strength"`
	ObservedAt time.Time `json:"observedAt"`
}

// Objection is a detected hesitation or concern raised by the customer.
type Objection struct {
	Kind       string    `json:"kind"`
	ObservedAt time.Time `json:"observedAt"`
	Resolved   bool      `json:"resolved"`
}

// ProductInterest tracks how strongly a conversation gravitates toward one
// product. Weight lives on the same 0..100 scale as the intent score.
type ProductInterest struct {
	Weight         int       `json:"weight"`
	LastObservedAt time.Time `json:"lastObservedAt"`
}

// ProductObservation is one product-interest sighting within a turn.
type ProductObservation struct {
	ProductID  string
	Weight     int
	ObservedAt time.Time
}

// IntentTransition is one audit-trail entry recording how score and stage
// moved on a single turn.
type IntentTransition struct {
	Timestamp     time.Time `json:"timestamp"`
	PreviousScore int       `json:"previousScore"`
	NewScore      int       `json:"newScore"`
	PreviousStage string    `json:"previousStage"`
	NewStage      string    `json:"newStage"`
	Cause         string    `json:"cause"`
}

// Retained-event caps. Signals and objections are unbounded in principle;
// these caps bound the persisted row. History is bounded by configuration.
const (
	maxRetainedSignals    = 200
	maxRetainedObjections = 100
)

// ConversationIntent is the per-conversation aggregate. All mutation goes
// through the intent service's ApplyTurn; nothing else holds a mutable
// reference to a live record.
type ConversationIntent struct {
	ConversationID     string
	Score              int
	Stage              string
	Signals            []Signal
	Objections         []Objection
	ProductsOfInterest map[string]ProductInterest
	RecommendedAction  string
	UpdatedAt          time.Time
	History            []IntentTransition
}

// NewConversationIntent creates the lazily-initialized record for a
// conversation's first turn.
func NewConversationIntent(conversationID string, now time.Time) *ConversationIntent {
	return &ConversationIntent{
		ConversationID:     conversationID,
		Score:              0,
		Stage:              StageCold,
		Signals:            []Signal{},
		Objections:         []Objection{},
		ProductsOfInterest: map[string]ProductInterest{},
		RecommendedAction:  ActionNone,
		UpdatedAt:          now,
		History:            []IntentTransition{},
	}
}

// AppendSignals records the turn's signals in detection order, trimming the
// oldest entries beyond the retention cap.
func (ci *ConversationIntent) AppendSignals(signals []Signal) {
	ci.Signals = append(ci.Signals, signals...)
	if overflow := len(ci.Signals) - maxRetainedSignals; overflow > 0 {
		ci.Signals = append([]Signal{}, ci.Signals[overflow:]...)
	}
}

// AppendObjections records newly raised objections, trimming the oldest
// entries beyond the retention cap.
func (ci *ConversationIntent) AppendObjections(objections []Objection) {
	ci.Objections = append(ci.Objections, objections...)
	if overflow := len(ci.Objections) - maxRetainedObjections; overflow > 0 {
		ci.Objections = append([]Objection{}, ci.Objections[overflow:]...)
	}
}

// ResolveObjections marks every retained objection of the given kinds
// resolved. Resolving a kind that was never raised is a no-op.
func (ci *ConversationIntent) ResolveObjections(kinds []string) {
	if len(kinds) == 0 {
		return
	}
	resolved := make(map[string]struct{}, len(kinds))
	for _, kind := range kinds {
		resolved[kind] = struct{}{}
	}
	for i := range ci.Objections {
		if _, ok := resolved[ci.Objections[i].Kind]; ok {
			ci.Objections[i].Resolved = true
		}
	}
}

// HasUnresolvedObjection reports whether any retained objection is open.
func (ci *ConversationIntent) HasUnresolvedObjection() bool {
	for _, o := range ci.Objections {
		if !o.Resolved {
			return true
		}
	}
	return false
}

// MergeProductInterests applies the turn's product observations. Entries
// without an observation this turn decay first (same rate as the score,
// entries reaching 0 are dropped); observed entries take
// max(existing, observed) so one sighting never lowers interest. When the
// map exceeds capacity, the least-recently-observed entries are evicted.
func (ci *ConversationIntent) MergeProductInterests(observations []ProductObservation, elapsed time.Duration, decayRatePerHour float64, capacity int) {
	observed := make(map[string]struct{}, len(observations))
	for _, obs := range observations {
		observed[obs.ProductID] = struct{}{}
	}

	decay := decayPoints(decayRatePerHour, elapsed)
	for id, interest := range ci.ProductsOfInterest {
		if _, ok := observed[id]; ok {
			continue
		}
		interest.Weight -= decay
		if interest.Weight <= 0 {
			delete(ci.ProductsOfInterest, id)
			continue
		}
		ci.ProductsOfInterest[id] = interest
	}

	for _, obs := range observations {
		existing, ok := ci.ProductsOfInterest[obs.ProductID]
		weight := obs.Weight
		if ok && existing.Weight > weight {
			weight = existing.Weight
		}
		if weight > 100 {
			weight = 100
		}
		ci.ProductsOfInterest[obs.ProductID] = ProductInterest{
			Weight:         weight,
			LastObservedAt: obs.ObservedAt,
		}
	}

	ci.evictProductsBeyond(capacity)
}

func (ci *ConversationIntent) evictProductsBeyond(capacity int) {
	if capacity < 1 {
		return
	}
	for len(ci.ProductsOfInterest) > capacity {
		oldestID := ""
		var oldestAt time.Time
		for id, interest := range ci.ProductsOfInterest {
			if oldestID == "" || interest.LastObservedAt.Before(oldestAt) {
				oldestID = id
				oldestAt = interest.LastObservedAt
			}
		}
		delete(ci.ProductsOfInterest, oldestID)
	}
}

// RecordTransition appends one history entry and evicts the oldest entries
// beyond capacity (FIFO).
func (ci *ConversationIntent) RecordTransition(t IntentTransition, capacity int) {
	ci.History = append(ci.History, t)
	if capacity > 0 && len(ci.History) > capacity {
		ci.History = append([]IntentTransition{}, ci.History[len(ci.History)-capacity:]...)
	}
}
