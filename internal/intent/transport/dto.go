// Package transport defines the request/response DTOs of the intent module.
package transport

import (
	"sort"
	"time"

	"wasales_backend/internal/intent/domain"
)

// RawSignalEventRequest is one classifier observation in an ApplyTurn call.
type RawSignalEventRequest struct {
	Kind       string     `json:"kind" binding:"required"`
	Strength   *float64   `json:"strength" binding:"omitempty,min=0,max=1"`
	ProductID  string     `json:"productId"`
	ObservedAt *time.Time `json:"observedAt"`
}

// ApplyTurnRequest carries the raw events of one inbound conversation turn.
type ApplyTurnRequest struct {
	Events []RawSignalEventRequest `json:"events" binding:"required,dive"`
}

// ToDomain converts the request events, defaulting a missing timestamp to
// the supplied receive time.
func (r ApplyTurnRequest) ToDomain(receivedAt time.Time) []domain.RawSignalEvent {
	events := make([]domain.RawSignalEvent, 0, len(r.Events))
	for _, e := range r.Events {
		observedAt := receivedAt
		if e.ObservedAt != nil && !e.ObservedAt.IsZero() {
			observedAt = *e.ObservedAt
		}
		events = append(events, domain.RawSignalEvent{
			Kind:       e.Kind,
			Strength:   e.Strength,
			ProductID:  e.ProductID,
			ObservedAt: observedAt,
		})
	}
	return events
}

// SignalResponse mirrors domain.Signal on the wire.
type SignalResponse struct {
	Kind       string    `json:"kind"`
	Strength   float64   `json:"strength"`
	ObservedAt time.Time `json:"observedAt"`
}

// ObjectionResponse mirrors domain.Objection on the wire.
type ObjectionResponse struct {
	Kind       string    `json:"kind"`
	ObservedAt time.Time `json:"observedAt"`
	Resolved   bool      `json:"resolved"`
}

// ProductInterestResponse is one tracked product, decorated with catalog
// data when available.
type ProductInterestResponse struct {
	ProductID      string    `json:"productId"`
	Name           string    `json:"name,omitempty"`
	Weight         int       `json:"weight"`
	LastObservedAt time.Time `json:"lastObservedAt"`
}

// TransitionResponse mirrors domain.IntentTransition on the wire.
type TransitionResponse struct {
	Timestamp     time.Time `json:"timestamp"`
	PreviousScore int       `json:"previousScore"`
	NewScore      int       `json:"newScore"`
	PreviousStage string    `json:"previousStage"`
	NewStage      string    `json:"newStage"`
	Cause         string    `json:"cause"`
}

// ConversationIntentResponse is the full intent record.
type ConversationIntentResponse struct {
	ConversationID     string                    `json:"conversationId"`
	Score              int                       `json:"score"`
	Stage              string                    `json:"stage"`
	Signals            []SignalResponse          `json:"signals"`
	Objections         []ObjectionResponse       `json:"objections"`
	ProductsOfInterest []ProductInterestResponse `json:"productsOfInterest"`
	RecommendedAction  string                    `json:"recommendedAction"`
	UpdatedAt          time.Time                 `json:"updatedAt"`
	History            []TransitionResponse      `json:"history"`
}

// FromDomain maps a record to its response shape. productNames may be nil.
func FromDomain(record *domain.ConversationIntent, productNames map[string]string) ConversationIntentResponse {
	resp := ConversationIntentResponse{
		ConversationID:     record.ConversationID,
		Score:              record.Score,
		Stage:              record.Stage,
		Signals:            make([]SignalResponse, 0, len(record.Signals)),
		Objections:         make([]ObjectionResponse, 0, len(record.Objections)),
		ProductsOfInterest: make([]ProductInterestResponse, 0, len(record.ProductsOfInterest)),
		RecommendedAction:  record.RecommendedAction,
		UpdatedAt:          record.UpdatedAt,
		History:            make([]TransitionResponse, 0, len(record.History)),
	}

	for _, s := range record.Signals {
		resp.Signals = append(resp.Signals, SignalResponse(s))
	}
	for _, o := range record.Objections {
		resp.Objections = append(resp.Objections, ObjectionResponse(o))
	}
	for id, p := range record.ProductsOfInterest {
		resp.ProductsOfInterest = append(resp.ProductsOfInterest, ProductInterestResponse{
			ProductID:      id,
			Name:           productNames[id],
			Weight:         p.Weight,
			LastObservedAt: p.LastObservedAt,
		})
	}
	for _, t := range record.History {
		resp.History = append(resp.History, TransitionResponse(t))
	}

	// Map iteration order is random; present strongest interest first.
	sort.Slice(resp.ProductsOfInterest, func(i, j int) bool {
		if resp.ProductsOfInterest[i].Weight != resp.ProductsOfInterest[j].Weight {
			return resp.ProductsOfInterest[i].Weight > resp.ProductsOfInterest[j].Weight
		}
		return resp.ProductsOfInterest[i].ProductID < resp.ProductsOfInterest[j].ProductID
	})

	return resp
}
