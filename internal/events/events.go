package events

// IntentUpdated is published after every successfully persisted turn.
type IntentUpdated struct {
	BaseEvent
	ConversationID    string
	Score             int
	Stage             string
	RecommendedAction string
}

// EventName returns the unique event identifier.
func (IntentUpdated) EventName() string { return "intent.updated" }

// RecommendedActionChanged is published when a turn moved the recommended
// next action, for downstream routing such as agent alerting.
type RecommendedActionChanged struct {
	BaseEvent
	ConversationID string
	PreviousAction string
	NewAction      string
	Score          int
	Stage          string
}

// EventName returns the unique event identifier.
func (RecommendedActionChanged) EventName() string { return "intent.recommended_action_changed" }
