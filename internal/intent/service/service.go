// Package service implements the conversation intent store: the single
// entry point through which conversation turns mutate intent records.
package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"wasales_backend/internal/events"
	"wasales_backend/internal/intent/domain"
	"wasales_backend/internal/intent/repository"
	"wasales_backend/platform/apperr"
	"wasales_backend/platform/logger"
)

// conversationLock serializes turns for one conversation. The inFlight flag
// backs the at-most-one-in-flight invariant check; with correct locking it
// can never trip.
type conversationLock struct {
	mu       sync.Mutex
	inFlight atomic.Bool
}

// Service owns every ConversationIntent aggregate and serializes mutation
// per conversation. Within one process a keyed mutex guarantees at most one
// in-flight turn per conversation; across processes (the API and the queue
// worker both write this table) the repository's compare-and-swap on
// updated_at rejects the losing turn. Records are loaded fresh from the
// store on each turn and only the durable write makes a turn's outcome
// observable; a failed persist leaves no trace.
type Service struct {
	repo   repository.Store
	engine *domain.Engine
	bus    events.Bus
	log    *logger.Logger
	now    func() time.Time

	locks sync.Map // conversationID -> *conversationLock
}

// New creates the intent service.
func New(repo repository.Store, engine *domain.Engine, bus events.Bus, log *logger.Logger) *Service {
	return &Service{
		repo:   repo,
		engine: engine,
		bus:    bus,
		log:    log,
		now:    time.Now,
	}
}

// WithClock replaces the service clock. Test hook.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) lockFor(conversationID string) *conversationLock {
	if l, ok := s.locks.Load(conversationID); ok {
		return l.(*conversationLock)
	}
	l, _ := s.locks.LoadOrStore(conversationID, &conversationLock{})
	return l.(*conversationLock)
}

// ApplyTurn ingests one inbound conversation turn and returns the updated
// record. The whole transition is applied as a single logical unit of work:
// normalize, decay + score, classify, merge product interest, resolve
// objections, recommend, record history, persist. Invalid events are dropped
// and logged; persistence failures surface to the caller with no state
// applied, and the engine performs no implicit retries.
func (s *Service) ApplyTurn(ctx context.Context, conversationID string, rawEvents []domain.RawSignalEvent) (*domain.ConversationIntent, error) {
	if conversationID == "" {
		return nil, apperr.Validation("conversation id is required")
	}

	lock := s.lockFor(conversationID)
	lock.mu.Lock()
	defer lock.mu.Unlock()

	if !lock.inFlight.CompareAndSwap(false, true) {
		// Unreachable while the mutex is correct. If it ever fires, the
		// conversation needs manual reconciliation.
		s.log.Error("concurrency violation: overlapping turns for one conversation",
			"conversation_id", conversationID)
		return nil, apperr.Internal("concurrent turn in flight for conversation").WithOp("intent.ApplyTurn")
	}
	defer lock.inFlight.Store(false)

	now := s.now()

	record, err := s.repo.Get(ctx, conversationID)
	elapsed := time.Duration(0)
	prevUpdatedAt := time.Time{}
	switch {
	case err == nil:
		prevUpdatedAt = record.UpdatedAt
		elapsed = now.Sub(record.UpdatedAt)
		if elapsed < 0 {
			elapsed = 0
		}
	case errors.Is(err, repository.ErrNotFound):
		record = domain.NewConversationIntent(conversationID, now)
	default:
		s.log.DatabaseError("intent.Get", err)
		return nil, apperr.Wrap(apperr.KindUnavailable, "failed to load conversation intent", err)
	}

	turn := s.engine.Normalize(rawEvents)
	for _, invalid := range turn.Invalid {
		s.log.InvalidSignalDropped(conversationID, invalid.Kind, invalid.Reason)
	}

	cfg := s.engine.Config()
	previousScore := record.Score
	previousStage := record.Stage
	previousAction := record.RecommendedAction

	newScore := s.engine.Score(previousScore, turn, elapsed)
	newStage := s.engine.Classify(newScore, previousStage)

	record.MergeProductInterests(turn.ProductInterests, elapsed, cfg.DecayRatePerHour, cfg.ProductInterestCapacity)
	record.AppendSignals(turn.Signals)
	record.AppendObjections(turn.Objections)
	record.ResolveObjections(turn.Resolutions)

	record.Score = newScore
	record.Stage = newStage
	record.RecommendedAction = s.engine.Recommend(newStage, record.HasUnresolvedObjection(), turn.Handover)

	if newScore != previousScore || newStage != previousStage {
		record.RecordTransition(domain.IntentTransition{
			Timestamp:     now,
			PreviousScore: previousScore,
			NewScore:      newScore,
			PreviousStage: previousStage,
			NewStage:      newStage,
			Cause:         s.engine.TurnCause(turn),
		}, cfg.HistoryCapacity)
	}
	record.UpdatedAt = now

	if err := s.repo.Upsert(ctx, record, prevUpdatedAt); err != nil {
		if errors.Is(err, repository.ErrStale) {
			// Another writer (the API and the queue worker share this table)
			// applied a turn after our read. Nothing was written; the caller
			// retries against the fresh row.
			s.log.Warn("concurrent turn from another writer, turn not applied",
				"conversation_id", conversationID)
			return nil, apperr.Conflict("conversation intent was updated concurrently")
		}
		s.log.DatabaseError("intent.Upsert", err)
		return nil, apperr.Wrap(apperr.KindUnavailable, "failed to persist conversation intent", err)
	}

	s.log.TurnApplied(conversationID, previousScore, newScore, previousStage, newStage, record.RecommendedAction)

	if s.bus != nil {
		s.bus.Publish(ctx, events.IntentUpdated{
			BaseEvent:         events.NewBaseEvent(),
			ConversationID:    conversationID,
			Score:             newScore,
			Stage:             newStage,
			RecommendedAction: record.RecommendedAction,
		})
		if record.RecommendedAction != previousAction {
			s.bus.Publish(ctx, events.RecommendedActionChanged{
				BaseEvent:      events.NewBaseEvent(),
				ConversationID: conversationID,
				PreviousAction: previousAction,
				NewAction:      record.RecommendedAction,
				Score:          newScore,
				Stage:          newStage,
			})
		}
	}

	return record, nil
}

// Get fetches the current intent record for a conversation.
func (s *Service) Get(ctx context.Context, conversationID string) (*domain.ConversationIntent, error) {
	record, err := s.repo.Get(ctx, conversationID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.NotFound("no intent record for conversation")
	}
	if err != nil {
		s.log.DatabaseError("intent.Get", err)
		return nil, apperr.Wrap(apperr.KindUnavailable, "failed to load conversation intent", err)
	}
	return record, nil
}

// History returns the bounded transition trail for a conversation, oldest
// entry first.
func (s *Service) History(ctx context.Context, conversationID string) ([]domain.IntentTransition, error) {
	record, err := s.Get(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	return record.History, nil
}
