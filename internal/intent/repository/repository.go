// Package repository persists conversation intent records. Typed sequences
// are encoded to the external JSONB schema at this boundary only; the core
// never sees serialized form.
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"wasales_backend/internal/intent/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// productInterestRow is the JSONB shape of one products_of_interest entry.
// The column is an object keyed by product id, matching the storage schema
// shared with the rest of the system.
type productInterestRow struct {
	Weight         int       `json:"weight"`
	LastObservedAt time.Time `json:"lastObservedAt"`
}

func (r *Repository) Get(ctx context.Context, conversationID string) (*domain.ConversationIntent, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT conversation_id, score, stage, signals, objections,
		       products_of_interest, recommended_action, history, updated_at
		FROM conversation_intents
		WHERE conversation_id = $1
	`, conversationID)

	return scanRecord(row)
}

func scanRecord(row pgx.Row) (*domain.ConversationIntent, error) {
	var (
		record         domain.ConversationIntent
		signalsJSON    []byte
		objectionsJSON []byte
		productsJSON   []byte
		historyJSON    []byte
	)

	err := row.Scan(
		&record.ConversationID,
		&record.Score,
		&record.Stage,
		&signalsJSON,
		&objectionsJSON,
		&productsJSON,
		&record.RecommendedAction,
		&historyJSON,
		&record.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	record.Signals = []domain.Signal{}
	if err := json.Unmarshal(signalsJSON, &record.Signals); err != nil {
		return nil, fmt.Errorf("decode signals: %w", err)
	}
	record.Objections = []domain.Objection{}
	if err := json.Unmarshal(objectionsJSON, &record.Objections); err != nil {
		return nil, fmt.Errorf("decode objections: %w", err)
	}
	record.History = []domain.IntentTransition{}
	if err := json.Unmarshal(historyJSON, &record.History); err != nil {
		return nil, fmt.Errorf("decode history: %w", err)
	}

	products := map[string]productInterestRow{}
	if err := json.Unmarshal(productsJSON, &products); err != nil {
		return nil, fmt.Errorf("decode products of interest: %w", err)
	}
	record.ProductsOfInterest = make(map[string]domain.ProductInterest, len(products))
	for id, p := range products {
		record.ProductsOfInterest[id] = domain.ProductInterest{
			Weight:         p.Weight,
			LastObservedAt: p.LastObservedAt,
		}
	}

	return &record, nil
}

// Upsert writes the full record guarded by a compare-and-swap on updated_at.
// The in-process lock in the service serializes turns within one binary; the
// CAS catches the API and the queue worker racing on the same row.
func (r *Repository) Upsert(ctx context.Context, record *domain.ConversationIntent, prevUpdatedAt time.Time) error {
	signalsJSON, err := json.Marshal(record.Signals)
	if err != nil {
		return fmt.Errorf("encode signals: %w", err)
	}
	objectionsJSON, err := json.Marshal(record.Objections)
	if err != nil {
		return fmt.Errorf("encode objections: %w", err)
	}
	historyJSON, err := json.Marshal(record.History)
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}

	products := make(map[string]productInterestRow, len(record.ProductsOfInterest))
	for id, p := range record.ProductsOfInterest {
		products[id] = productInterestRow{Weight: p.Weight, LastObservedAt: p.LastObservedAt}
	}
	productsJSON, err := json.Marshal(products)
	if err != nil {
		return fmt.Errorf("encode products of interest: %w", err)
	}

	tag, err := r.pool.Exec(ctx, `
		INSERT INTO conversation_intents (
			conversation_id, score, stage, signals, objections,
			products_of_interest, recommended_action, history, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (conversation_id) DO UPDATE SET
			score = EXCLUDED.score,
			stage = EXCLUDED.stage,
			signals = EXCLUDED.signals,
			objections = EXCLUDED.objections,
			products_of_interest = EXCLUDED.products_of_interest,
			recommended_action = EXCLUDED.recommended_action,
			history = EXCLUDED.history,
			updated_at = EXCLUDED.updated_at
		WHERE conversation_intents.updated_at = $10
	`,
		record.ConversationID,
		record.Score,
		record.Stage,
		signalsJSON,
		objectionsJSON,
		productsJSON,
		record.RecommendedAction,
		historyJSON,
		record.UpdatedAt,
		prevUpdatedAt,
	)
	if err != nil {
		return err
	}
	// Zero rows means the conflict branch matched an existing row whose
	// updated_at moved on (or, for a fresh record, that another writer
	// created the row first).
	if tag.RowsAffected() == 0 {
		return ErrStale
	}
	return nil
}

var _ Store = (*Repository)(nil)
