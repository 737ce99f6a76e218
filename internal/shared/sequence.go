package shared

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Sequence names used for document numbering.
const (
	SeqLorryReceipt    = "lorry_receipt"
	SeqInvoice         = "invoice"
	SeqPayment         = "payment"
	SeqTruckHiringNote = "truck_hiring_note"
)

// SequenceStore mints monotonically increasing document numbers from the
// sequence_counters table. Each call is a single atomic round trip.
type SequenceStore struct {
	pool *pgxpool.Pool
}

// NewSequenceStore returns a SequenceStore backed by the given pool.
func NewSequenceStore(pool *pgxpool.Pool) *SequenceStore {
	return &SequenceStore{pool: pool}
}

// Next increments and returns the counter identified by name. A missing
// counter row is ErrSequenceMissing, never a silent fallback value.
func (s *SequenceStore) Next(ctx context.Context, name string) (int64, error) {
	var value int64
	err := s.pool.QueryRow(ctx,
		`UPDATE sequence_counters SET value = value + 1, updated_at = NOW() WHERE name = $1 RETURNING value`,
		name,
	).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, fmt.Errorf("%w: %s", ErrSequenceMissing, name)
		}
		return 0, fmt.Errorf("shared: next sequence %s: %w", name, err)
	}
	return value, nil
}

// FormatNumber renders a document number like INV-2025-00042.
func FormatNumber(prefix string, year int, value int64) string {
	return fmt.Sprintf("%s-%d-%05d", prefix, year, value)
}
