package thn

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/freightbox-tms/freightbox/internal/payments"
	"github.com/freightbox-tms/freightbox/internal/shared"
)

type memoryTHNRepo struct {
	notes  map[int64]*TruckHiringNote
	nextID int64
}

func newMemoryTHNRepo() *memoryTHNRepo {
	return &memoryTHNRepo{notes: make(map[int64]*TruckHiringNote)}
}

func (r *memoryTHNRepo) Get(ctx context.Context, id int64) (*TruckHiringNote, error) {
	note, ok := r.notes[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *note
	return &cp, nil
}

func (r *memoryTHNRepo) List(ctx context.Context, req ListTHNRequest) ([]TruckHiringNote, int, error) {
	all, _ := r.ListAll(ctx)
	return all, len(all), nil
}

func (r *memoryTHNRepo) ListAll(ctx context.Context) ([]TruckHiringNote, error) {
	var out []TruckHiringNote
	for _, note := range r.notes {
		out = append(out, *note)
	}
	return out, nil
}

func (r *memoryTHNRepo) Create(ctx context.Context, note TruckHiringNote) (int64, error) {
	r.nextID++
	note.ID = r.nextID
	r.notes[note.ID] = &note
	return note.ID, nil
}

func (r *memoryTHNRepo) Update(ctx context.Context, note TruckHiringNote) error {
	stored, ok := r.notes[note.ID]
	if !ok {
		return ErrNotFound
	}
	note.PaidAmount = stored.PaidAmount
	note.BalanceAmount = stored.BalanceAmount
	note.Status = stored.Status
	r.notes[note.ID] = &note
	return nil
}

func (r *memoryTHNRepo) UpdateComputedFields(ctx context.Context, id int64, paid, balance float64, status shared.SettlementStatus) error {
	note, ok := r.notes[id]
	if !ok {
		return ErrNotFound
	}
	note.PaidAmount = paid
	note.BalanceAmount = balance
	note.Status = status
	return nil
}

func (r *memoryTHNRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := r.notes[id]; !ok {
		return ErrNotFound
	}
	delete(r.notes, id)
	return nil
}

// memoryAdvanceBook mirrors advances into an in-memory payment list the way
// the payments service does against Postgres.
type memoryAdvanceBook struct {
	payments map[int64][]payments.Payment
	nextID   int64
	fail     bool
}

func newMemoryAdvanceBook() *memoryAdvanceBook {
	return &memoryAdvanceBook{payments: make(map[int64][]payments.Payment)}
}

func (b *memoryAdvanceBook) UpsertTHNAdvance(ctx context.Context, thnID int64, thnNumber string, amount float64, date time.Time) error {
	if b.fail {
		return context.DeadlineExceeded
	}
	ref := payments.AdvanceReference(thnNumber)
	list := b.payments[thnID]
	for i, p := range list {
		if p.IsSynthesizedAdvance() {
			if amount <= 0 {
				b.payments[thnID] = append(list[:i], list[i+1:]...)
				return nil
			}
			list[i].Amount = amount
			list[i].Date = date
			return nil
		}
	}
	if amount <= 0 {
		return nil
	}
	b.nextID++
	b.payments[thnID] = append(list, payments.Payment{
		ID:                b.nextID,
		Date:              date,
		Type:              payments.TypeAdvance,
		Mode:              payments.ModeCash,
		Amount:            amount,
		TruckHiringNoteID: &thnID,
		Reference:         &ref,
	})
	return nil
}

func (b *memoryAdvanceBook) ListByTHN(ctx context.Context, thnID int64) ([]payments.Payment, error) {
	return b.payments[thnID], nil
}

// addManualAdvance books an operator-entered advance carrying its own
// reference, as POST /payments would.
func (b *memoryAdvanceBook) addManualAdvance(thnID int64, amount float64, reference string) {
	b.nextID++
	b.payments[thnID] = append(b.payments[thnID], payments.Payment{
		ID:                b.nextID,
		Date:              time.Now(),
		Type:              payments.TypeAdvance,
		Mode:              payments.ModeCheque,
		Amount:            amount,
		TruckHiringNoteID: &thnID,
		Reference:         &reference,
	})
}

func (b *memoryAdvanceBook) addReceipt(thnID int64, amount float64, date time.Time) {
	b.nextID++
	b.payments[thnID] = append(b.payments[thnID], payments.Payment{
		ID:                b.nextID,
		Date:              date,
		Type:              payments.TypePayment,
		Mode:              payments.ModeNEFT,
		Amount:            amount,
		TruckHiringNoteID: &thnID,
	})
}

type thnSequencer struct{ n int64 }

func (s *thnSequencer) Next(ctx context.Context, name string) (int64, error) {
	s.n++
	return s.n, nil
}

func newTHNService() (*Service, *memoryTHNRepo, *memoryAdvanceBook) {
	repo := newMemoryTHNRepo()
	book := newMemoryAdvanceBook()
	svc := NewService(slog.Default(), repo, book, book, &thnSequencer{})
	return svc, repo, book
}

func createNote(t *testing.T, svc *Service, freight, charges, advance float64) *TruckHiringNote {
	t.Helper()
	note, err := svc.Create(context.Background(), CreateTHNRequest{
		Date:              time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		TruckNumber:       "MH12AB1234",
		OwnerName:         "Shankar Transport",
		FromLocation:      "Pune",
		ToLocation:        "Nagpur",
		FreightRate:       freight,
		AdditionalCharges: charges,
		AdvanceAmount:     advance,
	})
	require.NoError(t, err)
	return note
}

func TestRecomputePartialThenSettled(t *testing.T) {
	svc, _, book := newTHNService()
	ctx := context.Background()

	note := createNote(t, svc, 8000, 500, 2000)
	require.Equal(t, 2000.0, note.PaidAmount)
	require.Equal(t, 6500.0, note.BalanceAmount)
	require.Equal(t, shared.SettlementPartiallyPaid, note.Status)

	book.addReceipt(note.ID, 6500, time.Now())
	svc.RecomputeStatus(ctx, note.ID)

	settled, err := svc.Get(ctx, note.ID)
	require.NoError(t, err)
	require.Equal(t, 8500.0, settled.PaidAmount)
	require.Equal(t, 0.0, settled.BalanceAmount)
	require.Equal(t, shared.SettlementPaid, settled.Status)
}

func TestRecomputeIsIdempotent(t *testing.T) {
	svc, _, _ := newTHNService()
	ctx := context.Background()

	note := createNote(t, svc, 8000, 500, 2000)
	for range 5 {
		svc.RecomputeStatus(ctx, note.ID)
	}
	after, err := svc.Get(ctx, note.ID)
	require.NoError(t, err)
	require.Equal(t, 2000.0, after.PaidAmount)
	require.Equal(t, 6500.0, after.BalanceAmount)
}

func TestAdvanceNotDoubleCounted(t *testing.T) {
	svc, _, book := newTHNService()
	ctx := context.Background()

	// The synthesized advance lives in the payment list; the raw
	// advance_amount column must not be added on top.
	note := createNote(t, svc, 20000, 0, 5000)
	require.Len(t, book.payments[note.ID], 1)

	svc.RecomputeStatus(ctx, note.ID)
	after, err := svc.Get(ctx, note.ID)
	require.NoError(t, err)
	require.Equal(t, 5000.0, after.PaidAmount)
	require.Equal(t, 15000.0, after.BalanceAmount)
}

func TestLegacyNoteFallsBackToRawAdvance(t *testing.T) {
	svc, repo, _ := newTHNService()
	ctx := context.Background()

	// A note predating advance mirroring: advance only in its own column.
	id, err := repo.Create(ctx, TruckHiringNote{
		Number:        "THN-2023-00001",
		Date:          time.Date(2023, 2, 1, 0, 0, 0, 0, time.UTC),
		TruckNumber:   "MH14XY9876",
		OwnerName:     "Old Fleet",
		FromLocation:  "Mumbai",
		ToLocation:    "Surat",
		FreightRate:   10000,
		AdvanceAmount: 2000,
	})
	require.NoError(t, err)

	svc.RecomputeStatus(ctx, id)
	after, err := svc.Get(ctx, id)
	require.NoError(t, err)
	require.Equal(t, 2000.0, after.PaidAmount)
	require.Equal(t, 8000.0, after.BalanceAmount)
	require.Equal(t, shared.SettlementPartiallyPaid, after.Status)
}

func TestManualAdvanceDoesNotSuppressRawAdvanceFallback(t *testing.T) {
	svc, repo, book := newTHNService()
	ctx := context.Background()

	// A legacy note holds its advance only in the advance_amount column. An
	// operator later books a further advance through the payment book with a
	// UTR reference; that payment is not the mirror, so the raw figure still
	// counts.
	id, err := repo.Create(ctx, TruckHiringNote{
		Number:        "THN-2023-00002",
		Date:          time.Date(2023, 3, 10, 0, 0, 0, 0, time.UTC),
		TruckNumber:   "MH14XY9876",
		OwnerName:     "Old Fleet",
		FromLocation:  "Mumbai",
		ToLocation:    "Surat",
		FreightRate:   10000,
		AdvanceAmount: 2000,
	})
	require.NoError(t, err)
	book.addManualAdvance(id, 1000, "UPI-77120")

	svc.RecomputeStatus(ctx, id)
	after, err := svc.Get(ctx, id)
	require.NoError(t, err)
	require.Equal(t, 3000.0, after.PaidAmount)
	require.Equal(t, 7000.0, after.BalanceAmount)
	require.Equal(t, shared.SettlementPartiallyPaid, after.Status)
}

func TestRecomputeMissingNoteIsNoOp(t *testing.T) {
	svc, _, _ := newTHNService()
	svc.RecomputeStatus(context.Background(), 999)
}

func TestRecomputeAllIsolatesFailures(t *testing.T) {
	svc, repo, book := newTHNService()
	ctx := context.Background()

	a := createNote(t, svc, 1000, 0, 0)
	b := createNote(t, svc, 2000, 0, 0)
	book.addReceipt(a.ID, 1000, time.Now())
	book.addReceipt(b.ID, 500, time.Now())

	require.NoError(t, svc.RecomputeAll(ctx))

	afterA, err := repo.Get(ctx, a.ID)
	require.NoError(t, err)
	require.Equal(t, shared.SettlementPaid, afterA.Status)
	afterB, err := repo.Get(ctx, b.ID)
	require.NoError(t, err)
	require.Equal(t, shared.SettlementPartiallyPaid, afterB.Status)
}

func TestOverpaymentClampsBalance(t *testing.T) {
	svc, _, book := newTHNService()
	ctx := context.Background()

	note := createNote(t, svc, 5000, 0, 0)
	book.addReceipt(note.ID, 6000, time.Now())
	svc.RecomputeStatus(ctx, note.ID)

	after, err := svc.Get(ctx, note.ID)
	require.NoError(t, err)
	require.Equal(t, 0.0, after.BalanceAmount)
	require.Equal(t, shared.SettlementPaid, after.Status)
}
