package payments

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type memoryPaymentRepo struct {
	payments map[int64]*Payment
	nextID   int64
}

func newMemoryPaymentRepo() *memoryPaymentRepo {
	return &memoryPaymentRepo{payments: make(map[int64]*Payment)}
}

func (r *memoryPaymentRepo) Get(ctx context.Context, id int64) (*Payment, error) {
	p, ok := r.payments[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *memoryPaymentRepo) GetByIdempotencyKey(ctx context.Context, key string) (*Payment, error) {
	for _, p := range r.payments {
		if p.IdempotencyKey == key {
			cp := *p
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (r *memoryPaymentRepo) List(ctx context.Context, req ListPaymentsRequest) ([]Payment, int, error) {
	all, _ := r.ListAll(ctx)
	return all, len(all), nil
}

func (r *memoryPaymentRepo) ListAll(ctx context.Context) ([]Payment, error) {
	var out []Payment
	for _, p := range r.payments {
		out = append(out, *p)
	}
	return out, nil
}

func (r *memoryPaymentRepo) ListByInvoice(ctx context.Context, invoiceID int64) ([]Payment, error) {
	var out []Payment
	for _, p := range r.payments {
		if p.InvoiceID != nil && *p.InvoiceID == invoiceID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *memoryPaymentRepo) ListByTHN(ctx context.Context, thnID int64) ([]Payment, error) {
	var out []Payment
	for _, p := range r.payments {
		if p.TruckHiringNoteID != nil && *p.TruckHiringNoteID == thnID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *memoryPaymentRepo) GetAdvanceForTHN(ctx context.Context, thnID int64) (*Payment, error) {
	for _, p := range r.payments {
		if p.TruckHiringNoteID != nil && *p.TruckHiringNoteID == thnID && p.IsSynthesizedAdvance() {
			cp := *p
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (r *memoryPaymentRepo) Create(ctx context.Context, p Payment) (int64, error) {
	r.nextID++
	p.ID = r.nextID
	r.payments[p.ID] = &p
	return p.ID, nil
}

func (r *memoryPaymentRepo) Update(ctx context.Context, p Payment) error {
	if _, ok := r.payments[p.ID]; !ok {
		return ErrNotFound
	}
	r.payments[p.ID] = &p
	return nil
}

func (r *memoryPaymentRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := r.payments[id]; !ok {
		return ErrNotFound
	}
	delete(r.payments, id)
	return nil
}

type stubResolver struct {
	customerID *int64
}

func (s stubResolver) Invoice(ctx context.Context, id int64) (DocSummary, error) {
	return DocSummary{ID: id, Number: "INV-2024-00001", CustomerID: s.customerID}, nil
}

func (s stubResolver) TruckHiringNote(ctx context.Context, id int64) (DocSummary, error) {
	return DocSummary{ID: id, Number: "THN-2024-00001"}, nil
}

type stubSequencer struct{ n int64 }

func (s *stubSequencer) Next(ctx context.Context, name string) (int64, error) {
	s.n++
	return s.n, nil
}

type recordingReconciler struct {
	invoiceIDs []int64
	thnIDs     []int64
}

func (r *recordingReconciler) InvoicePaymentsChanged(ctx context.Context, invoiceID int64) {
	r.invoiceIDs = append(r.invoiceIDs, invoiceID)
}

func (r *recordingReconciler) THNPaymentsChanged(ctx context.Context, thnID int64) {
	r.thnIDs = append(r.thnIDs, thnID)
}

func i64(v int64) *int64 { return &v }

func newTestService(resolver DocResolver) (*Service, *memoryPaymentRepo, *recordingReconciler) {
	repo := newMemoryPaymentRepo()
	rec := &recordingReconciler{}
	svc := NewService(slog.Default(), repo, &stubSequencer{}, resolver)
	svc.SetReconciler(rec)
	return svc, repo, rec
}

func TestCreateRequiresExactlyOneReference(t *testing.T) {
	svc, _, _ := newTestService(stubResolver{})
	base := CreatePaymentRequest{Date: time.Now(), Type: TypeReceipt, Mode: ModeNEFT, Amount: 100}

	_, err := svc.Create(context.Background(), base)
	require.ErrorIs(t, err, ErrDocRefRequired)

	both := base
	both.InvoiceID = i64(1)
	both.TruckHiringNoteID = i64(2)
	_, err = svc.Create(context.Background(), both)
	require.ErrorIs(t, err, ErrDocRefConflict)
}

func TestCreateInheritsCustomerFromInvoice(t *testing.T) {
	svc, _, rec := newTestService(stubResolver{customerID: i64(7)})

	p, err := svc.Create(context.Background(), CreatePaymentRequest{
		Date:      time.Now(),
		Type:      TypeReceipt,
		Mode:      ModeNEFT,
		Amount:    5000,
		InvoiceID: i64(42),
	})
	require.NoError(t, err)
	require.NotNil(t, p.CustomerID)
	require.Equal(t, int64(7), *p.CustomerID)
	require.Equal(t, []int64{42}, rec.invoiceIDs)
	require.NotEmpty(t, p.Number)
}

func TestCreateInvoicePaymentNeedsResolvableCustomer(t *testing.T) {
	svc, _, _ := newTestService(stubResolver{})

	_, err := svc.Create(context.Background(), CreatePaymentRequest{
		Date:      time.Now(),
		Type:      TypeReceipt,
		Mode:      ModeNEFT,
		Amount:    5000,
		InvoiceID: i64(42),
	})
	require.ErrorIs(t, err, ErrCustomerUnresolvable)
}

func TestCreateIdempotency(t *testing.T) {
	svc, repo, _ := newTestService(stubResolver{customerID: i64(1)})
	key := "d2b0f0f4-0f64-4b7d-9f0b-1c2d3e4f5a6b"

	req := CreatePaymentRequest{
		Date:           time.Now(),
		Type:           TypeReceipt,
		Mode:           ModeUPI,
		Amount:         1200,
		InvoiceID:      i64(9),
		IdempotencyKey: key,
	}
	first, err := svc.Create(context.Background(), req)
	require.NoError(t, err)

	second, err := svc.Create(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)
	require.Len(t, repo.payments, 1)
}

func TestCreateTDSReceiptPersistsNet(t *testing.T) {
	svc, _, _ := newTestService(stubResolver{customerID: i64(1)})

	p, err := svc.Create(context.Background(), CreatePaymentRequest{
		Date:          time.Now(),
		Type:          TypeReceipt,
		Mode:          ModeRTGS,
		Amount:        10000,
		InvoiceID:     i64(3),
		TDSApplicable: true,
		TDSRate:       f64(10),
	})
	require.NoError(t, err)
	require.Equal(t, 9000.0, p.Amount)
	require.Equal(t, 1000.0, *p.TDSAmount)
	require.Equal(t, 10000.0, p.GrossAmount())
}

func TestUpdateRederivesTDSFromStoredAmount(t *testing.T) {
	svc, _, _ := newTestService(stubResolver{customerID: i64(1)})

	p, err := svc.Create(context.Background(), CreatePaymentRequest{
		Date:      time.Now(),
		Type:      TypeReceipt,
		Mode:      ModeNEFT,
		Amount:    10000,
		InvoiceID: i64(3),
	})
	require.NoError(t, err)
	require.Equal(t, 10000.0, p.Amount)

	applicable := true
	updated, err := svc.Update(context.Background(), p.ID, UpdatePaymentRequest{
		TDSApplicable: &applicable,
		TDSRate:       f64(10),
	})
	require.NoError(t, err)
	require.Equal(t, 9000.0, updated.Amount)
	require.Equal(t, 1000.0, *updated.TDSAmount)
}

func TestUpdateKeepsStoredTDSDate(t *testing.T) {
	svc, _, _ := newTestService(stubResolver{customerID: i64(1)})

	tdsDate := time.Date(2024, 5, 20, 0, 0, 0, 0, time.UTC)
	p, err := svc.Create(context.Background(), CreatePaymentRequest{
		Date:          time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		Type:          TypeReceipt,
		Mode:          ModeNEFT,
		Amount:        10000,
		InvoiceID:     i64(3),
		TDSApplicable: true,
		TDSRate:       f64(10),
		TDSDate:       &tdsDate,
	})
	require.NoError(t, err)
	require.Equal(t, tdsDate, *p.TDSDate)

	// A patch that touches only the mode must not reset the deduction date
	// back to the payment date.
	mode := ModeCheque
	updated, err := svc.Update(context.Background(), p.ID, UpdatePaymentRequest{Mode: &mode})
	require.NoError(t, err)
	require.NotNil(t, updated.TDSDate)
	require.Equal(t, tdsDate, *updated.TDSDate)
}

func TestDeleteNotifiesReconciler(t *testing.T) {
	svc, _, rec := newTestService(stubResolver{customerID: i64(1)})

	p, err := svc.Create(context.Background(), CreatePaymentRequest{
		Date:      time.Now(),
		Type:      TypeReceipt,
		Mode:      ModeCash,
		Amount:    100,
		InvoiceID: i64(5),
	})
	require.NoError(t, err)
	require.NoError(t, svc.Delete(context.Background(), p.ID))
	require.Equal(t, []int64{5, 5}, rec.invoiceIDs)
}

func TestUpsertTHNAdvanceLifecycle(t *testing.T) {
	svc, repo, _ := newTestService(stubResolver{})
	ctx := context.Background()

	require.NoError(t, svc.UpsertTHNAdvance(ctx, 11, "THN-2024-00011", 2000, time.Now()))
	adv, err := repo.GetAdvanceForTHN(ctx, 11)
	require.NoError(t, err)
	require.Equal(t, 2000.0, adv.Amount)
	require.Equal(t, TypeAdvance, adv.Type)
	require.Equal(t, AdvanceReference("THN-2024-00011"), *adv.Reference)
	require.True(t, adv.IsSynthesizedAdvance())

	// Amount change refreshes the same companion record.
	require.NoError(t, svc.UpsertTHNAdvance(ctx, 11, "THN-2024-00011", 3500, time.Now()))
	refreshed, err := repo.GetAdvanceForTHN(ctx, 11)
	require.NoError(t, err)
	require.Equal(t, adv.ID, refreshed.ID)
	require.Equal(t, 3500.0, refreshed.Amount)

	// Zero removes it.
	require.NoError(t, svc.UpsertTHNAdvance(ctx, 11, "THN-2024-00011", 0, time.Now()))
	_, err = repo.GetAdvanceForTHN(ctx, 11)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestHasSynthesizedAdvance(t *testing.T) {
	svc, _, _ := newTestService(stubResolver{})
	ctx := context.Background()

	ok, err := svc.HasSynthesizedAdvance(ctx, 4)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, svc.UpsertTHNAdvance(ctx, 4, "THN-2024-00004", 900, time.Now()))
	ok, err = svc.HasSynthesizedAdvance(ctx, 4)
	require.NoError(t, err)
	require.True(t, ok)
}
