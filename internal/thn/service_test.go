package thn

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/freightbox-tms/freightbox/internal/shared"
)

func TestCreateMintsNumberAndMirrorsAdvance(t *testing.T) {
	svc, _, book := newTHNService()

	note := createNote(t, svc, 8000, 500, 2000)
	require.Equal(t, "THN-2024-00001", note.Number)

	mirrored := book.payments[note.ID]
	require.Len(t, mirrored, 1)
	require.True(t, mirrored[0].IsSynthesizedAdvance())
	require.Equal(t, 2000.0, mirrored[0].Amount)
}

func TestCreateSurvivesAdvanceMirrorFailure(t *testing.T) {
	svc, _, book := newTHNService()
	book.fail = true

	note, err := svc.Create(context.Background(), CreateTHNRequest{
		Date:          time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		TruckNumber:   "KA01CD4321",
		OwnerName:     "Hill Carriers",
		FromLocation:  "Bengaluru",
		ToLocation:    "Hubli",
		FreightRate:   6000,
		AdvanceAmount: 1500,
	})
	require.NoError(t, err)
	// Raw advance still counts through the legacy fallback.
	require.Equal(t, 1500.0, note.PaidAmount)
	require.Equal(t, 4500.0, note.BalanceAmount)
	require.Equal(t, shared.SettlementPartiallyPaid, note.Status)
}

func TestUpdateAdvanceRemirrorsAndRecomputes(t *testing.T) {
	svc, _, book := newTHNService()
	ctx := context.Background()

	note := createNote(t, svc, 8000, 500, 2000)

	newAdvance := 3000.0
	updated, err := svc.Update(ctx, note.ID, UpdateTHNRequest{AdvanceAmount: &newAdvance})
	require.NoError(t, err)
	require.Equal(t, 3000.0, updated.PaidAmount)
	require.Equal(t, 5500.0, updated.BalanceAmount)

	mirrored := book.payments[note.ID]
	require.Len(t, mirrored, 1)
	require.Equal(t, 3000.0, mirrored[0].Amount)
}

func TestUpdateFreightRateRecomputes(t *testing.T) {
	svc, _, _ := newTHNService()
	ctx := context.Background()

	note := createNote(t, svc, 8000, 0, 8000)
	require.Equal(t, shared.SettlementPaid, note.Status)

	rate := 9000.0
	updated, err := svc.Update(ctx, note.ID, UpdateTHNRequest{FreightRate: &rate})
	require.NoError(t, err)
	require.Equal(t, 1000.0, updated.BalanceAmount)
	require.Equal(t, shared.SettlementPartiallyPaid, updated.Status)
}

func TestDeleteBlockedByRealPayments(t *testing.T) {
	svc, repo, book := newTHNService()
	ctx := context.Background()

	note := createNote(t, svc, 8000, 0, 1000)
	book.addReceipt(note.ID, 500, time.Now())

	err := svc.Delete(ctx, note.ID)
	require.ErrorIs(t, err, ErrHasPayments)
	_, err = repo.Get(ctx, note.ID)
	require.NoError(t, err)
}

func TestDeleteBlockedByManualAdvance(t *testing.T) {
	svc, repo, book := newTHNService()
	ctx := context.Background()

	// An advance booked by hand with a cheque reference is real money, not
	// the synthesized mirror, so it must block deletion like any payment.
	note := createNote(t, svc, 8000, 0, 1000)
	book.addManualAdvance(note.ID, 4000, "CHQ-442191")

	err := svc.Delete(ctx, note.ID)
	require.ErrorIs(t, err, ErrHasPayments)
	_, err = repo.Get(ctx, note.ID)
	require.NoError(t, err)
}

func TestDeleteRemovesAdvanceCompanion(t *testing.T) {
	svc, repo, book := newTHNService()
	ctx := context.Background()

	note := createNote(t, svc, 8000, 0, 1000)
	require.Len(t, book.payments[note.ID], 1)

	require.NoError(t, svc.Delete(ctx, note.ID))
	_, err := repo.Get(ctx, note.ID)
	require.ErrorIs(t, err, ErrNotFound)
	require.Empty(t, book.payments[note.ID])
}

func TestListHealsStaleStatuses(t *testing.T) {
	svc, repo, book := newTHNService()
	ctx := context.Background()

	note := createNote(t, svc, 4000, 0, 0)
	book.addReceipt(note.ID, 4000, time.Now())

	// Stored row is stale until the next read heals it.
	stale, err := repo.Get(ctx, note.ID)
	require.NoError(t, err)
	require.Equal(t, shared.SettlementUnpaid, stale.Status)

	list, total, err := svc.List(ctx, ListTHNRequest{Limit: 10})
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Equal(t, shared.SettlementPaid, list[0].Status)
	require.Equal(t, 0.0, list[0].BalanceAmount)
}
