package lr

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func receiptWith(freight, hamali, other float64) LorryReceipt {
	return LorryReceipt{FreightAmount: freight, Hamali: hamali, OtherCharges: other}
}

func TestAllocateProportionallySplitsByChargeWeight(t *testing.T) {
	receipts := []LorryReceipt{
		receiptWith(6000, 0, 0),
		receiptWith(3000, 0, 0),
		receiptWith(1000, 0, 0),
	}

	shares := AllocateProportionally(5000, receipts)
	require.Equal(t, []float64{3000, 1500, 500}, shares)
}

func TestAllocateProportionallySumsBackToWhole(t *testing.T) {
	receipts := []LorryReceipt{
		receiptWith(100, 0, 0),
		receiptWith(100, 0, 0),
		receiptWith(100, 0, 0),
	}

	shares := AllocateProportionally(100, receipts)
	require.Len(t, shares, 3)

	var total float64
	for _, s := range shares {
		total += s
	}
	require.InDelta(t, 100, total, 0.001)
	// Last share absorbs the rounding remainder.
	require.InDelta(t, 33.34, shares[2], 0.001)
}

func TestAllocateProportionallyZeroBaseFallsBackToEqualSplit(t *testing.T) {
	receipts := []LorryReceipt{
		receiptWith(0, 0, 0),
		receiptWith(0, 0, 0),
	}

	shares := AllocateProportionally(900, receipts)
	require.Equal(t, []float64{450, 450}, shares)
}

func TestAllocateProportionallyCountsAllChargeComponents(t *testing.T) {
	receipts := []LorryReceipt{
		receiptWith(800, 150, 50),
		receiptWith(1000, 0, 0),
	}

	shares := AllocateProportionally(2000, receipts)
	require.Equal(t, []float64{1000, 1000}, shares)
}

func TestAllocateProportionallyEmptyInput(t *testing.T) {
	require.Nil(t, AllocateProportionally(500, nil))
}
