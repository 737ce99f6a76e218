package lr

import "github.com/freightbox-tms/freightbox/internal/shared"

// AllocateProportionally splits amount across receipts in proportion to their
// charge totals. A zero combined total falls back to an equal split so the
// division never blows up on free-of-charge consignments. The last share
// absorbs rounding so the parts always sum back to the whole.
func AllocateProportionally(amount float64, receipts []LorryReceipt) []float64 {
	if len(receipts) == 0 {
		return nil
	}
	shares := make([]float64, len(receipts))
	var base float64
	for _, r := range receipts {
		base += r.ChargeTotal()
	}

	var allocated float64
	for i := range receipts {
		var share float64
		if shared.AmountEqual(base, 0) {
			share = shared.Round2(amount / float64(len(receipts)))
		} else {
			share = shared.Round2(amount * receipts[i].ChargeTotal() / base)
		}
		if i == len(receipts)-1 {
			share = shared.Round2(amount - allocated)
		}
		shares[i] = share
		allocated += share
	}
	return shares
}
