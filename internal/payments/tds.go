package payments

import (
	"errors"
	"time"

	"github.com/freightbox-tms/freightbox/internal/shared"
)

var (
	// ErrTDSRateRequired indicates tds_applicable was set without a rate.
	ErrTDSRateRequired = errors.New("tds rate required when tds applicable")
	// ErrTDSRateRange indicates a rate outside 0-100.
	ErrTDSRateRange = errors.New("tds rate must be between 0 and 100")
	// ErrTDSAmountMismatch indicates an explicit tds_amount inconsistent with
	// the supplied rate. The two interpretations (amount-as-gross vs
	// amount-as-net) would diverge, so the input is rejected outright.
	ErrTDSAmountMismatch = errors.New("explicit tds amount does not match rate")
)

// TDSInput carries the fields relevant to tax-deducted-at-source handling.
type TDSInput struct {
	// Amount as entered by the caller. Gross unless ExplicitAmount is set.
	Amount      float64
	PaymentType Type
	Applicable  bool
	Rate        *float64
	// ExplicitAmount is a caller-supplied tds_amount. When present the input
	// Amount is treated as already net and stored unchanged.
	ExplicitAmount *float64
	Date           *time.Time
	PaymentDate    time.Time
}

// TDSResult is the adjusted view persisted on the payment.
type TDSResult struct {
	NetAmount  float64
	Applicable bool
	Rate       *float64
	Amount     *float64
	Date       *time.Time
}

// ApplyTDS translates a user-entered amount into the net amount recorded and
// the auxiliary TDS fields. TDS only ever applies to RECEIPT payments; any
// other type, or an unset flag, clears every TDS field and passes the amount
// through untouched.
func ApplyTDS(in TDSInput) (TDSResult, error) {
	if !in.Applicable || in.PaymentType != TypeReceipt {
		return TDSResult{NetAmount: in.Amount}, nil
	}
	if in.Rate == nil {
		return TDSResult{}, ErrTDSRateRequired
	}
	rate := *in.Rate
	if rate < 0 || rate > 100 {
		return TDSResult{}, ErrTDSRateRange
	}

	date := in.Date
	if date == nil {
		d := in.PaymentDate
		date = &d
	}

	if in.ExplicitAmount != nil {
		// Amount is already net; verify the explicit deduction is consistent
		// with the rate against the implied gross before accepting it.
		tds := shared.Round2(*in.ExplicitAmount)
		gross := in.Amount + tds
		expected := shared.Round2(gross * rate / 100)
		if !withinRupee(tds, expected) {
			return TDSResult{}, ErrTDSAmountMismatch
		}
		return TDSResult{
			NetAmount:  in.Amount,
			Applicable: true,
			Rate:       &rate,
			Amount:     &tds,
			Date:       date,
		}, nil
	}

	// Amount is gross: derive the deduction and persist the net.
	tds := shared.Round2(in.Amount * rate / 100)
	net := shared.Round2(in.Amount - tds)
	return TDSResult{
		NetAmount:  net,
		Applicable: true,
		Rate:       &rate,
		Amount:     &tds,
		Date:       date,
	}, nil
}

func withinRupee(a, b float64) bool {
	diff := a - b
	if diff < 0 {
		diff = -diff
	}
	return diff <= 1.0
}

// applyTDSResult copies the adjusted fields onto a payment record.
func applyTDSResult(p *Payment, res TDSResult) {
	p.Amount = res.NetAmount
	p.TDSApplicable = res.Applicable
	p.TDSRate = res.Rate
	p.TDSAmount = res.Amount
	p.TDSDate = res.Date
}
