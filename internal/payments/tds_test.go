package payments

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func f64(v float64) *float64 { return &v }

func TestApplyTDSGrossDeduction(t *testing.T) {
	paid := time.Date(2024, 7, 15, 0, 0, 0, 0, time.UTC)
	res, err := ApplyTDS(TDSInput{
		Amount:      10000,
		PaymentType: TypeReceipt,
		Applicable:  true,
		Rate:        f64(10),
		PaymentDate: paid,
	})
	require.NoError(t, err)
	require.Equal(t, 9000.0, res.NetAmount)
	require.NotNil(t, res.Amount)
	require.Equal(t, 1000.0, *res.Amount)
	require.NotNil(t, res.Date)
	require.True(t, res.Date.Equal(paid))
}

func TestApplyTDSNotApplicableClearsFields(t *testing.T) {
	res, err := ApplyTDS(TDSInput{
		Amount:      5000,
		PaymentType: TypeReceipt,
		Applicable:  false,
		Rate:        f64(10),
	})
	require.NoError(t, err)
	require.Equal(t, 5000.0, res.NetAmount)
	require.False(t, res.Applicable)
	require.Nil(t, res.Rate)
	require.Nil(t, res.Amount)
	require.Nil(t, res.Date)
}

func TestApplyTDSIgnoredForNonReceipts(t *testing.T) {
	res, err := ApplyTDS(TDSInput{
		Amount:      5000,
		PaymentType: TypePayment,
		Applicable:  true,
		Rate:        f64(10),
	})
	require.NoError(t, err)
	require.Equal(t, 5000.0, res.NetAmount)
	require.False(t, res.Applicable)
}

func TestApplyTDSRateRequired(t *testing.T) {
	_, err := ApplyTDS(TDSInput{
		Amount:      5000,
		PaymentType: TypeReceipt,
		Applicable:  true,
	})
	require.ErrorIs(t, err, ErrTDSRateRequired)
}

func TestApplyTDSRateRange(t *testing.T) {
	_, err := ApplyTDS(TDSInput{
		Amount:      5000,
		PaymentType: TypeReceipt,
		Applicable:  true,
		Rate:        f64(101),
	})
	require.ErrorIs(t, err, ErrTDSRateRange)
}

func TestApplyTDSExplicitAmountKeepsNet(t *testing.T) {
	// Caller entered the net figure and its matching deduction: 9000 net,
	// 1000 deducted at 10% of the 10000 gross.
	res, err := ApplyTDS(TDSInput{
		Amount:         9000,
		PaymentType:    TypeReceipt,
		Applicable:     true,
		Rate:           f64(10),
		ExplicitAmount: f64(1000),
		PaymentDate:    time.Now(),
	})
	require.NoError(t, err)
	require.Equal(t, 9000.0, res.NetAmount)
	require.Equal(t, 1000.0, *res.Amount)
}

func TestApplyTDSExplicitAmountMismatchRejected(t *testing.T) {
	_, err := ApplyTDS(TDSInput{
		Amount:         9000,
		PaymentType:    TypeReceipt,
		Applicable:     true,
		Rate:           f64(10),
		ExplicitAmount: f64(500),
		PaymentDate:    time.Now(),
	})
	require.ErrorIs(t, err, ErrTDSAmountMismatch)
}

func TestApplyTDSExplicitDatePreserved(t *testing.T) {
	paid := time.Date(2024, 7, 15, 0, 0, 0, 0, time.UTC)
	deducted := time.Date(2024, 7, 31, 0, 0, 0, 0, time.UTC)
	res, err := ApplyTDS(TDSInput{
		Amount:      10000,
		PaymentType: TypeReceipt,
		Applicable:  true,
		Rate:        f64(2),
		Date:        &deducted,
		PaymentDate: paid,
	})
	require.NoError(t, err)
	require.True(t, res.Date.Equal(deducted))
}

func TestGrossAmount(t *testing.T) {
	p := Payment{Amount: 9000, TDSAmount: f64(1000)}
	require.Equal(t, 10000.0, p.GrossAmount())

	p = Payment{Amount: 9000}
	require.Equal(t, 9000.0, p.GrossAmount())
}
