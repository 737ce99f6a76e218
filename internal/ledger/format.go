package ledger

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var inr = message.NewPrinter(language.MustParse("en-IN"))

// FormatAmount renders an amount with Indian digit grouping, e.g. 1,23,456.78.
func FormatAmount(v float64) string {
	return inr.Sprint(number.Decimal(v,
		number.MinFractionDigits(2), number.MaxFractionDigits(2)))
}
