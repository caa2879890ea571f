package receipt

import (
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Placeholder is shown for fields left empty.
const Placeholder = "-"

var printer = message.NewPrinter(language.Indonesian)

// FormatCurrency renders v as Indonesian rupiah with exactly two fraction
// digits, e.g. 1234.5 -> "Rp 1.234,50".
func FormatCurrency(v float64) string {
	return printer.Sprintf("Rp %v", number.Decimal(v,
		number.MinFractionDigits(2),
		number.MaxFractionDigits(2),
	))
}

// DisplayDate returns the date as typed, or the placeholder when blank.
func (d FormData) DisplayDate() string {
	return orPlaceholder(d.Date)
}

// DisplayFrom returns the payer as typed, or the placeholder when blank.
func (d FormData) DisplayFrom() string {
	return orPlaceholder(d.From)
}

// DisplayAmount formats the amount for the receipt: a numeric value becomes
// the fixed-locale currency string, non-numeric text is shown verbatim, and
// an empty field shows the placeholder.
func (d FormData) DisplayAmount() string {
	trimmed := strings.TrimSpace(d.Amount)
	if trimmed == "" {
		return Placeholder
	}
	v, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return d.Amount
	}
	return FormatCurrency(v)
}

func orPlaceholder(s string) string {
	if strings.TrimSpace(s) == "" {
		return Placeholder
	}
	return s
}
