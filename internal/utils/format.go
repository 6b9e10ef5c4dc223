package utils

import (
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var numberPrinter = message.NewPrinter(language.English)

// FormatPercentage renders a 0..100 quota with the given number of decimal places.
// A nil quota renders as "n/a".
func FormatPercentage(quota *float64, decimalPlaces int) string {
	if quota == nil {
		return "n/a"
	}
	if decimalPlaces < 0 {
		decimalPlaces = 0
	}
	return strconv.FormatFloat(*quota, 'f', decimalPlaces, 64) + "%"
}

// FormatNumber renders an integer with thousands separators, e.g. 12345 as "12,345".
func FormatNumber(n int) string {
	return numberPrinter.Sprintf("%d", n)
}

// FormatRatio renders "covered of total" counts, e.g. "3 of 4".
func FormatRatio(covered, total int) string {
	return FormatNumber(covered) + " of " + FormatNumber(total)
}
