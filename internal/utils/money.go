package utils

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var amountPrinter = message.NewPrinter(language.Russian)

// FormatAmount groups digits the way the ru locale does ("25 000").
func FormatAmount(amount int) string {
	return amountPrinter.Sprintf("%d", amount)
}

// FormatOptionalAmount treats a missing amount as zero.
func FormatOptionalAmount(amount *int) string {
	if amount == nil {
		return FormatAmount(0)
	}
	return FormatAmount(*amount)
}
