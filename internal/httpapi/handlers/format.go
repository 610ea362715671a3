// Package handlers – locale-aware amount rendering.
package handlers

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// AmountFormatter renders monetary amounts for the UI locale. Amounts are
// printed with the three fractional digits the Kuwaiti dinar uses.
type AmountFormatter struct {
	p *message.Printer
}

// NewAmountFormatter builds a formatter for the given BCP 47 locale,
// falling back to English when the tag does not parse.
func NewAmountFormatter(locale string) AmountFormatter {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.English
	}
	return AmountFormatter{p: message.NewPrinter(tag)}
}

// Format renders v as a display amount, e.g. "8.000 KWD".
func (f AmountFormatter) Format(v float64) string {
	return f.p.Sprintf("%.3f KWD", v)
}
