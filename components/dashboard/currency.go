package dashboard

import (
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// localeCurrencyFormatter is the default CurrencyFormatter, backed by
// x/text locale data.
type localeCurrencyFormatter struct {
	printer *message.Printer
	unit    currency.Unit
}

// NewCurrencyFormatter builds a formatter for the given BCP 47 locale and ISO
// 4217 currency code. Unknown inputs fall back to English/EUR.
func NewCurrencyFormatter(locale, code string) CurrencyFormatter {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.English
	}
	unit, err := currency.ParseISO(code)
	if err != nil {
		unit = currency.EUR
	}
	return &localeCurrencyFormatter{
		printer: message.NewPrinter(tag),
		unit:    unit,
	}
}

func (f *localeCurrencyFormatter) Format(amount float64) string {
	return f.printer.Sprintf("%v", currency.Symbol(f.unit.Amount(amount)))
}
