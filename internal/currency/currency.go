// Package currency formats integer storefront amounts as localized
// currency strings.
package currency

import (
	"fmt"

	xcurrency "golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// DefaultCode is the storefront display currency.
const DefaultCode = "NGN"

var printer = message.NewPrinter(language.English)

// Format renders an integer amount in the given ISO 4217 currency. Unknown
// codes fall back to a plain "<CODE> <amount>" string rather than failing.
func Format(amount int64, code string) string {
	if code == "" {
		code = DefaultCode
	}
	unit, err := xcurrency.ParseISO(code)
	if err != nil {
		return fmt.Sprintf("%s %d", code, amount)
	}
	return printer.Sprint(xcurrency.NarrowSymbol(unit.Amount(amount)))
}
