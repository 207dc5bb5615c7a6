package currency

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatKnownCurrencyUsesSymbol(t *testing.T) {
	formatted := Format(20000, "USD")
	assert.Contains(t, formatted, "$")
	assert.NotContains(t, formatted, "USD")
}

func TestFormatDefaultsToNaira(t *testing.T) {
	assert.Equal(t, Format(500, "NGN"), Format(500, ""))
	assert.NotEmpty(t, Format(500, ""))
}

func TestFormatUnknownCodeFallsBack(t *testing.T) {
	assert.Equal(t, "ZZZ 500", Format(500, "ZZZ"))
}
