package customer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"ten digits pass through", "8182121359", "8182121359"},
		{"formatting stripped", "(818) 212-1359", "8182121359"},
		{"leading country code dropped", "18182121359", "8182121359"},
		{"e164 input", "+1 818 212 1359", "8182121359"},
		{"short number untouched", "911", "911"},
		{"eleven digits without leading one kept", "98182121359", "98182121359"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizePhone(tt.input))
		})
	}
}

func TestFormatE164(t *testing.T) {
	assert.Equal(t, "+18182121359", FormatE164("818-212-1359"))
	assert.Equal(t, "+18182121359", FormatE164("1 (818) 212-1359"))
	assert.Equal(t, "911", FormatE164("911"))
}
