package kb

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCandidateCodes(t *testing.T) {
	tests := []struct {
		code string
		want []string
	}{
		{"BEACH123", []string{"BEACH123", "BEACH12", "BEACH1", "BEACH"}},
		{"E789", []string{"E789", "E78", "E7", "E"}},
		{"BEACH", []string{"BEACH"}},
		{"SKI5", []string{"SKI5", "SKI"}},
		{"", nil},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, CandidateCodes(tt.code), "code %q", tt.code)
	}
}

func TestCandidateCodesSequenceShape(t *testing.T) {
	// One candidate per trailing digit plus the original, strictly
	// decreasing in length, original first.
	codes := []string{"A1", "PKG0042", "X999999", "NODIGITS", "7"}
	for _, code := range codes {
		trailing := 0
		for i := len(code) - 1; i >= 0 && code[i] >= '0' && code[i] <= '9'; i-- {
			trailing++
		}
		want := trailing + 1
		if trailing == len(code) {
			// All-digit codes lose the final empty candidate.
			want = trailing
		}

		got := CandidateCodes(code)
		assert.Len(t, got, want, "code %q", code)
		assert.Equal(t, code, got[0], "code %q", code)
		for i := 1; i < len(got); i++ {
			assert.Less(t, len(got[i]), len(got[i-1]), "code %q", code)
			assert.True(t, strings.HasPrefix(got[i-1], got[i]), "code %q", code)
		}
	}
}

func TestResolvePrefersMostSpecific(t *testing.T) {
	r := NewResolver(map[string]Policy{
		"BEACH":    {ExpectedDeposit: 750, ActivationMethod: ActivationOnline},
		"BEACH123": {ExpectedDeposit: 900, ActivationMethod: ActivationMail},
	})

	policy, matched, ok := r.Resolve("BEACH123")
	assert.True(t, ok)
	assert.Equal(t, "BEACH123", matched)
	assert.Equal(t, 900.0, policy.ExpectedDeposit)
}

func TestResolveFallsBackToBaseCode(t *testing.T) {
	r := NewResolver(map[string]Policy{
		"BEACH": {ExpectedDeposit: 750, ActivationMethod: ActivationOnline},
	})

	policy, matched, ok := r.Resolve("BEACH123")
	assert.True(t, ok)
	assert.Equal(t, "BEACH", matched)
	assert.Equal(t, 750.0, policy.ExpectedDeposit)
}

func TestResolveCaseInsensitive(t *testing.T) {
	r := NewResolver(DefaultTable())

	policy, matched, ok := r.Resolve("beach123")
	assert.True(t, ok)
	assert.Equal(t, "beach123", matched)
	assert.Equal(t, 750.0, policy.ExpectedDeposit)
}

func TestResolveUnknownAndEmpty(t *testing.T) {
	r := NewResolver(DefaultTable())

	_, _, ok := r.Resolve("MYSTERY42")
	assert.False(t, ok)

	_, _, ok = r.Resolve("")
	assert.False(t, ok)
}
