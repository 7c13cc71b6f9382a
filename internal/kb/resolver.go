// Package kb resolves certificate and package codes against the deposit
// knowledge base. Sold units carry numeric suffixes on top of a base
// package code (BEACH123 is a unit of BEACH), so resolution strips
// trailing digits one at a time until a known code is found.
package kb

import "strings"

// Activation methods for a package.
const (
	ActivationOnline = "online"
	ActivationMail   = "mail"
)

// Policy holds the deposit terms for one package code.
type Policy struct {
	ExpectedDeposit  float64 `json:"total_deposit"`
	ActivationMethod string  `json:"activation_method"`
}

// CandidateCodes expands a code into its lookup sequence, most specific
// first: the code itself, then each form produced by stripping one
// trailing digit. An empty code yields no candidates.
func CandidateCodes(code string) []string {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil
	}
	candidates := []string{code}
	current := code
	for len(current) > 0 && isDigit(current[len(current)-1]) {
		current = current[:len(current)-1]
		if current != "" {
			candidates = append(candidates, current)
		}
	}
	return candidates
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

// Resolver looks package codes up in a static policy table.
type Resolver struct {
	table map[string]Policy
}

// NewResolver builds a resolver over the given table. Keys are matched
// case-insensitively.
func NewResolver(table map[string]Policy) *Resolver {
	folded := make(map[string]Policy, len(table))
	for code, policy := range table {
		folded[strings.ToUpper(code)] = policy
	}
	return &Resolver{table: folded}
}

// Resolve returns the policy for the first candidate present in the
// table, along with the code that matched.
func (r *Resolver) Resolve(code string) (Policy, string, bool) {
	for _, candidate := range CandidateCodes(code) {
		if policy, ok := r.table[strings.ToUpper(candidate)]; ok {
			return policy, candidate, true
		}
	}
	return Policy{}, "", false
}

// DefaultTable is the deposit knowledge base. Package descriptions live
// in the voice agent's own knowledge base; only deposit terms are here.
func DefaultTable() map[string]Policy {
	return map[string]Policy{
		// ECF packages
		"ECF":    {ExpectedDeposit: 500, ActivationMethod: ActivationOnline},
		"ECFWIN": {ExpectedDeposit: 500, ActivationMethod: ActivationOnline},

		// E packages
		"E":    {ExpectedDeposit: 500, ActivationMethod: ActivationOnline},
		"E7":   {ExpectedDeposit: 500, ActivationMethod: ActivationOnline},
		"E78":  {ExpectedDeposit: 500, ActivationMethod: ActivationOnline},
		"E789": {ExpectedDeposit: 500, ActivationMethod: ActivationOnline},

		// BEACH packages
		"BEACH":    {ExpectedDeposit: 750, ActivationMethod: ActivationOnline},
		"BEACH1":   {ExpectedDeposit: 750, ActivationMethod: ActivationOnline},
		"BEACH12":  {ExpectedDeposit: 750, ActivationMethod: ActivationOnline},
		"BEACH123": {ExpectedDeposit: 750, ActivationMethod: ActivationOnline},

		// SKI packages
		"SKI":    {ExpectedDeposit: 800, ActivationMethod: ActivationMail},
		"SKI5":   {ExpectedDeposit: 800, ActivationMethod: ActivationMail},
		"SKI55":  {ExpectedDeposit: 800, ActivationMethod: ActivationMail},
		"SKI555": {ExpectedDeposit: 800, ActivationMethod: ActivationMail},
	}
}
