// Package model defines the core domain models used throughout the application.
package model

// Rule associates a merchant with a user-confirmed spending category.
// UseCount tracks how many times the association has been confirmed and
// doubles as the eviction weight when the rule store is over capacity.
type Rule struct {
	Merchant string
	Category string
	UseCount int
}

// Suggestion is a ranked category proposal with a human-readable reason.
type Suggestion struct {
	Category string
	Reason   string
}
