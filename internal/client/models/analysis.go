package models

import (
	"encoding/json"
	"time"
)

// Action is a metered operation. Costs are in credits and apply to
// authenticated users only; a guest action always burns exactly one
// trial regardless of the declared cost.
type Action int

const (
	ActionAnalyze Action = iota
	ActionCompare
	ActionRefresh
)

// Cost returns the credit price of the action.
func (a Action) Cost() int {
	if a == ActionCompare {
		return 2
	}
	return 1
}

func (a Action) String() string {
	switch a {
	case ActionCompare:
		return "compare"
	case ActionRefresh:
		return "refresh"
	default:
		return "analyze"
	}
}

// AnalysisPayload is the single handoff slot: one analysis result carried
// from the action that fetched it to the command that renders it. Body is
// opaque JSON produced by the server; the client never interprets it beyond
// pulling headline fields for display.
type AnalysisPayload struct {
	Ticker   string
	Body     json.RawMessage
	StoredAt time.Time
}

// GuestQuota is the purely local trial counter for anonymous visitors.
type GuestQuota struct {
	Remaining int
	Initial   int
}

// DefaultGuestQuota is the number of free analyses a fresh install gets.
// The counter is never replenished; signing in makes it irrelevant but
// does not reset it.
const DefaultGuestQuota = 3
