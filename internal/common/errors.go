// Package common defines shared constants and sentinel errors used across
// the TickerLens client. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// ErrBusy signals a rejected re-entry: a metered request for the same
	// action is already in flight and must not be submitted twice.
	ErrBusy = errors.New("request already in progress")

	// Quota errors.
	ErrQuotaExhausted = errors.New("guest quota exhausted")
)
