package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/tickerlens/tickerlens/internal/client/api"
	"github.com/tickerlens/tickerlens/internal/client/entitlement"
	"github.com/tickerlens/tickerlens/internal/client/models"
	"github.com/tickerlens/tickerlens/internal/common"
	"github.com/tickerlens/tickerlens/internal/logging"
)

// sessionStore is the slice of the session store the analysis flow needs.
type sessionStore interface {
	Snapshot() models.Session
	SetCreditBalance(n int)
	Invalidate()
}

// quotaTracker is the slice of the guest quota tracker used for gating.
type quotaTracker interface {
	Remaining(ctx context.Context) (int, error)
	Consume(ctx context.Context) (bool, error)
}

// handoffStore is the slice of the handoff cache the flow writes to.
type handoffStore interface {
	Store(ctx context.Context, ticker string, body json.RawMessage) error
	Current(ctx context.Context) (string, error)
}

// AnalysisService runs metered actions end to end: entitlement check,
// bounded network call, ledger sync and handoff store.
//
// Contract:
//   - a non-Allow decision is returned with a nil payload and nil error;
//     the caller renders guidance, nothing was charged;
//   - a transport error (timeout, unavailable) is returned as-is; nothing
//     was charged and the handoff slot is untouched;
//   - a server verdict (401/402/403) is mapped to the same decision the
//     gate would produce; the server wins and corrects local state;
//   - on success the payload was charged, synced and stored.
type AnalysisService interface {
	Analyze(ctx context.Context, ticker string) (*models.AnalysisPayload, entitlement.Decision, error)
	Compare(ctx context.Context, tickerA, tickerB string) (*models.AnalysisPayload, entitlement.Decision, error)
	Refresh(ctx context.Context) (*models.AnalysisPayload, entitlement.Decision, error)
	VerifyLicense(ctx context.Context, key string) (*api.LicenseResult, error)
}

type analysisService struct {
	client  api.Client
	session sessionStore
	quota   quotaTracker
	cache   handoffStore
	ledger  *LedgerSync
	log     logging.Logger
	timeout time.Duration

	// inFlight blocks re-entry while a metered request is outstanding,
	// the CLI equivalent of disabling the submit button.
	inFlight atomic.Bool
}

// NewAnalysisService wires the analysis flow. timeout bounds each metered
// request; on expiry the action surfaces api.ErrTimeout and must not have
// charged anything.
func NewAnalysisService(
	client api.Client,
	session sessionStore,
	quota quotaTracker,
	cache handoffStore,
	ledger *LedgerSync,
	log logging.Logger,
	timeout time.Duration,
) AnalysisService {
	return &analysisService{
		client:  client,
		session: session,
		quota:   quota,
		cache:   cache,
		ledger:  ledger,
		log:     log,
		timeout: timeout,
	}
}

func (s *analysisService) Analyze(ctx context.Context, ticker string) (*models.AnalysisPayload, entitlement.Decision, error) {
	ticker = normalizeTicker(ticker)
	return s.run(ctx, models.ActionAnalyze, func(ctx context.Context) (*api.AnalysisResult, error) {
		return s.client.Analyze(ctx, ticker)
	})
}

func (s *analysisService) Compare(ctx context.Context, tickerA, tickerB string) (*models.AnalysisPayload, entitlement.Decision, error) {
	tickerA, tickerB = normalizeTicker(tickerA), normalizeTicker(tickerB)
	return s.run(ctx, models.ActionCompare, func(ctx context.Context) (*api.AnalysisResult, error) {
		return s.client.Compare(ctx, tickerA, tickerB)
	})
}

// Refresh re-fetches whatever occupies the handoff slot at full price: a
// single ticker re-runs as a refresh (cost 1), a stored comparison pair
// re-runs as a compare (cost 2).
func (s *analysisService) Refresh(ctx context.Context) (*models.AnalysisPayload, entitlement.Decision, error) {
	current, err := s.cache.Current(ctx)
	if err != nil {
		return nil, entitlement.Allow, err
	}
	if current == "" {
		return nil, entitlement.Allow, fmt.Errorf("nothing to refresh: %w", common.ErrNotFound)
	}

	if a, b, ok := strings.Cut(current, "+"); ok {
		return s.run(ctx, models.ActionCompare, func(ctx context.Context) (*api.AnalysisResult, error) {
			return s.client.Compare(ctx, a, b)
		})
	}
	return s.run(ctx, models.ActionRefresh, func(ctx context.Context) (*api.AnalysisResult, error) {
		return s.client.Analyze(ctx, current)
	})
}

// VerifyLicense redeems a key. Not metered, so not gated; a valid key's
// credit grant is authoritative and applied immediately.
func (s *analysisService) VerifyLicense(ctx context.Context, key string) (*api.LicenseResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	res, err := s.client.VerifyLicense(ctx, key)
	if err != nil {
		return nil, err
	}
	if res.Valid {
		s.ledger.Apply(ctx, res.Credits)
	}
	return res, nil
}

func (s *analysisService) run(ctx context.Context, action models.Action, call func(ctx context.Context) (*api.AnalysisResult, error)) (*models.AnalysisPayload, entitlement.Decision, error) {
	if !s.inFlight.CompareAndSwap(false, true) {
		return nil, entitlement.Allow, common.ErrBusy
	}
	defer s.inFlight.Store(false)

	// Fresh snapshots on every attempt: balances and quota change between
	// attempts, so the decision is never cached.
	sess := s.session.Snapshot()
	remaining := 0
	if !sess.Authenticated {
		var err error
		remaining, err = s.quota.Remaining(ctx)
		if err != nil {
			return nil, entitlement.Allow, err
		}
	}

	predicted := entitlement.Check(sess, remaining, action)
	if predicted != entitlement.Allow {
		return nil, predicted, nil
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	res, err := call(callCtx)
	if err != nil {
		if dec, ok := s.verdictDecision(ctx, predicted, err); ok {
			return nil, dec, nil
		}
		return nil, entitlement.Allow, err
	}

	// Entitlement is consumed on success, not on the decision.
	if sess.Authenticated {
		if res.CreditsLeft != nil {
			s.ledger.Apply(ctx, *res.CreditsLeft)
		} else {
			s.log.Warn(ctx, "metered response missing credits_left", "action", action.String())
		}
	} else {
		if err := s.ledger.ConsumeGuest(ctx); err != nil {
			s.log.Error(ctx, "failed to record guest trial", "err", err)
		}
	}

	payload := &models.AnalysisPayload{Ticker: res.Ticker, Body: res.Body, StoredAt: time.Now()}
	if err := s.cache.Store(ctx, res.Ticker, res.Body); err != nil {
		// The action succeeded and was charged; a broken handoff slot only
		// costs the revisit, not the result we already hold.
		s.log.Error(ctx, "failed to store analysis handoff", "ticker", res.Ticker, "err", err)
	}
	return payload, entitlement.Allow, nil
}

// verdictDecision maps a server verdict onto a gate decision. Returns
// ok=false for transport errors, which the caller surfaces unchanged.
// The server's answer always wins: a disagreement with the local
// pre-check is logged, never swallowed, and a 401 resets the session.
func (s *analysisService) verdictDecision(ctx context.Context, predicted entitlement.Decision, err error) (entitlement.Decision, bool) {
	var dec entitlement.Decision
	switch {
	case errors.Is(err, api.ErrPaymentRequired):
		dec = entitlement.RequirePayment
	case errors.Is(err, api.ErrVerificationRequired):
		dec = entitlement.RequireVerification
	case errors.Is(err, api.ErrLoginRequired):
		dec = entitlement.RequireLogin
	case errors.Is(err, api.ErrUnauthenticated):
		s.session.Invalidate()
		dec = entitlement.RequireLogin
	default:
		return entitlement.Allow, false
	}

	if dec != predicted {
		s.log.Warn(ctx, "server verdict overrides local entitlement decision",
			"predicted", predicted.String(), "verdict", dec.String())
	}
	return dec, true
}

func normalizeTicker(t string) string {
	return strings.ToUpper(strings.TrimSpace(t))
}
