package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/tickerlens/tickerlens/internal/client/api"
	"github.com/tickerlens/tickerlens/internal/client/entitlement"
	"github.com/tickerlens/tickerlens/internal/client/models"
	"github.com/tickerlens/tickerlens/internal/common"
)

// Analyze runs a single-stock analysis. The ticker comes from the command
// argument or an interactive prompt. On success the report is stored and a
// hint points at the report command.
func (a *App) Analyze(ctx context.Context, args []string) error {
	ticker, err := a.tickerArg(args, "Enter ticker (e.g. AAPL)")
	if err != nil {
		return err
	}

	payload, decision, err := a.analysis.Analyze(ctx, ticker)
	a.renderOutcome(payload, decision, err)
	return nil
}

// Compare runs a two-stock comparison. It costs more than a single
// analysis, so a balance that covers analyze may still be short here.
func (a *App) Compare(ctx context.Context, args []string) error {
	var first, second string
	var err error

	if len(args) >= 2 {
		first, second = args[0], args[1]
	} else {
		first, err = a.tickerArg(args, "Enter first ticker")
		if err != nil {
			return err
		}
		second, err = GetSimpleText(a.reader, "Enter second ticker", os.Stdout)
		if err != nil {
			return err
		}
	}

	payload, decision, err := a.analysis.Compare(ctx, first, second)
	a.renderOutcome(payload, decision, err)
	return nil
}

// Refresh re-runs the stored analysis at full price.
func (a *App) Refresh(ctx context.Context) error {
	payload, decision, err := a.analysis.Refresh(ctx)
	if errors.Is(err, common.ErrNotFound) {
		printlnFn("Nothing to refresh. Run an analysis first.")
		return nil
	}
	a.renderOutcome(payload, decision, err)
	return nil
}

// tickerArg returns the first argument, falling back to an interactive
// prompt when the command was given without one.
func (a *App) tickerArg(args []string, prompt string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	return getSimpleText(a.reader, prompt, os.Stdout)
}

// renderOutcome turns the analysis result triple into user-facing text.
// Exactly one of the three aspects fires: an error, a blocked decision, or
// a stored payload.
func (a *App) renderOutcome(payload *models.AnalysisPayload, decision entitlement.Decision, err error) {
	if err != nil {
		switch {
		case errors.Is(err, common.ErrBusy):
			printlnFn("Still working on the previous request, hold on.")
		case errors.Is(err, api.ErrTimeout):
			printlnFn("The analysis took too long and was cancelled. Nothing was charged; try again.")
		case errors.Is(err, api.ErrUnavailable):
			printlnFn("The server is unreachable right now. Nothing was charged; try again in a moment.")
		default:
			log.Printf("analysis failed: %s", err.Error())
		}
		return
	}

	if decision != entitlement.Allow {
		printlnFn(decisionGuidance(decision))
		return
	}

	printlnFn(fmt.Sprintf("Analysis for %s is ready. Type 'report' to read it.", payload.Ticker))
}

// decisionGuidance maps a blocked entitlement decision to the next step
// the user can actually take.
func decisionGuidance(d entitlement.Decision) string {
	switch d {
	case entitlement.RequireLogin:
		return "You have used all free analyses. Log in to continue ('login')."
	case entitlement.RequirePayment:
		return "Not enough credits for this action. Redeem a license key ('license') to top up."
	case entitlement.RequireVerification:
		return "Verify your email first. Check your inbox for the verification link."
	default:
		return "This action is not available right now."
	}
}
