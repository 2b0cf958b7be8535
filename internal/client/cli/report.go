package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/tickerlens/tickerlens/internal/client/handoff"
)

// Report shows the stored analysis. With an argument it asks for that
// ticker specifically; a slot holding a different ticker reads as missing.
// The report comes from the durable slot, so it survives restarts; reading
// does not consume it and it can be reopened any number of times until the
// next analysis overwrites it.
func (a *App) Report(ctx context.Context, args []string) error {
	var ticker string
	if len(args) > 0 {
		ticker = strings.ToUpper(strings.TrimSpace(args[0]))
	} else {
		var err error
		ticker, err = a.cache.Current(ctx)
		if err != nil {
			log.Printf("error reading stored analysis: %s", err.Error())
			return nil
		}
	}
	if ticker == "" {
		printlnFn("No analysis stored. Run 'analyze TICKER' first.")
		return nil
	}

	payload, err := a.cache.Read(ctx, ticker)
	if errors.Is(err, handoff.ErrMissing) {
		printlnFn(fmt.Sprintf("No analysis for %s stored. Run 'analyze %s' first.", ticker, ticker))
		return nil
	}
	if err != nil {
		log.Printf("error reading stored analysis: %s", err.Error())
		return nil
	}

	printlnFn(renderReport(payload.Ticker, payload.Body))
	return nil
}

// Back discards the stored report, the equivalent of leaving the report
// page. The next 'report' will ask for a fresh analysis.
func (a *App) Back(ctx context.Context) error {
	if err := a.cache.Clear(ctx); err != nil {
		log.Printf("error clearing stored analysis: %s", err.Error())
		return nil
	}
	printlnFn("Back to search.")
	return nil
}

// renderReport formats a report body for the terminal. Known headline
// fields get their own lines; anything else falls back to the raw JSON so
// new server fields are never silently dropped.
func renderReport(ticker string, body json.RawMessage) string {
	var b bytes.Buffer
	fmt.Fprintf(&b, "=== %s ===\n", ticker)

	known := false
	if v := gjson.GetBytes(body, "recommendation"); v.Exists() {
		fmt.Fprintf(&b, "Recommendation: %s\n", v.String())
		known = true
	}
	if v := gjson.GetBytes(body, "score"); v.Exists() {
		fmt.Fprintf(&b, "Score: %s\n", v.String())
		known = true
	}
	if v := gjson.GetBytes(body, "summary"); v.Exists() {
		fmt.Fprintf(&b, "Summary: %s\n", v.String())
		known = true
	}

	if !known {
		var pretty bytes.Buffer
		if err := json.Indent(&pretty, body, "", "  "); err == nil {
			b.Write(pretty.Bytes())
		} else {
			b.Write(body)
		}
		b.WriteByte('\n')
	}

	return b.String()
}
