package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	License(ctx context.Context) error
	Analyze(ctx context.Context, args []string) error
	Compare(ctx context.Context, args []string) error
	Refresh(ctx context.Context) error
	Report(ctx context.Context, args []string) error
	Back(ctx context.Context) error
	Status(ctx context.Context) error
}

// runREPL starts a read–eval–print loop for the TickerLens CLI.
//
// It reads a line from the provided scanner, parses the first token as the
// command, and dispatches to methods on 'a' with the remaining tokens as
// arguments. Unknown commands are reported back to the user. The loop exits
// on scanner EOF or when the user types "exit" or "quit".
//
// Prompt & Commands
//
// The prompt shows the current status (from statusFn) and accepts commands:
//
//	Not logged in:
//	  - help             — show available commands
//	  - analyze [TICKER] — run a stock analysis
//	  - compare [A B]    — run a two-stock comparison
//	  - refresh          — re-run the last analysis
//	  - report [TICKER]  — show the stored analysis report
//	  - back             — discard the stored report
//	  - status           — show account and quota state
//	  - login            — authenticate
//	  - exit | quit      — leave the program
//
//	Logged in:
//	  - the same, plus license (redeem a license key) and logout
//
// Any errors returned by command handlers are ignored here; handlers should
// log their own errors. This keeps the REPL loop resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("tl> %s > ", statusFn()))
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]
		args := parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: analyze, compare, refresh, report, back, status, license, logout, exit")
			} else {
				printlnFn("Available commands: analyze, compare, refresh, report, back, status, login, exit")
			}

		case "a", "analyze":
			_ = a.Analyze(ctx, args)

		case "c", "compare":
			_ = a.Compare(ctx, args)

		case "refresh":
			_ = a.Refresh(ctx)

		case "r", "report":
			_ = a.Report(ctx, args)

		case "back":
			_ = a.Back(ctx)

		case "s", "status":
			_ = a.Status(ctx)

		case "login":
			_ = a.Login(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "license":
			_ = a.License(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
