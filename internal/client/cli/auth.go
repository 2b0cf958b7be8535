package cli

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/tickerlens/tickerlens/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Login prompts the user for an email and password and authenticates
// against the server. The session cookie is kept by the HTTP client; the
// password byte slice is securely wiped before returning.
//
// A failed login leaves the app as a guest; any remaining free analyses
// are still usable.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	sess, err := a.session.Login(ctx, email, password)
	if err != nil {
		log.Printf("Login unsuccessfull: %s", err.Error())
		return nil
	}

	fmt.Printf("Welcome, %s!\n", sess.DisplayName())
	if !sess.Verified {
		fmt.Println("Your email is not verified yet. Check your inbox: analysis stays locked until you verify.")
	}
	return nil
}

// Logout ends the session locally and tells the server on a best-effort
// basis. The guest quota is whatever was left before the login; it is
// never replenished.
func (a *App) Logout(ctx context.Context) error {
	a.session.Logout(ctx)
	fmt.Println("Logged out.")
	return nil
}

// License prompts for a license key and redeems it. On success the server
// reports the new credit balance, which replaces the local one.
func (a *App) License(ctx context.Context) error {
	key, err := getSimpleText(a.reader, "Enter license key", os.Stdout)
	if err != nil {
		return err
	}

	res, err := a.analysis.VerifyLicense(ctx, key)
	if err != nil {
		log.Printf("License check failed: %s", err.Error())
		return nil
	}
	if !res.Valid {
		fmt.Println("That license key is not valid.")
		return nil
	}

	fmt.Printf("License accepted. Credits: %d\n", res.Credits)
	return nil
}

// Status prints the account and quota state in a longer form than the
// prompt line.
func (a *App) Status(ctx context.Context) error {
	sess := a.session.Snapshot()
	if !sess.Authenticated {
		remaining, err := a.quota.Remaining(ctx)
		if err != nil {
			log.Printf("error reading guest quota: %s", err.Error())
			return nil
		}
		fmt.Printf("Browsing as guest. Free analyses left: %d\n", remaining)
		if remaining == 0 {
			fmt.Println("Log in to keep analyzing.")
		}
		return nil
	}

	fmt.Printf("Logged in as %s. Credits: %d\n", sess.DisplayName(), sess.Credits)
	if !sess.Verified {
		fmt.Println("Email not verified: analysis is locked until you verify.")
	}
	return nil
}

// statusLine builds the short prompt status, e.g.
// "guest (2 free analyses left)" or "jane@x.io (5 credits, unverified)".
func (a *App) statusLine() string {
	sess := a.session.Snapshot()
	if !sess.Authenticated {
		remaining, err := a.quota.Remaining(context.Background())
		if err != nil {
			return "guest"
		}
		return fmt.Sprintf("guest (%d free analyses left)", remaining)
	}

	if !sess.Verified {
		return fmt.Sprintf("%s (%d credits, unverified)", sess.DisplayName(), sess.Credits)
	}
	return fmt.Sprintf("%s (%d credits)", sess.DisplayName(), sess.Credits)
}
