// Package cli implements the interactive TickerLens client: a REPL whose
// commands mirror the product's pages. Commands share no in-memory state
// with one another beyond the stores wired here; an analysis crosses from
// the command that fetched it to the report command through the durable
// handoff slot.
package cli

import (
	"bufio"
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"

	"github.com/tickerlens/tickerlens/internal/client/api"
	"github.com/tickerlens/tickerlens/internal/client/config"
	"github.com/tickerlens/tickerlens/internal/client/handoff"
	"github.com/tickerlens/tickerlens/internal/client/models"
	"github.com/tickerlens/tickerlens/internal/client/quota"
	handoffrepo "github.com/tickerlens/tickerlens/internal/client/repositories/handoff"
	"github.com/tickerlens/tickerlens/internal/client/repositories/metadata"
	"github.com/tickerlens/tickerlens/internal/client/services"
	"github.com/tickerlens/tickerlens/internal/client/session"
	"github.com/tickerlens/tickerlens/internal/client/storage"
	"github.com/tickerlens/tickerlens/internal/logging"

	_ "modernc.org/sqlite"
)

// clientIDKey is the metadata key holding the stable per-install id.
const clientIDKey = "client_id"

// sessionIface is the slice of the session store the commands use.
// Narrowed to an interface so command tests can inject a fake.
type sessionIface interface {
	Snapshot() models.Session
	Validate(ctx context.Context) (models.Session, error)
	Login(ctx context.Context, email string, password []byte) (models.Session, error)
	Logout(ctx context.Context)
}

type quotaIface interface {
	Remaining(ctx context.Context) (int, error)
}

type reportIface interface {
	Current(ctx context.Context) (string, error)
	Read(ctx context.Context, ticker string) (*models.AnalysisPayload, error)
	Clear(ctx context.Context) error
}

type App struct {
	config    *config.Config
	log       logging.Logger
	apiClient api.Client
	session   sessionIface
	quota     quotaIface
	cache     reportIface
	analysis  services.AnalysisService
	reader    *bufio.Reader
}

func NewApp(c *config.Config) (*App, error) {
	ctx := context.Background()
	logger := logging.New(os.Stderr, slog.LevelWarn)

	db, err := storage.InitDatabase(ctx, c.DatabasePath)
	if err != nil {
		log.Printf("error initializing database: %s", err.Error())
		return nil, err
	}

	metadataRepo := metadata.NewSQLiteRepository(db)

	clientID, err := ensureClientID(ctx, metadataRepo)
	if err != nil {
		return nil, err
	}

	apiClient, err := api.NewHTTPClient(c.BaseURL, c.RequestTimeout, clientID)
	if err != nil {
		return nil, err
	}

	sessionStore := session.NewStore(apiClient, logger)
	quotaTracker := quota.NewTracker(metadataRepo, c.GuestQuota)
	cache := handoff.NewCache(handoffrepo.NewSQLiteRepository(db))
	ledger := services.NewLedgerSync(sessionStore, quotaTracker, logger)
	analysis := services.NewAnalysisService(apiClient, sessionStore, quotaTracker, cache, ledger, logger, c.RequestTimeout)

	return &App{
		config:    c,
		log:       logger,
		apiClient: apiClient,
		session:   sessionStore,
		quota:     quotaTracker,
		cache:     cache,
		analysis:  analysis,
		reader:    bufio.NewReader(os.Stdin),
	}, nil
}

// ensureClientID returns the persisted install id, minting one on first run.
func ensureClientID(ctx context.Context, repo metadata.Repository) (string, error) {
	raw, err := repo.Get(ctx, clientIDKey)
	if err != nil {
		return "", err
	}
	if raw != nil {
		return string(raw), nil
	}

	id := uuid.NewString()
	if err := repo.Set(ctx, clientIDKey, []byte(id)); err != nil {
		return "", err
	}
	return id, nil
}

func (a *App) Run(ctx context.Context) {
	defer a.apiClient.Close()

	a.startupValidate(ctx)

	scanner := bufio.NewScanner(os.Stdin)
	runREPL(ctx, a, a.statusLine, scanner)
}

// startupValidate reconciles the session against the server before the
// first prompt. Transient failures are retried a few times with backoff.
// A persistent failure leaves the app usable as a guest; prior local
// state is never cleared over a network blip.
func (a *App) startupValidate(ctx context.Context) {
	backoff := retry.WithMaxRetries(2, retry.NewExponential(500*time.Millisecond))

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		if _, err := a.session.Validate(ctx); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		log.Printf("Could not reach the server (%v), continuing offline", err)
	}
}

func (a *App) isLoggedIn() bool {
	return a.session.Snapshot().Authenticated
}
