package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/common-nighthawk/go-figure"
	"github.com/dmitrijs2005/careercompass/internal/client/client"
	"github.com/dmitrijs2005/careercompass/internal/client/config"
	"github.com/dmitrijs2005/careercompass/internal/client/guard"
	"github.com/dmitrijs2005/careercompass/internal/client/services"
	"github.com/dmitrijs2005/careercompass/internal/client/storage"
	"github.com/dmitrijs2005/careercompass/internal/client/tokenstore"
	"github.com/dmitrijs2005/careercompass/internal/cryptox"
	"github.com/dmitrijs2005/careercompass/internal/logging"
)

const appName = "CareerCompass"

type App struct {
	config *config.Config
	auth   services.AuthService
	career services.CareerService
	tokens tokenstore.TokenSource
	log    logging.Logger
	reader *bufio.Reader
	out    io.Writer
	close  func() error
}

// NewApp wires storage, the HTTP client and the services from c.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	log := logging.New(c.LogFormat, c.LogLevel, os.Stderr)

	store, closeStore, err := openTokenStore(ctx, c, log)
	if err != nil {
		log.Error(ctx, "token store unavailable", "error", err)
		return nil, err
	}

	apiClient := client.NewHTTPClient(c.APIBaseURL, store,
		client.WithTimeout(c.RequestTimeout),
		client.WithRateLimit(c.RateLimit, int(math.Ceil(c.RateLimit))),
		client.WithLogger(log),
	)

	notifier := &consoleNotifier{w: os.Stdout}
	as := services.NewAuthService(apiClient, store, services.WithNotifier(notifier), services.WithAuthLogger(log))
	cs := services.NewCareerService(apiClient)

	return &App{
		config: c,
		auth:   as,
		career: cs,
		tokens: store,
		log:    log,
		reader: bufio.NewReader(os.Stdin),
		out:    os.Stdout,
		close:  closeStore,
	}, nil
}

// openTokenStore returns the sealed SQLite store, or a memory store for
// ephemeral runs.
func openTokenStore(ctx context.Context, c *config.Config, log logging.Logger) (tokenstore.Store, func() error, error) {
	if c.Ephemeral {
		return tokenstore.NewMemoryStore(), func() error { return nil }, nil
	}

	key, err := cryptox.LoadOrCreateKey(c.KeyPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load key: %w", err)
	}
	sealer, err := cryptox.NewSealer(key)
	if err != nil {
		return nil, nil, err
	}

	db, err := storage.InitDatabase(ctx, c.DatabasePath)
	if err != nil {
		return nil, nil, fmt.Errorf("init database: %w", err)
	}
	return tokenstore.NewSQLiteStore(db, sealer, log), db.Close, nil
}

// Run restores the previous session and blocks in the REPL until the user
// exits or input ends.
func (a *App) Run(ctx context.Context) {
	defer func() {
		if err := a.close(); err != nil {
			a.log.Warn(ctx, "close token store", "error", err)
		}
	}()

	printBanner(a.out)
	a.auth.Init(ctx)
	if s := a.auth.Session(); s.IsAuthenticated && s.User != nil {
		fmt.Fprintf(a.out, "Welcome back, %s!\n", s.User.DisplayName())
	}
	fmt.Fprintln(a.out, "Type 'help' for commands.")

	runREPL(ctx, a, a.status, a.reader)
}

func printBanner(w io.Writer) {
	fmt.Fprintln(w, figure.NewFigure(appName, "cybermedium", true).String())
}

func (a *App) isLoggedIn() bool {
	return a.auth.IsAuthenticated()
}

func (a *App) access(ctx context.Context, destination string) guard.Decision {
	return guard.Check(ctx, a.tokens, destination)
}

// status is shown in the prompt.
func (a *App) status() string {
	s := a.auth.Session()
	if !s.IsAuthenticated || s.User == nil {
		return "guest"
	}
	return s.User.Username
}

// consoleNotifier prints session notifications.
type consoleNotifier struct {
	w io.Writer
}

func (n *consoleNotifier) Success(msg string) { fmt.Fprintln(n.w, msg) }
func (n *consoleNotifier) Error(msg string)   { fmt.Fprintln(n.w, "Error:", msg) }
