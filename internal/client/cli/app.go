// Package cli implements the interactive labbook client: a small REPL over
// the session store with login, register, logout, whoami, and status
// commands.
package cli

import (
	"bufio"
	"context"
	"database/sql"
	"log/slog"
	"os"

	"github.com/dmitrijs2005/labbook/internal/client/api"
	"github.com/dmitrijs2005/labbook/internal/client/config"
	"github.com/dmitrijs2005/labbook/internal/client/session"
	"github.com/dmitrijs2005/labbook/internal/client/statedb"
	"github.com/dmitrijs2005/labbook/internal/logging"
)

type App struct {
	config *config.Config
	client api.Client
	store  *session.Store
	db     *sql.DB
	reader *bufio.Reader
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {

	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	db, err := statedb.Open(ctx, cfg.StateDBPath)
	if err != nil {
		return nil, err
	}

	apiClient := api.NewRestClient(cfg.ServerURL, cfg.RequestTimeout)
	store := session.NewStore(apiClient, db, logger)

	return &App{
		config: cfg,
		client: apiClient,
		store:  store,
		db:     db,
		reader: bufio.NewReader(os.Stdin),
	}, nil
}

func (a *App) isLoggedIn() bool {
	return a.store.Snapshot().Authenticated()
}

func (a *App) Run(ctx context.Context) error {
	defer a.db.Close()
	defer a.store.Dispose()

	if err := a.store.Init(ctx); err != nil {
		return err
	}

	runREPL(ctx, a, a.statusLine, a.reader)
	return nil
}
