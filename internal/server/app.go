// Package server initializes and runs the application server. It opens the
// database, runs migrations, configures the default object store and mail
// transport, wires the service layer, and starts the HTTP API with graceful
// shutdown on SIGINT/SIGTERM.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/dmitrijs2005/labbook/internal/logging"
	"github.com/dmitrijs2005/labbook/internal/server/config"
	"github.com/dmitrijs2005/labbook/internal/server/httpapi"
	"github.com/dmitrijs2005/labbook/internal/server/mail"
	"github.com/dmitrijs2005/labbook/internal/server/models"
	"github.com/dmitrijs2005/labbook/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/labbook/internal/server/services"
	"github.com/dmitrijs2005/labbook/internal/server/storage"
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	server *httpapi.Server
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {

	logger := newLogger(cfg)

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("db ping error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	defaultStore, err := newDefaultStore(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("storage init error: %w", err)
	}

	dispatcher := mail.NewDispatcher(models.SMTPSettings{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUser,
		Password: cfg.SMTPPassword,
		From:     cfg.MailFrom,
	}, !cfg.IsProduction(), logger)

	users := services.NewUserService(db, rm, cfg)
	reset := services.NewResetService(db, rm, dispatcher, cfg, logger)
	notebook := services.NewNotebookService(db, rm)
	selector := services.NewStoreSelector(defaultStore, logger)
	attachments := services.NewAttachmentService(db, rm, notebook, selector)
	reports := services.NewReportService(notebook, dispatcher, cfg, logger)

	srv := httpapi.NewServer(cfg.Addr(), logger, users, reset, notebook, attachments, reports)

	return &App{config: cfg, logger: logger, db: db, server: srv}, nil
}

// newLogger emits JSON in production and human-readable text elsewhere.
func newLogger(cfg *config.Config) logging.Logger {
	var handler slog.Handler
	if cfg.IsProduction() {
		handler = slog.NewJSONHandler(os.Stdout, nil)
	} else {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	}
	return logging.NewSlogLogger(slog.New(handler))
}

// newDefaultStore picks the server-wide object store: S3 when configured,
// otherwise the local upload directory.
func newDefaultStore(ctx context.Context, cfg *config.Config, logger logging.Logger) (storage.Store, error) {
	if cfg.S3Enabled {
		return storage.NewS3Store(ctx, models.StorageSettings{
			Enabled:   true,
			Endpoint:  cfg.S3Endpoint,
			Region:    cfg.S3Region,
			Bucket:    cfg.S3Bucket,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		}, logger)
	}
	return storage.NewLocalStore(cfg.UploadDir)
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "starting app", "addr", app.config.Addr(), "env", app.config.Environment)

	app.initSignalHandler(cancelFunc)

	if err := app.server.Run(ctx); err != nil {
		app.logger.Error(ctx, "http server stopped", "error", err.Error())
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err.Error())
	}
}
