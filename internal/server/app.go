// Package server assembles and runs the vault daemon: configuration, the
// account store backend, the execution stack, the archive hook and the
// HTTP API.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gagliardetto/solana-go"

	"github.com/TanmayDhobale/splvault/internal/api"
	"github.com/TanmayDhobale/splvault/internal/archive"
	"github.com/TanmayDhobale/splvault/internal/common"
	"github.com/TanmayDhobale/splvault/internal/host"
	"github.com/TanmayDhobale/splvault/internal/logging"
	"github.com/TanmayDhobale/splvault/internal/server/config"
	"github.com/TanmayDhobale/splvault/internal/store"
	"github.com/TanmayDhobale/splvault/internal/vault"
)

type App struct {
	config   *config.Config
	logger   logging.Logger
	accounts store.AccountStore
	bank     *host.Bank
	api      *api.Server
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	slog := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(slog)

	programID := common.DevProgramID()
	if c.ProgramID != "" {
		pk, err := solana.PublicKeyFromBase58(c.ProgramID)
		if err != nil {
			return nil, fmt.Errorf("program id: %w", err)
		}
		programID = pk
	}
	params := vault.DefaultParams(programID)

	accounts, err := openStore(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("store init error: %w", err)
	}

	tokens := host.NewTokenEngine(params, logger)
	alloc := host.NewSystemAllocator(host.DefaultRent(), params, logger)
	engine := vault.NewEngine(params, tokens, alloc, logger)
	bank := host.NewBank(accounts, engine, logger)

	if c.S3Bucket != "" {
		archiver := archive.NewArchiver(archive.Config{
			Bucket:       c.S3Bucket,
			Region:       c.S3Region,
			BaseEndpoint: c.S3BaseEndpoint,
			AccessKey:    c.S3RootUser,
			SecretKey:    c.S3RootPassword,
		}, programID, accounts, logger)
		bank.OnVaultClosed(archiver.Hook())
	}

	apiServer := api.NewServer(bank, accounts, []byte(c.SecretKey), logger)

	return &App{config: c, logger: logger, accounts: accounts, bank: bank, api: apiServer}, nil
}

func openStore(ctx context.Context, c *config.Config) (store.AccountStore, error) {
	switch c.StoreBackend {
	case "", "memory":
		return store.NewMemoryStore(), nil
	case "sqlite":
		return store.NewSQLiteStore(ctx, c.StoreDSN)
	case "postgres":
		return store.NewPostgresStore(ctx, c.StoreDSN)
	default:
		return nil, fmt.Errorf("unknown store backend %q", c.StoreBackend)
	}
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {

	srv := &http.Server{
		Addr:    app.config.EndpointAddr,
		Handler: app.api.Router(),
	}

	go func() {
		<-ctx.Done()
		app.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, release := context.WithTimeout(context.Background(), 5*time.Second)
		defer release()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			app.logger.Error(ctx, "HTTP server shutdown", "error", err)
		}
	}()

	app.logger.Info(ctx, "Starting HTTP server", "address", app.config.EndpointAddr)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.accounts.Close(); err != nil {
		app.logger.Error(ctx, "store close error", "error", err)
	}
}
