// Package api serves the daemon's HTTP surface: unit submission, operator
// seeding and read-only views over the ledger, behind bearer-token auth.
package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/TanmayDhobale/splvault/internal/host"
	"github.com/TanmayDhobale/splvault/internal/logging"
	"github.com/TanmayDhobale/splvault/internal/store"
	"github.com/TanmayDhobale/splvault/internal/vault"
)

// UnitExecutor is the write path behind the API. *host.Bank implements it.
type UnitExecutor interface {
	Execute(ctx context.Context, signed *host.SignedUnit) (*host.Unit, error)
	Seed(ctx context.Context, records ...*store.Record) error
	Params() vault.Params
}

// Server holds the handlers and their collaborators.
type Server struct {
	executor UnitExecutor
	accounts store.AccountStore
	secret   []byte
	log      logging.Logger
}

func NewServer(executor UnitExecutor, accounts store.AccountStore, secret []byte, log logging.Logger) *Server {
	return &Server{
		executor: executor,
		accounts: accounts,
		secret:   secret,
		log:      log.With("component", "api"),
	}
}

// Router assembles the chi mux.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/v1/healthz", s.handleHealthz)

	r.Group(func(r chi.Router) {
		r.Use(s.authenticate)

		r.Post("/v1/units", s.handleSubmitUnit)
		r.Post("/v1/accounts", s.handleSeedAccounts)
		r.Get("/v1/vaults", s.handleListVaults)
		r.Get("/v1/vaults/{address}", s.handleGetVault)
		r.Get("/v1/vaults/{address}/balances", s.handleListBalances)
		r.Get("/v1/accounts/{address}", s.handleGetAccount)
	})

	return r
}
