package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gagliardetto/solana-go"
	"github.com/go-chi/chi/v5"

	"github.com/TanmayDhobale/splvault/internal/host"
	"github.com/TanmayDhobale/splvault/internal/store"
	"github.com/TanmayDhobale/splvault/internal/vault"
)

type errorResponse struct {
	Error string  `json:"error"`
	Code  *uint32 `json:"code,omitempty"`
}

type unitResponse struct {
	UnitID string `json:"unit_id"`
	Status string `json:"status"`
}

type vaultView struct {
	Address        string  `json:"address"`
	Owner          string  `json:"owner"`
	TokenMint      string  `json:"token_mint"`
	TokenAccount   string  `json:"token_account"`
	TotalDeposited uint64  `json:"total_deposited"`
	IsClosed       bool    `json:"is_closed"`
	Bump           uint8   `json:"bump"`
	CustodyAmount  *uint64 `json:"custody_amount,omitempty"`
}

type balanceView struct {
	Address string `json:"address"`
	User    string `json:"user"`
	Vault   string `json:"vault"`
	Balance uint64 `json:"balance"`
	Bump    uint8  `json:"bump"`
}

type accountView struct {
	Address  string `json:"address"`
	Owner    string `json:"owner"`
	Lamports uint64 `json:"lamports"`
	Data     []byte `json:"data,omitempty"`
}

type seedRequest struct {
	Accounts []accountView `json:"accounts"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps the error taxonomies onto HTTP statuses: unit-level
// rejections are bad requests, domain kinds carry their numeric code,
// absent records are 404s and everything else stays opaque.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, host.ErrMalformedUnit),
		errors.Is(err, host.ErrMissingSignature),
		errors.Is(err, host.ErrBadSignature),
		errors.Is(err, host.ErrUnknownProgram):
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	if code, ok := vault.ErrorCode(err); ok {
		status := http.StatusUnprocessableEntity
		switch {
		case errors.Is(err, vault.ErrUnauthorizedAccess):
			status = http.StatusForbidden
		case errors.Is(err, vault.ErrAccountNotInitialized):
			status = http.StatusNotFound
		}
		s.writeJSON(w, status, errorResponse{Error: err.Error(), Code: &code})
		return
	}

	if errors.Is(err, store.ErrNotFound) {
		s.writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
		return
	}

	s.log.Error(r.Context(), "request failed", "error", err)
	s.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleSubmitUnit(w http.ResponseWriter, r *http.Request) {
	var signed host.SignedUnit
	if err := json.NewDecoder(r.Body).Decode(&signed); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed request body"})
		return
	}

	unit, err := s.executor.Execute(r.Context(), &signed)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	operator, _ := OperatorFromContext(r.Context())
	s.log.Info(r.Context(), "unit accepted", "unit", unit.ID, "operator", operator)
	s.writeJSON(w, http.StatusOK, unitResponse{UnitID: unit.ID, Status: "committed"})
}

func (s *Server) handleSeedAccounts(w http.ResponseWriter, r *http.Request) {
	var req seedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed request body"})
		return
	}
	if len(req.Accounts) == 0 {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "no accounts to seed"})
		return
	}

	records := make([]*store.Record, 0, len(req.Accounts))
	for _, v := range req.Accounts {
		address, err := solana.PublicKeyFromBase58(v.Address)
		if err != nil {
			s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "bad account address " + v.Address})
			return
		}
		owner, err := solana.PublicKeyFromBase58(v.Owner)
		if err != nil {
			s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "bad account owner " + v.Owner})
			return
		}
		records = append(records, &store.Record{
			Address:  address,
			Owner:    owner,
			Lamports: v.Lamports,
			Data:     v.Data,
		})
	}

	if err := s.executor.Seed(r.Context(), records...); err != nil {
		s.writeError(w, r, err)
		return
	}

	operator, _ := OperatorFromContext(r.Context())
	s.log.Info(r.Context(), "accounts seeded", "count", len(records), "operator", operator)
	s.writeJSON(w, http.StatusOK, map[string]int{"seeded": len(records)})
}

func (s *Server) handleListVaults(w http.ResponseWriter, r *http.Request) {
	records, err := s.accounts.ListByOwner(r.Context(), s.executor.Params().ProgramID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	views := []vaultView{}
	for _, rec := range records {
		if len(rec.Data) != vault.VaultStateSize {
			continue
		}
		state, err := vault.DecodeVaultState(rec.Data)
		if err != nil {
			continue
		}
		views = append(views, vaultViewFrom(rec.Address, state))
	}
	s.writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleGetVault(w http.ResponseWriter, r *http.Request) {
	address, ok := s.pathAddress(w, r)
	if !ok {
		return
	}

	rec, err := s.accounts.Get(r.Context(), address)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	state, err := vault.DecodeVaultState(rec.Data)
	if err != nil {
		s.writeJSON(w, http.StatusNotFound, errorResponse{Error: "no vault record at " + address.String()})
		return
	}

	view := vaultViewFrom(address, state)
	if custody, err := s.accounts.Get(r.Context(), state.TokenAccount); err == nil {
		if ta, err := vault.DecodeTokenAccount(custody.Data); err == nil {
			amount := ta.Amount
			view.CustodyAmount = &amount
		}
	}
	s.writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleListBalances(w http.ResponseWriter, r *http.Request) {
	address, ok := s.pathAddress(w, r)
	if !ok {
		return
	}

	rec, err := s.accounts.Get(r.Context(), address)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if _, err := vault.DecodeVaultState(rec.Data); err != nil {
		s.writeJSON(w, http.StatusNotFound, errorResponse{Error: "no vault record at " + address.String()})
		return
	}

	records, err := s.accounts.ListByOwner(r.Context(), s.executor.Params().ProgramID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	views := []balanceView{}
	for _, rec := range records {
		if len(rec.Data) != vault.UserBalanceSize {
			continue
		}
		ub, err := vault.DecodeUserBalance(rec.Data)
		if err != nil || !ub.Vault.Equals(address) {
			continue
		}
		views = append(views, balanceView{
			Address: rec.Address.String(),
			User:    ub.User.String(),
			Vault:   ub.Vault.String(),
			Balance: ub.Balance,
			Bump:    ub.Bump,
		})
	}
	s.writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleGetAccount(w http.ResponseWriter, r *http.Request) {
	address, ok := s.pathAddress(w, r)
	if !ok {
		return
	}

	rec, err := s.accounts.Get(r.Context(), address)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, accountView{
		Address:  rec.Address.String(),
		Owner:    rec.Owner.String(),
		Lamports: rec.Lamports,
		Data:     rec.Data,
	})
}

// pathAddress parses the {address} URL segment, answering 400 itself when
// the segment is not a key.
func (s *Server) pathAddress(w http.ResponseWriter, r *http.Request) (solana.PublicKey, bool) {
	raw := chi.URLParam(r, "address")
	address, err := solana.PublicKeyFromBase58(raw)
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "bad address " + raw})
		return solana.PublicKey{}, false
	}
	return address, true
}

func vaultViewFrom(address solana.PublicKey, state *vault.VaultState) vaultView {
	return vaultView{
		Address:        address.String(),
		Owner:          state.Owner.String(),
		TokenMint:      state.TokenMint.String(),
		TokenAccount:   state.TokenAccount.String(),
		TotalDeposited: state.TotalDeposited,
		IsClosed:       state.IsClosed,
		Bump:           state.Bump,
	}
}
