package api

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"

	"github.com/TanmayDhobale/splvault/internal/common"
	"github.com/TanmayDhobale/splvault/internal/host"
	"github.com/TanmayDhobale/splvault/internal/logging"
	"github.com/TanmayDhobale/splvault/internal/store"
	"github.com/TanmayDhobale/splvault/internal/vault"
)

func discardTestLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func fillKey(fill byte) solana.PublicKey {
	var k solana.PublicKey
	for i := range k {
		k[i] = fill
	}
	return k
}

// apiBed runs the full daemon stack behind an httptest server: real engine,
// bank and memory store, with fixtures pushed through the seed endpoint.
type apiBed struct {
	t      *testing.T
	srv    *httptest.Server
	token  string
	params vault.Params
	tokens *host.TokenEngine

	mint      solana.PublicKey
	ownerKey  solana.PrivateKey
	owner     solana.PublicKey
	ownerTok  solana.PublicKey
	vaultAddr solana.PublicKey
	vaultTok  solana.PublicKey

	userKey     solana.PrivateKey
	user        solana.PublicKey
	userTok     solana.PublicKey
	userBalance solana.PublicKey
}

func newAPIBed(t *testing.T) *apiBed {
	t.Helper()

	params := vault.DefaultParams(fillKey(0x90))
	log := discardTestLogger()
	secret := []byte("api-test-secret")

	tokens := host.NewTokenEngine(params, log)
	alloc := host.NewSystemAllocator(host.DefaultRent(), params, log)
	engine := vault.NewEngine(params, tokens, alloc, log)
	st := store.NewMemoryStore()
	bank := host.NewBank(st, engine, log)

	srv := httptest.NewServer(NewServer(bank, st, secret, log).Router())
	t.Cleanup(srv.Close)

	token, err := GenerateToken("ops-1", secret, time.Hour)
	require.NoError(t, err)

	b := &apiBed{
		t:      t,
		srv:    srv,
		token:  token,
		params: params,
		tokens: tokens,
		mint:   fillKey(0x0B),
	}

	b.ownerKey, err = solana.NewRandomPrivateKey()
	require.NoError(t, err)
	b.owner = b.ownerKey.PublicKey()
	b.ownerTok = fillKey(0x0D)
	b.vaultTok = fillKey(0x0C)

	b.vaultAddr, _, err = vault.DeriveVaultAddress(params.ProgramID, b.owner, b.mint)
	require.NoError(t, err)

	b.userKey, err = solana.NewRandomPrivateKey()
	require.NoError(t, err)
	b.user = b.userKey.PublicKey()
	b.userTok = fillKey(0x20)
	b.userBalance, _, err = vault.DeriveUserBalanceAddress(params.ProgramID, b.user, b.vaultAddr)
	require.NoError(t, err)

	return b
}

func (b *apiBed) request(method, path string, body any, auth bool) *http.Response {
	b.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(b.t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, b.srv.URL+path, &buf)
	require.NoError(b.t, err)
	if auth {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+b.token)
	}

	resp, err := b.srv.Client().Do(req)
	require.NoError(b.t, err)
	b.t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func (b *apiBed) decode(resp *http.Response, v any) {
	b.t.Helper()
	require.NoError(b.t, json.NewDecoder(resp.Body).Decode(v))
}

func viewOf(acc *vault.Account) accountView {
	return accountView{
		Address:  acc.Address.String(),
		Owner:    acc.Owner.String(),
		Lamports: acc.Lamports,
		Data:     acc.Data,
	}
}

// seedFixtures pushes the mint, wallets, holdings and custody through the
// seed endpoint, giving the user an opening balance of 1000 tokens.
func (b *apiBed) seedFixtures() {
	b.t.Helper()
	rent := host.DefaultRent()

	mintAcc, err := b.tokens.NewMintAccount(b.mint, b.owner, 1_000_000_000, 6, rent)
	require.NoError(b.t, err)
	ownerHolding, err := b.tokens.NewHolding(b.ownerTok, b.mint, b.owner, 0, rent)
	require.NoError(b.t, err)
	custody, err := b.tokens.NewHolding(b.vaultTok, b.mint, b.vaultAddr, 0, rent)
	require.NoError(b.t, err)
	userHolding, err := b.tokens.NewHolding(b.userTok, b.mint, b.user, 1000, rent)
	require.NoError(b.t, err)

	req := seedRequest{Accounts: []accountView{
		{Address: b.owner.String(), Owner: b.params.SystemProgramID.String(), Lamports: 10_000_000_000},
		{Address: b.user.String(), Owner: b.params.SystemProgramID.String(), Lamports: 10_000_000_000},
		viewOf(mintAcc), viewOf(ownerHolding), viewOf(custody), viewOf(userHolding),
	}}

	resp := b.request(http.MethodPost, "/v1/accounts", req, true)
	require.Equal(b.t, http.StatusOK, resp.StatusCode)
}

func (b *apiBed) submit(keys []solana.PrivateKey, ixs ...*vault.ProgramInstruction) *http.Response {
	b.t.Helper()

	su, err := host.NewSignedUnit(host.NewUnit(ixs...))
	require.NoError(b.t, err)
	for _, k := range keys {
		require.NoError(b.t, su.Sign(k))
	}
	return b.request(http.MethodPost, "/v1/units", su, true)
}

// bootstrap seeds, initializes the vault and deposits 100 from the user.
func (b *apiBed) bootstrap() {
	b.t.Helper()
	b.seedFixtures()

	init, err := vault.NewInitializeInstruction(b.params, b.owner, b.vaultAddr, b.vaultTok, b.mint)
	require.NoError(b.t, err)
	dep, err := vault.NewDepositInstruction(b.params, b.user, b.userTok, b.vaultTok, b.vaultAddr, b.userBalance, 100)
	require.NoError(b.t, err)

	resp := b.submit([]solana.PrivateKey{b.ownerKey, b.userKey}, init, dep)
	require.Equal(b.t, http.StatusOK, resp.StatusCode)
}

func TestHealthz_NoAuth(t *testing.T) {
	b := newAPIBed(t)

	resp := b.request(http.MethodGet, "/v1/healthz", nil, false)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	b.decode(resp, &body)
	require.Equal(t, "ok", body["status"])
}

func TestEndpointsRequireAuth(t *testing.T) {
	b := newAPIBed(t)

	for _, path := range []string{"/v1/vaults", "/v1/accounts/abc", "/v1/units"} {
		method := http.MethodGet
		if path == "/v1/units" {
			method = http.MethodPost
		}
		resp := b.request(method, path, nil, false)
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode, path)
	}
}

func TestFullLifecycleOverHTTP(t *testing.T) {
	b := newAPIBed(t)
	b.bootstrap()

	resp := b.request(http.MethodGet, "/v1/vaults", nil, true)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var vaults []vaultView
	b.decode(resp, &vaults)
	require.Len(t, vaults, 1)
	require.Equal(t, b.vaultAddr.String(), vaults[0].Address)
	require.Equal(t, uint64(100), vaults[0].TotalDeposited)
	require.False(t, vaults[0].IsClosed)

	resp = b.request(http.MethodGet, "/v1/vaults/"+b.vaultAddr.String(), nil, true)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var detail vaultView
	b.decode(resp, &detail)
	require.NotNil(t, detail.CustodyAmount)
	require.Equal(t, uint64(100), *detail.CustodyAmount)
	require.Equal(t, b.vaultTok.String(), detail.TokenAccount)

	resp = b.request(http.MethodGet, "/v1/vaults/"+b.vaultAddr.String()+"/balances", nil, true)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var balances []balanceView
	b.decode(resp, &balances)
	require.Len(t, balances, 1)
	require.Equal(t, b.user.String(), balances[0].User)
	require.Equal(t, uint64(100), balances[0].Balance)

	resp = b.request(http.MethodGet, "/v1/accounts/"+b.vaultTok.String(), nil, true)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var acc accountView
	b.decode(resp, &acc)
	require.Equal(t, b.params.TokenProgramID.String(), acc.Owner)
	require.Len(t, acc.Data, vault.TokenAccountSize)
}

func TestSubmitUnit_DomainErrorStatuses(t *testing.T) {
	t.Run("overdraft is unprocessable", func(t *testing.T) {
		b := newAPIBed(t)
		b.bootstrap()

		ix, err := vault.NewWithdrawInstruction(b.params, b.user, b.userTok, b.vaultTok, b.vaultAddr, b.userBalance, 150)
		require.NoError(t, err)
		resp := b.submit([]solana.PrivateKey{b.userKey}, ix)
		require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

		var body errorResponse
		b.decode(resp, &body)
		require.NotNil(t, body.Code)
		require.Equal(t, uint32(0), *body.Code)
	})

	t.Run("foreign sweep is forbidden", func(t *testing.T) {
		b := newAPIBed(t)
		b.bootstrap()

		strangerKey, err := solana.NewRandomPrivateKey()
		require.NoError(t, err)
		stranger := strangerKey.PublicKey()

		strangerTok := fillKey(0x33)
		holding, err := b.tokens.NewHolding(strangerTok, b.mint, stranger, 0, host.DefaultRent())
		require.NoError(t, err)
		resp := b.request(http.MethodPost, "/v1/accounts", seedRequest{Accounts: []accountView{viewOf(holding)}}, true)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		ix, err := vault.NewWithdrawAllInstruction(b.params, stranger, strangerTok, b.vaultTok, b.vaultAddr)
		require.NoError(t, err)
		resp = b.submit([]solana.PrivateKey{strangerKey}, ix)
		require.Equal(t, http.StatusForbidden, resp.StatusCode)

		var body errorResponse
		b.decode(resp, &body)
		require.NotNil(t, body.Code)
		require.Equal(t, uint32(1), *body.Code)
	})

	t.Run("withdraw without a deposit is not found", func(t *testing.T) {
		b := newAPIBed(t)
		b.bootstrap()

		strangerKey, err := solana.NewRandomPrivateKey()
		require.NoError(t, err)
		stranger := strangerKey.PublicKey()
		strangerTok := fillKey(0x34)

		holding, err := b.tokens.NewHolding(strangerTok, b.mint, stranger, 50, host.DefaultRent())
		require.NoError(t, err)
		resp := b.request(http.MethodPost, "/v1/accounts", seedRequest{Accounts: []accountView{viewOf(holding)}}, true)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		balanceAddr, _, err := vault.DeriveUserBalanceAddress(b.params.ProgramID, stranger, b.vaultAddr)
		require.NoError(t, err)
		ix, err := vault.NewWithdrawInstruction(b.params, stranger, strangerTok, b.vaultTok, b.vaultAddr, balanceAddr, 10)
		require.NoError(t, err)
		resp = b.submit([]solana.PrivateKey{strangerKey}, ix)
		require.Equal(t, http.StatusNotFound, resp.StatusCode)

		var body errorResponse
		b.decode(resp, &body)
		require.NotNil(t, body.Code)
		require.Equal(t, uint32(7), *body.Code)
	})

	t.Run("closed vault bounces deposits", func(t *testing.T) {
		b := newAPIBed(t)
		b.bootstrap()

		closeIx, err := vault.NewCloseInstruction(b.params, b.owner, b.ownerTok, b.vaultTok, b.vaultAddr)
		require.NoError(t, err)
		resp := b.submit([]solana.PrivateKey{b.ownerKey}, closeIx)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		dep, err := vault.NewDepositInstruction(b.params, b.user, b.userTok, b.vaultTok, b.vaultAddr, b.userBalance, 1)
		require.NoError(t, err)
		resp = b.submit([]solana.PrivateKey{b.userKey}, dep)
		require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

		var body errorResponse
		b.decode(resp, &body)
		require.NotNil(t, body.Code)
		require.Equal(t, uint32(3), *body.Code)
	})
}

func TestSubmitUnit_BadRequests(t *testing.T) {
	b := newAPIBed(t)
	b.bootstrap()

	t.Run("unparseable body", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodPost, b.srv.URL+"/v1/units", bytes.NewBufferString("{"))
		require.NoError(t, err)
		req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+b.token)
		resp, err := b.srv.Client().Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("garbage payload", func(t *testing.T) {
		resp := b.request(http.MethodPost, "/v1/units", host.SignedUnit{Payload: []byte{1, 2, 3}}, true)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("unsigned unit", func(t *testing.T) {
		ix, err := vault.NewDepositInstruction(b.params, b.user, b.userTok, b.vaultTok, b.vaultAddr, b.userBalance, 5)
		require.NoError(t, err)
		resp := b.submit(nil, ix)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestGetVault_NotFound(t *testing.T) {
	b := newAPIBed(t)
	b.bootstrap()

	resp := b.request(http.MethodGet, "/v1/vaults/"+fillKey(0x77).String(), nil, true)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	// a real account that is not a vault record is still not a vault
	resp = b.request(http.MethodGet, "/v1/vaults/"+b.userBalance.String(), nil, true)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestPathAddressValidation(t *testing.T) {
	b := newAPIBed(t)

	resp := b.request(http.MethodGet, "/v1/accounts/not-base58-!!", nil, true)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSeedAccounts_Validation(t *testing.T) {
	b := newAPIBed(t)

	resp := b.request(http.MethodPost, "/v1/accounts", seedRequest{}, true)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = b.request(http.MethodPost, "/v1/accounts", seedRequest{Accounts: []accountView{
		{Address: "not-base58", Owner: b.params.SystemProgramID.String()},
	}}, true)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
