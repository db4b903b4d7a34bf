package cli

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/gagliardetto/solana-go"

	"github.com/TanmayDhobale/splvault/internal/api"
	"github.com/TanmayDhobale/splvault/internal/client/client"
	"github.com/TanmayDhobale/splvault/internal/client/config"
	"github.com/TanmayDhobale/splvault/internal/common"
	"github.com/TanmayDhobale/splvault/internal/keystore"
	"github.com/TanmayDhobale/splvault/internal/vault"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

type App struct {
	config *config.Config
	api    client.Client
	keys   *keystore.Keystore
	params vault.Params
	Mode   Mode
	reader *bufio.Reader
}

// NewApp wires the CLI: keystore, program parameters and an API client
// carrying a locally minted operator token. The token is signed with the
// secret shared with the daemon, so no login round trip is needed.
func NewApp(c *config.Config) (*App, error) {

	programID := common.DevProgramID()
	if c.ProgramID != "" {
		pk, err := solana.PublicKeyFromBase58(c.ProgramID)
		if err != nil {
			return nil, fmt.Errorf("program id: %w", err)
		}
		programID = pk
	}

	ks, err := keystore.Open(c.KeystoreDir)
	if err != nil {
		return nil, err
	}

	token, err := api.GenerateToken(c.Operator, []byte(c.SecretKey), c.TokenValidityDuration)
	if err != nil {
		return nil, err
	}

	return &App{
		config: c,
		api:    client.NewHTTPClient(c.ServerEndpointAddr, token),
		keys:   ks,
		params: vault.DefaultParams(programID),
		reader: bufio.NewReader(os.Stdin),
	}, nil
}

func (a *App) setMode(mode Mode) {
	if a.Mode != mode {
		a.Mode = mode
		log.Printf("Switched to %s mode\n", mode)
	}
}

func (a *App) Run(ctx context.Context) {
	defer func() {
		if err := a.api.Close(); err != nil {
			log.Printf("error closing client: %s", err.Error())
		}
	}()
	a.Root(ctx)
}

func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := a.api.Ping(ctx); err != nil {
				a.setMode(ModeOffline)
			} else {
				a.setMode(ModeOnline)
			}

		case <-ctx.Done():
			return
		}
	}
}
