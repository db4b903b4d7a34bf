// Package archive writes terminal vault snapshots to object storage. When a
// unit closes a vault the archiver captures the final record together with
// the stale per-user balances and PUTs the JSON through a presigned URL, so
// the audit trail survives even if the ledger rows are later pruned.
package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gagliardetto/solana-go"

	"github.com/TanmayDhobale/splvault/internal/host"
	"github.com/TanmayDhobale/splvault/internal/logging"
	"github.com/TanmayDhobale/splvault/internal/netx"
	"github.com/TanmayDhobale/splvault/internal/store"
	"github.com/TanmayDhobale/splvault/internal/vault"
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}

	uploadSnapshot = netx.UploadToPresignedURL
)

// Config points the archiver at its bucket. BaseEndpoint is only set for
// S3-compatible stores such as MinIO.
type Config struct {
	Bucket       string
	Region       string
	BaseEndpoint string
	AccessKey    string
	SecretKey    string
}

// BalanceSnapshot is one ledgered balance as it stood when the vault closed.
type BalanceSnapshot struct {
	Address string `json:"address"`
	User    string `json:"user"`
	Balance uint64 `json:"balance"`
}

// Snapshot is the archived view of a closed vault.
type Snapshot struct {
	UnitID         string            `json:"unit_id"`
	ClosedAt       time.Time         `json:"closed_at"`
	Vault          string            `json:"vault"`
	Owner          string            `json:"owner"`
	TokenMint      string            `json:"token_mint"`
	TokenAccount   string            `json:"token_account"`
	TotalDeposited uint64            `json:"total_deposited"`
	Bump           uint8             `json:"bump"`
	Balances       []BalanceSnapshot `json:"balances"`
}

// Archiver turns vault-closed events into stored snapshots.
type Archiver struct {
	cfg       Config
	programID solana.PublicKey
	accounts  store.AccountStore
	log       logging.Logger
	now       func() time.Time
}

func NewArchiver(cfg Config, programID solana.PublicKey, accounts store.AccountStore, log logging.Logger) *Archiver {
	return &Archiver{
		cfg:       cfg,
		programID: programID,
		accounts:  accounts,
		log:       log.With("component", "archive"),
		now:       time.Now,
	}
}

// Hook adapts the archiver to the bank's close callback. Failures are logged
// and swallowed: the unit is already committed, so a slow or absent bucket
// must never surface as a ledger error.
func (a *Archiver) Hook() func(ctx context.Context, ev host.VaultClosed) {
	return func(ctx context.Context, ev host.VaultClosed) {
		if err := a.Archive(ctx, ev); err != nil {
			a.log.Error(ctx, "vault snapshot not archived", "vault", ev.Address, "error", err)
		}
	}
}

// Archive builds the snapshot for ev and uploads it under a date-sharded key.
func (a *Archiver) Archive(ctx context.Context, ev host.VaultClosed) error {
	snap := a.snapshot(ctx, ev)
	payload, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return err
	}

	pc, err := a.presignClient(ctx)
	if err != nil {
		return err
	}

	bucket := a.cfg.Bucket
	key := a.storageKey(ev)
	req, err := presignPutObject(pc, ctx, &s3.PutObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(15*time.Minute))
	if err != nil {
		return err
	}

	if err := uploadSnapshot(ctx, req.URL, "application/json", payload); err != nil {
		return err
	}

	a.log.Info(ctx, "vault snapshot archived", "vault", ev.Address, "key", key, "balances", len(snap.Balances))
	return nil
}

func (a *Archiver) snapshot(ctx context.Context, ev host.VaultClosed) Snapshot {
	snap := Snapshot{
		UnitID:         ev.UnitID,
		ClosedAt:       a.now().UTC(),
		Vault:          ev.Address.String(),
		Owner:          ev.State.Owner.String(),
		TokenMint:      ev.State.TokenMint.String(),
		TokenAccount:   ev.State.TokenAccount.String(),
		TotalDeposited: ev.State.TotalDeposited,
		Bump:           ev.State.Bump,
		Balances:       []BalanceSnapshot{},
	}

	records, err := a.accounts.ListByOwner(ctx, a.programID)
	if err != nil {
		a.log.Warn(ctx, "balances missing from snapshot", "vault", ev.Address, "error", err)
		return snap
	}
	for _, rec := range records {
		if len(rec.Data) != vault.UserBalanceSize {
			continue
		}
		ub, err := vault.DecodeUserBalance(rec.Data)
		if err != nil || !ub.Vault.Equals(ev.Address) {
			continue
		}
		snap.Balances = append(snap.Balances, BalanceSnapshot{
			Address: rec.Address.String(),
			User:    ub.User.String(),
			Balance: ub.Balance,
		})
	}
	return snap
}

func (a *Archiver) storageKey(ev host.VaultClosed) string {
	d := a.now()
	return fmt.Sprintf("vaults/%d/%d/%d/%s-%s.json", d.Year(), d.Month(), d.Day(), ev.Address, ev.UnitID)
}

func (a *Archiver) presignClient(ctx context.Context) (*s3.PresignClient, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(a.cfg.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			a.cfg.AccessKey,
			a.cfg.SecretKey,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		if a.cfg.BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(a.cfg.BaseEndpoint)
		}
	})

	return newS3PresignClient(client), nil
}
