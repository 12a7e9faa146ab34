package worker

// reconcile_cron.go
// Background goroutine that periodically sweeps tracked products and compares
// recorded stock against the movement ledger. Drift means a write bypassed
// the ledger; it gets logged loudly for follow-up. A Redis lock keeps the
// sweep on a single instance when several replicas run.

import (
	"context"
	"errors"
	"time"

	"tillpoint/internal/repository"
	"tillpoint/internal/service"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	reconcileLockKey = "tillpoint:reconcile:lock"
	reconcileBatch   = 200
)

// ReconcileCronConfig holds the dependencies of the reconciliation loop.
type ReconcileCronConfig struct {
	Repos    repository.Repos
	Ledger   service.LedgerService
	RDB      *redis.Client
	Interval time.Duration
}

// StartReconcileCron launches the loop. It respects ctx for graceful shutdown.
func StartReconcileCron(ctx context.Context, cfg ReconcileCronConfig) {
	if cfg.Interval <= 0 {
		cfg.Interval = 5 * time.Minute
	}
	locker := redislock.New(cfg.RDB)

	go func() {
		ticker := time.NewTicker(cfg.Interval)
		defer ticker.Stop()

		log.Info().Dur("interval", cfg.Interval).Msg("reconcile_cron: started")

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("reconcile_cron: shutting down")
				return
			case <-ticker.C:
				sweep(ctx, cfg, locker)
			}
		}
	}()
}

func sweep(ctx context.Context, cfg ReconcileCronConfig, locker *redislock.Client) {
	lock, err := locker.Obtain(ctx, reconcileLockKey, cfg.Interval, nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		log.Debug().Msg("reconcile_cron: another instance holds the lock, skipping tick")
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("reconcile_cron: failed to obtain lock")
		return
	}
	defer func() { _ = lock.Release(ctx) }()

	checked, drifted := 0, 0
	for page := 1; ; page++ {
		products, _, err := cfg.Repos.Products.List(ctx, repository.ProductFilter{
			Active: "true",
			Page:   page,
			Limit:  reconcileBatch,
		})
		if err != nil {
			log.Error().Err(err).Msg("reconcile_cron: failed to list products")
			return
		}
		if len(products) == 0 {
			break
		}

		for i := range products {
			p := &products[i]
			if !p.TracksInventory {
				continue
			}
			report, err := cfg.Ledger.VerifyLedger(ctx, cfg.Repos, p.ID)
			if err != nil {
				log.Error().Err(err).Str("code", p.Code).Msg("reconcile_cron: verify failed")
				continue
			}
			checked++
			if !report.Consistent {
				drifted++
				log.Error().
					Str("code", report.ProductCode).
					Str("recorded", report.Recorded.String()).
					Str("ledger_sum", report.LedgerSum.String()).
					Str("drift", report.Drift.String()).
					Msg("reconcile_cron: stock drifted from movement ledger")
			}
		}

		if len(products) < reconcileBatch {
			break
		}
	}

	if drifted > 0 {
		log.Warn().Int("checked", checked).Int("drifted", drifted).Msg("reconcile_cron: sweep found drift")
	} else {
		log.Debug().Int("checked", checked).Msg("reconcile_cron: sweep clean")
	}
}
