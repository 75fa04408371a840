// Package refresh re-runs the store's load cycle on a cron schedule so a
// long-lived workspace converges back to the upstream prompt service after
// it recovers from an outage.
package refresh

import (
	"context"
	"fmt"
	"time"

	"github.com/adhocore/gronx"

	"github.com/EdnaValter/Tracknamic-AI-Lab/pkg/config"
	"github.com/EdnaValter/Tracknamic-AI-Lab/pkg/logger"
	"github.com/EdnaValter/Tracknamic-AI-Lab/pkg/store"
)

// Start starts the refresh scheduler if enabled. Returns a cancel func.
func Start(ctx context.Context, cfg config.RefreshConfig, st *store.Store) (context.CancelFunc, error) {
	if !cfg.Enabled {
		logger.Log.Info("refresh_disabled")
		return func() {}, nil
	}

	// default: every 15 minutes
	cronExpr := cfg.Cron
	if cronExpr == "" {
		cronExpr = "*/15 * * * *"
	}
	if !gronx.IsValid(cronExpr) {
		logger.Log.Error("refresh_invalid_cron", "cron", cfg.Cron)
		return nil, fmt.Errorf("invalid refresh cron expression: %s", cfg.Cron)
	}

	logger.Log.Info("refresh_enabled", "cron", cronExpr)
	ctx2, cancel := context.WithCancel(ctx)
	go runScheduler(ctx2, cronExpr, st)
	return cancel, nil
}

// runScheduler uses gronx to compute the next tick for the configured cron
// expression and sleeps until that time.
func runScheduler(ctx context.Context, cronExpr string, st *store.Store) {
	for {
		select {
		case <-ctx.Done():
			logger.Log.Info("refresh_scheduler_stopping")
			return
		default:
		}

		now := time.Now().UTC()
		next, err := gronx.NextTickAfter(cronExpr, now, false)
		if err != nil {
			logger.Log.Error("refresh_nexttick_failed", "cron", cronExpr, "error", err)
			select {
			case <-time.After(30 * time.Second):
			case <-ctx.Done():
				return
			}
			continue
		}

		select {
		case <-time.After(time.Until(next)):
			if err := st.Load(ctx); err != nil {
				logger.Log.Error("refresh_load_failed", "error", err)
			} else {
				logger.Log.Info("refresh_load_complete")
			}
		case <-ctx.Done():
			logger.Log.Info("refresh_scheduler_stopping")
			return
		}
	}
}
