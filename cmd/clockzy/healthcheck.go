package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const (
	defaultHealthInterval = 10 * time.Second
	defaultHealthTimeout  = 200 * time.Second
)

// runHealthcheck pings the database until it answers, so containers can
// wait for MySQL before serving.
func runHealthcheck(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	defer logger.Sync()

	interval, _ := cmd.Flags().GetDuration("interval")
	timeout, _ := cmd.Flags().GetDuration("timeout")

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	dm, err := openDatabase(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer dm.Close()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		err := dm.Ping(ctx)
		if err == nil {
			logger.Info("database is up")
			return nil
		}
		logger.Info("database is not ready", zap.Error(err))

		select {
		case <-ctx.Done():
			return fmt.Errorf("database did not answer within %s: %w", timeout, err)
		case <-ticker.C:
		}
	}
}
