package main

import (
	"context"
	"fmt"

	"clockzy.com/clockzy/core"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx := context.Background()
	dsn, serverDSN, err := resolveDSN(ctx, cfg.Database)
	if err != nil {
		return err
	}
	level := core.ParseLogLevel(cfg.Database.LogLevel)

	server, err := core.New(serverDSN, 1, level)
	if err != nil {
		return fmt.Errorf("opening database server: %w", err)
	}
	defer server.Close()

	schema := cfg.Database.SchemaName()
	created, err := server.EnsureDatabase(ctx, schema)
	if err != nil {
		return err
	}
	if created {
		logger.Info("database created", zap.String("schema", schema))
	}

	dm, err := core.New(dsn, 1, level)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer dm.Close()

	if err := dm.Migrate(ctx); err != nil {
		return err
	}
	logger.Info("database migrated", zap.String("schema", schema))
	return nil
}
