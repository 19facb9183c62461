package main

import (
	"context"
	"fmt"
	"os"

	"clockzy.com/clockzy/config"
	"clockzy.com/clockzy/core"
	"clockzy.com/clockzy/infrastructure/devops"
	"clockzy.com/clockzy/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:          "clockzy",
	Short:        "Time clocking from Slack",
	Long:         "clockzy records IN, PAUSE, RETURN and OUT clock actions sent as Slack slash commands and reports the worked time.",
	SilenceUsage: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the Slack commands and the web API",
	RunE:  runServe,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the database and its tables",
	RunE:  runMigrate,
}

var healthcheckCmd = &cobra.Command{
	Use:   "healthcheck",
	Short: "Wait until the database answers",
	RunE:  runHealthcheck,
}

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue a web API token for a user",
	RunE:  runToken,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a YAML config file")

	healthcheckCmd.Flags().Duration("interval", defaultHealthInterval, "time between two pings")
	healthcheckCmd.Flags().Duration("timeout", defaultHealthTimeout, "give up after this long")

	tokenCmd.Flags().String("user", "", "Slack user id the token is issued to")
	tokenCmd.Flags().String("name", "", "user name stored in the token")
	tokenCmd.Flags().Duration("ttl", 0, "token lifetime, defaults to web.token_ttl")
	tokenCmd.MarkFlagRequired("user")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(healthcheckCmd)
	rootCmd.AddCommand(tokenCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

// resolveDSN returns the DSN of the clockzy schema and the DSN of the bare
// server. Credentials come from SSM when a parameter is configured.
func resolveDSN(ctx context.Context, cfg config.DatabaseConfig) (string, string, error) {
	if cfg.SSMParameter == "" {
		return cfg.DSN(), cfg.ServerDSN(), nil
	}

	entries, err := devops.LoadDBConfig(ctx, cfg.SSMParameter)
	if err != nil {
		return "", "", fmt.Errorf("loading database servers from %s: %w", cfg.SSMParameter, err)
	}
	entry, err := devops.FindDBEntry(entries, cfg.SSMEntry)
	if err != nil {
		return "", "", err
	}
	return entry.GetDSN(cfg.Name), entry.GetDSN(""), nil
}

func openDatabase(ctx context.Context, cfg config.DatabaseConfig) (*core.DatabaseManager, error) {
	dsn, _, err := resolveDSN(ctx, cfg)
	if err != nil {
		return nil, err
	}
	dm, err := core.New(dsn, cfg.MaxConnections, core.ParseLogLevel(cfg.LogLevel))
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	return dm, nil
}
