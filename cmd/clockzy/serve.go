package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"clockzy.com/clockzy/clocking"
	"clockzy.com/clockzy/infrastructure/communication"
	"clockzy.com/clockzy/infrastructure/filesystem"
	"clockzy.com/clockzy/infrastructure/intratime"
	"clockzy.com/clockzy/report"
	"clockzy.com/clockzy/security"
	"clockzy.com/clockzy/slackbot"
	"clockzy.com/clockzy/store"
	"clockzy.com/clockzy/web"
	"clockzy.com/clockzy/web/handlers"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func runServe(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.Slack.SigningSecret == "" {
		return errors.New("slack.signing_secret is required")
	}
	secret, err := security.DecodeSecret(cfg.Web.TokenSecret)
	if err != nil {
		return fmt.Errorf("web.token_secret: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dm, err := openDatabase(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer dm.Close()

	st := store.New(dm)
	service := clocking.NewService(st, clocking.Options{ExcludeWeekends: cfg.Clocking.ExcludeWeekends})
	notifier := communication.NewSlack(cfg.Slack.BotToken, communication.SlackOption{
		InfoChannelID:  cfg.Slack.InfoChannelID,
		ErrorChannelID: cfg.Slack.ErrorChannelID,
	})

	var archive *report.Archive
	if cfg.Web.ReportBucket != "" {
		bucket, err := filesystem.NewBucket(ctx, cfg.Web.ReportBucket)
		if err != nil {
			return err
		}
		archive = report.NewArchive(bucket)
	}

	options := slackbot.Options{
		SigningSecret:   cfg.Slack.SigningSecret,
		DefaultTimezone: cfg.Clocking.DefaultTimezone,
		ExcludeWeekends: cfg.Clocking.ExcludeWeekends,
		CredentialsTTL:  cfg.Web.CredentialsTTL,
		WebURL:          cfg.Web.BaseURL,
	}
	if cfg.Intratime.Enabled {
		options.Intratime = intratime.NewClient(cfg.Intratime.URL, cfg.Intratime.Timeout)
	}
	bot := slackbot.New(st, service, notifier, logger, options)
	api := handlers.NewEndpoint(st, service, archive, logger, handlers.Options{
		Secret:          secret,
		TokenTTL:        cfg.Web.TokenTTL,
		DefaultTimezone: cfg.Clocking.DefaultTimezone,
		SecureCookie:    strings.HasPrefix(cfg.Web.BaseURL, "https://"),
	})

	gin.SetMode(gin.ReleaseMode)
	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      web.NewRouter(logger, dm, bot, api),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server started", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	if err := notifier.Info(fmt.Sprintf("clockzy started on %s", srv.Addr)); err != nil {
		logger.Warn("failed to notify info channel", zap.Error(err))
	}

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
