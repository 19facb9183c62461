package main

import (
	"fmt"
	"time"

	"clockzy.com/clockzy/security"
	"github.com/spf13/cobra"
)

func runToken(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	defer logger.Sync()

	secret, err := security.DecodeSecret(cfg.Web.TokenSecret)
	if err != nil {
		return fmt.Errorf("web.token_secret: %w", err)
	}

	userID, _ := cmd.Flags().GetString("user")
	name, _ := cmd.Flags().GetString("name")
	ttl, _ := cmd.Flags().GetDuration("ttl")
	if ttl <= 0 {
		ttl = cfg.Web.TokenTTL
	}

	token, err := security.CreateIdentityToken(security.Identity{UserID: userID, UserName: name}, secret, time.Now(), ttl)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}
