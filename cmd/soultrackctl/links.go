package main

import (
	"fmt"
	"time"

	"soultrack/followup/internal/auth"
	"soultrack/followup/internal/common"

	"github.com/spf13/cobra"
)

var (
	linkChurch int64
	linkBranch int64
	linkTTL    time.Duration

	tokenUser  string
	tokenEmail string
	tokenTTL   time.Duration
)

var intakeLinkCmd = &cobra.Command{
	Use:   "intake-link",
	Short: "Issue a public intake link for a church branch",
	RunE:  runIntakeLink,
}

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Sign a bearer token for a profile (development only)",
	RunE:  runToken,
}

func init() {
	intakeLinkCmd.Flags().Int64Var(&linkChurch, "church", 0, "Church id the submissions belong to")
	intakeLinkCmd.Flags().Int64Var(&linkBranch, "branch", 0, "Branch id the submissions belong to")
	intakeLinkCmd.Flags().DurationVar(&linkTTL, "ttl", 30*24*time.Hour, "Link lifetime")
	_ = intakeLinkCmd.MarkFlagRequired("church")
	_ = intakeLinkCmd.MarkFlagRequired("branch")

	tokenCmd.Flags().StringVar(&tokenUser, "user", "", "Profile id (token subject)")
	tokenCmd.Flags().StringVar(&tokenEmail, "email", "", "Email claim")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", time.Hour, "Token lifetime")
	_ = tokenCmd.MarkFlagRequired("user")
}

func runIntakeLink(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if linkTTL <= 0 {
		return fmt.Errorf("--ttl must be positive")
	}

	signer := common.NewIntakeLinkSigner([]byte(cfg.IntakeLinkSecret), common.NewCacheService(0, 0))
	token, link, err := signer.Generate(linkChurch, linkBranch, linkTTL)
	if err != nil {
		return err
	}

	url := cfg.PublicBaseURL + "/public/intake/" + token
	out := map[string]interface{}{
		"token":      token,
		"url":        url,
		"token_id":   link.TokenID,
		"expires_at": link.ExpiresAt,
	}
	return printResult(cmd, out, fmt.Sprintf("%s\nexpires %s", url, link.ExpiresAt.Format(time.RFC3339)))
}

func runToken(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.AppEnv == "production" {
		return fmt.Errorf("refusing to sign tokens with APP_ENV=production")
	}

	token, err := auth.SignToken([]byte(cfg.JWTSecret), tokenUser, tokenEmail, tokenTTL)
	if err != nil {
		return err
	}
	return printResult(cmd, map[string]string{"token": token}, token)
}
