package cmd

import (
	"fmt"
	"log"

	"github.com/frahmantamala/lms-backend/internal/auth"
	"github.com/spf13/cobra"
)

var (
	tokenUserID int64
	tokenEmail  string
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue a development access token",
	Long:  `Sign an access token for a user id with the configured secret. Meant for local testing against the API.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(configPath)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		tokens := auth.NewJWTTokenManager(cfg.Security.JWTSecret, cfg.Security.JWTIssuer, cfg.Security.AccessTokenDuration)
		token, expiresAt, err := tokens.IssueAccessToken(tokenUserID, tokenEmail)
		if err != nil {
			log.Fatalf("failed to issue token: %v", err)
		}

		fmt.Println(token)
		fmt.Println("expires at:", expiresAt.Format("2006-01-02T15:04:05Z07:00"))
	},
}

func init() {
	tokenCmd.Flags().Int64VarP(&tokenUserID, "user", "u", 0, "user id placed in the subject claim")
	tokenCmd.Flags().StringVarP(&tokenEmail, "email", "e", "", "email claim")
	_ = tokenCmd.MarkFlagRequired("user")
}
