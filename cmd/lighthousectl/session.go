package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/fatih/color"
	userstore "github.com/glrs/lighthouse/internal/app/store/users"
	"github.com/glrs/lighthouse/internal/app/system/auth"
	"github.com/glrs/lighthouse/internal/domain/models"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Session cookie commands",
}

var sessionIssueCmd = &cobra.Command{
	Use:   "issue <email>",
	Short: "Mint a session cookie for an existing user",
	Long: `Mint a session cookie for the user with the given email, signed with
the server's session key. Send it as a Cookie header to call the API as
that user.

Examples:
  lighthousectl session issue coach@example.org
  curl -H "Cookie: $(lighthousectl session issue --raw pat@example.org)" localhost:8080/api/me`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, _ := cmd.Flags().GetString("session-key")
		name, _ := cmd.Flags().GetString("session-name")
		maxAge, _ := cmd.Flags().GetDuration("max-age")
		raw, _ := cmd.Flags().GetBool("raw")

		u, err := userstore.New(db).GetByEmail(cmd.Context(), args[0])
		if errors.Is(err, mongo.ErrNoDocuments) {
			return fmt.Errorf("no user with email %q", args[0])
		}
		if err != nil {
			return err
		}
		if u.Status == models.StatusDisabled {
			return fmt.Errorf("user %s is disabled", u.Email)
		}

		sm, err := auth.NewSessionManager(key, name, "", maxAge, false, logger)
		if err != nil {
			return err
		}
		cookie, err := sm.IssueCookie(u.ID.Hex(), time.Now())
		if err != nil {
			return err
		}

		if raw {
			fmt.Printf("%s=%s\n", cookie.Name, cookie.Value)
			return nil
		}
		cyan := color.New(color.FgCyan).SprintFunc()
		fmt.Printf("user    %s (%s, %s)\n", u.FullName, u.Email, cyan(u.Role))
		fmt.Printf("expires %s\n", time.Now().Add(maxAge).UTC().Format(time.RFC3339))
		fmt.Printf("cookie  %s=%s\n", cookie.Name, cookie.Value)
		return nil
	},
}

func init() {
	sessionIssueCmd.Flags().String("session-key", envOr("session_key", "dev-only-change-me-please-0123456789ABCDEF"), "Session signing key")
	sessionIssueCmd.Flags().String("session-name", envOr("session_name", "lighthouse-session"), "Session cookie name")
	sessionIssueCmd.Flags().Duration("max-age", 30*24*time.Hour, "Cookie lifetime")
	sessionIssueCmd.Flags().Bool("raw", false, "Print only name=value")
	sessionCmd.AddCommand(sessionIssueCmd)
	rootCmd.AddCommand(sessionCmd)
}
