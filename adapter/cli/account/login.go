package account

import (
	"fmt"
	"time"

	"github.com/felixgeelhaar/consulta/adapter/cli"
	"github.com/felixgeelhaar/consulta/internal/session"
	"github.com/spf13/cobra"
)

var (
	loginEmail      string
	loginPassword   string
	loginPrintToken bool
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in with email and password",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}

		p := cli.NewPrompter(cmd)
		if loginEmail, err = p.ValueOr(loginEmail, "Email"); err != nil {
			return err
		}
		if loginPassword, err = p.SecretOr(loginPassword, "Password"); err != nil {
			return err
		}

		result, err := app.Identity.Login(cmd.Context(), loginEmail, loginPassword)
		if err != nil {
			return err
		}

		err = app.Sessions.Save(&session.Session{
			Token:     result.Token,
			AccountID: result.Account.ID(),
			Email:     result.Account.Email().String(),
			IssuedAt:  app.Clock(),
		})
		if err != nil {
			return fmt.Errorf("failed to store session: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s.\n", result.Account.FullName())
		if loginPrintToken {
			fmt.Fprintf(cmd.OutOrStdout(), "Session token: %s\n", result.Token)
		}
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored session",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}
		if err := app.Sessions.Delete(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged-in account",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}

		sess, err := app.CurrentSession(cmd.Context())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if sess == nil {
			fmt.Fprintln(out, "Not logged in. Browsing anonymously.")
			return nil
		}

		account, err := app.Identity.GetAccount(cmd.Context(), sess.AccountID)
		if err != nil {
			return err
		}
		verified := "no"
		if account.EmailVerified() {
			verified = "yes"
		}
		fmt.Fprintf(out, "Name:     %s\n", account.FullName())
		fmt.Fprintf(out, "Email:    %s\n", account.Email())
		fmt.Fprintf(out, "Verified: %s\n", verified)
		fmt.Fprintf(out, "Since:    %s\n", account.CreatedAt().Local().Format(time.RFC1123))
		return nil
	},
}

func init() {
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "email address")
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "password (prompted when omitted)")
	loginCmd.Flags().BoolVar(&loginPrintToken, "print-token", false, "print the session token for MCP clients")
}
