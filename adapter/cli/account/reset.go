package account

import (
	"fmt"

	"github.com/felixgeelhaar/consulta/adapter/cli"
	identityApp "github.com/felixgeelhaar/consulta/internal/identity/application"
	"github.com/spf13/cobra"
)

var (
	forgotEmail   string
	resetPassword string
	resetConfirm  string
)

var forgotCmd = &cobra.Command{
	Use:   "forgot-password",
	Short: "Email a password reset code",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}

		email, err := cli.NewPrompter(cmd).ValueOr(forgotEmail, "Email")
		if err != nil {
			return err
		}
		if err := app.Identity.RequestPasswordReset(cmd.Context(), email); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "If that address has an account, a reset code is on its way.")
		return nil
	},
}

var resetCmd = &cobra.Command{
	Use:   "reset-password <code>",
	Short: "Choose a new password with a reset code",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}

		p := cli.NewPrompter(cmd)
		if resetPassword, err = p.SecretOr(resetPassword, "New password"); err != nil {
			return err
		}
		if resetConfirm, err = p.SecretOr(resetConfirm, "Confirm new password"); err != nil {
			return err
		}

		err = app.Identity.ResetPassword(cmd.Context(), identityApp.ResetPasswordCommand{
			Token:           args[0],
			Password:        resetPassword,
			ConfirmPassword: resetConfirm,
		})
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Password reset. You can now log in.")
		return nil
	},
}

func init() {
	forgotCmd.Flags().StringVar(&forgotEmail, "email", "", "email address")
	resetCmd.Flags().StringVar(&resetPassword, "password", "", "new password (prompted when omitted)")
	resetCmd.Flags().StringVar(&resetConfirm, "confirm-password", "", "new password confirmation (prompted when omitted)")
}
