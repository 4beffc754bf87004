package account

import (
	"fmt"

	"github.com/felixgeelhaar/consulta/adapter/cli"
	"github.com/spf13/cobra"
)

var resendEmail string

var verifyCmd = &cobra.Command{
	Use:   "verify <code>",
	Short: "Verify your email address",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}

		account, err := app.Identity.VerifyEmail(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Verified %s. You can now log in.\n", account.Email())
		return nil
	},
}

var resendCmd = &cobra.Command{
	Use:   "resend-verification",
	Short: "Send a new verification code",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}

		email, err := cli.NewPrompter(cmd).ValueOr(resendEmail, "Email")
		if err != nil {
			return err
		}
		if err := app.Identity.ResendVerification(cmd.Context(), email); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "If that address belongs to an unverified account, a new code is on its way.")
		return nil
	},
}

func init() {
	resendCmd.Flags().StringVar(&resendEmail, "email", "", "email address")
}
