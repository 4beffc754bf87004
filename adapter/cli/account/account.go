package account

import "github.com/spf13/cobra"

// Cmd is the account command group.
var Cmd = &cobra.Command{
	Use:   "account",
	Short: "Register, log in and manage your account",
	Long: `Create an account with a 3-day trial, verify your email address,
log in and out, and change your profile or password.`,
}

func init() {
	Cmd.AddCommand(registerCmd)
	Cmd.AddCommand(verifyCmd)
	Cmd.AddCommand(resendCmd)
	Cmd.AddCommand(loginCmd)
	Cmd.AddCommand(logoutCmd)
	Cmd.AddCommand(whoamiCmd)
	Cmd.AddCommand(profileCmd)
	Cmd.AddCommand(passwordCmd)
	Cmd.AddCommand(forgotCmd)
	Cmd.AddCommand(resetCmd)
	Cmd.AddCommand(deleteCmd)
}
