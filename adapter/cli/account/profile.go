package account

import (
	"fmt"

	"github.com/felixgeelhaar/consulta/adapter/cli"
	identityApp "github.com/felixgeelhaar/consulta/internal/identity/application"
	"github.com/felixgeelhaar/consulta/internal/identity/domain"
	"github.com/spf13/cobra"
)

var (
	profileName    string
	profileSurname string
	profileEmail   string

	passwordCurrent string
	passwordNew     string
	passwordConfirm string
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Change your name, surname or email",
	Long: `Change profile fields. Omitted flags keep their current value.
A new email address must be verified again.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}
		accountID, err := app.RequireAccount(cmd.Context())
		if err != nil {
			return err
		}

		current, err := app.Identity.GetAccount(cmd.Context(), accountID)
		if err != nil {
			return err
		}

		c := identityApp.UpdateProfileCommand{
			AccountID: accountID,
			Name:      current.Name().String(),
			Surname:   current.Surname(),
			Email:     current.Email().String(),
		}
		flags := cmd.Flags()
		if flags.Changed("name") {
			c.Name = profileName
		}
		if flags.Changed("surname") {
			c.Surname = profileSurname
		}
		if flags.Changed("email") {
			c.Email = profileEmail
		}

		updated, err := app.Identity.UpdateProfile(cmd.Context(), c)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Profile updated: %s <%s>\n", updated.FullName(), updated.Email())
		if !updated.EmailVerified() {
			fmt.Fprintln(out, "Check your new inbox for a verification code.")
		}
		return nil
	},
}

var passwordCmd = &cobra.Command{
	Use:   "password",
	Short: "Change your password",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}
		accountID, err := app.RequireAccount(cmd.Context())
		if err != nil {
			return err
		}

		p := cli.NewPrompter(cmd)
		if passwordCurrent, err = p.SecretOr(passwordCurrent, "Current password"); err != nil {
			return err
		}
		if passwordNew, err = p.SecretOr(passwordNew, "New password"); err != nil {
			return err
		}
		if passwordConfirm, err = p.SecretOr(passwordConfirm, "Confirm new password"); err != nil {
			return err
		}
		if err := domain.ValidatePassword(passwordNew, passwordConfirm); err != nil {
			return err
		}

		current, err := app.Identity.GetAccount(cmd.Context(), accountID)
		if err != nil {
			return err
		}
		_, err = app.Identity.UpdateProfile(cmd.Context(), identityApp.UpdateProfileCommand{
			AccountID:       accountID,
			Name:            current.Name().String(),
			Surname:         current.Surname(),
			Email:           current.Email().String(),
			CurrentPassword: passwordCurrent,
			NewPassword:     passwordNew,
		})
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Password changed.")
		return nil
	},
}

func init() {
	profileCmd.Flags().StringVar(&profileName, "name", "", "new first name")
	profileCmd.Flags().StringVar(&profileSurname, "surname", "", "new surname")
	profileCmd.Flags().StringVar(&profileEmail, "email", "", "new email address")

	passwordCmd.Flags().StringVar(&passwordCurrent, "current", "", "current password (prompted when omitted)")
	passwordCmd.Flags().StringVar(&passwordNew, "new", "", "new password (prompted when omitted)")
	passwordCmd.Flags().StringVar(&passwordConfirm, "confirm", "", "new password confirmation (prompted when omitted)")
}
