package account

import (
	"fmt"
	"time"

	"github.com/felixgeelhaar/consulta/adapter/cli"
	billingDomain "github.com/felixgeelhaar/consulta/internal/billing/domain"
	identityApp "github.com/felixgeelhaar/consulta/internal/identity/application"
	"github.com/spf13/cobra"
)

var (
	registerName     string
	registerSurname  string
	registerEmail    string
	registerPassword string
	registerConfirm  string
	registerPlan     string
)

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account and start a 3-day trial",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}

		p := cli.NewPrompter(cmd)
		if registerName, err = p.ValueOr(registerName, "Name"); err != nil {
			return err
		}
		if registerEmail, err = p.ValueOr(registerEmail, "Email"); err != nil {
			return err
		}
		if registerPassword, err = p.SecretOr(registerPassword, "Password"); err != nil {
			return err
		}
		if registerConfirm, err = p.SecretOr(registerConfirm, "Confirm password"); err != nil {
			return err
		}

		result, err := app.Identity.Register(cmd.Context(), identityApp.RegisterCommand{
			Name:            registerName,
			Surname:         registerSurname,
			Email:           registerEmail,
			Password:        registerPassword,
			ConfirmPassword: registerConfirm,
			Plan:            billingDomain.PlanID(registerPlan),
		})
		if err != nil {
			return err
		}

		planName := string(result.Subscription.Plan)
		if plan, err := billingDomain.PlanByID(result.Subscription.Plan); err == nil {
			planName = plan.Name
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Registered %s.\n", result.Account.Email())
		fmt.Fprintf(out, "Your %s trial ends %s.\n", planName, result.Subscription.ExpiresAt.Local().Format(time.RFC1123))
		fmt.Fprintln(out, "Check your email for the verification code, then run `consulta account verify <code>`.")
		return nil
	},
}

func init() {
	registerCmd.Flags().StringVar(&registerName, "name", "", "first name")
	registerCmd.Flags().StringVar(&registerSurname, "surname", "", "surname")
	registerCmd.Flags().StringVar(&registerEmail, "email", "", "email address")
	registerCmd.Flags().StringVar(&registerPassword, "password", "", "password (prompted when omitted)")
	registerCmd.Flags().StringVar(&registerConfirm, "confirm-password", "", "password confirmation (prompted when omitted)")
	registerCmd.Flags().StringVar(&registerPlan, "plan", "", "trial plan (default user-standard)")
}
