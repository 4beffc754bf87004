package support

import (
	"fmt"
	"time"

	"github.com/felixgeelhaar/consulta/adapter/cli"
	supportApp "github.com/felixgeelhaar/consulta/internal/support/application"
	"github.com/spf13/cobra"
)

var (
	ticketSubject     string
	ticketCategory    string
	ticketPriority    string
	ticketDescription string
)

var ticketCmd = &cobra.Command{
	Use:   "ticket",
	Short: "Open and list support tickets",
}

var ticketOpenCmd = &cobra.Command{
	Use:   "open",
	Short: "Open a support ticket",
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
		if ticketSubject, err = p.ValueOr(ticketSubject, "Subject"); err != nil {
			return err
		}
		if ticketDescription, err = p.ValueOr(ticketDescription, "Description"); err != nil {
			return err
		}

		ticket, err := app.Support.OpenTicket(cmd.Context(), supportApp.OpenTicketCommand{
			AccountID:   accountID,
			Subject:     ticketSubject,
			Category:    ticketCategory,
			Priority:    ticketPriority,
			Description: ticketDescription,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Opened ticket %s (%s, %s priority).\n", ticket.ID, ticket.Category, ticket.Priority)
		return nil
	},
}

var ticketListCmd = &cobra.Command{
	Use:   "list",
	Short: "List your support tickets, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}
		accountID, err := app.RequireAccount(cmd.Context())
		if err != nil {
			return err
		}

		tickets, err := app.Support.ListTickets(cmd.Context(), accountID)
		if err != nil {
			return err
		}
		if len(tickets) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No tickets.")
			return nil
		}

		tw := cli.NewTable(cmd.OutOrStdout())
		fmt.Fprintln(tw, "OPENED\tSTATUS\tPRIORITY\tCATEGORY\tSUBJECT")
		for _, t := range tickets {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
				t.CreatedAt.Local().Format(time.DateTime), t.Status, t.Priority, t.Category, t.Subject)
		}
		return tw.Flush()
	},
}

func init() {
	ticketOpenCmd.Flags().StringVar(&ticketSubject, "subject", "", "short summary")
	ticketOpenCmd.Flags().StringVar(&ticketCategory, "category", "other", "technical, billing, account, feature or other")
	ticketOpenCmd.Flags().StringVar(&ticketPriority, "priority", "medium", "low, medium, high or urgent")
	ticketOpenCmd.Flags().StringVar(&ticketDescription, "description", "", "what happened")

	ticketCmd.AddCommand(ticketOpenCmd)
	ticketCmd.AddCommand(ticketListCmd)
}
