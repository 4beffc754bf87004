package support

import (
	"fmt"
	"strings"

	"github.com/felixgeelhaar/consulta/adapter/cli"
	supportDomain "github.com/felixgeelhaar/consulta/internal/support/domain"
	"github.com/spf13/cobra"
)

// Cmd is the support command group.
var Cmd = &cobra.Command{
	Use:   "support",
	Short: "Support levels and tickets",
}

var levelsCmd = &cobra.Command{
	Use:   "levels",
	Short: "List support levels and mark yours",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}
		accountID, err := app.CurrentAccountID(cmd.Context())
		if err != nil {
			return err
		}
		current, err := app.Support.Level(cmd.Context(), accountID)
		if err != nil {
			return err
		}

		tw := cli.NewTable(cmd.OutOrStdout())
		fmt.Fprintln(tw, "\tLEVEL\tCHANNELS")
		for _, l := range supportDomain.Levels() {
			marker := ""
			if l.Tier == current.Tier {
				marker = "*"
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\n", marker, l.Name, strings.Join(l.Channels, ", "))
		}
		return tw.Flush()
	},
}

func init() {
	Cmd.AddCommand(levelsCmd)
	Cmd.AddCommand(ticketCmd)
}
