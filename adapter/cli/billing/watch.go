package billing

import (
	"errors"
	"fmt"
	"time"

	"github.com/felixgeelhaar/consulta/adapter/cli"
	billingApp "github.com/felixgeelhaar/consulta/internal/billing/application"
	"github.com/spf13/cobra"
)

var (
	watchInterval time.Duration
	watchCount    int
)

var errWatchDone = errors.New("watch done")

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Show a live countdown until your subscription expires",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}
		accountID, err := app.RequireAccount(cmd.Context())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		emitted := 0
		err = app.Watcher.Watch(cmd.Context(), accountID, watchInterval, func(d billingApp.Dashboard) error {
			fmt.Fprintf(out, "%s  %-8s  %s  %3.0f%%\n",
				d.At.Local().Format(time.TimeOnly), d.Status, d.Countdown, d.Progress)
			emitted++
			if watchCount > 0 && emitted >= watchCount {
				return errWatchDone
			}
			return nil
		})
		if errors.Is(err, errWatchDone) {
			return nil
		}
		return err
	},
}

func init() {
	watchCmd.Flags().DurationVar(&watchInterval, "interval", billingApp.DefaultWatchInterval, "refresh interval")
	watchCmd.Flags().IntVar(&watchCount, "count", 0, "stop after this many updates (0 runs until interrupted)")
}
