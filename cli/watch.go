package cli

import (
	"petcoin/config"
	"petcoin/log"
	"petcoin/mail"
	"petcoin/metrics"
	"petcoin/tasks"
	"time"

	"github.com/spf13/cobra"
)

const heightInterval = 30 * time.Second

var watchOnce bool

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Release due lock-ups of the watched recipients on schedule",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		defer mail.AlertIfErr()

		ctx := cmd.Context()

		owner, err := account("owner")
		if err != nil {
			return err
		}

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		recipients := func() []string {
			return config.Get().Watch.Recipients
		}

		w := tasks.NewWatcher(a.api, owner, recipients, config.GetGoroutines())
		if watchOnce {
			log.Printf("Released lock-ups of %d recipient(s)", w.Run(ctx))
			return nil
		}

		if addr := config.Get().MetricsAddr; addr != "" {
			go func() {
				if err := metrics.Serve(addr); err != nil {
					log.Errorf("Metrics server stopped: %v", err)
				}
			}()
			log.Printf("Serving metrics on %s", addr)
		}

		go a.node.TraceBestHeight(ctx, heightInterval)

		if err := w.Start(ctx, config.Get().Watch.Schedule); err != nil {
			return err
		}

		<-ctx.Done()
		log.Printf("Stopping lock-up watcher")
		w.Stop()
		a.node.PrintServerStatus()

		return nil
	},
}

func init() {
	watchCmd.Flags().BoolVar(&watchOnce, "once", false, "run one pass and exit")
}
