package cli

import (
	"errors"
	"fmt"
	"petcoin/config"
	"petcoin/db"
	"petcoin/util"

	"github.com/spf13/cobra"
)

var historyLimit uint

var historyCmd = &cobra.Command{
	Use:   "history <account>",
	Short: "Show journaled transactions of an account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !config.JournalEnabled() {
			return errors.New("transaction journal is disabled, set hostname in config")
		}

		store, err := db.Open(config.GetDbConnStr())
		if err != nil {
			return err
		}
		defer store.Close()

		records, err := store.GetTxs(cmd.Context(), address(args[0]), historyLimit)
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		for _, r := range records {
			fmt.Fprintf(w, "%s %-13s %-9s %s -> %s %s %s\n",
				r.CreatedAt.Format("2006-01-02 15:04:05"),
				r.Method,
				r.Status,
				r.From,
				r.To,
				formatAmount(util.FromPeb(r.Amount)),
				r.TxHash,
			)
			if r.Error != "" {
				fmt.Fprintf(w, "    error: %s\n", r.Error)
			}
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().UintVarP(&historyLimit, "limit", "n", 20, "max records")
}
