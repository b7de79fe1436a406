// Package cli holds the petcoin command line.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"petcoin/config"
	"petcoin/log"
	"petcoin/mail"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

var (
	cfgFile    string
	enableMail bool
	timeout    time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "petcoin",
	Short: "PetCoin token client for klaytn",
	Long: `PetCoin token client for klaytn.

Reads go to a klaytn node, transactions are fee delegated through the
KAS wallet api. Accounts are given by name (owner, test0..testN) or address.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		log.Init(log.Config{})

		if err := loadConfig(); err != nil {
			return err
		}

		log.Init(config.Get().Log)
		log.UpdatePrefix(config.GetLabel())

		if err := mail.Init(enableMail); err != nil {
			return fmt.Errorf("init mail: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file, searched in ./config and ../config if empty")
	rootCmd.PersistentFlags().BoolVar(&enableMail, "mail", false, "If mail alert is enabled")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "request timeout")

	rootCmd.AddCommand(
		infoCmd,
		balanceCmd,
		transferCmd,
		lockUpCmd,
		lockUpsCmd,
		releaseCmd,
		transferOwnerCmd,
		deployCmd,
		methodsCmd,
		historyCmd,
		watchCmd,
	)
}

func loadConfig() error {
	if cfgFile == "" {
		if err := config.Load(false); err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		return nil
	}

	if err := config.LoadFile(cfgFile, false); err != nil {
		return fmt.Errorf("load config %s: %w", cfgFile, err)
	}
	return nil
}

// Execute runs the root command until it returns or the process is
// interrupted.
func Execute() error {
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return rootCmd.ExecuteContext(ctx)
}
