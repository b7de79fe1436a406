package cli

import (
	"fmt"
	"petcoin/config"
	"petcoin/log"
	"petcoin/smartcontract"
	"petcoin/util"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/spf13/cobra"
)

var (
	waitReceipt bool
	deployGas   uint64
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show node, contract, owner and total supply",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		supply, err := a.api.TotalSupply(cmd.Context())
		if err != nil {
			return err
		}

		owner, err := a.api.Owner(cmd.Context())
		if err != nil {
			return err
		}

		chainID, err := a.node.ChainID(cmd.Context())
		if err != nil {
			return err
		}
		if chainID.Uint64() != config.Get().ChainID {
			log.Errorf("Node chain id %s differs from configured chain_id %d", chainID, config.Get().ChainID)
		}

		height, err := a.node.BlockNumber(cmd.Context())
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "chain id:     %s\n", chainID)
		fmt.Fprintf(w, "block:        %d\n", height)
		fmt.Fprintf(w, "contract:     %s\n", a.api.SmartContract().Hex())
		fmt.Fprintf(w, "owner:        %s\n", owner.Hex())
		fmt.Fprintf(w, "total supply: %s\n", formatAmount(supply))
		return nil
	},
}

var balanceCmd = &cobra.Command{
	Use:   "balance <account>...",
	Short: "Show token balances, -1 if a balance can not be read",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		for _, name := range args {
			address := address(name)
			balance := a.api.BalanceOf(cmd.Context(), address)
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", address, formatAmount(balance))
		}
		return nil
	},
}

var transferCmd = &cobra.Command{
	Use:   "transfer <from> <to> <amount>",
	Short: "Transfer whole tokens",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		from, err := account(args[0])
		if err != nil {
			return err
		}

		amount, err := parseAmount(args[2])
		if err != nil {
			return err
		}

		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		res, err := a.api.Transfer(cmd.Context(), from, address(args[1]), amount)
		if err != nil {
			return err
		}
		return printResult(cmd.Context(), cmd.OutOrStdout(), a, res, shouldWait(cmd, from))
	},
}

var lockUpCmd = &cobra.Command{
	Use:   "lockup <from> <to> <amount> <release-seconds>",
	Short: "Transfer whole tokens locked until now + release-seconds",
	Args:  cobra.ExactArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		from, err := account(args[0])
		if err != nil {
			return err
		}

		amount, err := parseAmount(args[2])
		if err != nil {
			return err
		}

		releaseSec, err := strconv.ParseInt(args[3], 10, 64)
		if err != nil || releaseSec < 0 {
			return fmt.Errorf("invalid release seconds %q", args[3])
		}

		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		res, err := a.api.LockUp(cmd.Context(), from, address(args[1]), amount, releaseSec)
		if err != nil {
			return err
		}
		return printResult(cmd.Context(), cmd.OutOrStdout(), a, res, shouldWait(cmd, from))
	},
}

var lockUpsCmd = &cobra.Command{
	Use:   "lockups <account>",
	Short: "List lock-ups of an account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		lockUps, total, err := a.api.LockUps(cmd.Context(), address(args[0]))
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		now := time.Now()
		for _, l := range lockUps {
			state := "releasable"
			if left := util.Until(now, l.ReleaseTime.Unix()); left != "" {
				state = left + " left"
			}
			fmt.Fprintf(w, "#%d %s until %s (%s)\n", l.Index, formatAmount(l.Amount), l.ReleaseTime.Format(time.RFC3339), state)
		}
		fmt.Fprintf(w, "count: %d, total: %s\n", len(lockUps), formatAmount(util.FromPeb(total)))
		return nil
	},
}

var releaseCmd = &cobra.Command{
	Use:   "release <from> <to>",
	Short: "Release due lock-ups of an account",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		from, err := account(args[0])
		if err != nil {
			return err
		}

		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		res := a.api.LockUpRelease(cmd.Context(), from, address(args[1]))
		if res == nil {
			return fmt.Errorf("lock-up release of %s failed, see error log", args[1])
		}
		return printResult(cmd.Context(), cmd.OutOrStdout(), a, res, shouldWait(cmd, from))
	},
}

var transferOwnerCmd = &cobra.Command{
	Use:   "transfer-owner <from> <new-owner>",
	Short: "Hand over contract ownership",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		from, err := account(args[0])
		if err != nil {
			return err
		}

		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		res, err := a.api.TransferOwner(cmd.Context(), from, address(args[1]))
		if err != nil {
			return err
		}
		return printResult(cmd.Context(), cmd.OutOrStdout(), a, res, shouldWait(cmd, from))
	},
}

var deployCmd = &cobra.Command{
	Use:   "deploy",
	Short: "Deploy the contract from the owner KAS account",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		owner, err := account("owner")
		if err != nil {
			return err
		}

		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		res, err := a.api.Deploy(cmd.Context(), owner, deployGas)
		if err != nil {
			return err
		}
		return printResult(cmd.Context(), cmd.OutOrStdout(), a, res, shouldWait(cmd, owner))
	},
}

var methodsCmd = &cobra.Command{
	Use:   "methods",
	Short: "List contract methods and selectors",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		artifact, err := loadArtifact(config.Get().Artifact)
		if err != nil {
			return err
		}

		methods := smartcontract.NewMethods(artifact.ABI)
		for _, name := range methods.Names() {
			m := methods[name]
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", hexutil.Encode(m.ID), m.Sig)
		}
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{transferCmd, lockUpCmd, releaseCmd, transferOwnerCmd, deployCmd} {
		c.Flags().BoolVarP(&waitReceipt, "wait", "w", false, "wait for the receipt, on by default for KAS managed senders")
	}
	deployCmd.Flags().Uint64Var(&deployGas, "gas", 0, "gas limit, gas_limit of the config if zero")
}
