package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/big"
	"os"
	"petcoin/addr"
	"petcoin/config"
	"petcoin/db"
	"petcoin/kas"
	"petcoin/klaytn"
	"petcoin/log"
	"petcoin/rpc"
	"petcoin/smartcontract"
	"petcoin/util"

	"github.com/spf13/cobra"
)

// app is the wired api of one command run.
type app struct {
	api   *klaytn.API
	node  *rpc.Client
	store *db.Store
}

func newApp(ctx context.Context) (*app, error) {
	c := config.Get()

	artifact, err := loadArtifact(c.Artifact)
	if err != nil {
		return nil, err
	}

	node, err := rpc.NewClient(rpc.Config{
		URLs:            c.RPCs,
		ChainID:         c.ChainID,
		AccessKeyID:     c.KAS.AccessKeyID,
		SecretAccessKey: c.KAS.SecretAccessKey,
		Timeout:         timeout,
	})
	if err != nil {
		return nil, err
	}

	wallet, err := kas.NewClient(kas.Config{
		BaseURL:         c.KAS.WalletURL,
		ChainID:         c.ChainID,
		AccessKeyID:     c.KAS.AccessKeyID,
		SecretAccessKey: c.KAS.SecretAccessKey,
		Timeout:         timeout,
	})
	if err != nil {
		return nil, err
	}

	a := &app{node: node}
	opts := klaytn.Options{
		ChainID:       c.ChainID,
		SmartContract: c.SmartContract,
		GasLimit:      c.GasLimit,
		Artifact:      artifact,
		Node:          node,
		Wallet:        wallet,
	}

	if config.JournalEnabled() {
		store, err := db.Open(config.GetDbConnStr())
		if err != nil {
			return nil, err
		}
		if err := store.CreateTables(ctx); err != nil {
			store.Close()
			return nil, fmt.Errorf("create journal tables: %w", err)
		}
		a.store = store
		opts.Journal = store
	}

	a.api, err = klaytn.New(opts)
	if err != nil {
		a.Close()
		return nil, err
	}

	return a, nil
}

func (a *app) Close() {
	if a.store != nil {
		a.store.Close()
	}
}

// loadArtifact returns the build artifact at path, or the embedded abi if
// the file does not exist.
func loadArtifact(path string) (*smartcontract.Artifact, error) {
	if path == "" {
		return smartcontract.DefaultArtifact(), nil
	}

	artifact, err := smartcontract.LoadArtifact(path)
	if errors.Is(err, os.ErrNotExist) {
		log.Printf("Artifact %s not found, using embedded abi", path)
		return smartcontract.DefaultArtifact(), nil
	}
	return artifact, err
}

// account resolves a configured account by name or address.
func account(name string) (addr.Account, error) {
	acc, ok := config.FindAccount(name)
	if !ok {
		return addr.Account{}, fmt.Errorf("unknown account %q", name)
	}
	return addr.New(acc.Address, acc.PrivateKey)
}

// address resolves a configured account name, other values are returned as is.
func address(name string) string {
	if acc, ok := config.FindAccount(name); ok {
		return acc.Address
	}
	return name
}

// parseAmount parses a positive whole token amount.
func parseAmount(s string) (*big.Int, error) {
	amount, err := util.StrToBigInt(s)
	if err != nil {
		return nil, fmt.Errorf("invalid amount %q", s)
	}
	if amount.Sign() <= 0 {
		return nil, fmt.Errorf("amount must be positive: %s", s)
	}
	return amount, nil
}

func formatAmount(f *big.Float) string {
	return f.Text('f', -1)
}

func printJSON(w io.Writer, v interface{}) error {
	content, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(content))
	return err
}

// shouldWait reports whether to wait for the receipt of a transaction sent
// by from. KAS accepts a managed submission before execution, so a revert
// only shows in the receipt.
func shouldWait(cmd *cobra.Command, from addr.Account) bool {
	if cmd.Flags().Changed("wait") {
		return waitReceipt
	}
	return from.Managed()
}

// printResult prints res and optionally waits for the receipt.
func printResult(ctx context.Context, w io.Writer, a *app, res *klaytn.Result, wait bool) error {
	if err := printJSON(w, res); err != nil {
		return err
	}

	if !wait || res == nil || res.TransactionHash == "" {
		return nil
	}

	receipt, err := a.api.WaitForReceipt(ctx, res.TransactionHash)
	if receipt != nil {
		fmt.Fprintf(w, "block=%d status=%d\n", uint64(receipt.BlockNumber), uint64(receipt.Status))
	}
	return err
}
