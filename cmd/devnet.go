package cmd

import (
	"context"
	"crypto/ecdsa"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"time"

	"github.com/TEENet-io/devchain/common"
	"github.com/TEENet-io/devchain/devnet"
	"github.com/TEENet-io/devchain/logconfig"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const appName = "devnet"

// cli carries the state shared by all subcommands of one invocation.
type cli struct {
	v   *viper.Viper
	cfg *devnet.Config

	configFile string
	logLevel   string
	logJSON    bool
}

// NewRootCmd builds the devnet command tree. Every call returns an
// independent tree with its own viper instance.
func NewRootCmd() *cobra.Command {
	c := &cli{v: NewViper()}

	root := &cobra.Command{
		Use:           appName,
		Short:         "Drive a Hardhat-style development chain",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := logconfig.ConfigLogger(c.logLevel, c.logJSON); err != nil {
				return err
			}
			cfg, err := LoadConfig(c.v, c.configFile)
			if err != nil {
				return err
			}
			c.cfg = cfg
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&c.configFile, "config", "", "configuration file (default $"+ENV_CONFIG_FILE_PATH+")")
	flags.StringVar(&c.logLevel, "log-level", "info", "log level: trace, debug, info, warn, error")
	flags.BoolVar(&c.logJSON, "log-json", false, "log in JSON")
	flags.String("rpc-url", devnet.DefaultRPCURL, "development node RPC endpoint")
	flags.String("artifacts-dir", "", "hardhat artifacts directory")
	flags.String("fork-url", "", "upstream RPC endpoint the chain is forked from")
	flags.Uint64("fork-block", 0, "block the fork is pinned to (0 = latest)")
	_ = c.v.BindPFlag("rpc-url", flags.Lookup("rpc-url"))
	_ = c.v.BindPFlag("artifacts-dir", flags.Lookup("artifacts-dir"))
	_ = c.v.BindPFlag("forking.url", flags.Lookup("fork-url"))
	_ = c.v.BindPFlag("forking.block-number", flags.Lookup("fork-block"))

	root.AddCommand(
		c.artifactCmd(),
		c.accountsCmd(),
		c.impersonateCmd(),
		c.setBalanceCmd(),
		c.resetCmd(),
		c.mineCmd(),
		c.mineBlocksCmd(),
		c.estimateBlockCmd(),
		c.deployCmd(),
	)

	return root
}

// withRuntime connects to the node for the duration of fn.
func (c *cli) withRuntime(ctx context.Context, fn func(rt *devnet.Runtime) error) error {
	rt, err := devnet.New(ctx, c.cfg)
	if err != nil {
		return err
	}
	defer rt.Close()
	return fn(rt)
}

func (c *cli) artifactCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "artifact [name]",
		Short: "Show a compiled contract, or list all of them",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt := devnet.NewWithBackend(c.cfg, nil, nil)
			out := cmd.OutOrStdout()

			if len(args) == 0 {
				names, err := rt.Artifacts().FullyQualifiedNames()
				if err != nil {
					return err
				}
				for _, name := range names {
					fmt.Fprintln(out, name)
				}
				return nil
			}

			art, err := rt.Artifact(args[0])
			if err != nil {
				return err
			}
			code, err := art.Code()
			if err != nil {
				return err
			}
			methods := make([]string, 0, len(art.ABI.Methods))
			for _, m := range art.ABI.Methods {
				methods = append(methods, m.Sig)
			}
			sort.Strings(methods)
			return printJSON(out, map[string]any{
				"contractName": art.ContractName,
				"sourceName":   art.SourceName,
				"methods":      methods,
				"codeSize":     len(code),
			})
		},
	}
}

func (c *cli) accountsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "accounts",
		Short: "List node-managed accounts with their balances",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withRuntime(cmd.Context(), func(rt *devnet.Runtime) error {
				accounts, err := rt.Accounts(cmd.Context())
				if err != nil {
					return err
				}
				for i, account := range accounts {
					balance, err := rt.Balance(cmd.Context(), account)
					if err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "%d %s %s\n", i, account.Hex(), balance)
				}
				return nil
			})
		},
	}
}

func (c *cli) impersonateCmd() *cobra.Command {
	var stop bool

	cmd := &cobra.Command{
		Use:   "impersonate address...",
		Short: "Allow unsigned transactions from the given addresses",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			addrs, err := parseAddresses(args)
			if err != nil {
				return err
			}
			return c.withRuntime(cmd.Context(), func(rt *devnet.Runtime) error {
				if stop {
					return rt.StopImpersonating(cmd.Context(), addrs...)
				}
				return rt.Impersonate(cmd.Context(), addrs...)
			})
		},
	}
	cmd.Flags().BoolVar(&stop, "stop", false, "stop impersonating instead")

	return cmd
}

func (c *cli) setBalanceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-balance address wei",
		Short: "Set the native balance of an address",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			addrs, err := parseAddresses(args[:1])
			if err != nil {
				return err
			}
			return c.withRuntime(cmd.Context(), func(rt *devnet.Runtime) error {
				if err := rt.SetBalance(cmd.Context(), addrs[0], args[1]); err != nil {
					return err
				}
				balance, err := rt.Balance(cmd.Context(), addrs[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", addrs[0].Hex(), balance)
				return nil
			})
		},
	}
}

func (c *cli) resetCmd() *cobra.Command {
	var block uint64

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Reset the chain to the fork block, discarding local state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withRuntime(cmd.Context(), func(rt *devnet.Runtime) error {
				if cmd.Flags().Changed("block") {
					if err := rt.ResetForkTo(cmd.Context(), block); err != nil {
						return err
					}
				} else if err := rt.ResetFork(cmd.Context()); err != nil {
					return err
				}
				return printHead(cmd, rt)
			})
		},
	}
	cmd.Flags().Uint64Var(&block, "block", 0, "fork block to reset to instead of the configured one")

	return cmd
}

func (c *cli) mineCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mine seconds",
		Short: "Advance time by seconds and mine one block",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			seconds, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid seconds %q: %w", args[0], err)
			}
			return c.withRuntime(cmd.Context(), func(rt *devnet.Runtime) error {
				header, err := rt.MineBlock(cmd.Context(), seconds)
				if err != nil {
					return err
				}
				printHeader(cmd.OutOrStdout(), header)
				return nil
			})
		},
	}
}

func (c *cli) mineBlocksCmd() *cobra.Command {
	var perBlock uint64

	cmd := &cobra.Command{
		Use:   "mine-blocks seconds",
		Short: "Mine blocks covering seconds of chain time",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			seconds, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid seconds %q: %w", args[0], err)
			}
			if !cmd.Flags().Changed("seconds-per-block") {
				perBlock = c.cfg.SecondsPerBlock
			}
			return c.withRuntime(cmd.Context(), func(rt *devnet.Runtime) error {
				header, err := rt.MineBlocks(cmd.Context(), seconds, perBlock)
				if err != nil {
					return err
				}
				printHeader(cmd.OutOrStdout(), header)
				return nil
			})
		},
	}
	cmd.Flags().Uint64Var(&perBlock, "seconds-per-block", devnet.DefaultSecondsPerBlock, "block time")

	return cmd
}

func (c *cli) estimateBlockCmd() *cobra.Command {
	var blockTime time.Duration

	cmd := &cobra.Command{
		Use:   "estimate-block time",
		Short: "Estimate the block number at a past time (RFC3339 or unix seconds)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			at, err := parseTime(args[0])
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("block-time") {
				blockTime = time.Duration(c.cfg.SecondsPerBlock) * time.Second
			}
			return c.withRuntime(cmd.Context(), func(rt *devnet.Runtime) error {
				n, err := rt.EstimatedBlockNumber(cmd.Context(), at, blockTime)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), n)
				return nil
			})
		},
	}
	cmd.Flags().DurationVar(&blockTime, "block-time", devnet.DefaultSecondsPerBlock*time.Second, "average block time")

	return cmd
}

func (c *cli) deployCmd() *cobra.Command {
	var (
		from          string
		account       int
		privateKey    string
		value         string
		gasLimit      uint64
		confirmations uint64
	)

	cmd := &cobra.Command{
		Use:   "deploy name [constructor args...]",
		Short: "Deploy a contract from its artifact",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return c.withRuntime(ctx, func(rt *devnet.Runtime) error {
				art, err := rt.Artifact(args[0])
				if err != nil {
					return err
				}
				ctorArgs, err := ParseArgs(art.ABI.Constructor.Inputs, args[1:])
				if err != nil {
					return err
				}

				opts, err := transactOpts(ctx, rt, privateKey, from, account)
				if err != nil {
					return err
				}
				opts.GasLimit = gasLimit
				if value != "" {
					if opts.Value, err = common.ToBigInt(value); err != nil {
						return err
					}
				}

				contract, err := rt.Deploy(ctx, args[0], opts, confirmations, ctorArgs...)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", contract.Name, contract.Address.Hex())
				return nil
			})
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&from, "from", "", "sender address (node-managed or impersonated)")
	flags.IntVar(&account, "account", 0, "index of the node-managed sender when --from is not given")
	flags.StringVar(&privateKey, "private-key", "", "hex private key to sign the deployment with")
	flags.StringVar(&value, "value", "", "wei sent along with the deployment")
	flags.Uint64Var(&gasLimit, "gas-limit", 0, "gas limit (0 = estimate)")
	flags.Uint64Var(&confirmations, "confirmations", 0, "blocks to wait for on top of the deployment")

	return cmd
}

func transactOpts(ctx context.Context, rt *devnet.Runtime, privateKey, from string, account int) (*bind.TransactOpts, error) {
	if privateKey != "" {
		sk, err := crypto.HexToECDSA(common.Trim0xPrefix(privateKey))
		if err != nil {
			return nil, fmt.Errorf("failed to parse private key: %w", err)
		}
		return keyedTransactor(ctx, rt, sk)
	}

	if from != "" {
		addrs, err := parseAddresses([]string{from})
		if err != nil {
			return nil, err
		}
		return &bind.TransactOpts{From: addrs[0], Context: ctx}, nil
	}

	addr, err := rt.Account(ctx, account)
	if err != nil {
		return nil, err
	}
	return &bind.TransactOpts{From: addr, Context: ctx}, nil
}

func keyedTransactor(ctx context.Context, rt *devnet.Runtime, sk *ecdsa.PrivateKey) (*bind.TransactOpts, error) {
	chainID, err := rt.ChainID(ctx)
	if err != nil {
		return nil, err
	}
	opts, err := bind.NewKeyedTransactorWithChainID(sk, chainID)
	if err != nil {
		return nil, err
	}
	opts.Context = ctx
	return opts, nil
}

func parseAddresses(args []string) ([]ethcommon.Address, error) {
	addrs := make([]ethcommon.Address, len(args))
	for i, arg := range args {
		if !ethcommon.IsHexAddress(arg) {
			return nil, fmt.Errorf("invalid address %q", arg)
		}
		addrs[i] = ethcommon.HexToAddress(arg)
	}
	return addrs, nil
}

func parseTime(s string) (time.Time, error) {
	if secs, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(secs, 0), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q: want RFC3339 or unix seconds", s)
	}
	return t, nil
}

func printHead(cmd *cobra.Command, rt *devnet.Runtime) error {
	header, err := rt.Block(cmd.Context(), nil)
	if err != nil {
		return err
	}
	printHeader(cmd.OutOrStdout(), header)
	return nil
}

func printHeader(w io.Writer, header *types.Header) {
	fmt.Fprintf(w, "block %s time %d\n", header.Number, header.Time)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Execute runs the devnet command line with ctx.
func Execute(ctx context.Context, args []string, out io.Writer) error {
	root := NewRootCmd()
	root.SetArgs(args)
	root.SetOut(out)
	return root.ExecuteContext(ctx)
}
