// Package cmd holds the cobra command tree for the solparse CLI, grounded
// in AMagicHarry-solana-go's cmd/slnc/cmd layout (one file per subcommand,
// each registering itself onto its parent from an init()).
package cmd

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/arkhaven/solparse/config"
	"github.com/arkhaven/solparse/xlog"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "solparse",
	Short: "Decode Solana transactions into DEX trades, liquidity events, and transfers",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			xlog.SetLevel(logrus.DebugLevel)
		}
	},
}

// Execute runs the root command, the sole entry point main.go calls.
func Execute() error {
	config.Load()
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	config.BindRPCURLFlag(rootCmd)
}
