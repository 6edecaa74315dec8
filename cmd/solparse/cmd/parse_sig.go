package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"

	"github.com/arkhaven/solparse/config"
	"github.com/arkhaven/solparse/decoders"
	"github.com/arkhaven/solparse/dexparser"
	"github.com/arkhaven/solparse/rpcutil"
)

var (
	parseSigSignature string
	parseSigMode      string
)

// parseSigCmd fetches one transaction by signature over RPC and decodes it,
// the online counterpart to parse-tx's offline file path.
var parseSigCmd = &cobra.Command{
	Use:   "parse-sig",
	Short: "Fetch a transaction by signature over RPC and decode it",
	RunE: func(cmd *cobra.Command, args []string) error {
		sig, err := solana.SignatureFromBase58(parseSigSignature)
		if err != nil {
			return fmt.Errorf("invalid --signature: %w", err)
		}
		mode, err := dexparser.ParseMode(parseSigMode)
		if err != nil {
			return err
		}

		client := rpcutil.NewFromURL(config.RPCURL(), config.RPCRequestsPerSecond)
		tx, err := client.GetTransaction(cmd.Context(), sig)
		if err != nil {
			return err
		}

		req, err := buildRequest(tx)
		if err != nil {
			return err
		}
		req.Signature = sig

		parser := dexparser.New(decoders.NewRegistry(), dexparser.DefaultConfig())
		result, err := parser.Parse(cmd.Context(), req, mode)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	},
}

func init() {
	parseSigCmd.Flags().StringVar(&parseSigSignature, "signature", "", "transaction signature (base58)")
	_ = parseSigCmd.MarkFlagRequired("signature")
	parseSigCmd.Flags().StringVar(&parseSigMode, "mode", "all", "all|trades|liquidity|transfers")
	rootCmd.AddCommand(parseSigCmd)
}
