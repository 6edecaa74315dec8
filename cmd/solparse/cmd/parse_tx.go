package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/gagliardetto/solana-go/rpc"
	"github.com/spf13/cobra"

	"github.com/arkhaven/solparse/decoders"
	"github.com/arkhaven/solparse/dexparser"
	"github.com/arkhaven/solparse/meta"
)

var parseTxMode string

// parseTxCmd decodes one transaction from a file holding a JSON-encoded
// rpc.GetTransactionResult (the same shape `solana confirm -v --output
// json-compact <sig>` or this repository's own parse-sig subcommand
// produces), matching the teacher's NewTransactionParser(tx
// *rpc.GetTransactionResult) entry point generalized off the network.
var parseTxCmd = &cobra.Command{
	Use:   "parse-tx",
	Short: "Decode a single transaction from a JSON file",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := cmd.Flags().GetString("file")
		if err != nil {
			return err
		}
		mode, err := dexparser.ParseMode(parseTxMode)
		if err != nil {
			return err
		}

		raw, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}

		result, err := parseTxFile(cmd.Context(), raw, mode)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	},
}

func init() {
	parseTxCmd.Flags().String("file", "", "path to a JSON-encoded transaction (rpc.GetTransactionResult shape)")
	_ = parseTxCmd.MarkFlagRequired("file")
	parseTxCmd.Flags().StringVar(&parseTxMode, "mode", "all", "all|trades|liquidity|transfers")
	rootCmd.AddCommand(parseTxCmd)
}

// buildRequest turns one rpc.GetTransactionResult into a dexparser.Request,
// the shared conversion parse-tx and parse-sig both need.
func buildRequest(tx *rpc.GetTransactionResult) (dexparser.Request, error) {
	if tx.Transaction == nil {
		return dexparser.Request{}, fmt.Errorf("transaction JSON has no \"transaction\" field")
	}
	txBytes := tx.Transaction.GetBinary()
	if len(txBytes) == 0 {
		return dexparser.Request{}, fmt.Errorf("transaction JSON carries no binary payload (expected base64 encoding)")
	}

	req := dexparser.Request{
		TxBytes: txBytes,
		Meta:    meta.FromRPC(tx.Meta),
		Slot:    tx.Slot,
	}
	if tx.BlockTime != nil {
		req.BlockTime = tx.BlockTime.Time()
	}
	return req, nil
}

func parseTxFile(ctx context.Context, raw []byte, mode dexparser.Mode) (*dexparser.ParseResult, error) {
	var tx rpc.GetTransactionResult
	if err := json.Unmarshal(raw, &tx); err != nil {
		return nil, fmt.Errorf("decoding transaction JSON: %w", err)
	}

	req, err := buildRequest(&tx)
	if err != nil {
		return nil, err
	}

	parser := dexparser.New(decoders.NewRegistry(), dexparser.DefaultConfig())
	return parser.Parse(ctx, req, mode)
}
