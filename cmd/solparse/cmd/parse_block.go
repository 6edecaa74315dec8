package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"runtime"
	"sync"

	"github.com/gagliardetto/solana-go/rpc"
	"github.com/spf13/cobra"

	"github.com/arkhaven/solparse/decoders"
	"github.com/arkhaven/solparse/dexparser"
)

var parseBlockOutput string

// parseBlockCmd decodes every transaction in a file holding a JSON array of
// rpc.GetTransactionResult-shaped objects (the per-transaction entries of a
// fetched block), fanning work out across a worker pool sized to
// runtime.GOMAXPROCS(0) per spec §5 — each worker runs against its own
// *dexparser.Parser and independent *txview.View, so no synchronization is
// needed beyond collecting results.
var parseBlockCmd = &cobra.Command{
	Use:   "parse-block",
	Short: "Decode every transaction in a block file",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := cmd.Flags().GetString("file")
		if err != nil {
			return err
		}
		raw, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}

		var txs []rpc.GetTransactionResult
		if err := json.Unmarshal(raw, &txs); err != nil {
			return fmt.Errorf("decoding block JSON (expected an array of transactions): %w", err)
		}

		results := parseBlockConcurrently(cmd.Context(), txs)

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		switch parseBlockOutput {
		case "raw":
			return enc.Encode(results)
		case "parsed", "":
			return enc.Encode(flattenBlockResults(results))
		default:
			return fmt.Errorf("unknown --mode %q, want raw|parsed", parseBlockOutput)
		}
	},
}

func init() {
	parseBlockCmd.Flags().String("file", "", "path to a JSON array of transactions")
	_ = parseBlockCmd.MarkFlagRequired("file")
	parseBlockCmd.Flags().StringVar(&parseBlockOutput, "mode", "parsed", "raw|parsed")
	rootCmd.AddCommand(parseBlockCmd)
}

type blockResult struct {
	Index  int                    `json:"index"`
	Result *dexparser.ParseResult `json:"result,omitempty"`
	Err    string                 `json:"error,omitempty"`
}

func parseBlockConcurrently(ctx context.Context, txs []rpc.GetTransactionResult) []blockResult {
	results := make([]blockResult, len(txs))

	workers := runtime.GOMAXPROCS(0)
	if workers > len(txs) {
		workers = len(txs)
	}
	if workers < 1 {
		workers = 1
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			registry := decoders.NewRegistry()
			parser := dexparser.New(registry, dexparser.DefaultConfig())
			for i := range jobs {
				req, err := buildRequest(&txs[i])
				if err != nil {
					results[i] = blockResult{Index: i, Err: err.Error()}
					continue
				}
				res, err := parser.Parse(ctx, req, dexparser.ModeAll)
				if err != nil {
					results[i] = blockResult{Index: i, Err: err.Error()}
					continue
				}
				results[i] = blockResult{Index: i, Result: res}
			}
		}()
	}
	for i := range txs {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
	return results
}

// flattenBlockResults merges every successfully-parsed transaction's trades,
// liquidities and transfers into one combined view, the "parsed" output
// shape's whole-block summary.
func flattenBlockResults(results []blockResult) dexparser.ParseResult {
	var out dexparser.ParseResult
	out.State = true
	out.TxStatus = "SUCCESS"
	for _, r := range results {
		if r.Result == nil {
			continue
		}
		out.Trades = append(out.Trades, r.Result.Trades...)
		out.Liquidities = append(out.Liquidities, r.Result.Liquidities...)
		out.Transfers = append(out.Transfers, r.Result.Transfers...)
	}
	return out
}
