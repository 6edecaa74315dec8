// Package dexparser is the public entry point: it builds a txview.View,
// runs the classifier and transfer extractor once, dispatches to every
// applicable protocol decoder in a deterministic order, and assembles the
// deduplicated, sorted ParseResult the rest of this repository exists to
// produce. It generalizes the teacher's ParseTransaction/ProcessSwapData
// two-pass dispatch (parser.go) into the classifier-driven,
// decoder-capability-driven algorithm spec'd in SPEC_FULL.md §4.7-4.8.
package dexparser

import (
	"time"

	"github.com/gagliardetto/solana-go"

	"github.com/arkhaven/solparse/decoders"
)

// TokenAmount, TokenInfo, FeeInfo, Trade, PoolEvent and LaunchEvent are the
// identical types decoders.TradeDecoder/LiquidityDecoder/LaunchDecoder
// return — aliased here rather than redefined, so dexparser.Trade and
// decoders.Trade are the same type and every decoder's return value can be
// appended directly into a ParseResult with no conversion step. See
// DESIGN.md for why the types live in package decoders instead of here.
type (
	TokenAmount = decoders.TokenAmount
	TokenInfo   = decoders.TokenInfo
	FeeInfo     = decoders.FeeInfo
	TradeKind   = decoders.TradeKind
	Trade       = decoders.Trade
	PoolEvent   = decoders.PoolEvent
	LaunchEvent = decoders.LaunchEvent
)

const (
	TradeBuy  = decoders.TradeBuy
	TradeSell = decoders.TradeSell
	TradeSwap = decoders.TradeSwap
)

// BalanceDelta mirrors the {pre, post, change} invariant carried over every
// balance accessor in this repository (a separate type with the same fields
// as txview.BalanceDelta, copied field by field by Parser.Parse, so
// ParseResult doesn't force callers to import txview just to read a field
// type).
type BalanceDelta struct {
	Pre    int64 `json:"pre"`
	Post   int64 `json:"post"`
	Change int64 `json:"change"`
}

// TransferRecord is the JSON-facing shape of an xfer.Record, carrying the
// same fields with camelCase tags per spec §6.3.
type TransferRecord struct {
	Kind        string            `json:"kind"`
	ProgramID   solana.PublicKey  `json:"programId"`
	Source      solana.PublicKey  `json:"source"`
	Destination solana.PublicKey  `json:"destination"`
	Authority   *solana.PublicKey `json:"authority,omitempty"`
	Mint        solana.PublicKey  `json:"mint"`
	AmountRaw   string            `json:"amountRaw"`
	Decimals    uint8             `json:"decimals"`
	UI          *float64          `json:"ui,omitempty"`
	Idx         string            `json:"idx"`
	Timestamp   time.Time         `json:"timestamp"`
	Signature   solana.Signature  `json:"signature"`
	IsFee       bool              `json:"isFee,omitempty"`
}

// ParseResult is the final record assembled by Parser.Parse, per spec
// §3/§6.3. Required fields are always populated; optional ones use
// `omitempty` so a zero/nil value vanishes from the wire shape instead of
// serializing as a JSON null/zero.
type ParseResult struct {
	State              bool                              `json:"state"`
	Signature          solana.Signature                  `json:"signature"`
	Slot               uint64                            `json:"slot"`
	Timestamp          time.Time                         `json:"timestamp"`
	Signer             solana.PublicKey                  `json:"signer"`
	Fee                TokenAmount                       `json:"fee"`
	ComputeUnits        *uint64                          `json:"computeUnits"`
	TxStatus           string                            `json:"txStatus"`
	Trades             []Trade                           `json:"trades"`
	Liquidities        []PoolEvent                       `json:"liquidities"`
	Transfers          []TransferRecord                  `json:"transfers"`
	AggregateTrade     *Trade                            `json:"aggregateTrade,omitempty"`
	MemeEvents         []LaunchEvent                     `json:"memeEvents,omitempty"`
	SolBalanceChange   *BalanceDelta                     `json:"solBalanceChange,omitempty"`
	TokenBalanceChange map[solana.PublicKey]BalanceDelta `json:"tokenBalanceChange,omitempty"`
	Msg                string                            `json:"msg,omitempty"`
}
