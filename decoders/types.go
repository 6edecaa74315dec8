// Package decoders holds the protocol-specific decoding logic for every
// DEX/launchpad family this repository understands, registered against the
// program ids that invoke them. It generalizes the teacher's hardcoded
// program-id switch in parser.go's ParseTransaction into a registry of
// closures (decoders.Registry), matching original_source's "no inheritance,
// one family per discriminator table" design.
//
// Trade/PoolEvent/LaunchEvent/TokenAmount/TokenInfo/FeeInfo are defined here
// rather than in dexparser (their spec-documented home) because
// decoders.TradeDecoder/LiquidityDecoder/LaunchDecoder return them while
// dexparser.Parser depends on decoders.Registry: a dexparser<->decoders
// cycle. dexparser re-exports every one of these names as a type alias, so
// dexparser.Trade and decoders.Trade are the identical type and every
// caller-facing name from the spec still exists — see DESIGN.md.
package decoders

import (
	"math"
	"time"

	"github.com/gagliardetto/solana-go"

	"github.com/arkhaven/solparse/xfer"
)

// TokenAmount is the {raw, decimals, ui} shape every amount field uses.
type TokenAmount struct {
	Raw      uint64   `json:"amountRaw,string"`
	Decimals uint8    `json:"decimals"`
	UI       *float64 `json:"ui,omitempty"`
}

// TokenInfo identifies a mint and carries the summed amount moved on that
// side of a trade/pool event, optionally with a human-readable symbol when
// the decoder that produced it has one available.
type TokenInfo struct {
	Mint     solana.PublicKey `json:"mint"`
	Symbol   string           `json:"symbol,omitempty"`
	Decimals uint8            `json:"decimals"`
	Amount   TokenAmount      `json:"amount"`
}

// tokenAmount builds a TokenAmount from a raw integer amount, the shape
// every decoder uses to populate TokenInfo.Amount/FeeInfo.Amount from a raw
// lamport/token count.
func tokenAmount(raw uint64, decimals uint8) TokenAmount {
	ui := float64(raw) / math.Pow10(int(decimals))
	return TokenAmount{Raw: raw, Decimals: decimals, UI: &ui}
}

// tokenAmountFromXfer mirrors an already-computed xfer.TokenAmount, the
// conversion every decoder needs when summing transfer legs into a trade's
// input_token/output_token amount per spec §4.6(a).
func tokenAmountFromXfer(a xfer.TokenAmount) TokenAmount {
	return tokenAmount(a.Raw, a.Decimals)
}

// decimalsForMint scans every transfer leg grouped under this context for
// one touching mint and borrows its already-resolved decimals. Event-decoded
// decoders (Pumpfun/Pumpswap's TRADE event) carry a raw amount for their
// mint but no decimals field of their own; the SPL transfer CPI'd alongside
// the event already had its decimals resolved by xfer.Extract, so this is
// cheaper than re-deriving them from mint metadata.
func decimalsForMint(ctx Context, mint solana.PublicKey) (uint8, bool) {
	for _, legs := range ctx.Transfers {
		for _, leg := range legs {
			if leg.Mint.Equals(mint) {
				return leg.Amount.Decimals, true
			}
		}
	}
	return 0, false
}

// FeeInfo is one fee leg attached to a trade (protocol fee, creator fee,
// commission, ...).
type FeeInfo struct {
	Recipient solana.PublicKey `json:"recipient"`
	Amount    TokenAmount      `json:"amount"`
	Kind      string           `json:"kind"`
}

// TradeKind enumerates the directions a Trade can represent.
type TradeKind string

const (
	TradeBuy  TradeKind = "buy"
	TradeSell TradeKind = "sell"
	TradeSwap TradeKind = "swap"
)

// Trade is one decoded swap leg.
type Trade struct {
	Kind        TradeKind         `json:"kind"`
	Pools       []string          `json:"pools,omitempty"`
	InputToken  TokenInfo         `json:"inputToken"`
	OutputToken TokenInfo         `json:"outputToken"`
	SlippageBps *uint64           `json:"slippageBps,omitempty"`
	Fee         *FeeInfo          `json:"fee,omitempty"`
	Fees        []FeeInfo         `json:"fees,omitempty"`
	User        *solana.PublicKey `json:"user,omitempty"`
	ProgramID   solana.PublicKey  `json:"programId"`
	AMM         string            `json:"amm"`
	Route       *string           `json:"route,omitempty"`
	Slot        uint64            `json:"slot,omitempty"`
	Timestamp   time.Time         `json:"timestamp"`
	Signature   solana.Signature  `json:"signature"`
	Idx         string            `json:"idx"`
	Signer      *solana.PublicKey `json:"signer,omitempty"`
}

// PoolEvent is a decoded liquidity add/remove/create event.
type PoolEvent struct {
	PoolID    solana.PublicKey  `json:"poolId"`
	LPMint    *solana.PublicKey `json:"lpMint,omitempty"`
	Token0    TokenInfo         `json:"token0"`
	Token1    TokenInfo         `json:"token1"`
	LPDelta   *TokenAmount      `json:"lpDelta,omitempty"`
	EventType string            `json:"eventType"`
}

// LaunchEvent is a decoded token-launch/create event (Pumpfun CREATE, DBC
// INITIALIZE_VIRTUAL_POOL_*, ...).
type LaunchEvent struct {
	BaseMint  solana.PublicKey  `json:"baseMint"`
	QuoteMint solana.PublicKey  `json:"quoteMint"`
	Name      string            `json:"name,omitempty"`
	Symbol    string            `json:"symbol,omitempty"`
	URI       string            `json:"uri,omitempty"`
	Creator   *solana.PublicKey `json:"creator,omitempty"`
	PoolID    *solana.PublicKey `json:"poolId,omitempty"`
	Protocol  string            `json:"protocol"`
	EventType string            `json:"eventType"`
}
