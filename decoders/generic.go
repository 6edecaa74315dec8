package decoders

import (
	"github.com/gagliardetto/solana-go"
)

// genericDecoder implements TradeDecoder by treating any ≥2-transfer
// instruction group as a swap: ported from the teacher's aggregate-leg logic
// in parser.go (uniqueTokens/seenInputs/seenOutputs), generalized to any
// program rather than hardcoded per-AMM branches. Registered for Raydium and
// Orca (neither emits a protocol-specific event) and used as the
// try_unknown_dex fallback from the orchestrator.
type genericDecoder struct {
	ctx Context
}

func newGenericDecoder(ctx Context) Decoder {
	return &genericDecoder{ctx: ctx}
}

// NewGenericBuilder exposes newGenericDecoder as a Builder for dexparser's
// try_unknown_dex fallback path (spec §4.7 step 4), which needs to register
// the generic decoder against a program id it never statically knew about.
func NewGenericBuilder() Builder { return newGenericDecoder }

// Trades identifies the unique mints among every transfer leg grouped under
// this program id and, when exactly two are present and at least one is a
// supported quote asset (SOL/USDC/USDT per spec §6.6), sums each mint's raw
// amount across all of its legs to yield input_token/output_token, per spec
// §4.6(a). Direction is decided by whether the signer appears as
// source/authority on a leg for that mint (signer-side mint is the input)
// versus destination (output). Anything other than exactly two qualifying
// mints (a 3+-mint multi-hop, or a single mint) is declined rather than
// guessed.
func (d *genericDecoder) Trades() ([]Trade, error) {
	legs := d.ctx.Transfers[d.ctx.Info.ProgramID]
	if len(legs) < 2 {
		return nil, nil
	}

	signer, hasSigner := d.ctx.View.Signer()

	type mintSum struct {
		decimals uint8
		raw      uint64
		wasSeen  bool // true once a leg with the signer as source or authority touches this mint
	}
	sums := make(map[solana.PublicKey]*mintSum)
	var order []solana.PublicKey
	for _, leg := range legs {
		s, ok := sums[leg.Mint]
		if !ok {
			s = &mintSum{decimals: leg.Amount.Decimals}
			sums[leg.Mint] = s
			order = append(order, leg.Mint)
		}
		s.raw += leg.Amount.Raw
		if hasSigner && (leg.Source.Equals(signer) || (leg.Authority != nil && leg.Authority.Equals(signer))) {
			s.wasSeen = true
		}
	}

	if len(sums) != 2 {
		return nil, nil
	}
	if !isSupportedQuote(order[0]) && !isSupportedQuote(order[1]) {
		return nil, nil
	}

	var inMint, outMint solana.PublicKey
	inSet, outSet := false, false
	for _, m := range order {
		if sums[m].wasSeen {
			inMint, inSet = m, true
		} else {
			outMint, outSet = m, true
		}
	}
	if !inSet || !outSet {
		// Neither mint, or both, is directly tied to the signer (e.g. an
		// intermediate hop); fall back to transfer order: first seen mint
		// in, second out.
		inMint, outMint = order[0], order[1]
	}
	if inMint.Equals(outMint) {
		return nil, nil
	}

	in := sums[inMint]
	out := sums[outMint]
	last := legs[len(legs)-1]

	trade := Trade{
		Kind:        TradeSwap,
		InputToken:  TokenInfo{Mint: inMint, Decimals: in.decimals, Amount: tokenAmount(in.raw, in.decimals)},
		OutputToken: TokenInfo{Mint: outMint, Decimals: out.decimals, Amount: tokenAmount(out.raw, out.decimals)},
		ProgramID:   d.ctx.Info.ProgramID,
		AMM:         d.ctx.Info.AMMName,
		Idx:         last.Idx,
		Timestamp:   last.Timestamp,
		Signature:   last.Signature,
	}
	if hasSigner {
		trade.Signer = &signer
		trade.User = &signer
	}
	return []Trade{trade}, nil
}

func isSupportedQuote(mint solana.PublicKey) bool {
	_, ok := SupportedQuoteMints[mint]
	return ok
}
