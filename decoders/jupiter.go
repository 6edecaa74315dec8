package decoders

import (
	"bytes"

	ag_binary "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

// jupiterRouteEventDisc is the 16-byte Anchor event discriminator for
// Jupiter's RouteV2 event, ported verbatim from the teacher's
// JupiterRouteEventDiscriminator in event_jupiter.go.
var jupiterRouteEventDisc = []byte{228, 69, 165, 46, 81, 203, 154, 29, 64, 198, 205, 232, 38, 8, 113, 226}

// jupiterSwapEventData mirrors the Borsh-encoded Jupiter SwapEvent payload:
// one leg of a (possibly multi-hop) route.
type jupiterSwapEventData struct {
	Amm          solana.PublicKey
	InputMint    solana.PublicKey
	InputAmount  uint64
	OutputMint   solana.PublicKey
	OutputAmount uint64
}

type jupiterDecoder struct {
	ctx Context
}

func newJupiterDecoder(ctx Context) Decoder {
	return &jupiterDecoder{ctx: ctx}
}

// containsDCAProgram reports whether a DCA (dollar-cost-average) program
// participates in this transaction; when it does, the assumed signer index
// is account 2 rather than 0, ported as-is from the teacher (see
// DESIGN.md).
func (d *jupiterDecoder) containsDCAProgram() bool {
	for _, pk := range d.ctx.View.AccountKeys() {
		if pk.Equals(jupiterDCAProgramID) {
			return true
		}
	}
	return false
}

var jupiterDCAProgramID = solana.MustPublicKeyFromBase58("DCA265Vj8a9CEuX1eb1LWRnDT7uK6q1xMipnNyatn23M")

func (d *jupiterDecoder) signerIndex() int {
	if d.containsDCAProgram() {
		return 2
	}
	return 0
}

// decodeRouteEvents decodes every RouteV2 event instruction into its legs.
func (d *jupiterDecoder) decodeRouteEvents() []jupiterSwapEventData {
	var legs []jupiterSwapEventData
	for _, ix := range d.ctx.Instructions {
		if !bytes.HasPrefix(ix.Data, jupiterRouteEventDisc) {
			continue
		}
		body := ix.Data[len(jupiterRouteEventDisc):]
		var ev jupiterSwapEventData
		dec := ag_binary.NewBorshDecoder(body)
		if err := dec.Decode(&ev); err != nil {
			continue
		}
		legs = append(legs, ev)
	}
	return legs
}

// Trades aggregates net flow across every leg of a route (parseJupiterEvents
// ported from event_jupiter.go): the mint with the largest positive net flow
// is the output, the mint with the largest negative net flow is the input.
// When no RouteV2 event is present, falls back to the raw transfers grouped
// under the Jupiter program id (the router-delegation / raw-transfer-harvest
// tiers of the teacher's processJupiterSwaps).
func (d *jupiterDecoder) Trades() ([]Trade, error) {
	legs := d.decodeRouteEvents()
	if len(legs) == 0 {
		return d.tradesFromTransfers()
	}

	net := make(map[solana.PublicKey]int64)
	for _, l := range legs {
		net[l.InputMint] -= int64(l.InputAmount)
		net[l.OutputMint] += int64(l.OutputAmount)
	}

	var inputMint, outputMint solana.PublicKey
	var maxPos, maxNeg int64
	for mint, n := range net {
		if n > maxPos {
			maxPos, outputMint = n, mint
		}
		if n < maxNeg {
			maxNeg, inputMint = n, mint
		}
	}
	if maxPos == 0 || maxNeg == 0 {
		return nil, nil
	}

	// Sum each selected mint's own legs for the trade-level amount, rather
	// than reusing its net flow, since net flow for a mint touched by an
	// intermediate hop can undercount the gross amount moved.
	var inRaw, outRaw uint64
	for _, l := range legs {
		if l.InputMint.Equals(inputMint) {
			inRaw += l.InputAmount
		}
		if l.OutputMint.Equals(outputMint) {
			outRaw += l.OutputAmount
		}
	}
	inDecimals, _ := decimalsForMint(d.ctx, inputMint)
	outDecimals, _ := decimalsForMint(d.ctx, outputMint)

	signer, _ := d.ctx.View.AccountAt(d.signerIndex())
	trade := Trade{
		Kind:        TradeSwap,
		InputToken:  TokenInfo{Mint: inputMint, Decimals: inDecimals, Amount: tokenAmount(inRaw, inDecimals)},
		OutputToken: TokenInfo{Mint: outputMint, Decimals: outDecimals, Amount: tokenAmount(outRaw, outDecimals)},
		ProgramID:   d.ctx.Info.ProgramID,
		AMM:         "jupiter",
		User:        &signer,
		Signer:      &signer,
	}
	route := "aggregator"
	trade.Route = &route
	return []Trade{trade}, nil
}

func (d *jupiterDecoder) tradesFromTransfers() ([]Trade, error) {
	legs := d.ctx.Transfers[d.ctx.Info.ProgramID]
	if len(legs) < 2 {
		return nil, nil
	}
	first, last := legs[0], legs[len(legs)-1]
	if first.Mint.Equals(last.Mint) {
		return nil, nil
	}
	trade := Trade{
		Kind:        TradeSwap,
		InputToken:  TokenInfo{Mint: first.Mint, Decimals: first.Amount.Decimals, Amount: tokenAmountFromXfer(first.Amount)},
		OutputToken: TokenInfo{Mint: last.Mint, Decimals: last.Amount.Decimals, Amount: tokenAmountFromXfer(last.Amount)},
		ProgramID:   d.ctx.Info.ProgramID,
		AMM:         "jupiter",
		Idx:         last.Idx,
		Timestamp:   last.Timestamp,
		Signature:   last.Signature,
	}
	return []Trade{trade}, nil
}
