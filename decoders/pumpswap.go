package decoders

import (
	"bytes"

	"github.com/arkhaven/solparse/classify"
)

var (
	pumpswapCreatePoolInstrDisc = []byte{233, 146, 209, 142, 207, 104, 64, 188}
	pumpswapAddLiqInstrDisc     = []byte{242, 35, 198, 137, 82, 225, 242, 182}
	pumpswapRemoveLiqInstrDisc  = []byte{183, 18, 70, 156, 148, 109, 161, 34}
)

// pumpswapDecoder handles the Pumpswap constant-product AMM: trades are
// decoded from Anchor events carrying pumpfun's TRADE event discriminator
// and layout (the programs are siblings), while pool lifecycle events
// (create/add/remove) are matched by 8-byte instruction discriminators.
type pumpswapDecoder struct {
	ctx Context
}

func newPumpswapDecoder(ctx Context) Decoder {
	return &pumpswapDecoder{ctx: ctx}
}

// Trades decodes each instruction prefixed with pumpfunTradeEventDisc via
// decodePumpfunTradeEvent; no Pumpswap-specific buy/sell event layout is
// decoded. Trades are distinguished only by program id and Pumpswap's own
// fee accounting (protocol fee always present, coinCreator fee optional).
func (d *pumpswapDecoder) Trades() ([]Trade, error) {
	for _, ix := range d.ctx.Instructions {
		if !bytes.HasPrefix(ix.Data, pumpfunTradeEventDisc) {
			continue
		}
		ev, ok := decodePumpfunTradeEvent(ix.Data)
		if !ok {
			continue
		}
		solInfo := TokenInfo{Mint: wrappedSOLMint, Decimals: 9, Amount: tokenAmount(ev.SolAmount, 9)}
		tokenDecimals, _ := decimalsForMint(d.ctx, ev.Mint)
		tokenInfo := TokenInfo{Mint: ev.Mint, Decimals: tokenDecimals, Amount: tokenAmount(ev.TokenAmount, tokenDecimals)}
		trade := Trade{ProgramID: d.ctx.Info.ProgramID, AMM: "pumpswap", Idx: idxOf(ix)}
		if ev.IsBuy {
			trade.Kind = TradeBuy
			trade.InputToken = solInfo
			trade.OutputToken = tokenInfo
		} else {
			trade.Kind = TradeSell
			trade.InputToken = tokenInfo
			trade.OutputToken = solInfo
		}
		user := ev.User
		trade.User, trade.Signer = &user, &user

		// fee.amount must equal protocol_fee + coin_creator_fee; sum both raw
		// legs into trade.Fee once fees is fully built rather than stopping at
		// the protocol leg.
		var fees []FeeInfo
		var total uint64
		if ev.HasExtended && ev.Fee > 0 {
			fees = append(fees, FeeInfo{Recipient: ev.FeeRecipient, Amount: tokenAmount(ev.Fee, 9), Kind: "protocol"})
			total += ev.Fee
			if ev.CreatorFee > 0 {
				fees = append(fees, FeeInfo{Recipient: ev.Creator, Amount: tokenAmount(ev.CreatorFee, 9), Kind: "coinCreator"})
				total += ev.CreatorFee
			}
		}
		trade.Fees = fees
		if total > 0 {
			trade.Fee = &FeeInfo{Recipient: ev.FeeRecipient, Amount: tokenAmount(total, 9), Kind: "total"}
		}
		return []Trade{trade}, nil
	}
	return nil, nil
}

// Liquidity decodes CREATE_POOL/ADD_LIQUIDITY/REMOVE_LIQUIDITY instructions
// by their 8-byte Anchor instruction discriminator, reading pool/mint
// accounts off the instruction's account list rather than an event payload
// (Pumpswap's liquidity instructions don't emit a dedicated event in every
// version), mirroring the teacher's liquidity_ops.go anchor-name approach
// generalized to direct discriminator bytes for this one family.
func (d *pumpswapDecoder) Liquidity() ([]PoolEvent, error) {
	var out []PoolEvent
	for _, ix := range d.ctx.Instructions {
		switch {
		case bytes.HasPrefix(ix.Data, pumpswapCreatePoolInstrDisc):
			out = append(out, poolEventFromAccounts(d.ctx, ix, "create"))
		case bytes.HasPrefix(ix.Data, pumpswapAddLiqInstrDisc):
			out = append(out, poolEventFromAccounts(d.ctx, ix, "add"))
		case bytes.HasPrefix(ix.Data, pumpswapRemoveLiqInstrDisc):
			out = append(out, poolEventFromAccounts(d.ctx, ix, "remove"))
		}
	}
	return out, nil
}

// poolEventFromAccounts resolves the pool id from the instruction's account
// list and, like tradeFromTransfers does for swaps, threads the CPI'd token
// transfer legs through normalizeTokenOrder to populate Token0/Token1 so a
// liquidity event's mints are never left zero-valued.
func poolEventFromAccounts(ctx Context, ix classify.Instruction, eventType string) PoolEvent {
	var ev PoolEvent
	ev.EventType = eventType
	if len(ix.Accounts) > 0 {
		if pool, ok := ctx.View.AccountAt(int(ix.Accounts[0])); ok {
			ev.PoolID = pool
		}
	}
	token0, token1 := normalizeTokenOrder(transferLegsForOuter(ctx, ix.OuterIndex))
	if token0 != nil {
		ev.Token0 = *token0
	}
	if token1 != nil {
		ev.Token1 = *token1
	}
	return ev
}
