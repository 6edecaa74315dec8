package decoders

import (
	"bytes"

	"github.com/gagliardetto/solana-go"

	"github.com/arkhaven/solparse/classify"
	"github.com/arkhaven/solparse/decoders/binreader"
)

// Anchor event instructions are always prefixed by the 8-byte event
// discriminator {228,69,165,46,81,203,154,29} before the protocol-specific
// 8-byte event id, giving the 16-byte discriminators below.
var anchorEventPrefix = []byte{228, 69, 165, 46, 81, 203, 154, 29}

var (
	pumpfunCreateInstrDisc  = []byte{24, 30, 200, 40, 5, 28, 7, 119}
	pumpfunMigrateInstrDisc = []byte{155, 234, 231, 146, 236, 158, 162, 30}
	pumpfunBuyInstrDisc     = []byte{102, 6, 61, 18, 1, 218, 235, 234}
	pumpfunSellInstrDisc    = []byte{51, 230, 133, 164, 1, 127, 131, 173}

	pumpfunTradeEventDisc    = append(append([]byte{}, anchorEventPrefix...), 189, 219, 127, 211, 78, 230, 97, 238)
	pumpfunCreateEventDisc   = append(append([]byte{}, anchorEventPrefix...), 27, 114, 169, 77, 222, 235, 99, 118)
	pumpfunCompleteEventDisc = append(append([]byte{}, anchorEventPrefix...), 95, 114, 97, 156, 212, 46, 152, 8)
	pumpfunMigrateEventDisc  = append(append([]byte{}, anchorEventPrefix...), 189, 233, 93, 185, 92, 148, 234, 148)
)

type pumpfunDecoder struct {
	ctx Context
}

func newPumpfunDecoder(ctx Context) Decoder {
	return &pumpfunDecoder{ctx: ctx}
}

func (d *pumpfunDecoder) findEvent(disc []byte) (classify.Instruction, bool) {
	for _, ix := range d.ctx.Instructions {
		if bytes.HasPrefix(ix.Data, disc) {
			return ix, true
		}
	}
	return classify.Instruction{}, false
}

func (d *pumpfunDecoder) findInstruction(disc []byte) (classify.Instruction, bool) {
	for _, ix := range d.ctx.Instructions {
		if bytes.HasPrefix(ix.Data, disc) {
			return ix, true
		}
	}
	return classify.Instruction{}, false
}

// pumpfunTradeEvent is the decoded TRADE event payload per spec §4.6:
// mint(32) sol_amount(u64) token_amount(u64) is_buy(u8) user(32)
// event_ts(i64) virtual_sol(u64) virtual_token(u64) [real_sol(u64)
// real_token(u64) fee_recipient(32) fee_bps(u16) fee(u64) creator(32)
// creator_fee_bps(u16) creator_fee(u64)].
type pumpfunTradeEvent struct {
	Mint           solana.PublicKey
	SolAmount      uint64
	TokenAmount    uint64
	IsBuy          bool
	User           solana.PublicKey
	EventTS        int64
	VirtualSol     uint64
	VirtualToken   uint64
	HasExtended    bool
	RealSol        uint64
	RealToken      uint64
	FeeRecipient   solana.PublicKey
	FeeBps         uint16
	Fee            uint64
	Creator        solana.PublicKey
	CreatorFeeBps  uint16
	CreatorFee     uint64
}

func decodePumpfunTradeEvent(data []byte) (pumpfunTradeEvent, bool) {
	body := data[len(anchorEventPrefix)+8:]
	r := binreader.New(body)
	var ev pumpfunTradeEvent
	ev.Mint = r.Pubkey()
	ev.SolAmount = r.U64()
	ev.TokenAmount = r.U64()
	ev.IsBuy = r.U8() == 1
	ev.User = r.Pubkey()
	ev.EventTS = r.I64()
	ev.VirtualSol = r.U64()
	ev.VirtualToken = r.U64()
	if r.Err() != nil {
		return ev, false
	}
	if r.Remaining() >= 8+8+32+2+8+32+2+8 {
		ev.HasExtended = true
		ev.RealSol = r.U64()
		ev.RealToken = r.U64()
		ev.FeeRecipient = r.Pubkey()
		ev.FeeBps = r.U16()
		ev.Fee = r.U64()
		ev.Creator = r.Pubkey()
		ev.CreatorFeeBps = r.U16()
		ev.CreatorFee = r.U64()
	}
	return ev, r.Err() == nil
}

// Trades decodes a TRADE event when present; otherwise falls back to
// detecting BUY/SELL purely from the instruction discriminator, matching
// the teacher's detectBuySell + adjustOrderBySolDelta sanity pass.
func (d *pumpfunDecoder) Trades() ([]Trade, error) {
	solInfo := TokenInfo{Mint: wrappedSOLMint, Decimals: 9, Amount: tokenAmount(0, 9)}

	if ix, ok := d.findEvent(pumpfunTradeEventDisc); ok {
		ev, ok := decodePumpfunTradeEvent(ix.Data)
		if !ok {
			return nil, nil
		}
		tokenDecimals, _ := decimalsForMint(d.ctx, ev.Mint)
		solInfo.Amount = tokenAmount(ev.SolAmount, 9)
		tokenInfo := TokenInfo{Mint: ev.Mint, Decimals: tokenDecimals, Amount: tokenAmount(ev.TokenAmount, tokenDecimals)}
		trade := Trade{
			ProgramID: d.ctx.Info.ProgramID,
			AMM:       "pumpfun",
			Idx:       idxOf(ix),
		}
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
		trade.User = &user
		trade.Signer = &user
		// fee.amount must equal protocol_fee + coin_creator_fee, so Fee is the
		// sum of both legs rather than just the protocol fee's.
		if ev.HasExtended && ev.Fee > 0 {
			protocolFee := FeeInfo{Recipient: ev.FeeRecipient, Amount: tokenAmount(ev.Fee, 9), Kind: "protocol"}
			trade.Fees = append(trade.Fees, protocolFee)
			total := ev.Fee
			if ev.CreatorFee > 0 {
				trade.Fees = append(trade.Fees, FeeInfo{Recipient: ev.Creator, Amount: tokenAmount(ev.CreatorFee, 9), Kind: "creator"})
				total += ev.CreatorFee
			}
			trade.Fee = &FeeInfo{Recipient: ev.FeeRecipient, Amount: tokenAmount(total, 9), Kind: "total"}
		}
		return []Trade{trade}, nil
	}

	// Discriminator fallback: no event present, detect BUY/SELL directly.
	var disc []byte
	var isBuy bool
	if ix, ok := d.findInstruction(pumpfunBuyInstrDisc); ok {
		disc, isBuy = ix.Data, true
		_ = disc
	} else if ix, ok := d.findInstruction(pumpfunSellInstrDisc); ok {
		disc, isBuy = ix.Data, false
		_ = disc
	} else {
		return nil, nil
	}

	signer, hasSigner := d.ctx.View.Signer()
	delta := d.ctx.View.SignerSOLDelta()
	// adjustOrderBySolDelta: a buy spends lamports (delta negative), a sell
	// receives them (delta positive); flip the detected direction when the
	// observed delta disagrees, the same sanity check the teacher runs.
	if hasSigner {
		if isBuy && delta.Change > 0 {
			isBuy = false
		} else if !isBuy && delta.Change < 0 {
			isBuy = true
		}
	}

	// No event payload means no ev.Mint either; borrow the token side's
	// amount and decimals from the SPL transfer CPI'd alongside this
	// instruction, and the SOL side's from the signer's observed lamport
	// delta.
	var tokenRaw uint64
	var tokenDecimals uint8
	var tokenMint solana.PublicKey
	for _, leg := range d.ctx.Transfers[d.ctx.Info.ProgramID] {
		if leg.Mint.Equals(wrappedSOLMint) {
			continue
		}
		tokenRaw += leg.Amount.Raw
		tokenDecimals = leg.Amount.Decimals
		tokenMint = leg.Mint
	}
	tokenInfo := TokenInfo{Mint: tokenMint, Decimals: tokenDecimals, Amount: tokenAmount(tokenRaw, tokenDecimals)}
	solAbs := delta.Change
	if solAbs < 0 {
		solAbs = -solAbs
	}
	solInfo.Amount = tokenAmount(uint64(solAbs), 9)

	trade := Trade{ProgramID: d.ctx.Info.ProgramID, AMM: "pumpfun"}
	if isBuy {
		trade.Kind = TradeBuy
		trade.InputToken = solInfo
		trade.OutputToken = tokenInfo
	} else {
		trade.Kind = TradeSell
		trade.InputToken = tokenInfo
		trade.OutputToken = solInfo
	}
	if hasSigner {
		trade.User = &signer
		trade.Signer = &signer
	}
	return []Trade{trade}, nil
}

// LaunchEvents decodes the CREATE event: three length-prefixed strings
// (name, symbol, uri) then mint(32) bonding_curve(32) user(32), optionally
// followed by creator(32) ts(i64) and 32 bytes of reserves.
func (d *pumpfunDecoder) LaunchEvents() ([]LaunchEvent, error) {
	ix, ok := d.findEvent(pumpfunCreateEventDisc)
	if !ok {
		return nil, nil
	}
	body := ix.Data[len(anchorEventPrefix)+8:]
	r := binreader.New(body)
	name := r.String()
	symbol := r.String()
	uri := r.String()
	mint := r.Pubkey()
	_ = r.Pubkey() // bonding_curve
	user := r.Pubkey()
	if r.Err() != nil {
		return nil, nil
	}

	ev := LaunchEvent{
		BaseMint:  mint,
		QuoteMint: wrappedSOLMint,
		Name:      name,
		Symbol:    symbol,
		URI:       uri,
		Protocol:  "pumpfun",
		EventType: "create",
	}
	if r.Remaining() >= 32+8 {
		creator := r.Pubkey()
		if r.Err() == nil {
			ev.Creator = &creator
		}
	} else {
		ev.Creator = &user
	}
	return []LaunchEvent{ev}, nil
}

func idxOf(ix classify.Instruction) string {
	if ix.InnerIndex == nil {
		return itoa(ix.OuterIndex)
	}
	return itoa(ix.OuterIndex) + "-" + itoa(*ix.InnerIndex)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
