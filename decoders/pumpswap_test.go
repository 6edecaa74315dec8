package decoders

import (
	"testing"

	"github.com/arkhaven/solparse/classify"
)

// TestPumpswapSellWithCreatorFee covers spec scenario S5: a SELL trade event
// with both a protocol fee and a non-zero coin-creator fee. fee.amount must
// equal the sum of both.
func TestPumpswapSellWithCreatorFee(t *testing.T) {
	memeMint := pk(3)
	user := pk(4)
	feeRecipient := pk(5)
	creator := pk(6)

	ev := pumpfunTradeEvent{
		Mint:          memeMint,
		SolAmount:     1_000_000_000,
		TokenAmount:   50_000_000,
		IsBuy:         false,
		User:          user,
		HasExtended:   true,
		RealSol:       1_000_000_000,
		RealToken:     50_000_000,
		FeeRecipient:  feeRecipient,
		FeeBps:        30,
		Fee:           3_000_000,
		Creator:       creator,
		CreatorFeeBps: 5,
		CreatorFee:    500_000,
	}

	ctx := Context{
		View:         newView(user, `{}`),
		Instructions: []classify.Instruction{instr(pumpswapProgramID, 0, encodePumpfunTradeEvent(ev))},
		Transfers:    transfersByProgram(pumpswapProgramID, leg(memeMint, 50_000_000, 6, "0-1", nil)),
		Info:         DexInfo{ProgramID: pumpswapProgramID, AMMName: "Pumpswap"},
	}

	d := newPumpswapDecoder(ctx).(TradeDecoder)
	trades, err := d.Trades()
	if err != nil {
		t.Fatalf("Trades: %v", err)
	}
	if len(trades) != 1 {
		t.Fatalf("len(trades) = %d, want 1", len(trades))
	}
	tr := trades[0]
	if tr.Kind != TradeSell {
		t.Errorf("Kind = %v, want TradeSell", tr.Kind)
	}
	if len(tr.Fees) != 2 {
		t.Fatalf("len(Fees) = %d, want 2 (protocol + coinCreator)", len(tr.Fees))
	}
	if tr.Fee == nil {
		t.Fatal("Fee is nil, want protocol_fee + coin_creator_fee")
	}
	if tr.Fee.Amount.Raw != ev.Fee+ev.CreatorFee {
		t.Errorf("Fee.Amount.Raw = %d, want %d (protocol %d + creator %d)", tr.Fee.Amount.Raw, ev.Fee+ev.CreatorFee, ev.Fee, ev.CreatorFee)
	}
}
