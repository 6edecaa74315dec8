package decoders

import (
	"testing"

	"github.com/arkhaven/solparse/classify"
)

// TestPumpfunTradeEventBuy covers spec scenario S1: a single Pumpfun BUY
// trade event for 0.5 SOL in, 12345.6 MEME out.
func TestPumpfunTradeEventBuy(t *testing.T) {
	memeMint := pk(1)
	user := pk(2)

	const solRaw = 500_000_000     // 0.5 SOL @ 9 decimals
	const memeRaw = 12345_600_000  // 12345.6 MEME @ 6 decimals
	ev := pumpfunTradeEvent{
		Mint:        memeMint,
		SolAmount:   solRaw,
		TokenAmount: memeRaw,
		IsBuy:       true,
		User:        user,
	}

	ctx := Context{
		View:         newView(user, `{}`),
		Instructions: []classify.Instruction{instr(pumpfunProgramID, 0, encodePumpfunTradeEvent(ev))},
		// the SPL transfer CPI'd alongside the event already resolved MEME's
		// decimals; the event payload itself carries none.
		Transfers: transfersByProgram(pumpfunProgramID, leg(memeMint, memeRaw, 6, "0-1", nil)),
		Info:      DexInfo{ProgramID: pumpfunProgramID, AMMName: "Pumpfun"},
	}

	d := newPumpfunDecoder(ctx).(TradeDecoder)
	trades, err := d.Trades()
	if err != nil {
		t.Fatalf("Trades: %v", err)
	}
	if len(trades) != 1 {
		t.Fatalf("len(trades) = %d, want 1", len(trades))
	}
	tr := trades[0]
	if tr.Kind != TradeBuy {
		t.Errorf("Kind = %v, want TradeBuy", tr.Kind)
	}
	if !tr.InputToken.Mint.Equals(wrappedSOLMint) {
		t.Errorf("InputToken.Mint = %s, want wrapped SOL", tr.InputToken.Mint)
	}
	if tr.InputToken.Amount.UI == nil || *tr.InputToken.Amount.UI != 0.5 {
		t.Errorf("InputToken.Amount.UI = %v, want 0.5", tr.InputToken.Amount.UI)
	}
	if !tr.OutputToken.Mint.Equals(memeMint) {
		t.Errorf("OutputToken.Mint = %s, want %s", tr.OutputToken.Mint, memeMint)
	}
	if tr.OutputToken.Amount.UI == nil || *tr.OutputToken.Amount.UI != 12345.6 {
		t.Errorf("OutputToken.Amount.UI = %v, want 12345.6", tr.OutputToken.Amount.UI)
	}
}
