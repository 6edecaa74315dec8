package decoders

import (
	"testing"

	"github.com/arkhaven/solparse/classify"
)

// TestMeteoraDLMMAddLiquidity covers spec scenario S6: an ADD_LIQUIDITY_BY_
// STRATEGY instruction with two transfers of distinct mints. Both
// token0_mint and token1_mint must be set, normalized so the non-quote mint
// is token0.
func TestMeteoraDLMMAddLiquidity(t *testing.T) {
	baseMint := pk(20)
	disc := anchorDiscriminator8("add_liquidity_by_strategy")

	ctx := Context{
		View: newView(pk(21), `{}`),
		Instructions: []classify.Instruction{
			instr(meteoraDLMMProgramID, 0, disc, 1),
		},
		Transfers: transfersByProgram(meteoraDLMMProgramID,
			leg(baseMint, 1_000_000, 6, "0-0", nil),
			leg(wrappedSOLMint, 2_000_000_000, 9, "0-1", nil),
		),
		Info: DexInfo{ProgramID: meteoraDLMMProgramID, AMMName: "Meteora DLMM"},
	}

	d := newMeteoraDecoder(ctx).(LiquidityDecoder)
	evs, err := d.Liquidity()
	if err != nil {
		t.Fatalf("Liquidity: %v", err)
	}
	if len(evs) != 1 {
		t.Fatalf("len(events) = %d, want 1", len(evs))
	}
	ev := evs[0]
	if ev.EventType != "add" {
		t.Errorf("EventType = %q, want %q", ev.EventType, "add")
	}
	if ev.Token0.Mint.IsZero() || ev.Token1.Mint.IsZero() {
		t.Fatalf("Token0/Token1 must both be set, got %+v / %+v", ev.Token0, ev.Token1)
	}
	if !ev.Token0.Mint.Equals(baseMint) {
		t.Errorf("Token0.Mint = %s, want the non-quote mint %s", ev.Token0.Mint, baseMint)
	}
	if !ev.Token1.Mint.Equals(wrappedSOLMint) {
		t.Errorf("Token1.Mint = %s, want wrapped SOL", ev.Token1.Mint)
	}
	if ev.Token0.Amount.UI == nil || *ev.Token0.Amount.UI != 1.0 {
		t.Errorf("Token0.Amount.UI = %v, want 1.0", ev.Token0.Amount.UI)
	}
}
