package decoders

import "testing"

// TestGenericUnknownDexFallback covers spec scenario S4: an unregistered
// program with 2 SOL out / 100 UNK in. UNK alone isn't a supported quote
// mint, but SOL is, so the swap still qualifies.
func TestGenericUnknownDexFallback(t *testing.T) {
	unknownProgram := pk(10)
	unkMint := pk(11)
	user := pk(12)

	legs := transfersByProgram(unknownProgram,
		leg(wrappedSOLMint, 2_000_000_000, 9, "0-0", &user),
		leg(unkMint, 100_000_000, 6, "0-1", nil),
	)

	ctx := Context{
		View:      newView(user, `{}`),
		Transfers: legs,
		Info:      DexInfo{ProgramID: unknownProgram, AMMName: "Unknown DEX"},
	}

	d := newGenericDecoder(ctx).(TradeDecoder)
	trades, err := d.Trades()
	if err != nil {
		t.Fatalf("Trades: %v", err)
	}
	if len(trades) != 1 {
		t.Fatalf("len(trades) = %d, want 1", len(trades))
	}
	tr := trades[0]
	if !tr.ProgramID.Equals(unknownProgram) {
		t.Errorf("ProgramID = %s, want %s", tr.ProgramID, unknownProgram)
	}
	if tr.AMM != "Unknown DEX" {
		t.Errorf("AMM = %q, want %q", tr.AMM, "Unknown DEX")
	}
	if tr.InputToken.Mint.Equals(tr.OutputToken.Mint) {
		t.Error("InputToken/OutputToken share a mint, want distinct mints")
	}
}

// TestGenericDeclinesMoreThanTwoMints covers spec §4.6(a)'s "identify unique
// mints; if exactly two" gate: a 3+-mint multi-hop (four mints here) must
// not be guessed into a two-sided trade.
func TestGenericDeclinesMoreThanTwoMints(t *testing.T) {
	programID := pk(13)
	mintA, mintB, mintC := pk(14), pk(15), pk(16)

	legs := transfersByProgram(programID,
		leg(wrappedSOLMint, 1_000_000_000, 9, "0-0", nil),
		leg(mintA, 10, 6, "0-1", nil),
		leg(mintB, 20, 6, "0-2", nil),
		leg(mintC, 30, 6, "0-3", nil),
	)

	ctx := Context{
		View:      newView(pk(17), `{}`),
		Transfers: legs,
		Info:      DexInfo{ProgramID: programID, AMMName: "Unknown DEX"},
	}

	d := newGenericDecoder(ctx).(TradeDecoder)
	trades, err := d.Trades()
	if err != nil {
		t.Fatalf("Trades: %v", err)
	}
	if len(trades) != 0 {
		t.Fatalf("len(trades) = %d, want 0 for a 4-mint multi-hop", len(trades))
	}
}
