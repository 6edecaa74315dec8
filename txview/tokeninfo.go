package txview

import (
	"github.com/gagliardetto/solana-go"
)

// isTokenProgram treats SPL Token and Token-2022 as one family, matching the
// teacher's checks.go isTokenProgram.
func isTokenProgram(pk solana.PublicKey) bool {
	return pk.Equals(solana.TokenProgramID) || pk.Equals(solana.Token2022ProgramID)
}

// buildTokenInfo seeds the account -> (mint, decimals) map from pre then post
// token balances (post wins), then backfills mints for accounts that only
// appear transiently in TransferChecked/Transfer instructions and fills
// decimals from the balance tables; InitializeMint/MintTo/Burn/CloseAccount
// instructions are not consulted. The same three-pass shape as the teacher's
// extractSPLTokenInfo + extractSPLDecimals combined into one map.
func (v *View) buildTokenInfo() {
	info := make(map[solana.PublicKey]TokenInfo)

	for _, tb := range v.meta.PreTokenBalances() {
		if tb.Mint.IsZero() {
			continue
		}
		if acc, ok := v.AccountAt(int(tb.AccountIndex)); ok {
			info[acc] = TokenInfo{Mint: tb.Mint, Decimals: tb.Decimals}
		}
	}
	for _, tb := range v.meta.PostTokenBalances() {
		if tb.Mint.IsZero() {
			continue
		}
		if acc, ok := v.AccountAt(int(tb.AccountIndex)); ok {
			info[acc] = TokenInfo{Mint: tb.Mint, Decimals: tb.Decimals}
		}
	}

	process := func(progID solana.PublicKey, accIdx []byte, data []byte) {
		if !isTokenProgram(progID) || len(data) == 0 || len(accIdx) < 2 {
			return
		}
		op := data[0]
		source, sOK := v.AccountAt(int(accIdx[0]))
		dest, dOK := v.AccountAt(int(accIdx[1]))
		if !sOK || !dOK {
			return
		}
		if _, exists := info[source]; !exists {
			info[source] = TokenInfo{}
		}
		if _, exists := info[dest]; !exists {
			info[dest] = TokenInfo{}
		}

		// TransferChecked(12): accounts = [src, mint, dst, authority].
		if op == 12 && len(accIdx) >= 3 {
			mint, ok := v.AccountAt(int(accIdx[1]))
			if ok {
				if ti := info[source]; ti.Mint.IsZero() {
					info[source] = TokenInfo{Mint: mint, Decimals: ti.Decimals}
				}
				if ti := info[dest]; ti.Mint.IsZero() {
					info[dest] = TokenInfo{Mint: mint, Decimals: ti.Decimals}
				}
			}
		}

		// Transfer(3): both sides share a mint; propagate whichever side is
		// already known onto the other.
		if op == 3 {
			sInfo, dInfo := info[source], info[dest]
			switch {
			case !sInfo.Mint.IsZero() && dInfo.Mint.IsZero():
				info[dest] = TokenInfo{Mint: sInfo.Mint, Decimals: dInfo.Decimals}
			case !dInfo.Mint.IsZero() && sInfo.Mint.IsZero():
				info[source] = TokenInfo{Mint: dInfo.Mint, Decimals: sInfo.Decimals}
			}
		}
	}

	for _, instr := range v.msg.Instructions {
		pid, ok := v.AccountAt(int(instr.ProgramIDIndex))
		if !ok {
			continue
		}
		process(pid, instr.Accounts, instr.Data)
	}
	for i := range v.msg.Instructions {
		for _, in := range v.InnerInstructions(i) {
			accIdx := make([]byte, len(in.Instr.Accounts))
			for j, a := range in.Instr.Accounts {
				accIdx[j] = byte(a)
			}
			process(in.ProgramID, accIdx, in.Instr.Data)
		}
	}

	// Fill mint decimals from the balance tables where an account's mint is
	// known but decimals weren't captured directly (e.g. backfilled via
	// Transfer(3) propagation above).
	decimalsByMint := make(map[solana.PublicKey]uint8)
	for _, tb := range v.meta.PostTokenBalances() {
		if !tb.Mint.IsZero() {
			decimalsByMint[tb.Mint] = tb.Decimals
		}
	}
	for _, tb := range v.meta.PreTokenBalances() {
		if !tb.Mint.IsZero() {
			if _, ok := decimalsByMint[tb.Mint]; !ok {
				decimalsByMint[tb.Mint] = tb.Decimals
			}
		}
	}
	for acc, ti := range info {
		if !ti.Mint.IsZero() && ti.Decimals == 0 {
			if d, ok := decimalsByMint[ti.Mint]; ok {
				ti.Decimals = d
				info[acc] = ti
			}
		}
	}

	v.tokenInfo = info
}
