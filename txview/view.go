// Package txview provides a single read-only facade over a decoded
// transaction message (wire.Message) plus its projected metadata (meta.Meta).
// It generalizes the teacher's Parser struct (allAccountKeys, splTokenInfoMap,
// splDecimalsMap and their accessor methods in parser.go/parse_transfer.go)
// into a standalone, composable component that classify/xfer/decoders consume
// instead of reaching into a concrete parser type.
package txview

import (
	"github.com/gagliardetto/solana-go"

	"github.com/arkhaven/solparse/meta"
	"github.com/arkhaven/solparse/wire"
)

// BalanceDelta mirrors the spec's {pre, post, change} invariant: Change is
// always Post-Pre, computed once at construction so callers never have to.
type BalanceDelta struct {
	Pre    int64
	Post   int64
	Change int64
}

func newDelta(pre, post int64) BalanceDelta {
	return BalanceDelta{Pre: pre, Post: post, Change: post - pre}
}

// TokenInfo resolves an account's mint/decimals as last observed in the
// transaction.
type TokenInfo struct {
	Mint     solana.PublicKey
	Decimals uint8
}

// View is the unifying read-only surface over a wire-decoded message and its
// projected metadata. A View borrows nothing beyond the wire.Message and
// meta.Meta it was built from; both of those may themselves borrow from a
// caller-owned buffer, so a View must not be retained past the parse call
// that produced its inputs.
type View struct {
	msg  wire.Message
	meta *meta.Meta

	accountKeys []solana.PublicKey // static + loadedAddresses.writable + loadedAddresses.readonly

	tokenInfo map[solana.PublicKey]TokenInfo // account -> (mint, decimals)
}

// New merges a decoded message with its projected metadata the same way the
// teacher's NewTransactionParserFromTransaction merges tx.Message.AccountKeys
// with txMeta.LoadedAddresses: static keys first, then writable loaded
// addresses, then readonly ones, preserving order throughout.
func New(msg wire.Message, m *meta.Meta) *View {
	if m == nil {
		m = meta.FromRPC(nil)
	}

	keys := make([]solana.PublicKey, 0, len(msg.AccountKeys))
	for _, k := range msg.AccountKeys {
		keys = append(keys, solana.PublicKeyFromBytes(k[:]))
	}
	la := m.LoadedAddresses()
	keys = append(keys, la.Writable...)
	keys = append(keys, la.ReadOnly...)

	v := &View{msg: msg, meta: m, accountKeys: keys}
	v.buildTokenInfo()
	return v
}

// AccountAt resolves an account-key-table index to a public key, covering
// both the static table and loaded-address expansions.
func (v *View) AccountAt(index int) (solana.PublicKey, bool) {
	if index < 0 || index >= len(v.accountKeys) {
		return solana.PublicKey{}, false
	}
	return v.accountKeys[index], true
}

// AccountKeys returns the full, ordered account-key table (static then
// loaded-address writable then readonly).
func (v *View) AccountKeys() []solana.PublicKey { return v.accountKeys }

// Meta exposes the underlying metadata projection for components (xfer,
// decoders) that need fields View doesn't surface directly, e.g. LogMessages.
func (v *View) Meta() *meta.Meta { return v.meta }

// Signer returns the fee-payer / first signer, account index 0 by Solana
// convention (the teacher's own default outside DCA-specific handling).
func (v *View) Signer() (solana.PublicKey, bool) { return v.AccountAt(0) }

// OuterInstructionCount reports how many outer (top-level) instructions the
// message carries.
func (v *View) OuterInstructionCount() int { return len(v.msg.Instructions) }

// OuterInstructionAt returns the program id and instruction at outer index i.
func (v *View) OuterInstructionAt(i int) (solana.PublicKey, wire.Instruction, bool) {
	if i < 0 || i >= len(v.msg.Instructions) {
		return solana.PublicKey{}, wire.Instruction{}, false
	}
	instr := v.msg.Instructions[i]
	pid, ok := v.AccountAt(int(instr.ProgramIDIndex))
	return pid, instr, ok
}

// OuterInstructions returns every outer instruction's invoking program id
// alongside the instruction itself.
func (v *View) OuterInstructions() []struct {
	ProgramID solana.PublicKey
	Instr     wire.Instruction
} {
	out := make([]struct {
		ProgramID solana.PublicKey
		Instr     wire.Instruction
	}, 0, len(v.msg.Instructions))
	for i := range v.msg.Instructions {
		pid, instr, _ := v.OuterInstructionAt(i)
		out = append(out, struct {
			ProgramID solana.PublicKey
			Instr     wire.Instruction
		}{ProgramID: pid, Instr: instr})
	}
	return out
}

// InnerInstructions returns the (programID, instruction) pairs invoked as
// CPIs of the outer instruction at outerIndex, per the metadata's
// innerInstructions side-channel — the wire format itself carries none.
func (v *View) InnerInstructions(outerIndex int) []struct {
	ProgramID solana.PublicKey
	Instr     solana.CompiledInstruction
} {
	insts := v.meta.InnerInstructionsFor(outerIndex)
	out := make([]struct {
		ProgramID solana.PublicKey
		Instr     solana.CompiledInstruction
	}, 0, len(insts))
	for _, in := range insts {
		pid, _ := v.AccountAt(int(in.ProgramIDIndex))
		out = append(out, struct {
			ProgramID solana.PublicKey
			Instr     solana.CompiledInstruction
		}{ProgramID: pid, Instr: in})
	}
	return out
}

// Fee returns the transaction's lamport fee.
func (v *View) Fee() uint64 { return v.meta.Fee() }

// ComputeUnits returns the consumed compute units, if reported.
func (v *View) ComputeUnits() *uint64 { return v.meta.ComputeUnits() }

// Status returns the reconciled success/failure state.
func (v *View) Status() meta.TxStatus { return v.meta.Status() }

// SOLDelta computes the lamport balance delta for the account at the given
// account-key-table index, matching the teacher's lamportDeltaFor but keyed
// by index rather than doing a linear PublicKey scan per call.
func (v *View) SOLDelta(index int) BalanceDelta {
	pre, post := v.meta.PreBalances(), v.meta.PostBalances()
	if index < 0 || index >= len(pre) || index >= len(post) {
		return BalanceDelta{}
	}
	return newDelta(pre[index], post[index])
}

// SignerSOLDelta computes the signer's (account index 0) lamport delta in
// O(1), since balances are already index-aligned with the account-key table.
func (v *View) SignerSOLDelta() BalanceDelta {
	return v.SOLDelta(0)
}

// TokenDeltas computes, for the account at the given index, the per-mint
// token balance delta observed between pre and post token-balance tables.
func (v *View) TokenDeltas(index int) map[solana.PublicKey]BalanceDelta {
	out := make(map[solana.PublicKey]BalanceDelta)
	acc := make(map[solana.PublicKey]*pp)
	for _, tb := range v.meta.PreTokenBalances() {
		if int(tb.AccountIndex) != index {
			continue
		}
		p := ensurePP(acc, tb.Mint)
		p.pre = parseAmount(tb.Amount)
	}
	for _, tb := range v.meta.PostTokenBalances() {
		if int(tb.AccountIndex) != index {
			continue
		}
		p := ensurePP(acc, tb.Mint)
		p.post = parseAmount(tb.Amount)
	}
	for mint, p := range acc {
		out[mint] = newDelta(p.pre, p.post)
	}
	return out
}

// SignerTokenDeltas computes per-mint token balance deltas for every account
// the signer (index 0) has token-balance entries for, in one pass over both
// balance tables — O(|balances|), not O(|accounts|x|balances|), per spec §4.3.
// Entries are matched by owner; several accounts of one mint are summed.
func (v *View) SignerTokenDeltas() map[solana.PublicKey]BalanceDelta {
	out := make(map[solana.PublicKey]BalanceDelta)
	signer, ok := v.Signer()
	if !ok {
		return out
	}
	acc := make(map[solana.PublicKey]*pp)
	for _, tb := range v.meta.PreTokenBalances() {
		if tb.Owner.Equals(signer) {
			ensurePP(acc, tb.Mint).pre += parseAmount(tb.Amount)
		}
	}
	for _, tb := range v.meta.PostTokenBalances() {
		if tb.Owner.Equals(signer) {
			ensurePP(acc, tb.Mint).post += parseAmount(tb.Amount)
		}
	}
	for mint, p := range acc {
		out[mint] = newDelta(p.pre, p.post)
	}
	return out
}

type pp struct{ pre, post int64 }

func ensurePP(m map[solana.PublicKey]*pp, mint solana.PublicKey) *pp {
	if p, ok := m[mint]; ok {
		return p
	}
	p := &pp{}
	m[mint] = p
	return p
}

// TokenAccountOwner resolves a token account's owner by searching post token
// balances, then pre.
func (v *View) TokenAccountOwner(account solana.PublicKey) (solana.PublicKey, bool) {
	idx, ok := v.indexOf(account)
	if !ok {
		return solana.PublicKey{}, false
	}
	for _, tb := range v.meta.PostTokenBalances() {
		if int(tb.AccountIndex) == idx {
			return tb.Owner, true
		}
	}
	for _, tb := range v.meta.PreTokenBalances() {
		if int(tb.AccountIndex) == idx {
			return tb.Owner, true
		}
	}
	return solana.PublicKey{}, false
}

// TokenInfo returns the mint and decimals last observed for a token account,
// built the way the teacher's extractSPLTokenInfo builds splTokenInfoMap:
// seed from post then pre token balances, then backfill from TransferChecked
// and Transfer instructions (outer and inner) that reference the account.
func (v *View) TokenInfo(account solana.PublicKey) (mint solana.PublicKey, decimals uint8, ok bool) {
	ti, found := v.tokenInfo[account]
	if !found || ti.Mint.IsZero() {
		return solana.PublicKey{}, 0, false
	}
	return ti.Mint, ti.Decimals, true
}

func (v *View) indexOf(pk solana.PublicKey) (int, bool) {
	for i, k := range v.accountKeys {
		if k.Equals(pk) {
			return i, true
		}
	}
	return 0, false
}

func parseAmount(s string) int64 {
	if s == "" {
		return 0
	}
	var n int64
	neg := false
	for i, c := range s {
		if i == 0 && c == '-' {
			neg = true
			continue
		}
		if c < '0' || c > '9' {
			return n
		}
		n = n*10 + int64(c-'0')
	}
	if neg {
		n = -n
	}
	return n
}
