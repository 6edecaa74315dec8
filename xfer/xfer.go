// Package xfer extracts normalized token-transfer records from a
// transaction's SPL Token / Token-2022 instructions, generalizing the
// teacher's processTransfer/processTransferCheck (parse_transfer.go,
// parse_transfer_check.go) into opcode-driven dispatch over every outer and
// inner token-program instruction, grouped by the program that invoked them.
package xfer

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/gagliardetto/solana-go"

	"github.com/arkhaven/solparse/txview"
)

// Kind enumerates the token-program opcodes xfer recognizes.
type Kind int

const (
	Transfer Kind = iota
	TransferChecked
	MintTo
	Burn
	CloseAccount
)

func (k Kind) String() string {
	switch k {
	case Transfer:
		return "transfer"
	case TransferChecked:
		return "transferChecked"
	case MintTo:
		return "mintTo"
	case Burn:
		return "burn"
	case CloseAccount:
		return "closeAccount"
	default:
		return "unknown"
	}
}

// TokenAmount mirrors the spec's {raw, decimals, ui} invariant.
type TokenAmount struct {
	Raw      uint64
	Decimals uint8
	UI       float64
}

func newTokenAmount(raw uint64, decimals uint8) TokenAmount {
	ui := float64(raw) / math.Pow10(int(decimals))
	return TokenAmount{Raw: raw, Decimals: decimals, UI: ui}
}

// String formats Raw as a plain base-10 integer string, matching the spec's
// "raw: non-negative integer decimal string".
func (a TokenAmount) String() string { return strconv.FormatUint(a.Raw, 10) }

// Record is one normalized token-transfer event, carrying the formatted Idx
// used to join against classifier output.
type Record struct {
	Kind        Kind
	ProgramID   solana.PublicKey // the token program that was invoked
	Source      solana.PublicKey
	Destination solana.PublicKey
	Authority   *solana.PublicKey
	Mint        solana.PublicKey
	Amount      TokenAmount
	Idx         string
	Timestamp   time.Time
	Signature   solana.Signature
	IsFee       bool
}

func isTokenProgram(pk solana.PublicKey) bool {
	return pk.Equals(solana.TokenProgramID) || pk.Equals(solana.Token2022ProgramID)
}

func formatIdx(outer int, inner *int) string {
	if inner == nil {
		return fmt.Sprintf("%d", outer)
	}
	return fmt.Sprintf("%d-%d", outer, *inner)
}

// Extract walks every outer and inner instruction in v, decoding
// Transfer/TransferChecked/MintTo/Burn/CloseAccount against the SPL Token or
// Token-2022 program, and groups the resulting records by the enclosing
// (invoking) program id: the outer program for inner transfers, or the token
// program itself for top-level transfers.
func Extract(v *txview.View, signature solana.Signature, timestamp time.Time) map[solana.PublicKey][]Record {
	out := make(map[solana.PublicKey][]Record)

	add := func(invoker solana.PublicKey, r *Record) {
		if r == nil {
			return
		}
		r.Signature = signature
		r.Timestamp = timestamp
		out[invoker] = append(out[invoker], *r)
	}

	for i := 0; i < v.OuterInstructionCount(); i++ {
		pid, instr, ok := v.OuterInstructionAt(i)
		if !ok || !isTokenProgram(pid) {
			continue
		}
		r := decode(v, pid, instr.Accounts, instr.Data, formatIdx(i, nil))
		add(pid, r)
	}

	for i := 0; i < v.OuterInstructionCount(); i++ {
		outerPID, _, _ := v.OuterInstructionAt(i)
		for j, in := range v.InnerInstructions(i) {
			if !isTokenProgram(in.ProgramID) {
				continue
			}
			accIdx := make([]byte, len(in.Instr.Accounts))
			for k, a := range in.Instr.Accounts {
				accIdx[k] = byte(a)
			}
			idx := j
			r := decode(v, in.ProgramID, accIdx, in.Instr.Data, formatIdx(i, &idx))
			add(outerPID, r)
		}
	}

	return out
}

// decode dispatches on the instruction's opcode byte. Transfer,
// TransferChecked, MintTo[Checked], Burn[Checked] and CloseAccount are
// emitted as Records; every other opcode (InitializeMint included) yields
// nil.
func decode(v *txview.View, progID solana.PublicKey, accIdx []byte, data []byte, idx string) *Record {
	if len(data) == 0 {
		return nil
	}
	op := data[0]
	switch op {
	case 3: // Transfer: accounts [source, destination, authority]
		if len(accIdx) < 3 || len(data) < 9 {
			return nil
		}
		amount, ok := uint64LE(data, 1)
		if !ok {
			return nil
		}
		source, _ := v.AccountAt(int(accIdx[0]))
		dest, _ := v.AccountAt(int(accIdx[1]))
		authority, _ := v.AccountAt(int(accIdx[2]))
		mint, decimals := resolveMint(v, source, dest)
		return &Record{
			Kind: Transfer, ProgramID: progID,
			Source: source, Destination: dest, Authority: &authority,
			Mint: mint, Amount: newTokenAmount(amount, decimals), Idx: idx,
		}

	case 12: // TransferChecked: accounts [source, mint, destination, authority]
		if len(accIdx) < 4 || len(data) < 10 {
			return nil
		}
		amount, ok := uint64LE(data, 1)
		if !ok {
			return nil
		}
		decimals := data[9]
		source, _ := v.AccountAt(int(accIdx[0]))
		mint, _ := v.AccountAt(int(accIdx[1]))
		dest, _ := v.AccountAt(int(accIdx[2]))
		authority, _ := v.AccountAt(int(accIdx[3]))
		return &Record{
			Kind: TransferChecked, ProgramID: progID,
			Source: source, Destination: dest, Authority: &authority,
			Mint: mint, Amount: newTokenAmount(amount, decimals), Idx: idx,
		}

	case 7, 14: // MintTo / MintToChecked: accounts [mint, destination, authority, ...]
		if len(accIdx) < 3 || len(data) < 9 {
			return nil
		}
		amount, ok := uint64LE(data, 1)
		if !ok {
			return nil
		}
		mint, _ := v.AccountAt(int(accIdx[0]))
		dest, _ := v.AccountAt(int(accIdx[1]))
		authority, _ := v.AccountAt(int(accIdx[2]))
		_, decimals := resolveMintDecimalsOnly(v, mint)
		return &Record{
			Kind: MintTo, ProgramID: progID,
			Source: mint, Destination: dest, Authority: &authority,
			Mint: mint, Amount: newTokenAmount(amount, decimals), Idx: idx,
		}

	case 8, 15: // Burn / BurnChecked: accounts [source, mint, authority, ...]
		if len(accIdx) < 3 || len(data) < 9 {
			return nil
		}
		amount, ok := uint64LE(data, 1)
		if !ok {
			return nil
		}
		source, _ := v.AccountAt(int(accIdx[0]))
		mint, _ := v.AccountAt(int(accIdx[1]))
		authority, _ := v.AccountAt(int(accIdx[2]))
		_, decimals := resolveMintDecimalsOnly(v, mint)
		return &Record{
			Kind: Burn, ProgramID: progID,
			Source: source, Destination: mint, Authority: &authority,
			Mint: mint, Amount: newTokenAmount(amount, decimals), Idx: idx,
		}

	case 9: // CloseAccount: accounts [account, destination, authority, ...]
		if len(accIdx) < 3 {
			return nil
		}
		source, _ := v.AccountAt(int(accIdx[0]))
		dest, _ := v.AccountAt(int(accIdx[1]))
		authority, _ := v.AccountAt(int(accIdx[2]))
		mint, decimals, _ := v.TokenInfo(source)
		return &Record{
			Kind: CloseAccount, ProgramID: progID,
			Source: source, Destination: dest, Authority: &authority,
			Mint: mint, Amount: newTokenAmount(0, decimals), Idx: idx,
		}

	default:
		return nil
	}
}

// resolveMint looks up the mint for a Transfer(3) leg by consulting the view's
// token-info map for the destination first, then the source, matching the
// teacher's processTransfer preference order.
func resolveMint(v *txview.View, source, dest solana.PublicKey) (solana.PublicKey, uint8) {
	if mint, dec, ok := v.TokenInfo(dest); ok {
		return mint, dec
	}
	if mint, dec, ok := v.TokenInfo(source); ok {
		return mint, dec
	}
	return solana.PublicKey{}, 0
}

func resolveMintDecimalsOnly(v *txview.View, mint solana.PublicKey) (solana.PublicKey, uint8) {
	if _, dec, ok := v.TokenInfo(mint); ok {
		return mint, dec
	}
	return mint, 0
}

func uint64LE(data []byte, offset int) (uint64, bool) {
	if offset < 0 || offset+8 > len(data) {
		return 0, false
	}
	var v uint64
	for i := 7; i >= 0; i-- {
		v = v<<8 | uint64(data[offset+i])
	}
	return v, true
}

// UIAmountString mirrors the teacher's trimmed fixed-point formatting in
// parse_transfer_check.go (strings.TrimRight twice: trailing zeros, then a
// trailing dot).
func UIAmountString(ui float64) string {
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.9f", ui), "0"), ".")
}
