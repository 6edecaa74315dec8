// Package classify buckets every instruction in a transaction — outer and
// inner — by invoking program id, preserving first-appearance order. It
// ports original_source/rust_parser/src/core/instruction_classifier.rs
// method-for-method onto txview.View: get_all_program_ids -> ProgramIDs,
// get_instructions -> InstructionsOf, get_multi_instructions ->
// MultiInstructionsOf, get_instruction_by_discriminator ->
// FindByDiscriminator, flatten -> Flatten.
package classify

import (
	"bytes"

	"github.com/gagliardetto/solana-go"

	"github.com/arkhaven/solparse/txview"
)

// Instruction is one classified instruction, tagging it with where it came
// from (outer index, and inner index when it's a CPI).
type Instruction struct {
	ProgramID  solana.PublicKey
	OuterIndex int
	InnerIndex *int // nil for outer instructions
	ProgramIDIdx uint8
	Accounts   []byte
	Data       []byte
}

// SystemProgramIDs is the fixed filter set excluded from classification:
// ComputeBudget, System, SPL-Token, Token-2022, Associated-Token-Account,
// Openbook-v1, per spec §6.5. Built once at process start and read-only
// thereafter.
var SystemProgramIDs = map[solana.PublicKey]struct{}{
	computeBudgetProgramID: {},
	solana.SystemProgramID: {},
	solana.TokenProgramID:  {},
	solana.Token2022ProgramID:                 {},
	solana.SPLAssociatedTokenAccountProgramID: {},
	openbookV1ProgramID:                       {},
}

// SkipProgramIDs is the additional skip list for known fee-only programs,
// per spec §6.5 ("e.g. Pumpswap-fee").
var SkipProgramIDs = map[solana.PublicKey]struct{}{
	pumpswapFeeProgramID: {},
}

var (
	computeBudgetProgramID = solana.MustPublicKeyFromBase58("ComputeBudget111111111111111111111111111111")
	openbookV1ProgramID    = solana.MustPublicKeyFromBase58("srmqPvymJeFKQ4zGQed1GFppgkRHL9kaELCbyksJtPX")
	pumpswapFeeProgramID   = solana.MustPublicKeyFromBase58("pfeeUxB6jkeY1Hxd7CsFCAjcbHA9rWtchMGdZ6VojVZ")
)

func filtered(pk solana.PublicKey) bool {
	if pk.IsZero() {
		return true
	}
	if _, ok := SystemProgramIDs[pk]; ok {
		return true
	}
	if _, ok := SkipProgramIDs[pk]; ok {
		return true
	}
	return false
}

// Classifier groups instructions by program id, preserving first-appearance
// order via the order slice — a Go map alone does not preserve insertion
// order, so order is mandatory here, unlike the Rust HashMap+Vec pairing it
// mirrors.
type Classifier struct {
	byProgram map[solana.PublicKey][]Instruction
	order     []solana.PublicKey
	all       []Instruction
}

// New classifies every outer instruction, then every inner-instruction group,
// from v, filtering out system/skip programs.
func New(v *txview.View) *Classifier {
	c := &Classifier{byProgram: make(map[solana.PublicKey][]Instruction)}

	for i := 0; i < v.OuterInstructionCount(); i++ {
		pid, instr, ok := v.OuterInstructionAt(i)
		if !ok || filtered(pid) {
			continue
		}
		ci := Instruction{
			ProgramID:    pid,
			OuterIndex:   i,
			ProgramIDIdx: instr.ProgramIDIndex,
			Accounts:     instr.Accounts,
			Data:         instr.Data,
		}
		c.add(ci)
	}

	for i := 0; i < v.OuterInstructionCount(); i++ {
		inner := v.InnerInstructions(i)
		for j, in := range inner {
			if filtered(in.ProgramID) {
				continue
			}
			idx := j
			accIdx := make([]byte, len(in.Instr.Accounts))
			for k, a := range in.Instr.Accounts {
				accIdx[k] = byte(a)
			}
			ci := Instruction{
				ProgramID:    in.ProgramID,
				OuterIndex:   i,
				InnerIndex:   &idx,
				ProgramIDIdx: byte(in.Instr.ProgramIDIndex),
				Accounts:     accIdx,
				Data:         in.Instr.Data,
			}
			c.add(ci)
		}
	}

	return c
}

func (c *Classifier) add(ci Instruction) {
	if _, ok := c.byProgram[ci.ProgramID]; !ok {
		c.order = append(c.order, ci.ProgramID)
	}
	c.byProgram[ci.ProgramID] = append(c.byProgram[ci.ProgramID], ci)
	c.all = append(c.all, ci)
}

// ProgramIDs returns every classified program id in first-appearance order.
func (c *Classifier) ProgramIDs() []solana.PublicKey {
	out := make([]solana.PublicKey, len(c.order))
	copy(out, c.order)
	return out
}

// InstructionsOf returns the classified instructions invoking id, in
// first-appearance order.
func (c *Classifier) InstructionsOf(id solana.PublicKey) []Instruction {
	return c.byProgram[id]
}

// MultiInstructionsOf concatenates InstructionsOf for several program ids, in
// the order the ids are given.
func (c *Classifier) MultiInstructionsOf(ids []solana.PublicKey) []Instruction {
	var out []Instruction
	for _, id := range ids {
		out = append(out, c.byProgram[id]...)
	}
	return out
}

// FindByDiscriminator linearly scans every classified instruction for one
// whose data begins with prefix. A linear scan is deliberate here: the spec
// calls for it, and at one-transaction-per-call scale a faster indexed
// structure buys nothing.
func (c *Classifier) FindByDiscriminator(prefix []byte) (Instruction, bool) {
	for _, ci := range c.all {
		if len(ci.Data) >= len(prefix) && bytes.Equal(ci.Data[:len(prefix)], prefix) {
			return ci, true
		}
	}
	return Instruction{}, false
}

// Flatten returns every classified instruction in classification order
// (all outer instructions in index order, then the inner-instruction groups
// in outer-index order).
func (c *Classifier) Flatten() []Instruction {
	out := make([]Instruction, len(c.all))
	copy(out, c.all)
	return out
}
