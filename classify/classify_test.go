package classify

import (
	"testing"

	"github.com/gagliardetto/solana-go"

	"github.com/arkhaven/solparse/meta"
	"github.com/arkhaven/solparse/txview"
	"github.com/arkhaven/solparse/wire"
)

func pk(b byte) solana.PublicKey {
	var k [32]byte
	k[31] = b
	return solana.PublicKeyFromBytes(k[:])
}

func TestClassifierFiltersSystemPrograms(t *testing.T) {
	progA, progB := pk(10), pk(11)
	msg := wire.Message{
		AccountKeys: [][32]byte{
			progA, progB, toArr(solana.TokenProgramID),
		},
		Instructions: []wire.Instruction{
			{ProgramIDIndex: 0, Data: []byte{1}},
			{ProgramIDIndex: 2, Data: []byte{2}}, // token program, filtered
			{ProgramIDIndex: 1, Data: []byte{3}},
			{ProgramIDIndex: 0, Data: []byte{4}},
		},
	}
	v := txview.New(msg, meta.FromRPC(nil))
	c := New(v)

	ids := c.ProgramIDs()
	if len(ids) != 2 {
		t.Fatalf("expected 2 classified programs, got %d: %v", len(ids), ids)
	}
	if ids[0] != progA || ids[1] != progB {
		t.Errorf("expected first-appearance order [A,B], got %v", ids)
	}
	if len(c.InstructionsOf(progA)) != 2 {
		t.Errorf("expected 2 instructions for progA, got %d", len(c.InstructionsOf(progA)))
	}
}

func TestFindByDiscriminator(t *testing.T) {
	progA := pk(20)
	msg := wire.Message{
		AccountKeys: [][32]byte{progA},
		Instructions: []wire.Instruction{
			{ProgramIDIndex: 0, Data: []byte{0xAA, 0xBB, 0x01}},
		},
	}
	v := txview.New(msg, meta.FromRPC(nil))
	c := New(v)

	if _, ok := c.FindByDiscriminator([]byte{0xAA, 0xBB}); !ok {
		t.Error("expected to find instruction by discriminator prefix")
	}
	if _, ok := c.FindByDiscriminator([]byte{0xFF}); ok {
		t.Error("expected no match for absent discriminator")
	}
}

func toArr(pub solana.PublicKey) [32]byte {
	var a [32]byte
	copy(a[:], pub[:])
	return a
}
