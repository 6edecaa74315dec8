package xfer

import (
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"

	"github.com/arkhaven/solparse/meta"
	"github.com/arkhaven/solparse/txview"
	"github.com/arkhaven/solparse/wire"
)

func key(b byte) [32]byte {
	var k [32]byte
	k[31] = b
	return k
}

func pubkey(b byte) solana.PublicKey {
	k := key(b)
	return solana.PublicKeyFromBytes(k[:])
}

func le64(v uint64) []byte {
	b := make([]byte, 8)
	for i := 0; i < 8; i++ {
		b[i] = byte(v >> (8 * i))
	}
	return b
}

func TestExtractTransferChecked(t *testing.T) {
	// accounts: [0]=signer/authority, [1]=source, [2]=mint, [3]=dest, [4]=token program
	msg := wire.Message{
		AccountKeys: [][32]byte{key(0), key(1), key(2), key(3), key(4)},
		Instructions: []wire.Instruction{
			{
				ProgramIDIndex: 4,
				Accounts:       []byte{1, 2, 3, 0},
				Data:           append([]byte{12}, append(le64(1_000_000), 6)...),
			},
		},
	}
	m, err := meta.FromJSON([]byte(`{}`))
	if err != nil {
		t.Fatalf("FromJSON: %v", err)
	}
	// token program id must resolve to a real SPL token program for isTokenProgram;
	// substitute the 5th account key with the real token program id.
	msg.AccountKeys[4] = toArrPK(solana.TokenProgramID)

	v := txview.New(msg, m)
	out := Extract(v, solana.Signature{}, time.Time{})

	tokenProgID := solana.TokenProgramID
	recs, ok := out[tokenProgID]
	if !ok || len(recs) != 1 {
		t.Fatalf("expected 1 record under token program, got %v", out)
	}
	r := recs[0]
	if r.Kind != TransferChecked {
		t.Errorf("expected TransferChecked, got %v", r.Kind)
	}
	if r.Amount.Raw != 1_000_000 || r.Amount.Decimals != 6 {
		t.Errorf("unexpected amount: %+v", r.Amount)
	}
	if r.Idx != "0" {
		t.Errorf("expected idx '0', got %q", r.Idx)
	}
	if !r.Mint.Equals(pubkey(2)) {
		t.Errorf("expected mint key(2), got %s", r.Mint)
	}
}

func TestExtractPlainTransferGroupedByInvoker(t *testing.T) {
	// Outer instruction 0 is some AMM program; inner instruction 0-0 is the
	// token program doing a plain Transfer(3). Record must be grouped under
	// the AMM program id, not the token program.
	ammProg := pubkey(9)
	msg := wire.Message{
		AccountKeys: [][32]byte{key(0), key(1), key(2), ammProg, toArrPK(solana.TokenProgramID)},
		Instructions: []wire.Instruction{
			{ProgramIDIndex: 3, Accounts: []byte{}, Data: []byte{0xFF}},
		},
	}
	innerData := append([]byte{3}, le64(500)...)
	metaJSON := []byte(`{
		"innerInstructions": [
			{"index": 0, "instructions": [
				{"programIdIndex": 4, "accounts": [1,2,0], "data": "` + base58.Encode(innerData) + `"}
			]}
		],
		"postTokenBalances": [
			{"accountIndex": 1, "mint": "` + pubkey(7).String() + `", "owner": "` + pubkey(0).String() + `", "uiTokenAmount": {"decimals": 9, "amount": "0"}}
		]
	}`)
	m, err := meta.FromJSON(metaJSON)
	if err != nil {
		t.Fatalf("FromJSON: %v", err)
	}
	v := txview.New(msg, m)

	out := Extract(v, solana.Signature{}, time.Time{})
	recs, ok := out[ammProg]
	if !ok || len(recs) != 1 {
		t.Fatalf("expected 1 record grouped under amm program, got %v", out)
	}
	if recs[0].Idx != "0-0" {
		t.Errorf("expected idx '0-0', got %q", recs[0].Idx)
	}
	if recs[0].Kind != Transfer {
		t.Errorf("expected Transfer, got %v", recs[0].Kind)
	}
}

func toArrPK(pk solana.PublicKey) [32]byte {
	var a [32]byte
	copy(a[:], pk[:])
	return a
}
