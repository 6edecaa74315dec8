package txview

import (
	"testing"

	"github.com/gagliardetto/solana-go"

	"github.com/arkhaven/solparse/meta"
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

func TestAccountKeyOrdering(t *testing.T) {
	msg := wire.Message{
		AccountKeys: [][32]byte{key(1), key(2)},
	}
	m, err := meta.FromJSON([]byte(`{
		"loadedAddresses": {"writable": ["` + pubkey(3).String() + `"], "readonly": ["` + pubkey(4).String() + `"]}
	}`))
	if err != nil {
		t.Fatalf("FromJSON: %v", err)
	}

	v := New(msg, m)
	keys := v.AccountKeys()
	if len(keys) != 4 {
		t.Fatalf("expected 4 account keys, got %d", len(keys))
	}
	for i, want := range []byte{1, 2, 3, 4} {
		if keys[i] != pubkey(want) {
			t.Errorf("index %d: got %s, want key ending %d", i, keys[i], want)
		}
	}
}

func TestSOLDeltaInvariant(t *testing.T) {
	m, err := meta.FromJSON([]byte(`{"preBalances":[1000,500],"postBalances":[700,500]}`))
	if err != nil {
		t.Fatalf("FromJSON: %v", err)
	}
	v := New(wire.Message{AccountKeys: [][32]byte{key(1), key(2)}}, m)

	d := v.SignerSOLDelta()
	if d.Change != d.Post-d.Pre {
		t.Errorf("change invariant violated: %+v", d)
	}
	if d.Pre != 1000 || d.Post != 700 || d.Change != -300 {
		t.Errorf("unexpected delta: %+v", d)
	}
}
