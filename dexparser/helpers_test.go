package dexparser

import "github.com/gagliardetto/solana-go"

// sig builds a distinguishable, deterministic test signature so table tests
// can tell two trades apart without caring about the real base58 encoding.
func sig(b byte) solana.Signature {
	var s solana.Signature
	s[0] = b
	return s
}
