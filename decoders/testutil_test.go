package decoders

import (
	"time"

	"github.com/gagliardetto/solana-go"

	"github.com/arkhaven/solparse/classify"
	"github.com/arkhaven/solparse/meta"
	"github.com/arkhaven/solparse/txview"
	"github.com/arkhaven/solparse/wire"
	"github.com/arkhaven/solparse/xfer"
)

// pk deterministically derives a public key from a single byte, the same
// throwaway-key convention xfer_test.go/classify_test.go use.
func pk(b byte) solana.PublicKey {
	var k [32]byte
	k[31] = b
	return solana.PublicKeyFromBytes(k[:])
}

func le64(v uint64) []byte {
	b := make([]byte, 8)
	for i := 0; i < 8; i++ {
		b[i] = byte(v >> (8 * i))
	}
	return b
}

func le16(v uint16) []byte {
	return []byte{byte(v), byte(v >> 8)}
}

// newView builds a minimal txview.View whose account-key table's first
// entry is signer, for decoders that only need View.Signer()/AccountAt()/
// SignerSOLDelta()/Meta() rather than a real wire-decoded message.
func newView(signer solana.PublicKey, metaJSON string) *txview.View {
	m, err := meta.FromJSON([]byte(metaJSON))
	if err != nil {
		panic(err)
	}
	msg := wire.Message{AccountKeys: [][32]byte{toArr(signer)}}
	return txview.New(msg, m)
}

func toArr(pk solana.PublicKey) [32]byte {
	var a [32]byte
	copy(a[:], pk[:])
	return a
}

// transfersByProgram wraps a flat leg list as the map decoders.Context
// expects, grouped under a single invoking program id.
func transfersByProgram(programID solana.PublicKey, legs ...xfer.Record) map[solana.PublicKey][]xfer.Record {
	return map[solana.PublicKey][]xfer.Record{programID: legs}
}

func leg(mint solana.PublicKey, raw uint64, decimals uint8, idx string, authority *solana.PublicKey) xfer.Record {
	return xfer.Record{
		Kind:      xfer.Transfer,
		Mint:      mint,
		Amount:    xfer.TokenAmount{Raw: raw, Decimals: decimals},
		Idx:       idx,
		Authority: authority,
	}
}

func instr(programID solana.PublicKey, outer int, data []byte, accounts ...byte) classify.Instruction {
	return classify.Instruction{ProgramID: programID, OuterIndex: outer, Data: data, Accounts: accounts}
}

// encodePumpfunTradeEvent mirrors decodePumpfunTradeEvent's layout in
// reverse, for building synthetic TRADE event instruction data in tests.
func encodePumpfunTradeEvent(ev pumpfunTradeEvent) []byte {
	buf := append([]byte{}, pumpfunTradeEventDisc...)
	buf = append(buf, ev.Mint[:]...)
	buf = append(buf, le64(ev.SolAmount)...)
	buf = append(buf, le64(ev.TokenAmount)...)
	isBuy := byte(0)
	if ev.IsBuy {
		isBuy = 1
	}
	buf = append(buf, isBuy)
	buf = append(buf, ev.User[:]...)
	buf = append(buf, le64(uint64(ev.EventTS))...)
	buf = append(buf, le64(ev.VirtualSol)...)
	buf = append(buf, le64(ev.VirtualToken)...)
	if ev.HasExtended {
		buf = append(buf, le64(ev.RealSol)...)
		buf = append(buf, le64(ev.RealToken)...)
		buf = append(buf, ev.FeeRecipient[:]...)
		buf = append(buf, le16(ev.FeeBps)...)
		buf = append(buf, le64(ev.Fee)...)
		buf = append(buf, ev.Creator[:]...)
		buf = append(buf, le16(ev.CreatorFeeBps)...)
		buf = append(buf, le64(ev.CreatorFee)...)
	}
	return buf
}

func timeAt(unix int64) time.Time { return time.Unix(unix, 0) }
