// Package ingest decodes the two notification shapes a live WebSocket
// subscription can deliver (spec §6.1) into a dexparser.Request-ready
// bundle. It is deliberately thin: dialing and reading the WebSocket
// connection itself is the explicitly out-of-scope external collaborator
// from spec §1 — this package only ever decodes bytes it has already been
// handed.
package ingest

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/mr-tron/base58"

	"github.com/gagliardetto/solana-go"

	"github.com/arkhaven/solparse/meta"
	"github.com/arkhaven/solparse/wire"
)

var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

// StreamTx is the decoded shape of one notification, carrying exactly what
// dexparser.Request needs: a wire.Message (built either from decoded base64
// bytes or directly from a fully materialised JSON transaction object) plus
// the side-channel fields the wire format never carries.
type StreamTx struct {
	Message   wire.Message
	Meta      *meta.Meta
	Signature solana.Signature
	Slot      uint64
	BlockTime time.Time
}

type notification struct {
	Slot        uint64          `json:"slot"`
	Signature   string          `json:"signature"`
	BlockTime   *int64          `json:"blockTime"`
	Transaction json.RawMessage `json:"transaction"`
	Meta        json.RawMessage `json:"meta"`
}

// DecodeStreamNotification implements spec §6.1's two-shape handling: if
// `transaction` is a two-element array `[<base64 string>, "base64"]`, decode
// to bytes and parse with the Wire Decoder; otherwise `transaction` is a
// fully materialised transaction object, decoded directly into a
// wire.Message with no binary parsing step. blockTime defaults to wall
// clock when absent, per spec.
func DecodeStreamNotification(raw []byte) (StreamTx, error) {
	var n notification
	if err := jsonAPI.Unmarshal(raw, &n); err != nil {
		return StreamTx{}, fmt.Errorf("ingest: invalid notification JSON: %w", err)
	}

	out := StreamTx{Slot: n.Slot, BlockTime: time.Now()}
	if n.BlockTime != nil {
		out.BlockTime = time.Unix(*n.BlockTime, 0)
	}
	if n.Signature != "" {
		sig, err := solana.SignatureFromBase58(n.Signature)
		if err != nil {
			return StreamTx{}, fmt.Errorf("ingest: invalid signature: %w", err)
		}
		out.Signature = sig
	}

	if len(n.Meta) > 0 {
		m, err := meta.FromJSON(n.Meta)
		if err != nil {
			return StreamTx{}, fmt.Errorf("ingest: invalid meta JSON: %w", err)
		}
		out.Meta = m
	} else {
		out.Meta = meta.FromRPC(nil)
	}

	msg, err := decodeTransactionField(n.Transaction)
	if err != nil {
		return StreamTx{}, err
	}
	out.Message = msg
	return out, nil
}

func decodeTransactionField(raw json.RawMessage) (wire.Message, error) {
	if len(raw) == 0 {
		return wire.Message{}, fmt.Errorf("ingest: notification has no transaction field")
	}

	var pair [2]json.RawMessage
	if err := jsonAPI.Unmarshal(raw, &pair); err == nil {
		var b64 string
		var encoding string
		if err := jsonAPI.Unmarshal(pair[0], &b64); err == nil {
			_ = jsonAPI.Unmarshal(pair[1], &encoding)
			if encoding == "base64" {
				data, err := base64.StdEncoding.DecodeString(b64)
				if err != nil {
					return wire.Message{}, fmt.Errorf("ingest: %w: invalid base64 transaction payload", errUnsupportedEncoding)
				}
				return wire.ParseOwned(data)
			}
		}
	}

	return decodeMaterializedTransaction(raw)
}

// errUnsupportedEncoding is UnsupportedEncoding from spec §7: the caller
// handed a shape this decoder doesn't recognize (neither the [base64,
// "base64"] pair nor a parseable fully materialised transaction object).
var errUnsupportedEncoding = fmt.Errorf("unsupported transaction encoding")

type materializedTx struct {
	Message struct {
		Header struct {
			NumRequiredSignatures uint8 `json:"numRequiredSignatures"`
			NumReadonlySigned     uint8 `json:"numReadonlySignedAccounts"`
			NumReadonlyUnsigned   uint8 `json:"numReadonlyUnsignedAccounts"`
		} `json:"header"`
		AccountKeys     []string `json:"accountKeys"`
		RecentBlockhash string   `json:"recentBlockhash"`
		Instructions    []struct {
			ProgramIDIndex uint8  `json:"programIdIndex"`
			Accounts       []int  `json:"accounts"`
			Data           string `json:"data"` // base58
		} `json:"instructions"`
	} `json:"message"`
}

// decodeMaterializedTransaction builds a wire.Message directly from the
// "fully materialised transaction" JSON shape (accountKeys/instructions as
// base58 strings), bypassing the Wire Decoder entirely since there is no
// binary buffer to parse in this branch.
func decodeMaterializedTransaction(raw json.RawMessage) (wire.Message, error) {
	var mt materializedTx
	if err := jsonAPI.Unmarshal(raw, &mt); err != nil {
		return wire.Message{}, fmt.Errorf("ingest: %w: %s", errUnsupportedEncoding, err)
	}
	if len(mt.Message.AccountKeys) == 0 {
		return wire.Message{}, fmt.Errorf("ingest: %w: no account keys in materialised transaction", errUnsupportedEncoding)
	}

	keys := make([][32]byte, len(mt.Message.AccountKeys))
	for i, k := range mt.Message.AccountKeys {
		decoded, err := base58.Decode(k)
		if err != nil || len(decoded) != 32 {
			return wire.Message{}, fmt.Errorf("ingest: %w: bad account key %q", errUnsupportedEncoding, k)
		}
		copy(keys[i][:], decoded)
	}

	var blockhash [32]byte
	if bh, err := base58.Decode(mt.Message.RecentBlockhash); err == nil && len(bh) == 32 {
		copy(blockhash[:], bh)
	}

	instrs := make([]wire.Instruction, len(mt.Message.Instructions))
	for i, ix := range mt.Message.Instructions {
		data, err := base58.Decode(ix.Data)
		if err != nil {
			return wire.Message{}, fmt.Errorf("ingest: %w: bad instruction data", errUnsupportedEncoding)
		}
		accIdx := make([]byte, len(ix.Accounts))
		for j, a := range ix.Accounts {
			accIdx[j] = byte(a)
		}
		instrs[i] = wire.Instruction{ProgramIDIndex: ix.ProgramIDIndex, Accounts: accIdx, Data: data}
	}

	return wire.Message{
		IsVersioned: false,
		Header: wire.Header{
			NumRequiredSignatures: mt.Message.Header.NumRequiredSignatures,
			NumReadonlySigned:     mt.Message.Header.NumReadonlySigned,
			NumReadonlyUnsigned:   mt.Message.Header.NumReadonlyUnsigned,
		},
		AccountKeys:  keys,
		Blockhash:    blockhash,
		Instructions: instrs,
	}, nil
}
