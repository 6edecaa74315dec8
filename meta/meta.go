// Package meta projects Solana transaction metadata — balances, token
// balances, inner instructions, fee and status — into typed accessors.
//
// Two constructors mirror the distilled spec's two transports: FromRPC wraps
// an already-typed *rpc.TransactionMeta (the common case when a caller used
// gagliardetto/solana-go's RPC client), and FromJSON decodes a raw metadata
// JSON object such as the one riding alongside a WebSocket notification.
package meta

import (
	jsoniter "github.com/json-iterator/go"
	"github.com/mr-tron/base58"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// TxStatus is the reconciled success/failure state of a transaction.
type TxStatus int

const (
	StatusUnknown TxStatus = iota
	StatusSuccess
	StatusFailed
)

func (s TxStatus) String() string {
	switch s {
	case StatusSuccess:
		return "SUCCESS"
	case StatusFailed:
		return "FAILED"
	default:
		return "UNKNOWN"
	}
}

// TokenBalance is one entry of preTokenBalances/postTokenBalances.
type TokenBalance struct {
	AccountIndex uint16
	Mint         solana.PublicKey
	Owner        solana.PublicKey
	Decimals     uint8
	Amount       string
}

// InnerInstructionSet groups the inner instructions invoked by one outer
// instruction, identified by that instruction's index.
type InnerInstructionSet struct {
	Index        uint16
	Instructions []solana.CompiledInstruction
}

// LoadedAddresses are the address-lookup-table expansions appended to the
// static account-key table: writable entries first, then readonly.
type LoadedAddresses struct {
	Writable solana.PublicKeySlice
	ReadOnly solana.PublicKeySlice
}

// Meta is the projected view over transaction metadata.
type Meta struct {
	fee               uint64
	computeUnits      *uint64
	status            TxStatus
	preBalances       []int64
	postBalances      []int64
	preTokenBalances  []TokenBalance
	postTokenBalances []TokenBalance
	innerInstructions []InnerInstructionSet
	loadedAddresses   LoadedAddresses
	logMessages       []string
}

// FromRPC projects a metadata view from an RPC-typed transaction meta
// response. m may be nil, producing a Meta with every getter returning its
// zero value — this is the degrade-gracefully behavior the spec calls for
// when metadata is absent.
func FromRPC(m *rpc.TransactionMeta) *Meta {
	if m == nil {
		return &Meta{status: StatusUnknown}
	}

	status := StatusSuccess
	if m.Err != nil {
		status = StatusFailed
	}

	var cu *uint64
	if m.ComputeUnitsConsumed != nil {
		v := *m.ComputeUnitsConsumed
		cu = &v
	}

	preTB := make([]TokenBalance, 0, len(m.PreTokenBalances))
	for _, tb := range m.PreTokenBalances {
		preTB = append(preTB, rpcTokenBalance(tb))
	}
	postTB := make([]TokenBalance, 0, len(m.PostTokenBalances))
	for _, tb := range m.PostTokenBalances {
		postTB = append(postTB, rpcTokenBalance(tb))
	}

	inner := make([]InnerInstructionSet, 0, len(m.InnerInstructions))
	for _, set := range m.InnerInstructions {
		instrs := make([]solana.CompiledInstruction, 0, len(set.Instructions))
		for _, in := range set.Instructions {
			instrs = append(instrs, solana.CompiledInstruction{
				ProgramIDIndex: in.ProgramIDIndex,
				Accounts:       in.Accounts,
				Data:           in.Data,
			})
		}
		inner = append(inner, InnerInstructionSet{
			Index:        set.Index,
			Instructions: instrs,
		})
	}

	return &Meta{
		fee:               m.Fee,
		computeUnits:      cu,
		status:            status,
		preBalances:       int64Slice(m.PreBalances),
		postBalances:      int64Slice(m.PostBalances),
		preTokenBalances:  preTB,
		postTokenBalances: postTB,
		innerInstructions: inner,
		loadedAddresses: LoadedAddresses{
			Writable: m.LoadedAddresses.Writable,
			ReadOnly: m.LoadedAddresses.ReadOnly,
		},
		logMessages: append([]string(nil), m.LogMessages...),
	}
}

// rpcTokenBalance projects one rpc.TokenBalance entry. UiTokenAmount is a
// pointer in the RPC type and is omitted by some validators for zero-amount
// entries, so a nil value degrades to the zero TokenBalance fields.
func rpcTokenBalance(tb rpc.TokenBalance) TokenBalance {
	out := TokenBalance{
		AccountIndex: tb.AccountIndex,
		Mint:         tb.Mint,
	}
	if tb.Owner != nil {
		out.Owner = *tb.Owner
	}
	if tb.UiTokenAmount != nil {
		out.Decimals = tb.UiTokenAmount.Decimals
		out.Amount = tb.UiTokenAmount.Amount
	}
	return out
}

func ownerOf(o string) solana.PublicKey {
	if o == "" {
		return solana.PublicKey{}
	}
	pk, err := solana.PublicKeyFromBase58(o)
	if err != nil {
		return solana.PublicKey{}
	}
	return pk
}

func int64Slice(in []uint64) []int64 {
	out := make([]int64, len(in))
	for i, v := range in {
		out[i] = int64(v)
	}
	return out
}

// rawMeta mirrors the JSON shape of a transaction metadata object as
// returned by getTransaction / carried in a WebSocket notification.
type rawMeta struct {
	Fee                   uint64 `json:"fee"`
	ComputeUnitsConsumed  *uint64 `json:"computeUnitsConsumed"`
	Err                   interface{} `json:"err"`
	PreBalances           []int64 `json:"preBalances"`
	PostBalances          []int64 `json:"postBalances"`
	PreTokenBalances      []rawTokenBalance `json:"preTokenBalances"`
	PostTokenBalances     []rawTokenBalance `json:"postTokenBalances"`
	InnerInstructions     []rawInnerSet `json:"innerInstructions"`
	LoadedAddresses       *rawLoadedAddresses `json:"loadedAddresses"`
	LogMessages           []string `json:"logMessages"`
}

type rawTokenBalance struct {
	AccountIndex uint16 `json:"accountIndex"`
	Mint         string `json:"mint"`
	Owner        string `json:"owner"`
	UiTokenAmount struct {
		Amount   string `json:"amount"`
		Decimals uint8  `json:"decimals"`
	} `json:"uiTokenAmount"`
}

type rawInnerSet struct {
	Index        uint16            `json:"index"`
	Instructions []rawInstruction  `json:"instructions"`
}

type rawInstruction struct {
	ProgramIDIndex uint16 `json:"programIdIndex"`
	Accounts       []int  `json:"accounts"`
	Data           string `json:"data"` // base58-encoded
}

type rawLoadedAddresses struct {
	Writable []string `json:"writable"`
	Readonly []string `json:"readonly"`
}

// FromJSON decodes a raw metadata JSON payload — the shape carried inside a
// WebSocket notification's sibling `meta` field — into a Meta. Decoding uses
// jsoniter rather than encoding/json because this path sits on the
// per-transaction hot path the wider pipeline is allocation-conscious about.
func FromJSON(raw []byte) (*Meta, error) {
	var rm rawMeta
	if err := json.Unmarshal(raw, &rm); err != nil {
		return nil, err
	}

	status := StatusSuccess
	if rm.Err != nil {
		status = StatusFailed
	}

	preTB := make([]TokenBalance, 0, len(rm.PreTokenBalances))
	for _, tb := range rm.PreTokenBalances {
		preTB = append(preTB, TokenBalance{
			AccountIndex: tb.AccountIndex,
			Mint:         ownerOf(tb.Mint),
			Owner:        ownerOf(tb.Owner),
			Decimals:     tb.UiTokenAmount.Decimals,
			Amount:       tb.UiTokenAmount.Amount,
		})
	}
	postTB := make([]TokenBalance, 0, len(rm.PostTokenBalances))
	for _, tb := range rm.PostTokenBalances {
		postTB = append(postTB, TokenBalance{
			AccountIndex: tb.AccountIndex,
			Mint:         ownerOf(tb.Mint),
			Owner:        ownerOf(tb.Owner),
			Decimals:     tb.UiTokenAmount.Decimals,
			Amount:       tb.UiTokenAmount.Amount,
		})
	}

	inner := make([]InnerInstructionSet, 0, len(rm.InnerInstructions))
	for _, set := range rm.InnerInstructions {
		instrs := make([]solana.CompiledInstruction, 0, len(set.Instructions))
		for _, in := range set.Instructions {
			data, _ := base58.Decode(in.Data)
			accounts := make([]uint16, len(in.Accounts))
			for i, a := range in.Accounts {
				accounts[i] = uint16(a)
			}
			instrs = append(instrs, solana.CompiledInstruction{
				ProgramIDIndex: in.ProgramIDIndex,
				Accounts:       accounts,
				Data:           data,
			})
		}
		inner = append(inner, InnerInstructionSet{Index: set.Index, Instructions: instrs})
	}

	var la LoadedAddresses
	if rm.LoadedAddresses != nil {
		for _, s := range rm.LoadedAddresses.Writable {
			la.Writable = append(la.Writable, ownerOf(s))
		}
		for _, s := range rm.LoadedAddresses.Readonly {
			la.ReadOnly = append(la.ReadOnly, ownerOf(s))
		}
	}

	return &Meta{
		fee:               rm.Fee,
		computeUnits:      rm.ComputeUnitsConsumed,
		status:            status,
		preBalances:       rm.PreBalances,
		postBalances:      rm.PostBalances,
		preTokenBalances:  preTB,
		postTokenBalances: postTB,
		innerInstructions: inner,
		loadedAddresses:   la,
		logMessages:       rm.LogMessages,
	}, nil
}

func (m *Meta) Fee() uint64                                  { return m.fee }
func (m *Meta) ComputeUnits() *uint64                         { return m.computeUnits }
func (m *Meta) Status() TxStatus                              { return m.status }
func (m *Meta) PreBalances() []int64                          { return m.preBalances }
func (m *Meta) PostBalances() []int64                         { return m.postBalances }
func (m *Meta) PreTokenBalances() []TokenBalance              { return m.preTokenBalances }
func (m *Meta) PostTokenBalances() []TokenBalance             { return m.postTokenBalances }
func (m *Meta) InnerInstructions() []InnerInstructionSet      { return m.innerInstructions }
func (m *Meta) LoadedAddresses() LoadedAddresses              { return m.loadedAddresses }
func (m *Meta) LogMessages() []string                         { return m.logMessages }

// InnerInstructionsFor returns the inner instructions invoked by the outer
// instruction at outerIndex, or nil if there are none.
func (m *Meta) InnerInstructionsFor(outerIndex int) []solana.CompiledInstruction {
	for _, set := range m.innerInstructions {
		if int(set.Index) == outerIndex {
			return set.Instructions
		}
	}
	return nil
}
