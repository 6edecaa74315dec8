package meta

import (
	"testing"

	"github.com/gagliardetto/solana-go/rpc"
)

func TestFromRPCNilMeta(t *testing.T) {
	m := FromRPC(nil)
	if m.Status() != StatusUnknown {
		t.Fatalf("Status() = %v, want StatusUnknown", m.Status())
	}
	if m.Fee() != 0 {
		t.Fatalf("Fee() = %d, want 0", m.Fee())
	}
	if len(m.PreBalances()) != 0 {
		t.Fatalf("PreBalances() should be empty for nil meta")
	}
}

func TestFromRPCStatus(t *testing.T) {
	cases := []struct {
		name string
		in   *rpc.TransactionMeta
		want TxStatus
	}{
		{"success", &rpc.TransactionMeta{Fee: 5000}, StatusSuccess},
		{"failed", &rpc.TransactionMeta{Fee: 5000, Err: map[string]interface{}{"InstructionError": []interface{}{0, "Custom"}}}, StatusFailed},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			m := FromRPC(c.in)
			if m.Status() != c.want {
				t.Fatalf("Status() = %v, want %v", m.Status(), c.want)
			}
			if m.Fee() != 5000 {
				t.Fatalf("Fee() = %d, want 5000", m.Fee())
			}
		})
	}
}

func TestFromRPCComputeUnits(t *testing.T) {
	var cu uint64 = 150000
	m := FromRPC(&rpc.TransactionMeta{ComputeUnitsConsumed: &cu})
	if m.ComputeUnits() == nil || *m.ComputeUnits() != cu {
		t.Fatalf("ComputeUnits() = %v, want %d", m.ComputeUnits(), cu)
	}
}

func TestFromRPCTokenBalancesWithNilAmount(t *testing.T) {
	m := FromRPC(&rpc.TransactionMeta{
		PreTokenBalances: []rpc.TokenBalance{
			{AccountIndex: 2, UiTokenAmount: nil},
		},
	})
	tbs := m.PreTokenBalances()
	if len(tbs) != 1 {
		t.Fatalf("len(PreTokenBalances()) = %d, want 1", len(tbs))
	}
	if tbs[0].Amount != "" || tbs[0].Decimals != 0 {
		t.Fatalf("nil UiTokenAmount should degrade to zero fields, got %+v", tbs[0])
	}
}

func TestFromRPCInnerInstructionsFor(t *testing.T) {
	m := FromRPC(&rpc.TransactionMeta{
		InnerInstructions: []rpc.InnerInstruction{
			{Index: 1, Instructions: nil},
		},
	})
	if got := m.InnerInstructionsFor(1); got == nil {
		t.Fatalf("InnerInstructionsFor(1) = nil, want non-nil slice for a recorded index")
	}
	if got := m.InnerInstructionsFor(9); got != nil {
		t.Fatalf("InnerInstructionsFor(9) = %v, want nil for an unrecorded index", got)
	}
}

func TestFromJSONBasic(t *testing.T) {
	raw := []byte(`{
		"fee": 5000,
		"preBalances": [1000000, 2000000],
		"postBalances": [995000, 2005000],
		"preTokenBalances": [],
		"postTokenBalances": [
			{"accountIndex": 1, "mint": "So11111111111111111111111111111111111111112", "owner": "11111111111111111111111111111111", "uiTokenAmount": {"amount": "123", "decimals": 9}}
		],
		"innerInstructions": [
			{"index": 0, "instructions": [{"programIdIndex": 3, "accounts": [1,2], "data": ""}]}
		],
		"loadedAddresses": {"writable": ["So11111111111111111111111111111111111111112"], "readonly": []}
	}`)

	m, err := FromJSON(raw)
	if err != nil {
		t.Fatalf("FromJSON: %v", err)
	}
	if m.Status() != StatusSuccess {
		t.Fatalf("Status() = %v, want StatusSuccess", m.Status())
	}
	if m.Fee() != 5000 {
		t.Fatalf("Fee() = %d, want 5000", m.Fee())
	}
	if len(m.PostTokenBalances()) != 1 || m.PostTokenBalances()[0].Amount != "123" {
		t.Fatalf("PostTokenBalances() = %+v", m.PostTokenBalances())
	}
	if len(m.LoadedAddresses().Writable) != 1 {
		t.Fatalf("LoadedAddresses().Writable has %d entries, want 1", len(m.LoadedAddresses().Writable))
	}
	if len(m.InnerInstructionsFor(0)) != 1 {
		t.Fatalf("InnerInstructionsFor(0) has %d entries, want 1", len(m.InnerInstructionsFor(0)))
	}
}

func TestFromJSONInnerInstructionDataIsBase58(t *testing.T) {
	// "swap" base58-encoded; RPC wire data for inner instructions is base58,
	// never base64, matching ingest.go's own decoding convention.
	raw := []byte(`{
		"fee": 5000,
		"preBalances": [1000000],
		"postBalances": [995000],
		"innerInstructions": [
			{"index": 0, "instructions": [{"programIdIndex": 3, "accounts": [], "data": "3xBg8X"}]}
		]
	}`)

	m, err := FromJSON(raw)
	if err != nil {
		t.Fatalf("FromJSON: %v", err)
	}
	instrs := m.InnerInstructionsFor(0)
	if len(instrs) != 1 {
		t.Fatalf("InnerInstructionsFor(0) has %d entries, want 1", len(instrs))
	}
	if string(instrs[0].Data) != "swap" {
		t.Fatalf("instruction data = %q, want %q (base58-decoded)", instrs[0].Data, "swap")
	}
}

func TestFromJSONFailedStatus(t *testing.T) {
	raw := []byte(`{"fee": 5000, "err": {"InstructionError": [2, "Custom"]}}`)
	m, err := FromJSON(raw)
	if err != nil {
		t.Fatalf("FromJSON: %v", err)
	}
	if m.Status() != StatusFailed {
		t.Fatalf("Status() = %v, want StatusFailed", m.Status())
	}
}

func TestTxStatusString(t *testing.T) {
	cases := map[TxStatus]string{
		StatusSuccess: "SUCCESS",
		StatusFailed:  "FAILED",
		StatusUnknown: "UNKNOWN",
	}
	for status, want := range cases {
		if got := status.String(); got != want {
			t.Fatalf("%v.String() = %q, want %q", status, got, want)
		}
	}
}
