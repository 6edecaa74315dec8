package dexparser

import (
	"encoding/json"
	"math"
	"testing"
)

func TestLamportsToTokenAmountUIMatchesRawOverTenPowDecimals(t *testing.T) {
	amt := lamportsToTokenAmount(1_500_000_000)
	if amt.Decimals != 9 {
		t.Fatalf("Decimals = %d, want 9", amt.Decimals)
	}
	want := float64(amt.Raw) / math.Pow10(int(amt.Decimals))
	if amt.UI == nil || math.Abs(*amt.UI-want) > 1e-9 {
		t.Fatalf("UI = %v, want %v", amt.UI, want)
	}
}

func TestParseResultJSONUsesCamelCaseTags(t *testing.T) {
	res := ParseResult{State: true, TxStatus: "SUCCESS", Trades: []Trade{}, Liquidities: []PoolEvent{}, Transfers: []TransferRecord{}}
	b, err := json.Marshal(res)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var m map[string]interface{}
	if err := json.Unmarshal(b, &m); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	for _, want := range []string{"state", "signature", "slot", "timestamp", "signer", "fee", "txStatus", "trades", "liquidities", "transfers"} {
		if _, ok := m[want]; !ok {
			t.Fatalf("missing expected camelCase field %q in %v", want, m)
		}
	}
	for _, absent := range []string{"aggregateTrade", "memeEvents", "msg", "solBalanceChange"} {
		if _, ok := m[absent]; ok {
			t.Fatalf("optional empty field %q should be omitted via omitempty", absent)
		}
	}
}
