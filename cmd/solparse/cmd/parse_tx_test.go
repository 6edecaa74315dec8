package cmd

import (
	"context"
	"encoding/base64"
	"testing"

	"github.com/arkhaven/solparse/dexparser"
)

func TestParseTxFileEmptyInstructionsSucceeds(t *testing.T) {
	txBytes := []byte{
		0x00,             // zero signatures
		0x01, 0x00, 0x00, // header
		0x01, // 1 account key
	}
	txBytes = append(txBytes, make([]byte, 32)...) // account key
	txBytes = append(txBytes, make([]byte, 32)...) // blockhash
	txBytes = append(txBytes, 0x00)                // 0 instructions

	b64 := base64.StdEncoding.EncodeToString(txBytes)
	raw := []byte(`{
		"slot": 42,
		"transaction": ["` + b64 + `", "base64"],
		"meta": {"fee": 5000, "err": null}
	}`)

	res, err := parseTxFile(context.Background(), raw, dexparser.ModeAll)
	if err != nil {
		t.Fatalf("parseTxFile: %v", err)
	}
	if !res.State {
		t.Fatalf("State = false, Msg = %q", res.Msg)
	}
	if res.Slot != 42 {
		t.Fatalf("Slot = %d, want 42", res.Slot)
	}
	if res.TxStatus != "SUCCESS" {
		t.Fatalf("TxStatus = %q, want SUCCESS", res.TxStatus)
	}
}

func TestParseTxFileMissingTransactionFieldErrors(t *testing.T) {
	raw := []byte(`{"slot": 1}`)
	if _, err := parseTxFile(context.Background(), raw, dexparser.ModeAll); err == nil {
		t.Fatal("expected an error for a transaction JSON with no transaction field")
	}
}
