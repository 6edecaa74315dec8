package wire

import (
	"bytes"
	"testing"
)

func TestReadCompactU16(t *testing.T) {
	cases := []struct {
		name  string
		in    []byte
		value uint16
		n     int
	}{
		{"single-byte-max", []byte{0x7f}, 0x7f, 1},
		{"single-byte-zero", []byte{0x00}, 0x00, 1},
		{"two-byte-min", []byte{0x80, 0x01}, 0x01, 2},
		{"two-byte-max", []byte{0xbf, 0xff}, 0x3fff, 2},
		{"three-byte-min", []byte{0xc0, 0x40, 0x00}, 0x4000, 3},
		{"three-byte-max", []byte{0xff, 0xff, 0xff}, 0xffff, 3},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			v, n, err := ReadCompactU16(c.in)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if v != c.value || n != c.n {
				t.Fatalf("ReadCompactU16(%v) = (%d, %d), want (%d, %d)", c.in, v, n, c.value, c.n)
			}
		})
	}
}

func TestReadCompactU16InsufficientData(t *testing.T) {
	cases := [][]byte{
		{},
		{0x80},
		{0xc0, 0x00},
	}
	for _, in := range cases {
		if _, _, err := ReadCompactU16(in); err != ErrInsufficientData {
			t.Fatalf("ReadCompactU16(%v) err = %v, want ErrInsufficientData", in, err)
		}
	}
}

func TestCompactU16Len(t *testing.T) {
	cases := []struct {
		value uint16
		n     int
	}{
		{0x7f, 1},
		{0x3fff, 2},
		{0x4000, 3},
		{0xffff, 3},
	}
	for _, c := range cases {
		if got := CompactU16Len(c.value); got != c.n {
			t.Fatalf("CompactU16Len(%#x) = %d, want %d", c.value, got, c.n)
		}
	}
}

// buildLegacyMessage assembles a minimal, valid signature+message buffer
// with one zero-signature slot, one instruction, and no version byte.
func buildLegacyMessage(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer

	buf.WriteByte(0x00) // zero signatures (compact-u16 1 byte)

	buf.WriteByte(0x01) // num_required_signatures
	buf.WriteByte(0x00) // num_readonly_signed
	buf.WriteByte(0x01) // num_readonly_unsigned

	buf.WriteByte(0x02) // 2 account keys
	key0 := bytes.Repeat([]byte{0x11}, 32)
	key1 := bytes.Repeat([]byte{0x22}, 32)
	buf.Write(key0)
	buf.Write(key1)

	blockhash := bytes.Repeat([]byte{0x33}, 32)
	buf.Write(blockhash)

	buf.WriteByte(0x01) // 1 instruction
	buf.WriteByte(0x01) // program_id_index = 1
	buf.WriteByte(0x01) // 1 account index
	buf.WriteByte(0x00) // account index 0
	buf.WriteByte(0x02) // 2 bytes of data
	buf.Write([]byte{0xde, 0xad})

	return buf.Bytes()
}

func TestParseZeroCopyLegacyMessage(t *testing.T) {
	buf := buildLegacyMessage(t)

	msg, err := ParseZeroCopy(buf)
	if err != nil {
		t.Fatalf("ParseZeroCopy: %v", err)
	}
	if msg.IsVersioned {
		t.Fatalf("expected legacy (non-versioned) message")
	}
	if msg.NumAccounts != 2 {
		t.Fatalf("NumAccounts = %d, want 2", msg.NumAccounts)
	}
	key0, ok := msg.AccountKeyAt(0)
	if !ok || !bytes.Equal(key0, bytes.Repeat([]byte{0x11}, 32)) {
		t.Fatalf("AccountKeyAt(0) = %x, ok=%v", key0, ok)
	}
	if len(msg.Instructions) != 1 {
		t.Fatalf("len(Instructions) = %d, want 1", len(msg.Instructions))
	}
	ix := msg.Instructions[0]
	if ix.ProgramIDIndex != 1 {
		t.Fatalf("ProgramIDIndex = %d, want 1", ix.ProgramIDIndex)
	}
	if !bytes.Equal(ix.Data, []byte{0xde, 0xad}) {
		t.Fatalf("Data = %x, want dead", ix.Data)
	}
	if _, ok := msg.AccountKeyAt(5); ok {
		t.Fatalf("AccountKeyAt(5) should be out of range")
	}
}

func TestParseOwnedCopiesData(t *testing.T) {
	buf := buildLegacyMessage(t)
	owned, err := ParseOwned(buf)
	if err != nil {
		t.Fatalf("ParseOwned: %v", err)
	}
	// Mutate the source buffer; owned copies must be unaffected.
	buf[len(buf)-1] = 0x00
	if owned.Instructions[0].Data[1] != 0xad {
		t.Fatalf("owned instruction data mutated alongside source buffer")
	}
}

func TestParseZeroCopyTruncated(t *testing.T) {
	buf := buildLegacyMessage(t)
	for n := 0; n < len(buf); n++ {
		if _, err := ParseZeroCopy(buf[:n]); err == nil {
			t.Fatalf("expected error for truncated buffer of length %d", n)
		}
	}
}
