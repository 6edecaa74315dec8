// Package binreader is a small little-endian struct reader shared by the
// event-decoding protocol decoders (Pumpfun, Pumpswap), generalizing the teacher's ad hoc binary.LittleEndian
// calls in parse_transfer.go/parse_transfer_check.go into one reusable type.
// Its conventions (length-prefixed strings, fixed-width pubkeys) mirror
// gagliardetto/binary's BorshDecoder without depending on it directly, since
// every field here is read at a caller-chosen fixed offset rather than via
// struct-tag reflection.
package binreader

import (
	"encoding/binary"
	"errors"

	"github.com/gagliardetto/solana-go"
)

// ErrShortBuffer is returned whenever a read would run past the end of the
// underlying buffer.
var ErrShortBuffer = errors.New("binreader: short buffer")

// Reader reads fixed-width little-endian fields from a byte slice it does
// not own, advancing an internal cursor. It never copies the input.
type Reader struct {
	buf []byte
	off int
	err error
}

// New wraps buf for sequential reads starting at offset 0.
func New(buf []byte) *Reader { return &Reader{buf: buf} }

// Err returns the first error encountered by any Read call, or nil.
func (r *Reader) Err() error { return r.err }

// Offset reports the current read cursor.
func (r *Reader) Offset() int { return r.off }

// Skip advances the cursor n bytes without reading, recording ErrShortBuffer
// if that would run past the buffer.
func (r *Reader) Skip(n int) {
	if r.err != nil {
		return
	}
	if r.off+n > len(r.buf) || n < 0 {
		r.err = ErrShortBuffer
		return
	}
	r.off += n
}

func (r *Reader) take(n int) []byte {
	if r.err != nil {
		return nil
	}
	if r.off+n > len(r.buf) {
		r.err = ErrShortBuffer
		return nil
	}
	b := r.buf[r.off : r.off+n]
	r.off += n
	return b
}

// U8 reads one byte.
func (r *Reader) U8() uint8 {
	b := r.take(1)
	if b == nil {
		return 0
	}
	return b[0]
}

// U16 reads a little-endian uint16.
func (r *Reader) U16() uint16 {
	b := r.take(2)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint16(b)
}

// U64 reads a little-endian uint64.
func (r *Reader) U64() uint64 {
	b := r.take(8)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint64(b)
}

// I64 reads a little-endian int64, e.g. a Unix-second event timestamp.
func (r *Reader) I64() int64 {
	return int64(r.U64())
}

// Pubkey reads 32 raw bytes as a solana.PublicKey.
func (r *Reader) Pubkey() solana.PublicKey {
	b := r.take(32)
	if b == nil {
		return solana.PublicKey{}
	}
	return solana.PublicKeyFromBytes(b)
}

// String reads a Borsh-style length-prefixed UTF-8 string: a little-endian
// u32 length followed by that many raw bytes.
func (r *Reader) String() string {
	n := r.U32()
	b := r.take(int(n))
	if b == nil {
		return ""
	}
	return string(b)
}

// U32 reads a little-endian uint32.
func (r *Reader) U32() uint32 {
	b := r.take(4)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}

// Remaining reports how many unread bytes remain.
func (r *Reader) Remaining() int { return len(r.buf) - r.off }

// HasDiscriminator reports whether buf begins with prefix, without
// advancing the cursor. Used by decoders to match Anchor event/instruction
// discriminators before committing to a full decode.
func HasDiscriminator(buf, prefix []byte) bool {
	if len(buf) < len(prefix) {
		return false
	}
	for i := range prefix {
		if buf[i] != prefix[i] {
			return false
		}
	}
	return true
}
