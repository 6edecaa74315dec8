// Package wire decodes a raw Solana transaction message from its wire
// encoding: a compact-u16 signature count, that many 64-byte signatures, and
// then the message itself (optional version byte, 3-byte header, account-key
// table, recent blockhash, and compiled instructions).
//
// Two surfaces are exposed over the same algorithm. ParseZeroCopy returns a
// ZcMessage whose slices reference the input buffer directly; the caller
// must keep that buffer alive for as long as the ZcMessage (or anything
// derived from it) is in use. ParseOwned returns a Message with everything
// copied into independently-owned slices, for callers that want to discard
// or reuse the input buffer immediately.
package wire

import (
	"encoding/binary"
	"errors"
	"fmt"
)

var (
	ErrInsufficientData  = errors.New("wire: insufficient data")
	ErrInvalidCompactU16 = errors.New("wire: invalid compact-u16 encoding")
	ErrInvalidHeader     = errors.New("wire: invalid message header")
)

// Header is the 3-byte Solana message header.
type Header struct {
	NumRequiredSignatures  uint8
	NumReadonlySigned      uint8
	NumReadonlyUnsigned    uint8
}

func parseHeader(b []byte) (Header, error) {
	if len(b) < 3 {
		return Header{}, fmt.Errorf("%w: header needs 3 bytes, got %d", ErrInsufficientData, len(b))
	}
	return Header{
		NumRequiredSignatures: b[0],
		NumReadonlySigned:     b[1],
		NumReadonlyUnsigned:   b[2],
	}, nil
}

// ReadCompactU16 decodes Solana's 1-to-3-byte variable length unsigned
// integer encoding from the front of data, returning the decoded value and
// the number of bytes consumed.
func ReadCompactU16(data []byte) (value uint16, n int, err error) {
	if len(data) == 0 {
		return 0, 0, ErrInsufficientData
	}
	b0 := data[0]
	switch {
	case b0 <= 0x7f:
		return uint16(b0), 1, nil
	case b0 <= 0xbf:
		if len(data) < 2 {
			return 0, 0, ErrInsufficientData
		}
		v := (uint16(b0&0x3f) << 8) | uint16(data[1])
		return v, 2, nil
	default:
		if len(data) < 3 {
			return 0, 0, ErrInsufficientData
		}
		v := (uint32(b0&0x1f) << 16) | (uint32(data[1]) << 8) | uint32(data[2])
		return uint16(v), 3, nil
	}
}

// CompactU16Len returns how many bytes the compact-u16 encoding of value
// occupies.
func CompactU16Len(value uint16) int {
	switch {
	case value <= 0x7f:
		return 1
	case value <= 0x3fff:
		return 2
	default:
		return 3
	}
}

// ZcInstruction is a borrowed compiled instruction: every slice field
// references the buffer passed to ParseZeroCopy.
type ZcInstruction struct {
	ProgramIDIndex uint8
	Accounts       []byte // one byte per referenced account index
	Data           []byte
}

// ZcMessage is a borrowed view over a parsed message. All slice fields
// reference the buffer given to ParseZeroCopy.
type ZcMessage struct {
	IsVersioned  bool
	Header       Header
	AccountKeys  []byte // num_accounts*32 bytes, 32 bytes per key
	NumAccounts  int
	Blockhash    []byte // 32 bytes
	Instructions []ZcInstruction
}

// AccountKeyAt returns the 32-byte account key at index, or false if index
// is out of range of the static key table.
func (m ZcMessage) AccountKeyAt(index int) ([]byte, bool) {
	if index < 0 || index >= m.NumAccounts {
		return nil, false
	}
	return m.AccountKeys[index*32 : index*32+32], true
}

// ParseZeroCopy parses a raw transaction buffer (signatures + message) into
// a borrowed ZcMessage. The returned value is valid only as long as buf is
// retained by the caller.
func ParseZeroCopy(buf []byte) (ZcMessage, error) {
	_, messageStart, err := parseSignatures(buf)
	if err != nil {
		return ZcMessage{}, err
	}
	return parseMessage(buf, messageStart)
}

// parseSignatures reads the compact-u16 signature count and skips that many
// 64-byte signatures, returning the offset of the message that follows.
func parseSignatures(buf []byte) (numSigs uint16, messageStart int, err error) {
	numSigs, n, err := ReadCompactU16(buf)
	if err != nil {
		return 0, 0, err
	}
	pos := n
	need := int(numSigs) * 64
	if pos+need > len(buf) {
		return 0, 0, fmt.Errorf("%w: need %d signature bytes, have %d", ErrInsufficientData, need, len(buf)-pos)
	}
	return numSigs, pos + need, nil
}

func parseMessage(buf []byte, messageStart int) (ZcMessage, error) {
	pos := messageStart
	if pos >= len(buf) {
		return ZcMessage{}, fmt.Errorf("%w: no bytes left for message", ErrInsufficientData)
	}

	isVersioned := buf[pos]&0x80 != 0
	if isVersioned {
		pos++
	}

	if pos+3 > len(buf) {
		return ZcMessage{}, fmt.Errorf("%w: no bytes left for header", ErrInsufficientData)
	}
	header, err := parseHeader(buf[pos : pos+3])
	if err != nil {
		return ZcMessage{}, err
	}
	pos += 3

	numAccounts, n, err := ReadCompactU16(buf[pos:])
	if err != nil {
		return ZcMessage{}, err
	}
	pos += n

	keysLen := int(numAccounts) * 32
	if pos+keysLen > len(buf) {
		return ZcMessage{}, fmt.Errorf("%w: need %d bytes of account keys", ErrInsufficientData, keysLen)
	}
	accountKeys := buf[pos : pos+keysLen]
	pos += keysLen

	if pos+32 > len(buf) {
		return ZcMessage{}, fmt.Errorf("%w: need 32 bytes for blockhash", ErrInsufficientData)
	}
	blockhash := buf[pos : pos+32]
	pos += 32

	numInstructions, n, err := ReadCompactU16(buf[pos:])
	if err != nil {
		return ZcMessage{}, err
	}
	pos += n

	instructions := make([]ZcInstruction, 0, numInstructions)
	for i := 0; i < int(numInstructions); i++ {
		if pos+1 > len(buf) {
			return ZcMessage{}, fmt.Errorf("%w: missing program id index for instruction %d", ErrInsufficientData, i)
		}
		programIDIndex := buf[pos]
		pos++

		numAccIdx, n, err := ReadCompactU16(buf[pos:])
		if err != nil {
			return ZcMessage{}, err
		}
		pos += n
		if pos+int(numAccIdx) > len(buf) {
			return ZcMessage{}, fmt.Errorf("%w: missing account indices for instruction %d", ErrInsufficientData, i)
		}
		accIdx := buf[pos : pos+int(numAccIdx)]
		pos += int(numAccIdx)

		dataLen, n, err := ReadCompactU16(buf[pos:])
		if err != nil {
			return ZcMessage{}, err
		}
		pos += n
		if pos+int(dataLen) > len(buf) {
			return ZcMessage{}, fmt.Errorf("%w: missing data for instruction %d", ErrInsufficientData, i)
		}
		data := buf[pos : pos+int(dataLen)]
		pos += int(dataLen)

		instructions = append(instructions, ZcInstruction{
			ProgramIDIndex: programIDIndex,
			Accounts:       accIdx,
			Data:           data,
		})
	}

	return ZcMessage{
		IsVersioned:  isVersioned,
		Header:       header,
		AccountKeys:  accountKeys,
		NumAccounts:  int(numAccounts),
		Blockhash:    blockhash,
		Instructions: instructions,
	}, nil
}

// Instruction is an owned compiled instruction.
type Instruction struct {
	ProgramIDIndex uint8
	Accounts       []byte
	Data           []byte
}

// Message is an owned (fully copied) parsed message.
type Message struct {
	IsVersioned  bool
	Header       Header
	AccountKeys  [][32]byte
	Blockhash    [32]byte
	Instructions []Instruction
}

// ParseOwned parses buf the same way ParseZeroCopy does, but copies every
// slice into independently-owned memory so the result outlives buf.
func ParseOwned(buf []byte) (Message, error) {
	zc, err := ParseZeroCopy(buf)
	if err != nil {
		return Message{}, err
	}

	keys := make([][32]byte, zc.NumAccounts)
	for i := range keys {
		b, _ := zc.AccountKeyAt(i)
		copy(keys[i][:], b)
	}

	var blockhash [32]byte
	copy(blockhash[:], zc.Blockhash)

	instructions := make([]Instruction, len(zc.Instructions))
	for i, zi := range zc.Instructions {
		instructions[i] = Instruction{
			ProgramIDIndex: zi.ProgramIDIndex,
			Accounts:       append([]byte(nil), zi.Accounts...),
			Data:           append([]byte(nil), zi.Data...),
		}
	}

	return Message{
		IsVersioned:  zc.IsVersioned,
		Header:       zc.Header,
		AccountKeys:  keys,
		Blockhash:    blockhash,
		Instructions: instructions,
	}, nil
}

// Uint64LE reads a little-endian uint64 at the given offset in data,
// matching the amount encoding used by SPL Token instructions across this
// module.
func Uint64LE(data []byte, offset int) (uint64, bool) {
	if offset < 0 || offset+8 > len(data) {
		return 0, false
	}
	return binary.LittleEndian.Uint64(data[offset : offset+8]), true
}
