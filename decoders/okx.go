package decoders

import (
	"bytes"
	"regexp"
	"strconv"
)

var (
	okxSwapDisc                = []byte{248, 198, 158, 145, 225, 117, 135, 200}
	okxSwap2Disc               = []byte{65, 75, 63, 76, 235, 91, 91, 136}
	okxCommissionSplSwap2Disc  = []byte{173, 131, 78, 38, 150, 165, 123, 15}
	okxSwap3Disc               = []byte{19, 44, 130, 148, 72, 56, 44, 238}
)

var (
	okxSourceChangeRe      = regexp.MustCompile(`source_token_change:\s*(-?\d+)`)
	okxDestinationChangeRe = regexp.MustCompile(`destination_token_change:\s*(-?\d+)`)
	okxCommissionRe        = regexp.MustCompile(`commission_amount:\s*(-?\d+)`)
)

type okxDecoder struct {
	ctx Context
}

func newOKXDecoder(ctx Context) Decoder {
	return &okxDecoder{ctx: ctx}
}

func (d *okxDecoder) ownsInstruction(data []byte) bool {
	return bytes.HasPrefix(data, okxSwapDisc) ||
		bytes.HasPrefix(data, okxSwap2Disc) ||
		bytes.HasPrefix(data, okxCommissionSplSwap2Disc) ||
		bytes.HasPrefix(data, okxSwap3Disc)
}

// Trades parses the aggregate input/output amounts from log lines
// ("Program log: source_token_change: N" / "destination_token_change: N" /
// "commission_amount: N"), ported verbatim from parseOKXAggregateFromLogs,
// reading them from the metadata's log messages. Mints and decimals come
// from the first and last transfer legs grouped under the OKX program id,
// and those legs' raw amounts are used whenever the logs carry no
// aggregate.
func (d *okxDecoder) Trades() ([]Trade, error) {
	var isSwap bool
	for _, ix := range d.ctx.Instructions {
		if d.ownsInstruction(ix.Data) {
			isSwap = true
			break
		}
	}
	if !isSwap {
		return nil, nil
	}

	legs := d.ctx.Transfers[d.ctx.Info.ProgramID]
	if len(legs) < 2 {
		return nil, nil
	}
	first, last := legs[0], legs[len(legs)-1]
	if first.Mint.Equals(last.Mint) {
		return nil, nil
	}
	trade := Trade{
		Kind:        TradeSwap,
		InputToken:  TokenInfo{Mint: first.Mint, Decimals: first.Amount.Decimals, Amount: tokenAmountFromXfer(first.Amount)},
		OutputToken: TokenInfo{Mint: last.Mint, Decimals: last.Amount.Decimals, Amount: tokenAmountFromXfer(last.Amount)},
		ProgramID:   d.ctx.Info.ProgramID,
		AMM:         "okx",
		Idx:         last.Idx,
		Timestamp:   last.Timestamp,
		Signature:   last.Signature,
	}

	// Log-derived amounts are the aggregator's own accounting and take
	// precedence over the first/last transfer legs' amounts when available.
	if src, dst, _, ok := parseOKXAggregateFromLogs(d.ctx.View.Meta().LogMessages()); ok {
		if src < 0 {
			src = -src
		}
		if dst < 0 {
			dst = -dst
		}
		trade.InputToken.Amount = tokenAmount(uint64(src), first.Amount.Decimals)
		trade.OutputToken.Amount = tokenAmount(uint64(dst), last.Amount.Decimals)
	}

	return []Trade{trade}, nil
}

// parseOKXAggregateFromLogs extracts the aggregate swap amounts from a
// transaction's log messages (meta.Meta.LogMessages); ok is false when no
// source/destination change line is present. Kept as a standalone function, ported from the teacher,
// rather than a method, since it operates on raw log lines rather than
// Context.
func parseOKXAggregateFromLogs(logs []string) (sourceChange, destChange, commission int64, ok bool) {
	for _, line := range logs {
		if m := okxSourceChangeRe.FindStringSubmatch(line); m != nil {
			sourceChange, _ = strconv.ParseInt(m[1], 10, 64)
			ok = true
		}
		if m := okxDestinationChangeRe.FindStringSubmatch(line); m != nil {
			destChange, _ = strconv.ParseInt(m[1], 10, 64)
			ok = true
		}
		if m := okxCommissionRe.FindStringSubmatch(line); m != nil {
			commission, _ = strconv.ParseInt(m[1], 10, 64)
		}
	}
	return
}
