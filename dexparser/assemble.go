package dexparser

import (
	"sort"
	"strconv"
	"strings"
)

// idxKey is the parsed numeric (outer, inner) pair encoded in a record's
// formatted Idx ("3" or "3-1"), used to sort trades per spec §4.8.
type idxKey struct {
	outer int
	inner int // -1 when the idx carried no inner component
}

func parseIdx(idx string) idxKey {
	outerStr, innerStr, hasInner := strings.Cut(idx, "-")
	outer, _ := strconv.Atoi(outerStr)
	inner := -1
	if hasInner {
		inner, _ = strconv.Atoi(innerStr)
	}
	return idxKey{outer: outer, inner: inner}
}

func (a idxKey) less(b idxKey) bool {
	if a.outer != b.outer {
		return a.outer < b.outer
	}
	return a.inner < b.inner
}

// dedupAndSortTrades implements spec §4.8: dedup by (signature, idx), then a
// stable sort by the numeric (outer, inner) pair parsed from idx — ported
// from the teacher's adjustOrderBySolDelta dedup/sort pass in
// ProcessSwapData, generalized to run once over the full trade list
// regardless of which decoder produced each entry.
func dedupAndSortTrades(trades []Trade) []Trade {
	if len(trades) == 0 {
		return trades
	}
	seen := make(map[string]bool, len(trades))
	out := make([]Trade, 0, len(trades))
	for _, t := range trades {
		key := t.Signature.String() + "|" + t.Idx
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, t)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return parseIdx(out[i].Idx).less(parseIdx(out[j].Idx))
	})
	return out
}
