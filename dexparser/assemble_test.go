package dexparser

import "testing"

func TestDedupAndSortTradesRemovesDuplicateSignatureIdx(t *testing.T) {
	a := Trade{Signature: sig(1), Idx: "2"}
	b := Trade{Signature: sig(1), Idx: "2"} // exact duplicate (same signature+idx)
	c := Trade{Signature: sig(1), Idx: "0"}

	out := dedupAndSortTrades([]Trade{a, b, c})
	if len(out) != 2 {
		t.Fatalf("len(out) = %d, want 2", len(out))
	}
	if out[0].Idx != "0" || out[1].Idx != "2" {
		t.Fatalf("not sorted ascending by idx: %+v", out)
	}
}

func TestDedupAndSortTradesOrdersByOuterThenInner(t *testing.T) {
	trades := []Trade{
		{Signature: sig(1), Idx: "1-2"},
		{Signature: sig(1), Idx: "1-0"},
		{Signature: sig(1), Idx: "0"},
		{Signature: sig(1), Idx: "2"},
	}
	out := dedupAndSortTrades(trades)
	want := []string{"0", "1-0", "1-2", "2"}
	for i, w := range want {
		if out[i].Idx != w {
			t.Fatalf("out[%d].Idx = %s, want %s (full: %v)", i, out[i].Idx, w, idxStrings(out))
		}
	}
}

func TestParseIdxParsesOuterAndInner(t *testing.T) {
	cases := []struct {
		in   string
		want idxKey
	}{
		{"3", idxKey{outer: 3, inner: -1}},
		{"3-1", idxKey{outer: 3, inner: 1}},
		{"0-0", idxKey{outer: 0, inner: 0}},
	}
	for _, c := range cases {
		if got := parseIdx(c.in); got != c.want {
			t.Fatalf("parseIdx(%q) = %+v, want %+v", c.in, got, c.want)
		}
	}
}

func idxStrings(ts []Trade) []string {
	out := make([]string, len(ts))
	for i, t := range ts {
		out[i] = t.Idx
	}
	return out
}
