package alloc

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// requireInvariants checks that free ranges are sorted, disjoint, coalesced and
// that free plus allocated blocks tile [base, base+size) exactly once.
func requireInvariants(t *testing.T, a *Allocator) {
	t.Helper()

	free := a.FreeRanges()
	for i, r := range free {
		require.NotZero(t, r.Len, "free range %d is empty", i)
		require.GreaterOrEqual(t, r.Addr, a.Base(), "free range %s below base", r)
		require.LessOrEqual(t, r.End(), a.Base()+a.Size(), "free range %s past end", r)
		if i > 0 {
			require.Greater(t, r.Addr, free[i-1].End(),
				"free ranges %s and %s overlap or were not coalesced", free[i-1], r)
		}
	}

	all := append(free, a.Allocated()...)
	sortRanges(all)
	next := a.Base()
	for _, r := range all {
		require.Equal(t, next, r.Addr, "gap or overlap at %s", r)
		next = r.End()
	}
	require.Equal(t, a.Base()+a.Size(), next, "ranges do not cover the allocator")
}

func sortRanges(rs []Range) {
	for i := 1; i < len(rs); i++ {
		for j := i; j > 0 && rs[j].Addr < rs[j-1].Addr; j-- {
			rs[j], rs[j-1] = rs[j-1], rs[j]
		}
	}
}
