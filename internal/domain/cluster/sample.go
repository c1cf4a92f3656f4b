package cluster

import (
	"math/rand"
	"sort"
)

// DefaultSampleSize caps how many bills are fed into a generation prompt.
const DefaultSampleSize = 100

// SampleBills returns at most max bills. When the cluster is larger than max
// it draws a uniform random sample, then re-sorts by membership confidence
// descending, so the subsample is random but always presented
// highest-confidence-first. The input slice is not modified.
func SampleBills(bills []Bill, max int) []Bill {
	out := make([]Bill, len(bills))
	copy(out, bills)

	if max > 0 && len(out) > max {
		rand.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
		out = out[:max]
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].MembershipConfidence > out[j].MembershipConfidence
	})
	return out
}
