package cluster

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeBills(confidences ...float64) []Bill {
	bills := make([]Bill, len(confidences))
	for i, c := range confidences {
		bills[i] = Bill{
			BillID:               int64(i + 1),
			BillNumber:           "HB1",
			MembershipConfidence: c,
		}
	}
	return bills
}

func TestSampleBillsUnderLimit(t *testing.T) {
	bills := makeBills(0.2, 0.9, 0.5)

	got := SampleBills(bills, 100)

	require.Len(t, got, 3)
	assert.Equal(t, 0.9, got[0].MembershipConfidence)
	assert.Equal(t, 0.5, got[1].MembershipConfidence)
	assert.Equal(t, 0.2, got[2].MembershipConfidence)
}

func TestSampleBillsOverLimit(t *testing.T) {
	bills := makeBills(0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1.0)

	got := SampleBills(bills, 4)

	require.Len(t, got, 4)
	// Whatever subset survived, it comes back sorted by confidence.
	for i := 1; i < len(got); i++ {
		assert.GreaterOrEqual(t, got[i-1].MembershipConfidence, got[i].MembershipConfidence)
	}
	// Every sampled bill originates from the input.
	seen := make(map[int64]bool, len(bills))
	for _, b := range bills {
		seen[b.BillID] = true
	}
	for _, b := range got {
		assert.True(t, seen[b.BillID])
	}
}

func TestSampleBillsDoesNotMutateInput(t *testing.T) {
	bills := makeBills(0.1, 0.9, 0.5)

	_ = SampleBills(bills, 2)

	assert.Equal(t, 0.1, bills[0].MembershipConfidence)
	assert.Equal(t, 0.9, bills[1].MembershipConfidence)
	assert.Equal(t, 0.5, bills[2].MembershipConfidence)
}

func TestSampleBillsEmpty(t *testing.T) {
	got := SampleBills(nil, 100)
	assert.Empty(t, got)
}
