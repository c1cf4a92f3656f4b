package prompt

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/legisequity/bloggen/internal/domain/cluster"
)

func TestBuildUserMessage(t *testing.T) {
	cl := &cluster.Cluster{ID: "aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee", BillCount: 2}
	an := &cluster.Analysis{
		ID:               "an-1",
		ClusterID:        cl.ID,
		Status:           cluster.AnalysisCompleted,
		ExecutiveSummary: "Tenant protections are expanding",
	}
	bills := []cluster.Bill{
		{BillID: 7, BillNumber: "HB42", Title: "Rent Stabilization Act", MembershipConfidence: 0.9},
	}

	msg, err := BuildUserMessage(cl, an, bills)
	require.NoError(t, err)

	assert.Contains(t, msg, "aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee")
	assert.Contains(t, msg, "Tenant protections are expanding")
	assert.Contains(t, msg, "Rent Stabilization Act")

	var payload struct {
		Cluster      *cluster.Cluster  `json:"cluster"`
		Analysis     *cluster.Analysis `json:"analysis"`
		SampledBills []cluster.Bill    `json:"sampledBills"`
	}
	require.NoError(t, json.Unmarshal([]byte(msg), &payload))
	require.Len(t, payload.SampledBills, 1)
	assert.Equal(t, "HB42", payload.SampledBills[0].BillNumber)
}

func TestBuildUserMessageDeterministic(t *testing.T) {
	cl := &cluster.Cluster{ID: "aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee"}
	an := &cluster.Analysis{ID: "an-1"}

	a, err := BuildUserMessage(cl, an, nil)
	require.NoError(t, err)
	b, err := BuildUserMessage(cl, an, nil)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestBlogSystemPromptContract(t *testing.T) {
	// The model must be told to return the full JSON document shape.
	for _, field := range []string{"title", "slug", "status", "content", "metadata"} {
		assert.Contains(t, BlogSystemPrompt, field)
	}
}
