package generation

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/legisequity/bloggen/internal/domain/ai"
	"github.com/legisequity/bloggen/internal/domain/blog"
	"github.com/legisequity/bloggen/internal/domain/cluster"
	gen "github.com/legisequity/bloggen/internal/domain/generation"
)

const testClusterID = "aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee"

type fakeClock struct{ t time.Time }

func (c fakeClock) Now() time.Time { return c.t }

type fakeClusterRepo struct {
	cluster  *cluster.Cluster
	analysis *cluster.Analysis
	bills    []cluster.Bill
	err      error
}

func (r *fakeClusterRepo) Get(ctx context.Context, id cluster.ID) (*cluster.Cluster, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.cluster, nil
}

func (r *fakeClusterRepo) LatestAnalysis(ctx context.Context, id cluster.ID) (*cluster.Analysis, error) {
	return r.analysis, nil
}

func (r *fakeClusterRepo) Bills(ctx context.Context, id cluster.ID) ([]cluster.Bill, error) {
	return r.bills, nil
}

func (r *fakeClusterRepo) Paginate(ctx context.Context, f cluster.ListFilter) (cluster.PaginatedResult, error) {
	return cluster.PaginatedResult{}, nil
}

type fakeGenerationRepo struct {
	saved []*gen.Response
}

func (r *fakeGenerationRepo) Save(ctx context.Context, resp *gen.Response) error {
	resp.Version = len(r.saved) + 1
	r.saved = append(r.saved, resp)
	return nil
}

func (r *fakeGenerationRepo) Versions(ctx context.Context, clusterID string) ([]*gen.Response, error) {
	return r.saved, nil
}

type fakeFailureRepo struct {
	failures []*gen.Failure
}

func (r *fakeFailureRepo) Save(ctx context.Context, f *gen.Failure) error {
	r.failures = append(r.failures, f)
	return nil
}

func (r *fakeFailureRepo) ListByCluster(ctx context.Context, clusterID string, limit int) ([]*gen.Failure, error) {
	return r.failures, nil
}

type fakeBlogRepo struct {
	blog.Repository
	created []*blog.Post
}

func (r *fakeBlogRepo) Create(ctx context.Context, p *blog.Post) error {
	r.created = append(r.created, p)
	return nil
}

type fakeStream struct {
	chunks []string
	pos    int
}

func (s *fakeStream) Recv() (string, error) {
	if s.pos >= len(s.chunks) {
		return "", io.EOF
	}
	chunk := s.chunks[s.pos]
	s.pos++
	return chunk, nil
}

func (s *fakeStream) Close() error { return nil }

type fakeAIClient struct {
	chunks []string
	err    error
}

func (c *fakeAIClient) StreamCompletion(ctx context.Context, req ai.CompletionRequest) (ai.Stream, error) {
	if c.err != nil {
		return nil, c.err
	}
	return &fakeStream{chunks: c.chunks}, nil
}

func newTestService(aiClient ai.Client) (*Service, *fakeGenerationRepo, *fakeFailureRepo, *fakeBlogRepo) {
	gens := &fakeGenerationRepo{}
	failures := &fakeFailureRepo{}
	posts := &fakeBlogRepo{}

	svc := &Service{
		Clusters: &fakeClusterRepo{
			cluster: &cluster.Cluster{ID: testClusterID, BillCount: 2},
			analysis: &cluster.Analysis{
				ID:        "an-1",
				ClusterID: testClusterID,
				Status:    cluster.AnalysisCompleted,
			},
			bills: []cluster.Bill{
				{BillID: 1, Title: "Rent Stabilization Act", MembershipConfidence: 0.91},
				{BillID: 2, Title: "Tenant Protection Act", MembershipConfidence: 0.77},
			},
		},
		Generations: gens,
		Failures:    failures,
		Posts:       posts,
		AI:          aiClient,
		Render:      func(md string) (string, error) { return "<p>" + md + "</p>", nil },
		Clock:       fakeClock{t: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)},
		Log:         zerolog.Nop(),
		Opts: Options{
			Model:         "grok-3",
			ThinkStartTag: "<think>",
			ThinkEndTag:   "</think>",
		},
	}
	return svc, gens, failures, posts
}

const validModelOutput = `{
	"title": "Rent Reform Sweeps Statehouses",
	"slug": "rent-reform-sweeps-statehouses",
	"status": "published",
	"content": "Tenant bills are moving.",
	"author": "LegiEquity Team",
	"metadata": {"hero_image_prompt": "capitol dome at dusk"}
}`

func progressValues(events []gen.Event) []int {
	var out []int
	for _, ev := range events {
		if ev.Type == gen.EventProgress {
			out = append(out, ev.Progress)
		}
	}
	return out
}

func TestGenerateHappyPath(t *testing.T) {
	svc, gens, failures, posts := newTestService(&fakeAIClient{
		chunks: []string{"<think>", "planning the angle", "</think>", validModelOutput},
	})

	var events []gen.Event
	postID, err := svc.Generate(context.Background(), testClusterID, func(ev gen.Event) {
		events = append(events, ev)
	})
	require.NoError(t, err)
	require.NotEmpty(t, postID)

	assert.Equal(t, []int{10, 20, 30, 40, 50, 70, 90}, progressValues(events))

	last := events[len(events)-1]
	assert.Equal(t, gen.EventComplete, last.Type)
	assert.Equal(t, 100, last.Progress)
	assert.Equal(t, string(postID), last.BlogPostID)

	require.Len(t, gens.saved, 1)
	assert.Equal(t, testClusterID, gens.saved[0].ClusterID)
	assert.Equal(t, "capitol dome at dusk", gens.saved[0].HeroImagePrompt)

	require.Len(t, posts.created, 1)
	created := posts.created[0]
	assert.Equal(t, blog.StatusPublished, created.Status)
	require.NotNil(t, created.PublishedAt)
	assert.Equal(t, "<p>Tenant bills are moving.</p>", created.Content)
	assert.Equal(t, "rent-reform-sweeps-statehouses", created.Slug)

	assert.Empty(t, failures.failures)
}

func TestGenerateThinkingEventsForwarded(t *testing.T) {
	svc, _, _, _ := newTestService(&fakeAIClient{
		chunks: []string{"<think>", "step one", "</think>", validModelOutput},
	})

	var thoughts []string
	_, err := svc.Generate(context.Background(), testClusterID, func(ev gen.Event) {
		if ev.Type == gen.EventThinking {
			thoughts = append(thoughts, ev.Thought)
		}
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"step one", "step one"}, thoughts)
}

func TestGenerateInvalidJSON(t *testing.T) {
	svc, gens, failures, posts := newTestService(&fakeAIClient{
		chunks: []string{"this is not json"},
	})

	var events []gen.Event
	_, err := svc.Generate(context.Background(), testClusterID, func(ev gen.Event) {
		events = append(events, ev)
	})
	require.ErrorIs(t, err, gen.ErrInvalidContent)

	var errorEvents int
	for _, ev := range events {
		if ev.Type == gen.EventError {
			errorEvents++
		}
	}
	assert.Equal(t, 1, errorEvents)

	assert.Empty(t, gens.saved)
	assert.Empty(t, posts.created)

	require.Len(t, failures.failures, 1)
	assert.Equal(t, "parse", failures.failures[0].Stage)
}

func TestGenerateClusterNotFound(t *testing.T) {
	svc, _, failures, _ := newTestService(&fakeAIClient{})
	svc.Clusters = &fakeClusterRepo{err: cluster.ErrNotFound}

	var events []gen.Event
	_, err := svc.Generate(context.Background(), testClusterID, func(ev gen.Event) {
		events = append(events, ev)
	})
	require.ErrorIs(t, err, cluster.ErrNotFound)

	last := events[len(events)-1]
	assert.Equal(t, gen.EventError, last.Type)

	require.Len(t, failures.failures, 1)
	assert.Equal(t, "cluster", failures.failures[0].Stage)
}

func TestGenerateIncompleteAnalysis(t *testing.T) {
	svc, gens, _, _ := newTestService(&fakeAIClient{chunks: []string{validModelOutput}})
	repo := svc.Clusters.(*fakeClusterRepo)
	repo.analysis.Status = cluster.AnalysisProcessing

	_, err := svc.Generate(context.Background(), testClusterID, func(gen.Event) {})
	require.ErrorIs(t, err, cluster.ErrAnalysisIncomplete)
	assert.Empty(t, gens.saved)
}

func TestGenerateSequentialVersions(t *testing.T) {
	svc, gens, _, _ := newTestService(&fakeAIClient{
		chunks: []string{validModelOutput},
	})

	for i := 0; i < 3; i++ {
		_, err := svc.Generate(context.Background(), testClusterID, func(gen.Event) {})
		require.NoError(t, err)
	}

	require.Len(t, gens.saved, 3)
	for i, resp := range gens.saved {
		assert.Equal(t, i+1, resp.Version)
	}
}

func TestGenerateUnparseableStatusFallsBackToDraft(t *testing.T) {
	svc, _, _, posts := newTestService(&fakeAIClient{
		chunks: []string{`{
			"title": "T", "slug": "t", "status": "live",
			"content": "c", "author": "a", "metadata": {}
		}`},
	})

	_, err := svc.Generate(context.Background(), testClusterID, func(gen.Event) {})
	require.NoError(t, err)

	require.Len(t, posts.created, 1)
	assert.Equal(t, blog.StatusDraft, posts.created[0].Status)
	assert.Nil(t, posts.created[0].PublishedAt)
}

func TestConfigured(t *testing.T) {
	svc, _, _, _ := newTestService(&fakeAIClient{})
	assert.True(t, svc.Configured())

	svc.AI = nil
	assert.False(t, svc.Configured())

	svc, _, _, _ = newTestService(&fakeAIClient{})
	svc.Opts.Model = ""
	assert.False(t, svc.Configured())
}
