package generation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/legisequity/bloggen/internal/application"
	"github.com/legisequity/bloggen/internal/domain/ai"
	"github.com/legisequity/bloggen/internal/domain/blog"
	"github.com/legisequity/bloggen/internal/domain/cluster"
	gen "github.com/legisequity/bloggen/internal/domain/generation"
	"github.com/legisequity/bloggen/internal/infra/ai/prompt"
	"github.com/legisequity/bloggen/internal/middleware"
)

// Progress milestones, in stream order.
const (
	pctFetchCluster  = 10
	pctFetchAnalysis = 20
	pctFetchBills    = 30
	pctPrepare       = 40
	pctGenerate      = 50
	pctSave          = 70
	pctPublish       = 90
)

// Options configure one service instance; all values come from config.
type Options struct {
	Model          string
	ThinkStartTag  string
	ThinkEndTag    string
	JSONMode       bool
	MaxTokens      int
	MaxBills       int
	EphemeralHosts []string
}

// Service implements the blog generation pipeline use-case. Safe for
// concurrent use; each Generate call is one independent logical flow.
type Service struct {
	Clusters    cluster.Repository
	Generations gen.Repository
	Failures    gen.FailureRepository
	Posts       blog.Repository
	AI          ai.Client
	Images      gen.ImageStore
	Render      func(markdown string) (string, error)
	Clock       application.Clock
	Log         zerolog.Logger
	Opts        Options
}

// Configured reports whether the LLM side is wired; the handler refuses to
// open a stream otherwise.
func (s *Service) Configured() bool {
	return s.AI != nil && s.Opts.Model != ""
}

// Generate runs the whole pipeline for one cluster, emitting ordered events.
// Any failure is terminal for the attempt: it is recorded, surfaced as a
// single error event, and returned. Rows persisted before the failing stage
// are deliberately left in place.
func (s *Service) Generate(ctx context.Context, clusterID string, emit gen.Emitter) (blog.PostID, error) {
	middleware.IncrementGenerations()
	middleware.IncrementGenerationsRunning()
	defer middleware.DecrementGenerationsRunning()

	postID, stage, err := s.run(ctx, clusterID, emit)
	if err != nil {
		middleware.IncrementGenerationsFailed()
		s.Log.Error().Err(err).Str("cluster_id", clusterID).Str("stage", stage).Msg("generation failed")
		s.recordFailure(clusterID, stage, err)
		emit(gen.ErrorEvent(err.Error()))
		return "", err
	}

	emit(gen.CompleteEvent(string(postID), "Generation complete!"))
	return postID, nil
}

func (s *Service) run(ctx context.Context, clusterID string, emit gen.Emitter) (blog.PostID, string, error) {
	emit(gen.ProgressEvent(pctFetchCluster, "Fetching cluster data..."))
	cl, err := s.Clusters.Get(ctx, cluster.ID(clusterID))
	if err != nil {
		return "", "cluster", fmt.Errorf("failed to fetch cluster data: %w", err)
	}

	emit(gen.ProgressEvent(pctFetchAnalysis, "Fetching cluster analysis..."))
	an, err := s.Clusters.LatestAnalysis(ctx, cluster.ID(clusterID))
	if err != nil {
		return "", "analysis", fmt.Errorf("failed to fetch cluster analysis: %w", err)
	}
	if an.Status != cluster.AnalysisCompleted {
		return "", "analysis", cluster.ErrAnalysisIncomplete
	}

	emit(gen.ProgressEvent(pctFetchBills, "Fetching cluster bills..."))
	bills, err := s.Clusters.Bills(ctx, cluster.ID(clusterID))
	if err != nil {
		return "", "bills", fmt.Errorf("failed to fetch cluster bills: %w", err)
	}

	maxBills := s.Opts.MaxBills
	if maxBills <= 0 {
		maxBills = cluster.DefaultSampleSize
	}
	sampled := cluster.SampleBills(bills, maxBills)

	emit(gen.ProgressEvent(pctPrepare, "Preparing generation..."))
	user, err := prompt.BuildUserMessage(cl, an, sampled)
	if err != nil {
		return "", "prepare", err
	}

	emit(gen.ProgressEvent(pctGenerate, "Generating blog post content..."))
	raw, err := s.stream(ctx, user, emit)
	if err != nil {
		return "", "generate", err
	}

	var post gen.GeneratedPost
	if err := json.Unmarshal([]byte(raw), &post); err != nil {
		return "", "parse", gen.ErrInvalidContent
	}

	emit(gen.ProgressEvent(pctSave, "Saving generation response..."))
	resp := &gen.Response{
		ID:                   gen.ResponseID(uuid.New().String()),
		ClusterID:            clusterID,
		ModelName:            s.Opts.Model,
		Prompt:               prompt.BlogSystemPrompt,
		GeneratedContent:     json.RawMessage(raw),
		HeroImagePrompt:      post.Metadata.HeroImagePrompt,
		MainImagePrompt:      post.Metadata.MainImagePrompt,
		ThumbnailImagePrompt: post.Metadata.ThumbnailImagePrompt,
		CreatedAt:            s.Clock.Now(),
	}
	if err := s.Generations.Save(ctx, resp); err != nil {
		return "", "save", err
	}

	if err := s.rehostImages(ctx, &post); err != nil {
		return "", "images", err
	}

	emit(gen.ProgressEvent(pctPublish, "Creating blog post..."))
	bp, err := s.createPost(ctx, clusterID, an.ID, &post)
	if err != nil {
		return "", "publish", err
	}

	return bp.ID, "", nil
}

// stream drives the provider stream through the thinking-tag consumer and
// returns the final payload text.
func (s *Service) stream(ctx context.Context, user string, emit gen.Emitter) (string, error) {
	st, err := s.AI.StreamCompletion(ctx, ai.CompletionRequest{
		System:    prompt.BlogSystemPrompt,
		User:      user,
		JSONMode:  s.Opts.JSONMode,
		MaxTokens: s.Opts.MaxTokens,
	})
	if err != nil {
		return "", err
	}
	defer st.Close()

	consumer := NewStreamConsumer(s.Opts.ThinkStartTag, s.Opts.ThinkEndTag, emit)
	for {
		delta, err := st.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", err
		}
		consumer.Feed(delta)
	}
	return consumer.Final(), nil
}

func (s *Service) createPost(ctx context.Context, clusterID, analysisID string, p *gen.GeneratedPost) (*blog.Post, error) {
	html, err := s.Render(p.Content)
	if err != nil {
		return nil, err
	}

	status := blog.Status(p.Status)
	if !status.Valid() {
		status = blog.StatusDraft
	}

	now := s.Clock.Now()
	var publishedAt *time.Time
	if status == blog.StatusPublished {
		publishedAt = &now
	}
	bp := &blog.Post{
		ID:          blog.PostID(uuid.New().String()),
		Title:       p.Title,
		Slug:        p.Slug,
		Content:     html,
		Status:      status,
		PublishedAt: publishedAt,
		Author:      p.Author,
		IsCurated:   p.IsCurated,
		HeroImage:   p.HeroImage,
		MainImage:   p.MainImage,
		Thumb:       p.Thumb,
		ClusterID:   clusterID,
		AnalysisID:  analysisID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := bp.Validate(); err != nil {
		return nil, err
	}
	if err := s.Posts.Create(ctx, bp); err != nil {
		return nil, err
	}
	return bp, nil
}

// rehostImages moves images the model left on an ephemeral host into
// permanent storage and rewrites the URLs in place. Skipped entirely when
// no image store is wired.
func (s *Service) rehostImages(ctx context.Context, p *gen.GeneratedPost) error {
	if s.Images == nil {
		return nil
	}
	images := map[string]*string{
		"hero":  &p.HeroImage,
		"main":  &p.MainImage,
		"thumb": &p.Thumb,
	}
	for name, u := range images {
		if *u == "" || !s.ephemeral(*u) {
			continue
		}
		key := fmt.Sprintf("blog/%s/%s", p.Slug, name)
		hosted, err := s.Images.UploadFromURL(ctx, *u, key)
		if err != nil {
			return fmt.Errorf("failed to upload %s image: %w", name, err)
		}
		*u = hosted
	}
	return nil
}

func (s *Service) ephemeral(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Hostname())
	for _, h := range s.Opts.EphemeralHosts {
		if host == h || strings.HasSuffix(host, "."+h) {
			return true
		}
	}
	return false
}

// recordFailure best-effort; a failed audit write must not mask the
// original error.
func (s *Service) recordFailure(clusterID, stage string, cause error) {
	if s.Failures == nil {
		return
	}
	f := &gen.Failure{
		ClusterID: clusterID,
		Stage:     stage,
		Message:   cause.Error(),
		CreatedAt: s.Clock.Now(),
	}
	if err := s.Failures.Save(context.Background(), f); err != nil {
		s.Log.Warn().Err(err).Str("cluster_id", clusterID).Msg("could not record generation failure")
	}
}
