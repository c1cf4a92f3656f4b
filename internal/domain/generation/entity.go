package generation

import (
	"encoding/json"
	"time"
)

// ResponseID tipe untuk GenerationResponse
type ResponseID string

// Response is one generation attempt for a cluster. Version is unique per
// cluster and strictly increasing; rows are never mutated after insert.
type Response struct {
	ID                   ResponseID      `json:"response_id"`
	ClusterID            string          `json:"cluster_id"`
	Version              int             `json:"version"`
	ModelName            string          `json:"model_name"`
	Prompt               string          `json:"prompt"`
	GeneratedContent     json.RawMessage `json:"generated_content"`
	HeroImagePrompt      string          `json:"hero_image_prompt"`
	MainImagePrompt      string          `json:"main_image_prompt"`
	ThumbnailImagePrompt string          `json:"thumbnail_image_prompt"`
	CreatedAt            time.Time       `json:"created_at"`
}

// PostMetadata is the metadata block the model must return alongside the
// post body.
type PostMetadata struct {
	HeroImagePrompt      string   `json:"hero_image_prompt"`
	MainImagePrompt      string   `json:"main_image_prompt"`
	ThumbnailImagePrompt string   `json:"thumbnail_image_prompt"`
	Keywords             []string `json:"keywords"`
}

// GeneratedPost is the JSON payload the model is required to produce.
// Content is markdown; it is rendered to HTML before the blog post row is
// created.
type GeneratedPost struct {
	Title                string       `json:"title"`
	Slug                 string       `json:"slug"`
	Status               string       `json:"status"`
	Content              string       `json:"content"`
	MetaDescription      string       `json:"meta_description"`
	Author               string       `json:"author"`
	ClusterID            string       `json:"cluster_id"`
	AnalysisID           string       `json:"analysis_id"`
	IsCurated            bool         `json:"is_curated"`
	HeroImage            string       `json:"hero_image,omitempty"`
	MainImage            string       `json:"main_image,omitempty"`
	Thumb                string       `json:"thumb,omitempty"`
	HeroImagePrompt      string       `json:"hero_image_prompt"`
	MainImagePrompt      string       `json:"main_image_prompt"`
	ThumbnailImagePrompt string       `json:"thumbnail_image_prompt"`
	Metadata             PostMetadata `json:"metadata"`
}

// Failure is a persisted record of a failed generation attempt, kept for
// admin troubleshooting.
type Failure struct {
	ID        int64     `json:"id"`
	ClusterID string    `json:"cluster_id"`
	Stage     string    `json:"stage"` // cluster | analysis | bills | generate | parse | save | images | publish
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}
