package httpserver

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	appblog "github.com/legisequity/bloggen/internal/application/blog"
	appcluster "github.com/legisequity/bloggen/internal/application/cluster"
	appgen "github.com/legisequity/bloggen/internal/application/generation"
	domai "github.com/legisequity/bloggen/internal/domain/ai"
	domblog "github.com/legisequity/bloggen/internal/domain/blog"
	domcluster "github.com/legisequity/bloggen/internal/domain/cluster"
	"github.com/legisequity/bloggen/internal/middleware"
)

type Router struct {
	clustersSvc *appcluster.Service
	blogSvc     *appblog.Service
	genSvc      *appgen.Service
	log         zerolog.Logger
}

// NewRouter builds the public and admin route trees. adminAuth wraps the
// admin subtree with API-key authentication; public blog reads stay open.
func NewRouter(
	clustersSvc *appcluster.Service,
	blogSvc *appblog.Service,
	genSvc *appgen.Service,
	adminAuth func(http.Handler) http.Handler,
	log zerolog.Logger,
) http.Handler {
	r := &Router{clustersSvc: clustersSvc, blogSvc: blogSvc, genSvc: genSvc, log: log}
	mux := chi.NewRouter()

	mux.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.Get("/metrics", middleware.MetricsHandler)

	mux.Route("/v1/blog", func(rt chi.Router) {
		rt.Get("/posts", r.wrap(r.handlePublicFeed))
		rt.Get("/posts/{slug}", r.wrap(r.handlePublicPost))
	})

	mux.Route("/v1/admin", func(rt chi.Router) {
		rt.Use(adminAuth)
		rt.Use(middleware.RequireAdmin)

		rt.Get("/clusters", r.wrap(r.handleListClusters))
		rt.Get("/clusters/{clusterID}", r.wrap(r.handleGetCluster))
		rt.Get("/clusters/{clusterID}/analysis", r.wrap(r.handleClusterAnalysis))
		rt.Get("/clusters/{clusterID}/bills", r.wrap(r.handleClusterBills))
		rt.Get("/clusters/{clusterID}/generations", r.wrap(r.handleClusterGenerations))
		rt.Get("/clusters/{clusterID}/failures", r.wrap(r.handleClusterFailures))
		rt.Get("/clusters/{clusterID}/generate", r.handleGenerate)

		rt.Get("/posts", r.wrap(r.handleListPosts))
		rt.Post("/posts", r.wrap(r.handleCreatePost))
		rt.Get("/posts/{postID}", r.wrap(r.handleGetPost))
		rt.Put("/posts/{postID}", r.wrap(r.handleUpdatePost))
		rt.Patch("/posts", r.wrap(r.handleBatchUpdatePosts))
		rt.Delete("/posts/{postID}", r.wrap(r.handleDeletePost))
	})

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if err := h(w, req); err != nil {
			switch {
			case errors.Is(err, sql.ErrNoRows),
				errors.Is(err, domblog.ErrNotFound),
				errors.Is(err, domcluster.ErrNotFound),
				errors.Is(err, domcluster.ErrAnalysisNotFound):
				http.Error(w, "not found", http.StatusNotFound)
			case errors.Is(err, domblog.ErrSlugTaken):
				http.Error(w, "slug already in use", http.StatusConflict)
			case errors.Is(err, domblog.ErrInvalid):
				http.Error(w, err.Error(), http.StatusBadRequest)
			case errors.Is(err, domai.ErrQuotaExceeded):
				http.Error(w, "ai quota exceeded", http.StatusTooManyRequests)
			default:
				r.log.Error().Err(err).Str("path", req.URL.Path).Msg("handler error")
				http.Error(w, err.Error(), http.StatusInternalServerError)
			}
		}
	}
}

func writeJSON(w http.ResponseWriter, v interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(v)
}

// GET /v1/blog/posts?page=&page_size=
func (r *Router) handlePublicFeed(w http.ResponseWriter, req *http.Request) error {
	page, _ := strconv.Atoi(req.URL.Query().Get("page"))
	size, _ := strconv.Atoi(req.URL.Query().Get("page_size"))

	res, err := r.blogSvc.ListPublished(req.Context(), middleware.ValidatePage(page), middleware.ValidatePageSize(size))
	if err != nil {
		return err
	}
	return writeJSON(w, res)
}

// GET /v1/blog/posts/{slug}
func (r *Router) handlePublicPost(w http.ResponseWriter, req *http.Request) error {
	slug := chi.URLParam(req, "slug")
	if err := middleware.ValidateSlug(slug); err != nil {
		return fmt.Errorf("%w: %s", domblog.ErrInvalid, err.Error())
	}

	post, err := r.blogSvc.GetPublishedBySlug(req.Context(), slug)
	if err != nil {
		return err
	}
	return writeJSON(w, post)
}

// GET /v1/admin/clusters?week=&year=&status=&page=&page_size=
func (r *Router) handleListClusters(w http.ResponseWriter, req *http.Request) error {
	q := req.URL.Query()
	week, _ := strconv.Atoi(q.Get("week"))
	year, _ := strconv.Atoi(q.Get("year"))
	page, _ := strconv.Atoi(q.Get("page"))
	size, _ := strconv.Atoi(q.Get("page_size"))

	res, err := r.clustersSvc.List(req.Context(), domcluster.ListFilter{
		Week:     week,
		Year:     year,
		Status:   domcluster.AnalysisStatus(q.Get("status")),
		Page:     middleware.ValidatePage(page),
		PageSize: middleware.ValidatePageSize(size),
	})
	if err != nil {
		return err
	}
	return writeJSON(w, res)
}

// GET /v1/admin/clusters/{clusterID}
func (r *Router) handleGetCluster(w http.ResponseWriter, req *http.Request) error {
	id, err := r.clusterID(req)
	if err != nil {
		return err
	}
	cl, err := r.clustersSvc.Get(req.Context(), id)
	if err != nil {
		return err
	}
	return writeJSON(w, cl)
}

// GET /v1/admin/clusters/{clusterID}/analysis
func (r *Router) handleClusterAnalysis(w http.ResponseWriter, req *http.Request) error {
	id, err := r.clusterID(req)
	if err != nil {
		return err
	}
	an, err := r.clustersSvc.LatestAnalysis(req.Context(), id)
	if err != nil {
		return err
	}
	return writeJSON(w, an)
}

// GET /v1/admin/clusters/{clusterID}/bills
func (r *Router) handleClusterBills(w http.ResponseWriter, req *http.Request) error {
	id, err := r.clusterID(req)
	if err != nil {
		return err
	}
	bills, err := r.clustersSvc.Bills(req.Context(), id)
	if err != nil {
		return err
	}
	return writeJSON(w, bills)
}

// GET /v1/admin/clusters/{clusterID}/generations
func (r *Router) handleClusterGenerations(w http.ResponseWriter, req *http.Request) error {
	id, err := r.clusterID(req)
	if err != nil {
		return err
	}
	versions, err := r.clustersSvc.ListGenerations(req.Context(), id)
	if err != nil {
		return err
	}
	return writeJSON(w, versions)
}

// GET /v1/admin/clusters/{clusterID}/failures?limit=20
func (r *Router) handleClusterFailures(w http.ResponseWriter, req *http.Request) error {
	id, err := r.clusterID(req)
	if err != nil {
		return err
	}
	limit, _ := strconv.Atoi(req.URL.Query().Get("limit"))
	failures, err := r.clustersSvc.ListFailures(req.Context(), id, limit)
	if err != nil {
		return err
	}
	return writeJSON(w, failures)
}

// GET /v1/admin/clusters/{clusterID}/generate
//
// Streams pipeline progress as server-sent events. The stream stays open
// until the pipeline finishes or fails; both outcomes end with a terminal
// event rather than an HTTP error.
func (r *Router) handleGenerate(w http.ResponseWriter, req *http.Request) {
	if !r.genSvc.Configured() {
		http.Error(w, "LLM configuration is missing", http.StatusInternalServerError)
		return
	}

	clusterID := chi.URLParam(req, "clusterID")
	if err := middleware.ValidateUUID(clusterID); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	emit := sseEmitter(w, flusher)
	_, _ = r.genSvc.Generate(req.Context(), clusterID, emit)
}

// GET /v1/admin/posts?status=&search=&page=&page_size=
func (r *Router) handleListPosts(w http.ResponseWriter, req *http.Request) error {
	q := req.URL.Query()
	if err := middleware.ValidateStatus(q.Get("status")); err != nil {
		return fmt.Errorf("%w: %s", domblog.ErrInvalid, err.Error())
	}
	page, _ := strconv.Atoi(q.Get("page"))
	size, _ := strconv.Atoi(q.Get("page_size"))

	res, err := r.blogSvc.List(req.Context(), domblog.ListFilter{
		Status:   domblog.Status(q.Get("status")),
		Search:   middleware.SanitizeString(q.Get("search")),
		Page:     middleware.ValidatePage(page),
		PageSize: middleware.ValidatePageSize(size),
	})
	if err != nil {
		return err
	}
	return writeJSON(w, res)
}

type postBody struct {
	Title       string `json:"title"`
	Slug        string `json:"slug"`
	Content     string `json:"content"`
	Status      string `json:"status"`
	PublishedAt string `json:"published_at"`
	Author      string `json:"author"`
	IsCurated   bool   `json:"is_curated"`
	HeroImage   string `json:"hero_image"`
	MainImage   string `json:"main_image"`
	Thumb       string `json:"thumb"`
}

func (b postBody) apply(p *domblog.Post) error {
	p.Title = b.Title
	p.Slug = b.Slug
	p.Content = b.Content
	p.Status = domblog.Status(b.Status)
	p.Author = b.Author
	p.IsCurated = b.IsCurated
	p.HeroImage = b.HeroImage
	p.MainImage = b.MainImage
	p.Thumb = b.Thumb
	if b.PublishedAt != "" {
		t, err := parseTime(b.PublishedAt)
		if err != nil {
			return fmt.Errorf("%w: invalid published_at", domblog.ErrInvalid)
		}
		p.PublishedAt = &t
	} else {
		p.PublishedAt = nil
	}
	return nil
}

// POST /v1/admin/posts
func (r *Router) handleCreatePost(w http.ResponseWriter, req *http.Request) error {
	var body postBody
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return fmt.Errorf("%w: malformed body", domblog.ErrInvalid)
	}

	var p domblog.Post
	if err := body.apply(&p); err != nil {
		return err
	}

	created, err := r.blogSvc.Create(req.Context(), &p)
	if err != nil {
		return err
	}
	w.WriteHeader(http.StatusCreated)
	return writeJSON(w, created)
}

// GET /v1/admin/posts/{postID}
func (r *Router) handleGetPost(w http.ResponseWriter, req *http.Request) error {
	id, err := r.postID(req)
	if err != nil {
		return err
	}
	post, err := r.blogSvc.Get(req.Context(), id)
	if err != nil {
		return err
	}
	return writeJSON(w, post)
}

// PUT /v1/admin/posts/{postID}
func (r *Router) handleUpdatePost(w http.ResponseWriter, req *http.Request) error {
	id, err := r.postID(req)
	if err != nil {
		return err
	}

	var body postBody
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return fmt.Errorf("%w: malformed body", domblog.ErrInvalid)
	}

	post, err := r.blogSvc.Get(req.Context(), id)
	if err != nil {
		return err
	}
	if err := body.apply(post); err != nil {
		return err
	}

	updated, err := r.blogSvc.Update(req.Context(), post)
	if err != nil {
		return err
	}
	return writeJSON(w, updated)
}

// PATCH /v1/admin/posts
// Body: {"ids": [...], "data": {"status": "...", "is_curated": true}}
func (r *Router) handleBatchUpdatePosts(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		IDs  []string `json:"ids"`
		Data struct {
			Status    *string `json:"status"`
			IsCurated *bool   `json:"is_curated"`
		} `json:"data"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return fmt.Errorf("%w: malformed body", domblog.ErrInvalid)
	}

	ids := make([]domblog.PostID, 0, len(body.IDs))
	for _, id := range body.IDs {
		ids = append(ids, domblog.PostID(id))
	}

	var update domblog.BatchUpdate
	if body.Data.Status != nil {
		st := domblog.Status(*body.Data.Status)
		update.Status = &st
	}
	update.IsCurated = body.Data.IsCurated

	count, err := r.blogSvc.BatchUpdate(req.Context(), ids, update)
	if err != nil {
		return err
	}
	return writeJSON(w, map[string]int64{"updated": count})
}

// DELETE /v1/admin/posts/{postID}
func (r *Router) handleDeletePost(w http.ResponseWriter, req *http.Request) error {
	id, err := r.postID(req)
	if err != nil {
		return err
	}
	if err := r.blogSvc.Delete(req.Context(), id); err != nil {
		return err
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

func (r *Router) clusterID(req *http.Request) (domcluster.ID, error) {
	id := chi.URLParam(req, "clusterID")
	if err := middleware.ValidateUUID(id); err != nil {
		return "", fmt.Errorf("%w: %s", domblog.ErrInvalid, err.Error())
	}
	return domcluster.ID(id), nil
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}

func (r *Router) postID(req *http.Request) (domblog.PostID, error) {
	id := chi.URLParam(req, "postID")
	if err := middleware.ValidateUUID(id); err != nil {
		return "", fmt.Errorf("%w: %s", domblog.ErrInvalid, err.Error())
	}
	return domblog.PostID(id), nil
}
