// Package mockapi is an in-memory fake of the TalentIQ HTTP API for tests and
// local development. Tokens are real HS256 JWTs so expiry behaves like the backend.
package mockapi

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/guarzo/talentiq/common/model"
)

// Defaults mirror the backend settings.
const (
	DefaultAccessTTL  = 24 * time.Hour
	DefaultRefreshTTL = 7 * 24 * time.Hour
	Version           = "0.1.0"
)

// Options configures a Server.
type Options struct {
	Secret      []byte
	AccessTTL   time.Duration
	RefreshTTL  time.Duration
	Environment string
	// Now is the clock used for issuing and checking tokens.
	Now func() time.Time
}

type user struct {
	model.User
	passwordHash []byte
}

// Server holds the fake's state.
type Server struct {
	opts   Options
	router chi.Router

	mu          sync.Mutex
	users       map[string]*user // by email
	jobs        map[string]*model.Job
	revoked     map[string]bool
	resumes     []*indexedResume
	failRefresh bool
	calls       map[string]int
}

// New builds a Server with empty state.
func New(opts Options) *Server {
	if len(opts.Secret) == 0 {
		opts.Secret = []byte("talentiq-mock-secret")
	}
	if opts.AccessTTL == 0 {
		opts.AccessTTL = DefaultAccessTTL
	}
	if opts.RefreshTTL == 0 {
		opts.RefreshTTL = DefaultRefreshTTL
	}
	if opts.Environment == "" {
		opts.Environment = "development"
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	s := &Server{
		opts:    opts,
		users:   make(map[string]*user),
		jobs:    make(map[string]*model.Job),
		revoked: make(map[string]bool),
		calls:   make(map[string]int),
	}
	s.router = s.routes()
	return s
}

// ServeHTTP makes Server an http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(s.countCalls)

	r.Get("/health", s.health)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/register", s.register)
		r.Post("/auth/login", s.login)
		r.Post("/auth/refresh", s.refresh)
		r.Post("/auth/logout", s.logout)

		// the backend serves embeddings without auth
		r.Post("/embeddings/generate-embedding", s.generateEmbedding)
		r.Post("/embeddings/search-resumes", s.searchResumes)
		r.Post("/embeddings/add-resume", s.addResume)
		r.Get("/embeddings/collection-stats", s.collectionStats)
		r.Get("/embeddings/model-info", s.modelInfo)

		r.Group(func(r chi.Router) {
			r.Use(s.requireAccess)

			r.Get("/jobs", s.listJobs)
			r.Post("/jobs", s.createJob)
			r.Get("/jobs/{id}", s.getJob)
			r.Put("/jobs/{id}", s.updateJob)
			r.Delete("/jobs/{id}", s.deleteJob)

			r.Get("/candidates/profile", s.profile)
			r.Post("/candidates/upload-resume", s.uploadResume)
			r.Get("/candidates/recommendations", s.recommendations)
		})
	})
	return r
}

// Revoke makes the server reject accessToken with 401 from now on.
func (s *Server) Revoke(accessToken string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.revoked[accessToken] = true
}

// FailRefresh makes every refresh call answer 401 while set.
func (s *Server) FailRefresh(fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failRefresh = fail
}

// Calls returns how many requests hit method+path.
func (s *Server) Calls(method, path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[method+" "+path]
}

func (s *Server) countCalls(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.calls[r.Method+" "+r.URL.Path]++
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, model.HealthResponse{
		Status:      "healthy",
		Version:     Version,
		Environment: s.opts.Environment,
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, model.ErrorResponse{Detail: detail})
}
