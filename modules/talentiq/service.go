package talentiq

import (
	"context"
	"io"

	"golang.org/x/oauth2"

	"github.com/guarzo/talentiq/common/model"
)

// API paths, versioned under /api/v1.
const (
	PathHealth                = "/health"
	PathAuthRegister          = "/api/v1/auth/register"
	PathAuthLogin             = "/api/v1/auth/login"
	PathAuthRefresh           = "/api/v1/auth/refresh"
	PathAuthLogout            = "/api/v1/auth/logout"
	PathJobs                  = "/api/v1/jobs"
	PathCandidateProfile      = "/api/v1/candidates/profile"
	PathCandidateUploadResume = "/api/v1/candidates/upload-resume"
	PathCandidateRecommend    = "/api/v1/candidates/recommendations"
	PathEmbeddingsGenerate    = "/api/v1/embeddings/generate-embedding"
	PathEmbeddingsSearch      = "/api/v1/embeddings/search-resumes"
	PathEmbeddingsAddResume   = "/api/v1/embeddings/add-resume"
	PathEmbeddingsStats       = "/api/v1/embeddings/collection-stats"
	PathEmbeddingsModelInfo   = "/api/v1/embeddings/model-info"
)

// Service is the resource-oriented API: one method per backend operation.
type Service interface {
	// Auth
	Register(ctx context.Context, req model.RegisterRequest) (*model.AuthResponse, error)
	Login(ctx context.Context, req model.LoginRequest) (*model.AuthResponse, error)
	Refresh(ctx context.Context) (*oauth2.Token, error)
	Logout(ctx context.Context) error
	// Jobs
	ListJobs(ctx context.Context) ([]model.Job, error)
	GetJob(ctx context.Context, id string) (*model.Job, error)
	CreateJob(ctx context.Context, in model.JobInput) (*model.Job, error)
	UpdateJob(ctx context.Context, id string, in model.JobInput) (*model.Job, error)
	DeleteJob(ctx context.Context, id string) error
	// Candidates
	GetProfile(ctx context.Context) (model.Profile, error)
	UploadResume(ctx context.Context, filename string, content io.Reader) (*model.ResumeUpload, error)
	GetRecommendations(ctx context.Context) (model.Recommendations, error)
	// Embeddings
	GenerateEmbedding(ctx context.Context, text string) (*model.EmbeddingResponse, error)
	SearchResumes(ctx context.Context, req model.SearchRequest) (*model.SearchResponse, error)
	AddResume(ctx context.Context, req model.AddResumeRequest) (*model.AddResumeResponse, error)
	CollectionStats(ctx context.Context) (*model.CollectionStats, error)
	ModelInfo(ctx context.Context) (*model.ModelInfo, error)
	// Health
	Health(ctx context.Context) (*model.HealthResponse, error)
	WaitHealthy(ctx context.Context) (*model.HealthResponse, error)
}

// service is the concrete implementation that uses ApiClient.
type service struct {
	client ApiClient
	auth   refresher
}

// refresher is the subset of common.AuthClient the service needs for explicit refreshes.
type refresher interface {
	RefreshToken(ctx context.Context, refreshToken string) (*oauth2.Token, error)
}

// NewService constructs a Service. auth performs explicit refreshes and should be
// the same AuthClient handed to the ApiClient.
func NewService(client ApiClient, auth refresher) Service {
	return &service{
		client: client,
		auth:   auth,
	}
}

// Health calls GET /health once.
func (s *service) Health(ctx context.Context) (*model.HealthResponse, error) {
	var out model.HealthResponse
	if err := s.client.GetJSON(ctx, PathHealth, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// WaitHealthy polls GET /health with exponential backoff while the API answers 5xx.
func (s *service) WaitHealthy(ctx context.Context) (*model.HealthResponse, error) {
	var out model.HealthResponse
	if err := s.client.GetJSONWithBackoff(ctx, PathHealth, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
