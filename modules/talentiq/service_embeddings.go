package talentiq

import (
	"context"
	"errors"

	"github.com/guarzo/talentiq/common/model"
)

// This file maps the resume vector-search endpoints.

// ErrEmptyText is returned when an embeddings call is given no text to embed.
var ErrEmptyText = errors.New("text must not be empty")

// GenerateEmbedding calls POST /api/v1/embeddings/generate-embedding.
func (s *service) GenerateEmbedding(ctx context.Context, text string) (*model.EmbeddingResponse, error) {
	if text == "" {
		return nil, ErrEmptyText
	}
	var out model.EmbeddingResponse
	if err := s.client.PostJSON(ctx, PathEmbeddingsGenerate, model.EmbeddingRequest{Text: text}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SearchResumes calls POST /api/v1/embeddings/search-resumes. A zero NResults
// leaves the limit to the server.
func (s *service) SearchResumes(ctx context.Context, req model.SearchRequest) (*model.SearchResponse, error) {
	if req.QueryText == "" {
		return nil, ErrEmptyText
	}
	var out model.SearchResponse
	if err := s.client.PostJSON(ctx, PathEmbeddingsSearch, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AddResume calls POST /api/v1/embeddings/add-resume.
func (s *service) AddResume(ctx context.Context, req model.AddResumeRequest) (*model.AddResumeResponse, error) {
	if req.ResumeID == "" {
		return nil, ErrEmptyID
	}
	if req.ResumeText == "" {
		return nil, ErrEmptyText
	}
	var out model.AddResumeResponse
	if err := s.client.PostJSON(ctx, PathEmbeddingsAddResume, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CollectionStats calls GET /api/v1/embeddings/collection-stats.
func (s *service) CollectionStats(ctx context.Context) (*model.CollectionStats, error) {
	var out model.CollectionStatsResponse
	if err := s.client.GetJSON(ctx, PathEmbeddingsStats, &out); err != nil {
		return nil, err
	}
	return &out.Stats, nil
}

// ModelInfo calls GET /api/v1/embeddings/model-info.
func (s *service) ModelInfo(ctx context.Context) (*model.ModelInfo, error) {
	var out model.ModelInfoResponse
	if err := s.client.GetJSON(ctx, PathEmbeddingsModelInfo, &out); err != nil {
		return nil, err
	}
	return &out.ModelInfo, nil
}
