package model

import (
	"encoding/json"
	"time"
)

// JSONUnmarshal decodes data into out.
func JSONUnmarshal(data []byte, out interface{}) error {
	return json.Unmarshal(data, out)
}

// ----------------------------------------------------------------------
// Auth
// ----------------------------------------------------------------------

// Roles accepted by /auth/register.
const (
	RoleCandidate = "candidate"
	RoleRecruiter = "recruiter"
	RoleAdmin     = "admin"
)

// User is the session user returned by login/register/refresh.
// The client stores it as an opaque JSON blob.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// RegisterRequest is the body of POST /auth/register.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role,omitempty"`
}

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RefreshRequest is the body of POST /auth/refresh.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// AuthResponse is returned by register, login and refresh.
type AuthResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	User         *User  `json:"user,omitempty"`
}

// MessageResponse is the generic {"message": ...} body.
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse is the backend's {"detail": ...} error body.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status      string `json:"status"`
	Version     string `json:"version"`
	Environment string `json:"environment"`
}

// ----------------------------------------------------------------------
// Jobs
// ----------------------------------------------------------------------

// Job statuses.
const (
	JobStatusOpen   = "open"
	JobStatusClosed = "closed"
	JobStatusDraft  = "draft"
)

// JobInput is the body of create/update job.
type JobInput struct {
	Title          string   `json:"title"`
	JDText         string   `json:"jd_text"`
	RequiredSkills []string `json:"required_skills"`
	Location       string   `json:"location"`
	SalaryMin      *int     `json:"salary_min,omitempty"`
	SalaryMax      *int     `json:"salary_max,omitempty"`
	Remote         bool     `json:"remote"`
	Status         string   `json:"status,omitempty"`
}

// MarshalJSON sends an empty skills list rather than null; the backend
// rejects an explicit null for required_skills.
func (in JobInput) MarshalJSON() ([]byte, error) {
	type plain JobInput
	if in.RequiredSkills == nil {
		in.RequiredSkills = []string{}
	}
	return json.Marshal(plain(in))
}

// Job is a job posting. List responses only fill ID and Title.
type Job struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	JDText         string    `json:"jd_text,omitempty"`
	RequiredSkills []string  `json:"required_skills,omitempty"`
	Location       string    `json:"location,omitempty"`
	SalaryMin      *int      `json:"salary_min,omitempty"`
	SalaryMax      *int      `json:"salary_max,omitempty"`
	Remote         bool      `json:"remote,omitempty"`
	Status         string    `json:"status,omitempty"`
	CreatedAt      time.Time `json:"created_at,omitempty"`
}

// JobList is the body of GET /jobs.
type JobList struct {
	Jobs []Job `json:"jobs"`
}

// ----------------------------------------------------------------------
// Candidates
// ----------------------------------------------------------------------

// ResumeUpload is the body returned by POST /candidates/upload-resume.
type ResumeUpload struct {
	Status   string `json:"status"`
	URL      string `json:"url"`
	PublicID string `json:"public_id"`
	Size     int64  `json:"size"`
	Format   string `json:"format"`
}

// Profile and Recommendations are still loosely shaped server side, so keep them raw.
type (
	Profile         map[string]interface{}
	Recommendations map[string]interface{}
)

// AllowedResumeTypes are the content types the backend accepts for resumes.
var AllowedResumeTypes = map[string]bool{
	"application/pdf":    true,
	"application/msword": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
	"text/plain": true,
	"image/jpeg": true,
	"image/png":  true,
}

// ----------------------------------------------------------------------
// Embeddings
// ----------------------------------------------------------------------

// EmbeddingRequest is the body of POST /embeddings/generate-embedding.
type EmbeddingRequest struct {
	Text string `json:"text"`
}

// EmbeddingResponse previews a generated embedding; Embedding holds only
// the first few components.
type EmbeddingResponse struct {
	Status             string    `json:"status"`
	EmbeddingDimension int       `json:"embedding_dimension"`
	Embedding          []float64 `json:"embedding"`
}

// DefaultSearchResults is what the backend uses when NResults is omitted.
const DefaultSearchResults = 10

// SearchRequest is the body of POST /embeddings/search-resumes.
type SearchRequest struct {
	QueryText string `json:"query_text"`
	NResults  int    `json:"n_results,omitempty"`
}

// SearchResults are parallel slices, one entry per matched resume.
type SearchResults struct {
	IDs       []string  `json:"ids"`
	Documents []string  `json:"documents"`
	Distances []float64 `json:"distances"`
}

// SearchResponse is returned by POST /embeddings/search-resumes.
type SearchResponse struct {
	Status       string        `json:"status"`
	Query        string        `json:"query"`
	ResultsCount int           `json:"results_count"`
	Results      SearchResults `json:"results"`
}

// AddResumeRequest is the body of POST /embeddings/add-resume.
type AddResumeRequest struct {
	ResumeID   string                 `json:"resume_id"`
	ResumeText string                 `json:"resume_text"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
}

// AddResumeResponse is returned by POST /embeddings/add-resume.
type AddResumeResponse struct {
	Status   string `json:"status"`
	ResumeID string `json:"resume_id"`
	Message  string `json:"message"`
}

// CollectionStats describes the resume vector index.
type CollectionStats struct {
	TotalItems int    `json:"total_items"`
	Dimension  int    `json:"dimension,omitempty"`
	IndexType  string `json:"index_type,omitempty"`
}

// CollectionStatsResponse is returned by GET /embeddings/collection-stats.
type CollectionStatsResponse struct {
	Status string          `json:"status"`
	Stats  CollectionStats `json:"stats"`
}

// ModelInfo describes the embedding model.
type ModelInfo struct {
	ModelName          string `json:"model_name"`
	EmbeddingDimension int    `json:"embedding_dimension"`
	ModelSize          string `json:"model_size"`
	Description        string `json:"description"`
}

// ModelInfoResponse is returned by GET /embeddings/model-info.
type ModelInfoResponse struct {
	Status    string    `json:"status"`
	ModelInfo ModelInfo `json:"model_info"`
}
