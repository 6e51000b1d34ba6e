package talentiq

import (
	"context"
	"errors"
	"net/url"

	"github.com/guarzo/talentiq/common/model"
)

// ErrEmptyID is returned by calls that address a resource by id when id is blank.
var ErrEmptyID = errors.New("id must not be empty")

// ListJobs calls GET /api/v1/jobs.
func (s *service) ListJobs(ctx context.Context) ([]model.Job, error) {
	var out model.JobList
	if err := s.client.GetJSON(ctx, PathJobs, &out); err != nil {
		return nil, err
	}
	return out.Jobs, nil
}

// GetJob calls GET /api/v1/jobs/{id}.
func (s *service) GetJob(ctx context.Context, id string) (*model.Job, error) {
	endpoint, err := jobPath(id)
	if err != nil {
		return nil, err
	}
	var job model.Job
	if err := s.client.GetJSON(ctx, endpoint, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

// CreateJob calls POST /api/v1/jobs.
func (s *service) CreateJob(ctx context.Context, in model.JobInput) (*model.Job, error) {
	var job model.Job
	if err := s.client.PostJSON(ctx, PathJobs, in, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

// UpdateJob calls PUT /api/v1/jobs/{id}.
func (s *service) UpdateJob(ctx context.Context, id string, in model.JobInput) (*model.Job, error) {
	endpoint, err := jobPath(id)
	if err != nil {
		return nil, err
	}
	var job model.Job
	if err := s.client.PutJSON(ctx, endpoint, in, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

// DeleteJob calls DELETE /api/v1/jobs/{id}.
func (s *service) DeleteJob(ctx context.Context, id string) error {
	endpoint, err := jobPath(id)
	if err != nil {
		return err
	}
	return s.client.DeleteJSON(ctx, endpoint, nil)
}

func jobPath(id string) (string, error) {
	if id == "" {
		return "", ErrEmptyID
	}
	return PathJobs + "/" + url.PathEscape(id), nil
}
