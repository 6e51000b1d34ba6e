package mockapi

import (
	"encoding/json"
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/guarzo/talentiq/common/model"
)

func (s *Server) listJobs(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	jobs := make([]model.Job, 0, len(s.jobs))
	for _, j := range s.jobs {
		if j.Status == model.JobStatusOpen {
			jobs = append(jobs, model.Job{ID: j.ID, Title: j.Title})
		}
	}
	s.mu.Unlock()

	sort.Slice(jobs, func(i, k int) bool { return jobs[i].Title < jobs[k].Title })
	writeJSON(w, http.StatusOK, model.JobList{Jobs: jobs})
}

func (s *Server) createJob(w http.ResponseWriter, r *http.Request) {
	var in model.JobInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.Title == "" {
		writeDetail(w, http.StatusUnprocessableEntity, "title is required")
		return
	}

	job := &model.Job{ID: uuid.NewString(), CreatedAt: s.opts.Now().UTC()}
	applyJobInput(job, in)
	if job.Status == "" {
		job.Status = model.JobStatusOpen
	}

	s.mu.Lock()
	s.jobs[job.ID] = job
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]string{"id": job.ID, "title": job.Title, "status": "created"})
}

func (s *Server) getJob(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	job, ok := s.jobs[chi.URLParam(r, "id")]
	var out model.Job
	if ok {
		out = *job
	}
	s.mu.Unlock()

	if !ok {
		writeDetail(w, http.StatusNotFound, "Job not found")
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) updateJob(w http.ResponseWriter, r *http.Request) {
	var in model.JobInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "invalid job body")
		return
	}

	s.mu.Lock()
	job, ok := s.jobs[chi.URLParam(r, "id")]
	var out model.Job
	if ok {
		applyJobInput(job, in)
		out = *job
	}
	s.mu.Unlock()

	if !ok {
		writeDetail(w, http.StatusNotFound, "Job not found")
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) deleteJob(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	_, ok := s.jobs[id]
	delete(s.jobs, id)
	s.mu.Unlock()

	if !ok {
		writeDetail(w, http.StatusNotFound, "Job not found")
		return
	}
	writeJSON(w, http.StatusOK, model.MessageResponse{Message: "Job deleted"})
}

func applyJobInput(job *model.Job, in model.JobInput) {
	if in.Title != "" {
		job.Title = in.Title
	}
	if in.JDText != "" {
		job.JDText = in.JDText
	}
	if in.RequiredSkills != nil {
		job.RequiredSkills = in.RequiredSkills
	}
	if in.Location != "" {
		job.Location = in.Location
	}
	if in.SalaryMin != nil {
		job.SalaryMin = in.SalaryMin
	}
	if in.SalaryMax != nil {
		job.SalaryMax = in.SalaryMax
	}
	job.Remote = in.Remote
	if in.Status != "" {
		job.Status = in.Status
	}
}
