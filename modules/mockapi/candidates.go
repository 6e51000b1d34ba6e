package mockapi

import (
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/guarzo/talentiq/common/model"
)

const maxResumeBytes = 10 << 20

func (s *Server) profile(w http.ResponseWriter, r *http.Request) {
	u, err := currentUser(r)
	if err != nil {
		writeDetail(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	writeJSON(w, http.StatusOK, model.Profile{
		"name":   u.Name,
		"email":  u.Email,
		"skills": []string{},
	})
}

func (s *Server) recommendations(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	ids := make([]string, 0, len(s.jobs))
	for id, j := range s.jobs {
		if j.Status == model.JobStatusOpen {
			ids = append(ids, id)
		}
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, model.Recommendations{
		"message": "Recommendations - Week 2",
		"jobs":    ids,
	})
}

func (s *Server) uploadResume(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxResumeBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		writeDetail(w, http.StatusBadRequest, fmt.Sprintf("Upload failed: %v", err))
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if !model.AllowedResumeTypes[contentType] {
		writeDetail(w, http.StatusBadRequest, "File type not supported. Allowed: PDF, DOC, DOCX, TXT, JPG, PNG")
		return
	}

	size, err := io.Copy(io.Discard, file)
	if err != nil {
		writeDetail(w, http.StatusBadRequest, fmt.Sprintf("Upload failed: %v", err))
		return
	}

	u, _ := currentUser(r)
	publicID := fmt.Sprintf("talentiq-resumes/%s/%s", u.ID, uuid.NewString())
	writeJSON(w, http.StatusOK, model.ResumeUpload{
		Status:   "success",
		URL:      "https://files.talentiq.local/" + publicID,
		PublicID: publicID,
		Size:     size,
		Format:   strings.TrimPrefix(strings.ToLower(filepath.Ext(header.Filename)), "."),
	})
}
