package mockapi

import (
	"encoding/json"
	"hash/fnv"
	"math"
	"net/http"
	"sort"
	"strings"

	"github.com/guarzo/talentiq/common/model"
)

const (
	embeddingDim     = 384
	embeddingPreview = 10
	embeddingModel   = "all-MiniLM-L6-v2"
)

type indexedResume struct {
	id       string
	text     string
	vector   []float64
	metadata map[string]interface{}
}

// embed is a stand-in for the sentence model: hashed bag of words, L2 normalised.
// Texts sharing words land close together, which is all search needs here.
func embed(text string) []float64 {
	v := make([]float64, embeddingDim)
	for _, word := range strings.Fields(strings.ToLower(text)) {
		h := fnv.New32a()
		_, _ = h.Write([]byte(strings.Trim(word, ".,;:!?\"'()")))
		v[h.Sum32()%embeddingDim]++
	}
	var norm float64
	for _, x := range v {
		norm += x * x
	}
	if norm > 0 {
		norm = math.Sqrt(norm)
		for i := range v {
			v[i] /= norm
		}
	}
	return v
}

func squaredL2(a, b []float64) float64 {
	var d float64
	for i := range a {
		diff := a[i] - b[i]
		d += diff * diff
	}
	return d
}

func (s *Server) generateEmbedding(w http.ResponseWriter, r *http.Request) {
	var req model.EmbeddingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Text) == "" {
		writeDetail(w, http.StatusBadRequest, "Failed to generate embedding")
		return
	}
	v := embed(req.Text)
	writeJSON(w, http.StatusOK, model.EmbeddingResponse{
		Status:             "success",
		EmbeddingDimension: len(v),
		Embedding:          v[:embeddingPreview],
	})
}

func (s *Server) searchResumes(w http.ResponseWriter, r *http.Request) {
	var req model.SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.QueryText) == "" {
		writeDetail(w, http.StatusBadRequest, "Failed to generate query embedding")
		return
	}
	n := req.NResults
	if n <= 0 {
		n = model.DefaultSearchResults
	}
	q := embed(req.QueryText)

	type hit struct {
		res  *indexedResume
		dist float64
	}
	s.mu.Lock()
	hits := make([]hit, 0, len(s.resumes))
	for _, res := range s.resumes {
		hits = append(hits, hit{res, squaredL2(q, res.vector)})
	}
	s.mu.Unlock()

	sort.SliceStable(hits, func(i, k int) bool { return hits[i].dist < hits[k].dist })
	if len(hits) > n {
		hits = hits[:n]
	}

	results := model.SearchResults{IDs: []string{}, Documents: []string{}, Distances: []float64{}}
	for _, h := range hits {
		results.IDs = append(results.IDs, h.res.id)
		results.Documents = append(results.Documents, h.res.text)
		results.Distances = append(results.Distances, h.dist)
	}
	writeJSON(w, http.StatusOK, model.SearchResponse{
		Status:       "success",
		Query:        req.QueryText,
		ResultsCount: len(results.IDs),
		Results:      results,
	})
}

func (s *Server) addResume(w http.ResponseWriter, r *http.Request) {
	var req model.AddResumeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ResumeID == "" || strings.TrimSpace(req.ResumeText) == "" {
		writeDetail(w, http.StatusBadRequest, "Failed to generate embedding")
		return
	}
	res := &indexedResume{
		id:       req.ResumeID,
		text:     req.ResumeText,
		vector:   embed(req.ResumeText),
		metadata: req.Metadata,
	}

	s.mu.Lock()
	replaced := false
	for i, existing := range s.resumes {
		if existing.id == res.id {
			s.resumes[i] = res
			replaced = true
			break
		}
	}
	if !replaced {
		s.resumes = append(s.resumes, res)
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, model.AddResumeResponse{
		Status:   "success",
		ResumeID: req.ResumeID,
		Message:  "Resume added successfully",
	})
}

func (s *Server) collectionStats(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	total := len(s.resumes)
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, model.CollectionStatsResponse{
		Status: "success",
		Stats: model.CollectionStats{
			TotalItems: total,
			Dimension:  embeddingDim,
			IndexType:  "IndexFlatL2",
		},
	})
}

func (s *Server) modelInfo(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, model.ModelInfoResponse{
		Status: "success",
		ModelInfo: model.ModelInfo{
			ModelName:          embeddingModel,
			EmbeddingDimension: embeddingDim,
			ModelSize:          "small",
			Description:        "Fast and efficient embedding model",
		},
	})
}
