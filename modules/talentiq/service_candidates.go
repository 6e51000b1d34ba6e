package talentiq

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"path/filepath"
	"strings"

	"github.com/guarzo/talentiq/common/model"
)

// This file focuses on candidate endpoints.

// resumeTypes maps the extensions the backend accepts to their content type.
var resumeTypes = map[string]string{
	".pdf":  "application/pdf",
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".txt":  "text/plain",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
}

// GetProfile calls GET /api/v1/candidates/profile.
func (s *service) GetProfile(ctx context.Context) (model.Profile, error) {
	var out model.Profile
	if err := s.client.GetJSON(ctx, PathCandidateProfile, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetRecommendations calls GET /api/v1/candidates/recommendations.
func (s *service) GetRecommendations(ctx context.Context) (model.Recommendations, error) {
	var out model.Recommendations
	if err := s.client.GetJSON(ctx, PathCandidateRecommend, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UploadResume posts content as the single multipart field "file".
// The body is buffered so the request can be replayed after a refresh.
func (s *service) UploadResume(ctx context.Context, filename string, content io.Reader) (*model.ResumeUpload, error) {
	body, contentType, err := resumeForm(filename, content)
	if err != nil {
		return nil, err
	}

	data, err := s.client.Do(ctx, Request{
		Method:      http.MethodPost,
		Endpoint:    PathCandidateUploadResume,
		Body:        body,
		ContentType: contentType,
	})
	if err != nil {
		return nil, err
	}

	var out model.ResumeUpload
	if err := decodeInto(data, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// resumeForm builds the multipart payload and returns it with its Content-Type header.
func resumeForm(filename string, content io.Reader) ([]byte, string, error) {
	br := bufio.NewReader(content)
	partType := ResumeContentType(filename, br)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, escapeQuotes(filepath.Base(filename))))
	h.Set("Content-Type", partType)
	part, err := w.CreatePart(h)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create form part: %w", err)
	}
	if _, err := io.Copy(part, br); err != nil {
		return nil, "", fmt.Errorf("failed to read resume: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to finish form: %w", err)
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}

// ResumeContentType picks the part content type from the file extension, falling
// back to sniffing the first bytes of br.
func ResumeContentType(filename string, br *bufio.Reader) string {
	if ct, ok := resumeTypes[strings.ToLower(filepath.Ext(filename))]; ok {
		return ct
	}
	head, _ := br.Peek(512)
	ct := http.DetectContentType(head)
	if i := strings.Index(ct, ";"); i >= 0 {
		ct = ct[:i]
	}
	return ct
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
