package mockapi

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/guarzo/talentiq/common/model"
)

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var req model.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" || req.Password == "" {
		writeDetail(w, http.StatusUnprocessableEntity, "name, email and password are required")
		return
	}
	if req.Role == "" {
		req.Role = model.RoleCandidate
	}
	email := strings.ToLower(req.Email)

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.MinCost)
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	s.mu.Lock()
	if _, exists := s.users[email]; exists {
		s.mu.Unlock()
		writeDetail(w, http.StatusBadRequest, "Email already registered")
		return
	}
	u := &user{
		User: model.User{
			ID:    uuid.NewString(),
			Name:  req.Name,
			Email: email,
			Role:  req.Role,
		},
		passwordHash: hash,
	}
	s.users[email] = u
	s.mu.Unlock()

	s.respondTokens(w, u.User)
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "email and password are required")
		return
	}

	s.mu.Lock()
	u := s.users[strings.ToLower(req.Email)]
	s.mu.Unlock()

	if u == nil || bcrypt.CompareHashAndPassword(u.passwordHash, []byte(req.Password)) != nil {
		writeDetail(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	s.respondTokens(w, u.User)
}

func (s *Server) refresh(w http.ResponseWriter, r *http.Request) {
	var req model.RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "refresh_token is required")
		return
	}

	s.mu.Lock()
	fail := s.failRefresh
	s.mu.Unlock()
	if fail {
		writeDetail(w, http.StatusUnauthorized, "Invalid refresh token")
		return
	}

	c, err := s.verify(req.RefreshToken)
	if err != nil || c.Type != tokenTypeRefresh {
		writeDetail(w, http.StatusUnauthorized, "Invalid refresh token")
		return
	}

	s.mu.Lock()
	u := s.userByID(c.Subject)
	s.mu.Unlock()
	if u == nil {
		writeDetail(w, http.StatusNotFound, "User not found")
		return
	}
	s.respondTokens(w, u.User)
}

func (s *Server) logout(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, model.MessageResponse{Message: "Logged out successfully"})
}

func (s *Server) respondTokens(w http.ResponseWriter, u model.User) {
	resp, err := s.IssueTokens(u)
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
