package api

import (
	"net/http"

	"github.com/verte-zerg/typechallenge/internal/model"
)

type registerRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Message string        `json:"message"`
	User    model.Profile `json:"user"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	res, err := s.Auth.Register(r.Context(), req.Name, req.Email)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	profile, err := s.Auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{Message: "Login successful", User: profile})
}
