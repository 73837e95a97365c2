package httpserver

import (
	"encoding/json"
	"net/http"

	appauth "github.com/clausewise/clausewise/internal/application/auth"
	"github.com/clausewise/clausewise/internal/domain/users"
	"github.com/clausewise/clausewise/internal/middleware"
)

// POST /api/v1/auth/register
func (r *Router) handleRegister(w http.ResponseWriter, req *http.Request) error {
	var body appauth.RegisterCommand
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return badRequest{"invalid request body"}
	}

	u, err := r.authSvc.Register(req.Context(), body)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	return json.NewEncoder(w).Encode(u)
}

// POST /api/v1/auth/login
func (r *Router) handleLogin(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return badRequest{"invalid request body"}
	}

	res, err := r.authSvc.Login(req.Context(), body.Email, body.Password)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(res)
}

// GET /api/v1/auth/me
func (r *Router) handleMe(w http.ResponseWriter, req *http.Request) error {
	userID := middleware.GetUserIDFromContext(req.Context())

	u, err := r.authSvc.GetUser(req.Context(), users.UserID(userID))
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(u)
}
