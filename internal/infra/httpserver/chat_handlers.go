package httpserver

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	appchat "github.com/clausewise/clausewise/internal/application/chat"
	domain "github.com/clausewise/clausewise/internal/domain/chat"
	"github.com/clausewise/clausewise/internal/middleware"
)

// POST /api/v1/chat/sessions
func (r *Router) handleCreateSession(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		DocumentID string `json:"document_id"`
		Title      string `json:"title"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return badRequest{"invalid request body"}
	}
	if body.DocumentID == "" {
		return badRequest{"document_id is required"}
	}

	sess, err := r.chatSvc.CreateSession(req.Context(),
		middleware.GetUserIDFromContext(req.Context()), body.DocumentID, body.Title)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	return json.NewEncoder(w).Encode(sess)
}

// GET /api/v1/chat/sessions?document_id=...
func (r *Router) handleListSessions(w http.ResponseWriter, req *http.Request) error {
	documentID := req.URL.Query().Get("document_id")
	if documentID == "" {
		return badRequest{"document_id is required"}
	}

	list, err := r.chatSvc.ListSessions(req.Context(),
		middleware.GetUserIDFromContext(req.Context()), documentID)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(list)
}

// DELETE /api/v1/chat/sessions/{id}
func (r *Router) handleDeleteSession(w http.ResponseWriter, req *http.Request) error {
	id := chi.URLParam(req, "id")
	if err := r.chatSvc.DeleteSession(req.Context(),
		middleware.GetUserIDFromContext(req.Context()), domain.SessionID(id)); err != nil {
		return err
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

// POST /api/v1/chat/sessions/{id}/messages
func (r *Router) handleSend(w http.ResponseWriter, req *http.Request) error {
	id := chi.URLParam(req, "id")

	var body struct {
		Question string `json:"question"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return badRequest{"invalid request body"}
	}
	if body.Question == "" {
		return badRequest{"question is required"}
	}

	middleware.IncrementChatMessages()

	res, err := r.chatSvc.Send(req.Context(), appchat.SendCommand{
		UserID:    middleware.GetUserIDFromContext(req.Context()),
		SessionID: domain.SessionID(id),
		Question:  middleware.SanitizeString(body.Question),
	})
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(res)
}

// GET /api/v1/chat/sessions/{id}/messages?limit=100
func (r *Router) handleMessages(w http.ResponseWriter, req *http.Request) error {
	id := chi.URLParam(req, "id")
	limit, _ := strconv.Atoi(req.URL.Query().Get("limit"))

	list, err := r.chatSvc.Messages(req.Context(),
		middleware.GetUserIDFromContext(req.Context()), domain.SessionID(id), limit)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(list)
}

// GET /api/v1/chat/documents/{id}/messages?limit=100
func (r *Router) handleDocumentHistory(w http.ResponseWriter, req *http.Request) error {
	id := chi.URLParam(req, "id")
	limit, _ := strconv.Atoi(req.URL.Query().Get("limit"))

	list, err := r.chatSvc.History(req.Context(),
		middleware.GetUserIDFromContext(req.Context()), id, limit)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(list)
}
