package core

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/Heisenberg208/chatbot-platform/internal/api"
	"github.com/Heisenberg208/chatbot-platform/internal/auth"
	"github.com/Heisenberg208/chatbot-platform/pkg/schema"
)

// fakeService mimics the remote chatbot service well enough for wiring tests.
type fakeService struct {
	mu        sync.Mutex
	token     string
	rejectAll bool
	failChat  bool
	projects  []schema.Project
	prompts   map[string][]schema.Prompt
	chatReqs  []api.ChatRequest
	replies   map[string]string
	created   []string
}

func newFakeService() *fakeService {
	return &fakeService{
		token:    "tok-1",
		projects: []schema.Project{{ID: "p1", Name: "Demo"}, {ID: "p2", Name: "Second"}},
		prompts:  map[string][]schema.Prompt{},
		replies:  map[string]string{"hi": "hello"},
	}
}

func (f *fakeService) start(t *testing.T) *httptest.Server {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil || r.PostForm.Get("password") != "secret-pass" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Incorrect email or password"})
			return
		}
		writeJSON(w, http.StatusOK, api.TokenResponse{AccessToken: f.token, TokenType: "bearer"})
	})

	mux.HandleFunc("POST /auth/register", func(w http.ResponseWriter, r *http.Request) {
		var body struct{ Email string }
		_ = json.NewDecoder(r.Body).Decode(&body)
		writeJSON(w, http.StatusCreated, map[string]any{"id": "u1", "email": body.Email, "created_at": wireCreatedAt})
	})

	mux.HandleFunc("GET /projects", f.authed(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		list := make([]map[string]any, len(f.projects))
		for i, p := range f.projects {
			list[i] = projectWire(p)
		}
		writeJSON(w, http.StatusOK, map[string]any{"projects": list, "total": len(list)})
	}))

	mux.HandleFunc("POST /projects", f.authed(func(w http.ResponseWriter, r *http.Request) {
		var body struct{ Name, Description string }
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.mu.Lock()
		defer f.mu.Unlock()
		p := schema.Project{ID: fmt.Sprintf("p%d", len(f.projects)+1), Name: body.Name, Description: body.Description}
		f.created = append(f.created, body.Name)
		f.projects = append(f.projects, p)
		writeJSON(w, http.StatusCreated, projectWire(p))
	}))

	mux.HandleFunc("GET /projects/{id}/prompts", f.authed(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		stored := f.prompts[r.PathValue("id")]
		list := make([]map[string]any, len(stored))
		for i, p := range stored {
			list[i] = promptWire(p)
		}
		writeJSON(w, http.StatusOK, map[string]any{"prompts": list, "total": len(list)})
	}))

	mux.HandleFunc("POST /projects/{id}/prompts", f.authed(func(w http.ResponseWriter, r *http.Request) {
		var body struct{ Content string }
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.mu.Lock()
		defer f.mu.Unlock()
		id := r.PathValue("id")
		p := schema.Prompt{ID: "pr", ProjectID: id, Content: body.Content}
		f.prompts[id] = append(f.prompts[id], p)
		writeJSON(w, http.StatusCreated, promptWire(p))
	}))

	// Chat requests are recorded before the credential check so rejected
	// sends are still visible to tests.
	mux.HandleFunc("POST /chat", func(w http.ResponseWriter, r *http.Request) {
		var req api.ChatRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		f.mu.Lock()
		f.chatReqs = append(f.chatReqs, req)
		f.mu.Unlock()
		if !f.allowed(r) {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Could not validate credentials"})
			return
		}
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.failChat {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"detail": "Error generating response"})
			return
		}
		sid := req.SessionID
		if sid == "" {
			sid = "s1"
		}
		content, ok := f.replies[req.Message]
		if !ok {
			content = "ok"
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"session_id":        sid,
			"message":           messageWire(sid, "user", req.Message),
			"assistant_message": messageWire(sid, "assistant", content),
		})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func (f *fakeService) allowed(r *http.Request) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return !f.rejectAll && r.Header.Get("Authorization") == "Bearer "+f.token
}

func (f *fakeService) authed(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !f.allowed(r) {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Could not validate credentials"})
			return
		}
		next(w, r)
	}
}

func (f *fakeService) chatRequests() []api.ChatRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]api.ChatRequest, len(f.chatReqs))
	copy(out, f.chatReqs)
	return out
}

func (f *fakeService) setFailChat(v bool) {
	f.mu.Lock()
	f.failChat = v
	f.mu.Unlock()
}

func (f *fakeService) setReject(v bool) {
	f.mu.Lock()
	f.rejectAll = v
	f.mu.Unlock()
}

// wireCreatedAt is an offset-less UTC timestamp as the service renders it.
const wireCreatedAt = "2025-01-02T03:04:05.123456"

func projectWire(p schema.Project) map[string]any {
	var desc any
	if p.Description != "" {
		desc = p.Description
	}
	return map[string]any{
		"id":          p.ID,
		"name":        p.Name,
		"description": desc,
		"user_id":     "u1",
		"created_at":  wireCreatedAt,
	}
}

func promptWire(p schema.Prompt) map[string]any {
	return map[string]any{
		"id":         p.ID,
		"project_id": p.ProjectID,
		"content":    p.Content,
		"created_at": wireCreatedAt,
	}
}

func messageWire(sid, role, content string) map[string]any {
	return map[string]any{
		"id":              fmt.Sprintf("%s-%s", sid, role),
		"chat_session_id": sid,
		"role":            role,
		"content":         content,
		"timestamp":       wireCreatedAt,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func newTestClient(t *testing.T, srv *httptest.Server, store auth.CredentialStore) *Client {
	t.Helper()
	cfg := &Config{APIURL: srv.URL, LogLevel: "error", Home: t.TempDir()}
	c, err := NewClient(cfg, store, NewLogger("error", nil))
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c
}
