package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticCreds struct{ token string }

func (s staticCreds) Credential() (string, bool) {
	return s.token, s.token != ""
}

type rejectRecorder struct {
	mu     sync.Mutex
	tokens []string
}

func (r *rejectRecorder) CredentialRejected(token string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tokens = append(r.tokens, token)
}

func (r *rejectRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.tokens)
}

func newTestClient(t *testing.T, url string, creds CredentialSource, rej RejectionHandler) *Client {
	t.Helper()
	c, err := NewClient(&Config{BaseURL: url}, creds, rej)
	require.NoError(t, err)
	return c
}

func TestNewClient(t *testing.T) {
	t.Run("valid config", func(t *testing.T) {
		config := &Config{BaseURL: "https://api.test.com/"}

		client, err := NewClient(config, nil, nil)
		require.NoError(t, err)
		require.NotNil(t, client)

		assert.Equal(t, 30*time.Second, client.config.Timeout)
		assert.Equal(t, "chatbot-cli", client.config.UserAgent)
		assert.Equal(t, "https://api.test.com", client.BaseURL())
	})

	t.Run("invalid config - missing base URL", func(t *testing.T) {
		_, err := NewClient(&Config{}, nil, nil)
		assert.Error(t, err)
	})

	t.Run("invalid config - bad scheme", func(t *testing.T) {
		_, err := NewClient(&Config{BaseURL: "ftp://example.com"}, nil, nil)
		assert.Error(t, err)
	})

	t.Run("invalid config - negative timeout", func(t *testing.T) {
		_, err := NewClient(&Config{BaseURL: "http://x", Timeout: -time.Second}, nil, nil)
		assert.Error(t, err)
	})
}

func TestClient_AttachesCredential(t *testing.T) {
	var gotAuth, gotRequestID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotRequestID = r.Header.Get("X-Request-ID")
		json.NewEncoder(w).Encode(map[string]any{"projects": []any{}, "total": 0})
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, staticCreds{token: "tok-1"}, nil)
	_, err := client.ListProjects(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "Bearer tok-1", gotAuth)
	assert.True(t, strings.HasPrefix(gotRequestID, "REQ-"))
}

func TestClient_NoCredentialSendsUnauthenticated(t *testing.T) {
	var hadAuth bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, hadAuth = r.Header["Authorization"]
		json.NewEncoder(w).Encode(HealthResponse{Status: "ok", Database: "connected"})
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, staticCreds{}, nil)
	h, err := client.Health(context.Background())
	require.NoError(t, err)

	assert.False(t, hadAuth)
	assert.Equal(t, "ok", h.Status)
}

func TestClient_Login(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/login", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "a@b.c", r.PostForm.Get("username"))
		assert.Equal(t, "secret123", r.PostForm.Get("password"))

		json.NewEncoder(w).Encode(TokenResponse{AccessToken: "tok-abc", TokenType: "bearer"})
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, nil, nil)
	tok, err := client.Login(context.Background(), "a@b.c", "secret123")
	require.NoError(t, err)
	assert.Equal(t, "tok-abc", tok.AccessToken)
	assert.Equal(t, "bearer", tok.TokenType)
}

func TestClient_LoginWithoutToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"token_type": "bearer"})
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, nil, nil)
	_, err := client.Login(context.Background(), "a@b.c", "secret123")

	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, KindDecode, apiErr.Kind)
}

func TestClient_Register(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/register", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "a@b.c", body["email"])
		assert.Equal(t, "secret123", body["password"])

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]string{"id": "u1", "email": "a@b.c"})
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, nil, nil)
	u, err := client.Register(context.Background(), "a@b.c", "secret123")
	require.NoError(t, err)
	assert.Equal(t, "u1", u.ID)
}

func TestClient_ChatOmitsUnboundSessionID(t *testing.T) {
	var bodies []map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		bodies = append(bodies, body)

		json.NewEncoder(w).Encode(map[string]any{
			"session_id":        "s1",
			"message":           map[string]any{"role": "user", "content": body["message"]},
			"assistant_message": map[string]any{"role": "assistant", "content": "hello"},
		})
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, staticCreds{token: "tok"}, nil)

	resp, err := client.Chat(context.Background(), ChatRequest{ProjectID: "p1", Message: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "s1", resp.SessionID)
	assert.Equal(t, "hello", resp.AssistantMessage.Content)

	_, err = client.Chat(context.Background(), ChatRequest{ProjectID: "p1", Message: "again", SessionID: "s1"})
	require.NoError(t, err)

	require.Len(t, bodies, 2)
	_, present := bodies[0]["session_id"]
	assert.False(t, present, "unbound session id must be omitted")
	assert.Equal(t, "s1", bodies[1]["session_id"])
	assert.Equal(t, "p1", bodies[1]["project_id"])
}

func TestClient_UnauthorizedSignalsOncePerCall(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail":"Could not validate credentials"}`))
	}))
	defer srv.Close()

	rec := &rejectRecorder{}
	client := newTestClient(t, srv.URL, staticCreds{token: "expired"}, rec)

	_, err := client.ListProjects(context.Background())
	require.Error(t, err)
	assert.True(t, IsUnauthorized(err))
	assert.Contains(t, err.Error(), "Could not validate credentials")
	assert.Equal(t, 1, rec.count())

	_, err = client.Me(context.Background())
	require.Error(t, err)
	assert.Equal(t, 2, rec.count())

	rec.mu.Lock()
	assert.Equal(t, []string{"expired", "expired"}, rec.tokens)
	rec.mu.Unlock()
}

func TestClient_PassesThroughOtherErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"server error detail", http.StatusInternalServerError, `{"detail":"Failed to generate response: boom"}`, "boom"},
		{"not found", http.StatusNotFound, `{"detail":"Project not found"}`, "Project not found"},
		{"validation list", http.StatusUnprocessableEntity, `{"detail":[{"loc":["body","name"],"msg":"field required"}]}`, "field required"},
		{"plain text", http.StatusBadGateway, `upstream down`, "upstream down"},
		{"empty body", http.StatusServiceUnavailable, ``, "Service Unavailable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			rec := &rejectRecorder{}
			client := newTestClient(t, srv.URL, staticCreds{token: "tok"}, rec)

			_, err := client.Chat(context.Background(), ChatRequest{ProjectID: "p1", Message: "hi"})
			require.Error(t, err)

			var apiErr *Error
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, KindStatus, apiErr.Kind)
			assert.Equal(t, tt.status, apiErr.Code)
			assert.Contains(t, apiErr.Message, tt.want)
			assert.False(t, IsUnauthorized(err))
			assert.Zero(t, rec.count())
		})
	}
}

func TestClient_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	rec := &rejectRecorder{}
	client := newTestClient(t, url, staticCreds{token: "tok"}, rec)

	_, err := client.ListProjects(context.Background())
	require.Error(t, err)

	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, KindNetwork, apiErr.Kind)
	assert.NotNil(t, apiErr.Unwrap())
	assert.Zero(t, rec.count())
}

func TestClient_MalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"projects": [`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, nil, nil)
	_, err := client.ListProjects(context.Background())

	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, KindDecode, apiErr.Kind)
}

func TestClient_ListPromptsAndAdd(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/projects/p1/prompts", r.URL.Path)
		switch r.Method {
		case http.MethodGet:
			json.NewEncoder(w).Encode(map[string]any{
				"prompts": []map[string]string{
					{"id": "a", "project_id": "p1", "content": "first"},
					{"id": "b", "project_id": "p1", "content": "second"},
				},
				"total": 2,
			})
		case http.MethodPost:
			var body map[string]string
			json.NewDecoder(r.Body).Decode(&body)
			w.WriteHeader(http.StatusCreated)
			json.NewEncoder(w).Encode(map[string]string{"id": "c", "project_id": "p1", "content": body["content"]})
		}
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, staticCreds{token: "tok"}, nil)

	prompts, err := client.ListPrompts(context.Background(), "p1")
	require.NoError(t, err)
	require.Len(t, prompts, 2)
	assert.Equal(t, "first", prompts[0].Content)
	assert.Equal(t, "second", prompts[1].Content)

	p, err := client.AddPrompt(context.Background(), "p1", "third")
	require.NoError(t, err)
	assert.Equal(t, "third", p.Content)
}

func TestClient_ListProjectsNullList(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"projects": null, "total": 0}`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, nil, nil)
	projects, err := client.ListProjects(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, projects)
	assert.Empty(t, projects)
}

func TestClient_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Health(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}
