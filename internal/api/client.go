package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Heisenberg208/chatbot-platform/pkg/schema"
)

// CredentialSource exposes the bearer credential, if one is held.
type CredentialSource interface {
	Credential() (string, bool)
}

// RejectionHandler is told when the service rejects a credential. token is
// the credential that was attached to the failing call, or "" if none was.
type RejectionHandler interface {
	CredentialRejected(token string)
}

// Client is the single network boundary of the application. It attaches
// the credential to outgoing calls and reports rejections upward.
type Client struct {
	config   *Config
	http     *http.Client
	creds    CredentialSource
	rejected RejectionHandler
}

// NewClient creates a new gateway client. creds and rejected may be nil,
// in which case every call is sent unauthenticated.
func NewClient(config *Config, creds CredentialSource, rejected RejectionHandler) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	config.SetDefaults()

	return &Client{
		config: config,
		http: &http.Client{
			Timeout: config.Timeout,
		},
		creds:    creds,
		rejected: rejected,
	}, nil
}

// BaseURL returns the normalized service URL.
func (c *Client) BaseURL() string {
	return c.config.BaseURL
}

// Login exchanges an email and password for a credential. The form field is
// named username because the service follows the OAuth2 password flow.
func (c *Client) Login(ctx context.Context, email, password string) (*TokenResponse, error) {
	form := url.Values{}
	form.Set("username", email)
	form.Set("password", password)

	var tok TokenResponse
	err := c.do(ctx, http.MethodPost, "/auth/login", strings.NewReader(form.Encode()),
		"application/x-www-form-urlencoded", &tok)
	if err != nil {
		return nil, err
	}
	if tok.AccessToken == "" {
		return nil, NewDecodeError(fmt.Errorf("login response has no access_token"))
	}
	return &tok, nil
}

// Register creates a new account.
func (c *Client) Register(ctx context.Context, email, password string) (*schema.User, error) {
	var u schema.User
	if err := c.doJSON(ctx, http.MethodPost, "/auth/register", registerRequest{Email: email, Password: password}, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Me returns the account behind the current credential.
func (c *Client) Me(ctx context.Context) (*schema.User, error) {
	var u schema.User
	if err := c.doJSON(ctx, http.MethodGet, "/users/me", nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Health reports service liveness.
func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	var h HealthResponse
	if err := c.doJSON(ctx, http.MethodGet, "/health", nil, &h); err != nil {
		return nil, err
	}
	return &h, nil
}

// ListProjects returns the projects visible to the user in server order.
func (c *Client) ListProjects(ctx context.Context) ([]schema.Project, error) {
	var list projectList
	if err := c.doJSON(ctx, http.MethodGet, "/projects", nil, &list); err != nil {
		return nil, err
	}
	if list.Projects == nil {
		list.Projects = []schema.Project{}
	}
	return list.Projects, nil
}

// CreateProject creates a project.
func (c *Client) CreateProject(ctx context.Context, name, description string) (*schema.Project, error) {
	var p schema.Project
	body := createProjectRequest{Name: name, Description: description}
	if err := c.doJSON(ctx, http.MethodPost, "/projects", body, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// ListPrompts returns the system prompts of a project in creation order.
func (c *Client) ListPrompts(ctx context.Context, projectID string) ([]schema.Prompt, error) {
	var list promptList
	if err := c.doJSON(ctx, http.MethodGet, "/projects/"+url.PathEscape(projectID)+"/prompts", nil, &list); err != nil {
		return nil, err
	}
	if list.Prompts == nil {
		list.Prompts = []schema.Prompt{}
	}
	return list.Prompts, nil
}

// AddPrompt attaches a system prompt to a project.
func (c *Client) AddPrompt(ctx context.Context, projectID, content string) (*schema.Prompt, error) {
	var p schema.Prompt
	path := "/projects/" + url.PathEscape(projectID) + "/prompts"
	if err := c.doJSON(ctx, http.MethodPost, path, createPromptRequest{Content: content}, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Chat sends one user message and returns the assistant reply.
func (c *Client) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	var resp ChatResponse
	if err := c.doJSON(ctx, http.MethodPost, "/chat", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// HTTP helpers

func (c *Client) doJSON(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	contentType := ""
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(data)
		contentType = "application/json"
	}
	return c.do(ctx, method, path, body, contentType, out)
}

// do executes one call. A 401 is reported to the rejection handler exactly
// once and is still returned to the caller.
func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.config.BaseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	requestID, err := schema.NewRequestID()
	if err != nil {
		return fmt.Errorf("generate request id: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("X-Request-ID", requestID)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	token := ""
	if c.creds != nil {
		if t, ok := c.creds.Credential(); ok {
			token = t
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	duration := time.Since(start)

	if err != nil {
		slog.Error("API request failed",
			"request_id", requestID,
			"method", method,
			"path", path,
			"error", err.Error(),
			"duration", duration,
		)
		return NewNetworkError(err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			slog.Warn("Failed to close response body", "error", err)
		}
	}()

	slog.Debug("API request completed",
		"request_id", requestID,
		"method", method,
		"path", path,
		"status_code", resp.StatusCode,
		"authenticated", token != "",
		"duration", duration,
	)

	if resp.StatusCode == http.StatusUnauthorized {
		msg := readErrorMessage(resp.Body)
		slog.Warn("Credential rejected by service", "request_id", requestID, "path", path)
		if c.rejected != nil {
			c.rejected.CredentialRejected(token)
		}
		return NewUnauthorizedError(msg)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := readErrorMessage(resp.Body)
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return NewStatusError(resp.StatusCode, msg)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return NewDecodeError(err)
	}
	return nil
}

// readErrorMessage extracts the service's error text. FastAPI sends
// {"detail": "..."} or {"detail": [...]} for validation failures.
func readErrorMessage(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, 64<<10))
	if err != nil || len(data) == 0 {
		return ""
	}

	var eb errorBody
	if json.Unmarshal(data, &eb) == nil {
		switch d := eb.Detail.(type) {
		case string:
			return d
		case nil:
		default:
			if b, err := json.Marshal(d); err == nil {
				return string(b)
			}
		}
		if eb.Error != "" {
			return eb.Error
		}
	}
	return strings.TrimSpace(string(data))
}
