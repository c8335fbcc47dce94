package api

import "github.com/Heisenberg208/chatbot-platform/pkg/schema"

// TokenResponse is returned by POST /auth/login.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	// ExpiresIn is optional; when absent the expiry is read from the token itself.
	ExpiresIn int `json:"expires_in,omitempty"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type createProjectRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

type projectList struct {
	Projects []schema.Project `json:"projects"`
	Total    int              `json:"total"`
}

type createPromptRequest struct {
	Content string `json:"content"`
}

type promptList struct {
	Prompts []schema.Prompt `json:"prompts"`
	Total   int             `json:"total"`
}

// ChatRequest is the body of POST /chat. SessionID is omitted until the
// first exchange has bound one.
type ChatRequest struct {
	ProjectID string `json:"project_id"`
	Message   string `json:"message"`
	SessionID string `json:"session_id,omitempty"`
}

// ChatMessage is a persisted message as echoed by the service.
type ChatMessage struct {
	ID            string           `json:"id,omitempty"`
	ChatSessionID string           `json:"chat_session_id,omitempty"`
	Role          schema.Role      `json:"role,omitempty"`
	Content       string           `json:"content"`
	Timestamp     schema.Timestamp `json:"timestamp"`
}

// ChatResponse is returned by POST /chat.
type ChatResponse struct {
	SessionID        string      `json:"session_id"`
	Message          ChatMessage `json:"message"`
	AssistantMessage ChatMessage `json:"assistant_message"`
}

type errorBody struct {
	Detail any    `json:"detail"`
	Error  string `json:"error"`
}
