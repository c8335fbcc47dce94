package api

import (
	"context"
	"sync"

	"github.com/Heisenberg208/chatbot-platform/pkg/schema"
)

// MockClient is a scripted stand-in for Client, for testing components that
// consume gateway calls without a server.
type MockClient struct {
	mu sync.Mutex

	// ChatFunc answers Chat; nil returns an empty reply.
	ChatFunc func(ctx context.Context, req ChatRequest) (*ChatResponse, error)

	Projects    []schema.Project
	ProjectsErr error
	CreateErr   error

	Prompts    map[string][]schema.Prompt
	PromptsErr error
	AddErr     error

	ChatCalls    []ChatRequest
	ListCalls    int
	CreateCalls  []schema.Project
	PromptCalls  []string
	AddedPrompts []schema.Prompt
}

// Chat records the request and delegates to ChatFunc.
func (m *MockClient) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	m.mu.Lock()
	m.ChatCalls = append(m.ChatCalls, req)
	fn := m.ChatFunc
	m.mu.Unlock()

	if fn == nil {
		return &ChatResponse{}, nil
	}
	return fn(ctx, req)
}

// ListProjects returns the scripted project list.
func (m *MockClient) ListProjects(ctx context.Context) ([]schema.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ListCalls++
	if m.ProjectsErr != nil {
		return nil, m.ProjectsErr
	}
	out := make([]schema.Project, len(m.Projects))
	copy(out, m.Projects)
	return out, nil
}

// CreateProject records the request. It does not add to Projects.
func (m *MockClient) CreateProject(ctx context.Context, name, description string) (*schema.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p := schema.Project{Name: name, Description: description}
	m.CreateCalls = append(m.CreateCalls, p)
	if m.CreateErr != nil {
		return nil, m.CreateErr
	}
	return &p, nil
}

// ListPrompts returns the scripted prompts for projectID.
func (m *MockClient) ListPrompts(ctx context.Context, projectID string) ([]schema.Prompt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.PromptCalls = append(m.PromptCalls, projectID)
	if m.PromptsErr != nil {
		return nil, m.PromptsErr
	}
	src := m.Prompts[projectID]
	out := make([]schema.Prompt, len(src))
	copy(out, src)
	return out, nil
}

// AddPrompt records the prompt. It does not add to Prompts.
func (m *MockClient) AddPrompt(ctx context.Context, projectID, content string) (*schema.Prompt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p := schema.Prompt{ProjectID: projectID, Content: content}
	m.AddedPrompts = append(m.AddedPrompts, p)
	if m.AddErr != nil {
		return nil, m.AddErr
	}
	return &p, nil
}

// Calls returns a copy of the recorded chat requests.
func (m *MockClient) Calls() []ChatRequest {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]ChatRequest, len(m.ChatCalls))
	copy(out, m.ChatCalls)
	return out
}
