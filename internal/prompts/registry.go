package prompts

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/Heisenberg208/chatbot-platform/pkg/schema"
)

// Store is the slice of the gateway the registry needs.
type Store interface {
	ListPrompts(ctx context.Context, projectID string) ([]schema.Prompt, error)
	AddPrompt(ctx context.Context, projectID, content string) (*schema.Prompt, error)
}

// Registry is the system prompt view of one project. Prompts are fetched
// lazily, the first time the view is expanded.
type Registry struct {
	mu        sync.Mutex
	api       Store
	projectID string
	prompts   []schema.Prompt
	loaded    bool
	expanded  bool
}

// New creates a collapsed, unloaded registry for projectID.
func New(api Store, projectID string) *Registry {
	return &Registry{
		api:       api,
		projectID: projectID,
		prompts:   []schema.Prompt{},
	}
}

// ProjectID returns the project the registry belongs to.
func (r *Registry) ProjectID() string {
	return r.projectID
}

// Expand opens the view, loading the prompts on first use.
func (r *Registry) Expand(ctx context.Context) error {
	r.mu.Lock()
	r.expanded = true
	loaded := r.loaded
	r.mu.Unlock()

	if loaded {
		return nil
	}
	return r.List(ctx)
}

// Collapse hides the view. Loaded prompts are kept.
func (r *Registry) Collapse() {
	r.mu.Lock()
	r.expanded = false
	r.mu.Unlock()
}

// Expanded reports whether the view is open.
func (r *Registry) Expanded() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.expanded
}

// List fetches the prompts in creation order. On failure the previous list is kept.
func (r *Registry) List(ctx context.Context) error {
	list, err := r.api.ListPrompts(ctx, r.projectID)
	if err != nil {
		slog.Warn("Prompt list failed, keeping previous list",
			"project_id", r.projectID,
			"error", err,
		)
		return fmt.Errorf("list prompts: %w", err)
	}

	snapshot := make([]schema.Prompt, len(list))
	copy(snapshot, list)

	r.mu.Lock()
	r.prompts = snapshot
	r.loaded = true
	r.mu.Unlock()
	return nil
}

// Add persists a prompt. The list is not updated; call List to observe it.
func (r *Registry) Add(ctx context.Context, content string) (*schema.Prompt, error) {
	if err := schema.ValidatePromptContent(content); err != nil {
		return nil, err
	}

	p, err := r.api.AddPrompt(ctx, r.projectID, strings.TrimSpace(content))
	if err != nil {
		return nil, fmt.Errorf("add prompt: %w", err)
	}

	slog.Info("Prompt added", "project_id", r.projectID, "prompt_id", p.ID)
	return p, nil
}

// Prompts returns a copy of the loaded prompts.
func (r *Registry) Prompts() []schema.Prompt {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]schema.Prompt, len(r.prompts))
	copy(out, r.prompts)
	return out
}

// Contents returns the loaded prompt texts in order.
func (r *Registry) Contents() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]string, len(r.prompts))
	for i, p := range r.prompts {
		out[i] = p.Content
	}
	return out
}

// Loaded reports whether List has succeeded at least once.
func (r *Registry) Loaded() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.loaded
}
