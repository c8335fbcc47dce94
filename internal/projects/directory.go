package projects

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/Heisenberg208/chatbot-platform/pkg/schema"
)

// Lister is the slice of the gateway the directory needs.
type Lister interface {
	ListProjects(ctx context.Context) ([]schema.Project, error)
	CreateProject(ctx context.Context, name, description string) (*schema.Project, error)
}

// InvalidSelectionError is returned by Select for an id not in the current list.
type InvalidSelectionError struct {
	ProjectID string
}

func (e *InvalidSelectionError) Error() string {
	return fmt.Sprintf("invalid selection: project %q is not in the current list", e.ProjectID)
}

// Directory holds the project list and the current selection.
type Directory struct {
	mu       sync.Mutex
	api      Lister
	projects []schema.Project
	current  *schema.Project
	epoch    uint64
	onChange func(*schema.Project)
}

// NewDirectory creates an empty directory. onChange, if set, is called with
// the new current project whenever it changes, or nil when it is cleared.
func NewDirectory(api Lister, onChange func(*schema.Project)) *Directory {
	return &Directory{
		api:      api,
		projects: []schema.Project{},
		onChange: onChange,
	}
}

// Refresh replaces the list with the server's. On failure the previous list
// is kept. A Reset that happens while the call is in flight wins.
func (d *Directory) Refresh(ctx context.Context) error {
	d.mu.Lock()
	epoch := d.epoch
	d.mu.Unlock()

	list, err := d.api.ListProjects(ctx)
	if err != nil {
		slog.Warn("Project refresh failed, keeping previous list", "error", err)
		return fmt.Errorf("refresh projects: %w", err)
	}

	snapshot := make([]schema.Project, len(list))
	copy(snapshot, list)

	d.mu.Lock()
	if epoch != d.epoch {
		d.mu.Unlock()
		slog.Debug("Discarding project list from before reset")
		return nil
	}

	d.projects = snapshot
	changed := false
	if d.current != nil {
		if p, ok := find(snapshot, d.current.ID); ok {
			d.current = &p
		} else {
			slog.Info("Current project no longer listed", "project_id", d.current.ID)
			d.current = nil
			changed = true
		}
	}
	hook := d.onChange
	d.mu.Unlock()

	slog.Debug("Projects refreshed", "count", len(snapshot))

	if changed && hook != nil {
		hook(nil)
	}
	return nil
}

// Create asks the server for a new project. The list is not updated; call
// Refresh to observe it.
func (d *Directory) Create(ctx context.Context, name, description string) (*schema.Project, error) {
	if err := schema.ValidateProjectName(name); err != nil {
		return nil, err
	}

	p, err := d.api.CreateProject(ctx, strings.TrimSpace(name), strings.TrimSpace(description))
	if err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}

	slog.Info("Project created", "project_id", p.ID, "name", p.Name)
	return p, nil
}

// Select makes projectID current. Selecting the project that is already
// current does not fire the change hook.
func (d *Directory) Select(projectID string) (schema.Project, error) {
	d.mu.Lock()
	p, ok := find(d.projects, projectID)
	if !ok {
		d.mu.Unlock()
		return schema.Project{}, &InvalidSelectionError{ProjectID: projectID}
	}

	same := d.current != nil && d.current.ID == projectID
	d.current = &p
	hook := d.onChange
	d.mu.Unlock()

	if !same && hook != nil {
		cp := p
		hook(&cp)
	}
	return p, nil
}

// Current returns the selected project.
func (d *Directory) Current() (schema.Project, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.current == nil {
		return schema.Project{}, false
	}
	return *d.current, true
}

// Projects returns a copy of the list in server order.
func (d *Directory) Projects() []schema.Project {
	d.mu.Lock()
	defer d.mu.Unlock()

	out := make([]schema.Project, len(d.projects))
	copy(out, d.projects)
	return out
}

// Reset drops the list and the selection. The change hook is not called;
// teardown is driven by the caller.
func (d *Directory) Reset() {
	d.mu.Lock()
	d.projects = []schema.Project{}
	d.current = nil
	d.epoch++
	d.mu.Unlock()
}

func find(list []schema.Project, id string) (schema.Project, bool) {
	for _, p := range list {
		if p.ID == id {
			return p, true
		}
	}
	return schema.Project{}, false
}
