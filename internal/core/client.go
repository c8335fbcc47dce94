package core

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/Heisenberg208/chatbot-platform/internal/api"
	"github.com/Heisenberg208/chatbot-platform/internal/auth"
	"github.com/Heisenberg208/chatbot-platform/internal/conversation"
	"github.com/Heisenberg208/chatbot-platform/internal/projects"
	"github.com/Heisenberg208/chatbot-platform/internal/prompts"
	"github.com/Heisenberg208/chatbot-platform/internal/transcript"
	"github.com/Heisenberg208/chatbot-platform/pkg/schema"
)

// Client wires the components together. It owns one conversation session
// whose instances are replaced on clear, project change and sign-out.
type Client struct {
	Auth     *auth.Manager
	API      *api.Client
	Projects *projects.Directory

	logger Logger
	chat   *conversation.Session

	mu        sync.Mutex
	registry  *prompts.Registry
	signedOut []func(auth.Event)
}

// NewClient creates a client backed by store. logger may be nil.
func NewClient(cfg *Config, store auth.CredentialStore, logger Logger) (*Client, error) {
	if logger == nil {
		logger = NewLogger(cfg.LogLevel, nil)
	}

	manager := auth.NewManager(store)
	gateway, err := api.NewClient(cfg.APIConfig(), manager, manager)
	if err != nil {
		return nil, fmt.Errorf("create api client: %w", err)
	}

	c := &Client{
		Auth:   manager,
		API:    gateway,
		logger: logger,
		chat:   conversation.New(gateway, ""),
	}
	c.Projects = projects.NewDirectory(gateway, c.projectChanged)
	manager.Subscribe(c.authChanged)

	return c, nil
}

// Start reads the persisted credential and, if one is usable, loads the
// project list. It reports whether the client is authenticated. A failed
// project load is returned but leaves the client authenticated unless the
// service rejected the credential.
func (c *Client) Start(ctx context.Context) (bool, error) {
	hydrate, err := c.Auth.Initialize()
	if err != nil {
		return false, err
	}
	if !hydrate {
		return false, nil
	}

	if err := c.Projects.Refresh(ctx); err != nil {
		return c.Auth.IsAuthenticated(), err
	}
	return true, nil
}

// Login exchanges credentials for a token, stores it and loads projects.
func (c *Client) Login(ctx context.Context, email, password string) error {
	if err := schema.ValidateLogin(email, password); err != nil {
		return err
	}

	tok, err := c.API.Login(ctx, strings.TrimSpace(email), password)
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}

	cred := auth.NewCredential(tok.AccessToken, tok.TokenType, tok.ExpiresIn, time.Now())
	if err := c.Auth.Login(cred); err != nil {
		return err
	}
	c.logger.Info("Logged in", "email", email, "expires_at", cred.ExpiresAt)

	if err := c.Projects.Refresh(ctx); err != nil {
		return fmt.Errorf("load projects: %w", err)
	}
	return nil
}

// Register creates an account. It does not log in.
func (c *Client) Register(ctx context.Context, email, password string) (*schema.User, error) {
	if err := schema.ValidateRegistration(email, password); err != nil {
		return nil, err
	}

	u, err := c.API.Register(ctx, strings.TrimSpace(email), password)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	c.logger.Info("Registered", "email", u.Email)
	return u, nil
}

// Logout erases the credential and all dependent state.
func (c *Client) Logout() {
	c.Auth.Logout()
}

// CreateProject creates a project and refreshes the list to observe it.
func (c *Client) CreateProject(ctx context.Context, name, description string) (*schema.Project, error) {
	if !c.Auth.IsAuthenticated() {
		return nil, ErrNotAuthenticated
	}

	p, err := c.Projects.Create(ctx, name, description)
	if err != nil {
		return nil, err
	}
	if err := c.Projects.Refresh(ctx); err != nil {
		return p, fmt.Errorf("refresh after create: %w", err)
	}
	return p, nil
}

// SelectProject makes projectID current and starts a fresh conversation for it.
func (c *Client) SelectProject(projectID string) (schema.Project, error) {
	if !c.Auth.IsAuthenticated() {
		return schema.Project{}, ErrNotAuthenticated
	}
	return c.Projects.Select(projectID)
}

// Send performs one chat exchange on the current conversation.
func (c *Client) Send(ctx context.Context, text string) (conversation.Result, error) {
	if !c.Auth.IsAuthenticated() {
		return conversation.Result{Outcome: conversation.Ignored}, ErrNotAuthenticated
	}
	if c.chat.ProjectID() == "" {
		return conversation.Result{Outcome: conversation.Ignored}, ErrNoProject
	}
	return c.chat.Send(ctx, text), nil
}

// ClearChat starts over in the current project.
func (c *Client) ClearChat() {
	c.chat.Clear()
}

// Conversation returns the live conversation session.
func (c *Client) Conversation() *conversation.Session {
	return c.chat
}

// Prompts returns the prompt registry of the current project.
func (c *Client) Prompts() (*prompts.Registry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.registry == nil {
		return nil, ErrNoProject
	}
	return c.registry, nil
}

// ContextPreview renders the context the service will see for the next
// exchange. It loads the project's prompts if needed.
func (c *Client) ContextPreview(ctx context.Context) (string, error) {
	project, ok := c.Projects.Current()
	if !ok {
		return "", ErrNoProject
	}
	reg, err := c.Prompts()
	if err != nil {
		return "", err
	}
	if !reg.Loaded() {
		if err := reg.List(ctx); err != nil {
			return "", err
		}
	}

	req, err := transcript.BuildRequest(project, reg.Contents(), c.chat.Messages())
	if err != nil {
		return "", err
	}
	return transcript.Format(req), nil
}

// Export writes the current conversation to path.
func (c *Client) Export(path string) error {
	project, ok := c.Projects.Current()
	if !ok {
		return ErrNoProject
	}
	t := transcript.New(project, c.chat.Snapshot(), time.Now())
	if err := transcript.Write(path, t); err != nil {
		return err
	}
	c.logger.Info("Transcript exported", "path", path, "messages", len(t.Messages))
	return nil
}

// OnSignedOut registers fn to run after teardown whenever the client
// leaves the authenticated state. This is where a front end returns to its
// unauthenticated entry point.
func (c *Client) OnSignedOut(fn func(auth.Event)) {
	c.mu.Lock()
	c.signedOut = append(c.signedOut, fn)
	c.mu.Unlock()
}

func (c *Client) projectChanged(p *schema.Project) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if p == nil {
		c.chat.Reset("")
		c.registry = nil
		return
	}

	c.chat.Reset(p.ID)
	c.registry = prompts.New(c.API, p.ID)
	c.logger.Debug("Project selected", "project_id", p.ID)
}

// authChanged runs synchronously inside the transition, so teardown is
// complete before Logout or the rejected call returns. A login that replaces
// a held credential clears the same state, since it may belong to another
// account.
func (c *Client) authChanged(e auth.Event) {
	if !e.SignedOut() && !e.Replaced {
		return
	}

	c.Projects.Reset()

	c.mu.Lock()
	c.chat.Reset("")
	c.registry = nil
	var hooks []func(auth.Event)
	if e.SignedOut() {
		hooks = make([]func(auth.Event), len(c.signedOut))
		copy(hooks, c.signedOut)
	}
	c.mu.Unlock()

	c.logger.Info("Session state cleared", "reason", string(e.Kind))

	for _, fn := range hooks {
		fn(e)
	}
}
