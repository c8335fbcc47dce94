package conversation

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Heisenberg208/chatbot-platform/internal/api"
	"github.com/Heisenberg208/chatbot-platform/pkg/schema"
)

// ErrorReply is the assistant message shown when an exchange fails.
const ErrorReply = "Sorry, there was an error processing your message."

// Sender performs one chat exchange with the service.
type Sender interface {
	Chat(ctx context.Context, req api.ChatRequest) (*api.ChatResponse, error)
}

// Outcome describes what Send did.
type Outcome string

const (
	// Ignored: blank input, a send already pending, or no project. Nothing changed.
	Ignored Outcome = "ignored"
	// Replied: the assistant reply was appended.
	Replied Outcome = "replied"
	// Failed: the exchange failed and ErrorReply was appended.
	Failed Outcome = "failed"
	// Discarded: the exchange finished after the instance was superseded.
	Discarded Outcome = "discarded"
)

// Result is returned by Send.
type Result struct {
	Outcome Outcome
	Reply   schema.Message
	Err     error
}

// Snapshot is a point-in-time copy of a conversation instance.
type Snapshot struct {
	Generation uint64
	InstanceID string
	ProjectID  string
	SessionID  string
	Messages   []schema.Message
	Pending    bool
}

// state is one conversation instance. Clear and Reset replace it wholesale;
// an exchange holds a pointer to the instance that issued it.
type state struct {
	generation uint64
	instanceID string
	projectID  string
	sessionID  string
	log        []schema.Message
	pending    bool
}

func (st *state) addMessage(m schema.Message) {
	st.log = append(st.log, m)
}

func (st *state) snapshot() Snapshot {
	msgs := make([]schema.Message, len(st.log))
	copy(msgs, st.log)
	return Snapshot{
		Generation: st.generation,
		InstanceID: st.instanceID,
		ProjectID:  st.projectID,
		SessionID:  st.sessionID,
		Messages:   msgs,
		Pending:    st.pending,
	}
}

// Session is the multi-turn dialogue for the current project.
type Session struct {
	mu      sync.Mutex
	sender  Sender
	cur     *state
	nextGen uint64
}

// New creates a session bound to projectID. An empty projectID yields a
// session that ignores every Send until Reset.
func New(sender Sender, projectID string) *Session {
	s := &Session{sender: sender}
	s.cur = s.newState(projectID)
	return s
}

// newState must be called with mu held, or before s is shared.
func (s *Session) newState(projectID string) *state {
	s.nextGen++
	id, err := schema.NewConversationID()
	if err != nil {
		id = fmt.Sprintf("CONV-%d", s.nextGen)
	}
	return &state{
		generation: s.nextGen,
		instanceID: id,
		projectID:  projectID,
		log:        make([]schema.Message, 0),
	}
}

// Send appends text as a user message, performs one exchange and appends
// the reply or ErrorReply. At most one exchange is in flight per instance.
func (s *Session) Send(ctx context.Context, text string) Result {
	s.mu.Lock()
	st := s.cur
	if schema.ValidateMessage(text) != nil || st.pending || st.projectID == "" {
		s.mu.Unlock()
		return Result{Outcome: Ignored}
	}

	st.addMessage(schema.UserMessage(text))
	st.pending = true
	req := api.ChatRequest{
		ProjectID: st.projectID,
		Message:   text,
		SessionID: st.sessionID,
	}
	s.mu.Unlock()

	defer s.release(st)

	resp, err := s.sender.Chat(ctx, req)
	return s.apply(st, resp, err)
}

func (s *Session) apply(st *state, resp *api.ChatResponse, err error) Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	st.pending = false
	if s.cur != st {
		slog.Debug("Discarding reply for superseded conversation",
			"instance_id", st.instanceID,
			"generation", st.generation,
			"live_generation", s.cur.generation,
			"failed", err != nil,
		)
		return Result{Outcome: Discarded, Err: err}
	}

	if err != nil {
		slog.Warn("Chat exchange failed",
			"instance_id", st.instanceID,
			"project_id", st.projectID,
			"error", err,
		)
		reply := schema.AssistantMessage(ErrorReply)
		st.addMessage(reply)
		return Result{Outcome: Failed, Reply: reply, Err: err}
	}

	if resp == nil {
		resp = &api.ChatResponse{}
	}
	if st.sessionID == "" && resp.SessionID != "" {
		st.sessionID = resp.SessionID
		slog.Debug("Conversation bound to server session",
			"instance_id", st.instanceID,
			"session_id", st.sessionID,
		)
	}

	reply := schema.AssistantMessage(resp.AssistantMessage.Content)
	st.addMessage(reply)
	return Result{Outcome: Replied, Reply: reply}
}

// release clears the pending guard of st. It runs even if the exchange panics.
func (s *Session) release(st *state) {
	s.mu.Lock()
	st.pending = false
	s.mu.Unlock()
}

// Clear starts a fresh instance for the same project. A reply still in
// flight for the old instance is discarded when it arrives.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cur = s.newState(s.cur.projectID)
}

// Reset starts a fresh instance for projectID.
func (s *Session) Reset(projectID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cur = s.newState(projectID)
}

// Snapshot returns a copy of the live instance.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cur.snapshot()
}

// Messages returns a copy of the log.
func (s *Session) Messages() []schema.Message {
	return s.Snapshot().Messages
}

// SessionID returns the server session id, if bound.
func (s *Session) SessionID() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cur.sessionID, s.cur.sessionID != ""
}

// Pending reports whether an exchange is in flight on the live instance.
func (s *Session) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cur.pending
}

// ProjectID returns the project the live instance belongs to.
func (s *Session) ProjectID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cur.projectID
}
