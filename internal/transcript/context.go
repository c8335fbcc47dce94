package transcript

import (
	"fmt"
	"strings"

	"github.com/cbroglie/mustache"
	"github.com/firebase/genkit/go/ai"

	"github.com/Heisenberg208/chatbot-platform/pkg/schema"
)

// DefaultSystemTemplate is used when a project has no system prompts.
const DefaultSystemTemplate = "You are a helpful assistant for {{{name}}}."

// BuildRequest assembles the model context the service builds for one
// exchange: the project's system prompts (or the default one), then the log.
func BuildRequest(project schema.Project, prompts []string, log []schema.Message) (*ai.ModelRequest, error) {
	msgs := make([]*ai.Message, 0, len(prompts)+len(log)+1)

	if len(prompts) == 0 {
		text, err := mustache.Render(DefaultSystemTemplate, map[string]string{
			"name": project.Name,
			"id":   project.ID,
		})
		if err != nil {
			return nil, fmt.Errorf("render default system prompt: %w", err)
		}
		msgs = append(msgs, ai.NewSystemTextMessage(text))
	}
	for _, p := range prompts {
		msgs = append(msgs, ai.NewSystemTextMessage(p))
	}

	for _, m := range log {
		switch m.Role {
		case schema.RoleUser:
			msgs = append(msgs, ai.NewUserTextMessage(m.Content))
		case schema.RoleAssistant:
			msgs = append(msgs, ai.NewModelTextMessage(m.Content))
		case schema.RoleSystem:
			msgs = append(msgs, ai.NewSystemTextMessage(m.Content))
		default:
			return nil, fmt.Errorf("unknown message role %q", m.Role)
		}
	}

	return &ai.ModelRequest{Messages: msgs}, nil
}

// Format renders a request as one "[role] text" line per message.
func Format(req *ai.ModelRequest) string {
	var b strings.Builder
	for _, m := range req.Messages {
		fmt.Fprintf(&b, "[%s] %s\n", m.Role, m.Text())
	}
	return b.String()
}
