package core

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/Heisenberg208/chatbot-platform/internal/conversation"
)

// ChatLoop runs an interactive conversation on the current project.
type ChatLoop struct {
	Client *Client
	In     io.Reader
	Out    io.Writer
}

// NewChatLoop creates a chat loop reading lines from in.
func NewChatLoop(client *Client, in io.Reader, out io.Writer) *ChatLoop {
	return &ChatLoop{Client: client, In: in, Out: out}
}

const chatHelp = `Commands:
  /clear          start a new conversation
  /prompts        list the project's system prompts
  /prompt <text>  add a system prompt
  /context        show what the assistant will see
  /save <file>    export the conversation as YAML
  /quit           leave the chat`

// Run reads lines until EOF or /quit. It returns ErrNotAuthenticated if the
// credential is rejected mid-conversation.
func (l *ChatLoop) Run(ctx context.Context) error {
	project, ok := l.Client.Projects.Current()
	if !ok {
		return ErrNoProject
	}

	fmt.Fprintln(l.Out, titleStyle.Render("💬 "+project.Name))
	fmt.Fprintln(l.Out, "Type /help for commands.")

	scanner := bufio.NewScanner(l.In)
	for {
		fmt.Fprint(l.Out, userLabelStyle.Render("you")+" > ")
		if !scanner.Scan() {
			fmt.Fprintln(l.Out)
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		quit, err := l.handle(ctx, line)
		if err != nil {
			return err
		}
		if quit {
			return nil
		}
		if !l.Client.Auth.IsAuthenticated() {
			fmt.Fprintln(l.Out, errorStyle.Render("🔒 Signed out. Run `chatbot login` to continue."))
			return ErrNotAuthenticated
		}
	}
}

func (l *ChatLoop) handle(ctx context.Context, line string) (bool, error) {
	cmd, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch cmd {
	case "":
		return false, nil

	case "/quit", "/exit":
		return true, nil

	case "/help":
		fmt.Fprintln(l.Out, chatHelp)

	case "/clear":
		l.Client.ClearChat()
		fmt.Fprintln(l.Out, "🧹 Conversation cleared")

	case "/prompts":
		l.listPrompts(ctx)

	case "/prompt":
		l.addPrompt(ctx, arg)

	case "/context":
		preview, err := l.Client.ContextPreview(ctx)
		if err != nil {
			l.notice(err)
			return false, nil
		}
		fmt.Fprint(l.Out, systemLabelStyle.Render(preview))
		fmt.Fprintln(l.Out)

	case "/save":
		if arg == "" {
			fmt.Fprintln(l.Out, "usage: /save <file>")
			return false, nil
		}
		if err := l.Client.Export(arg); err != nil {
			l.notice(err)
			return false, nil
		}
		fmt.Fprintf(l.Out, "💾 Saved to %s\n", arg)

	default:
		if strings.HasPrefix(cmd, "/") {
			fmt.Fprintf(l.Out, "Unknown command %s. Type /help for commands.\n", cmd)
			return false, nil
		}
		l.send(ctx, line)
	}

	return false, nil
}

func (l *ChatLoop) send(ctx context.Context, text string) {
	res, err := l.Client.Send(ctx, text)
	if err != nil {
		l.notice(err)
		return
	}

	switch res.Outcome {
	case conversation.Replied:
		fmt.Fprintf(l.Out, "%s > %s\n", assistantLabelStyle.Render("assistant"), res.Reply.Content)
	case conversation.Failed:
		fmt.Fprintf(l.Out, "%s > %s\n", assistantLabelStyle.Render("assistant"), errorStyle.Render(res.Reply.Content))
	}
	// Ignored and Discarded sends leave nothing to show.
}

func (l *ChatLoop) listPrompts(ctx context.Context) {
	reg, err := l.Client.Prompts()
	if err != nil {
		l.notice(err)
		return
	}
	if err := reg.List(ctx); err != nil {
		l.notice(err)
		if !reg.Loaded() {
			return
		}
	}

	list := reg.Prompts()
	if len(list) == 0 {
		fmt.Fprintln(l.Out, "No system prompts. The default one is used.")
		return
	}
	for i, p := range list {
		fmt.Fprintf(l.Out, "  %d. %s\n", i+1, truncate(p.Content, 80))
	}
}

func (l *ChatLoop) addPrompt(ctx context.Context, content string) {
	reg, err := l.Client.Prompts()
	if err != nil {
		l.notice(err)
		return
	}
	if _, err := reg.Add(ctx, content); err != nil {
		l.notice(err)
		return
	}
	fmt.Fprintln(l.Out, "✅ Prompt added")
	if err := reg.List(ctx); err != nil {
		l.notice(err)
	}
}

// notice prints a non-fatal error.
func (l *ChatLoop) notice(err error) {
	switch Classify(err) {
	case ClassValidation:
		fmt.Fprintf(l.Out, "⚠️  %v\n", err)
	case ClassAuthRejected:
		// Reported by Run once the loop sees the signed-out state.
	default:
		fmt.Fprintln(l.Out, errorStyle.Render(fmt.Sprintf("❌ %v", err)))
	}
}

// truncate shortens s to maxLen runes, adding an ellipsis.
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}
