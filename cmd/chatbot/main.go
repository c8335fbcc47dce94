package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Heisenberg208/chatbot-platform/internal/auth"
	"github.com/Heisenberg208/chatbot-platform/internal/core"
)

// Version information (injected at build time)
var Version = "dev"

type globalFlags struct {
	home   string
	apiURL string
	debug  bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}

	root := &cobra.Command{
		Use:   "chatbot",
		Short: "Chat with your projects from the terminal",
		Long: `chatbot - a command line client for the chatbot platform

Log in, pick a project and hold a multi-turn conversation with its
assistant. Projects carry system prompts that shape every reply.`,
		Version:      Version,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	root.PersistentFlags().StringVar(&g.home, "home", "", "Directory for the credential and config files (default $CHATBOT_HOME)")
	root.PersistentFlags().StringVar(&g.apiURL, "api-url", "", "Service base URL (default $CHATBOT_API_URL)")
	root.PersistentFlags().BoolVar(&g.debug, "debug", false, "Enable debug logging")

	root.AddCommand(
		loginCmd(g),
		registerCmd(g),
		logoutCmd(g),
		statusCmd(g),
		projectsCmd(g),
		promptsCmd(g),
		chatCmd(g),
	)

	return root
}

// openClient builds a client from config, flags and the credential file.
func openClient(cmd *cobra.Command, g *globalFlags) (*core.Client, error) {
	cfg, err := core.LoadConfigFrom(g.home)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if g.apiURL != "" {
		cfg.APIURL = g.apiURL
	}
	if g.debug {
		cfg.LogLevel = "debug"
	}

	logger := core.SetupLogging(cfg.LogLevel, cmd.ErrOrStderr())

	c, err := core.NewClient(cfg, auth.NewFileStore(cfg.Home), logger)
	if err != nil {
		return nil, err
	}

	c.OnSignedOut(func(e auth.Event) {
		if e.Kind == auth.EventRejected {
			fmt.Fprintln(cmd.ErrOrStderr(), "🔒 Your session has expired. Run `chatbot login` to sign in again.")
		}
	})
	return c, nil
}

// startSession opens the client and requires a usable credential.
func startSession(cmd *cobra.Command, g *globalFlags) (*core.Client, error) {
	c, err := openClient(cmd, g)
	if err != nil {
		return nil, err
	}

	ok, err := c.Start(cmd.Context())
	if !ok {
		if err != nil && core.Classify(err) != core.ClassAuthRejected {
			return nil, err
		}
		return nil, fmt.Errorf("%w: run `chatbot login` first", core.ErrNotAuthenticated)
	}
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "⚠️  Could not load projects: %v\n", err)
	}
	return c, nil
}
