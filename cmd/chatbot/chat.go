package main

import (
	"github.com/spf13/cobra"

	"github.com/Heisenberg208/chatbot-platform/internal/core"
)

func chatCmd(g *globalFlags) *cobra.Command {
	var projectID string

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive conversation",
		Long: `Start an interactive conversation with a project's assistant.

Every line you type is sent as one message. Lines starting with / are
commands; type /help inside the chat to list them.`,
		Example: "  chatbot chat --project 3f2a9c",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := startSession(cmd, g)
			if err != nil {
				return err
			}
			if _, err := c.SelectProject(projectID); err != nil {
				return err
			}

			return core.NewChatLoop(c, cmd.InOrStdin(), cmd.OutOrStdout()).Run(cmd.Context())
		},
	}

	cmd.Flags().StringVarP(&projectID, "project", "p", "", "Project id")
	_ = cmd.MarkFlagRequired("project")
	return cmd
}
