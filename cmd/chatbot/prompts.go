package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Heisenberg208/chatbot-platform/internal/prompts"
)

func promptsCmd(g *globalFlags) *cobra.Command {
	var projectID string

	cmd := &cobra.Command{
		Use:   "prompts",
		Short: "Manage a project's system prompts",
	}
	cmd.PersistentFlags().StringVarP(&projectID, "project", "p", "", "Project id")
	_ = cmd.MarkPersistentFlagRequired("project")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List system prompts in creation order",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				reg, err := openRegistry(cmd, g, projectID)
				if err != nil {
					return err
				}
				if err := reg.List(cmd.Context()); err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				list := reg.Prompts()
				if len(list) == 0 {
					fmt.Fprintln(out, "No system prompts. The default one is used.")
					return nil
				}
				for i, p := range list {
					fmt.Fprintf(out, "%d. %s\n", i+1, p.Content)
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "add <content>",
			Short: "Add a system prompt",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				reg, err := openRegistry(cmd, g, projectID)
				if err != nil {
					return err
				}
				if _, err := reg.Add(cmd.Context(), strings.Join(args, " ")); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "✅ Prompt added")
				return nil
			},
		},
	)
	return cmd
}

func openRegistry(cmd *cobra.Command, g *globalFlags, projectID string) (*prompts.Registry, error) {
	c, err := startSession(cmd, g)
	if err != nil {
		return nil, err
	}
	if _, err := c.SelectProject(projectID); err != nil {
		return nil, err
	}
	return c.Prompts()
}
