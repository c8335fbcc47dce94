package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func projectsCmd(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "projects",
		Short: "List and create projects",
	}
	cmd.AddCommand(projectsListCmd(g), projectsCreateCmd(g))
	return cmd
}

func projectsListCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List your projects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := startSession(cmd, g)
			if err != nil {
				return err
			}

			list := c.Projects.Projects()
			out := cmd.OutOrStdout()
			if len(list) == 0 {
				fmt.Fprintln(out, "No projects yet. Create one with `chatbot projects create <name>`.")
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tCREATED\tDESCRIPTION")
			for _, p := range list {
				created := ""
				if !p.CreatedAt.IsZero() {
					created = humanize.Time(p.CreatedAt.Time)
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", p.ID, p.Name, created, p.Description)
			}
			return w.Flush()
		},
	}
}

func projectsCreateCmd(g *globalFlags) *cobra.Command {
	var description string

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a project",
		Example: `  chatbot projects create "Support bot"
  chatbot projects create Docs --description "Answers questions about the docs"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := startSession(cmd, g)
			if err != nil {
				return err
			}

			p, err := c.CreateProject(cmd.Context(), strings.Join(args, " "), description)
			if p == nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "✅ Created project %s (%s)\n", p.Name, p.ID)
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "⚠️  %v\n", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&description, "description", "d", "", "Project description")
	return cmd
}
