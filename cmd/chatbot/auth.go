package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/Heisenberg208/chatbot-platform/internal/core"
)

func loginCmd(g *globalFlags) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the credential",
		Long: `Sign in with your email and password. The credential is stored in the
home directory and used by every other command until you log out or it
expires.

Examples:
  chatbot login
  chatbot login --email me@example.com`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := openClient(cmd, g)
			if err != nil {
				return err
			}

			p := newPrompter(cmd.InOrStdin(), cmd.OutOrStdout())
			if email == "" {
				if email, err = p.line("Email: "); err != nil {
					return err
				}
			}
			if password == "" {
				if password, err = p.password("Password: "); err != nil {
					return err
				}
			}

			err = c.Login(cmd.Context(), email, password)
			if err != nil && !c.Auth.IsAuthenticated() {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "✅ Logged in as %s\n", email)
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "⚠️  %v\n", err)
				return nil
			}
			fmt.Fprintf(out, "   %d project(s) available\n", len(c.Projects.Projects()))
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&password, "password", "", "Account password (prompted when omitted)")
	return cmd
}

func registerCmd(g *globalFlags) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := openClient(cmd, g)
			if err != nil {
				return err
			}

			p := newPrompter(cmd.InOrStdin(), cmd.OutOrStdout())
			if email == "" {
				if email, err = p.line("Email: "); err != nil {
					return err
				}
			}
			if password == "" {
				if password, err = p.password("Password (8-100 characters): "); err != nil {
					return err
				}
			}

			u, err := c.Register(cmd.Context(), email, password)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "✅ Account created for %s. Run `chatbot login` to sign in.\n", u.Email)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&password, "password", "", "Account password (prompted when omitted)")
	return cmd
}

func logoutCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Erase the stored credential",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := openClient(cmd, g)
			if err != nil {
				return err
			}
			if _, err := c.Auth.Initialize(); err != nil {
				return err
			}

			c.Logout()
			fmt.Fprintln(cmd.OutOrStdout(), "👋 Logged out")
			return nil
		},
	}
}

func statusCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show service health and login state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := openClient(cmd, g)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			fmt.Fprintf(out, "Service:  %s\n", c.API.BaseURL())
			if h, err := c.API.Health(cmd.Context()); err != nil {
				fmt.Fprintf(out, "Health:   unreachable (%v)\n", err)
			} else {
				fmt.Fprintf(out, "Health:   %s (database %s)\n", h.Status, h.Database)
			}

			ok, err := c.Start(cmd.Context())
			if !ok {
				if err != nil && core.Classify(err) != core.ClassAuthRejected {
					return err
				}
				fmt.Fprintln(out, "Account:  not logged in")
				return nil
			}

			me, meErr := c.API.Me(cmd.Context())
			switch {
			case meErr == nil:
				fmt.Fprintf(out, "Account:  %s\n", me.Email)
			case !c.Auth.IsAuthenticated():
				fmt.Fprintln(out, "Account:  not logged in")
				return nil
			default:
				fmt.Fprintf(out, "Account:  unknown (%v)\n", meErr)
			}

			if exp := c.Auth.ExpiresAt(); !exp.IsZero() {
				fmt.Fprintf(out, "Expires:  %s\n", humanize.Time(exp))
			}
			if err != nil {
				fmt.Fprintf(out, "Projects: unavailable (%v)\n", err)
			} else {
				fmt.Fprintf(out, "Projects: %d\n", len(c.Projects.Projects()))
			}
			return nil
		},
	}
}
