package cli

import (
	"github.com/spf13/cobra"

	"github.com/inkpress/blogkit/internal/router"
	"github.com/inkpress/blogkit/internal/session"
)

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "blogctl",
		Short: "Read, write and publish blog posts from the terminal",
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd.Context())
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(a.opts.Out)
	root.SetErr(a.opts.Err)

	root.PersistentFlags().StringVar(&a.apiBase, "api", "", "API base URL (default $BLOG_API_BASE or http://localhost:$PORT)")
	root.PersistentFlags().IntVar(&a.workers, "workers", 4, "concurrent calls for batch commands")

	root.AddCommand(
		a.newLoginCmd(),
		a.newLogoutCmd(),
		a.newWhoamiCmd(),
		a.newPostsCmd(),
		a.newMeCmd(),
		a.newServeCmd(),
	)
	return root
}

type loginOutput struct {
	UserID   string `json:"user_id,omitempty"`
	Redirect string `json:"redirect"`
}

func (a *app) newLoginCmd() *cobra.Command {
	var username, password, redirect string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the access token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if err := a.connect(ctx); err != nil {
				return err
			}
			res, err := a.auth.Login(ctx, username, password)
			if err != nil {
				return err
			}
			if err := a.store.Set(ctx, res.AccessToken); err != nil {
				return err
			}
			a.log.Info().Str("username", username).Msg("signed in")

			id, _ := session.SubjectFromToken(res.AccessToken)
			return a.print(loginOutput{UserID: id, Redirect: loginTarget(a.guard, redirect)})
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "account name")
	cmd.Flags().StringVarP(&password, "password", "p", "", "account password")
	cmd.Flags().StringVar(&redirect, "redirect", "", "path to continue to after signing in")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

// loginTarget returns redirect when it names a known route, else home.
func loginTarget(g *router.Guard, redirect string) string {
	if redirect == "" {
		return "/"
	}
	if _, _, ok := g.Match(redirect); !ok {
		return "/"
	}
	return redirect
}

func (a *app) newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored access token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if err := a.connect(ctx); err != nil {
				return err
			}
			if err := a.store.Clear(ctx); err != nil {
				return err
			}
			return a.print(map[string]bool{"ok": true})
		},
	}
}

type whoamiOutput struct {
	SignedIn bool   `json:"signed_in"`
	UserID   string `json:"user_id,omitempty"`
}

func (a *app) newWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the user id carried by the stored token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if err := a.connect(ctx); err != nil {
				return err
			}
			id, ok := session.CurrentUserID(ctx, a.store)
			return a.print(whoamiOutput{SignedIn: ok, UserID: id})
		},
	}
}
