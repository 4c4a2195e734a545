package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/inkpress/blogkit/internal/core/domain"
	"github.com/inkpress/blogkit/internal/infrastructure/queue"
	"github.com/inkpress/blogkit/internal/router"
)

func (a *app) newPostsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "posts",
		Short: "Browse and author posts",
	}
	cmd.AddCommand(
		a.newPostsListCmd(),
		a.newPostsShowCmd(),
		a.newPostsTagsCmd(),
		a.newPostsGetCmd(),
		a.newPostsCreateCmd(),
		a.newPostsUpdateCmd(),
		a.newPostsBatchCmd("publish", "Publish posts", func(ctx context.Context, id string) (*domain.Ack, error) {
			return a.posts.Publish(ctx, id)
		}),
		a.newPostsBatchCmd("delete", "Delete posts", func(ctx context.Context, id string) (*domain.Ack, error) {
			return a.posts.Delete(ctx, id)
		}),
	)
	return cmd
}

func (a *app) newPostsListCmd() *cobra.Command {
	var q domain.PublicListQuery
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List published posts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if err := a.connect(ctx); err != nil {
				return err
			}
			if err := a.enter(ctx, router.Home, nil); err != nil {
				return err
			}
			list, err := a.posts.ListPublic(ctx, q)
			if err != nil {
				return err
			}
			return a.print(list)
		},
	}
	cmd.Flags().IntVar(&q.Page, "page", 0, "page number")
	cmd.Flags().IntVar(&q.PageSize, "page-size", 0, "posts per page")
	cmd.Flags().StringVar(&q.Tag, "tag", "", "only posts with this tag")
	cmd.Flags().StringVarP(&q.Q, "query", "q", "", "search title and body")
	return cmd
}

func (a *app) newPostsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <slug>",
		Short: "Show a published post",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := a.connect(ctx); err != nil {
				return err
			}
			if err := a.enter(ctx, router.Post, map[string]string{"slug": args[0]}); err != nil {
				return err
			}
			post, err := a.posts.GetPublicBySlug(ctx, args[0])
			if err != nil {
				return err
			}
			return a.print(post)
		},
	}
}

func (a *app) newPostsTagsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tags",
		Short: "List tags with their post counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if err := a.connect(ctx); err != nil {
				return err
			}
			tags, err := a.posts.ListTags(ctx)
			if err != nil {
				return err
			}
			return a.print(tags)
		},
	}
}

func (a *app) newPostsGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one of your posts with its source",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := a.connect(ctx); err != nil {
				return err
			}
			if err := a.enter(ctx, router.Edit, map[string]string{"id": args[0]}); err != nil {
				return err
			}
			post, err := a.posts.GetAdminByID(ctx, args[0])
			if err != nil {
				return err
			}
			return a.print(post)
		},
	}
}

type postFlags struct {
	title      string
	slug       string
	excerpt    string
	body       string
	bodyFile   string
	tags       []string
	status     string
	visibility string
}

func (p *postFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&p.title, "title", "", "post title")
	fs.StringVar(&p.slug, "slug", "", "URL slug (derived from the title when empty)")
	fs.StringVar(&p.excerpt, "excerpt", "", "short summary")
	fs.StringVar(&p.body, "body", "", "Markdown body")
	fs.StringVar(&p.bodyFile, "body-file", "", "read the Markdown body from a file")
	fs.StringSliceVar(&p.tags, "tag", nil, "tag name, repeatable")
	fs.StringVar(&p.status, "status", "", "draft or published")
	fs.StringVar(&p.visibility, "visibility", "", "public or private")
	cmd.MarkFlagsMutuallyExclusive("body", "body-file")
}

// apply copies the flags the user set onto in.
func (p *postFlags) apply(cmd *cobra.Command, in *domain.PostInput) error {
	fs := cmd.Flags()
	if fs.Changed("title") {
		in.Title = p.title
	}
	if fs.Changed("slug") {
		in.Slug = p.slug
	}
	if fs.Changed("excerpt") {
		excerpt := p.excerpt
		in.Excerpt = &excerpt
	}
	if fs.Changed("body") {
		in.BodyMD = p.body
	}
	if fs.Changed("body-file") {
		b, err := os.ReadFile(p.bodyFile)
		if err != nil {
			return fmt.Errorf("read body: %w", err)
		}
		in.BodyMD = string(b)
	}
	if fs.Changed("tag") {
		in.Tags = append([]string{}, p.tags...)
	}
	if fs.Changed("status") {
		in.Status = domain.Status(p.status)
	}
	if fs.Changed("visibility") {
		in.Visibility = domain.Visibility(p.visibility)
	}
	return nil
}

func (a *app) newPostsCreateCmd() *cobra.Command {
	var pf postFlags
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Write a new post",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if err := a.connect(ctx); err != nil {
				return err
			}
			if err := a.enter(ctx, router.New, nil); err != nil {
				return err
			}
			var in domain.PostInput
			if err := pf.apply(cmd, &in); err != nil {
				return err
			}
			created, err := a.posts.Create(ctx, in)
			if err != nil {
				return err
			}
			return a.print(created)
		},
	}
	pf.register(cmd)
	return cmd
}

// newPostsUpdateCmd loads the post, overlays the given flags and saves the
// whole post back.
func (a *app) newPostsUpdateCmd() *cobra.Command {
	var pf postFlags
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Edit one of your posts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id := args[0]
			if err := a.connect(ctx); err != nil {
				return err
			}
			if err := a.enter(ctx, router.Edit, map[string]string{"id": id}); err != nil {
				return err
			}
			cur, err := a.posts.GetAdminByID(ctx, id)
			if err != nil {
				return err
			}
			in := domain.PostInput{
				Title:      cur.Title,
				Slug:       cur.Slug,
				Excerpt:    cur.Excerpt,
				BodyMD:     cur.BodyMD,
				Tags:       cur.Tags,
				Status:     cur.Status,
				Visibility: cur.Visibility,
			}
			if err := pf.apply(cmd, &in); err != nil {
				return err
			}
			ack, err := a.posts.Update(ctx, id, in)
			if err != nil {
				return err
			}
			return a.print(ack)
		},
	}
	pf.register(cmd)
	return cmd
}

type batchResult struct {
	ID    string `json:"id"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

func (a *app) newPostsBatchCmd(use, short string, call func(context.Context, string) (*domain.Ack, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <id>...",
		Short: short,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, ids []string) error {
			ctx := cmd.Context()
			if err := a.connect(ctx); err != nil {
				return err
			}
			for _, id := range ids {
				if err := a.enter(ctx, router.Edit, map[string]string{"id": id}); err != nil {
					return err
				}
			}
			return a.runBatch(ctx, ids, call)
		},
	}
}

// runBatch calls fn once per id on the worker pool and prints one result
// per id in argument order.
func (a *app) runBatch(ctx context.Context, ids []string, fn func(context.Context, string) (*domain.Ack, error)) error {
	jobs := make([]queue.Job, len(ids))
	for i, id := range ids {
		jobs[i] = queue.Job{
			Key: id,
			Run: func(ctx context.Context) error {
				_, err := fn(ctx, id)
				return err
			},
		}
	}

	results := a.jobs.Run(ctx, jobs)
	out := make([]batchResult, len(results))
	failed := 0
	for i, r := range results {
		out[i] = batchResult{ID: r.Key, OK: r.Err == nil}
		if r.Err != nil {
			out[i].Error = r.Err.Error()
			failed++
		}
	}
	if err := a.print(out); err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d posts failed", failed, len(ids))
	}
	return nil
}
