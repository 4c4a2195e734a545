package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/inkpress/blogkit/internal/core/domain"
	"github.com/inkpress/blogkit/internal/router"
)

func (a *app) newMeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "me",
		Short: "Your profile and posts",
	}
	cmd.AddCommand(
		a.newMeShowCmd(),
		a.newMeUpdateCmd(),
		a.newMePostsCmd(),
		a.newMeAvatarCmd(),
	)
	return cmd
}

func (a *app) newMeShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show your profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if err := a.connect(ctx); err != nil {
				return err
			}
			if err := a.enter(ctx, router.Me, nil); err != nil {
				return err
			}
			me, err := a.profile.GetMe(ctx)
			if err != nil {
				return err
			}
			return a.print(me)
		},
	}
}

func (a *app) newMeUpdateCmd() *cobra.Command {
	var displayName, avatarURL, motto string
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Change profile fields",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fs := cmd.Flags()
			var patch domain.ProfilePatch
			if fs.Changed("display-name") {
				patch.DisplayName = &displayName
			}
			if fs.Changed("avatar-url") {
				patch.AvatarURL = &avatarURL
			}
			if fs.Changed("motto") {
				patch.Motto = &motto
			}
			if patch == (domain.ProfilePatch{}) {
				return errors.New("nothing to update")
			}

			ctx := cmd.Context()
			if err := a.connect(ctx); err != nil {
				return err
			}
			if err := a.enter(ctx, router.Me, nil); err != nil {
				return err
			}
			ack, err := a.profile.UpdateMe(ctx, patch)
			if err != nil {
				return err
			}
			return a.print(ack)
		},
	}
	cmd.Flags().StringVar(&displayName, "display-name", "", "name shown on your posts")
	cmd.Flags().StringVar(&avatarURL, "avatar-url", "", "avatar image URL")
	cmd.Flags().StringVar(&motto, "motto", "", "profile motto")
	return cmd
}

func (a *app) newMePostsCmd() *cobra.Command {
	var f domain.MyPostsFilter
	cmd := &cobra.Command{
		Use:   "posts",
		Short: "List your posts, drafts included",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if err := a.connect(ctx); err != nil {
				return err
			}
			if err := a.enter(ctx, router.Me, nil); err != nil {
				return err
			}
			list, err := a.profile.GetMyPosts(ctx, f)
			if err != nil {
				return err
			}
			return a.print(list)
		},
	}
	cmd.Flags().StringVar(&f.Status, "status", "", "draft, published or all")
	cmd.Flags().StringVar(&f.Visibility, "visibility", "", "public, private or all")
	cmd.Flags().IntVar(&f.Page, "page", 0, "page number")
	cmd.Flags().IntVar(&f.PageSize, "page-size", 0, "posts per page")
	return cmd
}

type avatarOutput struct {
	AvatarURL string `json:"avatar_url"`
}

// newMeAvatarCmd uploads an image and points the profile at it.
func (a *app) newMeAvatarCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "avatar <file>",
		Short: "Upload a new avatar image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := a.connect(ctx); err != nil {
				return err
			}
			if err := a.enter(ctx, router.Me, nil); err != nil {
				return err
			}

			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			url, err := a.profile.UploadAvatar(ctx, filepath.Base(args[0]), f)
			if err != nil {
				return err
			}
			if url == "" {
				return fmt.Errorf("upload of %s returned no file", args[0])
			}
			if _, err := a.profile.UpdateMe(ctx, domain.ProfilePatch{AvatarURL: &url}); err != nil {
				return err
			}
			return a.print(avatarOutput{AvatarURL: url})
		},
	}
}
