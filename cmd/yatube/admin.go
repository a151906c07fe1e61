package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/DariaKalinichenko/Yatube/internal/app/domain/group"
	"github.com/DariaKalinichenko/Yatube/internal/app/runtime"
	"github.com/DariaKalinichenko/Yatube/internal/app/services/users"
)

func newCreateUserCommand() *cobra.Command {
	var reg users.Registration
	cmd := &cobra.Command{
		Use:   "createuser",
		Short: "Create a user account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApplication(requirePostgres, func(ctx context.Context, a *runtime.Application) error {
				u, err := a.App().Users.Register(ctx, reg)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "created user %s (id %d)\n", u.Username, u.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&reg.Username, "username", "", "login name")
	cmd.Flags().StringVar(&reg.Email, "email", "", "email address")
	cmd.Flags().StringVar(&reg.Password, "password", "", "password")
	cmd.Flags().StringVar(&reg.FirstName, "first-name", "", "first name")
	cmd.Flags().StringVar(&reg.LastName, "last-name", "", "last name")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newCreateGroupCommand() *cobra.Command {
	var g group.Group
	cmd := &cobra.Command{
		Use:   "creategroup",
		Short: "Create a post group",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApplication(requirePostgres, func(ctx context.Context, a *runtime.Application) error {
				created, err := a.App().Groups.Create(ctx, g)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "created group %s (id %d)\n", created.Slug, created.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&g.Title, "title", "", "display title")
	cmd.Flags().StringVar(&g.Slug, "slug", "", "URL slug")
	cmd.Flags().StringVar(&g.Description, "description", "", "description")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("slug")
	return cmd
}

func newCacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the page cache",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Drop every cached page",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApplication(requireSharedCache, func(ctx context.Context, a *runtime.Application) error {
				if err := a.App().Cache.Clear(ctx); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "page cache cleared")
				return nil
			})
		},
	})
	return cmd
}

func newListUsersCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "listusers",
		Short: "List registered users",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApplication(requirePostgres, func(ctx context.Context, a *runtime.Application) error {
				list, err := a.App().Users.List(ctx)
				if err != nil {
					return err
				}
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tUSERNAME\tNAME\tJOINED")
				for _, u := range list {
					fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", u.ID, u.Username, u.FullName(), u.DateJoined.Format("2006-01-02"))
				}
				return w.Flush()
			})
		},
	}
}

func newDeletePostCommand() *cobra.Command {
	var id int64
	cmd := &cobra.Command{
		Use:   "deletepost",
		Short: "Delete a post with its comments and image",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApplication(requirePostgres, func(ctx context.Context, a *runtime.Application) error {
				if err := a.App().Posts.Delete(ctx, id); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deleted post %d\n", id)
				return nil
			})
		},
	}
	cmd.Flags().Int64Var(&id, "id", 0, "post id")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}
