package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"blog-service/internal/auth"
	"blog-service/internal/client"
	"blog-service/internal/post"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/spf13/cobra"
)

func loginCmd(opts *globalOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Log in and print the access token",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := client.New(opts.baseURL)
			tr, err := c.Login(cmd.Context(), opts.username, opts.password)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tr.AccessToken)
			return nil
		},
	}
}

func listCmd(opts *globalOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all posts",
		RunE: func(cmd *cobra.Command, args []string) error {
			posts, err := client.New(opts.baseURL).ListPosts(cmd.Context())
			if err != nil {
				return err
			}
			printPosts(cmd.OutOrStdout(), posts)
			return nil
		},
	}
}

func seedCmd(opts *globalOpts) *cobra.Command {
	var count int
	var seed int64
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create fake posts through the API",
		RunE: func(cmd *cobra.Command, args []string) error {
			if count < 1 {
				return errors.New("--count must be at least 1")
			}
			c := client.New(opts.baseURL)
			if _, err := c.Login(cmd.Context(), opts.username, opts.password); err != nil {
				return fmt.Errorf("login: %w", err)
			}
			created, err := seedPosts(cmd.Context(), c, gofakeit.New(seed), count)
			printPosts(cmd.OutOrStdout(), created)
			return err
		},
	}
	cmd.Flags().IntVar(&count, "count", 10, "number of posts to create")
	cmd.Flags().Int64Var(&seed, "seed", time.Now().UnixNano(), "faker seed")
	return cmd
}

func hashPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password <password>",
		Short: "Print a bcrypt hash for AUTH_PASSWORD_HASH",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := auth.HashPassword(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), h)
			return nil
		},
	}
}

// seedPosts stops at the first failure and returns what was created so far.
func seedPosts(ctx context.Context, c *client.Client, f *gofakeit.Faker, n int) ([]post.Post, error) {
	out := make([]post.Post, 0, n)
	for i := 0; i < n; i++ {
		p, err := c.CreatePost(ctx, post.Post{
			Title:  strings.TrimSuffix(f.Sentence(5), "."),
			Text:   f.Paragraph(2, 4, 12, "\n"),
			Author: f.Name(),
		})
		if err != nil {
			return out, fmt.Errorf("create post %d/%d: %w", i+1, n, err)
		}
		out = append(out, p)
	}
	return out, nil
}

func printPosts(w io.Writer, posts []post.Post) {
	for _, p := range posts {
		fmt.Fprintf(w, "%-6d %-40.40s %s\n", p.ID, p.Title, p.Author)
	}
}
