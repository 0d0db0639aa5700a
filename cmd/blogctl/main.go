package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	_ = godotenv.Load()

	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type globalOpts struct {
	baseURL  string
	username string
	password string
}

func rootCmd() *cobra.Command {
	opts := &globalOpts{}
	root := &cobra.Command{
		Use:           "blogctl",
		Short:         "Operator tool for blog-service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.baseURL, "url", envOr("BLOG_URL", "http://localhost:8080"), "blog-service base URL")
	root.PersistentFlags().StringVar(&opts.username, "username", envOr("AUTH_USERNAME", "blog@gmail.net"), "login name")
	root.PersistentFlags().StringVar(&opts.password, "password", envOr("AUTH_PASSWORD", "123456"), "login password")

	root.AddCommand(
		loginCmd(opts),
		listCmd(opts),
		seedCmd(opts),
		hashPasswordCmd(),
	)
	return root
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}
