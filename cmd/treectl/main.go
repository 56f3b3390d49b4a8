package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"familytree/internal/cli"
	"familytree/internal/client"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	server := flag.String("server", envOr("FAMILYTREE_URL", "http://localhost:5001"), "API base URL")
	token := flag.String("token", os.Getenv("FAMILYTREE_TOKEN"), "bearer token for write commands")
	email := flag.String("email", os.Getenv("FAMILYTREE_EMAIL"), "sign in with this email before running the command")
	password := flag.String("password", os.Getenv("FAMILYTREE_PASSWORD"), "password for -email")
	statePath := flag.String("state", defaultStatePath(), "view state file (YAML)")
	seedRoot := flag.String("seed-root", os.Getenv("SEED_ROOT_NAME"), "create a root with this name when the tree is empty")
	flag.Usage = func() {
		fmt.Fprintln(flag.CommandLine.Output(), "usage: treectl [flags] <command> [args]; run 'treectl' without a command for the command list")
		flag.PrintDefaults()
	}
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	api := client.New(*server, *token)
	if *email != "" {
		if _, err := api.Signin(ctx, *email, *password); err != nil {
			fmt.Fprintf(os.Stderr, "treectl: sign in: %v\n", err)
			os.Exit(1)
		}
	}

	app := &cli.App{
		Store:     api,
		StatePath: *statePath,
		SeedRoot:  *seedRoot,
		Out:       os.Stdout,
	}
	if err := app.Run(ctx, flag.Args()); err != nil {
		fmt.Fprintf(os.Stderr, "treectl: %v\n", err)
		if errors.Is(err, cli.ErrUsage) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func defaultStatePath() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "familytree", "view.yaml")
	}
	return "familytree-view.yaml"
}
