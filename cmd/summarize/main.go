package main

// Summarize one document:
//   go run ./cmd/summarize -i docs/notes.md

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"doc-summary/internal/bootstrap"
	"doc-summary/internal/shared/config"
	"doc-summary/internal/shared/telemetry"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	code := 0
	cmd := newRootCmd(stdout, stderr, &code)
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		return 1
	}
	return code
}

func newRootCmd(stdout, stderr io.Writer, code *int) *cobra.Command {
	var inputPath string

	cmd := &cobra.Command{
		Use:   "summarize -i <file>",
		Short: "Gemini document summary workflow",
		Long:  "Summarize a Markdown (or PDF/DOCX) document with Gemini, validate the result and persist it as JSON.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			*code = summarize(cmd.Context(), inputPath, stdout, stderr)
			return nil
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.Flags().StringVarP(&inputPath, "input", "i", "", "path to input Markdown file")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

func summarize(parent context.Context, inputPath string, stdout, stderr io.Writer) int {
	cfg := config.Load()
	telemetry.Setup(stderr, cfg.LogLevel)

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.Build(ctx, cfg, stdout)
	if err != nil {
		telemetry.Error("bootstrap build failed", map[string]any{"error": err.Error()})
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	defer func() {
		if err := app.Close(); err != nil {
			telemetry.Warn("shutdown", map[string]any{"error": err.Error()})
		}
	}()

	return app.Orchestrator.Run(ctx, inputPath)
}
