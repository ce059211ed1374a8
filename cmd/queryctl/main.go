// Package main 命令行查询工具：跑一次完整的推荐编排并打印结果
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"scholar-rec-api/internal/application/recommend"
	"scholar-rec-api/internal/config"
	einoobs "scholar-rec-api/internal/observability/eino"
	"scholar-rec-api/internal/wire"
	"scholar-rec-api/pkg/logger"
)

func main() {
	query := flag.String("query", "", "research query to run (required)")
	projectID := flag.String("project", "", "project ID to personalize and persist against (optional)")
	provider := flag.String("provider", "", "LLM provider override (optional)")
	model := flag.String("model", "", "LLM model override (optional)")
	timeout := flag.Duration("timeout", 5*time.Minute, "overall run timeout")
	asJSON := flag.Bool("json", false, "print the full terminal payload as JSON")
	flag.Parse()

	if *query == "" {
		fmt.Fprintln(os.Stderr, "usage: queryctl -query \"...\" [-project <uuid>] [-provider name] [-model name]")
		os.Exit(2)
	}

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(
		cfg.Observability.Logging.Level,
		cfg.Observability.Logging.Format,
	)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	app, cleanup, err := wire.InitializeApp(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize: %v\n", err)
		os.Exit(1)
	}
	defer cleanup()

	einoobs.Init(app.UsageRecorder)

	state, err := app.Graph.Run(ctx, recommend.RunInput{
		ProjectID: *projectID,
		Query:     *query,
		Provider:  *provider,
		Model:     *model,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "run failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("run %s finished in %d steps\n\n", state.RunID, len(state.Steps))
	for i, step := range state.Steps {
		fmt.Printf("%2d. [%s] %s\n", i+1, step.State, step.Description)
	}

	if len(state.Errors) > 0 {
		fmt.Println("\ndiagnostics:")
		for _, e := range state.Errors {
			fmt.Printf("  - %s\n", e)
		}
	}

	if state.Payload == nil {
		fmt.Println("\nno terminal payload produced")
		os.Exit(1)
	}

	if *asJSON {
		out, err := json.MarshalIndent(state.Payload, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to encode payload: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("\n%s\n", out)
		return
	}

	fmt.Printf("\nresult: %s\n", state.Payload.State)
	switch {
	case len(state.Payload.Papers) > 0:
		for _, p := range state.Payload.Papers {
			fmt.Printf("\n[%s #%d] %s\n", p.Paper.ContentHash[:12], p.Rank, p.Paper.Title)
			fmt.Printf("    tier: %s\n", p.Tier)
			if p.Summary != "" {
				fmt.Printf("    %s\n", p.Summary)
			}
		}
	case state.Payload.Explanation != "":
		fmt.Println(state.Payload.Explanation)
		for k, v := range state.Payload.ClosestMiss {
			fmt.Printf("  closest miss %s: %s\n", k, v)
		}
	}
}
