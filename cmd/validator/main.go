// cmd/validator/main.go
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"saas-validator/internal/agent"
	"saas-validator/internal/common/config"
	"saas-validator/internal/common/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	if err := cfg.Validate(); err != nil {
		zapLog.Fatal("invalid configuration", zap.Error(err))
	}

	validator := agent.New(cfg, nil, log)
	defer validator.Close()

	ctx := context.Background()

	// One-shot mode: the query is passed as arguments.
	if len(os.Args) > 1 {
		runOnce(ctx, validator, strings.Join(os.Args[1:], " "))
		return
	}

	fmt.Println("SaaS Validator — describe a business idea, or 'quit' to exit.")
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		query := strings.TrimSpace(scanner.Text())
		switch strings.ToLower(query) {
		case "quit", "exit", "q":
			return
		case "":
			continue
		}
		runOnce(ctx, validator, query)
	}
}

func runOnce(ctx context.Context, validator *agent.Agent, query string) {
	result := validator.Run(ctx, query)
	if !result.Success {
		fmt.Printf("Error: %s\n", result.Error)
		return
	}
	for _, line := range result.Recommendations {
		fmt.Println(line)
	}
	fmt.Printf("\n(took %.2fs)\n", result.ProcessingTime)
}
