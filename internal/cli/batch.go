package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/rvelikov/fallax/internal/model"
	"github.com/rvelikov/fallax/internal/pipeline"
	"github.com/rvelikov/fallax/internal/worker"
	"github.com/rvelikov/fallax/pkg/logging"
)

var (
	concurrency  int
	outputDir    string
	batchTimeout time.Duration
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Analyze multiple texts from a file in parallel",
	Long: `Batch processes multiple texts concurrently:
- Read texts from the input file (one per line, # comments skipped)
- Analyze texts in parallel with a configurable worker count
- Write one JSON report per text into the output directory

Example:
  fallax batch arguments.txt
  fallax batch arguments.txt --concurrency 8 --output-dir ./reports
  fallax batch arguments.txt --min-confidence 60 --no-rewrite`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	// Concurrency flags
	batchCmd.Flags().IntVar(&concurrency, "concurrency", 4, "number of concurrent analyses")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "./fallax-reports", "output directory for reports")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 10*time.Minute, "total timeout for batch processing")

	// Pipeline flags shared with analyze
	batchCmd.Flags().IntVar(&minConfidence, "min-confidence", 0, "drop fallacies below this confidence (0-100)")
	batchCmd.Flags().BoolVar(&noRewrite, "no-rewrite", false, "skip the balanced rewrite")
	batchCmd.Flags().DurationVar(&budget, "budget", 10*time.Second, "wall-clock budget per analysis")
	batchCmd.Flags().BoolVar(&noLangGate, "no-language-gate", false, "skip the English-likeness check")

	// LLM flags
	batchCmd.Flags().StringVar(&llmProvider, "llm-provider", "openai", "reasoning provider (openai, anthropic, ollama)")
	batchCmd.Flags().StringVar(&llmModel, "llm-model", "", "reasoning model name")
}

func runBatch(cmd *cobra.Command, args []string) error {
	file := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	cfg, err := buildConfig()
	if err != nil {
		return err
	}
	// Identical lines across the batch hit the cache instead of the provider.
	cfg.Cache.Enabled = true

	logger := logging.New(verbose)
	p, err := pipeline.New(cfg, logger)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	opts := model.AnalysisOptions{
		IncludeRewrite: !noRewrite,
		MinConfidence:  minConfidence,
	}

	fmt.Fprintf(os.Stderr, "Input file: %s\n", file)
	fmt.Fprintf(os.Stderr, "Workers:    %d\n", concurrency)
	fmt.Fprintf(os.Stderr, "Output dir: %s\n\n", outputDir)

	processor := worker.NewBatchProcessor(p, concurrency)
	results, err := processor.ProcessFile(ctx, file, opts)
	if err != nil {
		return fmt.Errorf("process file: %w", err)
	}

	successCount := 0
	failureCount := 0

	for _, res := range results {
		if res.Error != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "FAIL line %d: %v\n", res.Index+1, res.Error)
			continue
		}

		successCount++

		outPath := filepath.Join(outputDir, fmt.Sprintf("analysis-%03d.json", res.Index+1))
		data, err := json.MarshalIndent(res.Result, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "FAIL line %d: marshal report: %v\n", res.Index+1, err)
			continue
		}
		if err := os.WriteFile(outPath, data, 0644); err != nil {
			fmt.Fprintf(os.Stderr, "FAIL line %d: write report: %v\n", res.Index+1, err)
			continue
		}

		fmt.Fprintf(os.Stderr, "ok   line %d: %s\n", res.Index+1, res.Result.Summary.Message)
	}

	fmt.Fprintf(os.Stderr, "\nTotal: %d  Success: %d  Failures: %d\n", len(results), successCount, failureCount)
	fmt.Fprintf(os.Stderr, "Reports written to %s\n", outputDir)

	return nil
}
