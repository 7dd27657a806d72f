package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/rvelikov/fallax/internal/model"
	"github.com/rvelikov/fallax/internal/pipeline"
	"github.com/rvelikov/fallax/pkg/logging"
)

var (
	inFile        string
	outJSON       bool
	outMD         bool
	minConfidence int
	noRewrite     bool
	noFooter      bool
	budget        time.Duration
	noLangGate    bool
	llmProvider   string
	llmModel      string
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze [text]",
	Short: "Analyze a text for reasoning fallacies",
	Long: `Analyze runs the full fallacy pipeline over one text:
- Validate the input (length, language)
- Detect fallacy occurrences with the configured reasoning provider
- Explain each occurrence in plain language
- Classify confidence and filter weak detections
- Generate a balanced rewrite of the argument

The text comes from the argument, --file, or stdin.

Example:
  fallax analyze "Only a fool would disagree with this plan."
  fallax analyze --file essay.txt --min-confidence 60
  cat essay.txt | fallax analyze --json
  fallax analyze --file essay.txt --llm-provider ollama --llm-model llama3.1:8b`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	// Input flags
	analyzeCmd.Flags().StringVarP(&inFile, "file", "f", "", "read the text from a file")

	// Output flags
	analyzeCmd.Flags().BoolVar(&outJSON, "json", false, "print the result as JSON")
	analyzeCmd.Flags().BoolVar(&outMD, "md", false, "print the result as Markdown")
	analyzeCmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown output")

	// Pipeline flags
	analyzeCmd.Flags().IntVar(&minConfidence, "min-confidence", 0, "drop fallacies below this confidence (0-100)")
	analyzeCmd.Flags().BoolVar(&noRewrite, "no-rewrite", false, "skip the balanced rewrite")
	analyzeCmd.Flags().DurationVar(&budget, "budget", 10*time.Second, "wall-clock budget for the analysis")
	analyzeCmd.Flags().BoolVar(&noLangGate, "no-language-gate", false, "skip the English-likeness check")

	// LLM flags
	analyzeCmd.Flags().StringVar(&llmProvider, "llm-provider", "openai", "reasoning provider (openai, anthropic, ollama)")
	analyzeCmd.Flags().StringVar(&llmModel, "llm-model", "", "reasoning model name")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	text, err := readInputText(args)
	if err != nil {
		return err
	}

	cfg, err := buildConfig()
	if err != nil {
		return err
	}

	logger := logging.New(verbose)
	p, err := pipeline.New(cfg, logger)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Pipeline.Budget+5*time.Second)
	defer cancel()

	opts := model.AnalysisOptions{
		IncludeRewrite: !noRewrite,
		MinConfidence:  minConfidence,
	}

	result, err := p.Analyze(ctx, text, opts)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	renderer := pipeline.NewRenderer(cfg.Output)
	switch {
	case outJSON:
		out, err := renderer.RenderJSON(result)
		if err != nil {
			return err
		}
		fmt.Println(out)
	case outMD:
		fmt.Print(renderer.RenderMarkdown(result))
	default:
		fmt.Print(renderer.RenderText(result))
	}

	return nil
}

// readInputText resolves the text from the argument, --file, or stdin.
func readInputText(args []string) (string, error) {
	if len(args) == 1 && args[0] != "" {
		return args[0], nil
	}

	if inFile != "" {
		data, err := os.ReadFile(inFile)
		if err != nil {
			return "", fmt.Errorf("read input file: %w", err)
		}
		return string(data), nil
	}

	stat, err := os.Stdin.Stat()
	if err == nil && (stat.Mode()&os.ModeCharDevice) == 0 {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}

	return "", fmt.Errorf("no input: pass the text as an argument, use --file, or pipe it on stdin")
}

// buildConfig assembles the effective configuration from defaults, the
// provider flags, and the environment.
func buildConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	cfg.Pipeline.Budget = budget
	cfg.Validation.LanguageGate = !noLangGate
	cfg.Output.Verbose = verbose
	cfg.Output.IncludeFooter = !noFooter

	cfg.LLM.Provider = strings.ToLower(llmProvider)
	cfg.LLM.Model = llmModel

	switch cfg.LLM.Provider {
	case "openai":
		cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
		if cfg.LLM.APIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable not set")
		}
	case "anthropic", "claude":
		cfg.LLM.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		if cfg.LLM.APIKey == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY environment variable not set")
		}
	case "ollama":
		// Ollama doesn't need an API key
		if baseURL := os.Getenv("OLLAMA_BASE_URL"); baseURL != "" {
			cfg.LLM.BaseURL = baseURL
		}
	case "":
		// No provider: the pipeline still validates input but every
		// analysis comes back indeterminate.
	}

	return cfg, nil
}
