package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/rvelikov/fallax/internal/model"
)

// Analyzer is the single-text analysis capability used by batch processing.
// pipeline.Pipeline satisfies it; tests use a stub.
type Analyzer interface {
	Analyze(ctx context.Context, text string, opts model.AnalysisOptions) (*model.AnalysisResult, error)
}

// AnalyzeJob analyzes one text from a batch. Ctx is the batch context, which
// outlives any single job but bounds the run as a whole.
type AnalyzeJob struct {
	Ctx      context.Context
	Index    int
	Text     string
	Options  model.AnalysisOptions
	Analyzer Analyzer
}

// Execute runs the analysis for this job.
func (j *AnalyzeJob) Execute(_ context.Context) Result {
	result, err := j.Analyzer.Analyze(j.Ctx, j.Text, j.Options)
	return &AnalyzeResult{
		Index:  j.Index,
		Result: result,
		Error:  err,
	}
}

// AnalyzeResult is the outcome of one batch entry.
type AnalyzeResult struct {
	Index  int
	Result *model.AnalysisResult
	Error  error
}

// GetError returns the error from the analysis.
func (r *AnalyzeResult) GetError() error {
	return r.Error
}

// BatchProcessor analyzes multiple texts concurrently.
type BatchProcessor struct {
	analyzer    Analyzer
	concurrency int
}

// NewBatchProcessor creates a batch processor.
func NewBatchProcessor(analyzer Analyzer, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		analyzer:    analyzer,
		concurrency: concurrency,
	}
}

// ProcessTexts analyzes the given texts concurrently. Results are reordered
// to match the input before returning.
func (b *BatchProcessor) ProcessTexts(ctx context.Context, texts []string, opts model.AnalysisOptions) []*AnalyzeResult {
	if len(texts) == 0 {
		return []*AnalyzeResult{}
	}

	pool := NewPoolSized(b.concurrency, len(texts))
	pool.Start()

	for i, text := range texts {
		pool.Submit(&AnalyzeJob{
			Ctx:      ctx,
			Index:    i,
			Text:     text,
			Options:  opts,
			Analyzer: b.analyzer,
		})
	}

	results := pool.Wait()

	ordered := make([]*AnalyzeResult, len(texts))
	for _, result := range results {
		r := result.(*AnalyzeResult)
		ordered[r.Index] = r
	}

	return ordered
}

// ProcessFile reads texts from a file and analyzes them concurrently.
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string, opts model.AnalysisOptions) ([]*AnalyzeResult, error) {
	texts, err := ReadTextsFromFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read texts: %w", err)
	}

	return b.ProcessTexts(ctx, texts, opts), nil
}

// ReadTextsFromFile reads one input text per line, skipping blank lines and
// lines starting with '#'.
func ReadTextsFromFile(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var texts []string

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		texts = append(texts, line)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return texts, nil
}
