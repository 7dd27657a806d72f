package worker

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rvelikov/fallax/internal/model"
)

// mockAnalyzer implements Analyzer
type mockAnalyzer struct {
	shouldError bool
}

func (m *mockAnalyzer) Analyze(ctx context.Context, text string, opts model.AnalysisOptions) (*model.AnalysisResult, error) {
	time.Sleep(5 * time.Millisecond) // Simulate work
	if m.shouldError {
		return nil, errors.New("analysis error")
	}
	return &model.AnalysisResult{
		InputText: text,
		Summary:   model.AnalysisSummary{Message: "ok"},
	}, nil
}

func TestBatchProcessor_ProcessTexts(t *testing.T) {
	processor := NewBatchProcessor(&mockAnalyzer{}, 2)

	texts := []string{
		"Everyone agrees this policy is a disaster.",
		"You cannot trust her argument, she failed math.",
		"The sky is blue and water is wet.",
	}

	results := processor.ProcessTexts(context.Background(), texts, model.DefaultOptions())
	require.Len(t, results, 3)

	for i, res := range results {
		require.NoError(t, res.Error)
		require.NotNil(t, res.Result)
		// Order matches the input regardless of completion order.
		assert.Equal(t, texts[i], res.Result.InputText)
	}
}

func TestBatchProcessor_ProcessTexts_Errors(t *testing.T) {
	processor := NewBatchProcessor(&mockAnalyzer{shouldError: true}, 2)

	results := processor.ProcessTexts(context.Background(), []string{"a short argument here"}, model.DefaultOptions())
	require.Len(t, results, 1)
	assert.Error(t, results[0].Error)
	assert.Nil(t, results[0].Result)
}

func TestBatchProcessor_Empty(t *testing.T) {
	processor := NewBatchProcessor(&mockAnalyzer{}, 2)

	results := processor.ProcessTexts(context.Background(), nil, model.DefaultOptions())
	assert.Empty(t, results)
}

func TestReadTextsFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "texts.txt")
	content := strings.Join([]string{
		"# comment line",
		"First argument under test.",
		"",
		"  Second argument under test.  ",
	}, "\n")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	texts, err := ReadTextsFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"First argument under test.",
		"Second argument under test.",
	}, texts)
}

func TestReadTextsFromFile_Missing(t *testing.T) {
	_, err := ReadTextsFromFile("/nonexistent/texts.txt")
	assert.Error(t, err)
}
