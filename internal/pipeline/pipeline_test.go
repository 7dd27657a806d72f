package pipeline

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rvelikov/fallax/internal/model"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// fakeReasoner scripts the three engine operations per test.
type fakeReasoner struct {
	detect  func(ctx context.Context, text string) ([]model.CandidateFallacy, error)
	explain func(ctx context.Context, kind, excerpt string) (*model.Explanation, error)
	rewrite func(ctx context.Context, text string, fallacies []model.DetectedFallacy) (*model.BalancedRewrite, error)

	mu           sync.Mutex
	rewriteCalls int
}

func (f *fakeReasoner) DetectFallacies(ctx context.Context, text string) ([]model.CandidateFallacy, error) {
	if f.detect == nil {
		return nil, nil
	}
	return f.detect(ctx, text)
}

func (f *fakeReasoner) ExplainFallacy(ctx context.Context, kind, excerpt string) (*model.Explanation, error) {
	if f.explain == nil {
		return &model.Explanation{Definition: "def for " + kind, Rationale: "rationale"}, nil
	}
	return f.explain(ctx, kind, excerpt)
}

func (f *fakeReasoner) GenerateRewrite(ctx context.Context, text string, fallacies []model.DetectedFallacy) (*model.BalancedRewrite, error) {
	f.mu.Lock()
	f.rewriteCalls++
	f.mu.Unlock()
	if f.rewrite == nil {
		return &model.BalancedRewrite{Text: "rewritten"}, nil
	}
	return f.rewrite(ctx, text, fallacies)
}

const sampleText = "Only a fool would disagree with this plan, so clearly everyone supports it."

func candidateAt(text, excerpt, kind string, confidence int) model.CandidateFallacy {
	start := 0
	end := 0
	if excerpt != "" {
		for i := 0; i+len(excerpt) <= len(text); i++ {
			if text[i:i+len(excerpt)] == excerpt {
				start, end = i, i+len(excerpt)
				break
			}
		}
	}
	return model.CandidateFallacy{Kind: kind, Start: start, End: end, Excerpt: excerpt, RawConfidence: confidence}
}

func newTestPipeline(t *testing.T, client *fakeReasoner, clock Clock, mutate func(*model.Config)) *Pipeline {
	t.Helper()
	cfg := model.DefaultConfig()
	if mutate != nil {
		mutate(cfg)
	}
	p, err := New(cfg, nil, WithClock(clock), WithClient(client))
	require.NoError(t, err)
	return p
}

func TestAnalyzeSoundArgument(t *testing.T) {
	client := &fakeReasoner{
		detect: func(ctx context.Context, text string) ([]model.CandidateFallacy, error) {
			return nil, nil
		},
	}
	p := newTestPipeline(t, client, newFakeClock(), nil)

	result, err := p.Analyze(context.Background(), sampleText, model.DefaultOptions())
	require.NoError(t, err)

	assert.Empty(t, result.DetectedFallacies)
	assert.Zero(t, result.Summary.TotalCount)
	assert.Nil(t, result.Summary.AverageConfidence)
	assert.False(t, result.Summary.Indeterminate)
	assert.Contains(t, result.Summary.Message, "appears sound")
	assert.Nil(t, result.Rewrite)
	assert.Zero(t, client.rewriteCalls, "rewrite must be skipped for sound arguments")
}

func TestAnalyzeFullFlow(t *testing.T) {
	client := &fakeReasoner{
		detect: func(ctx context.Context, text string) ([]model.CandidateFallacy, error) {
			return []model.CandidateFallacy{
				candidateAt(text, "everyone supports it", "bandwagon", 65),
				candidateAt(text, "Only a fool would disagree", "ad hominem", 90),
			}, nil
		},
	}
	p := newTestPipeline(t, client, newFakeClock(), nil)

	result, err := p.Analyze(context.Background(), sampleText, model.DefaultOptions())
	require.NoError(t, err)

	require.Len(t, result.DetectedFallacies, 2)
	assert.Equal(t, "ad hominem", result.DetectedFallacies[0].Kind, "higher confidence first")
	assert.Equal(t, model.ConfidenceHigh, result.DetectedFallacies[0].ConfidenceLevel)
	assert.Equal(t, "bandwagon", result.DetectedFallacies[1].Kind)
	assert.Equal(t, model.ConfidenceMedium, result.DetectedFallacies[1].ConfidenceLevel)

	for _, f := range result.DetectedFallacies {
		require.NotNil(t, f.Explanation)
		assert.False(t, f.Explanation.Fallback)
	}

	assert.Equal(t, 2, result.Summary.TotalCount)
	assert.Equal(t, 1, result.Summary.CountsByKind["bandwagon"])
	require.NotNil(t, result.Summary.AverageConfidence)
	assert.InDelta(t, 77.5, *result.Summary.AverageConfidence, 0.01)

	require.NotNil(t, result.Rewrite)
	assert.Equal(t, "rewritten", result.Rewrite.Text)
}

func TestAnalyzeValidationFailure(t *testing.T) {
	p := newTestPipeline(t, &fakeReasoner{}, newFakeClock(), nil)

	_, err := p.Analyze(context.Background(), "too short", model.DefaultOptions())
	require.Error(t, err)
	assert.True(t, model.IsValidation(err))
}

func TestAnalyzeDetectionFailureIsIndeterminate(t *testing.T) {
	client := &fakeReasoner{
		detect: func(ctx context.Context, text string) ([]model.CandidateFallacy, error) {
			return nil, &model.TransportError{Op: "detect", Err: errors.New("service down")}
		},
	}
	p := newTestPipeline(t, client, newFakeClock(), nil)

	result, err := p.Analyze(context.Background(), sampleText, model.DefaultOptions())
	require.NoError(t, err, "transport exhaustion with time left degrades, not fails")

	assert.True(t, result.Summary.Indeterminate)
	assert.Empty(t, result.DetectedFallacies)
	assert.Nil(t, result.Summary.AverageConfidence)
	assert.Contains(t, result.Summary.Message, "indeterminate")
}

func TestAnalyzeNoProviderConfigured(t *testing.T) {
	cfg := model.DefaultConfig()
	cfg.LLM.Provider = ""
	p, err := New(cfg, nil, WithClock(newFakeClock()))
	require.NoError(t, err, "an empty provider disables reasoning, it is not a config error")

	result, err := p.Analyze(context.Background(), sampleText, model.DefaultOptions())
	require.NoError(t, err)
	assert.True(t, result.Summary.Indeterminate)
	assert.Empty(t, result.DetectedFallacies)
	assert.Nil(t, result.Rewrite)

	// Validation still runs without a provider.
	_, err = p.Analyze(context.Background(), "too short", model.DefaultOptions())
	require.Error(t, err)
	assert.True(t, model.IsValidation(err))
}

func TestAnalyzeTransientFailureNotCached(t *testing.T) {
	var detectCalls int
	client := &fakeReasoner{
		detect: func(ctx context.Context, text string) ([]model.CandidateFallacy, error) {
			detectCalls++
			if detectCalls == 1 {
				return nil, &model.TransportError{Op: "detect", Err: errors.New("service down")}
			}
			return []model.CandidateFallacy{
				candidateAt(text, "Only a fool would disagree", "ad hominem", 90),
			}, nil
		},
	}
	p := newTestPipeline(t, client, newFakeClock(), func(cfg *model.Config) {
		cfg.Cache.Enabled = true
	})

	first, err := p.Analyze(context.Background(), sampleText, model.DefaultOptions())
	require.NoError(t, err)
	assert.True(t, first.Summary.Indeterminate)

	// The recovered provider is retried for the same text.
	second, err := p.Analyze(context.Background(), sampleText, model.DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, 2, detectCalls)
	assert.False(t, second.Summary.Indeterminate)
	require.Len(t, second.DetectedFallacies, 1)

	// The recovered result is cached as usual.
	third, err := p.Analyze(context.Background(), sampleText, model.DefaultOptions())
	require.NoError(t, err)
	assert.Same(t, second, third)
	assert.Equal(t, 2, detectCalls)
}

func TestAnalyzeBudgetExhaustedWithNoData(t *testing.T) {
	clock := newFakeClock()
	client := &fakeReasoner{
		detect: func(ctx context.Context, text string) ([]model.CandidateFallacy, error) {
			clock.Advance(11 * time.Second)
			return nil, &model.TransportError{Op: "detect", Err: errors.New("timed out")}
		},
	}
	p := newTestPipeline(t, client, clock, nil)

	_, err := p.Analyze(context.Background(), sampleText, model.DefaultOptions())
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrBudgetExceeded)
}

func TestAnalyzeBudgetExhaustedAfterDetectionDegrades(t *testing.T) {
	clock := newFakeClock()
	client := &fakeReasoner{
		detect: func(ctx context.Context, text string) ([]model.CandidateFallacy, error) {
			clock.Advance(11 * time.Second)
			return []model.CandidateFallacy{
				candidateAt(text, "Only a fool would disagree", "ad hominem", 90),
			}, nil
		},
		explain: func(ctx context.Context, kind, excerpt string) (*model.Explanation, error) {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return &model.Explanation{Definition: "should not be reached"}, nil
		},
	}
	p := newTestPipeline(t, client, clock, nil)

	result, err := p.Analyze(context.Background(), sampleText, model.DefaultOptions())
	require.NoError(t, err, "detection data survives budget exhaustion")

	require.Len(t, result.DetectedFallacies, 1)
	require.NotNil(t, result.DetectedFallacies[0].Explanation)
	assert.True(t, result.DetectedFallacies[0].Explanation.Fallback)
	assert.Nil(t, result.Rewrite, "rewrite is skipped once the budget is spent")
	assert.Zero(t, client.rewriteCalls)
}

func TestAnalyzeExplanationFailureFallsBack(t *testing.T) {
	client := &fakeReasoner{
		detect: func(ctx context.Context, text string) ([]model.CandidateFallacy, error) {
			return []model.CandidateFallacy{
				candidateAt(text, "Only a fool would disagree", "ad hominem", 90),
				candidateAt(text, "everyone supports it", "bandwagon", 70),
			}, nil
		},
		explain: func(ctx context.Context, kind, excerpt string) (*model.Explanation, error) {
			if kind == "bandwagon" {
				return nil, &model.ParseError{Op: "explain", Err: errors.New("garbage output")}
			}
			return &model.Explanation{Definition: "def", Rationale: "rat"}, nil
		},
	}
	p := newTestPipeline(t, client, newFakeClock(), nil)

	result, err := p.Analyze(context.Background(), sampleText, model.DefaultOptions())
	require.NoError(t, err)

	require.Len(t, result.DetectedFallacies, 2)
	assert.False(t, result.DetectedFallacies[0].Explanation.Fallback)
	assert.True(t, result.DetectedFallacies[1].Explanation.Fallback)
}

func TestAnalyzeRewriteFailureDegrades(t *testing.T) {
	client := &fakeReasoner{
		detect: func(ctx context.Context, text string) ([]model.CandidateFallacy, error) {
			return []model.CandidateFallacy{
				candidateAt(text, "everyone supports it", "bandwagon", 70),
			}, nil
		},
		rewrite: func(ctx context.Context, text string, fallacies []model.DetectedFallacy) (*model.BalancedRewrite, error) {
			return nil, &model.TransportError{Op: "rewrite", Err: errors.New("down")}
		},
	}
	p := newTestPipeline(t, client, newFakeClock(), nil)

	result, err := p.Analyze(context.Background(), sampleText, model.DefaultOptions())
	require.NoError(t, err)
	assert.Nil(t, result.Rewrite)
	assert.Len(t, result.DetectedFallacies, 1)
}

func TestAnalyzeRewriteNotRequested(t *testing.T) {
	client := &fakeReasoner{
		detect: func(ctx context.Context, text string) ([]model.CandidateFallacy, error) {
			return []model.CandidateFallacy{
				candidateAt(text, "everyone supports it", "bandwagon", 70),
			}, nil
		},
	}
	p := newTestPipeline(t, client, newFakeClock(), nil)

	result, err := p.Analyze(context.Background(), sampleText, model.AnalysisOptions{IncludeRewrite: false})
	require.NoError(t, err)
	assert.Nil(t, result.Rewrite)
	assert.Zero(t, client.rewriteCalls)
}

func TestAnalyzeMinConfidenceFilter(t *testing.T) {
	client := &fakeReasoner{
		detect: func(ctx context.Context, text string) ([]model.CandidateFallacy, error) {
			return []model.CandidateFallacy{
				candidateAt(text, "Only a fool would disagree", "ad hominem", 90),
				candidateAt(text, "everyone supports it", "bandwagon", 40),
			}, nil
		},
	}
	p := newTestPipeline(t, client, newFakeClock(), nil)

	result, err := p.Analyze(context.Background(), sampleText, model.AnalysisOptions{MinConfidence: 60})
	require.NoError(t, err)

	require.Len(t, result.DetectedFallacies, 1)
	assert.Equal(t, "ad hominem", result.DetectedFallacies[0].Kind)
	assert.Equal(t, 1, result.Summary.TotalCount, "summary reflects the filtered set")
	require.NotNil(t, result.Summary.AverageConfidence)
	assert.InDelta(t, 90.0, *result.Summary.AverageConfidence, 0.01)
	assert.NotContains(t, result.Summary.CountsByKind, "bandwagon")
}

func TestAnalyzeAllFilteredOut(t *testing.T) {
	client := &fakeReasoner{
		detect: func(ctx context.Context, text string) ([]model.CandidateFallacy, error) {
			return []model.CandidateFallacy{
				candidateAt(text, "everyone supports it", "bandwagon", 30),
			}, nil
		},
	}
	p := newTestPipeline(t, client, newFakeClock(), nil)

	result, err := p.Analyze(context.Background(), sampleText, model.AnalysisOptions{MinConfidence: 80})
	require.NoError(t, err)

	assert.Empty(t, result.DetectedFallacies)
	assert.Nil(t, result.Summary.AverageConfidence)
	assert.Nil(t, result.Rewrite, "nothing survived, nothing to rewrite")
}

func TestAnalyzeCacheHit(t *testing.T) {
	var detectCalls int
	client := &fakeReasoner{
		detect: func(ctx context.Context, text string) ([]model.CandidateFallacy, error) {
			detectCalls++
			return nil, nil
		},
	}
	p := newTestPipeline(t, client, newFakeClock(), func(cfg *model.Config) {
		cfg.Cache.Enabled = true
	})

	first, err := p.Analyze(context.Background(), sampleText, model.DefaultOptions())
	require.NoError(t, err)
	second, err := p.Analyze(context.Background(), sampleText, model.DefaultOptions())
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, detectCalls)

	// Different options miss the cache.
	_, err = p.Analyze(context.Background(), sampleText, model.AnalysisOptions{MinConfidence: 50})
	require.NoError(t, err)
	assert.Equal(t, 2, detectCalls)
}

func TestAnalyzeElapsedUsesClock(t *testing.T) {
	clock := newFakeClock()
	client := &fakeReasoner{
		detect: func(ctx context.Context, text string) ([]model.CandidateFallacy, error) {
			clock.Advance(3 * time.Second)
			return nil, nil
		},
	}
	p := newTestPipeline(t, client, clock, nil)

	result, err := p.Analyze(context.Background(), sampleText, model.DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, int64(3000), result.ElapsedMS)
}

// slowValidator advances the clock before delegating, standing in for
// validation that takes wall time.
type slowValidator struct {
	inner textValidator
	clock *fakeClock
	delay time.Duration
}

func (v slowValidator) Validate(raw string) (string, error) {
	v.clock.Advance(v.delay)
	return v.inner.Validate(raw)
}

func TestAnalyzeElapsedExcludesValidation(t *testing.T) {
	clock := newFakeClock()
	client := &fakeReasoner{
		detect: func(ctx context.Context, text string) ([]model.CandidateFallacy, error) {
			clock.Advance(3 * time.Second)
			return nil, nil
		},
	}
	p := newTestPipeline(t, client, clock, nil)
	p.validator = slowValidator{inner: p.validator, clock: clock, delay: 2 * time.Second}

	result, err := p.Analyze(context.Background(), sampleText, model.DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, int64(3000), result.ElapsedMS, "elapsed runs from validator-pass, not request arrival")
}

func TestBuildSummaryMessages(t *testing.T) {
	one := BuildSummary([]model.DetectedFallacy{
		{CandidateFallacy: model.CandidateFallacy{Kind: "ad hominem", RawConfidence: 80}},
	}, false)
	assert.Equal(t, "1 reasoning fallacy detected", one.Message)

	none := BuildSummary(nil, false)
	assert.Contains(t, none.Message, "appears sound")
	assert.Nil(t, none.AverageConfidence)

	indet := BuildSummary(nil, true)
	assert.True(t, indet.Indeterminate)
	assert.Contains(t, indet.Message, "indeterminate")
}
