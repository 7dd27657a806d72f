package validate

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rvelikov/fallax/internal/model"
)

func newTestValidator() *TextValidator {
	return NewTextValidator(model.DefaultConfig().Validation)
}

func TestValidate_LengthBoundaries(t *testing.T) {
	v := newTestValidator()

	tests := []struct {
		name     string
		length   int
		wantCode model.ValidationCode
	}{
		{"nine chars fails", 9, model.ValidationTooShort},
		{"ten chars passes", 10, ""},
		{"five thousand chars passes", 5000, ""},
		{"five thousand one chars fails", 5001, model.ValidationTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text := strings.Repeat("a", tt.length)
			normalized, err := v.Validate(text)

			if tt.wantCode == "" {
				require.NoError(t, err)
				assert.Equal(t, text, normalized)
				return
			}

			var verr *model.ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.wantCode, verr.Code)
		})
	}
}

func TestValidate_EmptyAndWhitespace(t *testing.T) {
	v := newTestValidator()

	for _, input := range []string{"", "   ", "\n\t  \n"} {
		_, err := v.Validate(input)
		var verr *model.ValidationError
		require.True(t, errors.As(err, &verr), "input %q", input)
		assert.Equal(t, model.ValidationEmpty, verr.Code)
	}
}

func TestValidate_TrimsBeforeCounting(t *testing.T) {
	v := newTestValidator()

	// 9 visible characters padded with whitespace still fails short check.
	_, err := v.Validate("  abcdefghi  ")
	var verr *model.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, model.ValidationTooShort, verr.Code)

	normalized, err := v.Validate("  abcdefghij  ")
	require.NoError(t, err)
	assert.Equal(t, "abcdefghij", normalized)
}

func TestValidate_LanguageGate(t *testing.T) {
	v := newTestValidator()

	// Mostly Cyrillic input falls below the ASCII threshold.
	_, err := v.Validate("Это предложение написано полностью по-русски.")
	var verr *model.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, model.ValidationLanguage, verr.Code)

	// English with a few accented characters stays above 70%.
	_, err = v.Validate("The cafe serves crème brûlée and espresso every day.")
	assert.NoError(t, err)
}

func TestValidate_LanguageGateDisabled(t *testing.T) {
	cfg := model.DefaultConfig().Validation
	cfg.LanguageGate = false
	v := NewTextValidator(cfg)

	normalized, err := v.Validate("Это предложение написано полностью по-русски.")
	require.NoError(t, err)
	assert.NotEmpty(t, normalized)
}

func TestValidate_RuneCounting(t *testing.T) {
	v := newTestValidator()

	// 10 multibyte characters is 10 characters, not 20 bytes: passes the
	// length rules (and fails only the language gate).
	_, err := v.Validate(strings.Repeat("é", 10))
	var verr *model.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, model.ValidationLanguage, verr.Code)
}
