package validate

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/rvelikov/fallax/internal/model"
)

// TextValidator applies the input gate: emptiness, length bounds, and the
// heuristic English-eligibility check. Pure and deterministic: no external
// calls, no side effects, same output for the same input.
type TextValidator struct {
	minLength      int
	maxLength      int
	asciiThreshold float64
	languageGate   bool
}

// NewTextValidator creates a validator from configuration.
func NewTextValidator(cfg model.ValidationConfig) *TextValidator {
	return &TextValidator{
		minLength:      cfg.MinLength,
		maxLength:      cfg.MaxLength,
		asciiThreshold: cfg.ASCIIThreshold,
		languageGate:   cfg.LanguageGate,
	}
}

// Validate checks raw input and returns the normalized (trimmed) text.
// Rules run in a fixed order and the first failing rule wins:
// empty, too short, too long, language mismatch. Lengths are counted in
// characters (runes), not bytes, so multibyte input is not over-counted.
func (v *TextValidator) Validate(raw string) (string, error) {
	text := strings.TrimSpace(raw)

	if text == "" {
		return "", &model.ValidationError{
			Code:    model.ValidationEmpty,
			Message: "text is empty",
		}
	}

	length := utf8.RuneCountInString(text)
	if length < v.minLength {
		return "", &model.ValidationError{
			Code:    model.ValidationTooShort,
			Message: fmt.Sprintf("text is %d characters, minimum is %d", length, v.minLength),
		}
	}

	// No silent truncation: over-long input loses information the caller
	// must be warned about.
	if length > v.maxLength {
		return "", &model.ValidationError{
			Code:    model.ValidationTooLong,
			Message: fmt.Sprintf("text is %d characters, maximum is %d", length, v.maxLength),
		}
	}

	if v.languageGate {
		if ratio := asciiRatio(text); ratio < v.asciiThreshold {
			return "", &model.ValidationError{
				Code: model.ValidationLanguage,
				Message: fmt.Sprintf(
					"only %.0f%% of characters are ASCII (need %.0f%%); the analysis currently supports English text only",
					ratio*100, v.asciiThreshold*100),
			}
		}
	}

	return text, nil
}

// asciiRatio returns the fraction of characters in the single-byte ASCII
// range. A cheap English-eligibility proxy, not a language detector.
func asciiRatio(text string) float64 {
	total := 0
	ascii := 0
	for _, r := range text {
		total++
		if r < 128 {
			ascii++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(ascii) / float64(total)
}
