// Package diag records pipeline stage events as structured logs. Input text
// never reaches a log line: events reference the text only through a bounded
// excerpt of its hash-length prefix.
package diag

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
)

const excerptRefLimit = 24

// Recorder emits structured stage events. A nil Recorder (or one built over a
// nil logger) discards everything, so callers never guard their calls.
type Recorder struct {
	logger *slog.Logger
}

// NewRecorder creates a recorder over the given logger.
func NewRecorder(logger *slog.Logger) *Recorder {
	return &Recorder{logger: logger}
}

// Stage records a stage transition.
func (r *Recorder) Stage(stage, event string, attrs ...slog.Attr) {
	if r == nil || r.logger == nil {
		return
	}
	args := make([]any, 0, len(attrs)+1)
	args = append(args, slog.String("stage", stage))
	for _, a := range attrs {
		args = append(args, a)
	}
	r.logger.Info(event, args...)
}

// Degraded records a stage that fell back instead of failing the analysis.
func (r *Recorder) Degraded(stage string, err error) {
	if r == nil || r.logger == nil {
		return
	}
	r.logger.Warn("stage degraded",
		slog.String("stage", stage),
		slog.String("error", err.Error()),
	)
}

// Failed records a stage error that will surface to the caller.
func (r *Recorder) Failed(stage string, err error) {
	if r == nil || r.logger == nil {
		return
	}
	r.logger.Error("stage failed",
		slog.String("stage", stage),
		slog.String("error", err.Error()),
	)
}

// TextRef returns a loggable reference to an input text: a hash prefix plus
// its length. The text content itself is never logged.
func TextRef(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])[:excerptRefLimit]
}
