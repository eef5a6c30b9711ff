// Package coach defines the collaborators that turn run photos into journal
// entries and answer chat messages.
package coach

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"runpal/internal/journal"
)

// ErrUnavailable is returned when no model backs the collaborator.
var ErrUnavailable = errors.New("coach: unavailable")

const (
	FallbackPhotoNote = "A new memory captured"
	FallbackMemory    = "Another run in the books! Feeling accomplished."
	FallbackReply     = "I'm having a little trouble connecting right now, but I'm still cheering you on!"
)

// Analysis is what an Analyzer extracts from a run photo.
type Analysis struct {
	Mood      journal.Mood `json:"mood"`
	PhotoNote string       `json:"photo_note"`
	Memory    string       `json:"memory"`
}

// Analyzer derives a journal entry from a photo.
type Analyzer interface {
	Analyze(ctx context.Context, image []byte, mimeType string) (Analysis, error)
}

// Coach replies to a chat message.
type Coach interface {
	Reply(ctx context.Context, message string) (string, error)
}

// Offline implements Analyzer and Coach without a model. Every call fails
// with ErrUnavailable.
type Offline struct{}

func (Offline) Analyze(context.Context, []byte, string) (Analysis, error) {
	return Analysis{}, ErrUnavailable
}

func (Offline) Reply(context.Context, string) (string, error) {
	return "", ErrUnavailable
}

// Resilient never surfaces collaborator errors to the caller; failures are
// logged and replaced with fallback content.
type Resilient struct {
	analyzer Analyzer
	coach    Coach
	log      *zap.Logger
}

// NewResilient wraps a and c. Nil collaborators are replaced with Offline.
func NewResilient(a Analyzer, c Coach, log *zap.Logger) *Resilient {
	if a == nil {
		a = Offline{}
	}
	if c == nil {
		c = Offline{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Resilient{analyzer: a, coach: c, log: log}
}

// Analyze returns the analyzer's result with the mood normalised, or the
// fallback analysis when the analyzer fails.
func (r *Resilient) Analyze(ctx context.Context, image []byte, mimeType string) Analysis {
	if mimeType == "" {
		mimeType = "image/jpeg"
	}
	a, err := r.analyzer.Analyze(ctx, image, mimeType)
	if err != nil {
		r.log.Warn("photo analysis failed", zap.Error(err), zap.String("mime_type", mimeType))
		return FallbackAnalysis()
	}
	a.Mood = journal.ParseMood(string(a.Mood))
	return a
}

// Reply returns the coach's answer, or FallbackReply when it fails or
// answers with nothing.
func (r *Resilient) Reply(ctx context.Context, message string) string {
	reply, err := r.coach.Reply(ctx, message)
	if err != nil {
		r.log.Warn("coach reply failed", zap.Error(err))
		return FallbackReply
	}
	if strings.TrimSpace(reply) == "" {
		return FallbackReply
	}
	return reply
}

// FallbackAnalysis is the entry used when a photo cannot be analysed.
func FallbackAnalysis() Analysis {
	return Analysis{Mood: journal.MoodHappy, PhotoNote: FallbackPhotoNote, Memory: FallbackMemory}
}
