package coach

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"runpal/internal/journal"
)

type stubAnalyzer struct {
	a       Analysis
	err     error
	gotMime string
}

func (s *stubAnalyzer) Analyze(_ context.Context, _ []byte, mimeType string) (Analysis, error) {
	s.gotMime = mimeType
	return s.a, s.err
}

type stubCoach struct {
	reply string
	err   error
}

func (s stubCoach) Reply(context.Context, string) (string, error) { return s.reply, s.err }

func TestOffline(t *testing.T) {
	_, err := Offline{}.Analyze(context.Background(), nil, "image/png")
	assert.ErrorIs(t, err, ErrUnavailable)
	_, err = Offline{}.Reply(context.Background(), "hi")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestResilient_FallbacksWhenOffline(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	r := NewResilient(nil, nil, zap.New(core))

	assert.Equal(t, FallbackAnalysis(), r.Analyze(context.Background(), []byte{1}, ""))
	assert.Equal(t, FallbackReply, r.Reply(context.Background(), "how was my week?"))
	assert.Equal(t, 2, logs.Len())
}

func TestResilient_PassesThrough(t *testing.T) {
	a := &stubAnalyzer{a: Analysis{Mood: "Amazing", PhotoNote: "sunset", Memory: "great"}}
	r := NewResilient(a, stubCoach{reply: "Keep going!"}, nil)

	got := r.Analyze(context.Background(), nil, "")
	assert.Equal(t, "image/jpeg", a.gotMime)
	assert.Equal(t, journal.MoodAmazing, got.Mood)
	assert.Equal(t, "sunset", got.PhotoNote)
	assert.Equal(t, "Keep going!", r.Reply(context.Background(), "hi"))
}

func TestResilient_UnknownMoodBecomesNeutral(t *testing.T) {
	r := NewResilient(&stubAnalyzer{a: Analysis{Mood: "ecstatic"}}, nil, nil)
	assert.Equal(t, journal.MoodNeutral, r.Analyze(context.Background(), nil, "image/png").Mood)
}

func TestResilient_EmptyReplyFallsBack(t *testing.T) {
	r := NewResilient(nil, stubCoach{reply: "  "}, nil)
	assert.Equal(t, FallbackReply, r.Reply(context.Background(), "hi"))

	r = NewResilient(nil, stubCoach{err: errors.New("boom")}, nil)
	assert.Equal(t, FallbackReply, r.Reply(context.Background(), "hi"))
}
