package persona

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math/rand/v2"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/echomate/internal/extractor"
)

const (
	// MaxExemplars caps how many exemplar messages go into a single prompt.
	MaxExemplars = 25
	// ContextTurns is how many of the latest turns are replayed to the model.
	ContextTurns = 5
)

// ErrNotReady is returned by SubmitTurn before a persona has been created.
var ErrNotReady = errors.New("persona not created")

// Session holds one persona and its conversation log. It is not safe for
// concurrent use; callers serialize access.
type Session struct {
	id    uuid.UUID
	gen   Generator
	log   *slog.Logger
	rng   *rand.Rand
	clock func() time.Time

	ready     bool
	userName  string
	target    string
	exemplars []string
	turns     []Turn
}

// Option configures a Session.
type Option func(*Session)

func WithLogger(l *slog.Logger) Option {
	return func(s *Session) { s.log = l }
}

// WithRand fixes the exemplar sampler, mainly for tests.
func WithRand(r *rand.Rand) Option {
	return func(s *Session) { s.rng = r }
}

func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.clock = now }
}

// NewSession returns an unconfigured session backed by gen.
func NewSession(gen Generator, opts ...Option) *Session {
	s := &Session{
		id:    uuid.New(),
		gen:   gen,
		log:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		rng:   rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		clock: time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Create extracts the target's messages from raw and (re)initializes the
// persona with an empty log. On error the session is left as it was.
func (s *Session) Create(raw, userName, targetName string) error {
	msgs, err := extractor.Extract(raw, targetName)
	if err != nil {
		s.log.Info("persona extraction failed", "session_id", s.id, "error", err)
		return err
	}

	s.userName = userName
	s.target = targetName
	s.exemplars = slices.Clone(msgs)
	s.turns = nil
	s.ready = true

	s.log.Info("persona created", "session_id", s.id, "exemplars", len(msgs))
	return nil
}

// SubmitTurn records userText, asks the generator for the persona's reply and
// records that too. Generator failures become a Failed assistant turn rather
// than an error.
func (s *Session) SubmitTurn(ctx context.Context, userText string) (Turn, error) {
	if !s.ready {
		return Turn{}, ErrNotReady
	}

	s.turns = append(s.turns, Turn{Role: RoleUser, Content: userText, CreatedAt: s.clock()})

	prompt := BuildPrompt(PromptInput{
		TargetName: s.target,
		UserName:   s.userName,
		Examples:   sampleExemplars(s.rng, s.exemplars, MaxExemplars),
		Recent:     lastTurns(s.turns, ContextTurns),
	})

	reply := Turn{Role: RoleAssistant}
	text, err := s.gen.Generate(ctx, prompt)
	if err != nil {
		s.log.Warn("generation failed", "session_id", s.id, "error", err)
		reply.Content = FailureReply(err)
		reply.Failed = true
	} else {
		reply.Content = text
	}
	reply.CreatedAt = s.clock()

	s.turns = append(s.turns, reply)
	return reply, nil
}

// Reset clears the conversation log and keeps the persona.
func (s *Session) Reset() {
	if !s.ready {
		return
	}
	s.turns = nil
	s.log.Info("conversation reset", "session_id", s.id)
}

func (s *Session) ID() uuid.UUID      { return s.id }
func (s *Session) Ready() bool        { return s.ready }
func (s *Session) UserName() string   { return s.userName }
func (s *Session) TargetName() string { return s.target }
func (s *Session) ExemplarCount() int { return len(s.exemplars) }

// Turns returns a copy of the conversation log.
func (s *Session) Turns() []Turn {
	out := make([]Turn, len(s.turns))
	copy(out, s.turns)
	return out
}

// sampleExemplars draws min(k, len(msgs)) messages uniformly without
// replacement using a partial Fisher-Yates shuffle over indices.
func sampleExemplars(rng *rand.Rand, msgs []string, k int) []string {
	n := len(msgs)
	if k > n {
		k = n
	}
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	out := make([]string, k)
	for i := 0; i < k; i++ {
		j := i + rng.IntN(n-i)
		idx[i], idx[j] = idx[j], idx[i]
		out[i] = msgs[idx[i]]
	}
	return out
}

func lastTurns(turns []Turn, n int) []Turn {
	if len(turns) <= n {
		return turns
	}
	return turns[len(turns)-n:]
}
