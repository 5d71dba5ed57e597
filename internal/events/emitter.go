package events

import (
	"log/slog"
	"time"
)

const (
	SubjectPersonaCreated = "echomate.persona.created"
	SubjectTurnCompleted  = "echomate.turn.completed"
	SubjectSessionEnded   = "echomate.session.ended"
)

// Payloads never carry message text, only counts and identifiers.

type PersonaCreated struct {
	SessionID  string    `json:"session_id"`
	TargetName string    `json:"target_name"`
	Exemplars  int       `json:"exemplars"`
	Timestamp  time.Time `json:"timestamp"`
}

type TurnCompleted struct {
	SessionID string    `json:"session_id"`
	Turns     int       `json:"turns"`
	Failed    bool      `json:"failed"`
	LatencyMS int64     `json:"latency_ms"`
	Timestamp time.Time `json:"timestamp"`
}

type SessionEnded struct {
	SessionID string    `json:"session_id"`
	Turns     int       `json:"turns"`
	Timestamp time.Time `json:"timestamp"`
}

// Publisher is satisfied by *Client.
type Publisher interface {
	Publish(subject string, data any) error
}

// Emitter publishes session lifecycle events. A nil *Emitter, or one without
// a publisher, drops everything, so callers never need to check.
type Emitter struct {
	pub    Publisher
	logger *slog.Logger
	now    func() time.Time
}

func NewEmitter(pub Publisher, logger *slog.Logger) *Emitter {
	return &Emitter{pub: pub, logger: logger, now: time.Now}
}

func (e *Emitter) PersonaCreated(sessionID, target string, exemplars int) {
	e.emit(SubjectPersonaCreated, func(ts time.Time) any {
		return PersonaCreated{SessionID: sessionID, TargetName: target, Exemplars: exemplars, Timestamp: ts}
	})
}

func (e *Emitter) TurnCompleted(sessionID string, turns int, failed bool, latency time.Duration) {
	e.emit(SubjectTurnCompleted, func(ts time.Time) any {
		return TurnCompleted{
			SessionID: sessionID,
			Turns:     turns,
			Failed:    failed,
			LatencyMS: latency.Milliseconds(),
			Timestamp: ts,
		}
	})
}

func (e *Emitter) SessionEnded(sessionID string, turns int) {
	e.emit(SubjectSessionEnded, func(ts time.Time) any {
		return SessionEnded{SessionID: sessionID, Turns: turns, Timestamp: ts}
	})
}

func (e *Emitter) emit(subject string, build func(time.Time) any) {
	if e == nil || e.pub == nil {
		return
	}
	if err := e.pub.Publish(subject, build(e.now().UTC())); err != nil {
		e.logger.Warn("event publish failed", "subject", subject, "error", err)
	}
}
