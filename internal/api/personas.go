package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/echomate/internal/extractor"
	"github.com/MikeSquared-Agency/echomate/internal/persona"
)

const (
	missingFieldsMessage = "Please fill in all three fields above."

	// maxTurnBytes bounds a turn request body.
	maxTurnBytes = 64 << 10
)

type sessionView struct {
	ID          string         `json:"id"`
	UserName    string         `json:"user_name"`
	TargetName  string         `json:"target_name"`
	Exemplars   int            `json:"exemplars"`
	Placeholder string         `json:"placeholder"`
	Turns       []persona.Turn `json:"turns"`
}

type createResponse struct {
	sessionView
	Message string `json:"message"`
}

type notFoundResponse struct {
	Error   string   `json:"error"`
	Senders []string `json:"senders"`
}

type turnRequest struct {
	Text string `json:"text"`
}

type turnResponse struct {
	User      persona.Turn `json:"user"`
	Assistant persona.Turn `json:"assistant"`
}

func viewOf(s *persona.Session) sessionView {
	return sessionView{
		ID:          s.ID().String(),
		UserName:    s.UserName(),
		TargetName:  s.TargetName(),
		Exemplars:   s.ExemplarCount(),
		Placeholder: persona.ChatPlaceholder(s.TargetName()),
		Turns:       s.Turns(),
	}
}

// personaForm is the parsed multipart upload.
type personaForm struct {
	raw        string
	userName   string
	targetName string
}

// readPersonaForm writes the error response itself and returns ok=false on failure.
func (s *Server) readPersonaForm(w http.ResponseWriter, r *http.Request) (personaForm, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	if err := r.ParseMultipartForm(s.cfg.MaxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "transcript file is too large")
			return personaForm{}, false
		}
		writeError(w, http.StatusBadRequest, missingFieldsMessage)
		return personaForm{}, false
	}

	form := personaForm{
		userName:   strings.TrimSpace(r.FormValue("user_name")),
		targetName: strings.TrimSpace(r.FormValue("target_name")),
	}
	file, _, err := r.FormFile("file")
	if err != nil || form.userName == "" || form.targetName == "" {
		writeError(w, http.StatusBadRequest, missingFieldsMessage)
		return personaForm{}, false
	}
	defer file.Close()

	form.raw, err = extractor.ReadTranscript(file)
	if err != nil {
		if errors.Is(err, extractor.ErrInvalidEncoding) {
			writeError(w, http.StatusBadRequest, "transcript is not valid UTF-8 text")
			return personaForm{}, false
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return personaForm{}, false
	}
	return form, true
}

// applyPersona runs Create and writes the failure response. The caller holds
// any lock the session needs.
func (s *Server) applyPersona(w http.ResponseWriter, sess *persona.Session, form personaForm) bool {
	err := sess.Create(form.raw, form.userName, form.targetName)
	if err == nil {
		s.events.PersonaCreated(sess.ID().String(), sess.TargetName(), sess.ExemplarCount())
		return true
	}

	switch {
	case errors.Is(err, extractor.ErrNotFound):
		writeJSON(w, http.StatusUnprocessableEntity, notFoundResponse{
			Error:   persona.NotFoundMessage(form.targetName),
			Senders: extractor.Senders(form.raw),
		})
	default:
		s.logger.Error("persona create failed", "session_id", sess.ID(), "error", err)
		writeError(w, http.StatusInternalServerError, "could not create persona")
	}
	return false
}

// createPersona handles POST /api/v1/personas
func (s *Server) createPersona(w http.ResponseWriter, r *http.Request) {
	form, ok := s.readPersonaForm(w, r)
	if !ok {
		return
	}

	sess := persona.NewSession(s.gen, persona.WithLogger(s.logger))
	if !s.applyPersona(w, sess, form) {
		return
	}
	s.sessions.add(sess)

	writeJSON(w, http.StatusCreated, createResponse{
		sessionView: viewOf(sess),
		Message:     persona.LearnedMessage(sess.TargetName()),
	})
}

// recreatePersona handles PUT /api/v1/personas/{id}: a new upload on an
// existing session replaces the persona and clears the log.
func (s *Server) recreatePersona(w http.ResponseWriter, r *http.Request) {
	e, ok := s.lookup(w, r)
	if !ok {
		return
	}
	form, ok := s.readPersonaForm(w, r)
	if !ok {
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if !s.applyPersona(w, e.session, form) {
		return
	}
	writeJSON(w, http.StatusOK, createResponse{
		sessionView: viewOf(e.session),
		Message:     persona.LearnedMessage(e.session.TargetName()),
	})
}

// getPersona handles GET /api/v1/personas/{id}
func (s *Server) getPersona(w http.ResponseWriter, r *http.Request) {
	e, ok := s.lookup(w, r)
	if !ok {
		return
	}
	e.mu.Lock()
	view := viewOf(e.session)
	e.mu.Unlock()

	writeJSON(w, http.StatusOK, view)
}

// submitTurn handles POST /api/v1/personas/{id}/turns
func (s *Server) submitTurn(w http.ResponseWriter, r *http.Request) {
	e, ok := s.lookup(w, r)
	if !ok {
		return
	}

	var req turnRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxTurnBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "message is too large")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	text := strings.TrimSpace(req.Text)
	if text == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	start := time.Now()
	reply, err := e.session.SubmitTurn(r.Context(), text)
	if err != nil {
		if errors.Is(err, persona.ErrNotReady) {
			writeError(w, http.StatusConflict, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	latency := time.Since(start)
	turns := e.session.Turns()
	s.events.TurnCompleted(e.session.ID().String(), len(turns), reply.Failed, latency)
	s.logger.Info("turn completed",
		"session_id", e.session.ID(),
		"request_id", middleware.GetReqID(r.Context()),
		"turns", len(turns),
		"failed", reply.Failed,
		"latency_ms", latency.Milliseconds(),
	)

	writeJSON(w, http.StatusOK, turnResponse{
		User:      turns[len(turns)-2],
		Assistant: reply,
	})
}

// resetPersona handles POST /api/v1/personas/{id}/reset
func (s *Server) resetPersona(w http.ResponseWriter, r *http.Request) {
	e, ok := s.lookup(w, r)
	if !ok {
		return
	}
	e.mu.Lock()
	e.session.Reset()
	view := viewOf(e.session)
	e.mu.Unlock()

	writeJSON(w, http.StatusOK, view)
}

// deletePersona handles DELETE /api/v1/personas/{id}
func (s *Server) deletePersona(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	e, ok := s.sessions.remove(id)
	if !ok {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}

	e.mu.Lock()
	turns := len(e.session.Turns())
	e.mu.Unlock()

	s.events.SessionEnded(id.String(), turns)
	s.logger.Info("session ended", "session_id", id, "turns", turns)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (*entry, bool) {
	id, ok := parseID(w, r)
	if !ok {
		return nil, false
	}
	e, ok := s.sessions.get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "session not found")
		return nil, false
	}
	return e, true
}

func parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid session id")
		return uuid.UUID{}, false
	}
	return id, true
}
