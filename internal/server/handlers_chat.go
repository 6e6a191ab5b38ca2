package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/claude/plancoach/internal/coach"
	"github.com/claude/plancoach/internal/models"
)

type chatRequest struct {
	Message string          `json:"message"`
	History []coach.Message `json:"history"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if s.coach == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "coach is not configured"})
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if req.Message == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "message is required"})
		return
	}

	start := time.Now()
	reply, err := s.coach.Ask(r.Context(), req.Message, req.History)
	if s.metrics != nil {
		s.metrics.HistCoachDuration.Observe(time.Since(start).Seconds())
	}
	if err != nil {
		s.countReply("error")
		s.log.Error("coach request failed", "error", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "the coach is unavailable right now, try again later"})
		return
	}

	if reply.Workout != nil {
		s.countReply("workout")
	} else {
		s.countReply("text")
	}
	writeJSON(w, http.StatusOK, reply)
}

func (s *Server) handleChatAccept(w http.ResponseWriter, r *http.Request) {
	if s.coach == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "coach is not configured"})
		return
	}

	var parsed models.ParsedWorkout
	if err := json.NewDecoder(r.Body).Decode(&parsed); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	saved, err := s.coach.Accept(r.Context(), &parsed)
	if errors.Is(err, coach.ErrNoWorkout) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.countSaved(saved.Origin)
	writeJSON(w, http.StatusCreated, saved)
}

func (s *Server) countReply(outcome string) {
	if s.metrics != nil {
		s.metrics.CounterCoachReplies.WithLabelValues(outcome).Inc()
	}
}
