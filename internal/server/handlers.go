package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/spigell/hh-screener/internal/interview"
	"github.com/spigell/hh-screener/internal/registry"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type messageRequest struct {
	Text string `json:"text"`
}

// SessionResponse is returned by every endpoint that produces an utterance.
type SessionResponse struct {
	SessionID string            `json:"session_id"`
	Reply     interview.Reply   `json:"reply"`
	Summary   interview.Summary `json:"summary"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

func respondError(c *gin.Context, status int, code, message string, details any) {
	c.AbortWithStatusJSON(status, errorResponse{Error: errorBody{Code: code, Message: message, Details: details}})
}

// respondLookup answers registry errors; it reports whether it wrote a response.
func (h *Handler) respondLookup(c *gin.Context, err error) bool {
	if err == nil {
		return false
	}
	var fatal *interview.FatalSessionError
	switch {
	case errors.Is(err, registry.ErrNotFound):
		respondError(c, http.StatusNotFound, "session_expired", "the session has expired or does not exist, please start a new one", nil)
	case errors.As(err, &fatal):
		respondError(c, http.StatusInternalServerError, "session_terminated", "the interview was terminated because of an internal error", nil)
	default:
		h.logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		respondError(c, http.StatusInternalServerError, "internal_error", "internal error", nil)
	}
	return true
}

func (h *Handler) start(s *interview.Session, resp *SessionResponse) error {
	resp.SessionID = s.ID
	resp.Reply = h.machine.Start(s)
	resp.Summary = interview.Summarize(s)
	return nil
}

func (h *Handler) create(c *gin.Context) {
	var resp SessionResponse
	_, err := h.registry.Create(func(s *interview.Session) error { return h.start(s, &resp) })
	if h.respondLookup(c, err) {
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *Handler) get(c *gin.Context) {
	var resp SessionResponse
	err := h.registry.With(c.Param("id"), func(s *interview.Session) error {
		resp.SessionID = s.ID
		resp.Reply = h.machine.Prompt(s)
		resp.Summary = interview.Summarize(s)
		return nil
	})
	if h.respondLookup(c, err) {
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) message(c *gin.Context) {
	var req messageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_request", "body must be a JSON object with a text field", nil)
		return
	}

	// A turn runs to completion even if the client goes away.
	ctx := context.WithoutCancel(c.Request.Context())

	var resp SessionResponse
	err := h.registry.With(c.Param("id"), func(s *interview.Session) error {
		wasEnded := s.Phase.Terminal()
		reply, err := h.machine.Handle(ctx, s, req.Text)
		resp.SessionID = s.ID
		resp.Reply = reply
		resp.Summary = interview.Summarize(s)
		// Archived once, on the turn that ended the interview.
		if !wasEnded && reply.Progress.Ended && h.exportDir != "" {
			h.archive(s)
		}
		return err
	})

	var fatal *interview.FatalSessionError
	if errors.As(err, &fatal) {
		respondError(c, http.StatusInternalServerError, "session_terminated", "the interview was terminated because of an internal error", resp)
		return
	}
	if h.respondLookup(c, err) {
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) archive(s *interview.Session) {
	name, err := interview.WriteExport(s, h.exportDir)
	if err != nil {
		h.logger.Error("failed to export session", zap.String("session_id", s.ID), zap.Error(err))
		return
	}
	h.logger.Info("session exported", zap.String("session_id", s.ID), zap.String("file", name))
}

func (h *Handler) export(c *gin.Context) {
	var doc interview.Document
	err := h.registry.With(c.Param("id"), func(s *interview.Session) error {
		doc = interview.Export(s)
		return nil
	})
	if h.respondLookup(c, err) {
		return
	}
	c.JSON(http.StatusOK, doc)
}

func (h *Handler) reset(c *gin.Context) {
	var resp SessionResponse
	_, err := h.registry.Reset(c.Param("id"), func(s *interview.Session) error { return h.start(s, &resp) })
	if h.respondLookup(c, err) {
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *Handler) remove(c *gin.Context) {
	if h.respondLookup(c, h.registry.Delete(c.Param("id"))) {
		return
	}
	c.Status(http.StatusNoContent)
}
