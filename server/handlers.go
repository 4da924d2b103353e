package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/smallnest/talentsearch/agent"
	"github.com/smallnest/talentsearch/filters"
	"github.com/smallnest/talentsearch/session"
)

type chatRequest struct {
	SessionID string `json:"sessionId"`
	Message   string `json:"message"`
}

type skipRequest struct {
	Field string `json:"field"`
}

// fail maps service errors to status codes.
func (s *Server) fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, session.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, agent.ErrEmptyMessage):
		status = http.StatusBadRequest
	default:
		s.logger.Error("http: %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func (s *Server) handleChat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": agent.ErrEmptyMessage.Error()})
		return
	}

	turn, err := s.svc.Chat(c.Request.Context(), req.SessionID, req.Message)
	if err != nil {
		s.fail(c, err)
		return
	}

	h := c.Writer.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache, no-transform")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	h.Set(SessionHeader, turn.SessionID)
	c.Status(http.StatusOK)

	// The channel closes once the turn ends; a gone client cancels the
	// turn, so draining never blocks for long.
	failed := false
	for e := range turn.Events {
		if failed {
			continue
		}
		if err := writeEvent(c.Writer, e); err != nil {
			s.logger.Debug("http: stream to session %s ended: %v", turn.SessionID, err)
			failed = true
		}
	}
}

// writeEvent writes one SSE frame and flushes it.
func writeEvent(w gin.ResponseWriter, e agent.Event) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "data: %s\n\n", payload); err != nil {
		return err
	}
	w.Flush()
	return nil
}

func (s *Server) handleGetChat(c *gin.Context) {
	id := c.Query("sessionId")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "sessionId is required"})
		return
	}
	s.writeSession(c, id)
}

func (s *Server) handleGetSession(c *gin.Context) {
	s.writeSession(c, c.Param("id"))
}

func (s *Server) writeSession(c *gin.Context, id string) {
	sess, err := s.svc.Store().Get(c.Request.Context(), id, false)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, sess)
}

func (s *Server) handleListSessions(c *gin.Context) {
	list, err := s.svc.Store().List(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sessions": list})
}

func (s *Server) handleCreateSession(c *gin.Context) {
	sess, err := s.svc.Store().Create(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, sess)
}

func (s *Server) handleDeleteSession(c *gin.Context) {
	if err := s.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) handleClearSession(c *gin.Context) {
	sess, err := s.svc.Clear(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, sess)
}

func (s *Server) handleSkipField(c *gin.Context) {
	var req skipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	field, ok := filters.ParseField(req.Field)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("unknown field %q", req.Field)})
		return
	}
	sess, err := s.svc.Skip(c.Request.Context(), c.Param("id"), field)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, sess)
}

func (s *Server) handleGraph(c *gin.Context) {
	c.String(http.StatusOK, s.svc.Agent().Mermaid())
}

func (s *Server) handleTranscript(c *gin.Context) {
	sess, err := s.svc.Store().Get(c.Request.Context(), c.Param("id"), false)
	if err != nil {
		s.fail(c, err)
		return
	}
	page, err := renderTranscript(sess)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", page)
}
