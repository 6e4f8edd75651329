package ui

import (
	"net/http"

	"focusgate/app"
	"focusgate/internal/errors"
	"focusgate/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type startRequest struct {
	Kind            string  `json:"kind" binding:"required"`
	Intention       *string `json:"intention"`
	PriorityID      *string `json:"priority_id"`
	NextUpID        *string `json:"next_up_id"`
	DurationMinutes *int    `json:"duration_minutes"`
}

type endRequest struct {
	Distractions  *int  `json:"distractions" binding:"required"`
	DidTheThing   *bool `json:"did_the_thing" binding:"required"`
	RabbitHole    bool  `json:"rabbit_hole"`
	AssistantUsed bool  `json:"assistant_used"`
}

func (s *Server) handleStart(c *gin.Context) {
	var req startRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	in := app.StartInput{
		Kind:            models.SessionKind(req.Kind),
		Intention:       req.Intention,
		DurationMinutes: req.DurationMinutes,
	}

	if req.PriorityID != nil {
		id, err := uuid.Parse(*req.PriorityID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid priority_id"})
			return
		}
		in.PriorityID = &id
	}
	if req.NextUpID != nil {
		id, err := uuid.Parse(*req.NextUpID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid next_up_id"})
			return
		}
		in.NextUpID = &id
	}

	session, err := s.service.Start(c.Request.Context(), in)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, session)
}

func (s *Server) handleEnd(c *gin.Context) {
	var req endRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	session, err := s.service.End(c.Request.Context(), *req.Distractions, *req.DidTheThing, req.RabbitHole, req.AssistantUsed)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ended", "session_id": session.ID})
}

func (s *Server) handleTimerComplete(c *gin.Context) {
	result, err := s.service.TimerComplete(c.Request.Context())
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) handleAbandon(c *gin.Context) {
	if err := s.service.Abandon(c.Request.Context()); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "abandoned"})
}

func (s *Server) handleStatus(c *gin.Context) {
	status, err := s.service.Status(c.Request.Context())
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

func (s *Server) handleCanStart(c *gin.Context) {
	check, err := s.service.CanStart(c.Request.Context())
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, check)
}

// writeError maps the error taxonomy to HTTP statuses: eligibility and
// validation failures are the caller's to fix (400), gate failures during a
// youtube start surface as a bad gateway, everything else is internal.
func (s *Server) writeError(c *gin.Context, err error) {
	switch errors.GetCode(err) {
	case errors.CodeEligibility, errors.CodeValidation, errors.CodeNotFound:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.CodeGateError:
		s.logger.Error("gate failure: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "distraction gate unavailable"})
	default:
		s.logger.Error("internal error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
