package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"babble/internal/db"
	"babble/internal/service"
)

type GenerateRequest struct {
	Scope     string   `json:"scope" binding:"required"`
	MaxWords  int      `json:"max_words" binding:"gte=0,lte=200"`
	Hints     []string `json:"hints"`
	LooksGood bool     `json:"looks_good"`
}

type RelatedRequest struct {
	Scope    string `json:"scope" binding:"required"`
	Seed     string `json:"seed" binding:"required"`
	MaxWords int    `json:"max_words" binding:"gte=0,lte=200"`
}

type ReplyRequest struct {
	Scope    string `json:"scope" binding:"required"`
	Text     string `json:"text" binding:"required"`
	MaxWords int    `json:"max_words" binding:"gte=0,lte=200"`
}

type MessageRequest struct {
	Scope string `json:"scope" binding:"required"`
	Text  string `json:"text" binding:"required"`
}

type MessageResponse struct {
	Outcome service.LearnOutcome `json:"outcome"`
}

func (s *Server) handleGenerate(c *gin.Context) {
	var req GenerateRequest
	if !bind(c, &req) || !s.allow(c, req.Scope) {
		return
	}
	res, err := s.svc.Generate(c.Request.Context(), service.GenerateRequest{
		Scope:            req.Scope,
		MaxWords:         req.MaxWords,
		Hints:            req.Hints,
		RequireLooksGood: req.LooksGood,
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) handleRelated(c *gin.Context) {
	var req RelatedRequest
	if !bind(c, &req) || !s.allow(c, req.Scope) {
		return
	}
	res, err := s.svc.Related(c.Request.Context(), req.Scope, req.Seed, req.MaxWords)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) handleReply(c *gin.Context) {
	var req ReplyRequest
	if !bind(c, &req) || !s.allow(c, req.Scope) {
		return
	}
	res, err := s.svc.Reply(c.Request.Context(), req.Scope, req.Text, req.MaxWords)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) handleLearn(c *gin.Context) {
	var req MessageRequest
	if !bind(c, &req) {
		return
	}
	outcome, err := s.svc.Learn(c.Request.Context(), req.Scope, req.Text)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Outcome: outcome})
}

func (s *Server) handleSetLearning(enabled bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		scope := c.Param("scope")
		if err := s.svc.SetLearning(c.Request.Context(), scope, enabled); err != nil {
			s.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"scope": scope, "learning": enabled})
	}
}

func (s *Server) handleStats(c *gin.Context) {
	stats, err := s.svc.Stats(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func bind(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return false
	}
	return true
}

func (s *Server) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrEmptyScope):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, db.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		s.logger.Error("request failed", "path", c.FullPath(), "error", err, "request_id", c.GetString("request_id"))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
