package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/andresuchdata/safetystock/internal/domain"
	"github.com/andresuchdata/safetystock/internal/scenario"
	"github.com/andresuchdata/safetystock/internal/service"
	"github.com/andresuchdata/safetystock/internal/sweep"
)

type WhatIfHandler struct {
	service *service.WhatIfService
}

func NewWhatIfHandler(service *service.WhatIfService) *WhatIfHandler {
	return &WhatIfHandler{service: service}
}

type quantileRequest struct {
	P *float64 `json:"p" binding:"required"`
}

type reconcileRequest struct {
	DemandProfile []float64 `json:"demand_profile"`
	// DemandProfileText accepts the comma-separated form used by the planner UI.
	DemandProfileText string                  `json:"demand_profile_text"`
	Result            domain.SimulationResult `json:"result"`
}

func (h *WhatIfHandler) Quantile(c *gin.Context) {
	var req quantileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	result, err := h.service.Quantile(*req.P)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *WhatIfHandler) Evaluate(c *gin.Context) {
	var in domain.ScenarioInputs
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	out, err := h.service.Evaluate(in)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, out)
}

func (h *WhatIfHandler) Reconcile(c *gin.Context) {
	var req reconcileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	profile := req.DemandProfile
	if len(profile) == 0 && strings.TrimSpace(req.DemandProfileText) != "" {
		parsed, err := domain.ParseDemandProfile(req.DemandProfileText)
		if err != nil {
			writeError(c, err)
			return
		}
		profile = parsed
	}

	result, err := h.service.Reconcile(profile, req.Result)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *WhatIfHandler) Sweep(c *gin.Context) {
	var req sweep.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	points, err := h.service.Sweep(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"points": points})
}

func (h *WhatIfHandler) CreateSession(c *gin.Context) {
	var in domain.ScenarioInputs
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	session, err := h.service.CreateSession(in)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, session)
}

func (h *WhatIfHandler) GetSession(c *gin.Context) {
	session, err := h.service.GetSession(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, session)
}

func (h *WhatIfHandler) UpdateInputs(c *gin.Context) {
	var in domain.ScenarioInputs
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	session, err := h.service.UpdateInputs(c.Param("id"), in)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, session)
}

func (h *WhatIfHandler) Simulate(c *gin.Context) {
	var req domain.SimulationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	outcome, err := h.service.Simulate(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		var tf *domain.TransportFailure
		if errors.As(err, &tf) {
			c.JSON(http.StatusBadGateway, gin.H{"error": "simulation failed", "details": tf.Error(), "outcome": outcome})
			return
		}
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, outcome)
}

func (h *WhatIfHandler) DeleteSession(c *gin.Context) {
	if err := h.service.DeleteSession(c.Param("id")); err != nil {
		writeError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *WhatIfHandler) ClearCache(c *gin.Context) {
	if err := h.service.ClearReplayCache(c.Request.Context()); err != nil {
		writeError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// writeError maps the error taxonomy onto HTTP status codes.
func writeError(c *gin.Context, err error) {
	var (
		domainErr  *domain.DomainError
		validation domain.ValidationErrors
		transport  *domain.TransportFailure
	)

	switch {
	case errors.As(err, &transport):
		c.JSON(http.StatusBadGateway, gin.H{"error": "simulation failed", "details": transport.Error()})
	case errors.As(err, &domainErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": "input outside its domain", "field": domainErr.Field, "details": domainErr.Error()})
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "issues": []domain.ValidationError(validation)})
	case errors.Is(err, service.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, scenario.ErrSuperseded):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, scenario.ErrNoSimulator):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	default:
		log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("unhandled error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
