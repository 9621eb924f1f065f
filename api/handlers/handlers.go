package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/NethermindEth/magi/communication"
	"github.com/NethermindEth/magi/consensus"
	"github.com/NethermindEth/magi/core"
	"github.com/NethermindEth/magi/storage"
)

const defaultListLimit = 20

// Handlers serves the council API
type Handlers struct {
	council *consensus.Council
	store   storage.Store
	logger  *zap.Logger
}

func New(council *consensus.Council, store storage.Store, logger *zap.Logger) *Handlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handlers{council: council, store: store, logger: logger}
}

type deliberateRequest struct {
	Proposal string `json:"proposal"`
}

// Deliberate - Submits a proposal to the council
func (h *Handlers) Deliberate(c *gin.Context) {
	var req deliberateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid proposal data"})
		return
	}

	session, err := h.council.Deliberate(c.Request.Context(), req.Proposal)
	if errors.Is(err, consensus.ErrProposalRequired) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		h.council.Announce(c.Request.Context(), communication.NewEvent(communication.EventSystemError, gin.H{
			"error": err.Error(),
			"cue":   core.CueAlarm,
		}))
		c.JSON(http.StatusBadGateway, gin.H{"error": "SYSTEM ERROR", "detail": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"session":          session,
		"report_available": h.council.ReportAvailable(session),
	})
}

// ListSessions - Returns recent sessions, newest first
func (h *Handlers) ListSessions(c *gin.Context) {
	limit := defaultListLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit"})
			return
		}
		limit = n
	}

	sessions, err := h.store.ListSessions(limit)
	if err != nil {
		h.logger.Error("Failed to list sessions", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list sessions"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"sessions": sessions})
}

// GetSession - Fetch a session by ID
func (h *Handlers) GetSession(c *gin.Context) {
	session, err := h.store.GetSession(c.Param("id"))
	if errors.Is(err, storage.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return
	}
	if err != nil {
		h.logger.Error("Failed to load session", zap.String("session", c.Param("id")), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load session"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"session":          session,
		"report_available": h.council.ReportAvailable(session),
	})
}

// GetPersonalities - Returns the council members
func (h *Handlers) GetPersonalities(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"personalities": core.Personalities(),
		"source":        h.council.Source(),
	})
}
