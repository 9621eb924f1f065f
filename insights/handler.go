package insights

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/NethermindEth/magi/communication"
	"github.com/NethermindEth/magi/storage"
)

type Handler struct {
	reporter  *Reporter
	publisher communication.Publisher
}

// NewHandler serves reports; publisher may be nil.
func NewHandler(reporter *Reporter, publisher communication.Publisher) *Handler {
	return &Handler{reporter: reporter, publisher: publisher}
}

// GenerateReport writes the tactical report for a stored session
func (h *Handler) GenerateReport(c *gin.Context) {
	if h.reporter == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Reporter not initialized"})
		return
	}

	report, err := h.reporter.ReportByID(c.Request.Context(), c.Param("id"))
	switch {
	case errors.Is(err, storage.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return
	case errors.Is(err, ErrAPIKeyRequired), errors.Is(err, ErrNoDecision):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case err != nil:
		c.JSON(http.StatusBadGateway, gin.H{"error": "REPORT GENERATION FAILED", "detail": err.Error()})
		return
	}

	if h.publisher != nil {
		ev := communication.ReportEvent(report.SessionID, report.Report)
		_ = h.publisher.Publish(c.Request.Context(), ev)
	}
	c.JSON(http.StatusOK, report)
}
