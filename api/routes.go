package api

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/NethermindEth/magi/api/handlers"
	"github.com/NethermindEth/magi/communication"
	"github.com/NethermindEth/magi/consensus"
	"github.com/NethermindEth/magi/insights"
	"github.com/NethermindEth/magi/storage"
)

// Deps groups everything the routes serve
type Deps struct {
	Council  *consensus.Council
	Store    storage.Store
	Reporter *insights.Reporter
	Hub      *communication.WebSocketManager
	// Publisher receives report events; usually the same fan-out the council uses.
	Publisher communication.Publisher
	Logger    *zap.Logger
}

// SetupRoutes initializes all API endpoints
func SetupRoutes(router *gin.Engine, deps Deps) {
	h := handlers.New(deps.Council, deps.Store, deps.Logger)
	reports := insights.NewHandler(deps.Reporter, deps.Publisher)

	api := router.Group("/api")
	{
		api.POST("/deliberate", h.Deliberate)
		api.GET("/sessions", h.ListSessions)
		api.GET("/sessions/:id", h.GetSession)
		api.POST("/sessions/:id/report", reports.GenerateReport)
		api.GET("/personalities", h.GetPersonalities)
	}

	if deps.Hub != nil {
		router.GET("/ws", handlers.HandleWebSocket(deps.Hub, deps.Logger))
	}
}
