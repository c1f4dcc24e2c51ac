// Package gameserver exposes the combat engine and battle sessions over HTTP
// and the per-battle websocket round feed.
package gameserver

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cory-johannsen/duskfall/internal/game/battle"
	"github.com/cory-johannsen/duskfall/internal/game/dice"
	"github.com/cory-johannsen/duskfall/internal/ws"
)

// Route paths.
const (
	RouteRound   = "/api/combat/round"
	RouteRoll    = "/api/roll"
	RouteBattles = "/api/battles"
	RouteBattle  = "/api/battles/:id"
	RouteFeed    = "/ws/battles/:id"
)

// engineFailure is the fixed error text of every 500 response.
const engineFailure = "combat engine failure"

// Handler groups the HTTP handlers.
type Handler struct {
	battles *battle.Manager
	hub     *ws.Hub
	rollSrc dice.Source
	logger  *zap.Logger
}

// NewHandler wires the handlers to their collaborators. rollSrc backs the
// roll service when the caller supplies no usable d20.
//
// Precondition: every argument is non-nil.
func NewHandler(battles *battle.Manager, hub *ws.Hub, rollSrc dice.Source, logger *zap.Logger) *Handler {
	return &Handler{battles: battles, hub: hub, rollSrc: rollSrc, logger: logger}
}

// NewRouter builds the gin engine. The caller selects the gin mode.
func NewRouter(h *Handler) *gin.Engine {
	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.Use(RequestLogger(h.logger), Recovery(h.logger))
	router.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "method not allowed"})
	})
	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})

	router.POST(RouteRound, h.ResolveRound)
	router.POST(RouteRoll, h.Roll)

	battles := router.Group(RouteBattles)
	{
		battles.POST("", h.StartBattle)
		battles.GET("/:id", h.GetBattle)
		battles.DELETE("/:id", h.EndBattle)
		battles.POST("/:id/attack", h.Attack)
		battles.POST("/:id/move", h.Move)
		battles.POST("/:id/face", h.Face)
		battles.POST("/:id/defend", h.Defend)
		battles.POST("/:id/item", h.UseItem)
		battles.POST("/:id/rollback", h.Rollback)
		battles.POST("/:id/end-turn", h.EndTurn)
	}

	router.GET(RouteFeed, h.Feed)
	return router
}

// Recovery turns a handler panic into the engine-failure response.
func Recovery(logger *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(io.Discard, func(c *gin.Context, recovered any) {
		logger.Error("handler panic",
			zap.String("path", c.FullPath()),
			zap.Any("panic", recovered),
		)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":  engineFailure,
			"detail": fmt.Sprint(recovered),
		})
	})
}

// RequestLogger logs one line per request.
func RequestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("elapsed", time.Since(start)),
		)
	}
}

// RoundPublisher returns a battle listener that pushes every resolved round
// to the battle's websocket subscribers.
func RoundPublisher(hub *ws.Hub, logger *zap.Logger) battle.RoundListener {
	return func(battleID string, r battle.Round) {
		n, err := hub.Publish(battleID, r)
		if err != nil {
			logger.Error("publishing round", zap.String("battle_id", battleID), zap.Error(err))
			return
		}
		logger.Debug("round published",
			zap.String("battle_id", battleID),
			zap.Int("round", r.Number),
			zap.Int("subscribers", n),
		)
	}
}

// TopicCloser returns a battle end listener that disconnects the battle's
// websocket subscribers with the end reason.
func TopicCloser(hub *ws.Hub, logger *zap.Logger) battle.EndListener {
	return func(battleID string, v battle.View) {
		hub.CloseTopic(battleID, v.EndReason)
		logger.Debug("feed closed", zap.String("battle_id", battleID), zap.String("reason", v.EndReason))
	}
}
