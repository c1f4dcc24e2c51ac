package gameserver

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/duskfall/internal/game/combat"
)

// ResolveRound serves the stateless round tick. Malformed bodies and engine
// faults both answer 500 with the engine-failure body.
func (h *Handler) ResolveRound(c *gin.Context) {
	var req combat.Request
	if err := json.NewDecoder(c.Request.Body).Decode(&req); err != nil {
		h.engineFault(c, fmt.Errorf("decoding round request: %w", err))
		return
	}
	resp, err := combat.Tick(req, h.logger)
	if err != nil {
		h.engineFault(c, err)
		return
	}
	h.logger.Info("round tick resolved",
		zap.String("action", string(req.Action.Kind)),
		zap.Uint32("seed", resp.Seed),
		zap.Bool("end", resp.End),
	)
	c.JSON(http.StatusOK, resp)
}

// Roll serves the standalone skill check.
func (h *Handler) Roll(c *gin.Context) {
	var req combat.RollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid roll request", "detail": err.Error()})
		return
	}
	resp := combat.RollCheck(req, h.rollSrc)
	resp.RequestID = uuid.NewString()
	h.logger.Debug("roll",
		zap.String("request_id", resp.RequestID),
		zap.Int("d20", resp.D20),
		zap.Int("total", resp.Total),
		zap.Int("dc", resp.DC),
		zap.String("crit", resp.Crit),
	)
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) engineFault(c *gin.Context, err error) {
	h.logger.Error("combat engine failure", zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": engineFailure, "detail": err.Error()})
}
