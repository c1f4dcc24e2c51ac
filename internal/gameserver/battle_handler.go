package gameserver

import (
	"errors"
	"net/http"

	"github.com/coder/websocket"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cory-johannsen/duskfall/internal/game/battle"
	"github.com/cory-johannsen/duskfall/internal/game/board"
	"github.com/cory-johannsen/duskfall/internal/game/combat"
	"github.com/cory-johannsen/duskfall/internal/game/turn"
)

// MoveRequest carries a local move vector.
type MoveRequest struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// FaceRequest carries a new heading.
type FaceRequest struct {
	Facing board.Facing `json:"facing"`
}

// ItemRequest names a consumable.
type ItemRequest struct {
	Item turn.Item `json:"item" binding:"required"`
}

// EndTurnRequest optionally fixes the round seed.
type EndTurnRequest struct {
	Seed *uint32 `json:"seed"`
}

// StartBattle creates a battle from a hero and board.
func (h *Handler) StartBattle(c *gin.Context) {
	var setup battle.Setup
	if err := c.ShouldBindJSON(&setup); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid battle setup", "detail": err.Error()})
		return
	}
	b, err := h.battles.Start(setup)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, b.View())
}

// GetBattle returns a battle's current view.
func (h *Handler) GetBattle(c *gin.Context) {
	b, ok := h.lookup(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, b.View())
}

// EndBattle ends a battle. The manager's end listener disconnects its feed.
func (h *Handler) EndBattle(c *gin.Context) {
	v, err := h.battles.End(c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

// Attack drafts an attack.
func (h *Handler) Attack(c *gin.Context) {
	var req combat.Action
	if !bind(c, &req) {
		return
	}
	h.act(c, func(b *battle.Battle) (battle.View, error) { return b.Attack(req.Kind, req.TargetID) })
}

// Move moves the hero by a local vector.
func (h *Handler) Move(c *gin.Context) {
	var req MoveRequest
	if !bind(c, &req) {
		return
	}
	h.act(c, func(b *battle.Battle) (battle.View, error) { return b.Move(board.Cell{X: req.X, Y: req.Y}) })
}

// Face turns the hero.
func (h *Handler) Face(c *gin.Context) {
	var req FaceRequest
	if !bind(c, &req) {
		return
	}
	h.act(c, func(b *battle.Battle) (battle.View, error) { return b.Face(req.Facing) })
}

// Defend takes the defense stance.
func (h *Handler) Defend(c *gin.Context) {
	h.act(c, (*battle.Battle).Defend)
}

// UseItem drafts a consumable.
func (h *Handler) UseItem(c *gin.Context) {
	var req ItemRequest
	if !bind(c, &req) {
		return
	}
	h.act(c, func(b *battle.Battle) (battle.View, error) { return b.UseItem(req.Item) })
}

// Rollback restores the turn-start snapshot.
func (h *Handler) Rollback(c *gin.Context) {
	h.act(c, (*battle.Battle).Rollback)
}

// EndTurn resolves the drafted round. The body is optional.
func (h *Handler) EndTurn(c *gin.Context) {
	var req EndTurnRequest
	if c.Request.ContentLength != 0 {
		if !bind(c, &req) {
			return
		}
	}
	b, ok := h.lookup(c)
	if !ok {
		return
	}
	round, err := b.EndTurn(req.Seed)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, round)
}

// Feed upgrades to a websocket that receives every resolved round of the
// battle until the client leaves or the battle is deleted.
func (h *Handler) Feed(c *gin.Context) {
	b, ok := h.lookup(c)
	if !ok {
		return
	}
	conn, err := websocket.Accept(c.Writer, c.Request, &websocket.AcceptOptions{InsecureSkipVerify: true})
	if err != nil {
		h.logger.Warn("websocket accept failed", zap.String("battle_id", b.ID()), zap.Error(err))
		return
	}
	h.logger.Info("feed subscribed", zap.String("battle_id", b.ID()))
	h.hub.Serve(c.Request.Context(), b.ID(), conn)
}

func (h *Handler) lookup(c *gin.Context) (*battle.Battle, bool) {
	b, err := h.battles.Get(c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return nil, false
	}
	return b, true
}

func (h *Handler) act(c *gin.Context, fn func(*battle.Battle) (battle.View, error)) {
	b, ok := h.lookup(c)
	if !ok {
		return
	}
	v, err := fn(b)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

func bind(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "detail": err.Error()})
		return false
	}
	return true
}

// fail maps a battle or rule error onto a status and JSON body.
func (h *Handler) fail(c *gin.Context, err error) {
	var rule *turn.RuleError
	switch {
	case errors.As(err, &rule):
		c.JSON(http.StatusConflict, gin.H{"error": rule.Message, "code": rule.Code})
	case errors.Is(err, battle.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, battle.ErrBattleOver):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "code": "battle_over"})
	case errors.Is(err, battle.ErrInvalidSetup):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, battle.ErrTooManyBattles):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	default:
		h.engineFault(c, err)
	}
}
