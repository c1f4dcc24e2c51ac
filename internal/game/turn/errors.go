package turn

import (
	"errors"
	"fmt"

	"github.com/cory-johannsen/duskfall/internal/game/board"
)

// Rule violations. A rejected operation never changes controller state.
var (
	ErrNoPoints       = errors.New("no action points left in pool")
	ErrMovementLocked = errors.New("movement is locked after attacking")
	ErrInvalidTarget  = errors.New("target is missing or dead")
	ErrIllegalMove    = board.ErrIllegalMove
	ErrWrongPhase     = errors.New("not the player phase")
	ErrUnknownAction  = errors.New("unknown action")
	ErrRestricted     = errors.New("action restricted by a status")
	ErrActionDrafted  = errors.New("an attack is already drafted this turn")
)

var ruleCodes = map[error]string{
	ErrNoPoints:       "no_points",
	ErrMovementLocked: "movement_locked",
	ErrInvalidTarget:  "invalid_target",
	ErrIllegalMove:    "illegal_move",
	ErrWrongPhase:     "wrong_phase",
	ErrUnknownAction:  "unknown_action",
	ErrRestricted:     "restricted",
	ErrActionDrafted:  "action_drafted",
}

// RuleError is a rule violation carrying a machine-readable code.
type RuleError struct {
	Code    string
	Message string
	Err     error
}

func (e *RuleError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *RuleError) Unwrap() error { return e.Err }

func violation(sentinel error, format string, args ...any) *RuleError {
	msg := sentinel.Error()
	if format != "" {
		msg = fmt.Sprintf(format, args...) + ": " + msg
	}
	return &RuleError{Code: ruleCodes[sentinel], Message: msg, Err: sentinel}
}
