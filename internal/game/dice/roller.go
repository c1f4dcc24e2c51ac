package dice

import "go.uber.org/zap"

// Roller wraps a Source and logs every roll at debug level.
type Roller struct {
	src    Source
	logger *zap.Logger
}

// NewLoggedRoller creates a Roller drawing from src and logging to logger.
//
// Precondition: src and logger must be non-nil.
func NewLoggedRoller(src Source, logger *zap.Logger) *Roller {
	return &Roller{src: src, logger: logger}
}

// D20 rolls a single twenty-sided die.
//
// Postcondition: 1 <= result <= 20.
func (r *Roller) D20(purpose string) int {
	v := r.src.Intn(20) + 1
	r.logger.Debug("d20 roll",
		zap.String("purpose", purpose),
		zap.Int("d20", v),
	)
	return v
}

// Roll evaluates expr and logs the result.
func (r *Roller) Roll(purpose string, expr Expression) RollResult {
	result := Roll(expr, r.src)
	r.logger.Debug("dice roll",
		zap.String("purpose", purpose),
		zap.String("expression", result.Expression),
		zap.Ints("dice", result.Dice),
		zap.Int("modifier", result.Modifier),
		zap.Int("total", result.Total()),
	)
	return result
}
