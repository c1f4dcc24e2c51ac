// Package combat resolves one round of a skirmish between the hero and the
// enemies on the board.
//
// The engine is a pure function of (action, state, dice source): it works on
// copies of the caller's hero and board and returns deltas plus a log.
package combat

// Outcome is the four-tier result of a d20 check.
type Outcome int

const (
	CritSuccess Outcome = iota
	Success
	Failure
	CritFailure
)

// String returns a human-readable outcome label.
func (o Outcome) String() string {
	switch o {
	case CritSuccess:
		return "critical success"
	case Success:
		return "success"
	case Failure:
		return "failure"
	case CritFailure:
		return "critical failure"
	default:
		return "unknown"
	}
}

// Succeeded reports whether o counts as a success.
func (o Outcome) Succeeded() bool { return o == CritSuccess || o == Success }

// OutcomeFor classifies a check. A natural 20 always critically succeeds and
// a natural 1 always critically fails; otherwise total must meet dc.
//
// Precondition: 1 <= d20 <= 20.
// Postcondition: returns one of the four Outcome values.
func OutcomeFor(d20, total, dc int) Outcome {
	switch {
	case d20 >= 20:
		return CritSuccess
	case d20 <= 1:
		return CritFailure
	case total >= dc:
		return Success
	default:
		return Failure
	}
}

// StagesFor returns how many hp stages a player attack with outcome o
// inflicts.
func StagesFor(o Outcome) int {
	switch o {
	case CritSuccess:
		return 2
	case Success:
		return 1
	default:
		return 0
	}
}

// MarginBonus is the extra damage for a lopsided failed defense: +1 once the
// attack DC beats the defense total by 5, another +1 at 10.
//
// Postcondition: 0 <= result <= 2.
func MarginBonus(margin int) int {
	bonus := 0
	if margin >= 5 {
		bonus++
	}
	if margin >= 10 {
		bonus++
	}
	return bonus
}
