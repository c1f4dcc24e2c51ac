package combat

import (
	"math"
	"strconv"
	"strings"

	"github.com/cory-johannsen/duskfall/internal/game/dice"
)

// RollInputs are the modifiers of a standalone skill check.
type RollInputs struct {
	Mastery     int `json:"mastery"`
	Flat        int `json:"flat"`
	Ingenuity   int `json:"ingenuity"`
	Luck        int `json:"luck"`
	Fatigue     int `json:"fatigue"`
	Situational int `json:"situational,omitempty"`
}

// RollRequest is a roll-service call. D20Raw is honoured only when it is an
// integer in [1, 20]; any other value is ignored.
type RollRequest struct {
	DC     int        `json:"dc"`
	D20Raw any        `json:"d20Raw,omitempty"`
	Inputs RollInputs `json:"inputs"`
}

// Crit labels on the wire.
const (
	CritNone    = "none"
	CritSucceed = "critSuccess"
	CritFail    = "critFail"
)

// RollResponse is the roll-service reply.
type RollResponse struct {
	RequestID string `json:"request_id"`
	D20       int    `json:"d20"`
	Total     int    `json:"total"`
	DC        int    `json:"dc"`
	Success   bool   `json:"success"`
	Crit      string `json:"crit"`
}

// RollCheck resolves a standalone d20 check. A natural 20 or 1 overrides the
// comparison with dc. The caller assigns RequestID.
//
// Precondition: src is non-nil.
// Postcondition: 1 <= D20 <= 20; Success is consistent with Crit.
func RollCheck(req RollRequest, src dice.Source) RollResponse {
	d20, ok := rawD20(req.D20Raw)
	if !ok {
		d20 = src.Intn(20) + 1
	}
	in := req.Inputs
	total := d20 + in.Mastery + in.Flat + in.Ingenuity + in.Luck - in.Fatigue + in.Situational
	outcome := OutcomeFor(d20, total, req.DC)

	crit := CritNone
	switch outcome {
	case CritSuccess:
		crit = CritSucceed
	case CritFailure:
		crit = CritFail
	}
	return RollResponse{
		D20:     d20,
		Total:   total,
		DC:      req.DC,
		Success: outcome.Succeeded(),
		Crit:    crit,
	}
}

// rawD20 accepts a JSON number or numeric string holding an integer 1..20.
func rawD20(v any) (int, bool) {
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case int:
		f = float64(x)
	case string:
		p, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, false
		}
		f = p
	default:
		return 0, false
	}
	if f != math.Trunc(f) || f < 1 || f > 20 {
		return 0, false
	}
	return int(f), true
}
