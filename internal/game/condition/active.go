package condition

import (
	"fmt"
	"maps"
	"slices"
)

// Permanent is the ExpiresAtTurn value of conditions that never lapse.
const Permanent = -1

// ActiveCondition tracks one applied condition.
type ActiveCondition struct {
	Def           *ConditionDef
	AppliedAtTurn int
	// ExpiresAtTurn is the first turn number on which the condition is gone,
	// or Permanent.
	ExpiresAtTurn int
}

// ActiveSet tracks all conditions currently applied to the hero.
// It is not safe for concurrent use; the caller must serialise access.
type ActiveSet struct {
	conditions map[string]*ActiveCondition
}

// NewActiveSet creates an empty ActiveSet.
func NewActiveSet() *ActiveSet {
	return &ActiveSet{conditions: make(map[string]*ActiveCondition)}
}

// Apply adds def at the given turn. Re-applying a condition, or applying one
// from the same group, replaces the previous entry; nothing stacks.
//
// Precondition: def must not be nil.
// Postcondition: Has(def.ID) is true and no other condition shares its group.
func (s *ActiveSet) Apply(def *ConditionDef, turn int) error {
	if def == nil {
		return fmt.Errorf("Apply: def must not be nil")
	}
	if def.Group != "" {
		for id, ac := range s.conditions {
			if ac.Def.Group == def.Group {
				delete(s.conditions, id)
			}
		}
	}
	expires := Permanent
	if def.DurationType == DurationTurns {
		expires = turn + def.Duration
	}
	s.conditions[def.ID] = &ActiveCondition{Def: def, AppliedAtTurn: turn, ExpiresAtTurn: expires}
	return nil
}

// Remove deletes the condition with the given ID from the set.
// If the condition is not present, Remove is a no-op.
//
// Postcondition: Has(id) is false.
func (s *ActiveSet) Remove(id string) {
	delete(s.conditions, id)
}

// Expire removes every condition whose ExpiresAtTurn <= turn and returns
// their IDs in ascending order. Permanent conditions are not affected.
//
// Postcondition: For every id in the returned slice, Has(id) is false.
func (s *ActiveSet) Expire(turn int) []string {
	var expired []string
	for id, ac := range s.conditions {
		if ac.ExpiresAtTurn == Permanent || ac.ExpiresAtTurn > turn {
			continue
		}
		expired = append(expired, id)
		delete(s.conditions, id)
	}
	slices.Sort(expired)
	return expired
}

// Has reports whether the condition with id is currently active.
func (s *ActiveSet) Has(id string) bool {
	_, ok := s.conditions[id]
	return ok
}

// Get returns the active condition with id.
func (s *ActiveSet) Get(id string) (ActiveCondition, bool) {
	ac, ok := s.conditions[id]
	if !ok {
		return ActiveCondition{}, false
	}
	return *ac, true
}

// Len returns the number of active conditions.
func (s *ActiveSet) Len() int { return len(s.conditions) }

// All returns copies of the active conditions ordered by ID.
func (s *ActiveSet) All() []ActiveCondition {
	out := make([]ActiveCondition, 0, len(s.conditions))
	for _, id := range slices.Sorted(maps.Keys(s.conditions)) {
		out = append(out, *s.conditions[id])
	}
	return out
}

// Clone returns an independent copy of s. Definitions are shared.
func (s *ActiveSet) Clone() *ActiveSet {
	cp := NewActiveSet()
	for id, ac := range s.conditions {
		c := *ac
		cp.conditions[id] = &c
	}
	return cp
}

// IsActionRestricted reports whether the given action is blocked by any
// active condition's RestrictActions list.
func (s *ActiveSet) IsActionRestricted(action string) bool {
	for _, ac := range s.conditions {
		if slices.Contains(ac.Def.RestrictActions, action) {
			return true
		}
	}
	return false
}
