package statemachine

import (
	"errors"

	"local-services-api/models"
)

// Actor identifies who is attempting a status transition
type Actor string

const (
	ActorOwner Actor = "owner"
	ActorAdmin Actor = "admin"
)

// Transition defines a valid state change and who can perform it
type Transition struct {
	From  models.BusinessStatus
	To    models.BusinessStatus
	Actor Actor
}

var allStatuses = []models.BusinessStatus{
	models.StatusPending,
	models.StatusActive,
	models.StatusSuspended,
	models.StatusRejected,
	models.StatusInactive,
}

// validTransitions is the authoritative state machine definition.
// Admins may move a listing between any of the five states (moderation is
// unrestricted, every move is audited). Owners may only (re)activate or
// soft-delete their own listing — suspended/rejected/pending can only ever
// be produced by an admin.
var validTransitions = func() []Transition {
	var ts []Transition
	for _, from := range allStatuses {
		for _, to := range allStatuses {
			ts = append(ts, Transition{From: from, To: to, Actor: ActorAdmin})
		}
		ts = append(ts, Transition{From: from, To: models.StatusActive, Actor: ActorOwner})
		ts = append(ts, Transition{From: from, To: models.StatusInactive, Actor: ActorOwner})
	}
	return ts
}()

// transitionKey is used to look up valid transitions quickly
type transitionKey struct {
	From  models.BusinessStatus
	To    models.BusinessStatus
	Actor Actor
}

// Build a lookup map for O(1) validation
var transitionMap = func() map[transitionKey]bool {
	m := make(map[transitionKey]bool)
	for _, t := range validTransitions {
		m[transitionKey{t.From, t.To, t.Actor}] = true
	}
	return m
}()

// InitialStatus is forced at creation regardless of client input.
func InitialStatus() models.BusinessStatus {
	return models.StatusPending
}

// ValidTransitionsFrom returns all valid next states for an actor from a given state
func ValidTransitionsFrom(status models.BusinessStatus, actor Actor) []models.BusinessStatus {
	var nexts []models.BusinessStatus
	seen := map[models.BusinessStatus]bool{}
	for _, t := range validTransitions {
		if t.From == status && t.Actor == actor && !seen[t.To] {
			nexts = append(nexts, t.To)
			seen[t.To] = true
		}
	}
	return nexts
}

// CanTransition checks if a given actor can move a listing from one state to another
func CanTransition(from, to models.BusinessStatus, actor Actor) error {
	if !models.ValidStatus(to) {
		return errors.New("invalid status '" + string(to) + "'")
	}
	if transitionMap[transitionKey{From: from, To: to, Actor: actor}] {
		return nil
	}
	return errors.New(
		"invalid transition: " + string(from) + " -> " + string(to) +
			" is not allowed for actor '" + string(actor) + "'. " +
			"Valid transitions from " + string(from) + " are: " + describeValidFrom(from, actor),
	)
}

func describeValidFrom(status models.BusinessStatus, actor Actor) string {
	nexts := ValidTransitionsFrom(status, actor)
	if len(nexts) == 0 {
		return "none"
	}
	result := ""
	for i, s := range nexts {
		if i > 0 {
			result += ", "
		}
		result += string(s)
	}
	return result
}

// GetAllTransitions returns the full state machine for documentation
func GetAllTransitions() []Transition {
	return validTransitions
}
