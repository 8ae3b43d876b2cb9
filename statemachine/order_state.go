package statemachine

import (
	"github.com/walthampeppinosdosa/peppinos-api/apperr"
	"github.com/walthampeppinosdosa/peppinos-api/models"
)

// Transition defines a valid order status change.
type Transition struct {
	From models.OrderStatus
	To   models.OrderStatus
}

// validTransitions is the authoritative state machine definition: forward
// along the fulfilment sequence, plus cancellation from any non-terminal
// state before the order is ready.
var validTransitions = []Transition{
	{From: models.OrderStatusPlaced, To: models.OrderStatusConfirmed},
	{From: models.OrderStatusConfirmed, To: models.OrderStatusPreparing},
	{From: models.OrderStatusPreparing, To: models.OrderStatusReady},
	{From: models.OrderStatusReady, To: models.OrderStatusCompleted},
	{From: models.OrderStatusPlaced, To: models.OrderStatusCancelled},
	{From: models.OrderStatusConfirmed, To: models.OrderStatusCancelled},
	{From: models.OrderStatusPreparing, To: models.OrderStatusCancelled},
}

// Build a lookup map for O(1) validation
var transitionMap = func() map[Transition]bool {
	m := make(map[Transition]bool, len(validTransitions))
	for _, t := range validTransitions {
		m[t] = true
	}
	return m
}()

// ValidTransitionsFrom returns all valid next states from a given state.
func ValidTransitionsFrom(status models.OrderStatus) []models.OrderStatus {
	var nexts []models.OrderStatus
	for _, t := range validTransitions {
		if t.From == status {
			nexts = append(nexts, t.To)
		}
	}
	return nexts
}

// CanTransition checks whether an order may move from one status to another,
// returning an InvalidStateTransition error otherwise.
func CanTransition(from, to models.OrderStatus) error {
	if transitionMap[Transition{From: from, To: to}] {
		return nil
	}
	return apperr.InvalidStateTransition(
		"cannot move order from %s to %s; valid next states: %s",
		from, to, describeValidFrom(from),
	)
}

func describeValidFrom(status models.OrderStatus) string {
	nexts := ValidTransitionsFrom(status)
	if len(nexts) == 0 {
		return "none (terminal state)"
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

// ParseStatus maps a request literal to a known status.
func ParseStatus(s string) (models.OrderStatus, error) {
	switch models.OrderStatus(s) {
	case models.OrderStatusPlaced, models.OrderStatusConfirmed,
		models.OrderStatusPreparing, models.OrderStatusReady,
		models.OrderStatusCompleted, models.OrderStatusCancelled:
		return models.OrderStatus(s), nil
	default:
		return "", apperr.InvalidArgument("unknown order status %q", s)
	}
}
