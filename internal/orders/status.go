package orders

import "github.com/sugarmaple/bakehouse-backend/pkg/enums"

// transitions is the full order state machine. Orders enter at paid, move
// forward through fulfillment, and can be canceled until pickup.
var transitions = map[enums.OrderStatus]map[enums.OrderStatus]bool{
	enums.OrderStatusPaid: {
		enums.OrderStatusPrepping: true,
		enums.OrderStatusCanceled: true,
	},
	enums.OrderStatusPrepping: {
		enums.OrderStatusReady:    true,
		enums.OrderStatusCanceled: true,
	},
	enums.OrderStatusReady: {
		enums.OrderStatusPickedUp: true,
		enums.OrderStatusCanceled: true,
	},
	enums.OrderStatusPickedUp: {},
	enums.OrderStatusCanceled: {},
}

// CanTransition reports whether an order may move from one status to another.
func CanTransition(from, to enums.OrderStatus) bool {
	allowed, ok := transitions[from]
	if !ok {
		return false
	}
	return allowed[to]
}
