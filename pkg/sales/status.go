// Package sales describes order states and the status codes assigned to them.
package sales

import (
	"slices"
)

// Order states.
const (
	StateNew            = "new"
	StatePendingPayment = "pending_payment"
	StateProcessing     = "processing"
	StateComplete       = "complete"
	StateClosed         = "closed"
	StateCanceled       = "canceled"
	StateHolded         = "holded"
	StatePaymentReview  = "payment_review"
)

// StatusProcessing is the status code that keeps the payment action even
// when it is assigned to the "new" state.
const StatusProcessing = "processing"

// StatusCatalog maps an order state to the status codes valid within it.
// A nil catalog is empty.
type StatusCatalog map[string][]string

// DefaultCatalog returns the stock state/status assignment.
func DefaultCatalog() StatusCatalog {
	return StatusCatalog{
		StateNew:            {"pending"},
		StatePendingPayment: {"pending_payment"},
		StateProcessing:     {"processing"},
		StateComplete:       {"complete"},
		StateClosed:         {"closed"},
		StateCanceled:       {"canceled"},
		StateHolded:         {"holded"},
		StatePaymentReview:  {"payment_review", "fraud"},
	}
}

// NewCatalog builds a catalog from a configured mapping, falling back to
// [DefaultCatalog] when the mapping is empty.
func NewCatalog(m map[string][]string) StatusCatalog {
	if len(m) == 0 {
		return DefaultCatalog()
	}
	c := make(StatusCatalog, len(m))
	for state, statuses := range m {
		c[state] = slices.Clone(statuses)
	}
	return c
}

// StateStatuses returns the statuses assigned to state, sorted.
func (c StatusCatalog) StateStatuses(state string) []string {
	s := slices.Clone(c[state])
	slices.Sort(s)
	return slices.Compact(s)
}

// Has reports whether status is assigned to state.
func (c StatusCatalog) Has(state, status string) bool {
	return slices.Contains(c[state], status)
}
