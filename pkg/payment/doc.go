// Package payment implements the "free" payment method: the zero-cost
// checkout path that lets an order through without collecting payment.
//
// Eligibility is a set of pure functions over an explicit [Config] instead
// of a method class hierarchy:
//
//   - [IsAvailableInConfig]: the method is enabled for the store
//   - [IsAvailable]: enabled, a cart exists, and its grand total rounds to zero
//   - [ResolvePaymentAction]: which payment action the order pipeline runs
//
// # Configuration
//
// [LoadConfig] reads the payment/free/* settings from a [config.Scoped] view
// of the store configuration. Absent settings mean "disabled"; only a
// malformed sort_order is an error.
//
// # Rounding
//
// Grand totals are rounded half-up to the precision of the cart currency
// before comparing with zero, so 0.004 USD qualifies and 0.005 USD does not.
//
// [config.Scoped]: github.com/matzehuels/storekit/pkg/config.Scoped
package payment
